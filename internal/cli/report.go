package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/valter-silva-au/billios/pkg/fieldtest"
	"github.com/valter-silva-au/billios/pkg/models"
)

var (
	reportPassStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("46")).Bold(true)
	reportFailStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	reportPendingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	reportLabelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("62"))
)

func styleForReportStatus(status models.ReportStatus) lipgloss.Style {
	switch status {
	case models.ReportPassed:
		return reportPassStyle
	case models.ReportFailed:
		return reportFailStyle
	default:
		return reportPendingStyle
	}
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Manage field density reports",
	Long: `Record sand-cone field reports and evaluate them against the required
compaction. Reports are stored in reports.yaml under the billios home.`,
}

var reportAddFlags struct {
	formulaFlags
	location   string
	technician string
	notes      string
	evaluate   bool
}

var reportAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Record a new field report",
	Example: `  billios report add --location "Lot 12 pad" --pre 14.65 --post 8.75 --soil 4.65 \
    --wet-weight 5 --dry-weight 4.5 --tare-pan 1 --lab-max 135.6 --evaluate`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if ReportMgr == nil {
			return fmt.Errorf("report manager not initialized")
		}
		f := &reportAddFlags

		report := models.FieldReport{
			Location:          f.location,
			Technician:        f.technician,
			ConePreTest:       f.pre,
			ConePostTest:      f.post,
			Soil:              f.soil,
			WetWeight:         f.wetWeight,
			DryWeight:         f.dryWeight,
			TarePan:           f.tarePan,
			LabMax:            f.labMax,
			LeftOnSieveWeight: f.leftOnSieve,
			PreSieveWeight:    f.preSieve,
			Notes:             f.notes,
		}
		if cal, ok := reportCalibration(cmd, &f.formulaFlags); ok {
			report.Calibration = &cal
		}

		added, err := ReportMgr.AddReport(report)
		if err != nil {
			return fmt.Errorf("adding report: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Recorded report %s\n", added.ID)
		if !f.evaluate {
			return nil
		}

		result, err := ReportMgr.EvaluateReport(added.ID)
		if err != nil {
			return err
		}
		printReportResult(out, added, result)
		return nil
	},
}

// reportCalibration returns the calibration overrides given on the command
// line, starting from the configured constants, and false when none were
// given.
func reportCalibration(cmd *cobra.Command, f *formulaFlags) (fieldtest.Calibration, bool) {
	changed := false
	for _, name := range []string{"sand-in-cone", "sand-density", "specific-gravity"} {
		if cmd.Flags().Changed(name) {
			changed = true
		}
	}
	if !changed {
		return fieldtest.Calibration{}, false
	}

	cal := fieldtest.DefaultCalibration()
	if Runner != nil {
		cal = Runner.Calibration()
	}
	if cmd.Flags().Changed("sand-in-cone") {
		cal.SandInCone = f.sandInCone
	}
	if cmd.Flags().Changed("sand-density") {
		cal.SandDensity = f.sandDensity
	}
	if cmd.Flags().Changed("specific-gravity") {
		cal.SpecificGravity = f.specificGravity
	}
	return cal, true
}

var (
	reportListStatus string
	reportListJSON   bool
)

var reportListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded field reports",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if ReportMgr == nil {
			return fmt.Errorf("report manager not initialized")
		}

		statuses, err := parseReportStatuses(reportListStatus)
		if err != nil {
			return err
		}

		reports, err := ReportMgr.ListReports(statuses...)
		if err != nil {
			return fmt.Errorf("listing reports: %w", err)
		}

		out := cmd.OutOrStdout()
		if reportListJSON {
			data, err := json.MarshalIndent(reports, "", "  ")
			if err != nil {
				return fmt.Errorf("formatting reports as JSON: %w", err)
			}
			fmt.Fprintln(out, string(data))
			return nil
		}

		if len(reports) == 0 {
			fmt.Fprintln(out, "No reports found.")
			return nil
		}

		fmt.Fprintf(out, "  %-10s %-8s %-11s %s\n", "ID", "STATUS", "TESTED", "LOCATION")
		fmt.Fprintf(out, "  %-10s %-8s %-11s %s\n", "--", "------", "------", "--------")
		for _, r := range reports {
			status := styleForReportStatus(r.Status).Render(fmt.Sprintf("%-8s", r.Status))
			fmt.Fprintf(out, "  %-10s %s %-11s %s\n", r.ID, status, r.Tested.Format("2006-01-02"), r.Location)
		}
		return nil
	},
}

// parseReportStatuses parses a comma separated status filter.
func parseReportStatuses(s string) ([]models.ReportStatus, error) {
	var statuses []models.ReportStatus
	for _, part := range strings.Split(s, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part == "" {
			continue
		}
		status := models.ReportStatus(part)
		switch status {
		case models.ReportPending, models.ReportPassed, models.ReportFailed:
			statuses = append(statuses, status)
		default:
			return nil, fmt.Errorf("invalid status %q: must be one of pending, passed, failed", part)
		}
	}
	return statuses, nil
}

var reportShowJSON bool

var reportShowCmd = &cobra.Command{
	Use:   "show <report-id>",
	Short: "Show a field report and its evaluated values",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if ReportMgr == nil {
			return fmt.Errorf("report manager not initialized")
		}

		report, err := ReportMgr.GetReport(args[0])
		if err != nil {
			return fmt.Errorf("getting report: %w", err)
		}

		out := cmd.OutOrStdout()
		if reportShowJSON {
			data, err := json.MarshalIndent(report, "", "  ")
			if err != nil {
				return fmt.Errorf("formatting report as JSON: %w", err)
			}
			fmt.Fprintln(out, string(data))
			return nil
		}

		printReport(out, report)
		return nil
	},
}

var reportEvaluateJSON bool

var reportEvaluateCmd = &cobra.Command{
	Use:   "evaluate <report-id>",
	Short: "Run the calculation chain for a report",
	Long: `Compute sand used, wet density, moisture, dry density and compaction
for a stored report (applying the rock correction when sieve weights were
recorded) and mark it passed or failed against the required compaction.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if ReportMgr == nil {
			return fmt.Errorf("report manager not initialized")
		}

		report, err := ReportMgr.GetReport(args[0])
		if err != nil {
			return fmt.Errorf("getting report: %w", err)
		}

		result, err := ReportMgr.EvaluateReport(report.ID)
		if err != nil {
			if errors.Is(err, fieldtest.ErrNonFinite) {
				return fmt.Errorf("report %s cannot be judged, check for zero weights: %w", report.ID, err)
			}
			return err
		}

		out := cmd.OutOrStdout()
		if reportEvaluateJSON {
			data, err := json.MarshalIndent(result, "", "  ")
			if err != nil {
				return fmt.Errorf("formatting result as JSON: %w", err)
			}
			fmt.Fprintln(out, string(data))
			return nil
		}

		printReportResult(out, report, result)
		return nil
	},
}

var reportRemoveCmd = &cobra.Command{
	Use:     "remove <report-id>",
	Aliases: []string{"rm"},
	Short:   "Delete a field report",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if ReportMgr == nil {
			return fmt.Errorf("report manager not initialized")
		}
		if err := ReportMgr.RemoveReport(args[0]); err != nil {
			return fmt.Errorf("removing report: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed report %s\n", strings.ToUpper(strings.TrimSpace(args[0])))
		return nil
	},
}

func printReport(w io.Writer, r *models.FieldReport) {
	label := func(s string) string { return reportLabelStyle.Render(fmt.Sprintf("%-16s", s)) }

	fmt.Fprintf(w, "Report %s  %s\n", r.ID, styleForReportStatus(r.Status).Render(string(r.Status)))
	if r.Location != "" {
		fmt.Fprintf(w, "  %s %s\n", label("Location:"), r.Location)
	}
	if r.Technician != "" {
		fmt.Fprintf(w, "  %s %s\n", label("Technician:"), r.Technician)
	}
	fmt.Fprintf(w, "  %s %s\n", label("Tested:"), r.Tested.Format("2006-01-02 15:04"))
	fmt.Fprintf(w, "  %s %v / %v\n", label("Cone pre/post:"), r.ConePreTest, r.ConePostTest)
	fmt.Fprintf(w, "  %s %v\n", label("Soil:"), r.Soil)
	fmt.Fprintf(w, "  %s %v / %v / %v\n", label("Wet/dry/tare:"), r.WetWeight, r.DryWeight, r.TarePan)
	fmt.Fprintf(w, "  %s %v\n", label("Lab max:"), r.LabMax)
	if r.HasRockCorrection() {
		fmt.Fprintf(w, "  %s %v / %v\n", label("Sieve left/pre:"), r.LeftOnSieveWeight, r.PreSieveWeight)
	}
	if r.Calibration != nil {
		fmt.Fprintf(w, "  %s cone %v, sand %v, gravity %v\n", label("Calibration:"),
			r.Calibration.SandInCone, r.Calibration.SandDensity, r.Calibration.SpecificGravity)
	}
	if r.Notes != "" {
		fmt.Fprintf(w, "  %s %s\n", label("Notes:"), r.Notes)
	}
}

func printReportResult(w io.Writer, r *models.FieldReport, res *models.ReportResult) {
	verdict := reportFailStyle.Render("FAIL")
	if res.Passed {
		verdict = reportPassStyle.Render("PASS")
	}

	fmt.Fprintf(w, "Report %s  %s\n", r.ID, verdict)
	fmt.Fprintf(w, "  %-18s %v\n", "Sand used:", res.SandUsed)
	fmt.Fprintf(w, "  %-18s %v\n", "Wet density:", res.WetDensity)
	fmt.Fprintf(w, "  %-18s %v\n", "Moisture content:", res.MoistureContent)
	fmt.Fprintf(w, "  %-18s %v\n", "Dry density:", res.DryDensity)
	if res.RockCorrection != nil {
		fmt.Fprintf(w, "  %-18s %v\n", "Rock correction:", *res.RockCorrection)
		fmt.Fprintf(w, "  %-18s %v (corrected from %v)\n", "Lab max:", res.LabMax, r.LabMax)
	} else {
		fmt.Fprintf(w, "  %-18s %v\n", "Lab max:", res.LabMax)
	}
	fmt.Fprintf(w, "  %-18s %v%% (required %v%%)\n", "Compaction:", res.Compaction, res.RequiredPercent)
}

func init() {
	f := &reportAddFlags
	reportAddCmd.Flags().StringVar(&f.location, "location", "", "Where the test was taken")
	reportAddCmd.Flags().StringVar(&f.technician, "technician", "", "Who ran the test")
	reportAddCmd.Flags().StringVar(&f.notes, "notes", "", "Free-form notes")
	reportAddCmd.Flags().BoolVar(&f.evaluate, "evaluate", false, "Evaluate the report right after recording it")
	addSandUsedFlags(reportAddCmd, &f.formulaFlags)
	addMoistureFlags(reportAddCmd, &f.formulaFlags)
	addRockCorrectionFlags(reportAddCmd, &f.formulaFlags)
	reportAddCmd.Flags().Float64Var(&f.soil, "soil", 0, "Weight of soil removed from the hole")
	reportAddCmd.Flags().Float64Var(&f.sandDensity, "sand-density", fieldtest.DefaultSandDensity, "Bulk density of the calibrated sand (overrides config)")
	reportAddCmd.Flags().Float64Var(&f.labMax, "lab-max", 0, "Laboratory maximum dry density")
	reportAddCmd.Flags().Float64Var(&f.specificGravity, "specific-gravity", fieldtest.DefaultSpecificGravity, "Specific gravity of the oversize material (overrides config)")

	reportListCmd.Flags().StringVar(&reportListStatus, "status", "", "Comma separated statuses to include (pending, passed, failed)")
	reportListCmd.Flags().BoolVar(&reportListJSON, "json", false, "Output reports as JSON")
	reportShowCmd.Flags().BoolVar(&reportShowJSON, "json", false, "Output the report as JSON")
	reportEvaluateCmd.Flags().BoolVar(&reportEvaluateJSON, "json", false, "Output the result as JSON")

	reportCmd.AddCommand(reportAddCmd, reportListCmd, reportShowCmd, reportEvaluateCmd, reportRemoveCmd)
	rootCmd.AddCommand(reportCmd)
}
