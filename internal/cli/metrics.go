package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/spf13/cobra"
	"github.com/valter-silva-au/billios/internal/observability"
)

var (
	metricsJSON  bool
	metricsSince string
)

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Summarise calculations and report outcomes from the event log",
	Long: `Summarise the event log over a look-back window: how many formulae
were run (and how many gave a non-finite result), and how many reports were
recorded, evaluated, passed and failed, with the average compaction.`,
	Example: `  billios metrics
  billios metrics --since 30d --json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if MetricsCalc == nil {
			return fmt.Errorf("metrics calculator not initialized")
		}

		since, err := observability.ParseSince(metricsSince, time.Now().UTC())
		if err != nil {
			return fmt.Errorf("parsing --since: %w", err)
		}

		m, err := MetricsCalc.Calculate(since)
		if err != nil {
			return fmt.Errorf("calculating metrics: %w", err)
		}

		out := cmd.OutOrStdout()
		if metricsJSON {
			data, err := json.MarshalIndent(m, "", "  ")
			if err != nil {
				return fmt.Errorf("formatting metrics as JSON: %w", err)
			}
			fmt.Fprintln(out, string(data))
			return nil
		}

		printMetrics(out, m, since)
		return nil
	},
}

func printMetrics(w io.Writer, m *observability.Metrics, since time.Time) {
	row := func(label string, value any) {
		fmt.Fprintf(w, "  %s %v\n", reportLabelStyle.Render(fmt.Sprintf("%-20s", label)), value)
	}

	fmt.Fprintf(w, "Since %s (%d events)\n\n", since.Format("2006-01-02 15:04"), m.EventCount)

	fmt.Fprintln(w, "Calculations")
	row("Total:", m.Calculations)
	row("Non-finite:", m.NonFinite)
	formulas := make([]string, 0, len(m.ByFormula))
	for name := range m.ByFormula {
		formulas = append(formulas, name)
	}
	sort.Strings(formulas)
	for _, name := range formulas {
		row("  "+name+":", m.ByFormula[name])
	}

	fmt.Fprintln(w, "\nReports")
	row("Recorded:", m.ReportsAdded)
	row("Evaluated:", m.ReportsEvaluated)
	if m.ReportsUnjudged > 0 {
		row("Unjudged:", m.ReportsUnjudged)
	}
	if m.ReportsEvaluated > 0 {
		row("Passed:", reportPassStyle.Render(fmt.Sprint(m.ReportsPassed)))
		row("Failed:", reportFailStyle.Render(fmt.Sprint(m.ReportsFailed)))
		row("Pass rate:", fmt.Sprintf("%.1f%%", m.PassRate()*100))
		row("Avg compaction:", fmt.Sprintf("%.1f%%", m.AverageCompaction))
	}

	if m.OldestEvent != nil && m.NewestEvent != nil {
		fmt.Fprintf(w, "\nFirst event %s, last event %s\n",
			m.OldestEvent.Format(time.RFC3339), m.NewestEvent.Format(time.RFC3339))
	}
}

func init() {
	metricsCmd.Flags().BoolVar(&metricsJSON, "json", false, "Output metrics as JSON")
	metricsCmd.Flags().StringVar(&metricsSince, "since", observability.DefaultWindow, "Look-back window (e.g. 7d, 30d, 24h)")
	rootCmd.AddCommand(metricsCmd)
}
