package cli

import (
	"fmt"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/valter-silva-au/billios/internal/observability"
	"github.com/valter-silva-au/billios/pkg/models"
)

// Dashboard panel indices.
const (
	panelReports = iota
	panelMetrics
	panelCount
)

// maxDashboardReports caps the reports panel to the most recent tests.
const maxDashboardReports = 15

type dashboardModel struct {
	activePanel int
	width       int
	height      int

	// Data.
	reports     []reportSnapshot
	metricsData *metricsSnapshot

	// State.
	loading bool
	err     error
}

type reportSnapshot struct {
	id         string
	location   string
	tested     time.Time
	status     models.ReportStatus
	compaction float64
	// evaluated is false when the chain could not produce finite values.
	evaluated bool
}

type metricsSnapshot struct {
	calculations      int
	nonFinite         int
	reportsEvaluated  int
	passRate          float64
	averageCompaction float64
	eventCount        int
}

// dataLoadedMsg carries loaded data back to the model.
type dataLoadedMsg struct {
	reports []reportSnapshot
	metrics *metricsSnapshot
	err     error
}

// Style definitions.
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("94")).
			Padding(0, 1)

	panelStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(1, 2)

	activePanelStyle = lipgloss.NewStyle().
				BorderStyle(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("94")).
				Padding(1, 2)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("94")).
			MarginBottom(1)

	helpStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

func newDashboardModel() dashboardModel {
	return dashboardModel{
		activePanel: panelReports,
		loading:     true,
	}
}

func (m dashboardModel) Init() tea.Cmd {
	return loadData
}

func (m dashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "tab":
			m.activePanel = (m.activePanel + 1) % panelCount
			return m, nil
		case "shift+tab":
			m.activePanel = (m.activePanel - 1 + panelCount) % panelCount
			return m, nil
		case "r":
			m.loading = true
			return m, loadData
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case dataLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.reports = msg.reports
		m.metricsData = msg.metrics
		m.err = nil
		return m, nil
	}

	return m, nil
}

func (m dashboardModel) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	title := titleStyle.Render(" billios field density ")
	help := helpStyle.Render("tab: switch panel | r: refresh | q: quit")

	if m.loading {
		return fmt.Sprintf("%s\n\n  Loading data...\n\n%s", title, help)
	}

	if m.err != nil {
		return fmt.Sprintf("%s\n\n  Error: %s\n\n%s", title, m.err, help)
	}

	reportsPanel := m.renderReportsPanel()
	metricsPanel := m.renderMetricsPanel()

	availableWidth := m.width - 2

	var body string
	if availableWidth > 100 {
		reportsWidth := availableWidth * 3 / 5
		reportsPanel = m.applyPanelStyle(panelReports, reportsPanel, reportsWidth-4)
		metricsPanel = m.applyPanelStyle(panelMetrics, metricsPanel, availableWidth-reportsWidth-4)
		body = lipgloss.JoinHorizontal(lipgloss.Top, reportsPanel, metricsPanel)
	} else {
		panelWidth := availableWidth - 4
		if panelWidth < 20 {
			panelWidth = 20
		}
		reportsPanel = m.applyPanelStyle(panelReports, reportsPanel, panelWidth)
		metricsPanel = m.applyPanelStyle(panelMetrics, metricsPanel, panelWidth)
		body = lipgloss.JoinVertical(lipgloss.Left, reportsPanel, metricsPanel)
	}

	return fmt.Sprintf("%s\n\n%s\n\n%s", title, body, help)
}

func (m dashboardModel) applyPanelStyle(panel int, content string, width int) string {
	style := panelStyle
	if m.activePanel == panel {
		style = activePanelStyle
	}
	return style.Width(width).Render(content)
}

func (m dashboardModel) renderReportsPanel() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Reports"))
	b.WriteString("\n")

	if len(m.reports) == 0 {
		b.WriteString("  No reports found.")
		return b.String()
	}

	for _, r := range m.reports {
		compaction := "   n/a"
		if r.evaluated {
			compaction = fmt.Sprintf("%5.1f%%", r.compaction)
		}
		status := styleForReportStatus(r.status).Render(fmt.Sprintf("%-8s", r.status))
		b.WriteString(fmt.Sprintf("  %-9s %s %s  %s  %s\n", r.id, status, compaction, r.tested.Format("01-02"), r.location))
	}

	counts := make(map[models.ReportStatus]int)
	for _, r := range m.reports {
		counts[r.status]++
	}
	b.WriteString(fmt.Sprintf("\n  %d passed, %d failed, %d pending",
		counts[models.ReportPassed], counts[models.ReportFailed], counts[models.ReportPending]))

	return b.String()
}

func (m dashboardModel) renderMetricsPanel() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Metrics (7d)"))
	b.WriteString("\n")

	if m.metricsData == nil {
		b.WriteString("  No metrics available.")
		return b.String()
	}

	md := m.metricsData
	b.WriteString(fmt.Sprintf("  %-14s %d\n", "Events", md.eventCount))
	b.WriteString(fmt.Sprintf("  %-14s %d\n", "Calculations", md.calculations))
	b.WriteString(fmt.Sprintf("  %-14s %d\n", "Non-finite", md.nonFinite))
	b.WriteString(fmt.Sprintf("  %-14s %d\n", "Evaluated", md.reportsEvaluated))
	if md.reportsEvaluated > 0 {
		b.WriteString(fmt.Sprintf("  %-14s %.0f%%\n", "Pass rate", md.passRate*100))
		b.WriteString(fmt.Sprintf("  %-14s %.1f%%\n", "Avg compaction", md.averageCompaction))
	}

	return b.String()
}

func loadData() tea.Msg {
	var result dataLoadedMsg

	if ReportMgr != nil {
		reports, err := ReportMgr.ListReports()
		if err != nil {
			result.err = fmt.Errorf("loading reports: %w", err)
			return result
		}

		// Most recent tests first.
		sort.Slice(reports, func(i, j int) bool {
			return reports[i].Tested.After(reports[j].Tested)
		})
		if len(reports) > maxDashboardReports {
			reports = reports[:maxDashboardReports]
		}

		result.reports = make([]reportSnapshot, 0, len(reports))
		for _, r := range reports {
			snap := reportSnapshot{
				id:       r.ID,
				location: r.Location,
				tested:   r.Tested,
				status:   r.Status,
			}
			// Evaluate read-only so the view never rewrites stored statuses.
			if Evaluator != nil {
				if res, err := Evaluator.Evaluate(r); err == nil {
					snap.compaction = res.Compaction
					snap.evaluated = true
				}
			}
			result.reports = append(result.reports, snap)
		}
	}

	if MetricsCalc != nil {
		since, _ := observability.ParseSince(observability.DefaultWindow, time.Now().UTC())
		metrics, err := MetricsCalc.Calculate(since)
		if err != nil {
			result.err = fmt.Errorf("loading metrics: %w", err)
			return result
		}
		result.metrics = &metricsSnapshot{
			calculations:      metrics.Calculations,
			nonFinite:         metrics.NonFinite,
			reportsEvaluated:  metrics.ReportsEvaluated,
			passRate:          metrics.PassRate(),
			averageCompaction: metrics.AverageCompaction,
			eventCount:        metrics.EventCount,
		}
	}

	return result
}

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Interactive TUI dashboard for field reports and metrics",
	Long: `Launch an interactive terminal dashboard showing recent field reports
with their compaction and the metrics derived from the event log.

Navigate between panels with Tab, refresh with r, quit with q.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if ReportMgr == nil {
			return fmt.Errorf("report manager not initialized")
		}
		p := tea.NewProgram(newDashboardModel(), tea.WithAltScreen())
		_, err := p.Run()
		return err
	},
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
}
