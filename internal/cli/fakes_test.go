package cli

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/valter-silva-au/billios/internal/core"
	"github.com/valter-silva-au/billios/pkg/fieldtest"
	"github.com/valter-silva-au/billios/pkg/models"
)

// fakeReportManager is an in-memory core.ReportManager that evaluates with
// the real evaluator.
type fakeReportManager struct {
	reports   map[string]models.FieldReport
	evaluator core.ReportEvaluator
	next      int
	listErr   error
}

func newFakeReportManager(reports ...models.FieldReport) *fakeReportManager {
	m := &fakeReportManager{
		reports:   make(map[string]models.FieldReport),
		evaluator: core.NewReportEvaluator(fieldtest.DefaultCalibration(), 95),
	}
	for _, r := range reports {
		m.reports[r.ID] = r
	}
	return m
}

func (m *fakeReportManager) AddReport(r models.FieldReport) (*models.FieldReport, error) {
	m.next++
	r.ID = fmt.Sprintf("FT-%05d", m.next)
	r.Status = models.ReportPending
	if r.Tested.IsZero() {
		r.Tested = time.Date(2026, 5, 4, 9, 30, 0, 0, time.UTC)
	}
	m.reports[r.ID] = r
	return &r, nil
}

func (m *fakeReportManager) GetReport(id string) (*models.FieldReport, error) {
	r, ok := m.reports[strings.ToUpper(strings.TrimSpace(id))]
	if !ok {
		return nil, fmt.Errorf("report %s not found", id)
	}
	return &r, nil
}

func (m *fakeReportManager) ListReports(status ...models.ReportStatus) ([]models.FieldReport, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []models.FieldReport
	for _, r := range m.reports {
		if len(status) > 0 && !containsReportStatus(status, r.Status) {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func containsReportStatus(list []models.ReportStatus, s models.ReportStatus) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func (m *fakeReportManager) RemoveReport(id string) error {
	id = strings.ToUpper(strings.TrimSpace(id))
	if _, ok := m.reports[id]; !ok {
		return fmt.Errorf("report %s not found", id)
	}
	delete(m.reports, id)
	return nil
}

func (m *fakeReportManager) EvaluateReport(id string) (*models.ReportResult, error) {
	r, err := m.GetReport(id)
	if err != nil {
		return nil, err
	}
	res, err := m.evaluator.Evaluate(*r)
	if err != nil {
		return res, err
	}
	r.Status = models.ReportFailed
	if res.Passed {
		r.Status = models.ReportPassed
	}
	m.reports[r.ID] = *r
	return res, nil
}

// sampleReport is the field sheet used across the package tests: it
// evaluates to a dry density of 155 and a compaction of 114.3.
func sampleReport(id string) models.FieldReport {
	return models.FieldReport{
		ID:           id,
		Location:     "Lot 12 pad",
		Tested:       time.Date(2026, 5, 4, 9, 30, 0, 0, time.UTC),
		Status:       models.ReportPending,
		ConePreTest:  14.65,
		ConePostTest: 8.75,
		Soil:         4.65,
		WetWeight:    5,
		DryWeight:    4.5,
		TarePan:      1,
		LabMax:       135.6,
	}
}

// withServices swaps the package-level services for the duration of a test.
func withServices(t *testing.T, runner core.FormulaRunner, mgr core.ReportManager) {
	t.Helper()
	origRunner, origMgr, origEval := Runner, ReportMgr, Evaluator
	t.Cleanup(func() {
		Runner, ReportMgr, Evaluator = origRunner, origMgr, origEval
	})
	Runner = runner
	ReportMgr = mgr
}

// executeCommand runs the root command with args after resetting every flag
// to its default, and returns the combined output.
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()

	resetFlags(rootCmd)
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.Execute()
	return buf.String(), err
}

func resetFlags(cmd *cobra.Command) {
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	})
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}
