package storage

import (
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/valter-silva-au/billios/pkg/fieldtest"
	"github.com/valter-silva-au/billios/pkg/models"
	"pgregory.net/rapid"
)

var allReportStatuses = []models.ReportStatus{models.ReportPending, models.ReportPassed, models.ReportFailed}

func genReportStatus(t *rapid.T, label string) models.ReportStatus {
	return rapid.SampledFrom(allReportStatuses).Draw(t, label)
}

func genWeight(t *rapid.T, label string) float64 {
	// Two decimal places, the precision of a field scale.
	return float64(rapid.IntRange(0, 5000).Draw(t, label)) / 100
}

func genFieldReport(t *rapid.T) models.FieldReport {
	r := models.FieldReport{
		ID:           fmt.Sprintf("FT-%05d", rapid.IntRange(1, 99999).Draw(t, "reportNum")),
		Location:     rapid.SampledFrom([]string{"Lot 12 pad", "Trench 3", "STA 14+00", ""}).Draw(t, "location"),
		Tested:       time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(rapid.IntRange(0, 2000).Draw(t, "hours")) * time.Hour),
		Status:       genReportStatus(t, "status"),
		ConePreTest:  genWeight(t, "pre"),
		ConePostTest: genWeight(t, "post"),
		Soil:         genWeight(t, "soil"),
		WetWeight:    genWeight(t, "wet"),
		DryWeight:    genWeight(t, "dry"),
		TarePan:      genWeight(t, "tare"),
		LabMax:       genWeight(t, "labMax"),
	}
	if rapid.Bool().Draw(t, "rock") {
		r.LeftOnSieveWeight = genWeight(t, "leftOnSieve")
		r.PreSieveWeight = genWeight(t, "preSieve")
	}
	if rapid.Bool().Draw(t, "override") {
		cal := fieldtest.DefaultCalibration()
		cal.SandInCone = genWeight(t, "sandInCone")
		r.Calibration = &cal
	}
	return r
}

func uniqueReports(reports []models.FieldReport) []models.FieldReport {
	seen := make(map[string]bool)
	var unique []models.FieldReport
	for _, r := range reports {
		if !seen[r.ID] {
			seen[r.ID] = true
			unique = append(unique, r)
		}
	}
	return unique
}

// Property: every measurement written to reports.yaml is read back unchanged,
// so re-evaluating a stored report gives the result of the original sheet.
func TestReportStorePersistenceRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		reports := uniqueReports(rapid.SliceOfN(rapid.Custom(genFieldReport), 1, 15).Draw(t, "reports"))

		dir, err := os.MkdirTemp("", "reports-prop-test-*")
		if err != nil {
			t.Fatal(err)
		}
		defer os.RemoveAll(dir)

		mgr := NewReportStoreManager(dir)
		for _, r := range reports {
			if err := mgr.AddReport(r); err != nil {
				t.Fatal(err)
			}
		}
		if err := mgr.Save(); err != nil {
			t.Fatal(err)
		}

		mgr2 := NewReportStoreManager(dir)
		if err := mgr2.Load(); err != nil {
			t.Fatal(err)
		}

		for _, orig := range reports {
			got, err := mgr2.GetReport(orig.ID)
			if err != nil {
				t.Fatalf("report %s not found after reload", orig.ID)
			}
			if got.ConePreTest != orig.ConePreTest || got.ConePostTest != orig.ConePostTest ||
				got.Soil != orig.Soil || got.WetWeight != orig.WetWeight ||
				got.DryWeight != orig.DryWeight || got.TarePan != orig.TarePan ||
				got.LabMax != orig.LabMax || got.PreSieveWeight != orig.PreSieveWeight ||
				got.LeftOnSieveWeight != orig.LeftOnSieveWeight {
				t.Fatalf("report %s measurements changed: %+v vs %+v", orig.ID, got, orig)
			}
			if !got.Tested.Equal(orig.Tested) || got.Status != orig.Status {
				t.Fatalf("report %s header changed: %+v vs %+v", orig.ID, got, orig)
			}
			if (got.Calibration == nil) != (orig.Calibration == nil) {
				t.Fatalf("report %s calibration presence changed", orig.ID)
			}
			if got.Calibration != nil && *got.Calibration != *orig.Calibration {
				t.Fatalf("report %s calibration changed: %+v vs %+v", orig.ID, *got.Calibration, *orig.Calibration)
			}
		}
	})
}

// Property: a status filter returns exactly the reports whose status is in
// the filter, and an empty filter returns everything.
func TestReportFilterCorrectness(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		reports := uniqueReports(rapid.SliceOfN(rapid.Custom(genFieldReport), 1, 20).Draw(t, "reports"))

		mgr := NewReportStoreManager(os.TempDir())
		for _, r := range reports {
			if err := mgr.AddReport(r); err != nil {
				t.Fatal(err)
			}
		}

		n := rapid.IntRange(0, 2).Draw(t, "nStatuses")
		statuses := make([]models.ReportStatus, n)
		for i := range statuses {
			statuses[i] = genReportStatus(t, fmt.Sprintf("filter%d", i))
		}

		got, err := mgr.ListReports(ReportFilter{Status: statuses})
		if err != nil {
			t.Fatal(err)
		}

		want := 0
		for _, r := range reports {
			if n == 0 || containsStatus(statuses, r.Status) {
				want++
			}
		}
		if len(got) != want {
			t.Fatalf("filter %v returned %d reports, want %d", statuses, len(got), want)
		}
		for i, r := range got {
			if n > 0 && !containsStatus(statuses, r.Status) {
				t.Fatalf("report %s with status %s escaped filter %v", r.ID, r.Status, statuses)
			}
			if i > 0 && got[i-1].ID >= r.ID {
				t.Fatalf("reports not ordered by ID: %s before %s", got[i-1].ID, r.ID)
			}
		}
	})
}
