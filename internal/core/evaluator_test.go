package core

import (
	"errors"
	"strings"
	"testing"

	"github.com/valter-silva-au/billios/pkg/fieldtest"
	"github.com/valter-silva-au/billios/pkg/models"
)

func sampleFieldReport() models.FieldReport {
	return models.FieldReport{
		ID:           "FT-00001",
		Location:     "STA 12+50",
		ConePreTest:  14.65,
		ConePostTest: 8.75,
		Soil:         4.65,
		WetWeight:    1600,
		DryWeight:    1575,
		TarePan:      1400,
		LabMax:       135.6,
	}
}

func TestEvaluate_WorkedExample(t *testing.T) {
	ev := NewReportEvaluator(fieldtest.DefaultCalibration(), 95)

	res, err := ev.Evaluate(sampleFieldReport())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	checks := []struct {
		name      string
		got, want float64
	}{
		{"SandUsed", res.SandUsed, 2.31},
		{"WetDensity", res.WetDensity, 177.1429},
		{"MoistureContent", res.MoistureContent, 0.14285714},
		{"DryDensity", res.DryDensity, 155},
		{"LabMax", res.LabMax, 135.6},
		{"Compaction", res.Compaction, 114.3},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s = %v, want %v", c.name, c.got, c.want)
		}
	}
	if res.RockCorrection != nil {
		t.Errorf("RockCorrection = %v, want nil", *res.RockCorrection)
	}
	if !res.Passed {
		t.Error("expected report to pass at 95%")
	}
	if res.ReportID != "FT-00001" {
		t.Errorf("ReportID = %q", res.ReportID)
	}
}

func TestEvaluate_RockCorrectionReplacesLabMax(t *testing.T) {
	r := sampleFieldReport()
	r.LeftOnSieveWeight = 100
	r.PreSieveWeight = 500

	res, err := NewReportEvaluator(fieldtest.DefaultCalibration(), 95).Evaluate(r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.RockCorrection == nil || *res.RockCorrection != 0.2 {
		t.Fatalf("RockCorrection = %v, want 0.2", res.RockCorrection)
	}
	if res.LabMax != 139.7 {
		t.Errorf("LabMax = %v, want 139.7", res.LabMax)
	}
	if res.Compaction != 111 {
		t.Errorf("Compaction = %v, want 111", res.Compaction)
	}
}

func TestEvaluate_FailsBelowRequiredPercent(t *testing.T) {
	res, err := NewReportEvaluator(fieldtest.DefaultCalibration(), 120).Evaluate(sampleFieldReport())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Passed {
		t.Error("114.3% should not pass a 120% requirement")
	}
	if res.RequiredPercent != 120 {
		t.Errorf("RequiredPercent = %v, want 120", res.RequiredPercent)
	}
}

func TestEvaluate_ReportCalibrationOverridesDefault(t *testing.T) {
	r := sampleFieldReport()
	cal := fieldtest.DefaultCalibration()
	cal.SandInCone = 3.0
	r.Calibration = &cal

	res, err := NewReportEvaluator(fieldtest.DefaultCalibration(), 95).Evaluate(r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.SandUsed != 2.9 {
		t.Errorf("SandUsed = %v, want 2.9", res.SandUsed)
	}
}

func TestEvaluate_PartialCalibrationKeepsConfiguredConstants(t *testing.T) {
	r := sampleFieldReport()
	r.Calibration = &fieldtest.Calibration{SandInCone: 3.0}

	res, err := NewReportEvaluator(fieldtest.DefaultCalibration(), 95).Evaluate(r)
	if err != nil {
		t.Fatalf("partial override should evaluate: %v", err)
	}
	if res.SandUsed != 2.9 {
		t.Errorf("SandUsed = %v, want 2.9", res.SandUsed)
	}
	// 4.65 / 2.9 * 88, with the configured sand density.
	want := fieldtest.NewWetDensity(4.65, fieldtest.SandUsedValue(2.9)).Calculate()
	if res.WetDensity != want {
		t.Errorf("WetDensity = %v, want %v", res.WetDensity, want)
	}
	if res.WetDensity == 0 || res.Compaction == 0 {
		t.Errorf("zeroed constants leaked into the result: %+v", res)
	}
}

func TestEvaluate_PartialCalibrationWithRockCorrection(t *testing.T) {
	r := sampleFieldReport()
	r.LeftOnSieveWeight = 100
	r.PreSieveWeight = 500
	r.Calibration = &fieldtest.Calibration{SandDensity: 88}

	res, err := NewReportEvaluator(fieldtest.DefaultCalibration(), 95).Evaluate(r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.LabMax != 139.7 {
		t.Errorf("LabMax = %v, want 139.7 with the configured specific gravity", res.LabMax)
	}
}

func TestEvaluate_NonFiniteIsAnError(t *testing.T) {
	r := sampleFieldReport()
	r.DryWeight = r.TarePan

	res, err := NewReportEvaluator(fieldtest.DefaultCalibration(), 95).Evaluate(r)
	if !errors.Is(err, fieldtest.ErrNonFinite) {
		t.Fatalf("error = %v, want ErrNonFinite", err)
	}
	if !strings.Contains(err.Error(), "moisture content") {
		t.Errorf("error should name the moisture content: %v", err)
	}
	if res == nil || res.Passed {
		t.Errorf("expected a partial, non-passing result, got %+v", res)
	}
}
