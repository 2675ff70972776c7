package core

import (
	"errors"

	"github.com/valter-silva-au/billios/pkg/fieldtest"
	"github.com/valter-silva-au/billios/pkg/models"
)

// ReportEvaluator runs the full calculation chain for a field report.
type ReportEvaluator interface {
	Evaluate(report models.FieldReport) (*models.ReportResult, error)
}

type reportEvaluator struct {
	calibration     fieldtest.Calibration
	requiredPercent float64
}

// NewReportEvaluator returns a ReportEvaluator that falls back to calibration
// for reports without their own overrides, and for any constant a report's
// override leaves zero. A report passes when its compaction reaches
// requiredPercent.
func NewReportEvaluator(calibration fieldtest.Calibration, requiredPercent float64) ReportEvaluator {
	return &reportEvaluator{
		calibration:     calibration,
		requiredPercent: requiredPercent,
	}
}

// Evaluate builds the calculator chain
//
//	SandUsed -> WetDensity -> DryDensity <- MoistureContent
//	DryDensity -> Compaction <- LabMax (or LabMaxCorrection <- RockCorrection)
//
// and returns every intermediate value. Any non-finite value makes the
// report impossible to judge, so an error wrapping fieldtest.ErrNonFinite is
// returned for each one.
func (e *reportEvaluator) Evaluate(report models.FieldReport) (*models.ReportResult, error) {
	cal := e.calibration
	if report.Calibration != nil {
		cal = report.Calibration.Merge(e.calibration)
	}
	opt := fieldtest.WithCalibration(cal)

	sand := fieldtest.NewSandUsed(report.ConePreTest, report.ConePostTest, opt)
	wet := fieldtest.NewWetDensity(report.Soil, fieldtest.SandUsedOf(sand), opt)
	moisture := fieldtest.NewMoistureContent(report.WetWeight, report.DryWeight, report.TarePan)
	dry := fieldtest.NewDryDensity(fieldtest.WetDensityOf(wet), fieldtest.MoistureContentOf(moisture))

	result := &models.ReportResult{
		ReportID:        report.ID,
		SandUsed:        sand.Calculate(),
		WetDensity:      wet.Calculate(),
		MoistureContent: moisture.Calculate(),
		DryDensity:      dry.Calculate(),
		LabMax:          report.LabMax,
		RequiredPercent: e.requiredPercent,
	}

	if report.HasRockCorrection() {
		rock := fieldtest.NewRockCorrection(report.LeftOnSieveWeight, report.PreSieveWeight)
		rc := rock.Calculate()
		result.RockCorrection = &rc
		result.LabMax = fieldtest.NewLabMaxCorrection(fieldtest.RockCorrectionOf(rock), report.LabMax, opt).Calculate()
	}

	result.Compaction = fieldtest.NewCompaction(fieldtest.DryDensityOf(dry), result.LabMax).Calculate()

	if err := checkResult(result); err != nil {
		return result, err
	}

	result.Passed = result.Compaction >= e.requiredPercent
	return result, nil
}

func checkResult(r *models.ReportResult) error {
	values := []struct {
		name  string
		value float64
	}{
		{"sand used", r.SandUsed},
		{"wet density", r.WetDensity},
		{"moisture content", r.MoistureContent},
		{"dry density", r.DryDensity},
		{"lab max", r.LabMax},
		{"compaction", r.Compaction},
	}
	if r.RockCorrection != nil {
		values = append(values, struct {
			name  string
			value float64
		}{"rock correction", *r.RockCorrection})
	}

	var errs []error
	for _, v := range values {
		if _, err := fieldtest.Check(v.name, v.value); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
