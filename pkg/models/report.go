package models

import (
	"time"

	"github.com/valter-silva-au/billios/pkg/fieldtest"
)

// ReportStatus records the outcome of the last evaluation of a report.
type ReportStatus string

const (
	ReportPending ReportStatus = "pending"
	ReportPassed  ReportStatus = "passed"
	ReportFailed  ReportStatus = "failed"
)

// FieldReport is one sand-cone density test as written on the field sheet.
// Only raw measurements are stored; every derived value is recomputed on
// evaluation.
type FieldReport struct {
	ID         string       `yaml:"id" json:"id"`
	Location   string       `yaml:"location,omitempty" json:"location,omitempty"`
	Technician string       `yaml:"technician,omitempty" json:"technician,omitempty"`
	Tested     time.Time    `yaml:"tested" json:"tested"`
	Status     ReportStatus `yaml:"status" json:"status"`

	// Sand cone.
	ConePreTest  float64 `yaml:"cone_pre_test" json:"cone_pre_test"`
	ConePostTest float64 `yaml:"cone_post_test" json:"cone_post_test"`
	Soil         float64 `yaml:"soil" json:"soil"`

	// Moisture sample.
	WetWeight float64 `yaml:"wet_weight" json:"wet_weight"`
	DryWeight float64 `yaml:"dry_weight" json:"dry_weight"`
	TarePan   float64 `yaml:"tare_pan" json:"tare_pan"`

	// Proctor and oversize. A zero PreSieveWeight means no rock correction.
	LabMax            float64 `yaml:"lab_max" json:"lab_max"`
	LeftOnSieveWeight float64 `yaml:"left_on_sieve_weight,omitempty" json:"left_on_sieve_weight,omitempty"`
	PreSieveWeight    float64 `yaml:"pre_sieve_weight,omitempty" json:"pre_sieve_weight,omitempty"`

	// Calibration overrides the configured constants for this report only.
	Calibration *fieldtest.Calibration `yaml:"calibration,omitempty" json:"calibration,omitempty"`

	Notes string `yaml:"notes,omitempty" json:"notes,omitempty"`
}

// HasRockCorrection reports whether the report carries sieve weights.
func (r FieldReport) HasRockCorrection() bool {
	return r.PreSieveWeight != 0
}

// ReportResult holds every value derived from a FieldReport.
type ReportResult struct {
	ReportID        string  `json:"report_id"`
	SandUsed        float64 `json:"sand_used"`
	WetDensity      float64 `json:"wet_density"`
	MoistureContent float64 `json:"moisture_content"`
	DryDensity      float64 `json:"dry_density"`
	// RockCorrection is nil when the report has no sieve weights.
	RockCorrection *float64 `json:"rock_correction,omitempty"`
	// LabMax is the lab maximum compaction was measured against, corrected
	// for oversize when RockCorrection is set.
	LabMax          float64 `json:"lab_max"`
	Compaction      float64 `json:"compaction"`
	RequiredPercent float64 `json:"required_percent"`
	Passed          bool    `json:"passed"`
}
