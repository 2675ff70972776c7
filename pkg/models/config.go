package models

import "github.com/valter-silva-au/billios/pkg/fieldtest"

// Config holds the settings read from .billiosrc via Viper. LoadConfig maps
// each field from the key named in its comment; Config is never decoded
// directly, so it carries no decode tags.
type Config struct {
	// Calibration supplies the constants every calculator falls back to
	// (calibration.sand_in_cone, calibration.sand_density,
	// calibration.specific_gravity).
	Calibration fieldtest.Calibration
	// RequiredCompaction is the minimum percent compaction a report must
	// reach to pass (compaction.required_percent).
	RequiredCompaction float64
	// ReportIDPrefix is report_id.prefix.
	ReportIDPrefix string
	// ReportIDPadWidth is report_id.pad_width.
	ReportIDPadWidth int
	// Strict rejects non-finite results instead of printing Inf or NaN
	// (strict).
	Strict bool
}
