// Package core contains the business logic for billios: configuration,
// report ID generation, report evaluation and the report lifecycle.
package core

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/spf13/viper"
	"github.com/valter-silva-au/billios/pkg/fieldtest"
	"github.com/valter-silva-au/billios/pkg/models"
)

// validPrefixPattern matches uppercase alphanumeric prefixes between 1 and 10 characters.
var validPrefixPattern = regexp.MustCompile(`^[A-Z0-9]{1,10}$`)

// ConfigurationManager defines the interface for loading and validating the
// .billiosrc configuration file.
type ConfigurationManager interface {
	LoadConfig() (*models.Config, error)
	ValidateConfig(cfg *models.Config) error
}

// viperConfigManager implements ConfigurationManager using Viper for
// reading YAML configuration files.
type viperConfigManager struct {
	// basePath is the root directory where .billiosrc resides.
	basePath string
}

// NewConfigurationManager creates a new ConfigurationManager that reads
// .billiosrc relative to basePath.
func NewConfigurationManager(basePath string) ConfigurationManager {
	return &viperConfigManager{basePath: basePath}
}

// DefaultConfig returns a Config populated with the calibration defaults and
// a 95% compaction requirement.
func DefaultConfig() *models.Config {
	return &models.Config{
		Calibration:        fieldtest.DefaultCalibration(),
		RequiredCompaction: 95,
		ReportIDPrefix:     "FT",
		ReportIDPadWidth:   5,
		Strict:             false,
	}
}

// LoadConfig reads .billiosrc from the base path using Viper. Environment
// variables prefixed with BILLIOS_ (e.g. BILLIOS_CALIBRATION_SAND_DENSITY)
// override file values. If the file does not exist, defaults are returned.
func (cm *viperConfigManager) LoadConfig() (*models.Config, error) {
	cfg := DefaultConfig()

	v := viper.New()
	v.SetConfigName(".billiosrc")
	v.SetConfigType("yaml")
	v.AddConfigPath(cm.basePath)
	v.SetEnvPrefix("BILLIOS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set Viper defaults so missing keys fall back gracefully.
	v.SetDefault("calibration.sand_in_cone", cfg.Calibration.SandInCone)
	v.SetDefault("calibration.sand_density", cfg.Calibration.SandDensity)
	v.SetDefault("calibration.specific_gravity", cfg.Calibration.SpecificGravity)
	v.SetDefault("compaction.required_percent", cfg.RequiredCompaction)
	v.SetDefault("report_id.prefix", cfg.ReportIDPrefix)
	v.SetDefault("report_id.pad_width", cfg.ReportIDPadWidth)
	v.SetDefault("strict", cfg.Strict)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading .billiosrc: %w", err)
		}
		// No config file found: defaults and environment only.
	}

	cfg.Calibration = fieldtest.Calibration{
		SandInCone:      v.GetFloat64("calibration.sand_in_cone"),
		SandDensity:     v.GetFloat64("calibration.sand_density"),
		SpecificGravity: v.GetFloat64("calibration.specific_gravity"),
	}
	cfg.RequiredCompaction = v.GetFloat64("compaction.required_percent")
	cfg.ReportIDPrefix = v.GetString("report_id.prefix")
	cfg.ReportIDPadWidth = v.GetInt("report_id.pad_width")
	cfg.Strict = v.GetBool("strict")

	return cfg, nil
}

// ValidateConfig checks the configuration for invalid values and returns a
// clear error message identifying every problem found.
func (cm *viperConfigManager) ValidateConfig(cfg *models.Config) error {
	if cfg == nil {
		return fmt.Errorf("configuration is nil")
	}

	var errs []string

	constants := []struct {
		key   string
		value float64
	}{
		{"calibration.sand_in_cone", cfg.Calibration.SandInCone},
		{"calibration.sand_density", cfg.Calibration.SandDensity},
		{"calibration.specific_gravity", cfg.Calibration.SpecificGravity},
	}
	for _, c := range constants {
		if c.value <= 0 {
			errs = append(errs, fmt.Sprintf("%s must be positive, got %v", c.key, c.value))
		}
	}

	if cfg.RequiredCompaction <= 0 || cfg.RequiredCompaction > 150 {
		errs = append(errs, fmt.Sprintf(
			"compaction.required_percent %v is invalid, must be in (0, 150]",
			cfg.RequiredCompaction,
		))
	}

	if !validPrefixPattern.MatchString(cfg.ReportIDPrefix) {
		errs = append(errs, fmt.Sprintf(
			"report_id.prefix %q is invalid, must match [A-Z0-9]{1,10}",
			cfg.ReportIDPrefix,
		))
	}

	if cfg.ReportIDPadWidth < 0 || cfg.ReportIDPadWidth > 10 {
		errs = append(errs, fmt.Sprintf(
			"report_id.pad_width %d is invalid, must be between 0 and 10",
			cfg.ReportIDPadWidth,
		))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}
