package core

import (
	"fmt"
	"testing"

	"pgregory.net/rapid"
)

// =============================================================================
// Property: Calibration Written To .billiosrc Is Read Back
// =============================================================================

// *For any* positive calibration constants written to .billiosrc, LoadConfig
// SHALL return those constants and ValidateConfig SHALL accept them.
func TestProperty_CalibrationRoundTrip(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		sandInCone := float64(rapid.IntRange(1, 1000).Draw(rt, "sandInCone")) / 100
		sandDensity := float64(rapid.IntRange(500, 1200).Draw(rt, "sandDensity")) / 10
		gravity := float64(rapid.IntRange(200, 300).Draw(rt, "gravity")) / 100
		required := float64(rapid.IntRange(1, 150).Draw(rt, "required"))

		dir := t.TempDir()
		writeFile(t, dir, ".billiosrc.yaml", fmt.Sprintf(
			"calibration:\n  sand_in_cone: %v\n  sand_density: %v\n  specific_gravity: %v\ncompaction:\n  required_percent: %v\n",
			sandInCone, sandDensity, gravity, required,
		))

		cm := NewConfigurationManager(dir)
		cfg, err := cm.LoadConfig()
		if err != nil {
			rt.Fatalf("loading config: %v", err)
		}

		if cfg.Calibration.SandInCone != sandInCone {
			rt.Errorf("SandInCone = %v, want %v", cfg.Calibration.SandInCone, sandInCone)
		}
		if cfg.Calibration.SandDensity != sandDensity {
			rt.Errorf("SandDensity = %v, want %v", cfg.Calibration.SandDensity, sandDensity)
		}
		if cfg.Calibration.SpecificGravity != gravity {
			rt.Errorf("SpecificGravity = %v, want %v", cfg.Calibration.SpecificGravity, gravity)
		}
		if cfg.RequiredCompaction != required {
			rt.Errorf("RequiredCompaction = %v, want %v", cfg.RequiredCompaction, required)
		}
		if err := cm.ValidateConfig(cfg); err != nil {
			rt.Errorf("valid config rejected: %v", err)
		}
	})
}
