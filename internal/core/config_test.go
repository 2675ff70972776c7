package core

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/valter-silva-au/billios/pkg/fieldtest"
	"github.com/valter-silva-au/billios/pkg/models"
)

// --- Helper ---

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

// --- LoadConfig tests ---

func TestLoadConfig_Defaults_WhenNoFile(t *testing.T) {
	dir := t.TempDir()
	cm := NewConfigurationManager(dir)

	cfg, err := cm.LoadConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Calibration != fieldtest.DefaultCalibration() {
		t.Errorf("Calibration = %+v, want defaults", cfg.Calibration)
	}
	if cfg.RequiredCompaction != 95 {
		t.Errorf("RequiredCompaction = %v, want 95", cfg.RequiredCompaction)
	}
	if cfg.ReportIDPrefix != "FT" {
		t.Errorf("ReportIDPrefix = %q, want %q", cfg.ReportIDPrefix, "FT")
	}
	if cfg.ReportIDPadWidth != 5 {
		t.Errorf("ReportIDPadWidth = %d, want 5", cfg.ReportIDPadWidth)
	}
	if cfg.Strict {
		t.Error("Strict = true, want false")
	}
}

func TestLoadConfig_ReadsBilliosrc(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".billiosrc.yaml", `
calibration:
  sand_in_cone: 3.42
  sand_density: 89.5
  specific_gravity: 2.65
compaction:
  required_percent: 98
report_id:
  prefix: "NDT"
  pad_width: 3
strict: true
`)

	cfg, err := NewConfigurationManager(dir).LoadConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := fieldtest.Calibration{SandInCone: 3.42, SandDensity: 89.5, SpecificGravity: 2.65}
	if cfg.Calibration != want {
		t.Errorf("Calibration = %+v, want %+v", cfg.Calibration, want)
	}
	if cfg.RequiredCompaction != 98 {
		t.Errorf("RequiredCompaction = %v, want 98", cfg.RequiredCompaction)
	}
	if cfg.ReportIDPrefix != "NDT" || cfg.ReportIDPadWidth != 3 {
		t.Errorf("report ID = %q/%d, want NDT/3", cfg.ReportIDPrefix, cfg.ReportIDPadWidth)
	}
	if !cfg.Strict {
		t.Error("Strict = false, want true")
	}
}

func TestLoadConfig_PartialFileKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".billiosrc.yaml", "calibration:\n  sand_density: 91\n")

	cfg, err := NewConfigurationManager(dir).LoadConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Calibration.SandDensity != 91 {
		t.Errorf("SandDensity = %v, want 91", cfg.Calibration.SandDensity)
	}
	if cfg.Calibration.SandInCone != fieldtest.DefaultSandInCone {
		t.Errorf("SandInCone = %v, want default", cfg.Calibration.SandInCone)
	}
	if cfg.RequiredCompaction != 95 {
		t.Errorf("RequiredCompaction = %v, want 95", cfg.RequiredCompaction)
	}
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".billiosrc.yaml", "calibration:\n  sand_density: 91\n")
	t.Setenv("BILLIOS_CALIBRATION_SAND_DENSITY", "87.25")

	cfg, err := NewConfigurationManager(dir).LoadConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Calibration.SandDensity != 87.25 {
		t.Errorf("SandDensity = %v, want 87.25", cfg.Calibration.SandDensity)
	}
}

func TestLoadConfig_EnvOverridesNestedKeys(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".billiosrc.yaml", "compaction:\n  required_percent: 92\nreport_id:\n  prefix: FT\n")
	t.Setenv("BILLIOS_COMPACTION_REQUIRED_PERCENT", "98")
	t.Setenv("BILLIOS_REPORT_ID_PREFIX", "NDT")
	t.Setenv("BILLIOS_REPORT_ID_PAD_WIDTH", "3")
	t.Setenv("BILLIOS_STRICT", "true")

	cfg, err := NewConfigurationManager(dir).LoadConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.RequiredCompaction != 98 {
		t.Errorf("RequiredCompaction = %v, want 98", cfg.RequiredCompaction)
	}
	if cfg.ReportIDPrefix != "NDT" {
		t.Errorf("ReportIDPrefix = %q, want NDT", cfg.ReportIDPrefix)
	}
	if cfg.ReportIDPadWidth != 3 {
		t.Errorf("ReportIDPadWidth = %d, want 3", cfg.ReportIDPadWidth)
	}
	if !cfg.Strict {
		t.Error("Strict = false, want true")
	}
}

// Config is filled key by key in LoadConfig; a decode tag on it would name a
// key that no loader reads.
func TestConfig_CarriesNoDecodeTags(t *testing.T) {
	typ := reflect.TypeOf(models.Config{})
	for i := range typ.NumField() {
		f := typ.Field(i)
		for _, key := range []string{"yaml", "mapstructure"} {
			if tag, ok := f.Tag.Lookup(key); ok {
				t.Errorf("Config.%s has %s tag %q", f.Name, key, tag)
			}
		}
	}
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".billiosrc.yaml", "calibration: [unclosed\n")

	_, err := NewConfigurationManager(dir).LoadConfig()
	if err == nil {
		t.Fatal("expected error for malformed YAML")
	}
	if !strings.Contains(err.Error(), ".billiosrc") {
		t.Errorf("error %q should mention .billiosrc", err)
	}
}

// --- ValidateConfig tests ---

func TestValidateConfig_Defaults(t *testing.T) {
	cm := NewConfigurationManager(t.TempDir())
	if err := cm.ValidateConfig(DefaultConfig()); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestValidateConfig_Nil(t *testing.T) {
	cm := NewConfigurationManager(t.TempDir())
	if err := cm.ValidateConfig(nil); err == nil {
		t.Error("expected error for nil config")
	}
}

func TestValidateConfig_ReportsEveryProblem(t *testing.T) {
	cm := NewConfigurationManager(t.TempDir())
	cfg := DefaultConfig()
	cfg.Calibration.SandInCone = 0
	cfg.Calibration.SpecificGravity = -2.7
	cfg.RequiredCompaction = 0
	cfg.ReportIDPrefix = "ft"
	cfg.ReportIDPadWidth = 11

	err := cm.ValidateConfig(cfg)
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{
		"calibration.sand_in_cone",
		"calibration.specific_gravity",
		"compaction.required_percent",
		"report_id.prefix",
		"report_id.pad_width",
	} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error should mention %s, got: %v", want, err)
		}
	}
	if strings.Contains(err.Error(), "calibration.sand_density") {
		t.Errorf("sand_density is valid and should not be reported: %v", err)
	}
}
