package core

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"pgregory.net/rapid"
)

// Property: Report ID Uniqueness and Format
// Every call to GenerateReportID produces a new ID of the form
// PREFIX-NNN with the configured padding, and the counter file records the
// number of IDs issued.
func TestProperty_ReportIDUniqueness(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(2, 60).Draw(rt, "n")
		prefix := rapid.StringMatching(`[A-Z]{2,6}`).Draw(rt, "prefix")
		pad := rapid.IntRange(0, 6).Draw(rt, "pad")

		dir, err := os.MkdirTemp("", "reportid-property-*")
		if err != nil {
			t.Fatalf("failed to create temp dir: %v", err)
		}
		defer os.RemoveAll(dir)

		gen := NewReportIDGenerator(dir, prefix, pad)
		format := regexp.MustCompile(fmt.Sprintf(`^%s-[0-9]{%d,}$`, prefix, max(pad, 1)))

		seen := make(map[string]struct{}, n)
		for i := 0; i < n; i++ {
			id, err := gen.GenerateReportID()
			if err != nil {
				t.Fatalf("GenerateReportID failed on call %d: %v", i+1, err)
			}
			if !format.MatchString(id) {
				t.Fatalf("ID %q does not match %s", id, format)
			}
			if _, exists := seen[id]; exists {
				t.Fatalf("duplicate report ID %q on call %d", id, i+1)
			}
			seen[id] = struct{}{}
		}

		data, err := os.ReadFile(filepath.Join(dir, ".report_counter"))
		if err != nil {
			t.Fatalf("failed to read counter file: %v", err)
		}
		if string(data) != fmt.Sprintf("%d", n) {
			t.Fatalf("expected counter file to contain %d, got %s", n, string(data))
		}
	})
}
