package core

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// ReportIDGenerator defines the interface for generating unique, sequential
// field report IDs.
type ReportIDGenerator interface {
	GenerateReportID() (string, error)
}

// fileReportIDGenerator implements ReportIDGenerator by persisting a counter
// in a .report_counter file on disk.
type fileReportIDGenerator struct {
	basePath string
	prefix   string
	padWidth int
}

// NewReportIDGenerator creates a new ReportIDGenerator that stores its
// counter in a .report_counter file within basePath. padWidth controls the
// zero-padding width of the numeric portion. Use 0 for no padding (e.g., FT-1).
func NewReportIDGenerator(basePath string, prefix string, padWidth int) ReportIDGenerator {
	return &fileReportIDGenerator{
		basePath: basePath,
		prefix:   prefix,
		padWidth: padWidth,
	}
}

// GenerateReportID reads the current counter, increments it, writes it back,
// and returns the formatted ID, e.g. FT-00001. A missing counter file starts
// the sequence at 1.
func (g *fileReportIDGenerator) GenerateReportID() (string, error) {
	if err := os.MkdirAll(g.basePath, 0o750); err != nil {
		return "", fmt.Errorf("creating base path for report counter: %w", err)
	}

	counterPath := filepath.Join(g.basePath, ".report_counter")

	lock, err := acquireFileLock(counterPath + ".lock")
	if err != nil {
		return "", fmt.Errorf("locking report counter: %w", err)
	}
	defer func() { _ = lock.Release() }()

	counter := 0
	data, err := os.ReadFile(counterPath)
	if err != nil && !os.IsNotExist(err) {
		return "", fmt.Errorf("reading report counter file: %w", err)
	}
	if err == nil {
		trimmed := strings.TrimSpace(string(data))
		counter, err = strconv.Atoi(trimmed)
		if err != nil {
			return "", fmt.Errorf("parsing report counter %q: %w", trimmed, err)
		}
	}

	counter++

	if err := os.WriteFile(counterPath, []byte(strconv.Itoa(counter)), 0o600); err != nil {
		return "", fmt.Errorf("writing report counter file: %w", err)
	}

	if g.padWidth > 0 {
		return fmt.Sprintf("%s-%0*d", g.prefix, g.padWidth, counter), nil
	}
	return fmt.Sprintf("%s-%d", g.prefix, counter), nil
}
