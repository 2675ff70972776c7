// Package storage persists field reports as YAML files under the base path.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/valter-silva-au/billios/pkg/models"
	"gopkg.in/yaml.v3"
)

// ReportFilter specifies criteria for filtering stored reports.
// All specified fields use AND logic: a report must match every criterion.
type ReportFilter struct {
	Status   []models.ReportStatus
	Location string
}

// ReportsFile represents the top-level structure of reports.yaml.
type ReportsFile struct {
	Version string                        `yaml:"version"`
	Reports map[string]models.FieldReport `yaml:"reports"`
}

// ReportStoreManager defines the interface for managing the field report
// register.
type ReportStoreManager interface {
	AddReport(report models.FieldReport) error
	UpdateReport(report models.FieldReport) error
	RemoveReport(reportID string) error
	GetReport(reportID string) (*models.FieldReport, error)
	ListReports(filter ReportFilter) ([]models.FieldReport, error)
	Load() error
	Save() error
}

// fileReportStore is safe for concurrent use.
type fileReportStore struct {
	basePath string

	mu   sync.RWMutex
	data ReportsFile
}

// NewReportStoreManager creates a new ReportStoreManager backed by a
// reports.yaml file in the given base directory.
func NewReportStoreManager(basePath string) ReportStoreManager {
	return &fileReportStore{
		basePath: basePath,
		data:     emptyReportsFile(),
	}
}

func emptyReportsFile() ReportsFile {
	return ReportsFile{
		Version: "1.0",
		Reports: make(map[string]models.FieldReport),
	}
}

func (m *fileReportStore) filePath() string {
	return filepath.Join(m.basePath, "reports.yaml")
}

func (m *fileReportStore) AddReport(report models.FieldReport) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if report.ID == "" {
		return fmt.Errorf("adding report: ID must not be empty")
	}
	if _, exists := m.data.Reports[report.ID]; exists {
		return fmt.Errorf("adding report: report %s already exists", report.ID)
	}
	m.data.Reports[report.ID] = report
	return nil
}

// UpdateReport replaces the stored report with the same ID.
func (m *fileReportStore) UpdateReport(report models.FieldReport) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.data.Reports[report.ID]; !exists {
		return fmt.Errorf("updating report: report %s not found", report.ID)
	}
	m.data.Reports[report.ID] = report
	return nil
}

func (m *fileReportStore) RemoveReport(reportID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	reportID = normalizeReportID(reportID)
	if _, exists := m.data.Reports[reportID]; !exists {
		return fmt.Errorf("removing report: report %s not found", reportID)
	}
	delete(m.data.Reports, reportID)
	return nil
}

func (m *fileReportStore) GetReport(reportID string) (*models.FieldReport, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	reportID = normalizeReportID(reportID)
	report, exists := m.data.Reports[reportID]
	if !exists {
		return nil, fmt.Errorf("report %s not found", reportID)
	}
	return &report, nil
}

// ListReports returns the reports matching filter, ordered by ID.
func (m *fileReportStore) ListReports(filter ReportFilter) ([]models.FieldReport, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	reports := make([]models.FieldReport, 0, len(m.data.Reports))
	for _, r := range m.data.Reports {
		if matchesReportFilter(r, filter) {
			reports = append(reports, r)
		}
	}
	sort.Slice(reports, func(i, j int) bool {
		return reports[i].ID < reports[j].ID
	})
	return reports, nil
}

func matchesReportFilter(r models.FieldReport, filter ReportFilter) bool {
	if len(filter.Status) > 0 && !containsStatus(filter.Status, r.Status) {
		return false
	}
	if filter.Location != "" && !strings.EqualFold(r.Location, filter.Location) {
		return false
	}
	return true
}

func containsStatus(haystack []models.ReportStatus, needle models.ReportStatus) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}

// normalizeReportID trims whitespace and upper-cases the ID so "ft-00001"
// finds FT-00001.
func normalizeReportID(reportID string) string {
	return strings.ToUpper(strings.TrimSpace(reportID))
}

func (m *fileReportStore) Load() error {
	data, err := os.ReadFile(m.filePath())
	if err != nil {
		if os.IsNotExist(err) {
			m.mu.Lock()
			m.data = emptyReportsFile()
			m.mu.Unlock()
			return nil
		}
		return fmt.Errorf("loading reports: %w", err)
	}

	var rf ReportsFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return fmt.Errorf("loading reports: parsing YAML: %w", err)
	}
	if rf.Reports == nil {
		rf.Reports = make(map[string]models.FieldReport)
	}

	m.mu.Lock()
	m.data = rf
	m.mu.Unlock()
	return nil
}

func (m *fileReportStore) Save() error {
	// Exclusive so two saves never interleave their writes.
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := os.MkdirAll(m.basePath, 0o750); err != nil {
		return fmt.Errorf("saving reports: creating directory: %w", err)
	}
	data, err := yaml.Marshal(&m.data)
	if err != nil {
		return fmt.Errorf("saving reports: marshaling YAML: %w", err)
	}
	if err := os.WriteFile(m.filePath(), data, 0o600); err != nil {
		return fmt.Errorf("saving reports: writing file: %w", err)
	}
	return nil
}
