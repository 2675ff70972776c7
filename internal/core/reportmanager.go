package core

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/valter-silva-au/billios/pkg/fieldtest"
	"github.com/valter-silva-au/billios/pkg/models"
)

// ReportStore is the persistence the report manager needs. It is satisfied
// by storage.ReportStoreManager through an adapter in the app wiring.
type ReportStore interface {
	AddReport(report models.FieldReport) error
	UpdateReport(report models.FieldReport) error
	RemoveReport(reportID string) error
	GetReport(reportID string) (*models.FieldReport, error)
	ListReports(status []models.ReportStatus) ([]models.FieldReport, error)
	Load() error
	Save() error
}

// ReportManager handles the field report lifecycle: register, evaluate,
// list and remove.
type ReportManager interface {
	AddReport(report models.FieldReport) (*models.FieldReport, error)
	GetReport(reportID string) (*models.FieldReport, error)
	ListReports(status ...models.ReportStatus) ([]models.FieldReport, error)
	RemoveReport(reportID string) error
	EvaluateReport(reportID string) (*models.ReportResult, error)
}

type reportManager struct {
	store     ReportStore
	idGen     ReportIDGenerator
	evaluator ReportEvaluator
	logger    EventLogger
	now       func() time.Time

	// mu serialises operations in this process; lockPath, when set, names
	// the flock file that serialises them across processes.
	mu       sync.Mutex
	lockPath string
}

// NewReportManager creates a ReportManager. Every operation reloads the
// register from the store first, so a long-running process sees reports
// written by others. lockPath names the file locked around each
// load-modify-save cycle; an empty lockPath locks within this process only.
// logger may be nil.
func NewReportManager(store ReportStore, idGen ReportIDGenerator, evaluator ReportEvaluator, logger EventLogger, lockPath string) ReportManager {
	return &reportManager{
		store:     store,
		idGen:     idGen,
		evaluator: evaluator,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
		lockPath:  lockPath,
	}
}

// withRegister runs fn holding the register lock, after reloading the store.
func (m *reportManager) withRegister(fn func() error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.lockPath != "" {
		lock, err := acquireFileLock(m.lockPath)
		if err != nil {
			return fmt.Errorf("locking report register: %w", err)
		}
		defer func() { _ = lock.Release() }()
	}

	if err := m.store.Load(); err != nil {
		return err
	}
	return fn()
}

// AddReport assigns an ID (unless one is set), marks the report pending,
// stamps the test time if missing and saves it.
func (m *reportManager) AddReport(report models.FieldReport) (*models.FieldReport, error) {
	err := m.withRegister(func() error {
		if report.ID == "" {
			id, err := m.idGen.GenerateReportID()
			if err != nil {
				return fmt.Errorf("generating report ID: %w", err)
			}
			report.ID = id
		}
		if report.Tested.IsZero() {
			report.Tested = m.now()
		}
		report.Status = models.ReportPending

		if err := m.store.AddReport(report); err != nil {
			return err
		}
		return m.store.Save()
	})
	if err != nil {
		return nil, err
	}

	logEvent(m.logger, EventReportAdded, map[string]any{
		"report_id": report.ID,
		"location":  report.Location,
	})
	return &report, nil
}

func (m *reportManager) GetReport(reportID string) (*models.FieldReport, error) {
	var report *models.FieldReport
	err := m.withRegister(func() error {
		var err error
		report, err = m.store.GetReport(reportID)
		return err
	})
	return report, err
}

func (m *reportManager) ListReports(status ...models.ReportStatus) ([]models.FieldReport, error) {
	var reports []models.FieldReport
	err := m.withRegister(func() error {
		var err error
		reports, err = m.store.ListReports(status)
		return err
	})
	return reports, err
}

func (m *reportManager) RemoveReport(reportID string) error {
	err := m.withRegister(func() error {
		if err := m.store.RemoveReport(reportID); err != nil {
			return err
		}
		return m.store.Save()
	})
	if err != nil {
		return err
	}
	logEvent(m.logger, EventReportRemoved, map[string]any{"report_id": reportID})
	return nil
}

// EvaluateReport runs the calculation chain for the stored report and
// records the pass/fail status. A report whose values are not finite keeps
// its previous status; the attempt is still logged with finite set to false
// and the evaluation error is returned with the partial result.
func (m *reportManager) EvaluateReport(reportID string) (*models.ReportResult, error) {
	var (
		report  *models.FieldReport
		result  *models.ReportResult
		evalErr error
	)
	err := m.withRegister(func() error {
		var err error
		report, err = m.store.GetReport(reportID)
		if err != nil {
			return err
		}

		result, evalErr = m.evaluator.Evaluate(*report)
		if evalErr != nil {
			return nil
		}

		report.Status = models.ReportFailed
		if result.Passed {
			report.Status = models.ReportPassed
		}
		if err := m.store.UpdateReport(*report); err != nil {
			return err
		}
		return m.store.Save()
	})
	if err != nil {
		return nil, err
	}

	if evalErr != nil {
		logEvent(m.logger, EventReportEvaluated, map[string]any{
			"report_id": report.ID,
			"finite":    !errors.Is(evalErr, fieldtest.ErrNonFinite),
			"error":     evalErr.Error(),
		})
		return result, fmt.Errorf("evaluating report %s: %w", report.ID, evalErr)
	}

	logEvent(m.logger, EventReportEvaluated, map[string]any{
		"report_id":   report.ID,
		"finite":      true,
		"compaction":  result.Compaction,
		"dry_density": result.DryDensity,
		"passed":      result.Passed,
	})
	return result, nil
}
