// Package internal provides the App struct that wires all components of
// billios together and initializes the CLI layer.
package internal

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/valter-silva-au/billios/internal/cli"
	"github.com/valter-silva-au/billios/internal/core"
	"github.com/valter-silva-au/billios/internal/observability"
	"github.com/valter-silva-au/billios/internal/storage"
	"github.com/valter-silva-au/billios/pkg/models"
)

// App holds all service dependencies for billios.
type App struct {
	BasePath string

	// Configuration
	ConfigMgr core.ConfigurationManager
	Config    *models.Config

	// Storage layer
	ReportStore storage.ReportStoreManager

	// Core services
	IDGen     core.ReportIDGenerator
	Evaluator core.ReportEvaluator
	ReportMgr core.ReportManager
	Runner    core.FormulaRunner

	// Observability
	EventLog    observability.EventLog
	MetricsCalc observability.MetricsCalculator
}

// NewApp creates and wires all components. basePath is the directory holding
// .billiosrc, reports.yaml and the event log.
func NewApp(basePath string) (*App, error) {
	app := &App{BasePath: basePath}

	// --- Configuration ---
	app.ConfigMgr = core.NewConfigurationManager(basePath)
	cfg, err := app.ConfigMgr.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}
	if err := app.ConfigMgr.ValidateConfig(cfg); err != nil {
		return nil, err
	}
	app.Config = cfg

	// --- Storage layer ---
	app.ReportStore = storage.NewReportStoreManager(basePath)
	if err := app.ReportStore.Load(); err != nil {
		return nil, err
	}

	// --- Observability ---
	eventLogPath := filepath.Join(basePath, ".billios_events.jsonl")
	app.EventLog, err = observability.NewJSONLEventLog(eventLogPath)
	if err != nil {
		// Non-fatal: calculations still work without an event log.
		app.EventLog = nil
	}
	var evtAdapter core.EventLogger
	if app.EventLog != nil {
		evtAdapter = &eventLogAdapter{log: app.EventLog}
		app.MetricsCalc = observability.NewMetricsCalculator(app.EventLog)
	}

	// --- Core services ---
	app.IDGen = core.NewReportIDGenerator(basePath, cfg.ReportIDPrefix, cfg.ReportIDPadWidth)
	app.Evaluator = core.NewReportEvaluator(cfg.Calibration, cfg.RequiredCompaction)
	app.ReportMgr = core.NewReportManager(&reportStoreAdapter{mgr: app.ReportStore}, app.IDGen, app.Evaluator, evtAdapter,
		filepath.Join(basePath, ".reports.lock"))
	app.Runner = core.NewFormulaRunner(cfg.Calibration, cfg.Strict, evtAdapter)

	// --- Wire CLI package-level variables ---
	cli.Runner = app.Runner
	cli.ReportMgr = app.ReportMgr
	cli.Evaluator = app.Evaluator
	cli.EventLog = app.EventLog
	cli.MetricsCalc = app.MetricsCalc

	return app, nil
}

// Close releases resources held by the App, such as the event log file handle.
// It is safe to call Close on an App whose EventLog is nil.
func (a *App) Close() error {
	if a.EventLog != nil {
		return a.EventLog.Close()
	}
	return nil
}

// ResolveBasePath determines the billios data directory. BILLIOS_HOME wins,
// then the nearest ancestor of the working directory holding .billiosrc,
// then the working directory itself.
func ResolveBasePath() string {
	if home := os.Getenv("BILLIOS_HOME"); home != "" {
		return home
	}
	dir, err := os.Getwd()
	if err != nil {
		return "."
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, ".billiosrc")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	cwd, _ := os.Getwd()
	return cwd
}

// --- Adapters ---

// reportStoreAdapter adapts storage.ReportStoreManager to core.ReportStore.
type reportStoreAdapter struct {
	mgr storage.ReportStoreManager
}

func (a *reportStoreAdapter) AddReport(report models.FieldReport) error {
	return a.mgr.AddReport(report)
}

func (a *reportStoreAdapter) UpdateReport(report models.FieldReport) error {
	return a.mgr.UpdateReport(report)
}

func (a *reportStoreAdapter) RemoveReport(reportID string) error {
	return a.mgr.RemoveReport(reportID)
}

func (a *reportStoreAdapter) GetReport(reportID string) (*models.FieldReport, error) {
	return a.mgr.GetReport(reportID)
}

func (a *reportStoreAdapter) ListReports(status []models.ReportStatus) ([]models.FieldReport, error) {
	return a.mgr.ListReports(storage.ReportFilter{Status: status})
}

func (a *reportStoreAdapter) Load() error {
	return a.mgr.Load()
}

func (a *reportStoreAdapter) Save() error {
	return a.mgr.Save()
}

// eventLogAdapter adapts observability.EventLog to core.EventLogger.
type eventLogAdapter struct {
	log observability.EventLog
}

func (a *eventLogAdapter) LogEvent(eventType string, data map[string]any) error {
	level := observability.LevelInfo
	if finite, ok := data["finite"].(bool); ok && !finite {
		level = observability.LevelWarn
	}
	if passed, ok := data["passed"].(bool); ok && !passed {
		level = observability.LevelWarn
	}
	if _, ok := data["error"]; ok {
		level = observability.LevelWarn
	}
	return a.log.Write(observability.Event{
		Time:    time.Now().UTC(),
		Level:   level,
		Type:    eventType,
		Message: eventType,
		Data:    data,
	})
}
