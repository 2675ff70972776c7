package cli

import (
	"github.com/valter-silva-au/billios/internal/core"
	"github.com/valter-silva-au/billios/internal/observability"
)

// Service instances, set during app initialization in app.go.
var (
	Runner      core.FormulaRunner
	ReportMgr   core.ReportManager
	Evaluator   core.ReportEvaluator
	EventLog    observability.EventLog
	MetricsCalc observability.MetricsCalculator
)
