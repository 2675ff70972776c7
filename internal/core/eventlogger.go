package core

// EventLogger is the subset of the observability event log that core
// services write to. Keeping it here means core never imports observability.
type EventLogger interface {
	LogEvent(eventType string, data map[string]any) error
}

// Event types written by core services.
const (
	EventCalculationPerformed = "calculation.performed"
	EventReportAdded          = "report.added"
	EventReportRemoved        = "report.removed"
	EventReportEvaluated      = "report.evaluated"
)

// logEvent writes to logger when one is configured. Event log failures never
// fail the operation that triggered them.
func logEvent(logger EventLogger, eventType string, data map[string]any) {
	if logger == nil {
		return
	}
	_ = logger.LogEvent(eventType, data)
}
