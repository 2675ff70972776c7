package observability

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DefaultWindow is the look-back window used when none is given.
const DefaultWindow = "7d"

// ParseSince turns a look-back window such as "7d" or "24h" into the instant
// that far before now. An empty window means DefaultWindow.
func ParseSince(window string, now time.Time) (time.Time, error) {
	window = strings.TrimSpace(window)
	if window == "" {
		window = DefaultWindow
	}
	if len(window) < 2 {
		return time.Time{}, fmt.Errorf("invalid window %q", window)
	}

	n, err := strconv.Atoi(window[:len(window)-1])
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid window %q: %w", window, err)
	}

	switch window[len(window)-1] {
	case 'd':
		return now.AddDate(0, 0, -n), nil
	case 'h':
		return now.Add(-time.Duration(n) * time.Hour), nil
	default:
		return time.Time{}, fmt.Errorf("unsupported window %q (use e.g. 7d, 30d, 24h)", window)
	}
}

// Metrics holds usage figures derived from the event log.
type Metrics struct {
	Calculations     int            `json:"calculations"`
	ByFormula        map[string]int `json:"by_formula"`
	NonFinite        int            `json:"non_finite"`
	ReportsAdded     int            `json:"reports_added"`
	ReportsEvaluated int            `json:"reports_evaluated"`
	ReportsPassed    int            `json:"reports_passed"`
	ReportsFailed    int            `json:"reports_failed"`
	// ReportsUnjudged counts evaluations that ended in an error, usually a
	// non-finite value, without a pass/fail verdict.
	ReportsUnjudged   int        `json:"reports_unjudged"`
	AverageCompaction float64    `json:"average_compaction"`
	EventCount        int        `json:"event_count"`
	OldestEvent       *time.Time `json:"oldest_event,omitempty"`
	NewestEvent       *time.Time `json:"newest_event,omitempty"`
}

// PassRate returns the share of evaluated reports that passed, or 0 when
// nothing was evaluated.
func (m *Metrics) PassRate() float64 {
	if m.ReportsEvaluated == 0 {
		return 0
	}
	return float64(m.ReportsPassed) / float64(m.ReportsEvaluated)
}

// MetricsCalculator derives metrics from the event log.
type MetricsCalculator interface {
	Calculate(since time.Time) (*Metrics, error)
}

type metricsCalculator struct {
	eventLog EventLog
}

// NewMetricsCalculator creates a MetricsCalculator that reads from eventLog.
func NewMetricsCalculator(eventLog EventLog) MetricsCalculator {
	return &metricsCalculator{eventLog: eventLog}
}

// Calculate aggregates every event recorded at or after since.
func (mc *metricsCalculator) Calculate(since time.Time) (*Metrics, error) {
	events, err := mc.eventLog.Read(EventFilter{Since: &since})
	if err != nil {
		return nil, fmt.Errorf("reading events for metrics: %w", err)
	}

	m := &Metrics{ByFormula: make(map[string]int)}
	m.EventCount = len(events)

	var compactionSum float64
	var compactionN int

	for i, event := range events {
		if i == 0 {
			t := event.Time
			m.OldestEvent = &t
		}
		t := event.Time
		m.NewestEvent = &t

		switch event.Type {
		case "calculation.performed":
			m.Calculations++
			if formula, ok := event.Data["formula"].(string); ok {
				m.ByFormula[formula]++
			}
			if finite, ok := event.Data["finite"].(bool); ok && !finite {
				m.NonFinite++
			}
		case "report.added":
			m.ReportsAdded++
		case "report.evaluated":
			_, errored := event.Data["error"]
			finite, ok := event.Data["finite"].(bool)
			if errored || (ok && !finite) {
				m.ReportsUnjudged++
				continue
			}
			m.ReportsEvaluated++
			if passed, ok := event.Data["passed"].(bool); ok && passed {
				m.ReportsPassed++
			} else {
				m.ReportsFailed++
			}
			// JSON numbers decode as float64.
			if c, ok := event.Data["compaction"].(float64); ok {
				compactionSum += c
				compactionN++
			}
		}
	}

	if compactionN > 0 {
		m.AverageCompaction = compactionSum / float64(compactionN)
	}

	return m, nil
}
