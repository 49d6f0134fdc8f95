package kernel

import (
	"context"
	"time"
)

// TaskFunc is the unit of work. Handlers receive a fresh TaskContext per
// invocation and the arguments of this particular run. The returned value
// must be JSON-serializable; it ends up verbatim in the run result.
type TaskFunc func(ctx context.Context, tc *TaskContext, args Args) (any, error)

// Args carries the keyword arguments of a single invocation. HTTP runs
// fill it from query parameters, scheduled entries from their configured
// fixed arguments.
type Args map[string]any

// String returns the value for key coerced to a string, or "" when absent.
func (a Args) String(key string) string {
	v, ok := a[key]
	if !ok {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

// Trigger labels what caused an invocation.
const (
	TriggerManual   = "manual"
	TriggerSchedule = "schedule"
)

// Run statuses recorded in history.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Result is the normalized outcome of a single invocation. Handler
// failures are values here, never propagated errors.
type Result struct {
	OK           bool   `json:"ok"`
	Result       any    `json:"result,omitempty"`
	Err          string `json:"error,omitempty"`
	InvocationID string `json:"invocation_id,omitempty"`
	Duration     string `json:"duration,omitempty"`
}

// LogEntry is one line emitted by a handler during a run.
type LogEntry struct {
	Time    time.Time `json:"time"`
	Level   string    `json:"level,omitempty"`
	Message string    `json:"message,omitempty"`
}

// RunRecord captures one completed invocation for observability.
type RunRecord struct {
	Task         string     `json:"task"`
	InvocationID string     `json:"invocation_id"`
	Trigger      string     `json:"trigger"`
	StartedAt    time.Time  `json:"started_at"`
	FinishedAt   time.Time  `json:"finished_at"`
	Status       string     `json:"status"`
	Result       any        `json:"result,omitempty"`
	Error        string     `json:"error,omitempty"`
	Logs         []LogEntry `json:"logs,omitempty"`
}

// RecordSink receives completed run records. The history package provides
// the real implementations; the kernel only depends on this boundary.
type RecordSink interface {
	Append(rec RunRecord) error
}

// EntryStatus describes a live scheduled entry.
type EntryStatus struct {
	Task     string        `json:"task"`
	Interval time.Duration `json:"interval"`
	Running  bool          `json:"running"`
	LastFire time.Time     `json:"last_fire"`
	NextFire time.Time     `json:"next_fire"`
}
