package kernel

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/xid"
	"github.com/rs/zerolog/log"

	"github.com/venlin/kern/internal/logging"
)

// MaxLogsPerRun caps the number of log lines captured per invocation.
const MaxLogsPerRun = 1000

// TaskContext is the per-invocation handle passed to handlers. It is
// created fresh for every run and discarded afterwards, so state never
// leaks between a scheduled run and a manual run of the same task.
type TaskContext struct {
	Task         string
	InvocationID string
	Logger       logging.InternalLogger
	Shared       *State

	capture *logCapture
}

func newTaskContext(task string, shared *State) *TaskContext {
	id := xid.New().String()

	capture := &logCapture{}
	zlog := log.With().
		Str("task", task).
		Str("invocation_id", id).
		Logger()

	return &TaskContext{
		Task:         task,
		InvocationID: id,
		Logger: logging.NewMultiLogger(
			logging.NewZLogger(zlog),
			capture,
		),
		Shared:  shared,
		capture: capture,
	}
}

// logCapture buffers handler log lines for the run record. The mutex is
// needed because a handler may log from goroutines it spawned itself.
type logCapture struct {
	mu      sync.Mutex
	entries []LogEntry
}

var _ logging.InternalLogger = (*logCapture)(nil)

func (c *logCapture) append(level, msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = append(c.entries, LogEntry{
		Time:    time.Now(),
		Level:   level,
		Message: msg,
	})
	if len(c.entries) > MaxLogsPerRun {
		c.entries = c.entries[1:]
	}
}

func (c *logCapture) snapshot() []LogEntry {
	c.mu.Lock()
	defer c.mu.Unlock()

	cpy := make([]LogEntry, len(c.entries))
	copy(cpy, c.entries)
	return cpy
}

func (c *logCapture) Debug(format string, args ...any) {
	c.append("debug", fmt.Sprintf(format, args...))
}

func (c *logCapture) Info(format string, args ...any) {
	c.append("info", fmt.Sprintf(format, args...))
}

func (c *logCapture) Warn(format string, args ...any) {
	c.append("warn", fmt.Sprintf(format, args...))
}

func (c *logCapture) Error(format string, args ...any) {
	c.append("error", fmt.Sprintf(format, args...))
}
