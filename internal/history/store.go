// Package history stores completed task run records. The memory store is
// the default; the sqlite store keeps records across restarts.
package history

import "github.com/venlin/kern/internal/kernel"

// Store is the run-history backend.
type Store interface {
	kernel.RecordSink

	// Recent returns up to limit records across all tasks, newest first.
	Recent(limit int) ([]kernel.RunRecord, error)

	// ForTask returns up to limit records for one task, newest first.
	ForTask(task string, limit int) ([]kernel.RunRecord, error)

	Close() error
}

// DefaultLimit caps result sizes when callers pass a non-positive limit.
const DefaultLimit = 50
