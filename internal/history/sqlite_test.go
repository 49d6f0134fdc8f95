package history

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/venlin/kern/internal/kernel"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		_ = s.Close()
	})
	return s
}

func TestSQLiteStore_AppendAndQuery(t *testing.T) {
	s := newTestSQLiteStore(t)

	now := time.Now().UTC().Truncate(time.Second)
	rec := kernel.RunRecord{
		Task:         "heartbeat",
		InvocationID: "run-1",
		Trigger:      kernel.TriggerSchedule,
		StartedAt:    now,
		FinishedAt:   now.Add(time.Second),
		Status:       kernel.StatusSuccess,
		Result:       map[string]any{"status": "ok"},
		Logs: []kernel.LogEntry{
			{Time: now, Level: "info", Message: "fired"},
		},
	}
	if err := s.Append(rec); err != nil {
		t.Fatal(err)
	}
	if err := s.Append(kernel.RunRecord{
		Task:         "demo:generate_post",
		InvocationID: "run-2",
		Trigger:      kernel.TriggerManual,
		StartedAt:    now,
		FinishedAt:   now,
		Status:       kernel.StatusError,
		Error:        "missing topic",
	}); err != nil {
		t.Fatal(err)
	}

	recs, err := s.ForTask("heartbeat", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 1 {
		t.Fatalf("ForTask() returned %d records, want 1", len(recs))
	}

	got := recs[0]
	if got.InvocationID != "run-1" || got.Trigger != kernel.TriggerSchedule {
		t.Errorf("unexpected record: %+v", got)
	}
	if len(got.Logs) != 1 || got.Logs[0].Message != "fired" {
		t.Errorf("logs not preserved: %v", got.Logs)
	}

	recent, err := s.Recent(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(recent) != 2 || recent[0].InvocationID != "run-2" {
		t.Errorf("Recent() order wrong: %v", recent)
	}
	if recent[0].Error != "missing topic" {
		t.Errorf("error not preserved: %q", recent[0].Error)
	}
}
