package kernel

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
)

type sinkRecorder struct {
	mu      sync.Mutex
	records []RunRecord
}

func (s *sinkRecorder) Append(rec RunRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, rec)
	return nil
}

func (s *sinkRecorder) all() []RunRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	cpy := make([]RunRecord, len(s.records))
	copy(cpy, s.records)
	return cpy
}

func newTestInvoker(t *testing.T, register func(r *Registry)) (*Invoker, *sinkRecorder) {
	t.Helper()
	r := NewRegistry()
	register(r)
	sink := &sinkRecorder{}
	return NewInvoker(r, NewState(nil), WithRecordSink(sink)), sink
}

func TestInvoker_Run(t *testing.T) {
	tests := []struct {
		name       string
		fn         TaskFunc
		args       Args
		wantOK     bool
		wantErr    string
		wantResult any
	}{
		{
			name: "success wraps result",
			fn: func(_ context.Context, _ *TaskContext, _ Args) (any, error) {
				return map[string]any{"status": "ok"}, nil
			},
			wantOK:     true,
			wantResult: map[string]any{"status": "ok"},
		},
		{
			name: "handler error is fail-soft",
			fn: func(_ context.Context, _ *TaskContext, _ Args) (any, error) {
				return nil, errors.New("missing topic")
			},
			wantErr: "missing topic",
		},
		{
			name: "handler panic is fail-soft",
			fn: func(_ context.Context, _ *TaskContext, _ Args) (any, error) {
				panic("boom")
			},
			wantErr: "task panicked: boom",
		},
		{
			name: "args reach the handler",
			fn: func(_ context.Context, _ *TaskContext, args Args) (any, error) {
				return args.String("topic"), nil
			},
			args:       Args{"topic": "go"},
			wantOK:     true,
			wantResult: "go",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv, _ := newTestInvoker(t, func(r *Registry) {
				if err := r.Register("subject", tt.fn); err != nil {
					t.Fatal(err)
				}
			})

			res, err := inv.Run(context.Background(), "subject", tt.args)
			if err != nil {
				t.Fatalf("Run() dispatch error = %v", err)
			}

			if res.OK != tt.wantOK {
				t.Errorf("Run() OK = %v, want %v", res.OK, tt.wantOK)
			}
			if tt.wantErr != "" && res.Err != tt.wantErr {
				t.Errorf("Run() error = %q, want %q", res.Err, tt.wantErr)
			}
			if tt.wantOK && fmt.Sprint(res.Result) != fmt.Sprint(tt.wantResult) {
				t.Errorf("Run() result = %v, want %v", res.Result, tt.wantResult)
			}
			if res.InvocationID == "" {
				t.Error("Run() produced no invocation id")
			}
		})
	}
}

func TestInvoker_UnknownTask(t *testing.T) {
	inv, _ := newTestInvoker(t, func(*Registry) {})

	_, err := inv.Run(context.Background(), "nonexistent", nil)
	var notFound TaskNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected TaskNotFoundError, got %v", err)
	}
}

func TestInvoker_RecordsHistory(t *testing.T) {
	inv, sink := newTestInvoker(t, func(r *Registry) {
		_ = r.Register("ok", func(_ context.Context, tc *TaskContext, _ Args) (any, error) {
			tc.Logger.Info("doing work")
			return "done", nil
		})
		_ = r.Register("bad", func(_ context.Context, _ *TaskContext, _ Args) (any, error) {
			return nil, errors.New("nope")
		})
	})

	if _, err := inv.Run(context.Background(), "ok", nil); err != nil {
		t.Fatal(err)
	}
	if _, err := inv.Run(context.Background(), "bad", nil); err != nil {
		t.Fatal(err)
	}

	records := sink.all()
	if len(records) != 2 {
		t.Fatalf("expected 2 run records, got %d", len(records))
	}

	if records[0].Status != StatusSuccess || records[0].Task != "ok" {
		t.Errorf("unexpected first record: %+v", records[0])
	}
	if records[1].Status != StatusError || records[1].Error != "nope" {
		t.Errorf("unexpected second record: %+v", records[1])
	}

	// handler log lines must land in the record
	found := false
	for _, entry := range records[0].Logs {
		if entry.Message == "doing work" {
			found = true
		}
	}
	if !found {
		t.Error("handler log line missing from run record")
	}
}

// Two in-flight runs of the same task must get distinct contexts, and
// each run's captured logs stay attributed to its own invocation.
func TestInvoker_InvocationIsolation(t *testing.T) {
	release := make(chan struct{})
	started := make(chan string, 2)

	inv, sink := newTestInvoker(t, func(r *Registry) {
		_ = r.Register("subject", func(_ context.Context, tc *TaskContext, _ Args) (any, error) {
			started <- tc.InvocationID
			tc.Logger.Info("run %s", tc.InvocationID)
			<-release
			return tc.InvocationID, nil
		})
	})

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := inv.Run(context.Background(), "subject", nil); err != nil {
				t.Error(err)
			}
		}()
	}

	first, second := <-started, <-started
	if first == second {
		t.Errorf("concurrent runs shared an invocation id: %s", first)
	}
	close(release)
	wg.Wait()

	for _, rec := range sink.all() {
		want := "run " + rec.InvocationID
		if len(rec.Logs) != 1 || rec.Logs[0].Message != want {
			t.Errorf("record %s has logs %v, want exactly [%q]", rec.InvocationID, rec.Logs, want)
		}
	}
}

func TestInvoker_RunTimeout(t *testing.T) {
	r := NewRegistry()
	_ = r.Register("slow", func(ctx context.Context, _ *TaskContext, _ Args) (any, error) {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(5 * time.Second):
			return "too late", nil
		}
	})

	inv := NewInvoker(r, NewState(nil), WithRunTimeout(20*time.Millisecond))

	res, err := inv.Run(context.Background(), "slow", nil)
	if err != nil {
		t.Fatal(err)
	}
	if res.OK {
		t.Fatal("expected timed-out run to fail")
	}
	if res.Err != context.DeadlineExceeded.Error() {
		t.Errorf("unexpected error: %s", res.Err)
	}
}
