package kernel

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

// DefaultRunTimeout bounds a single handler execution so a hung handler
// cannot occupy its scheduled entry forever.
const DefaultRunTimeout = 5 * time.Minute

// Invoker resolves a task by name and executes it synchronously,
// normalizing success and failure into a Result. It is a pure
// dispatch-and-normalize boundary: handler errors and panics become
// structured results and never reach the caller as errors.
type Invoker struct {
	registry *Registry
	shared   *State
	sink     RecordSink
	timeout  time.Duration
}

// InvokerOption configures an Invoker.
type InvokerOption func(*Invoker)

// WithRunTimeout overrides the per-run timeout. Zero disables it.
func WithRunTimeout(d time.Duration) InvokerOption {
	return func(inv *Invoker) {
		inv.timeout = d
	}
}

// WithRecordSink attaches a run-history sink.
func WithRecordSink(sink RecordSink) InvokerOption {
	return func(inv *Invoker) {
		inv.sink = sink
	}
}

func NewInvoker(registry *Registry, shared *State, opts ...InvokerOption) *Invoker {
	inv := &Invoker{
		registry: registry,
		shared:   shared,
		timeout:  DefaultRunTimeout,
	}
	for _, opt := range opts {
		opt(inv)
	}
	return inv
}

// Run executes the named task with the given arguments. The returned
// error is non-nil only for dispatch failures (unknown task); anything
// that happens inside the handler is reported through the Result.
func (inv *Invoker) Run(ctx context.Context, name string, args Args) (Result, error) {
	return inv.run(ctx, name, args, TriggerManual)
}

func (inv *Invoker) run(ctx context.Context, name string, args Args, trigger string) (Result, error) {
	fn, err := inv.registry.Get(name)
	if err != nil {
		return Result{}, err
	}

	tc := newTaskContext(name, inv.shared)

	if inv.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, inv.timeout)
		defer cancel()
	}

	tc.Logger.Debug("starting task execution")

	started := time.Now()
	value, err := callHandler(ctx, fn, tc, args)
	finished := time.Now()
	duration := finished.Sub(started)

	res := Result{
		OK:           err == nil,
		InvocationID: tc.InvocationID,
		Duration:     duration.String(),
	}
	rec := RunRecord{
		Task:         name,
		InvocationID: tc.InvocationID,
		Trigger:      trigger,
		StartedAt:    started,
		FinishedAt:   finished,
	}

	if err != nil {
		res.Err = err.Error()
		rec.Status = StatusError
		rec.Error = err.Error()
		tc.Logger.Error("task failed after %s: %v", duration, err)
	} else {
		res.Result = value
		rec.Status = StatusSuccess
		rec.Result = value
		tc.Logger.Info("task completed in %s", duration)
	}
	rec.Logs = tc.capture.snapshot()

	if inv.sink != nil {
		if err := inv.sink.Append(rec); err != nil {
			log.Error().Err(err).Str("task", name).Msg("failed to append run record")
		}
	}

	return res, nil
}

// callHandler isolates the handler call so a panic inside a task is
// converted into an ordinary error instead of taking the process down.
func callHandler(ctx context.Context, fn TaskFunc, tc *TaskContext, args Args) (value any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task panicked: %v", r)
		}
	}()
	if args == nil {
		args = Args{}
	}
	return fn(ctx, tc, args)
}
