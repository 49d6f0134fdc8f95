package kernel

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
)

// Scheduler drives registered tasks on fixed intervals. Every entry owns
// its ticker goroutine, so one entry's slow handler never delays another
// entry's fires. Within an entry, fires are strictly sequential: a fire
// that arrives while the previous run is still in flight is skipped.
type Scheduler struct {
	invoker  *Invoker
	registry *Registry

	immediate bool

	mu      sync.Mutex
	entries map[string]*entry
	stopped bool
	wg      sync.WaitGroup
}

type entry struct {
	task     string
	interval time.Duration
	args     Args
	stop     chan struct{}

	running atomic.Bool

	mu       sync.Mutex
	lastFire time.Time
	baseline time.Time
}

// SchedulerOption configures a Scheduler.
type SchedulerOption func(*Scheduler)

// WithImmediateFirstFire makes entries fire once at schedule time instead
// of waiting a full interval for the first fire.
func WithImmediateFirstFire() SchedulerOption {
	return func(s *Scheduler) {
		s.immediate = true
	}
}

func NewScheduler(registry *Registry, invoker *Invoker, opts ...SchedulerOption) *Scheduler {
	s := &Scheduler{
		invoker:  invoker,
		registry: registry,
		entries:  make(map[string]*entry),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ScheduleEvery registers a fixed-interval entry for task. Validation
// happens before any timer is created so misconfiguration fails the
// caller early instead of surfacing minutes later.
func (s *Scheduler) ScheduleEvery(interval time.Duration, task string, args Args) error {
	if interval <= 0 {
		return InvalidScheduleError{
			Task:     task,
			Interval: interval,
			Reason:   "interval must be positive",
		}
	}
	if !s.registry.Has(task) {
		return TaskNotFoundError{Name: task}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return InvalidScheduleError{Task: task, Interval: interval, Reason: "scheduler is stopped"}
	}
	if _, ok := s.entries[task]; ok {
		return AlreadyScheduledError{Task: task}
	}

	e := &entry{
		task:     task,
		interval: interval,
		args:     args,
		stop:     make(chan struct{}),
		baseline: time.Now(),
	}
	s.entries[task] = e

	s.wg.Add(1)
	go s.loop(e)

	log.Info().
		Str("task", task).
		Dur("interval", interval).
		Msg("scheduled task")
	return nil
}

func (s *Scheduler) loop(e *entry) {
	defer s.wg.Done()

	if s.immediate {
		s.fire(e)
	}

	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	for {
		select {
		case <-e.stop:
			return
		case <-ticker.C:
			s.fire(e)
		}
	}
}

// fire dispatches one run of the entry. The CAS on the running flag is
// the skip-if-overlapping policy: while a run of this entry is in flight,
// further fires are dropped instead of stacking up.
func (s *Scheduler) fire(e *entry) {
	if !e.running.CompareAndSwap(false, true) {
		log.Warn().Str("task", e.task).Msg("previous run still in progress, skipping fire")
		return
	}

	e.mu.Lock()
	e.lastFire = time.Now()
	e.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer e.running.Store(false)

		// Dispatch failures can only mean the task vanished from the
		// registry, which Register's immutability rules out. Handler
		// failures are already normalized inside the result.
		if _, err := s.invoker.run(context.Background(), e.task, e.args, TriggerSchedule); err != nil {
			log.Error().Err(err).Str("task", e.task).Msg("scheduled fire failed to dispatch")
		}
	}()
}

// Cancel stops the entry for task and removes it.
func (s *Scheduler) Cancel(task string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return InvalidScheduleError{Task: task, Reason: "scheduler is stopped"}
	}
	e, ok := s.entries[task]
	if !ok {
		return TaskNotFoundError{Name: task}
	}
	close(e.stop)
	delete(s.entries, task)

	log.Info().Str("task", task).Msg("canceled scheduled task")
	return nil
}

// Stop halts all timers and waits for in-flight runs to drain, bounded by
// the context deadline.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.stopped {
		s.stopped = true
		for _, e := range s.entries {
			close(e.stop)
		}
	}
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Entry returns the live status of the entry for task, if one exists.
func (s *Scheduler) Entry(task string) (EntryStatus, bool) {
	s.mu.Lock()
	e, ok := s.entries[task]
	s.mu.Unlock()
	if !ok {
		return EntryStatus{}, false
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	next := e.baseline.Add(e.interval)
	if !e.lastFire.IsZero() {
		next = e.lastFire.Add(e.interval)
	}

	return EntryStatus{
		Task:     e.task,
		Interval: e.interval,
		Running:  e.running.Load(),
		LastFire: e.lastFire,
		NextFire: next,
	}, true
}

// Entries returns the status of every live entry.
func (s *Scheduler) Entries() []EntryStatus {
	s.mu.Lock()
	tasks := make([]string, 0, len(s.entries))
	for task := range s.entries {
		tasks = append(tasks, task)
	}
	s.mu.Unlock()

	statuses := make([]EntryStatus, 0, len(tasks))
	for _, task := range tasks {
		if st, ok := s.Entry(task); ok {
			statuses = append(statuses, st)
		}
	}
	return statuses
}
