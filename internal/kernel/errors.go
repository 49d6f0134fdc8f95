package kernel

import (
	"fmt"
	"time"
)

// TaskNotFoundError is returned when a task name is not present in the
// registry, either at invocation or at schedule time.
type TaskNotFoundError struct {
	Name string
}

func (e TaskNotFoundError) Error() string {
	return fmt.Sprintf("task '%s' not found", e.Name)
}

// TaskExistsError is returned when registering a name that is already
// taken. Re-registration is rejected rather than overwritten: a handler
// swap under a live scheduled entry would silently change its behavior.
type TaskExistsError struct {
	Name string
}

func (e TaskExistsError) Error() string {
	return fmt.Sprintf("task '%s' is already registered", e.Name)
}

// InvalidScheduleError is returned for schedule parameters that can never
// fire, e.g. a non-positive interval.
type InvalidScheduleError struct {
	Task     string
	Interval time.Duration
	Reason   string
}

func (e InvalidScheduleError) Error() string {
	return fmt.Sprintf("invalid schedule for task '%s': %s", e.Task, e.Reason)
}

// AlreadyScheduledError is returned when a task already has a live
// scheduled entry. One entry per task keeps the no-overlap contract
// trivially enforceable.
type AlreadyScheduledError struct {
	Task string
}

func (e AlreadyScheduledError) Error() string {
	return fmt.Sprintf("task '%s' is already scheduled", e.Task)
}
