package kernel

import (
	"fmt"
	"sync"
)

// Registry maps task names to handlers. It is populated at startup and
// read-heavy afterwards; the lock exists so late registrations cannot race
// with lookups from firing timers or HTTP-triggered runs.
type Registry struct {
	mu    sync.RWMutex
	tasks map[string]TaskFunc
}

func NewRegistry() *Registry {
	return &Registry{
		tasks: make(map[string]TaskFunc),
	}
}

// Register binds name to fn. Duplicate names are rejected, see
// TaskExistsError for the rationale.
func (r *Registry) Register(name string, fn TaskFunc) error {
	if name == "" {
		return fmt.Errorf("task name cannot be empty")
	}
	if fn == nil {
		return fmt.Errorf("task '%s' has a nil handler", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tasks[name]; ok {
		return TaskExistsError{Name: name}
	}
	r.tasks[name] = fn
	return nil
}

// Get returns the handler registered under name.
func (r *Registry) Get(name string) (TaskFunc, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	fn, ok := r.tasks[name]
	if !ok {
		return nil, TaskNotFoundError{Name: name}
	}
	return fn, nil
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.tasks[name]
	return ok
}

// List returns a snapshot of all registered task names, in no particular
// order.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.tasks))
	for name := range r.tasks {
		names = append(names, name)
	}
	return names
}
