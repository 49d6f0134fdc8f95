package kernel

import "sync"

// State is the process-wide shared state tasks may borrow through their
// TaskContext. The kernel owns it; all access goes through the mutex so
// concurrently running tasks cannot race on it.
type State struct {
	mu     sync.RWMutex
	values map[string]any
}

func NewState(seed map[string]any) *State {
	values := make(map[string]any, len(seed))
	for k, v := range seed {
		values[k] = v
	}
	return &State{values: values}
}

func (s *State) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.values[key]
	return v, ok
}

func (s *State) Set(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values[key] = value
}

// Snapshot returns a shallow copy of the current state.
func (s *State) Snapshot() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cpy := make(map[string]any, len(s.values))
	for k, v := range s.values {
		cpy[k] = v
	}
	return cpy
}
