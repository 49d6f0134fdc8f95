package history

import (
	"sync"

	"github.com/venlin/kern/internal/kernel"
)

// DefaultMemoryCapacity is the number of records the memory store keeps
// before evicting the oldest.
const DefaultMemoryCapacity = 256

var _ Store = (*MemoryStore)(nil)

// MemoryStore keeps run records in a bounded in-memory ring.
type MemoryStore struct {
	mu       sync.RWMutex
	records  []kernel.RunRecord
	capacity int
}

func NewMemoryStore(capacity int) *MemoryStore {
	if capacity <= 0 {
		capacity = DefaultMemoryCapacity
	}
	return &MemoryStore{
		records:  make([]kernel.RunRecord, 0, capacity),
		capacity: capacity,
	}
}

func (s *MemoryStore) Append(rec kernel.RunRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = append(s.records, rec)
	if len(s.records) > s.capacity {
		s.records = s.records[len(s.records)-s.capacity:]
	}
	return nil
}

func (s *MemoryStore) Recent(limit int) ([]kernel.RunRecord, error) {
	return s.filter(limit, func(kernel.RunRecord) bool { return true })
}

func (s *MemoryStore) ForTask(task string, limit int) ([]kernel.RunRecord, error) {
	return s.filter(limit, func(rec kernel.RunRecord) bool { return rec.Task == task })
}

func (s *MemoryStore) filter(limit int, keep func(kernel.RunRecord) bool) ([]kernel.RunRecord, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]kernel.RunRecord, 0, limit)
	for i := len(s.records) - 1; i >= 0 && len(out) < limit; i-- {
		if keep(s.records[i]) {
			out = append(out, s.records[i])
		}
	}
	return out, nil
}

func (s *MemoryStore) Close() error {
	return nil
}
