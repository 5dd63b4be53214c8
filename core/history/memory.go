package history

import (
	"context"
	"sync"
)

// MemoryStore keeps records in memory, insertion ordered. Used as the test
// double and as the default backend when persistence is disabled.
type MemoryStore struct {
	mu   sync.RWMutex
	recs []Record
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore { return &MemoryStore{} }

func (s *MemoryStore) Append(_ context.Context, rec Record) error {
	s.mu.Lock()
	s.recs = append(s.recs, rec)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Query(_ context.Context, q Query) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var res []Record
	for _, r := range s.recs {
		if q.matches(r) {
			res = append(res, r)
		}
	}
	return res, nil
}

func (s *MemoryStore) Close() error { return nil }
