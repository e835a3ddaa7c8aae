package store

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore keeps sessions for the lifetime of the process
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]*Record
	now     func() time.Time
}

// NewMemoryStore creates an empty in-process store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]*Record),
		now:     time.Now,
	}
}

// Load returns a copy of the record stored under key
func (s *MemoryStore) Load(ctx context.Context, key string) (*Record, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[key]
	if !ok {
		return nil, false, nil
	}
	return cloneRecord(rec), true, nil
}

// Save replaces the record stored under key
func (s *MemoryStore) Save(ctx context.Context, key string, rec *Record) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[key] = stamp(key, rec, s.now())
	return nil
}

// Delete removes key; deleting an absent key is not an error
func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, key)
	return nil
}

// Keys lists stored session keys in sorted order
func (s *MemoryStore) Keys(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.records))
	for k := range s.records {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

// Close is a no-op
func (s *MemoryStore) Close() error {
	return nil
}
