package store

import (
	"context"
	"sync"
	"time"
)

// MemoryPendingStore is a mutex-guarded map used when no Redis client
// is configured. It does not survive restarts and does not scale past a
// single process; it exists so the service degrades instead of refusing
// to start. Entries older than their expiry plus Grace are pruned
// opportunistically on access.
type MemoryPendingStore struct {
	mu      sync.Mutex
	entries map[string]PendingChange
	now     func() time.Time
}

// NewMemoryPendingStore returns an empty in-process store.
func NewMemoryPendingStore() *MemoryPendingStore {
	return &MemoryPendingStore{
		entries: make(map[string]PendingChange),
		now:     time.Now,
	}
}

func (s *MemoryPendingStore) prune() {
	cutoff := s.now()
	for k, e := range s.entries {
		if cutoff.After(e.ExpiresAt.Add(Grace)) {
			delete(s.entries, k)
		}
	}
}

// Put stores the entry, replacing any previous one for the same key.
func (s *MemoryPendingStore) Put(_ context.Context, tagID uint64, phone string, entry PendingChange) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prune()
	s.entries[pendingKey(tagID, phone)] = entry
	return nil
}

// Get returns the entry for (tagID, phone) if it is still retained.
func (s *MemoryPendingStore) Get(_ context.Context, tagID uint64, phone string) (PendingChange, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prune()
	entry, ok := s.entries[pendingKey(tagID, phone)]
	return entry, ok, nil
}

// Delete removes the entry; missing keys are ignored.
func (s *MemoryPendingStore) Delete(_ context.Context, tagID uint64, phone string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, pendingKey(tagID, phone))
	return nil
}
