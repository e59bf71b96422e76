package store

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"intake/internal/wizard/models"
	"intake/pkg/platform/sentinel"
)

// MemoryStore is the in-process session store for tests and local runs.
// Records are kept JSON-encoded so reads observe the same serialization
// behavior as the Redis implementation.
type MemoryStore struct {
	mu      sync.RWMutex
	now     func() time.Time
	entries map[string]memoryEntry
}

type memoryEntry struct {
	payload   []byte
	expiresAt time.Time
}

func NewMemory() *MemoryStore {
	return &MemoryStore{
		now:     time.Now,
		entries: make(map[string]memoryEntry),
	}
}

// WithClock overrides the clock for expiry tests.
func (s *MemoryStore) WithClock(now func() time.Time) *MemoryStore {
	s.now = now
	return s
}

func (s *MemoryStore) Save(_ context.Context, record *models.SessionRecord, ttl time.Duration) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.entries[Key(record.TempID)] = memoryEntry{payload: payload, expiresAt: s.now().Add(ttl)}
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Find(_ context.Context, tempID string) (*models.SessionRecord, error) {
	s.mu.RLock()
	entry, ok := s.entries[Key(tempID)]
	s.mu.RUnlock()
	if !ok || s.now().After(entry.expiresAt) {
		return nil, sentinel.ErrNotFound
	}
	var record models.SessionRecord
	if err := json.Unmarshal(entry.payload, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

func (s *MemoryStore) Delete(_ context.Context, tempID string) error {
	s.mu.Lock()
	delete(s.entries, Key(tempID))
	s.mu.Unlock()
	return nil
}
