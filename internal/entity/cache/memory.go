package cache

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"intake/internal/entity/models"
	"intake/pkg/platform/sentinel"
)

// MemoryCache is the in-process entity cache used by tests and local runs.
// Entries expire lazily on read.
type MemoryCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	now     func() time.Time
	entries map[uuid.UUID]memoryEntry
}

type memoryEntry struct {
	entity    *models.Entity
	expiresAt time.Time
}

// NewMemory constructs an in-memory entity cache with the given TTL.
func NewMemory(ttl time.Duration) *MemoryCache {
	return &MemoryCache{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[uuid.UUID]memoryEntry),
	}
}

// WithClock overrides the clock for expiry tests.
func (c *MemoryCache) WithClock(now func() time.Time) *MemoryCache {
	c.now = now
	return c
}

func (c *MemoryCache) Get(_ context.Context, id uuid.UUID) (*models.Entity, error) {
	c.mu.RLock()
	entry, ok := c.entries[id]
	c.mu.RUnlock()
	if !ok || c.now().After(entry.expiresAt) {
		return nil, sentinel.ErrNotFound
	}
	snapshot := *entry.entity
	return &snapshot, nil
}

func (c *MemoryCache) Set(_ context.Context, entity *models.Entity) error {
	snapshot := *entity
	c.mu.Lock()
	c.entries[entity.ID] = memoryEntry{entity: &snapshot, expiresAt: c.now().Add(c.ttl)}
	c.mu.Unlock()
	return nil
}

func (c *MemoryCache) Delete(_ context.Context, id uuid.UUID) error {
	c.mu.Lock()
	delete(c.entries, id)
	c.mu.Unlock()
	return nil
}
