// Package store holds wizard session records in the cache. The cache is the
// sole storage for in-progress records; expiry is how abandoned sessions die.
package store

import (
	"context"
	"time"

	"intake/internal/wizard/models"
)

// KeyPrefix is the cache key convention for in-progress wizard records.
const KeyPrefix = "temp_entity:"

// Key builds the cache key for a temporary session id.
func Key(tempID string) string {
	return KeyPrefix + tempID
}

// SessionStore persists in-progress wizard records with a sliding TTL: every
// Save fully replaces the record and restarts the expiry clock. Find returns
// sentinel.ErrNotFound for absent or expired sessions; Delete is idempotent.
type SessionStore interface {
	Save(ctx context.Context, record *models.SessionRecord, ttl time.Duration) error
	Find(ctx context.Context, tempID string) (*models.SessionRecord, error)
	Delete(ctx context.Context, tempID string) error
}
