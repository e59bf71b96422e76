// Package cache holds the short-lived entity snapshot cache fronting the
// durable store. Every mutation writes through a full replacement snapshot;
// reads fall back to the store on a miss (no negative caching).
package cache

import (
	"context"

	"github.com/google/uuid"

	"intake/internal/entity/models"
)

// KeyPrefix is the cache key convention for durable entity mirrors.
const KeyPrefix = "entity:"

// Key builds the cache key for an entity id.
func Key(id uuid.UUID) string {
	return KeyPrefix + id.String()
}

// EntityCache mirrors durable entities with a fixed TTL. Implementations
// return sentinel.ErrNotFound on a miss.
type EntityCache interface {
	Get(ctx context.Context, id uuid.UUID) (*models.Entity, error)
	Set(ctx context.Context, entity *models.Entity) error
	Delete(ctx context.Context, id uuid.UUID) error
}
