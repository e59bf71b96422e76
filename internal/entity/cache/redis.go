package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"intake/internal/entity/models"
	"intake/pkg/platform/sentinel"
)

// RedisCache is the Redis-backed entity snapshot cache. Snapshots are stored
// as JSON under entity:<id> with a fixed TTL.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedis constructs a Redis-backed entity cache with the given TTL.
func NewRedis(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

func (c *RedisCache) Get(ctx context.Context, id uuid.UUID) (*models.Entity, error) {
	payload, err := c.client.Get(ctx, Key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("cache get: %w", err)
	}
	var entity models.Entity
	if err := json.Unmarshal(payload, &entity); err != nil {
		return nil, fmt.Errorf("decode cached entity: %w", err)
	}
	return &entity, nil
}

func (c *RedisCache) Set(ctx context.Context, entity *models.Entity) error {
	payload, err := json.Marshal(entity)
	if err != nil {
		return fmt.Errorf("encode entity: %w", err)
	}
	if err := c.client.Set(ctx, Key(entity.ID), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

func (c *RedisCache) Delete(ctx context.Context, id uuid.UUID) error {
	if err := c.client.Del(ctx, Key(id)).Err(); err != nil {
		return fmt.Errorf("cache delete: %w", err)
	}
	return nil
}
