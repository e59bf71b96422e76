package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"intake/internal/wizard/models"
	"intake/pkg/platform/sentinel"
)

// RedisStore keeps wizard session records in Redis under temp_entity:<tempId>
// keys. Redis expiry is the session timeout.
type RedisStore struct {
	client *redis.Client
}

func NewRedis(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Save(ctx context.Context, record *models.SessionRecord, ttl time.Duration) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode session record: %w", err)
	}
	if err := s.client.Set(ctx, Key(record.TempID), payload, ttl).Err(); err != nil {
		return fmt.Errorf("save session record: %w", err)
	}
	return nil
}

func (s *RedisStore) Find(ctx context.Context, tempID string) (*models.SessionRecord, error) {
	payload, err := s.client.Get(ctx, Key(tempID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find session record: %w", err)
	}
	var record models.SessionRecord
	if err := json.Unmarshal(payload, &record); err != nil {
		return nil, fmt.Errorf("decode session record: %w", err)
	}
	return &record, nil
}

func (s *RedisStore) Delete(ctx context.Context, tempID string) error {
	if err := s.client.Del(ctx, Key(tempID)).Err(); err != nil {
		return fmt.Errorf("delete session record: %w", err)
	}
	return nil
}
