//go:build integration

package cache

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"intake/internal/entity/models"
	"intake/pkg/platform/sentinel"
	"intake/pkg/testutil/containers"
)

func TestRedisCacheIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	container := containers.NewRedisContainer(t)
	c := NewRedis(container.Client, 30*time.Minute)

	newEntity := func() *models.Entity {
		now := time.Now().UTC().Truncate(time.Second)
		return &models.Entity{
			ID:                   uuid.New(),
			Name:                 "Acme Holdings",
			IdentificationNumber: "ID-" + uuid.NewString()[:8],
			InquiryID:            "INQ-" + uuid.NewString()[:8],
			Email:                "ops@acme.example",
			Status:               models.StatusPending,
			Documents:            []models.Document{},
			CreatedAt:            now,
			UpdatedAt:            now,
		}
	}

	t.Run("set then get round-trips the snapshot", func(t *testing.T) {
		require.NoError(t, container.FlushAll(ctx))

		entity := newEntity()
		require.NoError(t, c.Set(ctx, entity))

		got, err := c.Get(ctx, entity.ID)
		require.NoError(t, err)
		assert.Equal(t, entity.Name, got.Name)
		assert.Equal(t, entity.Status, got.Status)
	})

	t.Run("snapshot lives under the entity key prefix with the TTL", func(t *testing.T) {
		require.NoError(t, container.FlushAll(ctx))

		entity := newEntity()
		require.NoError(t, c.Set(ctx, entity))

		ttl, err := container.Client.TTL(ctx, Key(entity.ID)).Result()
		require.NoError(t, err)
		assert.Greater(t, ttl, 29*time.Minute)
		assert.LessOrEqual(t, ttl, 30*time.Minute)
	})

	t.Run("miss is not found", func(t *testing.T) {
		require.NoError(t, container.FlushAll(ctx))

		_, err := c.Get(ctx, uuid.New())
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})

	t.Run("delete evicts", func(t *testing.T) {
		require.NoError(t, container.FlushAll(ctx))

		entity := newEntity()
		require.NoError(t, c.Set(ctx, entity))
		require.NoError(t, c.Delete(ctx, entity.ID))

		_, err := c.Get(ctx, entity.ID)
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})
}
