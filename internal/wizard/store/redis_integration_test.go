//go:build integration

package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"intake/internal/wizard/models"
	"intake/pkg/platform/sentinel"
	"intake/pkg/testutil/containers"
)

func TestRedisStoreIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	container := containers.NewRedisContainer(t)
	s := NewRedis(container.Client)

	t.Run("save then find round-trips the record", func(t *testing.T) {
		require.NoError(t, container.FlushAll(ctx))

		now := time.Now().UTC().Truncate(time.Second)
		record := &models.SessionRecord{
			TempID:               models.NewTempID(now),
			Step:                 2,
			CompletedSteps:       []string{models.StepBasicInfo, models.StepContactInfo},
			Name:                 "Acme Holdings",
			IdentificationNumber: "ID-1001",
			Email:                "ops@acme.example",
			CreatedAt:            now,
			UpdatedAt:            now,
		}
		require.NoError(t, s.Save(ctx, record, 30*time.Minute))

		found, err := s.Find(ctx, record.TempID)
		require.NoError(t, err)
		assert.Equal(t, record.Name, found.Name)
		assert.Equal(t, record.CompletedSteps, found.CompletedSteps)
		assert.Equal(t, 2, found.Step)
	})

	t.Run("record lives under the temp_entity key prefix", func(t *testing.T) {
		require.NoError(t, container.FlushAll(ctx))

		record := &models.SessionRecord{TempID: "temp_entity_1_abcdefghi"}
		require.NoError(t, s.Save(ctx, record, time.Minute))

		exists, err := container.Client.Exists(ctx, "temp_entity:temp_entity_1_abcdefghi").Result()
		require.NoError(t, err)
		assert.Equal(t, int64(1), exists)
	})

	t.Run("save applies the TTL", func(t *testing.T) {
		require.NoError(t, container.FlushAll(ctx))

		record := &models.SessionRecord{TempID: "temp_entity_2_abcdefghi"}
		require.NoError(t, s.Save(ctx, record, 30*time.Minute))

		ttl, err := container.Client.TTL(ctx, Key(record.TempID)).Result()
		require.NoError(t, err)
		assert.Greater(t, ttl, 29*time.Minute)
		assert.LessOrEqual(t, ttl, 30*time.Minute)
	})

	t.Run("expired session is not found", func(t *testing.T) {
		require.NoError(t, container.FlushAll(ctx))

		record := &models.SessionRecord{TempID: "temp_entity_3_abcdefghi"}
		require.NoError(t, s.Save(ctx, record, time.Second))

		time.Sleep(1500 * time.Millisecond)
		_, err := s.Find(ctx, record.TempID)
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		require.NoError(t, container.FlushAll(ctx))

		record := &models.SessionRecord{TempID: "temp_entity_4_abcdefghi"}
		require.NoError(t, s.Save(ctx, record, time.Minute))

		require.NoError(t, s.Delete(ctx, record.TempID))
		require.NoError(t, s.Delete(ctx, record.TempID))

		_, err := s.Find(ctx, record.TempID)
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})
}
