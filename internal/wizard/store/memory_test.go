package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"intake/internal/wizard/models"
	"intake/pkg/platform/sentinel"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()

	t.Run("save then find round-trips the record", func(t *testing.T) {
		s := NewMemory()
		record := &models.SessionRecord{TempID: "temp_entity_1_abc", Name: "Acme", Step: 1}
		require.NoError(t, s.Save(ctx, record, 30*time.Minute))

		found, err := s.Find(ctx, record.TempID)
		require.NoError(t, err)
		assert.Equal(t, "Acme", found.Name)
		assert.Equal(t, 1, found.Step)
	})

	t.Run("absent session is not found", func(t *testing.T) {
		s := NewMemory()
		_, err := s.Find(ctx, "temp_entity_0_missing")
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})

	t.Run("sessions expire after the TTL", func(t *testing.T) {
		now := time.Now()
		s := NewMemory().WithClock(func() time.Time { return now })
		record := &models.SessionRecord{TempID: "temp_entity_2_def"}
		require.NoError(t, s.Save(ctx, record, 30*time.Minute))

		now = now.Add(31 * time.Minute)
		_, err := s.Find(ctx, record.TempID)
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})

	t.Run("save restarts the sliding TTL", func(t *testing.T) {
		now := time.Now()
		s := NewMemory().WithClock(func() time.Time { return now })
		record := &models.SessionRecord{TempID: "temp_entity_3_ghi"}
		require.NoError(t, s.Save(ctx, record, 30*time.Minute))

		now = now.Add(20 * time.Minute)
		require.NoError(t, s.Save(ctx, record, 30*time.Minute))

		now = now.Add(20 * time.Minute)
		_, err := s.Find(ctx, record.TempID)
		assert.NoError(t, err)
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		s := NewMemory()
		record := &models.SessionRecord{TempID: "temp_entity_4_jkl"}
		require.NoError(t, s.Save(ctx, record, time.Minute))

		require.NoError(t, s.Delete(ctx, record.TempID))
		require.NoError(t, s.Delete(ctx, record.TempID))

		_, err := s.Find(ctx, record.TempID)
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})
}

func TestKeyPrefix(t *testing.T) {
	assert.Equal(t, "temp_entity:temp_entity_1_abc", Key("temp_entity_1_abc"))
}
