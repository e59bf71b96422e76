package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"intake/pkg/platform/sentinel"
)

func TestFSStore(t *testing.T) {
	ctx := context.Background()

	t.Run("creates the base directory", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "nested", "documents")
		_, err := NewFS(dir)
		require.NoError(t, err)

		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	})

	t.Run("put then get round trips the bytes", func(t *testing.T) {
		store, err := NewFS(t.TempDir())
		require.NoError(t, err)

		path, err := store.Put(ctx, "a1b2.pdf", []byte("pdf-bytes"))
		require.NoError(t, err)

		data, err := store.Get(ctx, path)
		require.NoError(t, err)
		assert.Equal(t, []byte("pdf-bytes"), data)
	})

	t.Run("get of an unknown path is not found", func(t *testing.T) {
		store, err := NewFS(t.TempDir())
		require.NoError(t, err)

		_, err = store.Get(ctx, filepath.Join(t.TempDir(), "missing.pdf"))
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})

	t.Run("remove deletes the blob", func(t *testing.T) {
		store, err := NewFS(t.TempDir())
		require.NoError(t, err)

		path, err := store.Put(ctx, "a1b2.pdf", []byte("pdf-bytes"))
		require.NoError(t, err)
		require.NoError(t, store.Remove(ctx, path))

		_, err = store.Get(ctx, path)
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})

	t.Run("remove of an unknown path is a no-op", func(t *testing.T) {
		store, err := NewFS(t.TempDir())
		require.NoError(t, err)
		assert.NoError(t, store.Remove(ctx, filepath.Join(t.TempDir(), "missing.pdf")))
	})
}
