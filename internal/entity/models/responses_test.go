package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPagination(t *testing.T) {
	t.Run("middle page links both ways", func(t *testing.T) {
		p := NewPagination(45, 3, 10)
		assert.Equal(t, 45, p.TotalDocs)
		assert.Equal(t, 5, p.TotalPages)
		assert.True(t, p.HasPrevPage)
		assert.True(t, p.HasNextPage)
		assert.Equal(t, 2, *p.PrevPage)
		assert.Equal(t, 4, *p.NextPage)
	})

	t.Run("first page has no previous", func(t *testing.T) {
		p := NewPagination(45, 1, 10)
		assert.False(t, p.HasPrevPage)
		assert.Nil(t, p.PrevPage)
		assert.True(t, p.HasNextPage)
	})

	t.Run("last page has no next", func(t *testing.T) {
		p := NewPagination(45, 5, 10)
		assert.True(t, p.HasPrevPage)
		assert.False(t, p.HasNextPage)
		assert.Nil(t, p.NextPage)
	})

	t.Run("empty result set", func(t *testing.T) {
		p := NewPagination(0, 1, 10)
		assert.Equal(t, 0, p.TotalPages)
		assert.False(t, p.HasPrevPage)
		assert.False(t, p.HasNextPage)
	})

	t.Run("page past the end has no previous link beyond the last page", func(t *testing.T) {
		p := NewPagination(11, 5, 10)
		assert.False(t, p.HasPrevPage)
		assert.Nil(t, p.PrevPage)
		assert.False(t, p.HasNextPage)
		assert.Nil(t, p.NextPage)
	})

	t.Run("first page past the end still links back to the last page", func(t *testing.T) {
		p := NewPagination(11, 3, 10)
		assert.True(t, p.HasPrevPage)
		assert.Equal(t, 2, *p.PrevPage)
	})

	t.Run("partial final page counts as a page", func(t *testing.T) {
		p := NewPagination(11, 1, 10)
		assert.Equal(t, 2, p.TotalPages)
	})
}
