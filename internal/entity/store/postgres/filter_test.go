package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"intake/internal/entity/models"
	"intake/internal/entity/store"
)

func TestBuildFilter(t *testing.T) {
	t.Run("no filters yields no clause", func(t *testing.T) {
		clause, args := buildFilter(store.ListQuery{})
		assert.Empty(t, clause)
		assert.Empty(t, args)
	})

	t.Run("status and search combine", func(t *testing.T) {
		status := models.StatusPending
		clause, args := buildFilter(store.ListQuery{Status: &status, Search: "acme"})
		assert.Equal(t,
			" WHERE status = $1 AND (name ILIKE $2 OR email ILIKE $2 OR identification_number ILIKE $2 OR inquiry_id ILIKE $2)",
			clause)
		assert.Equal(t, []any{"PENDING", "%acme%"}, args)
	})

	t.Run("pattern metacharacters in the search term are escaped", func(t *testing.T) {
		_, args := buildFilter(store.ListQuery{Search: `100%_\done`})
		assert.Equal(t, []any{`%100\%\_\\done%`}, args)
	})
}
