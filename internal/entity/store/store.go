// Package store defines the durable entity store contract shared by the
// Postgres implementation and the in-memory test double.
package store

import (
	"context"

	"github.com/google/uuid"

	"intake/internal/entity/models"
)

// Sort fields the listing operation accepts. Anything else normalizes to
// created_at so callers cannot probe arbitrary columns.
const (
	SortByCreatedAt            = "created_at"
	SortByUpdatedAt            = "updated_at"
	SortByName                 = "name"
	SortByStatus               = "status"
	SortByIdentificationNumber = "identification_number"
)

// NormalizeSort maps a requested sort field onto the allow-list.
func NormalizeSort(field string) string {
	switch field {
	case SortByCreatedAt, SortByUpdatedAt, SortByName, SortByStatus, SortByIdentificationNumber:
		return field
	default:
		return SortByCreatedAt
	}
}

// ListQuery describes a filtered, sorted, paginated listing.
type ListQuery struct {
	Status *models.Status
	// Search matches case-insensitively against name, email,
	// identificationNumber and inquiryId (logical OR).
	Search  string
	SortBy  string
	SortAsc bool
	Page    int
	Limit   int
}

// Normalize clamps paging values and the sort field to safe ranges.
func (q ListQuery) Normalize() ListQuery {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = 10
	}
	if q.Limit > 100 {
		q.Limit = 100
	}
	q.SortBy = NormalizeSort(q.SortBy)
	return q
}

// Store is the durable entity collection. Implementations return
// sentinel.ErrNotFound for missing records and sentinel.ErrConflict when the
// identification number or inquiry id uniqueness constraint rejects a write.
type Store interface {
	Insert(ctx context.Context, entity *models.Entity) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Entity, error)
	FindByIdentificationNumber(ctx context.Context, identificationNumber string) (*models.Entity, error)
	List(ctx context.Context, query ListQuery) ([]*models.Entity, int, error)
	Update(ctx context.Context, entity *models.Entity) error
	Delete(ctx context.Context, id uuid.UUID) error
	CountByStatus(ctx context.Context, status models.Status) (int, error)
}
