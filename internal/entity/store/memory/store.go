// Package memory provides the in-memory entity store used by unit tests and
// local development. It intentionally favors clarity over performance.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"intake/internal/entity/models"
	"intake/internal/entity/store"
	"intake/pkg/platform/sentinel"
)

type Store struct {
	mu       sync.RWMutex
	entities map[uuid.UUID]*models.Entity
}

func New() *Store {
	return &Store{entities: make(map[uuid.UUID]*models.Entity)}
}

func (s *Store) Insert(_ context.Context, entity *models.Entity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.entities {
		if existing.IdentificationNumber == entity.IdentificationNumber ||
			existing.InquiryID == entity.InquiryID {
			return sentinel.ErrConflict
		}
	}
	s.entities[entity.ID] = clone(entity)
	return nil
}

func (s *Store) FindByID(_ context.Context, id uuid.UUID) (*models.Entity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if entity, ok := s.entities[id]; ok {
		return clone(entity), nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *Store) FindByIdentificationNumber(_ context.Context, identificationNumber string) (*models.Entity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, entity := range s.entities {
		if entity.IdentificationNumber == identificationNumber {
			return clone(entity), nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (s *Store) List(_ context.Context, query store.ListQuery) ([]*models.Entity, int, error) {
	query = query.Normalize()

	s.mu.RLock()
	matched := make([]*models.Entity, 0, len(s.entities))
	for _, entity := range s.entities {
		if matches(entity, query) {
			matched = append(matched, clone(entity))
		}
	}
	s.mu.RUnlock()

	sortEntities(matched, query.SortBy, query.SortAsc)

	total := len(matched)
	start := (query.Page - 1) * query.Limit
	if start >= total {
		return []*models.Entity{}, total, nil
	}
	end := start + query.Limit
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

func (s *Store) Update(_ context.Context, entity *models.Entity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entities[entity.ID]; !ok {
		return sentinel.ErrNotFound
	}
	s.entities[entity.ID] = clone(entity)
	return nil
}

func (s *Store) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entities[id]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.entities, id)
	return nil
}

func (s *Store) CountByStatus(_ context.Context, status models.Status) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, entity := range s.entities {
		if entity.Status == status {
			count++
		}
	}
	return count, nil
}

func matches(entity *models.Entity, query store.ListQuery) bool {
	if query.Status != nil && entity.Status != *query.Status {
		return false
	}
	if query.Search == "" {
		return true
	}
	needle := strings.ToLower(query.Search)
	for _, field := range []string{entity.Name, entity.Email, entity.IdentificationNumber, entity.InquiryID} {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}

func sortEntities(entities []*models.Entity, sortBy string, asc bool) {
	sort.SliceStable(entities, func(i, j int) bool {
		a, b := entities[i], entities[j]
		if !asc {
			a, b = b, a
		}
		switch sortBy {
		case store.SortByName:
			return a.Name < b.Name
		case store.SortByStatus:
			return a.Status < b.Status
		case store.SortByIdentificationNumber:
			return a.IdentificationNumber < b.IdentificationNumber
		case store.SortByUpdatedAt:
			return a.UpdatedAt.Before(b.UpdatedAt)
		default:
			return a.CreatedAt.Before(b.CreatedAt)
		}
	})
}

// clone guards against callers mutating stored state through shared slices
// and maps.
func clone(entity *models.Entity) *models.Entity {
	c := *entity
	if entity.Documents != nil {
		c.Documents = append([]models.Document(nil), entity.Documents...)
	}
	if entity.ProfilePhoto != nil {
		photo := *entity.ProfilePhoto
		c.ProfilePhoto = &photo
	}
	if entity.AdditionalData != nil {
		c.AdditionalData = make(map[string]any, len(entity.AdditionalData))
		for k, v := range entity.AdditionalData {
			c.AdditionalData[k] = v
		}
	}
	return &c
}
