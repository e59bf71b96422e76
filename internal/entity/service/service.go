// Package service implements the approval workflow engine: durable entity
// CRUD, the PENDING/UNDER_REVIEW/APPROVED/REJECTED state machine, and the
// cache-store coordination around every operation.
package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"intake/internal/entity/cache"
	entitymetrics "intake/internal/entity/metrics"
	"intake/internal/entity/models"
	"intake/internal/entity/store"
	"intake/internal/notify"
	dErrors "intake/pkg/domain-errors"
	"intake/pkg/platform/sentinel"
	"intake/pkg/requestcontext"
)

// BlobRemover deletes stored document bytes once their metadata is gone.
type BlobRemover interface {
	Remove(ctx context.Context, path string) error
}

// Service orchestrates the entity approval workflow. All dependencies are
// injected so tests can run against the in-memory store and cache.
type Service struct {
	store    store.Store
	cache    cache.EntityCache
	notifier notify.Notifier
	blobs    BlobRemover
	logger   *slog.Logger
	metrics  *entitymetrics.Metrics
	tracer   trace.Tracer
}

func NewService(st store.Store, ca cache.EntityCache, notifier notify.Notifier, blobs BlobRemover, logger *slog.Logger, metrics *entitymetrics.Metrics) *Service {
	return &Service{
		store:    st,
		cache:    ca,
		notifier: notifier,
		blobs:    blobs,
		logger:   logger,
		metrics:  metrics,
		tracer:   otel.Tracer("intake/entity"),
	}
}

// Create inserts a durable entity directly (without the wizard) with status
// PENDING and write-through caches it.
func (s *Service) Create(ctx context.Context, req *models.CreateEntityRequest, actorID string) (*models.Entity, error) {
	ctx, span := s.tracer.Start(ctx, "entity.Create")
	defer span.End()

	if err := req.Validate(); err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	documents := req.Documents
	if documents == nil {
		documents = []models.Document{}
	}
	entity := &models.Entity{
		ID:                   uuid.New(),
		Name:                 req.Name,
		IdentificationNumber: req.IdentificationNumber,
		InquiryID:            models.NewInquiryID(),
		Email:                req.Email,
		Phone:                req.Phone,
		DateOfBirth:          req.DateOfBirth,
		Address:              req.Address,
		ProfilePhoto:         req.ProfilePhoto,
		Documents:            documents,
		Status:               models.StatusPending,
		CreatedBy:            actorID,
		CreatedAt:            now,
		UpdatedAt:            now,
		AdditionalData:       req.AdditionalData,
	}

	if err := s.store.Insert(ctx, entity); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeDuplicateIdentifier, "identification number is already registered")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create entity")
	}
	if err := s.cache.Set(ctx, entity); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to cache entity")
	}

	s.metrics.IncrementCreated()
	return entity, nil
}

// Get reads an entity through the cache: a hit returns the snapshot, a miss
// falls back to the durable store and repopulates the cache. Cache read
// failures degrade to the store rather than failing the read.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.Entity, error) {
	ctx, span := s.tracer.Start(ctx, "entity.Get")
	defer span.End()

	cached, err := s.cache.Get(ctx, id)
	if err == nil {
		s.metrics.RecordCacheHit()
		return cached, nil
	}
	if !errors.Is(err, sentinel.ErrNotFound) {
		s.logger.WarnContext(ctx, "cache read failed, falling back to store",
			"request_id", requestcontext.RequestID(ctx),
			"entity_id", id,
			"error", err.Error(),
		)
	}

	entity, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "entity not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load entity")
	}
	s.metrics.RecordCacheMiss()

	// Lazy repopulation; nothing goes stale if this fails.
	if err := s.cache.Set(ctx, entity); err != nil {
		s.logger.WarnContext(ctx, "cache repopulation failed",
			"request_id", requestcontext.RequestID(ctx),
			"entity_id", id,
			"error", err.Error(),
		)
	}
	return entity, nil
}

// List returns one page of entities matching the query plus page metadata.
func (s *Service) List(ctx context.Context, query store.ListQuery) (*models.EntityPage, error) {
	ctx, span := s.tracer.Start(ctx, "entity.List")
	defer span.End()

	query = query.Normalize()
	entities, total, err := s.store.List(ctx, query)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list entities")
	}
	return &models.EntityPage{
		Entities:   entities,
		Pagination: models.NewPagination(total, query.Page, query.Limit),
	}, nil
}

// Update applies a field merge to a non-terminal entity. Status may only move
// between PENDING and UNDER_REVIEW here; approve/reject own the terminal
// edges.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req *models.UpdateEntityRequest) (*models.Entity, error) {
	ctx, span := s.tracer.Start(ctx, "entity.Update")
	defer span.End()

	if err := req.Validate(); err != nil {
		return nil, err
	}

	entity, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := entity.CanUpdate(); err != nil {
		return nil, err
	}

	applyUpdate(entity, req)
	entity.UpdatedAt = requestcontext.Now(ctx)

	if err := s.persist(ctx, entity); err != nil {
		return nil, err
	}
	return entity, nil
}

// AddDocuments appends stored document metadata to a non-terminal entity.
func (s *Service) AddDocuments(ctx context.Context, id uuid.UUID, documents []models.Document) (*models.Entity, error) {
	ctx, span := s.tracer.Start(ctx, "entity.AddDocuments")
	defer span.End()

	if len(documents) == 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "at least one document is required")
	}
	if len(documents) > models.MaxDocumentsPerUpload {
		return nil, dErrors.New(dErrors.CodeValidation, "at most 10 documents per request")
	}

	entity, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := entity.CanUpdate(); err != nil {
		return nil, err
	}

	entity.Documents = append(entity.Documents, documents...)
	entity.UpdatedAt = requestcontext.Now(ctx)

	if err := s.persist(ctx, entity); err != nil {
		return nil, err
	}
	return entity, nil
}

// Delete removes an entity regardless of status, evicts its cache mirror and
// removes its stored blobs. Blob removal is best effort; the row and the cache
// entry are already gone by then.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	ctx, span := s.tracer.Start(ctx, "entity.Delete")
	defer span.End()

	entity, err := s.load(ctx, id)
	if err != nil {
		return err
	}

	if err := s.store.Delete(ctx, id); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "entity not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete entity")
	}
	if err := s.cache.Delete(ctx, id); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to evict entity cache")
	}

	s.removeBlobs(ctx, entity)
	return nil
}

// removeBlobs deletes the blobs behind an entity's documents and profile
// photo. Failures are logged, never propagated: the metadata is already gone.
func (s *Service) removeBlobs(ctx context.Context, entity *models.Entity) {
	if s.blobs == nil {
		return
	}
	paths := make([]string, 0, len(entity.Documents)+1)
	for _, document := range entity.Documents {
		paths = append(paths, document.Path)
	}
	if entity.ProfilePhoto != nil {
		paths = append(paths, entity.ProfilePhoto.Path)
	}
	for _, path := range paths {
		if path == "" {
			continue
		}
		if err := s.blobs.Remove(ctx, path); err != nil {
			s.logger.WarnContext(ctx, "failed to remove document blob",
				"request_id", requestcontext.RequestID(ctx),
				"entity_id", entity.ID,
				"path", path,
				"error", err.Error(),
			)
		}
	}
}

// Approve transitions the entity into the APPROVED terminal state and queues
// a notification. The approval is committed once persisted; notification
// delivery cannot roll it back.
func (s *Service) Approve(ctx context.Context, id uuid.UUID, actorID, notes string) (*models.Entity, error) {
	ctx, span := s.tracer.Start(ctx, "entity.Approve")
	defer span.End()

	if len(notes) > models.MaxNotesLength {
		return nil, dErrors.New(dErrors.CodeValidation, "approvalNotes must be at most 500 characters")
	}

	entity, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := entity.CanApprove(); err != nil {
		return nil, err
	}

	entity.ApplyApproval(actorID, notes, requestcontext.Now(ctx))
	if err := s.persist(ctx, entity); err != nil {
		return nil, err
	}

	s.metrics.IncrementApproved()
	s.notifier.Publish(notify.Event{
		Kind:       notify.KindApproved,
		Recipient:  entity.Email,
		EntityID:   entity.ID.String(),
		EntityName: entity.Name,
		Details:    entity.ApprovalNotes,
	})
	return entity, nil
}

// Reject transitions the entity into the REJECTED terminal state. The reason
// is mandatory.
func (s *Service) Reject(ctx context.Context, id uuid.UUID, actorID, reason string) (*models.Entity, error) {
	ctx, span := s.tracer.Start(ctx, "entity.Reject")
	defer span.End()

	if reason == "" {
		return nil, dErrors.New(dErrors.CodeMissingReason, "rejectionReason is required")
	}
	if len(reason) > models.MaxNotesLength {
		return nil, dErrors.New(dErrors.CodeValidation, "rejectionReason must be at most 500 characters")
	}

	entity, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := entity.CanReject(); err != nil {
		return nil, err
	}

	entity.ApplyRejection(actorID, reason, requestcontext.Now(ctx))
	if err := s.persist(ctx, entity); err != nil {
		return nil, err
	}

	s.metrics.IncrementRejected()
	s.notifier.Publish(notify.Event{
		Kind:       notify.KindRejected,
		Recipient:  entity.Email,
		EntityID:   entity.ID.String(),
		EntityName: entity.Name,
		Details:    entity.RejectionReason,
	})
	return entity, nil
}

// Stats gathers per-status counts concurrently and sums the grand total.
func (s *Service) Stats(ctx context.Context) (*models.Stats, error) {
	ctx, span := s.tracer.Start(ctx, "entity.Stats")
	defer span.End()

	var stats models.Stats
	g, gctx := errgroup.WithContext(ctx)

	counts := []struct {
		status models.Status
		dest   *int
	}{
		{models.StatusPending, &stats.Pending},
		{models.StatusApproved, &stats.Approved},
		{models.StatusRejected, &stats.Rejected},
		{models.StatusUnderReview, &stats.UnderReview},
	}
	for _, c := range counts {
		g.Go(func() error {
			n, err := s.store.CountByStatus(gctx, c.status)
			if err != nil {
				return err
			}
			*c.dest = n
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to aggregate entity stats")
	}

	stats.Total = stats.Pending + stats.Approved + stats.Rejected + stats.UnderReview
	return &stats, nil
}

// load fetches the authoritative record from the durable store; mutations
// never trust the cache snapshot.
func (s *Service) load(ctx context.Context, id uuid.UUID) (*models.Entity, error) {
	entity, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "entity not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load entity")
	}
	return entity, nil
}

// persist writes through to the store and then unconditionally replaces the
// cache snapshot. A cache write failure fails the operation: swallowing it
// would leave a stale snapshot serving reads for up to the TTL.
func (s *Service) persist(ctx context.Context, entity *models.Entity) error {
	if err := s.store.Update(ctx, entity); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "entity not found")
		}
		if errors.Is(err, sentinel.ErrConflict) {
			return dErrors.New(dErrors.CodeDuplicateIdentifier, "identification number is already registered")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to persist entity")
	}
	if err := s.cache.Set(ctx, entity); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to refresh entity cache")
	}
	return nil
}

func applyUpdate(entity *models.Entity, req *models.UpdateEntityRequest) {
	if req.Name != nil {
		entity.Name = *req.Name
	}
	if req.Email != nil {
		entity.Email = *req.Email
	}
	if req.Phone != nil {
		entity.Phone = *req.Phone
	}
	if req.DateOfBirth != nil {
		entity.DateOfBirth = req.DateOfBirth
	}
	if req.Address != nil {
		entity.Address = *req.Address
	}
	if req.ProfilePhoto != nil {
		entity.ProfilePhoto = req.ProfilePhoto
	}
	if req.Documents != nil {
		entity.Documents = *req.Documents
	}
	if req.Status != nil {
		entity.Status = *req.Status
	}
	if req.AdditionalData != nil {
		entity.AdditionalData = *req.AdditionalData
	}
}
