// Package service drives the six-step entity intake wizard. Sessions live
// only in the cache under a sliding TTL; finalize promotes the assembled
// record into the durable store.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"intake/internal/entity/cache"
	entitymetrics "intake/internal/entity/metrics"
	entitymodels "intake/internal/entity/models"
	entitystore "intake/internal/entity/store"
	platformmetrics "intake/internal/platform/metrics"
	"intake/internal/wizard/models"
	"intake/internal/wizard/store"
	dErrors "intake/pkg/domain-errors"
	"intake/pkg/platform/sentinel"
	"intake/pkg/requestcontext"
)

// Service holds the wizard workflow dependencies. Every step mutation saves
// the full record back, which restarts the session TTL.
type Service struct {
	sessions      store.SessionStore
	entities      entitystore.Store
	cache         cache.EntityCache
	sessionTTL    time.Duration
	logger        *slog.Logger
	metrics       *platformmetrics.Metrics
	entityMetrics *entitymetrics.Metrics
	tracer        trace.Tracer
}

func NewService(
	sessions store.SessionStore,
	entities entitystore.Store,
	ca cache.EntityCache,
	sessionTTL time.Duration,
	logger *slog.Logger,
	metrics *platformmetrics.Metrics,
	entityMetrics *entitymetrics.Metrics,
) *Service {
	return &Service{
		sessions:      sessions,
		entities:      entities,
		cache:         ca,
		sessionTTL:    sessionTTL,
		logger:        logger,
		metrics:       metrics,
		entityMetrics: entityMetrics,
		tracer:        otel.Tracer("intake/wizard"),
	}
}

// Begin runs step 1: it checks the identification number against durable
// entities and opens a fresh session. The check is advisory; the unique
// constraint at finalize is what actually enforces uniqueness.
func (s *Service) Begin(ctx context.Context, req *models.BeginRequest) (*models.StepResult, error) {
	ctx, span := s.tracer.Start(ctx, "wizard.Begin")
	defer span.End()

	if err := req.Validate(); err != nil {
		return nil, err
	}

	_, err := s.entities.FindByIdentificationNumber(ctx, req.IdentificationNumber)
	if err == nil {
		return nil, dErrors.New(dErrors.CodeDuplicateIdentifier, "identification number is already registered")
	}
	if !errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check identification number")
	}

	now := requestcontext.Now(ctx)
	record := &models.SessionRecord{
		TempID:               models.NewTempID(now),
		Name:                 req.Name,
		IdentificationNumber: req.IdentificationNumber,
		CreatedAt:            now,
	}
	record.MarkStep(1, models.StepBasicInfo, now)

	if err := s.save(ctx, record); err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.WizardSessions.Inc()
	}
	return models.NewStepResult(record), nil
}

// Contact runs step 2 on an existing session.
func (s *Service) Contact(ctx context.Context, tempID string, req *models.ContactRequest) (*models.StepResult, error) {
	ctx, span := s.tracer.Start(ctx, "wizard.Contact")
	defer span.End()

	if err := req.Validate(); err != nil {
		return nil, err
	}
	record, err := s.loadSession(ctx, tempID)
	if err != nil {
		return nil, err
	}

	record.Email = req.Email
	record.Phone = req.Phone
	record.DateOfBirth = req.DateOfBirth
	record.MarkStep(2, models.StepContactInfo, requestcontext.Now(ctx))

	if err := s.save(ctx, record); err != nil {
		return nil, err
	}
	return models.NewStepResult(record), nil
}

// Address runs step 3.
func (s *Service) Address(ctx context.Context, tempID string, req *models.AddressRequest) (*models.StepResult, error) {
	ctx, span := s.tracer.Start(ctx, "wizard.Address")
	defer span.End()

	if err := req.Validate(); err != nil {
		return nil, err
	}
	record, err := s.loadSession(ctx, tempID)
	if err != nil {
		return nil, err
	}

	address := req.Address
	record.Address = &address
	record.MarkStep(3, models.StepAddressInfo, requestcontext.Now(ctx))

	if err := s.save(ctx, record); err != nil {
		return nil, err
	}
	return models.NewStepResult(record), nil
}

// Photo runs step 4, attaching profile photo metadata.
func (s *Service) Photo(ctx context.Context, tempID string, req *models.PhotoRequest) (*models.StepResult, error) {
	ctx, span := s.tracer.Start(ctx, "wizard.Photo")
	defer span.End()

	if err := req.Validate(); err != nil {
		return nil, err
	}
	record, err := s.loadSession(ctx, tempID)
	if err != nil {
		return nil, err
	}

	photo := req.ProfilePhoto
	record.ProfilePhoto = &photo
	record.MarkStep(4, models.StepProfilePhoto, requestcontext.Now(ctx))

	if err := s.save(ctx, record); err != nil {
		return nil, err
	}
	return models.NewStepResult(record), nil
}

// Documents runs step 5. The document list replaces whatever a previous run
// of the step attached; an empty list is valid.
func (s *Service) Documents(ctx context.Context, tempID string, req *models.DocumentsRequest) (*models.StepResult, error) {
	ctx, span := s.tracer.Start(ctx, "wizard.Documents")
	defer span.End()

	if err := req.Validate(); err != nil {
		return nil, err
	}
	record, err := s.loadSession(ctx, tempID)
	if err != nil {
		return nil, err
	}

	record.Documents = req.Documents
	record.MarkStep(5, models.StepDocuments, requestcontext.Now(ctx))

	if err := s.save(ctx, record); err != nil {
		return nil, err
	}
	return models.NewStepResult(record), nil
}

// Finalize runs step 6: it merges the optional additional data, promotes the
// session into a durable PENDING entity, write-through caches it, and tears
// the session down. Session deletion is best effort; expiry collects leftovers.
func (s *Service) Finalize(ctx context.Context, tempID string, req *models.FinalizeRequest, actorID string) (*entitymodels.Entity, error) {
	ctx, span := s.tracer.Start(ctx, "wizard.Finalize")
	defer span.End()

	record, err := s.loadSession(ctx, tempID)
	if err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	record.AdditionalData = req.AdditionalData
	record.MarkStep(models.TotalSteps, models.StepAdditionalInfo, now)

	entity, err := buildEntity(record, actorID, now)
	if err != nil {
		return nil, err
	}

	if err := s.entities.Insert(ctx, entity); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeDuplicateIdentifier, "identification number is already registered")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to finalize entity")
	}
	if err := s.cache.Set(ctx, entity); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to cache entity")
	}

	if err := s.sessions.Delete(ctx, tempID); err != nil {
		s.logger.WarnContext(ctx, "failed to delete wizard session after finalize",
			"request_id", requestcontext.RequestID(ctx),
			"temp_id", tempID,
			"error", err.Error(),
		)
	}

	s.entityMetrics.IncrementCreated()
	return entity, nil
}

// Progress returns the progress snapshot without mutating the session or its
// TTL.
func (s *Service) Progress(ctx context.Context, tempID string) (*models.Progress, error) {
	ctx, span := s.tracer.Start(ctx, "wizard.Progress")
	defer span.End()

	record, err := s.loadSession(ctx, tempID)
	if err != nil {
		return nil, err
	}
	return models.BuildProgress(record), nil
}

// Cancel discards an in-progress session. Cancelling an absent or expired
// session is not an error.
func (s *Service) Cancel(ctx context.Context, tempID string) error {
	ctx, span := s.tracer.Start(ctx, "wizard.Cancel")
	defer span.End()

	if err := s.sessions.Delete(ctx, tempID); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to cancel wizard session")
	}
	return nil
}

// loadSession resolves a temp id; absence and expiry are indistinguishable
// and both surface as a gone session.
func (s *Service) loadSession(ctx context.Context, tempID string) (*models.SessionRecord, error) {
	record, err := s.sessions.Find(ctx, tempID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			if s.metrics != nil {
				s.metrics.WizardExpired.Inc()
			}
			return nil, dErrors.New(dErrors.CodeSessionExpired, "wizard session not found or expired")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load wizard session")
	}
	return record, nil
}

// save writes the full record back, restarting the sliding session TTL.
func (s *Service) save(ctx context.Context, record *models.SessionRecord) error {
	if err := s.sessions.Save(ctx, record, s.sessionTTL); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save wizard session")
	}
	return nil
}

// buildEntity validates the assembled session and materializes the durable
// record. Required fields from steps 1 through 3 must all be present, no
// matter which steps the client actually called.
func buildEntity(record *models.SessionRecord, actorID string, now time.Time) (*entitymodels.Entity, error) {
	if record.Name == "" || record.IdentificationNumber == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "name and identificationNumber are required before completion")
	}
	if record.Email == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "email is required before completion")
	}
	if record.Address == nil {
		return nil, dErrors.New(dErrors.CodeValidation, "address is required before completion")
	}
	if err := record.Address.Validate(); err != nil {
		return nil, err
	}

	documents := record.Documents
	if documents == nil {
		documents = []entitymodels.Document{}
	}
	return &entitymodels.Entity{
		ID:                   uuid.New(),
		Name:                 record.Name,
		IdentificationNumber: record.IdentificationNumber,
		InquiryID:            entitymodels.NewInquiryID(),
		Email:                record.Email,
		Phone:                record.Phone,
		DateOfBirth:          record.DateOfBirth,
		Address:              *record.Address,
		ProfilePhoto:         record.ProfilePhoto,
		Documents:            documents,
		Status:               entitymodels.StatusPending,
		CreatedBy:            actorID,
		CreatedAt:            now,
		UpdatedAt:            now,
		AdditionalData:       record.AdditionalData,
	}, nil
}
