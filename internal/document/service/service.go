// Package service stores uploaded document batches and attaches their
// metadata to the owning entity.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"intake/internal/document/storage"
	entitymodels "intake/internal/entity/models"
	dErrors "intake/pkg/domain-errors"
	"intake/pkg/platform/sentinel"
	"intake/pkg/requestcontext"
)

// EntityDirectory is the slice of the entity service the document flow needs.
type EntityDirectory interface {
	Get(ctx context.Context, id uuid.UUID) (*entitymodels.Entity, error)
	AddDocuments(ctx context.Context, id uuid.UUID, documents []entitymodels.Document) (*entitymodels.Entity, error)
}

// Upload is one file received from the client.
type Upload struct {
	OriginalName string
	MimeType     string
	Data         []byte
}

type Service struct {
	blobs    storage.BlobStore
	entities EntityDirectory
	logger   *slog.Logger
	tracer   trace.Tracer
}

func NewService(blobs storage.BlobStore, entities EntityDirectory, logger *slog.Logger) *Service {
	return &Service{
		blobs:    blobs,
		entities: entities,
		logger:   logger,
		tracer:   otel.Tracer("intake/document"),
	}
}

// Attach stores each upload and appends the resulting metadata to the entity.
// Blobs written before a failed entity update are orphaned, not rolled back;
// the metadata append is the commit point.
func (s *Service) Attach(ctx context.Context, entityID uuid.UUID, uploads []Upload) (*entitymodels.Entity, error) {
	ctx, span := s.tracer.Start(ctx, "document.Attach")
	defer span.End()

	if len(uploads) == 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "at least one document is required")
	}
	if len(uploads) > entitymodels.MaxDocumentsPerUpload {
		return nil, dErrors.New(dErrors.CodeValidation, "at most 10 documents per request")
	}

	now := requestcontext.Now(ctx)
	documents := make([]entitymodels.Document, 0, len(uploads))
	for _, upload := range uploads {
		if upload.OriginalName == "" {
			return nil, dErrors.New(dErrors.CodeValidation, "document filename is required")
		}
		filename := storedFilename(upload.OriginalName)
		path, err := s.blobs.Put(ctx, filename, upload.Data)
		if err != nil {
			s.logger.ErrorContext(ctx, "document blob write failed",
				"request_id", requestcontext.RequestID(ctx),
				"entity_id", entityID,
				"filename", upload.OriginalName,
				"error", err.Error(),
			)
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to store document")
		}
		documents = append(documents, entitymodels.Document{
			Type:         entitymodels.DocumentTypeFromMIME(upload.MimeType),
			Filename:     filename,
			OriginalName: upload.OriginalName,
			MimeType:     upload.MimeType,
			Size:         int64(len(upload.Data)),
			Path:         path,
			UploadedAt:   now,
		})
	}

	return s.entities.AddDocuments(ctx, entityID, documents)
}

// Fetch resolves a stored document by its generated filename and returns the
// metadata record together with the blob bytes. The profile photo is
// addressable the same way as the supporting documents.
func (s *Service) Fetch(ctx context.Context, entityID uuid.UUID, filename string) (*entitymodels.Document, []byte, error) {
	ctx, span := s.tracer.Start(ctx, "document.Fetch")
	defer span.End()

	entity, err := s.entities.Get(ctx, entityID)
	if err != nil {
		return nil, nil, err
	}

	document := findDocument(entity, filename)
	if document == nil {
		return nil, nil, dErrors.New(dErrors.CodeNotFound, "document not found")
	}

	data, err := s.blobs.Get(ctx, document.Path)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, nil, dErrors.New(dErrors.CodeNotFound, "document not found")
		}
		return nil, nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read document")
	}
	return document, data, nil
}

func findDocument(entity *entitymodels.Entity, filename string) *entitymodels.Document {
	for i := range entity.Documents {
		if entity.Documents[i].Filename == filename {
			return &entity.Documents[i]
		}
	}
	if entity.ProfilePhoto != nil && entity.ProfilePhoto.Filename == filename {
		return entity.ProfilePhoto
	}
	return nil
}

// storedFilename makes the on-disk name unique while keeping the original
// extension for serving.
func storedFilename(originalName string) string {
	return fmt.Sprintf("%s%s", uuid.NewString(), filepath.Ext(originalName))
}
