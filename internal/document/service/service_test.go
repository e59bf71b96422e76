package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	entitymodels "intake/internal/entity/models"
	dErrors "intake/pkg/domain-errors"
	"intake/pkg/platform/sentinel"
	"intake/pkg/requestcontext"
)

// memoryBlobs records stored blobs in a map.
type memoryBlobs struct {
	blobs map[string][]byte
	err   error
}

func newMemoryBlobs() *memoryBlobs {
	return &memoryBlobs{blobs: make(map[string][]byte)}
}

func (b *memoryBlobs) Put(_ context.Context, filename string, data []byte) (string, error) {
	if b.err != nil {
		return "", b.err
	}
	b.blobs[filename] = data
	return "/documents/" + filename, nil
}

func (b *memoryBlobs) Get(_ context.Context, path string) ([]byte, error) {
	if data, ok := b.blobs[strings.TrimPrefix(path, "/documents/")]; ok {
		return data, nil
	}
	return nil, sentinel.ErrNotFound
}

func (b *memoryBlobs) Remove(_ context.Context, path string) error {
	delete(b.blobs, strings.TrimPrefix(path, "/documents/"))
	return nil
}

// appenderStub captures what the service hands to the entity workflow.
type appenderStub struct {
	entityID  uuid.UUID
	documents []entitymodels.Document
	entity    *entitymodels.Entity
	err       error
}

func (a *appenderStub) AddDocuments(_ context.Context, id uuid.UUID, documents []entitymodels.Document) (*entitymodels.Entity, error) {
	if a.err != nil {
		return nil, a.err
	}
	a.entityID = id
	a.documents = documents
	return &entitymodels.Entity{ID: id, Documents: documents}, nil
}

func (a *appenderStub) Get(_ context.Context, id uuid.UUID) (*entitymodels.Entity, error) {
	if a.entity == nil {
		return nil, dErrors.New(dErrors.CodeNotFound, "entity not found")
	}
	return a.entity, nil
}

func newService(blobs *memoryBlobs, appender *appenderStub) *Service {
	return NewService(blobs, appender, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestAttach(t *testing.T) {
	now := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	ctx := requestcontext.WithTime(context.Background(), now)
	entityID := uuid.New()

	t.Run("stores blobs and builds metadata", func(t *testing.T) {
		blobs := newMemoryBlobs()
		appender := &appenderStub{}
		svc := newService(blobs, appender)

		_, err := svc.Attach(ctx, entityID, []Upload{
			{OriginalName: "contract.pdf", MimeType: "application/pdf", Data: []byte("pdf-bytes")},
			{OriginalName: "logo.png", MimeType: "image/png", Data: []byte("png-bytes")},
		})
		require.NoError(t, err)

		require.Len(t, appender.documents, 2)
		assert.Equal(t, entityID, appender.entityID)

		pdf := appender.documents[0]
		assert.Equal(t, entitymodels.DocumentTypePDF, pdf.Type)
		assert.Equal(t, "contract.pdf", pdf.OriginalName)
		assert.True(t, strings.HasSuffix(pdf.Filename, ".pdf"))
		assert.NotEqual(t, "contract.pdf", pdf.Filename)
		assert.Equal(t, int64(len("pdf-bytes")), pdf.Size)
		assert.Equal(t, "/documents/"+pdf.Filename, pdf.Path)
		assert.Equal(t, now, pdf.UploadedAt)

		assert.Equal(t, entitymodels.DocumentTypeImage, appender.documents[1].Type)
		assert.Len(t, blobs.blobs, 2)
	})

	t.Run("empty batch fails validation", func(t *testing.T) {
		svc := newService(newMemoryBlobs(), &appenderStub{})
		_, err := svc.Attach(ctx, entityID, nil)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})

	t.Run("batch over the cap fails validation", func(t *testing.T) {
		svc := newService(newMemoryBlobs(), &appenderStub{})
		batch := make([]Upload, entitymodels.MaxDocumentsPerUpload+1)
		for i := range batch {
			batch[i] = Upload{OriginalName: "f.pdf", MimeType: "application/pdf"}
		}
		_, err := svc.Attach(ctx, entityID, batch)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})

	t.Run("blob failure is internal", func(t *testing.T) {
		blobs := newMemoryBlobs()
		blobs.err = errors.New("disk full")
		svc := newService(blobs, &appenderStub{})

		_, err := svc.Attach(ctx, entityID, []Upload{{OriginalName: "f.pdf", MimeType: "application/pdf"}})
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInternal))
	})

	t.Run("entity workflow errors pass through", func(t *testing.T) {
		appender := &appenderStub{err: dErrors.New(dErrors.CodeInvalidState, "terminal")}
		svc := newService(newMemoryBlobs(), appender)

		_, err := svc.Attach(ctx, entityID, []Upload{{OriginalName: "f.pdf", MimeType: "application/pdf"}})
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidState))
	})
}

func TestFetch(t *testing.T) {
	ctx := context.Background()
	entityID := uuid.New()

	stored := func(blobs *memoryBlobs) *entitymodels.Entity {
		blobs.blobs["c.pdf"] = []byte("pdf-bytes")
		blobs.blobs["p.png"] = []byte("png-bytes")
		return &entitymodels.Entity{
			ID: entityID,
			Documents: []entitymodels.Document{{
				Filename: "c.pdf", OriginalName: "contract.pdf",
				MimeType: "application/pdf", Path: "/documents/c.pdf",
			}},
			ProfilePhoto: &entitymodels.Document{
				Filename: "p.png", OriginalName: "photo.png",
				MimeType: "image/png", Path: "/documents/p.png",
			},
		}
	}

	t.Run("returns metadata and bytes for a stored document", func(t *testing.T) {
		blobs := newMemoryBlobs()
		svc := newService(blobs, &appenderStub{entity: stored(blobs)})

		document, data, err := svc.Fetch(ctx, entityID, "c.pdf")
		require.NoError(t, err)
		assert.Equal(t, "contract.pdf", document.OriginalName)
		assert.Equal(t, []byte("pdf-bytes"), data)
	})

	t.Run("the profile photo is addressable by filename", func(t *testing.T) {
		blobs := newMemoryBlobs()
		svc := newService(blobs, &appenderStub{entity: stored(blobs)})

		document, data, err := svc.Fetch(ctx, entityID, "p.png")
		require.NoError(t, err)
		assert.Equal(t, "image/png", document.MimeType)
		assert.Equal(t, []byte("png-bytes"), data)
	})

	t.Run("unknown filename is not found", func(t *testing.T) {
		blobs := newMemoryBlobs()
		svc := newService(blobs, &appenderStub{entity: stored(blobs)})

		_, _, err := svc.Fetch(ctx, entityID, "nope.pdf")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	t.Run("missing blob behind known metadata is not found", func(t *testing.T) {
		blobs := newMemoryBlobs()
		entity := stored(blobs)
		delete(blobs.blobs, "c.pdf")
		svc := newService(blobs, &appenderStub{entity: entity})

		_, _, err := svc.Fetch(ctx, entityID, "c.pdf")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	t.Run("unknown entity is not found", func(t *testing.T) {
		svc := newService(newMemoryBlobs(), &appenderStub{})

		_, _, err := svc.Fetch(ctx, entityID, "c.pdf")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}
