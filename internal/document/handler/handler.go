// Package handler receives multipart document uploads for an entity.
package handler

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"intake/internal/document/service"
	entitymodels "intake/internal/entity/models"
	"intake/internal/platform/middleware"
	dErrors "intake/pkg/domain-errors"
	"intake/pkg/platform/httputil"
	"intake/pkg/requestcontext"
)

// maxUploadBytes bounds one multipart request body (10 files at 5 MB).
const maxUploadBytes = 50 << 20

// Service defines the document operations the handler needs.
type Service interface {
	Attach(ctx context.Context, entityID uuid.UUID, uploads []service.Upload) (*entitymodels.Entity, error)
	Fetch(ctx context.Context, entityID uuid.UUID, filename string) (*entitymodels.Document, []byte, error)
}

type Handler struct {
	documents    Service
	logger       *slog.Logger
	jwtValidator middleware.JWTValidator
}

func New(documents Service, logger *slog.Logger, jwtValidator middleware.JWTValidator) *Handler {
	return &Handler{
		documents:    documents,
		logger:       logger,
		jwtValidator: jwtValidator,
	}
}

// Register mounts the document routes. Uploads are multipart and downloads
// are raw bytes, so both stay outside the JSON content-type middleware.
// Downloads are open, like the other entity reads.
func (h *Handler) Register(r chi.Router) {
	r.Get("/entities/{id}/documents/{filename}", h.handleDownload)
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(h.jwtValidator, h.logger))
		r.Post("/entities/{id}/documents", h.handleUpload)
	})
}

func (h *Handler) handleDownload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid entity id"))
		return
	}

	document, data, err := h.documents.Fetch(ctx, id, chi.URLParam(r, "filename"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	w.Header().Set("Content-Type", document.MimeType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", document.OriginalName))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (h *Handler) handleUpload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid entity id"))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid multipart body"))
		return
	}

	files := r.MultipartForm.File["documents"]
	if len(files) == 0 {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "at least one document is required"))
		return
	}
	if len(files) > entitymodels.MaxDocumentsPerUpload {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "at most 10 documents per request"))
		return
	}

	uploads := make([]service.Upload, 0, len(files))
	for _, header := range files {
		file, err := header.Open()
		if err != nil {
			httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "unreadable document part"))
			return
		}
		data, err := io.ReadAll(file)
		_ = file.Close()
		if err != nil {
			httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "unreadable document part"))
			return
		}
		uploads = append(uploads, service.Upload{
			OriginalName: header.Filename,
			MimeType:     header.Header.Get("Content-Type"),
			Data:         data,
		})
	}

	entity, err := h.documents.Attach(ctx, id, uploads)
	if err != nil {
		h.logger.WarnContext(ctx, "document upload failed",
			"request_id", requestcontext.RequestID(ctx),
			"entity_id", id,
			"error", err.Error(),
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, entitymodels.Envelope{
		Success: true,
		Message: "Documents uploaded successfully",
		Data:    entity,
	})
}
