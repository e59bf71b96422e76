// Package handler exposes the step wizard over HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	entitymodels "intake/internal/entity/models"
	"intake/internal/wizard/models"
	"intake/pkg/platform/httputil"
	"intake/pkg/requestcontext"
)

// Service defines the wizard operations the handler needs.
type Service interface {
	Begin(ctx context.Context, req *models.BeginRequest) (*models.StepResult, error)
	Contact(ctx context.Context, tempID string, req *models.ContactRequest) (*models.StepResult, error)
	Address(ctx context.Context, tempID string, req *models.AddressRequest) (*models.StepResult, error)
	Photo(ctx context.Context, tempID string, req *models.PhotoRequest) (*models.StepResult, error)
	Documents(ctx context.Context, tempID string, req *models.DocumentsRequest) (*models.StepResult, error)
	Finalize(ctx context.Context, tempID string, req *models.FinalizeRequest, actorID string) (*entitymodels.Entity, error)
	Progress(ctx context.Context, tempID string) (*models.Progress, error)
	Cancel(ctx context.Context, tempID string) error
}

type Handler struct {
	wizard Service
	logger *slog.Logger
}

func New(wizard Service, logger *slog.Logger) *Handler {
	return &Handler{wizard: wizard, logger: logger}
}

// Register mounts the wizard routes.
func (h *Handler) Register(r chi.Router) {
	r.Route("/entities/wizard", func(r chi.Router) {
		r.Post("/start", h.handleBegin)
		r.Delete("/{tempId}", h.handleCancel)
		r.Put("/{tempId}/contact", h.handleContact)
		r.Put("/{tempId}/address", h.handleAddress)
		r.Put("/{tempId}/photo", h.handlePhoto)
		r.Put("/{tempId}/documents", h.handleDocuments)
		r.Post("/{tempId}/complete", h.handleFinalize)
		r.Get("/{tempId}/progress", h.handleProgress)
	})
}

func (h *Handler) handleBegin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[models.BeginRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}

	result, err := h.wizard.Begin(ctx, &req)
	if err != nil {
		h.logError(ctx, "wizard start failed", err)
		httputil.WriteError(w, err)
		return
	}
	writeStep(w, http.StatusCreated, "Entity creation started", result)
}

func (h *Handler) handleContact(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[models.ContactRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}

	result, err := h.wizard.Contact(ctx, chi.URLParam(r, "tempId"), &req)
	if err != nil {
		h.logError(ctx, "wizard contact step failed", err)
		httputil.WriteError(w, err)
		return
	}
	writeStep(w, http.StatusOK, "Contact information saved", result)
}

func (h *Handler) handleAddress(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[models.AddressRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}

	result, err := h.wizard.Address(ctx, chi.URLParam(r, "tempId"), &req)
	if err != nil {
		h.logError(ctx, "wizard address step failed", err)
		httputil.WriteError(w, err)
		return
	}
	writeStep(w, http.StatusOK, "Address information saved", result)
}

func (h *Handler) handlePhoto(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[models.PhotoRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}

	result, err := h.wizard.Photo(ctx, chi.URLParam(r, "tempId"), &req)
	if err != nil {
		h.logError(ctx, "wizard photo step failed", err)
		httputil.WriteError(w, err)
		return
	}
	writeStep(w, http.StatusOK, "Profile photo saved", result)
}

func (h *Handler) handleDocuments(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[models.DocumentsRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}

	result, err := h.wizard.Documents(ctx, chi.URLParam(r, "tempId"), &req)
	if err != nil {
		h.logError(ctx, "wizard documents step failed", err)
		httputil.WriteError(w, err)
		return
	}
	writeStep(w, http.StatusOK, "Documents saved", result)
}

func (h *Handler) handleFinalize(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[models.FinalizeRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}

	entity, err := h.wizard.Finalize(ctx, chi.URLParam(r, "tempId"), &req, requestcontext.ActorID(ctx))
	if err != nil {
		h.logError(ctx, "wizard finalize failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, entitymodels.Envelope{
		Success: true,
		Message: "Entity created successfully",
		Data:    entity,
	})
}

func (h *Handler) handleProgress(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	progress, err := h.wizard.Progress(ctx, chi.URLParam(r, "tempId"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, entitymodels.Envelope{
		Success: true,
		Data:    progress,
	})
}

func (h *Handler) handleCancel(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.wizard.Cancel(ctx, chi.URLParam(r, "tempId")); err != nil {
		h.logError(ctx, "wizard cancel failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, entitymodels.Envelope{
		Success: true,
		Message: "Entity creation cancelled",
	})
}

func writeStep(w http.ResponseWriter, status int, message string, result *models.StepResult) {
	httputil.WriteJSON(w, status, entitymodels.Envelope{
		Success: true,
		Message: message,
		Data:    result,
	})
}

func (h *Handler) logError(ctx context.Context, msg string, err error) {
	h.logger.WarnContext(ctx, msg,
		"request_id", requestcontext.RequestID(ctx),
		"error", err.Error(),
	)
}
