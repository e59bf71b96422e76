// Package handler exposes the durable entity operations over HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"intake/internal/entity/models"
	"intake/internal/entity/store"
	"intake/internal/platform/middleware"
	dErrors "intake/pkg/domain-errors"
	"intake/pkg/platform/httputil"
	"intake/pkg/requestcontext"
)

// Service defines the entity operations the handler needs.
type Service interface {
	Create(ctx context.Context, req *models.CreateEntityRequest, actorID string) (*models.Entity, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Entity, error)
	List(ctx context.Context, query store.ListQuery) (*models.EntityPage, error)
	Update(ctx context.Context, id uuid.UUID, req *models.UpdateEntityRequest) (*models.Entity, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Approve(ctx context.Context, id uuid.UUID, actorID, notes string) (*models.Entity, error)
	Reject(ctx context.Context, id uuid.UUID, actorID, reason string) (*models.Entity, error)
	Stats(ctx context.Context) (*models.Stats, error)
}

type Handler struct {
	entities     Service
	logger       *slog.Logger
	jwtValidator middleware.JWTValidator
}

func New(entities Service, logger *slog.Logger, jwtValidator middleware.JWTValidator) *Handler {
	return &Handler{
		entities:     entities,
		logger:       logger,
		jwtValidator: jwtValidator,
	}
}

// Register mounts the entity routes. Reads are open; mutations require an
// approver token.
func (h *Handler) Register(r chi.Router) {
	r.Route("/entities", func(r chi.Router) {
		r.Get("/", h.handleList)
		r.Get("/stats", h.handleStats)
		r.Get("/{id}", h.handleGet)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(h.jwtValidator, h.logger))
			r.Post("/", h.handleCreate)
			r.Put("/{id}", h.handleUpdate)
			r.Delete("/{id}", h.handleDelete)
			r.Post("/{id}/approve", h.handleApprove)
			r.Post("/{id}/reject", h.handleReject)
		})
	})
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[models.CreateEntityRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}

	entity, err := h.entities.Create(ctx, &req, requestcontext.ActorID(ctx))
	if err != nil {
		h.logError(ctx, "entity create failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, models.Envelope{
		Success: true,
		Message: "Entity created successfully",
		Data:    entity,
	})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	entity, err := h.entities.Get(ctx, id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, models.Envelope{
		Success: true,
		Data:    entity,
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	query, err := parseListQuery(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	page, err := h.entities.List(ctx, query)
	if err != nil {
		h.logError(ctx, "entity list failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, models.Envelope{
		Success: true,
		Data:    page,
	})
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[models.UpdateEntityRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}

	entity, err := h.entities.Update(ctx, id, &req)
	if err != nil {
		h.logError(ctx, "entity update failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, models.Envelope{
		Success: true,
		Message: "Entity updated successfully",
		Data:    entity,
	})
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	if err := h.entities.Delete(ctx, id); err != nil {
		h.logError(ctx, "entity delete failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, models.Envelope{
		Success: true,
		Message: "Entity deleted successfully",
	})
}

func (h *Handler) handleApprove(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[models.ApproveRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}

	entity, err := h.entities.Approve(ctx, id, requestcontext.ActorID(ctx), req.ApprovalNotes)
	if err != nil {
		h.logError(ctx, "entity approve failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, models.Envelope{
		Success: true,
		Message: "Entity approved successfully",
		Data:    entity,
	})
}

func (h *Handler) handleReject(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[models.RejectRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}

	entity, err := h.entities.Reject(ctx, id, requestcontext.ActorID(ctx), req.RejectionReason)
	if err != nil {
		h.logError(ctx, "entity reject failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, models.Envelope{
		Success: true,
		Message: "Entity rejected successfully",
		Data:    entity,
	})
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	stats, err := h.entities.Stats(ctx)
	if err != nil {
		h.logError(ctx, "entity stats failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, models.Envelope{
		Success: true,
		Data:    stats,
	})
}

func (h *Handler) parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid entity id"))
		return uuid.Nil, false
	}
	return id, true
}

// parseListQuery maps listing query parameters onto a ListQuery. Unknown sort
// fields and out-of-range paging are normalized downstream, but an unknown
// status filter is an error so clients do not silently get everything.
func parseListQuery(r *http.Request) (store.ListQuery, error) {
	q := store.ListQuery{
		Search: r.URL.Query().Get("search"),
		SortBy: r.URL.Query().Get("sortBy"),
	}
	if raw := r.URL.Query().Get("status"); raw != "" {
		status := models.Status(raw)
		if !models.ValidStatus(status) {
			return q, dErrors.New(dErrors.CodeValidation, "unknown status filter")
		}
		q.Status = &status
	}
	q.SortAsc = r.URL.Query().Get("sortOrder") == "asc"
	if raw := r.URL.Query().Get("page"); raw != "" {
		if page, err := strconv.Atoi(raw); err == nil {
			q.Page = page
		}
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if limit, err := strconv.Atoi(raw); err == nil {
			q.Limit = limit
		}
	}
	return q, nil
}

func (h *Handler) logError(ctx context.Context, msg string, err error) {
	h.logger.WarnContext(ctx, msg,
		"request_id", requestcontext.RequestID(ctx),
		"error", err.Error(),
	)
}
