package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/cubanstagelink-ai/reupspots-app/internal/apperr"
	"github.com/cubanstagelink-ai/reupspots-app/internal/authz"
	"github.com/cubanstagelink-ai/reupspots-app/internal/middleware"
	"github.com/cubanstagelink-ai/reupspots-app/internal/models"
)

// ApplicationService is the application surface the handler serves.
type ApplicationService interface {
	Apply(ctx context.Context, applicant authz.Actor, postID uuid.UUID) (*models.Application, error)
	Respond(ctx context.Context, actor authz.Actor, applicationID uuid.UUID, accept bool) (*models.Application, error)
}

// ApplicationHandler serves /api/applications endpoints.
type ApplicationHandler struct {
	Applications ApplicationService
	Validate     *validator.Validate
	Logger       *slog.Logger
}

type applyRequest struct {
	PostID string `json:"post_id" validate:"required,uuid4"`
}

// Apply handles POST /api/applications.
func (h *ApplicationHandler) Apply(w http.ResponseWriter, r *http.Request) {
	actor := middleware.ActorFromCtx(r.Context())
	if actor == nil {
		writeError(w, h.Logger, apperr.ErrUnauthenticated)
		return
	}
	var req applyRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.Logger, apperr.Validation("body", "invalid JSON"))
		return
	}
	if err := h.Validate.Struct(req); err != nil {
		writeError(w, h.Logger, err)
		return
	}
	postID, err := uuid.Parse(req.PostID)
	if err != nil {
		writeError(w, h.Logger, apperr.Validation("post_id", "must be a uuid"))
		return
	}

	a, err := h.Applications.Apply(r.Context(), *actor, postID)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

type respondRequest struct {
	Accept bool `json:"accept"`
}

// Respond handles POST /api/applications/{id}/respond.
func (h *ApplicationHandler) Respond(w http.ResponseWriter, r *http.Request) {
	actor := middleware.ActorFromCtx(r.Context())
	if actor == nil {
		writeError(w, h.Logger, apperr.ErrUnauthenticated)
		return
	}
	applicationID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, h.Logger, apperr.Validation("id", "must be a uuid"))
		return
	}
	var req respondRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.Logger, apperr.Validation("body", "invalid JSON"))
		return
	}

	a, err := h.Applications.Respond(r.Context(), *actor, applicationID, req.Accept)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}
