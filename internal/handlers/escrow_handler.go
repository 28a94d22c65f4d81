package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/cubanstagelink-ai/reupspots-app/internal/apperr"
	"github.com/cubanstagelink-ai/reupspots-app/internal/authz"
	"github.com/cubanstagelink-ai/reupspots-app/internal/middleware"
	"github.com/cubanstagelink-ai/reupspots-app/internal/models"
)

// EscrowController is the escrow surface the handler serves.
type EscrowController interface {
	Reserve(ctx context.Context, actor authz.Actor, id uuid.UUID) (*models.Booking, string, error)
	ConfirmReservation(ctx context.Context, actor authz.Actor, id uuid.UUID) (*models.Booking, error)
	Release(ctx context.Context, actor authz.Actor, id uuid.UUID) (*models.Booking, error)
	Cancel(ctx context.Context, actor authz.Actor, id uuid.UUID) (*models.Booking, error)
}

// EscrowHandler serves /api/bookings/{id}/escrow endpoints.
type EscrowHandler struct {
	Escrow EscrowController
	Logger *slog.Logger
}

// Reserve handles POST /api/bookings/{id}/escrow/reserve.
func (h *EscrowHandler) Reserve(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := h.actorAndID(w, r)
	if !ok {
		return
	}
	b, checkoutURL, err := h.Escrow.Reserve(r.Context(), *actor, id)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{"booking": b, "checkout_url": checkoutURL})
}

// Confirm handles POST /api/bookings/{id}/escrow/confirm.
func (h *EscrowHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.Escrow.ConfirmReservation)
}

// Release handles POST /api/bookings/{id}/escrow/release.
func (h *EscrowHandler) Release(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.Escrow.Release)
}

// Cancel handles POST /api/bookings/{id}/escrow/cancel.
func (h *EscrowHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.Escrow.Cancel)
}

func (h *EscrowHandler) transition(w http.ResponseWriter, r *http.Request,
	op func(ctx context.Context, actor authz.Actor, id uuid.UUID) (*models.Booking, error)) {
	actor, id, ok := h.actorAndID(w, r)
	if !ok {
		return
	}
	b, err := op(r.Context(), *actor, id)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (h *EscrowHandler) actorAndID(w http.ResponseWriter, r *http.Request) (*authz.Actor, uuid.UUID, bool) {
	actor := middleware.ActorFromCtx(r.Context())
	if actor == nil {
		writeError(w, h.Logger, apperr.ErrUnauthenticated)
		return nil, uuid.Nil, false
	}
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, h.Logger, apperr.Validation("id", "must be a uuid"))
		return nil, uuid.Nil, false
	}
	return actor, id, true
}
