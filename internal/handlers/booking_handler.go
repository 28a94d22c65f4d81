package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/cubanstagelink-ai/reupspots-app/internal/apperr"
	"github.com/cubanstagelink-ai/reupspots-app/internal/authz"
	"github.com/cubanstagelink-ai/reupspots-app/internal/booking"
	"github.com/cubanstagelink-ai/reupspots-app/internal/middleware"
	"github.com/cubanstagelink-ai/reupspots-app/internal/models"
)

// BookingService is the booking surface the handler serves.
type BookingService interface {
	Create(ctx context.Context, buyer authz.Actor, in booking.CreateInput) (*models.Booking, error)
	Get(ctx context.Context, actor authz.Actor, id uuid.UUID) (*models.Booking, error)
	MarkPaid(ctx context.Context, actor authz.Actor, id uuid.UUID, which string, sessionID *string) (*models.Booking, error)
	Confirm(ctx context.Context, actor authz.Actor, id uuid.UUID, which string) (*models.Booking, error)
	Cancel(ctx context.Context, actor authz.Actor, id uuid.UUID) (*models.Booking, error)
}

// BookingHandler serves /api/bookings endpoints.
type BookingHandler struct {
	Bookings BookingService
	Validate *validator.Validate
	Logger   *slog.Logger
}

type createBookingRequest struct {
	PostID           string `json:"post_id" validate:"omitempty,uuid4"`
	WorkerSlug       string `json:"worker_slug"`
	Tier             string `json:"tier" validate:"required"`
	BasePay          int64  `json:"base_pay" validate:"required,gt=0"`
	Boost            string `json:"boost"`
	PaymentStructure string `json:"payment_structure" validate:"required,oneof=full_upfront split_50_50"`
}

// Create handles POST /api/bookings.
func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor := middleware.ActorFromCtx(r.Context())
	if actor == nil {
		writeError(w, h.Logger, apperr.ErrUnauthenticated)
		return
	}
	var req createBookingRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.Logger, apperr.Validation("body", "invalid JSON"))
		return
	}
	if err := h.Validate.Struct(req); err != nil {
		writeError(w, h.Logger, err)
		return
	}

	in := booking.CreateInput{
		Tier:             req.Tier,
		BasePay:          req.BasePay,
		Boost:            req.Boost,
		PaymentStructure: req.PaymentStructure,
	}
	if req.PostID != "" {
		postID, err := uuid.Parse(req.PostID)
		if err != nil {
			writeError(w, h.Logger, apperr.Validation("post_id", "must be a uuid"))
			return
		}
		in.PostID = &postID
	}
	if req.WorkerSlug != "" {
		in.WorkerSlug = &req.WorkerSlug
	}

	b, err := h.Bookings.Create(r.Context(), *actor, in)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, b)
}

// Get handles GET /api/bookings/{id}.
func (h *BookingHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := h.actorAndID(w, r)
	if !ok {
		return
	}
	b, err := h.Bookings.Get(r.Context(), *actor, id)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

type installmentRequest struct {
	Installment string  `json:"installment" validate:"omitempty,oneof=deposit final"`
	Status      string  `json:"status" validate:"required,oneof=submitted paid"`
	SessionID   *string `json:"session_id,omitempty"`
}

// RecordInstallment handles POST /api/bookings/{id}/installment. A
// "submitted" status is the buyer reporting payment; "paid" is the admin
// confirmation that triggers the derived-status recompute.
func (h *BookingHandler) RecordInstallment(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := h.actorAndID(w, r)
	if !ok {
		return
	}
	var req installmentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.Logger, apperr.Validation("body", "invalid JSON"))
		return
	}
	if err := h.Validate.Struct(req); err != nil {
		writeError(w, h.Logger, err)
		return
	}

	var b *models.Booking
	var err error
	switch req.Status {
	case models.InstallmentSubmitted:
		b, err = h.Bookings.MarkPaid(r.Context(), *actor, id, req.Installment, req.SessionID)
	case models.InstallmentPaid:
		b, err = h.Bookings.Confirm(r.Context(), *actor, id, req.Installment)
	}
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

type statusRequest struct {
	Status string `json:"status" validate:"required,oneof=payment_submitted confirmed cancelled"`
}

// SetStatus handles POST /api/bookings/{id}/status for full-upfront
// transitions and cancellation.
func (h *BookingHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := h.actorAndID(w, r)
	if !ok {
		return
	}
	var req statusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.Logger, apperr.Validation("body", "invalid JSON"))
		return
	}
	if err := h.Validate.Struct(req); err != nil {
		writeError(w, h.Logger, err)
		return
	}

	var b *models.Booking
	var err error
	switch req.Status {
	case models.BookingPaymentSubmitted:
		b, err = h.Bookings.MarkPaid(r.Context(), *actor, id, "", nil)
	case models.BookingConfirmed:
		b, err = h.Bookings.Confirm(r.Context(), *actor, id, "")
	case models.BookingCancelled:
		b, err = h.Bookings.Cancel(r.Context(), *actor, id)
	}
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (h *BookingHandler) actorAndID(w http.ResponseWriter, r *http.Request) (*authz.Actor, uuid.UUID, bool) {
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
