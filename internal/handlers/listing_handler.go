package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/cubanstagelink-ai/reupspots-app/internal/apperr"
	"github.com/cubanstagelink-ai/reupspots-app/internal/listing"
	"github.com/cubanstagelink-ai/reupspots-app/internal/middleware"
	"github.com/cubanstagelink-ai/reupspots-app/internal/models"
)

// ListingService is the listing surface the handler serves.
type ListingService interface {
	Create(ctx context.Context, userID uuid.UUID, in listing.CreateInput) (*models.Post, error)
	QuoteCost(ctx context.Context, userID uuid.UUID, in listing.CreateInput, basePay int64) (*listing.CostQuote, error)
	ListFeed(ctx context.Context, viewerID uuid.UUID) ([]*models.Post, error)
}

// ListingHandler serves /api/listings endpoints.
type ListingHandler struct {
	Listings ListingService
	Validate *validator.Validate
	Logger   *slog.Logger
}

// Create handles POST /api/listings.
func (h *ListingHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor := middleware.ActorFromCtx(r.Context())
	if actor == nil {
		writeError(w, h.Logger, apperr.ErrUnauthenticated)
		return
	}
	var in listing.CreateInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, h.Logger, apperr.Validation("body", "invalid JSON"))
		return
	}
	if err := h.Validate.Struct(in); err != nil {
		writeError(w, h.Logger, err)
		return
	}

	post, err := h.Listings.Create(r.Context(), actor.UserID, in)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, post)
}

type quoteRequest struct {
	listing.CreateInput
	BasePay int64 `json:"base_pay"`
}

// Quote handles POST /api/listings/quote: prices a listing without
// publishing it.
func (h *ListingHandler) Quote(w http.ResponseWriter, r *http.Request) {
	actor := middleware.ActorFromCtx(r.Context())
	if actor == nil {
		writeError(w, h.Logger, apperr.ErrUnauthenticated)
		return
	}
	var req quoteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.Logger, apperr.Validation("body", "invalid JSON"))
		return
	}

	quote, err := h.Listings.QuoteCost(r.Context(), actor.UserID, req.CreateInput, req.BasePay)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, quote)
}

// Feed handles GET /api/listings.
func (h *ListingHandler) Feed(w http.ResponseWriter, r *http.Request) {
	viewerID := uuid.Nil
	if actor := middleware.ActorFromCtx(r.Context()); actor != nil {
		viewerID = actor.UserID
	}
	posts, err := h.Listings.ListFeed(r.Context(), viewerID)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	if posts == nil {
		posts = []*models.Post{}
	}
	writeJSON(w, http.StatusOK, posts)
}
