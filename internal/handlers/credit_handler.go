package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/cubanstagelink-ai/reupspots-app/internal/apperr"
	"github.com/cubanstagelink-ai/reupspots-app/internal/middleware"
	"github.com/cubanstagelink-ai/reupspots-app/internal/models"
	"github.com/cubanstagelink-ai/reupspots-app/internal/payments"
)

// CreditPriceCents is the purchase price of one credit.
const CreditPriceCents = 100

// LedgerService is the ledger surface the handler serves.
type LedgerService interface {
	GetBalance(ctx context.Context, userID uuid.UUID) (int, error)
	Initialize(ctx context.Context, userID uuid.UUID, startingBalance int) (*models.Credit, error)
	RedeemPurchase(ctx context.Context, userID uuid.UUID, sessionID string, amount int, description string) (*models.Credit, error)
	ListLog(ctx context.Context, userID uuid.UUID) ([]*models.CreditLogEntry, error)
}

// CreditHandler serves /api/credits endpoints.
type CreditHandler struct {
	Ledger          LedgerService
	Provider        payments.Provider
	StartingCredits int
	Validate        *validator.Validate
	Logger          *slog.Logger
}

// GetBalance handles GET /api/credits. A user seen for the first time gets
// the starting grant.
func (h *CreditHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	actor := middleware.ActorFromCtx(r.Context())
	if actor == nil {
		writeError(w, h.Logger, apperr.ErrUnauthenticated)
		return
	}
	balance, err := h.Ledger.GetBalance(r.Context(), actor.UserID)
	if errors.Is(err, apperr.ErrNotFound) {
		c, initErr := h.Ledger.Initialize(r.Context(), actor.UserID, h.StartingCredits)
		if initErr != nil {
			writeError(w, h.Logger, initErr)
			return
		}
		balance = c.Balance
	} else if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"balance": balance})
}

// GetLog handles GET /api/credits/log.
func (h *CreditHandler) GetLog(w http.ResponseWriter, r *http.Request) {
	actor := middleware.ActorFromCtx(r.Context())
	if actor == nil {
		writeError(w, h.Logger, apperr.ErrUnauthenticated)
		return
	}
	entries, err := h.Ledger.ListLog(r.Context(), actor.UserID)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	if entries == nil {
		entries = []*models.CreditLogEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

type purchaseRequest struct {
	Credits int `json:"credits" validate:"required,gt=0,lte=1000"`
}

// StartPurchase handles POST /api/credits/purchase: opens a provider
// checkout session for the requested credit pack.
func (h *CreditHandler) StartPurchase(w http.ResponseWriter, r *http.Request) {
	actor := middleware.ActorFromCtx(r.Context())
	if actor == nil {
		writeError(w, h.Logger, apperr.ErrUnauthenticated)
		return
	}
	var req purchaseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.Logger, apperr.Validation("body", "invalid JSON"))
		return
	}
	if err := h.Validate.Struct(req); err != nil {
		writeError(w, h.Logger, err)
		return
	}

	session, err := h.Provider.CreateCheckoutSession(r.Context(), payments.CreateSessionParams{
		AmountCents:   int64(req.Credits) * CreditPriceCents,
		CaptureMethod: payments.CaptureAutomatic,
		Description:   fmt.Sprintf("%d credits", req.Credits),
		Metadata: map[string]string{
			"user_id": actor.UserID.String(),
			"credits": strconv.Itoa(req.Credits),
		},
	})
	if err != nil {
		writeError(w, h.Logger, apperr.Provider("create checkout session", err))
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"session_id": session.ID, "url": session.URL})
}

type confirmPurchaseRequest struct {
	SessionID string `json:"session_id" validate:"required"`
}

// ConfirmPurchase handles POST /api/credits/purchase/confirm: verifies the
// session is paid, then credits the account. A session redeems exactly once;
// replaying a confirmation is rejected with a conflict.
func (h *CreditHandler) ConfirmPurchase(w http.ResponseWriter, r *http.Request) {
	actor := middleware.ActorFromCtx(r.Context())
	if actor == nil {
		writeError(w, h.Logger, apperr.ErrUnauthenticated)
		return
	}
	var req confirmPurchaseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.Logger, apperr.Validation("body", "invalid JSON"))
		return
	}
	if err := h.Validate.Struct(req); err != nil {
		writeError(w, h.Logger, err)
		return
	}

	session, err := h.Provider.RetrieveSession(r.Context(), req.SessionID)
	if err != nil {
		writeError(w, h.Logger, apperr.Provider("retrieve session", err))
		return
	}
	if session.Metadata["user_id"] != actor.UserID.String() {
		writeError(w, h.Logger, apperr.ErrForbidden)
		return
	}
	if session.PaymentStatus != payments.SessionPaymentPaid {
		writeError(w, h.Logger, apperr.InvalidTransition("purchase", session.PaymentStatus, "confirm"))
		return
	}
	credits, err := strconv.Atoi(session.Metadata["credits"])
	if err != nil || credits <= 0 {
		writeError(w, h.Logger, apperr.Provider("retrieve session", fmt.Errorf("session %s has no credit amount", session.ID)))
		return
	}

	c, err := h.Ledger.RedeemPurchase(r.Context(), actor.UserID, session.ID, credits,
		fmt.Sprintf("%d credits (session %s)", credits, session.ID))
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}
