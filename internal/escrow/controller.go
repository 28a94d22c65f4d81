// Package escrow layers hold/capture/cancel semantics over a booking's
// payment via the external provider. Escrow never coerces booking state: an
// action from the wrong state is rejected with a precondition error.
package escrow

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/cubanstagelink-ai/reupspots-app/internal/apperr"
	"github.com/cubanstagelink-ai/reupspots-app/internal/authz"
	"github.com/cubanstagelink-ai/reupspots-app/internal/models"
	"github.com/cubanstagelink-ai/reupspots-app/internal/payments"
)

// Store is the booking repository surface the controller writes through.
type Store interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Booking, error)
	SetEscrowSession(ctx context.Context, id uuid.UUID, sessionID string) (*models.Booking, error)
	MarkEscrowAuthorized(ctx context.Context, id uuid.UUID, intentID string, at time.Time) (*models.Booking, error)
	MarkEscrowCaptured(ctx context.Context, id uuid.UUID, at time.Time) (*models.Booking, error)
	MarkEscrowCancelled(ctx context.Context, id uuid.UUID) (*models.Booking, error)
}

type Controller struct {
	store    Store
	provider payments.Provider
	policy   authz.Policy
	now      func() time.Time
}

func NewController(store Store, provider payments.Provider, policy authz.Policy) *Controller {
	return &Controller{store: store, provider: provider, policy: policy, now: time.Now}
}

// Reserve opens a manual-capture checkout session for the booking total. The
// booking stays pending_payment until the hold is confirmed.
func (c *Controller) Reserve(ctx context.Context, actor authz.Actor, id uuid.UUID) (*models.Booking, string, error) {
	b, err := c.authorized(ctx, actor, id)
	if err != nil {
		return nil, "", err
	}
	if b.Status != models.BookingPendingPayment || b.EscrowStatus == models.EscrowAuthorized {
		return nil, "", apperr.InvalidTransition("escrow", b.Status, "reserve")
	}

	session, err := c.provider.CreateCheckoutSession(ctx, payments.CreateSessionParams{
		AmountCents:   b.TotalAmount,
		CaptureMethod: payments.CaptureManual,
		Description:   fmt.Sprintf("booking %s", b.ID),
		Metadata:      map[string]string{"booking_id": b.ID.String()},
	})
	if err != nil {
		return nil, "", apperr.Provider("create checkout session", err)
	}

	b, err = c.store.SetEscrowSession(ctx, id, session.ID)
	if err != nil {
		return nil, "", err
	}
	return b, session.URL, nil
}

// ConfirmReservation polls the provider session. Once the underlying intent
// is ready to capture, the hold is recorded and the booking advances to
// payment_submitted. Calling again when already authorized is a no-op success.
func (c *Controller) ConfirmReservation(ctx context.Context, actor authz.Actor, id uuid.UUID) (*models.Booking, error) {
	b, err := c.authorized(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if b.EscrowStatus == models.EscrowAuthorized {
		return b, nil
	}
	if b.EscrowSessionID == nil {
		return nil, apperr.InvalidTransition("escrow", b.EscrowStatus, "confirm reservation without a session")
	}

	session, err := c.provider.RetrieveSession(ctx, *b.EscrowSessionID)
	if err != nil {
		return nil, apperr.Provider("retrieve session", err)
	}
	intent, err := c.provider.RetrievePaymentIntent(ctx, session.PaymentIntentID)
	if err != nil {
		return nil, apperr.Provider("retrieve payment intent", err)
	}
	if intent.Status != payments.IntentRequiresCapture {
		return nil, apperr.Provider("confirm reservation",
			fmt.Errorf("payment intent %s not ready to capture (status %q)", intent.ID, intent.Status))
	}

	return c.store.MarkEscrowAuthorized(ctx, id, intent.ID, c.now())
}

// Release captures the held funds and confirms the booking. Allowed to the
// buyer or an admin; the payee cannot release to themselves.
func (c *Controller) Release(ctx context.Context, actor authz.Actor, id uuid.UUID) (*models.Booking, error) {
	b, err := c.authorized(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if b.EscrowStatus != models.EscrowAuthorized || b.PaymentIntentID == nil {
		return nil, apperr.InvalidTransition("escrow", b.EscrowStatus, "release")
	}
	if err := c.provider.CapturePaymentIntent(ctx, *b.PaymentIntentID); err != nil {
		return nil, apperr.Provider("capture payment intent", err)
	}
	return c.store.MarkEscrowCaptured(ctx, id, c.now())
}

// Cancel voids the held funds and cancels the booking.
func (c *Controller) Cancel(ctx context.Context, actor authz.Actor, id uuid.UUID) (*models.Booking, error) {
	b, err := c.authorized(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if b.EscrowStatus != models.EscrowAuthorized || b.PaymentIntentID == nil {
		return nil, apperr.InvalidTransition("escrow", b.EscrowStatus, "cancel")
	}
	if err := c.provider.CancelPaymentIntent(ctx, *b.PaymentIntentID); err != nil {
		return nil, apperr.Provider("cancel payment intent", err)
	}
	return c.store.MarkEscrowCancelled(ctx, id)
}

func (c *Controller) authorized(ctx context.Context, actor authz.Actor, id uuid.UUID) (*models.Booking, error) {
	b, err := c.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.BuyerUID != actor.UserID && !c.policy.IsAdmin(actor) {
		return nil, apperr.ErrForbidden
	}
	return b, nil
}
