// Package payments talks to the external checkout provider. The core only
// uses the payment-intent lifecycle: create a manual-capture session, poll
// it, then capture or cancel the hold.
package payments

import "context"

// Session payment statuses as reported by the provider.
const (
	SessionPaymentPaid   = "paid"
	SessionPaymentUnpaid = "unpaid"
)

// Intent statuses the core cares about.
const (
	IntentRequiresCapture = "requires_capture"
	IntentSucceeded       = "succeeded"
	IntentCanceled        = "canceled"
)

// Capture modes for checkout sessions.
const (
	CaptureAutomatic = "automatic"
	CaptureManual    = "manual"
)

// Session is a provider checkout session.
type Session struct {
	ID              string            `json:"id"`
	URL             string            `json:"url"`
	PaymentStatus   string            `json:"payment_status"`
	PaymentIntentID string            `json:"payment_intent_id"`
	AmountCents     int64             `json:"amount"`
	Metadata        map[string]string `json:"metadata,omitempty"`
}

// Intent is the payment intent underlying a session.
type Intent struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// CreateSessionParams describes a checkout session to open.
type CreateSessionParams struct {
	AmountCents   int64             `json:"amount"`
	Currency      string            `json:"currency"`
	CaptureMethod string            `json:"capture_method"`
	Description   string            `json:"description"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

// Provider is the payment-provider surface the core depends on. Calls are
// synchronous; the core surfaces failures and never retries internally.
type Provider interface {
	CreateCheckoutSession(ctx context.Context, p CreateSessionParams) (*Session, error)
	RetrieveSession(ctx context.Context, sessionID string) (*Session, error)
	RetrievePaymentIntent(ctx context.Context, intentID string) (*Intent, error)
	CapturePaymentIntent(ctx context.Context, intentID string) error
	CancelPaymentIntent(ctx context.Context, intentID string) error
}
