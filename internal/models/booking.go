package models

import (
	"time"

	"github.com/google/uuid"
)

// Booking statuses.
const (
	BookingPendingPayment   = "pending_payment"
	BookingPaymentSubmitted = "payment_submitted"
	BookingDepositPaid      = "deposit_paid"
	BookingConfirmed        = "confirmed"
	BookingCancelled        = "cancelled"
)

// Payment structures.
const (
	PayFullUpfront = "full_upfront"
	PaySplit5050   = "split_50_50"
)

// Installment identifiers and statuses for split payments.
const (
	InstallmentDeposit = "deposit"
	InstallmentFinal   = "final"

	InstallmentPending   = "pending"
	InstallmentSubmitted = "submitted"
	InstallmentPaid      = "paid"
)

// Escrow statuses. none → authorized → captured, with cancelled/refunded as
// alternate terminals from authorized.
const (
	EscrowNone       = "none"
	EscrowAuthorized = "authorized"
	EscrowCaptured   = "captured"
	EscrowCancelled  = "cancelled"
	EscrowRefunded   = "refunded"
)

const PaymentMethodEscrow = "escrow"

// Booking is the central transactional entity. All money fields are integer
// minor units (cents).
type Booking struct {
	ID               uuid.UUID  `json:"id"`
	BuyerUID         uuid.UUID  `json:"buyer_uid"`
	PostID           *uuid.UUID `json:"post_id,omitempty"`
	WorkerSlug       *string    `json:"worker_slug,omitempty"`
	Tier             string     `json:"tier"`
	BasePay          int64      `json:"base_pay"`
	PlatformFee      int64      `json:"platform_fee"`
	Boost            string     `json:"boost"`
	BoostFee         int64      `json:"boost_fee"`
	TotalAmount      int64      `json:"total_amount"`
	Status           string     `json:"status"`
	PaymentStructure string     `json:"payment_structure"`
	PaymentMethod    string     `json:"payment_method,omitempty"`
	DepositAmount    *int64     `json:"deposit_amount,omitempty"`
	FinalAmount      *int64     `json:"final_amount,omitempty"`
	DepositStatus    *string    `json:"deposit_status,omitempty"`
	FinalStatus      *string    `json:"final_status,omitempty"`
	EscrowStatus     string     `json:"escrow_status"`
	EscrowSessionID  *string    `json:"escrow_session_id,omitempty"`
	PaymentIntentID  *string    `json:"payment_intent_id,omitempty"`
	AuthorizedAt     *time.Time `json:"authorized_at,omitempty"`
	CapturedAt       *time.Time `json:"captured_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// Terminal reports whether no further status transitions are allowed.
func (b *Booking) Terminal() bool {
	return b.Status == BookingConfirmed || b.Status == BookingCancelled
}
