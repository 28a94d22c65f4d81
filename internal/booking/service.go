// Package booking owns the booking lifecycle across full-upfront and
// split-payment structures.
package booking

import (
	"context"

	"github.com/google/uuid"

	"github.com/cubanstagelink-ai/reupspots-app/internal/apperr"
	"github.com/cubanstagelink-ai/reupspots-app/internal/authz"
	"github.com/cubanstagelink-ai/reupspots-app/internal/models"
	"github.com/cubanstagelink-ai/reupspots-app/internal/pricing"
)

// Store is the minimal booking repository interface for the state machine.
type Store interface {
	Create(ctx context.Context, b *models.Booking) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Booking, error)
	SetStatus(ctx context.Context, id uuid.UUID, status string) (*models.Booking, error)
	SetInstallmentStatus(ctx context.Context, id uuid.UUID, which, status string, sessionID *string) (*models.Booking, error)
}

type Service struct {
	store  Store
	calc   *pricing.Calculator
	policy authz.Policy
}

func NewService(store Store, calc *pricing.Calculator, policy authz.Policy) *Service {
	return &Service{store: store, calc: calc, policy: policy}
}

// CreateInput describes a booking request. BasePay is in cents.
type CreateInput struct {
	PostID           *uuid.UUID
	WorkerSlug       *string
	Tier             string
	BasePay          int64
	Boost            string
	PaymentStructure string
}

// Create prices the booking and persists it as pending_payment. Split
// bookings also get their installment amounts and pending statuses.
func (s *Service) Create(ctx context.Context, buyer authz.Actor, in CreateInput) (*models.Booking, error) {
	if in.BasePay <= 0 {
		return nil, apperr.Validation("basePay", "must be > 0")
	}
	if in.PaymentStructure != models.PayFullUpfront && in.PaymentStructure != models.PaySplit5050 {
		return nil, apperr.Validation("paymentStructure", "must be full_upfront or split_50_50")
	}
	if in.Boost == "" {
		in.Boost = models.BoostNone
	}

	fees := s.calc.MoneyTotal(in.BasePay, in.Tier, in.Boost)
	b := &models.Booking{
		ID:               uuid.New(),
		BuyerUID:         buyer.UserID,
		PostID:           in.PostID,
		WorkerSlug:       in.WorkerSlug,
		Tier:             in.Tier,
		BasePay:          in.BasePay,
		PlatformFee:      fees.TierFee,
		Boost:            in.Boost,
		BoostFee:         fees.BoostFee,
		TotalAmount:      fees.TotalAmount,
		Status:           models.BookingPendingPayment,
		PaymentStructure: in.PaymentStructure,
		EscrowStatus:     models.EscrowNone,
	}
	if in.PaymentStructure == models.PaySplit5050 {
		deposit, final := SplitAmounts(fees.TotalAmount)
		pending := models.InstallmentPending
		pending2 := models.InstallmentPending
		b.DepositAmount = &deposit
		b.FinalAmount = &final
		b.DepositStatus = &pending
		b.FinalStatus = &pending2
	}
	if err := s.store.Create(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

// MarkPaid records a buyer payment submission. Full-upfront bookings move to
// payment_submitted; split bookings mark the named installment submitted, the
// final installment only after the deposit is paid.
func (s *Service) MarkPaid(ctx context.Context, actor authz.Actor, id uuid.UUID, which string, sessionID *string) (*models.Booking, error) {
	b, err := s.authorized(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if b.Terminal() {
		return nil, apperr.InvalidTransition("booking", b.Status, "submit payment")
	}

	if b.PaymentStructure == models.PayFullUpfront {
		if b.Status != models.BookingPendingPayment {
			return nil, apperr.InvalidTransition("booking", b.Status, "submit payment")
		}
		return s.store.SetStatus(ctx, id, models.BookingPaymentSubmitted)
	}

	if which != models.InstallmentDeposit && which != models.InstallmentFinal {
		return nil, apperr.Validation("installment", "must be deposit or final")
	}
	if which == models.InstallmentFinal && status(b.DepositStatus) != models.InstallmentPaid {
		return nil, apperr.InvalidTransition("booking", status(b.DepositStatus), "submit final installment before deposit is paid")
	}
	return s.store.SetInstallmentStatus(ctx, id, which, models.InstallmentSubmitted, sessionID)
}

// Confirm records an admin payment confirmation. Full-upfront bookings
// confirm directly; split bookings mark the installment paid and the parent
// status is derived from both installments inside the same write.
func (s *Service) Confirm(ctx context.Context, actor authz.Actor, id uuid.UUID, which string) (*models.Booking, error) {
	if !s.policy.IsAdmin(actor) {
		return nil, apperr.ErrForbidden
	}
	b, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.Terminal() {
		return nil, apperr.InvalidTransition("booking", b.Status, "confirm payment")
	}

	if b.PaymentStructure == models.PayFullUpfront {
		return s.store.SetStatus(ctx, id, models.BookingConfirmed)
	}

	if which != models.InstallmentDeposit && which != models.InstallmentFinal {
		return nil, apperr.Validation("installment", "must be deposit or final")
	}
	return s.store.SetInstallmentStatus(ctx, id, which, models.InstallmentPaid, nil)
}

// Cancel moves the booking to cancelled from any non-terminal state.
func (s *Service) Cancel(ctx context.Context, actor authz.Actor, id uuid.UUID) (*models.Booking, error) {
	b, err := s.authorized(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if b.Terminal() {
		return nil, apperr.InvalidTransition("booking", b.Status, "cancel")
	}
	return s.store.SetStatus(ctx, id, models.BookingCancelled)
}

func (s *Service) Get(ctx context.Context, actor authz.Actor, id uuid.UUID) (*models.Booking, error) {
	return s.authorized(ctx, actor, id)
}

// authorized loads the booking and verifies the actor is its buyer or an admin.
func (s *Service) authorized(ctx context.Context, actor authz.Actor, id uuid.UUID) (*models.Booking, error) {
	b, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.BuyerUID != actor.UserID && !s.policy.IsAdmin(actor) {
		return nil, apperr.ErrForbidden
	}
	return b, nil
}

func status(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
