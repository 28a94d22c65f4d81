package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cubanstagelink-ai/reupspots-app/internal/apperr"
	"github.com/cubanstagelink-ai/reupspots-app/internal/booking"
	"github.com/cubanstagelink-ai/reupspots-app/internal/models"
)

const bookingColumns = `id, buyer_uid, post_id, worker_slug, tier, base_pay, platform_fee, boost, boost_fee,
	total_amount, status, payment_structure, payment_method, deposit_amount, final_amount,
	deposit_status, final_status, escrow_status, escrow_session_id, payment_intent_id,
	authorized_at, captured_at, created_at, updated_at`

type BookingRepo struct {
	pool *pgxpool.Pool
}

func NewBookingRepo(pool *pgxpool.Pool) *BookingRepo {
	return &BookingRepo{pool: pool}
}

func scanBooking(row pgx.Row) (*models.Booking, error) {
	var b models.Booking
	err := row.Scan(&b.ID, &b.BuyerUID, &b.PostID, &b.WorkerSlug, &b.Tier, &b.BasePay, &b.PlatformFee,
		&b.Boost, &b.BoostFee, &b.TotalAmount, &b.Status, &b.PaymentStructure, &b.PaymentMethod,
		&b.DepositAmount, &b.FinalAmount, &b.DepositStatus, &b.FinalStatus, &b.EscrowStatus,
		&b.EscrowSessionID, &b.PaymentIntentID, &b.AuthorizedAt, &b.CapturedAt, &b.CreatedAt, &b.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *BookingRepo) Create(ctx context.Context, b *models.Booking) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO bookings (id, buyer_uid, post_id, worker_slug, tier, base_pay, platform_fee, boost, boost_fee,
			total_amount, status, payment_structure, payment_method, deposit_amount, final_amount,
			deposit_status, final_status, escrow_status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		RETURNING created_at, updated_at
	`, b.ID, b.BuyerUID, b.PostID, b.WorkerSlug, b.Tier, b.BasePay, b.PlatformFee, b.Boost, b.BoostFee,
		b.TotalAmount, b.Status, b.PaymentStructure, b.PaymentMethod, b.DepositAmount, b.FinalAmount,
		b.DepositStatus, b.FinalStatus, b.EscrowStatus).Scan(&b.CreatedAt, &b.UpdatedAt)
}

func (r *BookingRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	return scanBooking(r.pool.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id))
}

func (r *BookingRepo) SetStatus(ctx context.Context, id uuid.UUID, status string) (*models.Booking, error) {
	return scanBooking(r.pool.QueryRow(ctx, `
		UPDATE bookings SET status = $2, updated_at = now() WHERE id = $1
		RETURNING `+bookingColumns, id, status))
}

// SetInstallmentStatus writes one installment status and recomputes the
// parent status from the post-write values of both installments, all in a
// single transaction. The derivation is never memoized from a pre-fetch, so
// two installments confirmed concurrently still converge on the right parent
// status.
func (r *BookingRepo) SetInstallmentStatus(ctx context.Context, id uuid.UUID, which, status string, sessionID *string) (*models.Booking, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	column := "deposit_status"
	if which == models.InstallmentFinal {
		column = "final_status"
	}
	var depositStatus, finalStatus *string
	err = tx.QueryRow(ctx, `
		UPDATE bookings SET `+column+` = $2, updated_at = now()
		WHERE id = $1
		RETURNING deposit_status, final_status
	`, id, status).Scan(&depositStatus, &finalStatus)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	derived := booking.DeriveStatus(deref(depositStatus), deref(finalStatus))
	if sessionID != nil {
		_, err = tx.Exec(ctx, `UPDATE bookings SET escrow_session_id = $2 WHERE id = $1`, id, *sessionID)
		if err != nil {
			return nil, err
		}
	}
	b, err := scanBooking(tx.QueryRow(ctx, `
		UPDATE bookings SET status = $2, updated_at = now() WHERE id = $1
		RETURNING `+bookingColumns, id, derived))
	if err != nil {
		return nil, err
	}
	return b, tx.Commit(ctx)
}

// MarkEscrowAuthorized records the provider authorization and advances the
// booking to payment_submitted.
func (r *BookingRepo) MarkEscrowAuthorized(ctx context.Context, id uuid.UUID, intentID string, at time.Time) (*models.Booking, error) {
	return scanBooking(r.pool.QueryRow(ctx, `
		UPDATE bookings SET escrow_status = $2, payment_intent_id = $3, authorized_at = $4,
			status = $5, updated_at = now()
		WHERE id = $1
		RETURNING `+bookingColumns, id, models.EscrowAuthorized, intentID, at, models.BookingPaymentSubmitted))
}

// MarkEscrowCaptured records the capture and confirms the booking.
func (r *BookingRepo) MarkEscrowCaptured(ctx context.Context, id uuid.UUID, at time.Time) (*models.Booking, error) {
	return scanBooking(r.pool.QueryRow(ctx, `
		UPDATE bookings SET escrow_status = $2, captured_at = $3, status = $4, updated_at = now()
		WHERE id = $1
		RETURNING `+bookingColumns, id, models.EscrowCaptured, at, models.BookingConfirmed))
}

// MarkEscrowCancelled voids the hold and cancels the booking.
func (r *BookingRepo) MarkEscrowCancelled(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	return scanBooking(r.pool.QueryRow(ctx, `
		UPDATE bookings SET escrow_status = $2, status = $3, updated_at = now()
		WHERE id = $1
		RETURNING `+bookingColumns, id, models.EscrowCancelled, models.BookingCancelled))
}

// SetEscrowSession stores the provider checkout-session id for a reservation.
func (r *BookingRepo) SetEscrowSession(ctx context.Context, id uuid.UUID, sessionID string) (*models.Booking, error) {
	return scanBooking(r.pool.QueryRow(ctx, `
		UPDATE bookings SET escrow_session_id = $2, payment_method = $3, updated_at = now()
		WHERE id = $1
		RETURNING `+bookingColumns, id, sessionID, models.PaymentMethodEscrow))
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
