package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cubanstagelink-ai/reupspots-app/internal/models"
)

// ErrDuplicatePurchase is returned when a checkout session is redeemed twice.
var ErrDuplicatePurchase = errors.New("purchase session already redeemed")

type CreditRepo struct {
	pool *pgxpool.Pool
}

func NewCreditRepo(pool *pgxpool.Pool) *CreditRepo {
	return &CreditRepo{pool: pool}
}

func (r *CreditRepo) Begin(ctx context.Context) (pgx.Tx, error) {
	return r.pool.Begin(ctx)
}

// GetByUserID returns nil (no error) when the user has no balance row yet.
func (r *CreditRepo) GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Credit, error) {
	var c models.Credit
	err := r.pool.QueryRow(ctx, `
		SELECT user_id, balance, updated_at FROM credits WHERE user_id = $1
	`, userID).Scan(&c.UserID, &c.Balance, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// InsertIfAbsent creates the balance row with the given starting balance.
// Returns the row and whether this call created it; an existing row is
// returned unchanged.
func (r *CreditRepo) InsertIfAbsent(ctx context.Context, tx pgx.Tx, userID uuid.UUID, balance int) (*models.Credit, bool, error) {
	var c models.Credit
	err := tx.QueryRow(ctx, `
		INSERT INTO credits (user_id, balance)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO NOTHING
		RETURNING user_id, balance, updated_at
	`, userID, balance).Scan(&c.UserID, &c.Balance, &c.UpdatedAt)
	if err == nil {
		return &c, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, false, err
	}
	err = tx.QueryRow(ctx, `
		SELECT user_id, balance, updated_at FROM credits WHERE user_id = $1
	`, userID).Scan(&c.UserID, &c.Balance, &c.UpdatedAt)
	if err != nil {
		return nil, false, err
	}
	return &c, false, nil
}

// DecrementIfEnough atomically deducts amount when balance >= amount. The
// conditional WHERE is what keeps two racing debits from both succeeding.
func (r *CreditRepo) DecrementIfEnough(ctx context.Context, tx pgx.Tx, userID uuid.UUID, amount int) (newBalance int, ok bool, err error) {
	err = tx.QueryRow(ctx, `
		UPDATE credits SET balance = balance - $1, updated_at = now()
		WHERE user_id = $2 AND balance >= $1
		RETURNING balance
	`, amount, userID).Scan(&newBalance)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return newBalance, true, nil
}

// Increment adds amount to an existing balance row. ok is false when the user
// has no row (caller bootstraps via InsertIfAbsent instead).
func (r *CreditRepo) Increment(ctx context.Context, tx pgx.Tx, userID uuid.UUID, amount int) (newBalance int, ok bool, err error) {
	err = tx.QueryRow(ctx, `
		UPDATE credits SET balance = balance + $1, updated_at = now()
		WHERE user_id = $2
		RETURNING balance
	`, amount, userID).Scan(&newBalance)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return newBalance, true, nil
}

// InsertPurchaseTx records a redeemed checkout session inside the caller's
// transaction. The unique session_id constraint is what makes purchase
// confirmation replay-safe: a second redemption of the same session fails
// here before any credit moves.
func (r *CreditRepo) InsertPurchaseTx(ctx context.Context, tx pgx.Tx, userID uuid.UUID, sessionID string, credits int) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO credit_purchases (session_id, user_id, credits)
		VALUES ($1, $2, $3)
	`, sessionID, userID, credits)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrDuplicatePurchase
	}
	return err
}

// InsertLogTx appends a ledger entry inside the given transaction.
func (r *CreditRepo) InsertLogTx(ctx context.Context, tx pgx.Tx, e *models.CreditLogEntry) error {
	return tx.QueryRow(ctx, `
		INSERT INTO credit_log (id, user_id, action, amount, description)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`, e.ID, e.UserID, e.Action, e.Amount, e.Description).Scan(&e.CreatedAt)
}

// ListLogByUserID returns the user's ledger entries, newest first.
func (r *CreditRepo) ListLogByUserID(ctx context.Context, userID uuid.UUID) ([]*models.CreditLogEntry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, action, amount, description, created_at
		FROM credit_log WHERE user_id = $1 ORDER BY created_at DESC, id DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.CreditLogEntry
	for rows.Next() {
		var e models.CreditLogEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.Action, &e.Amount, &e.Description, &e.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, &e)
	}
	return list, rows.Err()
}
