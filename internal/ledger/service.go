// Package ledger owns per-user credit balances and the append-only credit
// log. Every balance mutation is paired with exactly one log entry in the
// same transaction, so summing a user's entries reproduces the balance.
package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/cubanstagelink-ai/reupspots-app/internal/apperr"
	"github.com/cubanstagelink-ai/reupspots-app/internal/models"
	"github.com/cubanstagelink-ai/reupspots-app/internal/repository"
)

// CreditStore is the minimal credit repository interface for the ledger.
type CreditStore interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Credit, error)
	InsertIfAbsent(ctx context.Context, tx pgx.Tx, userID uuid.UUID, balance int) (*models.Credit, bool, error)
	DecrementIfEnough(ctx context.Context, tx pgx.Tx, userID uuid.UUID, amount int) (newBalance int, ok bool, err error)
	Increment(ctx context.Context, tx pgx.Tx, userID uuid.UUID, amount int) (newBalance int, ok bool, err error)
	InsertPurchaseTx(ctx context.Context, tx pgx.Tx, userID uuid.UUID, sessionID string, credits int) error
	InsertLogTx(ctx context.Context, tx pgx.Tx, e *models.CreditLogEntry) error
	ListLogByUserID(ctx context.Context, userID uuid.UUID) ([]*models.CreditLogEntry, error)
}

// TxBeginner abstracts transaction creation so tests don't need a pgxpool.Pool.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

type Service struct {
	store CreditStore
	db    TxBeginner
}

func NewService(store CreditStore, db TxBeginner) *Service {
	return &Service{store: store, db: db}
}

// GetBalance returns the user's balance. An absent row means the user was
// never initialized and is reported as ErrNotFound, not zero.
func (s *Service) GetBalance(ctx context.Context, userID uuid.UUID) (int, error) {
	c, err := s.store.GetByUserID(ctx, userID)
	if err != nil {
		return 0, err
	}
	if c == nil {
		return 0, apperr.ErrNotFound
	}
	return c.Balance, nil
}

// Initialize creates the balance row with startingBalance and one "init" log
// entry. Idempotent: an existing balance is returned unchanged and nothing is
// logged.
func (s *Service) Initialize(ctx context.Context, userID uuid.UUID, startingBalance int) (*models.Credit, error) {
	if startingBalance < 0 {
		return nil, apperr.Validation("startingBalance", "must be >= 0")
	}
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	c, err := s.initializeTx(ctx, tx, userID, startingBalance, "starting balance")
	if err != nil {
		return nil, err
	}
	return c, tx.Commit(ctx)
}

func (s *Service) initializeTx(ctx context.Context, tx pgx.Tx, userID uuid.UUID, startingBalance int, description string) (*models.Credit, error) {
	c, created, err := s.store.InsertIfAbsent(ctx, tx, userID, startingBalance)
	if err != nil {
		return nil, err
	}
	if !created {
		return c, nil
	}
	entry := &models.CreditLogEntry{
		ID:          uuid.New(),
		UserID:      userID,
		Action:      models.CreditActionInit,
		Amount:      startingBalance,
		Description: description,
	}
	if err := s.store.InsertLogTx(ctx, tx, entry); err != nil {
		return nil, err
	}
	return c, nil
}

// Debit atomically deducts amount and appends a negative log entry. Fails
// with InsufficientCreditsError when no balance row exists or balance < amount.
func (s *Service) Debit(ctx context.Context, userID uuid.UUID, amount int, action, description string) (*models.Credit, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	c, err := s.DebitTx(ctx, tx, userID, amount, action, description)
	if err != nil {
		return nil, err
	}
	return c, tx.Commit(ctx)
}

// DebitTx is Debit running inside the caller's transaction, for flows where
// the debit and an entity creation must commit or fail as one unit.
func (s *Service) DebitTx(ctx context.Context, tx pgx.Tx, userID uuid.UUID, amount int, action, description string) (*models.Credit, error) {
	if amount <= 0 {
		return nil, apperr.Validation("amount", "must be > 0")
	}
	newBalance, ok, err := s.store.DecrementIfEnough(ctx, tx, userID, amount)
	if err != nil {
		return nil, err
	}
	if !ok {
		available := 0
		if c, err := s.store.GetByUserID(ctx, userID); err == nil && c != nil {
			available = c.Balance
		}
		return nil, &apperr.InsufficientCreditsError{Required: amount, Available: available}
	}
	entry := &models.CreditLogEntry{
		ID:          uuid.New(),
		UserID:      userID,
		Action:      action,
		Amount:      -amount,
		Description: description,
	}
	if err := s.store.InsertLogTx(ctx, tx, entry); err != nil {
		return nil, err
	}
	return &models.Credit{UserID: userID, Balance: newBalance}, nil
}

// Credit adds amount to the user's balance with a positive log entry. A user
// with no balance row is bootstrapped instead: the grant becomes the opening
// balance and is logged once as "init", with the originating action folded
// into the description.
func (s *Service) Credit(ctx context.Context, userID uuid.UUID, amount int, action, description string) (*models.Credit, error) {
	if amount <= 0 {
		return nil, apperr.Validation("amount", "must be > 0")
	}
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	c, err := s.creditTx(ctx, tx, userID, amount, action, description)
	if err != nil {
		return nil, err
	}
	return c, tx.Commit(ctx)
}

func (s *Service) creditTx(ctx context.Context, tx pgx.Tx, userID uuid.UUID, amount int, action, description string) (*models.Credit, error) {
	newBalance, ok, err := s.store.Increment(ctx, tx, userID, amount)
	if err != nil {
		return nil, err
	}
	if !ok {
		return s.initializeTx(ctx, tx, userID, amount, fmt.Sprintf("%s: %s", action, description))
	}
	entry := &models.CreditLogEntry{
		ID:          uuid.New(),
		UserID:      userID,
		Action:      action,
		Amount:      amount,
		Description: description,
	}
	if err := s.store.InsertLogTx(ctx, tx, entry); err != nil {
		return nil, err
	}
	return &models.Credit{UserID: userID, Balance: newBalance}, nil
}

// RedeemPurchase credits a paid checkout session exactly once. The session id
// is recorded under a unique constraint in the same transaction as the
// credit, so a replayed confirmation fails with a StateError instead of
// minting the credits again.
func (s *Service) RedeemPurchase(ctx context.Context, userID uuid.UUID, sessionID string, amount int, description string) (*models.Credit, error) {
	if amount <= 0 {
		return nil, apperr.Validation("amount", "must be > 0")
	}
	if sessionID == "" {
		return nil, apperr.Validation("sessionId", "must not be empty")
	}
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if err := s.store.InsertPurchaseTx(ctx, tx, userID, sessionID, amount); err != nil {
		if errors.Is(err, repository.ErrDuplicatePurchase) {
			return nil, apperr.InvalidTransition("purchase", "redeemed", "confirm")
		}
		return nil, err
	}
	c, err := s.creditTx(ctx, tx, userID, amount, models.CreditActionPurchase, description)
	if err != nil {
		return nil, err
	}
	return c, tx.Commit(ctx)
}

// ListLog returns the user's credit log, newest first.
func (s *Service) ListLog(ctx context.Context, userID uuid.UUID) ([]*models.CreditLogEntry, error) {
	return s.store.ListLogByUserID(ctx, userID)
}
