package ledger

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/cubanstagelink-ai/reupspots-app/internal/apperr"
	"github.com/cubanstagelink-ai/reupspots-app/internal/models"
	"github.com/cubanstagelink-ai/reupspots-app/internal/repository"
)

// ---------------------------------------------------------------------------
// In-memory mock for CreditStore. The mutex makes DecrementIfEnough behave
// like the conditional UPDATE it stands in for: check and write are one
// atomic step.
// ---------------------------------------------------------------------------

type mockStore struct {
	mu       sync.Mutex
	balances map[uuid.UUID]int
	entries  []*models.CreditLogEntry
	redeemed map[string]bool
}

func newMockStore() *mockStore {
	return &mockStore{
		balances: make(map[uuid.UUID]int),
		redeemed: make(map[string]bool),
	}
}

func (m *mockStore) GetByUserID(_ context.Context, userID uuid.UUID) (*models.Credit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.balances[userID]
	if !ok {
		return nil, nil
	}
	return &models.Credit{UserID: userID, Balance: b}, nil
}

func (m *mockStore) InsertIfAbsent(_ context.Context, _ pgx.Tx, userID uuid.UUID, balance int) (*models.Credit, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.balances[userID]; ok {
		return &models.Credit{UserID: userID, Balance: existing}, false, nil
	}
	m.balances[userID] = balance
	return &models.Credit{UserID: userID, Balance: balance}, true, nil
}

func (m *mockStore) DecrementIfEnough(_ context.Context, _ pgx.Tx, userID uuid.UUID, amount int) (int, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.balances[userID]
	if !ok || b < amount {
		return 0, false, nil
	}
	m.balances[userID] = b - amount
	return b - amount, true, nil
}

func (m *mockStore) Increment(_ context.Context, _ pgx.Tx, userID uuid.UUID, amount int) (int, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.balances[userID]
	if !ok {
		return 0, false, nil
	}
	m.balances[userID] = b + amount
	return b + amount, true, nil
}

func (m *mockStore) InsertPurchaseTx(_ context.Context, _ pgx.Tx, _ uuid.UUID, sessionID string, _ int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.redeemed[sessionID] {
		return repository.ErrDuplicatePurchase
	}
	m.redeemed[sessionID] = true
	return nil
}

func (m *mockStore) InsertLogTx(_ context.Context, _ pgx.Tx, e *models.CreditLogEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *e
	m.entries = append(m.entries, &cp)
	return nil
}

func (m *mockStore) ListLogByUserID(_ context.Context, userID uuid.UUID) ([]*models.CreditLogEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.CreditLogEntry
	for i := len(m.entries) - 1; i >= 0; i-- {
		if m.entries[i].UserID == userID {
			out = append(out, m.entries[i])
		}
	}
	return out, nil
}

func (m *mockStore) logSum(userID uuid.UUID) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	sum := 0
	for _, e := range m.entries {
		if e.UserID == userID {
			sum += e.Amount
		}
	}
	return sum
}

func (m *mockStore) balance(userID uuid.UUID) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.balances[userID]
}

// --- noopTx satisfies pgx.Tx for test use; only Commit/Rollback are called. ---

type noopTx struct{}

func (noopTx) Begin(context.Context) (pgx.Tx, error) { return noopTx{}, nil }
func (noopTx) Commit(context.Context) error          { return nil }
func (noopTx) Rollback(context.Context) error        { return nil }
func (noopTx) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	return pgconn.NewCommandTag(""), nil
}
func (noopTx) Query(context.Context, string, ...any) (pgx.Rows, error) { return nil, nil }
func (noopTx) QueryRow(context.Context, string, ...any) pgx.Row        { return nil }
func (noopTx) CopyFrom(context.Context, pgx.Identifier, []string, pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (noopTx) SendBatch(context.Context, *pgx.Batch) pgx.BatchResults { return nil }
func (noopTx) LargeObjects() pgx.LargeObjects                         { return pgx.LargeObjects{} }
func (noopTx) Prepare(context.Context, string, string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (noopTx) Conn() *pgx.Conn { return nil }

type mockPool struct{}

func (mockPool) Begin(context.Context) (pgx.Tx, error) { return noopTx{}, nil }

func newTestService() (*Service, *mockStore) {
	store := newMockStore()
	return NewService(store, mockPool{}), store
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestGetBalanceUninitialized(t *testing.T) {
	svc, _ := newTestService()
	_, err := svc.GetBalance(context.Background(), uuid.New())
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("expected ErrNotFound for uninitialized user, got %v", err)
	}
}

func TestInitializeIdempotent(t *testing.T) {
	svc, store := newTestService()
	user := uuid.New()
	ctx := context.Background()

	c, err := svc.Initialize(ctx, user, 5)
	if err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if c.Balance != 5 {
		t.Errorf("balance after init: got %d, want 5", c.Balance)
	}

	// Spend some, then initialize again: must not reset.
	if _, err := svc.Debit(ctx, user, 2, models.CreditActionPost, "listing"); err != nil {
		t.Fatalf("Debit: %v", err)
	}
	c, err = svc.Initialize(ctx, user, 5)
	if err != nil {
		t.Fatalf("second Initialize: %v", err)
	}
	if c.Balance != 3 {
		t.Errorf("second Initialize reset the balance: got %d, want 3", c.Balance)
	}

	// Exactly one init entry.
	inits := 0
	for _, e := range store.entries {
		if e.Action == models.CreditActionInit {
			inits++
		}
	}
	if inits != 1 {
		t.Errorf("init entries: got %d, want 1", inits)
	}
}

func TestDebitInsufficient(t *testing.T) {
	svc, store := newTestService()
	user := uuid.New()
	ctx := context.Background()

	if _, err := svc.Initialize(ctx, user, 5); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	_, err := svc.Debit(ctx, user, 10, models.CreditActionPost, "listing")
	var insufficient *apperr.InsufficientCreditsError
	if !errors.As(err, &insufficient) {
		t.Fatalf("expected InsufficientCreditsError, got %v", err)
	}
	if insufficient.Required != 10 || insufficient.Available != 5 {
		t.Errorf("error payload: got required=%d available=%d, want 10/5", insufficient.Required, insufficient.Available)
	}
	if got := store.balance(user); got != 5 {
		t.Errorf("failed debit changed balance: got %d, want 5", got)
	}
}

func TestDebitUninitialized(t *testing.T) {
	svc, _ := newTestService()
	_, err := svc.Debit(context.Background(), uuid.New(), 1, models.CreditActionApply, "application")
	var insufficient *apperr.InsufficientCreditsError
	if !errors.As(err, &insufficient) {
		t.Fatalf("expected InsufficientCreditsError, got %v", err)
	}
	if insufficient.Available != 0 {
		t.Errorf("available for uninitialized user: got %d, want 0", insufficient.Available)
	}
}

func TestCreditBootstrapLogsOnce(t *testing.T) {
	svc, store := newTestService()
	user := uuid.New()

	c, err := svc.Credit(context.Background(), user, 100, models.CreditActionPurchase, "100 credits")
	if err != nil {
		t.Fatalf("Credit: %v", err)
	}
	if c.Balance != 100 {
		t.Errorf("bootstrap balance: got %d, want 100", c.Balance)
	}

	// The grant becomes the opening balance: a single init entry, with the
	// originating action folded into the description.
	if len(store.entries) != 1 {
		t.Fatalf("log entries: got %d, want 1", len(store.entries))
	}
	e := store.entries[0]
	if e.Action != models.CreditActionInit {
		t.Errorf("bootstrap action: got %q, want %q", e.Action, models.CreditActionInit)
	}
	if e.Amount != 100 {
		t.Errorf("bootstrap amount: got %d, want 100", e.Amount)
	}
	if e.Description != "purchase: 100 credits" {
		t.Errorf("bootstrap description: got %q", e.Description)
	}
}

func TestLogSumMatchesBalance(t *testing.T) {
	svc, store := newTestService()
	user := uuid.New()
	ctx := context.Background()

	if _, err := svc.Initialize(ctx, user, 5); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if _, err := svc.Debit(ctx, user, 3, models.CreditActionPost, "gig"); err != nil {
		t.Fatalf("Debit: %v", err)
	}
	if _, err := svc.Credit(ctx, user, 20, models.CreditActionPurchase, "top up"); err != nil {
		t.Fatalf("Credit: %v", err)
	}
	if _, err := svc.Debit(ctx, user, 1, models.CreditActionApply, "application"); err != nil {
		t.Fatalf("Debit: %v", err)
	}

	if sum, bal := store.logSum(user), store.balance(user); sum != bal {
		t.Errorf("ledger integrity violated: log sum %d, balance %d", sum, bal)
	}
	if got := store.balance(user); got != 21 {
		t.Errorf("final balance: got %d, want 21", got)
	}
}

func TestConcurrentDebits(t *testing.T) {
	svc, store := newTestService()
	user := uuid.New()
	ctx := context.Background()

	if _, err := svc.Initialize(ctx, user, 10); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	errs := make(chan error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Debit(ctx, user, 6, models.CreditActionPost, "racing listing")
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	successes, failures := 0, 0
	for err := range errs {
		if err == nil {
			successes++
			continue
		}
		var insufficient *apperr.InsufficientCreditsError
		if !errors.As(err, &insufficient) {
			t.Fatalf("unexpected debit error: %v", err)
		}
		failures++
	}
	if successes != 1 || failures != 1 {
		t.Errorf("concurrent debits: got %d successes and %d failures, want 1 and 1", successes, failures)
	}
	if got := store.balance(user); got != 4 {
		t.Errorf("final balance: got %d, want 4", got)
	}
	if sum := store.logSum(user); sum != 4 {
		t.Errorf("log sum after race: got %d, want 4", sum)
	}
}

func TestRedeemPurchaseOnce(t *testing.T) {
	svc, store := newTestService()
	user := uuid.New()
	ctx := context.Background()

	if _, err := svc.Initialize(ctx, user, 5); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	c, err := svc.RedeemPurchase(ctx, user, "cs_abc", 10, "10 credits (session cs_abc)")
	if err != nil {
		t.Fatalf("RedeemPurchase: %v", err)
	}
	if c.Balance != 15 {
		t.Errorf("balance after redeem: got %d, want 15", c.Balance)
	}

	// Replaying the same session must not mint again.
	_, err = svc.RedeemPurchase(ctx, user, "cs_abc", 10, "10 credits (session cs_abc)")
	var se *apperr.StateError
	if !errors.As(err, &se) {
		t.Fatalf("replayed redeem: expected StateError, got %v", err)
	}
	if got := store.balance(user); got != 15 {
		t.Errorf("balance after replay: got %d, want 15", got)
	}
	if sum := store.logSum(user); sum != 15 {
		t.Errorf("log sum after replay: got %d, want 15", sum)
	}

	// A different session redeems normally.
	c, err = svc.RedeemPurchase(ctx, user, "cs_def", 3, "3 credits (session cs_def)")
	if err != nil {
		t.Fatalf("second session: %v", err)
	}
	if c.Balance != 18 {
		t.Errorf("balance after second session: got %d, want 18", c.Balance)
	}
}

func TestRedeemPurchaseBootstraps(t *testing.T) {
	svc, store := newTestService()
	user := uuid.New()

	// A purchase by a never-initialized user becomes the opening balance.
	c, err := svc.RedeemPurchase(context.Background(), user, "cs_first", 20, "20 credits (session cs_first)")
	if err != nil {
		t.Fatalf("RedeemPurchase: %v", err)
	}
	if c.Balance != 20 {
		t.Errorf("bootstrap balance: got %d, want 20", c.Balance)
	}
	if len(store.entries) != 1 || store.entries[0].Action != models.CreditActionInit {
		t.Errorf("bootstrap log: got %+v", store.entries)
	}
}

func TestListLogNewestFirst(t *testing.T) {
	svc, _ := newTestService()
	user := uuid.New()
	ctx := context.Background()

	if _, err := svc.Initialize(ctx, user, 10); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if _, err := svc.Debit(ctx, user, 4, models.CreditActionPost, "gig"); err != nil {
		t.Fatalf("Debit: %v", err)
	}

	log, err := svc.ListLog(ctx, user)
	if err != nil {
		t.Fatalf("ListLog: %v", err)
	}
	if len(log) != 2 {
		t.Fatalf("log length: got %d, want 2", len(log))
	}
	if log[0].Action != models.CreditActionPost || log[1].Action != models.CreditActionInit {
		t.Errorf("log order: got [%s %s], want [post init]", log[0].Action, log[1].Action)
	}
}
