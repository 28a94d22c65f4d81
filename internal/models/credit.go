package models

import (
	"time"

	"github.com/google/uuid"
)

// Credit log actions. Every balance mutation appends exactly one entry, so
// summing a user's entries always reproduces the current balance.
const (
	CreditActionInit     = "init"
	CreditActionPost     = "post"
	CreditActionApply    = "apply"
	CreditActionBoost    = "boost"
	CreditActionPurchase = "purchase"
	CreditActionRefund   = "refund"
)

// Credit is a user's spendable balance. One row per user, created lazily on
// first need and never deleted.
type Credit struct {
	UserID    uuid.UUID `json:"user_id"`
	Balance   int       `json:"balance"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreditLogEntry is one append-only line of the per-user ledger. Amount is
// signed: debits are negative.
type CreditLogEntry struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	Action      string    `json:"action"`
	Amount      int       `json:"amount"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}
