package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	VerificationPending  = "pending"
	VerificationApproved = "approved"
	VerificationRejected = "rejected"
)

// VerificationRequest is an age/identity verification submission. A user is
// age-verified iff at least one request is approved with AgeConfirmed set.
type VerificationRequest struct {
	ID           uuid.UUID `json:"id"`
	UserID       uuid.UUID `json:"user_id"`
	Status       string    `json:"status"`
	AgeConfirmed bool      `json:"age_confirmed"`
	CreatedAt    time.Time `json:"created_at"`
}

// ProfessionalVerification licenses a user for one exact category.
type ProfessionalVerification struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Category  string    `json:"category"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}
