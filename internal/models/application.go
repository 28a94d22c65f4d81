package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	ApplicationPending  = "pending"
	ApplicationAccepted = "accepted"
	ApplicationRejected = "rejected"
)

// Application links an applicant to a post. Unique per (post, applicant);
// terminal once accepted or rejected.
type Application struct {
	ID          uuid.UUID `json:"id"`
	PostID      uuid.UUID `json:"post_id"`
	ApplicantID uuid.UUID `json:"applicant_id"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
