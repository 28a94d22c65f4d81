package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// VerificationRepo reads verification records. Review writes happen in the
// admin back office, outside this core.
type VerificationRepo struct {
	pool *pgxpool.Pool
}

func NewVerificationRepo(pool *pgxpool.Pool) *VerificationRepo {
	return &VerificationRepo{pool: pool}
}

// HasApprovedAgeVerification reports whether any approved request with the
// age box ticked exists for the user.
func (r *VerificationRepo) HasApprovedAgeVerification(ctx context.Context, userID uuid.UUID) (bool, error) {
	var ok bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM verification_requests
			WHERE user_id = $1 AND status = 'approved' AND age_confirmed
		)
	`, userID).Scan(&ok)
	return ok, err
}

// HasApprovedProfessional reports whether the user holds an approved
// professional verification for exactly this category.
func (r *VerificationRepo) HasApprovedProfessional(ctx context.Context, userID uuid.UUID, category string) (bool, error) {
	var ok bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM professional_verifications
			WHERE user_id = $1 AND category = $2 AND status = 'approved'
		)
	`, userID, category).Scan(&ok)
	return ok, err
}
