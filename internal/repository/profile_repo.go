package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ProfileRepo struct {
	pool *pgxpool.Pool
}

func NewProfileRepo(pool *pgxpool.Pool) *ProfileRepo {
	return &ProfileRepo{pool: pool}
}

// GetPlan returns the user's subscription plan. Users without a profile row
// are on the free plan.
func (r *ProfileRepo) GetPlan(ctx context.Context, userID uuid.UUID) (string, error) {
	var plan string
	err := r.pool.QueryRow(ctx, `SELECT plan FROM profiles WHERE user_id = $1`, userID).Scan(&plan)
	if errors.Is(err, pgx.ErrNoRows) {
		return "free", nil
	}
	if err != nil {
		return "", err
	}
	return plan, nil
}
