package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cubanstagelink-ai/reupspots-app/internal/apperr"
	"github.com/cubanstagelink-ai/reupspots-app/internal/models"
)

// ErrDuplicateApplication is returned when a user applies to the same post twice.
var ErrDuplicateApplication = errors.New("already applied to this post")

type ApplicationRepo struct {
	pool *pgxpool.Pool
}

func NewApplicationRepo(pool *pgxpool.Pool) *ApplicationRepo {
	return &ApplicationRepo{pool: pool}
}

// CreateTx inserts the application inside the caller's transaction.
// The (post_id, applicant_id) unique constraint enforces one application per
// applicant per post.
func (r *ApplicationRepo) CreateTx(ctx context.Context, tx pgx.Tx, a *models.Application) error {
	err := tx.QueryRow(ctx, `
		INSERT INTO applications (id, post_id, applicant_id, status)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at
	`, a.ID, a.PostID, a.ApplicantID, a.Status).Scan(&a.CreatedAt, &a.UpdatedAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrDuplicateApplication
	}
	return err
}

func (r *ApplicationRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Application, error) {
	var a models.Application
	err := r.pool.QueryRow(ctx, `
		SELECT id, post_id, applicant_id, status, created_at, updated_at
		FROM applications WHERE id = $1
	`, id).Scan(&a.ID, &a.PostID, &a.ApplicantID, &a.Status, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *ApplicationRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE applications SET status = $2, updated_at = now() WHERE id = $1
	`, id, status)
	return err
}

func (r *ApplicationRepo) ListByPostID(ctx context.Context, postID uuid.UUID) ([]*models.Application, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, post_id, applicant_id, status, created_at, updated_at
		FROM applications WHERE post_id = $1 ORDER BY created_at DESC
	`, postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.Application
	for rows.Next() {
		var a models.Application
		if err := rows.Scan(&a.ID, &a.PostID, &a.ApplicantID, &a.Status, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, &a)
	}
	return list, rows.Err()
}
