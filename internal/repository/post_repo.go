package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cubanstagelink-ai/reupspots-app/internal/apperr"
	"github.com/cubanstagelink-ai/reupspots-app/internal/models"
)

type PostRepo struct {
	pool *pgxpool.Pool
}

func NewPostRepo(pool *pgxpool.Pool) *PostRepo {
	return &PostRepo{pool: pool}
}

// CreateTx inserts the post inside the caller's transaction so the credit
// debit and the listing either both commit or neither does.
func (r *PostRepo) CreateTx(ctx context.Context, tx pgx.Tx, p *models.Post) error {
	return tx.QueryRow(ctx, `
		INSERT INTO posts (id, user_id, title, description, tier, post_type, category, nsfw, boost_level, boost_expires_at, verified)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at
	`, p.ID, p.UserID, p.Title, p.Description, p.Tier, p.PostType, p.Category, p.NSFW, p.BoostLevel, p.BoostExpiresAt, p.Verified).Scan(&p.CreatedAt)
}

func (r *PostRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	var p models.Post
	err := r.pool.QueryRow(ctx, `
		SELECT id, user_id, title, description, tier, post_type, category, nsfw, boost_level, boost_expires_at, verified, created_at
		FROM posts WHERE id = $1
	`, id).Scan(&p.ID, &p.UserID, &p.Title, &p.Description, &p.Tier, &p.PostType, &p.Category, &p.NSFW, &p.BoostLevel, &p.BoostExpiresAt, &p.Verified, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ListVisible returns posts for a feed: active boosts first, then newest.
// NSFW posts are filtered out unless the viewer may see them.
func (r *PostRepo) ListVisible(ctx context.Context, includeNSFW bool) ([]*models.Post, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, title, description, tier, post_type, category, nsfw, boost_level, boost_expires_at, verified, created_at
		FROM posts
		WHERE ($1 OR NOT nsfw)
		ORDER BY (boost_expires_at IS NOT NULL AND boost_expires_at > now()) DESC, created_at DESC
	`, includeNSFW)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.Post
	for rows.Next() {
		var p models.Post
		if err := rows.Scan(&p.ID, &p.UserID, &p.Title, &p.Description, &p.Tier, &p.PostType, &p.Category, &p.NSFW, &p.BoostLevel, &p.BoostExpiresAt, &p.Verified, &p.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, &p)
	}
	return list, rows.Err()
}
