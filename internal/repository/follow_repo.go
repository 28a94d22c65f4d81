package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cubanstagelink-ai/reupspots-app/internal/models"
)

type FollowRepo struct {
	pool *pgxpool.Pool
}

func NewFollowRepo(pool *pgxpool.Pool) *FollowRepo {
	return &FollowRepo{pool: pool}
}

// ListFollowerIDs returns the ids of everyone following the given user.
func (r *FollowRepo) ListFollowerIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT follower_id FROM follows WHERE followed_id = $1
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

type NotificationRepo struct {
	pool *pgxpool.Pool
}

func NewNotificationRepo(pool *pgxpool.Pool) *NotificationRepo {
	return &NotificationRepo{pool: pool}
}

func (r *NotificationRepo) Insert(ctx context.Context, n *models.Notification) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO notifications (id, user_id, kind, post_id, message)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`, n.ID, n.UserID, n.Kind, n.PostID, n.Message).Scan(&n.CreatedAt)
}
