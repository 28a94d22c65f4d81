// Package notify fans a newly published listing out to the owner's followers.
// Delivery is best-effort: the listing that triggered it has already
// committed, and per-follower failures are logged and skipped.
package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/riverqueue/river"

	"github.com/cubanstagelink-ai/reupspots-app/internal/models"
)

// ListingPublishedArgs is the river job enqueued after a listing commits.
type ListingPublishedArgs struct {
	PostID  uuid.UUID `json:"post_id"`
	OwnerID uuid.UUID `json:"owner_id"`
	Title   string    `json:"title"`
}

func (ListingPublishedArgs) Kind() string { return "listing_published" }

// FollowerLister yields the followers to notify.
type FollowerLister interface {
	ListFollowerIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
}

// NotificationWriter persists one notification row.
type NotificationWriter interface {
	Insert(ctx context.Context, n *models.Notification) error
}

type ListingPublishedWorker struct {
	river.WorkerDefaults[ListingPublishedArgs]
	follows       FollowerLister
	notifications NotificationWriter
	logger        *slog.Logger
}

func NewListingPublishedWorker(follows FollowerLister, notifications NotificationWriter, logger *slog.Logger) *ListingPublishedWorker {
	return &ListingPublishedWorker{follows: follows, notifications: notifications, logger: logger}
}

func (w *ListingPublishedWorker) Work(ctx context.Context, job *river.Job[ListingPublishedArgs]) error {
	args := job.Args

	followerIDs, err := w.follows.ListFollowerIDs(ctx, args.OwnerID)
	if err != nil {
		return fmt.Errorf("list followers: %w", err)
	}

	for _, followerID := range followerIDs {
		postID := args.PostID
		n := &models.Notification{
			ID:      uuid.New(),
			UserID:  followerID,
			Kind:    models.NotificationNewListing,
			PostID:  &postID,
			Message: fmt.Sprintf("New listing: %s", args.Title),
		}
		if err := w.notifications.Insert(ctx, n); err != nil {
			w.logger.Warn("skip follower notification", "post_id", args.PostID, "follower_id", followerID, "error", err)
		}
	}
	return nil
}
