// Package application handles applying to posts and the owner's response.
package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/cubanstagelink-ai/reupspots-app/internal/apperr"
	"github.com/cubanstagelink-ai/reupspots-app/internal/authz"
	"github.com/cubanstagelink-ai/reupspots-app/internal/models"
	"github.com/cubanstagelink-ai/reupspots-app/internal/repository"
)

// ApplyCost is the flat credit cost of applying to a post.
const ApplyCost = 1

// Store persists applications.
type Store interface {
	CreateTx(ctx context.Context, tx pgx.Tx, a *models.Application) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Application, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
}

// PostGetter resolves the applied-to post.
type PostGetter interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Post, error)
}

// Debiter is the ledger surface the apply flow consumes.
type Debiter interface {
	DebitTx(ctx context.Context, tx pgx.Tx, userID uuid.UUID, amount int, action, description string) (*models.Credit, error)
}

// TxBeginner abstracts transaction creation.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

type Service struct {
	db     TxBeginner
	store  Store
	posts  PostGetter
	ledger Debiter
	policy authz.Policy
}

func NewService(db TxBeginner, store Store, posts PostGetter, ledger Debiter, policy authz.Policy) *Service {
	return &Service{db: db, store: store, posts: posts, ledger: ledger, policy: policy}
}

// Apply creates an application, debiting the apply cost in the same
// transaction. Applying to your own post or applying twice is rejected before
// any credits move.
func (s *Service) Apply(ctx context.Context, applicant authz.Actor, postID uuid.UUID) (*models.Application, error) {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.UserID == applicant.UserID {
		return nil, apperr.Validation("postId", "cannot apply to your own post")
	}

	a := &models.Application{
		ID:          uuid.New(),
		PostID:      postID,
		ApplicantID: applicant.UserID,
		Status:      models.ApplicationPending,
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if _, err := s.ledger.DebitTx(ctx, tx, applicant.UserID, ApplyCost, models.CreditActionApply,
		fmt.Sprintf("application to %s", post.Title)); err != nil {
		return nil, err
	}
	if err := s.store.CreateTx(ctx, tx, a); err != nil {
		if errors.Is(err, repository.ErrDuplicateApplication) {
			return nil, apperr.Validation("postId", "already applied to this post")
		}
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return a, nil
}

// Respond lets the post owner accept or reject an application. The decision
// is terminal.
func (s *Service) Respond(ctx context.Context, actor authz.Actor, applicationID uuid.UUID, accept bool) (*models.Application, error) {
	a, err := s.store.GetByID(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	post, err := s.posts.GetByID(ctx, a.PostID)
	if err != nil {
		return nil, err
	}
	if post.UserID != actor.UserID && !s.policy.IsAdmin(actor) {
		return nil, apperr.ErrForbidden
	}
	if a.Status != models.ApplicationPending {
		return nil, apperr.InvalidTransition("application", a.Status, "respond")
	}

	status := models.ApplicationRejected
	if accept {
		status = models.ApplicationAccepted
	}
	if err := s.store.UpdateStatus(ctx, applicationID, status); err != nil {
		return nil, err
	}
	a.Status = status
	return a, nil
}
