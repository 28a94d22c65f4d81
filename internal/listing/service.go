// Package listing orchestrates listing creation: normalize, gate, price,
// debit, persist. The credit debit and the post insert share one transaction;
// follower notification is enqueued only after that transaction commits and
// its failure never surfaces to the caller.
package listing

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/cubanstagelink-ai/reupspots-app/internal/apperr"
	"github.com/cubanstagelink-ai/reupspots-app/internal/eligibility"
	"github.com/cubanstagelink-ai/reupspots-app/internal/models"
	"github.com/cubanstagelink-ai/reupspots-app/internal/notify"
	"github.com/cubanstagelink-ai/reupspots-app/internal/pricing"
)

// PostStore persists posts and serves the feed.
type PostStore interface {
	CreateTx(ctx context.Context, tx pgx.Tx, p *models.Post) error
	ListVisible(ctx context.Context, includeNSFW bool) ([]*models.Post, error)
}

// Ledger is the credit surface the listing flow consumes.
type Ledger interface {
	DebitTx(ctx context.Context, tx pgx.Tx, userID uuid.UUID, amount int, action, description string) (*models.Credit, error)
	GetBalance(ctx context.Context, userID uuid.UUID) (int, error)
}

// PlanStore resolves a user's subscription plan.
type PlanStore interface {
	GetPlan(ctx context.Context, userID uuid.UUID) (string, error)
}

// TxBeginner abstracts transaction creation.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// EnqueueListingPublished schedules the follower fan-out job.
type EnqueueListingPublished func(ctx context.Context, args notify.ListingPublishedArgs) error

type Service struct {
	db      TxBeginner
	posts   PostStore
	ledger  Ledger
	plans   PlanStore
	gate    *eligibility.Gate
	calc    *pricing.Calculator
	enqueue EnqueueListingPublished
	logger  *slog.Logger
	now     func() time.Time
}

func NewService(db TxBeginner, posts PostStore, ledger Ledger, plans PlanStore,
	gate *eligibility.Gate, calc *pricing.Calculator, enqueue EnqueueListingPublished, logger *slog.Logger) *Service {
	return &Service{
		db: db, posts: posts, ledger: ledger, plans: plans,
		gate: gate, calc: calc, enqueue: enqueue, logger: logger, now: time.Now,
	}
}

// CreateInput is a listing submission.
type CreateInput struct {
	Title       string `json:"title" validate:"required,max=140"`
	Description string `json:"description" validate:"max=5000"`
	Tier        string `json:"tier" validate:"required"`
	PostType    string `json:"post_type" validate:"required,oneof=gig event"`
	Category    string `json:"category" validate:"required"`
	NSFW        bool   `json:"nsfw"`
	BoostLevel  string `json:"boost_level"`
}

// CostQuote is what a listing would cost, before submitting it.
type CostQuote struct {
	CreditCost int               `json:"credit_cost"`
	MoneyFees  pricing.MoneyFees `json:"money_fees"`
	CanAfford  bool              `json:"can_afford"`
}

// Create publishes a listing. Eligibility and affordability are settled
// before any write; the debit and the insert commit as one unit.
func (s *Service) Create(ctx context.Context, userID uuid.UUID, in CreateInput) (*models.Post, error) {
	if in.BoostLevel == "" {
		in.BoostLevel = models.BoostNone
	}
	isEvent := in.PostType == models.PostTypeEvent
	nsfw := eligibility.NormalizeNSFW(in.Category, in.NSFW)

	if err := s.gate.CanPostInCategory(ctx, userID, in.Category, isEvent); err != nil {
		return nil, err
	}

	cost := s.calc.TotalCreditCost(isEvent, isEvent && nsfw, in.Tier, in.BoostLevel)
	plan, err := s.plans.GetPlan(ctx, userID)
	if err != nil {
		return nil, err
	}

	post := &models.Post{
		ID:             uuid.New(),
		UserID:         userID,
		Title:          in.Title,
		Description:    in.Description,
		Tier:           in.Tier,
		PostType:       in.PostType,
		Category:       in.Category,
		NSFW:           nsfw,
		BoostLevel:     in.BoostLevel,
		BoostExpiresAt: s.calc.BoostExpiry(in.BoostLevel, s.now()),
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	// Elite posting is unlimited: no debit, no ledger noise.
	if plan != pricing.PlanElite {
		if _, err := s.ledger.DebitTx(ctx, tx, userID, cost, models.CreditActionPost, in.Title); err != nil {
			return nil, err
		}
	}
	if err := s.posts.CreateTx(ctx, tx, post); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	// Best-effort: a queue failure must not fail the listing that already
	// committed.
	if err := s.enqueue(ctx, notify.ListingPublishedArgs{PostID: post.ID, OwnerID: userID, Title: post.Title}); err != nil {
		s.logger.Warn("enqueue follower notification", "post_id", post.ID, "error", err)
	}

	return post, nil
}

// QuoteCost prices a listing without publishing it.
func (s *Service) QuoteCost(ctx context.Context, userID uuid.UUID, in CreateInput, basePay int64) (*CostQuote, error) {
	if in.BoostLevel == "" {
		in.BoostLevel = models.BoostNone
	}
	isEvent := in.PostType == models.PostTypeEvent
	nsfw := eligibility.NormalizeNSFW(in.Category, in.NSFW)

	cost := s.calc.TotalCreditCost(isEvent, isEvent && nsfw, in.Tier, in.BoostLevel)
	plan, err := s.plans.GetPlan(ctx, userID)
	if err != nil {
		return nil, err
	}
	// An uninitialized balance affords nothing (unless the plan is elite).
	balance, err := s.ledger.GetBalance(ctx, userID)
	if err != nil && !errors.Is(err, apperr.ErrNotFound) {
		return nil, err
	}
	return &CostQuote{
		CreditCost: cost,
		MoneyFees:  s.calc.MoneyTotal(basePay, in.Tier, in.BoostLevel),
		CanAfford:  pricing.CanAfford(balance, cost, plan),
	}, nil
}

// ListFeed returns visible posts for the viewer, filtering NSFW content for
// viewers who are not age-verified.
func (s *Service) ListFeed(ctx context.Context, viewerID uuid.UUID) ([]*models.Post, error) {
	canNSFW := false
	if viewerID != uuid.Nil {
		ok, err := s.gate.CanViewNSFW(ctx, viewerID)
		if err != nil {
			return nil, err
		}
		canNSFW = ok
	}
	posts, err := s.posts.ListVisible(ctx, canNSFW)
	if err != nil {
		return nil, err
	}
	return posts, nil
}
