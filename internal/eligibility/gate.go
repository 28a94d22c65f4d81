// Package eligibility derives a user's permission to view or post gated
// content from verification records. All checks are read-only.
package eligibility

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/cubanstagelink-ai/reupspots-app/internal/config"
)

// LicenseRequiredError denies posting in a licensed category. It carries the
// category so the caller can route the user to the verification flow.
type LicenseRequiredError struct {
	Category string
}

func (e *LicenseRequiredError) Error() string {
	return fmt.Sprintf("category %q requires an approved professional verification", e.Category)
}

// VerificationStore is the read side of the verification records.
type VerificationStore interface {
	HasApprovedAgeVerification(ctx context.Context, userID uuid.UUID) (bool, error)
	HasApprovedProfessional(ctx context.Context, userID uuid.UUID, category string) (bool, error)
}

type Gate struct {
	store VerificationStore
	cfg   config.Config
}

func NewGate(store VerificationStore, cfg config.Config) *Gate {
	return &Gate{store: store, cfg: cfg}
}

// IsAgeVerified reports whether any approved verification request with age
// confirmation exists for the user.
func (g *Gate) IsAgeVerified(ctx context.Context, userID uuid.UUID) (bool, error) {
	return g.store.HasApprovedAgeVerification(ctx, userID)
}

// CanViewNSFW drives content filtering; it is the age-verified predicate.
func (g *Gate) CanViewNSFW(ctx context.Context, userID uuid.UUID) (bool, error) {
	return g.IsAgeVerified(ctx, userID)
}

// IsCategoryLicensed reports whether the user holds an approved professional
// verification for exactly this category. Categories outside the licensed set
// are never "licensed".
func (g *Gate) IsCategoryLicensed(ctx context.Context, userID uuid.UUID, category string) (bool, error) {
	if !g.cfg.IsLicensedCategory(category) {
		return false, nil
	}
	return g.store.HasApprovedProfessional(ctx, userID, category)
}

// CanPostInCategory returns nil when the user may post, or a
// LicenseRequiredError naming the category. Events are not license-gated.
func (g *Gate) CanPostInCategory(ctx context.Context, userID uuid.UUID, category string, isEvent bool) error {
	if isEvent || !g.cfg.IsLicensedCategory(category) {
		return nil
	}
	licensed, err := g.store.HasApprovedProfessional(ctx, userID, category)
	if err != nil {
		return err
	}
	if !licensed {
		return &LicenseRequiredError{Category: category}
	}
	return nil
}

// RequiresAgeGate reports whether viewers of this content must be
// age-verified.
func RequiresAgeGate(category string, nsfwFlag bool) bool {
	return category == config.CategoryNSFW || category == config.CategoryAdultClubEvent || nsfwFlag
}

// NormalizeNSFW returns the nsfw flag a post must carry. The NSFW category
// and the adult-club-event category force the flag regardless of caller
// input or post type; this runs at creation, not as a late check. The stored
// flag is what feed filtering keys on, so it must agree with RequiresAgeGate.
func NormalizeNSFW(category string, nsfw bool) bool {
	if category == config.CategoryNSFW || category == config.CategoryAdultClubEvent {
		return true
	}
	return nsfw
}
