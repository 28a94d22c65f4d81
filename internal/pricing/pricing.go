// Package pricing holds the pure listing-cost functions. Credits and money
// fees are two independent dimensions: posting consumes platform credits,
// while bookings carry a money platform fee in minor units.
package pricing

import (
	"time"

	"github.com/cubanstagelink-ai/reupspots-app/internal/config"
)

const PlanElite = "elite"

// MoneyFees is the money side of a booking price.
type MoneyFees struct {
	TierFee     int64 `json:"tier_fee"`
	BoostFee    int64 `json:"boost_fee"`
	TotalAmount int64 `json:"total_amount"`
}

// Calculator computes listing costs from the immutable config tables.
type Calculator struct {
	cfg config.Config
}

func NewCalculator(cfg config.Config) *Calculator {
	return &Calculator{cfg: cfg}
}

// PostCost is the credit cost of a gig post for the given tier.
// Unknown tiers cost the minimum.
func (c *Calculator) PostCost(tier string) int {
	if cost, ok := c.cfg.PostCredits[tier]; ok {
		return cost
	}
	return 1
}

// EventCost is the credit cost of an event post.
func (c *Calculator) EventCost(isNSFWEvent bool) int {
	if isNSFWEvent {
		return c.cfg.NSFWEventCredits
	}
	return c.cfg.EventCredits
}

// BoostCost is the credit cost of a boost level. Unknown levels cost nothing.
func (c *Calculator) BoostCost(boostLevel string) int {
	return c.cfg.BoostCredits[boostLevel]
}

// TotalCreditCost is the full credit price of publishing a listing.
func (c *Calculator) TotalCreditCost(isEvent, isNSFWEvent bool, tier, boostLevel string) int {
	base := c.PostCost(tier)
	if isEvent {
		base = c.EventCost(isNSFWEvent)
	}
	return base + c.BoostCost(boostLevel)
}

// CanAfford reports whether balance covers cost. The elite plan has unlimited
// posting and always affords.
func CanAfford(balance, cost int, plan string) bool {
	if plan == PlanElite {
		return true
	}
	return balance >= cost
}

// MoneyTotal computes the money fees for a booking: platform tier fee plus
// boost fee on top of the base pay, all in cents.
func (c *Calculator) MoneyTotal(basePay int64, tier, boost string) MoneyFees {
	tierFee := c.cfg.TierFees[tier]
	boostFee := c.cfg.BoostFees[boost].FeeCents
	return MoneyFees{
		TierFee:     tierFee,
		BoostFee:    boostFee,
		TotalAmount: basePay + tierFee + boostFee,
	}
}

// BoostExpiry returns when a boost bought now stops being featured, or nil
// for boosts with no duration.
func (c *Calculator) BoostExpiry(boostLevel string, now time.Time) *time.Time {
	hours := c.cfg.BoostFees[boostLevel].Hours
	if hours <= 0 {
		return nil
	}
	t := now.Add(time.Duration(hours) * time.Hour)
	return &t
}
