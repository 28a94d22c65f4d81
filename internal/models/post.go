package models

import (
	"time"

	"github.com/google/uuid"
)

// Listing tiers, in ascending credit cost.
const (
	TierSlots    = "Slots"
	TierMissions = "Missions"
	TierTasks    = "Tasks"
	TierProjects = "Projects"
	TierChances  = "Chances"
)

const (
	PostTypeGig   = "gig"
	PostTypeEvent = "event"
)

// Boost levels.
const (
	BoostNone       = "None"
	Boost24h        = "24h Boost"
	Boost72h        = "72h Boost"
	Boost7dFeatured = "7 Day Featured"
)

// Post is a published listing. Immutable after creation in this core;
// BoostExpiresAt is set once from the boost level.
type Post struct {
	ID             uuid.UUID  `json:"id"`
	UserID         uuid.UUID  `json:"user_id"`
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	Tier           string     `json:"tier"`
	PostType       string     `json:"post_type"`
	Category       string     `json:"category"`
	NSFW           bool       `json:"nsfw"`
	BoostLevel     string     `json:"boost_level"`
	BoostExpiresAt *time.Time `json:"boost_expires_at,omitempty"`
	Verified       bool       `json:"verified"`
	CreatedAt      time.Time  `json:"created_at"`
}
