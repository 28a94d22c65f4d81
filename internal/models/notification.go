package models

import (
	"time"

	"github.com/google/uuid"
)

const NotificationNewListing = "new_listing"

// Notification is a best-effort fan-out record delivered to a follower's feed.
type Notification struct {
	ID        uuid.UUID  `json:"id"`
	UserID    uuid.UUID  `json:"user_id"`
	Kind      string     `json:"kind"`
	PostID    *uuid.UUID `json:"post_id,omitempty"`
	Message   string     `json:"message"`
	ReadAt    *time.Time `json:"read_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}
