package models

import "time"

// QuotaCounter tracks a user's coaching exchanges for the current UTC day.
// The counter is reset lazily: a stored LastResetAt earlier than the current
// UTC date means the count is stale and treated as zero.
type QuotaCounter struct {
	Model

	UserID      string    `json:"user_id" gorm:"not null;uniqueIndex"`
	Count       int       `json:"count"`
	LastResetAt time.Time `json:"last_reset_at"`
}
