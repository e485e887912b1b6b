package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	v1 "github.com/balanshq/balans/pkg/apis/coaching/v1"
)

// CommitmentStatus is the lifecycle state of a micro-commitment. Transitions
// are one-directional: active is the only non-terminal state.
type CommitmentStatus string

const (
	CommitmentStatusActive    CommitmentStatus = "active"
	CommitmentStatusCompleted CommitmentStatus = "completed"
	CommitmentStatusDismissed CommitmentStatus = "dismissed"
	CommitmentStatusExpired   CommitmentStatus = "expired"
)

const (
	// MaxCommitmentActionLength caps the action text of a commitment.
	MaxCommitmentActionLength = 1000
	// MaxCommitmentDetailLength caps the reflection question and rationale.
	MaxCommitmentDetailLength = 500
)

// Commitment is a small action item extracted from an assistant turn,
// tracked through a 14-day follow-up cycle.
type Commitment struct {
	ID        uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`

	UserID         string    `json:"user_id" gorm:"not null;index"`
	ConversationID uuid.UUID `json:"conversation_id" gorm:"type:uuid;index"`

	Action     string `json:"action" gorm:"not null"`
	Reflection string `json:"reflection,omitempty"`
	Rationale  string `json:"rationale,omitempty"`
	Topic      string `json:"topic,omitempty"`

	Status CommitmentStatus `json:"status" gorm:"not null;default:'active';index"`

	FollowUpDate   time.Time  `json:"follow_up_date" gorm:"index"`
	FollowUpCount  int        `json:"follow_up_count"`
	LastFollowUpAt *time.Time `json:"last_follow_up_at,omitempty"`

	CompletedAt          *time.Time `json:"completed_at,omitempty"`
	CompletionReflection string     `json:"completion_reflection,omitempty"`

	// Rating is the 1-5 helpfulness rating given on completion.
	Rating *int `json:"rating,omitempty"`
}

// Summary returns the client-facing view of the commitment.
func (c *Commitment) Summary() *v1.CommitmentSummary {
	return &v1.CommitmentSummary{
		ID:           c.ID.String(),
		Commitment:   c.Action,
		FollowUpDate: c.FollowUpDate,
	}
}

// Due returns the follow-up view of the commitment used in context building.
func (c *Commitment) Due() v1.DueCommitment {
	return v1.DueCommitment{
		ID:            c.ID.String(),
		Action:        c.Action,
		Topic:         c.Topic,
		FollowUpDate:  c.FollowUpDate,
		FollowUpCount: c.FollowUpCount,
	}
}
