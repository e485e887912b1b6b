// Package v1 contains the types shared between the coaching orchestrator
// and the surrounding API surfaces: turn requests, the typed event stream,
// and the context passed to the model backend.
package v1

import (
	"time"
)

const (
	LanguageEnglish = "en"
	LanguageSwedish = "sv"
)

// MaxMessageLength is the upper bound on an inbound chat message.
const MaxMessageLength = 5000

// TurnRequest is a single inbound chat message. The caller is assumed to be
// authenticated already; UserID is the resolved identity.
type TurnRequest struct {
	UserID         string `json:"user_id"`
	Message        string `json:"message"`
	ConversationID string `json:"conversation_id,omitempty"`
	Language       string `json:"language,omitempty"`
}

// EventType enumerates the events a turn can emit, in the order the client
// should expect them: metadata, text..., (error | quickReplies, metadata), done.
type EventType string

const (
	EventTypeMetadata     EventType = "metadata"
	EventTypeText         EventType = "text"
	EventTypeError        EventType = "error"
	EventTypeQuickReplies EventType = "quickReplies"
	EventTypeDone         EventType = "done"
)

// TurnEvent is one element of the ordered event stream produced by a turn.
// Timestamp is stamped by the transport layer when the event is written out.
type TurnEvent struct {
	Type         EventType     `json:"type"`
	Timestamp    time.Time     `json:"timestamp,omitempty"`
	Content      string        `json:"content,omitempty"`
	Model        string        `json:"model,omitempty"`
	Retryable    *bool         `json:"retryable,omitempty"`
	QuickReplies []string      `json:"quickReplies,omitempty"`
	Metadata     *TurnMetadata `json:"metadata,omitempty"`
}

// TurnMetadata is the near-terminal summary of a completed turn.
type TurnMetadata struct {
	ConversationID string             `json:"conversationId"`
	Topics         []string           `json:"topics"`
	Commitment     *CommitmentSummary `json:"commitment"`
	SafetyLevel    int                `json:"safetyLevel"`
}

// CommitmentSummary is the client-facing view of a micro-commitment attached
// to a turn or a message.
type CommitmentSummary struct {
	ID           string    `json:"id"`
	Commitment   string    `json:"commitment"`
	FollowUpDate time.Time `json:"followUpDate"`
}

// ExtractedCommitment is the structured result of scanning an assistant
// response for a proposed micro-commitment.
type ExtractedCommitment struct {
	Action     string `json:"action"`
	Reflection string `json:"reflection,omitempty"`
	Rationale  string `json:"rationale,omitempty"`
}

// ChatMessage is a single model-facing message.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

const (
	ChatRoleUser      = "user"
	ChatRoleAssistant = "assistant"
)

// WellbeingSummary is the most recent wellbeing snapshot for a user,
// consumed read-only by the context builder.
type WellbeingSummary struct {
	Score      int       `json:"score"`
	Note       string    `json:"note,omitempty"`
	RecordedAt time.Time `json:"recorded_at"`
}

// ProfileSummary is the read-only user context fed into prompt building.
type ProfileSummary struct {
	DisplayName string            `json:"display_name,omitempty"`
	Wellbeing   *WellbeingSummary `json:"wellbeing,omitempty"`
}

// DueCommitment is a previously created commitment whose follow-up date has
// passed, surfaced back into the coaching context.
type DueCommitment struct {
	ID            string    `json:"id"`
	Action        string    `json:"action"`
	Topic         string    `json:"topic,omitempty"`
	FollowUpDate  time.Time `json:"followUpDate"`
	FollowUpCount int       `json:"followUpCount"`
}

// ContextBuildInput carries everything the prompt builder needs for one turn.
type ContextBuildInput struct {
	Profile        *ProfileSummary
	DueCommitments []DueCommitment
	SafetyLevel    int
	Language       string
}

// CommitmentStatistics summarizes a user's commitment history.
type CommitmentStatistics struct {
	Total          int64   `json:"total"`
	Active         int64   `json:"active"`
	Completed      int64   `json:"completed"`
	Dismissed      int64   `json:"dismissed"`
	Expired        int64   `json:"expired"`
	CompletionRate float64 `json:"completion_rate"`
	AverageRating  float64 `json:"average_rating"`
}
