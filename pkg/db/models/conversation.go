package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgtype"
	"gorm.io/gorm"

	v1 "github.com/balanshq/balans/pkg/apis/coaching/v1"
)

const (
	ConversationStatusActive   = "active"
	ConversationStatusArchived = "archived"
)

const (
	MessageRoleUser      = "user"
	MessageRoleAssistant = "assistant"
)

// Conversation stores one coaching conversation as a document: the ordered,
// append-only message history and the accumulated topic set live in JSONB
// columns. A conversation belongs to exactly one user.
type Conversation struct {
	ID        uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`

	// User who owns this conversation; all reads and mutations are scoped
	// to this user.
	UserID string `json:"user_id" gorm:"not null;index"`

	Title  *string `json:"title,omitempty"`
	Status string  `json:"status" gorm:"not null;default:'active'"`

	// Messages contains the full conversation history in JSONB format.
	Messages pgtype.JSONB `json:"messages" gorm:"type:jsonb;not null"`

	// Topics is the accumulated set of topic labels across all turns.
	Topics pgtype.JSONB `json:"topics,omitempty" gorm:"type:jsonb"`

	LastMessageAt time.Time `json:"last_message_at" gorm:"index"`

	// Links contains REST links for clients to follow. Most notably "self".
	// These are injected by the API and not stored in the DB.
	Links map[string]string `json:"links,omitempty" gorm:"-"`
}

// StoredMessage is one element of the Messages document. Once appended it is
// never mutated.
type StoredMessage struct {
	Role      string           `json:"role"`
	Content   string           `json:"content"`
	Timestamp time.Time        `json:"timestamp"`
	Metadata  *MessageMetadata `json:"metadata,omitempty"`
}

// MessageMetadata is the optional per-message metadata bag.
type MessageMetadata struct {
	Topics     []string              `json:"topics,omitempty"`
	Commitment *v1.CommitmentSummary `json:"commitment,omitempty"`

	// Partial marks an assistant message persisted despite the stream not
	// reaching a clean end.
	Partial bool `json:"partial,omitempty"`
}

// StoredMessages decodes the JSONB message history.
func (c *Conversation) StoredMessages() ([]StoredMessage, error) {
	if c.Messages.Status != pgtype.Present || len(c.Messages.Bytes) == 0 {
		return nil, nil
	}

	var msgs []StoredMessage
	if err := json.Unmarshal(c.Messages.Bytes, &msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}

// SetStoredMessages encodes msgs into the JSONB message column.
func (c *Conversation) SetStoredMessages(msgs []StoredMessage) error {
	if msgs == nil {
		msgs = []StoredMessage{}
	}
	b, err := json.Marshal(msgs)
	if err != nil {
		return err
	}
	return c.Messages.Set(b)
}

// TopicList decodes the accumulated topic set.
func (c *Conversation) TopicList() ([]string, error) {
	if c.Topics.Status != pgtype.Present || len(c.Topics.Bytes) == 0 {
		return nil, nil
	}

	var topics []string
	if err := json.Unmarshal(c.Topics.Bytes, &topics); err != nil {
		return nil, err
	}
	return topics, nil
}

// SetTopicList encodes topics into the JSONB topic column.
func (c *Conversation) SetTopicList(topics []string) error {
	if topics == nil {
		topics = []string{}
	}
	b, err := json.Marshal(topics)
	if err != nil {
		return err
	}
	return c.Topics.Set(b)
}
