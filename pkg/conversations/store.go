// Package conversations owns conversation documents: creation, message
// append, topic accumulation, listing, rename, archive, delete. Every
// operation is scoped to the owning user.
package conversations

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/balanshq/balans/pkg/db"
	"github.com/balanshq/balans/pkg/db/models"
)

// ErrNotFound is returned when a conversation does not exist or does not
// belong to the requesting user. The two cases are deliberately
// indistinguishable to the caller.
var ErrNotFound = errors.New("conversation not found")

type Store struct {
	dbc *db.DB
}

func New(dbc *db.DB) *Store {
	return &Store{dbc: dbc}
}

// GetOrCreate resolves an existing conversation by id scoped to the user, or
// creates a new one when no id is given or the id does not resolve for that
// user. The second return value reports whether a new conversation was
// created.
func (s *Store) GetOrCreate(ctx context.Context, userID, conversationID string) (*models.Conversation, bool, error) {
	if conversationID != "" {
		id, err := uuid.Parse(conversationID)
		if err == nil {
			var conv models.Conversation
			res := s.dbc.DB.WithContext(ctx).First(&conv, "id = ? AND user_id = ?", id, userID)
			if res.Error == nil {
				return &conv, false, nil
			}
			if !errors.Is(res.Error, gorm.ErrRecordNotFound) {
				return nil, false, res.Error
			}
		}
		// Unparseable or unresolvable ids fall through to creation.
		log.WithFields(log.Fields{"user": userID, "conversationID": conversationID}).
			Debug("conversation id did not resolve, starting a new conversation")
	}

	conv := models.Conversation{
		UserID:        userID,
		Status:        models.ConversationStatusActive,
		LastMessageAt: time.Now().UTC(),
	}
	if err := conv.SetStoredMessages(nil); err != nil {
		return nil, false, err
	}
	if err := conv.SetTopicList(nil); err != nil {
		return nil, false, err
	}
	if err := s.dbc.DB.WithContext(ctx).Create(&conv).Error; err != nil {
		return nil, false, errors.Wrap(err, "could not create conversation")
	}

	return &conv, true, nil
}

// AppendMessage appends msg to the conversation's history and advances
// lastMessageAt. Messages are append-only; concurrent turns on the same
// conversation interleave in store-arrival order (last write wins).
func (s *Store) AppendMessage(ctx context.Context, conversationID uuid.UUID, userID string, msg models.StoredMessage) error {
	conv, err := s.get(ctx, conversationID, userID)
	if err != nil {
		return err
	}

	msgs, err := conv.StoredMessages()
	if err != nil {
		return errors.Wrap(err, "could not decode message history")
	}

	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now().UTC()
	}
	if err := conv.SetStoredMessages(append(msgs, msg)); err != nil {
		return err
	}
	conv.LastMessageAt = msg.Timestamp

	return s.dbc.DB.WithContext(ctx).Save(conv).Error
}

// MergeTopics unions topics into the conversation's accumulated topic set.
func (s *Store) MergeTopics(ctx context.Context, conversationID uuid.UUID, userID string, topics []string) error {
	if len(topics) == 0 {
		return nil
	}

	conv, err := s.get(ctx, conversationID, userID)
	if err != nil {
		return err
	}

	existing, err := conv.TopicList()
	if err != nil {
		return errors.Wrap(err, "could not decode topic list")
	}

	merged := existing
	seen := make(map[string]bool, len(existing))
	for _, t := range existing {
		seen[t] = true
	}
	for _, t := range topics {
		if !seen[t] {
			seen[t] = true
			merged = append(merged, t)
		}
	}

	if err := conv.SetTopicList(merged); err != nil {
		return err
	}
	return s.dbc.DB.WithContext(ctx).Save(conv).Error
}

// Get fetches a single conversation, ownership-checked.
func (s *Store) Get(ctx context.Context, conversationID uuid.UUID, userID string) (*models.Conversation, error) {
	return s.get(ctx, conversationID, userID)
}

// ListRecent returns the user's active conversations newest-first, paginated,
// along with the total count. Archived conversations are excluded; they stay
// reachable through Get.
func (s *Store) ListRecent(ctx context.Context, userID string, offset, limit int) ([]models.Conversation, int64, error) {
	if limit <= 0 {
		limit = 20
	}

	q := s.dbc.DB.WithContext(ctx).Model(&models.Conversation{}).
		Where("user_id = ? AND status = ?", userID, models.ConversationStatusActive)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var convs []models.Conversation
	err := q.Order("last_message_at DESC").Offset(offset).Limit(limit).Find(&convs).Error
	return convs, total, err
}

// Rename sets the conversation title.
func (s *Store) Rename(ctx context.Context, conversationID uuid.UUID, userID, title string) error {
	return s.update(ctx, conversationID, userID, map[string]interface{}{"title": title})
}

// Archive moves the conversation out of the active list without deleting it.
func (s *Store) Archive(ctx context.Context, conversationID uuid.UUID, userID string) error {
	return s.update(ctx, conversationID, userID, map[string]interface{}{"status": models.ConversationStatusArchived})
}

// Delete soft-deletes a conversation. This is an administrative operation on
// the store; the turn loop never deletes.
func (s *Store) Delete(ctx context.Context, conversationID uuid.UUID, userID string) error {
	res := s.dbc.DB.WithContext(ctx).
		Where("id = ? AND user_id = ?", conversationID, userID).
		Delete(&models.Conversation{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) get(ctx context.Context, conversationID uuid.UUID, userID string) (*models.Conversation, error) {
	var conv models.Conversation
	res := s.dbc.DB.WithContext(ctx).First(&conv, "id = ? AND user_id = ?", conversationID, userID)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, res.Error
	}
	return &conv, nil
}

func (s *Store) update(ctx context.Context, conversationID uuid.UUID, userID string, values map[string]interface{}) error {
	res := s.dbc.DB.WithContext(ctx).Model(&models.Conversation{}).
		Where("id = ? AND user_id = ?", conversationID, userID).
		Updates(values)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
