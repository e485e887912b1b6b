package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	v1 "github.com/balanshq/balans/pkg/apis/coaching/v1"
)

func TestConversationMessageDocument(t *testing.T) {
	conv := &Conversation{}

	// A fresh conversation decodes to no history.
	msgs, err := conv.StoredMessages()
	require.NoError(t, err)
	assert.Nil(t, msgs)

	ts := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	history := []StoredMessage{
		{Role: MessageRoleUser, Content: "hi coach", Timestamp: ts},
		{
			Role:      MessageRoleAssistant,
			Content:   "Hello!",
			Timestamp: ts.Add(2 * time.Second),
			Metadata: &MessageMetadata{
				Topics:     []string{"sleep"},
				Commitment: &v1.CommitmentSummary{ID: "c1", Commitment: "No screens after 21:00"},
			},
		},
	}
	require.NoError(t, conv.SetStoredMessages(history))

	decoded, err := conv.StoredMessages()
	require.NoError(t, err)
	require.Len(t, decoded, 2)
	assert.Equal(t, "hi coach", decoded[0].Content)
	assert.Nil(t, decoded[0].Metadata)
	require.NotNil(t, decoded[1].Metadata)
	assert.Equal(t, []string{"sleep"}, decoded[1].Metadata.Topics)
	require.NotNil(t, decoded[1].Metadata.Commitment)
	assert.Equal(t, "c1", decoded[1].Metadata.Commitment.ID)
	assert.True(t, decoded[1].Timestamp.Equal(ts.Add(2*time.Second)))
}

func TestConversationPartialFlagRoundTrips(t *testing.T) {
	conv := &Conversation{}
	require.NoError(t, conv.SetStoredMessages([]StoredMessage{
		{Role: MessageRoleAssistant, Content: "Partial ", Metadata: &MessageMetadata{Partial: true}},
	}))

	decoded, err := conv.StoredMessages()
	require.NoError(t, err)
	require.Len(t, decoded, 1)
	assert.Equal(t, "Partial ", decoded[0].Content)
	require.NotNil(t, decoded[0].Metadata)
	assert.True(t, decoded[0].Metadata.Partial)
}

func TestConversationTopicDocument(t *testing.T) {
	conv := &Conversation{}

	topics, err := conv.TopicList()
	require.NoError(t, err)
	assert.Nil(t, topics)

	require.NoError(t, conv.SetTopicList([]string{"stress", "work"}))
	topics, err = conv.TopicList()
	require.NoError(t, err)
	assert.Equal(t, []string{"stress", "work"}, topics)

	// nil is stored as an empty set, not as SQL null.
	require.NoError(t, conv.SetTopicList(nil))
	topics, err = conv.TopicList()
	require.NoError(t, err)
	assert.Empty(t, topics)
}

func TestConversationCorruptDocument(t *testing.T) {
	conv := &Conversation{}
	require.NoError(t, conv.Messages.Set([]byte(`{"not": "an array"}`)))

	_, err := conv.StoredMessages()
	assert.Error(t, err)
}
