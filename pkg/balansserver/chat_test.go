package balansserver

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	v1 "github.com/balanshq/balans/pkg/apis/coaching/v1"
)

func TestValidateChatRequest(t *testing.T) {
	tests := []struct {
		name        string
		request     ChatRequest
		expectedMsg string
	}{
		{
			name:    "valid minimal",
			request: ChatRequest{Message: "hi coach"},
		},
		{
			name:    "valid with language",
			request: ChatRequest{Message: "hej", Language: v1.LanguageSwedish},
		},
		{
			name:        "empty message",
			request:     ChatRequest{},
			expectedMsg: "message is required",
		},
		{
			name:        "whitespace only message",
			request:     ChatRequest{Message: "  \n\t "},
			expectedMsg: "message is required",
		},
		{
			name:        "message too long",
			request:     ChatRequest{Message: strings.Repeat("a", v1.MaxMessageLength+1)},
			expectedMsg: "message exceeds maximum length of 5000 characters",
		},
		{
			name:    "length is measured in runes not bytes",
			request: ChatRequest{Message: strings.Repeat("å", v1.MaxMessageLength)},
		},
		{
			name:        "unsupported language",
			request:     ChatRequest{Message: "hello", Language: "de"},
			expectedMsg: "language must be one of: en, sv",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expectedMsg, validateChatRequest(tc.request))
		})
	}
}

func TestWriteSSEEvent(t *testing.T) {
	var buf bytes.Buffer
	err := writeSSEEvent(&buf, v1.TurnEvent{
		Type:    v1.EventTypeText,
		Content: "Hello ",
	})
	require.NoError(t, err)

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "data: "))
	assert.True(t, strings.HasSuffix(out, "\n\n"))

	var decoded v1.TurnEvent
	payload := strings.TrimSuffix(strings.TrimPrefix(out, "data: "), "\n\n")
	require.NoError(t, json.Unmarshal([]byte(payload), &decoded))
	assert.Equal(t, v1.EventTypeText, decoded.Type)
	assert.Equal(t, "Hello ", decoded.Content)
}

func TestWriteSSEEventOmitsEmptyFields(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeSSEEvent(&buf, v1.TurnEvent{Type: v1.EventTypeDone}))

	out := buf.String()
	assert.NotContains(t, out, "retryable")
	assert.NotContains(t, out, "quickReplies")
	assert.NotContains(t, out, "metadata")
	assert.NotContains(t, out, "model")
}
