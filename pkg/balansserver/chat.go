package balansserver

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	log "github.com/sirupsen/logrus"

	v1 "github.com/balanshq/balans/pkg/apis/coaching/v1"
)

// ChatRequest is the inbound payload for one coaching turn.
type ChatRequest struct {
	Message        string `json:"message"`
	ConversationID string `json:"conversation_id,omitempty"`
	Language       string `json:"language,omitempty"`
}

// validateChatRequest rejects malformed input before any state change.
func validateChatRequest(req ChatRequest) string {
	if strings.TrimSpace(req.Message) == "" {
		return "message is required"
	}
	if utf8.RuneCountInString(req.Message) > v1.MaxMessageLength {
		return fmt.Sprintf("message exceeds maximum length of %d characters", v1.MaxMessageLength)
	}
	switch req.Language {
	case "", v1.LanguageEnglish, v1.LanguageSwedish:
		return ""
	default:
		return "language must be one of: en, sv"
	}
}

// chatStream executes one coaching turn and relays its event stream as
// server-sent events, one JSON event per data line. The request context is
// threaded into the orchestrator so a client disconnect cancels the relay.
func (s *Server) chatStream(w http.ResponseWriter, req *http.Request) {
	user := getUserForRequest(req)
	if user == "" {
		failureResponse(w, http.StatusUnauthorized, "User authentication required")
		return
	}

	var chatReq ChatRequest
	if err := json.NewDecoder(req.Body).Decode(&chatReq); err != nil {
		failureResponse(w, http.StatusBadRequest, "Invalid JSON: "+err.Error())
		return
	}
	if msg := validateChatRequest(chatReq); msg != "" {
		failureResponse(w, http.StatusBadRequest, msg)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		failureResponse(w, http.StatusInternalServerError, "Streaming is not supported on this connection")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	events := s.orchestrator.ExecuteTurn(req.Context(), v1.TurnRequest{
		UserID:         user,
		Message:        chatReq.Message,
		ConversationID: chatReq.ConversationID,
		Language:       chatReq.Language,
	})

	for ev := range events {
		ev.Timestamp = time.Now().UTC()
		if err := writeSSEEvent(w, ev); err != nil {
			log.WithError(err).Debug("client went away mid-stream")
			// Keep draining so the orchestrator can settle the turn.
			continue
		}
		flusher.Flush()
	}
}

// writeSSEEvent writes one event in text/event-stream framing.
func writeSSEEvent(w io.Writer, ev v1.TurnEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "data: %s\n\n", payload)
	return err
}
