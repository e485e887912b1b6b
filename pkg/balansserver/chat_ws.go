package balansserver

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	v1 "github.com/balanshq/balans/pkg/apis/coaching/v1"
)

var wsUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// Allow all origins for now - in production you might want to be more restrictive
		return true
	},
}

// chatWebSocket serves the same turn event stream over a WebSocket: the
// client sends one ChatRequest as JSON, the server replies with one JSON
// message per turn event. A closed connection cancels the turn's context so
// the orchestrator treats it as a disconnect.
func (s *Server) chatWebSocket(w http.ResponseWriter, req *http.Request) {
	user := getUserForRequest(req)
	if user == "" {
		failureResponse(w, http.StatusUnauthorized, "User authentication required")
		return
	}

	conn, err := wsUpgrader.Upgrade(w, req, nil)
	if err != nil {
		log.WithError(err).Error("could not upgrade chat connection")
		return
	}
	defer conn.Close()

	var chatReq ChatRequest
	if err := conn.ReadJSON(&chatReq); err != nil {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseInvalidFramePayloadData, "invalid request"),
			time.Now().Add(time.Second))
		return
	}
	if msg := validateChatRequest(chatReq); msg != "" {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.ClosePolicyViolation, msg),
			time.Now().Add(time.Second))
		return
	}

	ctx, cancel := context.WithCancel(req.Context())
	defer cancel()

	// Watch for the client closing the socket mid-turn.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				cancel()
				return
			}
		}
	}()

	events := s.orchestrator.ExecuteTurn(ctx, v1.TurnRequest{
		UserID:         user,
		Message:        chatReq.Message,
		ConversationID: chatReq.ConversationID,
		Language:       chatReq.Language,
	})

	for ev := range events {
		ev.Timestamp = time.Now().UTC()
		if err := conn.WriteJSON(ev); err != nil {
			cancel()
			// Keep draining so the orchestrator can settle the turn.
			for range events {
			}
			return
		}
	}

	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
}
