// Package balansserver exposes the coaching orchestrator and its read
// surfaces over HTTP: a streaming chat endpoint (SSE and WebSocket) plus
// JSON APIs for conversations, commitments, and starters.
package balansserver

import (
	"net/http"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/balanshq/balans/pkg/api"
	configv1 "github.com/balanshq/balans/pkg/apis/config/v1"
	"github.com/balanshq/balans/pkg/coaching"
	"github.com/balanshq/balans/pkg/commitments"
	"github.com/balanshq/balans/pkg/conversations"
	"github.com/balanshq/balans/pkg/profile"
)

// userHeader carries the identity resolved by the upstream auth layer.
// Authentication itself is out of scope for this service.
const userHeader = "X-Balans-User"

type Server struct {
	listenAddr string

	orchestrator  *coaching.Orchestrator
	conversations *conversations.Store
	commitments   *commitments.Store
	profiles      *profile.Provider
	config        *configv1.BalansConfig

	httpServer *http.Server
}

func NewServer(
	listenAddr string,
	orchestrator *coaching.Orchestrator,
	conversationStore *conversations.Store,
	commitmentStore *commitments.Store,
	profileProvider *profile.Provider,
	config *configv1.BalansConfig,
) *Server {
	return &Server{
		listenAddr:    listenAddr,
		orchestrator:  orchestrator,
		conversations: conversationStore,
		commitments:   commitmentStore,
		profiles:      profileProvider,
		config:        config,
	}
}

func (s *Server) Serve() {
	router := mux.NewRouter()

	router.HandleFunc("/api/chat", s.chatStream).Methods(http.MethodPost)
	router.HandleFunc("/api/chat/ws", s.chatWebSocket).Methods(http.MethodGet)

	router.HandleFunc("/api/conversations", s.jsonListConversations).Methods(http.MethodGet)
	router.HandleFunc("/api/conversations/{id}", s.jsonGetConversation).Methods(http.MethodGet)
	router.HandleFunc("/api/conversations/{id}", s.jsonUpdateConversation).Methods(http.MethodPatch)
	router.HandleFunc("/api/conversations/{id}", s.jsonDeleteConversation).Methods(http.MethodDelete)

	router.HandleFunc("/api/commitments", s.jsonListCommitments).Methods(http.MethodGet)
	router.HandleFunc("/api/commitments/due", s.jsonListDueCommitments).Methods(http.MethodGet)
	router.HandleFunc("/api/commitments/statistics", s.jsonCommitmentStatistics).Methods(http.MethodGet)
	router.HandleFunc("/api/commitments/{id}/complete", s.jsonCompleteCommitment).Methods(http.MethodPost)
	router.HandleFunc("/api/commitments/{id}/dismiss", s.jsonDismissCommitment).Methods(http.MethodPost)

	router.HandleFunc("/api/starters", s.jsonConversationStarters).Methods(http.MethodGet)

	s.httpServer = &http.Server{
		Addr:    s.listenAddr,
		Handler: router,
	}

	log.Infof("Serving coaching API on %s", s.listenAddr)

	if err := s.httpServer.ListenAndServe(); err != http.ErrServerClosed {
		log.WithError(err).Fatal("server exited")
	}
}

func (s *Server) GetHTTPServer() *http.Server {
	return s.httpServer
}

// getUserForRequest returns the authenticated user id resolved by the
// upstream middleware, or "" when the request is unauthenticated.
func getUserForRequest(req *http.Request) string {
	return req.Header.Get(userHeader)
}

func failureResponse(w http.ResponseWriter, statusCode int, message string) {
	api.RespondWithJSON(statusCode, w, map[string]interface{}{
		"code":    statusCode,
		"message": message,
	})
}
