package balansserver

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/balanshq/balans/pkg/api"
	"github.com/balanshq/balans/pkg/conversations"
	"github.com/balanshq/balans/pkg/db/models"
)

const defaultConversationPageSize = 20

// ConversationSummary is the list-view projection of a conversation; the
// full message history is only returned by the single-conversation endpoint.
type ConversationSummary struct {
	ID            string            `json:"id"`
	Title         *string           `json:"title,omitempty"`
	Status        string            `json:"status"`
	Topics        []string          `json:"topics"`
	MessageCount  int               `json:"message_count"`
	LastMessageAt string            `json:"last_message_at"`
	Links         map[string]string `json:"links,omitempty"`
}

// UpdateConversationRequest renames and/or archives a conversation.
type UpdateConversationRequest struct {
	Title   *string `json:"title,omitempty"`
	Archive bool    `json:"archive,omitempty"`
}

// jsonListConversations handles GET requests for the user's conversations,
// newest first, paginated with page/per_page query parameters.
func (s *Server) jsonListConversations(w http.ResponseWriter, req *http.Request) {
	user := getUserForRequest(req)
	if user == "" {
		failureResponse(w, http.StatusUnauthorized, "User authentication required")
		return
	}

	page := intQueryParam(req, "page", 1)
	if page < 1 {
		page = 1
	}
	perPage := intQueryParam(req, "per_page", defaultConversationPageSize)
	if perPage < 1 || perPage > 100 {
		perPage = defaultConversationPageSize
	}

	convs, total, err := s.conversations.ListRecent(req.Context(), user, (page-1)*perPage, perPage)
	if err != nil {
		log.WithError(err).Error("error listing conversations")
		failureResponse(w, http.StatusInternalServerError, "Failed to list conversations")
		return
	}

	baseURL := api.GetBaseURL(req)
	summaries := make([]ConversationSummary, 0, len(convs))
	for i := range convs {
		summaries = append(summaries, summarizeConversation(&convs[i], baseURL))
	}

	api.RespondWithJSON(http.StatusOK, w, map[string]interface{}{
		"conversations": summaries,
		"page":          page,
		"per_page":      perPage,
		"total":         total,
	})
}

// jsonGetConversation handles GET requests for a single conversation by id,
// ownership-checked, including the full message history.
func (s *Server) jsonGetConversation(w http.ResponseWriter, req *http.Request) {
	user, convID, ok := s.conversationRequest(w, req)
	if !ok {
		return
	}

	conv, err := s.conversations.Get(req.Context(), convID, user)
	if err != nil {
		if errors.Is(err, conversations.ErrNotFound) {
			failureResponse(w, http.StatusNotFound, "Conversation not found")
			return
		}
		log.WithError(err).Error("error fetching conversation")
		failureResponse(w, http.StatusInternalServerError, "Failed to fetch conversation")
		return
	}

	conv.Links = map[string]string{
		"self": fmt.Sprintf("%s/api/conversations/%s", api.GetBaseURL(req), conv.ID.String()),
	}
	api.RespondWithJSON(http.StatusOK, w, conv)
}

// jsonUpdateConversation handles PATCH requests: rename and/or archive.
func (s *Server) jsonUpdateConversation(w http.ResponseWriter, req *http.Request) {
	user, convID, ok := s.conversationRequest(w, req)
	if !ok {
		return
	}

	var update UpdateConversationRequest
	if err := json.NewDecoder(req.Body).Decode(&update); err != nil {
		failureResponse(w, http.StatusBadRequest, "Invalid JSON: "+err.Error())
		return
	}
	if update.Title == nil && !update.Archive {
		failureResponse(w, http.StatusBadRequest, "Nothing to update")
		return
	}

	if update.Title != nil {
		if err := s.conversations.Rename(req.Context(), convID, user, *update.Title); err != nil {
			s.conversationUpdateFailure(w, err)
			return
		}
	}
	if update.Archive {
		if err := s.conversations.Archive(req.Context(), convID, user); err != nil {
			s.conversationUpdateFailure(w, err)
			return
		}
	}

	api.RespondWithJSON(http.StatusOK, w, map[string]string{"id": convID.String()})
}

// jsonDeleteConversation handles DELETE requests. Deletion is an
// administrative operation on the store, never part of the turn loop.
func (s *Server) jsonDeleteConversation(w http.ResponseWriter, req *http.Request) {
	user, convID, ok := s.conversationRequest(w, req)
	if !ok {
		return
	}

	if err := s.conversations.Delete(req.Context(), convID, user); err != nil {
		s.conversationUpdateFailure(w, err)
		return
	}

	log.WithFields(log.Fields{"user": user, "conversationID": convID}).Info("conversation deleted")
	api.RespondWithJSON(http.StatusOK, w, map[string]string{"id": convID.String()})
}

func (s *Server) conversationRequest(w http.ResponseWriter, req *http.Request) (string, uuid.UUID, bool) {
	user := getUserForRequest(req)
	if user == "" {
		failureResponse(w, http.StatusUnauthorized, "User authentication required")
		return "", uuid.Nil, false
	}

	convID, err := uuid.Parse(mux.Vars(req)["id"])
	if err != nil {
		failureResponse(w, http.StatusBadRequest, "Invalid conversation ID format")
		return "", uuid.Nil, false
	}

	return user, convID, true
}

func (s *Server) conversationUpdateFailure(w http.ResponseWriter, err error) {
	if errors.Is(err, conversations.ErrNotFound) {
		failureResponse(w, http.StatusNotFound, "Conversation not found")
		return
	}
	log.WithError(err).Error("error updating conversation")
	failureResponse(w, http.StatusInternalServerError, "Failed to update conversation")
}

func summarizeConversation(conv *models.Conversation, baseURL string) ConversationSummary {
	topics, err := conv.TopicList()
	if err != nil {
		log.WithError(err).WithField("conversationID", conv.ID).Warn("could not decode topic list")
	}
	if topics == nil {
		topics = []string{}
	}

	msgs, err := conv.StoredMessages()
	if err != nil {
		log.WithError(err).WithField("conversationID", conv.ID).Warn("could not decode message history")
	}

	return ConversationSummary{
		ID:            conv.ID.String(),
		Title:         conv.Title,
		Status:        conv.Status,
		Topics:        topics,
		MessageCount:  len(msgs),
		LastMessageAt: conv.LastMessageAt.UTC().Format(time.RFC3339),
		Links: map[string]string{
			"self": fmt.Sprintf("%s/api/conversations/%s", baseURL, conv.ID.String()),
		},
	}
}

func intQueryParam(req *http.Request, name string, fallback int) int {
	raw := req.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}
