package balansserver

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/balanshq/balans/pkg/api"
	"github.com/balanshq/balans/pkg/commitments"
)

// CompleteCommitmentRequest carries the optional completion reflection and
// 1-5 helpfulness rating.
type CompleteCommitmentRequest struct {
	Reflection string `json:"reflection,omitempty"`
	Rating     *int   `json:"rating,omitempty"`
}

// jsonListCommitments handles GET requests for the user's active
// commitments.
func (s *Server) jsonListCommitments(w http.ResponseWriter, req *http.Request) {
	user := getUserForRequest(req)
	if user == "" {
		failureResponse(w, http.StatusUnauthorized, "User authentication required")
		return
	}

	active, err := s.commitments.ListActive(req.Context(), user)
	if err != nil {
		log.WithError(err).Error("error listing commitments")
		failureResponse(w, http.StatusInternalServerError, "Failed to list commitments")
		return
	}

	api.RespondWithJSON(http.StatusOK, w, map[string]interface{}{"commitments": active})
}

// jsonListDueCommitments handles GET requests for commitments whose
// follow-up date has passed.
func (s *Server) jsonListDueCommitments(w http.ResponseWriter, req *http.Request) {
	user := getUserForRequest(req)
	if user == "" {
		failureResponse(w, http.StatusUnauthorized, "User authentication required")
		return
	}

	due, err := s.commitments.DueFollowups(req.Context(), user)
	if err != nil {
		log.WithError(err).Error("error listing due commitments")
		failureResponse(w, http.StatusInternalServerError, "Failed to list due commitments")
		return
	}

	api.RespondWithJSON(http.StatusOK, w, map[string]interface{}{"commitments": due})
}

// jsonCommitmentStatistics handles GET requests for counts by status plus
// completion rate and average rating.
func (s *Server) jsonCommitmentStatistics(w http.ResponseWriter, req *http.Request) {
	user := getUserForRequest(req)
	if user == "" {
		failureResponse(w, http.StatusUnauthorized, "User authentication required")
		return
	}

	stats, err := s.commitments.Statistics(req.Context(), user)
	if err != nil {
		log.WithError(err).Error("error computing commitment statistics")
		failureResponse(w, http.StatusInternalServerError, "Failed to compute statistics")
		return
	}

	api.RespondWithJSON(http.StatusOK, w, stats)
}

// jsonCompleteCommitment handles POST requests transitioning a commitment
// active -> completed. Repeat completion yields not-found: terminal states
// are final.
func (s *Server) jsonCompleteCommitment(w http.ResponseWriter, req *http.Request) {
	user, id, ok := s.commitmentRequest(w, req)
	if !ok {
		return
	}

	var body CompleteCommitmentRequest
	if req.Body != nil {
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil && err.Error() != "EOF" {
			failureResponse(w, http.StatusBadRequest, "Invalid JSON: "+err.Error())
			return
		}
	}
	if body.Rating != nil && (*body.Rating < 1 || *body.Rating > 5) {
		failureResponse(w, http.StatusBadRequest, "Rating must be between 1 and 5")
		return
	}

	if err := s.commitments.Complete(req.Context(), id, user, body.Reflection, body.Rating); err != nil {
		s.commitmentUpdateFailure(w, err)
		return
	}

	log.WithFields(log.Fields{"user": user, "commitmentID": id}).Info("commitment completed")
	api.RespondWithJSON(http.StatusOK, w, map[string]string{"id": id.String(), "status": "completed"})
}

// jsonDismissCommitment handles POST requests transitioning a commitment
// active -> dismissed.
func (s *Server) jsonDismissCommitment(w http.ResponseWriter, req *http.Request) {
	user, id, ok := s.commitmentRequest(w, req)
	if !ok {
		return
	}

	if err := s.commitments.Dismiss(req.Context(), id, user); err != nil {
		s.commitmentUpdateFailure(w, err)
		return
	}

	api.RespondWithJSON(http.StatusOK, w, map[string]string{"id": id.String(), "status": "dismissed"})
}

func (s *Server) commitmentRequest(w http.ResponseWriter, req *http.Request) (string, uuid.UUID, bool) {
	user := getUserForRequest(req)
	if user == "" {
		failureResponse(w, http.StatusUnauthorized, "User authentication required")
		return "", uuid.Nil, false
	}

	id, err := uuid.Parse(mux.Vars(req)["id"])
	if err != nil {
		failureResponse(w, http.StatusBadRequest, "Invalid commitment ID format")
		return "", uuid.Nil, false
	}

	return user, id, true
}

func (s *Server) commitmentUpdateFailure(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, commitments.ErrNotFound):
		failureResponse(w, http.StatusNotFound, "Commitment not found")
	case errors.Is(err, commitments.ErrInvalidRating):
		failureResponse(w, http.StatusBadRequest, "Rating must be between 1 and 5")
	default:
		log.WithError(err).Error("error updating commitment")
		failureResponse(w, http.StatusInternalServerError, "Failed to update commitment")
	}
}
