package balansserver

import (
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/balanshq/balans/pkg/api"
	v1 "github.com/balanshq/balans/pkg/apis/coaching/v1"
)

// lowWellbeingThreshold is the snapshot score at or below which the starter
// list leads with the gentler prompts.
const lowWellbeingThreshold = 4

const maxStarters = 4

// jsonConversationStarters handles GET requests for the static per-language
// conversation starters, biased by the user's most recent wellbeing snapshot.
func (s *Server) jsonConversationStarters(w http.ResponseWriter, req *http.Request) {
	user := getUserForRequest(req)
	if user == "" {
		failureResponse(w, http.StatusUnauthorized, "User authentication required")
		return
	}

	language := req.URL.Query().Get("language")
	if language != v1.LanguageSwedish {
		language = v1.LanguageEnglish
	}

	var starters []string
	summary, err := s.profiles.Summary(req.Context(), user)
	if err != nil {
		log.WithError(err).Warn("could not fetch profile for starter bias")
	} else if summary != nil && summary.Wellbeing != nil && summary.Wellbeing.Score <= lowWellbeingThreshold {
		starters = append(starters, s.config.LowWellbeingStarters[language]...)
	}
	starters = append(starters, s.config.Starters[language]...)

	if len(starters) > maxStarters {
		starters = starters[:maxStarters]
	}

	api.RespondWithJSON(http.StatusOK, w, map[string]interface{}{
		"language": language,
		"starters": starters,
	})
}
