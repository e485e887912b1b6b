// Package coaching implements the conversational coaching turn: safety
// classification, topic tagging, commitment extraction, quick replies, and
// the orchestrator that composes them with the stores and the model backend.
package coaching

import (
	"strings"

	v1 "github.com/balanshq/balans/pkg/apis/coaching/v1"
)

// SafetyLevel is the 0-3 escalation classification of a message.
type SafetyLevel int

const (
	// SafetyLevelNone is the normal flow.
	SafetyLevelNone SafetyLevel = 0
	// SafetyLevelSoft signals fatigue/overwhelm; the coach responds with
	// extra empathy but the flow continues.
	SafetyLevelSoft SafetyLevel = 1
	// SafetyLevelReferral signals legal/medical/financial territory; the
	// coach redirects toward professional resources.
	SafetyLevelReferral SafetyLevel = 2
	// SafetyLevelCrisis terminates the turn immediately with a fixed
	// crisis response. The model is never called.
	SafetyLevelCrisis SafetyLevel = 3
)

// Keyword sets are matched most severe first so that a message touching
// several categories classifies at its highest level.
var crisisKeywords = []string{
	"suicide", "suicidal", "kill myself", "end my life", "self-harm",
	"self harm", "hurt myself", "want to die", "no reason to live",
	"being abused", "abusing me",
	// sv
	"självmord", "ta mitt liv", "ta livet av mig", "skada mig själv",
	"vill dö", "blir misshandlad",
}

var referralKeywords = []string{
	"lawyer", "lawsuit", "legal advice", "diagnosis", "medication",
	"prescription", "chest pain", "debt collector", "bankruptcy",
	"tax advice",
	// sv
	"advokat", "stämning", "juridisk rådgivning", "diagnos", "medicinering",
	"recept", "bröstsmärta", "inkasso", "konkurs",
}

var softKeywords = []string{
	"exhausted", "burned out", "burnt out", "overwhelmed", "can't cope",
	"cant cope", "hopeless", "worthless", "so tired of everything",
	// sv
	"utmattad", "utbränd", "överväldigad", "orkar inte", "hopplöst",
	"värdelös",
}

// ClassifySafety maps raw message text to an escalation level. It is
// deterministic, has no side effects, and must run before any external call.
func ClassifySafety(text string) SafetyLevel {
	lowered := strings.ToLower(text)

	for _, kw := range crisisKeywords {
		if strings.Contains(lowered, kw) {
			return SafetyLevelCrisis
		}
	}
	for _, kw := range referralKeywords {
		if strings.Contains(lowered, kw) {
			return SafetyLevelReferral
		}
	}
	for _, kw := range softKeywords {
		if strings.Contains(lowered, kw) {
			return SafetyLevelSoft
		}
	}

	return SafetyLevelNone
}

const crisisResponseEN = `I'm really glad you told me, and I'm concerned about what you're going through. What you're describing is beyond what coaching can help with, and you deserve real support right now.

Please reach out to one of these:
- Emergency services: 112
- Suicide & crisis lifeline: 988 (US) / Mind Självmordslinjen: 90101 (SE)
- Crisis text line: text HOME to 741741

If you are in immediate danger, please call emergency services now. You don't have to carry this alone.`

const crisisResponseSV = `Jag är glad att du berättade det här för mig, och jag är orolig för hur du har det. Det du beskriver är bortom vad coaching kan hjälpa till med, och du förtjänar riktigt stöd just nu.

Kontakta gärna någon av dessa:
- Nödnummer: 112
- Mind Självmordslinjen: 90101 (chatt på mind.se)
- Jourhavande medmänniska: 08-702 16 80

Om du är i omedelbar fara, ring 112 nu. Du behöver inte bära det här ensam.`

// CrisisResponse returns the fixed crisis text and resource list for the
// given language.
func CrisisResponse(language string) string {
	if language == v1.LanguageSwedish {
		return crisisResponseSV
	}
	return crisisResponseEN
}
