package coaching

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/tidwall/gjson"

	v1 "github.com/balanshq/balans/pkg/apis/coaching/v1"
	"github.com/balanshq/balans/pkg/db/models"
)

// The system prompt instructs the model to propose at most one
// micro-commitment per response, emitted as a trailing marker block:
//
//	[commitment]{"action": "...", "reflection": "...", "rationale": "..."}[/commitment]
var commitmentMarker = regexp.MustCompile(`(?s)\[commitment\](.*?)\[/commitment\]`)

// ExtractCommitment scans a completed assistant response for the commitment
// marker. Extraction is best-effort: malformed or truncated payloads yield
// nil, never an error. Absence of a commitment is a normal outcome.
func ExtractCommitment(response string) *v1.ExtractedCommitment {
	m := commitmentMarker.FindStringSubmatch(response)
	if m == nil {
		return nil
	}

	payload := strings.TrimSpace(m[1])
	if !gjson.Valid(payload) {
		return nil
	}

	action := strings.TrimSpace(gjson.Get(payload, "action").String())
	if action == "" {
		return nil
	}

	return &v1.ExtractedCommitment{
		Action:     truncate(action, models.MaxCommitmentActionLength),
		Reflection: truncate(strings.TrimSpace(gjson.Get(payload, "reflection").String()), models.MaxCommitmentDetailLength),
		Rationale:  truncate(strings.TrimSpace(gjson.Get(payload, "rationale").String()), models.MaxCommitmentDetailLength),
	}
}

// StripCommitmentMarker removes the marker block from an assistant response
// before it is persisted, leaving only the prose. Responses without a marker
// pass through untouched.
func StripCommitmentMarker(response string) string {
	if !commitmentMarker.MatchString(response) {
		return response
	}
	return strings.TrimSpace(commitmentMarker.ReplaceAllString(response, ""))
}

// truncate caps s at max runes, matching how request validation counts
// length, and never splits a multibyte rune.
func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max])
}
