package coaching

import (
	"fmt"
	"strings"

	v1 "github.com/balanshq/balans/pkg/apis/coaching/v1"
)

// Base instructions for the coaching model. Kept deliberately short; the
// per-turn context below carries the user-specific material.
const coachingPrompt = `You are a warm, practical wellbeing coach. You help people make small,
sustainable changes to how they work, rest, move, and relate to others. Keep
responses short (2-4 paragraphs), concrete, and grounded in what the user
actually said. Ask at most one question per response.

When, and only when, the user seems ready to act on something specific,
propose exactly one small commitment by appending this marker as the final
line of your response:

[commitment]{"action": "<one concrete action in the user's words>", "reflection": "<optional question to reflect on while doing it>", "rationale": "<optional one-line why>"}[/commitment]

The marker is machine-read and hidden from the user, so never refer to it.`

// BuildSystemPrompt assembles the model-facing system prompt for one turn
// from the closed context struct.
func BuildSystemPrompt(input v1.ContextBuildInput) string {
	var b strings.Builder
	b.WriteString(coachingPrompt)

	if input.Language == v1.LanguageSwedish {
		b.WriteString("\n\nRespond in Swedish.")
	} else {
		b.WriteString("\n\nRespond in English.")
	}

	if input.Profile != nil {
		if input.Profile.DisplayName != "" {
			fmt.Fprintf(&b, "\n\nThe user's name is %s.", input.Profile.DisplayName)
		}
		if wb := input.Profile.Wellbeing; wb != nil {
			fmt.Fprintf(&b, "\nTheir most recent wellbeing check-in scored %d out of 10", wb.Score)
			if wb.Note != "" {
				fmt.Fprintf(&b, " with the note: %q", wb.Note)
			}
			b.WriteString(".")
		}
	}

	switch input.SafetyLevel {
	case int(SafetyLevelSoft):
		b.WriteString("\n\nThe user sounds depleted or overwhelmed. Lead with empathy, lower the ambition of any suggestion, and do not propose a commitment unless they ask for one.")
	case int(SafetyLevelReferral):
		b.WriteString("\n\nThe user's question touches legal, medical, or financial territory. Acknowledge it, make clear you are not a professional in that field, and redirect them to an appropriate professional resource. Do not give specific legal, medical, or financial advice.")
	}

	if len(input.DueCommitments) > 0 {
		b.WriteString("\n\nThe user previously committed to the following, and the follow-up date has passed. Early in your response, check in on how it went, without judgment:")
		for _, due := range input.DueCommitments {
			fmt.Fprintf(&b, "\n- %s", due.Action)
			if due.FollowUpCount > 0 {
				fmt.Fprintf(&b, " (checked in %d time(s) before)", due.FollowUpCount)
			}
		}
	}

	return b.String()
}
