package coaching

import (
	"testing"

	"github.com/stretchr/testify/assert"

	v1 "github.com/balanshq/balans/pkg/apis/coaching/v1"
)

func TestBuildSystemPrompt(t *testing.T) {
	base := BuildSystemPrompt(v1.ContextBuildInput{Language: v1.LanguageEnglish})
	assert.Contains(t, base, "wellbeing coach")
	assert.Contains(t, base, "Respond in English.")
	assert.NotContains(t, base, "name is")

	sv := BuildSystemPrompt(v1.ContextBuildInput{Language: v1.LanguageSwedish})
	assert.Contains(t, sv, "Respond in Swedish.")

	withProfile := BuildSystemPrompt(v1.ContextBuildInput{
		Language: v1.LanguageEnglish,
		Profile: &v1.ProfileSummary{
			DisplayName: "Alex",
			Wellbeing:   &v1.WellbeingSummary{Score: 4, Note: "rough week"},
		},
	})
	assert.Contains(t, withProfile, "Alex")
	assert.Contains(t, withProfile, "4 out of 10")
	assert.Contains(t, withProfile, "rough week")

	soft := BuildSystemPrompt(v1.ContextBuildInput{
		Language:    v1.LanguageEnglish,
		SafetyLevel: int(SafetyLevelSoft),
	})
	assert.Contains(t, soft, "depleted or overwhelmed")

	referral := BuildSystemPrompt(v1.ContextBuildInput{
		Language:    v1.LanguageEnglish,
		SafetyLevel: int(SafetyLevelReferral),
	})
	assert.Contains(t, referral, "professional resource")

	withDue := BuildSystemPrompt(v1.ContextBuildInput{
		Language: v1.LanguageEnglish,
		DueCommitments: []v1.DueCommitment{
			{Action: "Take a walk at lunch", FollowUpCount: 1},
		},
	})
	assert.Contains(t, withDue, "Take a walk at lunch")
	assert.Contains(t, withDue, "checked in 1 time(s) before")
}
