package coaching

import (
	"testing"

	"github.com/stretchr/testify/assert"

	v1 "github.com/balanshq/balans/pkg/apis/coaching/v1"
)

func TestClassifySafety(t *testing.T) {
	tests := []struct {
		name     string
		message  string
		expected SafetyLevel
	}{
		{
			name:     "ordinary message",
			message:  "I want to build a better morning routine",
			expected: SafetyLevelNone,
		},
		{
			name:     "soft distress",
			message:  "I'm completely burned out and exhausted lately",
			expected: SafetyLevelSoft,
		},
		{
			name:     "referral territory",
			message:  "Should I talk to a lawyer about my contract?",
			expected: SafetyLevelReferral,
		},
		{
			name:     "crisis",
			message:  "Some days I just want to die",
			expected: SafetyLevelCrisis,
		},
		{
			name:     "crisis keyword is case insensitive",
			message:  "I have been thinking about SUICIDE",
			expected: SafetyLevelCrisis,
		},
		{
			name:     "swedish crisis",
			message:  "Jag vill bara ta mitt liv",
			expected: SafetyLevelCrisis,
		},
		{
			name:     "swedish soft",
			message:  "Jag är helt utbränd",
			expected: SafetyLevelSoft,
		},
		{
			name:     "most severe category wins",
			message:  "I'm exhausted, my lawyer is useless, and I want to die",
			expected: SafetyLevelCrisis,
		},
		{
			name:     "referral beats soft",
			message:  "I'm overwhelmed and need legal advice",
			expected: SafetyLevelReferral,
		},
		{
			name:     "empty message",
			message:  "",
			expected: SafetyLevelNone,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, ClassifySafety(tc.message))
		})
	}
}

func TestCrisisResponse(t *testing.T) {
	en := CrisisResponse(v1.LanguageEnglish)
	assert.Contains(t, en, "112")
	assert.Contains(t, en, "988")

	sv := CrisisResponse(v1.LanguageSwedish)
	assert.Contains(t, sv, "112")
	assert.Contains(t, sv, "90101")

	// Unknown languages fall back to English.
	assert.Equal(t, en, CrisisResponse("de"))
}

func TestSafetyLevelString(t *testing.T) {
	assert.Equal(t, "none", SafetyLevelNone.String())
	assert.Equal(t, "soft", SafetyLevelSoft.String())
	assert.Equal(t, "referral", SafetyLevelReferral.String())
	assert.Equal(t, "crisis", SafetyLevelCrisis.String())
}
