package coaching

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/balanshq/balans/pkg/db/models"
)

func TestExtractCommitment(t *testing.T) {
	tests := []struct {
		name           string
		response       string
		expectedAction string
		expectedNil    bool
	}{
		{
			name:           "full marker",
			response:       "Try this tonight.\n[commitment]{\"action\": \"No screens after 21:00\", \"reflection\": \"How did falling asleep feel?\", \"rationale\": \"Blue light delays sleep\"}[/commitment]",
			expectedAction: "No screens after 21:00",
		},
		{
			name:           "action only",
			response:       `[commitment]{"action": "Take a 10 minute walk at lunch"}[/commitment]`,
			expectedAction: "Take a 10 minute walk at lunch",
		},
		{
			name:        "no marker",
			response:    "Just some coaching prose.",
			expectedNil: true,
		},
		{
			name:        "malformed json",
			response:    `[commitment]{"action": "broken[/commitment]`,
			expectedNil: true,
		},
		{
			name:        "missing action",
			response:    `[commitment]{"reflection": "How did it go?"}[/commitment]`,
			expectedNil: true,
		},
		{
			name:        "empty action",
			response:    `[commitment]{"action": "   "}[/commitment]`,
			expectedNil: true,
		},
		{
			name:        "unterminated marker",
			response:    `[commitment]{"action": "never closed"}`,
			expectedNil: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ext := ExtractCommitment(tc.response)
			if tc.expectedNil {
				assert.Nil(t, ext)
				return
			}
			require.NotNil(t, ext)
			assert.Equal(t, tc.expectedAction, ext.Action)
		})
	}
}

func TestExtractCommitmentTruncatesLongFields(t *testing.T) {
	action := strings.Repeat("a", models.MaxCommitmentActionLength+50)
	response := `[commitment]{"action": "` + action + `"}[/commitment]`

	ext := ExtractCommitment(response)
	require.NotNil(t, ext)
	assert.Len(t, ext.Action, models.MaxCommitmentActionLength)
}

func TestExtractCommitmentTruncatesMultibyteOnRuneBoundary(t *testing.T) {
	action := strings.Repeat("å", models.MaxCommitmentActionLength+50)
	response := `[commitment]{"action": "` + action + `"}[/commitment]`

	ext := ExtractCommitment(response)
	require.NotNil(t, ext)
	assert.Equal(t, models.MaxCommitmentActionLength, utf8.RuneCountInString(ext.Action))
	assert.True(t, utf8.ValidString(ext.Action))
}

func TestExtractCommitmentMultiline(t *testing.T) {
	response := "Sounds like a plan.\n[commitment]{\n  \"action\": \"Write down three worries before bed\"\n}[/commitment]"

	ext := ExtractCommitment(response)
	require.NotNil(t, ext)
	assert.Equal(t, "Write down three worries before bed", ext.Action)
}

func TestStripCommitmentMarker(t *testing.T) {
	tests := []struct {
		name     string
		response string
		expected string
	}{
		{
			name:     "removes trailing marker and trims",
			response: "Try this tonight.\n[commitment]{\"action\": \"x\"}[/commitment]",
			expected: "Try this tonight.",
		},
		{
			name:     "no marker passes through untouched",
			response: "Hello there!",
			expected: "Hello there!",
		},
		{
			name:     "no marker preserves whitespace",
			response: "Partial ",
			expected: "Partial ",
		},
		{
			name:     "marker in the middle",
			response: "Before [commitment]{\"action\": \"x\"}[/commitment] after",
			expected: "Before  after",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, StripCommitmentMarker(tc.response))
		})
	}
}
