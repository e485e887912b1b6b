package coaching

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectTopics(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected []string
	}{
		{
			name:     "single topic",
			text:     "I can't sleep before big meetings",
			expected: []string{"sleep", "work"},
		},
		{
			name:     "multiple topics in taxonomy order",
			text:     "work deadlines are stressing me out and I skip the gym",
			expected: []string{"stress", "exercise", "work"},
		},
		{
			name:     "swedish keywords",
			text:     "Jag är stressad och vill sova bättre",
			expected: []string{"stress", "sleep"},
		},
		{
			name:     "no topics",
			text:     "hello",
			expected: nil,
		},
		{
			name:     "duplicate keywords produce one label",
			text:     "stress stress pressure anxiety",
			expected: []string{"stress"},
		},
		{
			name:     "keyword at start of text",
			text:     "stressad",
			expected: []string{"stress"},
		},
		{
			name:     "keyword inside a longer word does not match",
			text:     "please follow up with me",
			expected: nil,
		},
		{
			name:     "short keyword embedded mid-word does not match",
			text:     "the month-end crunch",
			expected: nil,
		},
		{
			name:     "stem keyword covers inflections",
			text:     "I keep procrastinating at work",
			expected: []string{"work", "focus"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, DetectTopics(tc.text))
		})
	}
}

func TestMergeTopicSets(t *testing.T) {
	tests := []struct {
		name     string
		existing []string
		incoming []string
		expected []string
	}{
		{
			name:     "appends unseen preserving order",
			existing: []string{"sleep", "work"},
			incoming: []string{"work", "stress"},
			expected: []string{"sleep", "work", "stress"},
		},
		{
			name:     "empty existing",
			existing: nil,
			incoming: []string{"mood"},
			expected: []string{"mood"},
		},
		{
			name:     "empty incoming",
			existing: []string{"mood"},
			incoming: nil,
			expected: []string{"mood"},
		},
		{
			name:     "dedupes existing",
			existing: []string{"mood", "mood"},
			incoming: []string{"mood"},
			expected: []string{"mood"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, MergeTopicSets(tc.existing, tc.incoming))
		})
	}
}
