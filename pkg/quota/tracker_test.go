package quota

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/balanshq/balans/pkg/db/models"
)

func TestSameUTCDay(t *testing.T) {
	tests := []struct {
		name     string
		a, b     time.Time
		expected bool
	}{
		{
			name:     "same instant",
			a:        time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC),
			b:        time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC),
			expected: true,
		},
		{
			name:     "same date different hours",
			a:        time.Date(2026, 3, 14, 0, 0, 1, 0, time.UTC),
			b:        time.Date(2026, 3, 14, 23, 59, 59, 0, time.UTC),
			expected: true,
		},
		{
			name:     "adjacent days across midnight",
			a:        time.Date(2026, 3, 14, 23, 59, 59, 0, time.UTC),
			b:        time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
			expected: false,
		},
		{
			name:     "same date in different zones",
			a:        time.Date(2026, 3, 14, 23, 0, 0, 0, time.FixedZone("CET", 3600)),
			b:        time.Date(2026, 3, 14, 22, 30, 0, 0, time.UTC),
			expected: true,
		},
		{
			name:     "zone offset crosses the UTC boundary",
			a:        time.Date(2026, 3, 15, 0, 30, 0, 0, time.FixedZone("CET", 3600)),
			b:        time.Date(2026, 3, 15, 0, 30, 0, 0, time.UTC),
			expected: false,
		},
		{
			name:     "same day number different month",
			a:        time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC),
			b:        time.Date(2026, 4, 14, 12, 0, 0, 0, time.UTC),
			expected: false,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, SameUTCDay(tc.a, tc.b))
		})
	}
}

func TestEffectiveCount(t *testing.T) {
	now := time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC)

	today := &models.QuotaCounter{Count: 7, LastResetAt: now.Add(-2 * time.Hour)}
	assert.Equal(t, 7, EffectiveCount(today, now))

	yesterday := &models.QuotaCounter{Count: 15, LastResetAt: now.AddDate(0, 0, -1)}
	assert.Equal(t, 0, EffectiveCount(yesterday, now))

	// A counter that maxed out just before midnight is fresh again after it.
	lateNight := &models.QuotaCounter{
		Count:       15,
		LastResetAt: time.Date(2026, 3, 14, 23, 59, 0, 0, time.UTC),
	}
	assert.Equal(t, 0, EffectiveCount(lateNight, now))
}
