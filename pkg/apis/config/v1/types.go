// Package v1 defines the Balans configuration file format.
package v1

// BalansConfig is the top level configuration for Balans. All fields have
// compiled-in defaults; a YAML config file overrides them selectively.
type BalansConfig struct {
	Coaching CoachingConfig `yaml:"coaching"`

	// Starters maps a language code to the static conversation starter
	// suggestions offered before a first message.
	Starters map[string][]string `yaml:"starters"`

	// LowWellbeingStarters are shown first when the user's most recent
	// wellbeing snapshot is low.
	LowWellbeingStarters map[string][]string `yaml:"lowWellbeingStarters"`
}

// CoachingConfig holds the tunables of the coaching turn loop.
type CoachingConfig struct {
	// DailyExchangeLimit is the number of coaching exchanges a user may
	// consume per UTC day.
	DailyExchangeLimit int `yaml:"dailyExchangeLimit"`

	// FollowUpDays is how far in the future a new commitment's follow-up
	// date is set.
	FollowUpDays int `yaml:"followUpDays"`

	// FollowUpDeferDays is how far a resurfaced commitment's follow-up
	// date is pushed so it does not immediately re-trigger.
	FollowUpDeferDays int `yaml:"followUpDeferDays"`

	// ExpireAfterDays is the age at which the maintenance sweep moves
	// still-active commitments to expired.
	ExpireAfterDays int `yaml:"expireAfterDays"`
}

// Default returns the compiled-in configuration.
func Default() *BalansConfig {
	return &BalansConfig{
		Coaching: CoachingConfig{
			DailyExchangeLimit: 15,
			FollowUpDays:       14,
			FollowUpDeferDays:  7,
			ExpireAfterDays:    60,
		},
		Starters: map[string][]string{
			"en": {
				"I keep putting things off and I don't know why.",
				"How do I wind down after a stressful day?",
				"I want to build a better morning routine.",
				"Help me figure out what's draining my energy.",
			},
			"sv": {
				"Jag skjuter upp saker hela tiden och vet inte varför.",
				"Hur varvar jag ner efter en stressig dag?",
				"Jag vill bygga en bättre morgonrutin.",
				"Hjälp mig förstå vad som dränerar min energi.",
			},
		},
		LowWellbeingStarters: map[string][]string{
			"en": {
				"I've been feeling low lately and want to talk about it.",
				"What's one small thing I could do for myself today?",
			},
			"sv": {
				"Jag har mått dåligt på sistone och vill prata om det.",
				"Vad är en liten sak jag kan göra för mig själv idag?",
			},
		},
	}
}

// Normalize fills any zero-valued field from the defaults so a sparse config
// file keeps sane values.
func (c *BalansConfig) Normalize() {
	d := Default()
	if c.Coaching.DailyExchangeLimit <= 0 {
		c.Coaching.DailyExchangeLimit = d.Coaching.DailyExchangeLimit
	}
	if c.Coaching.FollowUpDays <= 0 {
		c.Coaching.FollowUpDays = d.Coaching.FollowUpDays
	}
	if c.Coaching.FollowUpDeferDays <= 0 {
		c.Coaching.FollowUpDeferDays = d.Coaching.FollowUpDeferDays
	}
	if c.Coaching.ExpireAfterDays <= 0 {
		c.Coaching.ExpireAfterDays = d.Coaching.ExpireAfterDays
	}
	if len(c.Starters) == 0 {
		c.Starters = d.Starters
	}
	if len(c.LowWellbeingStarters) == 0 {
		c.LowWellbeingStarters = d.LowWellbeingStarters
	}
}
