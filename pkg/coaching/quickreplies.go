package coaching

import v1 "github.com/balanshq/balans/pkg/apis/coaching/v1"

const maxQuickReplies = 2

var topicQuickReplies = map[string]map[string][]string{
	v1.LanguageEnglish: {
		"stress":        {"What's one thing I could stop doing?", "Help me plan a calmer week"},
		"sleep":         {"Give me an evening wind-down idea", "Why do I wake up at night?"},
		"exercise":      {"Suggest a 10-minute workout", "How do I stay consistent?"},
		"nutrition":     {"Give me a simple meal idea", "How do I snack less?"},
		"work":          {"How do I set a boundary at work?", "Help me prepare for a hard talk"},
		"relationships": {"How do I bring this up with them?", "Help me listen better"},
		"focus":         {"Help me start the task I'm avoiding", "Give me a focus technique"},
		"mood":          {"What could lift my mood today?", "Help me understand this feeling"},
	},
	v1.LanguageSwedish: {
		"stress":        {"Vad är en sak jag kan sluta göra?", "Hjälp mig planera en lugnare vecka"},
		"sleep":         {"Ge mig ett kvällsrutintips", "Varför vaknar jag på natten?"},
		"exercise":      {"Föreslå ett 10-minuterspass", "Hur håller jag i det?"},
		"nutrition":     {"Ge mig en enkel måltidsidé", "Hur småäter jag mindre?"},
		"work":          {"Hur sätter jag en gräns på jobbet?", "Hjälp mig inför ett svårt samtal"},
		"relationships": {"Hur tar jag upp det med dem?", "Hjälp mig lyssna bättre"},
		"focus":         {"Hjälp mig börja med det jag undviker", "Ge mig en fokusteknik"},
		"mood":          {"Vad skulle lyfta mitt humör idag?", "Hjälp mig förstå känslan"},
	},
}

var defaultQuickReplies = map[string][]string{
	v1.LanguageEnglish: {"Tell me more", "What's a small first step?"},
	v1.LanguageSwedish: {"Berätta mer", "Vad är ett litet första steg?"},
}

// QuickReplies suggests up to two follow-up messages for the detected
// topics, topping up from the language defaults. Never returns duplicates.
func QuickReplies(topics []string, language string) []string {
	if language != v1.LanguageSwedish {
		language = v1.LanguageEnglish
	}

	replies := make([]string, 0, maxQuickReplies)
	seen := map[string]bool{}

	add := func(candidates []string) {
		for _, c := range candidates {
			if len(replies) >= maxQuickReplies {
				return
			}
			if !seen[c] {
				seen[c] = true
				replies = append(replies, c)
			}
		}
	}

	for _, topic := range topics {
		if len(replies) >= maxQuickReplies {
			break
		}
		add(topicQuickReplies[language][topic])
	}
	add(defaultQuickReplies[language])

	return replies
}
