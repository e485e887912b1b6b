package coaching

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// topicTaxonomy is the fixed topic taxonomy, in detection order. Keyword
// matching is intentionally simple; tagging is best-effort flavor for the
// conversation record, never a hard dependency of the turn.
var topicTaxonomy = []struct {
	label    string
	keywords []string
}{
	{"stress", []string{"stress", "pressure", "deadline", "anxious", "anxiety", "stressad", "press", "ångest"}},
	{"sleep", []string{"sleep", "insomnia", "tired", "awake at night", "sömn", "sova", "trött"}},
	{"exercise", []string{"exercise", "workout", "training", "gym", "run", "träna", "träning", "springa"}},
	{"nutrition", []string{"eat", "eating", "diet", "food", "meal", "äta", "kost", "mat"}},
	{"work", []string{"work", "job", "boss", "colleague", "career", "meeting", "jobb", "chef", "kollega", "karriär"}},
	{"relationships", []string{"partner", "family", "friend", "relationship", "lonely", "familj", "vän", "relation", "ensam"}},
	{"focus", []string{"focus", "procrastinat", "distract", "concentrate", "fokus", "skjuter upp", "koncentrera"}},
	{"mood", []string{"mood", "sad", "down", "low", "irritable", "humör", "ledsen", "nere", "irriterad"}},
}

// DetectTopics tags text with the taxonomy labels it touches, in taxonomy
// order, without duplicates.
func DetectTopics(text string) []string {
	lowered := strings.ToLower(text)

	var topics []string
	for _, entry := range topicTaxonomy {
		for _, kw := range entry.keywords {
			if containsKeyword(lowered, kw) {
				topics = append(topics, entry.label)
				break
			}
		}
	}
	return topics
}

// containsKeyword reports whether kw occurs in text starting at a word
// boundary. Keywords match as prefixes of the word they begin, so a stem
// like "procrastinat" still covers its inflections, while short keywords do
// not fire inside unrelated words ("sad" in "stressad", "low" in "follow").
func containsKeyword(text, kw string) bool {
	for offset := 0; ; offset++ {
		i := strings.Index(text[offset:], kw)
		if i < 0 {
			return false
		}
		offset += i
		if offset == 0 {
			return true
		}
		if r, _ := utf8.DecodeLastRuneInString(text[:offset]); !unicode.IsLetter(r) {
			return true
		}
	}
}

// MergeTopicSets unions newTopics into existing, preserving existing order
// and appending unseen labels in detection order.
func MergeTopicSets(existing, newTopics []string) []string {
	seen := make(map[string]bool, len(existing))
	merged := make([]string, 0, len(existing)+len(newTopics))
	for _, t := range existing {
		if !seen[t] {
			seen[t] = true
			merged = append(merged, t)
		}
	}
	for _, t := range newTopics {
		if !seen[t] {
			seen[t] = true
			merged = append(merged, t)
		}
	}
	return merged
}
