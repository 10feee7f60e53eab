package scoring

import (
	"strings"
	"time"
)

// Seasonal phrase buckets by month. Used two ways: the uniqueness engine
// treats a topic matching any bucket as season-themed (cooldown check), and
// the trending optimizer appends the current month's phrase to title variants.
var seasonalPhrases = map[time.Month][]string{
	time.January:   {"winter escape", "new year trip"},
	time.February:  {"winter sun", "valentine getaway"},
	time.March:     {"spring break", "spring travel"},
	time.April:     {"easter trip", "spring city break"},
	time.May:       {"may holidays", "early summer"},
	time.June:      {"summer vacation", "beach season"},
	time.July:      {"summer vacation", "heatwave escape"},
	time.August:    {"late summer", "summer vacation"},
	time.September: {"autumn colors", "shoulder season"},
	time.October:   {"autumn break", "halloween trip"},
	time.November:  {"off season", "winter preview"},
	time.December:  {"christmas markets", "new year trip"},
}

// seasonalPhraseFor picks the lead phrase for the given month.
func seasonalPhraseFor(month time.Month) string {
	phrases := seasonalPhrases[month]
	if len(phrases) == 0 {
		return ""
	}
	return phrases[0]
}

// matchesSeasonalPhrase reports whether the text contains any known seasonal
// phrase.
func matchesSeasonalPhrase(text string) bool {
	return len(seasonalPhraseMatches(text)) > 0
}

// seasonalPhraseMatches returns every seasonal phrase the text contains.
func seasonalPhraseMatches(text string) []string {
	lower := strings.ToLower(text)
	seen := make(map[string]struct{})
	var matched []string
	for _, phrases := range seasonalPhrases {
		for _, phrase := range phrases {
			if _, dup := seen[phrase]; dup {
				continue
			}
			if strings.Contains(lower, phrase) {
				seen[phrase] = struct{}{}
				matched = append(matched, phrase)
			}
		}
	}
	return matched
}

// containsAnyPhrase reports whether the text contains one of the phrases.
func containsAnyPhrase(text string, phrases []string) bool {
	lower := strings.ToLower(text)
	for _, phrase := range phrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}
