package scoring

import (
	"strings"
	"time"
	"unicode"

	"github.com/KamnevVladimir/zen-automation-sub000/internal/domain"
	"github.com/KamnevVladimir/zen-automation-sub000/internal/ports"
)

const (
	uniquenessWindow  = 30 * 24 * time.Hour
	seasonalWindow    = 2 * 30 * 24 * time.Hour
	minHistoryWords   = 50
	topicOverlapFloor = 0.5
	topicMatchCap     = 3
	seasonalPenalty   = 0.8

	weightTitle    = 0.3
	weightContent  = 0.4
	weightTopic    = 0.2
	weightSeasonal = 0.1

	warnTitle    = 0.6
	warnContent  = 0.5
	warnTopic    = 0.5
	warnSeasonal = 0.5
)

// UniquenessEngine measures how close a candidate article is to recent
// history. Higher scores mean more unique.
type UniquenessEngine struct {
	Threshold float64
	Clock     ports.Clock
}

// Score compares the candidate against history and returns a composite
// uniqueness verdict. History entries older than the trailing window are
// ignored; seasonal checks look back two months.
func (u *UniquenessEngine) Score(title, body string, category domain.PostCategory, topic string, history []domain.Post) domain.ScoringResult {
	now := u.now()
	windowStart := now.Add(-uniquenessWindow)
	seasonalStart := now.Add(-seasonalWindow)

	titleWords := wordSet(title)
	bodyWords := wordSet(body)
	topicWords := wordSet(topic)

	var (
		titleSim   float64
		contentSim float64
		topicHits  int
		seasonal   float64
	)

	// The cooldown only applies to posts on the same seasonal theme; a past
	// winter article must not restrict a summer topic.
	topicSeasonal := seasonalPhraseMatches(topic)

	for _, past := range history {
		ref := past.CreatedAt
		if past.PublishedAt != nil {
			ref = *past.PublishedAt
		}
		if ref.Before(seasonalStart) {
			continue
		}

		pastTitle := wordSet(past.Title)

		if len(topicSeasonal) > 0 && containsAnyPhrase(past.Title, topicSeasonal) {
			seasonal = seasonalPenalty
		}

		if ref.Before(windowStart) {
			continue
		}

		if s := jaccard(titleWords, pastTitle); s > titleSim {
			titleSim = s
		}

		// Bodies under 50 words are too short to compare meaningfully.
		if wordCount(past.Body) >= minHistoryWords {
			if s := jaccard(bodyWords, wordSet(past.Body)); s > contentSim {
				contentSim = s
			}
		}

		if past.Category == category && overlapFraction(topicWords, pastTitle) > topicOverlapFloor {
			topicHits++
		}
	}

	topicDup := float64(topicHits) / topicMatchCap
	if topicDup > 1 {
		topicDup = 1
	}

	score := weightTitle*(1-titleSim) +
		weightContent*(1-contentSim) +
		weightTopic*(1-topicDup) +
		weightSeasonal*(1-seasonal)
	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}

	return domain.ScoringResult{
		Score:               score,
		Passed:              score >= u.Threshold,
		Recommendations:     recommendations(titleSim, contentSim, topicDup, seasonal),
		TitleSimilarity:     titleSim,
		ContentSimilarity:   contentSim,
		TopicDuplication:    topicDup,
		SeasonalRestriction: seasonal,
	}
}

// ScoreTitle runs the title-only check topic search uses (empty body).
func (u *UniquenessEngine) ScoreTitle(topic string, category domain.PostCategory, history []domain.Post) domain.ScoringResult {
	return u.Score(topic, "", category, topic, history)
}

func (u *UniquenessEngine) now() time.Time {
	if u.Clock != nil {
		return u.Clock.Now()
	}
	return time.Now()
}

func recommendations(titleSim, contentSim, topicDup, seasonal float64) []string {
	var recs []string
	if titleSim > warnTitle {
		recs = append(recs, "title closely repeats a recent title, rephrase it")
	}
	if contentSim > warnContent {
		recs = append(recs, "body overlaps heavily with a recent article, change the angle")
	}
	if topicDup > warnTopic {
		recs = append(recs, "topic was covered several times recently, pick another")
	}
	if seasonal > warnSeasonal {
		recs = append(recs, "a seasonal article on this theme ran within the last two months")
	}
	if len(recs) == 0 {
		recs = append(recs, "content is unique, ready to publish")
	}
	return recs
}

// jaccard returns |a∩b| / |a∪b| over two word sets; 1.0 for two empty sets.
func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1
	}
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	inter := 0
	for w := range a {
		if _, ok := b[w]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	return float64(inter) / float64(union)
}

// overlapFraction reports how much of set a is present in set b.
func overlapFraction(a, b map[string]struct{}) float64 {
	if len(a) == 0 {
		return 0
	}
	hits := 0
	for w := range a {
		if _, ok := b[w]; ok {
			hits++
		}
	}
	return float64(hits) / float64(len(a))
}

// wordSet tokenizes text into a case-folded set, splitting on anything that
// is not a letter or digit.
func wordSet(text string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range tokenize(text) {
		set[w] = struct{}{}
	}
	return set
}

func wordCount(text string) int {
	return len(tokenize(text))
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
