package scoring

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/KamnevVladimir/zen-automation-sub000/internal/domain"
	"github.com/KamnevVladimir/zen-automation-sub000/internal/ports"
)

const (
	trendingWindow   = 7 * 24 * time.Hour
	trendingWordMin  = 3
	maxOptimizedTags = 7

	titleLenMin = 50
	titleLenMax = 100

	trendWeightTitle = 0.4
	trendWeightTags  = 0.3
	trendWeightViral = 0.2
	trendWeightYear  = 0.1
)

// Destinations recognized by substring match when mining title trends.
var destinationGazetteer = []string{
	"paris", "rome", "lisbon", "barcelona", "istanbul", "prague", "budapest",
	"bali", "bangkok", "tokyo", "dubai", "tbilisi", "yerevan", "baku",
	"georgia", "turkey", "thailand", "vietnam", "morocco", "egypt",
}

var emotionalBoosters = []string{"Honestly", "Finally", "Surprisingly"}

var emotionalKeywords = []string{
	"secret", "hidden", "honest", "surprising", "mistake", "never", "best",
	"beach", "flight", "trip", "travel", "guide",
}

// OptimizationReport explains what the optimizer changed and how the result
// trends. The score is advisory only.
type OptimizationReport struct {
	Title           string
	Tags            []string
	TrendingWords   []string
	TrendingTags    []string
	TopDestinations []string
	TitleScore      float64
	TrendingScore   float64
}

// TrendingOptimizer rewrites a draft's title and tags using frequency
// statistics mined from recently published posts.
type TrendingOptimizer struct {
	Clock ports.Clock
}

// Optimize mines the trailing week of history, generates title variants,
// keeps the best-scoring one and extends the tag list with trending, seasonal
// and category tags (capped at 7). The input post is not mutated.
func (t *TrendingOptimizer) Optimize(post *domain.Post, category domain.PostCategory, history []domain.Post) OptimizationReport {
	now := t.now()
	windowStart := now.Add(-trendingWindow)

	tagFreq := map[string]int{}
	wordFreq := map[string]int{}
	destFreq := map[string]int{}

	for _, past := range history {
		ref := past.CreatedAt
		if past.PublishedAt != nil {
			ref = *past.PublishedAt
		}
		if ref.Before(windowStart) || past.Status != domain.StatusPublished {
			continue
		}
		for _, tag := range past.Tags {
			tagFreq[strings.ToLower(tag)]++
		}
		lowerTitle := strings.ToLower(past.Title)
		for _, w := range tokenize(past.Title) {
			if len(w) > trendingWordMin {
				wordFreq[w]++
			}
		}
		for _, dest := range destinationGazetteer {
			if strings.Contains(lowerTitle, dest) {
				destFreq[dest]++
			}
		}
	}

	trendingWords := topKeys(wordFreq, 3)
	trendingTags := topKeys(tagFreq, 3)
	seasonal := seasonalPhraseFor(now.Month())

	variants := t.titleVariants(post.Title, trendingWords, trendingTags, seasonal)
	bestTitle, bestScore := post.Title, t.scoreTitle(post.Title)
	for _, v := range variants {
		if s := t.scoreTitle(v); s > bestScore {
			bestTitle, bestScore = v, s
		}
	}

	tags := extendTags(post.Tags, trendingTags, seasonal, category)

	return OptimizationReport{
		Title:           bestTitle,
		Tags:            tags,
		TrendingWords:   trendingWords,
		TrendingTags:    trendingTags,
		TopDestinations: topKeys(destFreq, 3),
		TitleScore:      bestScore,
		TrendingScore:   t.trendingScore(bestTitle, bestScore, tags, trendingTags, category, now),
	}
}

func (t *TrendingOptimizer) titleVariants(title string, words, tags []string, seasonal string) []string {
	var variants []string
	for _, w := range words {
		variants = append(variants,
			fmt.Sprintf("%s: %s", capitalize(w), title),
			fmt.Sprintf("%s — %s", title, w))
	}
	for _, tag := range tags {
		variants = append(variants, fmt.Sprintf("%s #%s", title, tag))
	}
	if seasonal != "" {
		variants = append(variants, fmt.Sprintf("%s (%s)", title, seasonal))
	}
	for _, booster := range emotionalBoosters {
		variants = append(variants, fmt.Sprintf("%s: %s", booster, title))
	}
	return variants
}

// scoreTitle applies the rubric: length inside the 50..100 window, a digit
// present, emotional/travel keywords present.
func (t *TrendingOptimizer) scoreTitle(title string) float64 {
	score := 0.0
	if n := len(title); n >= titleLenMin && n <= titleLenMax {
		score += 0.4
	}
	if strings.ContainsAny(title, "0123456789") {
		score += 0.3
	}
	lower := strings.ToLower(title)
	for _, kw := range emotionalKeywords {
		if strings.Contains(lower, kw) {
			score += 0.3
			break
		}
	}
	return score
}

func (t *TrendingOptimizer) trendingScore(title string, titleScore float64, tags, trendingTags []string, category domain.PostCategory, now time.Time) float64 {
	overlap := 0.0
	if len(trendingTags) > 0 {
		hits := 0
		for _, tt := range trendingTags {
			for _, tag := range tags {
				if strings.EqualFold(tag, tt) {
					hits++
					break
				}
			}
		}
		overlap = float64(hits) / float64(len(trendingTags))
	}

	viral := 0.0
	lower := strings.ToLower(title)
	for _, phrase := range category.Profile().ViralPhrases {
		if strings.Contains(lower, phrase) {
			viral = 1
			break
		}
	}

	year := 0.0
	if strings.Contains(title, strconv.Itoa(now.Year())) {
		year = 1
	}

	score := trendWeightTitle*titleScore + trendWeightTags*overlap + trendWeightViral*viral + trendWeightYear*year
	if score > 1 {
		score = 1
	}
	return score
}

// extendTags appends trending, seasonal and category tags to the existing
// list, deduplicated case-insensitively, truncated to 7.
func extendTags(existing, trending []string, seasonal string, category domain.PostCategory) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, maxOptimizedTags)

	add := func(tag string) {
		tag = strings.TrimSpace(tag)
		if tag == "" || len(out) >= maxOptimizedTags {
			return
		}
		key := strings.ToLower(tag)
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		out = append(out, tag)
	}

	for _, tag := range existing {
		add(tag)
	}
	for _, tag := range trending {
		add(tag)
	}
	if seasonal != "" {
		add(strings.ReplaceAll(seasonal, " ", ""))
	}
	for _, tag := range category.Profile().TagSeeds {
		add(tag)
	}
	return out
}

// topKeys returns up to n keys ordered by descending frequency; ties break
// alphabetically so the result is stable.
func topKeys(freq map[string]int, n int) []string {
	keys := make([]string, 0, len(freq))
	for k := range freq {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if freq[keys[i]] != freq[keys[j]] {
			return freq[keys[i]] > freq[keys[j]]
		}
		return keys[i] < keys[j]
	})
	if len(keys) > n {
		keys = keys[:n]
	}
	return keys
}

func capitalize(w string) string {
	if w == "" {
		return w
	}
	return strings.ToUpper(w[:1]) + w[1:]
}

func (t *TrendingOptimizer) now() time.Time {
	if t.Clock != nil {
		return t.Clock.Now()
	}
	return time.Now()
}
