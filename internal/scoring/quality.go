package scoring

import (
	"fmt"
	"strings"

	"github.com/KamnevVladimir/zen-automation-sub000/internal/domain"
)

// Penalty sizes for each violated rule. The thresholds themselves come from
// QualityScorer's config; the deductions are fixed.
const (
	penaltyTooShort     = 0.3
	penaltyTooLong      = 0.2
	penaltyNoSections   = 0.15
	penaltyNoCTA        = 0.3
	penaltyTooManyCTA   = 0.1
	penaltyBannedPhrase = 0.1
	penaltyNoTags       = 0.1
	penaltyTooManyTags  = 0.05
	penaltyFewSentences = 0.1
	penaltyPlaceholder  = 0.4
	minSentenceEnders   = 10
	maxCTAMentions      = 3
)

var placeholderMarkers = []string{"{{", "}}", "TODO", "[...]", "[insert", "XXX"}

// QualityScorer validates generated article bodies against a rule set.
// Every threshold is configuration, not a constant.
type QualityScorer struct {
	MinLength      int
	MaxLength      int
	MinScore       float64
	CTAMarker      string
	BannedPhrases  []string
	SectionMarkers []string
	MaxTags        int
}

// Validate scores body+tags starting from 1.0 and subtracting a fixed penalty
// per violated rule, floored at 0. Passed is true iff the final score is at
// least MinScore.
func (q *QualityScorer) Validate(body string, tags []string) domain.ScoringResult {
	score := 1.0
	var issues []string

	lower := strings.ToLower(body)

	if len(body) < q.MinLength {
		score -= penaltyTooShort
		issues = append(issues, fmt.Sprintf("body length %d below minimum %d", len(body), q.MinLength))
	}
	if len(body) > 2*q.MaxLength {
		score -= penaltyTooLong
		issues = append(issues, fmt.Sprintf("body length %d beyond 2x maximum %d", len(body), q.MaxLength))
	}

	if !containsAny(body, q.SectionMarkers) {
		score -= penaltyNoSections
		issues = append(issues, "no section markers present")
	}

	cta := strings.Count(lower, strings.ToLower(q.CTAMarker))
	switch {
	case cta == 0:
		score -= penaltyNoCTA
		issues = append(issues, fmt.Sprintf("call-to-action marker %q never mentioned", q.CTAMarker))
	case cta > maxCTAMentions:
		score -= penaltyTooManyCTA
		issues = append(issues, fmt.Sprintf("call-to-action mentioned %d times (max %d)", cta, maxCTAMentions))
	}

	for _, phrase := range q.BannedPhrases {
		if phrase != "" && strings.Contains(lower, strings.ToLower(phrase)) {
			score -= penaltyBannedPhrase
			issues = append(issues, fmt.Sprintf("banned phrase %q present", phrase))
		}
	}

	switch {
	case len(tags) == 0:
		score -= penaltyNoTags
		issues = append(issues, "empty tag list")
	case len(tags) > q.MaxTags:
		score -= penaltyTooManyTags
		issues = append(issues, fmt.Sprintf("%d tags exceeds maximum %d", len(tags), q.MaxTags))
	}

	if countSentenceEnders(body) < minSentenceEnders {
		score -= penaltyFewSentences
		issues = append(issues, fmt.Sprintf("fewer than %d sentence-ending marks", minSentenceEnders))
	}

	if containsAny(body, placeholderMarkers) {
		score -= penaltyPlaceholder
		issues = append(issues, "placeholder markers present")
	}

	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}

	return domain.ScoringResult{
		Score:  score,
		Passed: score >= q.MinScore,
		Issues: issues,
	}
}

func containsAny(text string, markers []string) bool {
	for _, m := range markers {
		if m != "" && strings.Contains(text, m) {
			return true
		}
	}
	return false
}

func countSentenceEnders(text string) int {
	count := 0
	for _, r := range text {
		switch r {
		case '.', '!', '?':
			count++
		}
	}
	return count
}
