package scoring

import (
	"strings"
	"testing"
)

func testScorer() *QualityScorer {
	return &QualityScorer{
		MinLength:      300,
		MaxLength:      2000,
		MinScore:       0.7,
		CTAMarker:      "subscribe",
		BannedPhrases:  []string{"as an ai"},
		SectionMarkers: []string{"##"},
		MaxTags:        10,
	}
}

// validBody builds a body with section markers, one CTA mention, enough
// sentences and no banned content, padded past the minimum length.
func validBody(minLen int) string {
	var b strings.Builder
	b.WriteString("## Getting there\n")
	for i := 0; i < 12; i++ {
		b.WriteString("This is a concrete and useful sentence about the trip. ")
	}
	b.WriteString("\n## Where to stay\nDo not forget to subscribe for more.\n")
	for b.Len() < minLen {
		b.WriteString("More practical detail follows here with numbers like 25 euros. ")
	}
	return b.String()
}

func TestValidateCleanBodyScoresOne(t *testing.T) {
	t.Parallel()

	q := testScorer()
	res := q.Validate(validBody(q.MinLength), []string{"travel", "budget"})

	if res.Score != 1.0 {
		t.Fatalf("expected score 1.0, got %v (issues: %v)", res.Score, res.Issues)
	}
	if !res.Passed {
		t.Fatalf("expected clean body to pass")
	}
	if len(res.Issues) != 0 {
		t.Fatalf("expected no issues, got %v", res.Issues)
	}
}

func TestValidatePenaltiesAccumulate(t *testing.T) {
	t.Parallel()

	q := testScorer()
	body := validBody(q.MinLength)

	base := q.Validate(body, []string{"travel"}).Score

	// Each added violation must not raise the score.
	noTags := q.Validate(body, nil).Score
	if noTags > base {
		t.Fatalf("removing tags raised score: %v > %v", noTags, base)
	}

	banned := q.Validate(body+" as an AI I cannot", nil).Score
	if banned > noTags {
		t.Fatalf("adding banned phrase raised score: %v > %v", banned, noTags)
	}

	placeholder := q.Validate(body+" {{intro}} as an AI", nil).Score
	if placeholder > banned {
		t.Fatalf("adding placeholder raised score: %v > %v", placeholder, banned)
	}
}

func TestValidateShortBodyFails(t *testing.T) {
	t.Parallel()

	q := testScorer()
	res := q.Validate("Too short. No sections.", nil)

	if res.Passed {
		t.Fatalf("expected short body to fail, score %v", res.Score)
	}
	if len(res.Issues) == 0 {
		t.Fatalf("expected issues for short body")
	}
}

func TestValidateScoreNeverNegative(t *testing.T) {
	t.Parallel()

	q := testScorer()
	res := q.Validate("TODO {{x}}", make([]string, 15))

	if res.Score < 0 || res.Score > 1 {
		t.Fatalf("score out of bounds: %v", res.Score)
	}
}

func TestValidateCTAOveruse(t *testing.T) {
	t.Parallel()

	q := testScorer()
	body := validBody(q.MinLength) + strings.Repeat(" subscribe now!", 5)
	res := q.Validate(body, []string{"travel"})

	found := false
	for _, issue := range res.Issues {
		if strings.Contains(issue, "call-to-action") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected overuse issue, got %v", res.Issues)
	}
}
