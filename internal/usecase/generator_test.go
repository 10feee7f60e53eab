package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KamnevVladimir/zen-automation-sub000/internal/config"
	"github.com/KamnevVladimir/zen-automation-sub000/internal/domain"
	"github.com/KamnevVladimir/zen-automation-sub000/internal/scoring"
)

func generateConfig() config.GenerateConfig {
	return config.GenerateConfig{
		MaxTopicAttempts:    5,
		MaxImages:           3,
		UniquenessThreshold: 0.7,
		PromptTokenRate:     0.0025,
		CompletionTokenRate: 0.01,
		ImageRate:           0.04,
	}
}

func qualityScorer(minLen int) *scoring.QualityScorer {
	return &scoring.QualityScorer{
		MinLength:      minLen,
		MaxLength:      minLen * 2,
		MinScore:       0.7,
		CTAMarker:      "subscribe",
		SectionMarkers: []string{"##"},
		MaxTags:        10,
	}
}

// validPayload builds a generator response whose body passes the quality
// scorer at the given minimum length.
func validPayload(t *testing.T, bodyLen int) string {
	t.Helper()

	var b strings.Builder
	b.WriteString("## Why go\n\n")
	// Keep the lead paragraph short: it becomes the caption base.
	b.WriteString("Real prices, real routes, packed into one weekend plan.\n\n")
	for b.Len() < bodyLen {
		b.WriteString("A concrete sentence with a price of 25 euros and a tip. ")
	}
	b.WriteString("\n\n## Before you book\n\nDo not forget to subscribe.")

	raw, err := json.Marshal(map[string]any{
		"title":             "Budget weekends that actually work",
		"subtitle":          "Numbers included",
		"body":              b.String(),
		"tags":              []string{"a", "b", "c"},
		"meta_description":  "short meta",
		"image_prompts":     []string{"p1", "p2", "p3"},
		"read_time_minutes": 4,
	})
	require.NoError(t, err)
	return string(raw)
}

func newTestGenerator(textGen *stubTextGen, imageGen *stubImageGen, history *memHistory, minLen int) *Generator {
	return NewGenerator(GeneratorDeps{
		TextGen:    textGen,
		ImageGen:   imageGen,
		History:    history,
		Uniqueness: &scoring.UniquenessEngine{Threshold: 0.7, Clock: fixedClock{t: testNow}},
		Quality:    qualityScorer(minLen),
		Clock:      fixedClock{t: testNow},
		Rand:       rand.New(rand.NewSource(1)),
		Config:     generateConfig(),
	})
}

func TestGenerateHappyPath(t *testing.T) {
	t.Parallel()

	textGen := &stubTextGen{responses: []string{validPayload(t, 3500)}}
	imageGen := &stubImageGen{urls: []string{"https://img/0", "https://img/1", "https://img/2"}}
	history := &memHistory{}

	gen := newTestGenerator(textGen, imageGen, history, 3000)
	post, images, err := gen.Generate(context.Background(), domain.GenerationRequest{
		Topic:    "shoulder season city breaks",
		Category: domain.CategoryBudget,
	})

	require.NoError(t, err)
	assert.Equal(t, domain.StatusDraft, post.Status)
	assert.NotZero(t, post.ID)
	assert.Equal(t, []string{"a", "b", "c"}, post.Tags)
	assert.Len(t, images, 3)
	assert.Equal(t, 0, images[0].Position)

	require.Len(t, history.logs, 1)
	assert.Equal(t, domain.LogStatusSuccess, history.logs[0].Status)
	assert.Greater(t, history.logs[0].CostUSD, 0.0)
	assert.Equal(t, testNow, history.logs[0].CreatedAt, "log rows must carry a real timestamp")
}

func TestGenerateParseFailureIsFatal(t *testing.T) {
	t.Parallel()

	textGen := &stubTextGen{responses: []string{"not json at all"}}
	history := &memHistory{}

	gen := newTestGenerator(textGen, &stubImageGen{}, history, 100)
	_, _, err := gen.Generate(context.Background(), domain.GenerationRequest{
		Topic: "anything", Category: domain.CategoryLifehack,
	})

	require.ErrorIs(t, err, domain.ErrParseFailure)
	assert.Empty(t, history.posts, "nothing may be persisted on parse failure")
	assert.Empty(t, history.logs)
}

func TestGenerateMissingTitleIsFatal(t *testing.T) {
	t.Parallel()

	textGen := &stubTextGen{responses: []string{`{"body":"some body","tags":["a"]}`}}
	history := &memHistory{}

	gen := newTestGenerator(textGen, &stubImageGen{}, history, 5)
	_, _, err := gen.Generate(context.Background(), domain.GenerationRequest{
		Topic: "anything", Category: domain.CategoryLifehack,
	})

	require.ErrorIs(t, err, domain.ErrParseFailure)
}

func TestGenerateQualityRejectedNotPersisted(t *testing.T) {
	t.Parallel()

	textGen := &stubTextGen{responses: []string{`{"title":"t","body":"way too short","tags":[]}`}}
	history := &memHistory{}

	gen := newTestGenerator(textGen, &stubImageGen{}, history, 3000)
	_, _, err := gen.Generate(context.Background(), domain.GenerationRequest{
		Topic: "anything", Category: domain.CategoryBudget,
	})

	require.ErrorIs(t, err, domain.ErrQualityRejected)
	assert.Empty(t, history.posts)
	assert.Empty(t, history.images)
}

func TestGenerateToleratesImageFailures(t *testing.T) {
	t.Parallel()

	textGen := &stubTextGen{responses: []string{validPayload(t, 3500)}}
	imageGen := &stubImageGen{
		urls:  []string{"https://img/0", "", "https://img/2"},
		errAt: map[int]error{1: errors.New("rate limited")},
	}
	history := &memHistory{}

	gen := newTestGenerator(textGen, imageGen, history, 3000)
	post, images, err := gen.Generate(context.Background(), domain.GenerationRequest{
		Topic: "topic", Category: domain.CategoryBudget,
	})

	require.NoError(t, err)
	assert.Len(t, images, 2, "partial image failure must not abort the run")
	// Ordinals stay dense even when a prompt fails.
	assert.Equal(t, 0, images[0].Position)
	assert.Equal(t, 1, images[1].Position)
	assert.Equal(t, domain.StatusDraft, post.Status)
}

func TestSearchTopicAvoidsRecentDuplicates(t *testing.T) {
	t.Parallel()

	history := &memHistory{}
	// Pre-publish every pool topic except one so the search must find the
	// remaining unique candidate.
	for _, topic := range topicPool[domain.CategoryWeekend][1:] {
		_ = history.SavePost(context.Background(), &domain.Post{
			Title:     topic,
			Category:  domain.CategoryWeekend,
			Status:    domain.StatusPublished,
			CreatedAt: testNow.Add(-24 * 60 * 60 * 1e9),
		})
	}

	gen := newTestGenerator(&stubTextGen{}, &stubImageGen{}, history, 100)
	topic := gen.searchTopic(context.Background(), domain.CategoryWeekend)

	assert.NotEmpty(t, topic)
}

func TestSearchTopicExhaustionReturnsBestEffort(t *testing.T) {
	t.Parallel()

	history := &memHistory{}
	for _, topic := range topicPool[domain.CategoryMistake] {
		_ = history.SavePost(context.Background(), &domain.Post{
			Title:     topic,
			Category:  domain.CategoryMistake,
			Status:    domain.StatusPublished,
			CreatedAt: testNow.Add(-2 * 24 * 60 * 60 * 1e9),
		})
	}

	gen := newTestGenerator(&stubTextGen{}, &stubImageGen{}, history, 100)
	topic := gen.searchTopic(context.Background(), domain.CategoryMistake)

	assert.NotEmpty(t, topic, "exhausted search still returns a best-effort topic")
}
