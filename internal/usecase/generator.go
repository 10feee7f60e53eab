package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"
	"time"

	"github.com/KamnevVladimir/zen-automation-sub000/internal/config"
	"github.com/KamnevVladimir/zen-automation-sub000/internal/domain"
	"github.com/KamnevVladimir/zen-automation-sub000/internal/ports"
	"github.com/KamnevVladimir/zen-automation-sub000/internal/scoring"
)

const topicSearchWindow = 30 * 24 * time.Hour

// Per-category topic pools the search draws from when a request carries no
// explicit topic.
var topicPool = map[domain.PostCategory][]string{
	domain.CategoryLifehack: {
		"packing a carry-on for two weeks",
		"airport layovers that feel like day trips",
		"getting local SIM cards without roaming fees",
		"finding apartments instead of hotels",
		"eating well at train stations",
	},
	domain.CategoryBudget: {
		"cheap flights with error fares",
		"shoulder season city breaks under 300 euros",
		"eating out for less in tourist capitals",
		"free museum days across Europe",
		"overnight trains instead of hotels",
	},
	domain.CategoryComparison: {
		"Lisbon vs Porto for a first trip",
		"Bali vs Thailand for a month of remote work",
		"trains vs budget airlines inside Europe",
		"Airbnb vs aparthotels for families",
		"Istanbul vs Athens for a long weekend",
	},
	domain.CategoryWeekend: {
		"48 hours in Prague",
		"a weekend in Tbilisi",
		"two days in Budapest thermal baths",
		"Riga as an underrated weekend trip",
		"weekend hiking near big cities",
	},
	domain.CategoryMistake: {
		"booking the cheapest flight blindly",
		"overpacking for warm destinations",
		"skipping travel insurance",
		"exchanging money at the airport",
		"planning every hour of a trip",
	},
	domain.CategoryDestination: {
		"the Azores beyond Sao Miguel",
		"northern Morocco by bus",
		"Georgia's wine country",
		"slow travel through Vietnam",
		"Andalusia without a car",
	},
}

// draftPayload is the strict shape expected from the text generator.
// Missing title or body is a parse failure, never defaulted.
type draftPayload struct {
	Title           string   `json:"title"`
	Subtitle        string   `json:"subtitle"`
	Body            string   `json:"body"`
	Tags            []string `json:"tags"`
	MetaDescription string   `json:"meta_description"`
	ImagePrompts    []string `json:"image_prompts"`
	ReadTimeMinutes int      `json:"read_time_minutes"`
}

// GeneratorDeps wires all collaborators into the orchestrator.
type GeneratorDeps struct {
	TextGen    ports.TextGenerator
	ImageGen   ports.ImageGenerator
	History    ports.HistoryStore
	Uniqueness *scoring.UniquenessEngine
	Quality    *scoring.QualityScorer
	Clock      ports.Clock
	Rand       *rand.Rand
	Logger     *slog.Logger
	Config     config.GenerateConfig
}

// Generator sequences topic selection, text generation, quality gating,
// image generation and persistence into one pipeline run.
type Generator struct {
	textGen    ports.TextGenerator
	imageGen   ports.ImageGenerator
	history    ports.HistoryStore
	uniqueness *scoring.UniquenessEngine
	quality    *scoring.QualityScorer
	clock      ports.Clock
	rand       *rand.Rand
	logger     *slog.Logger
	cfg        config.GenerateConfig
}

// NewGenerator constructs the orchestration component.
func NewGenerator(deps GeneratorDeps) *Generator {
	if deps.Clock == nil {
		deps.Clock = ports.SystemClock{}
	}
	if deps.Rand == nil {
		deps.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &Generator{
		textGen:    deps.TextGen,
		imageGen:   deps.ImageGen,
		history:    deps.History,
		uniqueness: deps.Uniqueness,
		quality:    deps.Quality,
		clock:      deps.Clock,
		rand:       deps.Rand,
		logger:     deps.Logger,
		cfg:        deps.Config,
	}
}

// Generate runs one full pipeline pass and returns the persisted draft Post
// with its images. Nothing is persisted on failure.
func (g *Generator) Generate(ctx context.Context, req domain.GenerationRequest) (*domain.Post, []domain.GeneratedImage, error) {
	started := g.clock.Now()

	topic := req.Topic
	if topic == "" {
		topic = g.searchTopic(ctx, req.Category)
	}
	g.logger.Info("topic resolved", "topic", topic, "category", req.Category)

	draft, tokens, err := g.generateText(ctx, topic, req.Category)
	if err != nil {
		return nil, nil, err
	}

	verdict := g.quality.Validate(draft.Body, draft.Tags)
	if !verdict.Passed {
		g.logger.Warn("quality rejected",
			"score", verdict.Score, "min", g.quality.MinScore, "issues", verdict.Issues)
		return nil, nil, fmt.Errorf("score %.2f: %w", verdict.Score, domain.ErrQualityRejected)
	}

	// Duplicate content is flagged, not fatal: the topic search already
	// filtered hard duplicates, so a low score here only warrants review.
	if history, histErr := g.history.RecentPosts(ctx, started.Add(-topicSearchWindow)); histErr == nil {
		res := g.uniqueness.Score(draft.Title, draft.Body, req.Category, topic, history)
		if !res.Passed {
			g.logger.Warn("draft similar to recent history",
				"score", res.Score, "recommendations", res.Recommendations)
		}
	}

	images := g.generateImages(ctx, draft.ImagePrompts)

	post := &domain.Post{
		Title:           draft.Title,
		Subtitle:        draft.Subtitle,
		Body:            draft.Body,
		ShortForm:       shortFormOf(draft),
		LongForm:        draft.Body,
		Tags:            clampTags(draft.Tags),
		MetaDescription: draft.MetaDescription,
		Category:        req.Category,
		Status:          domain.StatusDraft,
		ReadTimeMinutes: draft.ReadTimeMinutes,
		CreatedAt:       started,
		UpdatedAt:       started,
	}

	if err := g.history.SavePost(ctx, post); err != nil {
		return nil, nil, fmt.Errorf("persist post: %w", err)
	}
	for i := range images {
		images[i].PostID = post.ID
		if err := g.history.SaveImage(ctx, &images[i]); err != nil {
			return nil, nil, fmt.Errorf("persist image %d: %w", i, err)
		}
	}

	finished := g.clock.Now()
	entry := &domain.GenerationLogEntry{
		PostID:    post.ID,
		Step:      "generate",
		Status:    domain.LogStatusSuccess,
		Duration:  finished.Sub(started),
		CostUSD:   g.estimateCost(tokens, len(images)),
		CreatedAt: finished,
	}
	if err := g.history.AppendLog(ctx, entry); err != nil {
		return nil, nil, fmt.Errorf("append log: %w", err)
	}

	g.logger.Info("draft created",
		"post_id", post.ID, "images", len(images), "cost_usd", entry.CostUSD)
	return post, images, nil
}

// searchTopic draws candidates from the category pool until one clears the
// uniqueness threshold against the last 30 days of titles. On exhaustion it
// proceeds with the best candidate seen; it never blocks.
func (g *Generator) searchTopic(ctx context.Context, category domain.PostCategory) string {
	pool := topicPool[category]
	if len(pool) == 0 {
		pool = topicPool[domain.CategoryDestination]
	}

	history, err := g.history.RecentPosts(ctx, g.clock.Now().Add(-topicSearchWindow))
	if err != nil {
		g.logger.Warn("topic history unavailable, picking blind", "error", err)
		return pool[g.rand.Intn(len(pool))]
	}

	best := pool[g.rand.Intn(len(pool))]
	bestScore := -1.0
	for attempt := 0; attempt < g.cfg.MaxTopicAttempts; attempt++ {
		candidate := pool[g.rand.Intn(len(pool))]
		res := g.uniqueness.ScoreTitle(candidate, category, history)
		if res.Score >= g.cfg.UniquenessThreshold {
			return candidate
		}
		g.logger.Debug("topic candidate rejected",
			"topic", candidate, "score", res.Score, "error", domain.ErrDuplicateTopic)
		if res.Score > bestScore {
			best, bestScore = candidate, res.Score
		}
	}
	return best
}

func (g *Generator) generateText(ctx context.Context, topic string, category domain.PostCategory) (draftPayload, int, error) {
	profile := category.Profile()
	userPrompt := fmt.Sprintf(profile.UserPrompt, topic) + jsonContract

	raw, err := g.textGen.Complete(ctx, ports.CompletionRequest{
		SystemPrompt: profile.SystemPrompt,
		UserPrompt:   userPrompt,
		JSONMode:     true,
	})
	if err != nil {
		return draftPayload{}, 0, fmt.Errorf("text generation: %w: %v", domain.ErrTransportFailure, err)
	}

	var draft draftPayload
	if err := json.Unmarshal([]byte(raw), &draft); err != nil {
		return draftPayload{}, 0, fmt.Errorf("decode payload: %v: %w", err, domain.ErrParseFailure)
	}
	if strings.TrimSpace(draft.Title) == "" || strings.TrimSpace(draft.Body) == "" {
		return draftPayload{}, 0, fmt.Errorf("payload missing title or body: %w", domain.ErrParseFailure)
	}

	tokens := estimateTokens(profile.SystemPrompt+userPrompt) + estimateTokens(raw)
	return draft, tokens, nil
}

// generateImages asks for up to MaxImages renders, one at a time. Partial
// failure is tolerated: the run continues with whatever succeeded.
func (g *Generator) generateImages(ctx context.Context, prompts []string) []domain.GeneratedImage {
	if g.imageGen == nil {
		return nil
	}
	if len(prompts) > g.cfg.MaxImages {
		prompts = prompts[:g.cfg.MaxImages]
	}

	var images []domain.GeneratedImage
	for i, prompt := range prompts {
		url, err := g.imageGen.Generate(ctx, prompt)
		if err != nil {
			g.logger.Warn("image generation failed", "position", i, "error", err)
			continue
		}
		images = append(images, domain.GeneratedImage{
			URL:       url,
			Prompt:    prompt,
			Position:  len(images),
			CreatedAt: g.clock.Now(),
		})
	}
	return images
}

// estimateCost applies the fixed per-unit rate table; prompt and completion
// tokens are split evenly out of the estimate.
func (g *Generator) estimateCost(tokens, imageCount int) float64 {
	half := float64(tokens) / 2
	return half/1000*g.cfg.PromptTokenRate +
		half/1000*g.cfg.CompletionTokenRate +
		float64(imageCount)*g.cfg.ImageRate
}

const jsonContract = `

Respond with a JSON object: {"title", "subtitle", "body", "tags" (array), "meta_description", "image_prompts" (array of up to 3), "read_time_minutes" (number)}.`

// estimateTokens approximates token count as runes/4, close enough for a
// cost estimate.
func estimateTokens(text string) int {
	return len([]rune(text)) / 4
}

func clampTags(tags []string) []string {
	if len(tags) > 10 {
		return tags[:10]
	}
	return tags
}

func shortFormOf(draft draftPayload) string {
	if strings.TrimSpace(draft.Subtitle) != "" {
		return draft.Title + "\n\n" + draft.Subtitle + "\n\n" + firstParagraph(draft.Body)
	}
	return draft.Title + "\n\n" + firstParagraph(draft.Body)
}

func firstParagraph(body string) string {
	for _, para := range strings.Split(body, "\n\n") {
		para = strings.TrimSpace(para)
		if para != "" && !strings.HasPrefix(para, "#") {
			return para
		}
	}
	return strings.TrimSpace(body)
}
