package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/KamnevVladimir/zen-automation-sub000/internal/domain"
)

// Pipeline chains generation and publishing into a single run. The delivery
// loop calls Generate and Publish separately; the scheduler uses Run.
type Pipeline struct {
	Generator *Generator
	Publisher *Publisher
	Rand      *rand.Rand
	Logger    *slog.Logger
}

func NewPipeline(generator *Generator, publisher *Publisher, rng *rand.Rand, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{Generator: generator, Publisher: publisher, Rand: rng, Logger: logger}
}

func (p *Pipeline) Generate(ctx context.Context, req domain.GenerationRequest) (*domain.Post, []domain.GeneratedImage, error) {
	return p.Generator.Generate(ctx, req)
}

func (p *Pipeline) Publish(ctx context.Context, post *domain.Post, images []domain.GeneratedImage) (domain.PublishResult, error) {
	return p.Publisher.Publish(ctx, post, images)
}

// Run executes one scheduled generate-and-publish cycle with a random
// category. A quality rejection is logged and swallowed so the scheduler
// keeps ticking; other failures bubble up for operator notification.
func (p *Pipeline) Run(ctx context.Context, trigger string) error {
	categories := domain.Categories()
	category := categories[p.Rand.Intn(len(categories))]

	p.Logger.Info("scheduled run starting", "trigger", trigger, "category", category)

	post, images, err := p.Generate(ctx, domain.GenerationRequest{Category: category})
	if err != nil {
		if errors.Is(err, domain.ErrQualityRejected) {
			p.Logger.Warn("scheduled run skipped, draft rejected", "trigger", trigger, "error", err)
			return nil
		}
		return fmt.Errorf("scheduled generation: %w", err)
	}

	result, err := p.Publish(ctx, post, images)
	if err != nil {
		return fmt.Errorf("scheduled publish of draft %d: %w", post.ID, err)
	}

	p.Logger.Info("scheduled run published",
		"trigger", trigger,
		"post_id", post.ID,
		"external_id", result.ExternalID,
		"archive_url", result.ArchiveURL,
		"regenerations", result.Regenerations)
	return nil
}
