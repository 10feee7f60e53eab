package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/KamnevVladimir/zen-automation-sub000/internal/config"
	"github.com/KamnevVladimir/zen-automation-sub000/internal/domain"
	"github.com/KamnevVladimir/zen-automation-sub000/internal/ports"
	"github.com/KamnevVladimir/zen-automation-sub000/internal/scoring"
)

const trendingHistoryWindow = 7 * 24 * time.Hour

// PublisherDeps wires the publish-side collaborators.
type PublisherDeps struct {
	Transport ports.MessageTransport
	Archive   ports.ArchivePagePublisher
	TextGen   ports.TextGenerator
	History   ports.HistoryStore
	Trending  *scoring.TrendingOptimizer
	Clock     ports.Clock
	Logger    *slog.Logger
	Config    config.PublishConfig
	ChannelID int64
}

// Publisher turns a draft Post into channel payloads and drives the publish
// calls: archive page first, then the caption-limited channel message.
type Publisher struct {
	transport ports.MessageTransport
	archive   ports.ArchivePagePublisher
	textGen   ports.TextGenerator
	history   ports.HistoryStore
	trending  *scoring.TrendingOptimizer
	clock     ports.Clock
	logger    *slog.Logger
	cfg       config.PublishConfig
	channelID int64
}

// NewPublisher constructs the publish formatter.
func NewPublisher(deps PublisherDeps) *Publisher {
	if deps.Clock == nil {
		deps.Clock = ports.SystemClock{}
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &Publisher{
		transport: deps.Transport,
		archive:   deps.Archive,
		textGen:   deps.TextGen,
		history:   deps.History,
		trending:  deps.Trending,
		clock:     deps.Clock,
		logger:    deps.Logger,
		cfg:       deps.Config,
		channelID: deps.ChannelID,
	}
}

// Publish renders and sends the post. On transport failure the post stays in
// its last good state so the caller can retry.
func (p *Publisher) Publish(ctx context.Context, post *domain.Post, images []domain.GeneratedImage) (domain.PublishResult, error) {
	p.optimize(ctx, post)

	pageURL, err := p.archive.CreatePage(ctx, post.Title, RenderLongForm(post, images, p.cfg))
	if err != nil {
		return domain.PublishResult{}, fmt.Errorf("create archive page: %w: %v", domain.ErrTransportFailure, err)
	}

	footer := p.footer(pageURL)
	regens, err := p.fitShortForm(ctx, post, footer)
	if err != nil {
		return domain.PublishResult{}, err
	}

	caption := FormatCaption(post.ShortForm) + footer
	externalID, err := p.send(ctx, caption, images)
	if err != nil {
		return domain.PublishResult{}, fmt.Errorf("send to channel: %w: %v", domain.ErrTransportFailure, err)
	}

	now := p.clock.Now()
	post.Status = domain.StatusPublished
	post.PublishedAt = &now
	post.ExternalID = externalID
	post.UpdatedAt = now
	if err := p.history.UpdatePost(ctx, post); err != nil {
		// The message is out; report the storage problem but keep the result.
		p.logger.Error("post published but status update failed", "post_id", post.ID, "error", err)
	}

	p.logger.Info("published", "post_id", post.ID, "external_id", externalID, "page", pageURL, "regens", regens)
	return domain.PublishResult{ExternalID: externalID, ArchiveURL: pageURL, Regenerations: regens}, nil
}

// optimize applies the trending rewrite; the score is advisory and only
// logged.
func (p *Publisher) optimize(ctx context.Context, post *domain.Post) {
	if p.trending == nil {
		return
	}
	history, err := p.history.RecentPosts(ctx, p.clock.Now().Add(-trendingHistoryWindow))
	if err != nil {
		p.logger.Warn("trending history unavailable, skipping optimization", "error", err)
		return
	}
	report := p.trending.Optimize(post, post.Category, history)
	post.Title = report.Title
	post.Tags = report.Tags
	p.logger.Info("trending optimization",
		"title_score", report.TitleScore,
		"trending_score", report.TrendingScore,
		"trending_words", report.TrendingWords)
}

// fitShortForm shrinks the short form until caption+footer fits the limit,
// regenerating at most MaxFitAttempts times. Each accepted regeneration is
// persisted. Failure leaves the post draft.
func (p *Publisher) fitShortForm(ctx context.Context, post *domain.Post, footer string) (int, error) {
	limit := p.cfg.CaptionLimit
	footerLen := utf8.RuneCountInString(footer)
	attempts := 0

	for utf8.RuneCountInString(FormatCaption(post.ShortForm))+footerLen > limit {
		if attempts >= p.cfg.MaxFitAttempts {
			return attempts, fmt.Errorf("still %d runes over after %d attempts: %w",
				utf8.RuneCountInString(FormatCaption(post.ShortForm))+footerLen-limit,
				attempts, domain.ErrContentTooLong)
		}
		attempts++

		target := limit - footerLen - p.cfg.FitMargin
		shorter, err := p.regenerateShortForm(ctx, post, target)
		if err != nil {
			return attempts, fmt.Errorf("shrink short form: %w: %v", domain.ErrTransportFailure, err)
		}

		post.ShortForm = shorter
		post.UpdatedAt = p.clock.Now()
		if err := p.history.UpdatePost(ctx, post); err != nil {
			return attempts, fmt.Errorf("persist short form: %w", err)
		}
		p.logger.Debug("short form regenerated", "attempt", attempts, "len", utf8.RuneCountInString(shorter))
	}
	return attempts, nil
}

func (p *Publisher) regenerateShortForm(ctx context.Context, post *domain.Post, targetLen int) (string, error) {
	return p.textGen.Complete(ctx, ports.CompletionRequest{
		SystemPrompt: "You compress social media captions without losing the hook or the facts.",
		UserPrompt: fmt.Sprintf(
			"Rewrite this caption to at most %d characters, keep the title line:\n\n%s",
			targetLen, post.ShortForm),
	})
}

func (p *Publisher) send(ctx context.Context, caption string, images []domain.GeneratedImage) (string, error) {
	if hero := domain.HeroImage(images); hero != nil {
		return p.transport.SendMediaMessage(ctx, p.channelID, hero.URL, caption)
	}
	if err := p.transport.SendMessage(ctx, p.channelID, caption); err != nil {
		return "", err
	}
	return "", nil
}

func (p *Publisher) footer(pageURL string) string {
	return fmt.Sprintf("\n\n%s\n<a href=\"%s\">%s</a>",
		p.cfg.PromoLine, pageURL, p.cfg.ArchiveLinkText)
}
