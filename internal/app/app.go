package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"github.com/KamnevVladimir/zen-automation-sub000/internal/config"
	"github.com/KamnevVladimir/zen-automation-sub000/internal/delivery"
	"github.com/KamnevVladimir/zen-automation-sub000/internal/infrastructure/llm"
	"github.com/KamnevVladimir/zen-automation-sub000/internal/infrastructure/storage"
	"github.com/KamnevVladimir/zen-automation-sub000/internal/infrastructure/telegram"
	"github.com/KamnevVladimir/zen-automation-sub000/internal/infrastructure/telegraph"
	"github.com/KamnevVladimir/zen-automation-sub000/internal/logging"
	"github.com/KamnevVladimir/zen-automation-sub000/internal/ports"
	"github.com/KamnevVladimir/zen-automation-sub000/internal/scoring"
	"github.com/KamnevVladimir/zen-automation-sub000/internal/usecase"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg       config.Config
	logger    *slog.Logger
	db        *sql.DB
	history   *storage.PostgresRepository
	rdb       *redis.Client
	transport *telegram.Transport
	pipeline  *usecase.Pipeline
	loop      *delivery.Loop
	scheduler *usecase.DailyScheduler
}

// New builds every adapter and use case from configuration. It opens the
// database connection but does not start any background work; call Run.
func New(cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	db, err := sql.Open("postgres", cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	history := storage.NewPostgresRepository(db)

	var (
		rdb    *redis.Client
		cursor ports.CursorStore
	)
	if cfg.Redis.URL != "" {
		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		rdb = redis.NewClient(opts)
		cursor = storage.NewRedisCursorStore(rdb)
	} else {
		baseLogger.Warn("no redis configured, delivery cursor kept in memory")
		cursor = storage.NewMemoryCursorStore()
	}

	var textGen ports.TextGenerator
	switch cfg.LLM.Provider {
	case "anthropic":
		textGen = llm.NewAnthropicClient(cfg.LLM)
	default:
		textGen = llm.NewOpenAIClient(cfg.LLM)
	}
	imageGen := llm.NewOpenAIImageClient(cfg.LLM)

	transport := telegram.NewTransport(cfg.Telegram.BotToken, nil)
	archive := telegraph.NewPublisher(cfg.Telegraph.AccessToken, cfg.Telegraph.AuthorName, nil)

	clock := ports.SystemClock{}
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	generator := usecase.NewGenerator(usecase.GeneratorDeps{
		TextGen:  textGen,
		ImageGen: imageGen,
		History:  history,
		Uniqueness: &scoring.UniquenessEngine{
			Threshold: cfg.Generate.UniquenessThreshold,
			Clock:     clock,
		},
		Quality: &scoring.QualityScorer{
			MinLength:      cfg.Quality.MinLength,
			MaxLength:      cfg.Quality.MaxLength,
			MinScore:       cfg.Quality.MinScore,
			CTAMarker:      cfg.Quality.CTAMarker,
			BannedPhrases:  cfg.Quality.BannedPhrases,
			SectionMarkers: cfg.Quality.SectionMarkers,
			MaxTags:        cfg.Quality.MaxTags,
		},
		Clock:  clock,
		Rand:   rng,
		Logger: baseLogger.With("component", "generator"),
		Config: cfg.Generate,
	})

	publisher := usecase.NewPublisher(usecase.PublisherDeps{
		Transport: transport,
		Archive:   archive,
		TextGen:   textGen,
		History:   history,
		Trending:  &scoring.TrendingOptimizer{Clock: clock},
		Clock:     clock,
		Logger:    baseLogger.With("component", "publisher"),
		Config:    cfg.Publish,
		ChannelID: cfg.Telegram.ChannelID,
	})

	pipeline := usecase.NewPipeline(generator, publisher, rng,
		baseLogger.With("component", "pipeline"))

	loop := delivery.NewLoop(delivery.Deps{
		Transport:    transport,
		Cursor:       cursor,
		Pipeline:     pipeline,
		History:      history,
		Clock:        clock,
		Logger:       baseLogger.With("component", "delivery"),
		OperatorID:   cfg.Telegram.OperatorID,
		PollInterval: cfg.Delivery.PollInterval,
		ErrorBackoff: cfg.Delivery.ErrorBackoff,
	})

	app := &Application{
		cfg:       cfg,
		logger:    baseLogger,
		db:        db,
		history:   history,
		rdb:       rdb,
		transport: transport,
		pipeline:  pipeline,
		loop:      loop,
	}

	slots := make([]usecase.TimeOfDay, 0, len(cfg.Scheduler.Times))
	for _, raw := range cfg.Scheduler.Times {
		slot, err := usecase.ParseTimeOfDay(raw)
		if err != nil {
			return nil, fmt.Errorf("scheduler time %q: %w", raw, err)
		}
		slots = append(slots, slot)
	}
	app.scheduler = usecase.NewDailyScheduler(slots, cfg.Scheduler.Location(), clock,
		app.scheduledRun, baseLogger.With("component", "scheduler"))

	return app, nil
}

// scheduledRun is the daily job: one full pipeline cycle, with the operator
// notified on failure.
func (a *Application) scheduledRun(ctx context.Context, trigger time.Time) {
	slot := trigger.In(a.cfg.Scheduler.Location()).Format("15:04")
	if err := a.pipeline.Run(ctx, slot); err != nil {
		a.logger.Error("scheduled run failed", "trigger", slot, "error", err)
		a.notifyOperator(ctx, fmt.Sprintf("Scheduled run at %s failed: %v", slot, err))
	}
}

func (a *Application) notifyOperator(ctx context.Context, text string) {
	if a.cfg.Telegram.OperatorID == 0 {
		return
	}
	if err := a.transport.SendMessage(ctx, a.cfg.Telegram.OperatorID, text); err != nil {
		a.logger.Error("operator notification failed", "error", err)
	}
}

// Run starts the command loop and the scheduler, then blocks until the
// context is cancelled. Shutdown waits for in-flight work.
func (a *Application) Run(ctx context.Context) error {
	if err := a.db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}
	if err := a.history.EnsureSchema(ctx); err != nil {
		return err
	}

	if err := a.loop.Start(ctx); err != nil {
		return fmt.Errorf("start delivery loop: %w", err)
	}
	if err := a.scheduler.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}

	a.logger.Info("application started",
		"provider", a.cfg.LLM.Provider,
		"slots", a.cfg.Scheduler.Times)

	<-ctx.Done()
	return a.Close()
}

// Close stops background work and releases connections.
func (a *Application) Close() error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.scheduler.Stop(shutdownCtx); err != nil {
		a.logger.Warn("scheduler stop", "error", err)
	}
	if err := a.loop.Stop(shutdownCtx); err != nil {
		a.logger.Warn("delivery loop stop", "error", err)
	}
	if a.rdb != nil {
		if err := a.rdb.Close(); err != nil {
			a.logger.Warn("redis close", "error", err)
		}
	}
	if err := a.db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}
