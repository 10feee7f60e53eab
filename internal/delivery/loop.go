package delivery

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/KamnevVladimir/zen-automation-sub000/internal/domain"
	"github.com/KamnevVladimir/zen-automation-sub000/internal/ports"
)

// Pipeline is the generation+publish pair the loop dispatches into.
type Pipeline interface {
	Generate(ctx context.Context, req domain.GenerationRequest) (*domain.Post, []domain.GeneratedImage, error)
	Publish(ctx context.Context, post *domain.Post, images []domain.GeneratedImage) (domain.PublishResult, error)
}

const statusWindow = 7 * 24 * time.Hour

// Deps wires the loop's collaborators.
type Deps struct {
	Transport    ports.MessageTransport
	Cursor       ports.CursorStore
	Pipeline     Pipeline
	History      ports.HistoryStore
	Clock        ports.Clock
	Logger       *slog.Logger
	OperatorID   int64
	PollInterval time.Duration
	ErrorBackoff time.Duration
}

// Loop ingests operator commands by long-polling the transport with a
// monotonically advancing offset. Commands are processed one at a time in
// arrival order; delivery is at-least-once.
type Loop struct {
	transport    ports.MessageTransport
	cursor       ports.CursorStore
	pipeline     Pipeline
	history      ports.HistoryStore
	clock        ports.Clock
	logger       *slog.Logger
	operatorID   int64
	pollInterval time.Duration
	errorBackoff time.Duration

	stop chan struct{}
	done chan struct{}
}

// NewLoop constructs the delivery loop.
func NewLoop(deps Deps) *Loop {
	if deps.Clock == nil {
		deps.Clock = ports.SystemClock{}
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.PollInterval <= 0 {
		deps.PollInterval = 2 * time.Second
	}
	if deps.ErrorBackoff <= 0 {
		deps.ErrorBackoff = 10 * time.Second
	}
	return &Loop{
		transport:    deps.Transport,
		cursor:       deps.Cursor,
		pipeline:     deps.Pipeline,
		history:      deps.History,
		clock:        deps.Clock,
		logger:       deps.Logger,
		operatorID:   deps.OperatorID,
		pollInterval: deps.PollInterval,
		errorBackoff: deps.ErrorBackoff,
	}
}

// Start launches the polling goroutine. The loop resumes from the persisted
// cursor, so a restart re-fetches at most the commands of one poll cycle.
func (l *Loop) Start(ctx context.Context) error {
	if l.stop != nil {
		return nil
	}
	l.stop = make(chan struct{})
	l.done = make(chan struct{})

	offset, err := l.cursor.Load(ctx)
	if err != nil {
		l.logger.Warn("cursor load failed, starting from zero", "error", err)
		offset = 0
	}

	go func() {
		defer close(l.done)
		for {
			next, pollErr := l.pollOnce(ctx, offset)
			offset = next

			wait := l.pollInterval
			if pollErr != nil {
				l.logger.Error("poll cycle failed", "error", pollErr)
				wait = l.errorBackoff
			}

			select {
			case <-ctx.Done():
				return
			case <-l.stop:
				return
			case <-time.After(wait):
			}
		}
	}()

	return nil
}

// Stop halts polling and waits for an in-flight command to finish.
func (l *Loop) Stop(ctx context.Context) error {
	if l.stop == nil {
		return nil
	}
	close(l.stop)
	select {
	case <-l.done:
	case <-ctx.Done():
		return ctx.Err()
	}
	l.stop = nil
	return nil
}

// pollOnce fetches pending commands at the given offset, processes them in
// order and returns the advanced offset (max seen id + 1). A transport error
// leaves the offset untouched so the next cycle retries the same batch.
func (l *Loop) pollOnce(ctx context.Context, offset int64) (int64, error) {
	commands, err := l.transport.GetPendingCommands(ctx, offset)
	if err != nil {
		return offset, fmt.Errorf("get pending commands: %w: %v", domain.ErrTransportFailure, err)
	}

	// Shutdown must let the in-flight batch finish; cancellation only stops
	// the polling, never a pipeline mid-run.
	workCtx := context.WithoutCancel(ctx)
	for _, cmd := range commands {
		if cmd.ID >= offset {
			offset = cmd.ID + 1
		}
		l.handle(workCtx, cmd)
	}

	if len(commands) > 0 {
		if err := l.cursor.Save(workCtx, offset); err != nil {
			l.logger.Warn("cursor save failed", "offset", offset, "error", err)
		}
	}
	return offset, nil
}

func (l *Loop) handle(ctx context.Context, cmd ports.InboundCommand) {
	if cmd.SenderID != l.operatorID {
		// Deliberately ignored, not an error.
		l.logger.Info("ignoring message from unauthorized sender", "sender", cmd.SenderID)
		return
	}

	parsed := ParseCommand(cmd.Text)
	switch parsed.Kind {
	case KindStart:
		l.reply(ctx, cmd.ChatID, "Hi! Send \"create post about <topic>\" and I will write, score and publish it.")
	case KindHelp:
		l.reply(ctx, cmd.ChatID, "Commands:\n"+
			"create post about <topic> — generate and publish an article\n"+
			"/status — posts published in the last 7 days\n"+
			"/help — this message")
	case KindStatus:
		l.reply(ctx, cmd.ChatID, l.statusSummary(ctx))
	case KindCreatePost:
		l.runPipeline(ctx, cmd.ChatID, parsed)
	default:
		l.reply(ctx, cmd.ChatID, "I did not recognize that. Try /help.")
	}
}

// runPipeline executes generation and publishing synchronously and reports a
// human-readable summary back to the operator.
func (l *Loop) runPipeline(ctx context.Context, chatID int64, cmd Command) {
	l.logger.Info("command accepted", "topic", cmd.Topic, "category", cmd.Category)

	post, images, err := l.pipeline.Generate(ctx, domain.GenerationRequest{
		Topic:    cmd.Topic,
		Category: cmd.Category,
	})
	if err != nil {
		l.reply(ctx, chatID, fmt.Sprintf("Generation failed: %v", err))
		return
	}

	result, err := l.pipeline.Publish(ctx, post, images)
	if err != nil {
		l.reply(ctx, chatID, fmt.Sprintf("Draft %d saved, but publishing failed: %v", post.ID, err))
		return
	}

	l.reply(ctx, chatID, fmt.Sprintf("Published \"%s\"\nArchive: %s", post.Title, result.ArchiveURL))
}

func (l *Loop) statusSummary(ctx context.Context) string {
	posts, err := l.history.RecentPosts(ctx, l.clock.Now().Add(-statusWindow))
	if err != nil {
		return fmt.Sprintf("Status unavailable: %v", err)
	}
	published := 0
	for _, p := range posts {
		if p.Status == domain.StatusPublished {
			published++
		}
	}
	return fmt.Sprintf("%d posts published in the last 7 days.", published)
}

func (l *Loop) reply(ctx context.Context, chatID int64, text string) {
	if err := l.transport.SendMessage(ctx, chatID, text); err != nil {
		l.logger.Error("reply failed", "chat", chatID, "error", err)
	}
}
