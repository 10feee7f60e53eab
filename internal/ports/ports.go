package ports

import (
	"context"
	"time"

	"github.com/KamnevVladimir/zen-automation-sub000/internal/domain"
)

// TextGenerator produces article text from prompts. JSONMode asks the model
// to respond with a single JSON object.
type TextGenerator interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// CompletionRequest carries prompts and decoding hints for a completion call.
type CompletionRequest struct {
	SystemPrompt string
	UserPrompt   string
	JSONMode     bool
	MaxTokens    int
}

// ImageGenerator renders one image per prompt and returns its URL or handle.
type ImageGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// InboundCommand is a single operator message pulled from the transport.
type InboundCommand struct {
	ID       int64
	SenderID int64
	ChatID   int64
	Text     string
}

// MessageTransport is the chat-platform boundary: inbound command polling and
// outbound plain/media messages. SendMediaMessage returns the platform's
// message identifier.
type MessageTransport interface {
	GetPendingCommands(ctx context.Context, offset int64) ([]InboundCommand, error)
	SendMessage(ctx context.Context, chatID int64, text string) error
	SendMediaMessage(ctx context.Context, chatID int64, mediaURL, caption string) (string, error)
}

// ArchivePagePublisher creates a durable long-form page and returns its URL.
type ArchivePagePublisher interface {
	CreatePage(ctx context.Context, title, htmlContent string) (string, error)
}

// HistoryStore persists posts and exposes the windowed history reads the
// scoring components need.
type HistoryStore interface {
	SavePost(ctx context.Context, post *domain.Post) error
	UpdatePost(ctx context.Context, post *domain.Post) error
	SaveImage(ctx context.Context, image *domain.GeneratedImage) error
	AppendLog(ctx context.Context, entry *domain.GenerationLogEntry) error
	RecentPosts(ctx context.Context, since time.Time) ([]domain.Post, error)
	RecentPostsByCategory(ctx context.Context, category domain.PostCategory, since time.Time) ([]domain.Post, error)
}

// CursorStore keeps the delivery loop's poll offset across restarts.
type CursorStore interface {
	Load(ctx context.Context) (int64, error)
	Save(ctx context.Context, offset int64) error
}

// Clock abstracts wall-clock reads so schedule math is testable.
type Clock interface {
	Now() time.Time
}

// SystemClock is the production Clock.
type SystemClock struct{}

// Now returns the current wall-clock time.
func (SystemClock) Now() time.Time { return time.Now() }
