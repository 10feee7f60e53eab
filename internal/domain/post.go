package domain

import "time"

// PostStatus enumerates the lifecycle states of a Post.
type PostStatus string

const (
	StatusDraft     PostStatus = "draft"
	StatusPublished PostStatus = "published"
	StatusFailed    PostStatus = "failed"
	StatusPending   PostStatus = "pending"
)

// Post is the central artifact produced by the generation pipeline.
type Post struct {
	ID              int64
	Title           string
	Subtitle        string
	Body            string
	ShortForm       string
	LongForm        string
	Tags            []string
	MetaDescription string
	Category        PostCategory
	Status          PostStatus
	PublishedAt     *time.Time
	ExternalID      string
	ReadTimeMinutes int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// GeneratedImage is owned by a Post; position 0 is the hero image.
type GeneratedImage struct {
	ID        int64
	PostID    int64
	URL       string
	Prompt    string
	Position  int
	CreatedAt time.Time
}

// HeroImage returns the position-0 image or nil when none was generated.
func HeroImage(images []GeneratedImage) *GeneratedImage {
	for i := range images {
		if images[i].Position == 0 {
			return &images[i]
		}
	}
	return nil
}

// GenerationLogEntry is an append-only record of one pipeline step.
type GenerationLogEntry struct {
	ID        int64
	PostID    int64
	Step      string
	Status    string
	Error     string
	Duration  time.Duration
	CostUSD   float64
	CreatedAt time.Time
}

const (
	LogStatusSuccess = "success"
	LogStatusFailure = "failure"
)

// ScoringResult is a transient verdict returned by the scoring components.
// Sub-scores are only populated by the uniqueness engine.
type ScoringResult struct {
	Score           float64
	Passed          bool
	Issues          []string
	Recommendations []string

	TitleSimilarity     float64
	ContentSimilarity   float64
	TopicDuplication    float64
	SeasonalRestriction float64
}

// PublishResult reports the outcome of a publish attempt.
type PublishResult struct {
	ExternalID    string
	ArchiveURL    string
	Regenerations int
}

// GenerationRequest carries the inputs of one orchestrator run.
type GenerationRequest struct {
	Topic    string
	Category PostCategory
}
