package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/KamnevVladimir/zen-automation-sub000/internal/domain"
	"github.com/KamnevVladimir/zen-automation-sub000/internal/ports"
)

// PostgresRepository persists posts, images and generation logs.
type PostgresRepository struct {
	db      *sql.DB
	builder sq.StatementBuilderType
}

var _ ports.HistoryStore = (*PostgresRepository)(nil)

// NewPostgresRepository wires a sql.DB implementation.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

const schemaDDL = `
CREATE TABLE IF NOT EXISTS posts (
    id                BIGSERIAL PRIMARY KEY,
    title             TEXT NOT NULL,
    subtitle          TEXT NOT NULL DEFAULT '',
    body              TEXT NOT NULL,
    short_form        TEXT NOT NULL DEFAULT '',
    long_form         TEXT NOT NULL DEFAULT '',
    tags              TEXT[] NOT NULL DEFAULT '{}',
    meta_description  TEXT NOT NULL DEFAULT '',
    category          TEXT NOT NULL,
    status            TEXT NOT NULL,
    published_at      TIMESTAMPTZ,
    external_id       TEXT,
    read_time_minutes INT NOT NULL DEFAULT 0,
    created_at        TIMESTAMPTZ NOT NULL,
    updated_at        TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_posts_created_at ON posts (created_at DESC);
CREATE INDEX IF NOT EXISTS idx_posts_category ON posts (category, created_at DESC);

CREATE TABLE IF NOT EXISTS generated_images (
    id         BIGSERIAL PRIMARY KEY,
    post_id    BIGINT NOT NULL REFERENCES posts (id),
    url        TEXT NOT NULL,
    prompt     TEXT NOT NULL DEFAULT '',
    position   INT NOT NULL DEFAULT 0,
    created_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS generation_logs (
    id          BIGSERIAL PRIMARY KEY,
    post_id     BIGINT,
    step        TEXT NOT NULL,
    status      TEXT NOT NULL,
    error       TEXT NOT NULL DEFAULT '',
    duration_ms BIGINT NOT NULL DEFAULT 0,
    cost_usd    DOUBLE PRECISION NOT NULL DEFAULT 0,
    created_at  TIMESTAMPTZ NOT NULL
);
`

// EnsureSchema creates the tables on first start.
func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schemaDDL); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// SavePost inserts a new post and fills in its id.
func (r *PostgresRepository) SavePost(ctx context.Context, post *domain.Post) error {
	query, args, err := r.builder.
		Insert("posts").
		Columns("title", "subtitle", "body", "short_form", "long_form", "tags",
			"meta_description", "category", "status", "read_time_minutes",
			"created_at", "updated_at").
		Values(post.Title, post.Subtitle, post.Body, post.ShortForm, post.LongForm,
			pq.Array(post.Tags), post.MetaDescription, string(post.Category),
			string(post.Status), post.ReadTimeMinutes, post.CreatedAt, post.UpdatedAt).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert post: %w", err)
	}

	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&post.ID); err != nil {
		return fmt.Errorf("insert post: %w", err)
	}
	return nil
}

// UpdatePost writes the mutable post fields (status, variants, timestamps,
// external id) back by id.
func (r *PostgresRepository) UpdatePost(ctx context.Context, post *domain.Post) error {
	query, args, err := r.builder.
		Update("posts").
		Set("title", post.Title).
		Set("short_form", post.ShortForm).
		Set("tags", pq.Array(post.Tags)).
		Set("status", string(post.Status)).
		Set("published_at", post.PublishedAt).
		Set("external_id", post.ExternalID).
		Set("updated_at", post.UpdatedAt).
		Where(sq.Eq{"id": post.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update post: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update post %d: %w", post.ID, err)
	}
	return nil
}

// SaveImage inserts one generated image with its ordinal.
func (r *PostgresRepository) SaveImage(ctx context.Context, image *domain.GeneratedImage) error {
	query, args, err := r.builder.
		Insert("generated_images").
		Columns("post_id", "url", "prompt", "position", "created_at").
		Values(image.PostID, image.URL, image.Prompt, image.Position, image.CreatedAt).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert image: %w", err)
	}

	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&image.ID); err != nil {
		return fmt.Errorf("insert image: %w", err)
	}
	return nil
}

// AppendLog inserts one pipeline step record; log entries are never updated.
func (r *PostgresRepository) AppendLog(ctx context.Context, entry *domain.GenerationLogEntry) error {
	query, args, err := r.builder.
		Insert("generation_logs").
		Columns("post_id", "step", "status", "error", "duration_ms", "cost_usd", "created_at").
		Values(entry.PostID, entry.Step, entry.Status, entry.Error,
			entry.Duration.Milliseconds(), entry.CostUSD, entry.CreatedAt).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert log: %w", err)
	}

	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&entry.ID); err != nil {
		return fmt.Errorf("insert log: %w", err)
	}
	return nil
}

// RecentPosts returns posts created since the given instant, newest first.
func (r *PostgresRepository) RecentPosts(ctx context.Context, since time.Time) ([]domain.Post, error) {
	return r.selectPosts(ctx, sq.GtOrEq{"created_at": since})
}

// RecentPostsByCategory narrows RecentPosts to a single category.
func (r *PostgresRepository) RecentPostsByCategory(ctx context.Context, category domain.PostCategory, since time.Time) ([]domain.Post, error) {
	return r.selectPosts(ctx, sq.And{
		sq.GtOrEq{"created_at": since},
		sq.Eq{"category": string(category)},
	})
}

func (r *PostgresRepository) selectPosts(ctx context.Context, where sq.Sqlizer) ([]domain.Post, error) {
	query, args, err := r.builder.
		Select("id", "title", "subtitle", "body", "short_form", "long_form", "tags",
			"meta_description", "category", "status", "published_at", "external_id",
			"read_time_minutes", "created_at", "updated_at").
		From("posts").
		Where(where).
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select posts: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query posts: %w", err)
	}
	defer rows.Close()

	var posts []domain.Post
	for rows.Next() {
		var (
			post        domain.Post
			tags        pq.StringArray
			publishedAt sql.NullTime
			externalID  sql.NullString
		)
		if err := rows.Scan(&post.ID, &post.Title, &post.Subtitle, &post.Body,
			&post.ShortForm, &post.LongForm, &tags, &post.MetaDescription,
			&post.Category, &post.Status, &publishedAt, &externalID,
			&post.ReadTimeMinutes, &post.CreatedAt, &post.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		post.Tags = tags
		if publishedAt.Valid {
			t := publishedAt.Time
			post.PublishedAt = &t
		}
		post.ExternalID = externalID.String
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return posts, nil
}
