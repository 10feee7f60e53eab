package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/KamnevVladimir/zen-automation-sub000/internal/domain"
	"github.com/KamnevVladimir/zen-automation-sub000/internal/ports"
)

type fixedClock struct{ t time.Time }

func (f fixedClock) Now() time.Time { return f.t }

var testNow = time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)

// stubTextGen replays canned completions in order and records requests.
type stubTextGen struct {
	responses []string
	errs      []error
	calls     []ports.CompletionRequest
}

func (s *stubTextGen) Complete(_ context.Context, req ports.CompletionRequest) (string, error) {
	s.calls = append(s.calls, req)
	i := len(s.calls) - 1
	if i < len(s.errs) && s.errs[i] != nil {
		return "", s.errs[i]
	}
	if i >= len(s.responses) {
		return "", errors.New("stub exhausted")
	}
	return s.responses[i], nil
}

type stubImageGen struct {
	urls  []string
	errAt map[int]error
	calls int
}

func (s *stubImageGen) Generate(context.Context, string) (string, error) {
	i := s.calls
	s.calls++
	if err, ok := s.errAt[i]; ok {
		return "", err
	}
	if i < len(s.urls) {
		return s.urls[i], nil
	}
	return "https://img.example/default.png", nil
}

// memHistory is an in-memory HistoryStore.
type memHistory struct {
	posts     []*domain.Post
	images    []*domain.GeneratedImage
	logs      []*domain.GenerationLogEntry
	nextID    int64
	updateErr error
	recentErr error
}

func (m *memHistory) SavePost(_ context.Context, post *domain.Post) error {
	m.nextID++
	post.ID = m.nextID
	cp := *post
	m.posts = append(m.posts, &cp)
	return nil
}

func (m *memHistory) UpdatePost(_ context.Context, post *domain.Post) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	for i, p := range m.posts {
		if p.ID == post.ID {
			cp := *post
			m.posts[i] = &cp
			return nil
		}
	}
	cp := *post
	m.posts = append(m.posts, &cp)
	return nil
}

func (m *memHistory) SaveImage(_ context.Context, image *domain.GeneratedImage) error {
	m.nextID++
	image.ID = m.nextID
	cp := *image
	m.images = append(m.images, &cp)
	return nil
}

func (m *memHistory) AppendLog(_ context.Context, entry *domain.GenerationLogEntry) error {
	m.nextID++
	entry.ID = m.nextID
	cp := *entry
	m.logs = append(m.logs, &cp)
	return nil
}

func (m *memHistory) RecentPosts(_ context.Context, since time.Time) ([]domain.Post, error) {
	if m.recentErr != nil {
		return nil, m.recentErr
	}
	var out []domain.Post
	for _, p := range m.posts {
		if p.CreatedAt.After(since) {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (m *memHistory) RecentPostsByCategory(ctx context.Context, category domain.PostCategory, since time.Time) ([]domain.Post, error) {
	all, err := m.RecentPosts(ctx, since)
	if err != nil {
		return nil, err
	}
	var out []domain.Post
	for _, p := range all {
		if p.Category == category {
			out = append(out, p)
		}
	}
	return out, nil
}

// stubTransport records outbound messages.
type stubTransport struct {
	pending   []ports.InboundCommand
	pendErr   error
	sent      []string
	media     []string
	sendErr   error
	nextMsgID int
}

func (s *stubTransport) GetPendingCommands(context.Context, int64) ([]ports.InboundCommand, error) {
	if s.pendErr != nil {
		return nil, s.pendErr
	}
	out := s.pending
	s.pending = nil
	return out, nil
}

func (s *stubTransport) SendMessage(_ context.Context, _ int64, text string) error {
	if s.sendErr != nil {
		return s.sendErr
	}
	s.sent = append(s.sent, text)
	return nil
}

func (s *stubTransport) SendMediaMessage(_ context.Context, _ int64, mediaURL, caption string) (string, error) {
	if s.sendErr != nil {
		return "", s.sendErr
	}
	s.media = append(s.media, caption)
	s.nextMsgID++
	return "msg-" + string(rune('0'+s.nextMsgID)), nil
}

type stubArchive struct {
	url     string
	err     error
	titles  []string
	content []string
}

func (s *stubArchive) CreatePage(_ context.Context, title, htmlContent string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.titles = append(s.titles, title)
	s.content = append(s.content, htmlContent)
	return s.url, nil
}
