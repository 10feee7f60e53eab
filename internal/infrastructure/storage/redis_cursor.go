package storage

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/KamnevVladimir/zen-automation-sub000/internal/ports"
)

const cursorKey = "zenbot:delivery:offset"

// RedisCursorStore keeps the delivery offset in redis so the loop resumes
// where it left off after a restart.
type RedisCursorStore struct {
	client *redis.Client
}

var _ ports.CursorStore = (*RedisCursorStore)(nil)

func NewRedisCursorStore(client *redis.Client) *RedisCursorStore {
	return &RedisCursorStore{client: client}
}

func (s *RedisCursorStore) Load(ctx context.Context) (int64, error) {
	val, err := s.client.Get(ctx, cursorKey).Result()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("load cursor: %w", err)
	}
	offset, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse cursor %q: %w", val, err)
	}
	return offset, nil
}

func (s *RedisCursorStore) Save(ctx context.Context, offset int64) error {
	if err := s.client.Set(ctx, cursorKey, offset, 0).Err(); err != nil {
		return fmt.Errorf("save cursor: %w", err)
	}
	return nil
}

// MemoryCursorStore is the fallback when no redis address is configured.
// The offset is lost on restart; Telegram then replays pending updates,
// which the loop tolerates.
type MemoryCursorStore struct {
	mu     sync.Mutex
	offset int64
}

var _ ports.CursorStore = (*MemoryCursorStore)(nil)

func NewMemoryCursorStore() *MemoryCursorStore {
	return &MemoryCursorStore{}
}

func (s *MemoryCursorStore) Load(context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.offset, nil
}

func (s *MemoryCursorStore) Save(_ context.Context, offset int64) error {
	s.mu.Lock()
	s.offset = offset
	s.mu.Unlock()
	return nil
}
