package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// FlagStore persists the "mock session explicitly ended" flag per browsing session.
type FlagStore interface {
	IsLoggedOut(ctx context.Context, sessionID string) (bool, error)
	SetLoggedOut(ctx context.Context, sessionID string) error
	ClearLoggedOut(ctx context.Context, sessionID string) error
}

func MockLoggedOutKey(sessionID string) string {
	return fmt.Sprintf("campussync:mock_logged_out:%s", sessionID)
}

type redisFlagStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewFlagStore returns a Redis-backed flag store, or an in-process one when rdb is nil.
// A zero ttl keeps Redis flags until cleared.
func NewFlagStore(rdb *redis.Client, ttl time.Duration) FlagStore {
	if rdb == nil {
		return &memoryFlagStore{flags: make(map[string]bool)}
	}
	return &redisFlagStore{rdb: rdb, ttl: ttl}
}

func (s *redisFlagStore) IsLoggedOut(ctx context.Context, sessionID string) (bool, error) {
	val, err := s.rdb.Get(ctx, MockLoggedOutKey(sessionID)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return val == "true", nil
}

func (s *redisFlagStore) SetLoggedOut(ctx context.Context, sessionID string) error {
	return s.rdb.Set(ctx, MockLoggedOutKey(sessionID), "true", s.ttl).Err()
}

func (s *redisFlagStore) ClearLoggedOut(ctx context.Context, sessionID string) error {
	return s.rdb.Del(ctx, MockLoggedOutKey(sessionID)).Err()
}

type memoryFlagStore struct {
	mu    sync.RWMutex
	flags map[string]bool
}

func (s *memoryFlagStore) IsLoggedOut(ctx context.Context, sessionID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.flags[sessionID], nil
}

func (s *memoryFlagStore) SetLoggedOut(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flags[sessionID] = true
	return nil
}

func (s *memoryFlagStore) ClearLoggedOut(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.flags, sessionID)
	return nil
}
