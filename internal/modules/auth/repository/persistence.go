package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// SignedInStore remembers which credential a browsing session is signed in as, so that a session
// restored after a restart reports the same identity.
type SignedInStore interface {
	Load(ctx context.Context, sessionID string) (uid string, err error)
	Save(ctx context.Context, sessionID, uid string) error
	Clear(ctx context.Context, sessionID string) error
}

func SignedInKey(sessionID string) string {
	return fmt.Sprintf("campussync:auth_session:%s", sessionID)
}

type redisSignedInStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewSignedInStore returns a Redis-backed store, or an in-process one when rdb is nil.
func NewSignedInStore(rdb *redis.Client, ttl time.Duration) SignedInStore {
	if rdb == nil {
		return &memorySignedInStore{uids: make(map[string]string)}
	}
	return &redisSignedInStore{rdb: rdb, ttl: ttl}
}

func (s *redisSignedInStore) Load(ctx context.Context, sessionID string) (string, error) {
	uid, err := s.rdb.Get(ctx, SignedInKey(sessionID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return uid, err
}

func (s *redisSignedInStore) Save(ctx context.Context, sessionID, uid string) error {
	return s.rdb.Set(ctx, SignedInKey(sessionID), uid, s.ttl).Err()
}

func (s *redisSignedInStore) Clear(ctx context.Context, sessionID string) error {
	return s.rdb.Del(ctx, SignedInKey(sessionID)).Err()
}

type memorySignedInStore struct {
	mu   sync.RWMutex
	uids map[string]string
}

func (s *memorySignedInStore) Load(ctx context.Context, sessionID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.uids[sessionID], nil
}

func (s *memorySignedInStore) Save(ctx context.Context, sessionID, uid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.uids[sessionID] = uid
	return nil
}

func (s *memorySignedInStore) Clear(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.uids, sessionID)
	return nil
}
