package booking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// SessionStore keeps wizard snapshots between requests. Entries expire
// after the store's TTL of inactivity.
type SessionStore interface {
	Get(ctx context.Context, id string) (Snapshot, error)
	Put(ctx context.Context, id string, snap Snapshot) error
	Delete(ctx context.Context, id string) error
}

type memoryEntry struct {
	snap      Snapshot
	expiresAt time.Time
}

type MemorySessionStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

func NewMemorySessionStore(ttl time.Duration) *MemorySessionStore {
	return &MemorySessionStore{entries: make(map[string]memoryEntry), ttl: ttl, now: time.Now}
}

func (s *MemorySessionStore) Get(_ context.Context, id string) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok {
		return Snapshot{}, ErrSessionNotFound
	}
	if s.ttl > 0 && !s.now().Before(e.expiresAt) {
		delete(s.entries, id)
		return Snapshot{}, ErrSessionNotFound
	}
	return e.snap, nil
}

func (s *MemorySessionStore) Put(_ context.Context, id string, snap Snapshot) error {
	if id == "" {
		return ErrSessionIDRequired
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[id] = memoryEntry{snap: snap, expiresAt: s.now().Add(s.ttl)}
	s.sweep()
	return nil
}

func (s *MemorySessionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, id)
	return nil
}

// sweep drops expired entries. Callers hold mu.
func (s *MemorySessionStore) sweep() {
	if s.ttl <= 0 {
		return
	}
	now := s.now()
	for id, e := range s.entries {
		if !now.Before(e.expiresAt) {
			delete(s.entries, id)
		}
	}
}

type RedisSessionStore struct {
	redis *redis.Client
	ttl   time.Duration
}

func NewRedisSessionStore(rdb *redis.Client, ttl time.Duration) *RedisSessionStore {
	return &RedisSessionStore{redis: rdb, ttl: ttl}
}

func (s *RedisSessionStore) key(id string) string {
	return "carebook:booking:session:" + id
}

func (s *RedisSessionStore) Get(ctx context.Context, id string) (Snapshot, error) {
	data, err := s.redis.Get(ctx, s.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Snapshot{}, ErrSessionNotFound
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("booking: get session: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("booking: unmarshal session: %w", err)
	}
	return snap, nil
}

func (s *RedisSessionStore) Put(ctx context.Context, id string, snap Snapshot) error {
	if id == "" {
		return ErrSessionIDRequired
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("booking: marshal session: %w", err)
	}
	if err := s.redis.Set(ctx, s.key(id), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("booking: set session: %w", err)
	}
	return nil
}

func (s *RedisSessionStore) Delete(ctx context.Context, id string) error {
	if err := s.redis.Del(ctx, s.key(id)).Err(); err != nil {
		return fmt.Errorf("booking: delete session: %w", err)
	}
	return nil
}
