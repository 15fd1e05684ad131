package auth

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrSessionNotFound indicates the verification session is unknown or already expired.
var ErrSessionNotFound = errors.New("verification session not found")

// Session is one in-flight phone verification. Sessions are transient: a
// restart dropping them is acceptable given the short TTL.
type Session struct {
	Phone     string    `json:"phone"`
	Code      string    `json:"code"`
	Method    string    `json:"method"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// SessionStore is expiring keyed state for verification sessions.
type SessionStore interface {
	Put(ctx context.Context, key string, session Session, ttl time.Duration) error
	Get(ctx context.Context, key string) (Session, error)
	Delete(ctx context.Context, key string) error
}

const sessionPrefix = "verification:v1:"

// RedisStore keeps sessions in Redis with native TTL expiry.
type RedisStore struct {
	cache *redis.Client
}

// NewRedisStore builds a Redis-backed session store.
func NewRedisStore(cache *redis.Client) *RedisStore {
	return &RedisStore{cache: cache}
}

// Put stores the session under its key with the provided TTL.
func (s *RedisStore) Put(ctx context.Context, key string, session Session, ttl time.Duration) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return s.cache.Set(ctx, sessionPrefix+key, payload, ttl).Err()
}

// Get fetches a live session by key.
func (s *RedisStore) Get(ctx context.Context, key string) (Session, error) {
	payload, err := s.cache.Get(ctx, sessionPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return Session{}, ErrSessionNotFound
	}
	if err != nil {
		return Session{}, err
	}
	var session Session
	if err := json.Unmarshal([]byte(payload), &session); err != nil {
		return Session{}, err
	}
	return session, nil
}

// Delete removes a session.
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	return s.cache.Del(ctx, sessionPrefix+key).Err()
}

type memoryEntry struct {
	session   Session
	expiresAt time.Time
}

// MemoryStore is a mutex-guarded in-process session store. Expiry is enforced
// on read; expired entries are removed when touched.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
}

// NewMemoryStore builds an in-process session store for tests and dev mode.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]memoryEntry)}
}

// Put stores the session under its key with the provided TTL.
func (s *MemoryStore) Put(_ context.Context, key string, session Session, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = memoryEntry{session: session, expiresAt: time.Now().Add(ttl)}
	return nil
}

// Get fetches a session, deleting and rejecting it when its TTL has lapsed.
func (s *MemoryStore) Get(_ context.Context, key string) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[key]
	if !ok {
		return Session{}, ErrSessionNotFound
	}
	if time.Now().After(entry.expiresAt) {
		delete(s.entries, key)
		return Session{}, ErrSessionNotFound
	}
	return entry.session, nil
}

// Delete removes a session.
func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}
