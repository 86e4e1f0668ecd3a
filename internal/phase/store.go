package phase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"bidsmart-backend/internal/logger"
)

const KeyPrefix = "bidsmart_phase_state"

func Key(userID string) string {
	return KeyPrefix + ":" + userID
}

var ErrCacheMiss = errors.New("phase cache miss")

// Cache persists encoded state. Implementations return ErrCacheMiss for an
// absent key.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// FactsFunc loads the data Derive needs. It is only called when the cached
// state cannot be trusted.
type FactsFunc func(ctx context.Context) (Facts, error)

// Store applies transitions on top of a Cache. Cache failures are logged and
// otherwise ignored; the state is always recoverable from Facts.
type Store struct {
	cache Cache
	log   *logger.Logger
	now   func() time.Time
}

func NewStore(cache Cache, log *logger.Logger) *Store {
	return &Store{cache: cache, log: log.With("component", "PhaseStore"), now: time.Now}
}

// Load returns the cached state for userID when it belongs to projectID and
// rederives it otherwise.
func (s *Store) Load(ctx context.Context, userID, projectID string, facts FactsFunc) (State, error) {
	if cached, ok := s.read(ctx, userID); ok && cached.ProjectID == projectID {
		return cached, nil
	}

	f, err := facts(ctx)
	if err != nil {
		return State{}, fmt.Errorf("load phase facts: %w", err)
	}
	st := Derive(projectID, f)
	s.write(ctx, userID, st)
	return st, nil
}

func (s *Store) Complete(ctx context.Context, userID, projectID string, p Phase, facts FactsFunc) (State, error) {
	return s.apply(ctx, userID, projectID, facts, func(st State) (State, error) { return st.Complete(p) })
}

func (s *Store) Navigate(ctx context.Context, userID, projectID string, p Phase, facts FactsFunc) (State, error) {
	return s.apply(ctx, userID, projectID, facts, func(st State) (State, error) { return st.Navigate(p) })
}

// Reset drops back to the initial state for projectID.
func (s *Store) Reset(ctx context.Context, userID, projectID string) State {
	st := Initial(projectID)
	s.write(ctx, userID, st)
	return st
}

func (s *Store) apply(ctx context.Context, userID, projectID string, facts FactsFunc, fn func(State) (State, error)) (State, error) {
	st, err := s.Load(ctx, userID, projectID, facts)
	if err != nil {
		return State{}, err
	}
	next, err := fn(st)
	if err != nil {
		return st, err
	}
	s.write(ctx, userID, next)
	return next, nil
}

func (s *Store) read(ctx context.Context, userID string) (State, bool) {
	raw, err := s.cache.Get(ctx, Key(userID))
	if err != nil {
		if !errors.Is(err, ErrCacheMiss) {
			s.log.Warn("phase cache read failed", "user_id", userID, "error", err)
		}
		return State{}, false
	}
	var st State
	if err := json.Unmarshal(raw, &st); err != nil {
		s.log.Warn("discarding unreadable phase state", "user_id", userID, "error", err)
		return State{}, false
	}
	return st, true
}

func (s *Store) write(ctx context.Context, userID string, st State) {
	st.UpdatedAt = s.now().UTC()
	raw, err := json.Marshal(st)
	if err != nil {
		s.log.Warn("encode phase state", "user_id", userID, "error", err)
		return
	}
	if err := s.cache.Set(ctx, Key(userID), raw); err != nil {
		s.log.Warn("phase cache write failed", "user_id", userID, "error", err)
	}
}

// MemoryCache is a process-local Cache.
type MemoryCache struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{data: make(map[string][]byte)}
}

func (m *MemoryCache) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	if !ok {
		return nil, ErrCacheMiss
	}
	return append([]byte(nil), v...), nil
}

func (m *MemoryCache) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), value...)
	return nil
}

// DefaultTTL bounds how long an idle user's phase state stays in Redis.
const DefaultTTL = 30 * 24 * time.Hour

type RedisCache struct {
	rdb *goredis.Client
	ttl time.Duration
}

// NewRedisCache connects to addr and pings it before returning.
func NewRedisCache(ctx context.Context, addr string, ttl time.Duration) (*RedisCache, error) {
	if addr == "" {
		return nil, fmt.Errorf("missing redis address")
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return NewRedisCacheFromClient(rdb, ttl), nil
}

func NewRedisCacheFromClient(rdb *goredis.Client, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisCache{rdb: rdb, ttl: ttl}
}

func (r *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	v, err := r.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, ErrCacheMiss
	}
	return v, err
}

func (r *RedisCache) Set(ctx context.Context, key string, value []byte) error {
	return r.rdb.Set(ctx, key, value, r.ttl).Err()
}

func (r *RedisCache) Close() error {
	return r.rdb.Close()
}
