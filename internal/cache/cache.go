// Package cache memoizes projection results outside the engine. The
// engine itself is pure and stateless; this layer keys results on a
// content hash of the profile so identical inputs skip recomputation.
package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/goccy/go-json"
	"github.com/penplan/penplan/internal/calculation"
	"github.com/penplan/penplan/internal/domain"
	"github.com/redis/go-redis/v9"
)

// Store is the minimal key-value surface the memoizer needs.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte) error
}

// ProfileKey derives a stable cache key from the profile's canonical
// JSON serialization. Two structurally equal profiles hash identically;
// any field change produces a new key, which replaces deep-equality
// change detection in hot paths.
//
// AsOf is hashed at month granularity: the simulation only reads its
// calendar month, and callers stamp time.Now() into it when the input
// omits it, so hashing the full timestamp would give every request its
// own key and the cache would never hit.
func ProfileKey(p *domain.FinancialProfile) (string, error) {
	hashed := *p
	if !hashed.AsOf.IsZero() {
		hashed.AsOf = time.Date(hashed.AsOf.Year(), hashed.AsOf.Month(), 1, 0, 0, 0, 0, time.UTC)
	}
	payload, err := json.Marshal(&hashed)
	if err != nil {
		return "", fmt.Errorf("failed to serialize profile for hashing: %w", err)
	}
	return fmt.Sprintf("penplan:projection:%016x", xxhash.Sum64(payload)), nil
}

// MemoryStore is an in-process Store for single-binary deployments and
// tests.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string][]byte
}

// NewMemoryStore builds an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string][]byte)}
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.entries[key]
	return value, ok
}

func (s *MemoryStore) Set(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = value
	return nil
}

// RedisStore backs the memoizer with Redis so multiple instances share
// one result cache.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore connects to the given address. Entries expire after an
// hour; fiscal parameters change rarely but not never.
func NewRedisStore(addr string) *RedisStore {
	return &RedisStore{
		client: redis.NewClient(&redis.Options{Addr: addr}),
		ttl:    time.Hour,
	}
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool) {
	value, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	return value, true
}

func (s *RedisStore) Set(ctx context.Context, key string, value []byte) error {
	return s.client.Set(ctx, key, value, s.ttl).Err()
}

// CachedEngine wraps an engine with content-hash memoization of the
// deterministic projection. Monte Carlo runs are never cached; their
// value is in fresh draws when callers choose their own seeds.
type CachedEngine struct {
	engine *calculation.Engine
	store  Store
}

// NewCachedEngine wraps the engine with the given store.
func NewCachedEngine(engine *calculation.Engine, store Store) *CachedEngine {
	return &CachedEngine{engine: engine, store: store}
}

// CalculateRetirementProjection returns a cached result when the profile
// hash matches a prior run, otherwise computes and stores. Cache
// failures degrade to recomputation, never to an error.
func (c *CachedEngine) CalculateRetirementProjection(ctx context.Context, p *domain.FinancialProfile) (*domain.SimulationResult, error) {
	key, err := ProfileKey(p)
	if err == nil {
		if payload, ok := c.store.Get(ctx, key); ok {
			var cached domain.SimulationResult
			if err := json.Unmarshal(payload, &cached); err == nil {
				return &cached, nil
			}
		}
	}

	result, err := c.engine.CalculateRetirementProjection(p)
	if err != nil {
		return nil, err
	}

	if key != "" {
		if payload, err := json.Marshal(result); err == nil {
			_ = c.store.Set(ctx, key, payload)
		}
	}
	return result, nil
}
