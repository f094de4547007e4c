package hiscores

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/openmohaa/hiscores-dash/internal/models"
)

// SnapshotCache holds the latest response per player for a short TTL so
// several sessions watching the same player share one upstream request.
// It is a freshness cache, not a history store.
type SnapshotCache interface {
	Get(ctx context.Context, player string) (*models.Snapshot, bool, error)
	Set(ctx context.Context, player string, snap *models.Snapshot) error
}

func cacheKey(player string) string {
	return "hiscores:snapshot:" + strings.ToLower(strings.TrimSpace(player))
}

// MemoryCache is an in-process SnapshotCache backed by an expirable LRU.
type MemoryCache struct {
	lru *expirable.LRU[string, *models.Snapshot]
}

// NewMemoryCache creates a cache holding at most size players for ttl.
func NewMemoryCache(size int, ttl time.Duration) *MemoryCache {
	if size <= 0 {
		size = 256
	}
	return &MemoryCache{
		lru: expirable.NewLRU[string, *models.Snapshot](size, nil, ttl),
	}
}

func (c *MemoryCache) Get(_ context.Context, player string) (*models.Snapshot, bool, error) {
	snap, ok := c.lru.Get(cacheKey(player))
	return snap, ok, nil
}

func (c *MemoryCache) Set(_ context.Context, player string, snap *models.Snapshot) error {
	c.lru.Add(cacheKey(player), snap)
	return nil
}

// RedisStore is the subset of the Redis client the cache uses.
type RedisStore interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Ping(ctx context.Context) *redis.StatusCmd
}

// RedisCache is a SnapshotCache shared between dashboard replicas.
type RedisCache struct {
	client RedisStore
	ttl    time.Duration
}

// NewRedisCache creates a Redis-backed cache with the given TTL.
func NewRedisCache(client RedisStore, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

func (c *RedisCache) Get(ctx context.Context, player string) (*models.Snapshot, bool, error) {
	raw, err := c.client.Get(ctx, cacheKey(player)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var snap models.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, false, err
	}
	return &snap, true, nil
}

func (c *RedisCache) Set(ctx context.Context, player string, snap *models.Snapshot) error {
	raw, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, cacheKey(player), raw, c.ttl).Err()
}

// Ping checks the Redis connection for readiness probes.
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// CachedFetcher consults a SnapshotCache before the upstream Fetcher. Cache
// failures are logged and bypassed; they never fail a fetch.
type CachedFetcher struct {
	next   Fetcher
	cache  SnapshotCache
	logger *zap.SugaredLogger
}

// NewCachedFetcher wraps next with cache.
func NewCachedFetcher(next Fetcher, cache SnapshotCache, logger *zap.Logger) *CachedFetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedFetcher{next: next, cache: cache, logger: logger.Sugar()}
}

type bypassKey struct{}

// WithBypassCache marks ctx so CachedFetcher skips the cache read and goes
// upstream. The fresh result is still written back.
func WithBypassCache(ctx context.Context) context.Context {
	return context.WithValue(ctx, bypassKey{}, true)
}

// BypassesCache reports whether ctx was marked by WithBypassCache.
func BypassesCache(ctx context.Context) bool {
	v, _ := ctx.Value(bypassKey{}).(bool)
	return v
}

func (f *CachedFetcher) Fetch(ctx context.Context, player string) (*models.Snapshot, error) {
	var (
		snap *models.Snapshot
		ok   bool
		err  error
	)
	if !BypassesCache(ctx) {
		snap, ok, err = f.cache.Get(ctx, player)
		if err != nil {
			f.logger.Warnw("Snapshot cache read failed", "player", player, "error", err)
		}
	}
	if ok {
		if cerr := contextError(ctx); cerr != nil {
			return nil, cerr
		}
		cacheHits.Inc()
		return snap, nil
	}
	cacheMisses.Inc()

	snap, err = f.next.Fetch(ctx, player)
	if err != nil {
		return nil, err
	}

	if err := f.cache.Set(ctx, player, snap); err != nil {
		f.logger.Warnw("Snapshot cache write failed", "player", player, "error", err)
	}
	return snap, nil
}
