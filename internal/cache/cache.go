package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
)

var (
	cacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wishwell_cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"key_kind"},
	)
	cacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wishwell_cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"key_kind"},
	)
	cacheErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wishwell_cache_errors_total",
			Help: "Total number of cache operation errors",
		},
		[]string{"operation"},
	)
	cacheInvalidations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wishwell_cache_invalidations_total",
			Help: "Total number of cache invalidations",
		},
		[]string{"key_kind"},
	)
)

// Cache is a read-through JSON cache over Redis. Every operation degrades to
// a no-op when Redis misbehaves: errors are counted and logged, never
// returned, so a cache outage costs latency instead of availability. Each
// call is bounded by opTimeout independently of the caller's deadline.
type Cache struct {
	client    *redis.Client
	logger    *slog.Logger
	opTimeout time.Duration
}

// New creates a cache over the given Redis client. opTimeout bounds every
// Redis round trip.
func New(client *redis.Client, logger *slog.Logger, opTimeout time.Duration) *Cache {
	return &Cache{
		client:    client,
		logger:    logger,
		opTimeout: opTimeout,
	}
}

// Get loads the value under key into dst. It returns true only on a hit that
// unmarshals cleanly; corrupt entries are dropped and treated as a miss.
func (c *Cache) Get(ctx context.Context, key string, dst any) bool {
	ctx, cancel := context.WithTimeout(ctx, c.opTimeout)
	defer cancel()

	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			cacheMisses.WithLabelValues(keyKind(key)).Inc()
			return false
		}
		cacheErrors.WithLabelValues("get").Inc()
		c.logger.WarnContext(ctx, "cache get failed", "key", key, "error", err)
		return false
	}

	if err := json.Unmarshal(data, dst); err != nil {
		cacheErrors.WithLabelValues("get").Inc()
		c.logger.WarnContext(ctx, "cache entry corrupt, dropping", "key", key, "error", err)
		c.Remove(ctx, key)
		return false
	}

	cacheHits.WithLabelValues(keyKind(key)).Inc()
	return true
}

// Set stores v under key with the given TTL.
func (c *Cache) Set(ctx context.Context, key string, v any, ttl time.Duration) {
	data, err := json.Marshal(v)
	if err != nil {
		cacheErrors.WithLabelValues("set").Inc()
		c.logger.WarnContext(ctx, "cache marshal failed", "key", key, "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(ctx, c.opTimeout)
	defer cancel()

	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		cacheErrors.WithLabelValues("set").Inc()
		c.logger.WarnContext(ctx, "cache set failed", "key", key, "error", err)
	}
}

// Remove deletes the given keys. Failed invalidations are logged and left to
// expire by TTL.
func (c *Cache) Remove(ctx context.Context, keys ...string) {
	if len(keys) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, c.opTimeout)
	defer cancel()

	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		cacheErrors.WithLabelValues("remove").Inc()
		c.logger.WarnContext(ctx, "cache invalidation failed, entries expire by TTL", "keys", keys, "error", err)
		return
	}

	for _, key := range keys {
		cacheInvalidations.WithLabelValues(keyKind(key)).Inc()
	}
}
