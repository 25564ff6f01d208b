package cache

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/redis/go-redis/v9"
)

// TTL classes per query cost: cheap lookups expire quickly, expensive and
// stable queries tolerate longer staleness. The system is read-only, so the
// TTL is the only staleness bound; there is no explicit invalidation.
const (
	// TTLLookup covers list and lookup-by-id queries.
	TTLLookup = 180 * time.Second

	// TTLSpatial covers multi-row spatial and activity-filtered queries.
	TTLSpatial = 300 * time.Second

	// TTLTaxonomy covers the full activity taxonomy listing.
	TTLTaxonomy = 600 * time.Second
)

// Client is the subset of the go-redis API the cache layer depends on.
// *redis.Client satisfies it; tests substitute a fake to simulate outages.
type Client interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// Cache is a fail-open cache-aside accessor. Every failure of the underlying
// Redis client or of the value codec degrades to a miss on read and a no-op
// on write; cache trouble never fails a query.
type Cache struct {
	client  Client
	logger  *slog.Logger
	metrics *Metrics
}

// New creates a Cache on top of the given Redis client. A nil logger falls
// back to slog.Default(); metrics may be nil to disable instrumentation.
func New(client Client, logger *slog.Logger, metrics *Metrics) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{
		client:  client,
		logger:  logger,
		metrics: metrics,
	}
}

// Get reads and decodes the entry at key into dest. Returns true only on a
// decodable hit. A Redis error or a corrupt entry counts as a miss.
func (c *Cache) Get(ctx context.Context, key string, dest any) bool {
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			c.metrics.observeMiss()
			recordStatus(ctx, "miss")
			return false
		}
		c.logger.WarnContext(ctx, "cache get failed", "key", key, "error", err)
		c.metrics.observeError()
		recordStatus(ctx, "miss")
		return false
	}

	if err := cbor.Unmarshal(raw, dest); err != nil {
		c.logger.WarnContext(ctx, "cache entry decode failed", "key", key, "error", err)
		c.metrics.observeError()
		recordStatus(ctx, "miss")
		return false
	}

	c.metrics.observeHit()
	recordStatus(ctx, "hit")
	return true
}

// Set encodes value and writes it at key with the given TTL. Failures are
// logged and swallowed; the entry simply is not cached.
func (c *Cache) Set(ctx context.Context, key string, value any, ttl time.Duration) {
	raw, err := cbor.Marshal(value)
	if err != nil {
		c.logger.WarnContext(ctx, "cache value encode failed", "key", key, "error", err)
		c.metrics.observeError()
		return
	}

	if err := c.client.Set(ctx, key, raw, ttl).Err(); err != nil {
		c.logger.WarnContext(ctx, "cache set failed", "key", key, "error", err)
		c.metrics.observeError()
	}
}

// Delete removes the entry at key. Failures are logged and swallowed.
func (c *Cache) Delete(ctx context.Context, key string) {
	if err := c.client.Del(ctx, key).Err(); err != nil {
		c.logger.WarnContext(ctx, "cache delete failed", "key", key, "error", err)
		c.metrics.observeError()
	}
}
