package server

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mistql-lang/mistql-go/internal/logging"
)

// QueryCache remembers, per query source, whether a query was seen recently
// and how long its last evaluation took. The compiled AST itself is never
// shared across requests (ast.Node carries byte offsets into its own source
// string and isn't safe to reuse against a different parse), so the cache
// tracks evaluation statistics rather than parse trees.
type QueryCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewQueryCache connects to a Redis instance reachable at url (an instance
// started by miniredis in tests, or a real server in production).
func NewQueryCache(url string, ttl time.Duration) (*QueryCache, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return &QueryCache{rdb: redis.NewClient(opts), ttl: ttl}, nil
}

// Close releases the underlying Redis connection pool.
func (c *QueryCache) Close() error {
	return c.rdb.Close()
}

// Client exposes the underlying Redis client so other Redis-backed features
// (the rate limiter) can share one connection pool instead of opening
// another.
func (c *QueryCache) Client() *redis.Client {
	return c.rdb
}

func queryKey(source string) string {
	sum := sha256.Sum256([]byte(source))
	return "mq:query:" + hex.EncodeToString(sum[:])
}

// RecordHit increments the hit counter for a query's source text and resets
// its TTL, so frequently issued queries can be told apart from one-offs.
func (c *QueryCache) RecordHit(ctx context.Context, source string) {
	key := queryKey(source)
	if err := c.rdb.Incr(ctx, key).Err(); err != nil {
		logging.Get().Debugw("query cache increment failed", "error", err)
		return
	}
	c.rdb.Expire(ctx, key, c.ttl)
}

// HitCount returns how many times a query's source text has been recorded,
// or 0 if it has never been seen (or has expired out of the cache).
func (c *QueryCache) HitCount(ctx context.Context, source string) int64 {
	n, err := c.rdb.Get(ctx, queryKey(source)).Int64()
	if err != nil {
		return 0
	}
	return n
}
