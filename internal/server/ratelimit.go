package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateLimitInfo describes the outcome of a single rate-limit check.
type RateLimitInfo struct {
	Limit     int
	Remaining int
	ResetAt   time.Time
	Allowed   bool
}

// RateLimiter is a Redis-backed sliding-window limiter, keyed per client, so
// one noisy caller can't starve the query service for everyone else.
type RateLimiter struct {
	client *redis.Client
	limit  int
	window time.Duration
	prefix string
}

// NewRateLimiter builds a RateLimiter allowing limit requests per window,
// sharing the Redis connection the query cache uses.
func NewRateLimiter(client *redis.Client, limit int, window time.Duration) (*RateLimiter, error) {
	if limit <= 0 {
		return nil, errors.New("rate limit must be greater than 0")
	}
	if window <= 0 {
		return nil, errors.New("rate limit window must be greater than 0")
	}
	return &RateLimiter{client: client, limit: limit, window: window, prefix: "mq:ratelimit:"}, nil
}

var rateLimitScript = redis.NewScript(`
	local key = KEYS[1]
	local now = tonumber(ARGV[1])
	local window_start = tonumber(ARGV[2])
	local limit = tonumber(ARGV[3])
	local window = tonumber(ARGV[4])

	redis.call('ZREMRANGEBYSCORE', key, 0, window_start)
	local current = redis.call('ZCARD', key)

	if current < limit then
		redis.call('ZADD', key, now, now)
		redis.call('EXPIRE', key, window)
		return {1, current + 1}
	else
		return {0, current}
	end
`)

// Allow checks whether a request for key (typically a client ID or remote
// address) fits within the current sliding window.
func (r *RateLimiter) Allow(ctx context.Context, key string) (*RateLimitInfo, error) {
	redisKey := r.prefix + key
	now := time.Now()
	windowStart := now.Add(-r.window)

	result, err := rateLimitScript.Run(ctx, r.client, []string{redisKey},
		now.UnixNano(), windowStart.UnixNano(), r.limit, int(r.window.Seconds()),
	).Result()
	if err != nil {
		return nil, fmt.Errorf("rate limit check failed: %w", err)
	}

	resultSlice, ok := result.([]interface{})
	if !ok || len(resultSlice) != 2 {
		return nil, errors.New("unexpected rate limit script result")
	}
	allowed, _ := resultSlice[0].(int64)
	count, _ := resultSlice[1].(int64)

	remaining := r.limit - int(count)
	if remaining < 0 {
		remaining = 0
	}
	return &RateLimitInfo{Limit: r.limit, Remaining: remaining, ResetAt: now.Add(r.window), Allowed: allowed == 1}, nil
}

// Middleware rejects requests over the configured rate with 429, keying each
// caller by its authenticated client ID, or its remote address when auth is
// disabled.
func (r *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		key := ClientID(req.Context())
		if key == "" {
			key = req.RemoteAddr
		}

		info, err := r.Allow(req.Context(), key)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "rate limit check failed: "+err.Error())
			return
		}
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
		if !info.Allowed {
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, req)
	})
}
