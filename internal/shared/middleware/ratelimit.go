package middleware

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// DefaultRateWindow is the sliding window used when callers configure only a
// request count.
const DefaultRateWindow = time.Minute

// RateLimiter provides sliding-window rate limiting backed by Redis.
type RateLimiter struct {
	redis  redis.UniversalClient
	limit  int64
	window time.Duration
}

// NewRateLimiter creates a new rate limiter allowing limit requests per window.
func NewRateLimiter(client redis.UniversalClient, limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		redis:  client,
		limit:  int64(limit),
		window: window,
	}
}

var slidingWindowScript = redis.NewScript(`
	local key = KEYS[1]
	local window_start = tonumber(ARGV[1])
	local now = tonumber(ARGV[2])
	local limit = tonumber(ARGV[3])
	local expiry = tonumber(ARGV[4])

	redis.call('ZREMRANGEBYSCORE', key, '-inf', window_start)

	local current = redis.call('ZCARD', key)
	if current >= limit then
		return 0
	end

	redis.call('ZADD', key, now, now)
	redis.call('EXPIRE', key, expiry)
	return 1
`)

// Allow reports whether a request identified by id is within the limit.
func (r *RateLimiter) Allow(ctx context.Context, id string) (bool, error) {
	now := time.Now().UnixNano()
	windowStart := now - r.window.Nanoseconds()
	expiry := int64(r.window.Seconds()) + 1

	key := fmt.Sprintf("ratelimit:%s", id)
	allowed, err := slidingWindowScript.Run(ctx, r.redis, []string{key},
		windowStart, now, r.limit, expiry).Int64()
	if err != nil {
		return false, err
	}
	return allowed == 1, nil
}

// RateLimit returns a middleware that limits requests per client IP. When
// Redis is unavailable the request is let through; issuing a grant is cheap
// and idempotent, so availability wins over strictness here.
func RateLimit(limiter *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		allowed, err := limiter.Allow(c.Request.Context(), c.ClientIP())
		if err != nil {
			c.Next()
			return
		}
		if !allowed {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"error":   "too many requests",
				"code":    "RATE_LIMITED",
			})
			return
		}
		c.Next()
	}
}
