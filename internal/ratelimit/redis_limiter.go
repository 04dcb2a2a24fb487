package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/xavierspacelix/jamming/pkg/log"
	"github.com/xavierspacelix/jamming/pkg/response"
)

// RedisLimiter is a sliding-window rate limiter backed by a redis sorted
// set per client key: members are request timestamps, the window is
// trimmed on every check.
type RedisLimiter struct {
	client *redis.Client
	prefix string
	limit  int
	window time.Duration
}

// NewRedisLimiter creates a limiter allowing limit requests per window.
func NewRedisLimiter(client *redis.Client, prefix string, limit int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{
		client: client,
		prefix: prefix,
		limit:  limit,
		window: window,
	}
}

// Allow reports whether the key may perform another request now.
func (r *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	now := time.Now()
	windowStart := now.Add(-r.window)
	redisKey := fmt.Sprintf("%s:%s", r.prefix, key)

	pipe := r.client.TxPipeline()
	pipe.ZRemRangeByScore(ctx, redisKey, "0", fmt.Sprintf("%d", windowStart.UnixNano()))
	count := pipe.ZCard(ctx, redisKey)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("rate limit check failed: %w", err)
	}

	if count.Val() >= int64(r.limit) {
		return false, nil
	}

	pipe = r.client.TxPipeline()
	pipe.ZAdd(ctx, redisKey, redis.Z{
		Score:  float64(now.UnixNano()),
		Member: fmt.Sprintf("%d-%s", now.UnixNano(), uuid.New().String()),
	})
	pipe.Expire(ctx, redisKey, r.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("rate limit record failed: %w", err)
	}

	return true, nil
}

// Middleware returns a gin middleware limiting by client IP. Redis errors
// fail open: a broken limiter must not take mutations down with it.
func (r *RedisLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		allowed, err := r.Allow(ctx, c.ClientIP())
		if err != nil {
			l := log.Ctx(ctx)
			l.Warn().Err(err).Msg("rate limiter unavailable, allowing request")
			c.Next()
			return
		}

		if !allowed {
			response.TooManyRequests(c, "too many requests, slow down")
			c.Abort()
			return
		}

		c.Next()
	}
}
