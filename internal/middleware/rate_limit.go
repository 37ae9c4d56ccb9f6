package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// RateLimiter enforces a fixed-window request quota per authenticated
// user. Windows are keyed by their start timestamp, so every instance
// sharing the Redis database counts against the same bucket.
type RateLimiter struct {
	client *redis.Client
	window time.Duration
	limit  int
	prefix string
}

func NewRateLimiter(client *redis.Client, window time.Duration, limit int, prefix string) *RateLimiter {
	return &RateLimiter{
		client: client,
		window: window,
		limit:  limit,
		prefix: prefix,
	}
}

// NewRecipeCreationRateLimiter limits how often a user can publish new
// recipes.
func NewRecipeCreationRateLimiter(client *redis.Client) *RateLimiter {
	return NewRateLimiter(client, time.Hour, 20, "rate_limit:recipe_creation")
}

// RateLimitMiddleware rejects requests over the quota with 429. When the
// counter cannot be reached the request proceeds: rate limiting degrades,
// the endpoint does not.
func (rl *RateLimiter) RateLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("user_id")
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
			c.Abort()
			return
		}

		count, reset, err := rl.take(c.Request.Context(), fmt.Sprintf("%v", userID))
		if err != nil {
			c.Header("X-RateLimit-Error", "rate limit check failed")
			c.Next()
			return
		}

		remaining := rl.limit - count
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(rl.limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(reset.Unix(), 10))

		if count > rl.limit {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":       "rate limit exceeded",
				"retry_after": int(time.Until(reset).Seconds()),
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// take increments the caller's counter for the current window and returns
// the new count together with the moment the window rolls over. Increment
// and expiry run in one pipeline so a bucket never outlives its window.
func (rl *RateLimiter) take(ctx context.Context, userID string) (int, time.Time, error) {
	windowStart := time.Now().Truncate(rl.window)
	key := fmt.Sprintf("%s:%s:%d", rl.prefix, userID, windowStart.Unix())

	pipe := rl.client.Pipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, rl.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, time.Time{}, err
	}

	return int(incr.Val()), windowStart.Add(rl.window), nil
}
