package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"

	"github.com/forkful/backend/internal/middleware"
)

func rateLimitTestRouter(rl *middleware.RateLimiter, userID *uuid.UUID) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/limited",
		func(c *gin.Context) {
			if userID != nil {
				c.Set("user_id", *userID)
			}
			c.Next()
		},
		rl.RateLimitMiddleware(),
		func(c *gin.Context) {
			c.Status(http.StatusCreated)
		},
	)
	return router
}

func TestRateLimitMiddlewareRequiresUser(t *testing.T) {
	rl := middleware.NewRecipeCreationRateLimiter(redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"}))
	router := rateLimitTestRouter(rl, nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/limited", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRateLimitMiddlewareFailsOpen(t *testing.T) {
	// An unreachable Redis must degrade to "no limiting", not block the
	// endpoint.
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	rl := middleware.NewRateLimiter(client, time.Hour, 20, "rate_limit:test")
	userID := uuid.New()
	router := rateLimitTestRouter(rl, &userID)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/limited", nil))
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "rate limit check failed", w.Header().Get("X-RateLimit-Error"))
}
