package middlewares_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/dimasprayoga/warung-pos/middlewares"
)

func setupLimitedRouter(limiter gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(limiter)
	router.POST("/login", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": true})
	})
	return router
}

func countStatuses(router *gin.Engine, n int) (allowed, blocked int) {
	for i := 0; i < n; i++ {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		switch w.Code {
		case http.StatusOK:
			allowed++
		case http.StatusTooManyRequests:
			blocked++
		}
	}
	return allowed, blocked
}

func TestStrictRateLimiterBlocksRepeatedAttempts(t *testing.T) {
	router := setupLimitedRouter(middlewares.NewStrictRateLimiter())

	// Limiter harus dibagi antar request: burst 5, sisanya ditolak
	allowed, blocked := countStatuses(router, 100)
	assert.Equal(t, 5, allowed)
	assert.Equal(t, 95, blocked)
}

func TestGlobalRateLimiterAllowsWithinBudget(t *testing.T) {
	rl := middlewares.NewRateLimiter(50, 1)
	router := setupLimitedRouter(rl.RateLimit())

	allowed, blocked := countStatuses(router, 20)
	assert.Equal(t, 20, allowed)
	assert.Equal(t, 0, blocked)
}

func TestGlobalRateLimiterBlocksBurstOverLimit(t *testing.T) {
	rl := middlewares.NewRateLimiter(10, 1)
	router := setupLimitedRouter(rl.RateLimit())

	// Bucket bisa terisi sedikit selama loop, jadi batasnya longgar
	allowed, blocked := countStatuses(router, 30)
	assert.GreaterOrEqual(t, allowed, 10)
	assert.LessOrEqual(t, allowed, 15)
	assert.Equal(t, 30, allowed+blocked)
}
