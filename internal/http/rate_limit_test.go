package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rateLimitedRouter(rps float64, burst int) *gin.Engine {
	router := gin.New()
	router.Use(RateLimitMiddleware(rps, burst, testLogger()))
	router.GET("/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	return router
}

func requestFrom(router http.Handler, remoteAddr string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	req.RemoteAddr = remoteAddr
	router.ServeHTTP(w, req)
	return w
}

func TestRateLimitMiddleware_AllowsRequestsWithinLimit(t *testing.T) {
	router := rateLimitedRouter(10, 20)

	for range 5 {
		assert.Equal(t, http.StatusOK, requestFrom(router, "10.0.0.1:1234").Code)
	}
}

func TestRateLimitMiddleware_BlocksRequestsExceedingLimit(t *testing.T) {
	router := rateLimitedRouter(0.001, 2)

	assert.Equal(t, http.StatusOK, requestFrom(router, "10.0.0.1:1234").Code)
	assert.Equal(t, http.StatusOK, requestFrom(router, "10.0.0.1:1234").Code)

	w := requestFrom(router, "10.0.0.1:1234")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	assert.Contains(t, w.Body.String(), "rate_limit_exceeded")
}

func TestRateLimitMiddleware_IndependentPerClient(t *testing.T) {
	router := rateLimitedRouter(0.001, 1)

	assert.Equal(t, http.StatusOK, requestFrom(router, "10.0.0.1:1234").Code)
	assert.Equal(t, http.StatusTooManyRequests, requestFrom(router, "10.0.0.1:1234").Code)
	assert.Equal(t, http.StatusOK, requestFrom(router, "10.0.0.2:1234").Code)
}

func TestRateLimiterStore_SweepsIdleLimiters(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	store := &rateLimiterStore{
		limiters:  make(map[string]*rateLimiterEntry),
		rps:       1,
		burst:     1,
		lastSweep: now,
		now:       func() time.Time { return now },
	}

	store.getLimiter("a")
	now = now.Add(2 * time.Hour)
	store.getLimiter("b")

	require.Len(t, store.limiters, 1)
	_, ok := store.limiters["b"]
	assert.True(t, ok)
}
