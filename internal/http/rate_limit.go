package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

const (
	limiterIdleTimeout   = time.Hour
	limiterSweepInterval = 5 * time.Minute
)

// rateLimiterStore holds one token bucket per client IP.
type rateLimiterStore struct {
	mu        sync.Mutex
	limiters  map[string]*rateLimiterEntry
	rps       float64
	burst     int
	lastSweep time.Time
	now       func() time.Time
}

type rateLimiterEntry struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// RateLimitMiddleware enforces a per-client-IP token bucket on the status server.
// Rejected requests get 429 with a Retry-After header.
func RateLimitMiddleware(rps float64, burst int, logger *slog.Logger) gin.HandlerFunc {
	store := &rateLimiterStore{
		limiters: make(map[string]*rateLimiterEntry),
		rps:      rps,
		burst:    burst,
		now:      time.Now,
	}
	store.lastSweep = store.now()

	return func(c *gin.Context) {
		limiter := store.getLimiter(c.ClientIP())

		if !limiter.Allow() {
			reservation := limiter.Reserve()
			retryAfter := int(reservation.Delay().Seconds()) + 1
			reservation.Cancel()

			logger.Debug("rate limit exceeded",
				slog.String("client_ip", c.ClientIP()),
				slog.Int("retry_after", retryAfter))

			c.Header("Retry-After", fmt.Sprintf("%d", retryAfter))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":   "rate_limit_exceeded",
				"message": "Too many requests. Please retry after the specified delay.",
			})
			return
		}

		c.Next()
	}
}

// getLimiter returns the limiter for key, dropping limiters idle for an hour at most
// every sweep interval.
func (s *rateLimiterStore) getLimiter(key string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if now.Sub(s.lastSweep) >= limiterSweepInterval {
		for k, entry := range s.limiters {
			if now.Sub(entry.lastAccess) >= limiterIdleTimeout {
				delete(s.limiters, k)
			}
		}
		s.lastSweep = now
	}

	entry, ok := s.limiters[key]
	if !ok {
		entry = &rateLimiterEntry{limiter: rate.NewLimiter(rate.Limit(s.rps), s.burst)}
		s.limiters[key] = entry
	}
	entry.lastAccess = now
	return entry.limiter
}
