package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"saham-assistant/internal/application/dto"
	"saham-assistant/internal/infrastructure/config"
	"saham-assistant/internal/infrastructure/logger"
)

// RateLimitMiddleware keeps one token bucket per client IP.
type RateLimitMiddleware struct {
	config *config.RateLimitConfig
	logger logger.Logger

	mu       sync.Mutex
	limiters map[string]*clientLimiter
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimitMiddleware creates the rate limit middleware and starts the
// idle-bucket sweeper.
func NewRateLimitMiddleware(cfg *config.RateLimitConfig, log logger.Logger) *RateLimitMiddleware {
	m := &RateLimitMiddleware{
		config:   cfg,
		logger:   log,
		limiters: make(map[string]*clientLimiter),
	}
	go m.sweep()
	return m
}

// RateLimit enforces the configured per-client rate.
func (m *RateLimitMiddleware) RateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !m.limiterFor(c.ClientIP()).Allow() {
			m.logger.WithField("client_ip", c.ClientIP()).Warn("rate limit exceeded")
			c.AbortWithStatusJSON(http.StatusTooManyRequests,
				dto.ErrorResponse("RATE_LIMITED", "Too many requests", nil))
			return
		}
		c.Next()
	}
}

func (m *RateLimitMiddleware) limiterFor(clientIP string) *rate.Limiter {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.limiters[clientIP]
	if !ok {
		perSecond := rate.Limit(float64(m.config.RequestsPerMinute) / 60.0)
		entry = &clientLimiter{limiter: rate.NewLimiter(perSecond, m.config.Burst)}
		m.limiters[clientIP] = entry
	}
	entry.lastSeen = time.Now()
	return entry.limiter
}

// sweep drops buckets idle for more than ten minutes.
func (m *RateLimitMiddleware) sweep() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		cutoff := time.Now().Add(-10 * time.Minute)
		m.mu.Lock()
		for ip, entry := range m.limiters {
			if entry.lastSeen.Before(cutoff) {
				delete(m.limiters, ip)
			}
		}
		m.mu.Unlock()
	}
}
