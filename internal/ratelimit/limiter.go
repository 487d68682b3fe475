// Package ratelimit throttles unauthenticated credential endpoints per client.
package ratelimit

import (
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	lru "github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/time/rate"

	"github.com/spec-kit/resume-service/internal/config"
	"github.com/spec-kit/resume-service/internal/observability"
	apperrors "github.com/spec-kit/resume-service/pkg/util/errorutil"
)

// KeyedLimiter holds one token bucket per key. Idle keys are evicted after the
// configured TTL, and the number of tracked keys is bounded.
type KeyedLimiter struct {
	mu      sync.Mutex
	buckets *lru.LRU[string, *rate.Limiter]
	limit   rate.Limit
	burst   int
}

// NewKeyedLimiter builds a limiter from config.
func NewKeyedLimiter(cfg config.RateLimitConfig) *KeyedLimiter {
	perMinute := cfg.PerMinute
	if perMinute <= 0 {
		perMinute = 10
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}
	size := cfg.MaxClients
	if size <= 0 {
		size = 10000
	}
	ttl := cfg.IdleTTL
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &KeyedLimiter{
		buckets: lru.NewLRU[string, *rate.Limiter](size, nil, ttl),
		limit:   rate.Limit(float64(perMinute) / 60),
		burst:   burst,
	}
}

// Allow consumes one token for key.
func (l *KeyedLimiter) Allow(key string) bool {
	l.mu.Lock()
	lim, ok := l.buckets.Get(key)
	if !ok {
		lim = rate.NewLimiter(l.limit, l.burst)
	}
	// re-adding refreshes the idle TTL
	l.buckets.Add(key, lim)
	l.mu.Unlock()
	return lim.Allow()
}

// Middleware rejects requests over the limit with 429, keyed by the matched
// route pattern and client IP. Routing ignores case and trailing slashes, so
// the raw path would hand every spelling its own bucket.
func (l *KeyedLimiter) Middleware(metrics *observability.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := c.IP()
		if key == "" {
			key = "unknown"
		}
		route := c.Route().Path
		if !l.Allow(route + "|" + key) {
			metrics.RecordRateLimited(route)
			return apperrors.NewRateLimited()
		}
		return c.Next()
	}
}
