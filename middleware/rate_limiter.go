package middleware

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"shopswift-api/apperrors"
)

// RateLimiter keeps one token bucket per client IP. Entries idle longer
// than staleAfter are dropped by a background sweep so the map does not
// grow without bound.
type RateLimiter struct {
	ips   map[string]*ipLimiter
	mu    sync.Mutex
	rate  rate.Limit
	burst int
}

type ipLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

const staleAfter = 10 * time.Minute

// NewRateLimiter creates a per-IP limiter allowing r events with the
// given burst, and starts its cleanup loop.
func NewRateLimiter(r rate.Limit, burst int) *RateLimiter {
	rl := &RateLimiter{
		ips:   make(map[string]*ipLimiter),
		rate:  r,
		burst: burst,
	}
	go rl.cleanup()
	return rl
}

func (rl *RateLimiter) get(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	entry, exists := rl.ips[ip]
	if !exists {
		entry = &ipLimiter{limiter: rate.NewLimiter(rl.rate, rl.burst)}
		rl.ips[ip] = entry
	}
	entry.lastSeen = time.Now()
	return entry.limiter
}

func (rl *RateLimiter) cleanup() {
	for range time.Tick(time.Minute) {
		rl.mu.Lock()
		for ip, entry := range rl.ips {
			if time.Since(entry.lastSeen) > staleAfter {
				delete(rl.ips, ip)
			}
		}
		rl.mu.Unlock()
	}
}

// Middleware rejects requests over the per-IP budget with 429.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.get(c.ClientIP()).Allow() {
			abort(c, apperrors.New(429, "Too many requests. Please try again later"))
			return
		}
		c.Next()
	}
}

// RateLimit builds a middleware allowing n requests per window per IP.
// n and burst are clamped to at least 1 so a zeroed config cannot produce
// a divide-by-zero interval or a bucket that rejects everything.
func RateLimit(n int, window time.Duration, burst int) gin.HandlerFunc {
	if n < 1 {
		n = 1
	}
	if burst < 1 {
		burst = 1
	}
	return NewRateLimiter(rate.Every(window/time.Duration(n)), burst).Middleware()
}
