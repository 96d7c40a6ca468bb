// Package middleware provides HTTP middleware for the API server.
// ratelimit.go implements a per-IP rate limiter using a sliding window
// counter stored in memory. Designed for auth and contact form endpoints.
package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
)

// sweepInterval bounds how often the entry map is pruned.
const sweepInterval = time.Minute

// rateLimitEntry tracks request counts for a single IP within a time window.
type rateLimitEntry struct {
	count       int
	windowStart time.Time
}

// ipLimiter holds the per-IP counters for one rate-limited route. Expired
// entries are pruned inline during requests, so the limiter needs no
// background goroutine and dies with the route.
type ipLimiter struct {
	mu        sync.Mutex
	max       int
	window    time.Duration
	entries   map[string]*rateLimitEntry
	lastSweep time.Time
}

func newIPLimiter(max int, window time.Duration) *ipLimiter {
	return &ipLimiter{
		max:     max,
		window:  window,
		entries: make(map[string]*rateLimitEntry),
	}
}

// allow records one request from ip at the given time and reports whether
// it fits inside the window.
func (l *ipLimiter) allow(ip string, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastSweep) >= sweepInterval {
		l.sweepLocked(now)
	}

	entry, exists := l.entries[ip]
	if !exists || now.Sub(entry.windowStart) > l.window {
		l.entries[ip] = &rateLimitEntry{count: 1, windowStart: now}
		return true
	}

	entry.count++
	return entry.count <= l.max
}

// sweepLocked drops entries whose window is long gone. Caller holds mu.
func (l *ipLimiter) sweepLocked(now time.Time) {
	for ip, entry := range l.entries {
		if now.Sub(entry.windowStart) > l.window*2 {
			delete(l.entries, ip)
		}
	}
	l.lastSweep = now
}

// RateLimit returns middleware that limits requests per IP to maxRequests
// within the given window duration. Returns 429 when exceeded.
func RateLimit(maxRequests int, window time.Duration) echo.MiddlewareFunc {
	limiter := newIPLimiter(maxRequests, window)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !limiter.allow(c.RealIP(), time.Now()) {
				return c.JSON(http.StatusTooManyRequests, map[string]string{
					"error":   "Too Many Requests",
					"message": "Rate limit exceeded. Please try again later.",
				})
			}
			return next(c)
		}
	}
}
