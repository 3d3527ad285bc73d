package api

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/hearthforum/hearth/internal/auth"
)

// writeLimiter throttles mutating requests per caller. Keyed by user id when
// a session exists, by client IP otherwise. Idle entries are evicted so the
// map does not grow with every visitor ever seen.
type writeLimiter struct {
	mu       sync.Mutex
	limiters map[string]*limiterEntry
	limit    rate.Limit
	burst    int
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newWriteLimiter(perSecond float64, burst int) *writeLimiter {
	wl := &writeLimiter{
		limiters: make(map[string]*limiterEntry),
		limit:    rate.Limit(perSecond),
		burst:    burst,
	}
	go wl.evictLoop()
	return wl
}

func (wl *writeLimiter) allow(key string) bool {
	wl.mu.Lock()
	defer wl.mu.Unlock()

	entry, ok := wl.limiters[key]
	if !ok {
		entry = &limiterEntry{limiter: rate.NewLimiter(wl.limit, wl.burst)}
		wl.limiters[key] = entry
	}
	entry.lastSeen = time.Now()
	return entry.limiter.Allow()
}

func (wl *writeLimiter) evictLoop() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		cutoff := time.Now().Add(-10 * time.Minute)
		wl.mu.Lock()
		for key, entry := range wl.limiters {
			if entry.lastSeen.Before(cutoff) {
				delete(wl.limiters, key)
			}
		}
		wl.mu.Unlock()
	}
}

// middleware rejects over-limit writes with 429.
func (wl *writeLimiter) middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := auth.FromContext(c).UserID
		if key == "" {
			key = "ip:" + c.ClientIP()
		}
		if !wl.allow(key) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}
