package middleware

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// RateLimiter caps how many requests a caller may make inside a fixed
// window. Counters live in process memory, so multi-instance deployments
// get a limit per instance.
type RateLimiter struct {
	mu      sync.Mutex
	windows map[string]*requestWindow
	limit   int
	period  time.Duration
}

type requestWindow struct {
	start time.Time
	count int
}

func NewRateLimiter(limit int, period time.Duration) *RateLimiter {
	l := &RateLimiter{
		windows: make(map[string]*requestWindow),
		limit:   limit,
		period:  period,
	}
	go l.prune()
	return l
}

// Allow records one request for key and reports whether it fits in the
// current window. An expired window resets rather than slides.
func (l *RateLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := time.Now()
	w := l.windows[key]
	if w == nil || now.Sub(w.start) >= l.period {
		l.windows[key] = &requestWindow{start: now, count: 1}
		return true
	}
	if w.count >= l.limit {
		return false
	}
	w.count++
	return true
}

func (l *RateLimiter) prune() {
	tick := time.NewTicker(time.Minute)
	for range tick.C {
		l.mu.Lock()
		cutoff := time.Now().Add(-l.period)
		for key, w := range l.windows {
			if w.start.Before(cutoff) {
				delete(l.windows, key)
			}
		}
		l.mu.Unlock()
	}
}

// RateLimit keys on the authenticated member when one is in context and on
// the client IP otherwise, so members behind a shared NAT do not starve
// each other once signed in.
func RateLimit(l *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := "ip:" + c.ClientIP()
		if id := GetUserID(c); id != 0 {
			key = fmt.Sprintf("user:%d", id)
		}
		if !l.Allow(key) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
			return
		}
		c.Next()
	}
}
