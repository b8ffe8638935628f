package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/plradhouane-dev/gmao/internal/apierror"

	"github.com/gin-gonic/gin"
)

// ipLimiter is a fixed-window per-IP counter. One instance per guarded
// surface; entries for IPs that went quiet are dropped on the fly when
// their window has lapsed.
type ipLimiter struct {
	mu      sync.Mutex
	limit   int
	window  time.Duration
	seen    map[string]*ipWindow
	message string
}

type ipWindow struct {
	count int
	until time.Time
}

func newIPLimiter(limit int, window time.Duration, message string) *ipLimiter {
	return &ipLimiter{
		limit:   limit,
		window:  window,
		seen:    make(map[string]*ipWindow),
		message: message,
	}
}

func (l *ipLimiter) allow(ip string) (bool, time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	w, ok := l.seen[ip]
	if !ok || now.After(w.until) {
		w = &ipWindow{until: now.Add(l.window)}
		l.seen[ip] = w
		// Opportunistic purge keeps the map from growing with one-off IPs.
		if len(l.seen) > 4096 {
			for k, v := range l.seen {
				if now.After(v.until) {
					delete(l.seen, k)
				}
			}
		}
	}
	w.count++
	return w.count <= l.limit, w.until
}

func (l *ipLimiter) handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, until := l.allow(c.ClientIP())
		if !ok {
			c.Header("Retry-After", until.Format(time.RFC1123))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New(l.message))
			return
		}
		c.Next()
	}
}

// LoginRateLimiter caps credential guesses at 20 per minute per IP.
func LoginRateLimiter() gin.HandlerFunc {
	return newIPLimiter(20, time.Minute, "too many login attempts, try again in a minute").handler()
}

// RateLimiter is the general per-IP limiter applied to the whole API.
func RateLimiter(limit int, window time.Duration) gin.HandlerFunc {
	return newIPLimiter(limit, window, "too many requests, try again shortly").handler()
}
