package middleware

import (
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "github.com/kbukum/imagefeed/errors"
)

// RateLimitConfig configures the per-key sliding window limiter.
type RateLimitConfig struct {
	// Requests is the number of requests allowed per Window.
	Requests int
	// Window defaults to one minute.
	Window time.Duration
	// KeyFunc picks the key requests are counted under. Defaults to ClientIPKey.
	KeyFunc func(*gin.Context) string
	// Now is the clock, for tests.
	Now func() time.Time
}

// RateLimit rejects requests beyond cfg.Requests per window and key with a
// 429 error envelope and a Retry-After header.
func RateLimit(cfg RateLimitConfig) gin.HandlerFunc {
	if cfg.Requests <= 0 {
		cfg.Requests = 60
	}
	if cfg.Window <= 0 {
		cfg.Window = time.Minute
	}
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = ClientIPKey
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	w := &window{
		hits:   make(map[string][]time.Time),
		limit:  cfg.Requests,
		length: cfg.Window,
	}

	return func(c *gin.Context) {
		wait := w.take(cfg.KeyFunc(c), cfg.Now())
		if wait > 0 {
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
			abort(c, apperrors.RateLimited(wait))
			return
		}
		c.Next()
	}
}

// ClientIPKey counts requests per client IP.
func ClientIPKey(c *gin.Context) string {
	return c.ClientIP()
}

type window struct {
	mu        sync.Mutex
	hits      map[string][]time.Time
	limit     int
	length    time.Duration
	lastSweep time.Time
}

// take records a hit for key at now, or returns how long until one fits.
func (w *window) take(key string, now time.Time) time.Duration {
	w.mu.Lock()
	defer w.mu.Unlock()

	cutoff := now.Add(-w.length)
	if now.Sub(w.lastSweep) >= w.length {
		w.sweep(cutoff)
		w.lastSweep = now
	}

	recent := since(w.hits[key], cutoff)
	if len(recent) >= w.limit {
		w.hits[key] = recent
		return recent[0].Sub(cutoff)
	}
	w.hits[key] = append(recent, now)
	return 0
}

// sweep drops keys with no hits inside the window.
func (w *window) sweep(cutoff time.Time) {
	for key, times := range w.hits {
		if recent := since(times, cutoff); len(recent) == 0 {
			delete(w.hits, key)
		} else {
			w.hits[key] = recent
		}
	}
}

// since returns the suffix of times after cutoff. times is ascending.
func since(times []time.Time, cutoff time.Time) []time.Time {
	for i, t := range times {
		if t.After(cutoff) {
			return times[i:]
		}
	}
	return nil
}
