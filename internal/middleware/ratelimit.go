package middleware

import (
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"

	apperrors "github.com/jwalitptl/patient-registry/pkg/errors"
)

// RateLimiter is a per-key sliding window. Each key keeps the timestamps of
// its requests inside the window; idle keys expire from the cache.
type RateLimiter struct {
	mu     sync.Mutex
	hits   *cache.Cache
	limit  int
	window time.Duration
	now    func() time.Time
}

func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		hits:   cache.New(window, 2*window),
		limit:  limit,
		window: window,
		now:    time.Now,
	}
}

// Allow records a request for key. When the window is full it reports how
// long until the oldest request leaves it.
func (rl *RateLimiter) Allow(key string) (allowed bool, remaining int, retryAfter time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	cutoff := now.Add(-rl.window)

	var window []time.Time
	if v, ok := rl.hits.Get(key); ok {
		for _, t := range v.([]time.Time) {
			if t.After(cutoff) {
				window = append(window, t)
			}
		}
	}

	if len(window) >= rl.limit {
		rl.hits.Set(key, window, rl.window)
		return false, 0, window[0].Add(rl.window).Sub(now)
	}

	window = append(window, now)
	rl.hits.Set(key, window, rl.window)
	return true, rl.limit - len(window), 0
}

// RateLimit limits requests per client IP and answers 429 with Retry-After
// once the window is exhausted.
func (rl *RateLimiter) RateLimit() gin.HandlerFunc {
	limit := strconv.Itoa(rl.limit)
	return func(c *gin.Context) {
		allowed, remaining, retryAfter := rl.Allow(c.ClientIP())

		c.Header("X-RateLimit-Limit", limit)
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		if !allowed {
			seconds := int(math.Ceil(retryAfter.Seconds()))
			if seconds < 1 {
				seconds = 1
			}
			c.Header("Retry-After", strconv.Itoa(seconds))
			abort(c, apperrors.TooManyRequests("Too many requests, please try again later"))
			return
		}
		c.Next()
	}
}
