package middleware

import (
	"sync"

	"golang.org/x/time/rate"
)

// RateLimiter gates generation starts per user+endpoint key. Limiters are
// created lazily and kept for the process lifetime; the key space is
// bounded by the active user population.
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
}

// NewRateLimiter allows perMinute events per key, with a burst of the same
// size so a user can start a few jobs back to back after idling.
func NewRateLimiter(perMinute int) *RateLimiter {
	if perMinute < 1 {
		perMinute = 1
	}
	return &RateLimiter{
		limiters: make(map[string]*rate.Limiter),
		limit:    rate.Limit(float64(perMinute) / 60.0),
		burst:    perMinute,
	}
}

// Allow reports whether the identified caller may start a fresh job now.
// The identifier is derived from user and endpoint; resume requests never
// reach this gate.
func (r *RateLimiter) Allow(userID, endpoint string) bool {
	key := userID + ":" + endpoint

	r.mu.Lock()
	limiter, ok := r.limiters[key]
	if !ok {
		limiter = rate.NewLimiter(r.limit, r.burst)
		r.limiters[key] = limiter
	}
	r.mu.Unlock()

	return limiter.Allow()
}
