package web

import (
	"net/http"
	"sync"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/aobun/internal/core/domain"
)

// RateLimiter throttles conversion requests with a shared token bucket.
// Limits can be changed while the server is running.
type RateLimiter struct {
	mu     sync.RWMutex
	bucket *rate.Limiter
}

// NewRateLimiter creates a limiter from settings.
// A non-positive rate disables limiting.
func NewRateLimiter(settings domain.RateLimitSettings) *RateLimiter {
	l := &RateLimiter{}
	l.Apply(settings)
	return l
}

// Apply replaces the current limits. The new bucket starts full.
func (l *RateLimiter) Apply(settings domain.RateLimitSettings) {
	bucket := rate.NewLimiter(rate.Inf, 0)
	if settings.Enabled() {
		bucket = rate.NewLimiter(rate.Limit(settings.PerSecond), settings.Burst)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.bucket = bucket
}

// Allow reports whether a request may proceed now.
func (l *RateLimiter) Allow() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.bucket.Allow()
}

// wrap rejects requests over the limit with 429.
func (l *RateLimiter) wrap(next handlerFunc) handlerFunc {
	return func(w http.ResponseWriter, r *http.Request) (int, error) {
		if !l.Allow() {
			w.Header().Set("Retry-After", "1")
			return http.StatusTooManyRequests, ErrRateLimited
		}
		return next(w, r)
	}
}
