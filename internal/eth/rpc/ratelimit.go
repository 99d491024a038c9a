package rpc

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// RateLimiter keeps one token bucket per endpoint URL.
type RateLimiter struct {
	limit   rate.Limit
	burst   int
	buckets sync.Map // endpoint -> *rate.Limiter
}

// NewRateLimiter allows ratePerSecond requests per endpoint with the given
// burst. A non-positive rate disables throttling.
func NewRateLimiter(ratePerSecond float64, burst int) *RateLimiter {
	rl := &RateLimiter{limit: rate.Inf, burst: max(burst, 1)}
	if ratePerSecond > 0 {
		rl.limit = rate.Limit(ratePerSecond)
	}
	return rl
}

// DefaultRateLimiter allows 5 requests per second with a burst of 10.
func DefaultRateLimiter() *RateLimiter {
	return NewRateLimiter(5, 10)
}

// Allow reports whether a request to endpoint may go out now.
func (r *RateLimiter) Allow(endpoint string) bool {
	return r.bucket(endpoint).Allow()
}

// Wait blocks until endpoint has a token or ctx ends.
func (r *RateLimiter) Wait(ctx context.Context, endpoint string) error {
	return r.bucket(endpoint).Wait(ctx)
}

func (r *RateLimiter) bucket(endpoint string) *rate.Limiter {
	if b, ok := r.buckets.Load(endpoint); ok {
		return b.(*rate.Limiter) //nolint:forcetypeassert // only *rate.Limiter is stored
	}
	b, _ := r.buckets.LoadOrStore(endpoint, rate.NewLimiter(r.limit, r.burst))
	return b.(*rate.Limiter) //nolint:forcetypeassert // only *rate.Limiter is stored
}
