package gateway

import (
	"math"
	"time"

	"golang.org/x/time/rate"
)

/*
RateLimiter is a token bucket in front of RunQuil. Each request takes a
token; tokens come back one per refillRate up to maxTokens, so short bursts
pass while the long-run rate stays bounded.
*/
type RateLimiter struct {
	limiter *rate.Limiter
}

// NewRateLimiter starts with a full bucket. A non-positive refillRate or
// maxTokens disables limiting.
func NewRateLimiter(maxTokens int, refillRate time.Duration) *RateLimiter {
	if maxTokens <= 0 || refillRate <= 0 {
		return &RateLimiter{}
	}

	return &RateLimiter{limiter: rate.NewLimiter(rate.Every(refillRate), maxTokens)}
}

// Limit takes a token and reports whether the caller must be turned away.
func (rl *RateLimiter) Limit() bool {
	if rl == nil || rl.limiter == nil {
		return false
	}

	return !rl.limiter.Allow()
}

// Tokens is the number of whole requests that would currently pass.
func (rl *RateLimiter) Tokens() int {
	if rl == nil || rl.limiter == nil {
		return math.MaxInt
	}

	return int(math.Floor(rl.limiter.Tokens()))
}
