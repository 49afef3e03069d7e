package api

import (
	"context"
	"math/rand"
	"time"
)

// RetryConfig decides whether and when failed ledger and store requests
// are reissued. Delays grow exponentially from BaseDelay up to MaxDelay,
// with proportional jitter so concurrent clients spread out.
type RetryConfig struct {
	// MaxRetries bounds the number of reissued attempts per request.
	MaxRetries int
	// BaseDelay is the delay before the first retry.
	BaseDelay time.Duration
	// MaxDelay caps the exponential growth.
	MaxDelay time.Duration
	// Multiplier scales the delay after each attempt.
	Multiplier float64
	// Jitter is the randomization fraction (0 to 1) applied to each delay.
	Jitter float64
	// RetryableOn reports whether a status code is worth retrying.
	RetryableOn func(statusCode int) bool
}

// transientStatuses are the codes a well-behaved client retries: request
// timeout, rate limiting, and server-side failures.
var transientStatuses = map[int]bool{
	408: true,
	429: true,
	500: true,
	502: true,
	503: true,
	504: true,
}

// DefaultRetryConfig returns the retry policy used unless overridden.
func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxRetries:  3,
		BaseDelay:   time.Second,
		MaxDelay:    30 * time.Second,
		Multiplier:  2.0,
		Jitter:      0.2,
		RetryableOn: func(statusCode int) bool { return transientStatuses[statusCode] },
	}
}

// ShouldRetry reports whether the given attempt (0-based) may be reissued
// after receiving statusCode.
func (r *RetryConfig) ShouldRetry(attempt, statusCode int) bool {
	return attempt < r.MaxRetries && r.RetryableOn(statusCode)
}

// Delay returns the pause before retrying after the given attempt.
func (r *RetryConfig) Delay(attempt int) time.Duration {
	d := r.BaseDelay
	for i := 0; i < attempt && d < r.MaxDelay; i++ {
		d = time.Duration(float64(d) * r.Multiplier)
	}
	if d > r.MaxDelay {
		d = r.MaxDelay
	}

	if r.Jitter > 0 {
		// Spread uniformly across [d*(1-j), d*(1+j)].
		span := float64(d) * r.Jitter
		d = time.Duration(float64(d) + span*(2*rand.Float64()-1))
	}
	return d
}

// Wait sleeps for the attempt's delay, honoring context cancellation.
func (r *RetryConfig) Wait(ctx context.Context, attempt int) error {
	timer := time.NewTimer(r.Delay(attempt))
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
