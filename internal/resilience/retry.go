package resilience

import (
	"context"
	"math"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"
)

// Retry controls how often and how patiently an operation is reattempted.
type Retry struct {
	// Attempts is the total number of tries, including the first.
	Attempts int
	// BaseDelay is the sleep before the first retry; it doubles per attempt.
	BaseDelay time.Duration
	// MaxDelay caps the backoff.
	MaxDelay time.Duration
	// ShouldRetry decides whether an error is worth another try.
	// Defaults to IsTransient.
	ShouldRetry func(error) bool
}

// DefaultRetry suits short API calls against a rate-limited upstream.
func DefaultRetry() Retry {
	return Retry{
		Attempts:  3,
		BaseDelay: 500 * time.Millisecond,
		MaxDelay:  10 * time.Second,
	}
}

// Do runs fn, retrying transient failures with jittered exponential
// backoff. Context cancellation stops the retries immediately.
func Do[T any](ctx context.Context, r Retry, op string, fn func(ctx context.Context) (T, error)) (T, error) {
	if r.Attempts <= 0 {
		r.Attempts = 3
	}
	if r.BaseDelay <= 0 {
		r.BaseDelay = 500 * time.Millisecond
	}
	if r.MaxDelay <= 0 {
		r.MaxDelay = 10 * time.Second
	}
	shouldRetry := r.ShouldRetry
	if shouldRetry == nil {
		shouldRetry = IsTransient
	}

	var zero T
	var lastErr error
	for attempt := 0; attempt < r.Attempts; attempt++ {
		val, err := fn(ctx)
		if err == nil {
			return val, nil
		}
		lastErr = err

		if ctx.Err() != nil || !shouldRetry(err) || attempt == r.Attempts-1 {
			break
		}

		zap.L().Warn("resilience: retrying",
			zap.String("operation", op),
			zap.Int("attempt", attempt+1),
			zap.Error(err),
		)

		timer := time.NewTimer(backoff(r, attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, lastErr
		case <-timer.C:
		}
	}

	return zero, lastErr
}

func backoff(r Retry, attempt int) time.Duration {
	d := float64(r.BaseDelay) * math.Pow(2, float64(attempt))
	if d > float64(r.MaxDelay) {
		d = float64(r.MaxDelay)
	}
	// ±25% jitter keeps retries from synchronizing across chunks.
	d += (rand.Float64() - 0.5) * d / 2
	return time.Duration(d)
}
