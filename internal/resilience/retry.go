// Package resilience retries outbound API calls that fail transiently,
// backing off exponentially between attempts.
package resilience

import (
	"context"
	"math/rand/v2"
	"time"
)

// Policy controls how an operation is retried.
type Policy struct {
	// Attempts is the total number of tries including the first.
	// A value of 1 disables retries. Default: 3.
	Attempts int

	// BaseDelay is the wait before the first retry; it doubles after each
	// failed attempt. Default: 500ms.
	BaseDelay time.Duration

	// MaxDelay caps the backoff. Default: 10s.
	MaxDelay time.Duration

	// Jitter randomizes each delay by up to this fraction in either
	// direction. Default: 0.2.
	Jitter float64

	// Retryable decides whether an error is worth another attempt.
	// Defaults to Transient.
	Retryable func(error) bool

	// OnRetry, when set, is called before each backoff sleep.
	OnRetry func(attempt int, err error)
}

func (p Policy) withDefaults() Policy {
	if p.Attempts <= 0 {
		p.Attempts = 3
	}
	if p.BaseDelay <= 0 {
		p.BaseDelay = 500 * time.Millisecond
	}
	if p.MaxDelay <= 0 {
		p.MaxDelay = 10 * time.Second
	}
	if p.Jitter <= 0 {
		p.Jitter = 0.2
	}
	if p.Retryable == nil {
		p.Retryable = Transient
	}
	return p
}

func (p Policy) backoff(attempt int) time.Duration {
	delay := p.BaseDelay << attempt
	if delay > p.MaxDelay || delay <= 0 {
		delay = p.MaxDelay
	}
	spread := float64(delay) * p.Jitter
	return time.Duration(float64(delay) + (rand.Float64()*2-1)*spread)
}

// Do runs fn under the policy, retrying transient failures until the attempt
// budget runs out. Context cancellation stops retries immediately.
func Do(ctx context.Context, p Policy, fn func(ctx context.Context) error) error {
	_, err := DoVal(ctx, p, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}

// DoVal is Do for operations that return a value.
func DoVal[T any](ctx context.Context, p Policy, fn func(ctx context.Context) (T, error)) (T, error) {
	p = p.withDefaults()

	var zero T
	var lastErr error
	for attempt := 0; attempt < p.Attempts; attempt++ {
		val, err := fn(ctx)
		if err == nil {
			return val, nil
		}
		lastErr = err

		if ctx.Err() != nil || !p.Retryable(err) {
			return zero, lastErr
		}
		if attempt == p.Attempts-1 {
			break
		}

		if p.OnRetry != nil {
			p.OnRetry(attempt+1, err)
		}

		timer := time.NewTimer(p.backoff(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, lastErr
		case <-timer.C:
		}
	}
	return zero, lastErr
}
