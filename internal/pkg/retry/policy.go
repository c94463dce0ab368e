// Package retry provides a small injectable retry policy so callers can
// bound attempts and shape backoff without mocking network calls.
package retry

import (
	"context"
	"time"
)

// Policy bounds a retry loop. The zero value is not usable; construct
// with Default or fill every field.
type Policy struct {
	// MaxAttempts is the total number of attempts, including the first.
	MaxAttempts int
	// Backoff returns the wait before retry attempt n (1-based: the wait
	// taken after attempt n failed).
	Backoff func(attempt int) time.Duration
	// Sleep is the wait primitive. Tests replace it to observe delays
	// without real sleeping. When nil, a context-aware sleep is used.
	Sleep func(ctx context.Context, d time.Duration) error
}

// Default returns the write-path policy: 3 attempts with linear backoff
// of 2s, 4s between them.
func Default() Policy {
	return Policy{
		MaxAttempts: 3,
		Backoff:     Linear(2 * time.Second),
	}
}

// Linear returns a backoff of step×attempt: step, 2×step, 3×step, ...
func Linear(step time.Duration) func(int) time.Duration {
	return func(attempt int) time.Duration {
		return time.Duration(attempt) * step
	}
}

// Do runs attempt up to p.MaxAttempts times. It stops early when attempt
// returns a nil error or when retryable reports the error as permanent,
// and waits p.Backoff between tries. The last error is returned.
func (p Policy) Do(ctx context.Context, attempt func(n int) error, retryable func(error) bool) error {
	sleep := p.Sleep
	if sleep == nil {
		sleep = sleepCtx
	}

	var lastErr error
	for n := 1; n <= p.MaxAttempts; n++ {
		lastErr = attempt(n)
		if lastErr == nil {
			return nil
		}
		if !retryable(lastErr) {
			return lastErr
		}
		if n == p.MaxAttempts {
			break
		}
		if err := sleep(ctx, p.Backoff(n)); err != nil {
			return lastErr
		}
	}
	return lastErr
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
