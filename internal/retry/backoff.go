package retry

import (
	"context"
	"time"
)

// ExponentialBackoff returns delay based on attempt number.
// The delay doubles with each attempt: base * 2^attempt
func ExponentialBackoff(attempt int, base time.Duration) time.Duration {
	return base * (1 << attempt)
}

// Do calls fn until it succeeds, attempts are exhausted, or ctx is done.
// The last error from fn is returned.
func Do(ctx context.Context, attempts int, base time.Duration, fn func(context.Context) error) error {
	if attempts <= 0 {
		attempts = 1
	}
	var err error
	for attempt := 0; attempt < attempts; attempt++ {
		if err = fn(ctx); err == nil {
			return nil
		}
		if attempt == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(ExponentialBackoff(attempt, base)):
		}
	}
	return err
}
