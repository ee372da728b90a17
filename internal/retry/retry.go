package retry

import (
	"context"
	"time"
)

// Retryer runs an operation with capped exponential backoff.
type Retryer struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
}

// Do calls fn until it reports no retry is needed, retries are exhausted, or ctx ends.
func (r Retryer) Do(ctx context.Context, fn func() (retry bool, err error)) error {
	var lastErr error
	for attempt := 0; attempt <= r.MaxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		retry, err := fn()
		if !retry {
			return err
		}
		lastErr = err
		if attempt < r.MaxRetries {
			select {
			case <-time.After(r.backoff(attempt)):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
	return lastErr
}

func (r Retryer) backoff(attempt int) time.Duration {
	return min(r.BaseDelay*(1<<attempt), r.MaxDelay)
}
