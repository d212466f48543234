package transport

import (
	"context"
	"time"
)

// Sleeper waits out the backoff delay between attempts. Tests inject one to
// run the retry loop without real wall-clock time.
type Sleeper func(ctx context.Context, d time.Duration) error

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// backoffDelay returns the wait before retrying after the given failed
// attempt (0-based): base, 2*base, 4*base, ...
func backoffDelay(base time.Duration, attempt int) time.Duration {
	return base << attempt
}
