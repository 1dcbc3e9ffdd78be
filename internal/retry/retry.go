// Package retry runs an operation a bounded number of times with a fixed
// pause between attempts.
package retry

import (
	"context"
	"fmt"
	"time"
)

// Policy bounds a retry loop.
type Policy struct {
	// MaxAttempts is the total number of tries, including the first.
	MaxAttempts int

	// Backoff is the fixed pause between attempts.
	Backoff time.Duration
}

// DefaultPolicy is three attempts, 100ms apart.
func DefaultPolicy() Policy {
	return Policy{MaxAttempts: 3, Backoff: 100 * time.Millisecond}
}

// ExhaustedError is returned when every attempt failed with a retryable error.
type ExhaustedError struct {
	Attempts int
	Last     error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("gave up after %d attempts: %v", e.Attempts, e.Last)
}

func (e *ExhaustedError) Unwrap() error { return e.Last }

// Do calls fn until it succeeds, returns an error retryable rejects, or the
// attempts run out. fn receives the 1-based attempt number.
func (p Policy) Do(ctx context.Context, retryable func(error) bool, fn func(attempt int) error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		err = fn(attempt)
		if err == nil || !retryable(err) {
			return err
		}
		if attempt == attempts {
			break
		}
		if sleepErr := SleepWithContext(ctx, p.Backoff); sleepErr != nil {
			return sleepErr
		}
	}

	return &ExhaustedError{Attempts: attempts, Last: err}
}

// SleepWithContext pauses for duration or until ctx is done.
func SleepWithContext(ctx context.Context, duration time.Duration) error {
	if duration <= 0 {
		return nil
	}

	timer := time.NewTimer(duration)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("context done: %w", ctx.Err())
	}
}
