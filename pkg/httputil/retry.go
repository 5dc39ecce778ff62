package httputil

import (
	"context"
	"errors"
	"time"
)

// RetryableError marks a transient failure. After, when positive, is the
// server's requested wait (a Retry-After header) and replaces the computed
// backoff for the next attempt.
type RetryableError struct {
	Err   error
	After time.Duration
}

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// Retryable marks err as transient. Retryable(nil) is nil.
func Retryable(err error) error {
	return RetryableAfter(err, 0)
}

// RetryableAfter marks err as transient and asks for a wait of at least d
// before the next attempt.
func RetryableAfter(err error, d time.Duration) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err, After: d}
}

// IsRetryable reports whether err is marked transient anywhere in its chain.
func IsRetryable(err error) bool {
	return errors.As(err, new(*RetryableError))
}

// Backoff is an exponential retry policy. The zero value makes a single
// attempt.
type Backoff struct {
	Attempts int
	Delay    time.Duration
	MaxDelay time.Duration // 0 means uncapped
}

// DefaultBackoff is used for GitHub requests: 3 attempts starting at one
// second, never waiting longer than 30 seconds.
var DefaultBackoff = Backoff{Attempts: 3, Delay: time.Second, MaxDelay: 30 * time.Second}

// Do runs fn until it succeeds, returns a non-retryable error, or the
// attempts run out. The last error is returned; a cancelled ctx while
// waiting returns ctx.Err().
func (b Backoff) Do(ctx context.Context, fn func() error) error {
	attempts := max(b.Attempts, 1)
	delay := b.Delay

	var err error
	for i := range attempts {
		if err = fn(); err == nil || !IsRetryable(err) {
			return err
		}
		if i == attempts-1 {
			break
		}
		if err := sleep(ctx, b.wait(delay, err)); err != nil {
			return err
		}
		delay *= 2
	}
	return err
}

func (b Backoff) wait(delay time.Duration, err error) time.Duration {
	var re *RetryableError
	if errors.As(err, &re) && re.After > 0 {
		delay = re.After
	}
	if b.MaxDelay > 0 && delay > b.MaxDelay {
		delay = b.MaxDelay
	}
	return delay
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Retry runs fn under Backoff{Attempts: attempts, Delay: delay}.
func Retry(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	return Backoff{Attempts: attempts, Delay: delay}.Do(ctx, fn)
}
