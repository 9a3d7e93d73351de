package framework

import (
	"context"
	"errors"
	"time"
)

const (
	DefaultPollInterval = 250 * time.Millisecond
	MinPollInterval     = 100 * time.Millisecond
	MaxPollInterval     = 500 * time.Millisecond
)

// Condition is polled by WaitUntil. An error means "not yet"; it is kept so that a timeout can
// explain what the last attempt saw.
type Condition func(ctx context.Context) (bool, error)

// WaitUntil evaluates condition immediately and then once per interval until it returns true,
// the timeout elapses, or ctx is done. It returns nil on success and a TimeoutError otherwise.
//
// An interval outside of MinPollInterval-MaxPollInterval is clamped; zero means
// DefaultPollInterval. Each evaluation of the condition is bounded by the overall deadline.
func WaitUntil(ctx context.Context, timeout, interval time.Duration, condition Condition) error {
	switch {
	case interval <= 0:
		interval = DefaultPollInterval
	case interval < MinPollInterval:
		interval = MinPollInterval
	case interval > MaxPollInterval:
		interval = MaxPollInterval
	}

	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var lastErr error
	attempt := func() bool {
		ok, err := condition(waitCtx)
		if err != nil {
			lastErr = err
			return false
		}
		return ok
	}

	if attempt() {
		return nil
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-waitCtx.Done():
			if ctx.Err() != nil {
				return NewTimeoutError("wait cancelled", ctx.Err())
			}
			if lastErr == nil {
				lastErr = errors.New("condition was never met")
			}
			return NewTimeoutError("timed out after "+timeout.String(), lastErr)
		case <-ticker.C:
			if attempt() {
				return nil
			}
		}
	}
}
