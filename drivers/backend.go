package drivers

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/demowebapp/browser-contract-tests/framework"
)

func cssID(elementID string) string {
	return "#" + elementID
}

// remaining returns d, or the time left before ctx's deadline if that is sooner.
func remaining(ctx context.Context, d time.Duration) time.Duration {
	if deadline, ok := ctx.Deadline(); ok {
		if left := time.Until(deadline); left < d {
			d = left
		}
	}
	if d < time.Millisecond {
		d = time.Millisecond
	}
	return d
}

func millis(d time.Duration) float64 {
	return float64(d / time.Millisecond)
}

// runWithContext runs a call that cannot itself be cancelled, returning early if ctx is done. The
// call keeps running in the background until its own timeout or until the session is closed.
func runWithContext(ctx context.Context, call func() error) error {
	_, err := callWithContext(ctx, func() (struct{}, error) {
		return struct{}{}, call()
	}, nil)
	return err
}

// callWithContext is runWithContext for calls that produce a value. The value only ever crosses
// the result channel. If ctx is done first, discard (when non-nil) receives any value the call
// produces afterwards, so that resources it holds can be released.
func callWithContext[V any](ctx context.Context, call func() (V, error), discard func(V)) (V, error) {
	type outcome struct {
		value V
		err   error
	}
	result := make(chan outcome, 1)
	go func() {
		v, err := call()
		result <- outcome{v, err}
	}()
	select {
	case r := <-result:
		return r.value, r.err
	case <-ctx.Done():
		if discard != nil {
			go func() {
				if r := <-result; r.err == nil {
					discard(r.value)
				}
			}()
		}
		var zero V
		return zero, ctx.Err()
	}
}

// lookupError reports a lookup that timed out while the caller still had time left as an
// ElementNotFoundError. Anything else is returned unchanged.
func lookupError(ctx context.Context, err error, elementID string, wait time.Duration, timedOut bool) error {
	if err == nil || !timedOut || ctx.Err() != nil {
		return err
	}
	return framework.NewElementNotFoundError("find #"+elementID,
		fmt.Errorf("no element with id %q appeared within %s: %w", elementID, wait, err))
}

func freeLocalPort() (int, error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return 0, err
	}
	defer ln.Close()
	return ln.Addr().(*net.TCPAddr).Port, nil
}
