package framework

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWaitUntilReturnsImmediatelyIfConditionIsAlreadyTrue(t *testing.T) {
	var calls int32
	started := time.Now()
	err := WaitUntil(context.Background(), 10*time.Second, 0, func(context.Context) (bool, error) {
		atomic.AddInt32(&calls, 1)
		return true, nil
	})

	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.Less(t, int64(time.Since(started)), int64(time.Second))
}

func TestWaitUntilPollsUntilConditionBecomesTrue(t *testing.T) {
	var calls int32
	err := WaitUntil(context.Background(), 5*time.Second, MinPollInterval, func(context.Context) (bool, error) {
		return atomic.AddInt32(&calls, 1) >= 3, nil
	})

	require.NoError(t, err)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestWaitUntilTimesOutAtTheBoundary(t *testing.T) {
	timeout := 600 * time.Millisecond
	started := time.Now()
	err := WaitUntil(context.Background(), timeout, MinPollInterval, func(context.Context) (bool, error) {
		return false, nil
	})
	elapsed := time.Since(started)

	require.Error(t, err)
	assert.Equal(t, TimeoutError, KindOf(err))
	assert.GreaterOrEqual(t, int64(elapsed), int64(timeout))
	assert.Less(t, int64(elapsed), int64(timeout+MaxPollInterval+time.Second))
}

func TestWaitUntilTimeoutWrapsLastConditionError(t *testing.T) {
	lastSeen := errors.New(`text was "Click me"`)
	err := WaitUntil(context.Background(), 300*time.Millisecond, MinPollInterval, func(context.Context) (bool, error) {
		return false, lastSeen
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, lastSeen))
	assert.Equal(t, TimeoutError, KindOf(err))
}

func TestWaitUntilObservesCancellationWithinOneInterval(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(200 * time.Millisecond)
		cancel()
	}()

	started := time.Now()
	err := WaitUntil(ctx, time.Minute, MaxPollInterval, func(context.Context) (bool, error) {
		return false, nil
	})
	elapsed := time.Since(started)

	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, TimeoutError, KindOf(err))
	assert.Less(t, int64(elapsed), int64(200*time.Millisecond+MaxPollInterval))
}

func TestWaitUntilBoundsEachAttemptByTheDeadline(t *testing.T) {
	started := time.Now()
	err := WaitUntil(context.Background(), 300*time.Millisecond, 0, func(ctx context.Context) (bool, error) {
		<-ctx.Done()
		return false, ctx.Err()
	})

	require.Error(t, err)
	assert.Less(t, int64(time.Since(started)), int64(2*time.Second))
}

func TestWaitUntilClampsInterval(t *testing.T) {
	var calls int32
	_ = WaitUntil(context.Background(), 350*time.Millisecond, time.Millisecond, func(context.Context) (bool, error) {
		atomic.AddInt32(&calls, 1)
		return false, nil
	})

	// one immediate attempt plus at most three at the 100ms minimum interval
	assert.LessOrEqual(t, atomic.LoadInt32(&calls), int32(4))
}
