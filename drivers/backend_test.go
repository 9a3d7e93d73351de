package drivers

import (
	"context"
	"errors"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/demowebapp/browser-contract-tests/framework"
)

func TestRemaining(t *testing.T) {
	assert.Equal(t, time.Minute, remaining(context.Background(), time.Minute))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	r := remaining(ctx, time.Minute)
	assert.LessOrEqual(t, int64(r), int64(time.Second))
	assert.Greater(t, int64(r), int64(0))
}

func TestLookupError(t *testing.T) {
	timeout := errors.New("timed out")

	err := lookupError(context.Background(), timeout, "clickmeButton", time.Second, true)
	assert.Equal(t, framework.ElementNotFoundError, framework.KindOf(err))
	assert.True(t, errors.Is(err, timeout))

	assert.Equal(t, timeout, lookupError(context.Background(), timeout, "clickmeButton", time.Second, false))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Equal(t, timeout, lookupError(ctx, timeout, "clickmeButton", time.Second, true))
}

func TestRunWithContextReturnsWhenContextIsDone(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	release := make(chan struct{})
	defer close(release)

	err := runWithContext(ctx, func() error {
		<-release
		return nil
	})
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestCallWithContextReturnsValue(t *testing.T) {
	v, err := callWithContext(context.Background(), func() (string, error) { return "Button clicked", nil }, nil)
	require.NoError(t, err)
	assert.Equal(t, "Button clicked", v)
}

func TestCallWithContextDiscardsLateValue(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	release := make(chan struct{})
	discarded := make(chan string, 1)

	v, err := callWithContext(ctx, func() (string, error) {
		<-release
		return "late", nil
	}, func(late string) { discarded <- late })
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.Equal(t, "", v)

	close(release)
	select {
	case late := <-discarded:
		assert.Equal(t, "late", late)
	case <-time.After(time.Second):
		require.Fail(t, "late value was not discarded")
	}
}

func TestCallWithContextDoesNotDiscardFailedCall(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	release := make(chan struct{})
	finished := make(chan struct{})
	discarded := make(chan string, 1)

	_, err := callWithContext(ctx, func() (string, error) {
		defer close(finished)
		<-release
		return "partial", errors.New("failed")
	}, func(late string) { discarded <- late })
	assert.True(t, errors.Is(err, context.DeadlineExceeded))

	close(release)
	<-finished
	select {
	case late := <-discarded:
		assert.Fail(t, "failed call was discarded", late)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestInternetExplorerIsUnavailableOutsideWindows(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("only meaningful on other platforms")
	}
	f := NewFactory(DefaultConfig())
	_, err := f.Create(context.Background(), InternetExplorer, nil)
	require.Error(t, err)
	assert.Equal(t, framework.DriverUnavailableError, framework.KindOf(err))
}

func TestMissingExecutableIsDriverUnavailable(t *testing.T) {
	config := DefaultConfig()
	config.ChromePath = "/nonexistent/chrome"
	config.EdgePath = "/nonexistent/msedge"
	config.LaunchTimeout = 10 * time.Second
	f := NewFactory(config)

	for _, k := range []Kind{Chrome, Edge} {
		_, err := f.Create(context.Background(), k, nil)
		require.Error(t, err, k.String())
		assert.Equal(t, framework.DriverUnavailableError, framework.KindOf(err), k.String())
	}
}
