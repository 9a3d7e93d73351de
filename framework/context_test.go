package framework

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingTestLogger struct {
	started  []string
	finished []TestResult
	skipped  []string
	errors   []error
}

func (r *recordingTestLogger) TestStarted(id TestID) { r.started = append(r.started, id.String()) }
func (r *recordingTestLogger) TestError(id TestID, err error) {
	r.errors = append(r.errors, err)
}
func (r *recordingTestLogger) TestFinished(id TestID, result TestResult, debugOutput CapturedOutput) {
	r.finished = append(r.finished, result)
}
func (r *recordingTestLogger) TestSkipped(id TestID, reason string) {
	r.skipped = append(r.skipped, id.String()+": "+reason)
}

func TestPassingSubtestsAreRecordedAsLeaves(t *testing.T) {
	logger := &recordingTestLogger{}
	results := Run(nil, logger, func(c *Context) {
		c.Run("group", func(c *Context) {
			c.Run("a", func(c *Context) {})
			c.Run("b", func(c *Context) {})
		})
	})

	assert.True(t, results.OK())
	require.Len(t, results.Tests, 2)
	assert.Equal(t, "group/a", results.Tests[0].TestID.String())
	assert.Equal(t, "group/b", results.Tests[1].TestID.String())
	assert.Equal(t, OutcomePassed, results.Tests[0].Outcome)
	assert.Equal(t, []string{"group", "group/a", "group/b"}, logger.started)
}

func TestErrorfFailsTestWithAssertionFailure(t *testing.T) {
	results := Run(nil, nil, func(c *Context) {
		c.Run("x", func(c *Context) {
			assert.Equal(c, "Button clicked", "Click me")
		})
	})

	assert.False(t, results.OK())
	r, ok := results.Find("x")
	require.True(t, ok)
	assert.Equal(t, OutcomeFailed, r.Outcome)
	assert.Equal(t, AssertionFailure, r.Kind)
	require.Len(t, r.Errors, 1)
}

func TestFatalWithEnvironmentErrorIsReportedAsError(t *testing.T) {
	reachedEnd := false
	results := Run(nil, nil, func(c *Context) {
		c.Run("firefox", func(c *Context) {
			c.Fatal(NewDriverUnavailableError("launch firefox", errors.New("not installed")))
			reachedEnd = true
		})
	})

	assert.False(t, reachedEnd)
	r, ok := results.Find("firefox")
	require.True(t, ok)
	assert.Equal(t, OutcomeError, r.Outcome)
	assert.Equal(t, DriverUnavailableError, r.Kind)
}

func TestErrorRecordsWithoutExiting(t *testing.T) {
	reachedEnd := false
	results := Run(nil, nil, func(c *Context) {
		c.Run("x", func(c *Context) {
			c.Error(NewTimeoutError("await text", errors.New("never changed")))
			reachedEnd = true
		})
	})

	assert.True(t, reachedEnd)
	r, _ := results.Find("x")
	assert.Equal(t, OutcomeFailed, r.Outcome)
	assert.Equal(t, TimeoutError, r.Kind)
}

func TestEnvironmentErrorTakesPrecedenceOverFailure(t *testing.T) {
	results := Run(nil, nil, func(c *Context) {
		c.Run("x", func(c *Context) {
			c.Errorf("wrong value")
			c.Fatal(NewNavigationError("navigate", errors.New("connection refused")))
		})
	})

	r, _ := results.Find("x")
	assert.Equal(t, OutcomeError, r.Outcome)
	assert.Equal(t, NavigationError, r.Kind)
	assert.Len(t, r.Errors, 2)
}

func TestTimeoutIsReportedAsFailure(t *testing.T) {
	results := Run(nil, nil, func(c *Context) {
		c.Run("x", func(c *Context) {
			c.Fatal(NewTimeoutError("await text", errors.New("text was \"Click me\"")))
		})
	})

	r, _ := results.Find("x")
	assert.Equal(t, OutcomeFailed, r.Outcome)
	assert.Equal(t, TimeoutError, r.Kind)
}

func TestUnexpectedPanicIsRecorded(t *testing.T) {
	results := Run(nil, nil, func(c *Context) {
		c.Run("x", func(c *Context) {
			panic("boom")
		})
	})

	r, _ := results.Find("x")
	assert.Equal(t, OutcomeError, r.Outcome)
	assert.Equal(t, UnexpectedError, r.Kind)
	require.Len(t, r.Errors, 1)
	assert.Contains(t, r.Errors[0].Error(), "boom")
}

func TestDeferredFunctionsRunInReverseOrderOnEveryExitPath(t *testing.T) {
	for name, action := range map[string]func(*Context){
		"success": func(c *Context) {},
		"failure": func(c *Context) { c.FailNow() },
		"skip":    func(c *Context) { c.Skip() },
		"panic":   func(c *Context) { panic("boom") },
	} {
		t.Run(name, func(t *testing.T) {
			var calls []int
			Run(nil, nil, func(c *Context) {
				c.Run("x", func(c *Context) {
					c.Defer(func() { calls = append(calls, 1) })
					c.Defer(func() { calls = append(calls, 2) })
					action(c)
				})
			})
			assert.Equal(t, []int{2, 1}, calls)
		})
	}
}

func TestPanickingCleanupDoesNotStopOtherCleanups(t *testing.T) {
	called := false
	results := Run(nil, nil, func(c *Context) {
		c.Run("x", func(c *Context) {
			c.Defer(func() { called = true })
			c.Defer(func() { panic("cleanup failed") })
		})
	})

	assert.True(t, called)
	assert.True(t, results.OK())
}

func TestFilterExcludesTests(t *testing.T) {
	logger := &recordingTestLogger{}
	ran := false
	filters := RegexFilters{}
	require.NoError(t, filters.MustNotMatch.Set("internet-explorer"))

	results := Run(filters.AsFilter, logger, func(c *Context) {
		c.Run("internet-explorer", func(c *Context) { ran = true })
	})

	assert.False(t, ran)
	assert.Empty(t, results.Tests)
	assert.Equal(t, []string{"internet-explorer: excluded by filter parameters"}, logger.skipped)
}

func TestSkipWithReason(t *testing.T) {
	logger := &recordingTestLogger{}
	results := Run(nil, logger, func(c *Context) {
		c.Run("x", func(c *Context) { c.SkipWithReason("not today") })
	})

	assert.True(t, results.OK())
	r, _ := results.Find("x")
	assert.Equal(t, OutcomeSkipped, r.Outcome)
	assert.Equal(t, []string{"x: not today"}, logger.skipped)
}

func TestDebugOutputIsPassedToTestLogger(t *testing.T) {
	logger := &recordingTestLogger{}
	var output CapturedOutput
	Run(nil, logger, func(c *Context) {
		c.Run("x", func(c *Context) {
			c.Debug("hello %s", "world")
			output = c.debugLogger.Output()
		})
	})

	assert.Equal(t, []string{"hello world"}, messageTexts(output))
	require.Len(t, logger.finished, 1)
}

func messageTexts(output CapturedOutput) []string {
	ret := make([]string, 0, len(output))
	for _, m := range output {
		ret = append(ret, m.Message)
	}
	return ret
}
