package framework

import (
	"errors"
	"fmt"
	"runtime/debug"
	"time"
)

type environment struct {
	results    Results
	testLogger TestLogger
	filter     Filter
}

type Context struct {
	env         *environment
	id          TestID
	debugLogger CapturingLogger
	failed      bool
	skipped     bool
	skipReason  string
	errors      []error
	cleanups    []func()
	subtests    int
}

func Run(
	filter func(TestID) bool,
	testLogger TestLogger,
	action func(*Context),
) Results {
	if testLogger == nil {
		testLogger = nullTestLogger{}
	}
	env := &environment{
		filter:     filter,
		testLogger: testLogger,
	}
	c := &Context{env: env}
	c.run(action)
	return env.results
}

func (c *Context) run(action func(*Context)) (result TestResult) {
	started := time.Now()
	defer func() {
		if r := recover(); r != nil {
			c.recordPanic(r)
		}
		c.runCleanups()

		outcome, kind := outcomeFor(c.failed, c.skipped, c.errors)
		result = TestResult{
			TestID:   c.id,
			Errors:   c.errors,
			Skipped:  c.skipped,
			Outcome:  outcome,
			Kind:     kind,
			Duration: time.Since(started),
		}
		// A group of subtests is only reported on its own if something went wrong outside them.
		if c.subtests > 0 && !c.failed {
			return
		}
		c.env.results.Tests = append(c.env.results.Tests, result)
		if c.failed {
			c.env.results.Failures = append(c.env.results.Failures, result)
		}
	}()

	action(c)
	return
}

func (c *Context) recordPanic(r interface{}) {
	if c.skipped {
		return
	}
	c.failed = true
	var addError error
	if _, ok := r.(*Context); ok {
		if len(c.errors) == 0 {
			addError = NewAssertionFailure("", errors.New("test failed with no failure message"))
		}
	} else {
		addError = &Error{
			Kind: UnexpectedError,
			Op:   "unexpected panic in test",
			Err:  fmt.Errorf("%+v\n%s", r, string(debug.Stack())),
		}
	}
	if addError != nil {
		c.errors = append(c.errors, addError)
		c.env.testLogger.TestError(c.id, addError)
	}
}

// runCleanups calls deferred functions in reverse order. A panicking cleanup is logged but does
// not prevent the remaining cleanups from running.
func (c *Context) runCleanups() {
	for len(c.cleanups) > 0 {
		fn := c.cleanups[len(c.cleanups)-1]
		c.cleanups = c.cleanups[:len(c.cleanups)-1]
		func() {
			defer func() {
				if r := recover(); r != nil {
					c.Debug("cleanup panicked: %+v", r)
				}
			}()
			fn()
		}()
	}
}

func (c *Context) ID() TestID {
	return c.id
}

func (c *Context) Run(name string, action func(*Context)) {
	id := TestID{Path: append(append([]string(nil), c.id.Path...), name)}
	c.subtests++

	c.env.testLogger.TestStarted(id)
	if c.env.filter != nil && !c.env.filter(id) {
		c.env.testLogger.TestSkipped(id, "excluded by filter parameters")
		return
	}
	c1 := &Context{
		id:  id,
		env: c.env,
	}
	result := c1.run(action)
	if c1.skipped {
		c.env.testLogger.TestSkipped(id, c1.skipReason)
	} else if c1.subtests == 0 || c1.failed {
		c.env.testLogger.TestFinished(id, result, c1.debugLogger.Output())
	}
}

func (c *Context) Errorf(format string, args ...interface{}) {
	c.failed = true
	err := NewAssertionFailure("", fmt.Errorf(format, args...))
	c.errors = append(c.errors, err)
	c.env.testLogger.TestError(c.id, err)
}

// Error records an error without exiting the test. An error that has no kind is treated as
// unexpected.
func (c *Context) Error(err error) {
	c.failed = true
	err = Classify(err, UnexpectedError, "")
	c.errors = append(c.errors, err)
	c.env.testLogger.TestError(c.id, err)
}

// Fatal records an error, keeping its kind if it has one, and exits the test immediately.
func (c *Context) Fatal(err error) {
	c.Error(err)
	c.FailNow()
}

func (c *Context) FailNow() {
	panic(c)
}

func (c *Context) Failed() bool {
	return c.failed
}

func (c *Context) Skip() {
	c.skipped = true
	panic(c)
}

func (c *Context) SkipWithReason(reason string) {
	c.skipReason = reason
	c.Skip()
}

// Defer schedules a function to be called when the test finishes, however it finishes. Deferred
// functions run in last-in-first-out order, like Go's testing.T.Cleanup.
func (c *Context) Defer(fn func()) {
	c.cleanups = append(c.cleanups, fn)
}

func (c *Context) Debug(message string, args ...interface{}) {
	c.debugLogger.Printf(message, args...)
}

func (c *Context) DebugLogger() Logger {
	return &c.debugLogger
}
