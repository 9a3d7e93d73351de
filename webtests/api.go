package webtests

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/demowebapp/browser-contract-tests/drivers"
	"github.com/demowebapp/browser-contract-tests/framework"
)

// T represents a test or subtest in the browser test suite.
//
// It implements the same basic functionality as Go's testing.T, but in an environment that is
// outside of the Go test runner. Those features are provided by the lower-level framework package.
//
// Every T has a hard deadline, Environment.CaseTimeout, after which any browser session it opened
// is forcibly closed so that a hung browser cannot stall the run.
//
// To make test assertions, you can use the assert and require packages, passing the *T as if it
// were a *testing.T. The browser interaction methods also fail the test and exit immediately if
// anything goes wrong, to reduce the amount of boilerplate logic in tests.
type T struct {
	context *framework.Context
	env     *Environment
	ctx     context.Context
}

func newTestScope(c *framework.Context, env *Environment) *T {
	ctx, cancel := context.WithTimeout(context.Background(), env.CaseTimeout)
	c.Defer(cancel)
	return &T{context: c, env: env, ctx: ctx}
}

// Context returns a context that is done when the test's deadline passes.
func (t *T) Context() context.Context {
	return t.ctx
}

// Env returns the environment the suite is running in.
func (t *T) Env() *Environment {
	return t.env
}

// Errorf is called by assertions to log a test failure. It does not cause an immediate exit.
func (t *T) Errorf(format string, args ...interface{}) {
	t.context.Errorf(format, args...)
}

// FailNow is called by assertions when a test should fail and immediately exit. The methods in
// the require package call FailNow.
func (t *T) FailNow() {
	t.context.FailNow()
}

// Run runs a subtest. This is equivalent to the Run method of testing.T.
func (t *T) Run(name string, action func(*T)) {
	t.context.Run(name, func(c *framework.Context) {
		action(newTestScope(c, t.env))
	})
}

// Debug logs some debug output for the test. The output will be passed to the test logger at
// the end of the test.
func (t *T) Debug(format string, args ...interface{}) {
	t.context.Debug(format, args...)
}

// Defer schedules a function to run when the test finishes.
func (t *T) Defer(fn func()) {
	t.context.Defer(fn)
}

// RequireSession opens a browser session of the given kind. The session is closed when the test
// finishes, or as soon as the test's deadline passes.
//
// If no browser can be obtained, the test exits with the DriverUnavailableError.
func (t *T) RequireSession(kind drivers.Kind) drivers.Session {
	logger := framework.WithPrefix(t.context.DebugLogger(), "["+kind.String()+"] ")
	session, err := t.env.Factory.Create(t.ctx, kind, logger)
	if err != nil {
		t.context.Fatal(err)
	}

	release := func() {
		if err := session.Close(); err != nil {
			t.Debug("Error releasing %s session: %s", kind, err)
		}
	}
	stopWatchdog := context.AfterFunc(t.ctx, func() {
		if errors.Is(t.ctx.Err(), context.DeadlineExceeded) {
			logger.Printf("Test deadline of %s passed; closing session %s", t.env.CaseTimeout, session.ID())
		}
		release()
	})
	t.Defer(func() {
		stopWatchdog()
		release()
	})
	return session
}

// RequireNavigate loads a page, exiting the test if navigation fails.
func (t *T) RequireNavigate(session drivers.Session, url string) {
	if err := session.Navigate(t.ctx, url); err != nil {
		t.context.Fatal(err)
	}
}

// RequireClick clicks an element, exiting the test if it cannot be found or clicked.
func (t *T) RequireClick(session drivers.Session, elementID string) {
	if err := session.Click(t.ctx, elementID); err != nil {
		t.context.Fatal(err)
	}
}

// RequireText returns an element's current text, exiting the test if it cannot be read.
func (t *T) RequireText(session drivers.Session, elementID string) string {
	text, err := session.Text(t.ctx, elementID)
	if err != nil {
		t.context.Fatal(err)
	}
	return text
}

// AwaitElementText polls an element until its text equals the expected value, for at most
// timeout. It returns true if the text appeared.
//
// If the time runs out, a TimeoutError that includes the last text seen is recorded as a test
// failure and false is returned. An environment problem such as a closed session ends the test
// immediately.
func (t *T) AwaitElementText(session drivers.Session, elementID, expected string, timeout time.Duration) bool {
	waitCtx, cancel := context.WithCancel(t.ctx)
	defer cancel()

	var lastText string
	var seen bool
	var fatalErr error
	err := framework.WaitUntil(waitCtx, timeout, framework.DefaultPollInterval, func(ctx context.Context) (bool, error) {
		text, err := session.Text(ctx, elementID)
		if err != nil {
			if framework.KindOf(err).IsEnvironment() {
				fatalErr = err
				cancel()
			}
			return false, err
		}
		lastText, seen = text, true
		return strings.TrimSpace(text) == expected, nil
	})
	if err == nil {
		t.Debug("#%s reads %q", elementID, expected)
		return true
	}
	if fatalErr != nil {
		t.context.Fatal(fatalErr)
	}

	detail := "element text was never read"
	if seen {
		detail = fmt.Sprintf("last text was %q", lastText)
	}
	t.context.Error(framework.NewTimeoutError(
		fmt.Sprintf("wait for #%s to read %q", elementID, expected),
		fmt.Errorf("%s: %w", detail, err),
	))
	return false
}
