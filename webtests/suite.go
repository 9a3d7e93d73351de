package webtests

import (
	"context"
	"time"

	"github.com/demowebapp/browser-contract-tests/drivers"
	"github.com/demowebapp/browser-contract-tests/framework"
)

const (
	DefaultWaitTimeout = 10 * time.Second
	DefaultCaseTimeout = 2 * time.Minute
)

// ApplicationHost runs the application under test. *webapp.Host implements it.
type ApplicationHost interface {
	Start() error
	Stop(ctx context.Context)
	BaseURL() string
}

// SessionFactory creates browser sessions. *drivers.Factory implements it.
type SessionFactory interface {
	Create(ctx context.Context, kind drivers.Kind, logger framework.Logger) (drivers.Session, error)
}

// Environment is everything the test cases need from the outside world.
type Environment struct {
	Host        ApplicationHost
	Factory     SessionFactory
	Kinds       []drivers.Kind // browsers to test, in order; defaults to drivers.DefaultKinds()
	WaitTimeout time.Duration  // how long to wait for the page to react to a click
	CaseTimeout time.Duration  // hard limit on a single test, after which its browser is closed
}

func (e Environment) withDefaults() Environment {
	if len(e.Kinds) == 0 {
		e.Kinds = drivers.DefaultKinds()
	}
	if e.WaitTimeout <= 0 {
		e.WaitTimeout = DefaultWaitTimeout
	}
	if e.CaseTimeout <= 0 {
		e.CaseTimeout = DefaultCaseTimeout
	}
	return e
}

// RunTestSuite starts the application, runs all test cases against each browser kind in the
// environment, and stops the application.
//
// If the application cannot be started, no test runs and the StartupError is returned. Otherwise
// the error is nil and the results describe each test.
func RunTestSuite(
	env Environment,
	filter framework.Filter,
	testLogger framework.TestLogger,
) (framework.Results, error) {
	env = env.withDefaults()

	if err := env.Host.Start(); err != nil {
		return framework.Results{}, framework.Classify(err, framework.StartupError, "start application")
	}
	defer env.Host.Stop(context.Background())

	if closer, ok := env.Factory.(interface{ CloseAll() error }); ok {
		defer func() {
			_ = closer.CloseAll()
		}()
	}

	results := framework.Run(filter, testLogger, func(c *framework.Context) {
		t := newTestScope(c, &env)

		t.Run("button click", DoButtonClickTests)
	})
	return results, nil
}
