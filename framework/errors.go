package framework

import (
	"errors"
	"fmt"
)

// ErrorKind classifies why a test did not pass, so that a broken environment is never reported
// as a misbehaving application.
type ErrorKind int

const (
	// AssertionFailure means the application did something other than what the test expected.
	AssertionFailure ErrorKind = iota
	// TimeoutError means an expected condition did not become true in time.
	TimeoutError
	// ElementNotFoundError means the page did not contain an element the test depends on.
	ElementNotFoundError
	// NavigationError means the browser could not load the application's page.
	NavigationError
	// DriverUnavailableError means a browser or its automation driver is missing or misconfigured.
	DriverUnavailableError
	// StartupError means the application under test could not be started.
	StartupError
	// LifecycleError means a component was used in the wrong lifecycle state.
	LifecycleError
	// UnexpectedError is anything that could not be attributed to one of the other kinds.
	UnexpectedError
)

func (k ErrorKind) String() string {
	switch k {
	case AssertionFailure:
		return "AssertionFailure"
	case TimeoutError:
		return "TimeoutError"
	case ElementNotFoundError:
		return "ElementNotFoundError"
	case NavigationError:
		return "NavigationError"
	case DriverUnavailableError:
		return "DriverUnavailableError"
	case StartupError:
		return "StartupError"
	case LifecycleError:
		return "LifecycleError"
	default:
		return "UnexpectedError"
	}
}

// IsEnvironment is true for kinds that describe a problem with the test environment rather than
// with the behavior of the application under test.
func (k ErrorKind) IsEnvironment() bool {
	switch k {
	case AssertionFailure, TimeoutError, ElementNotFoundError:
		return false
	default:
		return true
	}
}

// Error is an error with an attributable ErrorKind.
type Error struct {
	Kind ErrorKind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Op == "" && e.Err == nil:
		return e.Kind.String()
	case e.Err == nil:
		return fmt.Sprintf("%s: %s", e.Kind, e.Op)
	case e.Op == "":
		return fmt.Sprintf("%s: %s", e.Kind, e.Err)
	default:
		return fmt.Sprintf("%s: %s: %s", e.Kind, e.Op, e.Err)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind ErrorKind, op string, err error) error {
	return &Error{Kind: kind, Op: op, Err: err}
}

func NewAssertionFailure(op string, err error) error { return newError(AssertionFailure, op, err) }
func NewTimeoutError(op string, err error) error     { return newError(TimeoutError, op, err) }
func NewElementNotFoundError(op string, err error) error {
	return newError(ElementNotFoundError, op, err)
}
func NewNavigationError(op string, err error) error { return newError(NavigationError, op, err) }
func NewDriverUnavailableError(op string, err error) error {
	return newError(DriverUnavailableError, op, err)
}
func NewStartupError(op string, err error) error   { return newError(StartupError, op, err) }
func NewLifecycleError(op string, err error) error { return newError(LifecycleError, op, err) }

// KindOf returns the kind of the outermost *Error in err's chain, or UnexpectedError if there
// is none.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return UnexpectedError
}

// Classify returns err unchanged if it already has a kind, or wraps it with the given kind.
func Classify(err error, kind ErrorKind, op string) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	return newError(kind, op, err)
}
