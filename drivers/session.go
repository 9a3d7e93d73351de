package drivers

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/demowebapp/browser-contract-tests/framework"
)

var errSessionClosed = errors.New("session has been closed")

// Session is a live, exclusively owned browser instance.
//
// All methods other than Close take a context; a blocked call returns once the context is done.
// Close may be called from any goroutine, including while another call is in progress, and
// interrupts that call by shutting the browser down.
type Session interface {
	// ID returns a unique identifier for the session.
	ID() string
	// Kind returns the browser kind.
	Kind() Kind
	// Navigate loads the page at the given URL.
	Navigate(ctx context.Context, url string) error
	// Click clicks the element with the given DOM id.
	Click(ctx context.Context, elementID string) error
	// Text returns the visible text of the element with the given DOM id.
	Text(ctx context.Context, elementID string) (string, error)
	// Close ends the session and releases the browser. Only the first call has any effect.
	Close() error
}

// Driver is the backend-specific part of a Session. Implementations do not need to guard against
// use after Close or classify their errors; the Factory's wrapper does both.
type Driver interface {
	Navigate(ctx context.Context, url string) error
	Click(ctx context.Context, elementID string) error
	Text(ctx context.Context, elementID string) (string, error)
	Close() error
}

type managedSession struct {
	id        string
	kind      Kind
	driver    Driver
	logger    framework.Logger
	closed    int32
	closeOnce sync.Once
	onClose   func(*managedSession)
}

func (s *managedSession) ID() string { return s.id }

func (s *managedSession) Kind() Kind { return s.kind }

func (s *managedSession) Navigate(ctx context.Context, url string) error {
	op := "navigate to " + url
	if s.isClosed() {
		return framework.NewLifecycleError(op, errSessionClosed)
	}
	s.logger.Printf("Navigating to %s", url)
	return s.classify(ctx, s.driver.Navigate(ctx, url), framework.NavigationError, op)
}

func (s *managedSession) Click(ctx context.Context, elementID string) error {
	op := "click #" + elementID
	if s.isClosed() {
		return framework.NewLifecycleError(op, errSessionClosed)
	}
	s.logger.Printf("Clicking #%s", elementID)
	return s.classify(ctx, s.driver.Click(ctx, elementID), framework.ElementNotFoundError, op)
}

func (s *managedSession) Text(ctx context.Context, elementID string) (string, error) {
	op := "read text of #" + elementID
	if s.isClosed() {
		return "", framework.NewLifecycleError(op, errSessionClosed)
	}
	text, err := s.driver.Text(ctx, elementID)
	if err != nil {
		return "", s.classify(ctx, err, framework.ElementNotFoundError, op)
	}
	return text, nil
}

func (s *managedSession) Close() error {
	var err error
	s.closeOnce.Do(func() {
		atomic.StoreInt32(&s.closed, 1)
		s.logger.Printf("Closing %s session %s", s.kind, s.id)
		if closeErr := s.driver.Close(); closeErr != nil {
			s.logger.Printf("Error closing %s session: %s", s.kind, closeErr)
			err = framework.Classify(closeErr, framework.LifecycleError, "close "+s.kind.String()+" session")
		}
		if s.onClose != nil {
			s.onClose(s)
		}
	})
	return err
}

func (s *managedSession) isClosed() bool {
	return atomic.LoadInt32(&s.closed) != 0
}

// classify gives an unclassified backend error the most likely kind. If the caller's context is
// done, the operation ran out of time rather than failing on its own; if the session was closed
// underneath the call, that is reported instead of whatever the backend saw.
func (s *managedSession) classify(ctx context.Context, err error, kind framework.ErrorKind, op string) error {
	if err == nil {
		return nil
	}
	var fe *framework.Error
	if errors.As(err, &fe) {
		return err
	}
	if ctx.Err() != nil {
		return framework.NewTimeoutError(op, ctx.Err())
	}
	if s.isClosed() {
		return framework.NewLifecycleError(op, errSessionClosed)
	}
	return framework.Classify(err, kind, op)
}
