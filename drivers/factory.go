package drivers

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/demowebapp/browser-contract-tests/framework"
)

// Constructor starts a browser of one particular kind. The context bounds the launch only; the
// returned Driver must stay usable after it is done.
type Constructor func(ctx context.Context, config Config, logger framework.Logger) (Driver, error)

// Factory creates browser sessions by kind.
type Factory struct {
	config       Config
	constructors map[Kind]Constructor
	open         map[string]*managedSession
	lock         sync.Mutex
}

// NewFactory creates a Factory with the standard backend registered for every kind.
func NewFactory(config Config) *Factory {
	f := &Factory{
		config:       config.withDefaults(),
		constructors: make(map[Kind]Constructor),
		open:         make(map[string]*managedSession),
	}
	f.Register(Chrome, newRodDriver)
	f.Register(Firefox, newPlaywrightDriver)
	f.Register(InternetExplorer, newSeleniumIEDriver)
	f.Register(Edge, newChromedpDriver)
	return f
}

// Register sets the backend for a kind, replacing any existing one. A nil Constructor removes
// the kind, so that creating it reports the driver as unavailable.
func (f *Factory) Register(kind Kind, c Constructor) {
	f.lock.Lock()
	defer f.lock.Unlock()
	if c == nil {
		delete(f.constructors, kind)
		return
	}
	f.constructors[kind] = c
}

// Create launches a browser of the given kind and returns a session for it.
//
// Any failure to obtain the browser is returned as a DriverUnavailableError unless the backend
// already classified it.
func (f *Factory) Create(ctx context.Context, kind Kind, logger framework.Logger) (Session, error) {
	if logger == nil {
		logger = framework.NullLogger()
	}
	op := "start " + kind.String()

	f.lock.Lock()
	c := f.constructors[kind]
	f.lock.Unlock()
	if c == nil {
		return nil, framework.NewDriverUnavailableError(op, fmt.Errorf("no driver is registered for %s", kind))
	}

	launchCtx, cancel := context.WithTimeout(ctx, f.config.LaunchTimeout)
	defer cancel()
	driver, err := c(launchCtx, f.config, logger)
	if err != nil {
		return nil, framework.Classify(err, framework.DriverUnavailableError, op)
	}

	s := &managedSession{
		id:      uuid.New().String(),
		kind:    kind,
		driver:  driver,
		logger:  logger,
		onClose: f.forget,
	}
	f.lock.Lock()
	f.open[s.id] = s
	f.lock.Unlock()
	logger.Printf("Started %s session %s", kind, s.id)
	return s, nil
}

// OpenSessions returns the IDs of sessions that have been created but not yet closed, sorted.
func (f *Factory) OpenSessions() []string {
	f.lock.Lock()
	defer f.lock.Unlock()
	ret := make([]string, 0, len(f.open))
	for id := range f.open {
		ret = append(ret, id)
	}
	sort.Strings(ret)
	return ret
}

// CloseAll closes every session that is still open. It returns the first error encountered.
func (f *Factory) CloseAll() error {
	f.lock.Lock()
	sessions := make([]*managedSession, 0, len(f.open))
	for _, s := range f.open {
		sessions = append(sessions, s)
	}
	f.lock.Unlock()

	var first error
	for _, s := range sessions {
		if err := s.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (f *Factory) forget(s *managedSession) {
	f.lock.Lock()
	delete(f.open, s.id)
	f.lock.Unlock()
}
