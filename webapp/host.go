// Package webapp contains the demo web application under test and the Host that runs it inside
// the test process.
package webapp

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldlog"

	"github.com/demowebapp/browser-contract-tests/framework"
	"github.com/demowebapp/browser-contract-tests/servicedef"
)

// State is the lifecycle state of a Host.
type State int

const (
	NotStarted State = iota
	Running
	Stopped
)

func (s State) String() string {
	switch s {
	case NotStarted:
		return "not started"
	case Running:
		return "running"
	default:
		return "stopped"
	}
}

// Config holds host configuration options.
type Config struct {
	Addr             string        `yaml:"addr"`             // listen address, e.g. "localhost:5000" or ":0"
	ReadTimeout      time.Duration `yaml:"readTimeout"`      // HTTP read timeout
	WriteTimeout     time.Duration `yaml:"writeTimeout"`     // HTTP write timeout
	IdleTimeout      time.Duration `yaml:"idleTimeout"`      // HTTP keep-alive idle timeout
	ReadinessTimeout time.Duration `yaml:"readinessTimeout"` // how long Start waits for the listener to answer
	ShutdownTimeout  time.Duration `yaml:"shutdownTimeout"`  // how long Stop waits for in-flight requests
	Defect           bool          `yaml:"defect"`           // serve a page whose button does nothing
}

// DefaultConfig returns the configuration used by the test runner.
func DefaultConfig() Config {
	return Config{
		Addr:             servicedef.DefaultAppAddress,
		ReadTimeout:      15 * time.Second,
		WriteTimeout:     15 * time.Second,
		IdleTimeout:      60 * time.Second,
		ReadinessTimeout: 10 * time.Second,
		ShutdownTimeout:  30 * time.Second,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Addr == "" {
		c.Addr = d.Addr
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = d.ReadTimeout
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = d.WriteTimeout
	}
	if c.IdleTimeout == 0 {
		c.IdleTimeout = d.IdleTimeout
	}
	if c.ReadinessTimeout == 0 {
		c.ReadinessTimeout = d.ReadinessTimeout
	}
	if c.ShutdownTimeout == 0 {
		c.ShutdownTimeout = d.ShutdownTimeout
	}
	return c
}

// Host runs the demo application on a local address for the duration of a test run.
//
// A Host is an explicit handle rather than global state, so a test process can start, stop and
// restart it as many times as it likes.
type Host struct {
	config  Config
	loggers ldlog.Loggers
	app     *app
	wrap    func(http.Handler) http.Handler
	server  *http.Server
	baseURL string
	state   State
	served  chan struct{}
	lock    sync.Mutex
}

// NewHost creates a Host. The application is not started until Start is called.
func NewHost(config Config, loggers ldlog.Loggers) *Host {
	config = config.withDefaults()
	return &Host{
		config:  config,
		loggers: loggers,
		app:     newApp(config.Defect, loggers),
	}
}

// Start binds the listen address, begins serving in the background, and waits until the
// application answers requests.
//
// It returns a LifecycleError if the application is already running, and a StartupError if the
// address cannot be bound or the application does not become ready in time.
func (h *Host) Start() error {
	h.lock.Lock()
	defer h.lock.Unlock()

	if h.state == Running {
		return framework.NewLifecycleError("start", errors.New("application is already running"))
	}

	ln, err := net.Listen("tcp", h.config.Addr)
	if err != nil {
		return framework.NewStartupError("listen on "+h.config.Addr, err)
	}

	handler := h.app.handler()
	if h.wrap != nil {
		handler = h.wrap(handler)
	}
	server := &http.Server{
		Handler:      handler,
		ReadTimeout:  h.config.ReadTimeout,
		WriteTimeout: h.config.WriteTimeout,
		IdleTimeout:  h.config.IdleTimeout,
	}
	served := make(chan struct{})
	go func() {
		defer close(served)
		if err := server.Serve(ln); err != nil && err != http.ErrServerClosed {
			h.loggers.Errorf("Application server failed: %s", err)
		}
	}()

	baseURL := "http://" + advertisedAddr(h.config.Addr, ln.Addr())
	if err := awaitListener(baseURL, h.config.ReadinessTimeout); err != nil {
		_ = server.Close()
		<-served
		return framework.NewStartupError("readiness check", err)
	}

	h.server = server
	h.served = served
	h.baseURL = baseURL
	h.state = Running
	h.loggers.Infof("Application listening at %s", baseURL)
	return nil
}

// Stop shuts the application down gracefully, waiting for in-flight requests to finish. It never
// returns an error: problems are logged, so that teardown cannot hide an earlier test failure.
func (h *Host) Stop(ctx context.Context) {
	h.lock.Lock()
	defer h.lock.Unlock()

	if h.state != Running {
		h.loggers.Warnf("Stop called while application is %s; ignoring", h.state)
		return
	}
	h.state = Stopped

	ctx, cancel := context.WithTimeout(ctx, h.config.ShutdownTimeout)
	defer cancel()

	if err := h.server.Shutdown(ctx); err != nil {
		h.loggers.Warnf("Application did not shut down cleanly: %s", err)
		_ = h.server.Close()
	}
	select {
	case <-h.served:
	case <-ctx.Done():
		h.loggers.Warnf("Timed out waiting for application server to exit")
	}
	h.loggers.Infof("Application stopped")
}

// State returns the current lifecycle state.
func (h *Host) State() State {
	h.lock.Lock()
	defer h.lock.Unlock()
	return h.state
}

// BaseURL returns the URL of the application's root page. After Stop it still returns the URL
// the application last ran at; if it has never started, it returns "".
func (h *Host) BaseURL() string {
	h.lock.Lock()
	defer h.lock.Unlock()
	return h.baseURL
}

// Clicks returns the number of clicks the application has processed.
func (h *Host) Clicks() int {
	return int(atomic.LoadInt64(&h.app.clicks))
}

// advertisedAddr turns the configured listen address into one a browser can navigate to. An
// unspecified host becomes localhost, and port 0 becomes the port actually bound.
func advertisedAddr(configured string, bound net.Addr) string {
	host, _, err := net.SplitHostPort(configured)
	if err != nil {
		host = ""
	}
	_, port, _ := net.SplitHostPort(bound.String())
	if ip := net.ParseIP(host); host == "" || (ip != nil && ip.IsUnspecified()) {
		host = "localhost"
	}
	return net.JoinHostPort(host, port)
}

// awaitListener waits till the server is definitely answering requests before any browser is
// pointed at it.
func awaitListener(baseURL string, timeout time.Duration) error {
	client := &http.Client{Timeout: time.Second}
	err := framework.WaitUntil(context.Background(), timeout, framework.MinPollInterval, func(ctx context.Context) (bool, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodHead, baseURL, nil)
		if err != nil {
			return false, err
		}
		resp, err := client.Do(req)
		if err != nil {
			return false, err
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return false, fmt.Errorf("unexpected status %d", resp.StatusCode)
		}
		return true, nil
	})
	if err != nil {
		return fmt.Errorf("could not detect application listener at %s: %w", baseURL, err)
	}
	return nil
}
