package drivers

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/demowebapp/browser-contract-tests/framework"
)

type fakeDriver struct {
	navigateErr error
	clickErr    error
	text        string
	textErr     error
	block       chan struct{}
	closeCalls  int
	lock        sync.Mutex
}

func (d *fakeDriver) Navigate(ctx context.Context, url string) error { return d.navigateErr }

func (d *fakeDriver) Click(ctx context.Context, elementID string) error {
	if d.block != nil {
		select {
		case <-d.block:
			return errors.New("browser went away")
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return d.clickErr
}

func (d *fakeDriver) Text(ctx context.Context, elementID string) (string, error) {
	return d.text, d.textErr
}

func (d *fakeDriver) Close() error {
	d.lock.Lock()
	defer d.lock.Unlock()
	d.closeCalls++
	if d.block != nil && d.closeCalls == 1 {
		close(d.block)
	}
	return nil
}

func (d *fakeDriver) closes() int {
	d.lock.Lock()
	defer d.lock.Unlock()
	return d.closeCalls
}

func factoryWith(kind Kind, d *fakeDriver) *Factory {
	f := NewFactory(DefaultConfig())
	f.Register(kind, func(context.Context, Config, framework.Logger) (Driver, error) { return d, nil })
	return f
}

func TestCreateReturnsSessionWithUniqueID(t *testing.T) {
	f := factoryWith(Chrome, &fakeDriver{})

	s1, err := f.Create(context.Background(), Chrome, nil)
	require.NoError(t, err)
	s2, err := f.Create(context.Background(), Chrome, nil)
	require.NoError(t, err)

	assert.Equal(t, Chrome, s1.Kind())
	assert.NotEqual(t, "", s1.ID())
	assert.NotEqual(t, s1.ID(), s2.ID())
	assert.Len(t, f.OpenSessions(), 2)
}

func TestCreateUnregisteredKindIsDriverUnavailable(t *testing.T) {
	f := NewFactory(DefaultConfig())
	f.Register(InternetExplorer, nil)

	_, err := f.Create(context.Background(), InternetExplorer, nil)
	require.Error(t, err)
	assert.Equal(t, framework.DriverUnavailableError, framework.KindOf(err))
}

func TestCreateClassifiesConstructorErrorsAsDriverUnavailable(t *testing.T) {
	f := NewFactory(DefaultConfig())
	f.Register(Firefox, func(context.Context, Config, framework.Logger) (Driver, error) {
		return nil, errors.New("executable not found")
	})

	_, err := f.Create(context.Background(), Firefox, nil)
	require.Error(t, err)
	assert.Equal(t, framework.DriverUnavailableError, framework.KindOf(err))
	assert.Contains(t, err.Error(), "executable not found")
}

func TestCreateBoundsLaunchByLaunchTimeout(t *testing.T) {
	config := DefaultConfig()
	config.LaunchTimeout = 50 * time.Millisecond
	f := NewFactory(config)
	f.Register(Edge, func(ctx context.Context, _ Config, _ framework.Logger) (Driver, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})

	_, err := f.Create(context.Background(), Edge, nil)
	require.Error(t, err)
	assert.Equal(t, framework.DriverUnavailableError, framework.KindOf(err))
}

func TestCloseIsIdempotent(t *testing.T) {
	d := &fakeDriver{}
	f := factoryWith(Chrome, d)
	s, err := f.Create(context.Background(), Chrome, nil)
	require.NoError(t, err)

	assert.NoError(t, s.Close())
	assert.NoError(t, s.Close())
	assert.Equal(t, 1, d.closes())
	assert.Len(t, f.OpenSessions(), 0)
}

func TestCallsAfterCloseAreLifecycleErrors(t *testing.T) {
	f := factoryWith(Chrome, &fakeDriver{})
	s, err := f.Create(context.Background(), Chrome, nil)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	err = s.Navigate(context.Background(), "http://localhost:5000")
	assert.Equal(t, framework.LifecycleError, framework.KindOf(err))
	_, err = s.Text(context.Background(), "displayHeader")
	assert.Equal(t, framework.LifecycleError, framework.KindOf(err))
}

func TestSessionClassifiesBackendErrors(t *testing.T) {
	d := &fakeDriver{
		navigateErr: errors.New("net::ERR_CONNECTION_REFUSED"),
		clickErr:    errors.New("no node"),
		textErr:     framework.NewElementNotFoundError("find #displayHeader", errors.New("gone")),
	}
	f := factoryWith(Chrome, d)
	s, err := f.Create(context.Background(), Chrome, nil)
	require.NoError(t, err)

	assert.Equal(t, framework.NavigationError, framework.KindOf(s.Navigate(context.Background(), "http://localhost:1")))
	assert.Equal(t, framework.ElementNotFoundError, framework.KindOf(s.Click(context.Background(), "clickmeButton")))
	_, err = s.Text(context.Background(), "displayHeader")
	assert.Equal(t, framework.ElementNotFoundError, framework.KindOf(err))
}

func TestSessionReportsExpiredContextAsTimeout(t *testing.T) {
	d := &fakeDriver{block: make(chan struct{})}
	f := factoryWith(Chrome, d)
	s, err := f.Create(context.Background(), Chrome, nil)
	require.NoError(t, err)
	defer s.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err = s.Click(ctx, "clickmeButton")
	assert.Equal(t, framework.TimeoutError, framework.KindOf(err))
}

func TestCloseInterruptsBlockedCall(t *testing.T) {
	d := &fakeDriver{block: make(chan struct{})}
	f := factoryWith(Chrome, d)
	s, err := f.Create(context.Background(), Chrome, nil)
	require.NoError(t, err)

	result := make(chan error, 1)
	go func() { result <- s.Click(context.Background(), "clickmeButton") }()
	time.Sleep(20 * time.Millisecond)
	require.NoError(t, s.Close())

	select {
	case err := <-result:
		assert.Equal(t, framework.LifecycleError, framework.KindOf(err))
	case <-time.After(time.Second):
		require.Fail(t, "blocked call was not interrupted by Close")
	}
}

func TestCloseAll(t *testing.T) {
	d := &fakeDriver{}
	f := factoryWith(Firefox, d)
	for i := 0; i < 3; i++ {
		_, err := f.Create(context.Background(), Firefox, nil)
		require.NoError(t, err)
	}

	require.NoError(t, f.CloseAll())
	assert.Equal(t, 3, d.closes())
	assert.Len(t, f.OpenSessions(), 0)
}
