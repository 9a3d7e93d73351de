package drivers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/exec"
	"runtime"
	"time"

	"github.com/tebeka/selenium"

	"github.com/demowebapp/browser-contract-tests/framework"
)

const ieDriverExitTimeout = 5 * time.Second

// seleniumIEDriver drives Internet Explorer through a private IEDriverServer process.
type seleniumIEDriver struct {
	config Config
	cmd    *exec.Cmd
	exited chan struct{}
	wd     selenium.WebDriver
}

func newSeleniumIEDriver(ctx context.Context, config Config, logger framework.Logger) (Driver, error) {
	const op = "start internet explorer"

	if runtime.GOOS != "windows" {
		return nil, framework.NewDriverUnavailableError(op,
			fmt.Errorf("Internet Explorer is only available on Windows, not %s", runtime.GOOS))
	}
	path := config.IEDriverPath
	if path == "" {
		found, err := exec.LookPath("IEDriverServer")
		if err != nil {
			return nil, framework.NewDriverUnavailableError(op, err)
		}
		path = found
	}

	port, err := freeLocalPort()
	if err != nil {
		return nil, framework.NewDriverUnavailableError(op, err)
	}
	logger.Printf("Starting %s on port %d", path, port)
	cmd := exec.Command(path, fmt.Sprintf("/port=%d", port), "/log-level=WARN")
	if err := cmd.Start(); err != nil {
		return nil, framework.NewDriverUnavailableError(op, err)
	}
	d := &seleniumIEDriver{config: config, cmd: cmd, exited: make(chan struct{})}
	go func() {
		_ = cmd.Wait()
		close(d.exited)
	}()

	baseURL := fmt.Sprintf("http://127.0.0.1:%d", port)
	if err := d.awaitServer(ctx, baseURL); err != nil {
		d.killServer()
		return nil, framework.NewDriverUnavailableError(op, err)
	}

	caps := selenium.Capabilities{
		"browserName": "internet explorer",
		"se:ieOptions": map[string]interface{}{
			"ie.ensureCleanSession":       true,
			"ignoreProtectedModeSettings": true,
			"requireWindowFocus":          false,
		},
	}
	wd, err := callWithContext(ctx, func() (selenium.WebDriver, error) {
		return selenium.NewRemote(caps, baseURL)
	}, func(late selenium.WebDriver) {
		_ = late.Quit()
	})
	if err != nil {
		d.killServer()
		return nil, framework.NewDriverUnavailableError(op, err)
	}
	d.wd = wd
	if err := d.wd.SetPageLoadTimeout(config.PageLoadTimeout); err != nil {
		logger.Printf("Could not set page load timeout: %s", err)
	}
	if err := d.wd.SetImplicitWaitTimeout(config.ImplicitWait); err != nil {
		logger.Printf("Could not set implicit wait timeout: %s", err)
	}
	return d, nil
}

// awaitServer polls the WebDriver status endpoint until the server is ready or has exited.
func (d *seleniumIEDriver) awaitServer(ctx context.Context, baseURL string) error {
	waitCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-d.exited:
			cancel()
		case <-waitCtx.Done():
		}
	}()

	client := &http.Client{Timeout: time.Second}
	err := framework.WaitUntil(waitCtx, d.config.LaunchTimeout, framework.MinPollInterval, func(ctx context.Context) (bool, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/status", nil)
		if err != nil {
			return false, err
		}
		resp, err := client.Do(req)
		if err != nil {
			return false, err
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK, nil
	})
	if err != nil {
		select {
		case <-d.exited:
			return errors.New("IEDriverServer exited before it was ready")
		default:
		}
	}
	return err
}

func (d *seleniumIEDriver) Navigate(ctx context.Context, url string) error {
	return runWithContext(ctx, func() error { return d.wd.Get(url) })
}

func (d *seleniumIEDriver) Click(ctx context.Context, elementID string) error {
	return runWithContext(ctx, func() error {
		el, err := d.find(ctx, elementID)
		if err != nil {
			return err
		}
		return el.Click()
	})
}

func (d *seleniumIEDriver) Text(ctx context.Context, elementID string) (string, error) {
	return callWithContext(ctx, func() (string, error) {
		el, err := d.find(ctx, elementID)
		if err != nil {
			return "", err
		}
		return el.Text()
	}, nil)
}

// find relies on the server's implicit wait to retry the lookup.
func (d *seleniumIEDriver) find(ctx context.Context, elementID string) (selenium.WebElement, error) {
	el, err := d.wd.FindElement(selenium.ByID, elementID)
	if err != nil {
		var se *selenium.Error
		notFound := errors.As(err, &se) && se.Err == "no such element"
		return nil, lookupError(ctx, err, elementID, d.config.ImplicitWait, notFound)
	}
	return el, nil
}

func (d *seleniumIEDriver) Close() error {
	var err error
	if d.wd != nil {
		err = d.wd.Quit()
	}
	d.killServer()
	return err
}

func (d *seleniumIEDriver) killServer() {
	if d.cmd.Process != nil {
		_ = d.cmd.Process.Kill()
	}
	select {
	case <-d.exited:
	case <-time.After(ieDriverExitTimeout):
	}
}
