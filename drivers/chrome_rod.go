package drivers

import (
	"context"
	"errors"
	"os/exec"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/demowebapp/browser-contract-tests/framework"
)

type rodDriver struct {
	config   Config
	launcher *launcher.Launcher
	browser  *rod.Browser
	page     *rod.Page
}

func newRodDriver(ctx context.Context, config Config, logger framework.Logger) (Driver, error) {
	const op = "start chrome"

	path := config.ChromePath
	if path == "" {
		found, ok := launcher.LookPath()
		if !ok {
			return nil, framework.NewDriverUnavailableError(op,
				errors.New("no Chrome or Chromium executable was found; install one or set chromePath"))
		}
		path = found
	} else if _, err := exec.LookPath(path); err != nil {
		return nil, framework.NewDriverUnavailableError(op, err)
	}
	logger.Printf("Launching Chrome from %s", path)

	l := launcher.New().
		Bin(path).
		Headless(config.Headless).
		Set("no-sandbox").
		Set("disable-gpu").
		Set("no-first-run")

	controlURL, err := callWithContext(ctx, l.Launch, nil)
	if err != nil {
		l.Kill()
		return nil, framework.NewDriverUnavailableError(op, err)
	}

	// a browser that accepts the websocket but never answers is only unblocked by killing it
	browser := rod.New().ControlURL(controlURL)
	page, err := callWithContext(ctx, func() (*rod.Page, error) {
		if err := browser.Connect(); err != nil {
			return nil, err
		}
		return browser.Page(proto.TargetCreateTarget{})
	}, nil)
	if err != nil {
		l.Kill()
		l.Cleanup()
		return nil, framework.NewDriverUnavailableError(op, err)
	}

	return &rodDriver{config: config, launcher: l, browser: browser, page: page}, nil
}

func (d *rodDriver) Navigate(ctx context.Context, url string) error {
	p := d.page.Context(ctx).Timeout(d.config.PageLoadTimeout)
	defer p.CancelTimeout()
	if err := p.Navigate(url); err != nil {
		return err
	}
	return p.WaitLoad()
}

func (d *rodDriver) Click(ctx context.Context, elementID string) error {
	el, err := d.find(ctx, elementID)
	if err != nil {
		return err
	}
	return el.Click(proto.InputMouseButtonLeft, 1)
}

func (d *rodDriver) Text(ctx context.Context, elementID string) (string, error) {
	el, err := d.find(ctx, elementID)
	if err != nil {
		return "", err
	}
	return el.Text()
}

func (d *rodDriver) find(ctx context.Context, elementID string) (*rod.Element, error) {
	p := d.page.Context(ctx).Timeout(d.config.ImplicitWait)
	el, err := p.Element(cssID(elementID))
	p.CancelTimeout()
	if err != nil {
		return nil, lookupError(ctx, err, elementID, d.config.ImplicitWait, errors.Is(err, context.DeadlineExceeded))
	}
	return el.Context(ctx), nil
}

func (d *rodDriver) Close() error {
	err := d.browser.Close()
	d.launcher.Kill()
	d.launcher.Cleanup()
	return err
}
