package drivers

import (
	"context"
	"errors"
	"os/exec"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/demowebapp/browser-contract-tests/framework"
)

var edgeExecutables = []string{"microsoft-edge", "microsoft-edge-stable", "msedge"}

type chromedpDriver struct {
	config        Config
	browserCtx    context.Context
	browserCancel context.CancelFunc
	allocCancel   context.CancelFunc
}

func newChromedpDriver(ctx context.Context, config Config, logger framework.Logger) (Driver, error) {
	const op = "start edge"

	path := config.EdgePath
	if path != "" {
		if _, err := exec.LookPath(path); err != nil {
			return nil, framework.NewDriverUnavailableError(op, err)
		}
	} else {
		for _, name := range edgeExecutables {
			if found, err := exec.LookPath(name); err == nil {
				path = found
				break
			}
		}
	}
	if path == "" {
		return nil, framework.NewDriverUnavailableError(op,
			errors.New("no Microsoft Edge executable was found; install it or set edgePath"))
	}
	logger.Printf("Launching Edge from %s", path)

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.ExecPath(path),
		chromedp.Flag("headless", config.Headless),
		chromedp.NoSandbox,
		chromedp.DisableGPU,
	)
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx, chromedp.WithLogf(logger.Printf))

	// the first Run starts the browser
	if err := runWithContext(ctx, func() error { return chromedp.Run(browserCtx) }); err != nil {
		browserCancel()
		allocCancel()
		return nil, framework.NewDriverUnavailableError(op, err)
	}

	return &chromedpDriver{
		config:        config,
		browserCtx:    browserCtx,
		browserCancel: browserCancel,
		allocCancel:   allocCancel,
	}, nil
}

// callContext derives a context for one browser call that ends after timeout or when the
// caller's context is done, whichever comes first.
func (d *chromedpDriver) callContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	callCtx, cancel := context.WithTimeout(d.browserCtx, timeout)
	stop := context.AfterFunc(ctx, cancel)
	return callCtx, func() {
		stop()
		cancel()
	}
}

func (d *chromedpDriver) Navigate(ctx context.Context, url string) error {
	callCtx, cancel := d.callContext(ctx, d.config.PageLoadTimeout)
	defer cancel()
	return chromedp.Run(callCtx, chromedp.Navigate(url))
}

func (d *chromedpDriver) Click(ctx context.Context, elementID string) error {
	callCtx, cancel := d.callContext(ctx, d.config.ImplicitWait)
	defer cancel()
	err := chromedp.Run(callCtx, chromedp.Click(cssID(elementID), chromedp.ByQuery))
	return lookupError(ctx, err, elementID, d.config.ImplicitWait, errors.Is(err, context.DeadlineExceeded))
}

func (d *chromedpDriver) Text(ctx context.Context, elementID string) (string, error) {
	callCtx, cancel := d.callContext(ctx, d.config.ImplicitWait)
	defer cancel()
	var text string
	err := chromedp.Run(callCtx, chromedp.Text(cssID(elementID), &text, chromedp.ByQuery))
	if err != nil {
		return "", lookupError(ctx, err, elementID, d.config.ImplicitWait, errors.Is(err, context.DeadlineExceeded))
	}
	return text, nil
}

func (d *chromedpDriver) Close() error {
	err := chromedp.Cancel(d.browserCtx)
	d.browserCancel()
	d.allocCancel()
	return err
}
