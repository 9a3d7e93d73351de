package drivers

import (
	"context"
	"errors"

	"github.com/playwright-community/playwright-go"

	"github.com/demowebapp/browser-contract-tests/framework"
)

type playwrightDriver struct {
	config  Config
	pw      *playwright.Playwright
	browser playwright.Browser
	page    playwright.Page
}

func newPlaywrightDriver(ctx context.Context, config Config, logger framework.Logger) (Driver, error) {
	const op = "start firefox"

	runOptions := &playwright.RunOptions{Browsers: []string{"firefox"}}
	if config.InstallPlaywright {
		logger.Printf("Installing the Playwright driver and Firefox")
		if err := runWithContext(ctx, func() error { return playwright.Install(runOptions) }); err != nil {
			return nil, framework.NewDriverUnavailableError("install playwright", err)
		}
	}

	pw, err := callWithContext(ctx, func() (*playwright.Playwright, error) {
		return playwright.Run(runOptions)
	}, func(late *playwright.Playwright) {
		_ = late.Stop()
	})
	if err != nil {
		return nil, framework.NewDriverUnavailableError(op, err)
	}

	launch := playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(config.Headless),
		Timeout:  playwright.Float(millis(remaining(ctx, config.LaunchTimeout))),
	}
	if config.FirefoxPath != "" {
		launch.ExecutablePath = playwright.String(config.FirefoxPath)
	}
	logger.Printf("Launching Firefox")
	browser, err := pw.Firefox.Launch(launch)
	if err != nil {
		_ = pw.Stop()
		return nil, framework.NewDriverUnavailableError(op, err)
	}
	page, err := browser.NewPage()
	if err != nil {
		_ = browser.Close()
		_ = pw.Stop()
		return nil, framework.NewDriverUnavailableError(op, err)
	}

	return &playwrightDriver{config: config, pw: pw, browser: browser, page: page}, nil
}

func (d *playwrightDriver) Navigate(ctx context.Context, url string) error {
	return runWithContext(ctx, func() error {
		_, err := d.page.Goto(url, playwright.PageGotoOptions{
			Timeout:   playwright.Float(millis(remaining(ctx, d.config.PageLoadTimeout))),
			WaitUntil: playwright.WaitUntilStateLoad,
		})
		return err
	})
}

func (d *playwrightDriver) Click(ctx context.Context, elementID string) error {
	wait := remaining(ctx, d.config.ImplicitWait)
	err := runWithContext(ctx, func() error {
		return d.page.Locator(cssID(elementID)).Click(playwright.LocatorClickOptions{
			Timeout: playwright.Float(millis(wait)),
		})
	})
	return lookupError(ctx, err, elementID, wait, errors.Is(err, playwright.ErrTimeout))
}

func (d *playwrightDriver) Text(ctx context.Context, elementID string) (string, error) {
	wait := remaining(ctx, d.config.ImplicitWait)
	text, err := callWithContext(ctx, func() (string, error) {
		return d.page.Locator(cssID(elementID)).InnerText(playwright.LocatorInnerTextOptions{
			Timeout: playwright.Float(millis(wait)),
		})
	}, nil)
	if err != nil {
		return "", lookupError(ctx, err, elementID, wait, errors.Is(err, playwright.ErrTimeout))
	}
	return text, nil
}

func (d *playwrightDriver) Close() error {
	err := d.browser.Close()
	if stopErr := d.pw.Stop(); err == nil {
		err = stopErr
	}
	return err
}
