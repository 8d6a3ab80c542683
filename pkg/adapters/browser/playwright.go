package browser

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/playwright-community/playwright-go"
)

// PlaywrightOptions configures the browser launched by NewPlaywrightDriver.
type PlaywrightOptions struct {
	Headless bool
	// Timeout bounds every page operation. Zero keeps the Playwright default.
	Timeout time.Duration
	// Install downloads the driver and browsers when they are missing.
	Install bool
}

// PlaywrightDriver drives a single Chromium page.
type PlaywrightDriver struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	context playwright.BrowserContext
	page    playwright.Page
}

// NewPlaywrightDriver starts Playwright and opens a blank page.
func NewPlaywrightDriver(opts PlaywrightOptions) (*PlaywrightDriver, error) {
	// Keep Playwright output away from the CLI
	runOpts := &playwright.RunOptions{
		Verbose: false,
		Stdout:  io.Discard,
		Stderr:  io.Discard,
	}

	if opts.Install {
		if err := playwright.Install(runOpts); err != nil {
			return nil, fmt.Errorf("failed to install playwright: %w", err)
		}
	}

	pw, err := playwright.Run(runOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to start playwright: %w", err)
	}

	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: &opts.Headless,
	})
	if err != nil {
		pw.Stop()
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	bctx, err := browser.NewContext()
	if err != nil {
		browser.Close()
		pw.Stop()
		return nil, fmt.Errorf("failed to create context: %w", err)
	}

	page, err := bctx.NewPage()
	if err != nil {
		bctx.Close()
		browser.Close()
		pw.Stop()
		return nil, fmt.Errorf("failed to create page: %w", err)
	}
	if opts.Timeout > 0 {
		page.SetDefaultTimeout(float64(opts.Timeout.Milliseconds()))
	}

	return &PlaywrightDriver{pw: pw, browser: browser, context: bctx, page: page}, nil
}

// Goto navigates to url and waits for the page to load.
func (d *PlaywrightDriver) Goto(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := d.page.Goto(url); err != nil {
		return fmt.Errorf("navigation failed: %w", err)
	}
	return nil
}

// Texts returns the text content of every element matching selector.
func (d *PlaywrightDriver) Texts(ctx context.Context, selector string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	elements, err := d.page.QuerySelectorAll(selector)
	if err != nil {
		return nil, fmt.Errorf("selector query failed: %w", err)
	}
	texts := make([]string, 0, len(elements))
	for _, el := range elements {
		text, err := el.TextContent()
		if err != nil {
			return nil, fmt.Errorf("text extraction failed: %w", err)
		}
		texts = append(texts, text)
	}
	return texts, nil
}

// Click clicks the nth element matching selector.
func (d *PlaywrightDriver) Click(ctx context.Context, selector string, nth int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	elements, err := d.page.QuerySelectorAll(selector)
	if err != nil {
		return fmt.Errorf("selector query failed: %w", err)
	}
	if nth < 0 || nth >= len(elements) {
		return fmt.Errorf("no element #%d matching selector: %s", nth, selector)
	}
	if err := elements[nth].Click(); err != nil {
		return fmt.Errorf("click failed: %w", err)
	}
	return nil
}

// Visible reports whether an element matching selector is visible.
func (d *PlaywrightDriver) Visible(ctx context.Context, selector string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	visible, err := d.page.IsVisible(selector)
	if err != nil {
		return false, fmt.Errorf("visibility check failed: %w", err)
	}
	return visible, nil
}

// Back navigates one step back in history.
func (d *PlaywrightDriver) Back(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := d.page.GoBack(); err != nil {
		return fmt.Errorf("history back failed: %w", err)
	}
	return nil
}

// Close shuts the browser and Playwright down.
func (d *PlaywrightDriver) Close() error {
	return errors.Join(
		d.page.Close(),
		d.context.Close(),
		d.browser.Close(),
		d.pw.Stop(),
	)
}
