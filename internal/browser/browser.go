package browser

import (
	"fmt"
	"os"
	"time"

	"github.com/playwright-community/playwright-go"

	"mercariBot/internal/logger"
)

// NOTE: без этого UA часть страниц не дорисовывается в headless-режиме
const userAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10.15; rv:108.0) Gecko/20100101 Firefox/108.0"

func New(cfg Config, log *logger.Zap) *PlaywrightBrowser {
	if cfg.Timeout == 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.NavigateTimeout == 0 {
		cfg.NavigateTimeout = 60 * time.Second
	}

	return &PlaywrightBrowser{
		cfg: cfg,
		log: log,
	}
}

func (b *PlaywrightBrowser) getPage() playwright.Page {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.page
}

func (b *PlaywrightBrowser) setPage(page playwright.Page) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.page = page
}

func (b *PlaywrightBrowser) getBrowserArgs() []string {
	return []string{
		"--no-sandbox",
	}
}

func (b *PlaywrightBrowser) getEnvMap() map[string]string {
	if b.cfg.Display != "" {
		return map[string]string{
			"DISPLAY": b.cfg.Display,
		}
	}
	return nil
}

func (b *PlaywrightBrowser) launchPersistent(pw *playwright.Playwright) error {
	opts := playwright.BrowserTypeLaunchPersistentContextOptions{
		Headless:  playwright.Bool(b.cfg.Headless),
		Args:      b.getBrowserArgs(),
		Locale:    playwright.String("ja-JP"),
		UserAgent: playwright.String(userAgent),
		Viewport:  &playwright.Size{Width: 1920, Height: 1080},
	}

	if env := b.getEnvMap(); env != nil {
		opts.Env = env
	}

	browserContext, err := pw.Firefox.LaunchPersistentContext(b.cfg.UserDataDir, opts)
	if err != nil {
		return err
	}

	b.mu.Lock()
	b.context = browserContext
	b.mu.Unlock()

	pages := browserContext.Pages()
	var page playwright.Page
	if len(pages) == 0 {
		page, err = browserContext.NewPage()
		if err != nil {
			return err
		}
	} else {
		page = pages[0]
	}

	b.setPage(page)
	page.SetDefaultTimeout(float64(b.cfg.Timeout.Milliseconds()))
	return nil
}

func (b *PlaywrightBrowser) launchStandard(pw *playwright.Playwright) error {
	opts := playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(b.cfg.Headless),
		Args:     b.getBrowserArgs(),
	}

	if env := b.getEnvMap(); env != nil {
		opts.Env = env
	}

	browser, err := pw.Firefox.Launch(opts)
	if err != nil {
		return err
	}

	b.mu.Lock()
	b.browser = browser
	b.mu.Unlock()

	page, err := browser.NewPage(playwright.BrowserNewPageOptions{
		Locale:    playwright.String("ja-JP"),
		UserAgent: playwright.String(userAgent),
		Viewport:  &playwright.Size{Width: 1920, Height: 1080},
	})
	if err != nil {
		return err
	}

	b.setPage(page)
	page.SetDefaultTimeout(float64(b.cfg.Timeout.Milliseconds()))
	return nil
}

func (b *PlaywrightBrowser) Launch() error {
	if b.cfg.BrowsersPath != "" {
		os.Setenv("PLAYWRIGHT_BROWSERS_PATH", b.cfg.BrowsersPath)
	}

	pw, err := playwright.Run()
	if err != nil {
		return err
	}
	b.pw = pw

	if b.cfg.UserDataDir != "" {
		return b.launchPersistent(pw)
	}

	return b.launchStandard(pw)
}

func (b *PlaywrightBrowser) Navigate(url string) error {
	page := b.getPage()
	if page == nil {
		return fmt.Errorf("браузер не запущен")
	}

	_, err := page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateLoad,
		Timeout:   playwright.Float(float64(b.cfg.NavigateTimeout.Milliseconds())),
	})
	return err
}

func (b *PlaywrightBrowser) Reload() error {
	page := b.getPage()
	if page == nil {
		return fmt.Errorf("браузер не запущен")
	}

	_, err := page.Reload()
	return err
}

func (b *PlaywrightBrowser) Back() error {
	page := b.getPage()
	if page == nil {
		return fmt.Errorf("браузер не запущен")
	}

	_, err := page.GoBack()
	return err
}

func (b *PlaywrightBrowser) URL() string {
	page := b.getPage()
	if page == nil {
		return ""
	}
	return page.URL()
}

func (b *PlaywrightBrowser) Content() (string, error) {
	page := b.getPage()
	if page == nil {
		return "", fmt.Errorf("браузер не запущен")
	}
	return page.Content()
}

func (b *PlaywrightBrowser) Screenshot() ([]byte, error) {
	page := b.getPage()
	if page == nil {
		return nil, fmt.Errorf("браузер не запущен")
	}

	return page.Screenshot(playwright.PageScreenshotOptions{
		FullPage: playwright.Bool(true),
	})
}

func (b *PlaywrightBrowser) Evaluate(script string) (any, error) {
	page := b.getPage()
	if page == nil {
		return nil, fmt.Errorf("браузер не запущен")
	}
	return page.Evaluate(script)
}

func (b *PlaywrightBrowser) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.context != nil {
		if err := b.context.Close(); err != nil {
			return err
		}
	}
	if b.browser != nil {
		if err := b.browser.Close(); err != nil {
			return err
		}
	}
	if b.pw != nil {
		return b.pw.Stop()
	}
	return nil
}
