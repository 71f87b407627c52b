package main

import (
	"github.com/entrhq/robotorder/pkg/browser"
	"github.com/entrhq/robotorder/pkg/config"
	"github.com/entrhq/robotorder/pkg/executor/batch"
)

// playwrightBrowser opens the order site in a Playwright-driven Chromium.
type playwrightBrowser struct {
	manager *browser.SessionManager
	options browser.SessionOptions
}

func newPlaywrightBrowser(cfg *config.Config) *playwrightBrowser {
	return &playwrightBrowser{
		manager: browser.NewSessionManager(),
		options: browser.SessionOptions{
			Headless: cfg.Browser.Headless,
			Viewport: &browser.Viewport{
				Width:  cfg.Browser.ViewportWidth,
				Height: cfg.Browser.ViewportHeight,
			},
			Timeout: cfg.WaitTimeout,
		},
	}
}

func (b *playwrightBrowser) Open(siteURL string) (batch.Page, error) {
	if err := b.manager.Initialize(); err != nil {
		return nil, err
	}
	session, err := b.manager.StartSession(b.options)
	if err != nil {
		return nil, err
	}
	if err := session.Navigate(siteURL, browser.NavigateOptions{WaitUntil: "load"}); err != nil {
		return nil, err
	}
	return session, nil
}

// Close closes the session and stops Playwright. Safe when Open failed part way.
func (b *playwrightBrowser) Close() error {
	return b.manager.Shutdown()
}
