// Package browser drives a Chromium page through Playwright.
//
// A SessionManager owns the Playwright driver and the single browser session of a
// run. The Session exposes the small set of page operations the order workflow needs:
// navigation, clicks, form input, visibility waits, element screenshots, and printing
// markup to PDF. Every operation takes an explicit timeout; a wait that runs out
// returns a *TimeoutError.
//
// # Session Lifecycle
//
//  1. Initialize: install (if needed) and start the Playwright driver
//  2. StartSession: launch Chromium with an isolated context and one page
//  3. Use: Navigate, Click, Fill, WaitFor, ... on the session
//  4. Shutdown: close the session and stop the driver
//
// # Example Usage
//
//	manager := browser.NewSessionManager()
//	if err := manager.Initialize(); err != nil {
//	    return err
//	}
//	defer manager.Shutdown()
//
//	session, err := manager.StartSession(browser.SessionOptions{Headless: true})
//	if err != nil {
//	    return err
//	}
//	err = session.Navigate("https://robotsparebinindustries.com/#/robot-order", browser.NavigateOptions{})
package browser
