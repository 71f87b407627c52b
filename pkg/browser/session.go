package browser

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/playwright-community/playwright-go"
)

// Navigate navigates the session's page to the specified URL.
func (s *Session) Navigate(url string, opts NavigateOptions) error {
	playwrightOpts := playwright.PageGotoOptions{}

	if opts.WaitUntil != "" {
		waitUntil := playwright.WaitUntilState(opts.WaitUntil)
		playwrightOpts.WaitUntil = &waitUntil
	}

	if opts.Timeout > 0 {
		playwrightOpts.Timeout = milliseconds(opts.Timeout)
	}

	if _, err := s.Page.Goto(url, playwrightOpts); err != nil {
		return fmt.Errorf("navigation failed: %w", err)
	}
	return nil
}

// Click clicks the first element matching the selector.
func (s *Session) Click(selector string, timeout time.Duration) error {
	err := s.Page.Locator(selector).First().Click(playwright.LocatorClickOptions{
		Timeout: milliseconds(timeout),
	})
	if err != nil {
		return wrapError("click", selector, timeout, err)
	}
	return nil
}

// Fill replaces the value of an input element.
func (s *Session) Fill(selector, value string, timeout time.Duration) error {
	err := s.Page.Locator(selector).First().Fill(value, playwright.LocatorFillOptions{
		Timeout: milliseconds(timeout),
	})
	if err != nil {
		return wrapError("fill", selector, timeout, err)
	}
	return nil
}

// SelectByLabel selects the option whose visible label equals label.
func (s *Session) SelectByLabel(selector, label string, timeout time.Duration) error {
	selected, err := s.Page.Locator(selector).First().SelectOption(
		playwright.SelectOptionValues{Labels: &[]string{label}},
		playwright.LocatorSelectOptionOptions{Timeout: milliseconds(timeout)},
	)
	if err != nil {
		return wrapError("select", selector, timeout, err)
	}
	if len(selected) == 0 {
		return fmt.Errorf("select %s: no option labelled %q", selector, label)
	}
	return nil
}

// IsVisible reports whether an element matching the selector is currently visible.
// It does not wait.
func (s *Session) IsVisible(selector string) (bool, error) {
	visible, err := s.Page.Locator(selector).First().IsVisible()
	if err != nil {
		return false, fmt.Errorf("visibility check %s failed: %w", selector, err)
	}
	return visible, nil
}

// WaitFor blocks until an element matching the selector reaches state.
func (s *Session) WaitFor(selector string, state WaitState, timeout time.Duration) error {
	if selector == "" {
		return fmt.Errorf("selector is required for wait")
	}

	playwrightState := playwright.WaitForSelectorState(state)
	err := s.Page.Locator(selector).First().WaitFor(playwright.LocatorWaitForOptions{
		State:   &playwrightState,
		Timeout: milliseconds(timeout),
	})
	if err != nil {
		return wrapError("wait for "+string(state), selector, timeout, err)
	}
	return nil
}

// OuterHTML returns the outer markup of the first element matching the selector.
func (s *Session) OuterHTML(selector string, timeout time.Duration) (string, error) {
	result, err := s.Page.Locator(selector).First().Evaluate("el => el.outerHTML", nil,
		playwright.LocatorEvaluateOptions{Timeout: milliseconds(timeout)})
	if err != nil {
		return "", wrapError("read markup of", selector, timeout, err)
	}

	markup, ok := result.(string)
	if !ok {
		return "", fmt.Errorf("read markup of %s: unexpected result type %T", selector, result)
	}
	return markup, nil
}

// ScreenshotElement writes a PNG capture of the first element matching the selector.
func (s *Session) ScreenshotElement(selector, path string, timeout time.Duration) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create screenshot directory: %w", err)
	}

	_, err := s.Page.Locator(selector).First().Screenshot(playwright.LocatorScreenshotOptions{
		Path:    playwright.String(path),
		Timeout: milliseconds(timeout),
	})
	if err != nil {
		return wrapError("screenshot", selector, timeout, err)
	}
	return nil
}

// PrintPDF renders markup on a scratch page of the session's context and prints it to path.
// The order page is left untouched.
func (s *Session) PrintPDF(markup, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create pdf directory: %w", err)
	}

	page, err := s.Context.NewPage()
	if err != nil {
		return fmt.Errorf("failed to open print page: %w", err)
	}
	defer page.Close() // Ignore errors, the PDF is already written

	if err := page.SetContent(markup); err != nil {
		return fmt.Errorf("failed to load markup: %w", err)
	}

	_, err = page.PDF(playwright.PagePdfOptions{
		Path:            playwright.String(path),
		Format:          playwright.String("A4"),
		PrintBackground: playwright.Bool(true),
	})
	if err != nil {
		return fmt.Errorf("failed to print pdf: %w", err)
	}
	return nil
}

// Helper functions

func milliseconds(d time.Duration) *float64 {
	if d <= 0 {
		return nil
	}
	ms := float64(d / time.Millisecond)
	return &ms
}

func wrapError(action, selector string, timeout time.Duration, err error) error {
	if errors.Is(err, playwright.ErrTimeout) {
		return &TimeoutError{Selector: selector, Action: action, After: timeout, Err: err}
	}
	return fmt.Errorf("%s %s failed: %w", action, selector, err)
}
