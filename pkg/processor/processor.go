// Package processor runs one order through the form and artifact steps with a
// bounded number of attempts.
package processor

import (
	"context"
	"fmt"
	"time"

	"github.com/entrhq/robotorder/pkg/artifact"
	"github.com/entrhq/robotorder/pkg/form"
	"github.com/entrhq/robotorder/pkg/logging"
	"github.com/entrhq/robotorder/pkg/orders"
)

// Default retry policy
const (
	DefaultRetryLimit = 3
	DefaultBackoff    = 2 * time.Second
)

// Driver is the form workflow the processor drives.
type Driver interface {
	Begin()
	DismissModal(ctx context.Context) form.ModalResult
	Fill(ctx context.Context, row orders.Row) error
	Preview(ctx context.Context) error
	Submit(ctx context.Context) error
	OrderAnother(ctx context.Context) error
}

// Capturer writes the artifacts of a submitted order.
type Capturer interface {
	RenderReceipt(ctx context.Context, orderNumber string) (*artifact.Receipt, error)
	CaptureScreenshot(ctx context.Context, orderNumber string) (string, error)
	EmbedScreenshot(screenshotPath, receiptPath string) error
}

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Outcome reports what happened to one order.
type Outcome struct {
	OrderNumber      string
	Succeeded        bool
	Attempts         int
	Pair             artifact.Pair
	ConfirmationCode string
	Embedded         bool

	// AttemptErrors holds the error of every failed attempt, in order
	AttemptErrors []error

	// Warnings lists non-fatal problems of the successful attempt
	Warnings []string

	// Err is the last attempt error when the order failed
	Err error
}

// Processor applies the retry policy to each order.
type Processor struct {
	driver     Driver
	capturer   Capturer
	retryLimit int
	backoff    time.Duration
	sleep      SleepFunc
	logger     *logging.Logger
}

// Option configures a Processor.
type Option func(*Processor)

// WithRetryLimit sets the number of attempts per order.
func WithRetryLimit(limit int) Option {
	return func(p *Processor) {
		if limit > 0 {
			p.retryLimit = limit
		}
	}
}

// WithBackoff sets the delay between attempts.
func WithBackoff(backoff time.Duration) Option {
	return func(p *Processor) {
		p.backoff = backoff
	}
}

// WithSleep replaces the backoff wait.
func WithSleep(sleep SleepFunc) Option {
	return func(p *Processor) {
		p.sleep = sleep
	}
}

// WithLogger sets the processor logger.
func WithLogger(logger *logging.Logger) Option {
	return func(p *Processor) {
		p.logger = logger
	}
}

// New creates a processor.
func New(driver Driver, capturer Capturer, opts ...Option) *Processor {
	p := &Processor{
		driver:     driver,
		capturer:   capturer,
		retryLimit: DefaultRetryLimit,
		backoff:    DefaultBackoff,
		sleep:      sleepContext,
		logger:     logging.Discard(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Process runs row until an attempt succeeds or the retry limit is reached.
// Failures are reported on the Outcome; Process never returns an error.
func (p *Processor) Process(ctx context.Context, row orders.Row) Outcome {
	orderNumber := row.OrderNumber()
	outcome := Outcome{OrderNumber: orderNumber}
	p.logger.Infof("Processing order %s", orderNumber)
	if err := row.Validate(); err != nil {
		p.logger.Warnf("%v", err)
	}

	for attempt := 1; attempt <= p.retryLimit; attempt++ {
		outcome.Attempts = attempt

		err := p.attempt(ctx, row, &outcome)
		if err == nil {
			outcome.Succeeded = true
			p.logger.Infof("Order %s completed on attempt %d", orderNumber, attempt)
			return outcome
		}

		outcome.AttemptErrors = append(outcome.AttemptErrors, err)
		outcome.Err = err
		p.logger.Warnf("Order %s failed on attempt %d/%d: %v", orderNumber, attempt, p.retryLimit, err)

		if ctx.Err() != nil {
			break
		}
		if attempt < p.retryLimit {
			if err := p.sleep(ctx, p.backoff); err != nil {
				outcome.Err = err
				break
			}
		}
	}

	p.logger.Errorf("Failed to process order %s after %d attempts: %v", orderNumber, outcome.Attempts, outcome.Err)
	return outcome
}

// attempt runs the whole step sequence from scratch. Only steps up to and including
// Submit fail the attempt; once the order is placed a retry would place it twice.
func (p *Processor) attempt(ctx context.Context, row orders.Row, outcome *Outcome) error {
	orderNumber := row.OrderNumber()
	outcome.Pair = artifact.Pair{OrderNumber: orderNumber}
	outcome.ConfirmationCode = ""
	outcome.Embedded = false
	outcome.Warnings = nil

	p.driver.Begin()

	if result := p.driver.DismissModal(ctx); result.Outcome == form.ModalDismissFailed {
		p.logger.Debugf("Order %s: modal not dismissed: %v", orderNumber, result.Err)
	}

	if err := p.driver.Fill(ctx, row); err != nil {
		return err
	}
	if err := p.driver.Preview(ctx); err != nil {
		return err
	}
	if err := p.driver.Submit(ctx); err != nil {
		return err
	}

	p.captureArtifacts(ctx, outcome)

	if err := p.driver.OrderAnother(ctx); err != nil {
		outcome.Warnings = append(outcome.Warnings, fmt.Sprintf("order another: %v", err))
		p.logger.Warnf("Order %s: could not reset the form: %v", orderNumber, err)
	}
	return nil
}

func (p *Processor) captureArtifacts(ctx context.Context, outcome *Outcome) {
	orderNumber := outcome.OrderNumber

	receipt, err := p.capturer.RenderReceipt(ctx, orderNumber)
	if err != nil {
		outcome.Warnings = append(outcome.Warnings, fmt.Sprintf("receipt: %v", err))
		p.logger.Errorf("Receipt for order %s was not saved: %v", orderNumber, err)
		return
	}
	outcome.Pair.ReceiptPath = receipt.Path
	outcome.ConfirmationCode = receipt.ConfirmationCode

	screenshot, err := p.capturer.CaptureScreenshot(ctx, orderNumber)
	if err != nil {
		outcome.Warnings = append(outcome.Warnings, fmt.Sprintf("screenshot: %v", err))
		p.logger.Errorf("Screenshot for order %s was not saved: %v", orderNumber, err)
		return
	}
	outcome.Pair.ScreenshotPath = screenshot

	if err := p.capturer.EmbedScreenshot(screenshot, receipt.Path); err != nil {
		outcome.Warnings = append(outcome.Warnings, fmt.Sprintf("embed: %v", err))
		p.logger.Errorf("Could not embed screenshot for order %s: %v", orderNumber, err)
		return
	}
	outcome.Embedded = true
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
