package artifact

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/entrhq/robotorder/pkg/logging"
)

// ErrMissingArtifact is returned when an artifact a step depends on does not exist.
var ErrMissingArtifact = errors.New("missing artifact")

// Page is the subset of a browser session the capturer uses.
type Page interface {
	ScreenshotElement(selector, path string, timeout time.Duration) error
	OuterHTML(selector string, timeout time.Duration) (string, error)
	PrintPDF(markup, path string) error
}

// Embedder overlays an image onto an existing PDF in place.
type Embedder interface {
	Embed(imagePath, pdfPath string) error
}

// Pair is the screenshot and receipt produced for one order.
type Pair struct {
	OrderNumber    string
	ScreenshotPath string
	ReceiptPath    string
}

// Receipt is a rendered receipt PDF.
type Receipt struct {
	Path             string
	ConfirmationCode string
}

// Capturer writes the per-order artifacts.
type Capturer struct {
	page          Page
	layout        Layout
	embedder      Embedder
	previewImage  string
	receiptRegion string
	timeout       time.Duration
	logger        *logging.Logger
}

// Option configures a Capturer.
type Option func(*Capturer)

// WithEmbedder replaces the pdfcpu stamper.
func WithEmbedder(embedder Embedder) Option {
	return func(c *Capturer) {
		c.embedder = embedder
	}
}

// WithSelectors sets the preview image and receipt selectors.
func WithSelectors(previewImage, receipt string) Option {
	return func(c *Capturer) {
		c.previewImage = previewImage
		c.receiptRegion = receipt
	}
}

// WithTimeout bounds element lookups.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Capturer) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// WithLogger sets the capturer logger.
func WithLogger(logger *logging.Logger) Option {
	return func(c *Capturer) {
		c.logger = logger
	}
}

// NewCapturer creates a capturer writing into layout.
func NewCapturer(page Page, layout Layout, opts ...Option) *Capturer {
	c := &Capturer{
		page:          page,
		layout:        layout,
		embedder:      NewPDFStamper(),
		previewImage:  "#robot-preview-image",
		receiptRegion: "#receipt",
		timeout:       10 * time.Second,
		logger:        logging.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CaptureScreenshot saves the robot preview of an order and returns its path.
func (c *Capturer) CaptureScreenshot(ctx context.Context, orderNumber string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	path := c.layout.ScreenshotPath(orderNumber)
	if err := c.page.ScreenshotElement(c.previewImage, path, c.timeout); err != nil {
		return "", fmt.Errorf("screenshot for order %s: %w", orderNumber, err)
	}
	if err := verify(path); err != nil {
		return "", fmt.Errorf("screenshot for order %s was not saved: %w", orderNumber, err)
	}

	c.logger.Infof("Screenshot taken for order %s", orderNumber)
	return path, nil
}

// RenderReceipt prints the receipt region of the page to the order's PDF.
func (c *Capturer) RenderReceipt(ctx context.Context, orderNumber string) (*Receipt, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fragment, err := c.page.OuterHTML(c.receiptRegion, c.timeout)
	if err != nil {
		return nil, fmt.Errorf("receipt for order %s: %w", orderNumber, err)
	}

	document, doc, err := ReceiptDocument(fragment)
	if err != nil {
		return nil, fmt.Errorf("receipt for order %s: %w", orderNumber, err)
	}

	path := c.layout.ReceiptPath(orderNumber)
	if err := c.page.PrintPDF(document, path); err != nil {
		return nil, fmt.Errorf("receipt for order %s: %w", orderNumber, err)
	}
	if err := verify(path); err != nil {
		return nil, fmt.Errorf("receipt PDF for order %s was not saved: %w", orderNumber, err)
	}

	receipt := &Receipt{Path: path, ConfirmationCode: ConfirmationCode(doc)}
	c.logger.Infof("Receipt PDF saved for order %s (%s)", orderNumber, receipt.ConfirmationCode)
	return receipt, nil
}

// EmbedScreenshot overlays the screenshot onto the receipt PDF. Both files must exist;
// the embedder is never called with a missing input.
func (c *Capturer) EmbedScreenshot(screenshotPath, receiptPath string) error {
	if screenshotPath == "" || receiptPath == "" {
		return fmt.Errorf("%w: screenshot %q, receipt %q", ErrMissingArtifact, screenshotPath, receiptPath)
	}
	for _, path := range []string{screenshotPath, receiptPath} {
		if err := verify(path); err != nil {
			return err
		}
	}

	if err := c.embedder.Embed(screenshotPath, receiptPath); err != nil {
		return err
	}

	c.logger.Infof("Screenshot embedded into %s", receiptPath)
	return nil
}

func verify(path string) error {
	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrMissingArtifact, path)
	}
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%w: %s is a directory", ErrMissingArtifact, path)
	}
	return nil
}
