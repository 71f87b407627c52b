package artifact

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Layout is the output tree of a run.
//
//	<root>/screenshot/robot_preview_image_<order>.png
//	<root>/pdf/receipt_<order>.pdf
type Layout struct {
	Root string
}

// NewLayout returns the layout rooted at root.
func NewLayout(root string) Layout {
	return Layout{Root: root}
}

// ScreenshotDir returns the screenshot directory.
func (l Layout) ScreenshotDir() string {
	return filepath.Join(l.Root, "screenshot")
}

// PDFDir returns the receipt directory.
func (l Layout) PDFDir() string {
	return filepath.Join(l.Root, "pdf")
}

// ScreenshotPath returns the screenshot file of an order.
func (l Layout) ScreenshotPath(orderNumber string) string {
	return filepath.Join(l.ScreenshotDir(), fmt.Sprintf("robot_preview_image_%s.png", fileSafe(orderNumber)))
}

// ReceiptPath returns the receipt PDF of an order.
func (l Layout) ReceiptPath(orderNumber string) string {
	return filepath.Join(l.PDFDir(), fmt.Sprintf("receipt_%s.pdf", fileSafe(orderNumber)))
}

// Path joins name onto the root.
func (l Layout) Path(name string) string {
	return filepath.Join(l.Root, name)
}

// Ensure creates the screenshot and PDF directories.
func (l Layout) Ensure() error {
	for _, dir := range []string{l.ScreenshotDir(), l.PDFDir()} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	return nil
}

var pathReplacer = strings.NewReplacer("/", "_", "\\", "_", "..", "_")

func fileSafe(name string) string {
	return pathReplacer.Replace(strings.TrimSpace(name))
}
