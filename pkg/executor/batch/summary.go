package batch

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/entrhq/robotorder/pkg/processor"
)

// Run status values
const (
	StatusCompleted             = "completed"
	StatusCompletedWithFailures = "completed_with_failures"
	StatusCancelled             = "cancelled"
	StatusFailed                = "failed"
)

// Order status values
const (
	OrderSucceeded = "succeeded"
	OrderFailed    = "failed"
)

// Summary file names
const (
	SummaryJSONName     = "run-summary.json"
	SummaryMarkdownName = "run-summary.md"
)

// Summary contains a complete summary of one run
type Summary struct {
	RunID     string          `json:"run_id"`
	SiteURL   string          `json:"site_url"`
	OrdersURL string          `json:"orders_url"`
	Status    string          `json:"status"`
	Error     string          `json:"error,omitempty"`
	StartTime time.Time       `json:"start_time"`
	EndTime   time.Time       `json:"end_time"`
	Duration  time.Duration   `json:"duration"`
	Orders    []OrderSummary  `json:"orders"`
	Archive   *ArchiveSummary `json:"archive,omitempty"`
	Metrics   RunMetrics      `json:"metrics"`
}

// OrderSummary records the outcome of one order
type OrderSummary struct {
	OrderNumber      string   `json:"order_number"`
	Status           string   `json:"status"`
	Attempts         int      `json:"attempts"`
	ConfirmationCode string   `json:"confirmation_code,omitempty"`
	ReceiptPath      string   `json:"receipt_path,omitempty"`
	ScreenshotPath   string   `json:"screenshot_path,omitempty"`
	Embedded         bool     `json:"embedded"`
	Warnings         []string `json:"warnings,omitempty"`
	Errors           []string `json:"errors,omitempty"`
}

// ArchiveSummary describes the receipts archive
type ArchiveSummary struct {
	Path    string   `json:"path"`
	Members []string `json:"members"`
	Error   string   `json:"error,omitempty"`
}

// RunMetrics contains run counters
type RunMetrics struct {
	Total     int `json:"total"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
	Attempts  int `json:"attempts"`
	Receipts  int `json:"receipts"`
	Embedded  int `json:"embedded"`
}

// Record adds the outcome of one order
func (s *Summary) Record(outcome processor.Outcome) {
	order := OrderSummary{
		OrderNumber:      outcome.OrderNumber,
		Status:           OrderSucceeded,
		Attempts:         outcome.Attempts,
		ConfirmationCode: outcome.ConfirmationCode,
		ReceiptPath:      outcome.Pair.ReceiptPath,
		ScreenshotPath:   outcome.Pair.ScreenshotPath,
		Embedded:         outcome.Embedded,
		Warnings:         outcome.Warnings,
	}
	for _, err := range outcome.AttemptErrors {
		order.Errors = append(order.Errors, err.Error())
	}

	s.Metrics.Total++
	s.Metrics.Attempts += outcome.Attempts
	if outcome.Succeeded {
		s.Metrics.Succeeded++
	} else {
		order.Status = OrderFailed
		s.Metrics.Failed++
	}
	if order.ReceiptPath != "" {
		s.Metrics.Receipts++
	}
	if order.Embedded {
		s.Metrics.Embedded++
	}

	s.Orders = append(s.Orders, order)
}

// finish stamps the end time and derives the status
func (s *Summary) finish(err error, cancelled bool) {
	s.EndTime = time.Now()
	s.Duration = s.EndTime.Sub(s.StartTime)

	switch {
	case err != nil:
		s.Status = StatusFailed
		s.Error = err.Error()
	case cancelled:
		s.Status = StatusCancelled
	case s.Metrics.Failed > 0:
		s.Status = StatusCompletedWithFailures
	default:
		s.Status = StatusCompleted
	}
}

// SummaryWriter writes the run summary files
type SummaryWriter struct {
	outputDir       string
	jsonEnabled     bool
	markdownEnabled bool
}

// NewSummaryWriter creates a writer for the enabled formats
func NewSummaryWriter(outputDir string, writeJSON, writeMarkdown bool) *SummaryWriter {
	return &SummaryWriter{
		outputDir:       outputDir,
		jsonEnabled:     writeJSON,
		markdownEnabled: writeMarkdown,
	}
}

// WriteAll writes all configured summary formats
func (w *SummaryWriter) WriteAll(summary *Summary) error {
	if err := os.MkdirAll(w.outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if w.jsonEnabled {
		if err := w.WriteJSON(summary); err != nil {
			return err
		}
	}
	if w.markdownEnabled {
		if err := w.WriteMarkdown(summary); err != nil {
			return err
		}
	}
	return nil
}

// WriteJSON writes the full summary as JSON
func (w *SummaryWriter) WriteJSON(summary *Summary) error {
	path := filepath.Join(w.outputDir, SummaryJSONName)

	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal run summary: %w", err)
	}

	if writeErr := os.WriteFile(path, data, 0600); writeErr != nil {
		return fmt.Errorf("failed to write run summary JSON: %w", writeErr)
	}
	return nil
}

// WriteMarkdown writes a human-readable markdown summary
func (w *SummaryWriter) WriteMarkdown(summary *Summary) error {
	path := filepath.Join(w.outputDir, SummaryMarkdownName)

	var md strings.Builder

	md.WriteString("# Robot Order Run Summary\n\n")
	md.WriteString(fmt.Sprintf("**Run:** %s\n\n", summary.RunID))
	md.WriteString(fmt.Sprintf("**Status:** %s\n\n", summary.Status))
	md.WriteString(fmt.Sprintf("**Started:** %s\n\n", summary.StartTime.Format(time.RFC3339)))
	md.WriteString(fmt.Sprintf("**Completed:** %s\n\n", summary.EndTime.Format(time.RFC3339)))
	md.WriteString(fmt.Sprintf("**Duration:** %s\n\n", summary.Duration))

	if summary.Error != "" {
		md.WriteString(fmt.Sprintf("❌ **Error:** %s\n\n", summary.Error))
	}

	if len(summary.Orders) > 0 {
		md.WriteString("## Orders\n\n")
		md.WriteString("| Order | Status | Attempts | Confirmation | Receipt |\n")
		md.WriteString("|-------|--------|----------|--------------|---------|\n")
		for _, order := range summary.Orders {
			status := "✅"
			if order.Status != OrderSucceeded {
				status = "❌"
			}
			receipt := "-"
			if order.ReceiptPath != "" {
				receipt = "`" + filepath.Base(order.ReceiptPath) + "`"
			}
			code := order.ConfirmationCode
			if code == "" {
				code = "-"
			}
			md.WriteString(fmt.Sprintf("| %s | %s | %d | %s | %s |\n",
				order.OrderNumber, status, order.Attempts, code, receipt))
		}
		md.WriteString("\n")
	}

	if summary.Archive != nil {
		md.WriteString("## Archive\n\n")
		md.WriteString(fmt.Sprintf("`%s`\n\n", summary.Archive.Path))
		if summary.Archive.Error != "" {
			md.WriteString(fmt.Sprintf("❌ %s\n\n", summary.Archive.Error))
		}
		for _, member := range summary.Archive.Members {
			md.WriteString(fmt.Sprintf("- `%s`\n", member))
		}
		md.WriteString("\n")
	}

	md.WriteString("## Metrics\n\n")
	md.WriteString(fmt.Sprintf("- **Orders:** %d\n", summary.Metrics.Total))
	md.WriteString(fmt.Sprintf("- **Succeeded:** %d\n", summary.Metrics.Succeeded))
	md.WriteString(fmt.Sprintf("- **Failed:** %d\n", summary.Metrics.Failed))
	md.WriteString(fmt.Sprintf("- **Attempts:** %d\n", summary.Metrics.Attempts))
	md.WriteString(fmt.Sprintf("- **Receipts:** %d\n", summary.Metrics.Receipts))
	md.WriteString(fmt.Sprintf("- **Screenshots embedded:** %d\n", summary.Metrics.Embedded))

	if writeErr := os.WriteFile(path, []byte(md.String()), 0600); writeErr != nil {
		return fmt.Errorf("failed to write run summary markdown: %w", writeErr)
	}
	return nil
}
