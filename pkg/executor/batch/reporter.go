package batch

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/entrhq/robotorder/pkg/processor"
)

// LogLevel represents the console verbosity level
type LogLevel int

const (
	// LogLevelQuiet shows only critical information (errors, warnings, final summary)
	LogLevelQuiet LogLevel = iota
	// LogLevelNormal shows per-order progress (default)
	LogLevelNormal
	// LogLevelVerbose shows attempt and artifact details
	LogLevelVerbose
	// LogLevelDebug shows all internal details for debugging
	LogLevelDebug
)

// ParseLogLevel maps a configured verbosity name to a level. Unknown names map to normal.
func ParseLogLevel(verbosity string) LogLevel {
	switch strings.ToLower(verbosity) {
	case "quiet":
		return LogLevelQuiet
	case "verbose":
		return LogLevelVerbose
	case "debug":
		return LogLevelDebug
	default:
		return LogLevelNormal
	}
}

var (
	salmonPink = lipgloss.Color("#FFB3BA")
	mintGreen  = lipgloss.Color("#A8E6CF")
	mutedGray  = lipgloss.Color("#6B7280")
	amber      = lipgloss.Color("#F5C16C")
	coralRed   = lipgloss.Color("#F87171")

	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(salmonPink)
	sectionStyle = lipgloss.NewStyle().Foreground(salmonPink)
	successStyle = lipgloss.NewStyle().Bold(true).Foreground(mintGreen)
	infoStyle    = lipgloss.NewStyle()
	warnStyle    = lipgloss.NewStyle().Foreground(amber)
	errorStyle   = lipgloss.NewStyle().Bold(true).Foreground(coralRed)
	detailStyle  = lipgloss.NewStyle().Foreground(mutedGray)
)

// Reporter prints run progress to the console
type Reporter struct {
	level     LogLevel
	writer    io.Writer
	startTime time.Time
}

// NewReporter creates a reporter writing to stdout
func NewReporter(level LogLevel) *Reporter {
	return NewReporterTo(level, os.Stdout)
}

// NewReporterTo creates a reporter writing to w
func NewReporterTo(level LogLevel, w io.Writer) *Reporter {
	return &Reporter{
		level:     level,
		writer:    w,
		startTime: time.Now(),
	}
}

// Header prints a prominent header message
func (r *Reporter) Header(message string) {
	if r.level >= LogLevelNormal {
		rule := strings.Repeat("=", 60)
		fmt.Fprintf(r.writer, "\n%s\n%s\n%s\n", headerStyle.Render(rule), headerStyle.Render("  "+message), headerStyle.Render(rule))
	}
}

// Section prints a section divider
func (r *Reporter) Section(title string) {
	if r.level >= LogLevelNormal {
		fmt.Fprintln(r.writer)
		fmt.Fprintln(r.writer, sectionStyle.Render("▶ "+title))
		fmt.Fprintln(r.writer, detailStyle.Render(strings.Repeat("─", 50)))
	}
}

// Successf prints a success message with checkmark
func (r *Reporter) Successf(format string, args ...interface{}) {
	if r.level >= LogLevelNormal {
		fmt.Fprintln(r.writer, successStyle.Render("✓ "+fmt.Sprintf(format, args...)))
	}
}

// Infof prints an informational message
func (r *Reporter) Infof(format string, args ...interface{}) {
	if r.level >= LogLevelNormal {
		fmt.Fprintln(r.writer, infoStyle.Render(fmt.Sprintf(format, args...)))
	}
}

// Warningf prints a warning message
func (r *Reporter) Warningf(format string, args ...interface{}) {
	fmt.Fprintln(r.writer, warnStyle.Render("⚠ Warning: "+fmt.Sprintf(format, args...)))
}

// Errorf prints an error message
func (r *Reporter) Errorf(format string, args ...interface{}) {
	fmt.Fprintln(r.writer, errorStyle.Render("✗ Error: "+fmt.Sprintf(format, args...)))
}

// Verbosef prints detailed information (only in verbose mode)
func (r *Reporter) Verbosef(format string, args ...interface{}) {
	if r.level >= LogLevelVerbose {
		fmt.Fprintln(r.writer, detailStyle.Render("→ "+fmt.Sprintf(format, args...)))
	}
}

// Debugf prints debug information (only in debug mode)
func (r *Reporter) Debugf(format string, args ...interface{}) {
	if r.level >= LogLevelDebug {
		fmt.Fprintln(r.writer, detailStyle.Render("[DEBUG] "+fmt.Sprintf(format, args...)))
	}
}

// OrderFinished prints one line per processed order
func (r *Reporter) OrderFinished(index, total int, outcome processor.Outcome) {
	prefix := fmt.Sprintf("[%d/%d] order %s", index, total, outcome.OrderNumber)

	if !outcome.Succeeded {
		r.Errorf("%s failed after %d attempts: %v", prefix, outcome.Attempts, outcome.Err)
		return
	}

	r.Successf("%s (%d attempt%s)", prefix, outcome.Attempts, plural(outcome.Attempts))
	for _, err := range outcome.AttemptErrors {
		r.Verbosef("retried: %v", err)
	}
	for _, warning := range outcome.Warnings {
		r.Warningf("order %s: %s", outcome.OrderNumber, warning)
	}
	if outcome.Pair.ReceiptPath != "" {
		r.Verbosef("receipt %s", outcome.Pair.ReceiptPath)
	}
}

// Summary prints the final run summary; it is shown at every level
func (r *Reporter) Summary(summary *Summary) {
	fmt.Fprintln(r.writer)
	fmt.Fprintln(r.writer, headerStyle.Render("Run summary"))
	fmt.Fprintf(r.writer, "  Status:    %s\n", summary.Status)
	fmt.Fprintf(r.writer, "  Orders:    %d total, %d succeeded, %d failed\n",
		summary.Metrics.Total, summary.Metrics.Succeeded, summary.Metrics.Failed)
	fmt.Fprintf(r.writer, "  Receipts:  %d (%d with screenshot)\n", summary.Metrics.Receipts, summary.Metrics.Embedded)
	if summary.Archive != nil {
		fmt.Fprintf(r.writer, "  Archive:   %s (%d files)\n", summary.Archive.Path, len(summary.Archive.Members))
	}
	fmt.Fprintf(r.writer, "  Duration:  %s\n", time.Since(r.startTime).Round(time.Millisecond))
	if summary.Error != "" {
		fmt.Fprintln(r.writer, errorStyle.Render("  Error:     "+summary.Error))
	}
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
