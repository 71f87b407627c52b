package batch

import (
	"context"
	"fmt"
	"time"

	"github.com/entrhq/robotorder/pkg/archive"
	"github.com/entrhq/robotorder/pkg/artifact"
	"github.com/entrhq/robotorder/pkg/config"
	"github.com/entrhq/robotorder/pkg/form"
	"github.com/entrhq/robotorder/pkg/logging"
	"github.com/entrhq/robotorder/pkg/orders"
	"github.com/entrhq/robotorder/pkg/processor"
)

// Page is everything the run needs from the open order page.
type Page interface {
	form.Page
	artifact.Page
}

// Browser opens and closes the order site.
type Browser interface {
	Open(siteURL string) (Page, error)
	Close() error
}

// OrderSource fetches the rows of a run.
type OrderSource interface {
	Fetch(ctx context.Context, url string) ([]orders.Row, error)
}

// Executor runs one unattended batch
type Executor struct {
	config   *config.Config
	browser  Browser
	source   OrderSource
	reporter *Reporter
	logger   *logging.Logger
	embedder artifact.Embedder
	sleep    processor.SleepFunc
}

// Option configures an Executor.
type Option func(*Executor)

// WithReporter sets the console reporter.
func WithReporter(reporter *Reporter) Option {
	return func(e *Executor) {
		e.reporter = reporter
	}
}

// WithLogger sets the run logger; components log through derived loggers.
func WithLogger(logger *logging.Logger) Option {
	return func(e *Executor) {
		e.logger = logger
	}
}

// WithEmbedder replaces the PDF stamper.
func WithEmbedder(embedder artifact.Embedder) Option {
	return func(e *Executor) {
		e.embedder = embedder
	}
}

// WithSleep replaces the retry backoff wait.
func WithSleep(sleep processor.SleepFunc) Option {
	return func(e *Executor) {
		e.sleep = sleep
	}
}

// NewExecutor creates an executor for cfg
func NewExecutor(cfg *config.Config, browser Browser, source OrderSource, opts ...Option) *Executor {
	e := &Executor{
		config:   cfg,
		browser:  browser,
		source:   source,
		reporter: NewReporter(ParseLogLevel(cfg.Logging.Verbosity)),
		logger:   logging.Discard(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run executes the batch. The returned summary is never nil; the error is set only
// when the run could not start (output tree, browser, orders feed).
func (e *Executor) Run(ctx context.Context) (summary *Summary, err error) {
	summary = &Summary{
		RunID:     e.logger.RunID(),
		SiteURL:   e.config.SiteURL,
		OrdersURL: e.config.OrdersURL,
		Status:    "running",
		StartTime: time.Now(),
	}
	defer func() {
		summary.finish(err, ctx.Err() != nil)
		e.writeSummary(summary)
		e.reporter.Summary(summary)
	}()

	e.reporter.Header("Robot order run " + summary.RunID)
	e.logger.Infof("Starting run %s against %s", summary.RunID, e.config.SiteURL)

	layout := artifact.NewLayout(e.config.OutputDir)
	if err := layout.Ensure(); err != nil {
		e.reporter.Errorf("%v", err)
		return summary, err
	}

	e.reporter.Section("Opening browser")
	page, err := e.browser.Open(e.config.SiteURL)
	defer e.closeBrowser()
	if err != nil {
		err = fmt.Errorf("failed to open %s: %w", e.config.SiteURL, err)
		e.logger.Errorf("%v", err)
		e.reporter.Errorf("%v", err)
		return summary, err
	}
	e.reporter.Successf("Opened %s", e.config.SiteURL)

	e.reporter.Section("Fetching orders")
	rows, err := e.source.Fetch(ctx, e.config.OrdersURL)
	if err != nil {
		err = fmt.Errorf("failed to fetch orders: %w", err)
		e.logger.Errorf("%v", err)
		e.reporter.Errorf("%v", err)
		return summary, err
	}
	e.reporter.Successf("Fetched %d orders", len(rows))

	e.reporter.Section("Processing orders")
	proc := e.newProcessor(page, layout)
	for i, row := range rows {
		if ctx.Err() != nil {
			e.logger.Warnf("Run cancelled, %d orders not attempted", len(rows)-i)
			e.reporter.Warningf("run cancelled, %d orders not attempted", len(rows)-i)
			break
		}
		e.reporter.Debugf("order %s: %v", row.OrderNumber(), map[string]string(row))

		outcome := proc.Process(ctx, row)
		summary.Record(outcome)
		e.reporter.OrderFinished(i+1, len(rows), outcome)
	}

	e.reporter.Section("Archiving receipts")
	summary.Archive = e.archive(layout)

	return summary, nil
}

func (e *Executor) newProcessor(page Page, layout artifact.Layout) *processor.Processor {
	driver := form.NewDriver(page,
		form.WithTimeout(e.config.WaitTimeout),
		form.WithLogger(e.logger.With("form")),
	)

	captureOpts := []artifact.Option{
		artifact.WithSelectors(form.DefaultSelectors.PreviewImage, form.DefaultSelectors.Receipt),
		artifact.WithTimeout(e.config.WaitTimeout),
		artifact.WithLogger(e.logger.With("artifact")),
	}
	if e.embedder != nil {
		captureOpts = append(captureOpts, artifact.WithEmbedder(e.embedder))
	}
	capturer := artifact.NewCapturer(page, layout, captureOpts...)

	procOpts := []processor.Option{
		processor.WithRetryLimit(e.config.RetryLimit),
		processor.WithBackoff(e.config.RetryBackoff),
		processor.WithLogger(e.logger.With("processor")),
	}
	if e.sleep != nil {
		procOpts = append(procOpts, processor.WithSleep(e.sleep))
	}
	return processor.New(driver, capturer, procOpts...)
}

// archive zips the PDF directory. Failures are logged and recorded, never returned.
func (e *Executor) archive(layout artifact.Layout) *ArchiveSummary {
	target := layout.Path(e.config.Archive.Name)
	result := &ArchiveSummary{Path: target}

	archiver, err := archive.New(layout.PDFDir(), target, e.config.Archive.Include, e.logger.With("archive"))
	if err == nil {
		var res *archive.Result
		if res, err = archiver.ArchiveAll(); err == nil {
			result.Members = res.Members
			e.reporter.Successf("Archived %d receipts to %s", len(res.Members), target)
			return result
		}
	}

	result.Error = err.Error()
	e.logger.Errorf("Failed to archive receipts: %v", err)
	e.reporter.Errorf("failed to archive receipts: %v", err)
	return result
}

func (e *Executor) writeSummary(summary *Summary) {
	if !e.config.Summary.Enabled {
		return
	}
	writer := NewSummaryWriter(e.config.OutputDir, e.config.Summary.JSON, e.config.Summary.Markdown)
	if err := writer.WriteAll(summary); err != nil {
		e.logger.Warnf("Failed to write run summary: %v", err)
		e.reporter.Warningf("failed to write run summary: %v", err)
	}
}

func (e *Executor) closeBrowser() {
	if err := e.browser.Close(); err != nil {
		e.logger.Warnf("Failed to close browser: %v", err)
		return
	}
	e.logger.Infof("Browser closed")
}
