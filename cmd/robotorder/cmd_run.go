package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/entrhq/robotorder/pkg/config"
	"github.com/entrhq/robotorder/pkg/executor/batch"
	"github.com/entrhq/robotorder/pkg/logging"
	"github.com/entrhq/robotorder/pkg/orders"
)

var runFlags struct {
	configFile string
	outputDir  string
	headed     bool
	verbosity  string
}

var runCmd = &cobra.Command{
	Use:          "run",
	Short:        "Process every order in the feed",
	SilenceUsage: true,
	RunE:         runRun,
}

func init() {
	f := runCmd.Flags()
	f.StringVar(&runFlags.configFile, "config", "", "Path to configuration file (YAML)")
	f.StringVar(&runFlags.outputDir, "output", "", "Output directory (overrides config)")
	f.BoolVar(&runFlags.headed, "headed", false, "Show the browser window")
	f.StringVar(&runFlags.verbosity, "verbosity", "", "Console verbosity: quiet, normal, verbose, debug")
}

func runRun(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logging.SetLogDirectory(cfg.LogDir())
	logger, err := logging.NewLogger("robotorder")
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: file logging unavailable: %v\n", err)
	}
	defer logger.Close()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	// Cancel the run on interrupt; the browser is still closed on the way out
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		select {
		case <-sigChan:
			fmt.Fprintln(cmd.ErrOrStderr(), "\n\nShutting down gracefully...")
			logger.Warnf("Interrupted, cancelling run")
			cancel()
		case <-ctx.Done():
		}
	}()

	source := orders.NewSource(cfg.OrdersFile, orders.WithLogger(logger.With("orders")))
	executor := batch.NewExecutor(cfg, newPlaywrightBrowser(cfg), source,
		batch.WithLogger(logger),
		batch.WithReporter(batch.NewReporterTo(batch.ParseLogLevel(cfg.Logging.Verbosity), cmd.OutOrStdout())),
	)

	if _, err := executor.Run(ctx); err != nil {
		return fmt.Errorf("run failed: %w", err)
	}
	return nil
}

// loadConfig reads the config file and applies the flags that were set.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(runFlags.configFile)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("output") {
		cfg.OutputDir = runFlags.outputDir
	}
	if flags.Changed("headed") {
		cfg.Browser.Headless = !runFlags.headed
	}
	if flags.Changed("verbosity") {
		cfg.Logging.Verbosity = runFlags.verbosity
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
