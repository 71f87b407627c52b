package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/gobwas/glob"
	"gopkg.in/yaml.v3"
)

// Default values for a robot order run
const (
	DefaultSiteURL      = "https://robotsparebinindustries.com/#/robot-order"
	DefaultOrdersURL    = "https://robotsparebinindustries.com/orders.csv"
	DefaultOrdersFile   = "orders.csv"
	DefaultOutputDir    = "output"
	DefaultArchiveName  = "all_receipts.zip"
	DefaultRetryLimit   = 3
	DefaultWaitTimeout  = 10 * time.Second
	DefaultRetryBackoff = 2 * time.Second
)

// Config represents the configuration for an unattended order run
type Config struct {
	// Target web application hosting the order form
	SiteURL string `yaml:"site_url" json:"site_url"`

	// Orders feed
	OrdersURL  string `yaml:"orders_url" json:"orders_url"`
	OrdersFile string `yaml:"orders_file" json:"orders_file"` // Local copy, overwritten each run

	// Root of the output tree (screenshot/, pdf/, logs/, archive, summary)
	OutputDir string `yaml:"output_dir" json:"output_dir"`

	// Retry policy
	RetryLimit   int           `yaml:"retry_limit" json:"retry_limit"`
	RetryBackoff time.Duration `yaml:"retry_backoff" json:"retry_backoff"`

	// Per-wait timeout for browser conditions
	WaitTimeout time.Duration `yaml:"wait_timeout" json:"wait_timeout"`

	Browser BrowserConfig `yaml:"browser" json:"browser"`
	Archive ArchiveConfig `yaml:"archive" json:"archive"`
	Summary SummaryConfig `yaml:"summary" json:"summary"`
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// BrowserConfig controls the browser session
type BrowserConfig struct {
	Headless       bool `yaml:"headless" json:"headless"`
	ViewportWidth  int  `yaml:"viewport_width" json:"viewport_width"`
	ViewportHeight int  `yaml:"viewport_height" json:"viewport_height"`
}

// ArchiveConfig controls the receipts archive
type ArchiveConfig struct {
	Name string `yaml:"name" json:"name"`

	// Include lists glob patterns matched against file names in the PDF directory.
	// An empty list includes every file.
	Include []string `yaml:"include" json:"include"`
}

// SummaryConfig controls the run summary artifacts
type SummaryConfig struct {
	Enabled  bool `yaml:"enabled" json:"enabled"`
	JSON     bool `yaml:"json" json:"json"`
	Markdown bool `yaml:"markdown" json:"markdown"`
}

// LoggingConfig defines logging configuration
type LoggingConfig struct {
	// Verbosity controls console output: quiet, normal, verbose, debug
	Verbosity string `yaml:"verbosity" json:"verbosity"`

	// Dir overrides the log file directory (default: <output_dir>/logs)
	Dir string `yaml:"dir" json:"dir"`
}

// DefaultConfig returns the configuration of the standard RobotSpareBin run
func DefaultConfig() *Config {
	return &Config{
		SiteURL:      DefaultSiteURL,
		OrdersURL:    DefaultOrdersURL,
		OrdersFile:   DefaultOrdersFile,
		OutputDir:    DefaultOutputDir,
		RetryLimit:   DefaultRetryLimit,
		RetryBackoff: DefaultRetryBackoff,
		WaitTimeout:  DefaultWaitTimeout,
		Browser: BrowserConfig{
			Headless:       true,
			ViewportWidth:  1280,
			ViewportHeight: 720,
		},
		Archive: ArchiveConfig{
			Name: DefaultArchiveName,
		},
		Summary: SummaryConfig{
			Enabled:  true,
			JSON:     true,
			Markdown: true,
		},
		Logging: LoggingConfig{
			Verbosity: "normal",
		},
	}
}

// Load reads a YAML configuration file on top of DefaultConfig.
// An empty path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := validateURL("site_url", c.SiteURL); err != nil {
		return err
	}
	if err := validateURL("orders_url", c.OrdersURL); err != nil {
		return err
	}

	if c.OrdersFile == "" {
		return fmt.Errorf("orders_file is required")
	}
	if c.OutputDir == "" {
		return fmt.Errorf("output_dir is required")
	}

	if c.RetryLimit < 1 {
		return fmt.Errorf("retry_limit must be at least 1, got %d", c.RetryLimit)
	}
	if c.RetryBackoff < 0 {
		return fmt.Errorf("retry_backoff cannot be negative")
	}
	if c.WaitTimeout <= 0 {
		return fmt.Errorf("wait_timeout must be positive")
	}

	if c.Browser.ViewportWidth < 0 || c.Browser.ViewportHeight < 0 {
		return fmt.Errorf("viewport dimensions cannot be negative")
	}

	if c.Archive.Name == "" {
		c.Archive.Name = DefaultArchiveName
	}
	for _, pattern := range c.Archive.Include {
		if _, err := glob.Compile(pattern); err != nil {
			return fmt.Errorf("invalid archive include pattern '%s': %w", pattern, err)
		}
	}

	// Set default verbosity if not specified
	if c.Logging.Verbosity == "" {
		c.Logging.Verbosity = "normal"
	}

	validLevels := map[string]bool{
		"quiet":   true,
		"normal":  true,
		"verbose": true,
		"debug":   true,
	}
	if !validLevels[c.Logging.Verbosity] {
		return fmt.Errorf("invalid logging verbosity: %s (must be 'quiet', 'normal', 'verbose', or 'debug')", c.Logging.Verbosity)
	}

	return nil
}

// LogDir returns the directory where run logs are written
func (c *Config) LogDir() string {
	if c.Logging.Dir != "" {
		return c.Logging.Dir
	}
	return filepath.Join(c.OutputDir, "logs")
}

func validateURL(field, raw string) error {
	if raw == "" {
		return fmt.Errorf("%s is required", field)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", field, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid %s: %q must be an absolute URL", field, raw)
	}
	return nil
}
