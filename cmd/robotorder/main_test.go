package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/robotorder/pkg/config"
)

// parseRunFlags resets the run flags and parses args onto a fresh run command.
func parseRunFlags(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	runFlags.configFile, runFlags.outputDir, runFlags.headed, runFlags.verbosity = "", "", false, ""

	cmd := &cobra.Command{Use: "run"}
	f := cmd.Flags()
	f.StringVar(&runFlags.configFile, "config", "", "")
	f.StringVar(&runFlags.outputDir, "output", "", "")
	f.BoolVar(&runFlags.headed, "headed", false, "")
	f.StringVar(&runFlags.verbosity, "verbosity", "", "")
	require.NoError(t, f.Parse(args))
	return cmd
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := loadConfig(parseRunFlags(t))
	require.NoError(t, err)

	assert.Equal(t, config.DefaultOutputDir, cfg.OutputDir)
	assert.True(t, cfg.Browser.Headless)
	assert.Equal(t, "normal", cfg.Logging.Verbosity)
}

func TestLoadConfigFlagsOverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "robotorder.yaml")
	require.NoError(t, os.WriteFile(path, []byte("output_dir: from-file\nlogging:\n  verbosity: quiet\n"), 0600))

	cfg, err := loadConfig(parseRunFlags(t, "--config", path, "--output", "from-flag", "--headed"))
	require.NoError(t, err)

	assert.Equal(t, "from-flag", cfg.OutputDir)
	assert.False(t, cfg.Browser.Headless)
	assert.Equal(t, "quiet", cfg.Logging.Verbosity)
}

func TestLoadConfigInvalidVerbosity(t *testing.T) {
	_, err := loadConfig(parseRunFlags(t, "--verbosity", "loud"))
	assert.ErrorContains(t, err, "invalid configuration")
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"version"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})

	require.NoError(t, rootCmd.Execute())
	assert.Equal(t, "robotorder "+version+"\n", out.String())
}

func TestPlaywrightBrowserOptions(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Browser.Headless = false
	cfg.Browser.ViewportWidth = 800

	b := newPlaywrightBrowser(cfg)
	assert.False(t, b.options.Headless)
	assert.Equal(t, 800, b.options.Viewport.Width)
	assert.Equal(t, cfg.WaitTimeout, b.options.Timeout)

	// Close before Open shuts down nothing and succeeds
	assert.NoError(t, b.Close())
}
