// beatrate rates rhythm-game charts under every configured speed and
// modifier combination and stores the results.
//
// Usage:
//
//	beatrate modes               - List available rating modes
//	beatrate charts [dir]        - List charts in a directory
//	beatrate rate <chart>        - Rate one chart under one combination
//	beatrate scan [dir]          - Rate every chart in the background
//	beatrate results [chart]     - Browse stored ratings
//	beatrate config              - Print the default configuration
//
// Global flags:
//
//	--config <path>     - Configuration file
//	--db <path>         - Override the ratings database path
//	--log-level <level> - debug, info, warn or error (default: info)
package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/beatrate/internal/config"

	// Import analyzers to register them
	_ "github.com/vovakirdan/beatrate/internal/difficulty/mania"
	_ "github.com/vovakirdan/beatrate/internal/difficulty/standard"
)

var (
	// Global flags
	flagConfig   string
	flagDBPath   string
	flagLogLevel string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "beatrate",
	Short: "beatrate - Incremental difficulty ratings for rhythm-game charts",
	Long: `beatrate computes difficulty ratings for rhythm-game charts under every
configured speed and modifier combination. Ratings are computed in the
background, pause while a chart is being played, and are stored in a local
SQLite database.

Available commands:
  modes    - Show all rating modes
  charts   - List the charts in a directory
  rate     - Rate one chart under one combination
  scan     - Rate every chart under every combination
  results  - Browse stored ratings
  config   - Print the default configuration

Examples:
  beatrate charts ~/charts
  beatrate rate jumps.chart.yaml --mods HD,HR --speed 150
  beatrate scan ~/charts --lock-file /tmp/playing
  beatrate results`,
	SilenceUsage: true,
}

func init() {
	// Global persistent flags
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to configuration YAML")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "", "Path to ratings database (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level: debug, info, warn, error")

	// Add subcommands
	rootCmd.AddCommand(modesCmd)
	rootCmd.AddCommand(chartsCmd)
	rootCmd.AddCommand(rateCmd)
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(resultsCmd)
	rootCmd.AddCommand(configCmd)
}

// newLogger creates the process logger at the level given by --log-level.
func newLogger() (*log.Logger, error) {
	level, err := log.ParseLevel(flagLogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", flagLogLevel, err)
	}
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "beatrate",
		Level:           level,
	})
	return logger, nil
}

// loadConfig loads the configuration and applies global flag overrides.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return cfg, err
	}
	if flagDBPath != "" {
		cfg.Database = flagDBPath
	}
	return cfg, nil
}

// chartDir returns the chart directory from args or the configuration.
func chartDir(args []string, cfg config.Config) string {
	if len(args) > 0 {
		return args[0]
	}
	return config.ExpandHome(cfg.Charts)
}
