// Package cmd implements the seoscore CLI commands using Cobra.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/seo-optimizer/seoscore/config"
	"github.com/seo-optimizer/seoscore/logging"
)

// Version is stamped at build time with -ldflags "-X .../cmd.Version=...".
var Version = "dev"

var (
	flagConfigFile string
	flagLogLevel   string

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "seoscore",
	Short: "On-page SEO analysis for a single URL",
	Long: `seoscore fetches one web page, scores it on eight on-page SEO dimensions
and prints prioritized recommendations.

Usage:
  seoscore analyze <url> [flags]
  seoscore serve
  seoscore mcp`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfigFile, "config", "", "YAML config file (overrides SEO_CONFIG_FILE)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn or error")
}

// setup loads configuration and installs the default logger. Logs go to
// stderr so stdout stays clean for reports and the MCP stdio transport.
func setup(cmd *cobra.Command, args []string) error {
	if flagConfigFile != "" {
		if err := os.Setenv("SEO_CONFIG_FILE", flagConfigFile); err != nil {
			return err
		}
	}

	c, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if flagLogLevel != "" {
		c.Log.Level = flagLogLevel
	}

	slog.SetDefault(logging.New(os.Stderr, c.Log.Level, c.Log.Format))
	cfg = c
	return nil
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
