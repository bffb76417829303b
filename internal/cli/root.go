// Package cli implements the redact-mcp command line.
package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ironsheep/redact-tools-mcp/internal/app"
	"github.com/ironsheep/redact-tools-mcp/internal/config"
	"github.com/ironsheep/redact-tools-mcp/internal/logging"
)

var (
	flagConfig   string
	flagProject  string
	flagLogLevel string
	flagJSON     bool
	flagWorkers  int
	flagNoOCR    bool
)

var rootCmd = &cobra.Command{
	Use:   "redact-mcp",
	Short: "Find and redact sensitive content in PDFs and images",
	Long: `redact-mcp locates personal and secret data (emails, phone numbers, card
numbers, IBANs, SSNs, passports, JWTs, API keys, addresses, names, barcodes)
in PDFs and images and writes sanitized copies.

Run without a subcommand to serve MCP over stdio.

Configuration is layered: defaults < ~/.redact-mcp/config.toml <
./.redact-mcp.toml < REDACT_* environment < flags.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagConfig, "config", "c", "", "config file (replaces ./.redact-mcp.toml)")
	rootCmd.PersistentFlags().StringVarP(&flagProject, "project", "C", "", "project directory (default: working directory)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().BoolVarP(&flagJSON, "json", "j", false, "print JSON instead of text")
	rootCmd.PersistentFlags().IntVar(&flagWorkers, "workers", 0, "documents processed concurrently (default 3)")
	rootCmd.PersistentFlags().BoolVar(&flagNoOCR, "no-ocr", false, "disable OCR")
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// flagOverrides maps set flags onto config keys.
func flagOverrides(cmd *cobra.Command) map[string]any {
	overrides := make(map[string]any)
	flags := cmd.Flags()
	if flags.Changed("log-level") {
		overrides["general.log_level"] = flagLogLevel
	}
	if flags.Changed("workers") {
		overrides["general.workers"] = flagWorkers
	}
	if flags.Changed("no-ocr") && flagNoOCR {
		overrides["ocr.enabled"] = false
	}
	return overrides
}

func loadConfig(cmd *cobra.Command, extra map[string]any) (config.Config, error) {
	overrides := flagOverrides(cmd)
	for k, v := range extra {
		overrides[k] = v
	}
	return config.Load(config.LoadOptions{
		ProjectDir:    flagProject,
		ConfigPath:    flagConfig,
		FlagOverrides: overrides,
	})
}

// openApp loads configuration and builds the service. Logs go to stderr.
func openApp(cmd *cobra.Command, extra map[string]any) (*app.App, error) {
	cfg, err := loadConfig(cmd, extra)
	if err != nil {
		return nil, err
	}
	opts := logging.DefaultOptions()
	opts.Level = cfg.General.LogLevel
	opts.Output = cmd.ErrOrStderr()
	logger := logging.New(opts)

	a, err := app.New(cmd.Context(), cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to start: %w", err)
	}
	return a, nil
}

func closeApp(a *app.App, w io.Writer) {
	if err := a.Close(); err != nil {
		fmt.Fprintf(w, "warning: %v\n", err)
	}
}
