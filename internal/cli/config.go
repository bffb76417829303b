package cli

import (
	"fmt"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/ironsheep/redact-tools-mcp/internal/config"
	"github.com/ironsheep/redact-tools-mcp/internal/history"
)

var (
	flagForce bool
	flagUser  bool
)

func init() {
	configInitCmd.Flags().BoolVar(&flagForce, "force", false, "overwrite an existing file")
	configInitCmd.Flags().BoolVar(&flagUser, "user", false, "write ~/.redact-mcp/config.toml instead of the project file")

	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration files",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default configuration file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := flagProject
		if dir == "" {
			dir = "."
		}
		user, project := config.Paths(dir, flagConfig)
		path := project
		if flagUser {
			path = user
		}
		if err := config.WriteDefault(path, flagForce); err != nil {
			return err
		}
		abs, _ := filepath.Abs(path)
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", okStyle.Render("wrote"), abs)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration as TOML",
	Long: `Print the configuration after every layer is applied. Connection
strings that may hold credentials are masked.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd, nil)
		if err != nil {
			return err
		}
		if cfg.Sentry.DSN != "" {
			cfg.Sentry.DSN = "<set>"
		}
		if cfg.History.Driver == history.DriverPostgres && cfg.History.DSN != "" {
			cfg.History.DSN = "<set>"
		}
		enc := toml.NewEncoder(cmd.OutOrStdout())
		enc.Indent = "  "
		return enc.Encode(cfg)
	},
}
