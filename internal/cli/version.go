package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ironsheep/redact-tools-mcp/internal/app"
)

func init() {
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "redact-mcp %s\n", app.Version)
		fmt.Fprintf(cmd.OutOrStdout(), "  Git commit: %s\n", app.Commit)
	},
}
