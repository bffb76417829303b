package cli

import (
	"github.com/spf13/cobra"

	"github.com/ironsheep/redact-tools-mcp/internal/app"
	"github.com/ironsheep/redact-tools-mcp/internal/httpapi"
	"github.com/ironsheep/redact-tools-mcp/internal/server"
)

var flagHTTPAddr string

func init() {
	httpCmd.Flags().StringVar(&flagHTTPAddr, "addr", "", "listen address (default from config, 127.0.0.1:8088)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(httpCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve MCP over stdio",
	Long: `Serve the Model Context Protocol over stdin/stdout.

Configure this command in an MCP client. Logs go to stderr.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd, nil)
	if err != nil {
		return err
	}
	defer closeApp(a, cmd.ErrOrStderr())

	logStartup(a)
	return server.New(a).Run(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout())
}

var httpCmd = &cobra.Command{
	Use:   "http",
	Short: "Serve the HTTP/JSON API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		extra := map[string]any{}
		if cmd.Flags().Changed("addr") {
			extra["http.addr"] = flagHTTPAddr
		}
		a, err := openApp(cmd, extra)
		if err != nil {
			return err
		}
		defer closeApp(a, cmd.ErrOrStderr())

		logStartup(a)
		cfg := a.Config().HTTP
		srv := httpapi.New(a, httpapi.Options{MaxBodyMB: cfg.MaxBodyMB})
		return srv.ListenAndServe(cmd.Context(), cfg.Addr)
	},
}

func logStartup(a *app.App) {
	a.Logger.Info("redact-mcp starting", "version", app.Version, "commit", app.Commit)
	for _, w := range a.Warnings {
		a.Logger.Warn(w)
	}
}
