package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var flagLimit int

func init() {
	historyCmd.Flags().IntVarP(&flagLimit, "limit", "n", 20, "entries to show (0 = all)")

	rootCmd.AddCommand(historyCmd)
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show past redactions",
	Long: `Show past redactions, newest first.

History holds file names and reports only. With the default memory driver
it only covers the current process; configure history.driver = "sqlite" or
"postgres" to keep it.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd, nil)
		if err != nil {
			return err
		}
		defer closeApp(a, cmd.ErrOrStderr())

		entries, err := a.History.List(cmd.Context(), flagLimit)
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		if flagJSON {
			return printJSON(w, entries)
		}
		if len(entries) == 0 {
			fmt.Fprintln(w, dimStyle.Render("no history"))
			return nil
		}
		for _, e := range entries {
			fmt.Fprintf(w, "%s  %s → %s  %s\n",
				dimStyle.Render(e.CreatedAt.Local().Format(time.DateTime)),
				e.DocumentName,
				e.OutputName,
				okStyle.Render(fmt.Sprintf("%d/%d redacted", e.Report.RedactedCount, e.Report.TotalDetections)),
			)
		}
		return nil
	},
}
