package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(presetsCmd)
}

var presetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "List presets",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd, nil)
		if err != nil {
			return err
		}
		defer closeApp(a, cmd.ErrOrStderr())

		presets := a.Presets.List()
		w := cmd.OutOrStdout()
		if flagJSON {
			return printJSON(w, presets)
		}
		for _, p := range presets {
			fmt.Fprintf(w, "%s  %s\n", titleStyle.Render(p.ID), p.Name)

			kinds := "all kinds"
			if len(p.EnabledKinds) > 0 {
				names := make([]string, len(p.EnabledKinds))
				for i, k := range p.EnabledKinds {
					names[i] = k.String()
				}
				kinds = strings.Join(names, ", ")
			}
			fmt.Fprintf(w, "  %s %s\n", dimStyle.Render("kinds:"), kinds)

			if len(p.StyleMap) > 0 {
				styles := make([]string, 0, len(p.StyleMap))
				for k, s := range p.StyleMap {
					styles = append(styles, k.String()+"="+s.String())
				}
				sort.Strings(styles)
				fmt.Fprintf(w, "  %s %s\n", dimStyle.Render("styles:"), strings.Join(styles, ", "))
			}
			if p.ConfidenceThreshold != nil {
				fmt.Fprintf(w, "  %s %.2f\n", dimStyle.Render("threshold:"), *p.ConfidenceThreshold)
			}
			if n := len(p.CustomPatterns); n > 0 {
				fmt.Fprintf(w, "  %s %d\n", dimStyle.Render("custom patterns:"), n)
			}
		}
		return nil
	},
}
