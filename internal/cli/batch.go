package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ironsheep/redact-tools-mcp/internal/app"
	"github.com/ironsheep/redact-tools-mcp/internal/pipeline"
)

var flagOutputDir string

func init() {
	batchCmd.Flags().StringVarP(&flagPreset, "preset", "p", "", "preset id (default: default)")
	batchCmd.Flags().StringVarP(&flagFormat, "format", "f", "", "raster output format: png or jpeg")
	batchCmd.Flags().StringVarP(&flagOutputDir, "output-dir", "o", "", "directory for redacted files (default: next to each input)")

	rootCmd.AddCommand(batchCmd)
}

// batchLine is one file's outcome in JSON output.
type batchLine struct {
	Path       string `json:"path"`
	OutputPath string `json:"output_path,omitempty"`
	Redacted   int    `json:"redacted"`
	Error      string `json:"error,omitempty"`
}

var batchCmd = &cobra.Command{
	Use:   "batch <file>...",
	Short: "Redact several documents concurrently",
	Long: `Auto-redact every file with the preset's styles.

Files are processed by a bounded worker pool (--workers, default 3). A file
that fails is reported and the rest continue; the command exits non-zero
when any file failed.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd, nil)
		if err != nil {
			return err
		}
		defer closeApp(a, cmd.ErrOrStderr())

		opts, err := a.AnalyzeOptions(app.Request{PresetID: flagPreset})
		if err != nil {
			return err
		}

		lines := make([]batchLine, len(args))
		inputs := make([]pipeline.Input, 0, len(args))
		index := make([]int, 0, len(args))
		for i, path := range args {
			lines[i].Path = path
			in, err := app.ReadInput(path)
			if err != nil {
				lines[i].Error = err.Error()
				continue
			}
			inputs = append(inputs, in)
			index = append(index, i)
		}

		for j, r := range a.Batch(cmd.Context(), inputs, opts, flagFormat) {
			line := &lines[index[j]]
			if r.Err != nil {
				line.Error = r.Err.Error()
				continue
			}
			out := a.OutputPath(r.Name, "", r.Output)
			if flagOutputDir != "" {
				out = filepath.Join(flagOutputDir, r.Output.Filename)
			}
			if err := app.WriteOutput(r.Name, out, r.Output); err != nil {
				line.Error = err.Error()
				continue
			}
			line.OutputPath = out
			line.Redacted = r.Output.Report.RedactedCount
		}

		failed := 0
		for _, l := range lines {
			if l.Error != "" {
				failed++
			}
		}

		w := cmd.OutOrStdout()
		if flagJSON {
			if err := printJSON(w, lines); err != nil {
				return err
			}
		} else {
			for _, l := range lines {
				if l.Error != "" {
					fmt.Fprintf(w, "%s %s: %s\n", failStyle.Render("✗"), l.Path, l.Error)
					continue
				}
				fmt.Fprintf(w, "%s %s → %s %s\n", okStyle.Render("✓"), l.Path, l.OutputPath,
					dimStyle.Render(fmt.Sprintf("(%d redacted)", l.Redacted)))
			}
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d document(s) failed", failed, len(args))
		}
		return nil
	},
}
