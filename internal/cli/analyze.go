package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ironsheep/redact-tools-mcp/internal/app"
	"github.com/ironsheep/redact-tools-mcp/internal/imaging"
	"github.com/ironsheep/redact-tools-mcp/internal/redact"
)

var (
	flagPreset    string
	flagThreshold float64
	flagOutput    string
	flagSave      string
	flagAnnotate  string
	flagPage      int
	flagGrid      int
)

func init() {
	analyzeCmd.Flags().StringVarP(&flagPreset, "preset", "p", "", "preset id (default: default)")
	analyzeCmd.Flags().Float64VarP(&flagThreshold, "threshold", "t", 0, "minimum confidence, overrides the preset")
	analyzeCmd.Flags().StringVarP(&flagSave, "save", "s", "", "write the analysis as JSON to this file")
	analyzeCmd.Flags().StringVar(&flagAnnotate, "annotate", "", "write a PNG of one page with detections outlined")
	analyzeCmd.Flags().IntVar(&flagPage, "page", 0, "zero-based page for --annotate")
	analyzeCmd.Flags().IntVar(&flagGrid, "grid", 0, "add a coordinate grid every N pixels to --annotate")

	rootCmd.AddCommand(analyzeCmd)
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>",
	Short: "List sensitive content in a document",
	Long: `Analyze a PDF or image and list what would be redacted.

Save the analysis with --save and pass it to "redact --detections" to
redact a reviewed subset.

	Examples:
	  redact-mcp analyze invoice.pdf
	  redact-mcp analyze scan.png --preset financial --json
	  redact-mcp analyze invoice.pdf --save invoice.analysis.json
	  redact-mcp analyze scan.jpg --annotate review.png --grid 100`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd, nil)
		if err != nil {
			return err
		}
		defer closeApp(a, cmd.ErrOrStderr())

		in, err := app.ReadInput(args[0])
		if err != nil {
			return err
		}
		opts, err := a.AnalyzeOptions(requestFromFlags(cmd))
		if err != nil {
			return err
		}
		res, err := a.Engine.AnalyzeDocument(cmd.Context(), in, opts)
		if err != nil {
			return err
		}

		if flagSave != "" {
			f, err := os.Create(flagSave)
			if err != nil {
				return err
			}
			defer f.Close()
			if err := printJSON(f, res); err != nil {
				return err
			}
		}

		if flagAnnotate != "" {
			img, err := a.ReviewImage(cmd.Context(), in, res.Detections, app.ReviewOptions{Page: flagPage, GridSpacing: flagGrid})
			if err != nil {
				return err
			}
			data, err := imaging.Encode(img, imaging.FormatPNG, 0)
			if err != nil {
				return err
			}
			if err := os.WriteFile(flagAnnotate, data, 0o600); err != nil {
				return err
			}
		}

		out := cmd.OutOrStdout()
		if flagJSON {
			return printJSON(out, res)
		}
		fmt.Fprintln(out, titleStyle.Render(fmt.Sprintf("%s: %d detection(s) on %d page(s)", args[0], len(res.Detections), res.Pages)))
		printDetections(out, res.Detections)
		printWarnings(cmd.ErrOrStderr(), res.Warnings)
		return nil
	},
}

// requestFromFlags collects the shared --preset and --threshold flags.
func requestFromFlags(cmd *cobra.Command) app.Request {
	req := app.Request{PresetID: flagPreset}
	if f := cmd.Flags().Lookup("threshold"); f != nil && f.Changed {
		t := flagThreshold
		req.Threshold = &t
	}
	return req
}

// analysisFile is the subset of a saved analysis read back by redact.
type analysisFile struct {
	SessionID  string             `json:"session_id"`
	Detections []redact.Detection `json:"detections"`
}
