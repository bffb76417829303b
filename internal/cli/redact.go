package cli

import (
	"fmt"
	"os"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/ironsheep/redact-tools-mcp/internal/app"
	"github.com/ironsheep/redact-tools-mcp/internal/compose"
	"github.com/ironsheep/redact-tools-mcp/internal/pipeline"
	"github.com/ironsheep/redact-tools-mcp/internal/redact"
)

var (
	flagFormat     string
	flagDetections string
	flagOnly       []string
	flagStyles     []string
)

func init() {
	redactCmd.Flags().StringVarP(&flagPreset, "preset", "p", "", "preset id (default: default)")
	redactCmd.Flags().Float64VarP(&flagThreshold, "threshold", "t", 0, "minimum confidence, overrides the preset")
	redactCmd.Flags().StringVarP(&flagFormat, "format", "f", "", "raster output format: png or jpeg")
	redactCmd.Flags().StringVarP(&flagOutput, "output", "o", "", "output file (default: <name>-redacted.<ext>)")
	redactCmd.Flags().StringVarP(&flagDetections, "detections", "d", "", "saved analysis JSON to redact instead of analyzing again")
	redactCmd.Flags().StringSliceVar(&flagOnly, "only", nil, "detection ids to redact (with --detections)")
	redactCmd.Flags().StringArrayVar(&flagStyles, "style", nil, "per-detection style as id=STYLE (repeatable)")

	rootCmd.AddCommand(redactCmd)
}

var redactCmd = &cobra.Command{
	Use:   "redact <file>",
	Short: "Write a redacted copy of a document",
	Long: `Redact a PDF or image.

Without --detections the document is analyzed and every detection is
redacted with the preset's style. With --detections a saved analysis is
applied instead; --only and --style narrow and restyle it.

	Examples:
	  redact-mcp redact invoice.pdf
	  redact-mcp redact scan.jpg --preset identity --format png -o clean.png
	  redact-mcp redact invoice.pdf -d invoice.analysis.json --only 1a2b3c4d-2 --style 1a2b3c4d-2=MASK_LAST4`,
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

		var res *redact.ApplyResult
		if flagDetections != "" {
			res, err = applySaved(cmd, a, in)
		} else {
			var opts pipeline.AnalyzeOptions
			opts, err = a.AnalyzeOptions(requestFromFlags(cmd))
			if err == nil {
				_, res, err = a.Engine.Redact(cmd.Context(), in, opts, a.Format(flagFormat))
			}
		}
		if err != nil {
			return err
		}

		path := a.OutputPath(args[0], flagOutput, res)
		if err := app.WriteOutput(args[0], path, res); err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if flagJSON {
			return printJSON(out, map[string]interface{}{
				"output_path": path,
				"mime_type":   res.MimeType,
				"report":      res.Report,
				"warnings":    res.Warnings,
			})
		}
		fmt.Fprintln(out, reportSummary(path, res.Report))
		printWarnings(cmd.ErrOrStderr(), res.Warnings)
		return nil
	},
}

func applySaved(cmd *cobra.Command, a *app.App, in pipeline.Input) (*redact.ApplyResult, error) {
	data, err := os.ReadFile(flagDetections)
	if err != nil {
		return nil, err
	}
	var saved analysisFile
	if err := json.Unmarshal(data, &saved); err != nil {
		return nil, fmt.Errorf("invalid analysis file %s: %w", flagDetections, err)
	}
	p, err := a.Presets.Get(flagPreset)
	if err != nil {
		return nil, err
	}
	actions, err := selectActions(saved.Detections, p, flagOnly, flagStyles)
	if err != nil {
		return nil, err
	}
	return a.Engine.ApplyRedactions(cmd.Context(), in, pipeline.ApplyOptions{
		Detections: saved.Detections,
		Actions:    actions,
		Preset:     p,
		Format:     a.Format(flagFormat),
		SessionID:  saved.SessionID,
	})
}

// selectActions builds actions for the chosen detections. An empty only list
// selects every detection; styles are "id=STYLE" overrides.
func selectActions(ds []redact.Detection, p *redact.Preset, only, styles []string) ([]redact.Action, error) {
	overrides := make(map[string]redact.Style, len(styles))
	for _, s := range styles {
		id, name, ok := strings.Cut(s, "=")
		if !ok {
			return nil, fmt.Errorf("invalid --style %q, want id=STYLE", s)
		}
		st, err := redact.ParseStyle(name)
		if err != nil {
			return nil, err
		}
		overrides[strings.TrimSpace(id)] = st
	}

	actions := compose.AutoActions(ds, p)
	if len(only) > 0 {
		want := make(map[string]bool, len(only))
		for _, id := range only {
			want[strings.TrimSpace(id)] = true
		}
		kept := actions[:0]
		for _, act := range actions {
			if want[act.DetectionID] {
				kept = append(kept, act)
			}
		}
		actions = kept
	}
	for i := range actions {
		if st, ok := overrides[actions[i].DetectionID]; ok && st.IsSet() {
			actions[i].Style = st
		}
	}
	return actions, nil
}
