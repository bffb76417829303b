package cli

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	json "github.com/goccy/go-json"

	"github.com/ironsheep/redact-tools-mcp/internal/redact"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	kindStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F38BA8"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#6C7086"))
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#A6E3A1"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#F9E2AF"))
	failStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F38BA8"))
	summaryStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#89B4FA")).
			Padding(0, 1)
)

func printJSON(w io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func printWarnings(w io.Writer, warnings []string) {
	for _, warning := range warnings {
		fmt.Fprintln(w, warnStyle.Render("! "+warning))
	}
}

func printDetections(w io.Writer, ds []redact.Detection) {
	if len(ds) == 0 {
		fmt.Fprintln(w, dimStyle.Render("no sensitive content found"))
		return
	}
	for _, d := range ds {
		fmt.Fprintf(w, "%s  %s  %s  %s\n",
			dimStyle.Render(fmt.Sprintf("%-12s", d.ID)),
			kindStyle.Render(fmt.Sprintf("%-9s", d.Kind)),
			fmt.Sprintf("%.2f", d.Confidence),
			d.Preview,
		)
	}
}

// reportSummary renders a boxed summary of one redaction.
func reportSummary(path string, r redact.Report) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(path))
	fmt.Fprintf(&b, "\n%d of %d detections redacted on %d page(s)", r.RedactedCount, r.TotalDetections, r.Pages)
	if r.Skipped > 0 {
		fmt.Fprintf(&b, ", %d action(s) skipped", r.Skipped)
	}
	kinds := make([]string, 0, len(r.ByKind))
	for k, n := range r.ByKind {
		kinds = append(kinds, fmt.Sprintf("%s %d", k, n))
	}
	sort.Strings(kinds)
	if len(kinds) > 0 {
		b.WriteString("\n" + dimStyle.Render(strings.Join(kinds, " · ")))
	}
	if len(r.ClearedMetadata) > 0 {
		b.WriteString("\n" + dimStyle.Render("metadata cleared: "+strings.Join(r.ClearedMetadata, ", ")))
	}
	return summaryStyle.Render(b.String())
}
