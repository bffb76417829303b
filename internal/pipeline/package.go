package pipeline

import (
	"path/filepath"
	"strings"

	"github.com/ironsheep/redact-tools-mcp/internal/compose"
	"github.com/ironsheep/redact-tools-mcp/internal/redact"
)

// Package wraps a finished output buffer with its file name and report.
// An empty buffer is a fatal error for the document.
func Package(data []byte, filename, mimeType string, report redact.Report) (*redact.ApplyResult, error) {
	if len(data) == 0 {
		return nil, &redact.FatalIOError{Op: "package " + filename, Err: redact.ErrEmptyOutput}
	}
	return &redact.ApplyResult{
		Bytes:    data,
		Filename: filename,
		MimeType: mimeType,
		Report:   report,
	}, nil
}

// OutputName derives "<base>-redacted.<ext>" from the input name.
func OutputName(name, ext string) string {
	base := filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if base == "" || base == "." || base == "/" {
		base = "document"
	}
	return base + "-redacted." + ext
}

// BuildReport summarises a redaction. A detection counts once however many
// actions referred to it; REMOVE_METADATA actions are not counted as
// redactions since nothing is drawn for them.
func BuildReport(detections []redact.Detection, res compose.Resolution, pages int, clearedMetadata []string) redact.Report {
	r := redact.Report{
		TotalDetections:  len(detections),
		ByKind:           map[redact.Kind]int{},
		Skipped:          len(res.Skipped),
		Pages:            pages,
		MetadataStripped: true,
		ClearedMetadata:  clearedMetadata,
	}
	seen := map[string]bool{}
	for _, it := range res.Items {
		if it.Style == redact.StyleRemoveMetadata || seen[it.Detection.ID] {
			continue
		}
		seen[it.Detection.ID] = true
		r.RedactedCount++
		r.ByKind[it.Detection.Kind]++
	}
	return r
}
