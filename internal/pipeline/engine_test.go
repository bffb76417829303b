package pipeline

import (
	"bytes"
	"context"
	"errors"
	"image/color"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/redact-tools-mcp/internal/history"
	"github.com/ironsheep/redact-tools-mcp/internal/imaging"
	"github.com/ironsheep/redact-tools-mcp/internal/pdfdoc"
	"github.com/ironsheep/redact-tools-mcp/internal/redact"
)

func TestSniff(t *testing.T) {
	mt, err := Sniff(whitePNG(t, 4, 4))
	require.NoError(t, err)
	assert.Equal(t, "image/png", mt)

	mt, err = Sniff(statementPDF(t))
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", mt)

	for _, data := range [][]byte{nil, []byte("plain text, not a document")} {
		_, err = Sniff(data)
		require.Error(t, err)
		assert.True(t, redact.IsFatal(err))
		assert.ErrorIs(t, err, redact.ErrUnsupportedFormat)
	}
}

func TestAnalyzeRaster(t *testing.T) {
	ocr := emailOCR()
	e := NewEngine(WithOCR(ocr))

	res, err := e.AnalyzeDocument(context.Background(), Input{Name: "scan.png", Data: whitePNG(t, 400, 200)}, AnalyzeOptions{})
	require.NoError(t, err)

	assert.Equal(t, 1, res.Pages)
	assert.Equal(t, []redact.PageSize{{Width: 400, Height: 200}}, res.PageSizes)
	require.Len(t, res.Detections, 1)
	d := res.Detections[0]
	assert.Equal(t, redact.KindEmail, d.Kind)
	assert.Equal(t, "jane@mail.com", d.Preview)
	assert.True(t, strings.HasPrefix(d.ID, res.SessionID[:8]))
	assert.InDelta(t, 0.05, d.Box.X, 1e-9)
	assert.InDelta(t, 0.1, d.Box.Y, 1e-9)
}

func TestAnalyzeSessionsDoNotShareIDs(t *testing.T) {
	e := NewEngine(WithOCR(emailOCR()))
	in := Input{Name: "scan.png", Data: whitePNG(t, 400, 200)}

	a, err := e.AnalyzeDocument(context.Background(), in, AnalyzeOptions{})
	require.NoError(t, err)
	b, err := e.AnalyzeDocument(context.Background(), in, AnalyzeOptions{})
	require.NoError(t, err)

	assert.NotEqual(t, a.SessionID, b.SessionID)
	assert.NotEqual(t, a.Detections[0].ID, b.Detections[0].ID)
}

func TestAnalyzeReportsBadCustomPattern(t *testing.T) {
	e := NewEngine(WithOCR(emailOCR()))
	res, err := e.AnalyzeDocument(context.Background(), Input{Name: "scan.png", Data: whitePNG(t, 400, 200)}, AnalyzeOptions{
		CustomPatterns: []redact.CustomPattern{{ID: "broken", Pattern: "([", Kind: redact.KindOther, Confidence: 0.9}},
	})
	require.NoError(t, err)
	assert.Equal(t, []redact.Kind{redact.KindEmail}, kinds(res.Detections))
	require.NotEmpty(t, res.Warnings)
	assert.Contains(t, strings.Join(res.Warnings, "\n"), "broken")
}

func TestAnalyzeOCRFailureDegrades(t *testing.T) {
	ocr := &fakeOCR{err: &redact.ExtractionError{Source: "ocr", Page: 0, Err: errors.New("engine missing")}}
	e := NewEngine(WithOCR(ocr))

	res, err := e.AnalyzeDocument(context.Background(), Input{Name: "scan.png", Data: whitePNG(t, 400, 200)}, AnalyzeOptions{})
	require.NoError(t, err)
	assert.Empty(t, res.Detections)
	assert.Contains(t, strings.Join(res.Warnings, "\n"), "engine missing")
}

func TestAnalyzeRejectsUnreadableInput(t *testing.T) {
	e := NewEngine()
	_, err := e.AnalyzeDocument(context.Background(), Input{Name: "x.bin", Data: []byte{0, 1, 2, 3}}, AnalyzeOptions{})
	require.Error(t, err)
	assert.True(t, redact.IsFatal(err))
}

func TestApplyRasterSkipsUnknownActions(t *testing.T) {
	sink := history.NewMemory(10)
	e := NewEngine(WithOCR(emailOCR()), WithHistory(sink))
	in := Input{Name: "uploads/scan.png", Data: whitePNG(t, 400, 200)}

	analysis, err := e.AnalyzeDocument(context.Background(), in, AnalyzeOptions{})
	require.NoError(t, err)
	require.Len(t, analysis.Detections, 1)

	out, err := e.ApplyRedactions(context.Background(), in, ApplyOptions{
		Detections: analysis.Detections,
		Actions: []redact.Action{
			{DetectionID: analysis.Detections[0].ID, Style: redact.StyleBox},
			{DetectionID: "no-such-id", Style: redact.StyleBox},
		},
		SessionID: analysis.SessionID,
	})
	require.NoError(t, err)

	assert.Equal(t, "scan-redacted.png", out.Filename)
	assert.Equal(t, "image/png", out.MimeType)
	assert.Equal(t, 1, out.Report.RedactedCount)
	assert.Equal(t, 1, out.Report.Skipped)
	assert.Equal(t, 1, out.Report.ByKind[redact.KindEmail])
	assert.True(t, out.Report.MetadataStripped)
	assert.Contains(t, strings.Join(out.Warnings, "\n"), "no-such-id")

	img, err := imaging.Decode(out.Bytes)
	require.NoError(t, err)
	r, g, b, _ := img.At(100, 32).RGBA()
	assert.Equal(t, [3]uint32{0, 0, 0}, [3]uint32{r, g, b}, "inside the detection")
	assert.Equal(t, color.RGBAModel.Convert(color.White), color.RGBAModel.Convert(img.At(300, 150)), "outside the detection")

	entries, err := sink.List(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "uploads/scan.png", entries[0].DocumentName)
	assert.Equal(t, analysis.SessionID, entries[0].SessionID)
}

func TestApplyJPEGOutput(t *testing.T) {
	e := NewEngine(WithOCR(emailOCR()))
	in := Input{Name: "scan.png", Data: whitePNG(t, 400, 200)}

	_, out, err := e.Redact(context.Background(), in, AnalyzeOptions{}, "jpg")
	require.NoError(t, err)
	assert.Equal(t, "scan-redacted.jpg", out.Filename)
	assert.Equal(t, "image/jpeg", out.MimeType)
	mt, err := Sniff(out.Bytes)
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", mt)
}

func pdfText(t *testing.T, data []byte) string {
	t.Helper()
	doc, err := pdfdoc.Read(data)
	require.NoError(t, err)
	var words []string
	for _, tok := range doc.Tokens() {
		words = append(words, tok.Text)
	}
	return strings.Join(words, " ")
}

func TestRedactPDFRemovesText(t *testing.T) {
	e := NewEngine()
	in := Input{Name: "statement.pdf", Data: statementPDF(t)}

	analysis, out, err := e.Redact(context.Background(), in, AnalyzeOptions{
		Preset: &redact.Preset{StyleMap: map[redact.Kind]redact.Style{redact.KindEmail: redact.StyleMaskLast4}},
	}, "")
	require.NoError(t, err)
	require.Contains(t, kinds(analysis.Detections), redact.KindEmail)
	assert.Equal(t, []redact.PageSize{{Width: 612, Height: 792}}, analysis.PageSizes)

	assert.Equal(t, "statement-redacted.pdf", out.Filename)
	assert.Equal(t, "application/pdf", out.MimeType)
	assert.Contains(t, out.Report.ClearedMetadata, "Author")

	text := pdfText(t, out.Bytes)
	assert.NotContains(t, text, "jane@mail.com")
	assert.Contains(t, text, "Balance")
	assert.False(t, bytes.Contains(out.Bytes, []byte("Jane Roe")))
}

func TestRedactScannedPDFUsesBackgrounds(t *testing.T) {
	raster := &fakeRasterizer{w: 1224, h: 1584}
	ocr := emailOCR()
	barcodes := &fakeOCR{}
	e := NewEngine(WithOCR(ocr), WithBarcodes(barcodes), WithRasterizer(raster))
	in := Input{Name: "statement.pdf", Data: statementPDF(t)}

	analysis, out, err := e.Redact(context.Background(), in, AnalyzeOptions{}, "")
	require.NoError(t, err)

	assert.Zero(t, ocr.calls.Load(), "pages with a text layer are not OCR'd")
	assert.EqualValues(t, 1, barcodes.calls.Load())
	assert.EqualValues(t, 2, raster.calls.Load(), "analysis and redaction each render the page")
	assert.Contains(t, kinds(analysis.Detections), redact.KindEmail)

	assert.True(t, bytes.Contains(out.Bytes, []byte("/Subtype /Image")))
	text := pdfText(t, out.Bytes)
	assert.NotContains(t, text, "jane@mail.com")
	assert.Contains(t, text, "Balance")
}

func TestApplyFlagsTextOnlyPages(t *testing.T) {
	e := NewEngine()
	in := Input{Name: "brochure.pdf", Data: illustratedPDF(t)}

	out, err := e.ApplyRedactions(context.Background(), in, ApplyOptions{})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1}, out.Report.TextOnlyPages)

	var flagged []string
	for _, w := range out.Warnings {
		if strings.Contains(w, "rebuilt from the text layer only") {
			flagged = append(flagged, w)
		}
	}
	require.Len(t, flagged, 2)
	assert.Contains(t, flagged[0], "page 0:")
	assert.Contains(t, flagged[0], "1 image(s) dropped")
	assert.Contains(t, flagged[0], "vector graphics dropped")
	assert.NotContains(t, flagged[0], "page is blank")
	assert.Contains(t, flagged[1], "page 1:")
	assert.Contains(t, flagged[1], "no text layer, page is blank")

	assert.Contains(t, pdfText(t, out.Bytes), "jane@mail.com")
}

func TestApplyWithBackgroundsKeepsPageAppearance(t *testing.T) {
	e := NewEngine(WithRasterizer(&fakeRasterizer{w: 1224, h: 1584}))
	in := Input{Name: "brochure.pdf", Data: illustratedPDF(t)}

	out, err := e.ApplyRedactions(context.Background(), in, ApplyOptions{})
	require.NoError(t, err)
	assert.Empty(t, out.Report.TextOnlyPages)
	for _, w := range out.Warnings {
		assert.NotContains(t, w, "text layer only")
	}
}

func TestApplyDegenerateMediaBoxUsesLetter(t *testing.T) {
	data := statementPDF(t)
	const box = "/MediaBox [0 0 612.00 792.00]"
	require.Contains(t, string(data), box)
	data = bytes.Replace(data, []byte(box), []byte("/MediaBox [0 0 000.00 000.00]"), 1)
	e := NewEngine()
	in := Input{Name: "statement.pdf", Data: data}

	analysis, out, err := e.Redact(context.Background(), in, AnalyzeOptions{}, "")
	require.NoError(t, err)
	assert.Equal(t, []redact.PageSize{{Width: 612, Height: 792}}, analysis.PageSizes)
	assert.Contains(t, kinds(analysis.Detections), redact.KindEmail)
	require.NotEmpty(t, analysis.Warnings)
	assert.Contains(t, analysis.Warnings[0], "degenerate MediaBox")

	assert.NotContains(t, pdfText(t, out.Bytes), "jane@mail.com")
}

func TestOutputName(t *testing.T) {
	cases := map[string]string{
		"scan.png":              "scan-redacted.png",
		"/tmp/in/statement.pdf": "statement-redacted.png",
		`C:\docs\id card.jpeg`:  "id card-redacted.png",
		"":                      "document-redacted.png",
		"archive.tar.gz":        "archive.tar-redacted.png",
	}
	for in, want := range cases {
		assert.Equal(t, want, OutputName(in, "png"), in)
	}
}

func TestPackageRejectsEmptyOutput(t *testing.T) {
	_, err := Package(nil, "x-redacted.png", "image/png", redact.Report{})
	require.Error(t, err)
	assert.True(t, redact.IsFatal(err))
	assert.ErrorIs(t, err, redact.ErrEmptyOutput)
}
