package pdfdoc

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/redact-tools-mcp/internal/compose"
	"github.com/ironsheep/redact-tools-mcp/internal/coords"
	"github.com/ironsheep/redact-tools-mcp/internal/redact"
)

func TestToUserSpaceFlipsOnce(t *testing.T) {
	w := NewWriter(WithCompression(false))
	require.NoError(t, w.BeginPage(coords.Frame{Width: 612, Height: 792}))

	x, y, width, height := w.toUserSpace(coords.Rect{X: 10, Y: 20, W: 30, H: 40})
	assert.Equal(t, []float64{10, 732, 30, 40}, []float64{x, y, width, height})

	w.Fill(coords.Rect{X: 10, Y: 20, W: 30, H: 40}, color.Black, 0)
	out, err := w.Bytes()
	require.NoError(t, err)
	assert.Contains(t, string(out), "10.00 732.00 30.00 40.00 re f")
}

func TestBeginPageRejectsZeroFrame(t *testing.T) {
	assert.ErrorIs(t, NewWriter().BeginPage(coords.Frame{}), redact.ErrZeroDimension)
}

func TestWriterDropsRedactedText(t *testing.T) {
	src, err := Read(fixturePDF(t, statement...))
	require.NoError(t, err)
	page := src.Pages[0]

	var target Word
	for _, word := range page.Words {
		if word.Text == "jane@mail.com" {
			target = word
		}
	}
	require.NotEmpty(t, target.Text)
	rect, err := page.WordRect(target)
	require.NoError(t, err)

	w := NewWriter()
	require.NoError(t, w.BeginPage(page.Frame))
	w.Words(page.KeptWords([]coords.Rect{rect}), false)
	require.NoError(t, compose.Paint(w, compose.Resolved{Rect: rect, Style: redact.StyleMaskLast4, Detection: redact.Detection{Preview: target.Text}}))

	out, err := w.Bytes()
	require.NoError(t, err)

	again, err := Read(out)
	require.NoError(t, err)
	texts := tokenTexts(again.Tokens())
	assert.NotContains(t, texts, "jane@mail.com")
	assert.Contains(t, texts, "Contact")
	assert.Contains(t, texts, "today")
	assert.Contains(t, texts, "Balance")
	assert.Contains(t, texts, compose.MaskLast4("jane@mail.com"))

	assert.NotContains(t, again.InfoKeys(), "Author")
	assert.NotContains(t, again.InfoKeys(), "Title")
}

func TestWriterPaintsEveryStyle(t *testing.T) {
	styles := []redact.Style{
		redact.StyleBox, redact.StyleBlur, redact.StylePixelate, redact.StyleLabel,
		redact.StyleMaskLast4, redact.StylePattern, redact.StyleGradient,
		redact.StyleSolidColor, redact.StyleVectorOverlay, redact.StyleRemoveMetadata,
	}
	patterns := []redact.PatternKind{
		redact.PatternDiagonal, redact.PatternDots, redact.PatternCrossHatch,
		redact.PatternWaves, redact.PatternNoise,
	}

	w := NewWriter()
	require.NoError(t, w.BeginPage(coords.Frame{Width: 300, Height: 300}))
	for i, style := range styles {
		cfg := redact.StyleConfig{CornerRadius: 4, Text: "REDACTED"}
		if style == redact.StylePattern {
			cfg.Pattern = patterns[i%len(patterns)]
		}
		r := compose.Resolved{
			Rect:      coords.Rect{X: 10, Y: float64(10 + i*25), W: 200, H: 20},
			Style:     style,
			Config:    cfg,
			Detection: redact.Detection{Preview: "4111111111111111"},
		}
		require.NoError(t, compose.Paint(w, r), style.String())
	}
	for i, kind := range patterns {
		w.Pattern(coords.Rect{X: 220, Y: float64(10 + i*40), W: 60, H: 30}, kind, color.Black)
	}

	out, err := w.Bytes()
	require.NoError(t, err)
	doc, err := Read(out)
	require.NoError(t, err)
	assert.Len(t, doc.Pages, 1)
}

func TestWriterBackground(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 50, 50))
	for i := range img.Pix {
		img.Pix[i] = 0xFF
	}

	w := NewWriter()
	require.NoError(t, w.BeginPage(coords.Frame{Width: 100, Height: 100}))
	require.NoError(t, w.Background(img))
	w.Words([]Word{{Text: "hidden", X: 10, Baseline: 50, Width: 30, FontSize: 10}}, true)

	out, err := w.Bytes()
	require.NoError(t, err)
	doc, err := Read(out)
	require.NoError(t, err)
	assert.Equal(t, []string{"hidden"}, tokenTexts(doc.Tokens()))
}

func TestMeasureTextErrsWide(t *testing.T) {
	w := NewWriter()
	assert.InDelta(t, 4*0.6*10, w.MeasureText("abcd", 10), 1e-9)
}
