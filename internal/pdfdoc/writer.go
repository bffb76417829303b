package pdfdoc

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"math"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/ironsheep/redact-tools-mcp/internal/compose"
	"github.com/ironsheep/redact-tools-mcp/internal/coords"
	"github.com/ironsheep/redact-tools-mcp/internal/imaging"
	"github.com/ironsheep/redact-tools-mcp/internal/redact"
)

const (
	fontFamily = "Helvetica"

	// glyphEstimate is the assumed advance per character, as a share of the
	// font size, when sizing label text. Wider than the Helvetica average so
	// truncated labels do not overflow.
	glyphEstimate = 0.6

	kappa = 0.5523
)

var (
	blurTone    = color.NRGBA{R: 0x9C, G: 0xA3, B: 0xAF, A: 255}
	pixelToneA  = color.NRGBA{R: 0x9C, G: 0xA3, B: 0xAF, A: 255}
	pixelToneB  = color.NRGBA{R: 0x6B, G: 0x72, B: 0x80, A: 255}
	wordColor   = color.Black
	zeroInfoDay = time.Unix(0, 0).UTC()
)

var escaper = strings.NewReplacer(`\`, `\\`, `(`, `\(`, `)`, `\)`, "\r", `\r`, "\n", " ")

// Writer builds a redacted PDF page by page.
type Writer struct {
	pdf    *fpdf.Fpdf
	tr     func(string) string
	frame  coords.Frame
	images int
}

// WriterOption configures a Writer.
type WriterOption func(*fpdf.Fpdf)

// WithCompression toggles content stream compression. On by default.
func WithCompression(on bool) WriterOption {
	return func(f *fpdf.Fpdf) { f.SetCompression(on) }
}

// NewWriter returns a writer for an empty document with no information fields.
func NewWriter(opts ...WriterOption) *Writer {
	f := fpdf.NewCustom(&fpdf.InitType{UnitStr: "pt", Size: fpdf.SizeType{Wd: letter.Width, Ht: letter.Height}})
	f.SetProducer("", false)
	f.SetCreationDate(zeroInfoDay)
	f.SetModificationDate(zeroInfoDay)
	f.SetCatalogSort(true)
	f.SetAutoPageBreak(false, 0)
	f.SetMargins(0, 0, 0)
	for _, opt := range opts {
		opt(f)
	}
	return &Writer{pdf: f, tr: f.UnicodeTranslatorFromDescriptor("")}
}

// BeginPage starts a new page of the given extent in points.
func (w *Writer) BeginPage(frame coords.Frame) error {
	if !frame.Valid() {
		return redact.ErrZeroDimension
	}
	w.frame = frame
	w.pdf.AddPageFormat("P", fpdf.SizeType{Wd: frame.Width, Ht: frame.Height})
	return w.pdf.Error()
}

// Frame returns the current page extent.
func (w *Writer) Frame() coords.Frame {
	return w.frame
}

// Background places img over the whole current page.
func (w *Writer) Background(img image.Image) error {
	data, err := imaging.Encode(img, imaging.FormatJPEG, 90)
	if err != nil {
		return fmt.Errorf("failed to encode page background: %w", err)
	}
	w.images++
	name := fmt.Sprintf("page-bg-%d", w.images)
	opts := fpdf.ImageOptions{ImageType: "JPG"}
	w.pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(data))
	w.pdf.ImageOptions(name, 0, 0, w.frame.Width, w.frame.Height, false, opts, 0, "")
	return w.pdf.Error()
}

// Words re-emits words at their original user-space position. Invisible
// words keep the page searchable over a rasterized background.
func (w *Writer) Words(words []Word, invisible bool) {
	mode := 0
	if invisible {
		mode = 3
	}
	for _, word := range words {
		if word.FontSize <= 0 {
			continue
		}
		w.pdf.SetFont(fontFamily, "", word.FontSize)
		w.pdf.RawWriteStr(fmt.Sprintf("q %s BT %d Tr %.2f %.2f Td (%s) Tj ET Q",
			fillColor(wordColor), mode, word.X, word.Baseline, w.encode(word.Text)))
	}
}

// Bytes finishes the document and returns it.
func (w *Writer) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := w.pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to write PDF: %w", err)
	}
	if buf.Len() == 0 {
		return nil, redact.ErrEmptyOutput
	}
	return buf.Bytes(), nil
}

// toUserSpace converts a top-left rectangle in points to PDF user space,
// returning the lower-left corner and extent.
func (w *Writer) toUserSpace(r coords.Rect) (x, y, width, height float64) {
	return r.X, w.frame.Height - r.Y - r.H, r.W, r.H
}

func (w *Writer) encode(text string) string {
	return escaper.Replace(w.tr(text))
}

// Fill paints r with c.
func (w *Writer) Fill(r coords.Rect, c color.Color, radius float64) {
	if r.Empty() {
		return
	}
	w.pdf.RawWriteStr("q " + fillColor(c) + " " + w.path(r, radius) + " f Q")
}

// Stroke outlines r with the line drawn inside the rectangle.
func (w *Writer) Stroke(r coords.Rect, c color.Color, width, radius float64) {
	if r.Empty() || width <= 0 {
		return
	}
	inner := r.Inset(-width / 2)
	if inner.Empty() {
		w.Fill(r, c, radius)
		return
	}
	w.pdf.RawWriteStr(fmt.Sprintf("q %s %.2f w %s S Q", strokeColor(c), width, w.path(inner, math.Max(0, radius-width/2))))
}

// Blur has no vector equivalent; the region is covered with a neutral tone.
// The text beneath it is never written, so nothing remains to recover.
func (w *Writer) Blur(r coords.Rect, _ float64) {
	w.Fill(r, blurTone, 0)
}

// Pixelate covers r with a two-tone grid of cell-sized squares.
func (w *Writer) Pixelate(r coords.Rect, cell int) {
	if r.Empty() {
		return
	}
	w.Fill(r, pixelToneA, 0)
	size := float64(max(cell, 1))
	var sb strings.Builder
	sb.WriteString("q " + fillColor(pixelToneB) + " ")
	sb.WriteString(w.clip(r))
	for row, y := 0, r.Y; y < r.Bottom(); row, y = row+1, y+size {
		for col, x := 0, r.X; x < r.Right(); col, x = col+1, x+size {
			if (row+col)%2 == 1 {
				continue
			}
			ux, uy, uw, uh := w.toUserSpace(coords.Rect{X: x, Y: y, W: size, H: size})
			fmt.Fprintf(&sb, "%.2f %.2f %.2f %.2f re ", ux, uy, uw, uh)
		}
	}
	sb.WriteString("f Q")
	w.pdf.RawWriteStr(sb.String())
}

// Text centres text in r using the standard Helvetica face.
func (w *Writer) Text(r coords.Rect, text string, c color.Color, fontSize float64) {
	if text == "" || fontSize <= 0 || r.Empty() {
		return
	}
	width := w.MeasureText(text, fontSize)
	baseline := coords.Rect{
		X: r.X + (r.W-width)/2,
		Y: r.Y + r.H/2 + 0.35*fontSize,
	}
	x, y, _, _ := w.toUserSpace(baseline)
	w.pdf.SetFont(fontFamily, "", fontSize)
	w.pdf.RawWriteStr(fmt.Sprintf("q %s BT 0 Tr %.2f %.2f Td (%s) Tj ET Q", fillColor(c), x, y, w.encode(text)))
}

// MeasureText estimates the width of text; the writer has no font metrics
// for arbitrary glyphs, so the estimate errs wide.
func (w *Writer) MeasureText(text string, fontSize float64) float64 {
	return float64(len([]rune(text))) * glyphEstimate * fontSize
}

// Pattern strokes kind across r, clipped to r. Noise has no line form and
// degrades to a solid fill.
func (w *Writer) Pattern(r coords.Rect, kind redact.PatternKind, ink color.Color) {
	if r.Empty() {
		return
	}
	if kind == redact.PatternNoise {
		w.Fill(r, ink, 0)
		return
	}

	spacing := math.Max(4, math.Min(r.W, r.H)/4)
	x, y, width, height := w.toUserSpace(r)

	var sb strings.Builder
	sb.WriteString("q " + strokeColor(ink) + " " + fillColor(ink) + " 1 w " + w.clip(r))
	switch kind {
	case redact.PatternDots:
		radius := math.Max(1, spacing/6)
		for cy := y + spacing/2; cy < y+height; cy += spacing {
			for cx := x + spacing/2; cx < x+width; cx += spacing {
				sb.WriteString(circlePath(cx, cy, radius))
			}
		}
		sb.WriteString("f ")
	case redact.PatternWaves:
		amp := spacing / 4
		for base := y + spacing/2; base < y+height; base += spacing {
			fmt.Fprintf(&sb, "%.2f %.2f m ", x, base)
			for dx := 2.0; dx <= width; dx += 2 {
				fmt.Fprintf(&sb, "%.2f %.2f l ", x+dx, base+amp*math.Sin(dx/spacing*2*math.Pi))
			}
		}
		sb.WriteString("S ")
	case redact.PatternCrossHatch:
		sb.WriteString(diagonalPath(x, y, width, height, spacing, false))
		sb.WriteString(diagonalPath(x, y, width, height, spacing, true))
		sb.WriteString("S ")
	default:
		sb.WriteString(diagonalPath(x, y, width, height, spacing, false))
		sb.WriteString("S ")
	}
	sb.WriteString("Q")
	w.pdf.RawWriteStr(sb.String())
}

// Gradient degrades to a solid fill with the Lab midpoint of the two colours.
func (w *Writer) Gradient(r coords.Rect, from, to color.Color, _ bool) {
	w.Fill(r, compose.Midpoint(from, to), 0)
}

func (w *Writer) clip(r coords.Rect) string {
	x, y, width, height := w.toUserSpace(r)
	return fmt.Sprintf("%.2f %.2f %.2f %.2f re W n ", x, y, width, height)
}

// path returns a closed rectangle path for r, with rounded corners when radius > 0.
func (w *Writer) path(r coords.Rect, radius float64) string {
	x, y, width, height := w.toUserSpace(r)
	radius = math.Min(radius, math.Min(width, height)/2)
	if radius <= 0 {
		return fmt.Sprintf("%.2f %.2f %.2f %.2f re", x, y, width, height)
	}

	k := kappa * radius
	var sb strings.Builder
	fmt.Fprintf(&sb, "%.2f %.2f m ", x+radius, y)
	fmt.Fprintf(&sb, "%.2f %.2f l ", x+width-radius, y)
	fmt.Fprintf(&sb, "%.2f %.2f %.2f %.2f %.2f %.2f c ", x+width-radius+k, y, x+width, y+radius-k, x+width, y+radius)
	fmt.Fprintf(&sb, "%.2f %.2f l ", x+width, y+height-radius)
	fmt.Fprintf(&sb, "%.2f %.2f %.2f %.2f %.2f %.2f c ", x+width, y+height-radius+k, x+width-radius+k, y+height, x+width-radius, y+height)
	fmt.Fprintf(&sb, "%.2f %.2f l ", x+radius, y+height)
	fmt.Fprintf(&sb, "%.2f %.2f %.2f %.2f %.2f %.2f c ", x+radius-k, y+height, x, y+height-radius+k, x, y+height-radius)
	fmt.Fprintf(&sb, "%.2f %.2f l ", x, y+radius)
	fmt.Fprintf(&sb, "%.2f %.2f %.2f %.2f %.2f %.2f c h", x, y+radius-k, x+radius-k, y, x+radius, y)
	return sb.String()
}

func circlePath(cx, cy, r float64) string {
	k := kappa * r
	return fmt.Sprintf("%.2f %.2f m %.2f %.2f %.2f %.2f %.2f %.2f c %.2f %.2f %.2f %.2f %.2f %.2f c %.2f %.2f %.2f %.2f %.2f %.2f c %.2f %.2f %.2f %.2f %.2f %.2f c h ",
		cx+r, cy,
		cx+r, cy+k, cx+k, cy+r, cx, cy+r,
		cx-k, cy+r, cx-r, cy+k, cx-r, cy,
		cx-r, cy-k, cx-k, cy-r, cx, cy-r,
		cx+k, cy-r, cx+r, cy-k, cx+r, cy)
}

// diagonalPath draws parallel 45 degree lines across the box; the clip
// trims their ends.
func diagonalPath(x, y, width, height, spacing float64, mirrored bool) string {
	var sb strings.Builder
	for off := -height; off < width; off += spacing {
		if mirrored {
			fmt.Fprintf(&sb, "%.2f %.2f m %.2f %.2f l ", x+off, y+height, x+off+height, y)
		} else {
			fmt.Fprintf(&sb, "%.2f %.2f m %.2f %.2f l ", x+off, y, x+off+height, y+height)
		}
	}
	return sb.String()
}

func components(c color.Color) (r, g, b float64) {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return float64(n.R) / 255, float64(n.G) / 255, float64(n.B) / 255
}

func fillColor(c color.Color) string {
	r, g, b := components(c)
	return fmt.Sprintf("%.3f %.3f %.3f rg", r, g, b)
}

func strokeColor(c color.Color) string {
	r, g, b := components(c)
	return fmt.Sprintf("%.3f %.3f %.3f RG", r, g, b)
}
