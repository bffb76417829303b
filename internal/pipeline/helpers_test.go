package pipeline

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/redact-tools-mcp/internal/redact"
)

// fakeOCR returns fixed word boxes, measured against the page it is given,
// and records how many calls overlap.
type fakeOCR struct {
	words []redact.SourceBox
	texts []string
	err   error
	delay time.Duration

	calls    atomic.Int32
	inflight atomic.Int32
	peak     atomic.Int32
}

func (f *fakeOCR) Tokens(ctx context.Context, img image.Image, page int) ([]redact.Token, error) {
	f.calls.Add(1)
	n := f.inflight.Add(1)
	defer f.inflight.Add(-1)
	for {
		p := f.peak.Load()
		if n <= p || f.peak.CompareAndSwap(p, n) {
			break
		}
	}
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	b := img.Bounds()
	out := make([]redact.Token, len(f.words))
	for i, box := range f.words {
		out[i] = redact.Token{
			Text:       f.texts[i],
			BBox:       box,
			System:     redact.CoordPixelTopLeft,
			Page:       page,
			PageWidth:  float64(b.Dx()),
			PageHeight: float64(b.Dy()),
			Confidence: 0.9,
			Source:     "fake",
		}
	}
	return out, nil
}

// fakeRasterizer renders every page as a blank image of a fixed size.
type fakeRasterizer struct {
	w, h  int
	calls atomic.Int32
}

func (f *fakeRasterizer) Rasterize(_ context.Context, _ []byte, _ int) (image.Image, error) {
	f.calls.Add(1)
	return whiteImage(f.w, f.h), nil
}

func whiteImage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)
	return img
}

func whitePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, whiteImage(w, h)))
	return buf.Bytes()
}

// statementPDF writes one Letter page with a contact line and a balance line.
func statementPDF(t *testing.T) []byte {
	t.Helper()
	f := fpdf.New("P", "pt", "Letter", "")
	f.SetAuthor("Jane Roe", false)
	f.AddPage()
	f.SetFont("Helvetica", "", 12)
	f.Text(72, 100, "Contact")
	f.Text(150, 100, "jane@mail.com")
	f.Text(72, 200, "Balance")
	var buf bytes.Buffer
	require.NoError(t, f.Output(&buf))
	return buf.Bytes()
}

// illustratedPDF writes a page with a contact line, a photo and a filled
// rule, then a scanned-style page holding only the photo.
func illustratedPDF(t *testing.T) []byte {
	t.Helper()
	opts := fpdf.ImageOptions{ImageType: "PNG"}
	f := fpdf.New("P", "pt", "Letter", "")
	f.RegisterImageOptionsReader("photo", opts, bytes.NewReader(whitePNG(t, 16, 16)))
	f.AddPage()
	f.SetFont("Helvetica", "", 12)
	f.Text(72, 100, "Contact")
	f.Text(150, 100, "jane@mail.com")
	f.ImageOptions("photo", 72, 150, 120, 120, false, opts, 0, "")
	f.Rect(72, 300, 400, 2, "F")
	f.AddPage()
	f.ImageOptions("photo", 72, 72, 400, 500, false, opts, 0, "")
	var buf bytes.Buffer
	require.NoError(t, f.Output(&buf))
	return buf.Bytes()
}

func emailOCR() *fakeOCR {
	return &fakeOCR{
		words: []redact.SourceBox{{X: 20, Y: 20, W: 160, H: 24}},
		texts: []string{"jane@mail.com"},
	}
}

func kinds(ds []redact.Detection) []redact.Kind {
	out := make([]redact.Kind, len(ds))
	for i, d := range ds {
		out[i] = d.Kind
	}
	return out
}
