package app

import (
	"context"
	"fmt"
	"image"
	"strings"

	"github.com/ironsheep/redact-tools-mcp/internal/coords"
	"github.com/ironsheep/redact-tools-mcp/internal/imaging"
	"github.com/ironsheep/redact-tools-mcp/internal/pipeline"
	"github.com/ironsheep/redact-tools-mcp/internal/redact"
)

// ReviewOptions selects what a review image shows.
type ReviewOptions struct {
	// Page is zero-based.
	Page int

	// GridSpacing adds a pixel grid; zero disables it.
	GridSpacing int
}

// ReviewImage renders one page of a document with its detections outlined
// and labelled. PDF pages need the rasterizer.
func (a *App) ReviewImage(ctx context.Context, in pipeline.Input, detections []redact.Detection, opts ReviewOptions) (*image.RGBA, error) {
	page, err := a.renderPage(ctx, in.Data, opts.Page)
	if err != nil {
		return nil, err
	}
	b := page.Bounds()
	frame := coords.Frame{Width: float64(b.Dx()), Height: float64(b.Dy())}

	var marks []imaging.Mark
	for i, d := range detections {
		if d.Box.Page != opts.Page {
			continue
		}
		marks = append(marks, imaging.Mark{
			Rect:  coords.ToAbsolute(d.Box, frame),
			Label: markLabel(d),
			Color: imaging.Palette[i%len(imaging.Palette)],
		})
	}
	return imaging.Annotate(page, marks, imaging.AnnotateOptions{GridSpacing: opts.GridSpacing}), nil
}

// markLabel is the detection's sequence number and kind, e.g. "3 EMAIL".
func markLabel(d redact.Detection) string {
	seq := d.ID
	if i := strings.LastIndexByte(seq, '-'); i >= 0 {
		seq = seq[i+1:]
	}
	return seq + " " + d.Kind.String()
}

// Preview returns a downscaled PNG of the first page of res. PDF outputs
// need the rasterizer; without one the preview is nil.
func (a *App) Preview(ctx context.Context, res *redact.ApplyResult, maxDim int) (*imaging.PreviewResult, error) {
	img, err := a.renderPage(ctx, res.Bytes, 0)
	if err != nil {
		if res.MimeType == "application/pdf" && !a.CanRasterize() {
			return nil, nil
		}
		return nil, err
	}
	return imaging.Preview(img, maxDim)
}

// CanRasterize reports whether PDF pages can be rendered to pixels.
func (a *App) CanRasterize() bool {
	return a.raster != nil && a.raster.Available()
}

func (a *App) renderPage(ctx context.Context, data []byte, page int) (image.Image, error) {
	mime, err := pipeline.Sniff(data)
	if err != nil {
		return nil, err
	}
	if mime == "application/pdf" {
		if !a.CanRasterize() {
			return nil, fmt.Errorf("rendering PDF pages needs the rasterizer (rasterize.enabled and %s installed)", a.cfg.Rasterize.Command)
		}
		return a.raster.Rasterize(ctx, data, page)
	}
	if page != 0 {
		return nil, fmt.Errorf("page %d out of range: images have one page", page)
	}
	if a.cache != nil {
		return a.cache.Decode(data)
	}
	return imaging.Decode(data)
}
