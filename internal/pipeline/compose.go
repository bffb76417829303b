package pipeline

import (
	"context"
	"fmt"
	"image"
	"strings"

	"github.com/ironsheep/redact-tools-mcp/internal/compose"
	"github.com/ironsheep/redact-tools-mcp/internal/coords"
	"github.com/ironsheep/redact-tools-mcp/internal/imaging"
	"github.com/ironsheep/redact-tools-mcp/internal/pdfdoc"
	"github.com/ironsheep/redact-tools-mcp/internal/redact"
)

// composeRaster paints every resolved item onto a copy of the decoded image
// and re-encodes it. Encoding from pixels drops EXIF and XMP.
func (e *Engine) composeRaster(x *extraction, res compose.Resolution, format string) ([]byte, []string, error) {
	canvas := imaging.NewCanvas(x.raster)
	var warnings []string
	for _, it := range res.Items {
		if err := compose.Paint(canvas, it); err != nil {
			warnings = append(warnings, err.Error())
		}
	}
	out, err := imaging.Encode(canvas.Image(), format, e.jpegQuality)
	if err != nil {
		return nil, warnings, err
	}
	return out, warnings, nil
}

// composePDF writes a new PDF page by page. The output never copies source
// content streams: only words outside every redacted rectangle are written
// back, and the styles are drawn over them. Pages with a rendered background
// get the styles burned into the raster instead, with the kept words as an
// invisible text layer.
//
// textOnly lists the pages rebuilt without a background; each of them also
// gets a warning naming what the rebuild dropped.
func (e *Engine) composePDF(ctx context.Context, x *extraction, res compose.Resolution) (out []byte, textOnly []int, warnings []string, err error) {
	w := pdfdoc.NewWriter()
	for _, page := range x.pdf.Pages {
		if err := ctx.Err(); err != nil {
			return nil, textOnly, warnings, err
		}
		if err := w.BeginPage(page.Frame); err != nil {
			return nil, textOnly, warnings, fmt.Errorf("page %d: %w", page.Index, err)
		}

		items := res.ForPage(page.Index)
		var redacted []coords.Rect
		for _, it := range items {
			if it.Style != redact.StyleRemoveMetadata {
				redacted = append(redacted, it.Rect)
			}
		}

		bg := x.backgrounds[page.Index]
		if bg != nil {
			canvas := imaging.NewCanvas(bg)
			for _, it := range items {
				if err := compose.Paint(canvas, scaleTo(it, page.Frame, canvas.Frame())); err != nil {
					warnings = append(warnings, err.Error())
				}
			}
			if err := w.Background(canvas.Image()); err != nil {
				return nil, textOnly, warnings, fmt.Errorf("page %d: %w", page.Index, err)
			}
		} else {
			textOnly = append(textOnly, page.Index)
			warnings = append(warnings, textOnlyWarning(page))
			e.logger.Warn("Page rebuilt from text layer only", "page", page.Index, "images", page.Images, "graphics", page.Graphics)
		}

		w.Words(page.KeptWords(redacted), bg != nil)

		if bg == nil {
			for _, it := range items {
				if err := compose.Paint(w, it); err != nil {
					warnings = append(warnings, err.Error())
				}
			}
		}
	}
	out, err = w.Bytes()
	return out, textOnly, warnings, err
}

// textOnlyWarning describes what a page loses when only its words are
// written back.
func textOnlyWarning(page pdfdoc.Page) string {
	var lost []string
	if page.Images > 0 {
		lost = append(lost, fmt.Sprintf("%d image(s) dropped", page.Images))
	}
	if page.Graphics {
		lost = append(lost, "vector graphics dropped")
	}
	if len(page.Words) == 0 {
		lost = append(lost, "no text layer, page is blank")
	}
	lost = append(lost, "fonts and layout not kept")
	return fmt.Sprintf("page %d: rebuilt from the text layer only (%s); enable the rasterizer to keep the page appearance",
		page.Index, strings.Join(lost, ", "))
}

// scaleTo maps an item resolved in page points onto a raster of the page.
func scaleTo(it compose.Resolved, from, to coords.Frame) compose.Resolved {
	sx, sy := to.Width/from.Width, to.Height/from.Height
	it.Rect = coords.Rect{X: it.Rect.X * sx, Y: it.Rect.Y * sy, W: it.Rect.W * sx, H: it.Rect.H * sy}
	s := min(sx, sy)
	it.Config.BorderWidth *= s
	it.Config.CornerRadius *= s
	it.Config.FontSize *= s
	it.Config.BlurRadius *= s
	return it
}

// frameOf returns the pixel frame of an image.
func frameOf(img image.Image) coords.Frame {
	b := img.Bounds()
	return coords.Frame{Width: float64(b.Dx()), Height: float64(b.Dy())}
}
