package imaging

import (
	"image"
	"image/color"
	"math"

	"git.sr.ht/~sbinet/gg"
	"github.com/anthonynsimon/bild/blur"
	"github.com/disintegration/imaging"

	"github.com/ironsheep/redact-tools-mcp/internal/coords"
)

// Canvas is a raster substrate for redaction styles. A Canvas is used by
// one goroutine at a time.
type Canvas struct {
	dc    *gg.Context
	w     int
	h     int
	faces faceCache
}

// NewCanvas returns a canvas holding a private copy of src.
func NewCanvas(src image.Image) *Canvas {
	b := src.Bounds()
	return &Canvas{dc: gg.NewContextForImage(src), w: b.Dx(), h: b.Dy(), faces: faceCache{}}
}

// Frame returns the canvas size in pixels.
func (c *Canvas) Frame() coords.Frame {
	return coords.Frame{Width: float64(c.w), Height: float64(c.h)}
}

// Image returns the current pixels.
func (c *Canvas) Image() image.Image {
	return c.dc.Image()
}

// pixelRect rounds r outward to whole pixels and clips it to the canvas.
func (c *Canvas) pixelRect(r coords.Rect) image.Rectangle {
	pr := image.Rect(
		int(math.Floor(r.X)), int(math.Floor(r.Y)),
		int(math.Ceil(r.X+r.W)), int(math.Ceil(r.Y+r.H)),
	)
	return pr.Intersect(image.Rect(0, 0, c.w, c.h))
}

func (c *Canvas) rectPath(r coords.Rect, radius float64) {
	if radius > 0 {
		c.dc.DrawRoundedRectangle(r.X, r.Y, r.W, r.H, min(radius, r.W/2, r.H/2))
		return
	}
	c.dc.DrawRectangle(r.X, r.Y, r.W, r.H)
}

// Fill paints r with col.
func (c *Canvas) Fill(r coords.Rect, col color.Color, radius float64) {
	c.dc.SetColor(col)
	c.rectPath(r, radius)
	c.dc.Fill()
}

// Stroke outlines r. The line is drawn inside r so it never spills onto
// neighbouring content.
func (c *Canvas) Stroke(r coords.Rect, col color.Color, width, radius float64) {
	c.dc.SetColor(col)
	c.dc.SetLineWidth(width)
	c.rectPath(r.Inset(-width/2), radius)
	c.dc.Stroke()
}

// Blur clips to r and re-draws the current pixels around it through a
// Gaussian filter. A margin of three sigma feeds the filter so the edges of
// the region blur as strongly as its centre.
func (c *Canvas) Blur(r coords.Rect, sigma float64) {
	target := c.pixelRect(r)
	if target.Empty() {
		return
	}
	margin := int(math.Ceil(3 * sigma))
	source := target.Inset(-margin).Intersect(image.Rect(0, 0, c.w, c.h))
	region := imaging.Crop(c.dc.Image(), source)
	blurred := blur.Gaussian(region, sigma)

	c.dc.DrawRectangle(float64(target.Min.X), float64(target.Min.Y), float64(target.Dx()), float64(target.Dy()))
	c.dc.Clip()
	c.dc.DrawImage(blurred, source.Min.X, source.Min.Y)
	c.dc.ResetClip()
}

// Pixelate shrinks the region to one pixel per cell with a box filter and
// scales it back up without smoothing.
func (c *Canvas) Pixelate(r coords.Rect, cell int) {
	target := c.pixelRect(r)
	if target.Empty() {
		return
	}
	cell = max(1, cell)
	region := imaging.Crop(c.dc.Image(), target)
	cols := max(1, int(math.Ceil(float64(target.Dx())/float64(cell))))
	rows := max(1, int(math.Ceil(float64(target.Dy())/float64(cell))))
	small := imaging.Resize(region, cols, rows, imaging.Box)
	big := imaging.Resize(small, target.Dx(), target.Dy(), imaging.NearestNeighbor)
	c.dc.DrawImage(big, target.Min.X, target.Min.Y)
}

// Text centres text in r.
func (c *Canvas) Text(r coords.Rect, text string, col color.Color, fontSize float64) {
	face, err := c.faces.face(fontSize)
	if err != nil {
		return
	}
	c.dc.SetFontFace(face)
	c.dc.SetColor(col)
	c.dc.DrawStringAnchored(text, r.X+r.W/2, r.Y+r.H/2, 0.5, 0.5)
}

// MeasureText returns the advance width of text in pixels.
func (c *Canvas) MeasureText(text string, fontSize float64) float64 {
	face, err := c.faces.face(fontSize)
	if err != nil {
		return float64(len([]rune(text))) * fontSize
	}
	c.dc.SetFontFace(face)
	w, _ := c.dc.MeasureString(text)
	return w
}

// Gradient fills r with a linear gradient, left to right or top to bottom.
func (c *Canvas) Gradient(r coords.Rect, from, to color.Color, vertical bool) {
	x1, y1 := r.X+r.W, r.Y
	if vertical {
		x1, y1 = r.X, r.Y+r.H
	}
	grad := gg.NewLinearGradient(r.X, r.Y, x1, y1)
	grad.AddColorStop(0, from)
	grad.AddColorStop(1, to)
	c.dc.SetFillStyle(grad)
	c.dc.DrawRectangle(r.X, r.Y, r.W, r.H)
	c.dc.Fill()
}
