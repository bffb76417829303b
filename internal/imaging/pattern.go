package imaging

import (
	"image/color"
	"math"

	"github.com/anthonynsimon/bild/noise"

	"github.com/ironsheep/redact-tools-mcp/internal/coords"
	"github.com/ironsheep/redact-tools-mcp/internal/redact"
)

// Pattern draws kind over r in ink, clipped to r.
func (c *Canvas) Pattern(r coords.Rect, kind redact.PatternKind, ink color.Color) {
	if r.Empty() {
		return
	}
	spacing := max(4, math.Min(r.W, r.H)/4)

	c.dc.DrawRectangle(r.X, r.Y, r.W, r.H)
	c.dc.Clip()
	defer c.dc.ResetClip()

	c.dc.SetColor(ink)
	c.dc.SetLineWidth(max(1, spacing/6))

	switch kind {
	case redact.PatternDots:
		radius := spacing / 5
		for y := r.Y + spacing/2; y < r.Y+r.H; y += spacing {
			for x := r.X + spacing/2; x < r.X+r.W; x += spacing {
				c.dc.DrawCircle(x, y, radius)
			}
		}
		c.dc.Fill()

	case redact.PatternCrossHatch:
		c.diagonals(r, spacing, false)
		c.diagonals(r, spacing, true)
		c.dc.Stroke()

	case redact.PatternWaves:
		amp := spacing / 4
		step := max(1, spacing/8)
		for y := r.Y + spacing/2; y < r.Y+r.H+amp; y += spacing {
			c.dc.MoveTo(r.X, y)
			for x := r.X; x <= r.X+r.W+step; x += step {
				c.dc.LineTo(x, y+amp*math.Sin((x-r.X)/spacing*2*math.Pi))
			}
		}
		c.dc.Stroke()

	case redact.PatternNoise:
		w, h := int(math.Ceil(r.W)), int(math.Ceil(r.H))
		tile := noise.Generate(w, h, &noise.Options{Monochrome: true, NoiseFn: noise.Uniform})
		c.dc.DrawImage(tile, int(math.Floor(r.X)), int(math.Floor(r.Y)))

	default:
		c.diagonals(r, spacing, false)
		c.dc.Stroke()
	}
}

// diagonals adds parallel 45-degree lines covering r to the current path.
func (c *Canvas) diagonals(r coords.Rect, spacing float64, mirrored bool) {
	for off := -r.H; off < r.W+r.H; off += spacing {
		if mirrored {
			c.dc.DrawLine(r.X+off, r.Y, r.X+off+r.H, r.Y+r.H)
		} else {
			c.dc.DrawLine(r.X+off, r.Y+r.H, r.X+off+r.H, r.Y)
		}
	}
}
