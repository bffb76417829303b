package coords

import (
	"errors"
	"fmt"

	"github.com/ironsheep/redact-tools-mcp/internal/redact"
)

// ErrOutsidePage is returned for rectangles with no area on the page.
var ErrOutsidePage = errors.New("rectangle has no area on the page")

// Frame is the extent of a page or image in source units.
type Frame struct {
	Width  float64
	Height float64
}

// Valid reports whether the frame has a positive extent.
func (f Frame) Valid() bool {
	return f.Width > 0 && f.Height > 0
}

// FrameOf returns the frame a token was measured against.
func FrameOf(t redact.Token) Frame {
	return Frame{Width: t.PageWidth, Height: t.PageHeight}
}

// Normalize converts a source rectangle into a normalized top-left Box.
//
// Parameters:
//   - src: The rectangle in source units. For redact.CoordPointBottomLeft, src.Y
//     is the lower edge measured upward from the bottom of the page.
//   - sys: The coordinate system src was measured in.
//   - page: Zero-based page index stored on the result.
//   - frame: Page extent in the same units as src.
//
// Returns:
//   - redact.Box: The normalized box, clipped to the page.
//   - error: redact.ErrZeroDimension when the frame is missing or empty,
//     ErrOutsidePage when no area of src lies on the page.
//
// Rectangles that overhang the page are clipped so that the result always
// satisfies X+W <= 1 and Y+H <= 1 within redact.Epsilon.
func Normalize(src redact.SourceBox, sys redact.CoordSystem, page int, frame Frame) (redact.Box, error) {
	if !frame.Valid() {
		return redact.Box{}, redact.ErrZeroDimension
	}
	if src.W < 0 || src.H < 0 {
		return redact.Box{}, fmt.Errorf("negative rectangle extent %gx%g", src.W, src.H)
	}

	top := src.Y
	switch sys {
	case redact.CoordPixelTopLeft, redact.CoordPointTopLeft:
	case redact.CoordPointBottomLeft:
		top = frame.Height - (src.Y + src.H)
	default:
		return redact.Box{}, fmt.Errorf("unknown coordinate system %d", int(sys))
	}

	x1 := clamp01(src.X / frame.Width)
	y1 := clamp01(top / frame.Height)
	x2 := clamp01((src.X + src.W) / frame.Width)
	y2 := clamp01((top + src.H) / frame.Height)
	if x2 <= x1 || y2 <= y1 {
		return redact.Box{}, ErrOutsidePage
	}

	return redact.Box{X: x1, Y: y1, W: x2 - x1, H: y2 - y1, Page: page}, nil
}

// Denormalize converts a normalized box back into source units. It is the
// inverse of Normalize for rectangles that lie inside the frame.
func Denormalize(b redact.Box, sys redact.CoordSystem, frame Frame) (redact.SourceBox, error) {
	if !frame.Valid() {
		return redact.SourceBox{}, redact.ErrZeroDimension
	}
	out := redact.SourceBox{
		X: b.X * frame.Width,
		Y: b.Y * frame.Height,
		W: b.W * frame.Width,
		H: b.H * frame.Height,
	}
	switch sys {
	case redact.CoordPixelTopLeft, redact.CoordPointTopLeft:
	case redact.CoordPointBottomLeft:
		out.Y = frame.Height - out.Y - out.H
	default:
		return redact.SourceBox{}, fmt.Errorf("unknown coordinate system %d", int(sys))
	}
	return out, nil
}

// Rect is an absolute top-left rectangle in substrate units (pixels or points).
type Rect struct {
	X, Y, W, H float64
}

// Inset grows (negative d shrinks) the rectangle on every side.
func (r Rect) Inset(d float64) Rect {
	return Rect{X: r.X - d, Y: r.Y - d, W: r.W + 2*d, H: r.H + 2*d}
}

// Clip restricts the rectangle to [0,width]x[0,height].
func (r Rect) Clip(width, height float64) Rect {
	x1, y1 := max(r.X, 0), max(r.Y, 0)
	x2, y2 := min(r.X+r.W, width), min(r.Y+r.H, height)
	if x2 < x1 {
		x2 = x1
	}
	if y2 < y1 {
		y2 = y1
	}
	return Rect{X: x1, Y: y1, W: x2 - x1, H: y2 - y1}
}

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool {
	return r.W <= 0 || r.H <= 0
}

// Right is the x coordinate of the right edge.
func (r Rect) Right() float64 { return r.X + r.W }

// Bottom is the y coordinate of the lower edge.
func (r Rect) Bottom() float64 { return r.Y + r.H }

// Intersects reports whether the rectangles share a positive area.
func (r Rect) Intersects(o Rect) bool {
	return r.X < o.Right() && o.X < r.Right() && r.Y < o.Bottom() && o.Y < r.Bottom()
}

// ToAbsolute scales a normalized box to a top-left rectangle on a substrate
// of the given size. The origin stays at the top-left.
func ToAbsolute(b redact.Box, frame Frame) Rect {
	return Rect{
		X: b.X * frame.Width,
		Y: b.Y * frame.Height,
		W: b.W * frame.Width,
		H: b.H * frame.Height,
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
