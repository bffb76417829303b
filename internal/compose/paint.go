package compose

import (
	"errors"
	"fmt"
	"image/color"
	"math"

	"github.com/ironsheep/redact-tools-mcp/internal/coords"
	"github.com/ironsheep/redact-tools-mcp/internal/redact"
)

// Surface is a substrate that redaction styles can be painted on. All
// rectangles are absolute, top-left origin, in the surface's own units.
type Surface interface {
	// Fill paints r with c, rounding corners by radius when radius > 0.
	Fill(r coords.Rect, c color.Color, radius float64)

	// Stroke outlines r with a line of the given width.
	Stroke(r coords.Rect, c color.Color, width, radius float64)

	// Blur obscures r with a blur of the given sigma.
	Blur(r coords.Rect, sigma float64)

	// Pixelate replaces r with square cells of the given size.
	Pixelate(r coords.Rect, cell int)

	// Text centres one line of text inside r.
	Text(r coords.Rect, text string, c color.Color, fontSize float64)

	// MeasureText returns the advance width of text at fontSize. Surfaces
	// without font metrics return a conservative estimate.
	MeasureText(text string, fontSize float64) float64

	// Pattern draws kind over r in ink. The background is painted beforehand.
	Pattern(r coords.Rect, kind redact.PatternKind, ink color.Color)

	// Gradient fills r with a linear gradient.
	Gradient(r coords.Rect, from, to color.Color, vertical bool)
}

var (
	defaultFill       = color.NRGBA{A: 255}
	defaultText       = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	defaultPatternBg  = color.NRGBA{R: 0xE5, G: 0xE7, B: 0xEB, A: 255}
	defaultPatternInk = color.NRGBA{R: 0x37, G: 0x41, B: 0x51, A: 255}
	defaultGradFrom   = color.NRGBA{R: 0x11, G: 0x18, B: 0x27, A: 255}
	defaultGradTo     = color.NRGBA{R: 0x6B, G: 0x72, B: 0x80, A: 255}
	defaultOverlay    = color.NRGBA{R: 0xDC, G: 0x26, B: 0x26, A: 255}
)

// PixelateCell returns the cell size for a region: a tenth of its shorter
// side, never below 4.
func PixelateCell(w, h float64) int {
	return max(4, int(math.Floor(min(w, h)/10)))
}

// Paint draws one resolved action onto s.
//
// Invalid colours in the action's config fall back to the style defaults so
// the region is always covered; the returned error lists what was ignored
// and is never a reason to skip the action.
func Paint(s Surface, r Resolved) error {
	cfg := r.Config
	rect := r.Rect
	var errs []error
	pick := func(hex string, def color.Color) color.Color {
		if hex == "" {
			return def
		}
		c, err := ParseColor(hex)
		if err != nil {
			errs = append(errs, err)
			return def
		}
		return c
	}
	// cover picks a fill that hides the region; translucent colours are
	// made opaque.
	cover := func(hex string, def color.Color) color.Color {
		c := pick(hex, def)
		if n, ok := c.(color.NRGBA); ok && n.A != 255 {
			errs = append(errs, fmt.Errorf("fill %q made opaque", hex))
			n.A = 255
			return n
		}
		return c
	}
	border := func(def color.Color, defWidth float64) {
		w := cfg.BorderWidth
		if w <= 0 {
			w = defWidth
		}
		if w > 0 {
			s.Stroke(rect, pick(cfg.BorderColor, def), w, cfg.CornerRadius)
		}
	}

	switch r.Style {
	case redact.StyleBox, redact.StyleSolidColor:
		s.Fill(rect, cover(cfg.Color, defaultFill), cfg.CornerRadius)
		border(defaultFill, 0)

	case redact.StyleBlur:
		sigma := cfg.BlurRadius
		if sigma <= 0 {
			sigma = max(2, rect.H/4)
		}
		s.Blur(rect, sigma)

	case redact.StylePixelate:
		s.Pixelate(rect, PixelateCell(rect.W, rect.H))

	case redact.StyleLabel, redact.StyleMaskLast4:
		text := cfg.Text
		if r.Style == redact.StyleMaskLast4 {
			text = MaskLast4(r.Detection.Preview)
		} else if text == "" {
			text = r.Detection.Kind.String()
		}
		fontSize := cfg.FontSize
		if fontSize <= 0 {
			fontSize = rect.H * 0.7
		}
		s.Fill(rect, cover(cfg.Color, defaultFill), cfg.CornerRadius)
		border(defaultFill, 0)
		pad := fontSize * 0.5
		text = TruncateToWidth(text, rect.W-pad, func(t string) float64 { return s.MeasureText(t, fontSize) })
		if text != "" {
			s.Text(rect, text, pick(cfg.TextColor, defaultText), fontSize)
		}

	case redact.StylePattern:
		kind := cfg.Pattern
		if kind == "" {
			kind = redact.PatternDiagonal
		}
		s.Fill(rect, cover(cfg.Color, defaultPatternBg), cfg.CornerRadius)
		s.Pattern(rect, kind, pick(cfg.PatternColor, defaultPatternInk))

	case redact.StyleGradient:
		s.Gradient(rect, cover(cfg.GradientFrom, defaultGradFrom), cover(cfg.GradientTo, defaultGradTo), cfg.Vertical)

	case redact.StyleVectorOverlay:
		s.Fill(rect, cover(cfg.Color, defaultFill), cfg.CornerRadius)
		border(defaultOverlay, max(1, rect.H/20))

	case redact.StyleRemoveMetadata:
		// Metadata goes with the re-encode; nothing is drawn.

	default:
		s.Fill(rect, defaultFill, 0)
		errs = append(errs, fmt.Errorf("unknown style %s, drew a box", r.Style))
	}

	if len(errs) > 0 {
		return fmt.Errorf("detection %s: %w", r.Detection.ID, errors.Join(errs...))
	}
	return nil
}
