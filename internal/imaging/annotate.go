package imaging

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
	"strings"

	"github.com/ironsheep/redact-tools-mcp/internal/coords"
)

// Mark is one region outlined on a review image.
type Mark struct {
	// Rect is in pixels, top-left origin.
	Rect  coords.Rect
	Label string
	Color color.RGBA
}

// AnnotateOptions controls Annotate.
type AnnotateOptions struct {
	// GridSpacing draws a pixel grid with coordinate labels every
	// GridSpacing pixels. Zero disables the grid.
	GridSpacing int

	// Scale multiplies the label glyph size. Zero picks one from the image
	// width so labels stay legible on large scans.
	Scale int
}

// Palette colours marks by position so neighbouring detections differ.
var Palette = []color.RGBA{
	{230, 25, 75, 255},
	{60, 180, 75, 255},
	{0, 130, 200, 255},
	{245, 130, 48, 255},
	{145, 30, 180, 255},
	{240, 50, 230, 255},
}

// Annotate returns a copy of img with every mark outlined and labelled
// above its top-left corner. The source image is not modified.
func Annotate(img image.Image, marks []Mark, opts AnnotateOptions) *image.RGBA {
	bounds := img.Bounds()
	result := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(result, result.Bounds(), img, bounds.Min, draw.Src)

	width, height := bounds.Dx(), bounds.Dy()
	scale := opts.Scale
	if scale <= 0 {
		scale = max(1, width/600)
	}

	if spacing := opts.GridSpacing; spacing > 0 {
		gridColor := color.RGBA{255, 0, 0, 128}
		for x := spacing; x < width; x += spacing {
			for y := 0; y < height; y++ {
				result.Set(x, y, gridColor)
			}
		}
		for y := spacing; y < height; y += spacing {
			for x := 0; x < width; x++ {
				result.Set(x, y, gridColor)
			}
		}
		fg := color.RGBA{255, 255, 255, 255}
		bg := color.RGBA{0, 0, 0, 180}
		for y := spacing; y < height; y += spacing {
			for x := spacing; x < width; x += spacing {
				drawLabel(result, x+2, y+2, fmt.Sprintf("%d,%d", x, y), fg, bg, scale)
			}
		}
	}

	white := color.RGBA{255, 255, 255, 255}
	for _, m := range marks {
		r := image.Rect(
			int(math.Floor(m.Rect.X)), int(math.Floor(m.Rect.Y)),
			int(math.Ceil(m.Rect.Right())), int(math.Ceil(m.Rect.Bottom())),
		).Intersect(result.Bounds())
		if r.Empty() {
			continue
		}
		outline(result, r, m.Color, scale)
		if m.Label != "" {
			y := r.Min.Y - labelHeight*scale - 1
			if y < 0 {
				y = r.Max.Y + 1
			}
			drawLabel(result, r.Min.X, y, m.Label, white, m.Color, scale)
		}
	}
	return result
}

// outline strokes r with a border thickness pixels wide, inside r.
func outline(img *image.RGBA, r image.Rectangle, c color.RGBA, thickness int) {
	for t := 0; t < thickness; t++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			img.SetRGBA(x, r.Min.Y+t, c)
			img.SetRGBA(x, r.Max.Y-1-t, c)
		}
		for y := r.Min.Y; y < r.Max.Y; y++ {
			img.SetRGBA(r.Min.X+t, y, c)
			img.SetRGBA(r.Max.X-1-t, y, c)
		}
	}
}

const (
	charWidth   = 4
	labelHeight = 7
)

// glyphs is a 3x5 pixel font. Lowercase letters use the uppercase glyph.
var glyphs = map[rune][]string{
	'0': {"111", "101", "101", "101", "111"},
	'1': {"010", "110", "010", "010", "111"},
	'2': {"111", "001", "111", "100", "111"},
	'3': {"111", "001", "111", "001", "111"},
	'4': {"101", "101", "111", "001", "001"},
	'5': {"111", "100", "111", "001", "111"},
	'6': {"111", "100", "111", "101", "111"},
	'7': {"111", "001", "001", "001", "001"},
	'8': {"111", "101", "111", "101", "111"},
	'9': {"111", "101", "111", "001", "111"},
	'A': {"010", "101", "111", "101", "101"},
	'B': {"110", "101", "110", "101", "110"},
	'C': {"011", "100", "100", "100", "011"},
	'D': {"110", "101", "101", "101", "110"},
	'E': {"111", "100", "110", "100", "111"},
	'F': {"111", "100", "110", "100", "100"},
	'G': {"011", "100", "101", "101", "011"},
	'H': {"101", "101", "111", "101", "101"},
	'I': {"111", "010", "010", "010", "111"},
	'J': {"001", "001", "001", "101", "010"},
	'K': {"101", "101", "110", "101", "101"},
	'L': {"100", "100", "100", "100", "111"},
	'M': {"101", "111", "111", "101", "101"},
	'N': {"110", "101", "101", "101", "101"},
	'O': {"010", "101", "101", "101", "010"},
	'P': {"110", "101", "110", "100", "100"},
	'Q': {"010", "101", "101", "110", "011"},
	'R': {"110", "101", "110", "101", "101"},
	'S': {"011", "100", "010", "001", "110"},
	'T': {"111", "010", "010", "010", "010"},
	'U': {"101", "101", "101", "101", "111"},
	'V': {"101", "101", "101", "101", "010"},
	'W': {"101", "101", "111", "111", "101"},
	'X': {"101", "101", "010", "101", "101"},
	'Y': {"101", "101", "010", "010", "010"},
	'Z': {"111", "001", "010", "100", "111"},
	',': {"000", "000", "000", "010", "010"},
	'.': {"000", "000", "000", "000", "010"},
	'-': {"000", "000", "111", "000", "000"},
	'_': {"000", "000", "000", "000", "111"},
	':': {"000", "010", "000", "010", "000"},
}

// drawLabel draws text in the 3x5 font on a filled background, each font
// pixel scaled to a scale x scale block. Unknown runes leave a gap.
func drawLabel(img *image.RGBA, x, y int, text string, fg, bg color.RGBA, scale int) {
	if scale < 1 {
		scale = 1
	}
	bounds := img.Bounds()
	set := func(px, py int, c color.RGBA) {
		if px >= bounds.Min.X && px < bounds.Max.X && py >= bounds.Min.Y && py < bounds.Max.Y {
			img.SetRGBA(px, py, c)
		}
	}

	text = strings.ToUpper(text)
	labelWidth := len([]rune(text)) * charWidth * scale

	for dy := -scale; dy < labelHeight*scale; dy++ {
		for dx := -scale; dx < labelWidth; dx++ {
			set(x+dx, y+dy, bg)
		}
	}

	cx := x
	for _, ch := range text {
		glyph, ok := glyphs[ch]
		if !ok {
			cx += charWidth * scale
			continue
		}
		for row, line := range glyph {
			for col, pixel := range line {
				if pixel != '1' {
					continue
				}
				for sy := 0; sy < scale; sy++ {
					for sx := 0; sx < scale; sx++ {
						set(cx+col*scale+sx, y+row*scale+sy, fg)
					}
				}
			}
		}
		cx += charWidth * scale
	}
}
