package imaging

import (
	"image"
	"image/color"
	"testing"

	"github.com/ironsheep/redact-tools-mcp/internal/coords"
)

func TestAnnotateOutlinesMarks(t *testing.T) {
	src := solidImage(200, 100, color.White)
	red := color.RGBA{230, 25, 75, 255}

	out := Annotate(src, []Mark{{Rect: coords.Rect{X: 50, Y: 40, W: 60, H: 20}, Label: "1 EMAIL", Color: red}}, AnnotateOptions{Scale: 1})

	if got := out.RGBAAt(50, 50); got != red {
		t.Errorf("left edge: got %v, want %v", got, red)
	}
	if got := out.RGBAAt(109, 50); got != red {
		t.Errorf("right edge: got %v, want %v", got, red)
	}
	if got := out.RGBAAt(80, 50); got != (color.RGBA{255, 255, 255, 255}) {
		t.Errorf("inside should be untouched, got %v", got)
	}
	// The label sits above the box on its colour.
	if got := out.RGBAAt(49, 40-labelHeight); got != red {
		t.Errorf("label background: got %v, want %v", got, red)
	}
	if got := rgbaAt(src, 50, 50); got != (color.RGBA{255, 255, 255, 255}) {
		t.Error("source image was modified")
	}
}

func TestAnnotateLabelBelowWhenNoRoomAbove(t *testing.T) {
	src := solidImage(100, 100, color.White)
	blue := color.RGBA{0, 130, 200, 255}

	out := Annotate(src, []Mark{{Rect: coords.Rect{X: 10, Y: 0, W: 40, H: 10}, Label: "A", Color: blue}}, AnnotateOptions{Scale: 1})

	if got := out.RGBAAt(9, 11); got != blue {
		t.Errorf("label below box: got %v, want %v", got, blue)
	}
}

func TestAnnotateGrid(t *testing.T) {
	src := solidImage(100, 100, color.White)
	out := Annotate(src, nil, AnnotateOptions{GridSpacing: 25, Scale: 1})

	white := color.RGBA{255, 255, 255, 255}
	if out.RGBAAt(25, 90) == white {
		t.Error("expected grid line at x=25")
	}
	if out.RGBAAt(90, 50) == white {
		t.Error("expected grid line at y=50")
	}
	if out.RGBAAt(12, 90) != white {
		t.Error("expected no grid between lines")
	}
}

func TestAnnotateSkipsOffImageMarks(t *testing.T) {
	src := solidImage(50, 50, color.White)
	out := Annotate(src, []Mark{{Rect: coords.Rect{X: 80, Y: 80, W: 10, H: 10}, Label: "X", Color: Palette[0]}}, AnnotateOptions{})
	for y := 0; y < 50; y++ {
		for x := 0; x < 50; x++ {
			if out.RGBAAt(x, y) != (color.RGBA{255, 255, 255, 255}) {
				t.Fatalf("pixel (%d,%d) changed", x, y)
			}
		}
	}
}

func TestDrawLabelScale(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 40, 40))
	fg := color.RGBA{255, 255, 255, 255}
	bg := color.RGBA{0, 0, 0, 255}

	drawLabel(img, 2, 2, "1", fg, bg, 2)

	// '1' is "010" on its top row: the middle column, doubled.
	if img.RGBAAt(4, 2) != fg || img.RGBAAt(5, 3) != fg {
		t.Error("expected scaled glyph pixel")
	}
	if img.RGBAAt(2, 2) != bg {
		t.Error("expected background around glyph")
	}
}

func TestDrawLabelBoundsCheck(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 5, 5))
	// Should not panic when drawing off the edge.
	drawLabel(img, 3, 3, "EMAIL-12", color.RGBA{255, 255, 255, 255}, color.RGBA{0, 0, 0, 255}, 3)
}
