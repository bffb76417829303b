package coords

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/ironsheep/redact-tools-mcp/internal/redact"
)

func TestNormalizePixelTopLeft(t *testing.T) {
	b, err := Normalize(redact.SourceBox{X: 100, Y: 50, W: 200, H: 25}, redact.CoordPixelTopLeft, 0, Frame{Width: 1000, Height: 500})
	require.NoError(t, err)
	assert.InDelta(t, 0.1, b.X, 1e-9)
	assert.InDelta(t, 0.1, b.Y, 1e-9)
	assert.InDelta(t, 0.2, b.W, 1e-9)
	assert.InDelta(t, 0.05, b.H, 1e-9)
}

func TestNormalizeBottomLeftFlipsOnRead(t *testing.T) {
	// A word whose lower edge sits 72pt above the bottom of a Letter page.
	frame := Frame{Width: 612, Height: 792}
	b, err := Normalize(redact.SourceBox{X: 72, Y: 72, W: 100, H: 12}, redact.CoordPointBottomLeft, 2, frame)
	require.NoError(t, err)
	assert.Equal(t, 2, b.Page)
	assert.InDelta(t, (792.0-84.0)/792.0, b.Y, 1e-9, "top edge measured from the top of the page")
	assert.InDelta(t, 12.0/792.0, b.H, 1e-9)
}

func TestNormalizeRejectsZeroFrame(t *testing.T) {
	for _, f := range []Frame{{}, {Width: 100}, {Height: 100}, {Width: -1, Height: 5}} {
		_, err := Normalize(redact.SourceBox{W: 1, H: 1}, redact.CoordPixelTopLeft, 0, f)
		assert.True(t, errors.Is(err, redact.ErrZeroDimension), "frame %+v", f)
	}
}

func TestNormalizeClipsOverhang(t *testing.T) {
	b, err := Normalize(redact.SourceBox{X: 90, Y: -10, W: 20, H: 30}, redact.CoordPixelTopLeft, 0, Frame{Width: 100, Height: 100})
	require.NoError(t, err)
	assert.InDelta(t, 0.9, b.X, 1e-9)
	assert.InDelta(t, 0.0, b.Y, 1e-9)
	assert.LessOrEqual(t, b.Right(), 1+redact.Epsilon)
	assert.InDelta(t, 0.2, b.H, 1e-9)

	_, err = Normalize(redact.SourceBox{X: 150, Y: 10, W: 20, H: 10}, redact.CoordPixelTopLeft, 0, Frame{Width: 100, Height: 100})
	assert.ErrorIs(t, err, ErrOutsidePage)
}

func TestRectClip(t *testing.T) {
	r := Rect{X: -5, Y: 10, W: 20, H: 100}.Clip(50, 50)
	assert.Equal(t, Rect{X: 0, Y: 10, W: 15, H: 40}, r)
	assert.True(t, Rect{X: 60, Y: 0, W: 5, H: 5}.Clip(50, 50).Empty())
}

func TestRoundTrip(t *testing.T) {
	systems := []redact.CoordSystem{redact.CoordPixelTopLeft, redact.CoordPointTopLeft, redact.CoordPointBottomLeft}
	rapid.Check(t, func(t *rapid.T) {
		frame := Frame{
			Width:  rapid.Float64Range(1, 5000).Draw(t, "width"),
			Height: rapid.Float64Range(1, 5000).Draw(t, "height"),
		}
		sys := rapid.SampledFrom(systems).Draw(t, "system")
		w := rapid.Float64Range(0.01, 1).Draw(t, "w") * frame.Width
		h := rapid.Float64Range(0.01, 1).Draw(t, "h") * frame.Height
		src := redact.SourceBox{
			X: rapid.Float64Range(0, 1).Draw(t, "x") * (frame.Width - w),
			Y: rapid.Float64Range(0, 1).Draw(t, "y") * (frame.Height - h),
			W: w,
			H: h,
		}

		b, err := Normalize(src, sys, 0, frame)
		if err != nil {
			t.Fatalf("normalize %+v in %+v: %v", src, frame, err)
		}
		back, err := Denormalize(b, sys, frame)
		if err != nil {
			t.Fatalf("denormalize: %v", err)
		}
		tol := 1e-9 * max(frame.Width, frame.Height)
		for _, pair := range [][2]float64{{src.X, back.X}, {src.Y, back.Y}, {src.W, back.W}, {src.H, back.H}} {
			if d := pair[0] - pair[1]; d > tol || d < -tol {
				t.Fatalf("round trip mismatch: %+v -> %+v -> %+v", src, b, back)
			}
		}
	})
}

func TestRectIntersects(t *testing.T) {
	a := Rect{X: 10, Y: 10, W: 20, H: 20}
	assert.True(t, a.Intersects(Rect{X: 25, Y: 25, W: 10, H: 10}))
	assert.False(t, a.Intersects(Rect{X: 30, Y: 10, W: 5, H: 5}), "touching edges share no area")
	assert.False(t, a.Intersects(Rect{X: 0, Y: 40, W: 100, H: 5}))
	assert.Equal(t, 30.0, a.Right())
	assert.Equal(t, 30.0, a.Bottom())
}
