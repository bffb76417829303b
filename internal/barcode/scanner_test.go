package barcode

import (
	"context"
	"image"
	"image/color"
	"image/draw"
	"testing"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/oned"
	"github.com/makiuchi-d/gozxing/qrcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/redact-tools-mcp/internal/redact"
)

// pageWithQR renders a QR code at (offset, offset) on a white page.
func pageWithQR(t *testing.T, text string, size, offset int) *image.RGBA {
	t.Helper()
	matrix, err := qrcode.NewQRCodeWriter().Encode(text, gozxing.BarcodeFormat_QR_CODE, size, size, nil)
	require.NoError(t, err)

	page := image.NewRGBA(image.Rect(0, 0, size+2*offset, size+2*offset))
	draw.Draw(page, page.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)
	draw.Draw(page, image.Rect(offset, offset, offset+size, offset+size), matrix, image.Point{}, draw.Src)
	return page
}

func TestScannerFindsQRCode(t *testing.T) {
	page := pageWithQR(t, "https://example.com/u/42", 200, 50)

	tokens, err := NewScanner(0).Tokens(context.Background(), page, 1)
	require.NoError(t, err)
	require.Len(t, tokens, 1)

	tok := tokens[0]
	assert.Equal(t, "https://example.com/u/42", tok.Text)
	assert.Equal(t, redact.KindBarcode, tok.Kind)
	assert.Equal(t, "barcode (QR_CODE)", tok.Reason)
	assert.Equal(t, redact.CoordPixelTopLeft, tok.System)
	assert.Equal(t, 1, tok.Page)
	assert.Equal(t, 300.0, tok.PageWidth)

	// the box surrounds the code centre and stays near the drawn symbol
	b := tok.BBox
	assert.Less(t, b.X, 150.0)
	assert.Less(t, b.Y, 150.0)
	assert.Greater(t, b.X+b.W, 150.0)
	assert.Greater(t, b.Y+b.H, 150.0)
	assert.GreaterOrEqual(t, b.X, 40.0)
	assert.LessOrEqual(t, b.X+b.W, 260.0)
}

func TestScannerFindsEveryQRCode(t *testing.T) {
	left := pageWithQR(t, "https://example.com/a", 160, 30)
	right := pageWithQR(t, "https://example.com/b", 160, 30)

	page := image.NewRGBA(image.Rect(0, 0, 440, 220))
	draw.Draw(page, page.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)
	draw.Draw(page, image.Rect(0, 0, 220, 220), left, image.Point{}, draw.Src)
	draw.Draw(page, image.Rect(220, 0, 440, 220), right, image.Point{}, draw.Src)

	tokens, err := NewScanner(0).Tokens(context.Background(), page, 0)
	require.NoError(t, err)
	require.Len(t, tokens, 2)

	byText := map[string]redact.SourceBox{}
	for _, tok := range tokens {
		byText[tok.Text] = tok.BBox
	}
	require.Contains(t, byText, "https://example.com/a")
	require.Contains(t, byText, "https://example.com/b")
	assert.Less(t, byText["https://example.com/a"].X, 220.0)
	assert.Greater(t, byText["https://example.com/b"].X+byText["https://example.com/b"].W, 220.0)
}

func TestScannerFindsStackedLinearCodes(t *testing.T) {
	writer := oned.NewCode128Writer()
	top, err := writer.Encode("ACCT-1001", gozxing.BarcodeFormat_CODE_128, 300, 60, nil)
	require.NoError(t, err)
	bottom, err := writer.Encode("ACCT-2002", gozxing.BarcodeFormat_CODE_128, 300, 60, nil)
	require.NoError(t, err)

	page := image.NewRGBA(image.Rect(0, 0, 340, 220))
	draw.Draw(page, page.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)
	draw.Draw(page, image.Rect(20, 20, 320, 80), top, image.Point{}, draw.Src)
	draw.Draw(page, image.Rect(20, 140, 320, 200), bottom, image.Point{}, draw.Src)

	tokens, err := NewScanner(4).Tokens(context.Background(), page, 0)
	require.NoError(t, err)

	byText := map[string]redact.SourceBox{}
	for _, tok := range tokens {
		byText[tok.Text] = tok.BBox
	}
	require.Contains(t, byText, "ACCT-1001")
	require.Contains(t, byText, "ACCT-2002")

	// boxes cover the full bar height, not just the scan line
	b := byText["ACCT-1001"]
	assert.LessOrEqual(t, b.Y, 20.0)
	assert.GreaterOrEqual(t, b.Y+b.H, 80.0)
	assert.Less(t, b.Y+b.H, 140.0)
}

func TestBarExtent(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 20, 30))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)
	draw.Draw(img, image.Rect(5, 10, 8, 20), image.Black, image.Point{}, draw.Src)

	top, bottom := barExtent(img, 0, 20, 15)
	assert.Equal(t, 10, top)
	assert.Equal(t, 19, bottom)
}

func TestScannerBlankPage(t *testing.T) {
	page := image.NewRGBA(image.Rect(0, 0, 120, 80))
	draw.Draw(page, page.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)

	tokens, err := NewScanner(4).Tokens(context.Background(), page, 0)
	require.NoError(t, err)
	assert.Empty(t, tokens)
}

func TestScannerZeroSize(t *testing.T) {
	_, err := NewScanner(0).Tokens(context.Background(), image.NewRGBA(image.Rectangle{}), 0)
	assert.ErrorIs(t, err, redact.ErrZeroDimension)
}

func TestCornerBox(t *testing.T) {
	t.Run("min max over corners", func(t *testing.T) {
		pts := []image.Point{{30, 40}, {90, 35}, {95, 100}, {25, 105}}
		box, ok := cornerBox(pts, 5, false, 200, 200)
		require.True(t, ok)
		assert.Equal(t, redact.SourceBox{X: 20, Y: 30, W: 80, H: 80}, box)
	})

	t.Run("clipped to image", func(t *testing.T) {
		pts := []image.Point{{2, 2}, {98, 98}}
		box, ok := cornerBox(pts, 10, false, 100, 100)
		require.True(t, ok)
		assert.Equal(t, redact.SourceBox{X: 0, Y: 0, W: 100, H: 100}, box)
	})

	t.Run("linear symbol gains height", func(t *testing.T) {
		pts := []image.Point{{10, 50}, {110, 50}}
		box, ok := cornerBox(pts, 0, true, 200, 200)
		require.True(t, ok)
		assert.Equal(t, redact.SourceBox{X: 10, Y: 35, W: 100, H: 30}, box)
	})

	t.Run("no points", func(t *testing.T) {
		_, ok := cornerBox(nil, 5, false, 100, 100)
		assert.False(t, ok)
	})
}
