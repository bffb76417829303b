package imaging

import (
	"fmt"
	"math"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

var (
	regularOnce sync.Once
	regularFont *opentype.Font
	regularErr  error
)

// labelFont returns the parsed Go Regular font. The parsed font is safe to
// share; faces built from it are not.
func labelFont() (*opentype.Font, error) {
	regularOnce.Do(func() {
		regularFont, regularErr = opentype.Parse(goregular.TTF)
	})
	if regularErr != nil {
		return nil, fmt.Errorf("failed to parse label font: %w", regularErr)
	}
	return regularFont, nil
}

// faceCache holds faces by whole-pixel size for a single canvas. It must
// not be shared between goroutines.
type faceCache map[int]font.Face

// face returns a Go Regular face at size, rounded to whole pixels.
func (fc faceCache) face(size float64) (font.Face, error) {
	px := max(1, int(math.Round(size)))
	if f, ok := fc[px]; ok {
		return f, nil
	}
	ttf, err := labelFont()
	if err != nil {
		return nil, err
	}
	f, err := opentype.NewFace(ttf, &opentype.FaceOptions{
		Size:    float64(px),
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create %dpx face: %w", px, err)
	}
	fc[px] = f
	return f, nil
}
