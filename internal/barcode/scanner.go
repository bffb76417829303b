// Package barcode locates QR codes and linear barcodes in rasters.
package barcode

import (
	"context"
	"fmt"
	"image"
	"image/draw"
	"math"

	"github.com/makiuchi-d/gozxing"
	multiqr "github.com/makiuchi-d/gozxing/multi/qrcode"
	"github.com/makiuchi-d/gozxing/oned"
	"github.com/makiuchi-d/gozxing/qrcode"

	"github.com/ironsheep/redact-tools-mcp/internal/redact"
)

const (
	// Source is the Token.Source value for barcode tokens.
	Source = "barcode"

	// DefaultPadding is added around the reduced corner box, in pixels.
	DefaultPadding = 8.0

	// scanConfidence is reported for every decoded symbol. A decode that
	// passed the symbology checksum is as certain as the scanner gets.
	scanConfidence = 0.95

	// linearAspect is the minimum height of a 1D barcode box as a share of
	// its width. Linear readers report points along a single scan line.
	linearAspect = 0.3

	// maxPasses bounds the decode-and-blank loop per symbology.
	maxPasses = 32

	// darkLevel is the gray value below which a pixel counts as a bar.
	darkLevel = 128
)

// Scanner decodes barcodes from page rasters. Readers and the working copy
// of the page are created per call, so a Scanner may be shared between
// goroutines.
type Scanner struct {
	// Padding grows every box on each side, in pixels. Zero means DefaultPadding.
	Padding float64
}

// decoder returns every symbol it can find in one pass over bmp.
type decoder func(bmp *gozxing.BinaryBitmap, hints map[gozxing.DecodeHintType]interface{}) []*gozxing.Result

type namedReader struct {
	name   string
	linear bool
	decode decoder
}

// NewScanner returns a scanner for QR, Code 128 and EAN-13 symbols.
func NewScanner(padding float64) *Scanner {
	return &Scanner{Padding: padding}
}

func newReaders() []namedReader {
	return []namedReader{
		{name: "QR_CODE", decode: qrDecoder()},
		{name: "CODE_128", linear: true, decode: single(oned.NewCode128Reader())},
		{name: "EAN_13", linear: true, decode: single(oned.NewEAN13Reader())},
	}
}

// qrDecoder finds all QR symbols the multi reader sees, falling back to the
// single-symbol reader when the multi detector finds none.
func qrDecoder() decoder {
	many := multiqr.NewQRCodeMultiReader()
	one := single(qrcode.NewQRCodeReader())
	return func(bmp *gozxing.BinaryBitmap, hints map[gozxing.DecodeHintType]interface{}) []*gozxing.Result {
		if res, err := many.DecodeMultiple(bmp, hints); err == nil && len(res) > 0 {
			return res
		}
		return one(bmp, hints)
	}
}

func single(r gozxing.Reader) decoder {
	return func(bmp *gozxing.BinaryBitmap, hints map[gozxing.DecodeHintType]interface{}) []*gozxing.Result {
		res, err := r.Decode(bmp, hints)
		if err != nil {
			return nil
		}
		return []*gozxing.Result{res}
	}
}

// Tokens returns a pre-classified BARCODE token for every decoded symbol.
// Each symbology is scanned repeatedly: found symbols are blanked out of a
// grayscale working copy and the page is decoded again until nothing more
// turns up, so a page may hold any number of codes of one type.
// Symbologies that find nothing are not errors.
func (s *Scanner) Tokens(ctx context.Context, img image.Image, page int) ([]redact.Token, error) {
	bounds := img.Bounds()
	if bounds.Dx() == 0 || bounds.Dy() == 0 {
		return nil, &redact.ExtractionError{Source: Source, Page: page, Err: redact.ErrZeroDimension}
	}

	work := image.NewGray(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(work, work.Bounds(), img, bounds.Min, draw.Src)

	hints := map[gozxing.DecodeHintType]interface{}{
		gozxing.DecodeHintType_TRY_HARDER: true,
	}

	var tokens []redact.Token
	for _, nr := range newReaders() {
		for pass := 0; pass < maxPasses; pass++ {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			bmp, err := gozxing.NewBinaryBitmapFromImage(work)
			if err != nil {
				return nil, &redact.ExtractionError{Source: Source, Page: page, Err: fmt.Errorf("failed to binarize page: %w", err)}
			}

			found := 0
			for _, res := range nr.decode(bmp, hints) {
				box, ok := s.symbolBox(work, res, nr.linear)
				if !ok || seen(tokens, res.GetText(), box) {
					continue
				}
				blank(work, box)
				found++
				tokens = append(tokens, redact.Token{
					Text:       res.GetText(),
					BBox:       box,
					System:     redact.CoordPixelTopLeft,
					Page:       page,
					PageWidth:  float64(bounds.Dx()),
					PageHeight: float64(bounds.Dy()),
					Confidence: scanConfidence,
					Source:     Source,
					Kind:       redact.KindBarcode,
					Reason:     fmt.Sprintf("barcode (%s)", nr.name),
				})
			}
			if found == 0 {
				break
			}
		}
	}
	return tokens, nil
}

// symbolBox reduces a result to its padded box on work. Linear symbols are
// reported along one scan line, so their box is grown to the full height of
// the bars.
func (s *Scanner) symbolBox(work *image.Gray, res *gozxing.Result, linear bool) (redact.SourceBox, bool) {
	points := make([]image.Point, 0, len(res.GetResultPoints()))
	for _, p := range res.GetResultPoints() {
		points = append(points, image.Pt(int(math.Round(p.GetX())), int(math.Round(p.GetY()))))
	}
	b := work.Bounds()
	box, ok := cornerBox(points, s.padding(), linear, b.Dx(), b.Dy())
	if !ok || !linear {
		return box, ok
	}

	top, bottom := barExtent(work, int(box.X), int(box.X+box.W), points[0].Y)
	minY := math.Max(0, math.Min(box.Y, float64(top)-s.padding()))
	maxY := math.Min(float64(b.Dy()), math.Max(box.Y+box.H, float64(bottom)+s.padding()))
	box.Y, box.H = minY, maxY-minY
	return box, true
}

// barExtent walks up and down from row y while the rows still hold dark
// pixels between x0 and x1, returning the first and last such row.
func barExtent(img *image.Gray, x0, x1, y int) (top, bottom int) {
	b := img.Bounds()
	x0, x1 = max(x0, b.Min.X), min(x1, b.Max.X)
	y = min(max(y, b.Min.Y), b.Max.Y-1)
	dark := func(row int) bool {
		for x := x0; x < x1; x++ {
			if img.GrayAt(x, row).Y < darkLevel {
				return true
			}
		}
		return false
	}
	top, bottom = y, y
	for top > b.Min.Y && dark(top-1) {
		top--
	}
	for bottom < b.Max.Y-1 && dark(bottom+1) {
		bottom++
	}
	return top, bottom
}

// seen reports whether a token with the same text already covers box.
func seen(tokens []redact.Token, text string, box redact.SourceBox) bool {
	for _, t := range tokens {
		b := t.BBox
		if t.Text == text && b.X < box.X+box.W && box.X < b.X+b.W && b.Y < box.Y+box.H && box.Y < b.Y+b.H {
			return true
		}
	}
	return false
}

// blank paints box white so the next pass cannot find the same symbol.
func blank(img *image.Gray, box redact.SourceBox) {
	r := image.Rect(
		int(math.Floor(box.X)), int(math.Floor(box.Y)),
		int(math.Ceil(box.X+box.W)), int(math.Ceil(box.Y+box.H)),
	).Intersect(img.Bounds())
	draw.Draw(img, r, image.White, image.Point{}, draw.Src)
}

func (s *Scanner) padding() float64 {
	if s.Padding <= 0 {
		return DefaultPadding
	}
	return s.Padding
}

// cornerBox reduces scanner corner points to an axis-aligned box via min/max
// over x and y, grows it by pad on every side and clips it to the image.
// Linear symbols get a minimum height of linearAspect times their width.
func cornerBox(points []image.Point, pad float64, linear bool, width, height int) (redact.SourceBox, bool) {
	if len(points) == 0 {
		return redact.SourceBox{}, false
	}

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range points {
		minX = math.Min(minX, float64(p.X))
		minY = math.Min(minY, float64(p.Y))
		maxX = math.Max(maxX, float64(p.X))
		maxY = math.Max(maxY, float64(p.Y))
	}

	if linear {
		want := (maxX - minX) * linearAspect
		if grow := want - (maxY - minY); grow > 0 {
			minY -= grow / 2
			maxY += grow / 2
		}
	}

	minX = math.Max(0, minX-pad)
	minY = math.Max(0, minY-pad)
	maxX = math.Min(float64(width), maxX+pad)
	maxY = math.Min(float64(height), maxY+pad)
	if maxX <= minX || maxY <= minY {
		return redact.SourceBox{}, false
	}
	return redact.SourceBox{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}, true
}
