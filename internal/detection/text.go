package detection

import (
	"image"
	"image/color"
	"math"
	"sort"

	"github.com/anthonynsimon/bild/effect"

	"github.com/ironsheep/redact-tools-mcp/internal/redact"
)

const (
	// Source is the Token.Source value for region tokens.
	Source = "text-region"

	// Reason is attached to every region token.
	Reason = "text-like region (no OCR)"

	// MaxConfidence caps region confidence.
	MaxConfidence = 0.5

	edgeThreshold = 30.0
	minDensity    = 0.05
	maxDensity    = 0.4
	idealDensity  = 0.2
)

// windowSizes are typical text-line extents in pixels.
var windowSizes = []image.Point{
	{100, 30},
	{150, 40},
	{200, 50},
	{80, 25},
}

type region struct {
	rect       image.Rectangle
	confidence float64
}

// TextRegions returns pre-classified OTHER tokens covering text-like areas of img.
//
// Parameters:
//   - img: The page raster.
//   - page: Zero-based page index stored on every token.
//   - minConfidence: Regions scoring below it (0..MaxConfidence) are dropped.
//
// Returns:
//   - []redact.Token: One token per merged region, highest confidence first.
//     Text is empty; Kind is redact.KindOther.
func TextRegions(img image.Image, page int, minConfidence float64) []redact.Token {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width == 0 || height == 0 {
		return nil
	}

	edges := edgeMap(img)
	sums := integral(edges, width, height)

	var candidates []region
	for _, ws := range windowSizes {
		if ws.X > width || ws.Y > height {
			continue
		}
		stepX, stepY := ws.X/2, ws.Y/2
		area := float64(ws.X * ws.Y)

		for y := 0; y <= height-ws.Y; y += stepY {
			for x := 0; x <= width-ws.X; x += stepX {
				density := float64(windowSum(sums, x, y, ws.X, ws.Y)) / area
				if density < minDensity || density > maxDensity {
					continue
				}
				score := horizontalScore(edges, x, y, ws.X, ws.Y) * (1.0 - math.Abs(density-idealDensity)/idealDensity)
				conf := math.Round(score*MaxConfidence*1000) / 1000
				if conf <= 0 || conf < minConfidence {
					continue
				}
				candidates = append(candidates, region{
					rect:       image.Rect(x, y, x+ws.X, y+ws.Y),
					confidence: conf,
				})
			}
		}
	}

	merged := mergeRegions(candidates)
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].confidence > merged[j].confidence
	})

	tokens := make([]redact.Token, 0, len(merged))
	for _, r := range merged {
		tokens = append(tokens, redact.Token{
			BBox: redact.SourceBox{
				X: float64(r.rect.Min.X),
				Y: float64(r.rect.Min.Y),
				W: float64(r.rect.Dx()),
				H: float64(r.rect.Dy()),
			},
			System:     redact.CoordPixelTopLeft,
			Page:       page,
			PageWidth:  float64(width),
			PageHeight: float64(height),
			Confidence: r.confidence,
			Source:     Source,
			Kind:       redact.KindOther,
			Reason:     Reason,
		})
	}
	return tokens
}

// edgeMap marks pixels whose gradient to the right or downward neighbour
// exceeds edgeThreshold. Indexed [y][x] relative to img.Bounds().Min.
func edgeMap(img image.Image) [][]bool {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	var gray image.Image = effect.Grayscale(img)
	gb := gray.Bounds()
	level := func(x, y int) float64 {
		return float64(color.GrayModel.Convert(gray.At(gb.Min.X+x, gb.Min.Y+y)).(color.Gray).Y)
	}

	edges := make([][]bool, height)
	for y := 0; y < height; y++ {
		edges[y] = make([]bool, width)
		if y == 0 || y == height-1 {
			continue
		}
		for x := 1; x < width-1; x++ {
			c := level(x, y)
			if math.Abs(c-level(x+1, y)) > edgeThreshold || math.Abs(c-level(x, y+1)) > edgeThreshold {
				edges[y][x] = true
			}
		}
	}
	return edges
}

// integral builds a summed-area table of edge pixels with a zero border row
// and column, so window sums cost four lookups.
func integral(edges [][]bool, width, height int) [][]int {
	sums := make([][]int, height+1)
	sums[0] = make([]int, width+1)
	for y := 0; y < height; y++ {
		sums[y+1] = make([]int, width+1)
		row := 0
		for x := 0; x < width; x++ {
			if edges[y][x] {
				row++
			}
			sums[y+1][x+1] = sums[y][x+1] + row
		}
	}
	return sums
}

func windowSum(sums [][]int, x, y, w, h int) int {
	return sums[y+h][x+w] - sums[y][x+w] - sums[y+h][x] + sums[y][x]
}

// horizontalScore is the share of edge runs that are horizontal. Printed
// text has more of them than photographs or diagrams.
func horizontalScore(edges [][]bool, x, y, w, h int) float64 {
	horizontal, vertical := 0, 0

	for row := y; row < y+h; row++ {
		inRun := false
		for col := x; col < x+w; col++ {
			if edges[row][col] {
				if !inRun {
					horizontal++
					inRun = true
				}
			} else {
				inRun = false
			}
		}
	}

	for col := x; col < x+w; col++ {
		inRun := false
		for row := y; row < y+h; row++ {
			if edges[row][col] {
				if !inRun {
					vertical++
					inRun = true
				}
			} else {
				inRun = false
			}
		}
	}

	if horizontal+vertical == 0 {
		return 0
	}
	return float64(horizontal) / float64(horizontal+vertical)
}

// mergeRegions folds overlapping candidates into their union, keeping the
// higher confidence. Merging repeats until no two regions overlap.
func mergeRegions(regions []region) []region {
	merged := append([]region(nil), regions...)
	for changed := true; changed; {
		changed = false
		for i := 0; i < len(merged); i++ {
			for j := i + 1; j < len(merged); j++ {
				if !merged[i].rect.Overlaps(merged[j].rect) {
					continue
				}
				merged[i].rect = merged[i].rect.Union(merged[j].rect)
				merged[i].confidence = math.Max(merged[i].confidence, merged[j].confidence)
				merged = append(merged[:j], merged[j+1:]...)
				changed = true
				j--
			}
		}
	}
	return merged
}
