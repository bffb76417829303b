package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"github.com/ironsheep/redact-tools-mcp/internal/redact"
)

// Source is the Token.Source value for OCR tokens.
const Source = "ocr"

// DefaultLanguage is used when Engine.Language is empty.
const DefaultLanguage = "eng"

// Engine extracts word tokens from raster pages.
type Engine struct {
	// Language is the Tesseract language code, e.g. "eng" or "eng+deu".
	Language string

	// TessdataPrefix overrides the directory holding *.traineddata files.
	TessdataPrefix string

	// MinConfidence drops words whose confidence (0..1) is below it.
	MinConfidence float64
}

// Tokens runs OCR over img and returns one token per recognised word.
//
// Parameters:
//   - ctx: Checked before the (uninterruptible) recognition call starts and
//     again after it returns.
//   - img: The page raster. EXIF orientation must already be applied.
//   - page: Zero-based page index stored on every token.
//
// Returns:
//   - []redact.Token: Word tokens in pixel top-left coordinates, in the
//     order Tesseract reports them.
//   - error: A *redact.ExtractionError when the engine cannot be initialised
//     or recognition fails.
func (e *Engine) Tokens(ctx context.Context, img image.Image, page int) ([]redact.Token, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return nil, &redact.ExtractionError{Source: Source, Page: page, Err: redact.ErrZeroDimension}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, &redact.ExtractionError{Source: Source, Page: page, Err: fmt.Errorf("failed to encode page: %w", err)}
	}

	boxes, err := e.recognize(buf.Bytes())
	if err != nil {
		return nil, &redact.ExtractionError{Source: Source, Page: page, Err: err}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return boxesToTokens(boxes, page, b, e.MinConfidence), nil
}

func (e *Engine) recognize(data []byte) ([]gosseract.BoundingBox, error) {
	client := gosseract.NewClient()
	defer client.Close()

	if e.TessdataPrefix != "" {
		client.SetTessdataPrefix(e.TessdataPrefix)
	}
	if err := client.SetLanguage(e.language()); err != nil {
		return nil, fmt.Errorf("failed to set language: %w", err)
	}
	if err := client.SetImageFromBytes(data); err != nil {
		return nil, fmt.Errorf("failed to set image: %w", err)
	}

	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return nil, fmt.Errorf("OCR failed: %w", err)
	}
	return boxes, nil
}

func (e *Engine) language() string {
	if e.Language == "" {
		return DefaultLanguage
	}
	return e.Language
}

// boxesToTokens converts Tesseract word boxes into tokens measured against
// the image bounds. Boxes are shifted so that bounds.Min is the origin.
func boxesToTokens(boxes []gosseract.BoundingBox, page int, bounds image.Rectangle, minConfidence float64) []redact.Token {
	tokens := make([]redact.Token, 0, len(boxes))
	for _, box := range boxes {
		word := strings.TrimSpace(box.Word)
		if word == "" {
			continue
		}
		conf := float64(box.Confidence) / 100.0
		if conf < minConfidence {
			continue
		}
		r := box.Box.Intersect(bounds)
		if r.Empty() {
			continue
		}
		tokens = append(tokens, redact.Token{
			Text: word,
			BBox: redact.SourceBox{
				X: float64(r.Min.X - bounds.Min.X),
				Y: float64(r.Min.Y - bounds.Min.Y),
				W: float64(r.Dx()),
				H: float64(r.Dy()),
			},
			System:     redact.CoordPixelTopLeft,
			Page:       page,
			PageWidth:  float64(bounds.Dx()),
			PageHeight: float64(bounds.Dy()),
			Confidence: clampConfidence(conf),
			Source:     Source,
		})
	}
	return tokens
}

func clampConfidence(c float64) float64 {
	switch {
	case c < 0:
		return 0
	case c > 1:
		return 1
	}
	return c
}

// Info describes the OCR subsystem for the redact_info tool.
type Info struct {
	Available      bool   `json:"available"`
	Version        string `json:"version,omitempty"`
	Language       string `json:"language"`
	TessdataPrefix string `json:"tessdata_prefix,omitempty"`
	Error          string `json:"error,omitempty"`
}

// Info reports whether Tesseract can be initialised with the engine's language.
func (e *Engine) Info() Info {
	info := Info{Language: e.language(), TessdataPrefix: e.TessdataPrefix}

	client := gosseract.NewClient()
	defer client.Close()
	if e.TessdataPrefix != "" {
		client.SetTessdataPrefix(e.TessdataPrefix)
	}
	if err := client.SetLanguage(info.Language); err != nil {
		info.Error = err.Error()
		return info
	}
	info.Version = client.Version()
	info.Available = info.Version != ""
	return info
}
