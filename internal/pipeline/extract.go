package pipeline

import (
	"context"
	"fmt"
	"image"

	"github.com/gabriel-vasile/mimetype"

	"github.com/ironsheep/redact-tools-mcp/internal/coords"
	"github.com/ironsheep/redact-tools-mcp/internal/detection"
	"github.com/ironsheep/redact-tools-mcp/internal/imaging"
	"github.com/ironsheep/redact-tools-mcp/internal/pdfdoc"
	"github.com/ironsheep/redact-tools-mcp/internal/redact"
)

type docKind int

const (
	docRaster docKind = iota
	docPDF
)

// rasterTypes maps the accepted raster MIME types to their output format.
var rasterTypes = map[string]string{
	"image/png":  imaging.FormatPNG,
	"image/jpeg": imaging.FormatJPEG,
	"image/gif":  imaging.FormatPNG,
	"image/bmp":  imaging.FormatPNG,
	"image/tiff": imaging.FormatPNG,
}

// extraction is everything read from one input.
type extraction struct {
	kind     docKind
	frames   []coords.Frame
	tokens   []redact.Token
	warnings []string

	raster       image.Image
	rasterFormat string

	pdf         *pdfdoc.Document
	backgrounds map[int]image.Image
	infoKeys    []string
}

// Sniff reports the document type of data from its content.
//
// Returns "application/pdf", a raster MIME type, or a *redact.FatalIOError
// wrapping redact.ErrUnsupportedFormat.
func Sniff(data []byte) (string, error) {
	if len(data) == 0 {
		return "", &redact.FatalIOError{Op: "read input", Err: fmt.Errorf("empty document: %w", redact.ErrUnsupportedFormat)}
	}
	mt := mimetype.Detect(data)
	if mt.Is("application/pdf") {
		return "application/pdf", nil
	}
	for t := range rasterTypes {
		if mt.Is(t) {
			return t, nil
		}
	}
	return "", &redact.FatalIOError{Op: "read input", Err: fmt.Errorf("%s: %w", mt.String(), redact.ErrUnsupportedFormat)}
}

// extract reads the document. With scan unset only what the compositors
// need is produced: frames, the decoded raster or text layer, and page
// backgrounds.
func (e *Engine) extract(ctx context.Context, in Input, scan bool) (*extraction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	mt, err := Sniff(in.Data)
	if err != nil {
		return nil, err
	}
	if mt == "application/pdf" {
		return e.extractPDF(ctx, in, scan)
	}
	return e.extractRaster(ctx, in, rasterTypes[mt], scan)
}

func (e *Engine) decode(data []byte) (image.Image, error) {
	if e.cache != nil {
		return e.cache.Decode(data)
	}
	return imaging.Decode(data)
}

func (e *Engine) extractRaster(ctx context.Context, in Input, format string, scan bool) (*extraction, error) {
	img, err := e.decode(in.Data)
	if err != nil {
		return nil, &redact.FatalIOError{Op: "decode image", Err: err}
	}
	x := &extraction{
		kind:         docRaster,
		frames:       []coords.Frame{frameOf(img)},
		raster:       img,
		rasterFormat: format,
	}
	if scan {
		if err := e.scanPage(ctx, x, img, 0, true); err != nil {
			return nil, err
		}
	}
	return x, nil
}

func (e *Engine) extractPDF(ctx context.Context, in Input, scan bool) (*extraction, error) {
	doc, err := pdfdoc.Read(in.Data)
	if err != nil {
		return nil, &redact.FatalIOError{Op: "read PDF", Err: err}
	}
	x := &extraction{
		kind:     docPDF,
		frames:   doc.Frames(),
		pdf:      doc,
		infoKeys: doc.InfoKeys(),
	}
	for _, perr := range doc.Errors {
		x.warnings = append(x.warnings, perr.Error())
	}
	if scan {
		x.tokens = doc.Tokens()
	}

	if e.rasterizer == nil {
		return x, nil
	}
	x.backgrounds = make(map[int]image.Image, len(doc.Pages))
	for _, p := range doc.Pages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		img, err := e.rasterizer.Rasterize(ctx, in.Data, p.Index)
		if err != nil {
			x.warnings = append(x.warnings, (&redact.ExtractionError{Source: "rasterizer", Page: p.Index, Err: err}).Error())
			continue
		}
		x.backgrounds[p.Index] = img
		if scan {
			if err := e.scanPage(ctx, x, img, p.Index, len(p.Words) == 0); err != nil {
				return nil, err
			}
		}
	}
	return x, nil
}

// scanPage adds raster tokens for one page: OCR words when ocr is set, and
// barcodes always. OCR failures degrade to text-like regions when the
// fallback is enabled. Only context errors are returned.
func (e *Engine) scanPage(ctx context.Context, x *extraction, img image.Image, page int, ocr bool) error {
	if ocr {
		var (
			toks []redact.Token
			err  error
		)
		if e.ocr != nil {
			toks, err = e.ocr.Tokens(ctx, img, page)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				x.warnings = append(x.warnings, err.Error())
				e.logger.Warn("OCR failed", "page", page, "err", err)
			}
		}
		if (e.ocr == nil || err != nil) && e.regionFallback {
			toks = detection.TextRegions(img, page, 0)
			if len(toks) > 0 {
				x.warnings = append(x.warnings, fmt.Sprintf("page %d: OCR unavailable, reported %d text-like region(s)", page, len(toks)))
			}
		}
		x.tokens = append(x.tokens, toks...)
	}

	if e.barcodes != nil {
		toks, err := e.barcodes.Tokens(ctx, img, page)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			x.warnings = append(x.warnings, err.Error())
		}
		x.tokens = append(x.tokens, toks...)
	}
	return nil
}
