package pipeline

import (
	"context"
	"image"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/ironsheep/redact-tools-mcp/internal/compose"
	"github.com/ironsheep/redact-tools-mcp/internal/detect"
	"github.com/ironsheep/redact-tools-mcp/internal/history"
	"github.com/ironsheep/redact-tools-mcp/internal/imaging"
	"github.com/ironsheep/redact-tools-mcp/internal/redact"
)

// Recognizer turns a page raster into tokens. Both the OCR engine and the
// barcode scanner satisfy it.
type Recognizer interface {
	Tokens(ctx context.Context, img image.Image, page int) ([]redact.Token, error)
}

// PageRasterizer renders one page of a PDF. page is zero-based.
type PageRasterizer interface {
	Rasterize(ctx context.Context, pdf []byte, page int) (image.Image, error)
}

// Input is one document.
type Input struct {
	Name string
	Data []byte
}

// AnalyzeOptions controls classification and filtering.
type AnalyzeOptions struct {
	// Preset filters kinds and supplies a threshold and custom patterns. May be nil.
	Preset *redact.Preset

	// CustomPatterns run after the preset's own patterns.
	CustomPatterns []redact.CustomPattern

	// Threshold overrides the preset threshold when set.
	Threshold *float64

	// Warnings found while building the options, such as rejected request
	// patterns. They are copied onto every result.
	Warnings []string
}

// ApplyOptions carries everything a redaction needs. Detections must be the
// list returned by the analysis the actions were chosen from.
type ApplyOptions struct {
	Detections []redact.Detection
	Actions    []redact.Action
	Preset     *redact.Preset

	// Format selects the raster output format ("png" or "jpeg"). Empty keeps
	// JPEG inputs as JPEG and writes everything else as PNG.
	Format string

	// SessionID is copied into the history entry.
	SessionID string
}

// Engine runs the pipeline. It holds no per-document state and is safe for
// concurrent use.
type Engine struct {
	ocr            Recognizer
	barcodes       Recognizer
	rasterizer     PageRasterizer
	secrets        detect.SecretScanner
	cache          *imaging.DecodeCache
	history        history.Sink
	logger         *log.Logger
	regionFallback bool
	jpegQuality    int
	now            func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithOCR sets the OCR engine for rasters.
func WithOCR(r Recognizer) Option { return func(e *Engine) { e.ocr = r } }

// WithBarcodes sets the barcode scanner for rasters.
func WithBarcodes(r Recognizer) Option { return func(e *Engine) { e.barcodes = r } }

// WithRasterizer enables scanned-PDF handling.
func WithRasterizer(r PageRasterizer) Option { return func(e *Engine) { e.rasterizer = r } }

// WithSecretScanner adds a secondary API key scanner.
func WithSecretScanner(s detect.SecretScanner) Option { return func(e *Engine) { e.secrets = s } }

// WithDecodeCache shares decoded rasters between analysis and redaction.
func WithDecodeCache(c *imaging.DecodeCache) Option { return func(e *Engine) { e.cache = c } }

// WithHistory records a report after every redaction.
func WithHistory(s history.Sink) Option { return func(e *Engine) { e.history = s } }

// WithLogger sets the logger. Nil discards.
func WithLogger(l *log.Logger) Option { return func(e *Engine) { e.logger = l } }

// WithRegionFallback toggles text-region detections for rasters without OCR.
func WithRegionFallback(on bool) Option { return func(e *Engine) { e.regionFallback = on } }

// WithJPEGQuality sets the quality of JPEG output.
func WithJPEGQuality(q int) Option { return func(e *Engine) { e.jpegQuality = q } }

// WithClock replaces time.Now for history timestamps.
func WithClock(now func() time.Time) Option { return func(e *Engine) { e.now = now } }

// NewEngine returns an engine with the given collaborators. Every
// collaborator is optional.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{regionFallback: true, jpegQuality: 90, now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = log.New(io.Discard)
	}
	return e
}

// AnalyzeDocument extracts, classifies and filters the sensitive tokens of
// one document.
//
// Returns:
//   - *redact.AnalyzeResult: Detections in reading order with ids unique to
//     this call, the page count and sizes, and any page-level warnings.
//   - error: A *redact.FatalIOError when the document cannot be read at all,
//     or the context error.
func (e *Engine) AnalyzeDocument(ctx context.Context, in Input, opts AnalyzeOptions) (*redact.AnalyzeResult, error) {
	x, err := e.extract(ctx, in, true)
	if err != nil {
		return nil, err
	}

	var patterns []redact.CustomPattern
	if opts.Preset != nil {
		patterns = append(patterns, opts.Preset.CustomPatterns...)
	}
	patterns = append(patterns, opts.CustomPatterns...)

	custom := detect.NewPatternEngine(patterns, e.logger)
	regOpts := []detect.Option{detect.WithCustomPatterns(custom)}
	if e.secrets != nil {
		regOpts = append(regOpts, detect.WithSecretScanner(e.secrets))
	}
	reg := detect.NewRegistry(regOpts...)

	session := uuid.NewString()
	detections, warnings := Assemble(x.tokens, reg, AssembleOptions{
		Preset:    opts.Preset,
		Threshold: opts.Threshold,
		Session:   session,
	})

	warnings = append(warnings, opts.Warnings...)
	for _, w := range custom.Warnings() {
		warnings = append(warnings, w.Error())
	}

	sizes := make([]redact.PageSize, len(x.frames))
	for i, f := range x.frames {
		sizes[i] = redact.PageSize{Width: f.Width, Height: f.Height}
	}

	e.logger.Debug("Analyzed document", "name", in.Name, "pages", len(x.frames), "tokens", len(x.tokens), "detections", len(detections))

	return &redact.AnalyzeResult{
		SessionID:  session,
		Detections: detections,
		Pages:      len(x.frames),
		PageSizes:  sizes,
		Warnings:   append(x.warnings, warnings...),
	}, nil
}

// ApplyRedactions burns the actions into a fresh copy of the document.
//
// Actions referring to unknown detections or pages outside the document are
// skipped and counted in the report; they never fail the call. The result
// always holds a whole new document, never a patch of the input.
func (e *Engine) ApplyRedactions(ctx context.Context, in Input, opts ApplyOptions) (*redact.ApplyResult, error) {
	x, err := e.extract(ctx, in, false)
	if err != nil {
		return nil, err
	}

	res := compose.Resolve(opts.Actions, opts.Detections, x.frames, opts.Preset, e.logger)

	var (
		out      []byte
		mime     string
		ext      string
		warnings []string
		textOnly []int
	)
	switch x.kind {
	case docPDF:
		out, textOnly, warnings, err = e.composePDF(ctx, x, res)
		mime, ext = "application/pdf", "pdf"
	default:
		format := imaging.OutputFormat(x.rasterFormat, normalizeFormat(opts.Format))
		out, warnings, err = e.composeRaster(x, res, format)
		mime, ext = "image/"+format, format
		if format == imaging.FormatJPEG {
			ext = "jpg"
		}
	}
	if err != nil {
		return nil, &redact.FatalIOError{Op: "write " + ext + " output", Err: err}
	}

	report := BuildReport(opts.Detections, res, len(x.frames), x.infoKeys)
	report.TextOnlyPages = textOnly
	result, err := Package(out, OutputName(in.Name, ext), mime, report)
	if err != nil {
		return nil, err
	}
	for _, skipped := range res.Skipped {
		result.Warnings = append(result.Warnings, skipped.Error())
	}
	result.Warnings = append(result.Warnings, x.warnings...)
	result.Warnings = append(result.Warnings, warnings...)

	e.record(ctx, in, result, opts)
	return result, nil
}

// Redact analyzes a document and applies the preset style to every detection.
func (e *Engine) Redact(ctx context.Context, in Input, opts AnalyzeOptions, format string) (*redact.AnalyzeResult, *redact.ApplyResult, error) {
	analysis, err := e.AnalyzeDocument(ctx, in, opts)
	if err != nil {
		return nil, nil, err
	}
	out, err := e.ApplyRedactions(ctx, in, ApplyOptions{
		Detections: analysis.Detections,
		Actions:    compose.AutoActions(analysis.Detections, opts.Preset),
		Preset:     opts.Preset,
		Format:     format,
		SessionID:  analysis.SessionID,
	})
	if err != nil {
		return analysis, nil, err
	}
	return analysis, out, nil
}

func (e *Engine) record(ctx context.Context, in Input, res *redact.ApplyResult, opts ApplyOptions) {
	if e.history == nil {
		return
	}
	entry := history.Entry{
		ID:           uuid.NewString(),
		CreatedAt:    e.now(),
		DocumentName: in.Name,
		OutputName:   res.Filename,
		MimeType:     res.MimeType,
		SessionID:    opts.SessionID,
		Report:       res.Report,
	}
	if opts.Preset != nil {
		entry.PresetID = opts.Preset.ID
	}
	if err := e.history.Record(ctx, entry); err != nil {
		e.logger.Warn("Failed to record history entry", "name", in.Name, "err", err)
	}
}

func normalizeFormat(f string) string {
	switch strings.ToLower(strings.TrimSpace(f)) {
	case "jpg", "jpeg":
		return imaging.FormatJPEG
	case "png":
		return imaging.FormatPNG
	}
	return ""
}
