// Package app wires configuration into a ready-to-use redaction service
// shared by the MCP server, the HTTP API and the CLI.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/ironsheep/redact-tools-mcp/internal/barcode"
	"github.com/ironsheep/redact-tools-mcp/internal/config"
	"github.com/ironsheep/redact-tools-mcp/internal/detect"
	"github.com/ironsheep/redact-tools-mcp/internal/history"
	"github.com/ironsheep/redact-tools-mcp/internal/imaging"
	"github.com/ironsheep/redact-tools-mcp/internal/logging"
	"github.com/ironsheep/redact-tools-mcp/internal/ocr"
	"github.com/ironsheep/redact-tools-mcp/internal/pdfdoc"
	"github.com/ironsheep/redact-tools-mcp/internal/pipeline"
	"github.com/ironsheep/redact-tools-mcp/internal/preset"
	"github.com/ironsheep/redact-tools-mcp/internal/redact"
	"github.com/ironsheep/redact-tools-mcp/internal/telemetry"
)

// Version information, set by the CLI from its build flags.
var (
	Version = "dev"
	Commit  = "none"
)

// App is the redaction service.
type App struct {
	Engine   *pipeline.Engine
	Presets  *preset.Store
	History  history.Sink
	Logger   *log.Logger
	Reporter *telemetry.Reporter

	Workers     int
	ImageFormat string
	OutputDir   string

	// Warnings collected while building, e.g. rejected presets.
	Warnings []string

	threshold float64
	patterns  []redact.CustomPattern
	ocr       *ocr.Engine
	raster    *pdfdoc.Poppler
	cache     *imaging.DecodeCache
	cfg       config.Config
}

// New builds the service from cfg. Close releases what it opened.
func New(ctx context.Context, cfg config.Config, logger *log.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Discard()
	}
	a := &App{
		Logger:      logger,
		Workers:     cfg.General.Workers,
		ImageFormat: cfg.General.ImageFormat,
		OutputDir:   cfg.General.OutputDir,
		threshold:   cfg.Detection.ConfidenceThreshold,
		cfg:         cfg,
	}

	store, errs := preset.NewStore(cfg.Presets, logger)
	a.Presets = store
	for _, err := range errs {
		a.Warnings = append(a.Warnings, err.Error())
	}
	patterns, errs := preset.ConvertPatterns(cfg.Detection.CustomPatterns)
	a.patterns = patterns
	for _, err := range errs {
		a.Warnings = append(a.Warnings, err.Error())
		logger.Warn("Ignoring custom pattern", "err", err)
	}

	sink, err := history.Open(ctx, cfg.History.Driver, cfg.History.DSN, logger.WithPrefix("history"))
	if err != nil {
		return nil, fmt.Errorf("failed to open history: %w", err)
	}
	a.History = sink
	if days := cfg.History.RetentionDays; days > 0 {
		if n, err := sink.Prune(ctx, time.Now().AddDate(0, 0, -days)); err != nil {
			logger.Warn("Failed to prune history", "err", err)
		} else if n > 0 {
			logger.Info("Pruned history", "entries", n)
		}
	}

	reporter, err := telemetry.New(telemetry.Options{
		DSN:         cfg.Sentry.DSN,
		Environment: cfg.Sentry.Environment,
		Release:     Version,
	})
	if err != nil {
		logger.Warn("Sentry disabled", "err", err)
	}
	a.Reporter = reporter

	opts := []pipeline.Option{
		pipeline.WithLogger(logger.WithPrefix("pipeline")),
		pipeline.WithHistory(sink),
		pipeline.WithRegionFallback(cfg.OCR.RegionFallback),
		pipeline.WithJPEGQuality(cfg.General.JPEGQuality),
	}
	if cfg.Cache.TTLSeconds > 0 {
		a.cache = imaging.NewDecodeCache(time.Duration(cfg.Cache.TTLSeconds)*time.Second, uint64(cfg.Cache.Capacity))
		go a.cache.Start()
		opts = append(opts, pipeline.WithDecodeCache(a.cache))
	}
	if cfg.OCR.Enabled {
		a.ocr = &ocr.Engine{
			Language:       cfg.OCR.Language,
			TessdataPrefix: cfg.OCR.TessdataPrefix,
			MinConfidence:  cfg.OCR.MinConfidence,
		}
		opts = append(opts, pipeline.WithOCR(a.ocr))
	}
	if cfg.Barcode.Enabled {
		opts = append(opts, pipeline.WithBarcodes(barcode.NewScanner(float64(cfg.Barcode.Padding))))
	}
	if cfg.Rasterize.Enabled {
		a.raster = &pdfdoc.Poppler{Path: cfg.Rasterize.Command, DPI: cfg.Rasterize.DPI}
		if a.raster.Available() {
			opts = append(opts, pipeline.WithRasterizer(a.raster))
		} else {
			a.Warnings = append(a.Warnings, fmt.Sprintf("rasterizer %q not found, PDF pages will be rebuilt from their text layer only and scanned pages will not be OCR'd", cfg.Rasterize.Command))
			logger.Warn("Rasterizer not found", "command", cfg.Rasterize.Command)
		}
	}
	if cfg.Detection.SecretScanner {
		scanner, err := detect.NewGitleaksScanner()
		if err != nil {
			a.Warnings = append(a.Warnings, err.Error())
			logger.Warn("Secret scanner disabled", "err", err)
		} else {
			opts = append(opts, pipeline.WithSecretScanner(scanner))
		}
	}

	a.Engine = pipeline.NewEngine(opts...)
	return a, nil
}

// Close flushes telemetry and closes the history sink.
func (a *App) Close() error {
	if a.cache != nil {
		a.cache.Stop()
	}
	a.Reporter.Flush(2 * time.Second)
	if a.History != nil {
		return a.History.Close()
	}
	return nil
}

// Config returns the configuration the service was built from.
func (a *App) Config() config.Config {
	return a.cfg
}

// Request is what every transport collects from a caller before analysis.
type Request struct {
	PresetID       string
	Threshold      *float64
	CustomPatterns []preset.PatternDef
}

// AnalyzeOptions resolves the preset and layers the configured patterns and
// threshold under the request's own. Request patterns with an unknown kind
// or a bad regex are dropped and reported as warnings on the result.
func (a *App) AnalyzeOptions(req Request) (pipeline.AnalyzeOptions, error) {
	p, err := a.Presets.Get(req.PresetID)
	if err != nil {
		return pipeline.AnalyzeOptions{}, err
	}
	patterns, errs := preset.ConvertPatterns(req.CustomPatterns)
	opts := pipeline.AnalyzeOptions{
		Preset:         p,
		CustomPatterns: append(append([]redact.CustomPattern(nil), a.patterns...), patterns...),
		Threshold:      req.Threshold,
	}
	for _, err := range errs {
		opts.Warnings = append(opts.Warnings, err.Error())
	}
	if opts.Threshold == nil && p.ConfidenceThreshold == nil {
		t := a.threshold
		opts.Threshold = &t
	}
	return opts, nil
}

// Format returns the requested raster format, or the configured one when
// none was requested.
func (a *App) Format(requested string) string {
	if requested == "" {
		return a.ImageFormat
	}
	return requested
}

// Batch runs RedactBatch with the configured worker count and failure
// reporting.
func (a *App) Batch(ctx context.Context, inputs []pipeline.Input, opts pipeline.AnalyzeOptions, format string) []pipeline.BatchResult {
	return a.Engine.RedactBatch(ctx, inputs, pipeline.BatchOptions{
		Analyze:   opts,
		Format:    a.Format(format),
		Workers:   a.Workers,
		OnFailure: a.Reporter.Report,
	})
}

// Info describes the running service.
type Info struct {
	Version        string    `json:"version"`
	Commit         string    `json:"commit"`
	OCR            *ocr.Info `json:"ocr,omitempty"`
	Barcodes       bool      `json:"barcodes"`
	Rasterizer     bool      `json:"rasterizer"`
	SecretScanner  bool      `json:"secret_scanner"`
	HistoryDriver  string    `json:"history_driver"`
	Workers        int       `json:"workers"`
	Kinds          []string  `json:"kinds"`
	Styles         []string  `json:"styles"`
	CustomPatterns int       `json:"custom_patterns"`
	Warnings       []string  `json:"warnings,omitempty"`
}

// Describe reports versions and which collaborators are active.
func (a *App) Describe() Info {
	info := Info{
		Version:        Version,
		Commit:         Commit,
		Barcodes:       a.cfg.Barcode.Enabled,
		Rasterizer:     a.CanRasterize(),
		SecretScanner:  a.cfg.Detection.SecretScanner,
		HistoryDriver:  a.cfg.History.Driver,
		Workers:        a.Workers,
		CustomPatterns: len(a.patterns),
		Warnings:       a.Warnings,
	}
	if a.ocr != nil {
		oi := a.ocr.Info()
		info.OCR = &oi
	}
	for _, k := range redact.AllKinds() {
		info.Kinds = append(info.Kinds, k.String())
	}
	for _, s := range redact.AllStyles() {
		info.Styles = append(info.Styles, s.String())
	}
	return info
}
