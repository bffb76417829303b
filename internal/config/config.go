// Package config loads the server configuration.
//
// Precedence, lowest first: built-in defaults, the user file
// (~/.redact-mcp/config.toml), the project file (./.redact-mcp.toml or the
// --config path), REDACT_* environment variables, CLI flag overrides. A .env
// file in the working directory is loaded into the environment first.
package config

import (
	"fmt"
	"strings"

	"github.com/ironsheep/redact-tools-mcp/internal/history"
	"github.com/ironsheep/redact-tools-mcp/internal/logging"
	"github.com/ironsheep/redact-tools-mcp/internal/preset"
)

// Config is the effective configuration.
type Config struct {
	General   GeneralConfig       `toml:"general" mapstructure:"general"`
	OCR       OCRConfig           `toml:"ocr" mapstructure:"ocr"`
	Barcode   BarcodeConfig       `toml:"barcode" mapstructure:"barcode"`
	Detection DetectionConfig     `toml:"detection" mapstructure:"detection"`
	Rasterize RasterizeConfig     `toml:"rasterize" mapstructure:"rasterize"`
	History   HistoryConfig       `toml:"history" mapstructure:"history"`
	HTTP      HTTPConfig          `toml:"http" mapstructure:"http"`
	Cache     CacheConfig         `toml:"cache" mapstructure:"cache"`
	Sentry    SentryConfig        `toml:"sentry" mapstructure:"sentry"`
	Presets   []preset.Definition `toml:"presets" mapstructure:"presets"`
}

type GeneralConfig struct {
	LogLevel string `toml:"log_level" mapstructure:"log_level"`

	// Workers bounds the documents processed at once in a batch.
	Workers int `toml:"workers" mapstructure:"workers"`

	// OutputDir is where the CLI writes redacted files. Empty means next to the input.
	OutputDir string `toml:"output_dir" mapstructure:"output_dir"`

	// ImageFormat is the raster output format: "", "png" or "jpeg".
	ImageFormat string `toml:"image_format" mapstructure:"image_format"`
	JPEGQuality int    `toml:"jpeg_quality" mapstructure:"jpeg_quality"`
}

type OCRConfig struct {
	Enabled        bool    `toml:"enabled" mapstructure:"enabled"`
	Language       string  `toml:"language" mapstructure:"language"`
	TessdataPrefix string  `toml:"tessdata_prefix" mapstructure:"tessdata_prefix"`
	MinConfidence  float64 `toml:"min_confidence" mapstructure:"min_confidence"`

	// RegionFallback reports text-like regions when OCR is off or fails.
	RegionFallback bool `toml:"region_fallback" mapstructure:"region_fallback"`
}

type BarcodeConfig struct {
	Enabled bool `toml:"enabled" mapstructure:"enabled"`
	Padding int  `toml:"padding" mapstructure:"padding"`
}

type DetectionConfig struct {
	// ConfidenceThreshold applies when neither the request nor the preset sets one.
	ConfidenceThreshold float64             `toml:"confidence_threshold" mapstructure:"confidence_threshold"`
	SecretScanner       bool                `toml:"secret_scanner" mapstructure:"secret_scanner"`
	CustomPatterns      []preset.PatternDef `toml:"custom_patterns" mapstructure:"custom_patterns"`
}

type RasterizeConfig struct {
	Enabled bool   `toml:"enabled" mapstructure:"enabled"`
	Command string `toml:"command" mapstructure:"command"`
	DPI     int    `toml:"dpi" mapstructure:"dpi"`
}

type HistoryConfig struct {
	Driver        string `toml:"driver" mapstructure:"driver"`
	DSN           string `toml:"dsn" mapstructure:"dsn"`
	RetentionDays int    `toml:"retention_days" mapstructure:"retention_days"`
}

type HTTPConfig struct {
	Addr string `toml:"addr" mapstructure:"addr"`

	// MaxBodyMB caps request bodies.
	MaxBodyMB int `toml:"max_body_mb" mapstructure:"max_body_mb"`
}

type CacheConfig struct {
	TTLSeconds int `toml:"ttl_seconds" mapstructure:"ttl_seconds"`
	Capacity   int `toml:"capacity" mapstructure:"capacity"`
}

type SentryConfig struct {
	DSN         string `toml:"dsn" mapstructure:"dsn"`
	Environment string `toml:"environment" mapstructure:"environment"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	return Config{
		General: GeneralConfig{
			LogLevel:    "info",
			Workers:     3,
			JPEGQuality: 90,
		},
		OCR: OCRConfig{
			Enabled:        true,
			Language:       "eng",
			RegionFallback: true,
		},
		Barcode: BarcodeConfig{
			Enabled: true,
			Padding: 8,
		},
		Detection: DetectionConfig{
			ConfidenceThreshold: 0.5,
		},
		Rasterize: RasterizeConfig{
			Enabled: true,
			Command: "pdftoppm",
			DPI:     150,
		},
		History: HistoryConfig{
			Driver:        history.DriverMemory,
			RetentionDays: 30,
		},
		HTTP: HTTPConfig{
			Addr:      "127.0.0.1:8088",
			MaxBodyMB: 32,
		},
		Cache: CacheConfig{
			TTLSeconds: 600,
			Capacity:   64,
		},
	}
}

// Validate checks the configuration for semantic errors.
func Validate(cfg Config) error {
	var errs []string

	if !logging.ValidLevel(cfg.General.LogLevel) {
		errs = append(errs, "general.log_level must be one of debug|info|warn|error")
	}
	if cfg.General.Workers < 1 {
		errs = append(errs, "general.workers must be >= 1")
	}
	if !oneOf(strings.ToLower(cfg.General.ImageFormat), "", "png", "jpeg", "jpg") {
		errs = append(errs, "general.image_format must be one of png|jpeg")
	}
	if cfg.General.JPEGQuality < 1 || cfg.General.JPEGQuality > 100 {
		errs = append(errs, "general.jpeg_quality must be in [1,100]")
	}
	if cfg.OCR.MinConfidence < 0 || cfg.OCR.MinConfidence > 1 {
		errs = append(errs, "ocr.min_confidence must be in [0,1]")
	}
	if cfg.Barcode.Padding < 0 {
		errs = append(errs, "barcode.padding cannot be negative")
	}
	if cfg.Detection.ConfidenceThreshold < 0 || cfg.Detection.ConfidenceThreshold > 1 {
		errs = append(errs, "detection.confidence_threshold must be in [0,1]")
	}
	if cfg.Rasterize.DPI < 36 || cfg.Rasterize.DPI > 600 {
		errs = append(errs, "rasterize.dpi must be in [36,600]")
	}
	if !oneOf(cfg.History.Driver, history.DriverMemory, history.DriverSQLite, history.DriverPostgres) {
		errs = append(errs, "history.driver must be one of memory|sqlite|postgres")
	}
	if cfg.History.Driver == history.DriverPostgres && cfg.History.DSN == "" {
		errs = append(errs, "history.dsn is required for postgres")
	}
	if cfg.History.RetentionDays < 0 {
		errs = append(errs, "history.retention_days cannot be negative")
	}
	if cfg.HTTP.MaxBodyMB < 1 {
		errs = append(errs, "http.max_body_mb must be >= 1")
	}
	if cfg.Cache.TTLSeconds < 0 || cfg.Cache.Capacity < 0 {
		errs = append(errs, "cache.ttl_seconds and cache.capacity cannot be negative")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func oneOf(val string, options ...string) bool {
	for _, opt := range options {
		if val == opt {
			return true
		}
	}
	return false
}
