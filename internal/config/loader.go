package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/ironsheep/redact-tools-mcp/internal/history"
)

// ProjectFile is the project-level config file name.
const ProjectFile = ".redact-mcp.toml"

// LoadOptions controls configuration loading.
type LoadOptions struct {
	// ProjectDir locates .redact-mcp.toml and .env. Defaults to the working directory.
	ProjectDir string

	// ConfigPath replaces the project file when set.
	ConfigPath string

	// FlagOverrides are dot-notated keys set from CLI flags.
	FlagOverrides map[string]any

	// SkipDotEnv disables loading .env.
	SkipDotEnv bool
}

// Load returns the effective, validated configuration.
func Load(opts LoadOptions) (Config, error) {
	projectDir := opts.ProjectDir
	if projectDir == "" {
		if cwd, err := os.Getwd(); err == nil {
			projectDir = cwd
		}
	}

	if !opts.SkipDotEnv {
		// godotenv never overrides variables that are already set.
		if err := godotenv.Load(filepath.Join(projectDir, ".env")); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("failed to load .env: %w", err)
		}
	}

	v := viper.New()
	setDefaults(v)

	if err := mergeConfigFile(v, userConfigPath()); err != nil {
		return Config{}, err
	}
	if err := mergeConfigFile(v, projectConfigPath(projectDir, opts.ConfigPath)); err != nil {
		return Config{}, err
	}
	if err := applyEnvOverrides(v); err != nil {
		return Config{}, err
	}
	for k, val := range opts.FlagOverrides {
		v.Set(k, val)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if cfg.History.Driver == history.DriverSQLite && cfg.History.DSN == "" {
		cfg.History.DSN = filepath.Join(userDir(), "history.db")
	}
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	def := DefaultConfig()

	v.SetDefault("general.log_level", def.General.LogLevel)
	v.SetDefault("general.workers", def.General.Workers)
	v.SetDefault("general.output_dir", def.General.OutputDir)
	v.SetDefault("general.image_format", def.General.ImageFormat)
	v.SetDefault("general.jpeg_quality", def.General.JPEGQuality)

	v.SetDefault("ocr.enabled", def.OCR.Enabled)
	v.SetDefault("ocr.language", def.OCR.Language)
	v.SetDefault("ocr.tessdata_prefix", def.OCR.TessdataPrefix)
	v.SetDefault("ocr.min_confidence", def.OCR.MinConfidence)
	v.SetDefault("ocr.region_fallback", def.OCR.RegionFallback)

	v.SetDefault("barcode.enabled", def.Barcode.Enabled)
	v.SetDefault("barcode.padding", def.Barcode.Padding)

	v.SetDefault("detection.confidence_threshold", def.Detection.ConfidenceThreshold)
	v.SetDefault("detection.secret_scanner", def.Detection.SecretScanner)

	v.SetDefault("rasterize.enabled", def.Rasterize.Enabled)
	v.SetDefault("rasterize.command", def.Rasterize.Command)
	v.SetDefault("rasterize.dpi", def.Rasterize.DPI)

	v.SetDefault("history.driver", def.History.Driver)
	v.SetDefault("history.dsn", def.History.DSN)
	v.SetDefault("history.retention_days", def.History.RetentionDays)

	v.SetDefault("http.addr", def.HTTP.Addr)
	v.SetDefault("http.max_body_mb", def.HTTP.MaxBodyMB)

	v.SetDefault("cache.ttl_seconds", def.Cache.TTLSeconds)
	v.SetDefault("cache.capacity", def.Cache.Capacity)

	v.SetDefault("sentry.dsn", def.Sentry.DSN)
	v.SetDefault("sentry.environment", def.Sentry.Environment)
}

// mergeConfigFile merges the TOML file at path if it exists.
func mergeConfigFile(v *viper.Viper, path string) error {
	if path == "" {
		return nil
	}
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to stat config %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("config path %s is a directory", path)
	}
	v.SetConfigFile(path)
	v.SetConfigType("toml")
	if err := v.MergeInConfig(); err != nil {
		return fmt.Errorf("failed to merge config %s: %w", path, err)
	}
	return nil
}

func userDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".redact-mcp"
	}
	return filepath.Join(home, ".redact-mcp")
}

func userConfigPath() string {
	return filepath.Join(userDir(), "config.toml")
}

func projectConfigPath(projectDir, override string) string {
	if override != "" {
		return override
	}
	return filepath.Join(projectDir, ProjectFile)
}

// Paths returns the user and project config file paths.
func Paths(projectDir, override string) (user, project string) {
	return userConfigPath(), projectConfigPath(projectDir, override)
}

// WriteDefault writes the default configuration to path as TOML. An
// existing file is only replaced when force is set.
func WriteDefault(path string, force bool) error {
	if path == "" {
		return fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("config %s already exists", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Dir(path), err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("failed to create config %s: %w", path, err)
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	enc.Indent = "  "
	if err := enc.Encode(DefaultConfig()); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

type valueKind int

const (
	kindString valueKind = iota
	kindBool
	kindInt
	kindFloat
)

var envBindings = []struct {
	Env  string
	Key  string
	Kind valueKind
}{
	{"REDACT_LOG_LEVEL", "general.log_level", kindString},
	{"REDACT_WORKERS", "general.workers", kindInt},
	{"REDACT_OUTPUT_DIR", "general.output_dir", kindString},
	{"REDACT_IMAGE_FORMAT", "general.image_format", kindString},

	{"REDACT_OCR_ENABLED", "ocr.enabled", kindBool},
	{"REDACT_OCR_LANGUAGE", "ocr.language", kindString},
	{"REDACT_TESSDATA_PREFIX", "ocr.tessdata_prefix", kindString},

	{"REDACT_BARCODE_ENABLED", "barcode.enabled", kindBool},

	{"REDACT_CONFIDENCE_THRESHOLD", "detection.confidence_threshold", kindFloat},
	{"REDACT_SECRET_SCANNER", "detection.secret_scanner", kindBool},

	{"REDACT_RASTERIZE_ENABLED", "rasterize.enabled", kindBool},
	{"REDACT_RASTERIZE_COMMAND", "rasterize.command", kindString},

	{"REDACT_HISTORY_DRIVER", "history.driver", kindString},
	{"REDACT_HISTORY_DSN", "history.dsn", kindString},

	{"REDACT_HTTP_ADDR", "http.addr", kindString},

	{"REDACT_SENTRY_DSN", "sentry.dsn", kindString},
	{"REDACT_SENTRY_ENVIRONMENT", "sentry.environment", kindString},
}

// applyEnvOverrides reads REDACT_* variables.
func applyEnvOverrides(v *viper.Viper) error {
	for _, b := range envBindings {
		raw := os.Getenv(b.Env)
		if raw == "" {
			continue
		}
		val, err := parseValueByKind(raw, b.Kind)
		if err != nil {
			return fmt.Errorf("env %s: %w", b.Env, err)
		}
		v.Set(b.Key, val)
	}
	return nil
}

func parseValueByKind(raw string, kind valueKind) (any, error) {
	raw = strings.TrimSpace(raw)
	switch kind {
	case kindBool:
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("expected boolean: %w", err)
		}
		return v, nil
	case kindInt:
		v, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("expected integer: %w", err)
		}
		return v, nil
	case kindFloat:
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("expected number: %w", err)
		}
		return v, nil
	default:
		return raw, nil
	}
}
