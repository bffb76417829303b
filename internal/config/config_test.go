package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points HOME at an empty directory and clears REDACT_* variables.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	for _, b := range envBindings {
		t.Setenv(b.Env, "")
	}
	return home
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)
	cfg, err := Load(LoadOptions{ProjectDir: t.TempDir()})
	require.NoError(t, err)

	def := DefaultConfig()
	assert.Equal(t, def.General, cfg.General)
	assert.Equal(t, def.OCR, cfg.OCR)
	assert.Equal(t, def.History, cfg.History)
	assert.Equal(t, 3, cfg.General.Workers)
	assert.Empty(t, cfg.Presets)
}

func TestLoadPrecedence(t *testing.T) {
	home := isolate(t)
	project := t.TempDir()

	require.NoError(t, os.MkdirAll(filepath.Join(home, ".redact-mcp"), 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(home, ".redact-mcp", "config.toml"), []byte(`
[general]
workers = 5
log_level = "debug"

[http]
addr = "0.0.0.0:9000"
`), 0o600))

	require.NoError(t, os.WriteFile(filepath.Join(project, ProjectFile), []byte(`
[general]
workers = 4

[detection]
confidence_threshold = 0.7

[[detection.custom_patterns]]
id = "emp"
pattern = 'EMP-\d{6}'
kind = "OTHER"
confidence = 0.9

[[presets]]
id = "hr"
name = "HR files"
enabled_kinds = ["NAME", "SSN"]
confidence_threshold = 0.4

[presets.style_map]
NAME = "LABEL"
`), 0o600))

	t.Setenv("REDACT_HTTP_ADDR", "127.0.0.1:7000")

	cfg, err := Load(LoadOptions{
		ProjectDir:    project,
		FlagOverrides: map[string]any{"general.log_level": "warn"},
	})
	require.NoError(t, err)

	assert.Equal(t, 4, cfg.General.Workers, "project beats user")
	assert.Equal(t, "warn", cfg.General.LogLevel, "flags beat files")
	assert.Equal(t, "127.0.0.1:7000", cfg.HTTP.Addr, "env beats files")
	assert.InDelta(t, 0.7, cfg.Detection.ConfidenceThreshold, 1e-9)

	require.Len(t, cfg.Detection.CustomPatterns, 1)
	assert.Equal(t, `EMP-\d{6}`, cfg.Detection.CustomPatterns[0].Pattern)

	require.Len(t, cfg.Presets, 1)
	p := cfg.Presets[0]
	assert.Equal(t, "hr", p.ID)
	assert.Equal(t, []string{"NAME", "SSN"}, p.EnabledKinds)
	require.NotNil(t, p.ConfidenceThreshold)
	assert.InDelta(t, 0.4, *p.ConfidenceThreshold, 1e-9)
	require.Len(t, p.StyleMap, 1)
	for _, style := range p.StyleMap {
		assert.Equal(t, "LABEL", style)
	}
}

func TestLoadDotEnv(t *testing.T) {
	isolate(t)
	project := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(project, ".env"), []byte("REDACT_WORKERS=7\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("REDACT_WORKERS") })
	os.Unsetenv("REDACT_WORKERS")

	cfg, err := Load(LoadOptions{ProjectDir: project})
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.General.Workers)
}

func TestLoadRejectsInvalid(t *testing.T) {
	isolate(t)
	t.Setenv("REDACT_WORKERS", "0")
	_, err := Load(LoadOptions{ProjectDir: t.TempDir()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "general.workers")

	t.Setenv("REDACT_WORKERS", "lots")
	_, err = Load(LoadOptions{ProjectDir: t.TempDir()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "REDACT_WORKERS")
}

func TestSQLiteDefaultPath(t *testing.T) {
	home := isolate(t)
	t.Setenv("REDACT_HISTORY_DRIVER", "sqlite")
	cfg, err := Load(LoadOptions{ProjectDir: t.TempDir()})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".redact-mcp", "history.db"), cfg.History.DSN)
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, Validate(cfg))

	cfg.Detection.ConfidenceThreshold = 1.2
	cfg.History.Driver = "mongo"
	cfg.General.ImageFormat = "webp"
	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "detection.confidence_threshold")
	assert.Contains(t, err.Error(), "history.driver")
	assert.Contains(t, err.Error(), "general.image_format")

	cfg = DefaultConfig()
	cfg.History.Driver = "postgres"
	assert.ErrorContains(t, Validate(cfg), "history.dsn")
}

func TestWriteDefaultRoundTrip(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	require.NoError(t, WriteDefault(path, false))
	assert.Error(t, WriteDefault(path, false))
	require.NoError(t, WriteDefault(path, true))

	cfg, err := Load(LoadOptions{ProjectDir: t.TempDir(), ConfigPath: path})
	require.NoError(t, err)
	def := DefaultConfig()
	assert.Equal(t, def.General, cfg.General)
	assert.Equal(t, def.Rasterize, cfg.Rasterize)
	assert.Equal(t, def.Cache, cfg.Cache)
}
