// Package logging builds the structured loggers used across the server.
//
// Output always goes to stderr by default: stdout carries the MCP protocol
// when running as a stdio server and must never receive log lines.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// EnvLevel overrides the configured level when set.
const EnvLevel = "REDACT_LOG_LEVEL"

// Options configures a logger.
type Options struct {
	// Level is the minimum level: debug, info, warn or error.
	Level string

	// Output defaults to os.Stderr.
	Output io.Writer

	// Prefix names the component, e.g. "mcp" or "http".
	Prefix string

	ReportTimestamp bool
	ReportCaller    bool
}

// DefaultOptions returns info-level, timestamped stderr logging.
func DefaultOptions() Options {
	return Options{Level: "info", Output: os.Stderr, ReportTimestamp: true}
}

func parseLevel(level string) log.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return log.DebugLevel
	case "warn", "warning":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}

// ValidLevel reports whether level is one parseLevel understands.
func ValidLevel(level string) bool {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug", "info", "warn", "warning", "error":
		return true
	}
	return false
}

// New creates a logger. REDACT_LOG_LEVEL, when set, wins over opts.Level.
func New(opts Options) *log.Logger {
	if env := os.Getenv(EnvLevel); env != "" {
		opts.Level = env
	}
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	return log.NewWithOptions(out, log.Options{
		Level:           parseLevel(opts.Level),
		Prefix:          opts.Prefix,
		TimeFormat:      time.RFC3339,
		ReportTimestamp: opts.ReportTimestamp,
		ReportCaller:    opts.ReportCaller,
	})
}

// Discard returns a logger that drops everything.
func Discard() *log.Logger {
	return log.New(io.Discard)
}
