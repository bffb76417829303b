package app

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ironsheep/redact-tools-mcp/internal/pipeline"
	"github.com/ironsheep/redact-tools-mcp/internal/redact"
)

// ReadInput loads a document from disk. The input name is the path itself.
func ReadInput(path string) (pipeline.Input, error) {
	if path == "" {
		return pipeline.Input{}, fmt.Errorf("path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return pipeline.Input{}, &redact.FatalIOError{Op: "read " + path, Err: err}
	}
	return pipeline.Input{Name: path, Data: data}, nil
}

// DecodeInput builds an input from base64 bytes sent by a client.
func DecodeInput(name, data string) (pipeline.Input, error) {
	if data == "" {
		return pipeline.Input{}, fmt.Errorf("data is required")
	}
	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return pipeline.Input{}, fmt.Errorf("invalid base64 data: %w", err)
	}
	if name == "" {
		name = "document"
	}
	return pipeline.Input{Name: name, Data: raw}, nil
}

// OutputPath picks where the result for source is written: explicit wins,
// then the configured output directory, then the source's own directory.
func (a *App) OutputPath(source, explicit string, res *redact.ApplyResult) string {
	if explicit != "" {
		return explicit
	}
	dir := a.OutputDir
	if dir == "" {
		dir = filepath.Dir(source)
	}
	return filepath.Join(dir, res.Filename)
}

// WriteOutput writes res to path, creating parent directories. It refuses
// to overwrite the source document.
func WriteOutput(source, path string, res *redact.ApplyResult) error {
	if source != "" {
		if same, _ := samePath(source, path); same {
			return &redact.FatalIOError{Op: "write " + path, Err: fmt.Errorf("output would overwrite the input")}
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return &redact.FatalIOError{Op: "write " + path, Err: err}
	}
	if err := os.WriteFile(path, res.Bytes, 0o600); err != nil {
		return &redact.FatalIOError{Op: "write " + path, Err: err}
	}
	return nil
}

func samePath(a, b string) (bool, error) {
	aa, err := filepath.Abs(a)
	if err != nil {
		return false, err
	}
	bb, err := filepath.Abs(b)
	if err != nil {
		return false, err
	}
	return aa == bb, nil
}
