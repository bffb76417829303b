// Package history records a summary of every redaction run.
//
// Entries hold the report and file names only. Detection previews and
// document bytes are never stored, so the history itself holds no PII.
package history

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/ironsheep/redact-tools-mcp/internal/redact"
)

// Entry is one recorded redaction run.
type Entry struct {
	ID           string        `json:"id"`
	CreatedAt    time.Time     `json:"created_at"`
	DocumentName string        `json:"document_name"`
	OutputName   string        `json:"output_name"`
	MimeType     string        `json:"mime_type"`
	SessionID    string        `json:"session_id,omitempty"`
	PresetID     string        `json:"preset_id,omitempty"`
	Report       redact.Report `json:"report"`
}

// Sink stores entries.
type Sink interface {
	// Record appends an entry.
	Record(ctx context.Context, e Entry) error

	// List returns up to limit entries, newest first. limit <= 0 means all.
	List(ctx context.Context, limit int) ([]Entry, error)

	// Prune removes entries created before cutoff and returns how many went.
	Prune(ctx context.Context, cutoff time.Time) (int64, error)

	Close() error
}

// Drivers accepted by Open.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Open returns the sink for driver. An empty driver selects memory.
func Open(ctx context.Context, driver, dsn string, logger *log.Logger) (Sink, error) {
	switch strings.ToLower(driver) {
	case "", DriverMemory:
		return NewMemory(0), nil
	case DriverSQLite:
		return OpenSQLite(ctx, dsn, logger)
	case DriverPostgres:
		return OpenPostgres(ctx, dsn, logger)
	default:
		return nil, fmt.Errorf("unknown history driver %q", driver)
	}
}
