package history

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	json "github.com/goccy/go-json"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// timeLayout is fixed-width so that text ordering matches time ordering.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// DefaultSQLitePath is used when the sqlite DSN is empty.
const DefaultSQLitePath = "redact-history.db"

// SQLStore keeps entries in a SQL database.
type SQLStore struct {
	db       *sql.DB
	postgres bool
	logger   *log.Logger
}

// OpenSQLite opens (creating if needed) a sqlite database file.
func OpenSQLite(ctx context.Context, path string, logger *log.Logger) (*SQLStore, error) {
	if path == "" {
		path = DefaultSQLitePath
	}
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create history directory: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	// sqlite works best with a single writer connection
	db.SetMaxOpenConns(1)

	return newSQLStore(ctx, db, false, logger)
}

// OpenPostgres connects to a postgres database.
func OpenPostgres(ctx context.Context, dsn string, logger *log.Logger) (*SQLStore, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres history requires a dsn")
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	return newSQLStore(ctx, db, true, logger)
}

func newSQLStore(ctx context.Context, db *sql.DB, postgres bool, logger *log.Logger) (*SQLStore, error) {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	s := &SQLStore{db: db, postgres: postgres, logger: logger}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping history database: %w", err)
	}
	if err := s.createTables(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return s, nil
}

func (s *SQLStore) createTables(ctx context.Context) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS redaction_history (
			id TEXT PRIMARY KEY,
			created_at TEXT NOT NULL,
			document_name TEXT NOT NULL,
			output_name TEXT NOT NULL,
			mime_type TEXT NOT NULL,
			session_id TEXT NOT NULL DEFAULT '',
			preset_id TEXT NOT NULL DEFAULT '',
			redacted_count INTEGER NOT NULL DEFAULT 0,
			report TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_redaction_history_created_at ON redaction_history(created_at)`,
	}
	for _, query := range queries {
		if _, err := s.db.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute: %s: %w", query, err)
		}
	}
	return nil
}

// rebind rewrites ? placeholders as $n for postgres.
func (s *SQLStore) rebind(query string) string {
	if !s.postgres {
		return query
	}
	return rebindDollar(query)
}

func rebindDollar(query string) string {
	var sb strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			sb.WriteString("$" + strconv.Itoa(n))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// Record stores e. The report is kept as a JSON document.
func (s *SQLStore) Record(ctx context.Context, e Entry) error {
	report, err := json.Marshal(e.Report)
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	query := s.rebind(`INSERT INTO redaction_history
		(id, created_at, document_name, output_name, mime_type, session_id, preset_id, redacted_count, report)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	_, err = s.db.ExecContext(ctx, query,
		e.ID, e.CreatedAt.UTC().Format(timeLayout), e.DocumentName, e.OutputName, e.MimeType,
		e.SessionID, e.PresetID, e.Report.RedactedCount, string(report))
	if err != nil {
		return fmt.Errorf("failed to record history entry: %w", err)
	}
	return nil
}

// List returns entries newest first.
func (s *SQLStore) List(ctx context.Context, limit int) ([]Entry, error) {
	query := `SELECT id, created_at, document_name, output_name, mime_type, session_id, preset_id, report
		FROM redaction_history ORDER BY created_at DESC, id DESC`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, s.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e       Entry
			created string
			report  string
		)
		if err := rows.Scan(&e.ID, &created, &e.DocumentName, &e.OutputName, &e.MimeType, &e.SessionID, &e.PresetID, &report); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}
		if e.CreatedAt, err = time.Parse(timeLayout, created); err != nil {
			s.logger.Warn("Unreadable history timestamp", "id", e.ID, "value", created)
		}
		if err := json.Unmarshal([]byte(report), &e.Report); err != nil {
			s.logger.Warn("Unreadable history report", "id", e.ID, "err", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Prune deletes entries older than cutoff.
func (s *SQLStore) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, s.rebind(`DELETE FROM redaction_history WHERE created_at < ?`), cutoff.UTC().Format(timeLayout))
	if err != nil {
		return 0, fmt.Errorf("failed to prune history: %w", err)
	}
	return res.RowsAffected()
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}
