// Package store persists reconciliation runs to a local SQLite database so
// past review sessions can be listed and re-read without re-running the
// pipeline.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/loorthu/dna/internal/review"
)

// Store wraps the run-history database.
type Store struct {
	db *sql.DB
}

// Run is one stored reconciliation run.
type Run struct {
	ID                 string
	CreatedAt          time.Time
	SGFile             string
	TranscriptFile     string
	VersionPattern     string
	ReferenceThreshold int
	RowCount           int
}

// DefaultPath returns the default database location.
func DefaultPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "dna", "dna.sqlite")
}

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	created_at INTEGER NOT NULL,
	sg_file TEXT NOT NULL,
	transcript_file TEXT NOT NULL,
	version_pattern TEXT NOT NULL,
	reference_threshold INTEGER NOT NULL,
	row_count INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS run_rows (
	run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	position INTEGER NOT NULL,
	timestamp TEXT NOT NULL,
	version_id TEXT NOT NULL,
	conversation TEXT NOT NULL,
	sg_summary TEXT NOT NULL,
	reference_versions TEXT NOT NULL,
	PRIMARY KEY (run_id, position)
);
`

// Open opens (creating if needed) the database at path and applies the schema.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveRun stores one reconciliation run with its rows and returns the run id.
func (s *Store) SaveRun(meta Run, rows []review.OutputRow) (string, error) {
	id := uuid.NewString()

	tx, err := s.db.Begin()
	if err != nil {
		return "", fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO runs (id, created_at, sg_file, transcript_file, version_pattern, reference_threshold, row_count)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, id, time.Now().Unix(), meta.SGFile, meta.TranscriptFile,
		meta.VersionPattern, meta.ReferenceThreshold, len(rows))
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}

	for i, row := range rows {
		_, err = tx.Exec(`
			INSERT INTO run_rows (run_id, position, timestamp, version_id, conversation, sg_summary, reference_versions)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, id, i, row.Timestamp, row.VersionID, row.Conversation, row.SGSummary, row.ReferenceVersions)
		if err != nil {
			return "", fmt.Errorf("insert row %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	return id, nil
}

// ListRuns returns all stored runs, newest first.
func (s *Store) ListRuns() ([]Run, error) {
	rows, err := s.db.Query(`
		SELECT id, created_at, sg_file, transcript_file, version_pattern, reference_threshold, row_count
		FROM runs
		ORDER BY created_at DESC, id
	`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var createdAt int64
		if err := rows.Scan(&r.ID, &createdAt, &r.SGFile, &r.TranscriptFile,
			&r.VersionPattern, &r.ReferenceThreshold, &r.RowCount); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.CreatedAt = time.Unix(createdAt, 0)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// RunRows returns the output rows of one run in stored order.
// It reports sql.ErrNoRows when the run id does not exist.
func (s *Store) RunRows(runID string) ([]review.OutputRow, error) {
	var exists int
	if err := s.db.QueryRow(`SELECT 1 FROM runs WHERE id = ?`, runID).Scan(&exists); err != nil {
		return nil, err
	}

	rows, err := s.db.Query(`
		SELECT timestamp, version_id, conversation, sg_summary, reference_versions
		FROM run_rows
		WHERE run_id = ?
		ORDER BY position
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query run rows: %w", err)
	}
	defer rows.Close()

	var out []review.OutputRow
	for rows.Next() {
		var r review.OutputRow
		if err := rows.Scan(&r.Timestamp, &r.VersionID, &r.Conversation,
			&r.SGSummary, &r.ReferenceVersions); err != nil {
			return nil, fmt.Errorf("scan run row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
