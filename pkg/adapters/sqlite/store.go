// Package sqlite keeps every saved definition as a numbered revision in a
// SQLite database. Load returns the newest one.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/aretw0/tendril/internal/dto"
	"github.com/aretw0/tendril/pkg/domain"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS definitions (
	revision INTEGER PRIMARY KEY AUTOINCREMENT,
	saved_at INTEGER NOT NULL,
	body     TEXT NOT NULL
);`

// Revision is one saved definition.
type Revision struct {
	Number     int64
	SavedAt    time.Time
	Definition *domain.Definition
}

// Store implements ports.DefinitionStore on SQLite.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (creating if needed) the database at path.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{db: db, now: time.Now}, nil
}

// Close releases the underlying connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Save appends a new revision.
func (s *Store) Save(ctx context.Context, def *domain.Definition) error {
	body, err := json.Marshal(def)
	if err != nil {
		return fmt.Errorf("failed to marshal definition: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO definitions (saved_at, body) VALUES (?, ?)`,
		s.now().UTC().UnixMilli(), string(body),
	)
	if err != nil {
		return fmt.Errorf("insert definition: %w", err)
	}
	return nil
}

// Load returns the newest revision.
func (s *Store) Load(ctx context.Context) (*domain.Definition, error) {
	var body string
	err := s.db.QueryRowContext(ctx,
		`SELECT body FROM definitions ORDER BY revision DESC LIMIT 1`,
	).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrDefinitionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load definition: %w", err)
	}
	return dto.DecodeDefinitionJSON([]byte(body))
}

// Revisions returns up to n revisions, newest first. n <= 0 returns all.
func (s *Store) Revisions(ctx context.Context, n int) ([]Revision, error) {
	query := `SELECT revision, saved_at, body FROM definitions ORDER BY revision DESC`
	args := []any{}
	if n > 0 {
		query += ` LIMIT ?`
		args = append(args, n)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list revisions: %w", err)
	}
	defer rows.Close()

	var out []Revision
	for rows.Next() {
		var (
			rev     Revision
			savedAt int64
			body    string
		)
		if err := rows.Scan(&rev.Number, &savedAt, &body); err != nil {
			return nil, fmt.Errorf("scan revision: %w", err)
		}
		rev.SavedAt = time.UnixMilli(savedAt).UTC()
		if rev.Definition, err = dto.DecodeDefinitionJSON([]byte(body)); err != nil {
			return nil, fmt.Errorf("revision %d: %w", rev.Number, err)
		}
		out = append(out, rev)
	}
	return out, rows.Err()
}
