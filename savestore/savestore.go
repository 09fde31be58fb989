// Package savestore keeps named save slots in a local SQLite database.
// Payloads are the opaque base64 strings produced by engine/save; the
// store never looks inside them.
package savestore

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when no save exists under the requested name.
var ErrNotFound = errors.New("save not found")

// Entry describes one stored save slot.
type Entry struct {
	Name        string
	Description string
	CreatedAt   time.Time
}

// Store is a SQLite-backed save database. It is safe for use from a
// single goroutine; callers that share it must serialize access.
type Store struct {
	db *sql.DB
}

// Open creates or opens the save database at path.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("empty save database path")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			return nil, err
		}
	}

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS saves (
		name TEXT PRIMARY KEY,
		description TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		payload TEXT NOT NULL
	);`); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// Put writes or replaces the save slot called name.
func (s *Store) Put(name, description, payload string) error {
	if name == "" {
		return fmt.Errorf("empty save name")
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO saves(name, description, created_at, payload) VALUES(?,?,?,?)`,
		name, description, now, payload,
	)
	if err != nil {
		return fmt.Errorf("storing save %q: %w", name, err)
	}
	return nil
}

// Get returns the payload stored under name.
func (s *Store) Get(name string) (string, error) {
	var payload string
	err := s.db.QueryRow(`SELECT payload FROM saves WHERE name = ?`, name).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("save %q: %w", name, ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("loading save %q: %w", name, err)
	}
	return payload, nil
}

// List returns all save slots, most recent first.
func (s *Store) List() ([]Entry, error) {
	rows, err := s.db.Query(`SELECT name, description, created_at FROM saves ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		var created string
		if err := rows.Scan(&e.Name, &e.Description, &created); err != nil {
			return nil, err
		}
		if t, err := time.Parse(time.RFC3339Nano, created); err == nil {
			e.CreatedAt = t
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Delete removes the save slot called name.
func (s *Store) Delete(name string) error {
	res, err := s.db.Exec(`DELETE FROM saves WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("deleting save %q: %w", name, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("save %q: %w", name, ErrNotFound)
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
