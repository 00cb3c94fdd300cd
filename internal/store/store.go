// Package store handles local SQLite persistence of synced subjects,
// assignments, and the user record.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

// Store wraps the SQLite handle and hands out repositories.
type Store struct {
	db *sql.DB
}

// Open creates a Store at dsn, applying pragmas and bootstrapping the
// schema.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return &Store{db: db}, nil
}

// DB returns the underlying *sql.DB for raw queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Subjects returns the subject repository backed by this store.
func (s *Store) Subjects() SubjectRepo {
	return &subjectRepo{db: s.db}
}

// Assignments returns the assignment repository backed by this store.
func (s *Store) Assignments() AssignmentRepo {
	return &assignmentRepo{db: s.db}
}

// Users returns the single-row user repository backed by this store.
func (s *Store) Users() UserRepo {
	return &userRepo{db: s.db}
}

// Meta returns the key-value repository holding the sync watermark.
func (s *Store) Meta() MetaRepo {
	return &metaRepo{db: s.db}
}

// applyPragmas configures SQLite for single-user client use.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

func migrate(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS subjects (
			id INTEGER PRIMARY KEY,
			type TEXT NOT NULL,
			characters TEXT NOT NULL DEFAULT '',
			slug TEXT NOT NULL,
			level INTEGER NOT NULL,
			meanings TEXT NOT NULL,
			readings TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS assignments (
			id INTEGER PRIMARY KEY,
			subject_id INTEGER NOT NULL,
			subject_type TEXT NOT NULL,
			srs_stage INTEGER NOT NULL,
			unlocked_at TEXT,
			started_at TEXT,
			passed_at TEXT,
			burned_at TEXT,
			available_at TEXT,
			resurrected_at TEXT,
			hidden INTEGER NOT NULL DEFAULT 0,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS user (
			row INTEGER PRIMARY KEY CHECK (row = 1),
			id TEXT NOT NULL,
			username TEXT NOT NULL,
			level INTEGER NOT NULL,
			started_at TEXT NOT NULL,
			on_vacation INTEGER NOT NULL DEFAULT 0,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_assignments_available_at ON assignments(available_at);`,
		`CREATE INDEX IF NOT EXISTS idx_assignments_subject_id ON assignments(subject_id);`,
		`CREATE INDEX IF NOT EXISTS idx_subjects_level ON subjects(level);`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// DefaultDBPath resolves the database file path in priority order:
// 1. KODAMA_DB environment variable
// 2. $XDG_DATA_HOME/kodama/kodama.db
// 3. ~/.local/share/kodama/kodama.db
func DefaultDBPath() (string, error) {
	if p := os.Getenv("KODAMA_DB"); p != "" {
		return p, EnsureDir(p)
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}

	p := filepath.Join(dataHome, "kodama", "kodama.db")
	return p, EnsureDir(p)
}

// EnsureDir creates the parent directory of path if it doesn't exist.
func EnsureDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0o755)
}
