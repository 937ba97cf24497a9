package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"

	"wellness-quiz/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS records (
	name       TEXT PRIMARY KEY,
	data       BLOB NOT NULL,
	updated_at DATETIME NOT NULL
);`

// Storage keeps records in a single SQLite file. It is the default local backend.
type Storage struct {
	db *sql.DB
}

// Open creates the database file (and its directory) when missing.
func Open(path string) (*Storage, error) {
	if err := ensureDir(path); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Storage{db: db}, nil
}

func (s *Storage) Close() error {
	return s.db.Close()
}

func (s *Storage) Load(ctx context.Context, record string) ([]byte, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, `SELECT data FROM records WHERE name = ?`, record).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", record, err)
	}
	return data, nil
}

func (s *Storage) Save(ctx context.Context, record string, data []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO records (name, data, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		record, data, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("save %s: %w", record, err)
	}
	return nil
}

func (s *Storage) Delete(ctx context.Context, record string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM records WHERE name = ?`, record); err != nil {
		return fmt.Errorf("delete %s: %w", record, err)
	}
	return nil
}

// applyPragmas makes every committed write durable before it returns.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = FULL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

// DefaultPath resolves the database file path in priority order:
// 1. WELLNESS_DB environment variable
// 2. $XDG_DATA_HOME/wellness-quiz/wellness.db
// 3. ~/.local/share/wellness-quiz/wellness.db
func DefaultPath() (string, error) {
	if p := os.Getenv("WELLNESS_DB"); p != "" {
		return p, nil
	}
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "wellness-quiz", "wellness.db"), nil
}

func ensureDir(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	return nil
}
