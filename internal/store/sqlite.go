package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

const busyTimeout = 5 * time.Second

// SQLiteStore keeps the best level in the settings table of a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at path and applies
// pending migrations.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	mgr, err := NewMigrationManager(path)
	if err != nil {
		return nil, err
	}
	if err := mgr.Up(); err != nil {
		_ = mgr.Close()
		return nil, err
	}
	if err := mgr.Close(); err != nil {
		return nil, fmt.Errorf("close migration manager: %w", err)
	}

	dsn := fmt.Sprintf("%s?_pragma=busy_timeout(%d)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(1)",
		path, busyTimeout.Milliseconds())
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// Single connection; concurrent saves queue on the pool.
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// LoadBestLevel returns 0 when no level has been saved.
func (s *SQLiteStore) LoadBestLevel(ctx context.Context) (int, error) {
	var value string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM settings WHERE key = ?", BestLevelKey).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get setting %s: %w", BestLevelKey, err)
	}
	level, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("parse setting %s: %w", BestLevelKey, err)
	}
	return level, nil
}

func (s *SQLiteStore) SaveBestLevel(ctx context.Context, level int) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, BestLevelKey, strconv.Itoa(level), time.Now())
	if err != nil {
		return fmt.Errorf("set setting %s: %w", BestLevelKey, err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
