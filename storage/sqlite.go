// Package storage provides a SQLite-based implementation of the Storage interface.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"github.com/CreativeUnicorns/cogbot"
)

const (
	sqliteCreateTableSQL = `
		CREATE TABLE IF NOT EXISTS caches (
			name TEXT NOT NULL PRIMARY KEY,
			data BLOB NOT NULL,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`

	sqliteUpsertSQL = `
		INSERT INTO caches (name, data, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(name)
		DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at
	`

	sqliteSelectSQL = `
		SELECT data FROM caches WHERE name = ?
	`
)

// SQLiteStorage implements the Storage interface using SQLite.
// Each cache is one row of the caches table.
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage initializes a new SQLiteStorage instance.
// It connects to the SQLite database at the specified path and runs migrations.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: failed to ping database: %w", err)
	}

	storage := &SQLiteStorage{db: db}
	if err := storage.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: failed to run migrations: %w", err)
	}

	return storage, nil
}

// migrate runs the necessary database migrations.
func (s *SQLiteStorage) migrate() error {
	_, err := s.db.Exec(sqliteCreateTableSQL)
	return err
}

// Read returns the blob stored under name.
// It returns cogbot.ErrNotFound if there is no row for name.
func (s *SQLiteStorage) Read(ctx context.Context, name string) ([]byte, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, sqliteSelectSQL, name).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, cogbot.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: failed to read cache '%s': %w", name, err)
	}
	return data, nil
}

// Write inserts or replaces the row for name.
func (s *SQLiteStorage) Write(ctx context.Context, name string, data []byte) error {
	if data == nil {
		data = []byte{}
	}
	_, err := s.db.ExecContext(ctx, sqliteUpsertSQL, name, data, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("sqlite: failed to write cache '%s': %w", name, err)
	}
	return nil
}

// Close closes the SQLite database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}
