// Package sqlite stores profiles in a local SQLite database file.
//
// Table:
//
//	profiles(namespace, key, data)  PRIMARY KEY (namespace, key)
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

const schema = `CREATE TABLE IF NOT EXISTS profiles (
	namespace TEXT NOT NULL,
	key TEXT NOT NULL,
	data TEXT NOT NULL,
	PRIMARY KEY (namespace, key)
)`

// NewConnection opens (creating if needed) the database at path.
func NewConnection(ctx context.Context, path string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	if err := Init(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// Init prepares an open database for profile storage.
func Init(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		return fmt.Errorf("failed to enable WAL: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create profiles table: %w", err)
	}
	return nil
}
