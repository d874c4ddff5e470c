package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Database owns the catalog connection.
//
// Usage:
//
//	database, err := NewDatabase("data/catalog.db")
//	if err != nil {
//	    return err
//	}
//	defer database.Close()
type Database struct {
	db   *sql.DB
	path string
	mu   sync.RWMutex
}

// NewDatabase opens the database at path, creating the file and its parent
// directories when missing, and applies the embedded migrations.
func NewDatabase(path string) (*Database, error) {
	if path == "" {
		return nil, fmt.Errorf("database path is required")
	}

	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory %s: %w", dir, err)
		}
	}

	// Migrations first: the migrator closes its own connection.
	if err := MigrateUp(path); err != nil {
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	conn, err := NewSQLiteConnectionWithDefaults(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create database connection: %w", err)
	}
	return &Database{db: conn, path: path}, nil
}

// DB returns the underlying connection. Do not close it; use Close.
func (d *Database) DB() *sql.DB {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.db
}

// Path returns the database file path.
func (d *Database) Path() string {
	return d.path
}

// Close closes the connection. Further use of d fails.
func (d *Database) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.db == nil {
		return nil
	}
	if err := d.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	d.db = nil
	return nil
}

// Ping verifies the connection is alive.
func (d *Database) Ping(ctx context.Context) error {
	conn, err := d.conn()
	if err != nil {
		return err
	}
	return conn.PingContext(ctx)
}

// BeginTx starts a transaction.
func (d *Database) BeginTx(ctx context.Context) (*sql.Tx, error) {
	conn, err := d.conn()
	if err != nil {
		return nil, err
	}
	return conn.BeginTx(ctx, nil)
}

// QueryContext runs a query that returns rows.
func (d *Database) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	conn, err := d.conn()
	if err != nil {
		return nil, err
	}
	return conn.QueryContext(ctx, query, args...)
}

func (d *Database) conn() (*sql.DB, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.db == nil {
		return nil, fmt.Errorf("database connection is closed")
	}
	return d.db, nil
}
