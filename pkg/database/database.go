package database

import (
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schema string

// New opens the SQLite database at the given path, applies the schema
// and returns the connection handle. The handle is passed explicitly to
// repositories instead of living in a package-level singleton so tests
// can run against an isolated in-memory store.
func New(path string) (*sql.DB, error) {
	dsn := path + "?_journal_mode=WAL&_synchronous=NORMAL&_cache_size=10000&_temp_store=MEMORY&_foreign_keys=ON&_busy_timeout=30000"

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(time.Hour)

	// Test the connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// Apply the embedded schema
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return db, nil
}

// NewInMemory opens an isolated in-memory database for tests. The pool
// is capped at one connection because each SQLite in-memory connection
// is its own database.
func NewInMemory() (*sql.DB, error) {
	db, err := New(":memory:")
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	return db, nil
}
