// Package sqlite implements the catalog repositories and the event store
// on a single SQLite database, the system's only durable state.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schema string

// DB wraps the shared database handle. It is constructed once at process
// start and passed explicitly to every repository; nothing in the
// codebase reaches for a package-level handle.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the database at path and applies the schema.
// The DSN enables WAL, enforces foreign keys, and makes every
// transaction take the write lock up front (_txlock=immediate), which is
// what serializes concurrent rate-limit checks against their inserts.
func Open(path string) (*DB, error) {
	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=5000&_txlock=immediate", path)
	conn, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// SQLite allows a single writer; pooling extra connections only
	// produces SQLITE_BUSY under write load.
	conn.SetMaxOpenConns(1)

	if _, err := conn.Exec(schema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &DB{conn: conn}, nil
}

// Ping verifies the database is reachable
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}
