package db

import (
	"fmt"
	"log/slog"

	_ "github.com/glebarez/go-sqlite"
	"github.com/jmoiron/sqlx"
)

// schema is applied on every startup; CREATE TABLE IF NOT EXISTS keeps it
// idempotent. Items reference their list and, for sub-items, their parent.
const schema = `
CREATE TABLE IF NOT EXISTS users (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	username TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS lists (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	user_id INTEGER NOT NULL REFERENCES users(id)
);

CREATE TABLE IF NOT EXISTS items (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	description TEXT NOT NULL,
	complete BOOLEAN NOT NULL DEFAULT 0,
	list_id INTEGER NOT NULL REFERENCES lists(id),
	parent_id INTEGER REFERENCES items(id)
);

CREATE INDEX IF NOT EXISTS idx_lists_user ON lists(user_id);
CREATE INDEX IF NOT EXISTS idx_items_list ON items(list_id);
CREATE INDEX IF NOT EXISTS idx_items_parent ON items(parent_id);
`

// Connect opens the SQLite database at dbPath, enables foreign key
// enforcement and creates the schema if it does not exist yet.
func Connect(dbPath string) (*sqlx.DB, error) {
	pool, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	// One connection: SQLite serializes writers anyway, the foreign_keys
	// pragma is per-connection, and :memory: databases exist per connection.
	pool.SetMaxOpenConns(1)

	if _, err := pool.Exec("PRAGMA foreign_keys = ON"); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if _, err := pool.Exec(schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	slog.Info("DB connection initialized and schema verified", "path", dbPath)

	return pool, nil
}
