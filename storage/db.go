package storage

import (
	"database/sql"
	"fmt"
	"path/filepath"

	_ "modernc.org/sqlite"
)

type DB struct {
	conn *sql.DB
}

// Open opens the database and initializes the schema
func Open(configDir string) (*DB, error) {
	dbPath := filepath.Join(configDir, "deskhand.db")

	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable WAL mode for better concurrency
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	// Enable foreign keys
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.initSchema(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return db, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

// initSchema creates the database schema
func (db *DB) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS secure_store (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS actions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,

		-- What was performed
		kind TEXT NOT NULL,
		detail TEXT NOT NULL,

		-- Timing
		duration_ms INTEGER NOT NULL,

		-- Status
		success BOOLEAN NOT NULL,
		error_message TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_actions_timestamp ON actions(timestamp);
	CREATE INDEX IF NOT EXISTS idx_actions_kind ON actions(kind);
	CREATE INDEX IF NOT EXISTS idx_actions_success ON actions(success);
	`

	_, err := db.conn.Exec(schema)
	return err
}
