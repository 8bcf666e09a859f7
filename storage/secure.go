package storage

import (
	"database/sql"
	"errors"
	"fmt"
)

// Keys the secure store accepts. Anything else is rejected so the table
// cannot silently grow into a general-purpose dumping ground.
const (
	KeyLicenseKey    = "extab_license_key"
	KeyInstanceID    = "extab_instance_id"
	KeySelectedModel = "selected_extab_model"
)

var allowedKeys = map[string]bool{
	KeyLicenseKey:    true,
	KeyInstanceID:    true,
	KeySelectedModel: true,
}

// ErrNotFound is returned when a secure store key has no stored value.
var ErrNotFound = errors.New("key not found")

// SecureSet stores a value under one of the allowed keys, replacing any
// previous value.
func (db *DB) SecureSet(key, value string) error {
	if !allowedKeys[key] {
		return fmt.Errorf("key not allowed: %s", key)
	}

	query := `
		INSERT INTO secure_store (key, value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
	`

	if _, err := db.conn.Exec(query, key, value); err != nil {
		return fmt.Errorf("failed to store value: %w", err)
	}
	return nil
}

// SecureGet retrieves a stored value. Returns ErrNotFound when the key
// has never been set.
func (db *DB) SecureGet(key string) (string, error) {
	if !allowedKeys[key] {
		return "", fmt.Errorf("key not allowed: %s", key)
	}

	var value string
	err := db.conn.QueryRow("SELECT value FROM secure_store WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to read value: %w", err)
	}
	return value, nil
}

// SecureDelete removes a stored value. Deleting a key that was never set
// is not an error.
func (db *DB) SecureDelete(key string) error {
	if !allowedKeys[key] {
		return fmt.Errorf("key not allowed: %s", key)
	}

	if _, err := db.conn.Exec("DELETE FROM secure_store WHERE key = ?", key); err != nil {
		return fmt.Errorf("failed to delete value: %w", err)
	}
	return nil
}
