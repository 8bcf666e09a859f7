package storage

import (
	"database/sql"
	"fmt"
	"time"
)

// Action represents a single performed control action
type Action struct {
	ID           int64
	Timestamp    time.Time
	Kind         string
	Detail       string
	DurationMs   int64
	Success      bool
	ErrorMessage string
}

// SaveAction saves an action to the database
func (db *DB) SaveAction(a *Action) error {
	query := `
		INSERT INTO actions (kind, detail, duration_ms, success, error_message)
		VALUES (?, ?, ?, ?, ?)
	`

	result, err := db.conn.Exec(query, a.Kind, a.Detail, a.DurationMs, a.Success, a.ErrorMessage)
	if err != nil {
		return fmt.Errorf("failed to save action: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert ID: %w", err)
	}

	a.ID = id
	return nil
}

// GetActions retrieves actions with pagination, newest first
func (db *DB) GetActions(limit, offset int) ([]Action, error) {
	query := `
		SELECT id, timestamp, kind, detail, duration_ms, success, error_message
		FROM actions
		ORDER BY timestamp DESC, id DESC
		LIMIT ? OFFSET ?
	`

	rows, err := db.conn.Query(query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query actions: %w", err)
	}
	defer rows.Close()

	var actions []Action
	for rows.Next() {
		var a Action
		var errorMessage sql.NullString

		err := rows.Scan(&a.ID, &a.Timestamp, &a.Kind, &a.Detail, &a.DurationMs, &a.Success, &errorMessage)
		if err != nil {
			return nil, fmt.Errorf("failed to scan action: %w", err)
		}

		if errorMessage.Valid {
			a.ErrorMessage = errorMessage.String
		}

		actions = append(actions, a)
	}

	return actions, rows.Err()
}

// GetActionCount returns the total number of recorded actions
func (db *DB) GetActionCount() (int, error) {
	var count int
	err := db.conn.QueryRow("SELECT COUNT(*) FROM actions").Scan(&count)
	return count, err
}

// KindStats represents statistics grouped by action kind
type KindStats struct {
	Kind          string
	TotalActions  int
	SuccessCount  int
	FailureCount  int
	AvgDurationMs float64
}

// OverallStats represents overall statistics
type OverallStats struct {
	TotalActions    int
	SuccessCount    int
	FailureCount    int
	AvgDurationMs   float64
	TotalDurationMs int64
}

// GetKindStats retrieves statistics grouped by kind for the last N days
func (db *DB) GetKindStats(days int) ([]KindStats, error) {
	query := `
		SELECT
			kind,
			COUNT(*) as total_actions,
			SUM(CASE WHEN success = 1 THEN 1 ELSE 0 END) as success_count,
			SUM(CASE WHEN success = 0 THEN 1 ELSE 0 END) as failure_count,
			COALESCE(AVG(duration_ms), 0) as avg_duration_ms
		FROM actions
		WHERE timestamp >= datetime('now', '-' || ? || ' days')
		GROUP BY kind
		ORDER BY total_actions DESC
	`

	rows, err := db.conn.Query(query, days)
	if err != nil {
		return nil, fmt.Errorf("failed to query kind stats: %w", err)
	}
	defer rows.Close()

	var stats []KindStats
	for rows.Next() {
		var s KindStats
		err := rows.Scan(&s.Kind, &s.TotalActions, &s.SuccessCount, &s.FailureCount, &s.AvgDurationMs)
		if err != nil {
			return nil, fmt.Errorf("failed to scan kind stats: %w", err)
		}
		stats = append(stats, s)
	}

	return stats, rows.Err()
}

// GetOverallStats retrieves overall statistics for the last N days
func (db *DB) GetOverallStats(days int) (*OverallStats, error) {
	query := `
		SELECT
			COUNT(*) as total_actions,
			SUM(CASE WHEN success = 1 THEN 1 ELSE 0 END) as success_count,
			SUM(CASE WHEN success = 0 THEN 1 ELSE 0 END) as failure_count,
			COALESCE(AVG(duration_ms), 0) as avg_duration_ms,
			COALESCE(SUM(duration_ms), 0) as total_duration_ms
		FROM actions
		WHERE timestamp >= datetime('now', '-' || ? || ' days')
	`

	var stats OverallStats
	var success, failure sql.NullInt64
	err := db.conn.QueryRow(query, days).Scan(
		&stats.TotalActions,
		&success,
		&failure,
		&stats.AvgDurationMs,
		&stats.TotalDurationMs,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query overall stats: %w", err)
	}

	stats.SuccessCount = int(success.Int64)
	stats.FailureCount = int(failure.Int64)
	return &stats, nil
}
