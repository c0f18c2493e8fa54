package telemetry

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// SQLRepository stores events in the telemetry_events table created by the
// save migrations.
type SQLRepository struct {
	db  *sql.DB
	now func() time.Time
}

func NewSQLRepository(db *sql.DB) *SQLRepository {
	return &SQLRepository{db: db, now: time.Now}
}

func (r *SQLRepository) RecordEvent(eventType EventType, metadata EventMetadata) error {
	metadataJSON, err := json.Marshal(metadata)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(
		`INSERT INTO telemetry_events (type, run, timestamp, metadata) VALUES (?, ?, ?, ?)`,
		string(eventType), runOf(metadata), r.now().UnixNano(), string(metadataJSON),
	)
	if err != nil {
		return fmt.Errorf("record %s: %w", eventType, err)
	}
	return nil
}

func (r *SQLRepository) Events(q Query) ([]Event, error) {
	query := `SELECT id, type, run, timestamp, metadata FROM telemetry_events WHERE 1 = 1`
	var args []any
	// UnixNano is undefined for the zero time
	if !q.Since.IsZero() {
		query += ` AND timestamp >= ?`
		args = append(args, q.Since.UnixNano())
	}
	if q.Run != "" {
		query += ` AND run = ?`
		args = append(args, q.Run)
	}
	if len(q.Types) > 0 {
		query += ` AND type IN (?` + strings.Repeat(`, ?`, len(q.Types)-1) + `)`
		for _, t := range q.Types {
			args = append(args, string(t))
		}
	}
	query += ` ORDER BY id`

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	result := make([]Event, 0)
	for rows.Next() {
		var (
			ev Event
			ts int64
		)
		if err := rows.Scan(&ev.ID, &ev.Type, &ev.Run, &ts, &ev.Metadata); err != nil {
			return nil, err
		}
		ev.Timestamp = time.Unix(0, ts)
		result = append(result, ev)
	}
	return result, rows.Err()
}

func (r *SQLRepository) Clear() error {
	_, err := r.db.Exec(`DELETE FROM telemetry_events`)
	return err
}
