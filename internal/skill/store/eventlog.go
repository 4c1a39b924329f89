package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// EventResult values recorded for committed (or attempted) responses.
const (
	ResultCommitted = "committed"
	ResultFailed    = "failed"
)

// EventRecord is one row of the response audit log.
type EventRecord struct {
	ID           int64
	Timestamp    time.Time
	TraceID      string
	EventID      string
	ResponseKind string
	Value        sql.NullString
	PersonID     sql.NullString
	Result       string
	ErrorMessage sql.NullString
}

// WriteEvent records one post attempt.  A nil Store is a no-op so the audit
// log can be disabled by configuration.
func (s *Store) WriteEvent(ctx context.Context, traceID, eventID, kind, value, personID, result, errorMsg string) error {
	if s == nil {
		return nil
	}

	nullable := func(v string) sql.NullString {
		if v == "" {
			return sql.NullString{}
		}
		return sql.NullString{String: v, Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO event_log (ts, trace_id, event_id, response_kind, response_value, person_id, result, error_message)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, time.Now().UTC(), traceID, eventID, kind, nullable(value), nullable(personID), result, nullable(errorMsg))

	if err != nil {
		return fmt.Errorf("failed to write event log: %w", err)
	}
	return nil
}

// RecentEvents retrieves the most recent audit rows, newest first.
func (s *Store) RecentEvents(ctx context.Context, limit int) ([]*EventRecord, error) {
	if s == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 100
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, ts, trace_id, event_id, response_kind, response_value, person_id, result, error_message
		FROM event_log
		ORDER BY ts DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query event log: %w", err)
	}
	defer rows.Close()

	var records []*EventRecord
	for rows.Next() {
		rec := &EventRecord{}
		err := rows.Scan(
			&rec.ID, &rec.Timestamp, &rec.TraceID, &rec.EventID,
			&rec.ResponseKind, &rec.Value, &rec.PersonID,
			&rec.Result, &rec.ErrorMessage,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event record: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
