package sqlite

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"examsim/internal/exam/storage"
)

// AppendTelemetryEvent records one operational observation. Attributes are
// stored as a JSON object so the journal stays queryable without schema churn.
func (s *Store) AppendTelemetryEvent(ctx context.Context, event storage.TelemetryEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}

	attributes := "{}"
	if len(event.Attributes) > 0 {
		raw, err := json.Marshal(event.Attributes)
		if err != nil {
			return fmt.Errorf("marshal telemetry attributes: %w", err)
		}
		attributes = string(raw)
	}

	timestamp := event.Timestamp
	if timestamp.IsZero() {
		timestamp = time.Now().UTC()
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO telemetry_events (
		   event_name, severity, certification, session_id, ts, attributes
		 ) VALUES (?, ?, ?, ?, ?, ?)`,
		event.EventName,
		event.Severity,
		event.Certification,
		event.SessionID,
		toMillis(timestamp),
		attributes,
	)
	if err != nil {
		return fmt.Errorf("append telemetry event: %w", err)
	}
	return nil
}
