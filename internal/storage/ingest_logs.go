package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// IngestLog records a single ingestion batch's outcome.
type IngestLog struct {
	ID              uuid.UUID `json:"id"`
	UserID          int       `json:"user_id"`
	CreatedAt       time.Time `json:"created_at"`
	Source          string    `json:"source"`
	Status          string    `json:"status"`
	SamplesReceived int       `json:"samples_received"`
	SamplesApplied  int       `json:"samples_applied"`
	SamplesSkipped  int       `json:"samples_skipped"`
	RecordsWritten  int       `json:"records_written"`
	DurationMs      *int      `json:"duration_ms"`
	ErrorMessage    *string   `json:"error_message"`
}

// InsertIngestLog creates a new ingest log entry.
func (db *DB) InsertIngestLog(ctx context.Context, log IngestLog) error {
	_, err := db.Pool.Exec(ctx,
		`INSERT INTO ingest_logs (id, user_id, source, status, samples_received,
		 samples_applied, samples_skipped, records_written, duration_ms, error_message)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		log.ID, log.UserID, log.Source, log.Status, log.SamplesReceived,
		log.SamplesApplied, log.SamplesSkipped, log.RecordsWritten,
		log.DurationMs, log.ErrorMessage,
	)
	if err != nil {
		return fmt.Errorf("inserting ingest log: %w", err)
	}
	return nil
}

// QueryIngestLogs returns the most recent ingest logs for a user.
func (db *DB) QueryIngestLogs(ctx context.Context, userID, limit int) ([]IngestLog, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.Pool.Query(ctx,
		`SELECT id, user_id, created_at, source, status, samples_received,
		 samples_applied, samples_skipped, records_written, duration_ms, error_message
		 FROM ingest_logs
		 WHERE user_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2`,
		userID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying ingest logs: %w", err)
	}
	defer rows.Close()

	var result []IngestLog
	for rows.Next() {
		var l IngestLog
		if err := rows.Scan(&l.ID, &l.UserID, &l.CreatedAt, &l.Source, &l.Status,
			&l.SamplesReceived, &l.SamplesApplied, &l.SamplesSkipped,
			&l.RecordsWritten, &l.DurationMs, &l.ErrorMessage); err != nil {
			return nil, fmt.Errorf("scanning ingest log: %w", err)
		}
		result = append(result, l)
	}
	return result, rows.Err()
}
