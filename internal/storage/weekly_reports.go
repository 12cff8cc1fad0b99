package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/claude/daypulse/internal/weekly"
	"github.com/jackc/pgx/v5"
)

// UpsertWeeklyReport stores a computed report keyed by
// (user_id, week_start, week_end). Recomputing a week replaces the stored
// document, so repeated requests are idempotent.
func (db *DB) UpsertWeeklyReport(ctx context.Context, userID int, rep *weekly.Report) error {
	weekStart, err := time.Parse("2006-01-02", rep.WeekStart)
	if err != nil {
		return fmt.Errorf("malformed week_start %q: %w", rep.WeekStart, err)
	}
	weekEnd, err := time.Parse("2006-01-02", rep.WeekEnd)
	if err != nil {
		return fmt.Errorf("malformed week_end %q: %w", rep.WeekEnd, err)
	}

	doc, err := json.Marshal(rep)
	if err != nil {
		return fmt.Errorf("marshaling weekly report: %w", err)
	}

	_, err = db.Pool.Exec(ctx,
		`INSERT INTO weekly_reports (user_id, week_start, week_end, status, report)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (user_id, week_start, week_end) DO UPDATE SET
			status = EXCLUDED.status,
			report = EXCLUDED.report,
			updated_at = NOW()`,
		userID, weekStart, weekEnd, rep.Status, doc)
	if err != nil {
		return fmt.Errorf("upserting weekly report: %w", err)
	}
	return nil
}

// GetWeeklyReport retrieves a stored report document, or (nil, nil) when the
// week has not been computed yet.
func (db *DB) GetWeeklyReport(ctx context.Context, userID int, weekStart, weekEnd time.Time) (*weekly.Report, error) {
	var doc []byte
	err := db.Pool.QueryRow(ctx,
		`SELECT report FROM weekly_reports
		 WHERE user_id = $1 AND week_start = $2 AND week_end = $3`,
		userID, weekStart, weekEnd).Scan(&doc)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("querying weekly report: %w", err)
	}

	var rep weekly.Report
	if err := json.Unmarshal(doc, &rep); err != nil {
		return nil, fmt.Errorf("unmarshaling weekly report: %w", err)
	}
	return &rep, nil
}
