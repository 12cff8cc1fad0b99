package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/claude/daypulse/internal/models"
	"github.com/jackc/pgx/v5"
)

const dayRecordColumns = `user_id, date, resting_hr, hrv, weight, body_fat_pct, glucose,
systolic, diastolic, steps, active_calories, basal_calories,
sleep_total_min, sleep_deep_min, sleep_rem_min, sleep_core_min, sleep_awake_min`

// UpsertDayRecords writes a finalized batch of day records. Conflict target
// is unique(user_id, date): each batch builds a complete record, so the row
// is fully replaced rather than merged (last writer wins).
func (db *DB) UpsertDayRecords(ctx context.Context, records []models.DayRecord) (int64, error) {
	if len(records) == 0 {
		return 0, nil
	}

	const cols = 17
	query := `INSERT INTO day_records (` + dayRecordColumns + `)
VALUES `
	args := make([]any, 0, len(records)*cols)
	valueStrings := make([]string, 0, len(records))

	for i, r := range records {
		date, err := time.Parse("2006-01-02", r.Date)
		if err != nil {
			return 0, fmt.Errorf("record %d has malformed date %q: %w", i, r.Date, err)
		}
		base := i * cols
		placeholders := make([]string, cols)
		for j := range placeholders {
			placeholders[j] = fmt.Sprintf("$%d", base+j+1)
		}
		valueStrings = append(valueStrings, "("+strings.Join(placeholders, ",")+")")
		args = append(args, r.UserID, date, r.RestingHR, r.HRV, r.Weight, r.BodyFatPct, r.Glucose,
			r.Systolic, r.Diastolic, r.Steps, r.ActiveCalories, r.BasalCalories,
			r.SleepTotalMin, r.SleepDeepMin, r.SleepRemMin, r.SleepCoreMin, r.SleepAwakeMin)
	}

	query += strings.Join(valueStrings, ",") + `
ON CONFLICT (user_id, date) DO UPDATE SET
	resting_hr = EXCLUDED.resting_hr,
	hrv = EXCLUDED.hrv,
	weight = EXCLUDED.weight,
	body_fat_pct = EXCLUDED.body_fat_pct,
	glucose = EXCLUDED.glucose,
	systolic = EXCLUDED.systolic,
	diastolic = EXCLUDED.diastolic,
	steps = EXCLUDED.steps,
	active_calories = EXCLUDED.active_calories,
	basal_calories = EXCLUDED.basal_calories,
	sleep_total_min = EXCLUDED.sleep_total_min,
	sleep_deep_min = EXCLUDED.sleep_deep_min,
	sleep_rem_min = EXCLUDED.sleep_rem_min,
	sleep_core_min = EXCLUDED.sleep_core_min,
	sleep_awake_min = EXCLUDED.sleep_awake_min,
	updated_at = NOW()`

	tag, err := db.Pool.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("upserting day records: %w", err)
	}
	return tag.RowsAffected(), nil
}

// QueryDayRecords retrieves a user's records for [start, end] inclusive,
// ordered by date.
func (db *DB) QueryDayRecords(ctx context.Context, userID int, start, end time.Time) ([]models.DayRecord, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT `+dayRecordColumns+`
		 FROM day_records
		 WHERE user_id = $1 AND date >= $2 AND date <= $3
		 ORDER BY date ASC`,
		userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("querying day records: %w", err)
	}
	defer rows.Close()

	return scanDayRecords(rows)
}

// GetDayRecord retrieves one record by (user, date). Returns (nil, nil) when
// the day has no record yet: absence is a valid state, not an error.
func (db *DB) GetDayRecord(ctx context.Context, userID int, date time.Time) (*models.DayRecord, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT `+dayRecordColumns+`
		 FROM day_records
		 WHERE user_id = $1 AND date = $2`,
		userID, date)
	if err != nil {
		return nil, fmt.Errorf("querying day record: %w", err)
	}
	defer rows.Close()

	records, err := scanDayRecords(rows)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	return &records[0], nil
}

func scanDayRecords(rows pgx.Rows) ([]models.DayRecord, error) {
	var result []models.DayRecord
	for rows.Next() {
		var r models.DayRecord
		var date time.Time
		if err := rows.Scan(&r.UserID, &date, &r.RestingHR, &r.HRV, &r.Weight, &r.BodyFatPct, &r.Glucose,
			&r.Systolic, &r.Diastolic, &r.Steps, &r.ActiveCalories, &r.BasalCalories,
			&r.SleepTotalMin, &r.SleepDeepMin, &r.SleepRemMin, &r.SleepCoreMin, &r.SleepAwakeMin); err != nil {
			return nil, fmt.Errorf("scanning day record: %w", err)
		}
		r.Date = date.Format("2006-01-02")
		result = append(result, r)
	}
	return result, rows.Err()
}
