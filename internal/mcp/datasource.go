package mcp

import (
	"context"
	"time"

	"github.com/claude/daypulse/internal/models"
	"github.com/claude/daypulse/internal/readiness"
	"github.com/claude/daypulse/internal/storage"
	"github.com/claude/daypulse/internal/weekly"
)

// DataSource abstracts the data layer for MCP tools. LocalSource (direct
// store access) and HTTPClient (remote via REST API) both satisfy it.
type DataSource interface {
	GetReadiness(ctx context.Context, userID int, date time.Time) (*readiness.Result, error)
	GetWeeklyReport(ctx context.Context, userID int, weekStart time.Time) (*weekly.Report, error)
	QueryDayRecords(ctx context.Context, userID int, start, end time.Time) ([]models.DayRecord, error)
}

// LocalSource computes derived artifacts directly from the store.
type LocalSource struct {
	db           *storage.DB
	readinessCfg readiness.Config
	weeklyCfg    weekly.Config
}

// Compile-time check: *LocalSource satisfies DataSource.
var _ DataSource = (*LocalSource)(nil)

// NewLocalSource creates a store-backed DataSource.
func NewLocalSource(db *storage.DB, readinessCfg readiness.Config, weeklyCfg weekly.Config) *LocalSource {
	return &LocalSource{db: db, readinessCfg: readinessCfg, weeklyCfg: weeklyCfg}
}

func (l *LocalSource) GetReadiness(ctx context.Context, userID int, date time.Time) (*readiness.Result, error) {
	rec, err := l.db.GetDayRecord(ctx, userID, date)
	if err != nil {
		return nil, err
	}
	res := readiness.Score(rec, l.readinessCfg)
	if res.Date == "" {
		res.Date = date.Format("2006-01-02")
	}
	return res, nil
}

func (l *LocalSource) GetWeeklyReport(ctx context.Context, userID int, weekStart time.Time) (*weekly.Report, error) {
	// Serve the persisted document when the REST surface already computed
	// this week; otherwise compute from records.
	stored, err := l.db.GetWeeklyReport(ctx, userID, weekStart, weekStart.AddDate(0, 0, 6))
	if err != nil {
		return nil, err
	}
	if stored != nil {
		return stored, nil
	}

	current, err := l.db.QueryDayRecords(ctx, userID, weekStart, weekStart.AddDate(0, 0, 6))
	if err != nil {
		return nil, err
	}
	previous, err := l.db.QueryDayRecords(ctx, userID, weekStart.AddDate(0, 0, -7), weekStart.AddDate(0, 0, -1))
	if err != nil {
		return nil, err
	}
	return weekly.Build(current, previous, weekStart, l.weeklyCfg), nil
}

func (l *LocalSource) QueryDayRecords(ctx context.Context, userID int, start, end time.Time) ([]models.DayRecord, error) {
	return l.db.QueryDayRecords(ctx, userID, start, end)
}
