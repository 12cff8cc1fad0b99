package weekly

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/claude/daypulse/internal/models"
)

func fp(v float64) *float64 { return &v }

// week builds 7 consecutive day records starting at startDate, one per day,
// each populated via the mutate callback.
func week(startDate string, mutate func(i int, r *models.DayRecord)) []models.DayRecord {
	start, err := time.Parse("2006-01-02", startDate)
	if err != nil {
		panic(err)
	}
	records := make([]models.DayRecord, 7)
	for i := range records {
		records[i] = models.DayRecord{
			UserID: 1,
			Date:   start.AddDate(0, 0, i).Format("2006-01-02"),
		}
		mutate(i, &records[i])
	}
	return records
}

func fullWeek(startDate string, hrv, rhr float64, sleepMin int) []models.DayRecord {
	return week(startDate, func(i int, r *models.DayRecord) {
		r.HRV = fp(hrv)
		r.RestingHR = fp(rhr)
		r.SleepTotalMin = sleepMin
		r.Steps = 8000
	})
}

var weekStart = time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

// TestBuildHRVDecline verifies the week-over-week HRV percent change and its
// narrative: 50ms vs 60ms is a 16.7% drop reported as "down by 17%".
func TestBuildHRVDecline(t *testing.T) {
	current := fullWeek("2025-03-10", 50, 58, 450)
	previous := fullWeek("2025-03-03", 60, 58, 450)

	rep := Build(current, previous, weekStart, Config{})

	if rep.Status != StatusOK {
		t.Fatalf("status = %q, want %q", rep.Status, StatusOK)
	}
	if rep.HRVChangePct == nil {
		t.Fatal("hrv change is nil, want a value")
	}
	if got := *rep.HRVChangePct; math.Abs(got-(-16.666)) > 0.01 {
		t.Errorf("hrv change = %.3f%%, want about -16.7%%", got)
	}

	var hrvTrend *Trend
	for i := range rep.Trends {
		if rep.Trends[i].Metric == MetricHRV {
			hrvTrend = &rep.Trends[i]
		}
	}
	if hrvTrend == nil {
		t.Fatal("no hrv trend in report")
	}
	if hrvTrend.Direction != "down" {
		t.Errorf("hrv direction = %q, want down", hrvTrend.Direction)
	}
	if hrvTrend.Comment != "HRV down by 17% vs last week." {
		t.Errorf("hrv comment = %q", hrvTrend.Comment)
	}
}

// TestBuildPartialWeek verifies that too few synced days yields partial
// status, nil comparisons, and only the sync-nudge action item.
func TestBuildPartialWeek(t *testing.T) {
	current := week("2025-03-10", func(i int, r *models.DayRecord) {
		if i < 2 {
			r.Steps = 5000
			r.HRV = fp(45)
		}
	})
	previous := fullWeek("2025-03-03", 60, 58, 450)

	rep := Build(current, previous, weekStart, Config{})

	if rep.Status != StatusPartial {
		t.Fatalf("status = %q, want %q", rep.Status, StatusPartial)
	}
	if rep.HRVChangePct != nil {
		t.Errorf("hrv change = %v, want nil (only 2 populated days)", *rep.HRVChangePct)
	}
	if rep.RestingHRDelta != nil {
		t.Errorf("resting hr delta = %v, want nil", *rep.RestingHRDelta)
	}
	if !strings.Contains(rep.Summary, "2 of 7 days") {
		t.Errorf("summary = %q, want mention of 2 of 7 days", rep.Summary)
	}
	if len(rep.ActionItems) != 1 || !strings.Contains(rep.ActionItems[0], "Sync your wearable") {
		t.Errorf("action items = %v, want single sync nudge", rep.ActionItems)
	}
}

// TestBuildAwaitingSync verifies an entirely empty current week.
func TestBuildAwaitingSync(t *testing.T) {
	current := week("2025-03-10", func(i int, r *models.DayRecord) {})

	rep := Build(current, nil, weekStart, Config{})

	if rep.Status != StatusAwaitingSync {
		t.Fatalf("status = %q, want %q", rep.Status, StatusAwaitingSync)
	}
	if len(rep.Missing) != 3 {
		t.Errorf("missing = %v, want all three metrics", rep.Missing)
	}
	if !strings.Contains(rep.Summary, "No data synced") {
		t.Errorf("summary = %q", rep.Summary)
	}
}

// TestBuildComparisonGate verifies that a sparse previous window blocks the
// comparison even when the current window is complete.
func TestBuildComparisonGate(t *testing.T) {
	current := fullWeek("2025-03-10", 50, 58, 450)
	previous := week("2025-03-03", func(i int, r *models.DayRecord) {
		if i < 3 {
			r.HRV = fp(60)
			r.RestingHR = fp(58)
		}
	})

	rep := Build(current, previous, weekStart, Config{})

	if rep.HRVChangePct != nil {
		t.Errorf("hrv change = %v, want nil (previous window below gate)", *rep.HRVChangePct)
	}
	if rep.RestingHRDelta != nil {
		t.Errorf("resting hr delta = %v, want nil", *rep.RestingHRDelta)
	}

	for _, tr := range rep.Trends {
		if tr.Metric == MetricHRV && tr.Direction != "unknown" {
			t.Errorf("hrv direction = %q, want unknown", tr.Direction)
		}
	}
}

// TestBuildSleepDeficitActionItem verifies the bedtime-shift suggestion
// scales with the deficit.
func TestBuildSleepDeficitActionItem(t *testing.T) {
	t.Run("moderate deficit suggests 20 minutes", func(t *testing.T) {
		// 420 min average is 30 under the 450 goal.
		rep := Build(fullWeek("2025-03-10", 55, 58, 420), nil, weekStart, Config{})
		if len(rep.ActionItems) == 0 || !strings.Contains(rep.ActionItems[0], "20 minutes earlier") {
			t.Errorf("action items = %v, want 20-minute bedtime shift", rep.ActionItems)
		}
	})

	t.Run("large deficit suggests 45 minutes", func(t *testing.T) {
		// 380 min average is 70 under the goal.
		rep := Build(fullWeek("2025-03-10", 55, 58, 380), nil, weekStart, Config{})
		if len(rep.ActionItems) == 0 || !strings.Contains(rep.ActionItems[0], "45 minutes earlier") {
			t.Errorf("action items = %v, want 45-minute bedtime shift", rep.ActionItems)
		}
	})

	t.Run("on target suggests maintaining", func(t *testing.T) {
		rep := Build(fullWeek("2025-03-10", 55, 58, 450), nil, weekStart, Config{})
		if len(rep.ActionItems) != 1 || !strings.Contains(rep.ActionItems[0], "Maintain") {
			t.Errorf("action items = %v, want single maintain item", rep.ActionItems)
		}
	})
}

// TestBuildRecoveryActionItem verifies the extra-rest-day suggestion when
// recovery markers decline week over week.
func TestBuildRecoveryActionItem(t *testing.T) {
	current := fullWeek("2025-03-10", 45, 62, 450)
	previous := fullWeek("2025-03-03", 60, 58, 450)

	rep := Build(current, previous, weekStart, Config{})

	found := false
	for _, item := range rep.ActionItems {
		if strings.Contains(item, "low-intensity or rest day") {
			found = true
		}
	}
	if !found {
		t.Errorf("action items = %v, want a recovery suggestion", rep.ActionItems)
	}
	if len(rep.ActionItems) > 3 {
		t.Errorf("action items = %d, want at most 3", len(rep.ActionItems))
	}
}

// TestBuildWindowBounds verifies the report's week boundary formatting.
func TestBuildWindowBounds(t *testing.T) {
	rep := Build(nil, nil, weekStart, Config{})
	if rep.WeekStart != "2025-03-10" {
		t.Errorf("week start = %q, want 2025-03-10", rep.WeekStart)
	}
	if rep.WeekEnd != "2025-03-16" {
		t.Errorf("week end = %q, want 2025-03-16", rep.WeekEnd)
	}
}

// TestWindowStats verifies per-metric population counting and averages.
func TestWindowStats(t *testing.T) {
	records := week("2025-03-10", func(i int, r *models.DayRecord) {
		switch i {
		case 0:
			r.HRV = fp(40)
			r.SleepTotalMin = 400
		case 1:
			r.HRV = fp(60)
			r.RestingHR = fp(58)
		case 2:
			r.Steps = 3000
		}
	})

	s := windowStats(records)
	if s.SyncedDays != 3 {
		t.Errorf("synced days = %d, want 3", s.SyncedDays)
	}
	if s.HRVDays != 2 {
		t.Errorf("hrv days = %d, want 2", s.HRVDays)
	}
	if s.AvgHRVMs == nil || *s.AvgHRVMs != 50 {
		t.Errorf("avg hrv = %v, want 50", s.AvgHRVMs)
	}
	if s.SleepDays != 1 {
		t.Errorf("sleep days = %d, want 1", s.SleepDays)
	}
	if s.AvgSleepMin == nil || *s.AvgSleepMin != 400 {
		t.Errorf("avg sleep = %v, want 400", s.AvgSleepMin)
	}
	if s.RestingHRDays != 1 {
		t.Errorf("resting hr days = %d, want 1", s.RestingHRDays)
	}
}
