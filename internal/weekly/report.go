// Package weekly compares two disjoint 7-day windows of canonical day
// records and produces a trend report: averages, gated deltas, a narrative,
// and capped action items. Report building is a pure function over its
// input windows.
package weekly

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/claude/daypulse/internal/models"
)

// Statuses reported on a weekly report.
const (
	StatusOK           = "ok"
	StatusPartial      = "partial"
	StatusAwaitingSync = "awaiting_sync"
)

// Metric names used in trends and missing[].
const (
	MetricSleep     = "sleep"
	MetricHRV       = "hrv"
	MetricRestingHR = "resting_hr"
)

// Config holds the trend thresholds. Zero values fall back to defaults.
type Config struct {
	SleepGoalMin      int // weekly-average sleep goal in minutes
	SleepToleranceMin int // band around the goal treated as on-target
	MinDaysForOK      int // synced days needed for an ok status
	MinDaysForCompare int // populated days needed, per window, to compare a metric
}

// DefaultConfig returns the standard trend thresholds.
func DefaultConfig() Config {
	return Config{
		SleepGoalMin:      450,
		SleepToleranceMin: 15,
		MinDaysForOK:      4,
		MinDaysForCompare: 4,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.SleepGoalMin <= 0 {
		c.SleepGoalMin = d.SleepGoalMin
	}
	if c.SleepToleranceMin <= 0 {
		c.SleepToleranceMin = d.SleepToleranceMin
	}
	if c.MinDaysForOK <= 0 {
		c.MinDaysForOK = d.MinDaysForOK
	}
	if c.MinDaysForCompare <= 0 {
		c.MinDaysForCompare = d.MinDaysForCompare
	}
	return c
}

// Narrative thresholds: HRV percent change and resting-HR bpm delta beyond
// which a trend stops being "stable".
const (
	hrvChangeThresholdPct = 5.0
	restingHRDeltaBPM     = 2.0
)

// Earlier-bedtime suggestions scale with the sleep deficit.
const (
	bigSleepDeficitMin   = 60
	bigBedtimeShiftMin   = 45
	smallBedtimeShiftMin = 20
	minBedtimeShiftMin   = 15
)

const maxActionItems = 3

// WindowStats summarizes one 7-day window.
type WindowStats struct {
	SyncedDays      int      `json:"synced_days"`
	SleepDays       int      `json:"sleep_days"`
	HRVDays         int      `json:"hrv_days"`
	RestingHRDays   int      `json:"resting_hr_days"`
	AvgSleepMin     *float64 `json:"avg_sleep_min"`
	AvgHRVMs        *float64 `json:"avg_hrv_ms"`
	AvgRestingHRBPM *float64 `json:"avg_resting_hr_bpm"`
}

// Trend describes one metric's week-over-week movement. Change is nil when
// the data-sufficiency gate blocked the comparison.
type Trend struct {
	Metric    string   `json:"metric"`
	Direction string   `json:"direction"` // "up", "down", "stable", or "unknown"
	Change    *float64 `json:"change"`
	Unit      string   `json:"unit"` // "pct" or "bpm"
	Comment   string   `json:"comment"`
}

// Stats pairs the two window summaries.
type Stats struct {
	Current  WindowStats `json:"current"`
	Previous WindowStats `json:"previous"`
}

// Report is the weekly trend document.
type Report struct {
	WeekStart      string   `json:"week_start"`
	WeekEnd        string   `json:"week_end"`
	Status         string   `json:"status"`
	Summary        string   `json:"summary"`
	Trends         []Trend  `json:"trends"`
	ActionItems    []string `json:"action_items"`
	Stats          Stats    `json:"stats"`
	Missing        []string `json:"missing"`
	HRVChangePct   *float64 `json:"hrv_change_pct"`
	RestingHRDelta *float64 `json:"resting_hr_delta_bpm"`
}

// Build computes the weekly report from the current and previous 7-day
// windows. weekStart is the first day of the current window; records may be
// sparse (absent days simply do not count as populated).
func Build(current, previous []models.DayRecord, weekStart time.Time, cfg Config) *Report {
	cfg = cfg.withDefaults()

	curr := windowStats(current)
	prev := windowStats(previous)

	rep := &Report{
		WeekStart: weekStart.UTC().Format("2006-01-02"),
		WeekEnd:   weekStart.UTC().AddDate(0, 0, 6).Format("2006-01-02"),
		Stats:     Stats{Current: curr, Previous: prev},
		Missing:   []string{},
	}

	switch {
	case curr.SyncedDays == 0:
		rep.Status = StatusAwaitingSync
	case curr.SyncedDays < cfg.MinDaysForOK:
		rep.Status = StatusPartial
	default:
		rep.Status = StatusOK
	}

	if curr.SleepDays == 0 {
		rep.Missing = append(rep.Missing, MetricSleep)
	}
	if curr.HRVDays == 0 {
		rep.Missing = append(rep.Missing, MetricHRV)
	}
	if curr.RestingHRDays == 0 {
		rep.Missing = append(rep.Missing, MetricRestingHR)
	}

	// Comparisons pass the data-sufficiency gate only when both windows
	// have enough populated days for the metric.
	if curr.HRVDays >= cfg.MinDaysForCompare && prev.HRVDays >= cfg.MinDaysForCompare &&
		curr.AvgHRVMs != nil && prev.AvgHRVMs != nil && *prev.AvgHRVMs != 0 {
		pct := (*curr.AvgHRVMs - *prev.AvgHRVMs) / *prev.AvgHRVMs * 100
		rep.HRVChangePct = &pct
	}
	if curr.RestingHRDays >= cfg.MinDaysForCompare && prev.RestingHRDays >= cfg.MinDaysForCompare &&
		curr.AvgRestingHRBPM != nil && prev.AvgRestingHRBPM != nil {
		delta := *curr.AvgRestingHRBPM - *prev.AvgRestingHRBPM
		rep.RestingHRDelta = &delta
	}

	rep.Trends = buildTrends(rep, curr, cfg)
	rep.Summary = buildSummary(rep)
	rep.ActionItems = buildActionItems(rep, curr, cfg)
	return rep
}

func windowStats(records []models.DayRecord) WindowStats {
	var s WindowStats
	var sleepSum, hrvSum, rhrSum float64

	for i := range records {
		r := &records[i]
		if r.HasAnyMetric() {
			s.SyncedDays++
		}
		if r.SleepTotalMin > 0 {
			s.SleepDays++
			sleepSum += float64(r.SleepTotalMin)
		}
		if r.HRV != nil {
			s.HRVDays++
			hrvSum += *r.HRV
		}
		if r.RestingHR != nil {
			s.RestingHRDays++
			rhrSum += *r.RestingHR
		}
	}

	if s.SleepDays > 0 {
		avg := sleepSum / float64(s.SleepDays)
		s.AvgSleepMin = &avg
	}
	if s.HRVDays > 0 {
		avg := hrvSum / float64(s.HRVDays)
		s.AvgHRVMs = &avg
	}
	if s.RestingHRDays > 0 {
		avg := rhrSum / float64(s.RestingHRDays)
		s.AvgRestingHRBPM = &avg
	}
	return s
}

func buildTrends(rep *Report, curr WindowStats, cfg Config) []Trend {
	trends := make([]Trend, 0, 3)

	// HRV: percent change against the previous window.
	hrv := Trend{Metric: MetricHRV, Unit: "pct", Direction: "unknown",
		Comment: "HRV baseline not yet available."}
	if rep.HRVChangePct != nil {
		pct := *rep.HRVChangePct
		hrv.Change = rep.HRVChangePct
		switch {
		case pct > hrvChangeThresholdPct:
			hrv.Direction = "up"
			hrv.Comment = fmt.Sprintf("HRV up by %.0f%% vs last week.", math.Abs(pct))
		case pct < -hrvChangeThresholdPct:
			hrv.Direction = "down"
			hrv.Comment = fmt.Sprintf("HRV down by %.0f%% vs last week.", math.Abs(pct))
		default:
			hrv.Direction = "stable"
			hrv.Comment = "HRV is stable vs last week."
		}
	}
	trends = append(trends, hrv)

	// Resting HR: absolute bpm delta; positive is worse.
	rhr := Trend{Metric: MetricRestingHR, Unit: "bpm", Direction: "unknown",
		Comment: "Resting heart rate baseline not yet available."}
	if rep.RestingHRDelta != nil {
		delta := *rep.RestingHRDelta
		rhr.Change = rep.RestingHRDelta
		switch {
		case delta <= -restingHRDeltaBPM:
			rhr.Direction = "down"
			rhr.Comment = fmt.Sprintf("Resting heart rate down %.0f bpm vs last week.", math.Abs(delta))
		case delta >= restingHRDeltaBPM:
			rhr.Direction = "up"
			rhr.Comment = fmt.Sprintf("Resting heart rate up %.0f bpm vs last week.", math.Abs(delta))
		default:
			rhr.Direction = "stable"
			rhr.Comment = "Resting heart rate is stable vs last week."
		}
	}
	trends = append(trends, rhr)

	// Sleep: current average against the configured goal, previous window
	// not considered.
	sleep := Trend{Metric: MetricSleep, Unit: "min", Direction: "unknown",
		Comment: "No sleep data this week."}
	if curr.AvgSleepMin != nil {
		avg := *curr.AvgSleepMin
		diff := avg - float64(cfg.SleepGoalMin)
		sleep.Change = &diff
		switch {
		case diff < -float64(cfg.SleepToleranceMin):
			sleep.Direction = "down"
			sleep.Comment = fmt.Sprintf("Averaging %.1f hours of sleep, %.0f minutes under your goal.",
				avg/60, math.Abs(diff))
		case diff > float64(cfg.SleepToleranceMin):
			sleep.Direction = "up"
			sleep.Comment = fmt.Sprintf("Averaging %.1f hours of sleep, above your goal.", avg/60)
		default:
			sleep.Direction = "stable"
			sleep.Comment = fmt.Sprintf("Sleep is on target at %.1f hours per night.", avg/60)
		}
	}
	trends = append(trends, sleep)

	return trends
}

func buildSummary(rep *Report) string {
	switch rep.Status {
	case StatusAwaitingSync:
		return "No data synced this week yet. Sync your device to see trends."
	case StatusPartial:
		return fmt.Sprintf("Only %d of 7 days synced this week. More data is needed for reliable trends.",
			rep.Stats.Current.SyncedDays)
	}

	parts := make([]string, 0, len(rep.Trends))
	for _, t := range rep.Trends {
		parts = append(parts, t.Comment)
	}
	return strings.Join(parts, " ")
}

func buildActionItems(rep *Report, curr WindowStats, cfg Config) []string {
	// Conservative-advice policy: without enough synced days, no training
	// advice, only a sync nudge.
	if rep.Status != StatusOK {
		return []string{"Sync your wearable more regularly so weekly trends have enough data to work with."}
	}

	items := make([]string, 0, maxActionItems)
	seen := map[string]bool{}
	add := func(item string) {
		if len(items) < maxActionItems && !seen[item] {
			seen[item] = true
			items = append(items, item)
		}
	}

	if curr.AvgSleepMin != nil {
		deficit := float64(cfg.SleepGoalMin) - *curr.AvgSleepMin
		if deficit > float64(cfg.SleepToleranceMin) {
			shift := smallBedtimeShiftMin
			if deficit >= bigSleepDeficitMin {
				shift = bigBedtimeShiftMin
			}
			if shift < minBedtimeShiftMin {
				shift = minBedtimeShiftMin
			}
			add(fmt.Sprintf("Move bedtime %d minutes earlier to close the sleep deficit.", shift))
		}
	}

	hrvDropped := rep.HRVChangePct != nil && *rep.HRVChangePct < -hrvChangeThresholdPct
	rhrRose := rep.RestingHRDelta != nil && *rep.RestingHRDelta >= restingHRDeltaBPM
	if hrvDropped || rhrRose {
		add("Recovery markers are trending down. Schedule one extra low-intensity or rest day mid-week.")
	}

	if len(items) == 0 {
		add("No changes needed. Maintain your current sleep and training consistency.")
	}
	return items
}
