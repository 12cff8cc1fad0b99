package pipeline

import (
	"math"
	"strings"

	"github.com/claude/daypulse/internal/models"
)

// sleepShape is the tagged union over the two sleep encodings.
type sleepShape int

const (
	sleepShapeSegment sleepShape = iota // timestamped stage interval
	sleepShapeSummary                   // pre-aggregated hour totals
)

// detectSleepShape decides the encoding from field presence alone. Summary
// is checked first: the presence of any hour-total field makes the sample
// authoritative for its date.
func detectSleepShape(s *models.SleepSample) sleepShape {
	if s.TotalSleep != nil || s.Deep != nil || s.REM != nil || s.Core != nil || s.Awake != nil {
		return sleepShapeSummary
	}
	return sleepShapeSegment
}

// stageBucket identifies which duration bucket a segment contributes to.
type stageBucket int

const (
	stageAwake stageBucket = iota
	stageCore
	stageDeep
	stageREM
)

// stageFromMarker maps the segment stage marker to a bucket:
// 0/"awake" -> awake, 1 or 2/"asleep"/"core" -> core, 3/"deep" -> deep,
// 4/"rem" -> rem. Name matching is case-insensitive.
func stageFromMarker(m *models.StageMarker) (stageBucket, bool) {
	if m == nil {
		return 0, false
	}
	if m.Num != nil {
		switch *m.Num {
		case 0:
			return stageAwake, true
		case 1, 2:
			return stageCore, true
		case 3:
			return stageDeep, true
		case 4:
			return stageREM, true
		}
		return 0, false
	}
	switch strings.ToLower(m.Name) {
	case "awake", "in bed", "inbed":
		return stageAwake, true
	case "asleep", "core":
		return stageCore, true
	case "deep":
		return stageDeep, true
	case "rem":
		return stageREM, true
	}
	return 0, false
}

// segmentDuration computes the segment length in minutes from its start and
// end timestamps. ok=false for unparseable or non-positive durations.
func segmentDuration(s *models.SleepSample) (float64, bool) {
	start := firstNonEmpty(s.Start, s.StartDate)
	end := firstNonEmpty(s.End, s.EndDate)
	if start == "" || end == "" {
		return 0, false
	}
	st, err := models.ParseExportTime(start)
	if err != nil {
		return 0, false
	}
	en, err := models.ParseExportTime(end)
	if err != nil {
		return 0, false
	}
	minutes := en.Sub(st).Minutes()
	if minutes <= 0 || math.IsNaN(minutes) || math.IsInf(minutes, 0) {
		return 0, false
	}
	return minutes, true
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// applySleepSegment adds a stage segment's minutes to the accumulator.
// Segments are ignored once a summary sample has claimed the date.
func (a *dayAccum) applySleepSegment(s *models.SleepSample) bool {
	if a.sleepSummarySeen {
		return false
	}
	minutes, ok := segmentDuration(s)
	if !ok {
		return false
	}
	bucket, ok := stageFromMarker(s.Stage)
	if !ok {
		return false
	}
	a.sleepTotal += minutes
	switch bucket {
	case stageAwake:
		a.sleepAwake += minutes
	case stageCore:
		a.sleepCore += minutes
	case stageDeep:
		a.sleepDeep += minutes
	case stageREM:
		a.sleepRem += minutes
	}
	return true
}

// applySleepSummary replaces the accumulator's sleep totals with the
// summary's hour totals, converted to minutes. The summary supersedes any
// segment contribution already made for the date within this batch.
func (a *dayAccum) applySleepSummary(s *models.SleepSample) {
	a.sleepSummarySeen = true
	a.sleepTotal = hoursToMinutes(s.TotalSleep)
	a.sleepDeep = hoursToMinutes(s.Deep)
	a.sleepRem = hoursToMinutes(s.REM)
	a.sleepCore = hoursToMinutes(s.Core)
	a.sleepAwake = hoursToMinutes(s.Awake)
}

func hoursToMinutes(hours *float64) float64 {
	if hours == nil || math.IsNaN(*hours) || math.IsInf(*hours, 0) {
		return 0
	}
	return math.Round(*hours * 60)
}

// sleepSegmentDay resolves the bucket date for a segment sample. The end
// timestamp takes precedence over start (after any explicit date) so a night
// crossing midnight lands on the wake-up date.
func sleepSegmentDay(s *models.SleepSample) (string, bool) {
	return resolveDay(s.Date, firstNonEmpty(s.End, s.EndDate), firstNonEmpty(s.Start, s.StartDate))
}

// sleepSummaryDay resolves the bucket date for a summary sample.
func sleepSummaryDay(s *models.SleepSample) (string, bool) {
	return resolveDay(s.Date, firstNonEmpty(s.End, s.EndDate), firstNonEmpty(s.Start, s.StartDate))
}
