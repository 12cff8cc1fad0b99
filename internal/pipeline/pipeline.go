// Package pipeline normalizes heterogeneous wearable export payloads into
// canonical per-(user, date) day records. Classification, day bucketing,
// value extraction, and aggregation policy are all table-driven; the whole
// pass is synchronous and performs no I/O.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"sort"

	"github.com/claude/daypulse/internal/models"
)

// Result summarizes one normalization pass for ingest logging.
type Result struct {
	SamplesReceived int      `json:"samples_received"`
	SamplesApplied  int      `json:"samples_applied"`
	SamplesSkipped  int      `json:"samples_skipped"`
	UnknownMetrics  []string `json:"unknown_metrics,omitempty"`
	Records         int      `json:"records"`
}

// Pipeline turns raw export payloads into finalized day records.
type Pipeline struct {
	log *slog.Logger
}

// New creates a Pipeline.
func New(log *slog.Logger) *Pipeline {
	return &Pipeline{log: log}
}

// dayKey identifies one in-progress record within a batch.
type dayKey struct {
	userID int
	date   string
}

// dayAccum is the per-(user, date) accumulator built while walking a batch.
// Point-in-time fields hold the last observed value; accumulating fields sum
// and are rounded at finalize.
type dayAccum struct {
	restingHR  *float64
	hrv        *float64
	weight     *float64
	bodyFatPct *float64
	glucose    *float64
	systolic   *float64
	diastolic  *float64

	steps          float64
	activeCalories float64
	basalCalories  float64

	sleepTotal       float64
	sleepDeep        float64
	sleepRem         float64
	sleepCore        float64
	sleepAwake       float64
	sleepSummarySeen bool
}

// Normalize processes one ingestion batch for a user and returns the
// finalized day records plus a processing summary. Individual bad samples
// are skipped, never fatal; the only error paths are context cancellation
// (the caller bounds large exports with a deadline) and a payload so
// malformed a series cannot be decoded at all.
func (p *Pipeline) Normalize(ctx context.Context, payload *models.ExportPayload, userID int) ([]models.DayRecord, *Result, error) {
	result := &Result{}
	accums := make(map[dayKey]*dayAccum)
	unknownSeen := map[string]bool{}

	for _, metric := range payload.Data.Metrics {
		if err := ctx.Err(); err != nil {
			return nil, result, fmt.Errorf("normalizing batch: %w", err)
		}

		kind := Classify(metric.Name)
		if kind == KindUnknown {
			if !unknownSeen[metric.Name] {
				unknownSeen[metric.Name] = true
				result.UnknownMetrics = append(result.UnknownMetrics, metric.Name)
				p.log.Warn("unrecognized metric name", "metric", metric.Name, "samples", len(metric.Data))
			}
			result.SamplesReceived += len(metric.Data)
			result.SamplesSkipped += len(metric.Data)
			continue
		}

		if kind == KindSleepAnalysis {
			p.processSleepSeries(metric, userID, accums, result)
			continue
		}
		p.processMetricSeries(metric, kind, userID, accums, result)
	}

	records := finalize(accums)
	result.Records = len(records)
	return records, result, nil
}

func (p *Pipeline) processMetricSeries(metric models.ExportMetric, kind MetricKind, userID int, accums map[dayKey]*dayAccum, result *Result) {
	policy := policyByKind[kind]

	for _, raw := range metric.Data {
		result.SamplesReceived++

		var sample models.MetricSample
		if err := json.Unmarshal(raw, &sample); err != nil {
			p.log.Warn("skipping sample: bad JSON", "metric", metric.Name, "error", err)
			result.SamplesSkipped++
			continue
		}

		day, ok := resolveDay(sample.Date, sample.End, sample.Start)
		if !ok {
			p.log.Warn("skipping sample: no usable timestamp", "metric", metric.Name)
			result.SamplesSkipped++
			continue
		}

		value := numericValue(&sample)
		if value == nil {
			result.SamplesSkipped++
			continue
		}

		accum := getAccum(accums, userID, day)
		accum.apply(kind, policy, *value)
		result.SamplesApplied++
	}
}

func (p *Pipeline) processSleepSeries(metric models.ExportMetric, userID int, accums map[dayKey]*dayAccum, result *Result) {
	for _, raw := range metric.Data {
		result.SamplesReceived++

		var sample models.SleepSample
		if err := json.Unmarshal(raw, &sample); err != nil {
			p.log.Warn("skipping sleep sample: bad JSON", "error", err)
			result.SamplesSkipped++
			continue
		}

		switch detectSleepShape(&sample) {
		case sleepShapeSummary:
			day, ok := sleepSummaryDay(&sample)
			if !ok {
				result.SamplesSkipped++
				continue
			}
			getAccum(accums, userID, day).applySleepSummary(&sample)
			result.SamplesApplied++

		case sleepShapeSegment:
			day, ok := sleepSegmentDay(&sample)
			if !ok {
				result.SamplesSkipped++
				continue
			}
			if getAccum(accums, userID, day).applySleepSegment(&sample) {
				result.SamplesApplied++
			} else {
				result.SamplesSkipped++
			}
		}
	}
}

func getAccum(accums map[dayKey]*dayAccum, userID int, date string) *dayAccum {
	key := dayKey{userID: userID, date: date}
	a, ok := accums[key]
	if !ok {
		a = &dayAccum{}
		accums[key] = a
	}
	return a
}

// apply routes one extracted value through the kind's aggregation policy.
func (a *dayAccum) apply(kind MetricKind, policy aggPolicy, value float64) {
	if policy == aggSum {
		switch kind {
		case KindSteps:
			a.steps += value
		case KindActiveCalories:
			a.activeCalories += value
		case KindBasalCalories:
			a.basalCalories += value
		}
		return
	}

	v := value
	switch kind {
	case KindRestingHR:
		a.restingHR = &v
	case KindHRV:
		a.hrv = &v
	case KindWeight:
		a.weight = &v
	case KindBodyFatPct:
		a.bodyFatPct = &v
	case KindGlucose:
		a.glucose = &v
	case KindBPSystolic:
		a.systolic = &v
	case KindBPDiastolic:
		a.diastolic = &v
	}
}

// finalize converts accumulators into sorted day records, rounding every
// accumulating field to an integer and clamping at zero.
func finalize(accums map[dayKey]*dayAccum) []models.DayRecord {
	records := make([]models.DayRecord, 0, len(accums))
	for key, a := range accums {
		records = append(records, models.DayRecord{
			UserID:         key.userID,
			Date:           key.date,
			RestingHR:      a.restingHR,
			HRV:            a.hrv,
			Weight:         a.weight,
			BodyFatPct:     a.bodyFatPct,
			Glucose:        a.glucose,
			Systolic:       a.systolic,
			Diastolic:      a.diastolic,
			Steps:          roundNonNegative(a.steps),
			ActiveCalories: roundNonNegative(a.activeCalories),
			BasalCalories:  roundNonNegative(a.basalCalories),
			SleepTotalMin:  roundNonNegative(a.sleepTotal),
			SleepDeepMin:   roundNonNegative(a.sleepDeep),
			SleepRemMin:    roundNonNegative(a.sleepRem),
			SleepCoreMin:   roundNonNegative(a.sleepCore),
			SleepAwakeMin:  roundNonNegative(a.sleepAwake),
		})
	}
	sort.Slice(records, func(i, j int) bool {
		if records[i].UserID != records[j].UserID {
			return records[i].UserID < records[j].UserID
		}
		return records[i].Date < records[j].Date
	})
	return records
}

func roundNonNegative(v float64) int {
	if v <= 0 || math.IsNaN(v) {
		return 0
	}
	return int(math.Round(v))
}
