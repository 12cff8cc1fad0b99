package pipeline

import (
	"math"
	"time"

	"github.com/claude/daypulse/internal/models"
)

// resolveDay picks the calendar date for a sample from its candidate
// timestamp strings, tried in precedence order (explicit date, end, start).
// If the leading ten characters already form a valid YYYY-MM-DD they are
// used directly; otherwise the string is parsed as a full timestamp and
// rendered as its UTC calendar date. Returns ok=false when no candidate
// resolves, which callers treat as "skip the sample", not as a batch error.
func resolveDay(candidates ...string) (string, bool) {
	for _, s := range candidates {
		if s == "" {
			continue
		}
		if len(s) >= 10 && isDatePrefix(s[:10]) {
			// Digit shape alone is not enough: an impossible calendar
			// date like 2025-13-45 must skip the sample, not surface
			// later as a storage error for the batch.
			if _, err := time.Parse(models.ExportDateOnlyLayout, s[:10]); err != nil {
				continue
			}
			return s[:10], true
		}
		t, err := models.ParseExportTime(s)
		if err != nil {
			continue
		}
		return t.UTC().Format(models.ExportDateOnlyLayout), true
	}
	return "", false
}

// isDatePrefix reports whether s is exactly ten characters of YYYY-MM-DD.
func isDatePrefix(s string) bool {
	if len(s) != 10 || s[4] != '-' || s[7] != '-' {
		return false
	}
	for i, c := range s {
		if i == 4 || i == 7 {
			continue
		}
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// numericValue extracts the sample's value, trying qty, avg, value, min, max
// in order. The first present finite number wins. Returns nil when the sample
// yields no usable value.
func numericValue(s *models.MetricSample) *float64 {
	for _, v := range []*float64{s.Qty, s.Avg, s.Value, s.Min, s.Max} {
		if v == nil {
			continue
		}
		if math.IsNaN(*v) || math.IsInf(*v, 0) {
			continue
		}
		return v
	}
	return nil
}
