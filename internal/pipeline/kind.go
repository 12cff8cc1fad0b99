package pipeline

import "strings"

// MetricKind is the canonical classification of a raw vendor metric name.
type MetricKind int

const (
	KindUnknown MetricKind = iota
	KindRestingHR
	KindHRV
	KindSteps
	KindActiveCalories
	KindBasalCalories
	KindWeight
	KindBodyFatPct
	KindGlucose
	KindBPSystolic
	KindBPDiastolic
	KindSleepAnalysis
)

func (k MetricKind) String() string {
	switch k {
	case KindRestingHR:
		return "resting_hr"
	case KindHRV:
		return "hrv"
	case KindSteps:
		return "steps"
	case KindActiveCalories:
		return "active_calories"
	case KindBasalCalories:
		return "basal_calories"
	case KindWeight:
		return "weight"
	case KindBodyFatPct:
		return "body_fat_pct"
	case KindGlucose:
		return "glucose"
	case KindBPSystolic:
		return "bp_systolic"
	case KindBPDiastolic:
		return "bp_diastolic"
	case KindSleepAnalysis:
		return "sleep_analysis"
	default:
		return "unknown"
	}
}

// kindTokens maps normalized name fragments to kinds. Order matters: more
// specific tokens come first so "resting_heart_rate" is not swallowed by a
// generic heart-rate token, and "body_fat_percentage" wins over body-mass.
var kindTokens = []struct {
	token string
	kind  MetricKind
}{
	{"heartratevariability", KindHRV},
	{"restingheartrate", KindRestingHR},
	{"sleep", KindSleepAnalysis},
	{"stepcount", KindSteps},
	{"steps", KindSteps},
	{"activeenergy", KindActiveCalories},
	{"basalenergy", KindBasalCalories},
	{"restingenergy", KindBasalCalories},
	{"bodyfat", KindBodyFatPct},
	{"bodymass", KindWeight},
	{"weight", KindWeight},
	{"glucose", KindGlucose},
	{"systolic", KindBPSystolic},
	{"diastolic", KindBPDiastolic},
}

// normalizeName lowercases a metric name and strips separators so that
// "HeartRateVariabilitySDNN", "heart_rate_variability" and
// "heart-rate variability" all normalize to the same token stream.
func normalizeName(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range strings.ToLower(name) {
		switch r {
		case '_', '-', ' ', '.':
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Classify maps a raw vendor metric name to its canonical kind. Matching is
// case-insensitive and tolerates substring containment. It never fails:
// unrecognized names classify as KindUnknown.
func Classify(name string) MetricKind {
	n := normalizeName(name)
	if n == "" {
		return KindUnknown
	}
	for _, t := range kindTokens {
		if strings.Contains(n, t.token) {
			return t.kind
		}
	}
	return KindUnknown
}

// aggPolicy is the per-kind aggregation strategy.
type aggPolicy int

const (
	aggOverwrite aggPolicy = iota // last sample in the batch wins
	aggSum                       // samples sum within the batch
)

// policyByKind is the declarative kind -> aggregation table driving the
// sample aggregator. Sleep is absent: it has its own resolver.
var policyByKind = map[MetricKind]aggPolicy{
	KindRestingHR:      aggOverwrite,
	KindHRV:            aggOverwrite,
	KindWeight:         aggOverwrite,
	KindBodyFatPct:     aggOverwrite,
	KindGlucose:        aggOverwrite,
	KindBPSystolic:     aggOverwrite,
	KindBPDiastolic:    aggOverwrite,
	KindSteps:          aggSum,
	KindActiveCalories: aggSum,
	KindBasalCalories:  aggSum,
}
