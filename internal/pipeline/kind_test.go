package pipeline

import "testing"

// TestClassify verifies metric-name classification across the vendor spellings
// seen in real exports: camel case, snake case, and free-form labels.
func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		want MetricKind
	}{
		{"HeartRateVariabilitySDNN", KindHRV},
		{"heart_rate_variability", KindHRV},
		{"resting_heart_rate", KindRestingHR},
		{"RestingHeartRate", KindRestingHR},
		{"step_count", KindSteps},
		{"StepCount", KindSteps},
		{"steps", KindSteps},
		{"active_energy", KindActiveCalories},
		{"ActiveEnergyBurned", KindActiveCalories},
		{"basal_energy_burned", KindBasalCalories},
		{"resting_energy", KindBasalCalories},
		{"body_mass", KindWeight},
		{"weight_body_mass", KindWeight},
		{"body_fat_percentage", KindBodyFatPct},
		{"blood_glucose", KindGlucose},
		{"blood_pressure_systolic", KindBPSystolic},
		{"blood_pressure_diastolic", KindBPDiastolic},
		{"sleep_analysis", KindSleepAnalysis},
		{"SleepAnalysis", KindSleepAnalysis},
		{"body_temperature", KindUnknown},
		{"vo2_max", KindUnknown},
		{"", KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.name); got != tt.want {
				t.Errorf("Classify(%q) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}

// TestClassifyBodyFatBeforeWeight verifies that body-fat names are not
// swallowed by the body-mass token even when both fragments appear.
func TestClassifyBodyFatBeforeWeight(t *testing.T) {
	if got := Classify("body_fat_percentage"); got != KindBodyFatPct {
		t.Errorf("Classify(body_fat_percentage) = %v, want %v", got, KindBodyFatPct)
	}
}

// TestNormalizeName verifies separator stripping and lowercasing.
func TestNormalizeName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"HeartRateVariabilitySDNN", "heartratevariabilitysdnn"},
		{"heart_rate_variability", "heartratevariability"},
		{"heart-rate variability", "heartratevariability"},
		{"step.count", "stepcount"},
	}
	for _, tt := range tests {
		if got := normalizeName(tt.in); got != tt.want {
			t.Errorf("normalizeName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

// TestAggregationPolicy verifies the point-in-time vs accumulating split.
func TestAggregationPolicy(t *testing.T) {
	sums := []MetricKind{KindSteps, KindActiveCalories, KindBasalCalories}
	for _, k := range sums {
		if policyByKind[k] != aggSum {
			t.Errorf("policy for %v = overwrite, want sum", k)
		}
	}
	overwrites := []MetricKind{
		KindRestingHR, KindHRV, KindWeight, KindBodyFatPct,
		KindGlucose, KindBPSystolic, KindBPDiastolic,
	}
	for _, k := range overwrites {
		if policyByKind[k] != aggOverwrite {
			t.Errorf("policy for %v = sum, want overwrite", k)
		}
	}
}
