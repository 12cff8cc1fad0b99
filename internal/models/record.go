package models

// DayRecord is the canonical per-(user, date) row that all derived metrics
// read from. Point-in-time fields are nil until observed; accumulating fields
// default to zero and are never negative.
type DayRecord struct {
	UserID int    `json:"user_id"`
	Date   string `json:"date"` // YYYY-MM-DD

	// Point-in-time (last sample in the batch wins).
	RestingHR  *float64 `json:"resting_hr"`
	HRV        *float64 `json:"hrv"`
	Weight     *float64 `json:"weight"`
	BodyFatPct *float64 `json:"body_fat_pct"`
	Glucose    *float64 `json:"glucose"`
	Systolic   *float64 `json:"systolic"`
	Diastolic  *float64 `json:"diastolic"`

	// Accumulating (summed within one batch, rounded at finalize).
	Steps          int `json:"steps"`
	ActiveCalories int `json:"active_calories"`
	BasalCalories  int `json:"basal_calories"`
	SleepTotalMin  int `json:"sleep_total_min"`
	SleepDeepMin   int `json:"sleep_deep_min"`
	SleepRemMin    int `json:"sleep_rem_min"`
	SleepCoreMin   int `json:"sleep_core_min"`
	SleepAwakeMin  int `json:"sleep_awake_min"`
}

// HasAnyMetric reports whether the record carries at least one observed
// metric. Used to count a day as synced.
func (r *DayRecord) HasAnyMetric() bool {
	if r.RestingHR != nil || r.HRV != nil || r.Weight != nil ||
		r.BodyFatPct != nil || r.Glucose != nil ||
		r.Systolic != nil || r.Diastolic != nil {
		return true
	}
	return r.Steps > 0 || r.ActiveCalories > 0 || r.BasalCalories > 0 ||
		r.SleepTotalMin > 0
}
