// Package readiness derives a daily 0-100 composite readiness score from one
// canonical day record. Scoring is a pure function: no I/O, no clock, no
// state. Missing inputs degrade to an awaiting_sync status, never an error.
package readiness

import (
	"fmt"
	"math"

	"github.com/claude/daypulse/internal/models"
)

// Statuses reported on a readiness result.
const (
	StatusOK           = "ok"
	StatusAwaitingSync = "awaiting_sync"
)

// Subscore category names, as listed in missing[].
const (
	CategorySleep      = "sleep"
	CategoryHRV        = "hrv"
	CategoryRestingHR  = "resting_hr"
	CategoryRecovery   = "recovery"
	CategorySubjective = "subjective"
)

// Config holds the scoring references. Zero values fall back to defaults.
type Config struct {
	SleepTargetMin int // nightly sleep target in minutes

	HRVLowMs  float64 // HRV mapping to 0
	HRVGoodMs float64 // HRV mapping to 100

	RestingHRHighBPM float64 // resting HR mapping to 0
	RestingHRGoodBPM float64 // resting HR mapping to 100

	StepsTarget    float64 // daily step target for the activity load
	CaloriesTarget float64 // daily active-energy target for the activity load
}

// DefaultConfig returns the standard scoring references.
func DefaultConfig() Config {
	return Config{
		SleepTargetMin:   480,
		HRVLowMs:         20,
		HRVGoodMs:        60,
		RestingHRHighBPM: 85,
		RestingHRGoodBPM: 55,
		StepsTarget:      8000,
		CaloriesTarget:   500,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.SleepTargetMin <= 0 {
		c.SleepTargetMin = d.SleepTargetMin
	}
	if c.HRVLowMs <= 0 {
		c.HRVLowMs = d.HRVLowMs
	}
	if c.HRVGoodMs <= 0 {
		c.HRVGoodMs = d.HRVGoodMs
	}
	if c.RestingHRHighBPM <= 0 {
		c.RestingHRHighBPM = d.RestingHRHighBPM
	}
	if c.RestingHRGoodBPM <= 0 {
		c.RestingHRGoodBPM = d.RestingHRGoodBPM
	}
	if c.StepsTarget <= 0 {
		c.StepsTarget = d.StepsTarget
	}
	if c.CaloriesTarget <= 0 {
		c.CaloriesTarget = d.CaloriesTarget
	}
	return c
}

// Fixed subscore weights. Never renormalized: if any measured subscore is
// missing the total is null rather than a weighted average of what remains.
const (
	weightSleep      = 0.30
	weightHRV        = 0.25
	weightRestingHR  = 0.20
	weightRecovery   = 0.15
	weightSubjective = 0.10
)

// Sleep stage penalty bands.
const (
	deepFracLow   = 0.08
	deepFracHigh  = 0.30
	remFracLow    = 0.12
	awakeFracHigh = 0.12
	stagePenalty  = 5
)

// subjectivePlaceholder is reported until direct user input exists.
const subjectivePlaceholder = 50

// Subscores holds the five component scores. Measured components are nil
// when their required input is missing; subjective is always present.
type Subscores struct {
	Sleep      *int `json:"sleep"`
	HRV        *int `json:"hrv"`
	RestingHR  *int `json:"resting_hr"`
	Recovery   *int `json:"recovery"`
	Subjective int  `json:"subjective"`
}

// Result is the readiness document for one day.
type Result struct {
	Date           string    `json:"date"`
	Score          *int      `json:"score"`
	Subscores      Subscores `json:"subscores"`
	Missing        []string  `json:"missing"`
	Tips           []string  `json:"tips"`
	Recommendation string    `json:"recommendation"`
	Status         string    `json:"status"`
}

// Score computes the readiness result for a day record. A nil record means
// the day has not synced: the total is null and every category is missing.
func Score(rec *models.DayRecord, cfg Config) *Result {
	cfg = cfg.withDefaults()

	if rec == nil {
		return &Result{
			Subscores: Subscores{Subjective: subjectivePlaceholder},
			Missing: []string{
				CategorySleep, CategoryHRV, CategoryRestingHR,
				CategoryRecovery, CategorySubjective,
			},
			Tips:           []string{"No data synced for this day yet."},
			Recommendation: "Awaiting sync",
			Status:         StatusAwaitingSync,
		}
	}

	res := &Result{
		Date:      rec.Date,
		Subscores: Subscores{Subjective: subjectivePlaceholder},
		Missing:   []string{},
		Tips:      []string{},
	}

	res.Subscores.Sleep = scoreSleep(rec, cfg, res)
	res.Subscores.HRV = scoreHRV(rec, cfg, res)
	res.Subscores.RestingHR = scoreRestingHR(rec, cfg, res)
	res.Subscores.Recovery = scoreRecovery(rec, cfg, res)

	if res.Subscores.Sleep == nil || res.Subscores.HRV == nil ||
		res.Subscores.RestingHR == nil || res.Subscores.Recovery == nil {
		res.Status = StatusAwaitingSync
		res.Recommendation = "Awaiting sync"
		return res
	}

	total := float64(*res.Subscores.Sleep)*weightSleep +
		float64(*res.Subscores.HRV)*weightHRV +
		float64(*res.Subscores.RestingHR)*weightRestingHR +
		float64(*res.Subscores.Recovery)*weightRecovery +
		float64(res.Subscores.Subjective)*weightSubjective

	score := clampScore(int(math.Round(total)))
	res.Score = &score
	res.Status = StatusOK
	res.Recommendation = recommendation(score)
	return res
}

func scoreSleep(rec *models.DayRecord, cfg Config, res *Result) *int {
	if rec.SleepTotalMin <= 0 {
		res.Missing = append(res.Missing, CategorySleep)
		res.Tips = append(res.Tips, "No sleep data recorded. Wear your device to bed to track sleep.")
		return nil
	}

	total := float64(rec.SleepTotalMin)
	score := clampScore(int(math.Round(total / float64(cfg.SleepTargetMin) * 100)))

	deepFrac := float64(rec.SleepDeepMin) / total
	remFrac := float64(rec.SleepRemMin) / total
	awakeFrac := float64(rec.SleepAwakeMin) / total

	if rec.SleepDeepMin > 0 || rec.SleepRemMin > 0 || rec.SleepCoreMin > 0 {
		if deepFrac < deepFracLow || deepFrac > deepFracHigh {
			score -= stagePenalty
		}
		if remFrac < remFracLow {
			score -= stagePenalty
		}
	}
	if awakeFrac > awakeFracHigh {
		score -= stagePenalty
	}
	score = clampScore(score)

	if rec.SleepTotalMin < 360 {
		res.Tips = append(res.Tips, fmt.Sprintf("Only %.1f hours of sleep recorded. Aim for %.1f hours.",
			total/60, float64(cfg.SleepTargetMin)/60))
	}
	return &score
}

func scoreHRV(rec *models.DayRecord, cfg Config, res *Result) *int {
	if rec.HRV == nil {
		res.Missing = append(res.Missing, CategoryHRV)
		res.Tips = append(res.Tips, "No HRV reading for this day.")
		return nil
	}
	score := clampScore(int(math.Round((*rec.HRV - cfg.HRVLowMs) / (cfg.HRVGoodMs - cfg.HRVLowMs) * 100)))
	if *rec.HRV < cfg.HRVLowMs {
		res.Tips = append(res.Tips, "HRV is well below your usual range. Prioritize recovery today.")
	}
	return &score
}

func scoreRestingHR(rec *models.DayRecord, cfg Config, res *Result) *int {
	if rec.RestingHR == nil {
		res.Missing = append(res.Missing, CategoryRestingHR)
		res.Tips = append(res.Tips, "No resting heart rate reading for this day.")
		return nil
	}
	score := clampScore(int(math.Round((cfg.RestingHRHighBPM - *rec.RestingHR) / (cfg.RestingHRHighBPM - cfg.RestingHRGoodBPM) * 100)))
	if *rec.RestingHR >= cfg.RestingHRHighBPM {
		res.Tips = append(res.Tips, "Resting heart rate is elevated. Consider an easy day.")
	}
	return &score
}

func scoreRecovery(rec *models.DayRecord, cfg Config, res *Result) *int {
	if rec.Steps == 0 && rec.ActiveCalories == 0 {
		res.Missing = append(res.Missing, CategoryRecovery)
		res.Tips = append(res.Tips, "No activity data recorded for this day.")
		return nil
	}
	// Activity load of 1.0 means the day hit both targets exactly.
	load := (float64(rec.Steps)/cfg.StepsTarget + float64(rec.ActiveCalories)/cfg.CaloriesTarget) / 2
	score := clampScore(int(math.Round(100 - 50*math.Abs(load-1.0))))
	if math.Abs(load-1.0) > 0.5 {
		if load > 1.0 {
			res.Tips = append(res.Tips, "Activity load was high. Balance it with extra recovery.")
		} else {
			res.Tips = append(res.Tips, "Activity load was low. A light walk can aid recovery.")
		}
	}
	return &score
}

func recommendation(score int) string {
	switch {
	case score >= 85:
		return "You're well recovered. A good day to push intensity."
	case score >= 70:
		return "Solid readiness. Train as planned with one main lift."
	case score >= 50:
		return "Moderate readiness. Prefer technique or easy aerobic work."
	default:
		return "Low readiness. Rest, hydrate, and avoid hard training today."
	}
}

func clampScore(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
