// Package features aggregates the merged daily table into one summary
// vector per user, the input to clustering.
package features

import (
	"errors"
	"math"
	"sort"

	"github.com/mkerrigan/fitcluster/internal/dataset"
)

// ErrEmptyTable is returned when the daily table has no rows.
var ErrEmptyTable = errors.New("features: empty daily table")

// UserFeatureVector is one row per user: means of the daily metrics plus
// the composite lifestyle score. Immutable once produced.
type UserFeatureVector struct {
	UserID                  string
	AvgSteps                float64
	AvgSedentaryMinutes     float64
	AvgCaloriesBurned       float64
	AvgSleepEfficiency      float64
	AvgRestingHR            float64
	AvgHighIntensityMinutes float64
	LifestyleScore          float64
}

// ScoreWeights pins the lifestyle score formula: each daily component is
// scaled against a fixed reference and clipped, then combined as a weighted
// sum. Fixed references (rather than population min-max) keep the score
// identical at report time and for out-of-sample users.
type ScoreWeights struct {
	Steps     float64 // weight of clip(steps/StepsRef, 0, 2)
	Sleep     float64 // weight of 2*sleep_efficiency
	Activity  float64 // weight of clip(high_intensity/ActivityRef, 0, 2)
	HeartRate float64 // weight of clip((RestingHRBase-resting_hr)/RestingHRRange, 0, 1)

	StepsRef       float64
	ActivityRef    float64
	RestingHRBase  float64
	RestingHRRange float64
}

// DefaultScoreWeights returns the pinned configuration: 10k steps, an hour
// of high-intensity activity, and a 55 bpm resting HR each score maximally.
func DefaultScoreWeights() ScoreWeights {
	return ScoreWeights{
		Steps:          0.30,
		Sleep:          0.25,
		Activity:       0.25,
		HeartRate:      0.20,
		StepsRef:       10000,
		ActivityRef:    60,
		RestingHRBase:  75,
		RestingHRRange: 20,
	}
}

// DailyScore computes the lifestyle score for a single day.
func (w ScoreWeights) DailyScore(d dataset.DailyRecord) float64 {
	steps := clip(d.Steps/w.StepsRef, 0, 2)
	sleep := 2 * d.SleepEfficiency
	activity := clip(d.HighIntensityMinutes()/w.ActivityRef, 0, 2)
	hr := clip((w.RestingHRBase-d.AvgRestingHR)/w.RestingHRRange, 0, 1)
	return w.Steps*steps + w.Sleep*sleep + w.Activity*activity + w.HeartRate*hr
}

// ComputeUserFeatures groups the daily table by user and averages each
// metric over however many days that user has. Exactly one output row per
// distinct user, sorted by user id; every field is finite, with 0 standing
// in for any value that would otherwise be NaN.
func ComputeUserFeatures(daily []dataset.DailyRecord, w ScoreWeights) ([]UserFeatureVector, error) {
	if len(daily) == 0 {
		return nil, ErrEmptyTable
	}

	type acc struct {
		days          float64
		steps         float64
		sedentary     float64
		calories      float64
		sleepEff      float64
		restingHR     float64
		highIntensity float64
		score         float64
	}
	byUser := make(map[string]*acc)
	order := make([]string, 0)
	for _, d := range daily {
		a := byUser[d.UserID]
		if a == nil {
			a = &acc{}
			byUser[d.UserID] = a
			order = append(order, d.UserID)
		}
		a.days++
		a.steps += d.Steps
		a.sedentary += d.SedentaryMinutes
		a.calories += d.CaloriesBurned
		a.sleepEff += d.SleepEfficiency
		a.restingHR += d.AvgRestingHR
		a.highIntensity += d.HighIntensityMinutes()
		a.score += w.DailyScore(d)
	}
	sort.Strings(order)

	out := make([]UserFeatureVector, 0, len(order))
	for _, user := range order {
		a := byUser[user]
		out = append(out, UserFeatureVector{
			UserID:                  user,
			AvgSteps:                finite(a.steps / a.days),
			AvgSedentaryMinutes:     finite(a.sedentary / a.days),
			AvgCaloriesBurned:       finite(a.calories / a.days),
			AvgSleepEfficiency:      finite(a.sleepEff / a.days),
			AvgRestingHR:            finite(a.restingHR / a.days),
			AvgHighIntensityMinutes: finite(a.highIntensity / a.days),
			LifestyleScore:          finite(a.score / a.days),
		})
	}
	return out, nil
}

// FeatureNames lists the clustering feature columns in matrix order.
func FeatureNames() []string {
	return []string{
		"avg_steps",
		"avg_sedentary_minutes",
		"avg_calories_burned",
		"avg_sleep_efficiency",
		"avg_resting_hr",
		"avg_high_intensity_minutes",
		"lifestyle_score",
	}
}

// Vector returns the feature values in FeatureNames order.
func (u UserFeatureVector) Vector() []float64 {
	return []float64{
		u.AvgSteps,
		u.AvgSedentaryMinutes,
		u.AvgCaloriesBurned,
		u.AvgSleepEfficiency,
		u.AvgRestingHR,
		u.AvgHighIntensityMinutes,
		u.LifestyleScore,
	}
}

func clip(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

func finite(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0
	}
	return x
}
