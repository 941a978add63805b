package dataset

import (
	"math"
	"sort"
	"time"
)

type mergeKey struct {
	user string
	date string
}

func keyOf(user string, date time.Time) mergeKey {
	return mergeKey{user: user, date: date.Format(dateLayout)}
}

// Merge deduplicates and repairs each source, then inner-joins them on
// (user_id, date) into the daily table. Rows missing from any source are
// dropped. Output is sorted by user then date.
func Merge(activity []ActivityRecord, sleep []SleepRecord, hr []HeartRateRecord) []DailyRecord {
	activity = dedupeActivity(activity)
	sleep = dedupeSleep(sleep)
	hr = dedupeHeartRate(hr)

	medianFill(activity, activityFields)
	medianFill(sleep, sleepFields)
	medianFill(hr, heartRateFields)
	deriveSleepEfficiency(sleep)

	sleepByKey := make(map[mergeKey]SleepRecord, len(sleep))
	for _, s := range sleep {
		sleepByKey[keyOf(s.UserID, s.Date)] = s
	}
	hrByKey := make(map[mergeKey]HeartRateRecord, len(hr))
	for _, h := range hr {
		hrByKey[keyOf(h.UserID, h.Date)] = h
	}

	merged := make([]DailyRecord, 0, len(activity))
	for _, a := range activity {
		k := keyOf(a.UserID, a.Date)
		s, ok := sleepByKey[k]
		if !ok {
			continue
		}
		h, ok := hrByKey[k]
		if !ok {
			continue
		}
		merged = append(merged, DailyRecord{
			UserID:                  a.UserID,
			Date:                    a.Date,
			Steps:                   a.Steps,
			CaloriesBurned:          a.CaloriesBurned,
			SedentaryMinutes:        a.SedentaryMinutes,
			LightlyActiveMinutes:    a.LightlyActiveMinutes,
			ModeratelyActiveMinutes: a.ModeratelyActiveMinutes,
			VeryActiveMinutes:       a.VeryActiveMinutes,
			TimeInBedMinutes:        s.TimeInBedMinutes,
			SleepDurationMinutes:    s.SleepDurationMinutes,
			SleepEfficiency:         s.SleepEfficiency,
			DeepSleepMinutes:        s.DeepSleepMinutes,
			RemSleepMinutes:         s.RemSleepMinutes,
			LightSleepMinutes:       s.LightSleepMinutes,
			AvgRestingHR:            h.AvgRestingHR,
			AvgHR:                   h.AvgHR,
			MaxHR:                   h.MaxHR,
			MinHR:                   h.MinHR,
			CaloriesBurnedHR:        h.CaloriesBurnedHR,
		})
	}

	sort.Slice(merged, func(i, j int) bool {
		if merged[i].UserID != merged[j].UserID {
			return merged[i].UserID < merged[j].UserID
		}
		return merged[i].Date.Before(merged[j].Date)
	})
	return merged
}

func dedupeActivity(in []ActivityRecord) []ActivityRecord {
	seen := make(map[mergeKey]struct{}, len(in))
	out := in[:0:0]
	for _, r := range in {
		k := keyOf(r.UserID, r.Date)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, r)
	}
	return out
}

func dedupeSleep(in []SleepRecord) []SleepRecord {
	seen := make(map[mergeKey]struct{}, len(in))
	out := in[:0:0]
	for _, r := range in {
		k := keyOf(r.UserID, r.Date)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, r)
	}
	return out
}

func dedupeHeartRate(in []HeartRateRecord) []HeartRateRecord {
	seen := make(map[mergeKey]struct{}, len(in))
	out := in[:0:0]
	for _, r := range in {
		k := keyOf(r.UserID, r.Date)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, r)
	}
	return out
}

// Field accessors drive median fill without string-keyed column lookups.
var activityFields = []func(*ActivityRecord) *float64{
	func(r *ActivityRecord) *float64 { return &r.Steps },
	func(r *ActivityRecord) *float64 { return &r.CaloriesBurned },
	func(r *ActivityRecord) *float64 { return &r.SedentaryMinutes },
	func(r *ActivityRecord) *float64 { return &r.LightlyActiveMinutes },
	func(r *ActivityRecord) *float64 { return &r.ModeratelyActiveMinutes },
	func(r *ActivityRecord) *float64 { return &r.VeryActiveMinutes },
}

// sleep_efficiency is deliberately absent: missing cells are derived from
// duration and time in bed instead of filled with a median.
var sleepFields = []func(*SleepRecord) *float64{
	func(r *SleepRecord) *float64 { return &r.TimeInBedMinutes },
	func(r *SleepRecord) *float64 { return &r.SleepDurationMinutes },
	func(r *SleepRecord) *float64 { return &r.DeepSleepMinutes },
	func(r *SleepRecord) *float64 { return &r.RemSleepMinutes },
	func(r *SleepRecord) *float64 { return &r.LightSleepMinutes },
}

var heartRateFields = []func(*HeartRateRecord) *float64{
	func(r *HeartRateRecord) *float64 { return &r.AvgRestingHR },
	func(r *HeartRateRecord) *float64 { return &r.AvgHR },
	func(r *HeartRateRecord) *float64 { return &r.MaxHR },
	func(r *HeartRateRecord) *float64 { return &r.MinHR },
	func(r *HeartRateRecord) *float64 { return &r.CaloriesBurnedHR },
}

// medianFill replaces NaN cells with the column median over the non-missing
// values. A column that is missing everywhere falls back to 0.
func medianFill[R any](rows []R, fields []func(*R) *float64) {
	for _, field := range fields {
		var present []float64
		for i := range rows {
			if v := *field(&rows[i]); !math.IsNaN(v) {
				present = append(present, v)
			}
		}
		if len(present) == len(rows) {
			continue
		}
		m := median(present)
		for i := range rows {
			if math.IsNaN(*field(&rows[i])) {
				*field(&rows[i]) = m
			}
		}
	}
}

func median(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	cp := make([]float64, len(vals))
	copy(cp, vals)
	sort.Float64s(cp)
	mid := len(cp) / 2
	if len(cp)%2 == 1 {
		return cp[mid]
	}
	return (cp[mid-1] + cp[mid]) / 2
}

// deriveSleepEfficiency fills missing efficiency cells as
// duration / time-in-bed clipped to [0, 1], with 0 when time in bed is not
// positive.
func deriveSleepEfficiency(sleep []SleepRecord) {
	for i := range sleep {
		if !math.IsNaN(sleep[i].SleepEfficiency) {
			continue
		}
		if sleep[i].TimeInBedMinutes > 0 {
			eff := sleep[i].SleepDurationMinutes / sleep[i].TimeInBedMinutes
			sleep[i].SleepEfficiency = math.Min(math.Max(eff, 0), 1)
		} else {
			sleep[i].SleepEfficiency = 0
		}
	}
}
