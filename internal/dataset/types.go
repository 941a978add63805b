package dataset

import "time"

// ActivityRecord is one row of the activity source, keyed by (user, date).
type ActivityRecord struct {
	UserID                  string
	Date                    time.Time
	Steps                   float64
	CaloriesBurned          float64
	SedentaryMinutes        float64
	LightlyActiveMinutes    float64
	ModeratelyActiveMinutes float64
	VeryActiveMinutes       float64
}

// SleepRecord is one row of the sleep source, keyed by (user, date).
// SleepEfficiency may arrive missing; the merger derives it from
// SleepDurationMinutes / TimeInBedMinutes in that case.
type SleepRecord struct {
	UserID               string
	Date                 time.Time
	TimeInBedMinutes     float64
	SleepDurationMinutes float64
	SleepEfficiency      float64
	DeepSleepMinutes     float64
	RemSleepMinutes      float64
	LightSleepMinutes    float64
}

// HeartRateRecord is one row of the heart-rate source, keyed by (user, date).
type HeartRateRecord struct {
	UserID           string
	Date             time.Time
	AvgRestingHR     float64
	AvgHR            float64
	MaxHR            float64
	MinHR            float64
	CaloriesBurnedHR float64
}

// DailyRecord is one merged row per (user, date): the inner join of the
// three sources after deduplication and median fill. (UserID, Date) is
// unique within a merged table.
type DailyRecord struct {
	UserID string
	Date   time.Time

	Steps                   float64
	CaloriesBurned          float64
	SedentaryMinutes        float64
	LightlyActiveMinutes    float64
	ModeratelyActiveMinutes float64
	VeryActiveMinutes       float64

	TimeInBedMinutes     float64
	SleepDurationMinutes float64
	SleepEfficiency      float64
	DeepSleepMinutes     float64
	RemSleepMinutes      float64
	LightSleepMinutes    float64

	AvgRestingHR     float64
	AvgHR            float64
	MaxHR            float64
	MinHR            float64
	CaloriesBurnedHR float64
}

// HighIntensityMinutes is moderately plus very active minutes for the day.
func (d DailyRecord) HighIntensityMinutes() float64 {
	return d.ModeratelyActiveMinutes + d.VeryActiveMinutes
}
