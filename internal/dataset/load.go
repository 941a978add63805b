package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// Conventional file names inside a data directory.
const (
	ActivityFile  = "activity.csv"
	SleepFile     = "sleep.csv"
	HeartRateFile = "heart_rate.csv"
)

// rawTable is a parsed CSV with a case-insensitive header index.
type rawTable struct {
	name   string
	header map[string]int
	rows   [][]string
}

func readCSV(path string, required []string) (*rawTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	name := filepath.Base(path)
	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &ValidationError{Source: name, Missing: required}
		}
		return nil, fmt.Errorf("%s: read header: %w", name, err)
	}
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	var missing []string
	for _, col := range required {
		if _, ok := idx[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, &ValidationError{Source: name, Missing: missing}
	}

	t := &rawTable{name: name, header: idx}
	for {
		rec, err := r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("%s: read row %d: %w", name, len(t.rows)+2, err)
		}
		row := make([]string, len(rec))
		copy(row, rec)
		t.rows = append(t.rows, row)
	}
	return t, nil
}

// cell returns the trimmed value of a column, or "" when the row is short
// or the column absent.
func (t *rawTable) cell(row []string, col string) string {
	i, ok := t.header[col]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// number parses a numeric cell. Empty cells become NaN and are repaired
// later by median fill; anything else unparsable is a hard error.
func (t *rawTable) number(row []string, col string, line int) (float64, error) {
	v := t.cell(row, col)
	if v == "" {
		return math.NaN(), nil
	}
	x, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: row %d: column %q: parse number %q: %w", t.name, line, col, v, err)
	}
	return x, nil
}

func (t *rawTable) date(row []string, line int) (time.Time, error) {
	v := t.cell(row, "date")
	d, err := time.Parse(dateLayout, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s: row %d: parse date %q: %w", t.name, line, v, err)
	}
	return d, nil
}

var activityColumns = []string{
	"user_id", "date", "steps", "calories_burned", "sedentary_minutes",
	"lightly_active_minutes", "moderately_active_minutes", "very_active_minutes",
}

// LoadActivity reads and parses the activity source.
func LoadActivity(path string) ([]ActivityRecord, error) {
	t, err := readCSV(path, activityColumns)
	if err != nil {
		return nil, err
	}
	out := make([]ActivityRecord, 0, len(t.rows))
	for i, row := range t.rows {
		line := i + 2
		rec := ActivityRecord{UserID: t.cell(row, "user_id")}
		if rec.Date, err = t.date(row, line); err != nil {
			return nil, err
		}
		fields := []struct {
			col string
			dst *float64
		}{
			{"steps", &rec.Steps},
			{"calories_burned", &rec.CaloriesBurned},
			{"sedentary_minutes", &rec.SedentaryMinutes},
			{"lightly_active_minutes", &rec.LightlyActiveMinutes},
			{"moderately_active_minutes", &rec.ModeratelyActiveMinutes},
			{"very_active_minutes", &rec.VeryActiveMinutes},
		}
		for _, f := range fields {
			if *f.dst, err = t.number(row, f.col, line); err != nil {
				return nil, err
			}
		}
		out = append(out, rec)
	}
	return out, nil
}

// sleep_efficiency is optional: the merger derives it from duration and
// time in bed when the column or a cell is missing.
var sleepColumns = []string{
	"user_id", "date", "time_in_bed_minutes", "sleep_duration_minutes",
	"deep_sleep_minutes", "rem_sleep_minutes", "light_sleep_minutes",
}

// LoadSleep reads and parses the sleep source.
func LoadSleep(path string) ([]SleepRecord, error) {
	t, err := readCSV(path, sleepColumns)
	if err != nil {
		return nil, err
	}
	out := make([]SleepRecord, 0, len(t.rows))
	for i, row := range t.rows {
		line := i + 2
		rec := SleepRecord{UserID: t.cell(row, "user_id")}
		if rec.Date, err = t.date(row, line); err != nil {
			return nil, err
		}
		fields := []struct {
			col string
			dst *float64
		}{
			{"time_in_bed_minutes", &rec.TimeInBedMinutes},
			{"sleep_duration_minutes", &rec.SleepDurationMinutes},
			{"sleep_efficiency", &rec.SleepEfficiency},
			{"deep_sleep_minutes", &rec.DeepSleepMinutes},
			{"rem_sleep_minutes", &rec.RemSleepMinutes},
			{"light_sleep_minutes", &rec.LightSleepMinutes},
		}
		for _, f := range fields {
			if *f.dst, err = t.number(row, f.col, line); err != nil {
				return nil, err
			}
		}
		out = append(out, rec)
	}
	return out, nil
}

var heartRateColumns = []string{
	"user_id", "date", "avg_resting_hr", "avg_hr", "max_hr", "min_hr", "calories_burned_hr",
}

// LoadHeartRate reads and parses the heart-rate source.
func LoadHeartRate(path string) ([]HeartRateRecord, error) {
	t, err := readCSV(path, heartRateColumns)
	if err != nil {
		return nil, err
	}
	out := make([]HeartRateRecord, 0, len(t.rows))
	for i, row := range t.rows {
		line := i + 2
		rec := HeartRateRecord{UserID: t.cell(row, "user_id")}
		if rec.Date, err = t.date(row, line); err != nil {
			return nil, err
		}
		fields := []struct {
			col string
			dst *float64
		}{
			{"avg_resting_hr", &rec.AvgRestingHR},
			{"avg_hr", &rec.AvgHR},
			{"max_hr", &rec.MaxHR},
			{"min_hr", &rec.MinHR},
			{"calories_burned_hr", &rec.CaloriesBurnedHR},
		}
		for _, f := range fields {
			if *f.dst, err = t.number(row, f.col, line); err != nil {
				return nil, err
			}
		}
		out = append(out, rec)
	}
	return out, nil
}

// LoadDir loads the three conventionally named sources from dir.
func LoadDir(dir string) ([]ActivityRecord, []SleepRecord, []HeartRateRecord, error) {
	activity, err := LoadActivity(filepath.Join(dir, ActivityFile))
	if err != nil {
		return nil, nil, nil, err
	}
	sleep, err := LoadSleep(filepath.Join(dir, SleepFile))
	if err != nil {
		return nil, nil, nil, err
	}
	hr, err := LoadHeartRate(filepath.Join(dir, HeartRateFile))
	if err != nil {
		return nil, nil, nil, err
	}
	return activity, sleep, hr, nil
}
