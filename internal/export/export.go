// Package export writes pipeline outputs as flat files: CSV tables for the
// downstream visualization/reporting layer and a JSON summary per run.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/mkerrigan/fitcluster/internal/cluster"
	"github.com/mkerrigan/fitcluster/internal/dataset"
	"github.com/mkerrigan/fitcluster/internal/features"
)

// EnsureDir makes sure the output directory exists.
func EnsureDir(dir string) error {
	return os.MkdirAll(dir, 0o755)
}

// SafeWriteFile writes data to a temp file and atomically renames it into
// place.
func SafeWriteFile(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("atomic rename: %w", err)
	}
	return nil
}

func writeCSV(path string, header []string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv: %w", err)
	}
	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		f.Close()
		return fmt.Errorf("write header: %w", err)
	}
	if err := w.WriteAll(rows); err != nil {
		f.Close()
		return fmt.Errorf("write rows: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func ftoa(x float64) string { return strconv.FormatFloat(x, 'g', -1, 64) }

// WriteMergedCSV persists the merged daily table.
func WriteMergedCSV(path string, daily []dataset.DailyRecord) error {
	header := []string{
		"user_id", "date", "steps", "calories_burned", "sedentary_minutes",
		"lightly_active_minutes", "moderately_active_minutes", "very_active_minutes",
		"time_in_bed_minutes", "sleep_duration_minutes", "sleep_efficiency",
		"deep_sleep_minutes", "rem_sleep_minutes", "light_sleep_minutes",
		"avg_resting_hr", "avg_hr", "max_hr", "min_hr", "calories_burned_hr",
	}
	rows := make([][]string, len(daily))
	for i, d := range daily {
		rows[i] = []string{
			d.UserID, d.Date.Format("2006-01-02"),
			ftoa(d.Steps), ftoa(d.CaloriesBurned), ftoa(d.SedentaryMinutes),
			ftoa(d.LightlyActiveMinutes), ftoa(d.ModeratelyActiveMinutes), ftoa(d.VeryActiveMinutes),
			ftoa(d.TimeInBedMinutes), ftoa(d.SleepDurationMinutes), ftoa(d.SleepEfficiency),
			ftoa(d.DeepSleepMinutes), ftoa(d.RemSleepMinutes), ftoa(d.LightSleepMinutes),
			ftoa(d.AvgRestingHR), ftoa(d.AvgHR), ftoa(d.MaxHR), ftoa(d.MinHR), ftoa(d.CaloriesBurnedHR),
		}
	}
	return writeCSV(path, header, rows)
}

func featureRow(u features.UserFeatureVector) []string {
	return []string{
		u.UserID,
		ftoa(u.AvgSteps), ftoa(u.AvgSedentaryMinutes), ftoa(u.AvgCaloriesBurned),
		ftoa(u.AvgSleepEfficiency), ftoa(u.AvgRestingHR), ftoa(u.AvgHighIntensityMinutes),
		ftoa(u.LifestyleScore),
	}
}

var featureHeader = append([]string{"user_id"}, features.FeatureNames()...)

// WriteUserFeaturesCSV persists the per-user feature table.
func WriteUserFeaturesCSV(path string, users []features.UserFeatureVector) error {
	rows := make([][]string, len(users))
	for i, u := range users {
		rows[i] = featureRow(u)
	}
	return writeCSV(path, featureHeader, rows)
}

// WriteClusteredCSV persists the feature table with each user's cluster
// label appended. Users and assignments are parallel slices from the same
// fit.
func WriteClusteredCSV(path string, users []features.UserFeatureVector, assignments []cluster.Assignment) error {
	header := append(append([]string{}, featureHeader...), "cluster")
	rows := make([][]string, len(users))
	for i, u := range users {
		rows[i] = append(featureRow(u), strconv.Itoa(assignments[i].Cluster))
	}
	return writeCSV(path, header, rows)
}

// WriteProfilesCSV persists the per-cluster mean profiles.
func WriteProfilesCSV(path string, profiles []cluster.Profile) error {
	header := append([]string{"cluster", "n_users"}, features.FeatureNames()...)
	rows := make([][]string, len(profiles))
	for i, p := range profiles {
		rows[i] = []string{
			strconv.Itoa(p.Cluster), strconv.Itoa(p.Users),
			ftoa(p.AvgSteps), ftoa(p.AvgSedentaryMinutes), ftoa(p.AvgCaloriesBurned),
			ftoa(p.AvgSleepEfficiency), ftoa(p.AvgRestingHR), ftoa(p.AvgHighIntensityMinutes),
			ftoa(p.LifestyleScore),
		}
	}
	return writeCSV(path, header, rows)
}

// RunSummary records the parameters and headline results of one
// clustering run.
type RunSummary struct {
	RunID           string    `json:"run_id"`
	CreatedAt       time.Time `json:"created_at"`
	Users           int       `json:"users"`
	K               int       `json:"k"`
	Seed            int64     `json:"seed"`
	Inertia         float64   `json:"inertia"`
	ClusterSizes    []int     `json:"cluster_sizes"`
	FeatureNames    []string  `json:"feature_names"`
	DroppedFeatures []string  `json:"dropped_features,omitempty"`
}

// NewRunSummary builds a summary for a fit result.
func NewRunSummary(res *cluster.Result, seed int64) RunSummary {
	sizes := make([]int, res.Model.K)
	for _, a := range res.Assignments {
		sizes[a.Cluster]++
	}
	return RunSummary{
		RunID:           uuid.NewString(),
		CreatedAt:       time.Now().UTC(),
		Users:           len(res.Assignments),
		K:               res.Model.K,
		Seed:            seed,
		Inertia:         res.Model.Inertia,
		ClusterSizes:    sizes,
		FeatureNames:    res.Model.FeatureNames,
		DroppedFeatures: res.DroppedFeatures,
	}
}

// WriteRunSummary persists the run summary as indented JSON.
func WriteRunSummary(path string, sum RunSummary) error {
	b, err := json.MarshalIndent(sum, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal run summary: %w", err)
	}
	if err := EnsureDir(filepath.Dir(path)); err != nil {
		return fmt.Errorf("mkdir output dir: %w", err)
	}
	return SafeWriteFile(path, append(b, '\n'))
}
