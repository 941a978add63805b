package dataset

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const activityHeader = "user_id,date,steps,calories_burned,sedentary_minutes,lightly_active_minutes,moderately_active_minutes,very_active_minutes\n"
const sleepHeader = "user_id,date,time_in_bed_minutes,sleep_duration_minutes,sleep_efficiency,deep_sleep_minutes,rem_sleep_minutes,light_sleep_minutes\n"
const hrHeader = "user_id,date,avg_resting_hr,avg_hr,max_hr,min_hr,calories_burned_hr\n"

func TestLoadActivityMissingColumnFails(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "activity.csv",
		"user_id,date,calories_burned,sedentary_minutes,lightly_active_minutes,moderately_active_minutes,very_active_minutes\n"+
			"user_01,2024-01-01,2100,600,200,30,20\n")

	_, err := LoadActivity(path)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Contains(t, verr.Missing, "steps")
}

func TestLoadActivityMalformedNumberFails(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "activity.csv",
		activityHeader+"user_01,2024-01-01,abc,2100,600,200,30,20\n")

	_, err := LoadActivity(path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "steps")
}

func TestLoadActivityMedianFillAfterMerge(t *testing.T) {
	dir := t.TempDir()
	activity, err := LoadActivity(writeFile(t, dir, "activity.csv", activityHeader+
		"user_01,2024-01-01,,2000,600,200,30,20\n"+
		"user_01,2024-01-02,4000,2000,600,200,30,20\n"+
		"user_01,2024-01-03,6000,2000,600,200,30,20\n"+
		"user_01,2024-01-04,8000,2000,600,200,30,20\n"))
	require.NoError(t, err)
	sleep, err := LoadSleep(writeFile(t, dir, "sleep.csv", sleepHeader+
		"user_01,2024-01-01,480,420,0.875,90,120,210\n"+
		"user_01,2024-01-02,480,420,0.875,90,120,210\n"+
		"user_01,2024-01-03,480,420,0.875,90,120,210\n"+
		"user_01,2024-01-04,480,420,0.875,90,120,210\n"))
	require.NoError(t, err)
	hr, err := LoadHeartRate(writeFile(t, dir, "heart_rate.csv", hrHeader+
		"user_01,2024-01-01,60,70,110,55,2200\n"+
		"user_01,2024-01-02,60,70,110,55,2200\n"+
		"user_01,2024-01-03,60,70,110,55,2200\n"+
		"user_01,2024-01-04,60,70,110,55,2200\n"))
	require.NoError(t, err)

	merged := Merge(activity, sleep, hr)
	require.Len(t, merged, 4)
	// The missing steps cell becomes the median of 4000, 6000, 8000.
	require.Equal(t, 6000.0, merged[0].Steps)
}

func TestMergeInnerJoinDropsPartialDays(t *testing.T) {
	dir := t.TempDir()
	activity, err := LoadActivity(writeFile(t, dir, "activity.csv", activityHeader+
		"user_01,2024-01-01,5000,2000,600,200,30,20\n"+
		"user_01,2024-01-02,7000,2100,590,210,35,25\n"))
	require.NoError(t, err)
	sleep, err := LoadSleep(writeFile(t, dir, "sleep.csv", sleepHeader+
		"user_01,2024-01-01,480,420,0.875,90,120,210\n"+
		"user_01,2024-01-02,500,430,0.86,95,125,210\n"))
	require.NoError(t, err)
	// Heart rate has day 1 only, so day 2 is dropped by the inner join.
	hr, err := LoadHeartRate(writeFile(t, dir, "heart_rate.csv", hrHeader+
		"user_01,2024-01-01,60,70,110,55,2200\n"))
	require.NoError(t, err)

	merged := Merge(activity, sleep, hr)
	require.Len(t, merged, 1)
	require.Equal(t, "user_01", merged[0].UserID)
	require.Equal(t, 5000.0, merged[0].Steps)
	require.Equal(t, 0.875, merged[0].SleepEfficiency)
	require.Equal(t, 60.0, merged[0].AvgRestingHR)
}

func TestMergeDeduplicatesKeepingFirst(t *testing.T) {
	dir := t.TempDir()
	activity, err := LoadActivity(writeFile(t, dir, "activity.csv", activityHeader+
		"user_01,2024-01-01,5000,2000,600,200,30,20\n"+
		"user_01,2024-01-01,9999,2000,600,200,30,20\n"))
	require.NoError(t, err)
	sleep, err := LoadSleep(writeFile(t, dir, "sleep.csv", sleepHeader+
		"user_01,2024-01-01,480,420,0.875,90,120,210\n"))
	require.NoError(t, err)
	hr, err := LoadHeartRate(writeFile(t, dir, "heart_rate.csv", hrHeader+
		"user_01,2024-01-01,60,70,110,55,2200\n"))
	require.NoError(t, err)

	merged := Merge(activity, sleep, hr)
	require.Len(t, merged, 1)
	require.Equal(t, 5000.0, merged[0].Steps)
}

func TestMergeDerivesSleepEfficiencyWhenColumnAbsent(t *testing.T) {
	dir := t.TempDir()
	activity, err := LoadActivity(writeFile(t, dir, "activity.csv", activityHeader+
		"user_01,2024-01-01,5000,2000,600,200,30,20\n"+
		"user_01,2024-01-02,5000,2000,600,200,30,20\n"))
	require.NoError(t, err)
	// No sleep_efficiency column at all; day 2 has zero time in bed.
	sleep, err := LoadSleep(writeFile(t, dir, "sleep.csv",
		"user_id,date,time_in_bed_minutes,sleep_duration_minutes,deep_sleep_minutes,rem_sleep_minutes,light_sleep_minutes\n"+
			"user_01,2024-01-01,480,420,90,120,210\n"+
			"user_01,2024-01-02,0,0,0,0,0\n"))
	require.NoError(t, err)
	hr, err := LoadHeartRate(writeFile(t, dir, "heart_rate.csv", hrHeader+
		"user_01,2024-01-01,60,70,110,55,2200\n"+
		"user_01,2024-01-02,60,70,110,55,2200\n"))
	require.NoError(t, err)

	merged := Merge(activity, sleep, hr)
	require.Len(t, merged, 2)
	require.InDelta(t, 420.0/480.0, merged[0].SleepEfficiency, 1e-12)
	require.Equal(t, 0.0, merged[1].SleepEfficiency)
}

func TestMergeSortsByUserThenDate(t *testing.T) {
	dir := t.TempDir()
	activity, err := LoadActivity(writeFile(t, dir, "activity.csv", activityHeader+
		"user_02,2024-01-01,5000,2000,600,200,30,20\n"+
		"user_01,2024-01-02,5000,2000,600,200,30,20\n"+
		"user_01,2024-01-01,5000,2000,600,200,30,20\n"))
	require.NoError(t, err)
	sleep, err := LoadSleep(writeFile(t, dir, "sleep.csv", sleepHeader+
		"user_02,2024-01-01,480,420,0.875,90,120,210\n"+
		"user_01,2024-01-02,480,420,0.875,90,120,210\n"+
		"user_01,2024-01-01,480,420,0.875,90,120,210\n"))
	require.NoError(t, err)
	hr, err := LoadHeartRate(writeFile(t, dir, "heart_rate.csv", hrHeader+
		"user_02,2024-01-01,60,70,110,55,2200\n"+
		"user_01,2024-01-02,60,70,110,55,2200\n"+
		"user_01,2024-01-01,60,70,110,55,2200\n"))
	require.NoError(t, err)

	merged := Merge(activity, sleep, hr)
	require.Len(t, merged, 3)
	require.Equal(t, "user_01", merged[0].UserID)
	require.Equal(t, "user_01", merged[1].UserID)
	require.True(t, merged[0].Date.Before(merged[1].Date))
	require.Equal(t, "user_02", merged[2].UserID)
}

func TestLoadDirMissingFile(t *testing.T) {
	dir := t.TempDir()
	_, _, _, err := LoadDir(dir)
	require.Error(t, err)
	require.False(t, errors.As(err, new(*ValidationError)))
}
