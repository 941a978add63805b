package cmd

import (
	"fmt"

	cfgpkg "github.com/mkerrigan/fitcluster/internal/config"
	"github.com/mkerrigan/fitcluster/internal/dataset"
	"github.com/mkerrigan/fitcluster/internal/features"
)

// scoreWeights maps the pinned score configuration onto the feature
// engineer's weights.
func scoreWeights(s cfgpkg.Score) features.ScoreWeights {
	return features.ScoreWeights{
		Steps:          s.StepsWeight,
		Sleep:          s.SleepWeight,
		Activity:       s.ActivityWeight,
		HeartRate:      s.HeartRateWeight,
		StepsRef:       s.StepsRef,
		ActivityRef:    s.ActivityRef,
		RestingHRBase:  s.RestingHRBase,
		RestingHRRange: s.RestingHRRange,
	}
}

// loadMerged runs the Loader/Merger stage and prints per-source counts.
func loadMerged(c *cfgpkg.Global) ([]dataset.DailyRecord, error) {
	activity, sleep, hr, err := dataset.LoadDir(c.DataDir)
	if err != nil {
		return nil, err
	}
	fmt.Printf("Loaded %d activity, %d sleep, %d heart-rate records from %s\n",
		len(activity), len(sleep), len(hr), c.DataDir)

	daily := dataset.Merge(activity, sleep, hr)
	fmt.Printf("Merged daily table: %d rows\n", len(daily))
	return daily, nil
}

// computeFeatures runs the Feature Engineer stage.
func computeFeatures(c *cfgpkg.Global, daily []dataset.DailyRecord) ([]features.UserFeatureVector, error) {
	users, err := features.ComputeUserFeatures(daily, scoreWeights(c.Score))
	if err != nil {
		return nil, err
	}
	fmt.Printf("User feature table: %d users\n", len(users))
	return users, nil
}
