// Package cluster standardizes the per-user feature matrix and fits
// k-means, producing a label per user and an interpretable mean profile
// per cluster.
package cluster

import (
	"math/rand"

	"github.com/mkerrigan/fitcluster/internal/features"
)

// Defaults mirror the pinned pipeline configuration.
const (
	DefaultSeed    int64   = 42
	DefaultNInit           = 10
	DefaultMaxIter         = 300
	DefaultTol     float64 = 1e-4
)

// Options tunes a fit. Zero fields fall back to the defaults above
// (a Seed of 0 or below selects DefaultSeed).
type Options struct {
	Seed    int64
	NInit   int
	MaxIter int
	Tol     float64

	// DropDegenerate removes zero-variance feature columns from scaling
	// (recording them in Result.DroppedFeatures) instead of failing.
	DropDegenerate bool
}

func (o Options) withDefaults() Options {
	if o.Seed <= 0 {
		o.Seed = DefaultSeed
	}
	if o.NInit <= 0 {
		o.NInit = DefaultNInit
	}
	if o.MaxIter <= 0 {
		o.MaxIter = DefaultMaxIter
	}
	if o.Tol <= 0 {
		o.Tol = DefaultTol
	}
	return o
}

// Assignment pairs a user with its cluster label in [0, k). Labels are a
// pure function of the fit; their numbering carries no meaning and is not
// stable across refits.
type Assignment struct {
	UserID  string
	Cluster int
}

// Profile is the mean of the original (unscaled) features over the users
// assigned to one cluster.
type Profile struct {
	Cluster                 int
	Users                   int
	AvgSteps                float64
	AvgSedentaryMinutes     float64
	AvgCaloriesBurned       float64
	AvgSleepEfficiency      float64
	AvgRestingHR            float64
	AvgHighIntensityMinutes float64
	LifestyleScore          float64
}

// Model is the fitted clustering model: centroids in standardized space,
// the scaler that produced that space, and the features it covers.
type Model struct {
	FeatureNames []string
	Scaler       *StandardScaler
	Centroids    [][]float64
	Inertia      float64
	K            int
}

// Result is the output of one fit.
type Result struct {
	Assignments     []Assignment
	Profiles        []Profile
	Model           *Model
	DroppedFeatures []string
}

// FitClusters standardizes the user feature matrix and runs seeded
// k-means. Every user receives exactly one label; the profile table has
// exactly k rows. Fails with InsufficientDataError when len(users) < k or
// k < 1, and with DegenerateInputError when a feature column has zero
// variance and opts.DropDegenerate is unset.
func FitClusters(users []features.UserFeatureVector, k int, opts Options) (*Result, error) {
	if k < 1 || len(users) < k {
		return nil, &InsufficientDataError{Users: len(users), K: k}
	}
	opts = opts.withDefaults()

	columns := features.FeatureNames()
	x := make([][]float64, len(users))
	for i, u := range users {
		x[i] = u.Vector()
	}

	scaler, err := FitScaler(x, columns)
	var dropped []string
	if err != nil {
		degErr, ok := err.(*DegenerateInputError)
		if !ok || !opts.DropDegenerate {
			return nil, err
		}
		dropped = degErr.Columns
		x, columns = dropColumns(x, columns, dropped)
		if len(columns) == 0 {
			return nil, degErr
		}
		if scaler, err = FitScaler(x, columns); err != nil {
			return nil, err
		}
	}
	scaled := scaler.Transform(x)

	km := &kMeans{
		k:       k,
		maxIter: opts.MaxIter,
		tol:     opts.Tol,
		rng:     rand.New(rand.NewSource(opts.Seed)),
	}
	labels, centroids, inertia := km.fit(scaled, opts.NInit)

	assignments := make([]Assignment, len(users))
	for i, u := range users {
		assignments[i] = Assignment{UserID: u.UserID, Cluster: labels[i]}
	}

	return &Result{
		Assignments:     assignments,
		Profiles:        profiles(users, labels, k),
		DroppedFeatures: dropped,
		Model: &Model{
			FeatureNames: columns,
			Scaler:       scaler,
			Centroids:    centroids,
			Inertia:      inertia,
			K:            k,
		},
	}, nil
}

// profiles averages the unscaled features of each cluster's members.
func profiles(users []features.UserFeatureVector, labels []int, k int) []Profile {
	out := make([]Profile, k)
	for c := range out {
		out[c].Cluster = c
	}
	for i, u := range users {
		p := &out[labels[i]]
		p.Users++
		p.AvgSteps += u.AvgSteps
		p.AvgSedentaryMinutes += u.AvgSedentaryMinutes
		p.AvgCaloriesBurned += u.AvgCaloriesBurned
		p.AvgSleepEfficiency += u.AvgSleepEfficiency
		p.AvgRestingHR += u.AvgRestingHR
		p.AvgHighIntensityMinutes += u.AvgHighIntensityMinutes
		p.LifestyleScore += u.LifestyleScore
	}
	for c := range out {
		if out[c].Users == 0 {
			continue
		}
		n := float64(out[c].Users)
		out[c].AvgSteps /= n
		out[c].AvgSedentaryMinutes /= n
		out[c].AvgCaloriesBurned /= n
		out[c].AvgSleepEfficiency /= n
		out[c].AvgRestingHR /= n
		out[c].AvgHighIntensityMinutes /= n
		out[c].LifestyleScore /= n
	}
	return out
}

func dropColumns(x [][]float64, columns, drop []string) ([][]float64, []string) {
	droppedSet := make(map[string]struct{}, len(drop))
	for _, d := range drop {
		droppedSet[d] = struct{}{}
	}
	var keep []int
	var kept []string
	for j, name := range columns {
		if _, gone := droppedSet[name]; gone {
			continue
		}
		keep = append(keep, j)
		kept = append(kept, name)
	}
	out := make([][]float64, len(x))
	for i, row := range x {
		nr := make([]float64, len(keep))
		for jj, j := range keep {
			nr[jj] = row[j]
		}
		out[i] = nr
	}
	return out, kept
}
