package cluster

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mkerrigan/fitcluster/internal/features"
)

// vec builds a feature vector where every column varies with v, so no
// column is degenerate unless a test wants it to be.
func vec(id string, v float64) features.UserFeatureVector {
	return features.UserFeatureVector{
		UserID:                  id,
		AvgSteps:                v * 1000,
		AvgSedentaryMinutes:     700 - v*10,
		AvgCaloriesBurned:       1800 + v*50,
		AvgSleepEfficiency:      0.70 + v*0.01,
		AvgRestingHR:            75 - v,
		AvgHighIntensityMinutes: v * 5,
		LifestyleScore:          v * 0.1,
	}
}

func population(n int) []features.UserFeatureVector {
	users := make([]features.UserFeatureVector, n)
	for i := range users {
		// Two loose groups: low values and high values.
		v := float64(i%3) + 1
		if i >= n/2 {
			v += 8
		}
		users[i] = vec(fmt.Sprintf("user_%02d", i+1), v)
	}
	return users
}

func TestFitClustersEveryUserGetsOneLabel(t *testing.T) {
	users := population(12)
	for k := 1; k <= 4; k++ {
		res, err := FitClusters(users, k, Options{})
		require.NoError(t, err, "k=%d", k)
		require.Len(t, res.Assignments, len(users))
		for i, a := range res.Assignments {
			require.Equal(t, users[i].UserID, a.UserID)
			require.GreaterOrEqual(t, a.Cluster, 0)
			require.Less(t, a.Cluster, k)
		}
		require.Len(t, res.Profiles, k)
	}
}

func TestFitClustersDeterministicWithFixedSeed(t *testing.T) {
	users := population(15)
	opts := Options{Seed: 42}
	first, err := FitClusters(users, 3, opts)
	require.NoError(t, err)
	second, err := FitClusters(users, 3, opts)
	require.NoError(t, err)
	require.Equal(t, first.Assignments, second.Assignments)
	require.Equal(t, first.Profiles, second.Profiles)
	require.Equal(t, first.Model.Inertia, second.Model.Inertia)
}

func TestProfilesAreMemberMeansOfUnscaledFeatures(t *testing.T) {
	users := population(10)
	res, err := FitClusters(users, 2, Options{})
	require.NoError(t, err)

	for _, p := range res.Profiles {
		var n float64
		var steps, score float64
		for i, a := range res.Assignments {
			if a.Cluster != p.Cluster {
				continue
			}
			n++
			steps += users[i].AvgSteps
			score += users[i].LifestyleScore
		}
		require.Equal(t, int(n), p.Users)
		require.InDelta(t, steps/n, p.AvgSteps, 1e-9)
		require.InDelta(t, score/n, p.LifestyleScore, 1e-9)
	}
}

func TestThreeUserStepBoundary(t *testing.T) {
	// Only avg_steps varies; every other column is constant and must be
	// dropped from scaling. 9000 is nearer 15000 than 2000, so the
	// 2000-step user ends up isolated.
	base := vec("", 1)
	mk := func(id string, steps float64) features.UserFeatureVector {
		u := base
		u.UserID = id
		u.AvgSteps = steps
		return u
	}
	users := []features.UserFeatureVector{
		mk("user_low", 2000), mk("user_mid", 9000), mk("user_high", 15000),
	}

	res, err := FitClusters(users, 2, Options{DropDegenerate: true})
	require.NoError(t, err)
	require.Equal(t, []string{"avg_steps"}, res.Model.FeatureNames)

	low, mid, high := res.Assignments[0].Cluster, res.Assignments[1].Cluster, res.Assignments[2].Cluster
	require.Equal(t, mid, high, "mid user groups with its nearer neighbor")
	require.NotEqual(t, low, mid, "low user is isolated")
}

func TestFitClustersInsufficientData(t *testing.T) {
	users := population(3)
	for _, k := range []int{0, 4} {
		_, err := FitClusters(users, k, Options{})
		var insErr *InsufficientDataError
		require.ErrorAs(t, err, &insErr, "k=%d", k)
		require.Equal(t, 3, insErr.Users)
		require.Equal(t, k, insErr.K)
	}
}

func TestFitClustersDegenerateColumn(t *testing.T) {
	users := population(6)
	for i := range users {
		users[i].AvgSedentaryMinutes = 650 // constant across all users
	}

	_, err := FitClusters(users, 2, Options{})
	var degErr *DegenerateInputError
	require.ErrorAs(t, err, &degErr)
	require.Equal(t, []string{"avg_sedentary_minutes"}, degErr.Columns)

	res, err := FitClusters(users, 2, Options{DropDegenerate: true})
	require.NoError(t, err)
	require.Equal(t, []string{"avg_sedentary_minutes"}, res.DroppedFeatures)
	require.NotContains(t, res.Model.FeatureNames, "avg_sedentary_minutes")
	require.Len(t, res.Model.FeatureNames, len(features.FeatureNames())-1)
}

func TestFitClustersAllColumnsDegenerate(t *testing.T) {
	u := vec("user_a", 1)
	a, b := u, u
	a.UserID, b.UserID = "user_a", "user_b"

	_, err := FitClusters([]features.UserFeatureVector{a, b}, 2, Options{DropDegenerate: true})
	var degErr *DegenerateInputError
	require.ErrorAs(t, err, &degErr)
}

func TestFitClustersSingleCluster(t *testing.T) {
	users := population(5)
	res, err := FitClusters(users, 1, Options{})
	require.NoError(t, err)
	for _, a := range res.Assignments {
		require.Equal(t, 0, a.Cluster)
	}
	require.Len(t, res.Profiles, 1)
	require.Equal(t, len(users), res.Profiles[0].Users)
}

func TestModelExposesFittedScaler(t *testing.T) {
	users := population(8)
	res, err := FitClusters(users, 2, Options{})
	require.NoError(t, err)
	require.NotNil(t, res.Model.Scaler)
	require.Len(t, res.Model.Scaler.Mean, len(features.FeatureNames()))
	require.Len(t, res.Model.Scaler.Scale, len(features.FeatureNames()))

	// An out-of-sample user can be standardized with the stored fit.
	row := res.Model.Scaler.TransformRow(vec("new", 5).Vector())
	require.Len(t, row, len(features.FeatureNames()))
}
