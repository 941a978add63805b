package cluster

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFitScalerMeanAndScale(t *testing.T) {
	x := [][]float64{{2, 10}, {4, 20}, {6, 30}}
	sc, err := FitScaler(x, []string{"a", "b"})
	require.NoError(t, err)
	require.InDelta(t, 4, sc.Mean[0], 1e-12)
	require.InDelta(t, 20, sc.Mean[1], 1e-12)
	// Population standard deviation of {2,4,6}.
	require.InDelta(t, 1.632993161855452, sc.Scale[0], 1e-12)

	scaled := sc.Transform(x)
	for j := 0; j < 2; j++ {
		var sum, sumSq float64
		for i := range scaled {
			sum += scaled[i][j]
			sumSq += scaled[i][j] * scaled[i][j]
		}
		require.InDelta(t, 0, sum/3, 1e-12)
		require.InDelta(t, 1, sumSq/3, 1e-12)
	}
}

func TestFitScalerReportsZeroVariance(t *testing.T) {
	x := [][]float64{{1, 5}, {2, 5}, {3, 5}}
	_, err := FitScaler(x, []string{"a", "b"})
	var degErr *DegenerateInputError
	require.ErrorAs(t, err, &degErr)
	require.Equal(t, []string{"b"}, degErr.Columns)
}

func TestTransformRowReusesFit(t *testing.T) {
	x := [][]float64{{0.0}, {10.0}}
	sc, err := FitScaler(x, []string{"a"})
	require.NoError(t, err)
	// An out-of-sample value standardized with the stored mean/scale.
	out := sc.TransformRow([]float64{5})
	require.InDelta(t, 0, out[0], 1e-12)
	out = sc.TransformRow([]float64{10})
	require.InDelta(t, 1, out[0], 1e-12)
}
