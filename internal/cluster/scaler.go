package cluster

import "math"

// StandardScaler rescales each feature column to zero mean and unit
// variance. The fitted Mean and Scale are exported so a future
// out-of-sample user can be transformed with the same fit.
type StandardScaler struct {
	Columns []string
	Mean    []float64
	Scale   []float64
}

// FitScaler fits a scaler to the column-major-agnostic row matrix X.
// Columns with zero variance are reported via DegenerateInputError; the
// caller decides whether to drop them or abort.
func FitScaler(x [][]float64, columns []string) (*StandardScaler, error) {
	n := len(x)
	if n == 0 {
		return nil, &InsufficientDataError{Users: 0, K: 1}
	}
	ncol := len(columns)
	mean := make([]float64, ncol)
	scale := make([]float64, ncol)
	for j := 0; j < ncol; j++ {
		var sum float64
		for i := 0; i < n; i++ {
			sum += x[i][j]
		}
		mean[j] = sum / float64(n)
		var ss float64
		for i := 0; i < n; i++ {
			d := x[i][j] - mean[j]
			ss += d * d
		}
		scale[j] = math.Sqrt(ss / float64(n))
	}
	var degenerate []string
	for j, s := range scale {
		if s == 0 {
			degenerate = append(degenerate, columns[j])
		}
	}
	sc := &StandardScaler{Columns: columns, Mean: mean, Scale: scale}
	if len(degenerate) > 0 {
		return sc, &DegenerateInputError{Columns: degenerate}
	}
	return sc, nil
}

// Transform standardizes rows with the fitted mean and scale.
func (s *StandardScaler) Transform(x [][]float64) [][]float64 {
	out := make([][]float64, len(x))
	for i, row := range x {
		tr := make([]float64, len(row))
		for j, v := range row {
			tr[j] = (v - s.Mean[j]) / s.Scale[j]
		}
		out[i] = tr
	}
	return out
}

// TransformRow standardizes a single feature vector, e.g. an out-of-sample
// user.
func (s *StandardScaler) TransformRow(row []float64) []float64 {
	tr := make([]float64, len(row))
	for j, v := range row {
		tr[j] = (v - s.Mean[j]) / s.Scale[j]
	}
	return tr
}
