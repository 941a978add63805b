// Package stats summarizes the merged daily table: per-column statistics
// and a Pearson correlation matrix, rendered as plain text for the
// describe command.
package stats

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/mkerrigan/fitcluster/internal/dataset"
)

// ColumnSummary captures statistics for one numeric column.
type ColumnSummary struct {
	Name string
	Min  float64
	Max  float64
	Mean float64
	Std  float64
}

// CorrMatrix holds a symmetric Pearson correlation matrix; Values[i][j]
// correlates Columns[i] with Columns[j].
type CorrMatrix struct {
	Columns []string
	Values  [][]float64
}

// Summary is the statistical description of a merged daily table.
type Summary struct {
	Rows    int
	Users   int
	Columns []ColumnSummary
	Corr    *CorrMatrix
}

// Typed column accessors; the analyzer never looks columns up by string
// at runtime.
var numericColumns = []struct {
	name string
	get  func(dataset.DailyRecord) float64
}{
	{"steps", func(d dataset.DailyRecord) float64 { return d.Steps }},
	{"calories_burned", func(d dataset.DailyRecord) float64 { return d.CaloriesBurned }},
	{"sedentary_minutes", func(d dataset.DailyRecord) float64 { return d.SedentaryMinutes }},
	{"lightly_active_minutes", func(d dataset.DailyRecord) float64 { return d.LightlyActiveMinutes }},
	{"moderately_active_minutes", func(d dataset.DailyRecord) float64 { return d.ModeratelyActiveMinutes }},
	{"very_active_minutes", func(d dataset.DailyRecord) float64 { return d.VeryActiveMinutes }},
	{"time_in_bed_minutes", func(d dataset.DailyRecord) float64 { return d.TimeInBedMinutes }},
	{"sleep_duration_minutes", func(d dataset.DailyRecord) float64 { return d.SleepDurationMinutes }},
	{"sleep_efficiency", func(d dataset.DailyRecord) float64 { return d.SleepEfficiency }},
	{"deep_sleep_minutes", func(d dataset.DailyRecord) float64 { return d.DeepSleepMinutes }},
	{"rem_sleep_minutes", func(d dataset.DailyRecord) float64 { return d.RemSleepMinutes }},
	{"light_sleep_minutes", func(d dataset.DailyRecord) float64 { return d.LightSleepMinutes }},
	{"avg_resting_hr", func(d dataset.DailyRecord) float64 { return d.AvgRestingHR }},
	{"avg_hr", func(d dataset.DailyRecord) float64 { return d.AvgHR }},
	{"max_hr", func(d dataset.DailyRecord) float64 { return d.MaxHR }},
	{"min_hr", func(d dataset.DailyRecord) float64 { return d.MinHR }},
	{"calories_burned_hr", func(d dataset.DailyRecord) float64 { return d.CaloriesBurnedHR }},
}

// Describe computes per-column summaries (Welford mean/std) and the
// correlation matrix of the merged table.
func Describe(daily []dataset.DailyRecord) *Summary {
	s := &Summary{Rows: len(daily)}
	users := map[string]struct{}{}
	for _, d := range daily {
		users[d.UserID] = struct{}{}
	}
	s.Users = len(users)
	if len(daily) == 0 {
		return s
	}

	ncol := len(numericColumns)
	type acc struct {
		n    int
		mean float64
		m2   float64
		min  float64
		max  float64
	}
	accs := make([]acc, ncol)
	for j := range accs {
		accs[j].min = math.Inf(1)
		accs[j].max = math.Inf(-1)
	}
	for _, d := range daily {
		for j, col := range numericColumns {
			x := col.get(d)
			a := &accs[j]
			a.n++
			if x < a.min {
				a.min = x
			}
			if x > a.max {
				a.max = x
			}
			delta := x - a.mean
			a.mean += delta / float64(a.n)
			a.m2 += delta * (x - a.mean)
		}
	}
	s.Columns = make([]ColumnSummary, ncol)
	for j, col := range numericColumns {
		a := accs[j]
		cs := ColumnSummary{Name: col.name, Min: a.min, Max: a.max, Mean: a.mean}
		if a.n > 1 {
			cs.Std = math.Sqrt(a.m2 / float64(a.n-1))
		}
		s.Columns[j] = cs
	}
	s.Corr = correlations(daily)
	return s
}

func correlations(daily []dataset.DailyRecord) *CorrMatrix {
	ncol := len(numericColumns)
	names := make([]string, ncol)
	for j, col := range numericColumns {
		names[j] = col.name
	}
	// Pairwise sums in a single pass over the table.
	n := float64(len(daily))
	sum := make([]float64, ncol)
	sumSq := make([]float64, ncol)
	cross := make([][]float64, ncol)
	for j := range cross {
		cross[j] = make([]float64, ncol)
	}
	row := make([]float64, ncol)
	for _, d := range daily {
		for j, col := range numericColumns {
			row[j] = col.get(d)
			sum[j] += row[j]
			sumSq[j] += row[j] * row[j]
		}
		for j := 0; j < ncol; j++ {
			for k := j + 1; k < ncol; k++ {
				cross[j][k] += row[j] * row[k]
			}
		}
	}

	values := make([][]float64, ncol)
	for j := range values {
		values[j] = make([]float64, ncol)
		values[j][j] = 1
	}
	for j := 0; j < ncol; j++ {
		for k := j + 1; k < ncol; k++ {
			denom := math.Sqrt((n*sumSq[j] - sum[j]*sum[j]) * (n*sumSq[k] - sum[k]*sum[k]))
			var r float64
			if denom != 0 {
				r = (n*cross[j][k] - sum[j]*sum[k]) / denom
			}
			if r > 1 {
				r = 1
			} else if r < -1 {
				r = -1
			}
			if math.IsNaN(r) || math.IsInf(r, 0) {
				r = 0
			}
			values[j][k] = r
			values[k][j] = r
		}
	}
	return &CorrMatrix{Columns: names, Values: values}
}

// Text renders the summary in a compact bracketed-section layout.
func (s *Summary) Text() string {
	var b strings.Builder
	b.WriteString("[DAILY TABLE]\n")
	b.WriteString(fmt.Sprintf("Rows: %d\nUsers: %d\n\n", s.Rows, s.Users))

	b.WriteString("[COLUMNS]\n")
	for _, c := range s.Columns {
		b.WriteString(fmt.Sprintf("- %s: min %.4g, max %.4g, mean %.4g, std %.4g\n",
			c.Name, c.Min, c.Max, c.Mean, c.Std))
	}

	if s.Corr != nil {
		b.WriteString("\n[TOP CORRELATIONS]\n")
		type pair struct {
			a, b string
			r    float64
		}
		var pairs []pair
		nc := len(s.Corr.Columns)
		for i := 0; i < nc; i++ {
			for j := i + 1; j < nc; j++ {
				pairs = append(pairs, pair{s.Corr.Columns[i], s.Corr.Columns[j], s.Corr.Values[i][j]})
			}
		}
		sort.Slice(pairs, func(i, j int) bool {
			ai, aj := math.Abs(pairs[i].r), math.Abs(pairs[j].r)
			if ai == aj {
				return pairs[i].a+pairs[i].b < pairs[j].a+pairs[j].b
			}
			return ai > aj
		})
		limit := 10
		if len(pairs) < limit {
			limit = len(pairs)
		}
		for _, p := range pairs[:limit] {
			b.WriteString(fmt.Sprintf("- %s ~ %s: r=%.3f\n", p.a, p.b, p.r))
		}
	}
	return b.String()
}
