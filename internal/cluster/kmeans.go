package cluster

import (
	"math"
	"math/rand"
)

// kMeans runs Lloyd's algorithm with k-means++ seeding. All randomness
// comes from the caller's source, so a fixed seed reproduces the fit
// exactly.
type kMeans struct {
	k       int
	maxIter int
	tol     float64
	rng     *rand.Rand
}

// fit returns labels, centroids and inertia (sum of squared distances to
// the assigned centroid) for the best of nInit restarts.
func (km *kMeans) fit(x [][]float64, nInit int) ([]int, [][]float64, float64) {
	bestInertia := math.Inf(1)
	var bestLabels []int
	var bestCentroids [][]float64
	for run := 0; run < nInit; run++ {
		labels, centroids, inertia := km.fitOnce(x)
		if inertia < bestInertia {
			bestInertia = inertia
			bestLabels = labels
			bestCentroids = centroids
		}
	}
	return bestLabels, bestCentroids, bestInertia
}

func (km *kMeans) fitOnce(x [][]float64) ([]int, [][]float64, float64) {
	centroids := km.seedPlusPlus(x)
	labels := make([]int, len(x))
	ncol := len(x[0])

	for iter := 0; iter < km.maxIter; iter++ {
		// Assignment step; ties go to the lowest cluster index.
		for i, row := range x {
			best, bestDist := 0, math.Inf(1)
			for c, centroid := range centroids {
				if d := sqDist(row, centroid); d < bestDist {
					best, bestDist = c, d
				}
			}
			labels[i] = best
		}

		// Update step.
		next := make([][]float64, km.k)
		counts := make([]int, km.k)
		for c := range next {
			next[c] = make([]float64, ncol)
		}
		for i, row := range x {
			c := labels[i]
			counts[c]++
			for j, v := range row {
				next[c][j] += v
			}
		}
		for c := range next {
			if counts[c] == 0 {
				// Re-seed an emptied cluster at the point farthest from
				// its current centroid.
				next[c] = km.farthestPoint(x, centroids)
				continue
			}
			for j := range next[c] {
				next[c][j] /= float64(counts[c])
			}
		}

		shift := 0.0
		for c := range centroids {
			if d := math.Sqrt(sqDist(centroids[c], next[c])); d > shift {
				shift = d
			}
		}
		centroids = next
		if shift < km.tol {
			break
		}
	}

	inertia := 0.0
	for i, row := range x {
		best, bestDist := 0, math.Inf(1)
		for c, centroid := range centroids {
			if d := sqDist(row, centroid); d < bestDist {
				best, bestDist = c, d
			}
		}
		labels[i] = best
		inertia += bestDist
	}
	return labels, centroids, inertia
}

// seedPlusPlus picks initial centroids with the k-means++ scheme: the
// first uniformly, the rest proportional to squared distance from the
// nearest chosen centroid.
func (km *kMeans) seedPlusPlus(x [][]float64) [][]float64 {
	centroids := make([][]float64, 0, km.k)
	centroids = append(centroids, cloneRow(x[km.rng.Intn(len(x))]))

	dists := make([]float64, len(x))
	for len(centroids) < km.k {
		total := 0.0
		for i, row := range x {
			d := math.Inf(1)
			for _, c := range centroids {
				if sd := sqDist(row, c); sd < d {
					d = sd
				}
			}
			dists[i] = d
			total += d
		}
		if total == 0 {
			// All remaining points coincide with a centroid.
			centroids = append(centroids, cloneRow(x[km.rng.Intn(len(x))]))
			continue
		}
		target := km.rng.Float64() * total
		acc := 0.0
		pick := len(x) - 1
		for i, d := range dists {
			acc += d
			if acc >= target {
				pick = i
				break
			}
		}
		centroids = append(centroids, cloneRow(x[pick]))
	}
	return centroids
}

func (km *kMeans) farthestPoint(x, centroids [][]float64) []float64 {
	bestIdx, bestDist := 0, -1.0
	for i, row := range x {
		d := math.Inf(1)
		for _, c := range centroids {
			if sd := sqDist(row, c); sd < d {
				d = sd
			}
		}
		if d > bestDist {
			bestIdx, bestDist = i, d
		}
	}
	return cloneRow(x[bestIdx])
}

func sqDist(a, b []float64) float64 {
	var s float64
	for i := range a {
		d := a[i] - b[i]
		s += d * d
	}
	return s
}

func cloneRow(row []float64) []float64 {
	cp := make([]float64, len(row))
	copy(cp, row)
	return cp
}
