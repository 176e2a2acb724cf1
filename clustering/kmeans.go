package clustering

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// kMeans clusters the rows of x into k groups, keeping the best of cfg.Inits
// k-means++ seeded runs.
func kMeans(x *mat.Dense, k int, cfg Config) []int {
	n, d := x.Dims()
	rows := make([][]float64, n)
	for i := range rows {
		rows[i] = x.RawRowView(i)
	}

	// Tolerance is relative to the mean per-feature variance.
	variance := 0.0
	col := make([]float64, n)
	for j := 0; j < d; j++ {
		mat.Col(col, j, x)
		variance += stat.PopVariance(col, nil)
	}
	tol := cfg.Tol * variance / float64(d)

	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed))
	var best []int
	bestInertia := math.Inf(1)
	for run := 0; run < cfg.Inits; run++ {
		centers := kMeansPlusPlus(rows, k, rng)
		labels, inertia := lloyd(rows, centers, cfg.MaxIter, tol)
		if inertia < bestInertia {
			best, bestInertia = labels, inertia
		}
	}
	return best
}

// kMeansPlusPlus picks k initial centers, greedily choosing among
// 2+ln(k) candidates at each step the one that most reduces the potential.
func kMeansPlusPlus(rows [][]float64, k int, rng *rand.Rand) [][]float64 {
	n := len(rows)
	trials := 2 + int(math.Log(float64(k)))

	centers := make([][]float64, 0, k)
	centers = append(centers, append([]float64(nil), rows[rng.IntN(n)]...))

	closest := make([]float64, n)
	for i, r := range rows {
		closest[i] = sqDist(r, centers[0])
	}
	potential := floats.Sum(closest)

	for len(centers) < k {
		bestCand, bestPot := -1, math.Inf(1)
		var bestClosest []float64
		for t := 0; t < trials; t++ {
			cand := sampleIndex(closest, potential, rng)
			candClosest := make([]float64, n)
			for i, r := range rows {
				candClosest[i] = math.Min(closest[i], sqDist(r, rows[cand]))
			}
			if pot := floats.Sum(candClosest); pot < bestPot {
				bestCand, bestPot, bestClosest = cand, pot, candClosest
			}
		}
		centers = append(centers, append([]float64(nil), rows[bestCand]...))
		closest, potential = bestClosest, bestPot
	}
	return centers
}

// sampleIndex draws an index with probability proportional to weights.
func sampleIndex(weights []float64, total float64, rng *rand.Rand) int {
	if total <= 0 {
		return rng.IntN(len(weights))
	}
	r := rng.Float64() * total
	acc := 0.0
	for i, w := range weights {
		acc += w
		if r < acc {
			return i
		}
	}
	return len(weights) - 1
}

// lloyd refines centers until the labels stop changing or the total squared
// center shift drops to tol, and returns the labels and their inertia.
func lloyd(rows, centers [][]float64, maxIter int, tol float64) ([]int, float64) {
	n, k, d := len(rows), len(centers), len(rows[0])
	labels := make([]int, n)
	for i := range labels {
		labels[i] = -1
	}

	for iter := 0; iter < maxIter; iter++ {
		changed := false
		for i, r := range rows {
			l := nearest(r, centers)
			if l != labels[i] {
				labels[i] = l
				changed = true
			}
		}
		if !changed {
			break
		}

		sums := make([][]float64, k)
		counts := make([]int, k)
		for c := range sums {
			sums[c] = make([]float64, d)
		}
		for i, r := range rows {
			floats.Add(sums[labels[i]], r)
			counts[labels[i]]++
		}

		shift := 0.0
		for c := range centers {
			if counts[c] == 0 {
				// Move an empty cluster onto the point farthest from its center.
				far := farthest(rows, centers, labels)
				sums[c] = append(sums[c][:0], rows[far]...)
				counts[c] = 1
				labels[far] = c
			}
			floats.Scale(1/float64(counts[c]), sums[c])
			shift += sqDist(sums[c], centers[c])
			centers[c] = sums[c]
		}
		if shift <= tol {
			for i, r := range rows {
				labels[i] = nearest(r, centers)
			}
			break
		}
	}

	inertia := 0.0
	for i, r := range rows {
		inertia += sqDist(r, centers[labels[i]])
	}
	return labels, inertia
}

func nearest(r []float64, centers [][]float64) int {
	best, bestD := 0, math.Inf(1)
	for c, center := range centers {
		if d := sqDist(r, center); d < bestD {
			best, bestD = c, d
		}
	}
	return best
}

func farthest(rows, centers [][]float64, labels []int) int {
	far, farD := 0, -1.0
	for i, r := range rows {
		if d := sqDist(r, centers[labels[i]]); d > farD {
			far, farD = i, d
		}
	}
	return far
}

func sqDist(a, b []float64) float64 {
	d := floats.Distance(a, b, 2)
	return d * d
}
