package clustering

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// ErrInsufficientData is returned when more clusters than points are requested.
var ErrInsufficientData = errors.New("not enough embeddings for the requested clusters")

// ErrInvalidClusterCount is returned for a cluster count below one.
var ErrInvalidClusterCount = errors.New("cluster count must be at least 1")

// Config tunes the spectral pipeline. Zero fields take the defaults.
type Config struct {
	// MaxNeighbors caps k in the k-nearest-neighbour graph; the effective k is min(MaxNeighbors, n-1).
	MaxNeighbors int `yaml:"max_neighbors" mapstructure:"max_neighbors"`
	// Seed drives the k-means initialisation.
	Seed uint64 `yaml:"seed" mapstructure:"seed"`
	// Inits is the number of k-means restarts; the lowest-inertia run wins.
	Inits int `yaml:"inits" mapstructure:"inits"`
	// MaxIter bounds each k-means run.
	MaxIter int `yaml:"max_iter" mapstructure:"max_iter"`
	// Tol is the relative center-shift tolerance of k-means.
	Tol float64 `yaml:"tol" mapstructure:"tol"`
}

// DefaultConfig returns the standard settings with seed 42.
func DefaultConfig() Config {
	return Config{MaxNeighbors: 10, Seed: 42, Inits: 10, MaxIter: 300, Tol: 1e-4}
}

// ApplyDefaults fills zero fields from DefaultConfig.
func (c *Config) ApplyDefaults() {
	d := DefaultConfig()
	if c.MaxNeighbors <= 0 {
		c.MaxNeighbors = d.MaxNeighbors
	}
	if c.Seed == 0 {
		c.Seed = d.Seed
	}
	if c.Inits <= 0 {
		c.Inits = d.Inits
	}
	if c.MaxIter <= 0 {
		c.MaxIter = d.MaxIter
	}
	if c.Tol <= 0 {
		c.Tol = d.Tol
	}
}

// Spectral assigns each row of x to one of k clusters. Labels are numbered
// by first appearance: row 0 is always in cluster 0.
func Spectral(x mat.Matrix, k int, cfg Config) ([]int, error) {
	cfg.ApplyDefaults()
	n, _ := x.Dims()
	if k < 1 {
		return nil, ErrInvalidClusterCount
	}
	if k > n {
		return nil, fmt.Errorf("%w: have %d, need %d", ErrInsufficientData, n, k)
	}
	if k == 1 {
		return make([]int, n), nil
	}

	affinity := knnAffinity(x, min(cfg.MaxNeighbors, n-1))
	maps, err := spectralEmbedding(affinity, k)
	if err != nil {
		return nil, err
	}
	labels := kMeans(maps, k, cfg)
	return canonicalize(labels), nil
}

// knnAffinity builds the symmetric affinity ½(C+Cᵀ) of the connectivity
// graph C in which every row links to its k nearest rows, itself included.
func knnAffinity(x mat.Matrix, k int) *mat.SymDense {
	n, _ := x.Dims()
	rows := make([][]float64, n)
	for i := range rows {
		rows[i] = mat.Row(nil, i, x)
	}

	conn := mat.NewDense(n, n, nil)
	order := make([]int, n)
	dist := make([]float64, n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			order[j] = j
			dist[j] = floats.Distance(rows[i], rows[j], 2)
		}
		dist[i] = -1
		sort.SliceStable(order, func(a, b int) bool {
			return dist[order[a]] < dist[order[b]]
		})
		for _, j := range order[:k] {
			conn.Set(i, j, 1)
		}
	}

	aff := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			aff.SetSym(i, j, 0.5*(conn.At(i, j)+conn.At(j, i)))
		}
	}
	return aff
}

// spectralEmbedding returns the n×k matrix of the k eigenvectors of the
// normalized Laplacian with the smallest eigenvalues, rescaled by D^-½ and
// sign-normalized so that each vector's largest-magnitude entry is positive.
func spectralEmbedding(aff *mat.SymDense, k int) (*mat.Dense, error) {
	n := aff.SymmetricDim()

	// Self loops do not count towards the degree.
	dd := make([]float64, n)
	for i := 0; i < n; i++ {
		deg := 0.0
		for j := 0; j < n; j++ {
			if i != j {
				deg += aff.At(i, j)
			}
		}
		dd[i] = math.Sqrt(deg)
		if dd[i] == 0 {
			dd[i] = 1
		}
	}

	lap := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		lap.SetSym(i, i, 1)
		for j := i + 1; j < n; j++ {
			lap.SetSym(i, j, -aff.At(i, j)/(dd[i]*dd[j]))
		}
	}

	var eig mat.EigenSym
	if ok := eig.Factorize(lap, true); !ok {
		return nil, errors.New("laplacian eigendecomposition did not converge")
	}
	var vecs mat.Dense
	eig.VectorsTo(&vecs)

	// Eigenvalues come back in ascending order.
	out := mat.NewDense(n, k, nil)
	col := make([]float64, n)
	for c := 0; c < k; c++ {
		mat.Col(col, c, &vecs)
		for i := range col {
			col[i] /= dd[i]
		}
		if col[floats.MaxIdx(absAll(col))] < 0 {
			floats.Scale(-1, col)
		}
		out.SetCol(c, col)
	}
	return out, nil
}

func absAll(v []float64) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = math.Abs(x)
	}
	return out
}

// canonicalize renumbers labels in order of first appearance.
func canonicalize(labels []int) []int {
	next := 0
	seen := make(map[int]int)
	out := make([]int, len(labels))
	for i, l := range labels {
		c, ok := seen[l]
		if !ok {
			c = next
			seen[l] = c
			next++
		}
		out[i] = c
	}
	return out
}
