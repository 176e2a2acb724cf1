package projection

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// MinPoints is the smallest number of entries Project accepts.
const MinPoints = 3

// ErrInsufficientData is returned when fewer than MinPoints entries are given.
var ErrInsufficientData = errors.New("not enough embeddings to project")

const (
	machineEpsilon   = 2.220446049250313e-16
	perplexityTol    = 1e-5
	perplexitySteps  = 100
	minGain          = 0.01
	minGradNorm      = 1e-7
	progressInterval = 50
)

// Config tunes the t-SNE optimisation. Zero fields take the defaults.
type Config struct {
	// MaxPerplexity caps the perplexity; the effective value is min(MaxPerplexity, n-1), at least 1.
	MaxPerplexity float64 `yaml:"max_perplexity" mapstructure:"max_perplexity"`
	// EarlyExaggeration multiplies P during the exploration phase.
	EarlyExaggeration float64 `yaml:"early_exaggeration" mapstructure:"early_exaggeration"`
	// ExplorationIter is the length of the exaggerated phase.
	ExplorationIter int `yaml:"exploration_iter" mapstructure:"exploration_iter"`
	// MaxIter is the total number of gradient steps.
	MaxIter int `yaml:"max_iter" mapstructure:"max_iter"`
	// IterWithoutProgress stops the final phase when the error has not improved for this long.
	IterWithoutProgress int `yaml:"iter_without_progress" mapstructure:"iter_without_progress"`
	// Seed drives the random initial layout.
	Seed uint64 `yaml:"seed" mapstructure:"seed"`
}

// DefaultConfig returns the standard t-SNE settings with seed 42.
func DefaultConfig() Config {
	return Config{
		MaxPerplexity:       30,
		EarlyExaggeration:   12,
		ExplorationIter:     250,
		MaxIter:             1000,
		IterWithoutProgress: 300,
		Seed:                42,
	}
}

// ApplyDefaults fills zero fields from DefaultConfig.
func (c *Config) ApplyDefaults() {
	d := DefaultConfig()
	if c.MaxPerplexity <= 0 {
		c.MaxPerplexity = d.MaxPerplexity
	}
	if c.EarlyExaggeration <= 0 {
		c.EarlyExaggeration = d.EarlyExaggeration
	}
	if c.ExplorationIter <= 0 {
		c.ExplorationIter = d.ExplorationIter
	}
	if c.MaxIter <= 0 {
		c.MaxIter = d.MaxIter
	}
	if c.IterWithoutProgress <= 0 {
		c.IterWithoutProgress = d.IterWithoutProgress
	}
	if c.Seed == 0 {
		c.Seed = d.Seed
	}
}

// Perplexity returns the effective perplexity for n points.
func (c Config) Perplexity(n int) float64 {
	return math.Max(1, math.Min(c.MaxPerplexity, float64(n-1)))
}

// TSNE embeds the rows of x into two dimensions and returns an n×2 matrix.
func TSNE(x mat.Matrix, cfg Config) (*mat.Dense, error) {
	cfg.ApplyDefaults()
	n, _ := x.Dims()
	if n < MinPoints {
		return nil, fmt.Errorf("%w: have %d, need %d", ErrInsufficientData, n, MinPoints)
	}

	p := jointProbabilities(squaredDistances(x), cfg.Perplexity(n))

	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed))
	y := make([]float64, n*2)
	for i := range y {
		y[i] = 1e-4 * rng.NormFloat64()
	}

	opt := optimizer{
		n:            n,
		p:            p,
		y:            y,
		update:       make([]float64, n*2),
		gains:        make([]float64, n*2),
		grad:         make([]float64, n*2),
		learningRate: math.Max(float64(n)/cfg.EarlyExaggeration/4, 50),
	}
	for i := range opt.gains {
		opt.gains[i] = 1
	}

	floats.Scale(cfg.EarlyExaggeration, p)
	it := opt.run(0, cfg.ExplorationIter, 0.5, cfg.ExplorationIter)
	floats.Scale(1/cfg.EarlyExaggeration, p)
	opt.run(it, cfg.MaxIter, 0.8, cfg.IterWithoutProgress)

	for i, v := range y {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("t-SNE produced a non-finite coordinate for point %d", i/2)
		}
	}
	return mat.NewDense(n, 2, y), nil
}

// squaredDistances returns the n×n matrix of squared euclidean distances
// between the rows of x.
func squaredDistances(x mat.Matrix) []float64 {
	n, _ := x.Dims()
	var gram mat.Dense
	gram.Mul(x, x.T())

	d := make([]float64, n*n)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			v := math.Max(0, gram.At(i, i)+gram.At(j, j)-2*gram.At(i, j))
			d[i*n+j] = v
			d[j*n+i] = v
		}
	}
	return d
}

// jointProbabilities returns the symmetrised joint distribution P as a flat
// n×n slice.
func jointProbabilities(dist []float64, perplexity float64) []float64 {
	n := int(math.Sqrt(float64(len(dist))))
	cond := conditionalProbabilities(dist, n, perplexity)

	p := make([]float64, n*n)
	total := 0.0
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			p[i*n+j] = cond[i*n+j] + cond[j*n+i]
			total += p[i*n+j]
		}
	}
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i != j {
				p[i*n+j] = math.Max(p[i*n+j]/total, machineEpsilon)
			}
		}
	}
	return p
}

// conditionalProbabilities binary-searches, for every point, the Gaussian
// precision whose neighbour distribution has the target perplexity.
func conditionalProbabilities(dist []float64, n int, perplexity float64) []float64 {
	cond := make([]float64, n*n)
	desiredEntropy := math.Log(perplexity)

	row := make([]float64, n)
	for i := 0; i < n; i++ {
		betaMin, betaMax := math.Inf(-1), math.Inf(1)
		beta := 1.0
		for step := 0; step < perplexitySteps; step++ {
			sumP := 0.0
			for j := 0; j < n; j++ {
				if j == i {
					row[j] = 0
					continue
				}
				row[j] = math.Exp(-dist[i*n+j] * beta)
				sumP += row[j]
			}
			if sumP == 0 {
				sumP = 1e-8
			}
			sumDP := 0.0
			for j := 0; j < n; j++ {
				row[j] /= sumP
				sumDP += dist[i*n+j] * row[j]
			}
			entropy := math.Log(sumP) + beta*sumDP
			diff := entropy - desiredEntropy
			if math.Abs(diff) <= perplexityTol {
				break
			}
			if diff > 0 {
				betaMin = beta
				if math.IsInf(betaMax, 1) {
					beta *= 2
				} else {
					beta = (beta + betaMax) / 2
				}
			} else {
				betaMax = beta
				if math.IsInf(betaMin, -1) {
					beta /= 2
				} else {
					beta = (beta + betaMin) / 2
				}
			}
		}
		copy(cond[i*n:(i+1)*n], row)
	}
	return cond
}

type optimizer struct {
	n            int
	p            []float64
	y            []float64
	update       []float64
	gains        []float64
	grad         []float64
	learningRate float64
}

// run performs gradient steps from iteration start up to maxIter and
// returns the next iteration number.
func (o *optimizer) run(start, maxIter int, momentum float64, withoutProgress int) int {
	bestErr := math.Inf(1)
	bestIter := start
	it := start
	for ; it < maxIter; it++ {
		kl := o.gradient()

		for k := range o.grad {
			if o.update[k]*o.grad[k] < 0 {
				o.gains[k] += 0.2
			} else {
				o.gains[k] *= 0.8
			}
			o.gains[k] = math.Max(o.gains[k], minGain)
			o.update[k] = momentum*o.update[k] - o.learningRate*o.gains[k]*o.grad[k]
			o.y[k] += o.update[k]
		}

		if (it+1)%progressInterval != 0 {
			continue
		}
		if kl < bestErr {
			bestErr, bestIter = kl, it
		} else if it-bestIter > withoutProgress {
			return it + 1
		}
		if floats.Norm(o.grad, 2) <= minGradNorm {
			return it + 1
		}
	}
	return it
}

// gradient fills o.grad with the KL(P||Q) gradient for the current layout
// under a Student-t kernel with one degree of freedom, and returns the
// divergence.
func (o *optimizer) gradient() float64 {
	n := o.n
	q := make([]float64, n*n)
	sumQ := 0.0
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			dx := o.y[2*i] - o.y[2*j]
			dy := o.y[2*i+1] - o.y[2*j+1]
			v := 1 / (1 + dx*dx + dy*dy)
			q[i*n+j] = v
			q[j*n+i] = v
			sumQ += 2 * v
		}
	}

	for k := range o.grad {
		o.grad[k] = 0
	}
	kl := 0.0
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			pij := o.p[i*n+j]
			qij := math.Max(q[i*n+j]/sumQ, machineEpsilon)
			kl += pij * math.Log(math.Max(pij, machineEpsilon)/qij)
			mult := 4 * (pij - qij) * q[i*n+j]
			o.grad[2*i] += mult * (o.y[2*i] - o.y[2*j])
			o.grad[2*i+1] += mult * (o.y[2*i+1] - o.y[2*j+1])
		}
	}
	return kl
}
