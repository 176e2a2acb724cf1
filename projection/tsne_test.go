package projection

import (
	"errors"
	"math"
	"math/rand/v2"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/kbukum/voicemap/embedding"
)

func randomEntries(n, dim int, seed uint64) []embedding.Entry {
	rng := rand.New(rand.NewPCG(seed, seed))
	out := make([]embedding.Entry, n)
	for i := range out {
		v := make([]float32, dim)
		for j := range v {
			v[j] = float32(rng.NormFloat64())
		}
		out[i] = embedding.Entry{
			ID:      string(rune('a' + i)),
			Speaker: "SPEAKER_00",
			Vector:  v,
			Start:   float64(i),
			End:     float64(i) + 0.5,
		}
	}
	return out
}

func TestProject_InsufficientData(t *testing.T) {
	for _, n := range []int{0, 1, 2} {
		_, err := Project(randomEntries(n, 4, 1), DefaultConfig())
		if !errors.Is(err, ErrInsufficientData) {
			t.Errorf("n=%d: expected ErrInsufficientData, got %v", n, err)
		}
	}
}

func TestProject_ThreeEntriesInOrder(t *testing.T) {
	entries := randomEntries(3, 8, 7)
	points, err := Project(entries, DefaultConfig())
	if err != nil {
		t.Fatalf("Project failed: %v", err)
	}
	if len(points) != 3 {
		t.Fatalf("expected 3 points, got %d", len(points))
	}
	for i, p := range points {
		e := entries[i]
		if p.ID != e.ID || p.Speaker != e.Speaker || p.Start != e.Start || p.End != e.End {
			t.Errorf("point %d does not mirror entry: %+v vs %+v", i, p, e)
		}
		if math.IsNaN(p.X) || math.IsNaN(p.Y) || math.IsInf(p.X, 0) || math.IsInf(p.Y, 0) {
			t.Errorf("point %d has non-finite coordinates (%v, %v)", i, p.X, p.Y)
		}
	}
}

func TestProject_Deterministic(t *testing.T) {
	entries := randomEntries(12, 16, 3)
	a, err := Project(entries, DefaultConfig())
	if err != nil {
		t.Fatalf("Project failed: %v", err)
	}
	b, _ := Project(entries, DefaultConfig())
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("point %d differs between runs: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestProject_DoesNotMutateEntries(t *testing.T) {
	entries := randomEntries(5, 4, 9)
	before := entries[0].Vector[0]
	if _, err := Project(entries, DefaultConfig()); err != nil {
		t.Fatalf("Project failed: %v", err)
	}
	if entries[0].Vector[0] != before || entries[0].Speaker != "SPEAKER_00" {
		t.Error("Project modified its input")
	}
}

func TestProject_DegenerateInputStaysFinite(t *testing.T) {
	entries := make([]embedding.Entry, 4)
	for i := range entries {
		entries[i] = embedding.Entry{ID: string(rune('a' + i)), Vector: []float32{0, 0, 0}, Start: 0, End: 1}
	}
	points, err := Project(entries, DefaultConfig())
	if err != nil {
		t.Fatalf("Project failed: %v", err)
	}
	for _, p := range points {
		if math.IsNaN(p.X) || math.IsNaN(p.Y) {
			t.Fatalf("non-finite point %+v", p)
		}
	}
}

func TestConfig_Perplexity(t *testing.T) {
	cfg := DefaultConfig()
	tests := []struct {
		n    int
		want float64
	}{
		{2, 1},
		{3, 2},
		{10, 9},
		{31, 30},
		{500, 30},
	}
	for _, tt := range tests {
		if got := cfg.Perplexity(tt.n); got != tt.want {
			t.Errorf("Perplexity(%d) = %v, want %v", tt.n, got, tt.want)
		}
	}
}

func TestConditionalProbabilities_MatchPerplexity(t *testing.T) {
	entries := randomEntries(20, 5, 11)
	x := embedding.Matrix(entries)
	n, _ := x.Dims()
	dist := squaredDistances(x)
	const perplexity = 5.0

	cond := conditionalProbabilities(dist, n, perplexity)
	for i := 0; i < n; i++ {
		sum, entropy := 0.0, 0.0
		for j := 0; j < n; j++ {
			p := cond[i*n+j]
			sum += p
			if p > 0 {
				entropy -= p * math.Log(p)
			}
		}
		if math.Abs(sum-1) > 1e-9 {
			t.Errorf("row %d sums to %v", i, sum)
		}
		if got := math.Exp(entropy); math.Abs(got-perplexity) > 1e-3 {
			t.Errorf("row %d perplexity %v, want %v", i, got, perplexity)
		}
		if cond[i*n+i] != 0 {
			t.Errorf("row %d has self probability %v", i, cond[i*n+i])
		}
	}
}

func TestJointProbabilities_Symmetric(t *testing.T) {
	x := mat.NewDense(4, 2, []float64{0, 0, 1, 0, 0, 1, 5, 5})
	p := jointProbabilities(squaredDistances(x), 2)
	total := 0.0
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			total += p[i*4+j]
			if math.Abs(p[i*4+j]-p[j*4+i]) > 1e-15 {
				t.Errorf("P not symmetric at (%d,%d)", i, j)
			}
		}
	}
	if math.Abs(total-1) > 1e-9 {
		t.Errorf("P sums to %v", total)
	}
}
