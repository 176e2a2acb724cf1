package embedding

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Normalize scales v to unit L2 norm. A zero vector is returned unchanged.
func Normalize(v []float64) []float64 {
	out := append([]float64(nil), v...)
	n := floats.Norm(out, 2)
	if n == 0 {
		return out
	}
	floats.Scale(1/n, out)
	return out
}

// Matrix stacks the entries' vectors as rows of a dense matrix, L2
// normalizing each row.
func Matrix(entries []Entry) *mat.Dense {
	if len(entries) == 0 {
		return nil
	}
	dim := len(entries[0].Vector)
	m := mat.NewDense(len(entries), dim, nil)
	row := make([]float64, dim)
	for i, e := range entries {
		for j, v := range e.Vector {
			row[j] = float64(v)
		}
		m.SetRow(i, Normalize(row))
	}
	return m
}
