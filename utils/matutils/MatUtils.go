// Package matutils implements utility function for working with mat.Matrix
// structs
package matutils

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r1"

	"github.com/samuelfneumann/robotac/utils/floatutils"
)

// Format formats a matrix for printing
func Format(X mat.Matrix) string {
	fa := mat.Formatted(X, mat.Prefix(""), mat.Squeeze())
	return fmt.Sprintf("%v", fa)
}

// Concat returns a new vector holding the elements of each argument
// vector, in order.
func Concat(vecs ...mat.Vector) *mat.VecDense {
	n := 0
	for _, v := range vecs {
		n += v.Len()
	}

	data := make([]float64, 0, n)
	for _, v := range vecs {
		for i := 0; i < v.Len(); i++ {
			data = append(data, v.AtVec(i))
		}
	}
	return mat.NewVecDense(n, data)
}

// VecClipInterval returns a copy of a with each element i clipped to
// stay within bounds[i].
func VecClipInterval(a mat.Vector, bounds []r1.Interval) *mat.VecDense {
	if a.Len() != len(bounds) {
		panic(fmt.Sprintf("vecclipinterval: vector length %v != bounds "+
			"length %v", a.Len(), len(bounds)))
	}

	clipped := mat.NewVecDense(a.Len(), nil)
	for i := 0; i < a.Len(); i++ {
		clipped.SetVec(i, floatutils.ClipInterval(a.AtVec(i), bounds[i]))
	}
	return clipped
}

// RowsOf returns a new matrix holding the rows of m at the argument
// indices, in order.
func RowsOf(m *mat.Dense, indices []int) *mat.Dense {
	_, c := m.Dims()
	rows := mat.NewDense(len(indices), c, nil)
	for i, index := range indices {
		rows.SetRow(i, m.RawRowView(index))
	}
	return rows
}
