package mna

import (
	"errors"
	"fmt"
	"math/cmplx"

	"github.com/Jacajack/myspice/pkg/matrix"
)

// ErrSingular reports a system without a unique solution: elimination
// reached a column whose remaining entries are all zero.
var ErrSingular = errors.New("mna: singular equation system")

// gaussianElimination solves a complex linear system given as the
// augmented N x (N+1) matrix [A | b] and returns the N x 1 solution.
//
// Partial pivoting selects the remaining row with the largest pivot
// modulus. Row reduction scales the target row by -A[k,k]/A[i,k] and
// adds the pivot row, which leaves the pivot row itself intact.
func gaussianElimination(mat *matrix.Matrix) (*matrix.Matrix, error) {
	n := mat.Height()

	if mat.Width() != n+1 {
		return nil, fmt.Errorf("%w: equation system must be %dx%d, got %dx%d",
			matrix.ErrDimension, n, n+1, mat.Height(), mat.Width())
	}

	swapRows := func(a, b int) {
		for i := 0; i < mat.Width(); i++ {
			va, vb := mat.At(a, i), mat.At(b, i)
			mat.Set(a, i, vb)
			mat.Set(b, i, va)
		}
	}

	addRows := func(dest, src int) {
		for i := 0; i < mat.Width(); i++ {
			mat.Add(dest, i, mat.At(src, i))
		}
	}

	multiplyRow := func(r int, k complex128) {
		for i := 0; i < mat.Width(); i++ {
			mat.Set(r, i, mat.At(r, i)*k)
		}
	}

	// Reduce to row echelon form.
	for k := 0; k < n; k++ {
		rowMax := k
		max := cmplx.Abs(mat.At(k, k))
		for i := k + 1; i < n; i++ {
			if x := cmplx.Abs(mat.At(i, k)); x > max {
				max = x
				rowMax = i
			}
		}

		// No remaining equation uses this variable.
		if max == 0 {
			return nil, ErrSingular
		}

		swapRows(rowMax, k)

		pivot := mat.At(k, k)
		for i := k + 1; i < n; i++ {
			if mat.At(i, k) != 0 {
				multiplyRow(i, -pivot/mat.At(i, k))
				addRows(i, k)
			}
		}
	}

	// Back substitution.
	solution := matrix.New(n, 1)
	for i := n - 1; i >= 0; i-- {
		sum := mat.At(i, n)
		for j := i + 1; j < n; j++ {
			sum -= mat.At(i, j) * solution.At(j, 0)
		}
		solution.Set(i, 0, sum/mat.At(i, i))
	}

	return solution, nil
}
