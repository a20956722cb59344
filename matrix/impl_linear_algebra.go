// SPDX-License-Identifier: MIT
// Package matrix provides the small set of dense kernels needed to turn an
// observed-information (Hessian) matrix into a parameter covariance matrix and
// to propagate that covariance through gradients (delta method).
//
// Purpose:
//   - LU factorization with partial pivoting (PA = LU).
//   - Inverse via one factorization and n triangular solve pairs.
//   - Symmetrize to remove finite-difference asymmetry before inversion.
//   - MatVec and QuadForm (gᵀ·M·g) for variance propagation.
//
// Notes:
//   - All kernels validate inputs through validators.go and wrap failures with
//     an operation tag via matrixErrorf.

package matrix

import (
	"fmt"
	"math"
)

// ZeroSum is the initial sum value for forward/backward substitution.
const ZeroSum = 0.0

// Operation name constants for unified error wrapping.
const (
	opLU         = "LU"
	opInverse    = "Inverse"
	opSymmetrize = "Symmetrize"
	opMatVec     = "MatVec"
	opQuadForm   = "QuadForm"
)

// pivotRelTol is the relative pivot magnitude (against the largest absolute
// entry of the input) below which a column is declared singular.
const pivotRelTol = 1e-14

// matrixErrorf wraps err with an operation tag, preserving the original error via %w.
// Use only when err != nil.
func matrixErrorf(tag string, err error) error {
	return fmt.Errorf("%s: %w", tag, err)
}

// LUFactors holds a partially pivoted LU factorization PA = LU packed into a
// single n×n buffer (strict lower part = L without its unit diagonal, upper
// part = U) together with the row permutation.
type LUFactors struct {
	n    int
	lu   []float64 // packed L\U, row-major
	perm []int     // perm[i] = original row placed at position i
	sign float64   // permutation parity (+1/-1), used by Det
}

// LU computes PA = LU with partial (row) pivoting.
//
// Implementation:
//   - Stage 1: validate (non-nil, square, finite).
//   - Stage 2: for each column k pick the row with max |a_ik| (i ≥ k), swap,
//     then eliminate below the pivot (Doolittle order).
//
// Errors:
//   - ErrNilMatrix, ErrNonSquare, ErrNaNInf (validation).
//   - ErrSingular when the best available pivot is below pivotRelTol·max|A|.
//
// Determinism:
//   - Ties in pivot magnitude resolve to the lowest row index.
//
// Complexity:
//   - Time O(n^3), Space O(n^2).
func LU(m *Dense) (*LUFactors, error) {
	if err := ValidateSquare(m); err != nil {
		return nil, matrixErrorf(opLU, err)
	}
	if err := ValidateFinite(m); err != nil {
		return nil, matrixErrorf(opLU, err)
	}

	n := m.r
	lu := make([]float64, n*n)
	copy(lu, m.data)
	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}

	var scale float64
	for _, v := range lu {
		if a := math.Abs(v); a > scale {
			scale = a
		}
	}
	if scale == 0 {
		return nil, matrixErrorf(opLU, ErrSingular)
	}
	threshold := pivotRelTol * scale

	sign := 1.0
	var i, j, k, p int
	var maxAbs, factor float64
	for k = 0; k < n; k++ {
		// Select pivot row.
		p = k
		maxAbs = math.Abs(lu[k*n+k])
		for i = k + 1; i < n; i++ {
			if a := math.Abs(lu[i*n+k]); a > maxAbs {
				maxAbs, p = a, i
			}
		}
		if maxAbs <= threshold {
			return nil, matrixErrorf(opLU, ErrSingular)
		}
		if p != k {
			for j = 0; j < n; j++ {
				lu[k*n+j], lu[p*n+j] = lu[p*n+j], lu[k*n+j]
			}
			perm[k], perm[p] = perm[p], perm[k]
			sign = -sign
		}
		// Eliminate below the pivot.
		for i = k + 1; i < n; i++ {
			factor = lu[i*n+k] / lu[k*n+k]
			lu[i*n+k] = factor
			for j = k + 1; j < n; j++ {
				lu[i*n+j] -= factor * lu[k*n+j]
			}
		}
	}

	return &LUFactors{n: n, lu: lu, perm: perm, sign: sign}, nil
}

// Det returns the determinant of the factored matrix.
func (f *LUFactors) Det() float64 {
	d := f.sign
	for i := 0; i < f.n; i++ {
		d *= f.lu[i*f.n+i]
	}

	return d
}

// Solve solves A·x = b for x using the factorization.
// Returns ErrDimensionMismatch when len(b) != n.
// Complexity: O(n^2).
func (f *LUFactors) Solve(b []float64) ([]float64, error) {
	if err := ValidateVecLen(b, f.n); err != nil {
		return nil, err
	}
	n := f.n
	x := make([]float64, n)
	var i, k int
	var sum float64
	// Forward substitution: L·y = P·b (unit diagonal).
	for i = 0; i < n; i++ {
		sum = b[f.perm[i]]
		for k = 0; k < i; k++ {
			sum -= f.lu[i*n+k] * x[k]
		}
		x[i] = sum
	}
	// Backward substitution: U·x = y.
	for i = n - 1; i >= 0; i-- {
		sum = x[i]
		for k = i + 1; k < n; k++ {
			sum -= f.lu[i*n+k] * x[k]
		}
		x[i] = sum / f.lu[i*n+i]
	}

	return x, nil
}

// Inverse computes A^{-1} using LU with partial pivoting.
//
// Implementation:
//   - Stage 1: factor once (LU).
//   - Stage 2: solve A·x = e_col for each column and scatter into the result.
//
// Errors:
//   - Validation errors and ErrSingular from LU, wrapped with opInverse.
//
// Complexity:
//   - Time O(n^3), Space O(n^2).
//
// Notes:
//   - The Hessians inverted here are small (≤ ~8 parameters); forming the full
//     inverse is cheaper to reason about than carrying factors around.
func Inverse(m *Dense) (*Dense, error) {
	f, err := LU(m)
	if err != nil {
		return nil, matrixErrorf(opInverse, err)
	}

	n := f.n
	inv, err := NewDense(n, n)
	if err != nil {
		return nil, matrixErrorf(opInverse, err)
	}
	e := make([]float64, n)
	var col, i int
	for col = 0; col < n; col++ {
		for i = range e {
			e[i] = 0
		}
		e[col] = 1
		x, err := f.Solve(e)
		if err != nil {
			return nil, matrixErrorf(opInverse, err)
		}
		for i = 0; i < n; i++ {
			v := x[i]
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, matrixErrorf(opInverse, ErrSingular)
			}
			inv.data[i*n+col] = v
		}
	}

	return inv, nil
}

// Symmetrize returns (A + Aᵀ)/2.
// Errors: ErrNilMatrix, ErrNonSquare (wrapped with opSymmetrize).
// Complexity: O(n^2).
func Symmetrize(m *Dense) (*Dense, error) {
	if err := ValidateSquare(m); err != nil {
		return nil, matrixErrorf(opSymmetrize, err)
	}
	out := m.Clone()
	n := m.r
	var i, j int
	var avg float64
	for i = 0; i < n; i++ {
		for j = i + 1; j < n; j++ {
			avg = 0.5 * (m.data[i*n+j] + m.data[j*n+i])
			out.data[i*n+j] = avg
			out.data[j*n+i] = avg
		}
	}

	return out, nil
}

// MatVec returns y = A·x.
// Errors: ErrNilMatrix, ErrDimensionMismatch (wrapped with opMatVec).
// Complexity: O(r*c).
func MatVec(m *Dense, x []float64) ([]float64, error) {
	if err := ValidateNotNil(m); err != nil {
		return nil, matrixErrorf(opMatVec, err)
	}
	if err := ValidateVecLen(x, m.c); err != nil {
		return nil, matrixErrorf(opMatVec, err)
	}
	y := make([]float64, m.r)
	var i, j int
	var sum float64
	for i = 0; i < m.r; i++ {
		sum = ZeroSum
		for j = 0; j < m.c; j++ {
			sum += m.data[i*m.c+j] * x[j]
		}
		y[i] = sum
	}

	return y, nil
}

// QuadForm returns gᵀ·A·g, the delta-method variance of a scalar function
// with gradient g when A is a parameter covariance matrix.
// Errors: ErrNilMatrix, ErrNonSquare, ErrDimensionMismatch (wrapped with opQuadForm).
// Complexity: O(n^2).
func QuadForm(m *Dense, g []float64) (float64, error) {
	if err := ValidateSquare(m); err != nil {
		return 0, matrixErrorf(opQuadForm, err)
	}
	y, err := MatVec(m, g)
	if err != nil {
		return 0, matrixErrorf(opQuadForm, err)
	}
	var sum float64
	for i, v := range y {
		sum += g[i] * v
	}

	return sum, nil
}
