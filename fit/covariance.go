// SPDX-License-Identifier: MIT

package fit

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/relfit/matrix"
)

const (
	// hessRelStep is the relative finite-difference step of the Hessian.
	hessRelStep = 1e-4

	// hessMinScale floors |x| when sizing the step.
	hessMinScale = 1e-2

	// symTol bounds the asymmetry of the inverted information, relative to
	// its largest variance.
	symTol = 1e-6
)

// hessian estimates the Hessian of f at x in natural coordinates with
// gonum's central formula, which for a pair (i, j) is the four-point rule
//
//	H_ij ≈ [f(x+h_i+h_j) - f(x+h_i-h_j) - f(x-h_i+h_j) + f(x-h_i-h_j)] / (4 h_i h_j)
//
// using h_i = 1e-4·max(|x_i|, 1e-2), shrunk so that x ± 2h stays inside the
// parameter box (e.g. a threshold just below min(data)). The parameters have
// very different magnitudes, so fd runs with unit step in the scaled
// coordinates s_i = (x_i - x̂_i)/h_i and the result is scaled back.
//
// Complexity: O(k²) evaluations of f.
func hessian(f func([]float64) float64, x []float64, cd codec) (*matrix.Dense, error) {
	k := len(x)
	h := make([]float64, k)
	for i, v := range x {
		h[i] = hessRelStep * math.Max(math.Abs(v), hessMinScale)
		if i < len(cd) {
			b := cd[i]
			if b.hasHi() {
				h[i] = math.Min(h[i], 0.25*(b.hi-v))
			}
			if b.hasLo() {
				h[i] = math.Min(h[i], 0.25*(v-b.lo))
			}
		}
	}

	y := make([]float64, k)
	scaled := func(s []float64) float64 {
		for i := range y {
			y[i] = x[i] + s[i]*h[i]
		}

		return f(y)
	}
	var hs mat.SymDense
	fd.Hessian(&hs, scaled, make([]float64, k), &fd.Settings{Formula: fd.Central, Step: 1})

	H, err := matrix.NewDense(k, k)
	if err != nil {
		return nil, err
	}
	var i, j int
	for i = 0; i < k; i++ {
		for j = i; j < k; j++ {
			v := hs.At(i, j) / (h[i] * h[j])
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("hessian: %w", matrix.ErrNaNInf)
			}
			_ = H.Set(i, j, v)
			_ = H.Set(j, i, v)
		}
	}

	return H, nil
}

// covariance inverts the observed information at x.
//
// Errors: ErrSingularCovariance (wrapping the underlying cause) when the
// Hessian is non-finite, singular or not positive definite, or the inverse is
// numerically asymmetric or has a non-positive or non-finite diagonal.
func covariance(f func([]float64) float64, x []float64, cd codec) (*matrix.Dense, error) {
	H, err := hessian(f, x, cd)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSingularCovariance, err)
	}
	lu, err := matrix.LU(H)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSingularCovariance, err)
	}
	if det := lu.Det(); !(det > 0) {
		return nil, fmt.Errorf("%w: information matrix not positive definite (det %g)", ErrSingularCovariance, det)
	}
	inv, err := matrix.Inverse(H)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSingularCovariance, err)
	}
	var top float64
	for i, v := range inv.Diag() {
		if !(v > 0) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: variance of parameter %d is %g", ErrSingularCovariance, i, v)
		}
		top = math.Max(top, v)
	}
	if err := matrix.ValidateSymmetric(inv, symTol*top); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSingularCovariance, err)
	}

	return matrix.Symmetrize(inv)
}

// standardErrors returns sqrt of the covariance diagonal, or NaNs when cov is nil.
func standardErrors(cov *matrix.Dense, k int) []float64 {
	out := make([]float64, k)
	if cov == nil {
		for i := range out {
			out[i] = math.NaN()
		}
		return out
	}
	for i, v := range cov.Diag() {
		out[i] = math.Sqrt(v)
	}

	return out
}
