// Package matrix offers the dense linear algebra used by relfit's
// covariance and confidence-bound propagation.
//
// The matrix package provides:
//
//   - Dense, a row-major float64 matrix with error-returning accessors.
//   - LU factorization with partial pivoting and Inverse, used to turn the
//     observed Fisher information (Hessian of the negative log-likelihood)
//     into a parameter covariance matrix.
//   - Symmetrize, MatVec and QuadForm for delta-method variance propagation.
//
// Matrices here are tiny (one row per model parameter), so the kernels favour
// determinism and clear failure reporting (ErrSingular) over blocking or
// vectorization.
package matrix
