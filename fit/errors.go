// SPDX-License-Identifier: MIT

package fit

import "errors"

// Sentinel errors. Callers match them with errors.Is; the returned errors carry
// the model name and operation as context.
var (
	// ErrInvalidData: empty failure set, non-finite values, non-positive values
	// for a positive-support family, or values outside (0,1) for Beta.
	ErrInvalidData = errors.New("fit: invalid data")

	// ErrUnderDetermined: fewer distinct failure values than free parameters.
	ErrUnderDetermined = errors.New("fit: fewer distinct failures than free parameters")

	// ErrOptimizationFailure: every strategy and start point of the fallback
	// chain failed to converge or returned a boundary/non-finite estimate.
	ErrOptimizationFailure = errors.New("fit: optimization failed")

	// ErrSingularCovariance: the Hessian could not be inverted or produced
	// non-positive variances. Non-fatal; recorded on the Result.
	ErrSingularCovariance = errors.New("fit: singular covariance")

	// ErrUnsupportedFamily: the family cannot be fitted to this data or with
	// this method.
	ErrUnsupportedFamily = errors.New("fit: unsupported family for this data")

	// ErrUnknownModel: no catalogue model has the requested name.
	ErrUnknownModel = errors.New("fit: unknown model")

	// ErrBoundsUnavailable: confidence bounds were requested but the
	// covariance is undefined.
	ErrBoundsUnavailable = errors.New("fit: confidence bounds unavailable")

	// ErrBoundsUnsupported: confidence bounds are not defined for the function
	// (hazard rate).
	ErrBoundsUnsupported = errors.New("fit: confidence bounds not supported for this function")

	// ErrInvalidBoundRequest: CI outside (0,1) or unknown bound type/side.
	ErrInvalidBoundRequest = errors.New("fit: invalid confidence bound request")

	// ErrBadComponents: a composite fit was given fewer than two components or
	// a component that cannot be used inside a composite.
	ErrBadComponents = errors.New("fit: invalid composite components")
)
