// SPDX-License-Identifier: MIT

package dist

import "errors"

// Sentinel errors returned by the dist package.
var (
	// ErrBadParams indicates a parameter vector of the wrong length, with a
	// non-finite entry, or outside the family's parameter bounds.
	ErrBadParams = errors.New("dist: invalid distribution parameters")

	// ErrUnknownFamily indicates a Family value outside the closed set.
	ErrUnknownFamily = errors.New("dist: unknown distribution family")

	// ErrBadComposite indicates a mixture or competing-risks model with fewer
	// than two components, nil components, or proportions off the simplex.
	ErrBadComposite = errors.New("dist: invalid composite model")
)
