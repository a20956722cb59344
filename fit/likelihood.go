// SPDX-License-Identifier: MIT

package fit

import (
	"math"

	"github.com/katalvlaran/relfit/dist"
)

// Builder instantiates a distribution from a parameter vector.
type Builder func(params []float64) (dist.Distribution, error)

// NegLogLik returns the censored negative log-likelihood
//
//	-( Σ_failures log f(t) + Σ_censored log S(t) )
//
// as a function of the parameter vector accepted by build. Parameters that
// build rejects, and any non-finite total, map to +Inf, never NaN, so an
// optimizer sees a wall rather than garbage. The function is pure and safe for
// concurrent use as long as build is.
func NegLogLik(obs *Observations, build Builder) func([]float64) float64 {
	return func(params []float64) float64 {
		d, err := build(params)
		if err != nil {
			return math.Inf(1)
		}

		return negLogLikOf(d, obs)
	}
}

// negLogLikOf evaluates the censored NLL of a concrete distribution.
func negLogLikOf(d dist.Distribution, obs *Observations) float64 {
	var ll float64
	for _, t := range obs.failures {
		ll += d.LogPDF(t)
	}
	for _, t := range obs.censored {
		ll += d.LogSF(t)
	}
	if math.IsNaN(ll) || math.IsInf(ll, 0) {
		return math.Inf(1)
	}

	return -ll
}
