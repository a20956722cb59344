// SPDX-License-Identifier: MIT

package dist

import (
	"fmt"
	"math"
	"math/rand/v2"
)

// Distribution is the capability every family (single or composite) offers
// to the estimators.
//
// Contract:
//   - LogPDF returns -Inf outside the support; LogSF returns 0 below it.
//   - Quantile expects p in (0,1) and returns NaN otherwise.
//   - Implementations are immutable values and safe for concurrent use.
type Distribution interface {
	Family() Family
	// Params returns a copy of the canonical parameter vector (nil for composites).
	Params() []float64

	LogPDF(t float64) float64
	LogSF(t float64) float64
	PDF(t float64) float64
	CDF(t float64) float64
	SF(t float64) float64
	HF(t float64) float64
	CHF(t float64) float64
	Quantile(p float64) float64
	Mean() float64

	// Rand draws one variate from rnd.
	Rand(rnd *rand.Rand) float64
}

// New instantiates a single family at the canonical parameter vector params.
//
// Errors:
//   - ErrUnknownFamily for composite or out-of-range tags.
//   - ErrBadParams when len(params) does not match, an entry is not finite,
//     or an entry violates the family's bounds (see ParamsOf).
//
// Complexity: O(len(params)).
func New(f Family, params []float64) (Distribution, error) {
	info, err := ParamsOf(f)
	if err != nil {
		return nil, err
	}
	if len(params) != len(info) {
		return nil, fmt.Errorf("%w: %s wants %d parameters, got %d", ErrBadParams, f, len(info), len(params))
	}
	for i, p := range params {
		if math.IsNaN(p) || math.IsInf(p, 0) || p <= info[i].Lower || p >= info[i].Upper {
			return nil, fmt.Errorf("%w: %s %s=%g", ErrBadParams, f, info[i].Name, p)
		}
	}

	switch f {
	case FamilyWeibull:
		return Weibull{Alpha: params[0], Beta: params[1], Gamma: params[2]}, nil
	case FamilyGamma:
		return Gamma{Alpha: params[0], Beta: params[1], Gamma: params[2]}, nil
	case FamilyLognormal:
		return Lognormal{Mu: params[0], Sigma: params[1], Gamma: params[2]}, nil
	case FamilyLoglogistic:
		return Loglogistic{Alpha: params[0], Beta: params[1], Gamma: params[2]}, nil
	case FamilyNormal:
		return Normal{Mu: params[0], Sigma: params[1]}, nil
	case FamilyGumbel:
		return Gumbel{Mu: params[0], Sigma: params[1]}, nil
	case FamilyExponential:
		return Exponential{Lambda: params[0], Gamma: params[1]}, nil
	case FamilyBeta:
		return Beta{Alpha: params[0], Beta: params[1]}, nil
	case FamilyGeneralizedPareto:
		return GeneralizedPareto{Lambda: params[0], Xi: params[1], Gamma: params[2]}, nil
	}

	return nil, fmt.Errorf("New(%s): %w", f, ErrUnknownFamily)
}

// hazard returns exp(logpdf - logsf), the hazard rate, mapping the
// fully-failed region (logsf = -Inf) to +Inf.
func hazard(logpdf, logsf float64) float64 {
	if math.IsInf(logsf, -1) {
		return math.Inf(1)
	}

	return math.Exp(logpdf - logsf)
}

// validProb reports whether p lies strictly inside (0,1).
func validProb(p float64) bool { return p > 0 && p < 1 }

// sfFromLog exponentiates a log-survival value.
func sfFromLog(logsf float64) float64 { return math.Exp(logsf) }

// cdfFromLogSF returns 1 - exp(logsf) without cancellation for small CDFs.
func cdfFromLogSF(logsf float64) float64 { return -math.Expm1(logsf) }
