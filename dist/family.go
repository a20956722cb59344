// SPDX-License-Identifier: MIT

// Package dist - family tags and parameter metadata.
//
// Purpose:
//   - Enumerate the closed set of lifetime families.
//   - Describe every family's canonical parameter vector (order, names, bounds)
//     so that estimators can build bounded searches without per-family code.
//
// Canonical vectors:
//
//	Weibull            [alpha(scale), beta(shape), gamma(threshold)]
//	Gamma              [alpha(scale), beta(shape), gamma(threshold)]
//	Lognormal          [mu, sigma, gamma(threshold)]
//	Loglogistic        [alpha(scale), beta(shape), gamma(threshold)]
//	Normal             [mu, sigma]
//	Gumbel             [mu, sigma]
//	Exponential        [Lambda(rate), gamma(threshold)]
//	Beta               [alpha, beta]
//	GeneralizedPareto  [Lambda(scale), xi(shape), gamma(threshold)]
package dist

import (
	"fmt"
	"math"
)

// Family tags one member of the closed set of supported distributions.
type Family int

// Supported families.
const (
	FamilyWeibull Family = iota
	FamilyGamma
	FamilyLognormal
	FamilyLoglogistic
	FamilyNormal
	FamilyGumbel
	FamilyExponential
	FamilyBeta
	FamilyGeneralizedPareto
	FamilyMixture
	FamilyCompetingRisks
)

var familyNames = [...]string{
	FamilyWeibull:           "Weibull",
	FamilyGamma:             "Gamma",
	FamilyLognormal:         "Lognormal",
	FamilyLoglogistic:       "Loglogistic",
	FamilyNormal:            "Normal",
	FamilyGumbel:            "Gumbel",
	FamilyExponential:       "Exponential",
	FamilyBeta:              "Beta",
	FamilyGeneralizedPareto: "GeneralizedPareto",
	FamilyMixture:           "Mixture",
	FamilyCompetingRisks:    "CompetingRisks",
}

// String returns the family name, e.g. "Weibull".
func (f Family) String() string {
	if f < 0 || int(f) >= len(familyNames) {
		return fmt.Sprintf("Family(%d)", int(f))
	}

	return familyNames[f]
}

// Composite reports whether f is a mixture or competing-risks model.
func (f Family) Composite() bool {
	return f == FamilyMixture || f == FamilyCompetingRisks
}

// PositiveSupport reports whether the family (with threshold 0) is only
// defined for t > 0. Normal and Gumbel are defined on the whole real line;
// Beta is defined on (0,1).
func (f Family) PositiveSupport() bool {
	switch f {
	case FamilyNormal, FamilyGumbel:
		return false
	default:
		return true
	}
}

// ParamInfo describes one entry of a family's canonical parameter vector.
type ParamInfo struct {
	Name  string  // flat name used in results, e.g. "alpha"
	Lower float64 // exclusive lower bound (-Inf when unbounded)
	Upper float64 // exclusive upper bound (+Inf when unbounded)

	// Threshold marks the location-shift parameter (gamma). Its effective
	// upper bound depends on the data and is set by the estimator.
	Threshold bool

	// Unit is the power of the time unit the parameter carries: 1 for
	// scales and locations, -1 for rates, 0 for dimensionless shapes.
	Unit int
}

var (
	inf    = math.Inf(1)
	posPar = func(name string) ParamInfo { return ParamInfo{Name: name, Lower: 0, Upper: inf} }
	realPr = func(name string) ParamInfo { return ParamInfo{Name: name, Lower: -inf, Upper: inf} }
	thrPar = ParamInfo{Name: "gamma", Lower: -inf, Upper: inf, Threshold: true, Unit: 1}
)

// withUnit returns p carrying the time unit raised to u.
func withUnit(p ParamInfo, u int) ParamInfo {
	p.Unit = u

	return p
}

// ParamsOf returns the canonical parameter metadata of a single family.
// Composite families have no fixed vector and yield ErrUnknownFamily.
func ParamsOf(f Family) ([]ParamInfo, error) {
	switch f {
	case FamilyWeibull, FamilyGamma, FamilyLoglogistic:
		return []ParamInfo{withUnit(posPar("alpha"), 1), posPar("beta"), thrPar}, nil
	case FamilyLognormal:
		return []ParamInfo{realPr("mu"), posPar("sigma"), thrPar}, nil
	case FamilyNormal, FamilyGumbel:
		return []ParamInfo{withUnit(realPr("mu"), 1), withUnit(posPar("sigma"), 1)}, nil
	case FamilyExponential:
		return []ParamInfo{withUnit(posPar("Lambda"), -1), thrPar}, nil
	case FamilyBeta:
		return []ParamInfo{posPar("alpha"), posPar("beta")}, nil
	case FamilyGeneralizedPareto:
		return []ParamInfo{
			withUnit(posPar("Lambda"), 1),
			{Name: "xi", Lower: -1, Upper: inf},
			thrPar,
		}, nil
	default:
		return nil, fmt.Errorf("ParamsOf(%s): %w", f, ErrUnknownFamily)
	}
}

// Families lists every single (non-composite) family in declaration order.
func Families() []Family {
	return []Family{
		FamilyWeibull, FamilyGamma, FamilyLognormal, FamilyLoglogistic,
		FamilyNormal, FamilyGumbel, FamilyExponential, FamilyBeta,
		FamilyGeneralizedPareto,
	}
}
