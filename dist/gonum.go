// SPDX-License-Identifier: MIT

// Package dist - families backed by gonum's distuv.
//
// Weibull, Gamma, Lognormal, Normal, Exponential and Beta delegate their
// density, distribution and quantile functions to gonum.org/v1/gonum/stat/distuv
// and only add the threshold shift (t - gamma) and the reliability-oriented
// accessors (SF, HF, CHF) on top.
package dist

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

// uniform draws from (0,1), rejecting the exact zero math/rand may return.
func uniform(rnd *rand.Rand) float64 {
	for {
		if u := rnd.Float64(); u > 0 {
			return u
		}
	}
}

// ---------- Weibull ----------

// Weibull is the three-parameter Weibull distribution:
// F(t) = 1 - exp(-((t-Gamma)/Alpha)^Beta) for t > Gamma.
type Weibull struct {
	Alpha float64 // scale
	Beta  float64 // shape
	Gamma float64 // threshold
}

func (d Weibull) base() distuv.Weibull { return distuv.Weibull{K: d.Beta, Lambda: d.Alpha} }

func (d Weibull) Family() Family    { return FamilyWeibull }
func (d Weibull) Params() []float64 { return []float64{d.Alpha, d.Beta, d.Gamma} }

func (d Weibull) LogPDF(t float64) float64 {
	x := t - d.Gamma
	if x <= 0 {
		return math.Inf(-1)
	}

	return d.base().LogProb(x)
}

func (d Weibull) LogSF(t float64) float64 {
	x := t - d.Gamma
	if x <= 0 {
		return 0
	}

	return -math.Pow(x/d.Alpha, d.Beta)
}

func (d Weibull) PDF(t float64) float64 { return math.Exp(d.LogPDF(t)) }
func (d Weibull) CDF(t float64) float64 { return cdfFromLogSF(d.LogSF(t)) }
func (d Weibull) SF(t float64) float64  { return sfFromLog(d.LogSF(t)) }
func (d Weibull) HF(t float64) float64  { return hazard(d.LogPDF(t), d.LogSF(t)) }
func (d Weibull) CHF(t float64) float64 { return -d.LogSF(t) }

func (d Weibull) Quantile(p float64) float64 {
	if !validProb(p) {
		return math.NaN()
	}

	return d.base().Quantile(p) + d.Gamma
}

func (d Weibull) Mean() float64               { return d.base().Mean() + d.Gamma }
func (d Weibull) Rand(rnd *rand.Rand) float64 { return d.Quantile(uniform(rnd)) }

// ---------- Gamma ----------

// Gamma is the three-parameter Gamma distribution with scale Alpha and shape
// Beta (mean Alpha·Beta + Gamma).
type Gamma struct {
	Alpha float64 // scale
	Beta  float64 // shape
	Gamma float64 // threshold
}

// base maps to distuv's (shape, rate) parameterization.
func (d Gamma) base() distuv.Gamma { return distuv.Gamma{Alpha: d.Beta, Beta: 1 / d.Alpha} }

func (d Gamma) Family() Family    { return FamilyGamma }
func (d Gamma) Params() []float64 { return []float64{d.Alpha, d.Beta, d.Gamma} }

func (d Gamma) LogPDF(t float64) float64 {
	x := t - d.Gamma
	if x <= 0 {
		return math.Inf(-1)
	}

	return d.base().LogProb(x)
}

func (d Gamma) LogSF(t float64) float64 {
	x := t - d.Gamma
	if x <= 0 {
		return 0
	}

	return math.Log(d.base().Survival(x))
}

func (d Gamma) PDF(t float64) float64 { return math.Exp(d.LogPDF(t)) }

func (d Gamma) CDF(t float64) float64 {
	x := t - d.Gamma
	if x <= 0 {
		return 0
	}

	return d.base().CDF(x)
}

func (d Gamma) SF(t float64) float64  { return sfFromLog(d.LogSF(t)) }
func (d Gamma) HF(t float64) float64  { return hazard(d.LogPDF(t), d.LogSF(t)) }
func (d Gamma) CHF(t float64) float64 { return -d.LogSF(t) }

func (d Gamma) Quantile(p float64) float64 {
	if !validProb(p) {
		return math.NaN()
	}

	return d.base().Quantile(p) + d.Gamma
}

func (d Gamma) Mean() float64               { return d.Alpha*d.Beta + d.Gamma }
func (d Gamma) Rand(rnd *rand.Rand) float64 { return d.Quantile(uniform(rnd)) }

// ---------- Lognormal ----------

// Lognormal is the three-parameter lognormal distribution: ln(t-Gamma) is
// normal with mean Mu and standard deviation Sigma.
type Lognormal struct {
	Mu    float64
	Sigma float64
	Gamma float64 // threshold
}

func (d Lognormal) base() distuv.LogNormal { return distuv.LogNormal{Mu: d.Mu, Sigma: d.Sigma} }

func (d Lognormal) Family() Family    { return FamilyLognormal }
func (d Lognormal) Params() []float64 { return []float64{d.Mu, d.Sigma, d.Gamma} }

func (d Lognormal) LogPDF(t float64) float64 {
	x := t - d.Gamma
	if x <= 0 {
		return math.Inf(-1)
	}

	return d.base().LogProb(x)
}

func (d Lognormal) LogSF(t float64) float64 {
	x := t - d.Gamma
	if x <= 0 {
		return 0
	}

	return math.Log(d.base().Survival(x))
}

func (d Lognormal) PDF(t float64) float64 { return math.Exp(d.LogPDF(t)) }

func (d Lognormal) CDF(t float64) float64 {
	x := t - d.Gamma
	if x <= 0 {
		return 0
	}

	return d.base().CDF(x)
}

func (d Lognormal) SF(t float64) float64  { return sfFromLog(d.LogSF(t)) }
func (d Lognormal) HF(t float64) float64  { return hazard(d.LogPDF(t), d.LogSF(t)) }
func (d Lognormal) CHF(t float64) float64 { return -d.LogSF(t) }

func (d Lognormal) Quantile(p float64) float64 {
	if !validProb(p) {
		return math.NaN()
	}

	return d.base().Quantile(p) + d.Gamma
}

func (d Lognormal) Mean() float64               { return d.base().Mean() + d.Gamma }
func (d Lognormal) Rand(rnd *rand.Rand) float64 { return d.Quantile(uniform(rnd)) }

// ---------- Normal ----------

// Normal is the normal distribution with mean Mu and standard deviation Sigma.
type Normal struct {
	Mu    float64
	Sigma float64
}

func (d Normal) base() distuv.Normal { return distuv.Normal{Mu: d.Mu, Sigma: d.Sigma} }

func (d Normal) Family() Family              { return FamilyNormal }
func (d Normal) Params() []float64           { return []float64{d.Mu, d.Sigma} }
func (d Normal) LogPDF(t float64) float64    { return d.base().LogProb(t) }
func (d Normal) LogSF(t float64) float64     { return math.Log(d.base().Survival(t)) }
func (d Normal) PDF(t float64) float64       { return d.base().Prob(t) }
func (d Normal) CDF(t float64) float64       { return d.base().CDF(t) }
func (d Normal) SF(t float64) float64        { return d.base().Survival(t) }
func (d Normal) HF(t float64) float64        { return hazard(d.LogPDF(t), d.LogSF(t)) }
func (d Normal) CHF(t float64) float64       { return -d.LogSF(t) }
func (d Normal) Mean() float64               { return d.Mu }
func (d Normal) Rand(rnd *rand.Rand) float64 { return d.Quantile(uniform(rnd)) }

func (d Normal) Quantile(p float64) float64 {
	if !validProb(p) {
		return math.NaN()
	}

	return d.base().Quantile(p)
}

// ---------- Exponential ----------

// Exponential is the two-parameter exponential distribution with rate Lambda
// and threshold Gamma.
type Exponential struct {
	Lambda float64 // rate
	Gamma  float64 // threshold
}

func (d Exponential) base() distuv.Exponential { return distuv.Exponential{Rate: d.Lambda} }

func (d Exponential) Family() Family    { return FamilyExponential }
func (d Exponential) Params() []float64 { return []float64{d.Lambda, d.Gamma} }

func (d Exponential) LogPDF(t float64) float64 {
	x := t - d.Gamma
	if x < 0 {
		return math.Inf(-1)
	}

	return d.base().LogProb(x)
}

func (d Exponential) LogSF(t float64) float64 {
	x := t - d.Gamma
	if x <= 0 {
		return 0
	}

	return -d.Lambda * x
}

func (d Exponential) PDF(t float64) float64 { return math.Exp(d.LogPDF(t)) }
func (d Exponential) CDF(t float64) float64 { return cdfFromLogSF(d.LogSF(t)) }
func (d Exponential) SF(t float64) float64  { return sfFromLog(d.LogSF(t)) }
func (d Exponential) HF(t float64) float64  { return hazard(d.LogPDF(t), d.LogSF(t)) }
func (d Exponential) CHF(t float64) float64 { return -d.LogSF(t) }

func (d Exponential) Quantile(p float64) float64 {
	if !validProb(p) {
		return math.NaN()
	}

	return d.base().Quantile(p) + d.Gamma
}

func (d Exponential) Mean() float64               { return 1/d.Lambda + d.Gamma }
func (d Exponential) Rand(rnd *rand.Rand) float64 { return d.Quantile(uniform(rnd)) }

// ---------- Beta ----------

// Beta is the beta distribution on (0,1) with shapes Alpha and Beta.
type Beta struct {
	Alpha float64
	Beta  float64
}

func (d Beta) base() distuv.Beta { return distuv.Beta{Alpha: d.Alpha, Beta: d.Beta} }

func (d Beta) Family() Family    { return FamilyBeta }
func (d Beta) Params() []float64 { return []float64{d.Alpha, d.Beta} }

func (d Beta) LogPDF(t float64) float64 {
	if t <= 0 || t >= 1 {
		return math.Inf(-1)
	}

	return d.base().LogProb(t)
}

func (d Beta) LogSF(t float64) float64 {
	switch {
	case t <= 0:
		return 0
	case t >= 1:
		return math.Inf(-1)
	}

	return math.Log(d.base().Survival(t))
}

func (d Beta) PDF(t float64) float64 { return math.Exp(d.LogPDF(t)) }

func (d Beta) CDF(t float64) float64 {
	switch {
	case t <= 0:
		return 0
	case t >= 1:
		return 1
	}

	return d.base().CDF(t)
}

func (d Beta) SF(t float64) float64  { return sfFromLog(d.LogSF(t)) }
func (d Beta) HF(t float64) float64  { return hazard(d.LogPDF(t), d.LogSF(t)) }
func (d Beta) CHF(t float64) float64 { return -d.LogSF(t) }

func (d Beta) Quantile(p float64) float64 {
	if !validProb(p) {
		return math.NaN()
	}

	return d.base().Quantile(p)
}

func (d Beta) Mean() float64               { return d.Alpha / (d.Alpha + d.Beta) }
func (d Beta) Rand(rnd *rand.Rand) float64 { return d.Quantile(uniform(rnd)) }
