// SPDX-License-Identifier: MIT

package dist

import (
	"math"
	"math/rand/v2"
)

// eulerGamma is the Euler–Mascheroni constant (mean offset of the Gumbel law).
const eulerGamma = 0.57721566490153286060651209008240243

// ---------- Loglogistic ----------

// Loglogistic is the three-parameter log-logistic distribution:
// F(t) = 1 / (1 + ((t-Gamma)/Alpha)^-Beta) for t > Gamma.
type Loglogistic struct {
	Alpha float64 // scale
	Beta  float64 // shape
	Gamma float64 // threshold
}

func (d Loglogistic) Family() Family    { return FamilyLoglogistic }
func (d Loglogistic) Params() []float64 { return []float64{d.Alpha, d.Beta, d.Gamma} }

func (d Loglogistic) LogPDF(t float64) float64 {
	x := t - d.Gamma
	if x <= 0 {
		return math.Inf(-1)
	}
	lz := math.Log(x / d.Alpha)

	return math.Log(d.Beta/d.Alpha) + (d.Beta-1)*lz - 2*log1pExp(d.Beta*lz)
}

func (d Loglogistic) LogSF(t float64) float64 {
	x := t - d.Gamma
	if x <= 0 {
		return 0
	}

	return -log1pExp(d.Beta * math.Log(x/d.Alpha))
}

func (d Loglogistic) PDF(t float64) float64 { return math.Exp(d.LogPDF(t)) }
func (d Loglogistic) CDF(t float64) float64 { return cdfFromLogSF(d.LogSF(t)) }
func (d Loglogistic) SF(t float64) float64  { return sfFromLog(d.LogSF(t)) }
func (d Loglogistic) HF(t float64) float64  { return hazard(d.LogPDF(t), d.LogSF(t)) }
func (d Loglogistic) CHF(t float64) float64 { return -d.LogSF(t) }

func (d Loglogistic) Quantile(p float64) float64 {
	if !validProb(p) {
		return math.NaN()
	}

	return d.Alpha*math.Pow(p/(1-p), 1/d.Beta) + d.Gamma
}

// Mean is finite only for Beta > 1; +Inf otherwise.
func (d Loglogistic) Mean() float64 {
	if d.Beta <= 1 {
		return math.Inf(1)
	}
	b := math.Pi / d.Beta

	return d.Alpha*b/math.Sin(b) + d.Gamma
}

func (d Loglogistic) Rand(rnd *rand.Rand) float64 { return d.Quantile(uniform(rnd)) }

// ---------- Gumbel ----------

// Gumbel is the smallest-extreme-value (minimum) Gumbel distribution:
// F(t) = 1 - exp(-exp((t-Mu)/Sigma)).
type Gumbel struct {
	Mu    float64
	Sigma float64
}

func (d Gumbel) Family() Family    { return FamilyGumbel }
func (d Gumbel) Params() []float64 { return []float64{d.Mu, d.Sigma} }

func (d Gumbel) LogPDF(t float64) float64 {
	z := (t - d.Mu) / d.Sigma

	return z - math.Exp(z) - math.Log(d.Sigma)
}

func (d Gumbel) LogSF(t float64) float64 { return -math.Exp((t - d.Mu) / d.Sigma) }

func (d Gumbel) PDF(t float64) float64 { return math.Exp(d.LogPDF(t)) }
func (d Gumbel) CDF(t float64) float64 { return cdfFromLogSF(d.LogSF(t)) }
func (d Gumbel) SF(t float64) float64  { return sfFromLog(d.LogSF(t)) }
func (d Gumbel) HF(t float64) float64  { return math.Exp((t-d.Mu)/d.Sigma) / d.Sigma }
func (d Gumbel) CHF(t float64) float64 { return -d.LogSF(t) }

func (d Gumbel) Quantile(p float64) float64 {
	if !validProb(p) {
		return math.NaN()
	}

	return d.Mu + d.Sigma*math.Log(-math.Log1p(-p))
}

func (d Gumbel) Mean() float64               { return d.Mu - eulerGamma*d.Sigma }
func (d Gumbel) Rand(rnd *rand.Rand) float64 { return d.Quantile(uniform(rnd)) }

// ---------- Generalized Pareto ----------

// GeneralizedPareto is the generalized Pareto distribution with scale Lambda,
// shape Xi and threshold Gamma:
// S(t) = (1 + Xi·(t-Gamma)/Lambda)^(-1/Xi), reducing to the exponential law
// when Xi == 0. For Xi < 0 the support ends at Gamma - Lambda/Xi.
type GeneralizedPareto struct {
	Lambda float64 // scale
	Xi     float64 // shape
	Gamma  float64 // threshold
}

// xiZero is the |Xi| below which the exponential limit is used.
const xiZero = 1e-12

func (d GeneralizedPareto) Family() Family    { return FamilyGeneralizedPareto }
func (d GeneralizedPareto) Params() []float64 { return []float64{d.Lambda, d.Xi, d.Gamma} }

// logArg returns ln(1 + Xi·x/Lambda), or NaN outside the support.
func (d GeneralizedPareto) logArg(x float64) float64 {
	a := d.Xi * x / d.Lambda
	if a <= -1 {
		return math.NaN()
	}

	return math.Log1p(a)
}

func (d GeneralizedPareto) LogPDF(t float64) float64 {
	x := t - d.Gamma
	if x < 0 {
		return math.Inf(-1)
	}
	if math.Abs(d.Xi) < xiZero {
		return -math.Log(d.Lambda) - x/d.Lambda
	}
	la := d.logArg(x)
	if math.IsNaN(la) {
		return math.Inf(-1)
	}

	return -math.Log(d.Lambda) - (1/d.Xi+1)*la
}

func (d GeneralizedPareto) LogSF(t float64) float64 {
	x := t - d.Gamma
	if x <= 0 {
		return 0
	}
	if math.Abs(d.Xi) < xiZero {
		return -x / d.Lambda
	}
	la := d.logArg(x)
	if math.IsNaN(la) {
		return math.Inf(-1)
	}

	return -la / d.Xi
}

func (d GeneralizedPareto) PDF(t float64) float64 { return math.Exp(d.LogPDF(t)) }
func (d GeneralizedPareto) CDF(t float64) float64 { return cdfFromLogSF(d.LogSF(t)) }
func (d GeneralizedPareto) SF(t float64) float64  { return sfFromLog(d.LogSF(t)) }
func (d GeneralizedPareto) HF(t float64) float64  { return hazard(d.LogPDF(t), d.LogSF(t)) }
func (d GeneralizedPareto) CHF(t float64) float64 { return -d.LogSF(t) }

func (d GeneralizedPareto) Quantile(p float64) float64 {
	if !validProb(p) {
		return math.NaN()
	}
	if math.Abs(d.Xi) < xiZero {
		return d.Gamma - d.Lambda*math.Log1p(-p)
	}

	return d.Gamma + d.Lambda/d.Xi*math.Expm1(-d.Xi*math.Log1p(-p))
}

// Mean is finite only for Xi < 1; +Inf otherwise.
func (d GeneralizedPareto) Mean() float64 {
	if d.Xi >= 1 {
		return math.Inf(1)
	}

	return d.Gamma + d.Lambda/(1-d.Xi)
}

func (d GeneralizedPareto) Rand(rnd *rand.Rand) float64 { return d.Quantile(uniform(rnd)) }

// log1pExp computes ln(1 + e^x) without overflow.
func log1pExp(x float64) float64 {
	if x > 35 {
		return x
	}

	return math.Log1p(math.Exp(x))
}
