// SPDX-License-Identifier: MIT

package fit

import (
	"math"

	"github.com/katalvlaran/relfit/dist"
	"github.com/katalvlaran/relfit/matrix"
)

// Result is the outcome of one fit. It is a value object: every slice, the
// covariance and the fitted distribution belong to this Result alone.
type Result struct {
	Model  string
	Family dist.Family
	Method Method

	// Names and Params hold the full parameter vector, fixed entries included
	// (gamma = 0 for a 2P model).
	Names  []string
	Params []float64

	// Free names the estimated parameters in covariance order; Estimate holds
	// their values and StdErr their standard errors (NaN when unavailable).
	Free     []string
	Estimate []float64
	StdErr   []float64

	// Covariance is nil when the observed information could not be inverted;
	// CovarianceErr then wraps ErrSingularCovariance.
	Covariance    *matrix.Dense
	CovarianceErr error

	LogLik float64
	AICc   float64
	BIC    float64
	AD     float64
	K      int // parameter count used by AICc and BIC
	N      int // failures + right-censored

	// Optimizer is the strategy that produced the estimate, "closed-form",
	// or the rank-regression direction ("RRX"/"RRY") for LS.
	Optimizer     string
	LowConfidence bool
	Diagnostics   []Outcome

	Distribution *Fitted
}

// Param returns the value of the named parameter.
func (r *Result) Param(name string) (float64, bool) {
	for i, n := range r.Names {
		if n == name {
			return r.Params[i], true
		}
	}

	return math.NaN(), false
}

// Cov returns the covariance of two free parameters (NaN when unavailable).
func (r *Result) Cov(a, b string) float64 {
	if r.Covariance == nil {
		return math.NaN()
	}
	i, j := indexOf(r.Free, a), indexOf(r.Free, b)
	if i < 0 || j < 0 {
		return math.NaN()
	}
	v, err := r.Covariance.At(i, j)
	if err != nil {
		return math.NaN()
	}

	return v
}

func indexOf(names []string, name string) int {
	for i, n := range names {
		if n == name {
			return i
		}
	}

	return -1
}

// Named flattens the result into the field names used by reports:
// every parameter, AICc, BIC, loglik, AD, <p>_SE for free parameters and
// Cov_<a>_<b> for each pair of free parameters.
func (r *Result) Named() map[string]float64 {
	out := make(map[string]float64, len(r.Names)+4+len(r.Free)*(len(r.Free)+1)/2)
	for i, n := range r.Names {
		out[n] = r.Params[i]
	}
	out["AICc"] = r.AICc
	out["BIC"] = r.BIC
	out["loglik"] = r.LogLik
	out["AD"] = r.AD
	for i, n := range r.Free {
		out[n+"_SE"] = r.StdErr[i]
		for j := i + 1; j < len(r.Free); j++ {
			out["Cov_"+n+"_"+r.Free[j]] = r.Cov(n, r.Free[j])
		}
	}

	return out
}

// clone returns a deep copy of r.
func (r *Result) clone() *Result {
	if r == nil {
		return nil
	}
	cp := *r
	cp.Names = append([]string(nil), r.Names...)
	cp.Params = append([]float64(nil), r.Params...)
	cp.Free = append([]string(nil), r.Free...)
	cp.Estimate = append([]float64(nil), r.Estimate...)
	cp.StdErr = append([]float64(nil), r.StdErr...)
	cp.Diagnostics = append([]Outcome(nil), r.Diagnostics...)
	if r.Covariance != nil {
		cp.Covariance = r.Covariance.Clone()
	}
	cp.Distribution = r.Distribution.clone()

	return &cp
}
