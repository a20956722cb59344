// SPDX-License-Identifier: MIT

// Package fit - fitted distribution and confidence-bound propagation.
//
// Bounds come from the delta method: for a scalar g(θ) with gradient ∇g,
// Var(g) ≈ ∇gᵀ·Cov·∇g. The transform is chosen so the back-mapped bound stays
// in range:
//
//	bound on time:         g = ln(t_p - γ)  (plain t_p for Normal and Gumbel)
//	bound on reliability:  g = ln CHF(t);   CHF = e^g, SF = exp(-e^g), CDF = 1 - SF
//
// z = Φ⁻¹(1-(1-CI)/2) for two-sided requests and Φ⁻¹(CI) for one-sided ones.
package fit

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/katalvlaran/relfit/dist"
	"github.com/katalvlaran/relfit/matrix"
)

// BoundType selects what the confidence bounds are placed on.
type BoundType int

const (
	// BoundOnTime bounds the time at which a given probability level is reached.
	BoundOnTime BoundType = iota
	// BoundOnReliability bounds the function value at a given time.
	BoundOnReliability
)

func (t BoundType) String() string {
	if t == BoundOnReliability {
		return "reliability"
	}

	return "time"
}

// ParseBoundType accepts "time"/"T" and "reliability"/"R".
func ParseBoundType(s string) (BoundType, error) {
	switch s {
	case "time", "T", "t":
		return BoundOnTime, nil
	case "reliability", "R", "r":
		return BoundOnReliability, nil
	}

	return 0, fmt.Errorf("ParseBoundType(%q): %w", s, ErrInvalidBoundRequest)
}

// Side selects which tail(s) of the interval are produced.
type Side int

const (
	TwoSided Side = iota
	Lower
	Upper
)

// BoundRequest asks for confidence bounds on a curve.
type BoundRequest struct {
	CI   float64 // confidence level in (0,1)
	Type BoundType
	Side Side
}

func (r BoundRequest) validate() error {
	switch {
	case !(r.CI > 0 && r.CI < 1):
		return fmt.Errorf("%w: CI=%g outside (0,1)", ErrInvalidBoundRequest, r.CI)
	case r.Type != BoundOnTime && r.Type != BoundOnReliability:
		return fmt.Errorf("%w: unknown bound type %d", ErrInvalidBoundRequest, int(r.Type))
	case r.Side < TwoSided || r.Side > Upper:
		return fmt.Errorf("%w: unknown side %d", ErrInvalidBoundRequest, int(r.Side))
	}

	return nil
}

// z returns the standard-normal quantile for the request.
func (r BoundRequest) z() float64 {
	if r.Side == TwoSided {
		return distuv.UnitNormal.Quantile(1 - (1-r.CI)/2)
	}

	return distuv.UnitNormal.Quantile(r.CI)
}

// Function names an evaluator of a fitted distribution.
type Function int

const (
	FuncCDF Function = iota
	FuncSF
	FuncCHF
	FuncHF
)

func (f Function) String() string {
	return [...]string{"CDF", "SF", "CHF", "HF"}[f]
}

// Curve is a function evaluated at X. Lower and Upper are nil without a
// bound request; otherwise they hold function values (BoundOnReliability) or
// times (BoundOnTime). The tail not requested by a one-sided request is NaN.
type Curve struct {
	Function Function
	Type     BoundType
	X, Y     []float64
	Lower    []float64
	Upper    []float64
}

// BoundPoint is one (x, y, lower, upper) row of a Curve.
type BoundPoint struct {
	X, Y, Lower, Upper float64
}

// Points flattens the curve into rows. Missing bounds are NaN.
func (c Curve) Points() []BoundPoint {
	out := make([]BoundPoint, len(c.X))
	for i := range c.X {
		p := BoundPoint{X: c.X[i], Y: c.Y[i], Lower: math.NaN(), Upper: math.NaN()}
		if c.Lower != nil {
			p.Lower = c.Lower[i]
		}
		if c.Upper != nil {
			p.Upper = c.Upper[i]
		}
		out[i] = p
	}

	return out
}

// Fitted is a distribution instantiated at an estimate, together with what
// is needed to propagate its parameter covariance.
type Fitted struct {
	d       dist.Distribution
	build   Builder
	est     []float64
	cov     *matrix.Dense
	covErr  error
	thr     int  // canonical index of the threshold, -1 if none
	logTime bool // log-transform time bounds (positive support)
	ci      float64
	ciType  BoundType
}

// Dist returns the underlying distribution.
func (f *Fitted) Dist() dist.Distribution { return f.d }

// DefaultRequest is the two-sided request built from the fit's CI options.
func (f *Fitted) DefaultRequest() *BoundRequest {
	return &BoundRequest{CI: f.ci, Type: f.ciType, Side: TwoSided}
}

// CDF evaluates the CDF at xs with optional bounds.
func (f *Fitted) CDF(xs []float64, req *BoundRequest) (Curve, error) {
	return f.curve(FuncCDF, xs, req)
}

// SF evaluates the survival function at xs with optional bounds.
func (f *Fitted) SF(xs []float64, req *BoundRequest) (Curve, error) {
	return f.curve(FuncSF, xs, req)
}

// CHF evaluates the cumulative hazard at xs with optional bounds.
func (f *Fitted) CHF(xs []float64, req *BoundRequest) (Curve, error) {
	return f.curve(FuncCHF, xs, req)
}

// HF evaluates the hazard rate at xs. Bounds are not defined for HF: a
// non-nil request yields the values together with ErrBoundsUnsupported.
func (f *Fitted) HF(xs []float64, req *BoundRequest) (Curve, error) {
	return f.curve(FuncHF, xs, req)
}

func valueOf(d dist.Distribution, fn Function, x float64) float64 {
	switch fn {
	case FuncCDF:
		return d.CDF(x)
	case FuncSF:
		return d.SF(x)
	case FuncCHF:
		return d.CHF(x)
	}

	return d.HF(x)
}

func (f *Fitted) curve(fn Function, xs []float64, req *BoundRequest) (Curve, error) {
	c := Curve{Function: fn, X: append([]float64(nil), xs...), Y: make([]float64, len(xs))}
	for i, x := range xs {
		c.Y[i] = valueOf(f.d, fn, x)
	}
	if req == nil {
		return c, nil
	}
	if fn == FuncHF {
		return c, fmt.Errorf("HF: %w", ErrBoundsUnsupported)
	}
	if err := req.validate(); err != nil {
		return c, err
	}
	if f.cov == nil {
		return c, fmt.Errorf("%s: %w: %v", fn, ErrBoundsUnavailable, f.covErr)
	}

	c.Type = req.Type
	c.Lower = make([]float64, len(xs))
	c.Upper = make([]float64, len(xs))
	z := req.z()
	for i, x := range xs {
		var lo, hi float64
		if req.Type == BoundOnTime {
			lo, hi = f.timeBounds(x, z)
		} else {
			lo, hi = f.reliabilityBounds(fn, x, z)
		}
		switch req.Side {
		case Lower:
			hi = math.NaN()
		case Upper:
			lo = math.NaN()
		}
		c.Lower[i], c.Upper[i] = lo, hi
	}

	return c, nil
}

// stdErrOf returns the delta-method standard error of g at the estimate.
func (f *Fitted) stdErrOf(g func([]float64) float64) float64 {
	grad := relGradient(g, f.est)
	v, err := matrix.QuadForm(f.cov, grad)
	if err != nil || !(v >= 0) {
		return math.NaN()
	}

	return math.Sqrt(v)
}

// reliabilityBounds bounds fn(x) through u = ln CHF(x).
func (f *Fitted) reliabilityBounds(fn Function, x, z float64) (lo, hi float64) {
	chf := f.d.CHF(x)
	if !(chf > 0) || math.IsInf(chf, 1) {
		y := valueOf(f.d, fn, x)
		return y, y
	}
	u := math.Log(chf)
	se := f.stdErrOf(func(est []float64) float64 {
		d, err := f.build(est)
		if err != nil {
			return math.NaN()
		}

		return math.Log(d.CHF(x))
	})
	chfLo, chfHi := math.Exp(u-z*se), math.Exp(u+z*se)

	switch fn {
	case FuncSF:
		return math.Exp(-chfHi), math.Exp(-chfLo)
	case FuncCDF:
		return -math.Expm1(-chfLo), -math.Expm1(-chfHi)
	}

	return chfLo, chfHi
}

// timeBounds bounds the time at which the CDF level reached at x is reached.
func (f *Fitted) timeBounds(x, z float64) (lo, hi float64) {
	p := f.d.CDF(x)
	if !(p > 0 && p < 1) {
		return x, x
	}
	if !f.logTime {
		se := f.stdErrOf(func(est []float64) float64 {
			d, err := f.build(est)
			if err != nil {
				return math.NaN()
			}

			return d.Quantile(p)
		})

		return x - z*se, x + z*se
	}

	gamma := f.thresholdOf(f.d)
	if !(x-gamma > 0) {
		return x, x
	}
	u := math.Log(x - gamma)
	se := f.stdErrOf(func(est []float64) float64 {
		d, err := f.build(est)
		if err != nil {
			return math.NaN()
		}

		return math.Log(d.Quantile(p) - f.thresholdOf(d))
	})

	return gamma + math.Exp(u-z*se), gamma + math.Exp(u+z*se)
}

func (f *Fitted) thresholdOf(d dist.Distribution) float64 {
	if f.thr < 0 {
		return 0
	}

	return d.Params()[f.thr]
}

// clone returns a deep copy; the distribution value itself is immutable.
func (f *Fitted) clone() *Fitted {
	if f == nil {
		return nil
	}
	cp := *f
	cp.est = append([]float64(nil), f.est...)
	if f.cov != nil {
		cp.cov = f.cov.Clone()
	}

	return &cp
}

// gradRelStep is the relative step of bound gradients.
const gradRelStep = 1e-6

// relGradient is the central-difference gradient of g at x with a step of
// 1e-6·max(|x_i|, 1e-2) per coordinate, computed by fd.Gradient in scaled
// coordinates s (x_i + s_i·scale_i).
func relGradient(g func([]float64) float64, x []float64) []float64 {
	scale := make([]float64, len(x))
	for i, v := range x {
		scale[i] = math.Max(math.Abs(v), hessMinScale)
	}
	y := make([]float64, len(x))
	gs := func(s []float64) float64 {
		for i := range y {
			y[i] = x[i] + s[i]*scale[i]
		}

		return g(y)
	}
	grad := fd.Gradient(nil, gs, make([]float64, len(x)), &fd.Settings{Formula: fd.Central, Step: gradRelStep})
	for i := range grad {
		grad[i] /= scale[i]
	}

	return grad
}
