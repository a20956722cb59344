// SPDX-License-Identifier: MIT

// Package fit - least-squares (rank regression) estimator.
//
// Algorithm:
//  1. Plotting positions F_i for the failures (ranks.go).
//  2. Linearizing coordinates per family, e.g. Weibull: x = ln t,
//     y = ln(-ln(1-F)). Both regressions are run: RRY (y on x) and RRX
//     (x on y, inverted). The one whose parameters give the higher censored
//     log-likelihood is kept unless WithLSVariant forces one.
//  3. Gamma, Beta and GeneralizedPareto have no linearization; they minimize
//     squared CDF residuals (RRY style) or squared quantile residuals on the
//     time axis (RRX style) through the optimizer chain.
//  4. A data-driven threshold is found by golden-section search on
//     [0, min(data)), maximizing r² of the linearized fit (or -SSE for the
//     non-linear families). Every candidate stays strictly below min(data).
//     Exponential_2P instead reads the threshold off the regression
//     intercept and clamps it into [0, min(data)).
package fit

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/katalvlaran/relfit/dist"
)

const (
	// goldenIters caps the threshold search.
	goldenIters = 200

	// goldenTol is the relative bracket width that ends the threshold search.
	goldenTol = 1e-10

	// invPhi is 1/φ, the golden-section ratio.
	invPhi = 0.6180339887498949
)

// linear holds the linearizing coordinates of one family and the map from
// the fitted line back to its non-threshold parameters (canonical order).
type linear struct {
	x    func(t float64) float64
	y    func(F float64) float64
	back func(slope, intercept float64) []float64
}

func weibullY(F float64) float64 { return math.Log(-math.Log1p(-F)) }

func probit(F float64) float64 { return distuv.UnitNormal.Quantile(F) }

var linearizations = map[dist.Family]linear{
	dist.FamilyWeibull: {
		x: math.Log, y: weibullY,
		back: func(m, c float64) []float64 { return []float64{math.Exp(-c / m), m} },
	},
	dist.FamilyLognormal: {
		x: math.Log, y: probit,
		back: func(m, c float64) []float64 { return []float64{-c / m, 1 / m} },
	},
	dist.FamilyLoglogistic: {
		x: math.Log, y: func(F float64) float64 { return math.Log(F / (1 - F)) },
		back: func(m, c float64) []float64 { return []float64{math.Exp(-c / m), m} },
	},
	dist.FamilyNormal: {
		x: identity, y: probit,
		back: func(m, c float64) []float64 { return []float64{-c / m, 1 / m} },
	},
	dist.FamilyGumbel: {
		x: identity, y: weibullY,
		back: func(m, c float64) []float64 { return []float64{-c / m, 1 / m} },
	},
	dist.FamilyExponential: {
		x: identity, y: func(F float64) float64 { return -math.Log1p(-F) },
		back: func(m, _ float64) []float64 { return []float64{m} },
	},
}

func identity(t float64) float64 { return t }

// regress fits y = slope·x + intercept in the requested direction.
// RRX regresses x on y and inverts the line.
func regress(xs, ys []float64, v LSVariant, origin bool) (slope, intercept float64) {
	if v == RRX {
		ci, si := stat.LinearRegression(ys, xs, nil, origin)
		return 1 / si, -ci / si
	}
	c, m := stat.LinearRegression(xs, ys, nil, origin)

	return m, c
}

// lsFit is the outcome of rank regression for one model.
type lsFit struct {
	params  []float64 // full canonical vector
	variant LSVariant
	nll     float64
	lowConf bool
}

// lsRun carries the per-call state of one rank-regression fit.
type lsRun struct {
	obs      *Observations
	m        Model
	o        *options
	times, F []float64
	outcomes []Outcome
}

func newLSRun(obs *Observations, m Model, o *options) *lsRun {
	times, F := plottingPositions(obs)

	return &lsRun{obs: obs, m: m, o: o, times: times, F: F}
}

// fitLS runs the estimator. Under-determined data is still fitted and
// flagged lowConf.
//
// Errors: ErrOptimizationFailure when no variant yields valid parameters.
func fitLS(obs *Observations, m Model, o *options) (lsFit, []Outcome, error) {
	r := newLSRun(obs, m, o)
	res, err := r.run(nil)

	return res, r.outcomes, err
}

func (r *lsRun) run(visit func(gamma float64)) (lsFit, error) {
	gamma := 0.0
	if r.m.hasThreshold() && r.m.Family != dist.FamilyExponential {
		gamma = r.searchThreshold(visit)
		r.outcomes = nil
	}

	variants := []LSVariant{RRX, RRY}
	if r.o.lsVariant != LSAuto {
		variants = []LSVariant{r.o.lsVariant}
	}

	best := lsFit{nll: math.Inf(1)}
	var lastErr error
	for _, v := range variants {
		params, err := r.estimate(gamma, v)
		if err != nil {
			lastErr = err
			continue
		}
		d, err := dist.New(r.m.Family, params)
		if err != nil {
			lastErr = err
			continue
		}
		if nll := negLogLikOf(d, r.obs); nll < best.nll || best.params == nil {
			best = lsFit{params: params, variant: v, nll: nll}
		}
	}
	if best.params == nil {
		return lsFit{}, fmt.Errorf("%s: %w: rank regression produced no valid parameters: %v",
			r.m.Name, ErrOptimizationFailure, lastErr)
	}
	best.lowConf = r.obs.DistinctFailures() < r.m.NumParams()

	return best, nil
}

// estimate returns the full canonical vector for threshold gamma and one
// regression direction.
func (r *lsRun) estimate(gamma float64, v LSVariant) ([]float64, error) {
	lin, ok := linearizations[r.m.Family]
	if !ok {
		return r.nonlinear(gamma, v)
	}

	if r.m.Family == dist.FamilyExponential {
		return r.exponential(lin, v), nil
	}
	xs, ys := r.coords(lin, gamma)
	slope, intercept := regress(xs, ys, v, false)
	params := lin.back(slope, intercept)
	if r.m.thr >= 0 {
		params = append(params, gamma)
	}

	return params, nil
}

// exponential handles both Exponential models: through the origin for 1P,
// threshold from the intercept for 2P.
func (r *lsRun) exponential(lin linear, v LSVariant) []float64 {
	xs, ys := r.coords(lin, 0)
	if !r.m.thrAtMin {
		slope, _ := regress(xs, ys, v, true)
		return []float64{slope, 0}
	}
	slope, intercept := regress(xs, ys, v, false)
	gamma := -intercept / slope
	if hi := pinnedThreshold(r.obs); !(gamma < hi) {
		gamma = hi
	}
	if !(gamma > 0) {
		gamma = 0
	}

	return []float64{slope, gamma}
}

// coords returns the linearized points for threshold gamma.
func (r *lsRun) coords(lin linear, gamma float64) (xs, ys []float64) {
	xs = make([]float64, len(r.times))
	ys = make([]float64, len(r.F))
	for i, t := range r.times {
		xs[i] = lin.x(t - gamma)
		ys[i] = lin.y(r.F[i])
	}

	return xs, ys
}

// thresholdScore is the quantity maximized by the threshold search.
func (r *lsRun) thresholdScore(gamma float64) float64 {
	if lin, ok := linearizations[r.m.Family]; ok {
		xs, ys := r.coords(lin, gamma)
		c := stat.Correlation(xs, ys, nil)

		return c * c
	}
	params, err := r.nonlinear(gamma, RRY)
	if err != nil {
		return math.Inf(-1)
	}

	return -r.sse(params, RRY)
}

// searchThreshold runs the golden-section search over [0, min(data)).
// visit, when set, sees every candidate.
func (r *lsRun) searchThreshold(visit func(float64)) float64 {
	score := func(g float64) float64 {
		if visit != nil {
			visit(g)
		}

		return r.thresholdScore(g)
	}

	return goldenMax(score, 0, pinnedThreshold(r.obs), goldenIters)
}

// goldenMax maximizes f on [lo, hi] by golden-section search and returns the
// best point evaluated. NaN scores count as -Inf.
//
// Complexity: at most iters+4 evaluations of f.
func goldenMax(f func(float64) float64, lo, hi float64, iters int) float64 {
	bestX, bestF := lo, math.Inf(-1)
	eval := func(x float64) float64 {
		v := f(x)
		if math.IsNaN(v) {
			v = math.Inf(-1)
		}
		if v > bestF {
			bestX, bestF = x, v
		}

		return v
	}
	eval(lo)
	eval(hi)

	a, b := lo, hi
	c := b - invPhi*(b-a)
	d := a + invPhi*(b-a)
	fc, fd := eval(c), eval(d)
	for i := 0; i < iters && b-a > goldenTol*math.Max(1, math.Abs(b)); i++ {
		if fc >= fd {
			b, d, fd = d, c, fc
			c = b - invPhi*(b-a)
			fc = eval(c)
		} else {
			a, c, fc = c, d, fd
			d = a + invPhi*(b-a)
			fd = eval(d)
		}
	}

	return bestX
}

// shapeIdx lists the canonical indices that are not the threshold.
func (r *lsRun) shapeIdx() []int {
	info, _ := dist.ParamsOf(r.m.Family)
	out := make([]int, 0, len(info))
	for i := range info {
		if i != r.m.thr {
			out = append(out, i)
		}
	}

	return out
}

// sse is the residual sum of squares of a canonical vector in direction v:
// CDF residuals for RRY, quantile residuals scaled by the mean time for RRX.
func (r *lsRun) sse(params []float64, v LSVariant) float64 {
	d, err := dist.New(r.m.Family, params)
	if err != nil {
		return math.Inf(1)
	}
	var sum, e float64
	scale := stat.Mean(r.times, nil)
	if scale == 0 {
		scale = 1
	}
	for i, t := range r.times {
		if v == RRX {
			e = (d.Quantile(r.F[i]) - t) / scale
		} else {
			e = d.CDF(t) - r.F[i]
		}
		sum += e * e
	}
	if math.IsNaN(sum) {
		return math.Inf(1)
	}

	return sum
}

// nonlinear minimizes the squared residuals over the shape parameters at a
// fixed threshold.
func (r *lsRun) nonlinear(gamma float64, v LSVariant) ([]float64, error) {
	idx := r.shapeIdx()
	info, _ := dist.ParamsOf(r.m.Family)
	scale := timeScale(r.obs)
	cd := make(codec, len(idx))
	for i, k := range idx {
		cd[i] = paramBound(info[k], scale)
	}
	shifted := make([]float64, len(r.times))
	for i, t := range r.times {
		shifted[i] = t - gamma
	}
	start := momentGuess(r.m.Family, shifted)

	obj := func(shape []float64) float64 { return r.sse(r.m.assemble(shape, gamma), v) }
	c := newChain(r.o, r.m.Name+" LS")
	c.restarts = 0
	shape, _, outcomes, err := c.minimize(obj, cd, start)
	r.outcomes = append(r.outcomes, outcomes...)
	if err != nil {
		return nil, err
	}

	return r.m.assemble(shape, gamma), nil
}

// momentGuess returns crude moment-matched shape parameters (canonical order,
// threshold excluded) for xs > 0.
func momentGuess(f dist.Family, xs []float64) []float64 {
	m, s := stat.MeanStdDev(xs, nil)
	if !(s > 0) {
		s = 0.5*math.Abs(m) + 1e-3
	}
	logs := make([]float64, 0, len(xs))
	for _, x := range xs {
		if x > 0 {
			logs = append(logs, math.Log(x))
		}
	}
	lm, ls := 0.0, 1.0
	if len(logs) > 0 {
		lm, ls = stat.MeanStdDev(logs, nil)
		if !(ls > 0) {
			ls = 1
		}
	}
	cv2 := (s * s) / (m * m)

	switch f {
	case dist.FamilyWeibull:
		return []float64{math.Max(m, 1e-6), 1.2 / math.Max(math.Sqrt(cv2), 0.05)}
	case dist.FamilyGamma:
		return []float64{s * s / math.Max(m, 1e-12), 1 / math.Max(cv2, 1e-6)}
	case dist.FamilyLognormal:
		return []float64{lm, ls}
	case dist.FamilyLoglogistic:
		return []float64{math.Exp(lm), math.Pi / (math.Sqrt(3) * ls)}
	case dist.FamilyNormal:
		return []float64{m, s}
	case dist.FamilyGumbel:
		sg := s * math.Sqrt(6) / math.Pi
		return []float64{m + 0.5772156649015329*sg, sg}
	case dist.FamilyExponential:
		return []float64{1 / math.Max(m, 1e-12)}
	case dist.FamilyBeta:
		k := m*(1-m)/(s*s) - 1
		if !(k > 0) {
			k = 2
		}
		return []float64{math.Max(m*k, 1e-3), math.Max((1-m)*k, 1e-3)}
	case dist.FamilyGeneralizedPareto:
		r := m * m / (s * s)
		xi := math.Max(math.Min(0.5*(1-r), 0.9), -0.9)
		return []float64{math.Max(0.5*m*(r+1), 1e-6), xi}
	}

	return nil
}
