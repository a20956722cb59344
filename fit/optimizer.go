// SPDX-License-Identifier: MIT

// Package fit - optimizer fallback chain.
//
// A chain is an ordered retry policy: for each start point (the initial
// guess, then seeded jittered restarts) every Strategy is tried in order and
// the first acceptable outcome wins. Each attempt yields an Outcome; nothing
// is printed, and the outcomes travel back to the caller on the Result.
//
// An attempt is acceptable when its location is finite, no bounded natural
// coordinate sits on a non-physical edge, the caller's reject hook has no
// objection, and either gonum reports convergence or the central-difference
// gradient at the final point is small.
package fit

import (
	"fmt"
	"math"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/optimize"

	"github.com/katalvlaran/relfit/dist"
)

// Strategy names one unconstrained minimizer of gonum/optimize.
type Strategy string

// Available strategies.
const (
	LBFGS      Strategy = "L-BFGS"
	BFGS       Strategy = "BFGS"
	NelderMead Strategy = "Nelder-Mead"
	CG         Strategy = "CG"
)

// DefaultStrategies is the default fallback order.
func DefaultStrategies() []Strategy { return []Strategy{LBFGS, BFGS, NelderMead, CG} }

// ParseStrategy maps a name (as printed by String) to a Strategy.
func ParseStrategy(name string) (Strategy, error) {
	for _, s := range DefaultStrategies() {
		if string(s) == name {
			return s, nil
		}
	}

	return "", fmt.Errorf("fit: unknown optimizer strategy %q", name)
}

func (s Strategy) String() string { return string(s) }

// method returns a fresh gonum method; methods carry state and must not be
// reused across attempts.
func (s Strategy) method() optimize.Method {
	switch s {
	case LBFGS:
		return &optimize.LBFGS{}
	case BFGS:
		return &optimize.BFGS{}
	case NelderMead:
		return &optimize.NelderMead{}
	case CG:
		return &optimize.CG{}
	}

	return nil
}

// Outcome is the structured record of one optimizer attempt.
type Outcome struct {
	Strategy Strategy
	Start    int     // 0 = primary start, i > 0 = i-th jittered restart
	Status   string  // gonum termination status
	F        float64 // objective at the final location
	Evals    int     // function evaluations used
	Accepted bool
	Message  string // rejection reason or error text; empty when accepted cleanly
}

const (
	// gradThreshold stops quasi-Newton runs on a flat gradient.
	gradThreshold = 1e-8

	// statTol is the relative sup-norm gradient below which an attempt that
	// gonum did not flag as converged is still accepted.
	statTol = 1e-4

	// jitterScale is the standard deviation of restart perturbations in z.
	jitterScale = 0.5
)

var convergedStatus = map[optimize.Status]bool{
	optimize.Success:             true,
	optimize.FunctionThreshold:   true,
	optimize.FunctionConvergence: true,
	optimize.GradientThreshold:   true,
	optimize.StepConvergence:     true,
	optimize.MethodConverge:      true,
}

// chain is the resolved retry policy of one fit.
type chain struct {
	strategies []Strategy
	restarts   int
	seed       uint64
	maxIter    int
	maxEval    int
	log        *zap.Logger
	label      string // model name for logs and errors

	// reject, when set, names why a natural point is degenerate even though
	// it lies inside the codec's box; "" accepts it.
	reject func(x []float64) string
}

func newChain(o *options, label string) chain {
	return chain{
		strategies: o.strategies,
		restarts:   o.restarts,
		seed:       o.seed,
		maxIter:    o.maxIter,
		maxEval:    o.maxEval,
		log:        o.logger,
		label:      label,
	}
}

// gradient is the central-difference gradient of f at x.
func gradient(dst []float64, f func([]float64) float64, x []float64) []float64 {
	return fd.Gradient(dst, f, x, &fd.Settings{Formula: fd.Central})
}

// minimize runs the chain on f (natural space) through the codec cd, starting
// from the natural point x0. It returns the accepted natural point, the
// strategy that produced it, and every attempt's outcome.
//
// Errors: ErrOptimizationFailure once every (start, strategy) pair failed.
//
// Complexity: at most (1+restarts)·len(strategies) optimizer runs, each capped
// by maxIter/maxEval.
func (c chain) minimize(f func([]float64) float64, cd codec, x0 []float64) ([]float64, Strategy, []Outcome, error) {
	fz := func(z []float64) float64 { return f(cd.decode(z)) }
	z0 := cd.encode(x0)
	rnd := dist.NewRand(c.seed)

	var outcomes []Outcome
	last := "no attempt"
	for start := 0; start <= c.restarts; start++ {
		zs := append([]float64(nil), z0...)
		if start > 0 {
			r := dist.DeriveRand(rnd, uint64(start))
			for i := range zs {
				zs[i] += jitterScale * r.NormFloat64()
			}
		}
		if f0 := fz(zs); math.IsInf(f0, 0) || math.IsNaN(f0) {
			o := Outcome{Start: start, Status: "Infeasible", F: f0, Message: "objective not finite at start point"}
			outcomes = append(outcomes, o)
			c.log.Debug("Optimizer start infeasible", zap.String("model", c.label), zap.Int("start", start))
			last = o.Message
			continue
		}
		for _, s := range c.strategies {
			o, z := c.attempt(fz, cd, zs, s)
			o.Start = start
			outcomes = append(outcomes, o)
			c.log.Debug("Optimizer attempt",
				zap.String("model", c.label),
				zap.String("strategy", string(s)),
				zap.Int("start", start),
				zap.String("status", o.Status),
				zap.Float64("f", o.F),
				zap.Int("evals", o.Evals),
				zap.Bool("accepted", o.Accepted),
				zap.String("message", o.Message))
			if o.Accepted {
				return cd.decode(z), s, outcomes, nil
			}
			last = fmt.Sprintf("%s: %s %s", s, o.Status, o.Message)
		}
	}

	return nil, "", outcomes, fmt.Errorf("%s: %w after %d attempts (last: %s)", c.label, ErrOptimizationFailure, len(outcomes), last)
}

// attempt runs one strategy from z0 and judges the result.
func (c chain) attempt(fz func([]float64) float64, cd codec, z0 []float64, s Strategy) (Outcome, []float64) {
	o := Outcome{Strategy: s, F: math.Inf(1)}
	m := s.method()
	if m == nil {
		o.Status, o.Message = "Failure", "unknown strategy"
		return o, nil
	}
	problem := optimize.Problem{
		Func: fz,
		Grad: func(grad, z []float64) { gradient(grad, fz, z) },
	}
	settings := &optimize.Settings{
		MajorIterations:   c.maxIter,
		FuncEvaluations:   c.maxEval,
		GradientThreshold: gradThreshold,
		Converger: &optimize.FunctionConverge{
			Absolute:   1e-12,
			Relative:   1e-12,
			Iterations: 20,
		},
	}

	res, err := optimize.Minimize(problem, append([]float64(nil), z0...), settings, m)
	if res == nil {
		o.Status = "Failure"
		if err != nil {
			o.Message = err.Error()
		}
		return o, nil
	}
	o.Status = res.Status.String()
	o.F = res.F
	o.Evals = res.FuncEvaluations
	if err != nil {
		o.Message = err.Error()
	}

	z := res.X
	finite := !math.IsNaN(res.F) && !math.IsInf(res.F, 0) && allFinite(z)
	var x []float64
	if finite {
		x = cd.decode(z)
		finite = allFinite(x)
	}
	var reason string
	if finite && c.reject != nil {
		reason = c.reject(x)
	}
	switch {
	case !finite:
		o.Message = joinMsg(o.Message, "non-finite result")
	case cd.onBoundary(x):
		o.Message = joinMsg(o.Message, "estimate on a parameter boundary")
	case reason != "":
		o.Message = joinMsg(o.Message, reason)
	case err == nil && convergedStatus[res.Status]:
		o.Accepted = true
	case stationary(fz, z, res.F):
		o.Accepted = true
		o.Message = joinMsg(o.Message, "accepted on gradient check")
	default:
		o.Message = joinMsg(o.Message, "did not converge")
	}

	return o, z
}

// stationary reports whether max|∇f(z)| <= statTol·(1+|f|).
func stationary(fz func([]float64) float64, z []float64, f float64) bool {
	g := gradient(nil, fz, z)
	tol := statTol * (1 + math.Abs(f))
	for _, v := range g {
		if math.IsNaN(v) || math.Abs(v) > tol {
			return false
		}
	}

	return true
}

func allFinite(x []float64) bool {
	for _, v := range x {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}

	return len(x) > 0
}

func joinMsg(a, b string) string {
	if a == "" {
		return b
	}

	return a + "; " + b
}
