// SPDX-License-Identifier: MIT

// Package fit - bounded/unbounded parameter codec.
//
// The optimizers search an unconstrained space z; each natural parameter x
// is recovered by
//
//	lo only:    x = lo + exp(z)
//	hi only:    x = hi - exp(z)
//	lo and hi:  x = lo + (hi-lo)·σ(z),  σ the logistic function
//	neither:    x = z
//
// so every z maps strictly inside the box and no penalty term is needed.
package fit

import (
	"math"

	"github.com/katalvlaran/relfit/dist"
)

const (
	// edgeTol is the distance to a finite edge, relative to the parameter's
	// width, at which an estimate counts as sitting on that edge.
	edgeTol = 1e-9

	// farRatio is the distance from the only finite edge, relative to the
	// parameter's span, beyond which a one-sided estimate has run away.
	farRatio = 1e10
)

// bound is the open box (lo, hi) of one natural parameter.
type bound struct {
	lo, hi float64
	loOK   bool    // an optimum on the lower edge is physical (threshold at 0)
	span   float64 // natural size of the parameter; 0 means 1
}

// paramBound is the box of p on data whose times are of order scale.
func paramBound(p dist.ParamInfo, scale float64) bound {
	return bound{lo: p.Lower, hi: p.Upper, span: math.Pow(scale, float64(p.Unit))}
}

// timeScale is the order of magnitude of the observed times.
func timeScale(obs *Observations) float64 {
	s := math.Max(math.Abs(obs.Min()), math.Abs(obs.Max()))
	if s == 0 || math.IsInf(s, 0) || math.IsNaN(s) {
		return 1
	}

	return s
}

// width is the length of a two-sided box, else the span.
func (b bound) width() float64 {
	if b.hasLo() && b.hasHi() {
		return b.hi - b.lo
	}
	if b.span > 0 && !math.IsInf(b.span, 0) {
		return b.span
	}

	return 1
}

func (b bound) hasLo() bool { return !math.IsInf(b.lo, -1) }
func (b bound) hasHi() bool { return !math.IsInf(b.hi, 1) }

// codec maps between natural and unconstrained coordinates.
type codec []bound

// decode maps z to natural parameters.
func (c codec) decode(z []float64) []float64 {
	x := make([]float64, len(z))
	for i, b := range c {
		switch {
		case b.hasLo() && b.hasHi():
			x[i] = b.lo + (b.hi-b.lo)/(1+math.Exp(-z[i]))
		case b.hasLo():
			x[i] = b.lo + math.Exp(z[i])
		case b.hasHi():
			x[i] = b.hi - math.Exp(z[i])
		default:
			x[i] = z[i]
		}
	}

	return x
}

// encode maps natural parameters to z. Values on or outside a bound are first
// nudged inside it.
func (c codec) encode(x []float64) []float64 {
	x = c.clamp(x)
	z := make([]float64, len(x))
	for i, b := range c {
		switch {
		case b.hasLo() && b.hasHi():
			u := (x[i] - b.lo) / (b.hi - b.lo)
			z[i] = math.Log(u / (1 - u))
		case b.hasLo():
			z[i] = math.Log(x[i] - b.lo)
		case b.hasHi():
			z[i] = math.Log(b.hi - x[i])
		default:
			z[i] = x[i]
		}
	}

	return z
}

// clamp returns a copy of x with every entry pulled strictly inside its box.
func (c codec) clamp(x []float64) []float64 {
	out := append([]float64(nil), x...)
	for i, b := range c {
		var scale float64
		switch {
		case b.hasLo() && b.hasHi():
			scale = (b.hi - b.lo) * 1e-9
		case b.hasLo():
			scale = math.Max(math.Abs(b.lo), 1) * 1e-9
		case b.hasHi():
			scale = math.Max(math.Abs(b.hi), 1) * 1e-9
		}
		if b.hasLo() && out[i] <= b.lo {
			out[i] = b.lo + scale
		}
		if b.hasHi() && out[i] >= b.hi {
			out[i] = b.hi - scale
		}
	}

	return out
}

// onBoundary reports whether a natural point x sits on a non-physical edge
// of its box, or has run away from a one-sided box. Unbounded coordinates
// never do.
func (c codec) onBoundary(x []float64) bool {
	for i, b := range c {
		if !b.hasLo() && !b.hasHi() {
			continue
		}
		w := b.width()
		if b.hasLo() && !b.loOK && x[i]-b.lo <= edgeTol*w {
			return true
		}
		if b.hasHi() && b.hi-x[i] <= edgeTol*w {
			return true
		}
		switch {
		case b.hasLo() && !b.hasHi() && x[i]-b.lo > farRatio*w:
			return true
		case b.hasHi() && !b.hasLo() && b.hi-x[i] > farRatio*w:
			return true
		}
	}

	return false
}
