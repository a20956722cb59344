// SPDX-License-Identifier: MIT

// Package dist - composite models.
//
// Mixture:          f = Σ p_j·f_j,        S = Σ p_j·S_j.
// CompetingRisks:   S = Π S_j,            h = Σ h_j,        f = S·h.
//
// Both are evaluated in log space (log-sum-exp for mixtures) so that tails do
// not underflow. Quantiles have no closed form and are found by bracketed
// bisection on the CDF; means by trapezoidal integration of the SF.
package dist

import (
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/integrate"
)

const (
	// simplexTol is the allowed |Σp - 1| for mixture proportions.
	simplexTol = 1e-9

	// quantileIters caps the bisection used by composite quantiles.
	quantileIters = 200

	// meanGrid is the number of trapezoid nodes used by composite means.
	meanGrid = 4001

	// meanTail is the probability mass left out at each end of the mean grid.
	meanTail = 1e-12
)

// Mixture is a finite mixture of single-family distributions.
type Mixture struct {
	Components  []Distribution
	Proportions []float64 // on the simplex, same length as Components
}

// NewMixture validates and copies components and proportions.
//
// Errors:
//   - ErrBadComposite when len < 2, lengths differ, a component is nil, a
//     proportion is outside (0,1), or the proportions do not sum to 1.
func NewMixture(components []Distribution, proportions []float64) (Mixture, error) {
	if err := checkComponents(components); err != nil {
		return Mixture{}, err
	}
	if len(proportions) != len(components) {
		return Mixture{}, fmt.Errorf("%w: %d proportions for %d components", ErrBadComposite, len(proportions), len(components))
	}
	for _, p := range proportions {
		if !(p > 0 && p < 1) {
			return Mixture{}, fmt.Errorf("%w: proportion %g outside (0,1)", ErrBadComposite, p)
		}
	}
	if s := floats.Sum(proportions); math.Abs(s-1) > simplexTol {
		return Mixture{}, fmt.Errorf("%w: proportions sum to %g", ErrBadComposite, s)
	}

	return Mixture{
		Components:  append([]Distribution(nil), components...),
		Proportions: append([]float64(nil), proportions...),
	}, nil
}

func (m Mixture) Family() Family    { return FamilyMixture }
func (m Mixture) Params() []float64 { return nil }

func (m Mixture) LogPDF(t float64) float64 {
	terms := make([]float64, len(m.Components))
	for j, c := range m.Components {
		terms[j] = math.Log(m.Proportions[j]) + c.LogPDF(t)
	}

	return floats.LogSumExp(terms)
}

func (m Mixture) LogSF(t float64) float64 {
	terms := make([]float64, len(m.Components))
	for j, c := range m.Components {
		terms[j] = math.Log(m.Proportions[j]) + c.LogSF(t)
	}

	return floats.LogSumExp(terms)
}

func (m Mixture) PDF(t float64) float64 { return math.Exp(m.LogPDF(t)) }

func (m Mixture) CDF(t float64) float64 {
	var sum float64
	for j, c := range m.Components {
		sum += m.Proportions[j] * c.CDF(t)
	}

	return sum
}

func (m Mixture) SF(t float64) float64  { return sfFromLog(m.LogSF(t)) }
func (m Mixture) HF(t float64) float64  { return hazard(m.LogPDF(t), m.LogSF(t)) }
func (m Mixture) CHF(t float64) float64 { return -m.LogSF(t) }

func (m Mixture) Quantile(p float64) float64 {
	if !validProb(p) {
		return math.NaN()
	}

	return bisectQuantile(m.CDF, p, m.Components)
}

func (m Mixture) Mean() float64 {
	var sum float64
	for j, c := range m.Components {
		sum += m.Proportions[j] * c.Mean()
	}

	return sum
}

// Rand picks a component by proportion, then samples it.
func (m Mixture) Rand(rnd *rand.Rand) float64 {
	u := rnd.Float64()
	var acc float64
	for j, c := range m.Components {
		acc += m.Proportions[j]
		if u < acc {
			return c.Rand(rnd)
		}
	}

	return m.Components[len(m.Components)-1].Rand(rnd)
}

// CompetingRisks combines independent failure modes: an item fails at the
// first of its component failure times.
type CompetingRisks struct {
	Components []Distribution
}

// NewCompetingRisks validates and copies components.
// Errors: ErrBadComposite when len < 2 or a component is nil.
func NewCompetingRisks(components []Distribution) (CompetingRisks, error) {
	if err := checkComponents(components); err != nil {
		return CompetingRisks{}, err
	}

	return CompetingRisks{Components: append([]Distribution(nil), components...)}, nil
}

func (c CompetingRisks) Family() Family    { return FamilyCompetingRisks }
func (c CompetingRisks) Params() []float64 { return nil }

func (c CompetingRisks) LogSF(t float64) float64 {
	var sum float64
	for _, d := range c.Components {
		sum += d.LogSF(t)
	}

	return sum
}

func (c CompetingRisks) HF(t float64) float64 {
	var sum float64
	for _, d := range c.Components {
		sum += d.HF(t)
	}

	return sum
}

func (c CompetingRisks) LogPDF(t float64) float64 {
	h := c.HF(t)
	if h <= 0 || math.IsInf(h, 1) || math.IsNaN(h) {
		return math.Inf(-1)
	}

	return c.LogSF(t) + math.Log(h)
}

func (c CompetingRisks) PDF(t float64) float64 { return math.Exp(c.LogPDF(t)) }
func (c CompetingRisks) CDF(t float64) float64 { return cdfFromLogSF(c.LogSF(t)) }
func (c CompetingRisks) SF(t float64) float64  { return sfFromLog(c.LogSF(t)) }
func (c CompetingRisks) CHF(t float64) float64 { return -c.LogSF(t) }

func (c CompetingRisks) Quantile(p float64) float64 {
	if !validProb(p) {
		return math.NaN()
	}

	return bisectQuantile(c.CDF, p, c.Components)
}

func (c CompetingRisks) Mean() float64 { return integratedMean(c) }

// Rand returns the smallest of the component draws.
func (c CompetingRisks) Rand(rnd *rand.Rand) float64 {
	best := math.Inf(1)
	for _, d := range c.Components {
		if v := d.Rand(rnd); v < best {
			best = v
		}
	}

	return best
}

func checkComponents(components []Distribution) error {
	if len(components) < 2 {
		return fmt.Errorf("%w: need at least 2 components, got %d", ErrBadComposite, len(components))
	}
	for i, c := range components {
		if c == nil {
			return fmt.Errorf("%w: component %d is nil", ErrBadComposite, i)
		}
	}

	return nil
}

// bisectQuantile solves cdf(t) = p. The initial bracket is spanned by the
// component quantiles at p and widened geometrically until it holds p.
//
// Complexity: O(quantileIters) CDF evaluations.
func bisectQuantile(cdf func(float64) float64, p float64, comps []Distribution) float64 {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, c := range comps {
		q := c.Quantile(p)
		if q < lo {
			lo = q
		}
		if q > hi {
			hi = q
		}
	}
	if math.IsInf(lo, 0) || math.IsInf(hi, 0) || math.IsNaN(lo) || math.IsNaN(hi) {
		return math.NaN()
	}
	width := math.Max(hi-lo, math.Max(math.Abs(lo), 1)*1e-3)
	var i int
	for i = 0; cdf(lo) > p && i < quantileIters; i++ {
		lo -= width
		width *= 2
	}
	for i = 0; cdf(hi) < p && i < quantileIters; i++ {
		hi += width
		width *= 2
	}

	var mid float64
	for i = 0; i < quantileIters; i++ {
		mid = 0.5 * (lo + hi)
		if cdf(mid) < p {
			lo = mid
		} else {
			hi = mid
		}
		if hi-lo <= 1e-12*math.Max(1, math.Abs(mid)) {
			break
		}
	}

	return 0.5 * (lo + hi)
}

// integratedMean returns E[T] = a + ∫_a^b S(t) dt with a, b the meanTail
// quantiles of d, using the trapezoidal rule on a uniform grid.
func integratedMean(d Distribution) float64 {
	a, b := d.Quantile(meanTail), d.Quantile(1-meanTail)
	if math.IsNaN(a) || math.IsNaN(b) || !(b > a) {
		return math.NaN()
	}
	x := make([]float64, meanGrid)
	floats.Span(x, a, b)
	s := make([]float64, meanGrid)
	for i, t := range x {
		s[i] = d.SF(t)
	}

	return a + integrate.Trapezoidal(x, s)
}
