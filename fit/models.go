// SPDX-License-Identifier: MIT

// Package fit - model catalogue.
//
// A Model binds a dist.Family to the subset of its canonical parameters that
// are estimated. Examples:
//
//	Weibull_2P      alpha, beta estimated; gamma fixed at 0
//	Weibull_3P      alpha, beta, gamma estimated (0 <= gamma < min(data))
//	Exponential_2P  Lambda estimated; gamma pinned just below min(data)
//
// The threshold of Exponential_2P and GeneralizedPareto_3P is pinned at the
// smallest observation: both densities decrease on their support, so their
// likelihood always peaks on that boundary.
package fit

import (
	"fmt"
	"math"
	"sort"

	"github.com/katalvlaran/relfit/dist"
)

// thresholdGap is the relative distance kept between a threshold and min(data).
const thresholdGap = 1e-9

// Model is one entry of the catalogue.
type Model struct {
	Name   string
	Family dist.Family

	template []float64 // canonical vector with the fixed values
	est      []int     // canonical indices estimated by the optimizer
	thr      int       // canonical index of the threshold, -1 if none
	thrFree  bool      // threshold estimated (3P families)
	thrAtMin bool      // threshold pinned just below min(data)
}

// Catalogue names.
const (
	Weibull2P           = "Weibull_2P"
	Weibull3P           = "Weibull_3P"
	Gamma2P             = "Gamma_2P"
	Gamma3P             = "Gamma_3P"
	Lognormal2P         = "Lognormal_2P"
	Lognormal3P         = "Lognormal_3P"
	Loglogistic2P       = "Loglogistic_2P"
	Loglogistic3P       = "Loglogistic_3P"
	Normal2P            = "Normal_2P"
	Gumbel2P            = "Gumbel_2P"
	Exponential1P       = "Exponential_1P"
	Exponential2P       = "Exponential_2P"
	Beta2P              = "Beta_2P"
	GeneralizedPareto3P = "GeneralizedPareto_3P"

	WeibullMixture = "Weibull_Mixture"
	WeibullCR      = "Weibull_CR"
)

var catalogue = []Model{
	{Name: Weibull2P, Family: dist.FamilyWeibull, template: []float64{1, 1, 0}, est: []int{0, 1}, thr: 2},
	{Name: Weibull3P, Family: dist.FamilyWeibull, template: []float64{1, 1, 0}, est: []int{0, 1, 2}, thr: 2, thrFree: true},
	{Name: Gamma2P, Family: dist.FamilyGamma, template: []float64{1, 1, 0}, est: []int{0, 1}, thr: 2},
	{Name: Gamma3P, Family: dist.FamilyGamma, template: []float64{1, 1, 0}, est: []int{0, 1, 2}, thr: 2, thrFree: true},
	{Name: Lognormal2P, Family: dist.FamilyLognormal, template: []float64{0, 1, 0}, est: []int{0, 1}, thr: 2},
	{Name: Lognormal3P, Family: dist.FamilyLognormal, template: []float64{0, 1, 0}, est: []int{0, 1, 2}, thr: 2, thrFree: true},
	{Name: Loglogistic2P, Family: dist.FamilyLoglogistic, template: []float64{1, 1, 0}, est: []int{0, 1}, thr: 2},
	{Name: Loglogistic3P, Family: dist.FamilyLoglogistic, template: []float64{1, 1, 0}, est: []int{0, 1, 2}, thr: 2, thrFree: true},
	{Name: Normal2P, Family: dist.FamilyNormal, template: []float64{0, 1}, est: []int{0, 1}, thr: -1},
	{Name: Gumbel2P, Family: dist.FamilyGumbel, template: []float64{0, 1}, est: []int{0, 1}, thr: -1},
	{Name: Exponential1P, Family: dist.FamilyExponential, template: []float64{1, 0}, est: []int{0}, thr: 1},
	{Name: Exponential2P, Family: dist.FamilyExponential, template: []float64{1, 0}, est: []int{0}, thr: 1, thrAtMin: true},
	{Name: Beta2P, Family: dist.FamilyBeta, template: []float64{1, 1}, est: []int{0, 1}, thr: -1},
	{Name: GeneralizedPareto3P, Family: dist.FamilyGeneralizedPareto, template: []float64{1, 0.1, 0}, est: []int{0, 1}, thr: 2, thrAtMin: true},
}

// Models returns the single-family catalogue in its fixed order.
func Models() []Model {
	out := make([]Model, len(catalogue))
	copy(out, catalogue)

	return out
}

// Lookup returns the catalogue model called name.
// Errors: ErrUnknownModel.
func Lookup(name string) (Model, error) {
	for _, m := range catalogue {
		if m.Name == name {
			return m, nil
		}
	}

	return Model{}, fmt.Errorf("Lookup(%q): %w", name, ErrUnknownModel)
}

// ModelNames lists every fittable name, composites included, sorted.
func ModelNames() []string {
	names := make([]string, 0, len(catalogue)+2)
	for _, m := range catalogue {
		names = append(names, m.Name)
	}
	names = append(names, WeibullMixture, WeibullCR)
	sort.Strings(names)

	return names
}

// NumParams is k, the parameter count used by AICc and BIC. A pinned
// threshold counts as a parameter.
func (m Model) NumParams() int {
	if m.thrAtMin {
		return len(m.est) + 1
	}

	return len(m.est)
}

// hasThreshold reports whether the threshold is data-driven (free or pinned).
func (m Model) hasThreshold() bool { return m.thrFree || m.thrAtMin }

// ParamNames returns the full canonical parameter names.
func (m Model) ParamNames() []string {
	info, _ := dist.ParamsOf(m.Family)
	names := make([]string, len(info))
	for i, p := range info {
		names[i] = p.Name
	}

	return names
}

// FreeNames returns the names of the optimizer-estimated parameters.
func (m Model) FreeNames() []string {
	all := m.ParamNames()
	out := make([]string, len(m.est))
	for i, idx := range m.est {
		out[i] = all[idx]
	}

	return out
}

// pinnedThreshold is the value used for a thrAtMin threshold.
func pinnedThreshold(obs *Observations) float64 {
	lo := obs.Min()

	return lo - thresholdGap*math.Max(1, math.Abs(lo))
}

// assemble builds a canonical vector from the non-threshold parameters and gamma.
func (m Model) assemble(shape []float64, gamma float64) []float64 {
	out := append([]float64(nil), shape...)
	if m.thr >= 0 {
		out = append(out[:m.thr], append([]float64{gamma}, out[m.thr:]...)...)
	}

	return out
}

// base returns the canonical vector holding the fixed values for obs.
func (m Model) base(obs *Observations) []float64 {
	out := append([]float64(nil), m.template...)
	if m.thrAtMin {
		out[m.thr] = pinnedThreshold(obs)
	}

	return out
}

// expand writes est into a copy of the canonical vector base.
func (m Model) expand(base, est []float64) []float64 {
	out := append([]float64(nil), base...)
	for i, idx := range m.est {
		out[idx] = est[i]
	}

	return out
}

// extract picks the estimated entries out of a canonical vector.
func (m Model) extract(full []float64) []float64 {
	out := make([]float64, len(m.est))
	for i, idx := range m.est {
		out[i] = full[idx]
	}

	return out
}

// builderAt returns est -> distribution with the non-estimated entries taken
// from base.
func (m Model) builderAt(base []float64) Builder {
	base = append([]float64(nil), base...)

	return func(est []float64) (dist.Distribution, error) {
		return dist.New(m.Family, m.expand(base, est))
	}
}

// bounds returns the box of every estimated parameter. A free threshold lives
// in [0, min(data)); its lower edge is an acceptable optimum.
func (m Model) bounds(obs *Observations) []bound {
	info, _ := dist.ParamsOf(m.Family)
	scale := timeScale(obs)
	out := make([]bound, len(m.est))
	for i, idx := range m.est {
		p := info[idx]
		b := paramBound(p, scale)
		if p.Threshold {
			b = bound{lo: 0, hi: obs.Min(), loOK: true, span: scale}
		}
		out[i] = b
	}

	return out
}

// checkData enforces the family's support on obs.
func (m Model) checkData(obs *Observations) error {
	switch {
	case m.Family == dist.FamilyBeta && !obs.inUnitInterval():
		return fmt.Errorf("%s: %w: Beta requires all data in (0,1)", m.Name, ErrInvalidData)
	case m.Family.PositiveSupport() && obs.Min() <= 0:
		return fmt.Errorf("%s: %w: data must be > 0", m.Name, ErrInvalidData)
	}

	return nil
}
