// SPDX-License-Identifier: MIT

// Package fit - composite fitters.
//
// Mixtures and competing-risks models are fitted as one joint MLE problem over
// every component's estimated parameters, through the same strategy chain as
// single-family fits. Mixture proportions enter the optimizer as m-1 softmax
// logits (the last logit fixed at 0), so any point of the search space maps to
// proportions on the simplex. The natural vector reported on the result, and
// used for the covariance, is
//
//	θ = (component 1 estimates, ..., component m estimates, p_1, ..., p_{m-1})
//
// with p_m = 1 - Σ p_j implied.
package fit

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"

	"github.com/katalvlaran/relfit/dist"
)

// Component is one fitted member of a composite model.
type Component struct {
	Model  string
	Names  []string
	Params []float64
}

// CompositeResult is a Result for a mixture or competing-risks fit. The
// embedded Result names parameters with a component suffix (alpha_1, beta_1,
// ..., proportion_1, ...).
type CompositeResult struct {
	*Result
	Components  []Component
	Proportions []float64 // nil for competing risks
}

type compositeKind int

const (
	kindMixture compositeKind = iota
	kindCompetingRisks
)

// composite is the parameter layout of one composite fit.
type composite struct {
	kind  compositeKind
	name  string
	comps []Model
	bases [][]float64
	offs  []int
	nEst  int
}

// FitMixture fits a finite mixture of the given catalogue models.
//
// Errors: ErrBadComponents (fewer than two components or an unknown model),
// ErrUnsupportedFamily (LS requested), ErrInvalidData, ErrUnderDetermined,
// ErrOptimizationFailure.
func FitMixture(obs *Observations, components []Model, opts ...Option) (*CompositeResult, error) {
	o := gatherOptions(opts...)

	return fitComposite(obs, kindMixture, compositeName("Mixture", components), components, &o)
}

// FitCompetingRisks fits S(t) = Π S_j(t) over the given catalogue models.
// Errors as for FitMixture.
func FitCompetingRisks(obs *Observations, components []Model, opts ...Option) (*CompositeResult, error) {
	o := gatherOptions(opts...)

	return fitComposite(obs, kindCompetingRisks, compositeName("CR", components), components, &o)
}

// FitWeibullMixture fits a two-component Weibull_2P mixture.
func FitWeibullMixture(obs *Observations, opts ...Option) (*CompositeResult, error) {
	o := gatherOptions(opts...)

	return fitComposite(obs, kindMixture, WeibullMixture, weibullPair(), &o)
}

// FitWeibullCR fits two competing Weibull_2P failure modes.
func FitWeibullCR(obs *Observations, opts ...Option) (*CompositeResult, error) {
	o := gatherOptions(opts...)

	return fitComposite(obs, kindCompetingRisks, WeibullCR, weibullPair(), &o)
}

func weibullPair() []Model {
	w, _ := Lookup(Weibull2P)

	return []Model{w, w}
}

func compositeName(prefix string, comps []Model) string {
	names := make([]string, len(comps))
	for i, m := range comps {
		names[i] = m.Name
	}

	return prefix + "(" + strings.Join(names, ",") + ")"
}

func fitComposite(obs *Observations, kind compositeKind, name string, comps []Model, o *options) (*CompositeResult, error) {
	if obs == nil {
		return nil, fmt.Errorf("%s: %w: nil observations", name, ErrInvalidData)
	}
	if o.method == LS {
		return nil, fmt.Errorf("%s: %w: composite models are fitted by MLE only", name, ErrUnsupportedFamily)
	}
	c, err := newComposite(obs, kind, name, comps)
	if err != nil {
		return nil, err
	}
	if k := c.numParams(); obs.DistinctFailures() < k {
		return nil, fmt.Errorf("%s: %w: %d distinct failures for %d parameters",
			name, ErrUnderDetermined, obs.DistinctFailures(), k)
	}

	theta0, err := c.initial(obs, o)
	if err != nil {
		return nil, err
	}
	nll := NegLogLik(obs, c.build)
	obj := func(x []float64) float64 { return nll(c.toTheta(x)) }
	ch := newChain(o, name)
	ch.reject = c.degenerate
	x, s, outcomes, err := ch.minimize(obj, c.searchCodec(obs), c.toLogits(theta0))
	if err != nil {
		o.logger.Debug("Composite fit failed", zap.String("model", name), zap.Error(err))
		return nil, err
	}

	return c.finish(obs, o, c.toTheta(x), s, outcomes), nil
}

func newComposite(obs *Observations, kind compositeKind, name string, comps []Model) (*composite, error) {
	if len(comps) < 2 {
		return nil, fmt.Errorf("%s: %w: need at least 2 components, got %d", name, ErrBadComponents, len(comps))
	}
	c := &composite{kind: kind, name: name, comps: append([]Model(nil), comps...)}
	for _, m := range comps {
		if len(m.est) == 0 {
			return nil, fmt.Errorf("%s: %w: component %q is not a catalogue model", name, ErrBadComponents, m.Name)
		}
		if err := m.checkData(obs); err != nil {
			return nil, err
		}
		c.offs = append(c.offs, c.nEst)
		c.bases = append(c.bases, m.base(obs))
		c.nEst += len(m.est)
	}

	return c, nil
}

// nProps is the number of free proportions (m-1 for mixtures).
func (c *composite) nProps() int {
	if c.kind == kindMixture {
		return len(c.comps) - 1
	}

	return 0
}

// numParams is k for AICc and BIC.
func (c *composite) numParams() int {
	k := c.nProps()
	for _, m := range c.comps {
		k += m.NumParams()
	}

	return k
}

// build instantiates the composite from a natural vector θ.
func (c *composite) build(theta []float64) (dist.Distribution, error) {
	ds := make([]dist.Distribution, len(c.comps))
	for j, m := range c.comps {
		d, err := m.builderAt(c.bases[j])(theta[c.offs[j] : c.offs[j]+len(m.est)])
		if err != nil {
			return nil, err
		}
		ds[j] = d
	}
	if c.kind == kindCompetingRisks {
		cr, err := dist.NewCompetingRisks(ds)
		if err != nil {
			return nil, err
		}
		return cr, nil
	}
	mix, err := dist.NewMixture(ds, c.proportions(theta))
	if err != nil {
		return nil, err
	}

	return mix, nil
}

// proportions expands the m-1 free proportions of θ to all m.
func (c *composite) proportions(theta []float64) []float64 {
	p := make([]float64, len(c.comps))
	copy(p, theta[c.nEst:])
	p[len(p)-1] = 1 - floats.Sum(theta[c.nEst:])

	return p
}

// propFloor is the smallest mixture proportion of a non-degenerate fit.
const propFloor = 1e-6

// degenerate rejects a search point whose mixture has lost a component.
func (c *composite) degenerate(x []float64) string {
	if c.nProps() == 0 {
		return ""
	}
	for j, p := range c.proportions(c.toTheta(x)) {
		if !(p >= propFloor) {
			return fmt.Sprintf("proportion %d collapsed to %.3g", j+1, p)
		}
	}

	return ""
}

// toTheta maps a search point (logits) to natural coordinates (proportions).
func (c *composite) toTheta(x []float64) []float64 {
	theta := append([]float64(nil), x...)
	if c.nProps() == 0 {
		return theta
	}
	logits := append(append([]float64(nil), x[c.nEst:]...), 0)
	lse := floats.LogSumExp(logits)
	for j := 0; j < c.nProps(); j++ {
		theta[c.nEst+j] = math.Exp(logits[j] - lse)
	}

	return theta
}

// toLogits is the inverse of toTheta.
func (c *composite) toLogits(theta []float64) []float64 {
	x := append([]float64(nil), theta...)
	if c.nProps() == 0 {
		return x
	}
	last := c.proportions(theta)[len(c.comps)-1]
	for j := 0; j < c.nProps(); j++ {
		x[c.nEst+j] = math.Log(theta[c.nEst+j] / last)
	}

	return x
}

// naturalCodec bounds θ: component boxes, then (0,1) for proportions.
func (c *composite) naturalCodec(obs *Observations) codec {
	cd := make(codec, 0, c.nEst+c.nProps())
	for _, m := range c.comps {
		cd = append(cd, m.bounds(obs)...)
	}
	for j := 0; j < c.nProps(); j++ {
		cd = append(cd, bound{lo: 0, hi: 1})
	}

	return cd
}

// searchCodec leaves the logits unbounded.
func (c *composite) searchCodec(obs *Observations) codec {
	cd := c.naturalCodec(obs)
	for j := c.nEst; j < len(cd); j++ {
		cd[j] = bound{lo: math.Inf(-1), hi: math.Inf(1)}
	}

	return cd
}

// initial splits the sorted failures into contiguous groups, fits each
// component to its group by LS as complete data, and uses the group sizes as
// starting proportions. WithInitialGuess overrides this (θ order).
func (c *composite) initial(obs *Observations, o *options) ([]float64, error) {
	dim := c.nEst + c.nProps()
	if o.initial != nil {
		if len(o.initial) != dim {
			return nil, fmt.Errorf("%s: %w: initial guess has %d values, want %d",
				c.name, ErrInvalidData, len(o.initial), dim)
		}
		theta := append([]float64(nil), o.initial...)
		for _, p := range c.proportions(theta) {
			if !(p > 0 && p < 1) {
				return nil, fmt.Errorf("%s: %w: initial proportions must lie in (0,1)", c.name, ErrInvalidData)
			}
		}
		return theta, nil
	}

	theta := make([]float64, 0, dim)
	groups := splitGroups(obs.failures, len(c.comps))
	for j, m := range c.comps {
		g := groups[j]
		full := m.assemble(momentGuess(m.Family, g), 0)
		if sub, err := NewObservations(g, nil); err == nil {
			if ls, _, err := fitLS(sub, m, o); err == nil {
				full = ls.params
			}
		}
		theta = append(theta, m.extract(full)...)
	}
	for j := 0; j < c.nProps(); j++ {
		theta = append(theta, float64(len(groups[j]))/float64(len(obs.failures)))
	}

	return theta, nil
}

// splitGroups cuts sorted xs into m contiguous groups of near-equal size.
func splitGroups(xs []float64, m int) [][]float64 {
	out := make([][]float64, m)
	n := len(xs)
	for j := 0; j < m; j++ {
		lo, hi := j*n/m, (j+1)*n/m
		out[j] = xs[lo:hi]
	}

	return out
}

func (c *composite) finish(obs *Observations, o *options, theta []float64, s Strategy, diags []Outcome) *CompositeResult {
	d, _ := c.build(theta)
	ll := -negLogLikOf(d, obs)
	k, n := c.numParams(), obs.N()

	cov, covErr := covariance(NegLogLik(obs, c.build), theta, c.naturalCodec(obs))
	if covErr != nil {
		o.logger.Warn("Covariance unavailable", zap.String("model", c.name), zap.Error(covErr))
	}

	fam := dist.FamilyMixture
	if c.kind == kindCompetingRisks {
		fam = dist.FamilyCompetingRisks
	}
	res := &Result{
		Model:         c.name,
		Family:        fam,
		Method:        MLE,
		Estimate:      append([]float64(nil), theta...),
		StdErr:        standardErrors(cov, len(theta)),
		Covariance:    cov,
		CovarianceErr: covErr,
		LogLik:        ll,
		AICc:          aicc(ll, k, n),
		BIC:           bic(ll, k, n),
		AD:            andersonDarling(d, obs),
		K:             k,
		N:             n,
		Optimizer:     s.String(),
		Diagnostics:   diags,
	}

	cr := &CompositeResult{Result: res}
	positive := true
	for j, m := range c.comps {
		suffix := "_" + strconv.Itoa(j+1)
		full := m.expand(c.bases[j], theta[c.offs[j]:c.offs[j]+len(m.est)])
		cr.Components = append(cr.Components, Component{Model: m.Name, Names: m.ParamNames(), Params: full})
		for i, name := range m.ParamNames() {
			res.Names = append(res.Names, name+suffix)
			res.Params = append(res.Params, full[i])
		}
		for _, name := range m.FreeNames() {
			res.Free = append(res.Free, name+suffix)
		}
		positive = positive && m.Family.PositiveSupport()
	}
	if c.kind == kindMixture {
		cr.Proportions = c.proportions(theta)
		for j, p := range cr.Proportions {
			name := "proportion_" + strconv.Itoa(j+1)
			res.Names = append(res.Names, name)
			res.Params = append(res.Params, p)
			if j < c.nProps() {
				res.Free = append(res.Free, name)
			}
		}
	}

	res.Distribution = &Fitted{
		d:       d,
		build:   c.build,
		est:     append([]float64(nil), theta...),
		cov:     cov,
		covErr:  covErr,
		thr:     -1,
		logTime: positive,
		ci:      o.ci,
		ciType:  o.ciType,
	}

	return cr
}
