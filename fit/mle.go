// SPDX-License-Identifier: MIT

package fit

import (
	"fmt"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"

	"github.com/katalvlaran/relfit/dist"
)

// optClosedForm marks estimates that needed no optimizer.
const optClosedForm = "closed-form"

// Fit estimates model m on obs.
//
// Steps (MLE, the default):
//  1. Check the family's support on obs and that there are at least as many
//     distinct failures as parameters.
//  2. Start from the LS estimate (or WithInitialGuess).
//  3. Minimize the censored negative log-likelihood through the optimizer
//     chain in the bounded reparameterization.
//  4. Compute log-likelihood, AICc, BIC, AD and the covariance.
//
// With WithMethod(LS) the rank-regression estimate is returned instead (step 1
// then only flags under-determined data as LowConfidence).
//
// Exponential models have a closed-form MLE, λ = r / total time on test, so
// steps 2 and 3 are skipped: WithInitialGuess, WithOptimizers and WithRestarts
// have no effect, and Result.Optimizer is "closed-form".
//
// Errors: ErrInvalidData, ErrUnderDetermined, ErrOptimizationFailure,
// ErrUnknownModel. A singular covariance is not an error; see
// Result.CovarianceErr.
func Fit(obs *Observations, m Model, opts ...Option) (*Result, error) {
	o := gatherOptions(opts...)

	return fitModel(obs, m, &o)
}

// FitByName looks the model up in the catalogue and fits it.
func FitByName(obs *Observations, name string, opts ...Option) (*Result, error) {
	m, err := Lookup(name)
	if err != nil {
		return nil, err
	}

	return Fit(obs, m, opts...)
}

func fitModel(obs *Observations, m Model, o *options) (*Result, error) {
	if obs == nil {
		return nil, fmt.Errorf("%s: %w: nil observations", m.Name, ErrInvalidData)
	}
	if len(m.est) == 0 {
		return nil, fmt.Errorf("Fit(%q): %w", m.Name, ErrUnknownModel)
	}
	if err := m.checkData(obs); err != nil {
		return nil, err
	}

	var key uint64
	if o.cache != nil {
		key = cacheKey(m.Name, o, obs)
		if r, ok := o.cache.load(key); ok {
			return r, nil
		}
	}

	var (
		res *Result
		err error
	)
	if o.method == LS {
		res, err = fitLeastSquares(obs, m, o)
	} else {
		res, err = fitMLE(obs, m, o)
	}
	if err != nil {
		return nil, err
	}
	if o.cache != nil {
		o.cache.store(key, res)
	}

	return res, nil
}

func fitLeastSquares(obs *Observations, m Model, o *options) (*Result, error) {
	ls, outcomes, err := fitLS(obs, m, o)
	if err != nil {
		return nil, err
	}
	res := finish(obs, m, o, ls.params, m.extract(ls.params), LS, ls.variant.String(), outcomes)
	res.LowConfidence = ls.lowConf

	return res, nil
}

func fitMLE(obs *Observations, m Model, o *options) (*Result, error) {
	if obs.DistinctFailures() < m.NumParams() {
		return nil, fmt.Errorf("%s: %w: %d distinct failures for %d parameters",
			m.Name, ErrUnderDetermined, obs.DistinctFailures(), m.NumParams())
	}
	base := m.base(obs)

	if m.Family == dist.FamilyExponential {
		// λ = r / total time on test, measured from the threshold.
		ttt := obs.sumFailures() + floats.Sum(obs.censored) - float64(obs.N())*base[m.thr]
		est := []float64{float64(obs.NumFailures()) / ttt}

		return finish(obs, m, o, base, est, MLE, optClosedForm, nil), nil
	}

	x0, err := initialGuess(obs, m, o)
	if err != nil {
		return nil, err
	}
	nll := NegLogLik(obs, m.builderAt(base))
	x, s, outcomes, err := newChain(o, m.Name).minimize(nll, codec(m.bounds(obs)), x0)
	if err != nil {
		o.logger.Debug("Fit failed", zap.String("model", m.Name), zap.Error(err))
		return nil, err
	}

	return finish(obs, m, o, base, x, MLE, s.String(), outcomes), nil
}

// initialGuess returns the starting point of the MLE search in est order:
// the caller's guess, the LS estimate, or moment estimates when LS fails.
func initialGuess(obs *Observations, m Model, o *options) ([]float64, error) {
	if o.initial != nil {
		if len(o.initial) != len(m.est) {
			return nil, fmt.Errorf("%s: %w: initial guess has %d values, want %d (%v)",
				m.Name, ErrInvalidData, len(o.initial), len(m.est), m.FreeNames())
		}
		return append([]float64(nil), o.initial...), nil
	}
	ls, _, err := fitLS(obs, m, o)
	if err == nil {
		return m.extract(ls.params), nil
	}
	o.logger.Debug("LS start unavailable, using moments", zap.String("model", m.Name), zap.Error(err))

	return m.extract(m.assemble(momentGuess(m.Family, obs.failures), 0)), nil
}

// finish assembles a Result for a single-family estimate.
func finish(obs *Observations, m Model, o *options, base, est []float64, method Method, optimizer string, diags []Outcome) *Result {
	build := m.builderAt(base)
	d, _ := build(est)
	ll := -negLogLikOf(d, obs)
	k, n := m.NumParams(), obs.N()

	cov, covErr := covariance(NegLogLik(obs, build), est, codec(m.bounds(obs)))
	if covErr != nil {
		o.logger.Warn("Covariance unavailable", zap.String("model", m.Name), zap.String("method", method.String()), zap.Error(covErr))
	}

	return &Result{
		Model:         m.Name,
		Family:        m.Family,
		Method:        method,
		Names:         m.ParamNames(),
		Params:        m.expand(base, est),
		Free:          m.FreeNames(),
		Estimate:      append([]float64(nil), est...),
		StdErr:        standardErrors(cov, len(est)),
		Covariance:    cov,
		CovarianceErr: covErr,
		LogLik:        ll,
		AICc:          aicc(ll, k, n),
		BIC:           bic(ll, k, n),
		AD:            andersonDarling(d, obs),
		K:             k,
		N:             n,
		Optimizer:     optimizer,
		Diagnostics:   diags,
		Distribution: &Fitted{
			d:       d,
			build:   build,
			est:     append([]float64(nil), est...),
			cov:     cov,
			covErr:  covErr,
			thr:     m.thr,
			logTime: m.Family.PositiveSupport(),
			ci:      o.ci,
			ciType:  o.ciType,
		},
	}
}
