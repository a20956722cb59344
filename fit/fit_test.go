// SPDX-License-Identifier: MIT

package fit_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/relfit/dist"
	"github.com/katalvlaran/relfit/fit"
)

// TestFit_Weibull2P_MLE_Scenario fits Weibull_2P to the censored reference
// sample and checks every reported statistic.
func TestFit_Weibull2P_MLE_Scenario(t *testing.T) {
	obs := scenario(t)
	require.Equal(t, 12, obs.NumFailures())
	require.Equal(t, 8, obs.NumCensored())

	r, err := fit.FitByName(obs, fit.Weibull2P)
	require.NoError(t, err)

	alpha, ok := r.Param("alpha")
	require.True(t, ok)
	beta, _ := r.Param("beta")
	gamma, _ := r.Param("gamma")
	assert.InEpsilon(t, 45.09901, alpha, refTol)
	assert.InEpsilon(t, 2.782753, beta, refTol)
	assert.Zero(t, gamma)
	assert.InEpsilon(t, -55.4819183, r.LogLik, refTol)
	assert.InEpsilon(t, 115.66972, r.AICc, refTol)
	assert.InEpsilon(t, 116.95530, r.BIC, refTol)
	assert.InEpsilon(t, 55.60004, r.AD, refTol)
	assert.InEpsilon(t, -0.917806, r.Cov("alpha", "beta"), 2e-2)

	assert.Equal(t, fit.MLE, r.Method)
	assert.Equal(t, 2, r.K)
	assert.Equal(t, 20, r.N)
	assert.Equal(t, []string{"alpha", "beta"}, r.Free)
	assert.Contains(t, []string{"L-BFGS", "BFGS", "Nelder-Mead", "CG"}, r.Optimizer)
	require.NotEmpty(t, r.Diagnostics)
	assert.True(t, r.Diagnostics[len(r.Diagnostics)-1].Accepted)
	require.NoError(t, r.CovarianceErr)
	assert.Greater(t, r.StdErr[0], 0.0)
	assert.Greater(t, r.StdErr[1], 0.0)
}

// TestFit_Weibull2P_LS_Scenario checks the rank-regression estimate of the same
// data; RRY gives the higher likelihood here.
func TestFit_Weibull2P_LS_Scenario(t *testing.T) {
	r, err := fit.FitByName(scenario(t), fit.Weibull2P, fit.WithMethod(fit.LS))
	require.NoError(t, err)

	alpha, _ := r.Param("alpha")
	beta, _ := r.Param("beta")
	assert.InEpsilon(t, 42.913333, alpha, refTol)
	assert.InEpsilon(t, 2.965715, beta, refTol)
	assert.InEpsilon(t, -55.6154, r.LogLik, refTol)
	assert.InEpsilon(t, 115.93668, r.AICc, refTol)
	assert.InEpsilon(t, 117.222266, r.BIC, refTol)
	assert.InEpsilon(t, 55.628075, r.AD, refTol)
	assert.Equal(t, fit.LS, r.Method)
	assert.Equal(t, "RRY", r.Optimizer)
	assert.False(t, r.LowConfidence)
}

// TestFit_LS_ForcedVariant checks that WithLSVariant pins the direction.
func TestFit_LS_ForcedVariant(t *testing.T) {
	obs := scenario(t)
	rrx, err := fit.FitByName(obs, fit.Weibull2P, fit.WithMethod(fit.LS), fit.WithLSVariant(fit.RRX))
	require.NoError(t, err)
	rry, err := fit.FitByName(obs, fit.Weibull2P, fit.WithMethod(fit.LS), fit.WithLSVariant(fit.RRY))
	require.NoError(t, err)

	assert.Equal(t, "RRX", rrx.Optimizer)
	assert.Equal(t, "RRY", rry.Optimizer)
	assert.NotEqual(t, rrx.Params[1], rry.Params[1])
	assert.GreaterOrEqual(t, rry.LogLik, rrx.LogLik)
}

// TestFit_Recovery checks that MLE recovers generating parameters on large
// seeded samples.
func TestFit_Recovery(t *testing.T) {
	cases := []struct {
		model  string
		family dist.Family
		params []float64
		names  []string
		tol    []float64 // absolute tolerance per name
	}{
		{fit.Weibull2P, dist.FamilyWeibull, []float64{50, 2, 0}, []string{"alpha", "beta"}, []float64{4, 0.25}},
		{fit.Lognormal2P, dist.FamilyLognormal, []float64{2, 0.5, 0}, []string{"mu", "sigma"}, []float64{0.08, 0.05}},
		{fit.Normal2P, dist.FamilyNormal, []float64{-5, 2}, []string{"mu", "sigma"}, []float64{0.3, 0.2}},
		{fit.Gamma2P, dist.FamilyGamma, []float64{10, 3, 0}, []string{"alpha", "beta"}, []float64{2, 0.6}},
	}
	for _, tc := range cases {
		t.Run(tc.model, func(t *testing.T) {
			xs := sample(t, tc.family, tc.params, 600, 11)
			r, err := fit.FitByName(mustObs(t, xs, nil), tc.model)
			require.NoError(t, err)
			for i, name := range tc.names {
				got, ok := r.Param(name)
				require.True(t, ok)
				assert.InDelta(t, tc.params[i], got, tc.tol[i], name)
			}
		})
	}
}

// TestFit_CensoringInflatesVariance checks that censoring more of the same
// sample never shrinks the variance of the estimates.
func TestFit_CensoringInflatesVariance(t *testing.T) {
	xs := sample(t, dist.FamilyWeibull, []float64{50, 2, 0}, 500, 21)

	complete, err := fit.FitByName(mustObs(t, xs, nil), fit.Weibull2P)
	require.NoError(t, err)
	light, err := fit.CensorAt(xs, 70)
	require.NoError(t, err)
	lightFit, err := fit.FitByName(light, fit.Weibull2P)
	require.NoError(t, err)
	heavy, err := fit.CensorAt(xs, 35)
	require.NoError(t, err)
	heavyFit, err := fit.FitByName(heavy, fit.Weibull2P)
	require.NoError(t, err)

	for _, p := range []string{"alpha", "beta"} {
		v0 := variance(t, complete, p)
		v1 := variance(t, lightFit, p)
		v2 := variance(t, heavyFit, p)
		assert.LessOrEqual(t, v0, v1, p)
		assert.LessOrEqual(t, v1, v2, p)
	}
}

// TestFit_Idempotent checks that identical inputs give identical results.
func TestFit_Idempotent(t *testing.T) {
	obs := scenario(t)
	for _, name := range []string{fit.Weibull2P, fit.Loglogistic2P, fit.Lognormal2P} {
		a, err := fit.FitByName(obs, name)
		require.NoError(t, err, name)
		b, err := fit.FitByName(obs, name)
		require.NoError(t, err, name)
		assert.Equal(t, a.Params, b.Params, name)
		assert.Equal(t, a.LogLik, b.LogLik, name)
		assert.Equal(t, a.Optimizer, b.Optimizer, name)
	}
}

// TestFit_Weibull3P_ThresholdBelowMin checks the threshold stays inside
// [0, min(data)) for both estimators.
func TestFit_Weibull3P_ThresholdBelowMin(t *testing.T) {
	xs := sample(t, dist.FamilyWeibull, []float64{30, 1.8, 100}, 200, 3)
	obs := mustObs(t, xs, nil)
	for _, m := range []fit.Method{fit.MLE, fit.LS} {
		r, err := fit.FitByName(obs, fit.Weibull3P, fit.WithMethod(m))
		require.NoError(t, err, m.String())
		gamma, _ := r.Param("gamma")
		assert.GreaterOrEqual(t, gamma, 0.0, m.String())
		assert.Less(t, gamma, obs.Min(), m.String())
		assert.Equal(t, 3, r.K)
	}
}

// TestFit_Exponential_ClosedForm checks λ = r / total time on test.
func TestFit_Exponential_ClosedForm(t *testing.T) {
	r, err := fit.FitByName(mustObs(t, []float64{1, 2, 3}, []float64{4}), fit.Exponential1P)
	require.NoError(t, err)
	assert.InDelta(t, 0.3, r.Params[0], 1e-12)
	assert.Equal(t, "closed-form", r.Optimizer)
	assert.Equal(t, 1, r.K)

	r, err = fit.FitByName(mustObs(t, []float64{2, 3, 4}, nil), fit.Exponential2P)
	require.NoError(t, err)
	gamma, _ := r.Param("gamma")
	assert.InDelta(t, 2, gamma, 1e-6)
	assert.Less(t, gamma, 2.0)
	assert.InDelta(t, 1, r.Params[0], 1e-6)
	assert.Equal(t, 2, r.K)
	assert.Equal(t, []string{"Lambda"}, r.Free)

	// The closed form takes no start point and runs no optimizer.
	r, err = fit.FitByName(mustObs(t, []float64{1, 2, 3}, []float64{4}), fit.Exponential1P,
		fit.WithInitialGuess(99), fit.WithOptimizers(fit.NelderMead))
	require.NoError(t, err)
	assert.InDelta(t, 0.3, r.Params[0], 1e-12)
	assert.Equal(t, "closed-form", r.Optimizer)
	assert.Empty(t, r.Diagnostics)
}

func TestFit_Errors(t *testing.T) {
	_, err := fit.FitByName(mustObs(t, []float64{5, 5, 5}, nil), fit.Weibull2P)
	require.ErrorIs(t, err, fit.ErrUnderDetermined)

	_, err = fit.FitByName(mustObs(t, []float64{-1, 2, 3}, nil), fit.Weibull2P)
	require.ErrorIs(t, err, fit.ErrInvalidData)

	_, err = fit.FitByName(mustObs(t, []float64{0.2, 0.5, 1.5}, nil), fit.Beta2P)
	require.ErrorIs(t, err, fit.ErrInvalidData)

	_, err = fit.FitByName(scenario(t), "Weibull_9P")
	require.ErrorIs(t, err, fit.ErrUnknownModel)

	_, err = fit.Fit(nil, fit.Models()[0])
	require.ErrorIs(t, err, fit.ErrInvalidData)

	_, err = fit.FitByName(scenario(t), fit.Weibull2P, fit.WithInitialGuess(40))
	require.ErrorIs(t, err, fit.ErrInvalidData)
}

// TestFit_LS_LowConfidence checks that LS still answers, flagged, when there
// are fewer distinct failures than parameters.
func TestFit_LS_LowConfidence(t *testing.T) {
	obs := mustObs(t, []float64{5, 5, 7, 7}, nil)
	_, err := fit.FitByName(obs, fit.Weibull3P)
	require.ErrorIs(t, err, fit.ErrUnderDetermined)

	r, err := fit.FitByName(obs, fit.Weibull3P, fit.WithMethod(fit.LS))
	require.NoError(t, err)
	assert.True(t, r.LowConfidence)
}

// TestFit_InitialGuess checks that a caller-supplied start reaches the same
// optimum.
func TestFit_InitialGuess(t *testing.T) {
	obs := scenario(t)
	base, err := fit.FitByName(obs, fit.Weibull2P)
	require.NoError(t, err)
	r, err := fit.FitByName(obs, fit.Weibull2P, fit.WithInitialGuess(30, 1.5))
	require.NoError(t, err)
	assert.InEpsilon(t, base.Params[0], r.Params[0], 1e-4)
	assert.InEpsilon(t, base.Params[1], r.Params[1], 1e-4)
}

// TestFit_SingleStrategy checks every strategy alone can solve the scenario.
func TestFit_SingleStrategy(t *testing.T) {
	obs := scenario(t)
	for _, s := range fit.DefaultStrategies() {
		r, err := fit.FitByName(obs, fit.Weibull2P, fit.WithOptimizers(s), fit.WithRestarts(0))
		require.NoError(t, err, s.String())
		assert.Equal(t, s.String(), r.Optimizer)
		assert.InEpsilon(t, 45.09901, r.Params[0], 5e-3, s.String())
		for _, o := range r.Diagnostics {
			assert.Equal(t, s, o.Strategy)
			assert.Zero(t, o.Start)
		}
	}
}

func TestResult_Named(t *testing.T) {
	r, err := fit.FitByName(scenario(t), fit.Weibull2P)
	require.NoError(t, err)

	named := r.Named()
	for _, k := range []string{"alpha", "beta", "gamma", "AICc", "BIC", "loglik", "AD", "alpha_SE", "beta_SE", "Cov_alpha_beta"} {
		assert.Contains(t, named, k)
	}
	assert.Equal(t, r.AICc, named["AICc"])
	assert.InDelta(t, math.Sqrt(r.Cov("beta", "beta")), named["beta_SE"], 1e-12)
	assert.True(t, math.IsNaN(r.Cov("alpha", "gamma")))
}

func TestCache(t *testing.T) {
	obs := scenario(t)
	c := fit.NewCache()

	a, err := fit.FitByName(obs, fit.Weibull2P, fit.WithCache(c))
	require.NoError(t, err)
	b, err := fit.FitByName(obs, fit.Weibull2P, fit.WithCache(c))
	require.NoError(t, err)
	assert.Equal(t, 1, c.Len())
	assert.Equal(t, 1, c.Hits())
	assert.Equal(t, a.Params, b.Params)

	// Results handed out are copies.
	b.Params[0] = -1
	cached, err := fit.FitByName(obs, fit.Weibull2P, fit.WithCache(c))
	require.NoError(t, err)
	assert.Equal(t, a.Params, cached.Params)

	// Different options, different entry.
	_, err = fit.FitByName(obs, fit.Weibull2P, fit.WithCache(c), fit.WithMethod(fit.LS))
	require.NoError(t, err)
	assert.Equal(t, 2, c.Len())

	c.Reset()
	assert.Zero(t, c.Len())
}

func TestModels_Catalogue(t *testing.T) {
	ms := fit.Models()
	require.Len(t, ms, 14)
	for _, m := range ms {
		got, err := fit.Lookup(m.Name)
		require.NoError(t, err)
		assert.Equal(t, m.Name, got.Name)
		assert.NotEmpty(t, m.FreeNames())
		assert.GreaterOrEqual(t, m.NumParams(), len(m.FreeNames()))
	}
	names := fit.ModelNames()
	assert.Len(t, names, 16)
	assert.Contains(t, names, fit.WeibullMixture)
	assert.Contains(t, names, fit.WeibullCR)
}

func TestGOF_Criteria(t *testing.T) {
	// n-k-1 <= 0 falls back to plain AIC.
	assert.Equal(t, 26.0, fit.ExportedAICc(-10, 3, 4))
	assert.InDelta(t, 6+20+24.0/6, fit.ExportedAICc(-10, 3, 10), 1e-12)
	assert.InDelta(t, 3*math.Log(10)+20, fit.ExportedBIC(-10, 3, 10), 1e-12)
}

// TestFit_GPD_ShapeNotOnEdge fits a GPD to light-tailed data whose likelihood
// pushes xi toward -1: the fit may fail, but xi must stay off the edge.
func TestFit_GPD_ShapeNotOnEdge(t *testing.T) {
	xs := sample(t, dist.FamilyBeta, []float64{5, 4}, 200, 11)
	obs, err := fit.CensorAt(xs, 5.0/9)
	require.NoError(t, err)

	r, err := fit.FitByName(obs, fit.GeneralizedPareto3P)
	if err != nil {
		require.ErrorIs(t, err, fit.ErrOptimizationFailure)
		return
	}
	xi, ok := r.Param("xi")
	require.True(t, ok)
	assert.Greater(t, xi, -1+1e-9)
}
