// SPDX-License-Identifier: MIT

package fit_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/katalvlaran/relfit/fit"
)

var boundTimes = []float64{15, 25, 40, 55, 70}

func fittedScenario(t *testing.T) *fit.Fitted {
	t.Helper()
	r, err := fit.FitByName(scenario(t), fit.Weibull2P)
	require.NoError(t, err)
	require.NotNil(t, r.Distribution)

	return r.Distribution
}

func TestBounds_NoRequest(t *testing.T) {
	f := fittedScenario(t)
	c, err := f.CDF(boundTimes, nil)
	require.NoError(t, err)
	assert.Nil(t, c.Lower)
	assert.Nil(t, c.Upper)
	for i, x := range boundTimes {
		assert.InDelta(t, f.Dist().CDF(x), c.Y[i], 1e-15)
	}
	for _, p := range c.Points() {
		assert.True(t, math.IsNaN(p.Lower))
		assert.True(t, math.IsNaN(p.Upper))
	}
}

// TestBounds_Reliability checks lower <= value <= upper for CDF, SF and CHF.
func TestBounds_Reliability(t *testing.T) {
	f := fittedScenario(t)
	req := &fit.BoundRequest{CI: 0.95, Type: fit.BoundOnReliability}
	for _, eval := range []func([]float64, *fit.BoundRequest) (fit.Curve, error){f.CDF, f.SF, f.CHF} {
		c, err := eval(boundTimes, req)
		require.NoError(t, err)
		require.Len(t, c.Lower, len(boundTimes))
		for i := range boundTimes {
			assert.LessOrEqual(t, c.Lower[i], c.Y[i], c.Function.String())
			assert.GreaterOrEqual(t, c.Upper[i], c.Y[i], c.Function.String())
			assert.Less(t, c.Lower[i], c.Upper[i], c.Function.String())
		}
	}
}

// TestBounds_Time checks the time bounds bracket x.
func TestBounds_Time(t *testing.T) {
	f := fittedScenario(t)
	c, err := f.SF(boundTimes, f.DefaultRequest())
	require.NoError(t, err)
	assert.Equal(t, fit.BoundOnTime, c.Type)
	for i, x := range boundTimes {
		assert.Less(t, c.Lower[i], x)
		assert.Greater(t, c.Upper[i], x)
		assert.Greater(t, c.Lower[i], 0.0)
	}
}

func TestBounds_WiderAtHigherConfidence(t *testing.T) {
	f := fittedScenario(t)
	narrow, err := f.SF(boundTimes, &fit.BoundRequest{CI: 0.8, Type: fit.BoundOnReliability})
	require.NoError(t, err)
	wide, err := f.SF(boundTimes, &fit.BoundRequest{CI: 0.99, Type: fit.BoundOnReliability})
	require.NoError(t, err)
	for i := range boundTimes {
		assert.Greater(t, wide.Upper[i]-wide.Lower[i], narrow.Upper[i]-narrow.Lower[i])
	}
}

func TestBounds_OneSided(t *testing.T) {
	f := fittedScenario(t)
	lo, err := f.CDF(boundTimes, &fit.BoundRequest{CI: 0.9, Type: fit.BoundOnReliability, Side: fit.Lower})
	require.NoError(t, err)
	hi, err := f.CDF(boundTimes, &fit.BoundRequest{CI: 0.9, Type: fit.BoundOnReliability, Side: fit.Upper})
	require.NoError(t, err)
	for i := range boundTimes {
		assert.True(t, math.IsNaN(lo.Upper[i]))
		assert.LessOrEqual(t, lo.Lower[i], lo.Y[i])
		assert.True(t, math.IsNaN(hi.Lower[i]))
		assert.GreaterOrEqual(t, hi.Upper[i], hi.Y[i])
	}
}

func TestBounds_Errors(t *testing.T) {
	f := fittedScenario(t)

	c, err := f.HF(boundTimes, f.DefaultRequest())
	require.ErrorIs(t, err, fit.ErrBoundsUnsupported)
	require.Len(t, c.Y, len(boundTimes))
	assert.InDelta(t, f.Dist().HF(40), c.Y[2], 1e-15)

	c, err = f.HF(boundTimes, nil)
	require.NoError(t, err)
	assert.Nil(t, c.Lower)

	_, err = f.SF(boundTimes, &fit.BoundRequest{CI: 1.5})
	require.ErrorIs(t, err, fit.ErrInvalidBoundRequest)
	_, err = f.SF(boundTimes, &fit.BoundRequest{CI: 0.9, Side: fit.Side(7)})
	require.ErrorIs(t, err, fit.ErrInvalidBoundRequest)
}

func TestParseBoundType(t *testing.T) {
	bt, err := fit.ParseBoundType("reliability")
	require.NoError(t, err)
	assert.Equal(t, fit.BoundOnReliability, bt)
	bt, err = fit.ParseBoundType("T")
	require.NoError(t, err)
	assert.Equal(t, fit.BoundOnTime, bt)
	_, err = fit.ParseBoundType("both")
	require.ErrorIs(t, err, fit.ErrInvalidBoundRequest)
}

// TestResult_SingularCovariance assembles a Weibull_2P result where the
// likelihood is concave in alpha: the covariance must be reported missing,
// every derived uncertainty must be NaN or an error, and point values stay.
func TestResult_SingularCovariance(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	r, err := fit.FinishAt_TestOnly(scenario(t), fit.Weibull2P, []float64{1e6, 2.78}, fit.WithLogger(zap.New(core)))
	require.NoError(t, err)

	require.ErrorIs(t, r.CovarianceErr, fit.ErrSingularCovariance)
	assert.Nil(t, r.Covariance)
	assert.Len(t, logs.FilterMessage("Covariance unavailable").All(), 1)
	for i, se := range r.StdErr {
		assert.True(t, math.IsNaN(se), "StdErr[%d]", i)
	}
	assert.True(t, math.IsNaN(r.Cov("alpha", "beta")))
	assert.True(t, math.IsNaN(r.Cov("alpha", "alpha")))
	named := r.Named()
	assert.True(t, math.IsNaN(named["alpha_SE"]))
	assert.True(t, math.IsNaN(named["beta_SE"]))
	assert.InDelta(t, 1e6, named["alpha"], 1e-9)

	f := r.Distribution
	for _, fn := range []func([]float64, *fit.BoundRequest) (fit.Curve, error){f.CDF, f.SF, f.CHF} {
		c, err := fn(boundTimes, f.DefaultRequest())
		require.ErrorIs(t, err, fit.ErrBoundsUnavailable)
		require.Len(t, c.Y, len(boundTimes))
		for _, y := range c.Y {
			assert.False(t, math.IsNaN(y) || math.IsInf(y, 0))
		}
	}
}

// TestCovariance_FlatDirection checks that a quadratic with a flat direction
// has no covariance, and a positive definite one inverts exactly.
func TestCovariance_FlatDirection(t *testing.T) {
	flat := func(x []float64) float64 { return (x[0] + x[1]) * (x[0] + x[1]) }
	_, err := fit.Covariance_TestOnly(flat, []float64{0, 0})
	require.ErrorIs(t, err, fit.ErrSingularCovariance)

	saddle := func(x []float64) float64 { return x[0]*x[0] - x[1]*x[1] }
	_, err = fit.Covariance_TestOnly(saddle, []float64{0.5, 0.5})
	require.ErrorIs(t, err, fit.ErrSingularCovariance)

	// f = x0² + x0·x1 + x1², H = [[2, 1], [1, 2]], H⁻¹ = [[2, -1], [-1, 2]]/3.
	bowl := func(x []float64) float64 { return x[0]*x[0] + x[0]*x[1] + x[1]*x[1] }
	cov, err := fit.Covariance_TestOnly(bowl, []float64{3, -2})
	require.NoError(t, err)
	assert.InDelta(t, 2.0/3, cov[0][0], 1e-6)
	assert.InDelta(t, -1.0/3, cov[0][1], 1e-6)
	assert.Equal(t, cov[0][1], cov[1][0])
	assert.InDelta(t, 2.0/3, cov[1][1], 1e-6)
}
