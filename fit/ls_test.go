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

// TestPlottingPositions_Complete checks Benard's approximation without
// censoring: F_i = (i - 0.3) / (n + 0.4).
func TestPlottingPositions_Complete(t *testing.T) {
	times, F := fit.PlottingPositions_TestOnly(mustObs(t, []float64{3, 1, 2, 4}, nil))
	assert.Equal(t, []float64{1, 2, 3, 4}, times)
	for i, f := range F {
		assert.InDelta(t, (float64(i+1)-0.3)/4.4, f, 1e-15)
	}
}

// TestPlottingPositions_Censored checks Johnson's adjusted ranks.
func TestPlottingPositions_Censored(t *testing.T) {
	times, F := fit.PlottingPositions_TestOnly(mustObs(t, []float64{1, 3}, []float64{2}))
	assert.Equal(t, []float64{1, 3}, times)
	// Ranks 1 and 1 + (4-1)/(1+1) = 2.5.
	assert.InDelta(t, 0.7/3.4, F[0], 1e-15)
	assert.InDelta(t, 2.2/3.4, F[1], 1e-15)
}

// TestPlottingPositions_Ties puts failures before suspensions at equal times.
func TestPlottingPositions_Ties(t *testing.T) {
	_, F := fit.PlottingPositions_TestOnly(mustObs(t, []float64{2, 5}, []float64{2}))
	assert.InDelta(t, 0.7/3.4, F[0], 1e-15)
	assert.InDelta(t, 2.2/3.4, F[1], 1e-15)
}

// TestLS_ThresholdSearch_StaysBelowMin records every candidate threshold of
// the 3P searches: none may reach min(data).
func TestLS_ThresholdSearch_StaysBelowMin(t *testing.T) {
	xs := sample(t, dist.FamilyWeibull, []float64{30, 1.5, 20}, 60, 9)
	obs := mustObs(t, xs, nil)
	for _, name := range []string{fit.Weibull3P, fit.Lognormal3P, fit.Loglogistic3P} {
		var seen []float64
		gamma, err := fit.SearchThreshold_TestOnly(obs, name, func(g float64) { seen = append(seen, g) })
		require.NoError(t, err, name)
		require.NotEmpty(t, seen, name)
		for _, g := range seen {
			assert.GreaterOrEqual(t, g, 0.0, name)
			assert.Less(t, g, obs.Min(), name)
		}
		assert.GreaterOrEqual(t, gamma, 0.0, name)
		assert.Less(t, gamma, obs.Min(), name)
	}
}

// TestLS_NonlinearFamilies checks the families without a linearization.
func TestLS_NonlinearFamilies(t *testing.T) {
	cases := []struct {
		model  string
		family dist.Family
		params []float64
	}{
		{fit.Gamma2P, dist.FamilyGamma, []float64{10, 3, 0}},
		{fit.Beta2P, dist.FamilyBeta, []float64{2, 5}},
	}
	for _, tc := range cases {
		t.Run(tc.model, func(t *testing.T) {
			xs := sample(t, tc.family, tc.params, 300, 4)
			r, err := fit.FitByName(mustObs(t, xs, nil), tc.model, fit.WithMethod(fit.LS))
			require.NoError(t, err)
			assert.InEpsilon(t, tc.params[0], r.Params[0], 0.35)
			assert.InEpsilon(t, tc.params[1], r.Params[1], 0.35)
		})
	}
}

func TestCodec_RoundTrip(t *testing.T) {
	obs := mustObs(t, []float64{10, 12, 15}, nil)
	x := []float64{50, 2, 3}
	z, back, err := fit.Codec_TestOnly(obs, fit.Weibull3P, x)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, z[1]-0.6931471805599453, 1e-12) // ln 2
	assert.InDeltaSlice(t, x, back, 1e-9)

	// An estimate outside the box is pulled inside first.
	_, back, err = fit.Codec_TestOnly(obs, fit.Weibull3P, []float64{50, 2, 10})
	require.NoError(t, err)
	assert.Less(t, back[2], 10.0)
}

// TestCodec_OnBoundary checks the edge rule in natural units: a shape at its
// limit is rejected, a threshold at zero is not, and a threshold at min(data)
// is.
func TestCodec_OnBoundary(t *testing.T) {
	obs := mustObs(t, []float64{10, 12, 15}, nil)
	cases := []struct {
		model string
		x     []float64
		want  bool
	}{
		{fit.GeneralizedPareto3P, []float64{2, -1 + math.Exp(-24.5)}, true},
		{fit.GeneralizedPareto3P, []float64{2, -0.5}, false},
		{fit.GeneralizedPareto3P, []float64{2e12, 0.1}, true},
		{fit.Weibull3P, []float64{50, 2, 1e-14}, false},
		{fit.Weibull3P, []float64{50, 2, 10 * (1 - 1e-10)}, true},
		{fit.Weibull3P, []float64{50, 2, 9.9}, false},
		{fit.Weibull3P, []float64{50, 1e-10, 5}, true},
		{fit.Exponential1P, []float64{1e-3}, false},
		{fit.Exponential1P, []float64{1e-12}, true},
	}
	for _, tc := range cases {
		got, err := fit.OnBoundary_TestOnly(obs, tc.model, tc.x)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got, "%s at %v", tc.model, tc.x)
	}
}
