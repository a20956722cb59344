// SPDX-License-Identifier: MIT

// Package fit_test holds shared fixtures: the 20-sample Weibull(50, 2) data set
// right-censored at its generating mean, and samplers for synthetic data.
package fit_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/relfit/dist"
	"github.com/katalvlaran/relfit/fit"
)

// weibullRaw are 20 draws from Weibull(alpha=50, beta=2), seed 5.
var weibullRaw = []float64{
	25.0509469542896, 71.5169539139125, 24.061274143636652, 79.19144554660514,
	40.93391258228319, 48.63357919179968, 60.250320858245274, 42.739874120064385,
	29.669624445221345, 22.798666807666393, 14.507554982645285, 57.90277861903343,
	38.149676618287906, 20.757128075920093, 72.79661623040306, 28.298602655553296,
	36.56626267141881, 29.626443850265836, 49.77403202320577, 46.55949087007764,
}

// weibullMean is 50·Γ(1.5), the censoring time of the scenario.
const weibullMean = 44.311346272637905

// Relative tolerance for the reference scenario.
const refTol = 1e-3

func scenario(t *testing.T) *fit.Observations {
	t.Helper()
	obs, err := fit.CensorAt(weibullRaw, weibullMean)
	require.NoError(t, err)

	return obs
}

// sample draws n values from family/params with a fixed seed.
func sample(t testing.TB, f dist.Family, params []float64, n int, seed uint64) []float64 {
	t.Helper()
	d, err := dist.New(f, params)
	require.NoError(t, err)

	return dist.Sample(d, n, seed)
}

func mustObs(t testing.TB, failures, censored []float64) *fit.Observations {
	t.Helper()
	obs, err := fit.NewObservations(failures, censored)
	require.NoError(t, err)

	return obs
}

func variance(t *testing.T, r *fit.Result, name string) float64 {
	t.Helper()
	v := r.Cov(name, name)
	require.False(t, math.IsNaN(v), "variance of %s unavailable: %v", name, r.CovarianceErr)

	return v
}
