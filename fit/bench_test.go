// SPDX-License-Identifier: MIT

// Package fit_test benchmarks the estimators on seeded synthetic data.
// Inputs are built outside the timer.
package fit_test

import (
	"testing"

	"github.com/katalvlaran/relfit/dist"
	"github.com/katalvlaran/relfit/fit"
)

func benchObs(b *testing.B, n int) *fit.Observations {
	b.Helper()
	xs := sample(b, dist.FamilyWeibull, []float64{50, 2, 0}, n, 1)
	obs, err := fit.CensorAt(xs, 60)
	if err != nil {
		b.Fatal(err)
	}

	return obs
}

func BenchmarkFit_Weibull2P_MLE(b *testing.B) {
	obs := benchObs(b, 200)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := fit.FitByName(obs, fit.Weibull2P); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkFit_Weibull3P_LS(b *testing.B) {
	obs := benchObs(b, 200)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := fit.FitByName(obs, fit.Weibull3P, fit.WithMethod(fit.LS)); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkFitWeibullMixture(b *testing.B) {
	obs := benchObs(b, 200)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = fit.FitWeibullMixture(obs)
	}
}

func BenchmarkFitEverything(b *testing.B) {
	obs := benchObs(b, 100)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = fit.FitEverything(obs, fit.WithWorkers(0))
	}
}
