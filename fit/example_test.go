// SPDX-License-Identifier: MIT

// Package fit_test provides runnable examples with stable // Output: blocks.
package fit_test

import (
	"fmt"

	"github.com/katalvlaran/relfit/fit"
)

// ExampleFitByName fits a Weibull_2P model by MLE and by rank regression to
// 20 items, 6 of which were still running at t = 44.31.
func ExampleFitByName() {
	obs, err := fit.CensorAt(weibullRaw, weibullMean)
	if err != nil {
		panic(err)
	}

	mle, err := fit.FitByName(obs, fit.Weibull2P)
	if err != nil {
		panic(err)
	}
	ls, err := fit.FitByName(obs, fit.Weibull2P, fit.WithMethod(fit.LS))
	if err != nil {
		panic(err)
	}

	fmt.Printf("MLE alpha=%.2f beta=%.2f AICc=%.2f\n", mle.Params[0], mle.Params[1], mle.AICc)
	fmt.Printf("LS  alpha=%.2f beta=%.2f (%s)\n", ls.Params[0], ls.Params[1], ls.Optimizer)
	// Output:
	// MLE alpha=45.10 beta=2.78 AICc=115.67
	// LS  alpha=42.91 beta=2.97 (RRY)
}

// ExampleFitByName_exponential shows the closed-form estimate:
// λ = failures / total time on test.
func ExampleFitByName_exponential() {
	obs, _ := fit.NewObservations([]float64{1, 2, 3}, []float64{4})
	r, err := fit.FitByName(obs, fit.Exponential1P)
	if err != nil {
		panic(err)
	}
	fmt.Printf("Lambda=%.3f via %s\n", r.Params[0], r.Optimizer)
	// Output:
	// Lambda=0.300 via closed-form
}
