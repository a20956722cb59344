// SPDX-License-Identifier: MIT

// Package fit estimates lifetime distributions from failure and
// right-censored data, scores them, and propagates parameter uncertainty into
// confidence bounds.
//
// What it offers:
//
//   - Observations: immutable failures + right-censored times (CensorAt
//     splits complete data at a censoring time).
//   - A model catalogue (Models, Lookup): Weibull_2P/3P, Gamma_2P/3P,
//     Lognormal_2P/3P, Loglogistic_2P/3P, Normal_2P, Gumbel_2P,
//     Exponential_1P/2P, Beta_2P, GeneralizedPareto_3P.
//   - Fit: maximum likelihood (default) or rank regression (WithMethod(LS)).
//     MLE runs a deterministic fallback chain of gonum optimizers
//     (L-BFGS, BFGS, Nelder-Mead, CG) over a bounded reparameterization, with
//     seeded jittered restarts.
//   - Model selection statistics on every Result: log-likelihood, AICc, BIC
//     and the Anderson-Darling statistic.
//   - Covariance from the observed information, standard errors, and
//     delta-method confidence bounds on time or reliability for CDF, SF and
//     CHF (Result.Distribution).
//   - Composite fits: FitMixture, FitCompetingRisks, FitWeibullMixture,
//     FitWeibullCR (one joint MLE problem each).
//   - FitEverything: fits the whole catalogue concurrently and ranks it by
//     AICc (or BIC, AD, log-likelihood), keeping failures as table entries.
//
// Errors are sentinels (ErrInvalidData, ErrUnderDetermined,
// ErrOptimizationFailure, ...) matched with errors.Is. A singular covariance
// does not fail a fit; it is reported on Result.CovarianceErr and bounds then
// return ErrBoundsUnavailable.
//
// Determinism: every random choice (restart jitter) is drawn from a seeded
// stream (WithSeed), so identical inputs and options give identical results.
// Observations and Results are never mutated after construction and may be
// shared between goroutines.
//
// Quick start:
//
//	obs, _ := fit.NewObservations(failures, suspensions)
//	res, err := fit.FitByName(obs, fit.Weibull2P)
//	if err != nil { /* errors.Is(err, fit.ErrOptimizationFailure) ... */ }
//	alpha, _ := res.Param("alpha")
//	sf, _ := res.Distribution.SF([]float64{10, 20, 30}, res.Distribution.DefaultRequest())
//
//	table, _ := fit.FitEverything(obs, fit.WithLogger(logger))
//	best := table.Best()
package fit
