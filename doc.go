// Package relfit fits parametric lifetime distributions to reliability
// data: failure times together with right-censored survivors.
//
// 🚀 What is relfit?
//
//	A library and CLI that brings together:
//		• Families: Weibull, Gamma, Lognormal, Loglogistic, Normal, Gumbel,
//		  Exponential, Beta, Generalized Pareto (2P/3P variants)
//		• Estimators: censored maximum likelihood, rank regression (RRX/RRY)
//		• Goodness of fit: AICc, BIC, Anderson-Darling
//		• Uncertainty: Fisher-information covariance, time and reliability bounds
//		• Composites: Weibull mixtures and competing risks
//		• Fit-Everything: every model in parallel, ranked by a criterion
//
// Under the hood the code is organized in three packages:
//
//	dist/    - distribution families, parameter metadata, seeded sampling
//	matrix/  - small dense matrices: LU, inverse, quadratic forms
//	fit/     - observations, estimators, bounds, ranking
//
// and one command:
//
//	cmd/relfit - YAML jobs in, YAML reports out
//
// Quick example:
//
//	obs, _ := fit.NewObservations(failures, survivors)
//	r, _ := fit.FitByName(obs, fit.Weibull2P)
//	sf, _ := r.Distribution.SF([]float64{1000}, r.Distribution.DefaultRequest())
//
//	go get github.com/katalvlaran/relfit
package relfit
