// Package dist provides the lifetime-distribution capability consumed by the
// relfit estimators.
//
// What it offers:
//
//   - A closed set of families (Family): Weibull, Gamma, Lognormal,
//     Loglogistic, Normal, Gumbel (smallest extreme value), Exponential, Beta,
//     GeneralizedPareto, plus the Mixture and CompetingRisks composites.
//   - A single Distribution interface with log-density, log-survival, CDF, SF,
//     hazard (HF), cumulative hazard (CHF), quantile, mean and sampling.
//   - Parameter metadata (ParamsOf): canonical order, flat names and bounds,
//     used by the estimators to build bounded searches generically.
//   - Deterministic random streams (NewRand, DeriveRand, Sample).
//
// Where gonum's distuv already implements a family it is used directly; the
// remaining families are written in closed form. Every value type here is
// immutable and safe to share between goroutines.
//
// Quick start:
//
//	d, err := dist.New(dist.FamilyWeibull, []float64{50, 2, 0})
//	if err != nil { /* ErrBadParams */ }
//	r := d.SF(40)           // reliability at t=40
//	t10 := d.Quantile(0.10) // B10 life
//	xs := dist.Sample(d, 100, 42)
package dist
