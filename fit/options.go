// SPDX-License-Identifier: MIT

// Package fit: functional configuration for every fitter. This file defines:
//   - Option / options (functional options with internal state),
//   - documented defaults (constants),
//   - WithX constructors with strong validation (panic on nonsensical values),
//   - gatherOptions helper (internal) that applies defaults.
//
// Design goals:
//   - Deterministic behavior: restarts draw from a seeded stream, never time.
//   - No dead switches: each option is read by at least one fitter.
//   - Safe by construction: panic only on invalid parameters (programmer error).
package fit

import (
	"math"

	"go.uber.org/zap"
)

// Method selects the estimator.
type Method int

const (
	// MLE maximizes the censored log-likelihood.
	MLE Method = iota
	// LS fits a line to the linearized probability plot (rank regression).
	LS
)

func (m Method) String() string {
	if m == LS {
		return "LS"
	}

	return "MLE"
}

// LSVariant selects the rank-regression direction.
type LSVariant int

const (
	// LSAuto runs both RRX and RRY and keeps the higher likelihood.
	LSAuto LSVariant = iota
	// RRX regresses x (time axis) on y (probability axis).
	RRX
	// RRY regresses y on x.
	RRY
)

func (v LSVariant) String() string {
	switch v {
	case RRX:
		return "RRX"
	case RRY:
		return "RRY"
	}

	return "auto"
}

// Criterion orders a FitEverything table.
type Criterion int

const (
	ByAICc Criterion = iota
	ByBIC
	ByAD
	ByLogLik // descending log-likelihood
)

func (c Criterion) String() string {
	switch c {
	case ByBIC:
		return "BIC"
	case ByAD:
		return "AD"
	case ByLogLik:
		return "loglik"
	}

	return "AICc"
}

// ---------- Defaults (single source of truth) ----------

const (
	// DefaultCI is the default confidence level of bounds.
	DefaultCI = 0.95

	// DefaultMaxIterations caps major optimizer iterations per attempt.
	DefaultMaxIterations = 1000

	// DefaultMaxEvaluations caps objective evaluations per attempt.
	DefaultMaxEvaluations = 20000

	// DefaultRestarts is the number of jittered restarts after the primary start.
	DefaultRestarts = 3

	// DefaultSeed seeds the restart jitter.
	DefaultSeed uint64 = 1

	// DefaultWorkers bounds FitEverything concurrency (0 ⇒ unbounded).
	DefaultWorkers = 4
)

// ---------- Internal panic messages (no magic strings) ----------

const (
	panicCIInvalid        = "fit: WithCI: ci must be in (0,1)"
	panicNoStrategies     = "fit: WithOptimizers: at least one strategy required"
	panicUnknownStrategy  = "fit: WithOptimizers: unknown strategy"
	panicMaxIterInvalid   = "fit: WithMaxIterations: iterations and evaluations must be > 0"
	panicRestartsInvalid  = "fit: WithRestarts: restarts must be >= 0"
	panicWorkersInvalid   = "fit: WithWorkers: workers must be >= 0"
	panicGuessInvalid     = "fit: WithInitialGuess: values must be finite"
	panicBoundTypeInvalid = "fit: WithCIType: unknown bound type"
	panicNilLogger        = "fit: WithLogger: logger must not be nil"
	panicMethodInvalid    = "fit: WithMethod: unknown method"
	panicCriterionInvalid = "fit: WithSortBy: unknown criterion"
	panicLSVariantInvalid = "fit: WithLSVariant: unknown variant"
)

// Option mutates internal options. Safe to apply repeatedly (last wins).
type Option func(*options)

// options stores the effective configuration after applying Option setters.
type options struct {
	method     Method
	ci         float64
	ciType     BoundType
	strategies []Strategy
	initial    []float64
	maxIter    int
	maxEval    int
	restarts   int
	seed       uint64
	lsVariant  LSVariant
	logger     *zap.Logger
	cache      *Cache

	// FitEverything
	sortBy     Criterion
	exclude    map[string]bool
	workers    int
	composites bool
}

func defaultOptions() options {
	return options{
		method:     MLE,
		ci:         DefaultCI,
		ciType:     BoundOnTime,
		strategies: DefaultStrategies(),
		maxIter:    DefaultMaxIterations,
		maxEval:    DefaultMaxEvaluations,
		restarts:   DefaultRestarts,
		seed:       DefaultSeed,
		lsVariant:  LSAuto,
		logger:     zap.NewNop(),
		sortBy:     ByAICc,
		exclude:    map[string]bool{},
		workers:    DefaultWorkers,
		composites: true,
	}
}

// gatherOptions applies opts over the defaults.
func gatherOptions(opts ...Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	return o
}

// ---------- Constructors (WithX) ----------

// WithMethod selects MLE (default) or LS.
func WithMethod(m Method) Option {
	if m != MLE && m != LS {
		panic(panicMethodInvalid)
	}

	return func(o *options) { o.method = m }
}

// WithCI sets the confidence level used by the result's default bound
// request. Panics unless 0 < ci < 1.
func WithCI(ci float64) Option {
	if !(ci > 0 && ci < 1) {
		panic(panicCIInvalid)
	}

	return func(o *options) { o.ci = ci }
}

// WithCIType sets the default bound type (BoundOnTime or BoundOnReliability).
func WithCIType(t BoundType) Option {
	if t != BoundOnTime && t != BoundOnReliability {
		panic(panicBoundTypeInvalid)
	}

	return func(o *options) { o.ciType = t }
}

// WithOptimizers overrides the fallback chain order. Panics on an empty list
// or an unknown strategy.
func WithOptimizers(strategies ...Strategy) Option {
	if len(strategies) == 0 {
		panic(panicNoStrategies)
	}
	for _, s := range strategies {
		if s.method() == nil {
			panic(panicUnknownStrategy)
		}
	}
	cp := append([]Strategy(nil), strategies...)

	return func(o *options) { o.strategies = cp }
}

// WithInitialGuess replaces the LS-based starting point. Values follow the
// model's FreeNames order; a length mismatch is reported by the fitter.
func WithInitialGuess(params ...float64) Option {
	for _, v := range params {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			panic(panicGuessInvalid)
		}
	}
	cp := append([]float64(nil), params...)

	return func(o *options) { o.initial = cp }
}

// WithMaxIterations caps major iterations and objective evaluations per
// optimizer attempt.
func WithMaxIterations(iterations, evaluations int) Option {
	if iterations <= 0 || evaluations <= 0 {
		panic(panicMaxIterInvalid)
	}

	return func(o *options) {
		o.maxIter = iterations
		o.maxEval = evaluations
	}
}

// WithRestarts sets the number of jittered restarts tried after the primary
// start point.
func WithRestarts(n int) Option {
	if n < 0 {
		panic(panicRestartsInvalid)
	}

	return func(o *options) { o.restarts = n }
}

// WithSeed seeds the restart jitter (0 maps to dist.DefaultSeed).
func WithSeed(seed uint64) Option {
	return func(o *options) { o.seed = seed }
}

// WithLSVariant forces RRX or RRY instead of picking by likelihood.
func WithLSVariant(v LSVariant) Option {
	if v != LSAuto && v != RRX && v != RRY {
		panic(panicLSVariantInvalid)
	}

	return func(o *options) { o.lsVariant = v }
}

// WithLogger injects a zap logger. Optimizer attempts are logged at Debug,
// singular covariances and failed table entries at Warn.
func WithLogger(l *zap.Logger) Option {
	if l == nil {
		panic(panicNilLogger)
	}

	return func(o *options) { o.logger = l }
}

// WithCache memoizes single-model results in c.
func WithCache(c *Cache) Option {
	return func(o *options) { o.cache = c }
}

// WithSortBy sets the FitEverything ranking criterion (AICc by default).
func WithSortBy(c Criterion) Option {
	if c < ByAICc || c > ByLogLik {
		panic(panicCriterionInvalid)
	}

	return func(o *options) { o.sortBy = c }
}

// WithExclude drops the named models from FitEverything up front.
func WithExclude(names ...string) Option {
	cp := append([]string(nil), names...)

	return func(o *options) {
		for _, n := range cp {
			o.exclude[n] = true
		}
	}
}

// WithWorkers bounds FitEverything concurrency; 0 means one goroutine per model.
func WithWorkers(n int) Option {
	if n < 0 {
		panic(panicWorkersInvalid)
	}

	return func(o *options) { o.workers = n }
}

// WithoutComposites removes Weibull_Mixture and Weibull_CR from FitEverything.
func WithoutComposites() Option {
	return func(o *options) { o.composites = false }
}
