// SPDX-License-Identifier: MIT

package fit

import "math"

// Test bridge: exposes a few unexported kernels to package fit_test.

// SearchThreshold_TestOnly runs the LS threshold search of the named model and
// reports every candidate threshold to visit. It returns the chosen threshold.
func SearchThreshold_TestOnly(obs *Observations, name string, visit func(gamma float64)) (float64, error) {
	m, err := Lookup(name)
	if err != nil {
		return 0, err
	}
	o := defaultOptions()

	return newLSRun(obs, m, &o).searchThreshold(visit), nil
}

// PlottingPositions_TestOnly forwards to plottingPositions.
func PlottingPositions_TestOnly(obs *Observations) (times, F []float64) {
	return plottingPositions(obs)
}

// Codec_TestOnly round-trips x through the bounded codec of the named model.
func Codec_TestOnly(obs *Observations, name string, x []float64) (z, back []float64, err error) {
	m, err := Lookup(name)
	if err != nil {
		return nil, nil, err
	}
	cd := codec(m.bounds(obs))
	z = cd.encode(x)

	return z, cd.decode(z), nil
}

// OnBoundary_TestOnly reports whether the natural estimate x of the named
// model would be rejected as sitting on a parameter boundary.
func OnBoundary_TestOnly(obs *Observations, name string, x []float64) (bool, error) {
	m, err := Lookup(name)
	if err != nil {
		return false, err
	}

	return codec(m.bounds(obs)).onBoundary(x), nil
}

// MixtureRejects_TestOnly returns the reason a Weibull_Mixture estimate θ
// would be rejected as degenerate, or "".
func MixtureRejects_TestOnly(obs *Observations, theta []float64) (string, error) {
	c, err := newComposite(obs, kindMixture, WeibullMixture, weibullPair())
	if err != nil {
		return "", err
	}

	return c.degenerate(c.toLogits(theta)), nil
}

// FinishAt_TestOnly assembles the MLE Result of the named model at a chosen
// estimate (free parameters in Free order) without optimizing.
func FinishAt_TestOnly(obs *Observations, name string, est []float64, opts ...Option) (*Result, error) {
	m, err := Lookup(name)
	if err != nil {
		return nil, err
	}
	o := gatherOptions(opts...)

	return finish(obs, m, &o, m.base(obs), est, MLE, "fixed", nil), nil
}

// Covariance_TestOnly forwards to covariance with an unbounded codec.
func Covariance_TestOnly(f func([]float64) float64, x []float64) ([][]float64, error) {
	cd := make(codec, len(x))
	for i := range cd {
		cd[i] = bound{lo: math.Inf(-1), hi: math.Inf(1)}
	}
	cov, err := covariance(f, x, cd)
	if err != nil {
		return nil, err
	}

	return cov.ToRows(), nil
}

var (
	ExportedAICc = aicc
	ExportedBIC  = bic
)

// Panic message exports to avoid magic strings in tests.
const (
	PanicCIInvalid_TestOnly       = panicCIInvalid
	PanicNoStrategies_TestOnly    = panicNoStrategies
	PanicUnknownStrategy_TestOnly = panicUnknownStrategy
	PanicRestartsInvalid_TestOnly = panicRestartsInvalid
	PanicNilLogger_TestOnly       = panicNilLogger
)
