// SPDX-License-Identifier: MIT

package fit

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// Observations is an immutable set of exact failure times and right-censored
// (suspension) times, each stored sorted ascending.
//
// Build it once with NewObservations; all accessors return copies, so a single
// value can be shared by concurrent fits.
type Observations struct {
	failures []float64
	censored []float64
	distinct int
}

// NewObservations validates, copies and sorts the inputs.
//
// Errors:
//   - ErrInvalidData when failures is empty or any value is NaN/±Inf.
//
// Family-specific support (positivity, (0,1) for Beta) is checked per model
// at fit time, not here.
//
// Complexity: O(n log n).
func NewObservations(failures, rightCensored []float64) (*Observations, error) {
	if len(failures) == 0 {
		return nil, fmt.Errorf("NewObservations: %w: no failures", ErrInvalidData)
	}
	f := append([]float64(nil), failures...)
	c := append([]float64(nil), rightCensored...)
	for _, v := range f {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("NewObservations: %w: non-finite failure %g", ErrInvalidData, v)
		}
	}
	for _, v := range c {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("NewObservations: %w: non-finite censoring time %g", ErrInvalidData, v)
		}
	}
	sort.Float64s(f)
	sort.Float64s(c)

	distinct := 1
	for i := 1; i < len(f); i++ {
		if f[i] != f[i-1] {
			distinct++
		}
	}

	return &Observations{failures: f, censored: c, distinct: distinct}, nil
}

// Failures returns a sorted copy of the failure times.
func (o *Observations) Failures() []float64 { return append([]float64(nil), o.failures...) }

// RightCensored returns a sorted copy of the right-censored times.
func (o *Observations) RightCensored() []float64 { return append([]float64(nil), o.censored...) }

// N is the total observation count (failures + right-censored).
func (o *Observations) N() int { return len(o.failures) + len(o.censored) }

// NumFailures is the number of exact failure times.
func (o *Observations) NumFailures() int { return len(o.failures) }

// NumCensored is the number of right-censored times.
func (o *Observations) NumCensored() int { return len(o.censored) }

// DistinctFailures counts distinct failure values.
func (o *Observations) DistinctFailures() int { return o.distinct }

// Min is the smallest observed time (failure or censored).
func (o *Observations) Min() float64 {
	m := o.failures[0]
	if len(o.censored) > 0 && o.censored[0] < m {
		m = o.censored[0]
	}

	return m
}

// Max is the largest observed time (failure or censored).
func (o *Observations) Max() float64 {
	m := o.failures[len(o.failures)-1]
	if len(o.censored) > 0 && o.censored[len(o.censored)-1] > m {
		m = o.censored[len(o.censored)-1]
	}

	return m
}

// inUnitInterval reports whether every time lies strictly inside (0,1).
func (o *Observations) inUnitInterval() bool {
	return o.Min() > 0 && o.Max() < 1
}

// sumFailures is Σ failures.
func (o *Observations) sumFailures() float64 { return floats.Sum(o.failures) }

// CensorAt splits complete data at threshold: values strictly below become
// failures, values at or above become right-censored at threshold itself.
//
// Errors: ErrInvalidData when no value falls below threshold.
func CensorAt(data []float64, threshold float64) (*Observations, error) {
	var failures, censored []float64
	for _, v := range data {
		if v < threshold {
			failures = append(failures, v)
		} else {
			censored = append(censored, threshold)
		}
	}

	return NewObservations(failures, censored)
}
