// SPDX-License-Identifier: MIT

package fit

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Entry is one row of a Table: a successful fit or a failure marker.
type Entry struct {
	Model     string
	Result    *Result          // nil when Err != nil
	Composite *CompositeResult // set for Weibull_Mixture and Weibull_CR
	Err       error
}

// OK reports whether the entry holds a result.
func (e Entry) OK() bool { return e.Err == nil && e.Result != nil }

// Table is the output of FitEverything: successful fits ranked by SortBy
// (ties broken by BIC), followed by failed models in catalogue order.
type Table struct {
	SortBy  Criterion
	Entries []Entry
}

// Best returns the top-ranked result, or nil when every model failed.
func (t *Table) Best() *Result {
	if len(t.Entries) == 0 || !t.Entries[0].OK() {
		return nil
	}

	return t.Entries[0].Result
}

// Ranked returns the successful entries in rank order.
func (t *Table) Ranked() []Entry {
	out := make([]Entry, 0, len(t.Entries))
	for _, e := range t.Entries {
		if e.OK() {
			out = append(out, e)
		}
	}

	return out
}

// Failed returns the entries whose fit did not succeed.
func (t *Table) Failed() []Entry {
	var out []Entry
	for _, e := range t.Entries {
		if !e.OK() {
			out = append(out, e)
		}
	}

	return out
}

// Fields flattens every successful entry into {Model}_{field} names, e.g.
// Weibull_2P_alpha, Weibull_2P_AICc, Weibull_Mixture_proportion_1.
func (t *Table) Fields() map[string]float64 {
	out := make(map[string]float64)
	for _, e := range t.Ranked() {
		for k, v := range e.Result.Named() {
			out[e.Model+"_"+k] = v
		}
	}

	return out
}

// Value looks up one flat field (see Fields).
func (t *Table) Value(field string) (float64, bool) {
	for _, e := range t.Ranked() {
		rest, ok := strings.CutPrefix(field, e.Model+"_")
		if !ok {
			continue
		}
		if v, ok := e.Result.Named()[rest]; ok {
			return v, true
		}
	}

	return math.NaN(), false
}

// FitEverything fits every catalogue model (plus Weibull_Mixture and
// Weibull_CR for MLE) to obs and ranks the results.
//
// Models whose family cannot represent the data are recorded with
// ErrUnsupportedFamily; any other failure is recorded with its error. Neither
// stops the remaining fits. Fits run concurrently on at most WithWorkers
// goroutines.
//
// Errors: ErrInvalidData for nil observations; ErrOptimizationFailure (with
// the table) when no model could be fitted.
func FitEverything(obs *Observations, opts ...Option) (*Table, error) {
	if obs == nil {
		return nil, fmt.Errorf("FitEverything: %w: nil observations", ErrInvalidData)
	}
	o := gatherOptions(opts...)

	type job struct {
		name string
		run  func() (*Result, *CompositeResult, error)
	}
	var jobs []job
	for _, m := range catalogue {
		if o.exclude[m.Name] {
			continue
		}
		jobs = append(jobs, job{name: m.Name, run: func() (*Result, *CompositeResult, error) {
			if err := m.checkData(obs); err != nil {
				return nil, nil, fmt.Errorf("%w: %w", ErrUnsupportedFamily, err)
			}
			r, err := fitModel(obs, m, &o)
			return r, nil, err
		}})
	}
	if o.composites && o.method == MLE {
		composites := []struct {
			name string
			kind compositeKind
		}{{WeibullMixture, kindMixture}, {WeibullCR, kindCompetingRisks}}
		for _, c := range composites {
			if o.exclude[c.name] {
				continue
			}
			jobs = append(jobs, job{name: c.name, run: func() (*Result, *CompositeResult, error) {
				cr, err := fitComposite(obs, c.kind, c.name, weibullPair(), &o)
				if err != nil {
					return nil, nil, err
				}
				return cr.Result, cr, nil
			}})
		}
	}

	entries := make([]Entry, len(jobs))
	g := new(errgroup.Group)
	if o.workers > 0 {
		g.SetLimit(o.workers)
	}
	for i, j := range jobs {
		g.Go(func() error {
			r, cr, err := j.run()
			entries[i] = Entry{Model: j.name, Result: r, Composite: cr, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	t := &Table{SortBy: o.sortBy, Entries: rank(entries, o.sortBy)}
	for _, e := range t.Failed() {
		o.logger.Warn("Model fit failed", zap.String("model", e.Model), zap.Error(e.Err))
	}
	if t.Best() == nil {
		return t, fmt.Errorf("FitEverything: %w: no model could be fitted", ErrOptimizationFailure)
	}

	return t, nil
}

// criterionValue returns the ascending sort key of r.
func criterionValue(r *Result, c Criterion) float64 {
	switch c {
	case ByBIC:
		return r.BIC
	case ByAD:
		return r.AD
	case ByLogLik:
		return -r.LogLik
	}

	return r.AICc
}

// rank orders successes by c (NaN last, ties by BIC) and appends failures in
// their original order.
func rank(entries []Entry, c Criterion) []Entry {
	var ok, failed []Entry
	for _, e := range entries {
		if e.OK() {
			ok = append(ok, e)
		} else {
			failed = append(failed, e)
		}
	}
	less := func(a, b float64) (bool, bool) {
		switch {
		case math.IsNaN(a) && math.IsNaN(b), a == b:
			return false, false
		case math.IsNaN(b):
			return true, true
		case math.IsNaN(a):
			return false, true
		}
		return a < b, true
	}
	sort.SliceStable(ok, func(i, j int) bool {
		if l, decided := less(criterionValue(ok[i].Result, c), criterionValue(ok[j].Result, c)); decided {
			return l
		}
		l, _ := less(ok[i].Result.BIC, ok[j].Result.BIC)
		return l
	})

	return append(ok, failed...)
}
