// SPDX-License-Identifier: MIT

package fit

import "sort"

// benard is the offset of Benard's median-rank approximation.
const benard = 0.3

// plottingPositions returns the failure times (ascending) and their
// probability plotting positions.
//
// Ranks follow Johnson's adjusted-rank rule: walking all n observations in
// time order (failures before suspensions on ties), each failure advances
// the rank by
//
//	(n + 1 - rank) / (1 + reverseRank)
//
// where reverseRank = n - index. Without censoring every increment is 1.
// Ranks map to probabilities with F = (rank - 0.3) / (n + 0.4).
//
// Complexity: O(n log n).
func plottingPositions(obs *Observations) (times, F []float64) {
	type item struct {
		t      float64
		failed bool
	}
	n := obs.N()
	items := make([]item, 0, n)
	for _, t := range obs.failures {
		items = append(items, item{t: t, failed: true})
	}
	for _, t := range obs.censored {
		items = append(items, item{t: t})
	}
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].t != items[j].t {
			return items[i].t < items[j].t
		}

		return items[i].failed && !items[j].failed
	})

	times = make([]float64, 0, len(obs.failures))
	F = make([]float64, 0, len(obs.failures))
	var rank float64
	nf := float64(n)
	for i, it := range items {
		if !it.failed {
			continue
		}
		reverse := nf - float64(i)
		rank += (nf + 1 - rank) / (1 + reverse)
		times = append(times, it.t)
		F = append(F, (rank-benard)/(nf+0.4))
	}

	return times, F
}
