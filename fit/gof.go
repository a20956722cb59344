// SPDX-License-Identifier: MIT

package fit

import (
	"math"
	"sort"

	"github.com/katalvlaran/relfit/dist"
)

// adTop closes the last Anderson-Darling interval just below 1.
const adTop = 1 - 1e-12

// aicc returns the small-sample corrected AIC, or plain AIC when n-k-1 <= 0.
func aicc(loglik float64, k, n int) float64 {
	aic := 2*float64(k) - 2*loglik
	if d := n - k - 1; d > 0 {
		return aic + 2*float64(k*(k+1))/float64(d)
	}

	return aic
}

// bic returns k·ln(n) - 2·loglik.
func bic(loglik float64, k, n int) float64 {
	return float64(k)*math.Log(float64(n)) - 2*loglik
}

// andersonDarling computes the AD statistic over the failures only, comparing
// the fitted CDF Z_i with the plotting positions F_i (censored order statistics
// are accounted for through the adjusted ranks). With Z_0 = F_0 = 0 and the
// final interval closed at Z = 1-1e-12:
//
//	AD = r · Σ_{i=1}^{r+1} [ -Z_i - ln(1-Z_i) + Z_{i-1} + ln(1-Z_{i-1})
//	                        + 2·F_{i-1}·(ln(1-Z_i) - ln(1-Z_{i-1}))
//	                        + F_{i-1}²·(ln Z_i - ln(1-Z_i) - ln Z_{i-1} + ln(1-Z_{i-1})) ]
//
// where ln Z_0 is taken as 0.
//
// Complexity: O(r log r), r = number of failures.
func andersonDarling(d dist.Distribution, obs *Observations) float64 {
	times, F := plottingPositions(obs)
	r := len(times)
	z := make([]float64, 0, r+1)
	for _, t := range times {
		z = append(z, d.CDF(t))
	}
	sort.Float64s(z)
	z = append(z, adTop)
	fn := append([]float64(nil), F...)
	sort.Float64s(fn)

	var sum, zPrev, lnZPrev, fPrev float64
	for i, zi := range z {
		if i > 0 {
			fPrev = fn[i-1]
		}
		lnZ := math.Log(zi)
		l1 := math.Log1p(-zi)
		l1Prev := math.Log1p(-zPrev)
		a := -zi - l1 + zPrev + l1Prev
		b := 2*l1*fPrev - 2*l1Prev*fPrev
		f2 := fPrev * fPrev
		var c float64
		if f2 > 0 {
			c = lnZ*f2 - l1*f2 - lnZPrev*f2 + l1Prev*f2
		}
		sum += a + b + c
		zPrev, lnZPrev = zi, lnZ
	}

	return float64(r) * sum
}
