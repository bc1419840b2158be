// Package quant implements the valuation-percentile and position-sizing
// primitives shared by the screener and the planner.
package quant

import (
	"math"
	"sort"
)

// WeightedPercentile computes the decayed, winsorized percentile rank of
// the latest value in values.
//
// Formula: p = Σ(λ^(T-t) · I(w(x_t) < w(x_current))) / Σ(λ^(T-t)) × 100
// where t runs 1..T (t=T is the latest observation), λ is decayLambda and
// w(·) clips to the [winsorizePct, 1-winsorizePct] empirical quantile
// range of the full series.
//
// Degenerate inputs return defined neutral values rather than errors:
// an empty series yields (0, 0), and a zero total weight yields 50.
// A single-observation series always yields 0 because the strict "<"
// comparison of a value against itself is false; callers that want a
// neutral default for length <= 1 must special-case it themselves.
func WeightedPercentile(values []float64, decayLambda, winsorizePct float64) (percentile, current float64) {
	if len(values) == 0 {
		return 0, 0
	}

	current = values[len(values)-1]

	lo, hi := winsorizeBounds(values, winsorizePct)
	clippedCurrent := clamp(current, lo, hi)

	total := len(values)
	var weightedSum, totalWeight float64
	for t := 1; t <= total; t++ {
		w := math.Pow(decayLambda, float64(total-t))
		totalWeight += w
		if clamp(values[t-1], lo, hi) < clippedCurrent {
			weightedSum += w
		}
	}

	if totalWeight == 0 {
		return 50, current
	}
	return weightedSum / totalWeight * 100, current
}

// EmpiricalPercentile is the undecayed, unclipped rank: the weighted
// percentile with decay disabled and no winsorizing.
func EmpiricalPercentile(values []float64) (percentile, current float64) {
	return WeightedPercentile(values, 1, 0)
}

// winsorizeBounds returns the clip bounds for the given two-sided tail
// fraction. A pct of 0 disables clipping.
func winsorizeBounds(values []float64, pct float64) (lo, hi float64) {
	if pct <= 0 {
		return math.Inf(-1), math.Inf(1)
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	return quantile(sorted, pct), quantile(sorted, 1-pct)
}

// quantile interpolates linearly over p*(n-1) on a sorted slice. This is
// the inclusive definition, which keeps the tail clips tight on short
// series (e.g. 1..10 at p=0.05 gives 1.45, not 1).
func quantile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 1 {
		return sorted[0]
	}
	h := p * float64(n-1)
	i := int(math.Floor(h))
	if i >= n-1 {
		return sorted[n-1]
	}
	return sorted[i] + (h-float64(i))*(sorted[i+1]-sorted[i])
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
