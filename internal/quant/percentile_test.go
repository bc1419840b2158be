package quant

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeightedPercentile_EmptySeries(t *testing.T) {
	p, cur := WeightedPercentile(nil, 0.95, 0.05)
	assert.Equal(t, 0.0, p)
	assert.Equal(t, 0.0, cur)
}

func TestWeightedPercentile_SingleObservation(t *testing.T) {
	// Strict "<" against itself is false, so a one-point series is always 0.
	p, cur := WeightedPercentile([]float64{12.5}, 0.95, 0.05)
	assert.Equal(t, 0.0, p)
	assert.Equal(t, 12.5, cur)
}

func TestWeightedPercentile_RangeAndCurrent(t *testing.T) {
	series := []float64{10, 12, 14, 16, 18, 20, 22, 24, 26, 28}
	for _, lambda := range []float64{0.5, 0.9, 0.95, 1.0} {
		p, cur := WeightedPercentile(series, lambda, 0.05)
		assert.GreaterOrEqual(t, p, 0.0, "lambda=%v", lambda)
		assert.LessOrEqual(t, p, 100.0, "lambda=%v", lambda)
		assert.Equal(t, 28.0, cur)
	}
}

func TestWeightedPercentile_MonotonicInCurrentValue(t *testing.T) {
	history := []float64{10, 15, 20, 25, 30, 35, 40}

	var prev float64 = -1
	for _, latest := range []float64{5, 12, 22, 33, 45} {
		series := append(append([]float64{}, history...), latest)
		p, _ := WeightedPercentile(series, 0.95, 0.05)
		assert.GreaterOrEqual(t, p, prev, "latest=%v", latest)
		prev = p
	}
}

func TestWeightedPercentile_NoWinsorizeDegeneratesToPlain(t *testing.T) {
	series := []float64{5, 8, 3, 9, 7, 6}

	clipped, _ := WeightedPercentile(series, 1, 0)
	plain, _ := EmpiricalPercentile(series)
	assert.InDelta(t, plain, clipped, 1e-12)

	// With lambda=1 and no clipping this is the plain strict-below count:
	// 5, 3 are below the current 6 out of 6 observations.
	assert.InDelta(t, 2.0/6.0*100, plain, 1e-12)
}

func TestWinsorizeBounds_LinearInterpolation(t *testing.T) {
	series := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}

	// p*(n-1) interpolation: 0.05*9=0.45 -> 1.45, 0.95*9=8.55 -> 9.55.
	lo, hi := winsorizeBounds(series, 0.05)
	assert.InDelta(t, 1.45, lo, 1e-12)
	assert.InDelta(t, 9.55, hi, 1e-12)

	lo, hi = winsorizeBounds(series, 0.25)
	assert.InDelta(t, 3.25, lo, 1e-12)
	assert.InDelta(t, 7.75, hi, 1e-12)

	lo, hi = winsorizeBounds([]float64{42}, 0.05)
	assert.Equal(t, 42.0, lo)
	assert.Equal(t, 42.0, hi)
}

func TestWeightedPercentile_HeavyWinsorizeCollapsesBand(t *testing.T) {
	// Near-median clipping collapses almost every value to the same band;
	// the current value sits inside it, so nothing ranks strictly below.
	series := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	p, _ := WeightedPercentile(series, 1, 0.49)
	assert.Less(t, p, 100.0)
	assert.GreaterOrEqual(t, p, 0.0)
}

func TestWeightedPercentile_DecayFavorsRecentHistory(t *testing.T) {
	// Old half cheap, recent half expensive, current in between. Strong
	// decay should weight the expensive recent past more, lowering the rank
	// relative to the undecayed percentile.
	series := []float64{5, 5, 5, 5, 5, 20, 20, 20, 20, 10}

	decayed, _ := WeightedPercentile(series, 0.5, 0)
	plain, _ := WeightedPercentile(series, 1, 0)
	require.Less(t, decayed, plain)
}

func TestWeightedPercentile_Idempotent(t *testing.T) {
	series := []float64{13.2, 11.8, 15.4, 14.1, 12.9, 16.3}
	p1, c1 := WeightedPercentile(series, 0.95, 0.05)
	p2, c2 := WeightedPercentile(series, 0.95, 0.05)
	assert.Equal(t, p1, p2)
	assert.Equal(t, c1, c2)
}
