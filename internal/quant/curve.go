package quant

import "math"

// CurveType selects the nonlinear percentile-to-position mapping.
type CurveType string

const (
	CurveLinear  CurveType = "linear"
	CurveSigmoid CurveType = "sigmoid"
	CurvePower   CurveType = "power"
	CurveCustom  CurveType = "custom"
)

// CurveConfig names a curve and its shape parameter.
type CurveConfig struct {
	Type           CurveType
	Aggressiveness float64 // >1 more aggressive, <1 more conservative
}

// curveFuncs dispatches each curve type through a pure function of the
// normalized percentile x in [0,1] and the aggressiveness parameter.
var curveFuncs = map[CurveType]func(x, aggressiveness float64) float64{
	CurveLinear: func(x, _ float64) float64 {
		return 1 - x
	},
	CurveSigmoid: func(x, aggr float64) float64 {
		// Inflection fixed at x=0.5 so f(0.5)=0.5 for any aggressiveness.
		k := 5 * aggr
		return 1 / (1 + math.Exp(k*(x-0.5)))
	},
	CurvePower: func(x, aggr float64) float64 {
		p := 0.7 / aggr
		return math.Pow(1-x, p)
	},
	CurveCustom: func(x, _ float64) float64 {
		return interpolate(x, customPointsX, customPointsY)
	},
}

// Hand-tuned control points for the custom curve: full position at the
// cheapest percentile, flat through the lows, zero at the top.
var (
	customPointsX = []float64{0, 0.2, 0.5, 0.8, 1.0}
	customPointsY = []float64{1.0, 0.9, 0.5, 0.2, 0.0}
)

// SizePosition maps a valuation percentile (0-100) to a suggested capital
// allocation fraction in [0,1]. Unknown curve types fall back to the power
// curve with a fixed 0.7 exponent. The function is pure and deterministic.
func SizePosition(percentile float64, cfg CurveConfig) float64 {
	x := clamp(percentile/100, 0, 1)

	fn, ok := curveFuncs[cfg.Type]
	var position float64
	if ok {
		position = fn(x, cfg.Aggressiveness)
	} else {
		position = math.Pow(1-x, 0.7)
	}

	return clamp(position, 0, 1)
}

// interpolate evaluates the piecewise-linear curve through (xs, ys) at x,
// clamping outside the control-point range.
func interpolate(x float64, xs, ys []float64) float64 {
	if x <= xs[0] {
		return ys[0]
	}
	if x >= xs[len(xs)-1] {
		return ys[len(ys)-1]
	}
	for i := 1; i < len(xs); i++ {
		if x <= xs[i] {
			frac := (x - xs[i-1]) / (xs[i] - xs[i-1])
			return ys[i-1] + frac*(ys[i]-ys[i-1])
		}
	}
	return ys[len(ys)-1]
}
