package screener

import "gonum.org/v1/gonum/stat"

// safetyScore grades how safely undervalued an instrument is, in [0,1].
// q and pp are the valuation and price percentiles on the 0-100 scale.
//
// Exclusions (score 0):
//   - q below the minimum: extreme undervaluation is a drawdown signal,
//     not an opportunity;
//   - valuation still falling for MaxDecliningMonths straight months;
//   - price near its historical highs.
//
// The remaining zones reward low valuation combined with low price, with
// the double-low core zone scoring highest.
func (s *Screener) safetyScore(q, pp float64, declining int) float64 {
	cfg := s.cfg

	switch {
	case q < cfg.MinValuationPercentile || declining >= cfg.MaxDecliningMonths:
		return 0
	case pp > cfg.MaxPricePercentile:
		return 0
	case q >= 10 && q <= 30 && pp <= 50:
		return (30 - q) / 20 * (70 - pp) / 70
	case q >= 10 && q <= 30 && pp > 50 && pp <= 70:
		return (30 - q) / 20 * 0.5
	case q > 30 && q <= 50 && pp <= 50:
		return 0.1 * (50 - q) / 20
	default:
		return 0
	}
}

// decliningMonths counts the consecutive most-recent observations where the
// valuation strictly decreased month-over-month, scanning from the latest
// backward and stopping at the first non-decrease.
func decliningMonths(valuations []float64) int {
	count := 0
	for i := len(valuations) - 1; i > 0; i-- {
		if valuations[i] < valuations[i-1] {
			count++
		} else {
			break
		}
	}
	return count
}

// resilienceCoefficient measures how well an instrument's latest period
// return held up against the peer universe average, in [0,1]. Matching or
// beating the peers scores 1; a drop no worse than -10% scales linearly;
// anything below -10% scores 0.
func resilienceCoefficient(periodReturn, peerAvg float64) float64 {
	switch {
	case periodReturn >= peerAvg:
		return 1.0
	case periodReturn >= -10:
		r := (periodReturn + 10) / 10
		if r > 1 {
			r = 1
		}
		if r < 0 {
			r = 0
		}
		return r
	default:
		return 0
	}
}

// activityCoefficient grades recent turnover against the long-run baseline,
// in [0,1]. Requires a full long window of history; insufficient data or a
// degenerate baseline scores 0.
func (s *Screener) activityCoefficient(turnovers []float64) float64 {
	long := s.cfg.ActivityLongWindow
	short := s.cfg.ActivityShortWindow
	if len(turnovers) < long {
		return 0
	}

	avgShort := stat.Mean(turnovers[len(turnovers)-short:], nil)
	avgLong := stat.Mean(turnovers[len(turnovers)-long:], nil)
	if avgLong == 0 {
		return 0
	}

	switch {
	case avgShort >= avgLong:
		return 1.0
	case avgShort >= 0.5*avgLong:
		return 0.7
	case avgShort >= 0.2*avgLong:
		return 0.3
	default:
		return 0
	}
}
