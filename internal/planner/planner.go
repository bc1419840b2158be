// Package planner turns screening results into a macro capital split and a
// concrete per-instrument investment plan.
package planner

import (
	"math"
	"sort"

	"github.com/rs/zerolog"

	"AllocAdvisor/internal/model"
	"AllocAdvisor/internal/quant"
)

// Config holds the planning parameters.
type Config struct {
	Curve quant.CurveConfig
	TopN  int // number of instruments carried into the plan (default 3)
}

// DefaultConfig returns the production planning parameters.
func DefaultConfig() Config {
	return Config{
		Curve: quant.CurveConfig{Type: quant.CurveSigmoid, Aggressiveness: 1.2},
		TopN:  3,
	}
}

// Planner computes the two-step allocation: a macro fraction from the
// market-level percentile, then nonlinear per-instrument weights.
type Planner struct {
	cfg Config
	log zerolog.Logger
}

// New creates a Planner.
func New(cfg Config, log zerolog.Logger) *Planner {
	return &Planner{cfg: cfg, log: log.With().Str("component", "planner").Logger()}
}

// AssessMarket derives the macro allocation from the median valuation
// percentile of the screened universe. An empty universe yields a neutral
// 50th-percentile market with the corresponding fraction.
func (p *Planner) AssessMarket(results []model.ScreeningResult, totalCapital float64) model.MarketAssessment {
	marketPct := 50.0
	if len(results) > 0 {
		percentiles := make([]float64, len(results))
		for i, r := range results {
			percentiles[i] = r.ValuationPercentile
		}
		marketPct = median(percentiles)
	}

	fraction := quant.SizePosition(marketPct, p.cfg.Curve)

	return model.MarketAssessment{
		MarketPercentile: marketPct,
		MacroFraction:    fraction,
		Signal:           marketSignal(marketPct),
		AvailableCapital: totalCapital * fraction,
		IdleCapital:      totalCapital * (1 - fraction),
	}
}

// Plan allocates the available capital across the top-N screening results
// using quadratic percentile weights. Instruments without a usable
// reference price are skipped (and logged), never fatal; the second return
// value counts them.
func (p *Planner) Plan(results []model.ScreeningResult, assessment model.MarketAssessment) ([]model.InvestmentPlanItem, int) {
	selected := results
	if len(selected) > p.cfg.TopN {
		selected = selected[:p.cfg.TopN]
	}

	usable := make([]model.ScreeningResult, 0, len(selected))
	skipped := 0
	for _, r := range selected {
		if r.CurrentPrice <= 0 {
			p.log.Warn().Str("code", r.Code).Msg("skipping instrument without reference price")
			skipped++
			continue
		}
		usable = append(usable, r)
	}
	if len(usable) == 0 {
		return nil, skipped
	}

	weights := nonlinearWeights(usable)

	plan := make([]model.InvestmentPlanItem, 0, len(usable))
	for i, r := range usable {
		amount := assessment.AvailableCapital * weights[i]
		plan = append(plan, model.InvestmentPlanItem{
			Code:                r.Code,
			Name:                r.Name,
			ValuationPercentile: r.ValuationPercentile,
			RiskLabel:           riskLabel(r.ValuationPercentile),
			Weight:              weights[i],
			InvestAmount:        amount,
			EstimatedShares:     int64(math.Floor(amount / r.CurrentPrice)),
		})
	}

	return plan, skipped
}

// median returns the middle element of the values, or the mean of the two
// middle elements for even-length input. The slice is sorted in place.
func median(values []float64) float64 {
	sort.Float64s(values)
	n := len(values)
	if n%2 == 1 {
		return values[n/2]
	}
	return (values[n/2-1] + values[n/2]) / 2
}

// nonlinearWeights converts valuation percentiles into normalized weights
// via the quadratic amplifier ((100-p)/50)^2, pushing cheaper instruments
// toward much larger relative weights than proportional scaling would.
func nonlinearWeights(selected []model.ScreeningResult) []float64 {
	raw := make([]float64, len(selected))
	var total float64
	for i, r := range selected {
		f := (100 - r.ValuationPercentile) / 50
		raw[i] = f * f
		total += raw[i]
	}

	weights := make([]float64, len(raw))
	if total == 0 {
		// Every instrument at the 100th percentile; fall back to equal split.
		for i := range weights {
			weights[i] = 1 / float64(len(weights))
		}
		return weights
	}
	for i, w := range raw {
		weights[i] = w / total
	}
	return weights
}

// marketSignal labels the macro valuation regime for display.
func marketSignal(percentile float64) string {
	switch {
	case percentile < 20:
		return "deeply undervalued"
	case percentile < 40:
		return "undervalued"
	case percentile < 60:
		return "fairly valued"
	case percentile < 80:
		return "overvalued"
	default:
		return "extremely overvalued"
	}
}

// riskLabel maps a valuation percentile to the display-only risk tier.
func riskLabel(percentile float64) string {
	switch {
	case percentile < 20:
		return "low risk"
	case percentile < 40:
		return "moderately low risk"
	case percentile < 60:
		return "medium risk"
	case percentile < 80:
		return "elevated risk"
	default:
		return "high risk"
	}
}
