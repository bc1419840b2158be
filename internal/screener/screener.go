// Package screener ranks a universe of indices by a composite of valuation
// safety, price resilience, and trading activity.
package screener

import (
	"sort"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/stat"

	"AllocAdvisor/internal/model"
	"AllocAdvisor/internal/quant"
)

// Config holds the screening thresholds. The exclusion bounds are
// empirically calibrated constants; keep them configurable so they can be
// re-tuned without touching the scoring code.
type Config struct {
	DecayLambda  float64 // valuation percentile decay factor
	WinsorizePct float64 // two-sided tail clip fraction

	MinValuationPercentile float64 // below this, treated as drawdown risk (default 10)
	MaxDecliningMonths     int     // consecutive falling months before exclusion (default 3)
	MaxPricePercentile     float64 // above this, price near historical highs (default 70)

	UniverseCap   int // keep at most this many survivors (default 8)
	UniverseFloor int // below this, keep everything that survived (default 5)

	ActivityShortWindow int // recent turnover window (default 20)
	ActivityLongWindow  int // baseline turnover window, also the minimum history (default 120)
}

// DefaultConfig returns the calibrated production thresholds.
func DefaultConfig() Config {
	return Config{
		DecayLambda:            0.95,
		WinsorizePct:           0.05,
		MinValuationPercentile: 10,
		MaxDecliningMonths:     3,
		MaxPricePercentile:     70,
		UniverseCap:            8,
		UniverseFloor:          5,
		ActivityShortWindow:    20,
		ActivityLongWindow:     120,
	}
}

// Screener computes composite scores and filters the candidate universe.
type Screener struct {
	cfg Config
	log zerolog.Logger
}

// New creates a Screener.
func New(cfg Config, log zerolog.Logger) *Screener {
	return &Screener{cfg: cfg, log: log.With().Str("component", "screener").Logger()}
}

// Screen scores every candidate series, discards non-positive composites,
// and returns the survivors sorted by composite score descending, truncated
// to the universe cap. The second return value counts instruments skipped
// for missing data.
func (s *Screener) Screen(universe []model.ValuationSeries) ([]model.ScreeningResult, int) {
	peerAvg, ok := peerAverageReturn(universe)
	if !ok {
		s.log.Warn().Msg("no instruments with return data; peer average defaults to 0")
	}

	results := make([]model.ScreeningResult, 0, len(universe))
	skipped := 0

	for i := range universe {
		series := &universe[i]
		latest, present := series.Latest()
		if !present || latest.Valuation <= 0 || latest.Price <= 0 {
			s.log.Debug().Str("code", series.Code).Msg("skipping instrument with missing data")
			skipped++
			continue
		}

		valuations := series.Valuations()
		prices := series.Prices()

		valPct, currentVal := quant.WeightedPercentile(valuations, s.cfg.DecayLambda, s.cfg.WinsorizePct)
		pricePct, _ := quant.EmpiricalPercentile(prices)

		safety := s.safetyScore(valPct, pricePct, decliningMonths(valuations))
		resilience := resilienceCoefficient(latest.PeriodReturn, peerAvg)
		activity := s.activityCoefficient(series.TurnoverRates())

		composite := safety * resilience * activity * 100
		if composite <= 0 {
			s.log.Debug().
				Str("code", series.Code).
				Float64("safety", safety).
				Float64("resilience", resilience).
				Float64("activity", activity).
				Msg("instrument filtered out")
			continue
		}

		results = append(results, model.ScreeningResult{
			Code:                series.Code,
			Name:                series.Name,
			CurrentValuation:    currentVal,
			CurrentPrice:        latest.Price,
			ValuationPercentile: valPct,
			PricePercentile:     pricePct,
			SafetyScore:         safety,
			Resilience:          resilience,
			Activity:            activity,
			CompositeScore:      composite,
		})
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].CompositeScore > results[j].CompositeScore
	})

	if len(results) > s.cfg.UniverseCap {
		results = results[:s.cfg.UniverseCap]
	}
	if len(results) < s.cfg.UniverseFloor {
		// Below the floor everything that survived is retained as-is;
		// the shortfall is only worth a note.
		s.log.Warn().
			Int("survivors", len(results)).
			Int("floor", s.cfg.UniverseFloor).
			Msg("survivors below universe floor")
	}

	s.log.Info().
		Int("candidates", len(universe)).
		Int("survivors", len(results)).
		Int("skipped", skipped).
		Msg("screening complete")

	return results, skipped
}

// peerAverageReturn computes the mean latest-period return across all
// instruments that have one. Used as the resilience benchmark.
func peerAverageReturn(universe []model.ValuationSeries) (float64, bool) {
	returns := make([]float64, 0, len(universe))
	for i := range universe {
		if latest, ok := universe[i].Latest(); ok {
			returns = append(returns, latest.PeriodReturn)
		}
	}
	if len(returns) == 0 {
		return 0, false
	}
	return stat.Mean(returns, nil), true
}
