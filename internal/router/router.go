// Package router picks the screening universe granularity for a user:
// broad sector indices for smaller, less experienced investors, narrower
// sub-sector indices for larger, more experienced ones.
package router

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"AllocAdvisor/internal/model"
)

// UniverseKind identifies a screening universe granularity.
type UniverseKind string

const (
	UniverseSector    UniverseKind = "sector"
	UniverseSubSector UniverseKind = "subsector"
)

// Volatility buckets the market regime for routing.
type Volatility string

const (
	VolatilityLow    Volatility = "low"
	VolatilityMedium Volatility = "medium"
	VolatilityHigh   Volatility = "high"
)

// MarketState is the coarse market context the router considers.
type MarketState struct {
	Volatility Volatility
}

// Decision carries the routing outcome and its per-dimension scores for
// the report.
type Decision struct {
	Kind            UniverseKind
	Score           float64
	RunnerUpScore   float64
	DimensionScores map[string]float64
	Reason          string
}

// Dimension weights sum to 1; the per-dimension scores are on a 0-100
// scale so the total is too.
var weights = map[string]float64{
	"capital":         0.30,
	"risk":            0.25,
	"experience":      0.20,
	"market":          0.15,
	"diversification": 0.10,
}

// Router scores both universes against the profile and market state and
// picks the higher one. Ties go to the broad sector universe.
type Router struct {
	log zerolog.Logger
}

func New(log zerolog.Logger) *Router {
	return &Router{log: log.With().Str("component", "router").Logger()}
}

// Route selects the universe for a profile. The market state defaults to
// medium volatility when the zero value is passed.
func (r *Router) Route(p model.UserProfile, market MarketState) Decision {
	if market.Volatility == "" {
		market.Volatility = VolatilityMedium
	}

	sectorScores := score(UniverseSector, p, market)
	subScores := score(UniverseSubSector, p, market)
	sectorTotal := weightedTotal(sectorScores)
	subTotal := weightedTotal(subScores)

	d := Decision{Kind: UniverseSector, Score: sectorTotal, RunnerUpScore: subTotal, DimensionScores: sectorScores}
	if subTotal > sectorTotal {
		d = Decision{Kind: UniverseSubSector, Score: subTotal, RunnerUpScore: sectorTotal, DimensionScores: subScores}
	}
	d.Reason = reason(d)

	r.log.Info().
		Str("universe", string(d.Kind)).
		Float64("score", d.Score).
		Float64("runner_up", d.RunnerUpScore).
		Msg("routed screening universe")

	return d
}

func weightedTotal(scores map[string]float64) float64 {
	var total float64
	for dim, s := range scores {
		total += s * weights[dim]
	}
	return total
}

func score(kind UniverseKind, p model.UserProfile, market MarketState) map[string]float64 {
	return map[string]float64{
		"capital":         capitalScore(kind, p.TotalCapital),
		"risk":            riskScore(kind, p.RiskLevel),
		"experience":      experienceScore(kind, p.Experience),
		"market":          marketScore(kind, market.Volatility),
		"diversification": diversificationScore(kind, p.TotalCapital),
	}
}

// capitalScore favors the broad universe for small accounts and the
// narrow one above the 1M and 5M marks.
func capitalScore(kind UniverseKind, capital float64) float64 {
	if kind == UniverseSector {
		switch {
		case capital < 1e6:
			return 90
		case capital < 5e6:
			return 80
		default:
			return 60
		}
	}
	switch {
	case capital < 1e6:
		return 40
	case capital < 5e6:
		return 70
	default:
		return 95
	}
}

func riskScore(kind UniverseKind, level model.RiskLevel) float64 {
	if level == 0 {
		level = model.RiskModerate
	}
	if kind == UniverseSector {
		switch {
		case level <= model.RiskConservative:
			return 90
		case level == model.RiskModerate:
			return 85
		default:
			return 60
		}
	}
	switch {
	case level <= model.RiskConservative:
		return 50
	case level == model.RiskModerate:
		return 80
	default:
		return 95
	}
}

func experienceScore(kind UniverseKind, years int) float64 {
	if kind == UniverseSector {
		switch {
		case years < 3:
			return 90
		case years <= 7:
			return 80
		default:
			return 70
		}
	}
	switch {
	case years < 3:
		return 40
	case years <= 7:
		return 75
	default:
		return 95
	}
}

func marketScore(kind UniverseKind, vol Volatility) float64 {
	if kind == UniverseSector {
		switch vol {
		case VolatilityLow:
			return 75
		case VolatilityHigh:
			return 65
		default:
			return 90
		}
	}
	switch vol {
	case VolatilityLow:
		return 70
	case VolatilityHigh:
		return 85
	default:
		return 80
	}
}

// diversificationScore reflects that the sub-sector universe holds far
// more instruments, which only pays off for larger accounts.
func diversificationScore(kind UniverseKind, capital float64) float64 {
	if kind == UniverseSector {
		switch {
		case capital < 2e6:
			return 90
		case capital < 5e6:
			return 75
		default:
			return 60
		}
	}
	switch {
	case capital < 2e6:
		return 50
	case capital < 5e6:
		return 80
	default:
		return 95
	}
}

var dimensionLabels = map[string]string{
	"capital":         "capital size",
	"risk":            "risk tolerance",
	"experience":      "investing experience",
	"market":          "market regime",
	"diversification": "diversification need",
}

// reason names the two strongest dimensions behind the choice.
func reason(d Decision) string {
	type dim struct {
		name  string
		score float64
	}
	dims := make([]dim, 0, len(d.DimensionScores))
	for name, s := range d.DimensionScores {
		dims = append(dims, dim{name, s})
	}
	sort.Slice(dims, func(i, j int) bool {
		if dims[i].score != dims[j].score {
			return dims[i].score > dims[j].score
		}
		return dims[i].name < dims[j].name
	})

	top := []string{dimensionLabels[dims[0].name], dimensionLabels[dims[1].name]}
	universe := "broad sector universe"
	if d.Kind == UniverseSubSector {
		universe = "sub-sector universe"
	}
	return fmt.Sprintf("selected the %s, driven mainly by %s (total score %.1f vs %.1f)",
		universe, strings.Join(top, " and "), d.Score, d.RunnerUpScore)
}
