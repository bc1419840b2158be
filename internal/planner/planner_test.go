package planner

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"AllocAdvisor/internal/model"
	"AllocAdvisor/internal/quant"
)

func testPlanner(t *testing.T) *Planner {
	t.Helper()
	return New(DefaultConfig(), zerolog.Nop())
}

func resultAt(code string, percentile, price float64) model.ScreeningResult {
	return model.ScreeningResult{
		Code:                code,
		Name:                "fund " + code,
		ValuationPercentile: percentile,
		CurrentPrice:        price,
	}
}

func TestNonlinearWeights(t *testing.T) {
	selected := []model.ScreeningResult{
		resultAt("A", 20, 1),
		resultAt("B", 50, 1),
		resultAt("C", 80, 1),
	}

	weights := nonlinearWeights(selected)

	// Raw factors: 1.6^2=2.56, 1.0^2=1.0, 0.4^2=0.16, total 3.72.
	assert.InDelta(t, 2.56/3.72, weights[0], 1e-9)
	assert.InDelta(t, 1.0/3.72, weights[1], 1e-9)
	assert.InDelta(t, 0.16/3.72, weights[2], 1e-9)

	var sum float64
	for _, w := range weights {
		sum += w
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
}

func TestNonlinearWeightsAllTopPercentile(t *testing.T) {
	selected := []model.ScreeningResult{
		resultAt("A", 100, 1),
		resultAt("B", 100, 1),
	}

	weights := nonlinearWeights(selected)
	assert.InDelta(t, 0.5, weights[0], 1e-9)
	assert.InDelta(t, 0.5, weights[1], 1e-9)
}

func TestAssessMarketMedian(t *testing.T) {
	p := testPlanner(t)

	results := []model.ScreeningResult{
		resultAt("A", 10, 1),
		resultAt("B", 30, 1),
		resultAt("C", 90, 1),
	}

	a := p.AssessMarket(results, 100000)
	assert.InDelta(t, 30.0, a.MarketPercentile, 1e-9)
	assert.Equal(t, "undervalued", a.Signal)
	assert.InDelta(t, a.AvailableCapital+a.IdleCapital, 100000, 1e-6)
	assert.Greater(t, a.MacroFraction, 0.5, "cheap market should deploy more than half")
}

func TestAssessMarketEmptyUniverse(t *testing.T) {
	p := testPlanner(t)

	a := p.AssessMarket(nil, 50000)
	assert.InDelta(t, 50.0, a.MarketPercentile, 1e-9)
	assert.Equal(t, "fairly valued", a.Signal)
	assert.InDelta(t, a.AvailableCapital+a.IdleCapital, 50000, 1e-6)
}

func TestAssessMarketMidCycle(t *testing.T) {
	p := testPlanner(t)

	results := []model.ScreeningResult{
		resultAt("A", 15, 1),
		resultAt("B", 45, 1),
		resultAt("C", 75, 1),
	}

	a := p.AssessMarket(results, 100000)
	assert.InDelta(t, 45.0, a.MarketPercentile, 1e-9)
	assert.Greater(t, a.MacroFraction, 0.0)
	assert.Less(t, a.MacroFraction, 1.0)
}

func TestMedian(t *testing.T) {
	assert.InDelta(t, 45.0, median([]float64{75, 15, 45}), 1e-9)
	assert.InDelta(t, 30.0, median([]float64{40, 20}), 1e-9)
	assert.InDelta(t, 7.0, median([]float64{7}), 1e-9)
	assert.InDelta(t, 25.0, median([]float64{10, 20, 30, 90}), 1e-9)
}

func TestAssessMarketFractionMonotone(t *testing.T) {
	p := testPlanner(t)

	cheap := p.AssessMarket([]model.ScreeningResult{resultAt("A", 15, 1)}, 1000)
	rich := p.AssessMarket([]model.ScreeningResult{resultAt("A", 85, 1)}, 1000)
	assert.Greater(t, cheap.MacroFraction, rich.MacroFraction)
}

func TestPlanTopNAndShares(t *testing.T) {
	p := testPlanner(t)

	results := []model.ScreeningResult{
		resultAt("A", 20, 1.25),
		resultAt("B", 50, 3.40),
		resultAt("C", 80, 0.97),
		resultAt("D", 10, 2.00), // beyond top 3, must not appear
	}
	assessment := model.MarketAssessment{AvailableCapital: 37200}

	plan, skipped := p.Plan(results, assessment)
	require.Len(t, plan, 3)
	assert.Zero(t, skipped)

	// Weights over [20,50,80]: 2.56/3.72, 1.0/3.72, 0.16/3.72.
	assert.InDelta(t, 25600, plan[0].InvestAmount, 1e-6)
	assert.InDelta(t, 10000, plan[1].InvestAmount, 1e-6)
	assert.InDelta(t, 1600, plan[2].InvestAmount, 1e-6)

	assert.Equal(t, int64(20480), plan[0].EstimatedShares) // floor(25600/1.25)
	assert.Equal(t, int64(2941), plan[1].EstimatedShares)  // floor(10000/3.40)
	assert.Equal(t, int64(1649), plan[2].EstimatedShares)  // floor(1600/0.97)

	var invested float64
	for _, item := range plan {
		invested += item.InvestAmount
	}
	assert.LessOrEqual(t, invested, assessment.AvailableCapital+1e-6)
}

func TestPlanSkipsInvalidPrice(t *testing.T) {
	p := testPlanner(t)

	results := []model.ScreeningResult{
		resultAt("A", 20, 1.25),
		resultAt("B", 50, 0), // no reference price
	}
	assessment := model.MarketAssessment{AvailableCapital: 10000}

	plan, skipped := p.Plan(results, assessment)
	require.Len(t, plan, 1)
	assert.Equal(t, 1, skipped)
	assert.Equal(t, "A", plan[0].Code)
	// Sole survivor takes the full weight.
	assert.InDelta(t, 1.0, plan[0].Weight, 1e-9)
}

func TestPlanEmpty(t *testing.T) {
	p := testPlanner(t)

	plan, skipped := p.Plan(nil, model.MarketAssessment{AvailableCapital: 10000})
	assert.Nil(t, plan)
	assert.Zero(t, skipped)
}

func TestRiskLabels(t *testing.T) {
	cases := []struct {
		percentile float64
		want       string
	}{
		{5, "low risk"},
		{20, "moderately low risk"},
		{40, "medium risk"},
		{60, "elevated risk"},
		{80, "high risk"},
		{99, "high risk"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, riskLabel(tc.percentile), "percentile %.0f", tc.percentile)
	}
}

func TestMarketSignals(t *testing.T) {
	assert.Equal(t, "deeply undervalued", marketSignal(10))
	assert.Equal(t, "extremely overvalued", marketSignal(95))
}

func TestPlanUsesConfiguredCurve(t *testing.T) {
	conservative := New(Config{
		Curve: quant.CurveConfig{Type: quant.CurvePower, Aggressiveness: 0.5},
		TopN:  3,
	}, zerolog.Nop())
	aggressive := New(Config{
		Curve: quant.CurveConfig{Type: quant.CurvePower, Aggressiveness: 2.0},
		TopN:  3,
	}, zerolog.Nop())

	results := []model.ScreeningResult{resultAt("A", 30, 1)}
	c := conservative.AssessMarket(results, 1000)
	a := aggressive.AssessMarket(results, 1000)
	assert.Less(t, c.MacroFraction, a.MacroFraction)
}
