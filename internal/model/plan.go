package model

// MarketAssessment summarizes the macro allocation decision for a run.
type MarketAssessment struct {
	MarketPercentile float64 // median valuation percentile across the universe (0-100)
	MacroFraction    float64 // suggested fraction of capital deployed (0-1)
	Signal           string  // qualitative market label for display
	AvailableCapital float64
	IdleCapital      float64
}

// InvestmentPlanItem is one row of the concrete investment plan.
type InvestmentPlanItem struct {
	Code                string
	Name                string
	ValuationPercentile float64
	RiskLabel           string
	Weight              float64 // normalized fraction, sums to 1 across the plan
	InvestAmount        float64
	EstimatedShares     int64
}
