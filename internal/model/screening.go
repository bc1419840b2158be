package model

// ScreeningResult is the per-instrument outcome of the composite screen.
// Percentiles are on the 0-100 scale; factor scores are 0-1; the composite
// score is 0-100. Results are computed fresh each run and never mutated.
type ScreeningResult struct {
	Code                string
	Name                string
	CurrentValuation    float64
	CurrentPrice        float64
	ValuationPercentile float64 // decayed, winsorized (0-100)
	PricePercentile     float64 // plain empirical (0-100)
	SafetyScore         float64 // 0-1
	Resilience          float64 // 0-1
	Activity            float64 // 0-1
	CompositeScore      float64 // safety x resilience x activity x 100
}
