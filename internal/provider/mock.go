package provider

import (
	"context"
	"fmt"
	"math"
	"time"

	"AllocAdvisor/internal/model"
)

// MockSource returns controllable fixed data for development and testing.
type MockSource struct {
	Instruments []model.Instrument
	Series      map[string]model.ValuationSeries
	Months      int
}

func (m *MockSource) Name() string { return "mock" }

func (m *MockSource) Universe(_ context.Context) ([]model.Instrument, error) {
	if m.Instruments != nil {
		return m.Instruments, nil
	}
	return []model.Instrument{
		{Code: "801010", Name: "agriculture"},
		{Code: "801080", Name: "electronics"},
		{Code: "801150", Name: "pharma"},
	}, nil
}

func (m *MockSource) FetchSeries(_ context.Context, code string) (model.ValuationSeries, error) {
	if s, ok := m.Series[code]; ok {
		return s, nil
	}
	months := m.Months
	if months == 0 {
		months = 120
	}
	return generateMockSeries(code, months), nil
}

// generateMockSeries produces a smooth valuation cycle so every factor in
// the screener sees plausible input.
func generateMockSeries(code string, months int) model.ValuationSeries {
	series := model.ValuationSeries{Code: code, Name: fmt.Sprintf("index %s", code)}
	now := time.Now()
	for i := 0; i < months; i++ {
		phase := float64(i) / 18 * math.Pi
		pe := 20 + 8*math.Sin(phase)
		series.Observations = append(series.Observations, model.ValuationObservation{
			Date:         now.AddDate(0, -(months - i), 0),
			Valuation:    pe,
			Price:        100 + 30*math.Sin(phase),
			TurnoverRate: 1.2 + 0.4*math.Cos(phase),
			PeriodReturn: 2 * math.Cos(phase),
		})
	}
	return series
}
