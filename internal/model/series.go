package model

import "time"

// ValuationObservation is one dated valuation record for an instrument.
type ValuationObservation struct {
	Date         time.Time
	Valuation    float64 // trailing P/E
	Price        float64 // closing index level
	TurnoverRate float64 // percent
	PeriodReturn float64 // percent change over the period
}

// ValuationSeries holds the ordered observation history for one instrument.
// Observations are ascending by date with at most one record per period.
type ValuationSeries struct {
	Code         string
	Name         string
	Observations []ValuationObservation
}

// Len returns the number of observations.
func (s *ValuationSeries) Len() int { return len(s.Observations) }

// Latest returns the most recent observation and whether one exists.
func (s *ValuationSeries) Latest() (ValuationObservation, bool) {
	if len(s.Observations) == 0 {
		return ValuationObservation{}, false
	}
	return s.Observations[len(s.Observations)-1], true
}

// Valuations returns the valuation metric column in chronological order.
func (s *ValuationSeries) Valuations() []float64 {
	vals := make([]float64, len(s.Observations))
	for i, o := range s.Observations {
		vals[i] = o.Valuation
	}
	return vals
}

// Prices returns the price column in chronological order.
func (s *ValuationSeries) Prices() []float64 {
	vals := make([]float64, len(s.Observations))
	for i, o := range s.Observations {
		vals[i] = o.Price
	}
	return vals
}

// TurnoverRates returns the turnover column in chronological order.
func (s *ValuationSeries) TurnoverRates() []float64 {
	vals := make([]float64, len(s.Observations))
	for i, o := range s.Observations {
		vals[i] = o.TurnoverRate
	}
	return vals
}

// Instrument identifies one candidate index in the universe.
type Instrument struct {
	Code string
	Name string
}
