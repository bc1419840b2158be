// Package provider supplies valuation history for the screening universe
// from pluggable data sources.
package provider

import (
	"context"

	"AllocAdvisor/internal/model"
)

// Source defines the interface for loading valuation data.
type Source interface {
	// Universe lists the instruments available from this source.
	Universe(ctx context.Context) ([]model.Instrument, error)
	// FetchSeries loads the valuation history for one instrument.
	FetchSeries(ctx context.Context, code string) (model.ValuationSeries, error)
	Name() string
}
