package provider

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"AllocAdvisor/internal/model"
)

// CSVSource implements Source over a directory of valuation snapshots,
// one file per instrument named <code>.csv with the header
// date,name,pe,close,turnover_rate,period_return.
type CSVSource struct {
	Dir      string
	Lookback int
}

func NewCSVSource(dir string, lookback int) *CSVSource {
	return &CSVSource{Dir: dir, Lookback: lookback}
}

func (s *CSVSource) Name() string { return "csv" }

func (s *CSVSource) Universe(_ context.Context) ([]model.Instrument, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		return nil, fmt.Errorf("read snapshot dir: %w", err)
	}
	var instruments []model.Instrument
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".csv") {
			continue
		}
		instruments = append(instruments, model.Instrument{
			Code: strings.TrimSuffix(e.Name(), ".csv"),
		})
	}
	return instruments, nil
}

func (s *CSVSource) FetchSeries(_ context.Context, code string) (model.ValuationSeries, error) {
	path := filepath.Join(s.Dir, code+".csv")
	f, err := os.Open(path)
	if err != nil {
		return model.ValuationSeries{}, fmt.Errorf("open snapshot %s: %w", code, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = 6
	rows, err := r.ReadAll()
	if err != nil {
		return model.ValuationSeries{}, fmt.Errorf("read snapshot %s: %w", code, err)
	}
	if len(rows) < 2 {
		return model.ValuationSeries{Code: code}, nil
	}

	series := model.ValuationSeries{Code: code}
	for _, row := range rows[1:] { // skip header
		date, err := time.Parse("2006-01-02", row[0])
		if err != nil {
			continue
		}
		if series.Name == "" {
			series.Name = row[1]
		}
		series.Observations = append(series.Observations, model.ValuationObservation{
			Date:         date,
			Valuation:    parseFloat(row[2]),
			Price:        parseFloat(row[3]),
			TurnoverRate: parseFloat(row[4]),
			PeriodReturn: parseFloat(row[5]),
		})
	}
	return Normalize(series, s.Lookback), nil
}

// parseFloat tolerates blank cells; malformed numbers become 0 and the
// screener skips the instrument downstream.
func parseFloat(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return v
}
