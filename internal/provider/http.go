package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"AllocAdvisor/internal/model"
)

// HTTPSource implements Source against a REST valuation API.
type HTTPSource struct {
	BaseURL  string
	APIKey   string
	Family   string
	Client   *http.Client
	Lookback int
}

// NewHTTPSource creates a new source with optional proxy support.
// universe selects the index family endpoint ("sector" or "subsector").
func NewHTTPSource(baseURL, apiKey, proxyURL, universe string, lookback int) *HTTPSource {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &HTTPSource{
		BaseURL:  baseURL,
		APIKey:   apiKey,
		Family:   universe,
		Lookback: lookback,
		Client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
	}
}

func (s *HTTPSource) Name() string { return "http" }

// apiInstrument is the expected JSON shape of a universe entry.
type apiInstrument struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// apiObservation is the expected JSON shape of one valuation row.
type apiObservation struct {
	Date         string  `json:"date"`
	PE           float64 `json:"pe"`
	Close        float64 `json:"close"`
	TurnoverRate float64 `json:"turnover_rate"`
	PeriodReturn float64 `json:"period_return"`
}

func (s *HTTPSource) Universe(ctx context.Context) ([]model.Instrument, error) {
	endpoint := fmt.Sprintf("%s/api/v1/indices?family=%s", s.BaseURL, url.QueryEscape(s.Family))
	var rows []apiInstrument
	if err := s.getJSON(ctx, endpoint, &rows); err != nil {
		return nil, fmt.Errorf("fetch universe: %w", err)
	}
	instruments := make([]model.Instrument, len(rows))
	for i, r := range rows {
		instruments[i] = model.Instrument{Code: r.Code, Name: r.Name}
	}
	return instruments, nil
}

func (s *HTTPSource) FetchSeries(ctx context.Context, code string) (model.ValuationSeries, error) {
	endpoint := fmt.Sprintf("%s/api/v1/valuation/monthly?code=%s&limit=%d",
		s.BaseURL, url.QueryEscape(code), s.Lookback)
	var rows []apiObservation
	if err := s.getJSON(ctx, endpoint, &rows); err != nil {
		return model.ValuationSeries{}, fmt.Errorf("fetch series %s: %w", code, err)
	}

	series := model.ValuationSeries{Code: code}
	for _, r := range rows {
		date, err := time.Parse("2006-01-02", r.Date)
		if err != nil {
			continue
		}
		series.Observations = append(series.Observations, model.ValuationObservation{
			Date:         date,
			Valuation:    r.PE,
			Price:        r.Close,
			TurnoverRate: r.TurnoverRate,
			PeriodReturn: r.PeriodReturn,
		})
	}
	return Normalize(series, s.Lookback), nil
}

func (s *HTTPSource) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	if s.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.APIKey)
	}
	resp, err := s.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("status %d, body: %s", resp.StatusCode, string(body))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
