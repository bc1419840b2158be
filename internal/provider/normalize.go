package provider

import (
	"sort"
	"time"

	"AllocAdvisor/internal/model"
)

// Normalize cleans a raw series for scoring: drops observations dated in
// the future, sorts ascending by date, dedupes same-day rows keeping the
// last one, downsamples to one observation per calendar month (the last
// trading day wins), and truncates to the most recent lookback months.
func Normalize(series model.ValuationSeries, lookback int) model.ValuationSeries {
	now := time.Now()
	kept := make([]model.ValuationObservation, 0, len(series.Observations))
	for _, obs := range series.Observations {
		if obs.Date.After(now) {
			continue
		}
		kept = append(kept, obs)
	}

	sort.SliceStable(kept, func(i, j int) bool { return kept[i].Date.Before(kept[j].Date) })

	// Last row per month wins; stable sort keeps intra-day input order so
	// a same-day duplicate also collapses to the later entry.
	byMonth := make([]model.ValuationObservation, 0, len(kept))
	for _, obs := range kept {
		if n := len(byMonth); n > 0 && sameMonth(byMonth[n-1].Date, obs.Date) {
			byMonth[n-1] = obs
			continue
		}
		byMonth = append(byMonth, obs)
	}

	if lookback > 0 && len(byMonth) > lookback {
		byMonth = byMonth[len(byMonth)-lookback:]
	}

	series.Observations = byMonth
	return series
}

func sameMonth(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month()
}
