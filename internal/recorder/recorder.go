package recorder

import (
	"time"

	"AllocAdvisor/internal/model"
)

// RunSnapshot holds everything one advisory run produced.
type RunSnapshot struct {
	RanAt      time.Time
	Universe   string
	Assessment model.MarketAssessment
	Results    []model.ScreeningResult
	Plan       []model.InvestmentPlanItem
	Skipped    int
	ChartURL   string
}

// Recorder persists run history for later analysis.
type Recorder interface {
	RecordRun(snap *RunSnapshot) error
	Close() error
}
