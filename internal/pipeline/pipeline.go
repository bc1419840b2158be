// Package pipeline orchestrates one advisory run: profile assessment,
// universe routing, screening, allocation, reporting and recording.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"AllocAdvisor/internal/charts"
	"AllocAdvisor/internal/model"
	"AllocAdvisor/internal/notifier"
	"AllocAdvisor/internal/planner"
	"AllocAdvisor/internal/profile"
	"AllocAdvisor/internal/provider"
	"AllocAdvisor/internal/recorder"
	"AllocAdvisor/internal/router"
	"AllocAdvisor/internal/screener"
)

// Uploader pushes a local chart to a public URL. Optional.
type Uploader interface {
	Upload(ctx context.Context, path string) (string, error)
}

// Sender delivers the rendered report. Optional.
type Sender interface {
	SendMarkdownWithRetry(ctx context.Context, title, text string, maxRetries int) error
}

// Pipeline wires the advisory stages together. Sources keyed by universe
// kind let the router pick which one a run screens.
type Pipeline struct {
	Sources  map[router.UniverseKind]provider.Source
	Router   *router.Router
	Screener *screener.Screener
	Planner  *planner.Planner
	Renderer *charts.Renderer
	Uploader Uploader
	Sender   Sender
	Recorder recorder.Recorder
	Matrix   profile.AggressiveMatrix

	log zerolog.Logger
}

// New creates a Pipeline. Renderer, Uploader and Sender may be nil; the
// Recorder must not be (use the noop recorder instead).
func New(log zerolog.Logger) *Pipeline {
	return &Pipeline{
		Recorder: recorder.NewNoopRecorder(),
		log:      log.With().Str("component", "pipeline").Logger(),
	}
}

// Outcome is everything one run produced, returned for display or tests.
type Outcome struct {
	Suitability model.Suitability
	Decision    router.Decision
	Assessment  model.MarketAssessment
	Results     []model.ScreeningResult
	Plan        []model.InvestmentPlanItem
	Skipped     int
	ChartURL    string
	Report      string
}

// Run executes one advisory run for the given profile.
func (p *Pipeline) Run(ctx context.Context, userProfile model.UserProfile, market router.MarketState) (*Outcome, error) {
	started := time.Now()
	userProfile = profile.ApplyDefaults(userProfile)

	suitability := profile.Assess(userProfile, p.Matrix)
	decision := p.Router.Route(userProfile, market)

	source, ok := p.Sources[decision.Kind]
	if !ok {
		// Fall back to whichever source is configured.
		for _, s := range p.Sources {
			source = s
			ok = true
			break
		}
	}
	if !ok {
		return nil, fmt.Errorf("no data source configured")
	}

	universe, err := p.loadUniverse(ctx, source)
	if err != nil {
		return nil, err
	}

	results, skipped := p.Screener.Screen(universe)
	assessment := p.Planner.AssessMarket(results, suitability.AggressiveCapital)
	plan, planSkipped := p.Planner.Plan(results, assessment)
	skipped += planSkipped

	chartURL := p.publishChart(ctx, universe, results)

	report := notifier.FormatReport(notifier.ReportData{
		GeneratedAt:        started,
		Profile:            userProfile,
		Suitability:        suitability,
		UniverseName:       string(decision.Kind),
		RouteReason:        decision.Reason,
		Assessment:         assessment,
		Results:            results,
		Plan:               plan,
		ChartURL:           chartURL,
		SkippedInstruments: skipped,
	})

	if p.Sender != nil {
		if err := p.Sender.SendMarkdownWithRetry(ctx, "allocation advisory", report, 3); err != nil {
			p.log.Error().Err(err).Msg("report delivery failed")
		}
	}

	if err := p.Recorder.RecordRun(&recorder.RunSnapshot{
		RanAt:      started,
		Universe:   string(decision.Kind),
		Assessment: assessment,
		Results:    results,
		Plan:       plan,
		Skipped:    skipped,
		ChartURL:   chartURL,
	}); err != nil {
		p.log.Error().Err(err).Msg("record run failed")
	}

	p.log.Info().
		Str("universe", string(decision.Kind)).
		Int("screened", len(results)).
		Int("planned", len(plan)).
		Int("skipped", skipped).
		Dur("elapsed", time.Since(started)).
		Msg("advisory run complete")

	return &Outcome{
		Suitability: suitability,
		Decision:    decision,
		Assessment:  assessment,
		Results:     results,
		Plan:        plan,
		Skipped:     skipped,
		ChartURL:    chartURL,
		Report:      report,
	}, nil
}

// loadUniverse fetches the series for every instrument the source lists.
// A single failed instrument is logged and skipped, never fatal.
func (p *Pipeline) loadUniverse(ctx context.Context, source provider.Source) ([]model.ValuationSeries, error) {
	instruments, err := source.Universe(ctx)
	if err != nil {
		return nil, fmt.Errorf("load universe from %s: %w", source.Name(), err)
	}

	universe := make([]model.ValuationSeries, 0, len(instruments))
	for _, inst := range instruments {
		series, err := source.FetchSeries(ctx, inst.Code)
		if err != nil {
			p.log.Warn().Err(err).Str("code", inst.Code).Msg("series fetch failed, skipping")
			continue
		}
		if series.Name == "" {
			series.Name = inst.Name
		}
		universe = append(universe, series)
	}
	return universe, nil
}

// publishChart renders the top screening result's valuation history and
// uploads it. Chart failures degrade the report to text only.
func (p *Pipeline) publishChart(ctx context.Context, universe []model.ValuationSeries, results []model.ScreeningResult) string {
	if p.Renderer == nil || p.Uploader == nil || len(results) == 0 {
		return ""
	}

	top := results[0]
	var series *model.ValuationSeries
	for i := range universe {
		if universe[i].Code == top.Code {
			series = &universe[i]
			break
		}
	}
	if series == nil {
		return ""
	}

	path, err := p.Renderer.ValuationHistory(*series, top.ValuationPercentile)
	if err != nil {
		p.log.Warn().Err(err).Str("code", top.Code).Msg("chart render failed")
		return ""
	}
	url, err := p.Uploader.Upload(ctx, path)
	if err != nil {
		p.log.Warn().Err(err).Msg("chart upload failed")
		return ""
	}
	return url
}
