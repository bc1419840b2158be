// Package scheduler re-runs the advisory pipeline on a cron schedule.
package scheduler

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"AllocAdvisor/internal/model"
	"AllocAdvisor/internal/pipeline"
	"AllocAdvisor/internal/router"
)

// Scheduler runs the pipeline for a fixed profile on a cron expression.
type Scheduler struct {
	Cron     *cron.Cron
	Pipeline *pipeline.Pipeline
	Profile  model.UserProfile
	Market   router.MarketState
	Ctx      context.Context

	log zerolog.Logger
}

// New creates a Scheduler. Expressions use the six-field form with seconds.
func New(ctx context.Context, p *pipeline.Pipeline, userProfile model.UserProfile, market router.MarketState, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds()),
		Pipeline: p,
		Profile:  userProfile,
		Market:   market,
		Ctx:      ctx,
		log:      log.With().Str("component", "scheduler").Logger(),
	}
}

// Register adds the advisory run at the given cron expression.
func (s *Scheduler) Register(expr string) error {
	if _, err := s.Cron.AddFunc(expr, s.runTask); err != nil {
		return fmt.Errorf("register advisory task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.log.Info().Msg("scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	s.Cron.Stop()
	s.log.Info().Msg("scheduler stopped")
}

// RunNow executes the advisory task immediately (manual trigger / RUN_ON_START).
func (s *Scheduler) RunNow() {
	s.runTask()
}

func (s *Scheduler) runTask() {
	s.log.Info().Msg("running scheduled advisory")
	if _, err := s.Pipeline.Run(s.Ctx, s.Profile, s.Market); err != nil {
		s.log.Error().Err(err).Msg("scheduled advisory failed")
	}
}
