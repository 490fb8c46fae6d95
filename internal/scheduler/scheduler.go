// Package scheduler runs the periodic data jobs: history snapshots,
// exchange rate refreshes and price alert checks.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/shakilabs/ott-price-compare/internal/metrics"
	"github.com/shakilabs/ott-price-compare/internal/rates"
	"github.com/shakilabs/ott-price-compare/internal/service"
)

type HistoryRecorder interface {
	RecordAll(ctx context.Context) error
}

type RatesUpdater interface {
	Run(ctx context.Context) (rates.Rates, error)
}

type AlertChecker interface {
	Due(ctx context.Context) ([]service.AlertMatch, error)
}

// Sweeper is anything holding per-client state that must be pruned.
type Sweeper interface {
	Sweep()
}

type Specs struct {
	History string
	Rates   string
	Alerts  string
}

// Scheduler manages all cron tasks.
type Scheduler struct {
	cron    *cron.Cron
	ctx     context.Context
	logger  *slog.Logger
	history HistoryRecorder
	rates   RatesUpdater
	alerts  AlertChecker
	sweeper Sweeper
}

func New(ctx context.Context, history HistoryRecorder, rates RatesUpdater, alerts AlertChecker, sweeper Sweeper, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		cron:    cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		ctx:     ctx,
		logger:  logger,
		history: history,
		rates:   rates,
		alerts:  alerts,
		sweeper: sweeper,
	}
}

// RegisterAll registers every job. An empty spec disables that job.
func (s *Scheduler) RegisterAll(specs Specs) error {
	jobs := []struct {
		name string
		spec string
		fn   func()
	}{
		{"history", specs.History, s.RecordHistory},
		{"rates", specs.Rates, s.RefreshRates},
		{"alerts", specs.Alerts, s.CheckAlerts},
	}
	for _, j := range jobs {
		if j.spec == "" {
			s.logger.Info("job disabled", "job", j.name)
			continue
		}
		if _, err := s.cron.AddFunc(j.spec, j.fn); err != nil {
			return fmt.Errorf("register %s job: %w", j.name, err)
		}
	}
	if s.sweeper != nil {
		if _, err := s.cron.AddFunc("@every 1m", s.sweeper.Sweep); err != nil {
			return fmt.Errorf("register sweep job: %w", err)
		}
	}
	return nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("scheduler started", "jobs", len(s.cron.Entries()))
}

// Stop stops scheduling and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("scheduler stopped")
}

func (s *Scheduler) RecordHistory() {
	s.run("history", s.history.RecordAll)
}

func (s *Scheduler) RefreshRates() {
	s.run("rates", func(ctx context.Context) error {
		_, err := s.rates.Run(ctx)
		return err
	})
}

func (s *Scheduler) CheckAlerts() {
	s.run("alerts", func(ctx context.Context) error {
		due, err := s.alerts.Due(ctx)
		if err != nil {
			return err
		}
		metrics.AlertsDue.Set(float64(len(due)))
		for _, m := range due {
			s.logger.InfoContext(ctx, "price alert target met",
				"id", m.Subscription.ID,
				"service", m.Subscription.ServiceSlug,
				"country", m.Subscription.CountryCode,
				"plan", m.Subscription.PlanID,
				"target_krw", m.Subscription.TargetPriceKRW,
				"current_krw", m.CurrentKRW,
			)
		}
		return nil
	})
}

func (s *Scheduler) run(job string, fn func(ctx context.Context) error) {
	start := time.Now()
	s.logger.Info("running job", "job", job)
	err := fn(s.ctx)
	metrics.RecordJob(job, err)
	if err != nil {
		s.logger.Error("job failed", "job", job, "duration", time.Since(start), "error", err)
		return
	}
	s.logger.Info("job finished", "job", job, "duration", time.Since(start))
}
