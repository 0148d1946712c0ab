package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/yungbote/skillswap-backend/internal/platform/logger"
)

const jobTimeout = 10 * time.Minute

// Scheduler runs periodic maintenance: counter reconciliation and expired refresh token purge.
type Scheduler struct {
	log  *logger.Logger
	cron *cron.Cron
}

func newScheduler(log *logger.Logger, cfg Config, svcs Services) (*Scheduler, error) {
	s := &Scheduler{
		log:  log.With("component", "Scheduler"),
		cron: cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
	}
	if cfg.ReconcileEnabled && svcs.Reconcile != nil {
		if err := s.add("reconcile", cfg.ReconcileCron, func(ctx context.Context) error {
			report, err := svcs.Reconcile.Run(ctx)
			if err != nil {
				return err
			}
			s.log.Info("reconciliation finished",
				"skills_repaired", report.SkillsRepaired,
				"stats_repaired", report.UserStatsRepaired,
				"ratings_repaired", report.UserRatingsRepaired,
				"balance_drift", len(report.BalanceDrift),
			)
			return nil
		}); err != nil {
			return nil, err
		}
	}
	if svcs.Auth != nil {
		if err := s.add("token_purge", cfg.TokenPurgeCron, func(ctx context.Context) error {
			n, err := svcs.Auth.PurgeExpiredTokens(ctx)
			if err == nil && n > 0 {
				s.log.Info("purged expired refresh tokens", "count", n)
			}
			return err
		}); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *Scheduler) add(name, spec string, fn func(ctx context.Context) error) error {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return nil
	}
	_, err := s.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()
		start := time.Now()
		if err := fn(ctx); err != nil {
			s.log.Warn("scheduled job failed", "job", name, "error", err, "duration_ms", time.Since(start).Milliseconds())
			return
		}
		s.log.Debug("scheduled job done", "job", name, "duration_ms", time.Since(start).Milliseconds())
	})
	if err != nil {
		return fmt.Errorf("schedule %s (%q): %w", name, spec, err)
	}
	return nil
}

// Run blocks until ctx is done, then waits for running jobs to return.
func (s *Scheduler) Run(ctx context.Context) error {
	s.cron.Start()
	s.log.Info("scheduler started", "jobs", len(s.cron.Entries()))
	<-ctx.Done()
	<-s.cron.Stop().Done()
	return nil
}
