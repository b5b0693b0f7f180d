package lifecycle

import (
	"context"
	"time"

	"hallbook/pkg/config"
	"hallbook/pkg/logger"

	"golang.org/x/sync/errgroup"
)

// Scheduler drives the sweeps on fixed intervals. Each loop runs once at start-up
// so a restarted replica catches up before its first tick.
type Scheduler struct {
	sweeper           *Sweeper
	sweepInterval     time.Duration
	retentionInterval time.Duration
	log               *logger.Logger
}

func NewScheduler(sweeper *Sweeper, cfg *config.Config) *Scheduler {
	return &Scheduler{
		sweeper:           sweeper,
		sweepInterval:     cfg.LifecycleSweepInterval,
		retentionInterval: cfg.LifecycleRetentionInterval,
		log:               cfg.Log.Component("lifecycle"),
	}
}

// Run blocks until ctx is cancelled. A failed sweep is logged and retried on the
// next tick.
func (s *Scheduler) Run(ctx context.Context) error {
	s.log.Info("Lifecycle scheduler started",
		"sweep_interval", s.sweepInterval,
		"retention_interval", s.retentionInterval,
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return s.every(gctx, "transitions", s.sweepInterval, func(ctx context.Context) error {
			_, err := s.sweeper.RunTransitions(ctx)
			return err
		})
	})

	g.Go(func() error {
		return s.every(gctx, "retention", s.retentionInterval, func(ctx context.Context) error {
			_, err := s.sweeper.Purge(ctx)
			return err
		})
	})

	err := g.Wait()
	s.log.Info("Lifecycle scheduler stopped")
	return err
}

func (s *Scheduler) every(ctx context.Context, name string, interval time.Duration, sweep func(context.Context) error) error {
	t := time.NewTicker(interval)
	defer t.Stop()

	s.run(ctx, name, sweep)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			s.run(ctx, name, sweep)
		}
	}
}

func (s *Scheduler) run(ctx context.Context, name string, sweep func(context.Context) error) {
	if err := sweep(ctx); err != nil && ctx.Err() == nil {
		s.log.Error("Lifecycle sweep failed", "sweep", name, "error", err)
	}
}
