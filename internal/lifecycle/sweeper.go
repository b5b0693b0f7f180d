// Package lifecycle advances bookings through their status automaton and purges
// records past retention. Every sweep is a single conditional bulk write, so
// repeating a sweep or running it on several replicas at once changes nothing.
package lifecycle

import (
	"context"
	"fmt"
	"time"

	"hallbook/pkg/clock"
	"hallbook/pkg/config"
	"hallbook/pkg/dates"
	"hallbook/pkg/logger"
)

// Store is the subset of the booking store the sweeps need.
type Store interface {
	ActivateDue(ctx context.Context, todayStart, now time.Time) (int64, error)
	CompleteElapsed(ctx context.Context, todayStart, now time.Time) (int64, error)
	PurgeCompletedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type TransitionResult struct {
	Activated int64
	Completed int64
}

type Sweeper struct {
	store           Store
	clock           clock.Clock
	loc             *time.Location
	retentionMonths int
	log             *logger.Logger
}

func NewSweeper(store Store, clk clock.Clock, cfg *config.Config) *Sweeper {
	return &Sweeper{
		store:           store,
		clock:           clk,
		loc:             cfg.Location,
		retentionMonths: cfg.LifecycleRetentionPeriodMonths,
		log:             cfg.Log.Component("lifecycle"),
	}
}

// Activate moves PENDING bookings whose first day is today or earlier to ACTIVE.
func (s *Sweeper) Activate(ctx context.Context) (int64, error) {
	now := s.clock.Now()
	n, err := s.store.ActivateDue(ctx, dates.Today(now, s.loc), now)
	if err != nil {
		return 0, fmt.Errorf("activation sweep failed: %w", err)
	}
	return n, nil
}

// Complete moves ACTIVE bookings whose last day is before today to COMPLETED.
func (s *Sweeper) Complete(ctx context.Context) (int64, error) {
	now := s.clock.Now()
	n, err := s.store.CompleteElapsed(ctx, dates.Today(now, s.loc), now)
	if err != nil {
		return 0, fmt.Errorf("completion sweep failed: %w", err)
	}
	return n, nil
}

// RunTransitions activates before it completes, so a booking that was left PENDING
// past its last day reaches COMPLETED in one pass.
func (s *Sweeper) RunTransitions(ctx context.Context) (TransitionResult, error) {
	var result TransitionResult

	activated, err := s.Activate(ctx)
	if err != nil {
		return result, err
	}
	result.Activated = activated

	completed, err := s.Complete(ctx)
	if err != nil {
		return result, err
	}
	result.Completed = completed

	s.log.Info("Status transitions applied",
		"activated", result.Activated,
		"completed", result.Completed,
	)
	return result, nil
}

// Purge deletes COMPLETED bookings whose last day ended more than the retention
// period ago.
func (s *Sweeper) Purge(ctx context.Context) (int64, error) {
	cutoff := s.RetentionCutoff()
	n, err := s.store.PurgeCompletedBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("retention sweep failed: %w", err)
	}

	s.log.Info("Retention sweep applied",
		"purged", n,
		"cutoff", dates.Format(cutoff, s.loc),
	)
	return n, nil
}

func (s *Sweeper) RetentionCutoff() time.Time {
	today := dates.Today(s.clock.Now(), s.loc)
	return today.AddDate(0, -s.retentionMonths, 0)
}
