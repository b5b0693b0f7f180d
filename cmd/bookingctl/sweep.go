package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"hallbook/internal/bookings/repository"
	"hallbook/internal/lifecycle"
	"hallbook/pkg/clock"
	"hallbook/pkg/config"

	"github.com/spf13/cobra"
)

func newSweepCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Advance booking statuses and purge expired records",
	}
	cmd.AddCommand(newSweepOnceCmd())
	cmd.AddCommand(newSweepRunCmd())
	return cmd
}

func newSweeper() (*config.Config, *lifecycle.Sweeper) {
	cfg := config.Load(JobName)
	cfg.SetMongo()
	repo := repository.NewMongoBookingRepository(cfg)
	return cfg, lifecycle.NewSweeper(repo, clock.NewSystem(), cfg)
}

func newSweepOnceCmd() *cobra.Command {
	var transitions, retention bool

	c := &cobra.Command{
		Use:   "once",
		Short: "Run a single sweep pass and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !transitions && !retention {
				return errors.New("nothing to do: enable --transitions or --retention")
			}

			cfg, sweeper := newSweeper()
			defer cfg.GracefulShutdown()
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			if transitions {
				result, err := sweeper.RunTransitions(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "activated: %d\ncompleted: %d\n", result.Activated, result.Completed)
			}

			if retention {
				purged, err := sweeper.Purge(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "purged: %d\n", purged)
			}
			return nil
		},
	}

	c.Flags().BoolVar(&transitions, "transitions", true, "apply PENDING->ACTIVE and ACTIVE->COMPLETED transitions")
	c.Flags().BoolVar(&retention, "retention", true, "delete COMPLETED bookings past the retention period")
	return c
}

func newSweepRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the lifecycle scheduler until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			cfg, sweeper := newSweeper()
			defer cfg.GracefulShutdown()

			err := lifecycle.NewScheduler(sweeper, cfg).Run(ctx)
			if err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}
}
