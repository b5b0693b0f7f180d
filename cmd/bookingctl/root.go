package main

import (
	"github.com/spf13/cobra"
)

const JobName = "bookingctl"

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "bookingctl",
		Short:         "Operate the booking reservation engine",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newMigrateCmd())
	root.AddCommand(newSweepCmd())
	root.AddCommand(newBookingsCmd())

	return root
}
