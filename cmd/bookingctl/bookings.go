package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"time"

	"hallbook/pkg/client"
	"hallbook/pkg/model"

	"github.com/spf13/cobra"
)

const defaultAPIURL = "http://localhost:8080"

type apiFlags struct {
	baseURL string
	userID  string
	wait    time.Duration
}

func (f *apiFlags) client(ctx context.Context) (*client.BookingClient, error) {
	c := client.NewBookingClient(f.baseURL, f.userID)
	if f.wait > 0 {
		if err := c.WaitForHealthy(ctx, f.wait); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (f *apiFlags) requireUser() error {
	if f.userID == "" {
		return errors.New("--user is required")
	}
	return nil
}

func newBookingsCmd() *cobra.Command {
	flags := &apiFlags{}

	cmd := &cobra.Command{
		Use:   "bookings",
		Short: "Call the bookings API",
	}

	baseURL := os.Getenv("BOOKINGS_API_URL")
	if baseURL == "" {
		baseURL = defaultAPIURL
	}
	cmd.PersistentFlags().StringVar(&flags.baseURL, "api-url", baseURL, "bookings API base URL (env BOOKINGS_API_URL)")
	cmd.PersistentFlags().StringVar(&flags.userID, "user", "", "requester id sent as X-User-ID")
	cmd.PersistentFlags().DurationVar(&flags.wait, "wait", 0, "wait up to this long for the API to become healthy")

	cmd.AddCommand(newBookingsCreateCmd(flags))
	cmd.AddCommand(newBookingsListCmd(flags))
	cmd.AddCommand(newBookingsGetCmd(flags))
	cmd.AddCommand(newBookingsCancelCmd(flags))
	cmd.AddCommand(newBookingsAvailabilityCmd(flags))
	return cmd
}

func newBookingsCreateCmd(flags *apiFlags) *cobra.Command {
	var resourceID string
	var req model.CreateBookingRequest
	var attendees int

	c := &cobra.Command{
		Use:   "create",
		Short: "Reserve a resource for a date range",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := flags.requireUser(); err != nil {
				return err
			}
			api, err := flags.client(cmd.Context())
			if err != nil {
				return err
			}
			req.AttendeeCount = &attendees
			summary, err := api.Create(cmd.Context(), resourceID, req)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), summary)
		},
	}

	c.Flags().StringVar(&resourceID, "resource", "", "resource id")
	c.Flags().StringVar(&req.StartDate, "start", "", "first day (YYYY-MM-DD)")
	c.Flags().StringVar(&req.EndDate, "end", "", "last day (YYYY-MM-DD)")
	c.Flags().StringVar(&req.Purpose, "purpose", "", "purpose of the booking")
	c.Flags().IntVar(&attendees, "attendees", 1, "expected attendees")
	c.Flags().StringVar(&req.SpecialRequests, "special-requests", "", "optional notes for the resource owner")
	_ = c.MarkFlagRequired("resource")
	_ = c.MarkFlagRequired("start")
	_ = c.MarkFlagRequired("end")
	_ = c.MarkFlagRequired("purpose")
	return c
}

func newBookingsListCmd(flags *apiFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the requester's bookings, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := flags.requireUser(); err != nil {
				return err
			}
			api, err := flags.client(cmd.Context())
			if err != nil {
				return err
			}
			summaries, err := api.ListMine(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), summaries)
		},
	}
}

func newBookingsGetCmd(flags *apiFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "get <booking-id>",
		Short: "Show one booking",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := flags.requireUser(); err != nil {
				return err
			}
			api, err := flags.client(cmd.Context())
			if err != nil {
				return err
			}
			summary, err := api.GetByID(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), summary)
		},
	}
}

func newBookingsCancelCmd(flags *apiFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "cancel <booking-id>",
		Short: "Cancel a pending or active booking",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := flags.requireUser(); err != nil {
				return err
			}
			api, err := flags.client(cmd.Context())
			if err != nil {
				return err
			}
			summary, err := api.Cancel(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), summary)
		},
	}
}

func newBookingsAvailabilityCmd(flags *apiFlags) *cobra.Command {
	var resourceID, start, end string

	c := &cobra.Command{
		Use:   "availability",
		Short: "Check whether a resource is free for a date range",
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := flags.client(cmd.Context())
			if err != nil {
				return err
			}
			availability, err := api.Availability(cmd.Context(), resourceID, start, end)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), availability)
		},
	}

	c.Flags().StringVar(&resourceID, "resource", "", "resource id")
	c.Flags().StringVar(&start, "start", "", "first day (YYYY-MM-DD)")
	c.Flags().StringVar(&end, "end", "", "last day (YYYY-MM-DD)")
	_ = c.MarkFlagRequired("resource")
	_ = c.MarkFlagRequired("start")
	_ = c.MarkFlagRequired("end")
	return c
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
