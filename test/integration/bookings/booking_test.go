package bookings

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	bookingserrors "hallbook/internal/bookings/errors"
	"hallbook/internal/lifecycle"
	"hallbook/pkg/client"
	"hallbook/pkg/clock"
	"hallbook/pkg/dates"
	"hallbook/pkg/model"
	"hallbook/test/integration/testutil"
)

func TestBookingsAPI(t *testing.T) {
	env := testutil.NewTestEnv(t)
	mongo := env.Setup(t)

	t.Run("create and read back", func(t *testing.T) {
		resourceID := mongo.SeedResource(t, testutil.NewResource())
		userID := mongo.SeedUser(t, "Alice Cohen")
		api := env.ClientFor(userID)
		ctx := context.Background()

		created, err := api.Create(ctx, resourceID, testutil.NewRequest(10, 14).Build())
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		if created.Status != model.StatusPending || created.DurationDays != 5 || created.DaysUntilStart != 10 {
			t.Errorf("unexpected summary: %+v", created)
		}

		got, err := api.GetByID(ctx, created.BookingID)
		if err != nil {
			t.Fatalf("GetByID() error = %v", err)
		}
		if got.BookingID != created.BookingID {
			t.Errorf("GetByID returned %s", got.BookingID)
		}

		mine, err := api.ListMine(ctx)
		if err != nil {
			t.Fatalf("ListMine() error = %v", err)
		}
		if len(mine) != 1 {
			t.Errorf("ListMine returned %d bookings, want 1", len(mine))
		}
	})

	t.Run("overlap is rejected with booker name", func(t *testing.T) {
		resourceID := mongo.SeedResource(t, testutil.NewResource())
		alice := env.ClientFor(mongo.SeedUser(t, "Alice Cohen"))
		bob := env.ClientFor(mongo.SeedUser(t, "Bob Levi"))
		ctx := context.Background()

		if _, err := alice.Create(ctx, resourceID, testutil.NewRequest(20, 22).Build()); err != nil {
			t.Fatalf("first Create() error = %v", err)
		}
		_, err := bob.Create(ctx, resourceID, testutil.NewRequest(22, 25).Build())
		expectStatus(t, err, http.StatusConflict)

		availability, err := bob.Availability(ctx, resourceID, testutil.Day(22), testutil.Day(25))
		if err != nil {
			t.Fatalf("Availability() error = %v", err)
		}
		if availability.Available || len(availability.Conflicts) != 1 || availability.Conflicts[0].BookedBy != "Alice Cohen" {
			t.Errorf("unexpected availability: %+v", availability)
		}

		if _, err := bob.Create(ctx, resourceID, testutil.NewRequest(23, 25).Build()); err != nil {
			t.Errorf("disjoint Create() error = %v", err)
		}
	})

	t.Run("concurrent creates admit one booking", func(t *testing.T) {
		resourceID := mongo.SeedResource(t, testutil.NewResource())
		ctx := context.Background()

		const workers = 6
		var wg sync.WaitGroup
		results := make(chan error, workers)
		for i := 0; i < workers; i++ {
			api := env.ClientFor(mongo.SeedUser(t, testutil.Unique("Racer")))
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := api.Create(ctx, resourceID, testutil.NewRequest(30, 33).Build())
				results <- err
			}()
		}
		wg.Wait()
		close(results)

		successes := 0
		for err := range results {
			if err == nil {
				successes++
			}
		}
		if successes != 1 {
			t.Errorf("%d concurrent creates succeeded, want 1", successes)
		}
		if n := mongo.CountBookings(t, resourceID); n != 1 {
			t.Errorf("stored %d bookings, want 1", n)
		}
	})

	t.Run("cancel frees the dates", func(t *testing.T) {
		resourceID := mongo.SeedResource(t, testutil.NewResource())
		owner := env.ClientFor(mongo.SeedUser(t, "Dana"))
		stranger := env.ClientFor(mongo.SeedUser(t, "Eli"))
		ctx := context.Background()

		created, err := owner.Create(ctx, resourceID, testutil.NewRequest(40, 41).Build())
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}

		_, err = stranger.Cancel(ctx, created.BookingID)
		expectStatus(t, err, http.StatusNotFound)

		cancelled, err := owner.Cancel(ctx, created.BookingID)
		if err != nil {
			t.Fatalf("Cancel() error = %v", err)
		}
		if cancelled.Status != model.StatusCancelled {
			t.Errorf("status = %s", cancelled.Status)
		}

		_, err = owner.Cancel(ctx, created.BookingID)
		expectStatus(t, err, http.StatusConflict)

		if _, err := stranger.Create(ctx, resourceID, testutil.NewRequest(40, 41).Build()); err != nil {
			t.Errorf("Create() after cancel error = %v", err)
		}
	})

	t.Run("rejections", func(t *testing.T) {
		small := mongo.SeedResource(t, testutil.NewResource().WithCapacity(10))
		deleted := mongo.SeedResource(t, testutil.NewResource().Deleted())
		api := env.ClientFor(mongo.SeedUser(t, "Frank"))
		ctx := context.Background()

		tests := []struct {
			name       string
			resourceID string
			req        model.CreateBookingRequest
			status     int
		}{
			{"capacity", small, testutil.NewRequest(50, 50).WithAttendees(11).Build(), http.StatusUnprocessableEntity},
			{"past start", small, testutil.NewRequest(-1, 2).Build(), http.StatusUnprocessableEntity},
			{"end before start", small, testutil.NewRequest(52, 51).Build(), http.StatusUnprocessableEntity},
			{"deleted resource", deleted, testutil.NewRequest(50, 51).Build(), http.StatusNotFound},
			{"malformed resource id", "not-an-id", testutil.NewRequest(50, 51).Build(), http.StatusBadRequest},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := api.Create(ctx, tt.resourceID, tt.req)
				expectStatus(t, err, tt.status)
			})
		}

		anonymous := env.ClientFor("")
		_, err := anonymous.Create(ctx, small, testutil.NewRequest(50, 51).Build())
		expectStatus(t, err, http.StatusUnauthorized)
	})
}

func TestBookingStore(t *testing.T) {
	env := testutil.NewTestEnv(t)
	mongo := env.Setup(t)
	repo := mongo.Repository()
	ctx := context.Background()

	now := time.Now().UTC()
	today := dates.Today(now, time.UTC)

	insert := func(t *testing.T, resourceID, requesterID string, startOffset, endOffset int, status model.BookingStatus) *model.Booking {
		t.Helper()
		interval := model.NewDayInterval(today.AddDate(0, 0, startOffset), today.AddDate(0, 0, endOffset), time.UTC)
		b := &model.Booking{
			ResourceID:    resourceID,
			RequesterID:   requesterID,
			StartTime:     interval.Start,
			EndTime:       interval.End,
			Purpose:       "Seeded booking",
			AttendeeCount: 5,
			Status:        status,
			CreatedBy:     requesterID,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if err := repo.Create(ctx, b); err != nil {
			t.Fatalf("seed booking: %v", err)
		}
		return b
	}

	statusOf := func(t *testing.T, id string) model.BookingStatus {
		t.Helper()
		b, err := repo.FindByID(ctx, id)
		if err != nil {
			t.Fatalf("FindByID(%s) error = %v", id, err)
		}
		return b.Status
	}

	t.Run("live overlap bounds are inclusive", func(t *testing.T) {
		resourceID := mongo.SeedResource(t, testutil.NewResource())
		userID := mongo.SeedUser(t, "Gal")
		held := insert(t, resourceID, userID, 60, 62, model.StatusPending)
		insert(t, resourceID, userID, 63, 64, model.StatusCancelled)

		tests := []struct {
			name       string
			start, end int
			want       int
		}{
			{"shares last day", 62, 65, 1},
			{"shares first day", 58, 60, 1},
			{"day after", 63, 64, 0},
			{"day before", 57, 59, 0},
		}
		for _, tt := range tests {
			interval := model.NewDayInterval(today.AddDate(0, 0, tt.start), today.AddDate(0, 0, tt.end), time.UTC)
			got, err := repo.FindLiveOverlapping(ctx, resourceID, interval)
			if err != nil {
				t.Fatalf("%s: FindLiveOverlapping() error = %v", tt.name, err)
			}
			if len(got) != tt.want {
				t.Errorf("%s: found %d, want %d", tt.name, len(got), tt.want)
			}
			if len(got) == 1 && got[0].ID != held.ID {
				t.Errorf("%s: found %s, want %s", tt.name, got[0].ID, held.ID)
			}
		}
	})

	t.Run("sweeps apply once", func(t *testing.T) {
		resourceID := mongo.SeedResource(t, testutil.NewResource())
		userID := mongo.SeedUser(t, "Hila")
		due := insert(t, resourceID, userID, -2, 3, model.StatusPending)
		startsToday := insert(t, resourceID, userID, 0, 0, model.StatusPending)
		elapsed := insert(t, resourceID, userID, -6, -3, model.StatusActive)
		endsToday := insert(t, resourceID, userID, -1, 0, model.StatusActive)
		future := insert(t, resourceID, userID, 70, 71, model.StatusPending)

		sweeper := lifecycle.NewSweeper(repo, clock.NewFixed(now), mongo.Config())
		if _, err := sweeper.RunTransitions(ctx); err != nil {
			t.Fatalf("first sweep error = %v", err)
		}

		want := map[string]model.BookingStatus{
			due.ID:         model.StatusActive,
			startsToday.ID: model.StatusActive,
			elapsed.ID:     model.StatusCompleted,
			endsToday.ID:   model.StatusActive,
			future.ID:      model.StatusPending,
		}
		for id, status := range want {
			if got := statusOf(t, id); got != status {
				t.Errorf("%s status = %s, want %s", id, got, status)
			}
		}

		second, err := sweeper.RunTransitions(ctx)
		if err != nil {
			t.Fatalf("second sweep error = %v", err)
		}
		if second.Activated != 0 || second.Completed != 0 {
			t.Errorf("second sweep changed bookings: %+v", second)
		}
		for id, status := range want {
			if got := statusOf(t, id); got != status {
				t.Errorf("%s status after second sweep = %s, want %s", id, got, status)
			}
		}
	})

	t.Run("purge removes completed bookings past retention", func(t *testing.T) {
		resourceID := mongo.SeedResource(t, testutil.NewResource())
		userID := mongo.SeedUser(t, "Ido")
		old := insert(t, resourceID, userID, -400, -398, model.StatusCompleted)
		recent := insert(t, resourceID, userID, -40, -38, model.StatusCompleted)
		oldCancelled := insert(t, resourceID, userID, -400, -399, model.StatusCancelled)

		sweeper := lifecycle.NewSweeper(repo, clock.NewFixed(now), mongo.Config())
		if _, err := sweeper.Purge(ctx); err != nil {
			t.Fatalf("Purge() error = %v", err)
		}

		if _, err := repo.FindByID(ctx, old.ID); !errors.Is(err, bookingserrors.ErrNotFound) {
			t.Errorf("old completed booking still present: %v", err)
		}
		statusOf(t, recent.ID)
		statusOf(t, oldCancelled.ID)
	})

	t.Run("elapsed active booking cannot be cancelled", func(t *testing.T) {
		resourceID := mongo.SeedResource(t, testutil.NewResource())
		userID := mongo.SeedUser(t, "Yael")
		elapsed := insert(t, resourceID, userID, -5, -2, model.StatusActive)
		running := insert(t, resourceID, userID, -1, 2, model.StatusActive)
		api := env.ClientFor(userID)

		_, err := api.Cancel(ctx, elapsed.ID)
		expectStatus(t, err, http.StatusConflict)

		cancelled, err := api.Cancel(ctx, running.ID)
		if err != nil {
			t.Fatalf("cancel of running booking error = %v", err)
		}
		if cancelled.Status != model.StatusCancelled {
			t.Errorf("status = %s, want CANCELLED", cancelled.Status)
		}
	})
}

func expectStatus(t *testing.T, err error, status int) {
	t.Helper()
	var apiErr *client.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected API error with status %d, got %v", status, err)
	}
	if apiErr.StatusCode != status {
		t.Errorf("status = %d (%s), want %d", apiErr.StatusCode, apiErr.Message, status)
	}
}
