package lifecycle

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"hallbook/pkg/clock"
	"hallbook/pkg/config"
	"hallbook/pkg/logger"
	"hallbook/pkg/model"
)

// memoryStore applies the same predicates as the Mongo store to an in-memory set.
type memoryStore struct {
	mu       sync.Mutex
	bookings []*model.Booking

	activateCalls int
	purgeCalls    int
	err           error
}

func (m *memoryStore) ActivateDue(ctx context.Context, todayStart, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.activateCalls++
	if m.err != nil {
		return 0, m.err
	}
	var n int64
	for _, b := range m.bookings {
		if b.Status == model.StatusPending && !b.StartTime.After(todayStart) {
			b.Status = model.StatusActive
			b.UpdatedAt = now
			n++
		}
	}
	return n, nil
}

func (m *memoryStore) CompleteElapsed(ctx context.Context, todayStart, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, b := range m.bookings {
		if b.Status == model.StatusActive && b.EndTime.Before(todayStart) {
			b.Status = model.StatusCompleted
			b.UpdatedAt = now
			n++
		}
	}
	return n, nil
}

func (m *memoryStore) PurgeCompletedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.purgeCalls++
	kept := m.bookings[:0]
	var n int64
	for _, b := range m.bookings {
		if b.Status == model.StatusCompleted && b.EndTime.Before(cutoff) {
			n++
			continue
		}
		kept = append(kept, b)
	}
	m.bookings = kept
	return n, nil
}

func (m *memoryStore) statuses() map[string]model.BookingStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := map[string]model.BookingStatus{}
	for _, b := range m.bookings {
		out[b.ID] = b.Status
	}
	return out
}

var sweepNow = time.Date(2025, 6, 10, 0, 1, 0, 0, time.UTC)

func testConfig() *config.Config {
	return &config.Config{
		Log:                            logger.Discard(),
		Location:                       time.UTC,
		LifecycleRetentionPeriodMonths: 12,
		LifecycleSweepInterval:         5 * time.Millisecond,
		LifecycleRetentionInterval:     5 * time.Millisecond,
	}
}

func booking(id, start, end string, status model.BookingStatus) *model.Booking {
	s, _ := time.Parse("2006-01-02", start)
	e, _ := time.Parse("2006-01-02", end)
	i := model.NewDayInterval(s, e, time.UTC)
	return &model.Booking{ID: id, StartTime: i.Start, EndTime: i.End, Status: status}
}

func seededStore() *memoryStore {
	return &memoryStore{bookings: []*model.Booking{
		booking("starts-today", "2025-06-10", "2025-06-12", model.StatusPending),
		booking("future", "2025-06-11", "2025-06-12", model.StatusPending),
		booking("ends-today", "2025-06-01", "2025-06-10", model.StatusActive),
		booking("ended-yesterday", "2025-06-01", "2025-06-09", model.StatusActive),
		booking("missed", "2025-06-01", "2025-06-02", model.StatusPending),
		booking("cancelled", "2025-06-01", "2025-06-12", model.StatusCancelled),
		booking("old", "2024-05-01", "2024-06-08", model.StatusCompleted),
		booking("recent", "2024-06-01", "2024-06-11", model.StatusCompleted),
	}}
}

func TestRunTransitions(t *testing.T) {
	store := seededStore()
	sweeper := NewSweeper(store, clock.NewFixed(sweepNow), testConfig())

	result, err := sweeper.RunTransitions(context.Background())
	if err != nil {
		t.Fatalf("RunTransitions() error = %v", err)
	}
	if result.Activated != 2 || result.Completed != 2 {
		t.Errorf("result = %+v, want 2 activated and 2 completed", result)
	}

	want := map[string]model.BookingStatus{
		"starts-today":    model.StatusActive,
		"future":          model.StatusPending,
		"ends-today":      model.StatusActive,
		"ended-yesterday": model.StatusCompleted,
		"missed":          model.StatusCompleted,
		"cancelled":       model.StatusCancelled,
		"old":             model.StatusCompleted,
		"recent":          model.StatusCompleted,
	}
	got := store.statuses()
	for id, status := range want {
		if got[id] != status {
			t.Errorf("%s: status = %s, want %s", id, got[id], status)
		}
	}
}

func TestRunTransitions_Idempotent(t *testing.T) {
	store := seededStore()
	sweeper := NewSweeper(store, clock.NewFixed(sweepNow), testConfig())
	ctx := context.Background()

	if _, err := sweeper.RunTransitions(ctx); err != nil {
		t.Fatalf("first pass: %v", err)
	}
	after := store.statuses()

	result, err := sweeper.RunTransitions(ctx)
	if err != nil {
		t.Fatalf("second pass: %v", err)
	}
	if result.Activated != 0 || result.Completed != 0 {
		t.Errorf("second pass changed bookings: %+v", result)
	}
	for id, status := range store.statuses() {
		if after[id] != status {
			t.Errorf("%s changed on second pass: %s -> %s", id, after[id], status)
		}
	}
}

func TestPurge(t *testing.T) {
	store := seededStore()
	sweeper := NewSweeper(store, clock.NewFixed(sweepNow), testConfig())

	if got := sweeper.RetentionCutoff(); !got.Equal(time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("RetentionCutoff() = %v", got)
	}

	n, err := sweeper.Purge(context.Background())
	if err != nil {
		t.Fatalf("Purge() error = %v", err)
	}
	if n != 1 {
		t.Errorf("purged %d, want 1", n)
	}
	if _, ok := store.statuses()["old"]; ok {
		t.Error("old completed booking should be deleted")
	}
	if _, ok := store.statuses()["recent"]; !ok {
		t.Error("booking inside retention should be kept")
	}

	n, err = sweeper.Purge(context.Background())
	if err != nil || n != 0 {
		t.Errorf("second purge = %d, %v; want 0, nil", n, err)
	}
}

func TestRetentionCutoff_CalendarYear(t *testing.T) {
	tests := []struct {
		today string
		want  string
	}{
		{"2025-06-10", "2024-06-10"},
		{"2025-02-28", "2024-02-28"},
		{"2024-12-31", "2023-12-31"},
		{"2024-02-29", "2023-03-01"},
	}

	for _, tt := range tests {
		t.Run(tt.today, func(t *testing.T) {
			now, _ := time.Parse("2006-01-02", tt.today)
			sweeper := NewSweeper(&memoryStore{}, clock.NewFixed(now.Add(3*time.Hour)), testConfig())
			if got := sweeper.RetentionCutoff().Format("2006-01-02"); got != tt.want {
				t.Errorf("RetentionCutoff() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestRunTransitions_StoreError(t *testing.T) {
	store := &memoryStore{err: errors.New("connection reset")}
	sweeper := NewSweeper(store, clock.NewFixed(sweepNow), testConfig())

	if _, err := sweeper.RunTransitions(context.Background()); err == nil {
		t.Error("expected error from failing store")
	}
}

func TestScheduler_RunsAtStartupAndStopsOnCancel(t *testing.T) {
	store := seededStore()
	cfg := testConfig()
	scheduler := NewScheduler(NewSweeper(store, clock.NewFixed(sweepNow), cfg), cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := scheduler.Run(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Run() error = %v, want context deadline", err)
	}

	store.mu.Lock()
	defer store.mu.Unlock()
	if store.activateCalls < 2 {
		t.Errorf("expected start-up pass plus ticks, got %d activation sweeps", store.activateCalls)
	}
	if store.purgeCalls < 1 {
		t.Error("expected at least one retention sweep")
	}
}

func TestScheduler_SurvivesFailingSweeps(t *testing.T) {
	store := &memoryStore{err: errors.New("connection reset")}
	cfg := testConfig()
	scheduler := NewScheduler(NewSweeper(store, clock.NewFixed(sweepNow), cfg), cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	_ = scheduler.Run(ctx)

	store.mu.Lock()
	defer store.mu.Unlock()
	if store.activateCalls < 2 {
		t.Errorf("scheduler should keep sweeping after failures, got %d calls", store.activateCalls)
	}
}
