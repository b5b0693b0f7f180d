package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	bookingserrors "hallbook/internal/bookings/errors"
	"hallbook/internal/bookings/repository"
	"hallbook/internal/bookings/validator"
	"hallbook/pkg/clock"
	"hallbook/pkg/config"
	"hallbook/pkg/dates"
	mongotx "hallbook/pkg/db/mongo"
	apperrors "hallbook/pkg/errors"
	"hallbook/pkg/model"
	"hallbook/pkg/sanitizer"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/errgroup"
)

const resourceLookupConcurrency = 8

// Notifier receives booking events after the owning transaction has committed.
type Notifier interface {
	Notify(ctx context.Context, event model.BookingEvent) error
}

type BookingService interface {
	Create(ctx context.Context, resourceID, requesterID string, req *model.CreateBookingRequest) (*model.BookingSummary, error)
	ListByRequester(ctx context.Context, requesterID string) ([]*model.BookingSummary, error)
	GetByID(ctx context.Context, id, requesterID string) (*model.BookingSummary, error)
	Cancel(ctx context.Context, id, requesterID string) (*model.BookingSummary, error)
	Availability(ctx context.Context, resourceID, startDate, endDate string) (*model.Availability, error)
}

type bookingService struct {
	repo      repository.BookingRepository
	lockRepo  repository.ResourceLockRepository
	resources repository.ResourceDirectory
	users     repository.UserDirectory
	validator *validator.BookingValidator
	notifier  Notifier
	clock     clock.Clock
	cfg       *config.Config
}

// NewBookingService wires the coordinator. notifier may be nil, in which case
// committed bookings are not announced.
func NewBookingService(
	repo repository.BookingRepository,
	lockRepo repository.ResourceLockRepository,
	resources repository.ResourceDirectory,
	users repository.UserDirectory,
	validator *validator.BookingValidator,
	notifier Notifier,
	clk clock.Clock,
	cfg *config.Config,
) BookingService {
	return &bookingService{
		repo:      repo,
		lockRepo:  lockRepo,
		resources: resources,
		users:     users,
		validator: validator,
		notifier:  notifier,
		clock:     clk,
		cfg:       cfg,
	}
}

// conflictError aborts a create transaction when live bookings block the interval.
// It is turned into an API error once the transaction has been rolled back.
type conflictError struct {
	conflicts []*model.Booking
}

func (e *conflictError) Error() string {
	return fmt.Sprintf("interval conflicts with %d live booking(s)", len(e.conflicts))
}

func (s *bookingService) Create(ctx context.Context, resourceID, requesterID string, req *model.CreateBookingRequest) (*model.BookingSummary, error) {
	if err := s.validator.ValidateObjectID("resource_id", resourceID); err != nil {
		return nil, apperrors.InvalidReference("resource_id", resourceID)
	}
	if requesterID == "" {
		return nil, apperrors.Unauthorized("Requester identity is required")
	}

	if req != nil {
		s.sanitize(req)
	}
	if err := s.validator.ValidateRequest(req); err != nil {
		return nil, s.validationError(err)
	}

	loc := s.cfg.Location
	startDay, endDay, err := s.validator.ParseDates(req, loc)
	if err != nil {
		return nil, s.validationError(err)
	}

	now := s.clock.Now()
	today := dates.Today(now, loc)
	if err := s.validator.ValidateInterval(startDay, endDay, today, loc); err != nil {
		return nil, s.validationError(err)
	}
	if err := s.validator.ValidateAttendeeCount(*req.AttendeeCount); err != nil {
		return nil, s.validationError(err)
	}

	resource, err := s.lookupResource(ctx, resourceID)
	if err != nil {
		return nil, err
	}
	if *req.AttendeeCount > resource.Capacity {
		return nil, apperrors.CapacityExceeded(*req.AttendeeCount, resource.Capacity)
	}

	interval := model.NewDayInterval(startDay, endDay, loc)
	booking := &model.Booking{
		ResourceID:      resourceID,
		RequesterID:     requesterID,
		StartTime:       interval.Start,
		EndTime:         interval.End,
		Purpose:         req.Purpose,
		AttendeeCount:   *req.AttendeeCount,
		SpecialRequests: req.SpecialRequests,
		Status:          model.StatusPending,
		CreatedBy:       requesterID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.insertWithRetry(ctx, booking, interval, now); err != nil {
		var conflict *conflictError
		if errors.As(err, &conflict) {
			s.cfg.Log.Info("Booking rejected due to conflict",
				"resource_id", resourceID,
				"start_date", dates.Format(interval.Start, loc),
				"end_date", dates.Format(interval.End, loc),
				"conflicts", len(conflict.conflicts),
			)
			return nil, s.conflictAppError(ctx, conflict.conflicts)
		}
		s.cfg.Log.Error("Failed to create booking", "resource_id", resourceID, "error", err)
		return nil, err
	}

	s.cfg.Log.Info("Booking created successfully",
		"id", booking.ID,
		"resource_id", booking.ResourceID,
		"requester_id", booking.RequesterID,
		"start_date", dates.Format(booking.StartTime, loc),
		"end_date", dates.Format(booking.EndTime, loc),
	)

	s.notify(ctx, s.event(model.EventBookingCreated, booking, resource, now))

	return s.summarize(booking, resource, today), nil
}

// insertWithRetry runs the check-then-insert transaction. Every attempt first
// writes the resource's lock document so concurrent creates on one resource cannot
// both commit; the loser sees a write conflict and is retried against the fresh
// snapshot, where it then observes the winner as a conflict.
//
// The booking id is fixed before the first attempt. When a commit outcome is
// unknown and the commit did land, the next attempt finds the booking under that
// id and reports success instead of a conflict with itself.
func (s *bookingService) insertWithRetry(ctx context.Context, booking *model.Booking, interval model.Interval, now time.Time) error {
	var lastErr error
	booking.ID = primitive.NewObjectID().Hex()

	for attempt := 1; attempt <= s.cfg.CreateMaxAttempts; attempt++ {
		err := s.repo.ExecuteTransaction(ctx, func(txCtx context.Context) error {
			if _, err := s.lockRepo.Touch(txCtx, booking.ResourceID, now, s.cfg.LockTTL); err != nil {
				return err
			}

			existing, err := s.repo.FindLiveOverlapping(txCtx, booking.ResourceID, interval)
			if err != nil {
				return err
			}

			if containsBooking(existing, booking.ID) {
				s.cfg.Log.Warn("Booking already committed by an earlier attempt",
					"id", booking.ID,
					"resource_id", booking.ResourceID,
					"attempt", attempt,
				)
				return nil
			}

			if result := CheckAvailability(interval, existing); !result.Available {
				return &conflictError{conflicts: result.Conflicts}
			}

			return s.repo.Create(txCtx, booking)
		})
		if err == nil {
			return nil
		}

		var conflict *conflictError
		if errors.As(err, &conflict) || apperrors.IsAppError(err) {
			return err
		}
		if ctx.Err() != nil || errors.Is(err, context.DeadlineExceeded) {
			return apperrors.Transient("Booking request timed out, please retry", err)
		}
		if !mongotx.IsTransientError(err) {
			return apperrors.Internal("Failed to create booking", err)
		}

		lastErr = err
		s.cfg.Log.Warn("Booking transaction aborted, retrying",
			"resource_id", booking.ResourceID,
			"attempt", attempt,
			"max_attempts", s.cfg.CreateMaxAttempts,
			"error", err,
		)

		if attempt < s.cfg.CreateMaxAttempts {
			if err := sleepCtx(ctx, s.cfg.RetryBackoff*time.Duration(attempt)); err != nil {
				return apperrors.Transient("Booking request timed out, please retry", err)
			}
		}
	}

	return apperrors.Transient("Booking could not be completed due to concurrent requests, please retry", lastErr)
}

func containsBooking(bookings []*model.Booking, id string) bool {
	for _, b := range bookings {
		if b != nil && b.ID == id {
			return true
		}
	}
	return false
}

func (s *bookingService) ListByRequester(ctx context.Context, requesterID string) ([]*model.BookingSummary, error) {
	if requesterID == "" {
		return nil, apperrors.Unauthorized("Requester identity is required")
	}

	bookings, err := s.repo.FindByRequester(ctx, requesterID)
	if err != nil {
		s.cfg.Log.Error("Failed to list bookings", "requester_id", requesterID, "error", err)
		return nil, apperrors.Internal("Failed to retrieve bookings", err)
	}

	resources := s.resourcesFor(ctx, bookings)
	today := dates.Today(s.clock.Now(), s.cfg.Location)

	summaries := make([]*model.BookingSummary, 0, len(bookings))
	for _, b := range bookings {
		summaries = append(summaries, s.summarize(b, resources[b.ResourceID], today))
	}

	s.cfg.Log.Debug("Listed bookings", "requester_id", requesterID, "count", len(summaries))
	return summaries, nil
}

func (s *bookingService) GetByID(ctx context.Context, id, requesterID string) (*model.BookingSummary, error) {
	if err := s.validator.ValidateObjectID("booking_id", id); err != nil {
		return nil, apperrors.InvalidReference("booking_id", id)
	}

	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapBookingError(err, id, "Failed to retrieve booking")
	}
	if requesterID != "" && booking.RequesterID != requesterID {
		return nil, apperrors.NotFoundWithID("Booking", id)
	}

	resource := s.resourcesFor(ctx, []*model.Booking{booking})[booking.ResourceID]
	return s.summarize(booking, resource, dates.Today(s.clock.Now(), s.cfg.Location)), nil
}

// Cancel moves a live, not yet elapsed booking to CANCELLED. When requesterID is set
// only that requester's bookings are visible.
func (s *bookingService) Cancel(ctx context.Context, id, requesterID string) (*model.BookingSummary, error) {
	if err := s.validator.ValidateObjectID("booking_id", id); err != nil {
		return nil, apperrors.InvalidReference("booking_id", id)
	}

	now := s.clock.Now()
	today := dates.Today(now, s.cfg.Location)

	booking, err := s.repo.Cancel(ctx, id, requesterID, today, now)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrInvalidState) {
			s.cfg.Log.Info("Booking cannot be cancelled", "id", id)
			return nil, apperrors.InvalidState("Booking can no longer be cancelled").
				WithDetails(map[string]any{"booking_id": id})
		}
		return nil, s.mapBookingError(err, id, "Failed to cancel booking")
	}

	s.cfg.Log.Info("Booking cancelled successfully", "id", id, "resource_id", booking.ResourceID)

	resource := s.resourcesFor(ctx, []*model.Booking{booking})[booking.ResourceID]
	s.notify(ctx, s.event(model.EventBookingCancelled, booking, resource, now))

	return s.summarize(booking, resource, today), nil
}

// Availability checks an interval without taking the resource lock. The answer may
// be stale by the time a create runs; create re-checks inside its transaction.
func (s *bookingService) Availability(ctx context.Context, resourceID, startDate, endDate string) (*model.Availability, error) {
	if err := s.validator.ValidateObjectID("resource_id", resourceID); err != nil {
		return nil, apperrors.InvalidReference("resource_id", resourceID)
	}

	loc := s.cfg.Location
	startDay, endDay, err := s.validator.ParseDates(&model.CreateBookingRequest{StartDate: startDate, EndDate: endDate}, loc)
	if err != nil {
		return nil, s.validationError(err)
	}
	if err := s.validator.ValidateRange(startDay, endDay, loc); err != nil {
		return nil, s.validationError(err)
	}

	if _, err := s.lookupResource(ctx, resourceID); err != nil {
		return nil, err
	}

	interval := model.NewDayInterval(startDay, endDay, loc)
	existing, err := s.repo.FindLiveOverlapping(ctx, resourceID, interval)
	if err != nil {
		s.cfg.Log.Error("Failed to check availability", "resource_id", resourceID, "error", err)
		return nil, apperrors.Internal("Failed to check availability", err)
	}

	result := CheckAvailability(interval, existing)
	return &model.Availability{
		ResourceID: resourceID,
		StartDate:  dates.Format(interval.Start, loc),
		EndDate:    dates.Format(interval.End, loc),
		Available:  result.Available,
		Conflicts:  s.conflictSummaries(ctx, result.Conflicts),
	}, nil
}

// --- Helpers ---

func (s *bookingService) sanitize(req *model.CreateBookingRequest) {
	req.StartDate = sanitizer.TrimAndNormalize(req.StartDate)
	req.EndDate = sanitizer.TrimAndNormalize(req.EndDate)
	req.Purpose = sanitizer.SanitizePurpose(req.Purpose)
	req.SpecialRequests = sanitizer.SanitizeSpecialRequests(req.SpecialRequests)
}

func (s *bookingService) validationError(err error) error {
	s.cfg.Log.Warn("Booking validation failed", "error", err)

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return apperrors.Validation("Booking validation failed", verrs.Details())
	}
	return apperrors.Validation("Booking validation failed", map[string]any{"error": err.Error()})
}

func (s *bookingService) lookupResource(ctx context.Context, resourceID string) (*model.Resource, error) {
	resource, err := s.resources.FindByID(ctx, resourceID)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrResourceNotFound) {
			return nil, apperrors.NotFoundWithID("Resource", resourceID)
		}
		if errors.Is(err, bookingserrors.ErrInvalidResourceID) {
			return nil, apperrors.InvalidReference("resource_id", resourceID)
		}
		s.cfg.Log.Error("Failed to look up resource", "resource_id", resourceID, "error", err)
		return nil, apperrors.Internal("Failed to look up resource", err)
	}
	if !resource.Exists() {
		return nil, apperrors.NotFoundWithID("Resource", resourceID)
	}
	return resource, nil
}

// resourcesFor fetches the catalog entries referenced by bookings. Lookups that fail
// are logged and left out; summaries then carry no resource name.
func (s *bookingService) resourcesFor(ctx context.Context, bookings []*model.Booking) map[string]*model.Resource {
	ids := make([]string, 0, len(bookings))
	seen := make(map[string]struct{}, len(bookings))
	for _, b := range bookings {
		if _, ok := seen[b.ResourceID]; ok {
			continue
		}
		seen[b.ResourceID] = struct{}{}
		ids = append(ids, b.ResourceID)
	}

	found := make([]*model.Resource, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(resourceLookupConcurrency)
	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			resource, err := s.resources.FindByID(gctx, id)
			if err != nil {
				s.cfg.Log.Warn("Failed to look up resource for booking summary", "resource_id", id, "error", err)
				return nil
			}
			found[i] = resource
			return nil
		})
	}
	_ = g.Wait()

	resources := make(map[string]*model.Resource, len(ids))
	for i, id := range ids {
		if found[i] != nil {
			resources[id] = found[i]
		}
	}
	return resources
}

func (s *bookingService) conflictAppError(ctx context.Context, conflicts []*model.Booking) error {
	summaries := s.conflictSummaries(ctx, conflicts)
	return apperrors.Conflict("Resource is already booked for the requested dates").
		WithDetails(map[string]any{"conflicts": summaries})
}

// conflictSummaries describes blocking bookings by interval, purpose and the
// requester's display name. Requester ids are never exposed.
func (s *bookingService) conflictSummaries(ctx context.Context, conflicts []*model.Booking) []model.ConflictSummary {
	summaries := make([]model.ConflictSummary, 0, len(conflicts))
	if len(conflicts) == 0 {
		return summaries
	}

	ids := make([]string, 0, len(conflicts))
	for _, b := range conflicts {
		ids = append(ids, b.RequesterID)
	}

	names, err := s.users.DisplayNames(ctx, ids)
	if err != nil {
		s.cfg.Log.Warn("Failed to resolve requester display names", "error", err)
		names = nil
	}

	loc := s.cfg.Location
	for _, b := range conflicts {
		name, ok := names[b.RequesterID]
		if !ok || name == "" {
			name = model.UnknownDisplayName
		}
		summaries = append(summaries, model.ConflictSummary{
			StartDate: dates.Format(b.StartTime, loc),
			EndDate:   dates.Format(b.EndTime, loc),
			Purpose:   b.Purpose,
			BookedBy:  name,
		})
	}
	return summaries
}

func (s *bookingService) mapBookingError(err error, id, message string) error {
	if errors.Is(err, bookingserrors.ErrNotFound) {
		return apperrors.NotFoundWithID("Booking", id)
	}
	if errors.Is(err, bookingserrors.ErrInvalidID) {
		return apperrors.InvalidReference("booking_id", id)
	}
	s.cfg.Log.Error(message, "id", id, "error", err)
	return apperrors.Internal(message, err)
}

func (s *bookingService) summarize(b *model.Booking, resource *model.Resource, today time.Time) *model.BookingSummary {
	loc := s.cfg.Location
	summary := &model.BookingSummary{
		BookingID:       b.ID,
		ResourceID:      b.ResourceID,
		Status:          b.Status,
		StartDate:       dates.Format(b.StartTime, loc),
		EndDate:         dates.Format(b.EndTime, loc),
		DurationDays:    b.Interval().DaysInclusive(loc),
		DaysUntilStart:  max(0, dates.DaysBetween(today, b.StartTime, loc)),
		Purpose:         b.Purpose,
		AttendeeCount:   b.AttendeeCount,
		SpecialRequests: b.SpecialRequests,
		CreatedAt:       b.CreatedAt,
	}
	if resource != nil {
		summary.ResourceName = resource.Name
		summary.ResourceType = resource.Type
	}
	return summary
}

func (s *bookingService) event(eventType string, b *model.Booking, resource *model.Resource, now time.Time) model.BookingEvent {
	loc := s.cfg.Location
	event := model.BookingEvent{
		EventType:     eventType,
		BookingID:     b.ID,
		ResourceID:    b.ResourceID,
		RequesterID:   b.RequesterID,
		Purpose:       b.Purpose,
		AttendeeCount: b.AttendeeCount,
		StartDate:     dates.Format(b.StartTime, loc),
		EndDate:       dates.Format(b.EndTime, loc),
		Status:        b.Status,
		OccurredAt:    now,
	}
	if resource != nil {
		event.ResourceName = resource.Name
		event.ResourceType = resource.Type
	}
	return event
}

// notify hands a committed booking to the notifier. It never fails the request: the
// caller's cancellation is ignored and errors are only logged.
func (s *bookingService) notify(ctx context.Context, event model.BookingEvent) {
	if s.notifier == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.NotificationTimeout)
	defer cancel()

	if err := s.notifier.Notify(ctx, event); err != nil {
		s.cfg.Log.Warn("Failed to send booking notification",
			"event_type", event.EventType,
			"booking_id", event.BookingID,
			"error", err,
		)
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
