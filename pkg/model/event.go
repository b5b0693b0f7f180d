package model

import "time"

const (
	EventBookingCreated   = "booking.created"
	EventBookingCancelled = "booking.cancelled"
)

// BookingEvent is published after a booking transaction commits.
type BookingEvent struct {
	EventType     string        `json:"event_type"`
	BookingID     string        `json:"booking_id"`
	ResourceID    string        `json:"resource_id"`
	ResourceName  string        `json:"resource_name,omitempty"`
	ResourceType  string        `json:"resource_type,omitempty"`
	RequesterID   string        `json:"requester_id"`
	Purpose       string        `json:"purpose"`
	AttendeeCount int           `json:"attendee_count"`
	StartDate     string        `json:"start_date"`
	EndDate       string        `json:"end_date"`
	Status        BookingStatus `json:"status"`
	OccurredAt    time.Time     `json:"occurred_at"`
}
