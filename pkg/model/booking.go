package model

import (
	"time"
)

type Booking struct {
	ID              string        `json:"id,omitempty" bson:"_id,omitempty"`
	ResourceID      string        `json:"resource_id" bson:"resource_id"`
	RequesterID     string        `json:"requester_id" bson:"requester_id"`
	StartTime       time.Time     `json:"start_time" bson:"start_time"`
	EndTime         time.Time     `json:"end_time" bson:"end_time"`
	Purpose         string        `json:"purpose" bson:"purpose"`
	AttendeeCount   int           `json:"attendee_count" bson:"attendee_count"`
	SpecialRequests string        `json:"special_requests,omitempty" bson:"special_requests,omitempty"`
	Status          BookingStatus `json:"status" bson:"status"`
	CreatedBy       string        `json:"created_by" bson:"created_by"`
	CreatedAt       time.Time     `json:"created_at" bson:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at" bson:"updated_at"`
	CancelledAt     *time.Time    `json:"cancelled_at,omitempty" bson:"cancelled_at,omitempty"`
}

func (b *Booking) Interval() Interval {
	return Interval{Start: b.StartTime, End: b.EndTime}
}

// CreateBookingRequest is the payload accepted by the create operation. Dates are
// calendar-day strings (YYYY-MM-DD); RFC3339 timestamps are accepted and truncated
// to their calendar day.
type CreateBookingRequest struct {
	StartDate       string `json:"start_date" validate:"required"`
	EndDate         string `json:"end_date" validate:"required"`
	Purpose         string `json:"purpose" validate:"required,max=500"`
	AttendeeCount   *int   `json:"attendee_count" validate:"required"`
	SpecialRequests string `json:"special_requests,omitempty" validate:"omitempty,max=1000"`
}

type BookingSummary struct {
	BookingID       string        `json:"booking_id"`
	ResourceID      string        `json:"resource_id"`
	ResourceName    string        `json:"resource_name,omitempty"`
	ResourceType    string        `json:"resource_type,omitempty"`
	Status          BookingStatus `json:"status"`
	StartDate       string        `json:"start_date"`
	EndDate         string        `json:"end_date"`
	DurationDays    int           `json:"duration_days"`
	DaysUntilStart  int           `json:"days_until_start"`
	Purpose         string        `json:"purpose"`
	AttendeeCount   int           `json:"attendee_count"`
	SpecialRequests string        `json:"special_requests,omitempty"`
	CreatedAt       time.Time     `json:"created_at"`
}

// ConflictSummary describes a booking that blocks a candidate interval. It carries
// the requester's display name only, never internal identifiers.
type ConflictSummary struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Purpose   string `json:"purpose"`
	BookedBy  string `json:"booked_by"`
}

type Availability struct {
	ResourceID string            `json:"resource_id"`
	StartDate  string            `json:"start_date"`
	EndDate    string            `json:"end_date"`
	Available  bool              `json:"available"`
	Conflicts  []ConflictSummary `json:"conflicts"`
}
