package model

// BookingStatus is a state of the booking lifecycle automaton.
type BookingStatus string

const (
	StatusPending   BookingStatus = "PENDING"
	StatusActive    BookingStatus = "ACTIVE"
	StatusCompleted BookingStatus = "COMPLETED"
	StatusCancelled BookingStatus = "CANCELLED"
)

var validTransitions = map[BookingStatus][]BookingStatus{
	StatusPending:   {StatusActive, StatusCancelled},
	StatusActive:    {StatusCompleted, StatusCancelled},
	StatusCompleted: {},
	StatusCancelled: {},
}

// LiveStatuses are the statuses that hold a resource.
var LiveStatuses = []BookingStatus{StatusPending, StatusActive}

// CancellableStatuses are the statuses a booking may be cancelled from.
var CancellableStatuses = []BookingStatus{StatusPending, StatusActive}

func AllStatuses() []BookingStatus {
	return []BookingStatus{StatusPending, StatusActive, StatusCompleted, StatusCancelled}
}

func (s BookingStatus) IsValid() bool {
	_, ok := validTransitions[s]
	return ok
}

func (s BookingStatus) IsLive() bool {
	return s == StatusPending || s == StatusActive
}

func (s BookingStatus) IsTerminal() bool {
	next, ok := validTransitions[s]
	return !ok || len(next) == 0
}

func (s BookingStatus) CanTransitionTo(target BookingStatus) bool {
	for _, t := range validTransitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

func (s BookingStatus) CanBeCancelled() bool {
	return s.CanTransitionTo(StatusCancelled)
}

func (s BookingStatus) String() string {
	return string(s)
}
