package service

import (
	"sort"

	"hallbook/pkg/model"
)

// AvailabilityResult is the outcome of checking a candidate interval against the
// bookings already held on a resource.
type AvailabilityResult struct {
	Available bool
	Conflicts []*model.Booking
}

// CheckAvailability reports which live bookings share at least one day with
// candidate. Cancelled and completed bookings never block. Conflicts are ordered by
// start time so the earliest blocker comes first.
func CheckAvailability(candidate model.Interval, existing []*model.Booking) AvailabilityResult {
	conflicts := []*model.Booking{}
	for _, b := range existing {
		if b == nil || !b.Status.IsLive() {
			continue
		}
		if candidate.Overlaps(b.Interval()) {
			conflicts = append(conflicts, b)
		}
	}

	sort.SliceStable(conflicts, func(i, j int) bool {
		return conflicts[i].StartTime.Before(conflicts[j].StartTime)
	})

	return AvailabilityResult{
		Available: len(conflicts) == 0,
		Conflicts: conflicts,
	}
}
