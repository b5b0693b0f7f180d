package repository

import (
	"fmt"
	"time"

	bookingserrors "hallbook/internal/bookings/errors"
	"hallbook/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// liveOverlapFilter matches live bookings of a resource sharing at least one
// instant with interval. Both bounds are inclusive.
func liveOverlapFilter(resourceID string, interval model.Interval) bson.M {
	return bson.M{
		"resource_id": resourceID,
		"status":      bson.M{"$in": model.LiveStatuses},
		"start_time":  bson.M{"$lte": interval.End},
		"end_time":    bson.M{"$gte": interval.Start},
	}
}

// cancellableFilter narrows owner to bookings that are live and whose last day
// is today or later.
func cancellableFilter(owner bson.M, todayStart time.Time) bson.M {
	filter := bson.M{
		"status":   bson.M{"$in": model.CancellableStatuses},
		"end_time": bson.M{"$gte": todayStart},
	}
	for k, v := range owner {
		filter[k] = v
	}
	return filter
}

func activateDueFilter(todayStart time.Time) bson.M {
	return bson.M{
		"status":     model.StatusPending,
		"start_time": bson.M{"$lte": todayStart},
	}
}

func completeElapsedFilter(todayStart time.Time) bson.M {
	return bson.M{
		"status":   model.StatusActive,
		"end_time": bson.M{"$lt": todayStart},
	}
}

func purgeFilter(cutoff time.Time) bson.M {
	return bson.M{
		"status":   model.StatusCompleted,
		"end_time": bson.M{"$lt": cutoff},
	}
}

// newBookingDocument encodes booking for insertion. A preassigned hex id is stored
// as an ObjectID so lookups by id keep working; an empty id gets a fresh one.
func newBookingDocument(booking *model.Booking) (bson.D, error) {
	id := primitive.NewObjectID()
	if booking.ID != "" {
		parsed, err := primitive.ObjectIDFromHex(booking.ID)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, booking.ID)
		}
		id = parsed
	}

	fields := *booking
	fields.ID = ""
	raw, err := bson.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("failed to encode booking: %w", err)
	}

	var doc bson.D
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to encode booking: %w", err)
	}
	return append(bson.D{{Key: "_id", Value: id}}, doc...), nil
}
