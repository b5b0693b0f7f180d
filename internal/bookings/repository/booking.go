package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	bookingserrors "hallbook/internal/bookings/errors"
	"hallbook/pkg/config"
	mongotx "hallbook/pkg/db/mongo"
	"hallbook/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Bookings"
)

type mongoBookingRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

type BookingRepository interface {
	Create(ctx context.Context, booking *model.Booking) error
	FindByID(ctx context.Context, id string) (*model.Booking, error)
	FindLiveOverlapping(ctx context.Context, resourceID string, interval model.Interval) ([]*model.Booking, error)
	FindByRequester(ctx context.Context, requesterID string) ([]*model.Booking, error)
	Cancel(ctx context.Context, id, requesterID string, todayStart, now time.Time) (*model.Booking, error)
	ActivateDue(ctx context.Context, todayStart, now time.Time) (int64, error)
	CompleteElapsed(ctx context.Context, todayStart, now time.Time) (int64, error)
	PurgeCompletedBefore(ctx context.Context, cutoff time.Time) (int64, error)
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

func NewMongoBookingRepository(cfg *config.Config) BookingRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoBookingRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

// withTimeout wraps the context with a timeout if not already in a transaction.
// A SessionContext cannot be wrapped without detaching it from the transaction, so
// it is returned unchanged with a no-op cancel.
func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}

	deadline, hasDeadline := ctx.Deadline()
	if hasDeadline && time.Until(deadline) < timeout {
		return context.WithDeadline(ctx, deadline)
	}

	return context.WithTimeout(ctx, timeout)
}

func (r *mongoBookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	doc, err := newBookingDocument(booking)
	if err != nil {
		return err
	}

	result, err := r.collection.InsertOne(ctx, doc)
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		booking.ID = oid.Hex()
	}
	return nil
}

func (r *mongoBookingRepository) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, id)
	}

	var booking model.Booking
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&booking)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, bookingserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find booking: %w", err)
	}

	return &booking, nil
}

// FindLiveOverlapping returns the live bookings of a resource sharing at least one
// instant with interval. Inside a transaction the read joins the snapshot.
func (r *mongoBookingRepository) FindLiveOverlapping(ctx context.Context, resourceID string, interval model.Interval) ([]*model.Booking, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "start_time", Value: 1}})

	return r.find(ctx, liveOverlapFilter(resourceID, interval), opts)
}

func (r *mongoBookingRepository) FindByRequester(ctx context.Context, requesterID string) ([]*model.Booking, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{
		{Key: "created_at", Value: -1},
		{Key: "_id", Value: -1},
	})

	return r.find(ctx, bson.M{"requester_id": requesterID}, opts)
}

func (r *mongoBookingRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*model.Booking, error) {
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find bookings: %w", err)
	}
	defer cursor.Close(ctx)

	bookings := []*model.Booking{}
	if err = cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode bookings: %w", err)
	}

	return bookings, nil
}

// Cancel moves a booking to CANCELLED in a single conditional update. The update
// only matches while the booking is cancellable and has not fully elapsed, so it
// cannot race with the lifecycle sweeps. An empty requesterID skips the ownership
// check.
func (r *mongoBookingRepository) Cancel(ctx context.Context, id, requesterID string, todayStart, now time.Time) (*model.Booking, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, id)
	}

	owner := bson.M{"_id": objectID}
	if requesterID != "" {
		owner["requester_id"] = requesterID
	}

	filter := cancellableFilter(owner, todayStart)

	update := bson.M{
		"$set": bson.M{
			"status":       model.StatusCancelled,
			"cancelled_at": now,
			"updated_at":   now,
		},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var booking model.Booking
	err = r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&booking)
	if err == nil {
		return &booking, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("failed to cancel booking: %w", err)
	}

	count, err := r.collection.CountDocuments(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to look up booking: %w", err)
	}
	if count == 0 {
		return nil, bookingserrors.ErrNotFound
	}
	return nil, bookingserrors.ErrInvalidState
}

// ActivateDue moves PENDING bookings whose first day has arrived to ACTIVE.
func (r *mongoBookingRepository) ActivateDue(ctx context.Context, todayStart, now time.Time) (int64, error) {
	return r.transition(ctx, activateDueFilter(todayStart), model.StatusActive, now)
}

// CompleteElapsed moves ACTIVE bookings whose last day is over to COMPLETED.
func (r *mongoBookingRepository) CompleteElapsed(ctx context.Context, todayStart, now time.Time) (int64, error) {
	return r.transition(ctx, completeElapsedFilter(todayStart), model.StatusCompleted, now)
}

func (r *mongoBookingRepository) transition(ctx context.Context, filter bson.M, to model.BookingStatus, now time.Time) (int64, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	update := bson.M{
		"$set": bson.M{
			"status":     to,
			"updated_at": now,
		},
	}

	result, err := r.collection.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, fmt.Errorf("failed to move bookings to %s: %w", to, err)
	}
	return result.ModifiedCount, nil
}

func (r *mongoBookingRepository) PurgeCompletedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.collection.DeleteMany(ctx, purgeFilter(cutoff))
	if err != nil {
		return 0, fmt.Errorf("failed to purge completed bookings: %w", err)
	}
	return result.DeletedCount, nil
}

func (r *mongoBookingRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
