package repository

import (
	"context"
	"fmt"
	"time"

	"hallbook/pkg/config"
	"hallbook/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const ResourceLockCollectionName = "Resource_locks"

// ResourceLockRepository serializes booking creation per resource.
type ResourceLockRepository interface {
	// Touch bumps the lock document of a resource. Called inside the create
	// transaction, it makes two concurrent creates on the same resource write the
	// same document, so the storage engine aborts one of them with a write conflict.
	Touch(ctx context.Context, resourceID string, now time.Time, ttl time.Duration) (*model.ResourceLock, error)
}

type mongoResourceLockRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewResourceLockRepository(cfg *config.Config) ResourceLockRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoResourceLockRepository{
		cfg:        cfg,
		collection: db.Collection(ResourceLockCollectionName),
	}
}

func (r *mongoResourceLockRepository) Touch(ctx context.Context, resourceID string, now time.Time, ttl time.Duration) (*model.ResourceLock, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	update := bson.M{
		"$inc": bson.M{"version": 1},
		"$set": bson.M{
			"expires_at": now.Add(ttl),
			"updated_at": now,
		},
	}

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var lock model.ResourceLock
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": resourceID}, update, opts).Decode(&lock)
	if err != nil {
		return nil, fmt.Errorf("failed to touch resource lock: %w", err)
	}
	return &lock, nil
}
