package repository

import (
	"context"
	"errors"
	"fmt"

	bookingserrors "hallbook/internal/bookings/errors"
	"hallbook/pkg/config"
	"hallbook/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ResourceCollectionName is owned by the catalog service; bookings only read it.
const ResourceCollectionName = "Resources"

type ResourceDirectory interface {
	FindByID(ctx context.Context, id string) (*model.Resource, error)
}

type mongoResourceDirectory struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewResourceDirectory(cfg *config.Config) ResourceDirectory {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoResourceDirectory{
		cfg:        cfg,
		collection: db.Collection(ResourceCollectionName),
	}
}

func (d *mongoResourceDirectory) FindByID(ctx context.Context, id string) (*model.Resource, error) {
	ctx, cancel := withTimeout(ctx, d.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", bookingserrors.ErrInvalidResourceID, id)
	}

	opts := options.FindOne().SetProjection(bson.M{
		"name":             1,
		"type":             1,
		"institution_name": 1,
		"capacity":         1,
		"status":           1,
	})

	var resource model.Resource
	err = d.collection.FindOne(ctx, bson.M{"_id": objectID}, opts).Decode(&resource)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, bookingserrors.ErrResourceNotFound
		}
		return nil, fmt.Errorf("failed to find resource: %w", err)
	}

	return &resource, nil
}
