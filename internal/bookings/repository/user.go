package repository

import (
	"context"
	"fmt"

	"hallbook/pkg/config"
	"hallbook/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// UserCollectionName is owned by the identity service; bookings only read it.
const UserCollectionName = "Users"

type UserDirectory interface {
	// DisplayNames maps each known user id to its display name. Unknown or
	// malformed ids are absent from the result.
	DisplayNames(ctx context.Context, ids []string) (map[string]string, error)
}

type mongoUserDirectory struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewUserDirectory(cfg *config.Config) UserDirectory {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoUserDirectory{
		cfg:        cfg,
		collection: db.Collection(UserCollectionName),
	}
}

func (d *mongoUserDirectory) DisplayNames(ctx context.Context, ids []string) (map[string]string, error) {
	names := make(map[string]string, len(ids))

	objectIDs := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if oid, err := primitive.ObjectIDFromHex(id); err == nil {
			objectIDs = append(objectIDs, oid)
		}
	}
	if len(objectIDs) == 0 {
		return names, nil
	}

	ctx, cancel := withTimeout(ctx, d.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().SetProjection(bson.M{"name": 1, "username": 1})
	cursor, err := d.collection.Find(ctx, bson.M{"_id": bson.M{"$in": objectIDs}}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find users: %w", err)
	}
	defer cursor.Close(ctx)

	var users []model.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("failed to decode users: %w", err)
	}

	for _, u := range users {
		names[u.ID] = u.DisplayName()
	}
	return names, nil
}
