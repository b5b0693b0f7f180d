package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"hallbook/internal/bookings/repository"
	"hallbook/internal/migrations/mongo/validators"
	"hallbook/pkg/logger"
)

var (
	BookingsIndexes = []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "resource_id", Value: 1},
				{Key: "start_time", Value: 1},
				{Key: "end_time", Value: 1},
			},
			Options: options.Index().SetName("resource_interval"),
		},
		{
			Keys:    bson.D{{Key: "status", Value: 1}, {Key: "start_time", Value: 1}},
			Options: options.Index().SetName("status_start"),
		},
		{
			Keys:    bson.D{{Key: "status", Value: 1}, {Key: "end_time", Value: 1}},
			Options: options.Index().SetName("status_end"),
		},
		{
			Keys:    bson.D{{Key: "requester_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("requester_created"),
		},
	}

	// Lock documents are only needed while a transaction is in flight. The TTL
	// monitor removes them once they expire; a later create simply upserts again.
	ResourceLocksIndexes = []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetName("expires_at_ttl").SetExpireAfterSeconds(0),
		},
	}
)

type collectionDef struct {
	Name      string
	Indexes   []mongo.IndexModel
	Validator bson.M
}

func collections() []collectionDef {
	return []collectionDef{
		{
			Name:      repository.CollectionName,
			Indexes:   BookingsIndexes,
			Validator: validators.BookingValidator,
		},
		{
			Name:      repository.ResourceLockCollectionName,
			Indexes:   ResourceLocksIndexes,
			Validator: validators.ResourceLockValidator,
		},
	}
}

// RunMigration creates the engine's collections with their validators and indexes.
// It is safe to run repeatedly. The Resources and Users collections belong to other
// services and are left alone.
func RunMigration(ctx context.Context, client *mongo.Client, dbName string, log *logger.Logger) error {
	db := client.Database(dbName)
	log.Info("Running Mongo migrations", "database", dbName)

	for _, def := range collections() {
		if err := ensureCollection(ctx, db, def.Name, def.Validator, log); err != nil {
			return fmt.Errorf("failed to ensure collection %s: %w", def.Name, err)
		}
		if err := ensureIndexes(ctx, db, def.Name, def.Indexes, log); err != nil {
			return fmt.Errorf("failed to ensure indexes for %s: %w", def.Name, err)
		}
	}

	log.Info("All migrations applied successfully")
	return nil
}

func ensureCollection(ctx context.Context, db *mongo.Database, name string, validator bson.M, log *logger.Logger) error {
	existing, err := db.ListCollectionNames(ctx, bson.D{{Key: "name", Value: name}})
	if err != nil {
		return err
	}

	if len(existing) == 0 {
		log.Info("Creating collection", "collection", name)
		opts := options.CreateCollection().SetValidator(validator)
		if err := db.CreateCollection(ctx, name, opts); err != nil {
			return fmt.Errorf("failed creating %s: %w", name, err)
		}
		return nil
	}

	log.Info("Collection already exists, updating validator", "collection", name)
	command := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
	}
	if err := db.RunCommand(ctx, command).Err(); err != nil {
		log.Warn("Failed updating validator", "collection", name, "error", err)
	}
	return nil
}

func ensureIndexes(ctx context.Context, db *mongo.Database, name string, models []mongo.IndexModel, log *logger.Logger) error {
	coll := db.Collection(name)
	created, err := coll.Indexes().CreateMany(ctx, models)
	if err != nil {
		return err
	}
	log.Info("Ensured indexes", "collection", name, "indexes", created)
	return nil
}
