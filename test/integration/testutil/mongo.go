package testutil

import (
	"context"
	"testing"
	"time"

	"hallbook/internal/bookings/repository"
	"hallbook/pkg/client"
	"hallbook/pkg/config"
	"hallbook/pkg/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	DefaultMongoURI     = "mongodb://localhost:27017"
	DefaultDatabaseName = "hallbook"
	ConnectionTimeout   = 10 * time.Second
)

// MongoHelper seeds catalog and identity data the bookings service only reads.
type MongoHelper struct {
	Client   *mongo.Client
	Database *mongo.Database
	DBName   string
	seeded   map[string][]primitive.ObjectID
}

func NewMongoHelper(t *testing.T, mongoURI, dbName string) *MongoHelper {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), ConnectionTimeout)
	defer cancel()

	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		t.Fatalf("failed to connect to MongoDB: %v", err)
	}
	if err := mongoClient.Ping(ctx, nil); err != nil {
		t.Fatalf("failed to ping MongoDB: %v", err)
	}

	return &MongoHelper{
		Client:   mongoClient,
		Database: mongoClient.Database(dbName),
		DBName:   dbName,
		seeded:   map[string][]primitive.ObjectID{},
	}
}

func (m *MongoHelper) Close(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := m.Client.Disconnect(ctx); err != nil {
		t.Logf("warning: failed to disconnect from MongoDB: %v", err)
	}
}

// CleanBookings empties the bookings and lock collections and removes every
// document this helper seeded.
func (m *MongoHelper) CleanBookings(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	for _, name := range []string{repository.CollectionName, repository.ResourceLockCollectionName} {
		if _, err := m.Database.Collection(name).DeleteMany(ctx, bson.M{}); err != nil {
			t.Fatalf("failed to clean collection %s: %v", name, err)
		}
	}
	for name, ids := range m.seeded {
		if len(ids) == 0 {
			continue
		}
		if _, err := m.Database.Collection(name).DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}}); err != nil {
			t.Fatalf("failed to remove seeded %s: %v", name, err)
		}
	}
	m.seeded = map[string][]primitive.ObjectID{}
}

func (m *MongoHelper) SeedResource(t *testing.T, r ResourceFixture) string {
	t.Helper()
	return m.insert(t, repository.ResourceCollectionName, r.document())
}

func (m *MongoHelper) SeedUser(t *testing.T, name string) string {
	t.Helper()
	return m.insert(t, repository.UserCollectionName, bson.M{"name": name, "username": Unique("user")})
}

// Config returns a configuration that points the bookings repositories at the
// test database, with the booking time zone fixed to UTC.
func (m *MongoHelper) Config() *config.Config {
	return &config.Config{
		MongoDatabaseName:              m.DBName,
		ReadTimeout:                    5 * time.Second,
		WriteTimeout:                   5 * time.Second,
		Location:                       time.UTC,
		LifecycleRetentionPeriodMonths: 12,
		Log:                            logger.Discard(),
		Client:                         &client.Client{Mongo: m.Client},
	}
}

// Repository returns the production bookings repository over the test database.
func (m *MongoHelper) Repository() repository.BookingRepository {
	return repository.NewMongoBookingRepository(m.Config())
}

func (m *MongoHelper) CountBookings(t *testing.T, resourceID string) int64 {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	count, err := m.Database.Collection(repository.CollectionName).CountDocuments(ctx, bson.M{"resource_id": resourceID})
	if err != nil {
		t.Fatalf("failed to count bookings: %v", err)
	}
	return count
}

func (m *MongoHelper) insert(t *testing.T, collection string, doc bson.M) string {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	id := primitive.NewObjectID()
	doc["_id"] = id
	if _, err := m.Database.Collection(collection).InsertOne(ctx, doc); err != nil {
		t.Fatalf("failed to seed %s: %v", collection, err)
	}
	m.seeded[collection] = append(m.seeded[collection], id)
	return id.Hex()
}
