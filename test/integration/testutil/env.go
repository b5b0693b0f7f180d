package testutil

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"hallbook/pkg/client"
)

const DefaultHealthCheckTimeout = 30 * time.Second

type TestEnv struct {
	MongoURI     string
	DatabaseName string
	ServerURL    string
}

// NewTestEnv skips the calling test unless TEST_SERVER_URL points at a running
// bookings service.
func NewTestEnv(t *testing.T) *TestEnv {
	t.Helper()

	serverURL := os.Getenv("TEST_SERVER_URL")
	if serverURL == "" {
		t.Skip("TEST_SERVER_URL not set, skipping integration tests")
	}

	return &TestEnv{
		MongoURI:     getEnv("TEST_MONGO_URI", DefaultMongoURI),
		DatabaseName: getEnv("TEST_DB_NAME", DefaultDatabaseName),
		ServerURL:    serverURL,
	}
}

func (e *TestEnv) Setup(t *testing.T) *MongoHelper {
	t.Helper()

	mongo := NewMongoHelper(t, e.MongoURI, e.DatabaseName)
	mongo.CleanBookings(t)

	ctx, cancel := context.WithTimeout(context.Background(), DefaultHealthCheckTimeout)
	defer cancel()
	if err := client.NewBookingClient(e.ServerURL, "").WaitForHealthy(ctx, DefaultHealthCheckTimeout); err != nil {
		t.Fatalf("bookings service unavailable at %s: %v", e.ServerURL, err)
	}

	t.Cleanup(func() {
		mongo.CleanBookings(t)
		mongo.Close(t)
	})
	return mongo
}

// ClientFor returns an API client acting as userID.
func (e *TestEnv) ClientFor(userID string) *client.BookingClient {
	return client.NewBookingClient(e.ServerURL, userID)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func Day(offset int) string {
	return time.Now().AddDate(0, 0, offset).Format("2006-01-02")
}

func Unique(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}
