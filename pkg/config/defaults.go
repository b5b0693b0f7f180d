package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "hallbook"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort     = "8080"
	DefaultLogLevel = "info"

	DefaultRateLimitRequests = 30
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultBookingTimezone        = "UTC"
	DefaultBookingMaxDurationDays = 30
	DefaultBookingMaxAttendees    = 10000
	DefaultBookingCreateAttempts  = 3
	DefaultBookingRetryBackoff    = 50 * time.Millisecond
	DefaultBookingLockTTL         = 10 * time.Second

	DefaultLifecycleEnabled               = true
	DefaultLifecycleSweepInterval         = 1 * time.Hour
	DefaultLifecycleRetentionInterval     = 24 * time.Hour
	DefaultLifecycleRetentionPeriodMonths = 12

	DefaultNotificationsEnabled = true
	DefaultNotificationTimeout  = 5 * time.Second
)
