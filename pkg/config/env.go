package config

const (
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvPort     = "PORT"
	EnvLogLevel = "LOG_LEVEL"

	EnvRateLimitRequests = "RATE_LIMIT_REQUESTS"
	EnvRateLimitWindow   = "RATE_LIMIT_WINDOW"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvIdempotencyTTL = "IDEMPOTENCY_TTL"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"

	EnvBookingTimezone        = "BOOKING_TIMEZONE"
	EnvBookingMaxDurationDays = "BOOKING_MAX_DURATION_DAYS"
	EnvBookingMaxAttendees    = "BOOKING_MAX_ATTENDEES"
	EnvBookingCreateAttempts  = "BOOKING_CREATE_MAX_ATTEMPTS"
	EnvBookingRetryBackoff    = "BOOKING_RETRY_BACKOFF"
	EnvBookingLockTTL         = "BOOKING_LOCK_TTL"

	EnvLifecycleEnabled               = "LIFECYCLE_ENABLED"
	EnvLifecycleSweepInterval         = "LIFECYCLE_SWEEP_INTERVAL"
	EnvLifecycleRetentionInterval     = "LIFECYCLE_RETENTION_INTERVAL"
	EnvLifecycleRetentionPeriodMonths = "LIFECYCLE_RETENTION_PERIOD_MONTHS"

	EnvNotificationsEnabled = "NOTIFICATIONS_ENABLED"
	EnvNotificationTimeout  = "NOTIFICATION_TIMEOUT"
)
