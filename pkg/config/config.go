package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"time"
	_ "time/tzdata"

	"hallbook/pkg/client"
	"hallbook/pkg/logger"

	"github.com/joho/godotenv"
)

type Config struct {
	MongoURI          string
	MongoDatabaseName string
	MongoConnTimeout  time.Duration

	Port string

	RateLimitRequests int
	RateLimitWindow   time.Duration

	RequestTimeout time.Duration
	IdempotencyTTL time.Duration
	MaxRequestSize int

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	BookingTimezone        string
	Location               *time.Location
	MaxBookingDurationDays int
	MaxAttendees           int
	CreateMaxAttempts      int
	RetryBackoff           time.Duration
	LockTTL                time.Duration

	LifecycleEnabled               bool
	LifecycleSweepInterval         time.Duration
	LifecycleRetentionInterval     time.Duration
	LifecycleRetentionPeriodMonths int

	NotificationsEnabled bool
	NotificationTimeout  time.Duration

	Log    *logger.Logger
	Client *client.Client
}

// Load reads configuration from the environment. A .env file in the working
// directory is honoured when present; real environment variables win over it.
func Load(serviceName string) *Config {
	_ = godotenv.Load()

	cfg := &Config{
		MongoURI:          getEnvStr(EnvMongoURI, DefaultMongoURI),
		MongoDatabaseName: getEnvStr(EnvMongoDatabaseName, DefaultMongoDatabaseName),
		MongoConnTimeout:  getEnvDuration(EnvMongoConnTimeout, DefaultMongoConnTimeout),

		Port: getEnvStr(EnvPort, DefaultPort),

		RateLimitRequests: getEnvNum(EnvRateLimitRequests, DefaultRateLimitRequests),
		RateLimitWindow:   getEnvDuration(EnvRateLimitWindow, DefaultRateLimitWindow),

		RequestTimeout: getEnvDuration(EnvRequestTimeout, DefaultRequestTimeout),
		IdempotencyTTL: getEnvDuration(EnvIdempotencyTTL, DefaultIdempotencyTTL),
		MaxRequestSize: getEnvNum(EnvMaxRequestSize, DefaultMaxRequestSize),

		ReadTimeout:     getEnvDuration(EnvReadTimeout, DefaultReadTimeout),
		WriteTimeout:    getEnvDuration(EnvWriteTimeout, DefaultWriteTimeout),
		IdleTimeout:     getEnvDuration(EnvIdleTimeout, DefaultIdleTimeout),
		ShutdownTimeout: getEnvDuration(EnvShutdownTimeout, DefaultShutdownTimeout),

		BookingTimezone:        getEnvStr(EnvBookingTimezone, DefaultBookingTimezone),
		MaxBookingDurationDays: getEnvNum(EnvBookingMaxDurationDays, DefaultBookingMaxDurationDays),
		MaxAttendees:           getEnvNum(EnvBookingMaxAttendees, DefaultBookingMaxAttendees),
		CreateMaxAttempts:      getEnvNum(EnvBookingCreateAttempts, DefaultBookingCreateAttempts),
		RetryBackoff:           getEnvDuration(EnvBookingRetryBackoff, DefaultBookingRetryBackoff),
		LockTTL:                getEnvDuration(EnvBookingLockTTL, DefaultBookingLockTTL),

		LifecycleEnabled:               getEnvBool(EnvLifecycleEnabled, DefaultLifecycleEnabled),
		LifecycleSweepInterval:         getEnvDuration(EnvLifecycleSweepInterval, DefaultLifecycleSweepInterval),
		LifecycleRetentionInterval:     getEnvDuration(EnvLifecycleRetentionInterval, DefaultLifecycleRetentionInterval),
		LifecycleRetentionPeriodMonths: getEnvNum(EnvLifecycleRetentionPeriodMonths, DefaultLifecycleRetentionPeriodMonths),

		NotificationsEnabled: getEnvBool(EnvNotificationsEnabled, DefaultNotificationsEnabled),
		NotificationTimeout:  getEnvDuration(EnvNotificationTimeout, DefaultNotificationTimeout),

		Log: logger.New(logger.Config{
			Level:     getEnvStr(EnvLogLevel, DefaultLogLevel),
			Format:    logger.JSON,
			AddSource: true,
			Service:   serviceName,
		}),
		Client: client.NewClient(),
	}

	err := cfg.Validate()
	if err != nil {
		cfg.Log.Fatal(err.Error())
	}
	cfg.LogConfiguration()
	return cfg
}

func (cfg *Config) SetMongo() {
	cfg.Client.SetMongo(cfg.Log, cfg.MongoURI, cfg.MongoConnTimeout)
}

// Validate checks every setting and resolves the booking time zone into Location.
func (cfg *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(cfg.Port); err != nil || port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("Port must be between 1 and 65535, got: %s", cfg.Port))
	}

	if cfg.MongoURI == "" {
		errors = append(errors, "MongoURI cannot be empty")
	} else if len(cfg.MongoURI) < 10 || !regexp.MustCompile(`^mongodb(\+srv)?://`).MatchString(cfg.MongoURI) {
		errors = append(errors, fmt.Sprintf("MongoURI must start with 'mongodb://' or 'mongodb+srv://', got: %s", redactMongoURI(cfg.MongoURI)))
	}

	if cfg.MongoDatabaseName == "" {
		errors = append(errors, "MongoDatabaseName cannot be empty")
	}

	positiveDurations := []struct {
		name  string
		value time.Duration
	}{
		{"MongoConnTimeout", cfg.MongoConnTimeout},
		{"RateLimitWindow", cfg.RateLimitWindow},
		{"RequestTimeout", cfg.RequestTimeout},
		{"IdempotencyTTL", cfg.IdempotencyTTL},
		{"ReadTimeout", cfg.ReadTimeout},
		{"WriteTimeout", cfg.WriteTimeout},
		{"IdleTimeout", cfg.IdleTimeout},
		{"ShutdownTimeout", cfg.ShutdownTimeout},
		{"LockTTL", cfg.LockTTL},
		{"LifecycleSweepInterval", cfg.LifecycleSweepInterval},
		{"LifecycleRetentionInterval", cfg.LifecycleRetentionInterval},
		{"NotificationTimeout", cfg.NotificationTimeout},
	}
	for _, d := range positiveDurations {
		if d.value <= 0 {
			errors = append(errors, fmt.Sprintf("%s must be positive, got: %s", d.name, d.value))
		}
	}
	if cfg.RetryBackoff < 0 {
		errors = append(errors, fmt.Sprintf("RetryBackoff cannot be negative, got: %s", cfg.RetryBackoff))
	}

	if cfg.RateLimitRequests <= 0 {
		errors = append(errors, fmt.Sprintf("RateLimitRequests must be positive, got: %d", cfg.RateLimitRequests))
	}
	if cfg.MaxRequestSize <= 0 {
		errors = append(errors, fmt.Sprintf("MaxRequestSize must be positive, got: %d", cfg.MaxRequestSize))
	}

	loc, err := time.LoadLocation(cfg.BookingTimezone)
	if err != nil {
		errors = append(errors, fmt.Sprintf("BookingTimezone must be a valid IANA time zone, got: %s", cfg.BookingTimezone))
	} else {
		cfg.Location = loc
	}

	if cfg.MaxBookingDurationDays < 0 {
		errors = append(errors, fmt.Sprintf("MaxBookingDurationDays cannot be negative, got: %d", cfg.MaxBookingDurationDays))
	}
	if cfg.MaxAttendees < 1 {
		errors = append(errors, fmt.Sprintf("MaxAttendees must be at least 1, got: %d", cfg.MaxAttendees))
	}
	if cfg.CreateMaxAttempts < 1 {
		errors = append(errors, fmt.Sprintf("CreateMaxAttempts must be at least 1, got: %d", cfg.CreateMaxAttempts))
	}
	if cfg.LifecycleRetentionPeriodMonths < 1 {
		errors = append(errors, fmt.Sprintf("LifecycleRetentionPeriodMonths must be at least 1, got: %d", cfg.LifecycleRetentionPeriodMonths))
	}

	if len(errors) > 0 {
		errMsg := "Configuration validation failed:\n"
		for i, err := range errors {
			errMsg += fmt.Sprintf("  %d. %s\n", i+1, err)
		}
		return fmt.Errorf("%s", errMsg)
	}

	return nil
}

func (cfg *Config) LogConfiguration() {
	cfg.Log.Info("Configuration loaded successfully",
		"mongo_uri", redactMongoURI(cfg.MongoURI),
		"mongo_database", cfg.MongoDatabaseName,
		"mongo_conn_timeout", cfg.MongoConnTimeout,
		"port", cfg.Port,
		"rate_limit_requests", cfg.RateLimitRequests,
		"rate_limit_window", cfg.RateLimitWindow,
		"request_timeout", cfg.RequestTimeout,
		"idempotency_ttl", cfg.IdempotencyTTL,
		"max_request_size", cfg.MaxRequestSize,
		"read_timeout", cfg.ReadTimeout,
		"write_timeout", cfg.WriteTimeout,
		"idle_timeout", cfg.IdleTimeout,
		"shutdown_timeout", cfg.ShutdownTimeout,
		"booking_timezone", cfg.BookingTimezone,
		"max_booking_duration_days", cfg.MaxBookingDurationDays,
		"max_attendees", cfg.MaxAttendees,
		"create_max_attempts", cfg.CreateMaxAttempts,
		"retry_backoff", cfg.RetryBackoff,
		"lock_ttl", cfg.LockTTL,
		"lifecycle_enabled", cfg.LifecycleEnabled,
		"lifecycle_sweep_interval", cfg.LifecycleSweepInterval,
		"lifecycle_retention_interval", cfg.LifecycleRetentionInterval,
		"lifecycle_retention_period_months", cfg.LifecycleRetentionPeriodMonths,
		"notifications_enabled", cfg.NotificationsEnabled,
		"notification_timeout", cfg.NotificationTimeout,
	)
}

func redactMongoURI(uri string) string {
	credentialRegex := regexp.MustCompile(`(mongodb(\+srv)?://)[^:]+:[^@]+@`)
	return credentialRegex.ReplaceAllString(uri, "${1}***:***@")
}

func getEnvStr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvNum(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func (cfg *Config) GracefulShutdown() {
	cfg.Client.GracefulShutdown(cfg.Log, cfg.ShutdownTimeout)
}
