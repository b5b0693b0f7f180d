package kafka_config

import "time"

const (
	DefaultKafkaBrokers = "localhost:9092"
	DefaultClientID     = "hallbook"

	DefaultBookingEventsTopic = "booking-events"
	DefaultBookingEventsDLQ   = "dlq-booking-events"
	DefaultNotificationsGroup = "booking-notifications"

	// Notify blocks until the broker acknowledges, bounded by NOTIFICATION_TIMEOUT.
	DefaultProducerMaxAttempts  = 3
	DefaultProducerBatchTimeout = 10 * time.Millisecond
	DefaultProducerRequireAcks  = -1
	DefaultProducerCompression  = "snappy"
	DefaultProducerAsync        = false

	// A new notifications group starts from the oldest retained event, so
	// confirmations published before the group first joined are still delivered.
	DefaultConsumerStartOffset       = -2
	DefaultConsumerMinBytes          = 1
	DefaultConsumerMaxBytes          = 10 * 1024 * 1024 // 10MB
	DefaultConsumerMaxWait           = 500 * time.Millisecond
	DefaultConsumerCommitInterval    = 1 * time.Second
	DefaultConsumerHeartbeatInterval = 3 * time.Second
	DefaultConsumerSessionTimeout    = 10 * time.Second
	DefaultConsumerRebalanceTimeout  = 60 * time.Second
	DefaultConsumerMaxRetries        = 3

	DefaultEnableMiddleware = true
)
