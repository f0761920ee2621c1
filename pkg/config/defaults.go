package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "rentora"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort     = "8080"
	DefaultLogLevel = "info"

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	// Advisory lock lifetime for booking creation. Long enough to cover the
	// duplicate check plus insert, short enough that a crashed request does
	// not block the slot for long.
	DefaultBookingLockTTL = 10 * time.Second

	// Day of the month rent payments fall due when generated in batch.
	DefaultPaymentDueDay = 5

	// Upper bound on the fire-and-forget notification side channel.
	DefaultNotifyTimeout = 5 * time.Second

	DefaultKafkaTopic    = "rentora.notifications"
	DefaultKafkaDLQTopic = "rentora.notifications.dlq"
	DefaultKafkaEnabled  = true

	DefaultPaginationLimit = 100
)
