package config

const (
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvPort     = "PORT"
	EnvLogLevel = "LOG_LEVEL"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvIdempotencyTTL = "IDEMPOTENCY_TTL"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"

	EnvBookingLockTTL  = "BOOKING_LOCK_TTL"
	EnvPaymentDueDay   = "PAYMENT_DUE_DAY"
	EnvNotifyTimeout   = "NOTIFY_TIMEOUT"
	EnvKafkaTopic      = "NOTIFICATIONS_TOPIC"
	EnvKafkaDLQTopic   = "NOTIFICATIONS_DLQ_TOPIC"
	EnvKafkaEnabled    = "KAFKA_ENABLED"
)
