package config

const (
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvRedisAddr     = "REDIS_ADDR"
	EnvRedisPassword = "REDIS_PASSWORD"
	EnvRedisDB       = "REDIS_DB"

	EnvPort               = "PORT"
	EnvLogLevel           = "LOG_LEVEL"
	EnvLogFormat          = "LOG_FORMAT"
	EnvCORSAllowedOrigins = "CORS_ALLOWED_ORIGINS"

	EnvRateLimitRPS   = "RATE_LIMIT_RPS"
	EnvRateLimitBurst = "RATE_LIMIT_BURST"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvIdempotencyTTL = "IDEMPOTENCY_TTL"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"

	EnvDefaultMaxClients = "DEFAULT_MAX_CLIENTS"
	EnvCASMaxRetries     = "CAS_MAX_RETRIES"

	EnvBookingsTopic         = "BOOKINGS_TOPIC"
	EnvBookingsDLQTopic      = "BOOKINGS_DLQ_TOPIC"
	EnvBookingsConsumerGroup = "BOOKINGS_CONSUMER_GROUP"

	EnvPresenceHeartbeat  = "PRESENCE_HEARTBEAT"
	EnvPresenceStaleAfter = "PRESENCE_STALE_AFTER"

	EnvInventoryServiceURL = "INVENTORY_SERVICE_URL"
)
