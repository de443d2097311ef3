package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "billboards"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultRedisAddr = "localhost:6379"
	DefaultRedisDB   = 0

	DefaultPort               = "8080"
	DefaultLogLevel           = "info"
	DefaultCORSAllowedOrigins = "*"

	DefaultRateLimitRPS   = 10.0
	DefaultRateLimitBurst = 20

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultPaginationLimit = 100

	DefaultMaxClients    = 15
	DefaultCASMaxRetries = 8

	DefaultBookingsTopic         = "billboard-bookings"
	DefaultBookingsDLQTopic      = "billboard-bookings-dlq"
	DefaultBookingsConsumerGroup = "inventory-booking-projector"

	DefaultPresenceHeartbeat  = 10 * time.Second
	DefaultPresenceStaleAfter = 30 * time.Second

	DefaultInventoryServiceURL = "http://localhost:8081"
)
