package config

import "time"

const (
	BackendMongo  = "mongo"
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

const (
	DefaultStorageBackend = BackendMemory

	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "classroom_booking"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultRedisURL = "redis://localhost:6379/0"

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

	DefaultLockTTL           = 10 * time.Second
	DefaultLockWaitTimeout   = 2 * time.Second
	DefaultLockRetryInterval = 25 * time.Millisecond

	DefaultRoomCacheTTL = 30 * time.Second

	DefaultKafkaEnabled      = false
	DefaultKafkaBookingTopic = "booking-events"
	DefaultKafkaDLQTopic     = ""
)
