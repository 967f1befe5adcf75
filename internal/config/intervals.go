package config

import "time"

// Worker intervals
const (
	// RideFlushInterval defines how often dirty rides are written to PostgreSQL
	RideFlushInterval = 30 * time.Second

	// RedisPingTimeout bounds the connection check at startup
	RedisPingTimeout = 5 * time.Second
)
