package config

import "time"

// Expansion defaults.
const (
	DefaultMaxCombinations = 10_000_000
	DefaultProgress        = true
	DefaultClassKey        = "@class"
)

// Output defaults.
const (
	DefaultOutputFormat = "table"
	DefaultOutputLimit  = 50
)

// Logging defaults.
const (
	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"
)

// Telemetry defaults.
const (
	DefaultSampleRatio = 1.0
	DefaultEnvironment = "development"
)

// Server defaults.
const (
	DefaultHost            = "127.0.0.1"
	DefaultPort            = 8080
	DefaultReadTimeout     = 30 * time.Second
	DefaultWriteTimeout    = 30 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 10 * time.Second
	DefaultCacheSize       = 1024
	DefaultRateBurst       = 50
)
