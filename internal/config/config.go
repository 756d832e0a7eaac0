package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Historical 1RM store backends
const (
	StoreMongo  = "mongo"
	StoreRedis  = "redis"
	StoreMemory = "memory"
)

// Config holds all application configuration
type Config struct {
	Server        ServerConfig
	MongoDB       MongoDBConfig
	Redis         RedisConfig
	Historical1RM Historical1RMConfig
	OTEL          OTELConfig
	Log           LogConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port          string
	MaxBodySizeMB int64
	// IdempotencyTTL keeps X-Correlation-ID replays in Redis; 0 disables it
	IdempotencyTTL time.Duration
}

// MongoDBConfig holds MongoDB connection configuration
type MongoDBConfig struct {
	URI      string
	Database string
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// Historical1RMConfig selects where the derived 1RM index document lives
type Historical1RMConfig struct {
	Store            string // mongo, redis or memory
	Key              string // document _id / redis key
	BootstrapOnStart bool
}

// OTELConfig holds OpenTelemetry exporter configuration
type OTELConfig struct {
	Enabled        bool
	Endpoint       string
	URLPathPrefix  string
	Insecure       bool
	SampleRatio    float64
	InstanceID     string
	Token          string
	ServiceName    string
	ServiceVersion string
	Environment    string
}

// LogConfig holds logrus configuration
type LogConfig struct {
	Level      string
	File       string
	ToStdout   bool
	FormatJSON bool
}

// Load reads configuration from environment variables
// It attempts to load from .env file first, then falls back to system env vars
func Load() (*Config, error) {
	// Try to load .env file (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:           getEnv("PORT", "8080"),
			MaxBodySizeMB:  getEnvAsInt64("MAX_BODY_SIZE_MB", 2),
			IdempotencyTTL: time.Duration(getEnvAsInt64("IDEMPOTENCY_TTL_MINUTES", 24*60)) * time.Minute,
		},
		MongoDB: MongoDBConfig{
			URI:      getEnv("MONGODB_URI", "mongodb://localhost:27017"),
			Database: getEnv("MONGODB_DATABASE", "liftlog"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       int(getEnvAsInt64("REDIS_DB", 0)),
		},
		Historical1RM: Historical1RMConfig{
			Store:            getEnv("HISTORICAL_1RM_STORE", StoreMongo),
			Key:              getEnv("HISTORICAL_1RM_KEY", "historical_1rm"),
			BootstrapOnStart: getEnvAsBool("HISTORICAL_1RM_BOOTSTRAP_ON_START", false),
		},
		OTEL: OTELConfig{
			Enabled:        getEnvAsBool("OTEL_ENABLED", false),
			Endpoint:       getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			URLPathPrefix:  getEnv("OTEL_URL_PATH_PREFIX", "/otlp"),
			Insecure:       getEnvAsBool("OTEL_INSECURE", false),
			SampleRatio:    getEnvAsFloat("OTEL_SAMPLE_RATIO", 1),
			InstanceID:     getEnv("OTEL_INSTANCE_ID", ""),
			Token:          getEnv("OTEL_TOKEN", ""),
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "liftlog-api"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "dev"),
			Environment:    getEnv("OTEL_ENVIRONMENT", "development"),
		},
		Log: LogConfig{
			Level:      getEnv("LOG_LEVEL", "info"),
			File:       getEnv("LOG_FILE", ""),
			ToStdout:   getEnvAsBool("LOG_TO_STDOUT", true),
			FormatJSON: getEnvAsBool("LOG_FORMAT_JSON", false),
		},
	}

	// Validate required fields
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration is present
func (c *Config) Validate() error {
	switch c.Historical1RM.Store {
	case StoreMongo, StoreRedis, StoreMemory:
	default:
		return fmt.Errorf("HISTORICAL_1RM_STORE must be one of %s, %s, %s (got %q)", StoreMongo, StoreRedis, StoreMemory, c.Historical1RM.Store)
	}
	if c.Historical1RM.Key == "" {
		return fmt.Errorf("HISTORICAL_1RM_KEY is required")
	}
	if c.OTEL.Enabled && c.OTEL.Endpoint == "" {
		return fmt.Errorf("OTEL_EXPORTER_OTLP_ENDPOINT is required when OTEL_ENABLED is set")
	}
	if c.OTEL.Enabled && (c.OTEL.SampleRatio <= 0 || c.OTEL.SampleRatio > 1) {
		return fmt.Errorf("OTEL_SAMPLE_RATIO must be in (0, 1] (got %v)", c.OTEL.SampleRatio)
	}
	return nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt64 retrieves an environment variable as int64 or returns a default value
func getEnvAsInt64(key string, defaultValue int64) int64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseInt(valueStr, 10, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsBool retrieves an environment variable as bool or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsFloat retrieves an environment variable as float64 or returns a default value
func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}
