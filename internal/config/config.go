package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// DefaultEnvFile is read by Load when present
const DefaultEnvFile = ".env"

// Config holds application configuration
type Config struct {
	DatabaseURL        string
	ServerPort         string
	FrontendURL        string
	EnableHSTS         bool
	RedisURL           string
	RabbitMQURL        string
	RabbitMQPrefetch   int
	WorkerDebugMode    bool
	ServerDebugMode    bool
	OTELEnabled        bool
	OTELEndpoint       string
	RateLimit          string
	ReminderCron       string
	ReminderHorizon    time.Duration
	ReminderGrace      time.Duration
	DefaultTimezone    string
	ExpansionWorkers   int
	MaxExpansionWindow time.Duration
}

// Load loads configuration from the environment, after applying DefaultEnvFile if it exists
func Load() (*Config, error) {
	return LoadFile(DefaultEnvFile)
}

// LoadWorker loads configuration for the worker binary, which also needs RabbitMQ
func LoadWorker() (*Config, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}
	if cfg.RabbitMQURL == "" {
		return nil, fmt.Errorf("RABBITMQ_URL is required for reminder jobs")
	}
	return cfg, nil
}

// LoadFile loads configuration from the environment. Variables from envFile never override
// variables that are already set. A missing envFile is not an error.
func LoadFile(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	cfg := &Config{
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		ServerPort:         getEnv("SERVER_PORT", "8080"),
		FrontendURL:        getEnv("FRONTEND_URL", "http://localhost:3000"),
		EnableHSTS:         getEnvBool("ENABLE_HSTS", false),
		RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379/0"),
		RabbitMQURL:        getEnv("RABBITMQ_URL", ""),
		RabbitMQPrefetch:   getEnvInt("RABBITMQ_PREFETCH", 1),
		WorkerDebugMode:    getEnvBool("WORKER_DEBUG_MODE", false),
		ServerDebugMode:    getEnvBool("SERVER_DEBUG_MODE", false),
		OTELEnabled:        getEnvBool("OTEL_ENABLED", false),
		OTELEndpoint:       getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		RateLimit:          getEnv("RATE_LIMIT", "5-S"),
		ReminderCron:       getEnv("REMINDER_CRON", "@every 1m"),
		ReminderHorizon:    getEnvDuration("REMINDER_HORIZON", 24*time.Hour),
		ReminderGrace:      getEnvDuration("REMINDER_GRACE", 15*time.Minute),
		DefaultTimezone:    getEnv("DEFAULT_TIMEZONE", "UTC"),
		ExpansionWorkers:   getEnvInt("EXPANSION_WORKERS", 4),
		MaxExpansionWindow: getEnvDuration("MAX_EXPANSION_WINDOW", 17568*time.Hour),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if _, err := time.LoadLocation(cfg.DefaultTimezone); err != nil {
		return nil, fmt.Errorf("DEFAULT_TIMEZONE %q is not a valid IANA timezone: %w", cfg.DefaultTimezone, err)
	}
	if cfg.ExpansionWorkers < 1 {
		cfg.ExpansionWorkers = 1
	}
	if cfg.RabbitMQPrefetch < 1 {
		cfg.RabbitMQPrefetch = 1
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil && d > 0 {
			return d
		}
	}
	return defaultValue
}
