package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Storage backends accepted by STORAGE_BACKEND
const (
	StorageSQL    = "sql"
	StorageRedis  = "redis"
	StorageValkey = "valkey"
	StorageMemory = "memory"
)

// Config holds application configuration
type Config struct {
	ServerPort     string
	DatabaseType   string
	DatabasePath   string
	DatabaseURL    string
	MigrationsPath string

	StorageBackend string
	RedisURL       string
	ValkeyURL      string

	AppSecret       string
	AuthLatency     time.Duration
	StreakTimezone  string
	DefaultLanguage string
	StateIdleTTL    time.Duration
	AuthRateLimit   int
	AuthRateWindow  time.Duration

	AWSRegion    string
	SESFromEmail string
	SESFromName  string
	AppBaseURL   string

	GoogleClientID       string
	GoogleClientSecret   string
	AppleClientID        string
	AppleClientSecret    string
	OAuthRedirectBaseURL string

	Debug bool
}

// Load reads configuration from environment variables with sensible defaults.
// A .env file in the working directory is loaded first when present.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: failed to load .env file: %v", err)
	}

	return &Config{
		ServerPort:     getEnv("PORT", "8080"),
		DatabaseType:   strings.ToLower(getEnv("DB_TYPE", "sqlite")),
		DatabasePath:   getEnv("DB_PATH", "./balagh.db"),
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		MigrationsPath: getEnv("MIGRATIONS_PATH", "./migrations"),

		StorageBackend: strings.ToLower(getEnv("STORAGE_BACKEND", StorageSQL)),
		RedisURL:       getEnv("REDIS_URL", "redis://localhost:6379/0"),
		ValkeyURL:      getEnv("VALKEY_URL", "valkey://localhost:6379"),

		AppSecret:       getEnv("APP_SECRET", ""),
		AuthLatency:     getEnvDuration("AUTH_LATENCY", 500*time.Millisecond),
		StreakTimezone:  getEnv("STREAK_TIMEZONE", "Local"),
		DefaultLanguage: getEnv("DEFAULT_LANGUAGE", "ar"),
		StateIdleTTL:    getEnvDuration("STATE_IDLE_TTL", 30*time.Minute),
		AuthRateLimit:   getEnvInt("AUTH_RATE_LIMIT", 10),
		AuthRateWindow:  getEnvDuration("AUTH_RATE_WINDOW", time.Minute),

		AWSRegion:    getEnv("AWS_REGION", "us-east-1"),
		SESFromEmail: getEnv("SES_FROM_EMAIL", ""),
		SESFromName:  getEnv("SES_FROM_NAME", "Balagh"),
		AppBaseURL:   getEnv("APP_BASE_URL", "http://localhost:8080"),

		GoogleClientID:       getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret:   getEnv("GOOGLE_CLIENT_SECRET", ""),
		AppleClientID:        getEnv("APPLE_CLIENT_ID", ""),
		AppleClientSecret:    getEnv("APPLE_CLIENT_SECRET", ""),
		OAuthRedirectBaseURL: getEnv("OAUTH_REDIRECT_BASE_URL", "http://localhost:8080"),

		Debug: getEnvBool("DEBUG", false),
	}
}

// Location resolves StreakTimezone, falling back to the process local zone
func (c *Config) Location() *time.Location {
	if c.StreakTimezone == "" || strings.EqualFold(c.StreakTimezone, "local") {
		return time.Local
	}
	loc, err := time.LoadLocation(c.StreakTimezone)
	if err != nil {
		log.Printf("Warning: unknown STREAK_TIMEZONE %q, using local time: %v", c.StreakTimezone, err)
		return time.Local
	}
	return loc
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Warning: invalid integer for %s: %q", key, value)
		return defaultValue
	}
	return n
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return b
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		log.Printf("Warning: invalid duration for %s: %q", key, value)
		return defaultValue
	}
	return d
}
