package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration. It is constructed once at startup
// and injected; nothing reads the process environment after Load returns.
type Config struct {
	Port          string
	Env           string
	LogLevel      string
	PublicBaseURL string
	SiteName      string

	DatabaseURL string

	RedisAddr     string
	RedisPassword string

	// Rate limiting for public lead submission endpoints.
	RateLimitWindow time.Duration
	RateLimitMax    int

	// Admin auth.
	AdminJWTSecret string
	SessionTTL     time.Duration

	// Email notification transport. Provider is "sendgrid", "ses", or "none".
	EmailProvider     string
	SendGridAPIKey    string
	SendGridFromEmail string
	SendGridFromName  string
	SESFromEmail      string
	SESFromName       string
	NotifyToEmail     string
	NotifyQueueSize   int
	NotifySendTimeout time.Duration

	// Object storage for property images (S3-compatible).
	StorageEndpoint  string
	StorageRegion    string
	StorageBucket    string
	StorageAccessKey string
	StorageSecretKey string

	AWSRegion string

	CORSAllowedOrigins []string
}

// Load reads configuration from environment variables.
func Load() *Config {
	return &Config{
		Port:          getEnv("PORT", "8080"),
		Env:           getEnv("ENV", "development"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		PublicBaseURL: getEnv("PUBLIC_BASE_URL", "http://localhost:8080"),
		SiteName:      getEnv("SITE_NAME", "Industrial Realty Partners"),

		DatabaseURL: getEnv("DATABASE_URL", ""),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),

		RateLimitWindow: getEnvAsDuration("RATE_LIMIT_WINDOW", time.Minute),
		RateLimitMax:    getEnvAsInt("RATE_LIMIT_MAX", 5),

		AdminJWTSecret: getEnv("ADMIN_JWT_SECRET", ""),
		SessionTTL:     getEnvAsDuration("SESSION_TTL", 7*24*time.Hour),

		EmailProvider:     strings.ToLower(strings.TrimSpace(getEnv("EMAIL_PROVIDER", "none"))),
		SendGridAPIKey:    getEnv("SENDGRID_API_KEY", ""),
		SendGridFromEmail: getEnv("SENDGRID_FROM_EMAIL", ""),
		SendGridFromName:  getEnv("SENDGRID_FROM_NAME", ""),
		SESFromEmail:      getEnv("SES_FROM_EMAIL", ""),
		SESFromName:       getEnv("SES_FROM_NAME", ""),
		NotifyToEmail:     getEnv("NOTIFY_TO_EMAIL", ""),
		NotifyQueueSize:   getEnvAsInt("NOTIFY_QUEUE_SIZE", 64),
		NotifySendTimeout: getEnvAsDuration("NOTIFY_SEND_TIMEOUT", 10*time.Second),

		StorageEndpoint:  getEnv("STORAGE_ENDPOINT", ""),
		StorageRegion:    getEnv("STORAGE_REGION", "us-east-1"),
		StorageBucket:    getEnv("STORAGE_BUCKET", ""),
		StorageAccessKey: getEnv("STORAGE_ACCESS_KEY", ""),
		StorageSecretKey: getEnv("STORAGE_SECRET_KEY", ""),

		AWSRegion: getEnv("AWS_REGION", "us-east-1"),

		CORSAllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS", nil),
	}
}

// IsProduction reports whether the service runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	parts := strings.Split(valueStr, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
