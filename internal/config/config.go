package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port          string
	Env           string
	LogLevel      string
	PublicBaseURL string

	// Remote clinic API (the only upstream this service talks to)
	ClinicAPIBaseURL string
	ClinicAPITimeout time.Duration

	// Real-time event feed exposed by the clinic API
	EventFeedURL            string
	EventFeedReconnectBase  time.Duration
	EventFeedReconnectLimit time.Duration

	// Queue polling and reminders
	QueuePollInterval time.Duration
	QueuePollJitter   time.Duration
	ReminderInterval  time.Duration
	ReminderLookahead time.Duration
	MinutesPerPatient int

	// Session storage
	RedisAddr           string
	RedisPassword       string
	RedisTLS            bool
	SessionTTL          time.Duration
	SessionCookieName   string
	SessionSigningKey   string
	SessionCookieSecure bool

	CORSAllowedOrigins []string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:          getEnv("PORT", "8080"),
		Env:           getEnv("ENV", "development"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		PublicBaseURL: getEnv("PUBLIC_BASE_URL", ""),

		ClinicAPIBaseURL: getEnv("CLINIC_API_BASE_URL", "https://pediatricsbackend-4hii.onrender.com"),
		ClinicAPITimeout: getEnvAsDuration("CLINIC_API_TIMEOUT", 15*time.Second),

		EventFeedURL:            getEnv("EVENT_FEED_URL", ""),
		EventFeedReconnectBase:  getEnvAsDuration("EVENT_FEED_RECONNECT_BASE", 2*time.Second),
		EventFeedReconnectLimit: getEnvAsDuration("EVENT_FEED_RECONNECT_LIMIT", time.Minute),

		QueuePollInterval: getEnvAsDuration("QUEUE_POLL_INTERVAL", 30*time.Second),
		QueuePollJitter:   getEnvAsDuration("QUEUE_POLL_JITTER", 3*time.Second),
		ReminderInterval:  getEnvAsDuration("REMINDER_INTERVAL", 60*time.Second),
		ReminderLookahead: getEnvAsDuration("REMINDER_LOOKAHEAD", 20*time.Minute),
		MinutesPerPatient: getEnvAsInt("MINUTES_PER_PATIENT", 15),

		RedisAddr:           getEnv("REDIS_ADDR", "redis:6379"),
		RedisPassword:       getEnv("REDIS_PASSWORD", ""),
		RedisTLS:            getEnvAsBool("REDIS_TLS", false),
		SessionTTL:          getEnvAsDuration("SESSION_TTL", 30*24*time.Hour),
		SessionCookieName:   getEnv("SESSION_COOKIE_NAME", "portal_session"),
		SessionSigningKey:   getEnv("SESSION_SIGNING_KEY", ""),
		SessionCookieSecure: getEnvAsBool("SESSION_COOKIE_SECURE", true),

		CORSAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", nil),
	}
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

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
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

func getEnvAsList(key string, defaultValue []string) []string {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
