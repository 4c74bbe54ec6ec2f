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
	DatabaseURL   string
	RedisAddr     string
	RedisPassword string
	RedisTLS      bool

	// Booking wizard draft persistence
	DraftStore  string
	DraftTTL    time.Duration
	BadgerPath  string
	DraftsTable string

	// Booking wizard commit defaults
	PlaceholderClinicID       string
	DefaultAppointmentMinutes int
	WizardLocale              string
	ClinicTimezone            string

	// HTTP surface
	CORSAllowedOrigins   []string
	WizardRateLimitRPS   float64
	WizardRateLimitBurst int

	// AWS (DynamoDB drafts, SES email, SQS events)
	AWSRegion           string
	AWSAccessKeyID      string
	AWSSecretAccessKey  string
	AWSEndpointOverride string

	// Confirmation email
	EmailProvider    string
	SendGridAPIKey   string
	EmailFromAddress string
	EmailFromName    string

	// Appointment events
	AppointmentEventsQueueURL string
	OutboxPollInterval        time.Duration
	OutboxMaxAttempts         int
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:          getEnv("PORT", "8080"),
		Env:           getEnv("ENV", "development"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		DatabaseURL:   getEnv("DATABASE_URL", ""),
		RedisAddr:     getEnv("REDIS_ADDR", "redis:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisTLS:      getEnvAsBool("REDIS_TLS", false),

		DraftStore:  strings.ToLower(strings.TrimSpace(getEnv("DRAFT_STORE", "redis"))),
		DraftTTL:    getEnvAsDuration("DRAFT_TTL", 7*24*time.Hour),
		BadgerPath:  getEnv("BADGER_PATH", "/tmp/booking-wizard-drafts"),
		DraftsTable: getEnv("DRAFTS_TABLE", "booking_wizard_drafts"),

		PlaceholderClinicID:       getEnv("PLACEHOLDER_CLINIC_ID", "00000000-0000-0000-0000-000000000001"),
		DefaultAppointmentMinutes: getEnvAsInt("DEFAULT_APPOINTMENT_MINUTES", 60),
		WizardLocale:              getEnv("WIZARD_LOCALE", "en-US"),
		ClinicTimezone:            getEnv("CLINIC_TIMEZONE", "UTC"),

		CORSAllowedOrigins:   getEnvAsList("CORS_ALLOWED_ORIGINS"),
		WizardRateLimitRPS:   getEnvAsFloat("WIZARD_RATE_LIMIT_RPS", 10),
		WizardRateLimitBurst: getEnvAsInt("WIZARD_RATE_LIMIT_BURST", 20),

		AWSRegion:           getEnv("AWS_REGION", "us-east-1"),
		AWSAccessKeyID:      getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:  getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSEndpointOverride: getEnv("AWS_ENDPOINT_OVERRIDE", ""),

		EmailProvider:    strings.ToLower(strings.TrimSpace(getEnv("EMAIL_PROVIDER", "stub"))),
		SendGridAPIKey:   getEnv("SENDGRID_API_KEY", ""),
		EmailFromAddress: getEnv("EMAIL_FROM_ADDRESS", ""),
		EmailFromName:    getEnv("EMAIL_FROM_NAME", "MedSpa Bookings"),

		AppointmentEventsQueueURL: getEnv("APPOINTMENT_EVENTS_QUEUE_URL", ""),
		OutboxPollInterval:        getEnvAsDuration("OUTBOX_POLL_INTERVAL", 2*time.Second),
		OutboxMaxAttempts:         getEnvAsInt("OUTBOX_MAX_ATTEMPTS", 10),
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

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
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

// getEnvAsList splits a comma separated variable, dropping blanks.
func getEnvAsList(key string) []string {
	raw := strings.TrimSpace(getEnv(key, ""))
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
