package config

import (
	"crypto/rand"
	"encoding/base64"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

const (
	// MinSessionSecretLength is the minimum required length for session secret in production
	MinSessionSecretLength = 32
)

type Config struct {
	ServerPort  string
	DBPath      string
	Environment string
	AppURL      string
	// Email (Resend)
	ResendAPIKey  string
	EmailFrom     string
	EmailFromName string
	EmailTestMode bool // When true, emails are logged instead of sent
	// Sessions
	SessionSecret string
	// Payment gateway
	PaymentProvider    string // zibal or stripe
	ZibalMerchant      string
	ZibalBaseURL       string
	StripeSecretKey    string
	PaymentCallbackURL string
	PaymentTimeout     time.Duration
	// Scheduler
	SchedulerEnabled  bool
	SchedulerTimezone string
}

func Load() *Config {
	// Load .env file (ignore error if not present - use system env vars)
	if err := godotenv.Load(); err != nil {
		zap.S().Info("No .env file found, using system environment variables")
	}

	environment := getEnv("ENVIRONMENT", "development")
	sessionSecret := getEnv("SESSION_SECRET", "")

	ValidateSessionSecret(sessionSecret, environment)

	if sessionSecret == "" && environment != "production" {
		sessionSecret = GenerateSecureSecret()
		zap.S().Info("Generated temporary session secret for development. Set SESSION_SECRET env var for persistence.")
	}

	appURL := getEnv("APP_URL", "http://localhost:8080")

	return &Config{
		ServerPort:         getEnv("SERVER_PORT", "8080"),
		DBPath:             getEnv("DB_PATH", "db/police.db"),
		Environment:        environment,
		AppURL:             appURL,
		ResendAPIKey:       getEnv("RESEND_API_KEY", ""),
		EmailFrom:          getEnv("EMAIL_FROM", "noreply@police.local"),
		EmailFromName:      getEnv("EMAIL_FROM_NAME", "Police Case Flow"),
		EmailTestMode:      getEnvBool("EMAIL_TEST_MODE", true), // Default true for safety
		SessionSecret:      sessionSecret,
		PaymentProvider:    getEnv("PAYMENT_PROVIDER", "zibal"),
		ZibalMerchant:      getEnv("ZIBAL_MERCHANT", "zibal"),
		ZibalBaseURL:       getEnv("ZIBAL_BASE_URL", "https://gateway.zibal.ir"),
		StripeSecretKey:    getEnv("STRIPE_SECRET_KEY", ""),
		PaymentCallbackURL: getEnv("PAYMENT_CALLBACK_URL", appURL+"/payments/callback"),
		PaymentTimeout:     time.Duration(getEnvInt("PAYMENT_TIMEOUT_SECONDS", 15)) * time.Second,
		SchedulerEnabled:   getEnvBool("SCHEDULER_ENABLED", true),
		SchedulerTimezone:  getEnv("SCHEDULER_TIMEZONE", "Asia/Tehran"),
	}
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		zap.S().Debugw("Using default value", "key", key, "value", defaultValue)
		return defaultValue
	}
	return value
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	// Accept common boolean representations
	switch strings.ToLower(value) {
	case "true", "1", "yes", "on":
		return true
	case "false", "0", "no", "off":
		return false
	default:
		return defaultValue
	}
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		zap.S().Warnw("Invalid integer, using default", "key", key, "value", value, "default", defaultValue)
		return defaultValue
	}
	return n
}

// ValidateSessionSecret validates the session secret meets security requirements.
// In production, it must be at least 32 bytes and not a known insecure default.
func ValidateSessionSecret(secret string, environment string) error {
	insecureDefaults := []string{
		"dev-secret-change-in-production",
		"change-me",
		"secret",
		"development",
		"test",
		"",
	}

	for _, insecure := range insecureDefaults {
		if strings.EqualFold(secret, insecure) {
			if environment == "production" {
				zap.S().Fatal("SESSION_SECRET is set to an insecure default value. Generate a secure random secret with: openssl rand -base64 32")
			}
			zap.S().Warn("SESSION_SECRET is set to an insecure default value. This is acceptable only in development.")
			return nil
		}
	}

	if environment == "production" && len(secret) < MinSessionSecretLength {
		zap.S().Fatalf("SESSION_SECRET must be at least %d characters in production (current: %d)", MinSessionSecretLength, len(secret))
	}

	return nil
}

// GenerateSecureSecret generates a cryptographically secure random secret.
// Used only for development when no secret is provided.
func GenerateSecureSecret() string {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		zap.S().Warnw("Failed to generate secure secret", "error", err)
		return ""
	}
	return base64.StdEncoding.EncodeToString(bytes)
}
