package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"SERVER_PORT", "DB_PATH", "ENVIRONMENT", "APP_URL", "PAYMENT_PROVIDER",
		"PAYMENT_CALLBACK_URL", "PAYMENT_TIMEOUT_SECONDS", "SCHEDULER_ENABLED", "SCHEDULER_TIMEZONE", "EMAIL_TEST_MODE"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, "db/police.db", cfg.DBPath)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "zibal", cfg.PaymentProvider)
	assert.Equal(t, "http://localhost:8080/payments/callback", cfg.PaymentCallbackURL)
	assert.Equal(t, 15*time.Second, cfg.PaymentTimeout)
	assert.True(t, cfg.SchedulerEnabled)
	assert.True(t, cfg.EmailTestMode)
	assert.Equal(t, "Asia/Tehran", cfg.SchedulerTimezone)
	assert.NotEmpty(t, cfg.SessionSecret, "development generates a secret")
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("APP_URL", "https://police.example")
	t.Setenv("PAYMENT_PROVIDER", "stripe")
	t.Setenv("PAYMENT_TIMEOUT_SECONDS", "5")
	t.Setenv("SCHEDULER_ENABLED", "off")
	t.Setenv("PAYMENT_CALLBACK_URL", "")

	cfg := Load()
	assert.Equal(t, "stripe", cfg.PaymentProvider)
	assert.Equal(t, 5*time.Second, cfg.PaymentTimeout)
	assert.False(t, cfg.SchedulerEnabled)
	assert.Equal(t, "https://police.example/payments/callback", cfg.PaymentCallbackURL)
}

func TestEnvHelpers(t *testing.T) {
	t.Setenv("TEST_BOOL", "yes")
	assert.True(t, getEnvBool("TEST_BOOL", false))
	t.Setenv("TEST_BOOL", "maybe")
	assert.False(t, getEnvBool("TEST_BOOL", false), "unrecognized values use the default")

	t.Setenv("TEST_INT", "-3")
	assert.Equal(t, 7, getEnvInt("TEST_INT", 7))
	t.Setenv("TEST_INT", "42")
	assert.Equal(t, 42, getEnvInt("TEST_INT", 7))
}

func TestValidateSessionSecret(t *testing.T) {
	assert.NoError(t, ValidateSessionSecret("change-me", "development"))
	assert.NoError(t, ValidateSessionSecret("a-long-enough-secret-for-production-use!!", "production"))
	assert.Len(t, GenerateSecureSecret(), 44)
}
