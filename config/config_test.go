package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func setRequired(t *testing.T) {
	t.Helper()
	for k, v := range map[string]string{
		"APP_PORT":    "8080",
		"DB_HOST":     "localhost",
		"DB_PORT":     "5432",
		"DB_USER":     "bakery",
		"DB_PASSWORD": "secret",
		"DB_NAME":     "bakery",
		"DB_SSLMODE":  "disable",
		"JWT_SECRET":  "s3cret",
	} {
		t.Setenv(k, v)
	}
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg := Load(zap.NewNop())
	assert.Equal(t, "8080", cfg.Port)
	assert.True(t, cfg.Fulfillment.StrictTransitions)
	assert.Equal(t, "open", cfg.Fulfillment.AnalyticsCrossStore)
	assert.Equal(t, 24*time.Hour, cfg.Redis.IdempotencyTTL)
	assert.False(t, cfg.Redis.Enabled)
	assert.False(t, cfg.Kafka.Enabled())
	assert.Equal(t, "media", cfg.Media.Dir)
	assert.Equal(t, int64(10<<20), cfg.Media.MaxBytes)
	assert.Equal(t, 6*time.Hour, cfg.Media.CleanupInterval)
}

func TestLoad_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("STRICT_TRANSITIONS", "false")
	t.Setenv("ANALYTICS_CROSS_STORE", "main_store_only")
	t.Setenv("IDEMPOTENCY_TTL", "2d")
	t.Setenv("KAFKA_BROKERS", " kafka-1:9092 , ,kafka-2:9092")

	cfg := Load(zap.NewNop())
	assert.False(t, cfg.Fulfillment.StrictTransitions)
	assert.Equal(t, "main_store_only", cfg.Fulfillment.AnalyticsCrossStore)
	assert.Equal(t, 48*time.Hour, cfg.Redis.IdempotencyTTL)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Kafka.Brokers)
	assert.True(t, cfg.Kafka.Enabled())
}

func TestLoad_MissingRequiredPanics(t *testing.T) {
	setRequired(t)
	// t.Setenv вернёт исходное значение после теста
	os.Unsetenv("JWT_SECRET")
	assert.Panics(t, func() { Load(zap.NewNop()) })
}

func TestParseDurationWithDays(t *testing.T) {
	assert.Equal(t, 7*24*time.Hour, parseDurationWithDays("7d", time.Minute))
	assert.Equal(t, 90*time.Minute, parseDurationWithDays("90m", time.Minute))
	assert.Equal(t, time.Minute, parseDurationWithDays("soon", time.Minute))
}

func TestLoadNotifier(t *testing.T) {
	setRequired(t)
	t.Setenv("SMTP_HOST", "smtp.example.com")
	t.Setenv("SMTP_PORT", "465")
	t.Setenv("SMTP_USER", "bakery")
	t.Setenv("SMTP_PASSWORD", "pw")
	t.Setenv("SMTP_FROM", "bakery@example.com")

	cfg := LoadNotifier(zap.NewNop())
	assert.Equal(t, 465, cfg.SMTP.Port)
	assert.True(t, cfg.SMTP.SSL)
	assert.Equal(t, "bakery-notifier", cfg.GroupID)
	assert.Equal(t, "bakery.fulfillment", cfg.Kafka.FulfillmentTopic)

	t.Setenv("SMTP_PORT", "smtps")
	assert.Panics(t, func() { LoadNotifier(zap.NewNop()) })
}
