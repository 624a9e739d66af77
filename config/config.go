package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"bakery-service/pkg/database"

	"go.uber.org/zap"
)

type Config struct {
	Env            string
	Port           string
	GRPCHealthPort string
	DB             DB
	JWT            JWT
	Redis          Redis
	Kafka          Kafka
	Media          Media
	Fulfillment    Fulfillment
}

type DB struct {
	database.Config
}

type JWT struct {
	Secret string
	Issuer string
}

type Redis struct {
	Enabled        bool
	Addr           string
	Password       string
	DB             int
	IdempotencyTTL time.Duration
}

type Kafka struct {
	Brokers          []string
	FulfillmentTopic string
}

// Enabled: без брокеров события не публикуются
func (k Kafka) Enabled() bool { return len(k.Brokers) > 0 && k.FulfillmentTopic != "" }

type Media struct {
	Dir     string
	BaseURL string
	// MaxBytes — лимит одного файла, 0 — без лимита
	MaxBytes int64
	// CleanupInterval — период удаления осиротевших файлов, 0 — не запускать
	CleanupInterval time.Duration
	OrphanGrace     time.Duration
}

type Fulfillment struct {
	StrictTransitions bool
	// AnalyticsCrossStore: open | main_store_only
	AnalyticsCrossStore string
}

func Load(log *zap.Logger) *Config {
	return &Config{
		Env:            getEnvDefault("ENV", "production"),
		Port:           getEnv("APP_PORT", log),
		GRPCHealthPort: getEnvDefault("GRPC_HEALTH_PORT", ""),
		DB: DB{
			Config: database.Config{
				Host:     getEnv("DB_HOST", log),
				Port:     getEnv("DB_PORT", log),
				User:     getEnv("DB_USER", log),
				Password: getEnv("DB_PASSWORD", log),
				Name:     getEnv("DB_NAME", log),
				SSLMode:  getEnv("DB_SSLMODE", log),
			},
		},
		JWT: JWT{
			Secret: getEnv("JWT_SECRET", log),
			Issuer: getEnvDefault("JWT_ISSUER", "bakery-service"),
		},
		Redis: Redis{
			Enabled:        getEnvDefault("REDIS_ENABLED", "false") == "true",
			Addr:           getEnvDefault("REDIS_ADDR", "localhost:6379"),
			Password:       getEnvDefault("REDIS_PASSWORD", ""),
			DB:             atoiDefault(getEnvDefault("REDIS_DB", "0"), 0),
			IdempotencyTTL: parseDurationWithDays(getEnvDefault("IDEMPOTENCY_TTL", "24h"), 24*time.Hour),
		},
		Kafka: Kafka{
			Brokers:          splitAndTrim(os.Getenv("KAFKA_BROKERS")),
			FulfillmentTopic: getEnvDefault("KAFKA_TOPIC_FULFILLMENT", "bakery.fulfillment"),
		},
		Media: Media{
			Dir:      getEnvDefault("MEDIA_DIR", "media"),
			BaseURL:  getEnvDefault("MEDIA_BASE_URL", ""),
			MaxBytes: int64(atoiDefault(getEnvDefault("MEDIA_MAX_BYTES", "10485760"), 10<<20)),

			CleanupInterval: parseDurationWithDays(getEnvDefault("MEDIA_CLEANUP_INTERVAL", "6h"), 6*time.Hour),
			OrphanGrace:     parseDurationWithDays(getEnvDefault("MEDIA_ORPHAN_GRACE", "1h"), time.Hour),
		},
		Fulfillment: Fulfillment{
			StrictTransitions:   parseBool(getEnvDefault("STRICT_TRANSITIONS", "true"), true),
			AnalyticsCrossStore: getEnvDefault("ANALYTICS_CROSS_STORE", "open"),
		},
	}
}

// Notifier — настройки рассыльщика писем (cmd/notifier)
type Notifier struct {
	Env     string
	DB      DB
	Kafka   Kafka
	GroupID string
	SMTP    SMTP
}

type SMTP struct {
	Host        string
	Port        int
	User        string
	Password    string
	From        string
	SSL         bool
	TemplateDir string
}

func LoadNotifier(log *zap.Logger) *Notifier {
	return &Notifier{
		Env: getEnvDefault("ENV", "production"),
		DB: DB{
			Config: database.Config{
				Host:     getEnv("DB_HOST", log),
				Port:     getEnv("DB_PORT", log),
				User:     getEnv("DB_USER", log),
				Password: getEnv("DB_PASSWORD", log),
				Name:     getEnv("DB_NAME", log),
				SSLMode:  getEnv("DB_SSLMODE", log),
			},
		},
		Kafka: Kafka{
			Brokers:          splitAndTrim(os.Getenv("KAFKA_BROKERS")),
			FulfillmentTopic: getEnvDefault("KAFKA_TOPIC_FULFILLMENT", "bakery.fulfillment"),
		},
		GroupID: getEnvDefault("KAFKA_GROUP_ID", "bakery-notifier"),
		SMTP: SMTP{
			Host:        getEnv("SMTP_HOST", log),
			Port:        getEnvInt("SMTP_PORT", log),
			User:        getEnv("SMTP_USER", log),
			Password:    getEnv("SMTP_PASSWORD", log),
			From:        getEnv("SMTP_FROM", log),
			SSL:         parseBool(getEnvDefault("SMTP_SSL", "true"), true),
			TemplateDir: getEnvDefault("TMPL_DIR", ""),
		},
	}
}

func (c *Config) IsDev() bool { return c.Env == "development" }

func getEnv(key string, log *zap.Logger) string {
	if val, exists := os.LookupEnv(key); exists {
		return val
	}
	log.Error("Обязательная переменная окружения не установлена", zap.String("key", key))
	panic("missing required environment variable: " + key)
}

func getEnvInt(key string, log *zap.Logger) int {
	valStr := getEnv(key, log)
	val, err := strconv.Atoi(valStr)
	if err != nil {
		log.Error("Ошибка преобразования переменной окружения в int", zap.String("key", key), zap.Error(err))
		panic("invalid int value for environment variable: " + key)
	}
	return val
}

func getEnvDefault(key, def string) string {
	if val, exists := os.LookupEnv(key); exists && val != "" {
		return val
	}
	return def
}

// parseDurationWithDays понимает и суффикс "d" (например, 7d)
func parseDurationWithDays(s string, def time.Duration) time.Duration {
	if strings.HasSuffix(s, "d") {
		days, err := strconv.Atoi(strings.TrimSuffix(s, "d"))
		if err != nil {
			return def
		}
		return time.Duration(days) * 24 * time.Hour
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return def
	}
	return d
}

func parseBool(s string, def bool) bool {
	b, err := strconv.ParseBool(s)
	if err != nil {
		return def
	}
	return b
}

func atoiDefault(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	parts := []string{}
	for _, p := range strings.Split(s, ",") {
		pt := strings.TrimSpace(p)
		if pt != "" {
			parts = append(parts, pt)
		}
	}
	return parts
}
