package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"ecommerce-backend/pkg/database"

	"go.uber.org/zap"
)

type Config struct {
	Port  string
	DB    DB
	Redis Redis
	Kafka Kafka
	JWT   JWT
	SMTP  SMTP
	Mpesa Mpesa
}

type DB struct {
	database.Config
}

type Redis struct {
	Addr     string
	Password string
	DB       int
}

type Kafka struct {
	Brokers []string
	Topic   string
	GroupID string
}

type JWT struct {
	AccessSecret string
	Issuer       string
	Audience     string
	AccessTTL    time.Duration
	RefreshTTL   time.Duration
}

type SMTP struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	TMPLDir  string
}

type Mpesa struct {
	Environment    string // sandbox | production
	ConsumerKey    string
	ConsumerSecret string
	ShortCode      string
	Passkey        string
	CallbackURL    string
}

func Load(log *zap.Logger) *Config {
	return &Config{
		Port: getEnv("APP_PORT", log),
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
		Redis: Redis{
			Addr:     getEnv("REDIS_ADDR", log),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       atoiDefault(os.Getenv("REDIS_DB"), 0),
		},
		Kafka: Kafka{
			Brokers: splitAndTrim(getEnv("KAFKA_BROKERS", log)),
			Topic:   getEnv("KAFKA_TOPIC_TASKS", log),
			GroupID: getEnvDefault("KAFKA_GROUP_ID", "ecommerce-workers"),
		},
		JWT: JWT{
			AccessSecret: getEnv("JWT_ACCESS_SECRET", log),
			Issuer:       getEnvDefault("JWT_ISSUER", "ecommerce-backend"),
			Audience:     getEnvDefault("JWT_AUDIENCE", "ecommerce-api"),
			AccessTTL:    durationDefault(os.Getenv("JWT_ACCESS_TTL"), 15*time.Minute),
			RefreshTTL:   durationDefault(os.Getenv("JWT_REFRESH_TTL"), 30*24*time.Hour),
		},
		SMTP: SMTP{
			Host:     getEnvDefault("SMTP_HOST", "localhost"),
			Port:     atoiDefault(os.Getenv("SMTP_PORT"), 465),
			User:     os.Getenv("SMTP_USER"),
			Password: os.Getenv("SMTP_PASSWORD"),
			From:     getEnvDefault("SMTP_FROM", "no-reply@example.com"),
			TMPLDir:  getEnvDefault("SMTP_TMPL_DIR", "templates"),
		},
		Mpesa: Mpesa{
			Environment:    getEnvDefault("MPESA_ENVIRONMENT", "sandbox"),
			ConsumerKey:    getEnv("MPESA_CONSUMER_KEY", log),
			ConsumerSecret: getEnv("MPESA_CONSUMER_SECRET", log),
			ShortCode:      getEnv("MPESA_SHORT_CODE", log),
			Passkey:        getEnv("MPESA_PASSKEY", log),
			CallbackURL:    getEnvDefault("MPESA_CALLBACK_URL", "https://example.com/api/payments/callback/"),
		},
	}
}

func getEnv(key string, log *zap.Logger) string {
	if val, exists := os.LookupEnv(key); exists {
		return val
	}
	log.Error("Обязательная переменная окружения не установлена", zap.String("key", key))
	panic("missing required environment variable: " + key)
}

func getEnvDefault(key, def string) string {
	if val, exists := os.LookupEnv(key); exists {
		return val
	}
	return def
}

func atoiDefault(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

func durationDefault(s string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return def
	}
	return d
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
