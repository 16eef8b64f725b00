// Package config reads the service configuration from the environment
// (optionally seeded from a .env file).
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

type Config struct {
	Port        string
	Environment string
	DatabaseURL string
	Redis       RedisConfig
	JWTSecret   string
	AdminAPIKey string
	Firebase    FirebaseConfig
	Telr        TelrConfig
	Rates       RatesConfig
	SMTP        SMTPConfig
	Kafka       KafkaConfig
	Log         LogConfig
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	CartTTL  time.Duration
}

type FirebaseConfig struct {
	CredentialsJSON string
	ProjectID       string
}

type TelrConfig struct {
	StoreID       int
	AuthKey       string
	APIURL        string
	Mode          string // "live", "sandbox" or "dev"
	WebhookSecret string
	SuccessURL    string
	FailureURL    string
	CancelURL     string
}

// TestMode reports whether payments run against the provider's test mode.
func (t TelrConfig) TestMode() bool {
	m := strings.ToLower(t.Mode)
	return m == "sandbox" || m == "dev"
}

type RatesConfig struct {
	URL        string
	DefaultUSD decimal.Decimal
	TTL        time.Duration
	Timeout    time.Duration
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type KafkaConfig struct {
	Brokers    []string
	OrderTopic string
}

type LogConfig struct {
	Level  string
	Format string // "json" or "console"
}

var ErrMissingSecret = errors.New("JWT_SECRET must be set")

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("APP_ENV", "production")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_NAME", "marinetex")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("CART_TTL", "720h")
	v.SetDefault("TELR_MODE", "sandbox")
	v.SetDefault("EXCHANGE_RATE_URL", "https://open.er-api.com/v6/latest/TRY")
	v.SetDefault("DEFAULT_USD_RATE", "0.030")
	v.SetDefault("EXCHANGE_RATE_TTL", "15m")
	v.SetDefault("EXCHANGE_RATE_TIMEOUT", "5s")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("KAFKA_ORDER_TOPIC", "orders.events")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
}

// Load reads .env (when present) and the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)
	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	defaultRate, err := decimal.NewFromString(v.GetString("DEFAULT_USD_RATE"))
	if err != nil {
		return nil, fmt.Errorf("invalid DEFAULT_USD_RATE: %w", err)
	}

	cfg := &Config{
		Port:        v.GetString("PORT"),
		Environment: v.GetString("APP_ENV"),
		DatabaseURL: v.GetString("DATABASE_URL"),
		Redis: RedisConfig{
			Addr:     v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
			CartTTL:  v.GetDuration("CART_TTL"),
		},
		JWTSecret:   v.GetString("JWT_SECRET"),
		AdminAPIKey: v.GetString("ADMIN_API_KEY"),
		Firebase: FirebaseConfig{
			CredentialsJSON: v.GetString("FIREBASE_CREDENTIALS_JSON"),
			ProjectID:       v.GetString("FIREBASE_PROJECT_ID"),
		},
		Telr: TelrConfig{
			StoreID:       v.GetInt("TELR_STORE_ID"),
			AuthKey:       v.GetString("TELR_AUTH_KEY"),
			APIURL:        v.GetString("TELR_API_URL"),
			Mode:          v.GetString("TELR_MODE"),
			WebhookSecret: v.GetString("TELR_WEBHOOK_SECRET"),
			SuccessURL:    v.GetString("TELR_SUCCESS_URL"),
			FailureURL:    v.GetString("TELR_FAILURE_URL"),
			CancelURL:     v.GetString("TELR_CANCEL_URL"),
		},
		Rates: RatesConfig{
			URL:        v.GetString("EXCHANGE_RATE_URL"),
			DefaultUSD: defaultRate,
			TTL:        v.GetDuration("EXCHANGE_RATE_TTL"),
			Timeout:    v.GetDuration("EXCHANGE_RATE_TIMEOUT"),
		},
		SMTP: SMTPConfig{
			Host:     v.GetString("SMTP_HOST"),
			Port:     v.GetInt("SMTP_PORT"),
			Username: v.GetString("SMTP_USERNAME"),
			Password: v.GetString("SMTP_PASSWORD"),
			From:     v.GetString("SMTP_FROM"),
		},
		Kafka: KafkaConfig{
			Brokers:    splitList(v.GetString("KAFKA_BROKERS")),
			OrderTopic: v.GetString("KAFKA_ORDER_TOPIC"),
		},
		Log: LogConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = fmt.Sprintf(
			"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
			v.GetString("DB_HOST"), v.GetString("DB_USER"), v.GetString("DB_PASSWORD"),
			v.GetString("DB_NAME"), v.GetString("DB_PORT"), v.GetString("DB_SSLMODE"),
		)
	}
	if cfg.JWTSecret == "" {
		return nil, ErrMissingSecret
	}
	return cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
