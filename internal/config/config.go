// Package config loads process configuration from the environment, reading a
// local .env file first when present.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv   string
	LogLevel string
	HTTPAddr string

	DatabaseURL   string
	RunMigrations bool

	RabbitMQURL string

	MailHost   string
	MailPort   int
	MailUser   string
	MailPass   string
	MailFrom   string
	AdminEmail string

	RazorpayKeyID     string
	RazorpayKeySecret string
	RazorpayURL       string
	RazorpayWebhook   string

	OpenAIAPIKey string
	OpenAIURL    string
	OpenAIModel  string

	KommoToken    string
	KommoURL      string
	KommoStatusID int

	RescoreCron        string
	CORSOrigins        []string
	RateLimitPerMinute int
}

func Load() (*Config, error) {
	_ = godotenv.Load()
	return fromEnv()
}

func fromEnv() (*Config, error) {
	cfg := &Config{
		AppEnv:   getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", ""),
		HTTPAddr: getEnv("HTTP_ADDR", ":8080"),

		DatabaseURL:   getEnv("DATABASE_URL", ""),
		RunMigrations: strings.EqualFold(getEnv("RUN_MIGRATIONS", "true"), "true"),

		RabbitMQURL: getEnv("RABBITMQ_URL", ""),

		MailHost:   getEnv("MAIL_HOST", ""),
		MailUser:   getEnv("MAIL_USER", ""),
		MailPass:   getEnv("MAIL_PASS", ""),
		MailFrom:   getEnv("MAIL_FROM", "no-reply@edureach.in"),
		AdminEmail: getEnv("ADMIN_EMAIL", ""),

		RazorpayKeyID:     getEnv("RAZORPAY_KEY_ID", ""),
		RazorpayKeySecret: getEnv("RAZORPAY_KEY_SECRET", ""),
		RazorpayURL:       getEnv("RAZORPAY_URL", ""),
		RazorpayWebhook:   getEnv("RAZORPAY_WEBHOOK_SECRET", ""),

		OpenAIAPIKey: getEnv("OPENAI_API_KEY", ""),
		OpenAIURL:    getEnv("OPENAI_URL", ""),
		OpenAIModel:  getEnv("OPENAI_MODEL", ""),

		KommoToken: getEnv("KOMMO_API_TOKEN", ""),
		KommoURL:   getEnv("KOMMO_BASE_URL", ""),

		RescoreCron: getEnv("RESCORE_CRON", ""),
		CORSOrigins: splitCSV(getEnv("CORS_ORIGINS", "http://localhost:3000")),
	}

	var err error
	if cfg.MailPort, err = getInt("MAIL_PORT", 587); err != nil {
		return nil, err
	}
	if cfg.KommoStatusID, err = getInt("KOMMO_STATUS_ID", 0); err != nil {
		return nil, err
	}
	if cfg.RateLimitPerMinute, err = getInt("RATE_LIMIT_PER_MINUTE", 10); err != nil {
		return nil, err
	}

	if cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}
	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.AppEnv, "production")
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	raw := strings.TrimSpace(getEnv(key, ""))
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return v, nil
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
