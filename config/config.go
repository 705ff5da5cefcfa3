package config

import (
	"fmt"
	"os"
)

// Config holds all application configuration, loaded once at startup.
// Handlers never read environment variables directly.
type Config struct {
	Port    string
	AppEnv  string
	SiteURL string

	Database DatabaseConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Elastic  ElasticConfig
	Sentry   SentryConfig
	Stripe   StripeConfig
	Chargily ChargilyConfig
	PayPal   PayPalConfig
	Email    EmailConfig
	Admin    AdminConfig
	Storage  StorageConfig
}

type DatabaseConfig struct {
	Host     string
	User     string
	Password string
	Name     string
	Port     string
}

type RedisConfig struct {
	Host     string
	Password string
}

type KafkaConfig struct {
	Broker string
}

type ElasticConfig struct {
	URL string
}

type SentryConfig struct {
	DSN string
}

type StripeConfig struct {
	SecretKey string
}

type ChargilyConfig struct {
	APIKey        string
	WebhookSecret string
}

type PayPalConfig struct {
	ClientID     string
	ClientSecret string
	Mode         string // "live" or "sandbox"
	WebhookID    string
}

type EmailConfig struct {
	ResendAPIKey string
	FromAddress  string
	CoachAddress string
}

type AdminConfig struct {
	Secret string
}

type StorageConfig struct {
	// PublicBaseURL is the public root of the physique-photos bucket,
	// used to build photo links in coach notification emails.
	PublicBaseURL string
}

// Load reads configuration from environment variables.
func Load() *Config {
	return &Config{
		Port:    getEnv("PORT", "8080"),
		AppEnv:  getEnv("APP_ENV", "development"),
		SiteURL: getEnv("SITE_URL", "http://localhost:3000"),
		Database: DatabaseConfig{
			Host:     os.Getenv("DB_HOST"),
			User:     os.Getenv("DB_USER"),
			Password: os.Getenv("DB_PASSWORD"),
			Name:     os.Getenv("DB_NAME"),
			Port:     getEnv("DB_PORT", "5432"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
		},
		Kafka: KafkaConfig{
			Broker: getEnv("KAFKA_BROKER", "localhost:9092"),
		},
		Elastic: ElasticConfig{
			URL: os.Getenv("ELASTICSEARCH_URL"),
		},
		Sentry: SentryConfig{
			DSN: os.Getenv("SENTRY_DSN"),
		},
		Stripe: StripeConfig{
			SecretKey: os.Getenv("STRIPE_SECRET_KEY"),
		},
		Chargily: ChargilyConfig{
			APIKey:        os.Getenv("CHARGILY_API_KEY"),
			WebhookSecret: os.Getenv("CHARGILY_WEBHOOK_SECRET"),
		},
		PayPal: PayPalConfig{
			ClientID:     os.Getenv("PAYPAL_CLIENT_ID"),
			ClientSecret: os.Getenv("PAYPAL_CLIENT_SECRET"),
			Mode:         getEnv("PAYPAL_MODE", "sandbox"),
			WebhookID:    os.Getenv("PAYPAL_WEBHOOK_ID"),
		},
		Email: EmailConfig{
			ResendAPIKey: os.Getenv("RESEND_API_KEY"),
			FromAddress:  getEnv("FROM_EMAIL", "noreply@ayoubcmb.com"),
			CoachAddress: getEnv("COACH_EMAIL", "youcefbounabi@gmail.com"),
		},
		Admin: AdminConfig{
			Secret: os.Getenv("ADMIN_SECRET"),
		},
		Storage: StorageConfig{
			PublicBaseURL: os.Getenv("PHOTOS_BASE_URL"),
		},
	}
}

// Validate checks the variables the service cannot start without. Payment
// and email integrations are optional at startup; a handler whose
// integration is not configured answers with a configuration error instead.
func (c *Config) Validate() error {
	required := map[string]string{
		"DB_HOST":     c.Database.Host,
		"DB_USER":     c.Database.User,
		"DB_PASSWORD": c.Database.Password,
		"DB_NAME":     c.Database.Name,
	}
	for name, value := range required {
		if value == "" {
			return fmt.Errorf("missing required environment variable %s", name)
		}
	}
	if c.ChargilyEnabled() && c.Chargily.WebhookSecret == "" {
		return fmt.Errorf("CHARGILY_API_KEY is set but CHARGILY_WEBHOOK_SECRET is missing")
	}
	return nil
}

// StripeEnabled reports whether the card gateway can be wired.
func (c *Config) StripeEnabled() bool { return c.Stripe.SecretKey != "" }

// ChargilyEnabled reports whether the regional gateway can be wired.
func (c *Config) ChargilyEnabled() bool { return c.Chargily.APIKey != "" }

// PayPalEnabled reports whether the wallet gateway can be wired.
func (c *Config) PayPalEnabled() bool {
	return c.PayPal.ClientID != "" && c.PayPal.ClientSecret != ""
}

// EmailEnabled reports whether transactional email can be wired.
func (c *Config) EmailEnabled() bool { return c.Email.ResendAPIKey != "" }

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
