package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	App      AppConfig
	CMS      CMSConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Admin    AdminConfig
	Stripe   StripeConfig
	Mail     MailConfig
	RabbitMQ RabbitMQConfig
	Redis    RedisConfig
	Log      LogConfig
}

// AppConfig holds application-specific settings.
type AppConfig struct {
	Port            string
	Env             string
	PublicURL       string // storefront origin used in checkout redirect URLs
	OrderCodePrefix string
	CatalogCacheTTL time.Duration
}

// CMSConfig holds the headless CMS connection.
type CMSConfig struct {
	URL     string
	Token   string
	Timeout time.Duration
}

// DatabaseConfig selects the local database used for admins and the checkout ledger.
type DatabaseConfig struct {
	Driver string // sqlite or postgres
	DSN    string
}

// JWTConfig holds admin token settings.
type JWTConfig struct {
	Secret     string
	Expiration time.Duration
}

// AdminConfig is the operator seeded when the admin table is empty.
type AdminConfig struct {
	Username string
	Email    string
	Password string
}

// StripeConfig holds hosted checkout settings.
type StripeConfig struct {
	SecretKey string
	Currency  string
}

// MailConfig holds transactional email settings.
type MailConfig struct {
	APIKey string
	From   string
}

// RabbitMQConfig holds the broker URL. Empty disables the queue.
type RabbitMQConfig struct {
	URL string
}

// RedisConfig holds the catalog cache address. Empty disables caching.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("PUBLIC_URL", "http://localhost:3000")
	v.SetDefault("ORDER_CODE_PREFIX", "MS")
	v.SetDefault("CATALOG_CACHE_TTL", "60s")

	v.SetDefault("CMS_URL", "http://localhost:1337")
	v.SetDefault("CMS_API_TOKEN", "")
	v.SetDefault("CMS_TIMEOUT", "15s")

	v.SetDefault("DB_DRIVER", "sqlite")
	v.SetDefault("DATABASE_DSN", "boutique.db")

	v.SetDefault("JWT_SECRET", "change-me")
	v.SetDefault("JWT_EXPIRATION", "24h")

	v.SetDefault("ADMIN_USERNAME", "admin")
	v.SetDefault("ADMIN_EMAIL", "admin@localhost")
	v.SetDefault("ADMIN_PASSWORD", "")

	v.SetDefault("STRIPE_SECRET_KEY", "")
	v.SetDefault("STRIPE_CURRENCY", "eur")

	v.SetDefault("RESEND_API_KEY", "")
	v.SetDefault("MAIL_FROM", "Boutique <orders@localhost>")

	v.SetDefault("RABBITMQ_URL", "")

	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")
	v.SetDefault("LOG_OUTPUT", "stdout")
}

// Load reads configuration from environment variables on top of defaults.
func Load() (*Config, error) {
	return LoadFrom(viper.New())
}

// LoadFrom reads configuration through v, which callers may pre-populate.
func LoadFrom(v *viper.Viper) (*Config, error) {
	setDefaults(v)
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Port:            v.GetString("APP_PORT"),
			Env:             strings.ToLower(v.GetString("APP_ENV")),
			PublicURL:       strings.TrimRight(v.GetString("PUBLIC_URL"), "/"),
			OrderCodePrefix: v.GetString("ORDER_CODE_PREFIX"),
			CatalogCacheTTL: v.GetDuration("CATALOG_CACHE_TTL"),
		},
		CMS: CMSConfig{
			URL:     strings.TrimRight(v.GetString("CMS_URL"), "/"),
			Token:   v.GetString("CMS_API_TOKEN"),
			Timeout: v.GetDuration("CMS_TIMEOUT"),
		},
		Database: DatabaseConfig{
			Driver: strings.ToLower(v.GetString("DB_DRIVER")),
			DSN:    v.GetString("DATABASE_DSN"),
		},
		JWT: JWTConfig{
			Secret:     v.GetString("JWT_SECRET"),
			Expiration: v.GetDuration("JWT_EXPIRATION"),
		},
		Admin: AdminConfig{
			Username: v.GetString("ADMIN_USERNAME"),
			Email:    v.GetString("ADMIN_EMAIL"),
			Password: v.GetString("ADMIN_PASSWORD"),
		},
		Stripe: StripeConfig{
			SecretKey: v.GetString("STRIPE_SECRET_KEY"),
			Currency:  strings.ToLower(v.GetString("STRIPE_CURRENCY")),
		},
		Mail: MailConfig{
			APIKey: v.GetString("RESEND_API_KEY"),
			From:   v.GetString("MAIL_FROM"),
		},
		RabbitMQ: RabbitMQConfig{URL: v.GetString("RABBITMQ_URL")},
		Redis: RedisConfig{
			Addr:     v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		Log: LogConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
			Output: v.GetString("LOG_OUTPUT"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// IsProduction reports whether APP_ENV is production.
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

func (c *Config) validate() error {
	if _, err := url.ParseRequestURI(c.CMS.URL); err != nil {
		return fmt.Errorf("invalid CMS_URL %q: %w", c.CMS.URL, err)
	}
	if _, err := url.ParseRequestURI(c.App.PublicURL); err != nil {
		return fmt.Errorf("invalid PUBLIC_URL %q: %w", c.App.PublicURL, err)
	}
	switch c.Database.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q (want sqlite or postgres)", c.Database.Driver)
	}
	if c.CMS.Timeout <= 0 {
		return fmt.Errorf("CMS_TIMEOUT must be positive")
	}

	if !c.IsProduction() {
		return nil
	}
	if c.JWT.Secret == "" || c.JWT.Secret == "change-me" || len(c.JWT.Secret) < 32 {
		return fmt.Errorf("JWT_SECRET must be set to at least 32 characters in production")
	}
	if c.CMS.Token == "" {
		return fmt.Errorf("CMS_API_TOKEN is required in production")
	}
	if c.Stripe.SecretKey == "" {
		return fmt.Errorf("STRIPE_SECRET_KEY is required in production")
	}
	return nil
}
