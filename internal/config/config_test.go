package config_test

import (
	"testing"
	"time"

	"boutique/internal/config"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.LoadFrom(viper.New())
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.App.Port)
	assert.Equal(t, "MS", cfg.App.OrderCodePrefix)
	assert.Equal(t, time.Minute, cfg.App.CatalogCacheTTL)
	assert.Equal(t, 15*time.Second, cfg.CMS.Timeout)
	assert.Equal(t, "eur", cfg.Stripe.Currency)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("CMS_URL", "https://cms.example.com/")
	t.Setenv("PUBLIC_URL", "https://shop.example.com/")
	t.Setenv("STRIPE_CURRENCY", "USD")
	t.Setenv("CATALOG_CACHE_TTL", "5m")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "https://cms.example.com", cfg.CMS.URL)
	assert.Equal(t, "https://shop.example.com", cfg.App.PublicURL)
	assert.Equal(t, "usd", cfg.Stripe.Currency)
	assert.Equal(t, 5*time.Minute, cfg.App.CatalogCacheTTL)
}

func TestLoad_RejectsUnknownDriver(t *testing.T) {
	t.Setenv("DB_DRIVER", "mysql")
	_, err := config.Load()
	assert.ErrorContains(t, err, "DB_DRIVER")
}

func TestLoad_ProductionRequiresSecrets(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	_, err := config.Load()
	assert.ErrorContains(t, err, "JWT_SECRET")

	t.Setenv("JWT_SECRET", "0123456789abcdef0123456789abcdef")
	_, err = config.Load()
	assert.ErrorContains(t, err, "CMS_API_TOKEN")

	t.Setenv("CMS_API_TOKEN", "token")
	t.Setenv("STRIPE_SECRET_KEY", "sk_test_123")
	cfg, err := config.Load()
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
}
