//go:build !integration

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("APP_DEPLOYMENT_URL", "http://localhost:8080")
	t.Setenv("APP_EMAIL_VERIFICATION_KEY", "0123456789abcdef")
	t.Setenv("DB_PASSWORD", "postgres")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "techshop", cfg.Database.Name)
	assert.Equal(t, 3, cfg.Fraud.IPOrderLimit)
	assert.Equal(t, time.Hour, cfg.Fraud.IPOrderWindow)
	assert.Equal(t, 20, cfg.Fraud.AbnormalQuantity)
	assert.Equal(t, 50000.0, cfg.Fraud.HighValueAmount)
	assert.Equal(t, "0123456789abcdef", cfg.App.TrackingKey)
	assert.False(t, cfg.Redis.Enabled())
}

func TestLoadOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("FRAUD_IP_ORDER_LIMIT", "5")
	t.Setenv("FRAUD_IP_ORDER_WINDOW", "30m")
	t.Setenv("REDIS_HOST", "cache")
	t.Setenv("PORT", "9090")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Fraud.IPOrderLimit)
	assert.Equal(t, 30*time.Minute, cfg.Fraud.IPOrderWindow)
	assert.True(t, cfg.Redis.Enabled())
	assert.Equal(t, "9090", cfg.Server.Port)
}

func TestLoadMissingSecret(t *testing.T) {
	setRequired(t)
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	assert.EqualError(t, err, "missing jwt secret")
}

func TestDSN(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: "5432", User: "u", Password: "p", Name: "shop", SSLMode: "disable"}
	assert.Equal(t, "host=db user=u password=p dbname=shop port=5432 sslmode=disable TimeZone=UTC", d.DSN())
}
