package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	os.Clearenv()

	cfg, err := Load("pricing")
	require.NoError(t, err)

	assert.Equal(t, "pricing", cfg.Server.ServiceName)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.Server.CORSOrigins)
	assert.Equal(t, 5*time.Second, cfg.Pricing.RefreshInterval)
	assert.Equal(t, "BRL", cfg.Pricing.Currency)
	assert.Equal(t, 3, cfg.Pricing.WriteRetries)
	assert.True(t, cfg.Database.AutoMigrate)
	assert.False(t, cfg.NATS.Enabled)
	assert.Equal(t, 8*time.Second, cfg.Server.RequestTimeout)
	assert.Equal(t, 24*time.Hour, cfg.Server.IdempotencyTTL)
}

func TestLoadCustomValues(t *testing.T) {
	os.Clearenv()
	t.Setenv("PRICING_SNAPSHOT_REFRESH", "250ms")
	t.Setenv("PRICING_CURRENCY", "usd")
	t.Setenv("CORS_ORIGINS", "https://admin.example.com, https://app.example.com")
	t.Setenv("CB_TIMEOUT_SECONDS", "12")
	t.Setenv("OTEL_TRACE_SAMPLE_RATE", "0.25")
	t.Setenv("REQUEST_TIMEOUT", "2s")

	cfg, err := Load("pricing")
	require.NoError(t, err)

	assert.Equal(t, 250*time.Millisecond, cfg.Pricing.RefreshInterval)
	assert.Equal(t, "USD", cfg.Pricing.Currency)
	assert.Equal(t, []string{"https://admin.example.com", "https://app.example.com"}, cfg.Server.CORSOrigins)
	assert.Equal(t, 12*time.Second, cfg.Resilience.Timeout())
	assert.InDelta(t, 0.25, cfg.Tracing.SampleRate, 1e-9)
	assert.Equal(t, 2*time.Second, cfg.Server.RequestTimeout)
}

func TestLoadRequiresSecretInProduction(t *testing.T) {
	os.Clearenv()
	t.Setenv("ENVIRONMENT", "production")

	_, err := Load("pricing")
	assert.Error(t, err)
}

func TestLoadRejectsNonPositiveRefresh(t *testing.T) {
	os.Clearenv()
	t.Setenv("PRICING_SNAPSHOT_REFRESH", "-1s")

	_, err := Load("pricing")
	assert.Error(t, err)
}

func TestConnectionStrings(t *testing.T) {
	db := DatabaseConfig{Host: "db", Port: "5432", User: "u", Password: "p", DBName: "logistics", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=logistics sslmode=disable", db.DSN())
	assert.Equal(t, "postgres://u:p@db:5432/logistics?sslmode=disable", db.MigrationURL())

	r := RedisConfig{Host: "cache", Port: "6380"}
	assert.Equal(t, "cache:6380", r.RedisAddr())
}
