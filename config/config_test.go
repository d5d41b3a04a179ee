package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("STORE_BACKEND", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, BackendMemory, cfg.Store.Backend)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
	assert.True(t, cfg.RateLimit.Enabled)
	assert.Equal(t, 60, cfg.RateLimit.RequestsPerMinute)
	assert.Equal(t, 1024, cfg.Scan.QueueSize)
	assert.Equal(t, 5*time.Second, cfg.Scan.Timeout)
	assert.False(t, cfg.Server.TrustProxyHeaders)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("BASE_URL", "https://qr.example.com")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com,")
	t.Setenv("STORE_BACKEND", "redis")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("RATE_LIMIT_ENABLED", "false")
	t.Setenv("SHUTDOWN_TIMEOUT", "3s")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("TRUST_PROXY_HEADERS", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "https://qr.example.com", cfg.Server.BaseURL)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, BackendRedis, cfg.Store.Backend)
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
	assert.Equal(t, 2, cfg.Redis.DB)
	assert.False(t, cfg.RateLimit.Enabled)
	assert.Equal(t, 3*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.True(t, cfg.Server.TrustProxyHeaders)
}

func TestLoad_BadEnvValues(t *testing.T) {
	testCases := map[string]string{
		"REDIS_DB":            "zero",
		"RATE_LIMIT_RPM":      "lots",
		"RATE_LIMIT_ENABLED":  "maybe",
		"SHUTDOWN_TIMEOUT":    "soon",
		"TRUST_PROXY_HEADERS": "sometimes",
		"STORE_BACKEND":       "mongo",
	}
	for key, value := range testCases {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoad_YAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	doc := `
server:
  port: "7000"
  read_timeout: 2s
store:
  backend: postgres
postgres:
  host: db
  user: qr
  name: links
  sslmode: disable
scan:
  queue_size: 16
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("PORT", "7001")

	cfg, err := Load()
	require.NoError(t, err)

	// Environment wins over the file.
	assert.Equal(t, "7001", cfg.Server.Port)
	assert.Equal(t, 2*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, BackendPostgres, cfg.Store.Backend)
	assert.Equal(t, 16, cfg.Scan.QueueSize)
	// Unset keys keep their defaults.
	assert.Equal(t, "5432", cfg.Postgres.Port)
	assert.Equal(t, 10*time.Second, cfg.Server.WriteTimeout)
}

func TestLoad_MissingFile(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "nope.yaml"))
	_, err := Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := GetDefaultConfig()
	require.NoError(t, cfg.Validate())

	cfg.Scan.QueueSize = 0
	assert.Error(t, cfg.Validate())

	cfg = GetDefaultConfig()
	cfg.Server.Port = ""
	assert.Error(t, cfg.Validate())

	cfg = GetDefaultConfig()
	cfg.RateLimit.RequestsPerMinute = 0
	assert.Error(t, cfg.Validate())

	cfg.RateLimit.Enabled = false
	assert.NoError(t, cfg.Validate())
}

func TestPostgresDSN(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	cfg := GetDefaultConfig()
	cfg.Postgres.User = "qr"
	cfg.Postgres.Password = "secret"
	cfg.Postgres.Name = "links"

	assert.Equal(t, "host=localhost port=5432 user=qr password=secret dbname=links sslmode=require", cfg.PostgresDSN())

	t.Setenv("DATABASE_URL", "postgres://u:p@db/links")
	assert.Equal(t, "postgres://u:p@db/links", cfg.PostgresDSN())
}
