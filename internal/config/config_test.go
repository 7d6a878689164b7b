package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Creates a temporary YAML config file in a temporary directory.
func createTempConfigFile(t *testing.T, content string) string {
	t.Helper()
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "test_config.yaml")

	err := os.WriteFile(configPath, []byte(content), 0o600)
	require.NoError(t, err, "Failed to write temporary config file")

	return configPath
}

func TestLoadConfigFromPath(t *testing.T) {
	validYAML := `
env: "test"
http_server:
  address: ":8081"
commerce:
  BASE_URL: "https://admin.mydivix.com/api/v1"
  REQUEST_TIMEOUT: "5s"
  CART_ID_HEADER: "cart-id"
redis:
  REDIS_HOST: "redishost"
  REDIS_PORT: "6380"
  REDIS_USER: "redisuser"
  REDIS_PASSWORD: "redispassword"
  REDIS_DB: 1
cache:
  default_ttl: "10m"
security:
  JWT_KEY: "testjwtkey"
otel:
  SERVICE_NAME: "test-service"
  EXPORTER_ENDPOINT: "http://otel:4318/v1/traces"
  SAMPLER_RATIO: 0.5
`

	// Verifies values from YAML are loaded correctly
	t.Run("Load from explicit path", func(t *testing.T) {
		configPath := createTempConfigFile(t, validYAML)

		cfg, err := LoadConfigFromPath(configPath)
		require.NoError(t, err)
		require.NotNil(t, cfg)
		assert.Equal(t, "test", cfg.Env)
		assert.Equal(t, ":8081", cfg.HTTPServer.Addr)
		assert.Equal(t, "https://admin.mydivix.com/api/v1", cfg.Commerce.BaseURL)
		assert.Equal(t, 5*time.Second, cfg.Commerce.RequestTimeout)
		assert.Equal(t, "cart-id", cfg.Commerce.CartIDHeader)
		assert.Equal(t, "redisuser", cfg.RedisConnect.Username)
		assert.Equal(t, 1, cfg.RedisConnect.DB)
		assert.Equal(t, 10*time.Minute, cfg.Cache.DefaultTTL)
		assert.Equal(t, "testjwtkey", cfg.Security.JWTKey)
		assert.InDelta(t, 0.5, cfg.Otel.SamplerRatio, 0.0001)
	})

	t.Run("Missing file returns error", func(t *testing.T) {
		cfg, err := LoadConfigFromPath(filepath.Join(t.TempDir(), "nope.yaml"))
		require.Error(t, err)
		assert.Nil(t, cfg)
		assert.Contains(t, err.Error(), "does not exist")
	})

	t.Run("Missing required field returns error", func(t *testing.T) {
		// env is env-required
		configPath := createTempConfigFile(t, `
http_server:
  address: ":8081"
security:
  JWT_KEY: "k"
`)
		t.Setenv("ENV", "")
		os.Unsetenv("ENV")

		cfg, err := LoadConfigFromPath(configPath)
		require.Error(t, err)
		assert.Nil(t, cfg)
	})

	t.Run("Defaults applied when section omitted", func(t *testing.T) {
		configPath := createTempConfigFile(t, `
env: "test"
security:
  JWT_KEY: "k"
`)

		cfg, err := LoadConfigFromPath(configPath)
		require.NoError(t, err)
		assert.Equal(t, ":8080", cfg.HTTPServer.Addr)
		assert.Equal(t, "https://admin.mydivix.com/api/v1", cfg.Commerce.BaseURL)
		assert.Equal(t, 15*time.Second, cfg.Commerce.RequestTimeout)
		assert.Equal(t, 720*time.Hour, cfg.Cache.DefaultTTL)
		assert.Equal(t, "divix-cart", cfg.Otel.ServiceName)
	})
}

func TestRedisGetDSN(t *testing.T) {
	r := &RedisConnect{
		Host:     "redishost",
		Port:     "6380",
		Username: "u",
		Password: "p",
		DB:       2,
	}

	assert.Equal(t, "redis://u:p@redishost:6380/2", r.GetDSN())
}
