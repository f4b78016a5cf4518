package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "cityscope.db", cfg.Store.DatabaseURL)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 8, cfg.Gateway.ProviderTimeoutSecs)
	assert.Equal(t, 4, cfg.Batch.MaxConcurrentLocations)
	assert.Equal(t, "https://api.open-meteo.com", cfg.Providers.OpenMeteoBaseURL)
	assert.Equal(t, "https://air-quality-api.open-meteo.com", cfg.Providers.AirQualityBaseURL)
	assert.Equal(t, "https://power.larc.nasa.gov", cfg.Providers.NASAPowerBaseURL)
	assert.Equal(t, "indices.yaml", cfg.Composer.ConfigPath)
	assert.Equal(t, "https://nominatim.openstreetmap.org", cfg.Geocode.BaseURL)
	assert.Equal(t, "cityscope-cli/1.0", cfg.Geocode.UserAgent)
}

func TestLoadFromYAML(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
store:
  driver: postgres
  database_url: postgres://localhost/cityscope
log:
  level: debug
  format: console
server:
  port: 9090
batch:
  max_concurrent_locations: 8
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "postgres://localhost/cityscope", cfg.Store.DatabaseURL)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 8, cfg.Batch.MaxConcurrentLocations)
	// Defaults still apply for unset values
	assert.Equal(t, 8, cfg.Gateway.ProviderTimeoutSecs)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
store:
  driver: sqlite
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	t.Setenv("CITYSCOPE_STORE_DRIVER", "postgres")
	t.Setenv("CITYSCOPE_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	// Env overrides file
	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	t.Setenv("CITYSCOPE_SERVER_PORT", "3000")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 3000, cfg.Server.Port)
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerJSON(t *testing.T) {
	err := InitLogger(LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "invalid", Format: "json"})
	assert.Error(t, err)
}

// validDefaults returns a Config with defaults populated for validation tests.
func validDefaults() *Config {
	cfg := &Config{}
	cfg.Store.Driver = "sqlite"
	cfg.Batch.MaxConcurrentLocations = 4
	cfg.Gateway.ProviderTimeoutSecs = 8
	cfg.Server.Port = 8080
	return cfg
}

func TestValidateCompose(t *testing.T) {
	cfg := validDefaults()
	assert.NoError(t, cfg.Validate("compose"))
}

func TestValidateServe_ValidPort(t *testing.T) {
	cfg := validDefaults()
	cfg.Server.Port = 9090

	assert.NoError(t, cfg.Validate("serve"))
}

func TestValidateServe_InvalidPort(t *testing.T) {
	cfg := validDefaults()
	cfg.Server.Port = 0

	err := cfg.Validate("serve")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "server.port must be > 0")
}

func TestValidateChat_NoBackend(t *testing.T) {
	cfg := validDefaults()

	err := cfg.Validate("chat")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "chat.webhook_url or chat.anthropic_key")
}

func TestValidateChat_Webhook(t *testing.T) {
	cfg := validDefaults()
	cfg.Chat.WebhookURL = "https://hooks.example.com/urban"

	assert.NoError(t, cfg.Validate("chat"))
}

func TestValidateChat_AnthropicKey(t *testing.T) {
	cfg := validDefaults()
	cfg.Chat.AnthropicKey = "sk-ant-key"

	assert.NoError(t, cfg.Validate("chat"))
}

func TestValidateUnknownMode(t *testing.T) {
	cfg := validDefaults()
	err := cfg.Validate("unknown")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown mode")
}

func TestValidateBadDriver(t *testing.T) {
	cfg := validDefaults()
	cfg.Store.Driver = "mysql"

	err := cfg.Validate("compose")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "store.driver must be sqlite or postgres")
}

func TestValidateConcurrencyBounds(t *testing.T) {
	cfg := validDefaults()

	cfg.Batch.MaxConcurrentLocations = 0
	err := cfg.Validate("compose")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "max_concurrent_locations must be between 1 and 32")

	cfg.Batch.MaxConcurrentLocations = 33
	err = cfg.Validate("compose")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "max_concurrent_locations must be between 1 and 32")

	cfg.Batch.MaxConcurrentLocations = 32
	err = cfg.Validate("compose")
	assert.NoError(t, err)
}
