package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sells-group/places-geojson/internal/cost"
)

// chdirTemp switches into an empty temp dir so no config.yaml is found.
func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })
	t.Setenv("GOOGLE_API_KEY", "")
	t.Setenv("PLACES_GOOGLE_API_KEY", "")
	return dir
}

func TestLoadDefaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Empty(t, cfg.Google.APIKey)
	assert.Equal(t, "https://maps.googleapis.com/maps/api/place", cfg.Google.BaseURL)
	assert.Equal(t, 10, cfg.Google.TimeoutSecs)
	assert.Zero(t, cfg.Google.RateLimit)
	assert.Equal(t, 1, cfg.Pipeline.Concurrency)
	assert.False(t, cfg.Pipeline.SkipUnresolved)
	assert.Equal(t, "utf-8", cfg.Input.Encoding)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.InDelta(t, cost.DefaultRates().Places.DetailsPer1K, cfg.Pricing.PlacesDetailsPer1K, 1e-9)
}

func TestLoadFromYAML(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
google:
  api_key: file-key
  rate_limit: 5
pipeline:
  concurrency: 4
  skip_unresolved: true
log:
  level: debug
  format: console
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "file-key", cfg.Google.APIKey)
	assert.InDelta(t, 5.0, cfg.Google.RateLimit, 0.001)
	assert.Equal(t, 4, cfg.Pipeline.Concurrency)
	assert.True(t, cfg.Pipeline.SkipUnresolved)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	// Defaults still apply for unset values
	assert.Equal(t, 10, cfg.Google.TimeoutSecs)
}

func TestLoadInvalidYAML(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("google: [unclosed"), 0644))

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config: read file")
}

func TestLoadGoogleAPIKeyEnv(t *testing.T) {
	chdirTemp(t)
	t.Setenv("GOOGLE_API_KEY", "env-key")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "env-key", cfg.Google.APIKey)
}

func TestLoadPrefixedKeyWinsOverGoogleAPIKey(t *testing.T) {
	chdirTemp(t)
	t.Setenv("GOOGLE_API_KEY", "plain")
	t.Setenv("PLACES_GOOGLE_API_KEY", "prefixed")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "prefixed", cfg.Google.APIKey)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
pipeline:
  concurrency: 4
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	t.Setenv("PLACES_PIPELINE_CONCURRENCY", "2")
	t.Setenv("PLACES_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	// Env overrides file
	assert.Equal(t, 2, cfg.Pipeline.Concurrency)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func validConfig() *Config {
	cfg := &Config{}
	cfg.Google.APIKey = "key"
	cfg.Google.TimeoutSecs = 10
	cfg.Pipeline.Concurrency = 1
	return cfg
}

func TestValidate_OK(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantKey string
	}{
		{"missing api key", func(c *Config) { c.Google.APIKey = "" }, "google.api_key"},
		{"blank api key", func(c *Config) { c.Google.APIKey = "   " }, "google.api_key"},
		{"zero timeout", func(c *Config) { c.Google.TimeoutSecs = 0 }, "google.timeout_secs"},
		{"negative rate limit", func(c *Config) { c.Google.RateLimit = -1 }, "google.rate_limit"},
		{"negative pricing", func(c *Config) { c.Pricing.PlacesDetailsPer1K = -0.5 }, "pricing.places_details_per_1k"},
		{"zero concurrency", func(c *Config) { c.Pipeline.Concurrency = 0 }, "pipeline.concurrency"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)

			var ce *ConfigurationError
			require.True(t, errors.As(err, &ce))
			assert.Equal(t, tt.wantKey, ce.Key)
			assert.Contains(t, err.Error(), tt.wantKey)
		})
	}
}

func TestRedacted(t *testing.T) {
	cfg := validConfig()
	cfg.Google.APIKey = "secret"
	cfg.Server.CORSOrigins = []string{"https://a.example"}

	r := cfg.Redacted()
	assert.Equal(t, "[redacted]", r.Google.APIKey)
	assert.Equal(t, "secret", cfg.Google.APIKey)

	r.Server.CORSOrigins[0] = "changed"
	assert.Equal(t, "https://a.example", cfg.Server.CORSOrigins[0])

	empty := (&Config{}).Redacted()
	assert.Empty(t, empty.Google.APIKey)
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
