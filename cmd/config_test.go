package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/places-geojson/internal/config"
)

func TestPrintConfig_RedactsKey(t *testing.T) {
	c := testConfig("https://example.test/place")
	c.Google.APIKey = "super-secret"

	var buf bytes.Buffer
	require.NoError(t, printConfig(&buf, c))

	assert.NotContains(t, buf.String(), "super-secret")

	var got config.Config
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "[redacted]", got.Google.APIKey)
	assert.Equal(t, "https://example.test/place", got.Google.BaseURL)
	assert.Equal(t, 1, got.Pipeline.Concurrency)
	assert.Equal(t, "super-secret", c.Google.APIKey, "original config unchanged")
}
