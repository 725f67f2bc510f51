package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	v, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	cfg, err := ParseConfig(v)
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, int64(10<<20), cfg.Upload.MaxBytes)
	assert.Equal(t, "stacked", cfg.Compositor.Layout)
	assert.Equal(t, 90, cfg.Compositor.Quality)
	assert.Equal(t, 40_000_000, cfg.Compositor.MaxPixels)
	assert.Equal(t, "gemini-2.5-flash-image", cfg.Gemini.Model)
	assert.Empty(t, cfg.Gemini.APIKey)
	assert.False(t, cfg.Kafka.Enabled)
}

func TestLoadConfigFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	yaml := []byte(`server:
  port: "9090"
  request_timeout: 5s
compositor:
  layout: adaptive
gemini:
  model: from-file
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), yaml, 0o644))

	t.Setenv("GEMINI_API_KEY", "secret")
	t.Setenv("GEMINI_MODEL", "from-env")
	t.Setenv("KAFKA_BROKERS", "a:9092,b:9092")

	v, err := LoadConfig(dir)
	require.NoError(t, err)
	cfg, err := ParseConfig(v)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.Server.RequestTimeout)
	assert.Equal(t, "adaptive", cfg.Compositor.Layout)
	assert.Equal(t, "secret", cfg.Gemini.APIKey)
	assert.Equal(t, "from-env", cfg.Gemini.Model)
	assert.Equal(t, []string{"a:9092", "b:9092"}, cfg.Kafka.Brokers)
}

func TestGetEnv(t *testing.T) {
	t.Setenv("CLIMATIME_TEST_KEY", "value")
	assert.Equal(t, "value", GetEnv("CLIMATIME_TEST_KEY", "fallback"))
	assert.Equal(t, "fallback", GetEnv("CLIMATIME_TEST_MISSING", "fallback"))
}
