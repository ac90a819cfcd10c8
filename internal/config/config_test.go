package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/epsilon/internal/config"
	"github.com/aretw0/epsilon/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noEnv(string) (string, bool) { return "", false }

func envOf(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "epsilon.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := config.Default()
	assert.Equal(t, 0.4, cfg.Epsilon)
	assert.Equal(t, 2500*time.Millisecond, cfg.Interval)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "en", cfg.Locale.Default)
	assert.Equal(t, "https://ipwho.is/", cfg.Region.Endpoint)
	assert.Equal(t, 3*time.Second, cfg.Region.Timeout)
	assert.Equal(t, 720*time.Hour, cfg.Preference.TTL)
	assert.Empty(t, cfg.Redis.Addr)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
epsilon: 0.25
interval: 500ms
loop: true
http:
  addr: ":9090"
locale:
  default: ES
redis:
  addr: "localhost:6379"
preference:
  ttl: 24h
  secret: hunter2
`)

	cfg, err := config.LoadWithEnv(path, noEnv)
	require.NoError(t, err)
	assert.Equal(t, 0.25, cfg.Epsilon)
	assert.Equal(t, 500*time.Millisecond, cfg.Interval)
	assert.True(t, cfg.Loop)
	assert.Equal(t, ":9090", cfg.HTTP.Addr)
	assert.Equal(t, "es", cfg.Locale.Default, "normalized")
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, "epsilon:locale:", cfg.Redis.Prefix, "untouched defaults survive")
	assert.Equal(t, 24*time.Hour, cfg.Preference.TTL)
	assert.Equal(t, "hunter2", cfg.Preference.Secret)
	assert.Equal(t, 3*time.Second, cfg.Region.Timeout)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "epsilon: 0.25\nhttp:\n  addr: \":9090\"\n")

	cfg, err := config.LoadWithEnv(path, envOf(map[string]string{
		"EPSILON_EPSILON":         "0.6",
		"EPSILON_HTTP_ADDR":       ":7070",
		"EPSILON_REGION_TIMEOUT":  "1s",
		"EPSILON_REGION_DISABLED": "true",
		"EPSILON_REDIS_DB":        "2",
		"EPSILON_SEED":            "42",
		"EPSILON_LOG_LEVEL":       "",
	}))
	require.NoError(t, err)
	assert.Equal(t, 0.6, cfg.Epsilon)
	assert.Equal(t, ":7070", cfg.HTTP.Addr)
	assert.Equal(t, time.Second, cfg.Region.Timeout)
	assert.True(t, cfg.Region.Disabled)
	assert.Equal(t, 2, cfg.Redis.DB)
	assert.Equal(t, uint64(42), cfg.Seed)
	assert.Equal(t, "info", cfg.Log.Level, "empty variables are ignored")
}

func TestLoad_MissingDefaultFileIsFine(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := config.LoadWithEnv("", noEnv)
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestLoad_Errors(t *testing.T) {
	t.Run("explicit file missing", func(t *testing.T) {
		_, err := config.LoadWithEnv(filepath.Join(t.TempDir(), "nope.yaml"), noEnv)
		assert.Error(t, err)
	})

	t.Run("bad yaml", func(t *testing.T) {
		_, err := config.LoadWithEnv(writeConfig(t, "epsilon: [unclosed"), noEnv)
		assert.Error(t, err)
	})

	t.Run("unknown key", func(t *testing.T) {
		_, err := config.LoadWithEnv(writeConfig(t, "epsilom: 0.3\n"), noEnv)
		assert.Error(t, err)
	})

	t.Run("epsilon out of range", func(t *testing.T) {
		_, err := config.LoadWithEnv(writeConfig(t, "epsilon: 1.5\n"), noEnv)
		assert.ErrorIs(t, err, domain.ErrInvalidEpsilon)
	})

	t.Run("bad interval", func(t *testing.T) {
		_, err := config.LoadWithEnv("", envOf(map[string]string{"EPSILON_INTERVAL": "-1s"}))
		assert.Error(t, err)
	})

	t.Run("unknown locale", func(t *testing.T) {
		_, err := config.LoadWithEnv("", envOf(map[string]string{"EPSILON_LOCALE_DEFAULT": "fr"}))
		assert.ErrorIs(t, err, domain.ErrUnknownLocale)
	})
}
