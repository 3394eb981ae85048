package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	charmlog "github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "github.com/apisbr/apisbr/pkg/errors"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv(LegacyTokenEnv, "")
	t.Setenv("DADOS_ABERTOS_TOKEN", "")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, Default(), *cfg)
	ttl, err := cfg.CacheTTL()
	require.NoError(t, err)
	assert.Equal(t, 24*time.Hour, ttl)
	assert.Equal(t, charmlog.InfoLevel, cfg.LogLevel())
}

func TestLoadFile(t *testing.T) {
	path := writeFile(t, `
[dados_abertos]
token = "from-file"
search_depth = 3

[cache]
backend = "redis"
ttl = "1h30m"

[cache.redis]
address = "redis:6379"
db = 2

[server]
addr = "127.0.0.1:9000"

[output]
format = "csv"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "from-file", cfg.DadosAbertos.Token)
	assert.Equal(t, 3, cfg.DadosAbertos.SearchDepth)
	assert.Equal(t, BackendRedis, cfg.Cache.Backend)
	assert.Equal(t, "redis:6379", cfg.Cache.Redis.Address)
	assert.Equal(t, 2, cfg.Cache.Redis.DB)
	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr)
	assert.Equal(t, "csv", cfg.Output.Format)
	assert.Equal(t, "info", cfg.Log.Level, "unset keys keep their default")

	ttl, err := cfg.CacheTTL()
	require.NoError(t, err)
	assert.Equal(t, 90*time.Minute, ttl)
}

func TestLoadEnvOverrides(t *testing.T) {
	path := writeFile(t, `
[dados_abertos]
token = "from-file"

[cache]
backend = "file"
`)
	t.Setenv("APISBR_DADOS_ABERTOS_TOKEN", "from-env")
	t.Setenv("APISBR_CACHE_BACKEND", "memory")
	t.Setenv("APISBR_LOG_LEVEL", "debug")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.DadosAbertos.Token)
	assert.Equal(t, BackendMemory, cfg.Cache.Backend)
	assert.Equal(t, charmlog.DebugLevel, cfg.LogLevel())
}

func TestLoadLegacyToken(t *testing.T) {
	path := writeFile(t, "")
	t.Setenv(LegacyTokenEnv, "legacy")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "legacy", cfg.DadosAbertos.Token)

	t.Setenv("APISBR_DADOS_ABERTOS_TOKEN", "prefixed")
	cfg, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, "prefixed", cfg.DadosAbertos.Token, "prefixed variable wins")
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"backend", "[cache]\nbackend = \"s3\"\n"},
		{"ttl", "[cache]\nttl = \"forever\"\n"},
		{"format", "[output]\nformat = \"xml\"\n"},
		{"log level", "[log]\nlevel = \"loud\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, tt.content))
			require.Error(t, err)
			assert.True(t, apierrors.IsValidation(err), "got %v", err)
		})
	}
}

func TestWriteAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	cfg := Default()
	cfg.DadosAbertos.Token = "secret"
	cfg.Cache.Backend = BackendNone

	require.NoError(t, Write(path, cfg))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "secret", loaded.DadosAbertos.Token)
	assert.Equal(t, BackendNone, loaded.Cache.Backend)
}

func TestDefaultPaths(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/cfg")
	t.Setenv("XDG_CACHE_HOME", "/tmp/cache")

	path, err := DefaultPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/tmp/cfg", "apisbr", "config.toml"), path)

	dir, err := DefaultCacheDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/tmp/cache", "apisbr"), dir)
}

func TestRedacted(t *testing.T) {
	cfg := Default()
	cfg.DadosAbertos.Token = "secret"
	cfg.Cache.Redis.Password = "pw"

	r := cfg.Redacted()
	assert.NotEqual(t, "secret", r.DadosAbertos.Token)
	assert.NotEqual(t, "pw", r.Cache.Redis.Password)
	assert.Equal(t, "secret", cfg.DadosAbertos.Token, "original untouched")
}
