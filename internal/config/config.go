// Package config loads apisbr settings from a TOML file, a .env file and
// APISBR_* environment variables, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	charmlog "github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	apierrors "github.com/apisbr/apisbr/pkg/errors"
	"github.com/apisbr/apisbr/pkg/tabular"
)

const (
	appName = "apisbr"

	// EnvPrefix prefixes every environment override (APISBR_CACHE_TTL).
	EnvPrefix = "APISBR"

	// LegacyTokenEnv is the variable older scripts use for the Dados
	// Abertos token. It applies when no other source sets one.
	LegacyTokenEnv = "dados_abertos_token"
)

// Cache backends.
const (
	BackendFile   = "file"
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendNone   = "none"
)

// Config holds every setting of the CLI and the HTTP server.
type Config struct {
	DadosAbertos DadosAbertosConfig `mapstructure:"dados_abertos" toml:"dados_abertos"`
	Cache        CacheConfig        `mapstructure:"cache" toml:"cache"`
	Server       ServerConfig       `mapstructure:"server" toml:"server"`
	Log          LogConfig          `mapstructure:"log" toml:"log"`
	Output       OutputConfig       `mapstructure:"output" toml:"output"`
}

// DadosAbertosConfig configures the Dados Abertos client.
type DadosAbertosConfig struct {
	Token       string `mapstructure:"token" toml:"token"`
	SearchDepth int    `mapstructure:"search_depth" toml:"search_depth"`
}

// CacheConfig selects and configures the response cache.
type CacheConfig struct {
	Backend string      `mapstructure:"backend" toml:"backend"`
	Dir     string      `mapstructure:"dir" toml:"dir,omitempty"`
	TTL     string      `mapstructure:"ttl" toml:"ttl"`
	Redis   RedisConfig `mapstructure:"redis" toml:"redis"`
}

// RedisConfig configures the redis cache backend.
type RedisConfig struct {
	Address  string `mapstructure:"address" toml:"address"`
	Password string `mapstructure:"password" toml:"password,omitempty"`
	DB       int    `mapstructure:"db" toml:"db"`
}

// ServerConfig configures the HTTP facade.
type ServerConfig struct {
	Addr string `mapstructure:"addr" toml:"addr"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level string `mapstructure:"level" toml:"level"`
}

// OutputConfig configures how tables are printed.
type OutputConfig struct {
	Format string `mapstructure:"format" toml:"format"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		DadosAbertos: DadosAbertosConfig{SearchDepth: 10},
		Cache: CacheConfig{
			Backend: BackendFile,
			TTL:     "24h",
			Redis:   RedisConfig{Address: "localhost:6379"},
		},
		Server: ServerConfig{Addr: ":8080"},
		Log:    LogConfig{Level: "info"},
		Output: OutputConfig{Format: string(tabular.FormatTable)},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/apisbr/config.toml, falling back to
// ~/.config/apisbr/config.toml.
func DefaultPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// DefaultCacheDir returns $XDG_CACHE_HOME/apisbr, falling back to
// ~/.cache/apisbr.
func DefaultCacheDir() (string, error) {
	if dir := os.Getenv("XDG_CACHE_HOME"); dir != "" {
		return filepath.Join(dir, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// Load reads the configuration file at path (DefaultPath when empty),
// then applies .env and environment overrides. A missing file is only an
// error when path was given explicitly.
func Load(path string) (*Config, error) {
	loadDotEnv()

	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return nil, fmt.Errorf("resolve config path: %w", err)
		}
		path = p
	}

	v := viper.New()
	setDefaults(v, Default())
	v.SetConfigFile(path)
	v.SetConfigType("toml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config %s: %w", path, err)
	}
	if cfg.DadosAbertos.Token == "" {
		cfg.DadosAbertos.Token = legacyToken()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("dados_abertos.token", d.DadosAbertos.Token)
	v.SetDefault("dados_abertos.search_depth", d.DadosAbertos.SearchDepth)
	v.SetDefault("cache.backend", d.Cache.Backend)
	v.SetDefault("cache.dir", d.Cache.Dir)
	v.SetDefault("cache.ttl", d.Cache.TTL)
	v.SetDefault("cache.redis.address", d.Cache.Redis.Address)
	v.SetDefault("cache.redis.password", d.Cache.Redis.Password)
	v.SetDefault("cache.redis.db", d.Cache.Redis.DB)
	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("output.format", d.Output.Format)
}

// loadDotEnv loads ./.env without overriding variables already set.
func loadDotEnv() {
	if _, err := os.Stat(".env"); err == nil {
		_ = godotenv.Load(".env")
	}
}

func legacyToken() string {
	if tok := os.Getenv(LegacyTokenEnv); tok != "" {
		return tok
	}
	return os.Getenv(strings.ToUpper(LegacyTokenEnv))
}

// Validate checks enumerated values and durations.
func (c *Config) Validate() error {
	switch c.Cache.Backend {
	case BackendFile, BackendMemory, BackendRedis, BackendNone:
	default:
		return apierrors.New(apierrors.ErrCodeInvalidInput,
			"invalid cache backend %q (want file, memory, redis or none)", c.Cache.Backend)
	}
	if _, err := c.CacheTTL(); err != nil {
		return err
	}
	if _, err := tabular.ParseFormat(c.Output.Format); err != nil {
		return err
	}
	if _, err := charmlog.ParseLevel(c.Log.Level); err != nil {
		return apierrors.Wrap(apierrors.ErrCodeInvalidInput, err, "invalid log level %q", c.Log.Level)
	}
	if c.DadosAbertos.SearchDepth < 0 {
		return apierrors.New(apierrors.ErrCodeInvalidInput, "search depth cannot be negative")
	}
	return nil
}

// CacheTTL parses cache.ttl.
func (c *Config) CacheTTL() (time.Duration, error) {
	ttl, err := time.ParseDuration(c.Cache.TTL)
	if err != nil || ttl < 0 {
		return 0, apierrors.New(apierrors.ErrCodeInvalidInput, "invalid cache ttl %q", c.Cache.TTL)
	}
	return ttl, nil
}

// LogLevel parses log.level, defaulting to info.
func (c *Config) LogLevel() charmlog.Level {
	level, err := charmlog.ParseLevel(c.Log.Level)
	if err != nil {
		return charmlog.InfoLevel
	}
	return level
}

// Write stores cfg as TOML at path, creating parent directories. The file
// is private to the user since it may hold the API token.
func Write(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("create config: %w", err)
	}
	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		f.Close()
		return fmt.Errorf("encode config: %w", err)
	}
	return f.Close()
}

// Redacted returns a copy of c with secrets masked, for display.
func (c Config) Redacted() Config {
	if c.DadosAbertos.Token != "" {
		c.DadosAbertos.Token = "********"
	}
	if c.Cache.Redis.Password != "" {
		c.Cache.Redis.Password = "********"
	}
	return c
}
