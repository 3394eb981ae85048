// Package cli implements the apisbr command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/apisbr/apisbr/internal/config"
	"github.com/apisbr/apisbr/pkg/cache"
	"github.com/apisbr/apisbr/pkg/integrations/dadosabertos"
	"github.com/apisbr/apisbr/pkg/integrations/ibge/agregados"
	"github.com/apisbr/apisbr/pkg/integrations/ibge/localidades"
	"github.com/apisbr/apisbr/pkg/integrations/ipeadata"
)

const appName = "apisbr"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	cfg  *config.Config
	opts globalOptions

	// backend is opened lazily by the first command that needs a client
	// and released by Close.
	backend cache.Cache
}

type globalOptions struct {
	configPath  string
	format      string
	output      string
	refresh     bool
	noCache     bool
	interactive bool
	verbose     bool
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		cfg:    defaultConfig(),
	}
}

func defaultConfig() *config.Config {
	cfg := config.Default()
	return &cfg
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// loadConfig reads the configuration selected by --config. The log level
// from the file applies unless --verbose was given.
func (c *CLI) loadConfig() error {
	cfg, err := config.Load(c.opts.configPath)
	if err != nil {
		return err
	}
	c.cfg = cfg
	if c.opts.verbose {
		c.SetLogLevel(LogDebug)
	} else {
		c.SetLogLevel(cfg.LogLevel())
	}
	return nil
}

// cacheBackend returns the response cache selected by the configuration,
// or a null cache with --no-cache.
func (c *CLI) cacheBackend(ctx context.Context) (cache.Cache, error) {
	if c.backend != nil {
		return c.backend, nil
	}
	b, err := newCache(ctx, c.cfg, c.opts.noCache)
	if err != nil {
		return nil, err
	}
	c.Logger.Debug("cache backend", "backend", c.cfg.Cache.Backend, "disabled", c.opts.noCache)
	c.backend = b
	return b, nil
}

func newCache(ctx context.Context, cfg *config.Config, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	switch cfg.Cache.Backend {
	case config.BackendNone:
		return cache.NewNullCache(), nil
	case config.BackendMemory:
		return cache.NewMemoryCache(), nil
	case config.BackendRedis:
		r := cfg.Cache.Redis
		return cache.NewRedisCache(ctx, cache.RedisConfig{
			Address:  r.Address,
			Password: r.Password,
			DB:       r.DB,
			Prefix:   appName + ":",
		})
	}
	dir, err := cacheDir(cfg)
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// Close releases the cache opened by the executed command.
func (c *CLI) Close() {
	if c.backend == nil {
		return
	}
	if err := c.backend.Close(); err != nil {
		c.Logger.Debug("close cache", "error", err)
	}
	c.backend = nil
}

// cacheDir returns the configured cache directory, defaulting to the XDG
// cache home (~/.cache/apisbr/).
func cacheDir(cfg *config.Config) (string, error) {
	if cfg.Cache.Dir != "" {
		return cfg.Cache.Dir, nil
	}
	return config.DefaultCacheDir()
}

func (c *CLI) ttl() time.Duration {
	ttl, err := c.cfg.CacheTTL()
	if err != nil {
		return 24 * time.Hour
	}
	return ttl
}

func (c *CLI) dadosClient(ctx context.Context) (*dadosabertos.Client, error) {
	b, err := c.cacheBackend(ctx)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	return dadosabertos.NewClient(c.cfg.DadosAbertos.Token, b, c.ttl(),
		dadosabertos.WithSearchDepth(c.cfg.DadosAbertos.SearchDepth)), nil
}

func (c *CLI) localidadesClient(ctx context.Context) (*localidades.Client, error) {
	b, err := c.cacheBackend(ctx)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	return localidades.NewClient(b, c.ttl()), nil
}

func (c *CLI) agregadosClient(ctx context.Context) (*agregados.Client, error) {
	b, err := c.cacheBackend(ctx)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	return agregados.NewClient(b, c.ttl()), nil
}

func (c *CLI) ipeaClient(ctx context.Context) (*ipeadata.Client, error) {
	b, err := c.cacheBackend(ctx)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	return ipeadata.NewClient(b, c.ttl()), nil
}
