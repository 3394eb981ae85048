package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"

	"github.com/apisbr/apisbr/internal/config"
	"github.com/apisbr/apisbr/pkg/cache"
)

func TestCacheDirDefault(t *testing.T) {
	home := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", home)

	cfg := config.Default()
	dir, err := cacheDir(&cfg)
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}
	if want := filepath.Join(home, "apisbr"); dir != want {
		t.Errorf("cacheDir() = %q, want %q", dir, want)
	}
}

func TestCacheDirConfigured(t *testing.T) {
	cfg := config.Default()
	cfg.Cache.Dir = "/var/cache/apisbr"

	dir, err := cacheDir(&cfg)
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}
	if dir != "/var/cache/apisbr" {
		t.Errorf("cacheDir() = %q, want /var/cache/apisbr", dir)
	}
}

func TestNewCacheBackends(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		backend string
		noCache bool
		check   func(cache.Cache) bool
	}{
		{"file", config.BackendFile, false, func(c cache.Cache) bool { _, ok := c.(*cache.FileCache); return ok }},
		{"memory", config.BackendMemory, false, func(c cache.Cache) bool { _, ok := c.(*cache.MemoryCache); return ok }},
		{"redis", config.BackendRedis, false, func(c cache.Cache) bool { _, ok := c.(*cache.RedisCache); return ok }},
		{"none", config.BackendNone, false, func(c cache.Cache) bool { _, ok := c.(*cache.NullCache); return ok }},
		{"no-cache wins", config.BackendMemory, true, func(c cache.Cache) bool { _, ok := c.(*cache.NullCache); return ok }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.Cache.Backend = tt.backend
			cfg.Cache.Dir = t.TempDir()
			cfg.Cache.Redis.Address = mr.Addr()

			c, err := newCache(ctx, &cfg, tt.noCache)
			if err != nil {
				t.Fatalf("newCache() error: %v", err)
			}
			defer c.Close()
			if !tt.check(c) {
				t.Errorf("newCache() = %T", c)
			}
		})
	}
}

func TestCountEntries(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"ab/1.json", "ab/2.json", "cd/3.json"} {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte("{}"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	if got := countEntries(dir); got != 3 {
		t.Errorf("countEntries() = %d, want 3", got)
	}
	if got := countEntries(filepath.Join(dir, "missing")); got != 0 {
		t.Errorf("countEntries(missing) = %d, want 0", got)
	}
}
