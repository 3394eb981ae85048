package cli

import (
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/apisbr/apisbr/internal/config"
	"github.com/apisbr/apisbr/pkg/cache"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the API response cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached API response",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			backend, err := c.cacheBackend(ctx)
			if err != nil {
				return fmt.Errorf("open cache: %w", err)
			}

			switch b := backend.(type) {
			case *cache.FileCache:
				count := countEntries(b.Dir())
				if err := b.Clear(); err != nil {
					return err
				}
				printSuccess("Cleared %d cached entries", count)
				printDetail("Directory: %s", b.Dir())
			case *cache.RedisCache:
				count, err := b.Clear(ctx)
				if err != nil {
					return err
				}
				printSuccess("Cleared %d cached entries", count)
				printDetail("Redis: %s", c.cfg.Cache.Redis.Address)
			default:
				printInfo("Cache is empty")
			}
			return nil
		},
	}
}

// countEntries counts the cache files under dir.
func countEntries(dir string) int {
	n := 0
	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			n++
		}
		return nil
	})
	return n
}

func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print where responses are cached",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch c.cfg.Cache.Backend {
			case config.BackendRedis:
				r := c.cfg.Cache.Redis
				fmt.Fprintf(out, "redis://%s/%d\n", r.Address, r.DB)
			case config.BackendFile:
				dir, err := cacheDir(c.cfg)
				if err != nil {
					return fmt.Errorf("get cache dir: %w", err)
				}
				fmt.Fprintln(out, dir)
			default:
				fmt.Fprintf(out, "%s (nothing is persisted)\n", c.cfg.Cache.Backend)
			}
			return nil
		},
	}
}
