package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/apisbr/apisbr/internal/config"
)

func (c *CLI) configCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file",
	}

	cmd.AddCommand(c.configInitCommand())
	cmd.AddCommand(c.configPathCommand())
	cmd.AddCommand(c.configShowCommand())

	return cmd
}

// skipConfig replaces the root pre-run for commands that must work before
// a configuration file exists.
func skipConfig(*cobra.Command, []string) error { return nil }

// configPath returns --config or the default location.
func (c *CLI) configPath() (string, error) {
	if c.opts.configPath != "" {
		return c.opts.configPath, nil
	}
	return config.DefaultPath()
}

func (c *CLI) configInitCommand() *cobra.Command {
	var (
		force bool
		token string
	)

	cmd := &cobra.Command{
		Use:               "init",
		Short:             "Write a configuration file with the default settings",
		PersistentPreRunE: skipConfig,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := c.configPath()
			if err != nil {
				return err
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
				return err
			}

			cfg := config.Default()
			cfg.DadosAbertos.Token = token
			if err := config.Write(path, cfg); err != nil {
				return err
			}
			printSuccess("Wrote configuration")
			printFile(path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	cmd.Flags().StringVar(&token, "token", "", "Dados Abertos API token to store")
	return cmd
}

func (c *CLI) configPathCommand() *cobra.Command {
	return &cobra.Command{
		Use:               "path",
		Short:             "Print the configuration file path",
		PersistentPreRunE: skipConfig,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := c.configPath()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
}

func (c *CLI) configShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration, secrets masked",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := c.cfg.Redacted()
			w := cmd.OutOrStdout()
			printKeyValue(w, "token", valueOrNone(cfg.DadosAbertos.Token))
			printKeyValue(w, "search_depth", strconv.Itoa(cfg.DadosAbertos.SearchDepth))
			printKeyValue(w, "cache.backend", cfg.Cache.Backend)
			printKeyValue(w, "cache.dir", valueOrNone(cfg.Cache.Dir))
			printKeyValue(w, "cache.ttl", cfg.Cache.TTL)
			printKeyValue(w, "redis.address", cfg.Cache.Redis.Address)
			printKeyValue(w, "redis.db", strconv.Itoa(cfg.Cache.Redis.DB))
			printKeyValue(w, "server.addr", cfg.Server.Addr)
			printKeyValue(w, "log.level", cfg.Log.Level)
			printKeyValue(w, "output.format", cfg.Output.Format)
			return nil
		},
	}
}

func valueOrNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}
