package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/apisbr/apisbr/pkg/buildinfo"
	apierrors "github.com/apisbr/apisbr/pkg/errors"
	"github.com/apisbr/apisbr/pkg/integrations"
)

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "apisbr queries Brazilian public data APIs",
		Long: `apisbr queries Brazilian government data APIs (Dados Abertos, IBGE
Localidades, IBGE Agregados and IPEA Data) and prints the results as tables.`,
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := c.loadConfig(); err != nil {
				return err
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	flags := root.PersistentFlags()
	flags.BoolVarP(&c.opts.verbose, "verbose", "v", false, "enable verbose logging")
	flags.StringVar(&c.opts.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/apisbr/config.toml)")
	flags.StringVarP(&c.opts.format, "format", "f", "", "output format: table, csv, json or yaml (default from config)")
	flags.StringVarP(&c.opts.output, "output", "o", "", "write the result to a file instead of stdout")
	flags.BoolVar(&c.opts.refresh, "refresh", false, "bypass cached responses")
	flags.BoolVar(&c.opts.noCache, "no-cache", false, "disable the response cache")
	flags.BoolVarP(&c.opts.interactive, "interactive", "i", false, "pick among similar results when a lookup has no exact match")

	root.AddCommand(c.dadosCommand())
	root.AddCommand(c.ibgeCommand())
	root.AddCommand(c.ipeaCommand())
	root.AddCommand(c.ufCommand())
	root.AddCommand(c.jsonCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// PrintError writes err for a terminal user: the message without its
// code, followed by the similar results of a failed lookup.
func PrintError(w io.Writer, err error) {
	var noMatch *integrations.NoMatchError
	if errors.As(err, &noMatch) {
		fmt.Fprintln(w, styleIconError.Render(iconError)+" "+fmt.Sprintf("No match found for %q", noMatch.Query))
		if len(noMatch.Similar) == 0 {
			return
		}
		fmt.Fprintln(w, StyleDim.Render("  Similar results:"))
		for _, name := range noMatch.Names() {
			fmt.Fprintln(w, "  "+StyleValue.Render(name)+StyleDim.Render(" : ")+StyleHighlight.Render(noMatch.Similar[name]))
		}
		return
	}
	fmt.Fprintln(w, styleIconError.Render(iconError)+" "+apierrors.UserMessage(err))
}
