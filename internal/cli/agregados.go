package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/apisbr/apisbr/pkg/integrations"
	"github.com/apisbr/apisbr/pkg/integrations/ibge/agregados"
	"github.com/apisbr/apisbr/pkg/tabular"
)

func (c *CLI) agregadosCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "agregados",
		Aliases: []string{"sidra"},
		Short:   "Query IBGE aggregates (SIDRA tables)",
	}

	cmd.AddCommand(c.agregadosListCommand())
	cmd.AddCommand(c.agregadosIDCommand())
	cmd.AddCommand(c.agregadosMetadataCommand())
	cmd.AddCommand(c.agregadosDataCommand())
	cmd.AddCommand(c.agregadosLevelsCommand())

	return cmd
}

// similarRows keeps the rows whose column col resembles filter.
func similarRows(t *tabular.Table, col, filter string) *tabular.Table {
	if filter == "" {
		return t
	}
	return t.Filter(func(r tabular.Row) bool {
		return integrations.IsSimilarText(filter, tabular.FormatValue(r[col]))
	})
}

func (c *CLI) agregadosListCommand() *cobra.Command {
	var filter string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List aggregates grouped by survey",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client, err := c.agregadosClient(ctx)
			if err != nil {
				return err
			}
			var surveys []agregados.Survey
			err = c.spin(ctx, "Fetching catalog...", func() error {
				surveys, err = client.FetchCatalog(ctx, c.opts.refresh)
				return err
			})
			if err != nil {
				return err
			}
			return c.writeTable(cmd, similarRows(agregados.CatalogTable(surveys), "agregado", filter))
		},
	}

	cmd.Flags().StringVar(&filter, "filter", "", "keep aggregates whose name contains every word of filter")
	return cmd
}

func (c *CLI) agregadosIDCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "id <aggregate[;variable]>",
		Short: "Resolve aggregate and variable names to IDs",
		Example: `  apisbr ibge agregados id "Área plantada"
  apisbr ibge agregados id "1705;Área plantada|Área colhida"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client, err := c.agregadosClient(ctx)
			if err != nil {
				return err
			}
			var id string
			err = c.spin(ctx, "Resolving...", func() error {
				id, err = client.FindID(ctx, args[0])
				return err
			})
			if id, err = c.resolve(ctx, id, err); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		},
	}
}

// aggregateIdentifier normalizes an aggregate identifier to
// "<agg>[-<vars>]", resolving names and offering the picker on a miss.
func (c *CLI) aggregateIdentifier(ctx context.Context, client *agregados.Client, s string) (string, error) {
	agg, vars, err := client.ParseIdentifier(ctx, s)
	if err != nil {
		return c.resolve(ctx, "", err)
	}
	if vars == "" {
		return agg, nil
	}
	return agg + "-" + vars, nil
}

func (c *CLI) agregadosMetadataCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "metadata <aggregate>",
		Short: "Show the variables, levels and classifications of an aggregate",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client, err := c.agregadosClient(ctx)
			if err != nil {
				return err
			}
			id, err := c.aggregateIdentifier(ctx, client, args[0])
			if err != nil {
				return err
			}
			md, err := client.FetchMetadata(ctx, id, c.opts.refresh)
			if err != nil {
				return err
			}

			format, err := c.outputFormat()
			if err != nil {
				return err
			}
			if format != tabular.FormatTable {
				return c.writeTable(cmd, metadataTable(md))
			}
			return printMetadata(cmd.OutOrStdout(), md)
		},
	}
}

// metadataTable flattens the metadata document for non-terminal formats.
func metadataTable(md *agregados.Metadata) *tabular.Table {
	t, err := tabular.Of(md)
	if err != nil {
		return tabular.New()
	}
	return t
}

func printMetadata(w io.Writer, md *agregados.Metadata) error {
	printHeading(w, fmt.Sprintf("%s - %s", md.ID, md.Name))
	printKeyValue(w, "Pesquisa", md.Survey)
	printKeyValue(w, "Assunto", md.Subject)
	printKeyValue(w, "Periodicidade", fmt.Sprintf("%s (%s a %s)",
		md.Periodicity.Frequency, md.Periodicity.Start, md.Periodicity.End))
	printKeyValue(w, "URL", md.URL)

	fmt.Fprintln(w)
	printHeading(w, "Níveis territoriais")
	var levels []string
	levels = append(levels, md.Levels.Administrative...)
	levels = append(levels, md.Levels.IBGE...)
	levels = append(levels, md.Levels.Special...)
	for _, l := range levels {
		printKeyValue(w, l, agregados.LevelDescription(l))
	}

	fmt.Fprintln(w)
	printHeading(w, "Variáveis")
	if err := renderTable(w, agregados.VariablesTable(md)); err != nil {
		return err
	}

	if len(md.Classifications) > 0 {
		fmt.Fprintln(w)
		printHeading(w, "Classificações")
		return renderTable(w, agregados.ClassificationsTable(md))
	}
	return nil
}

func (c *CLI) agregadosDataCommand() *cobra.Command {
	var (
		level      string
		periods    string
		localities []string
		classify   []string
	)

	cmd := &cobra.Command{
		Use:   "data <identifier>",
		Short: "Fetch the values of aggregate variables",
		Long: `Fetch the values of aggregate variables.

The identifier is "<aggregate>-<variable>[|<variable>...]" with IDs, or
"<aggregate>;<variable>" with IDs or names.`,
		Example: `  apisbr ibge agregados data 1705-109 --level N3 --period -2
  apisbr ibge agregados data "1612;Área plantada" -l N3 -c "Produto das lavouras temporárias=Soja (em grão)"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client, err := c.agregadosClient(ctx)
			if err != nil {
				return err
			}
			id, err := c.aggregateIdentifier(ctx, client, args[0])
			if err != nil {
				return err
			}

			q := agregados.Query{
				Identifier: id,
				Level:      level,
				Periods:    periods,
				Localities: localities,
				Refresh:    c.opts.refresh,
			}
			for _, arg := range classify {
				parsed, err := agregados.ParseClassification(arg)
				if err != nil {
					return err
				}
				if q.Classify == nil {
					q.Classify = make(map[string][]string)
				}
				for k, v := range parsed {
					q.Classify[k] = v
				}
			}

			prog := newProgress(loggerFromContext(ctx))
			var t *tabular.Table
			err = c.spin(ctx, "Fetching values...", func() error {
				t, err = client.FetchData(ctx, q)
				return err
			})
			if err != nil {
				return err
			}
			prog.done("Fetched %d values", t.Len())
			return c.writeTable(cmd, t)
		},
	}

	cmd.Flags().StringVarP(&level, "level", "l", agregados.DefaultLevel, "territorial level code or description")
	cmd.Flags().StringVarP(&periods, "period", "p", agregados.DefaultPeriods, `periods: "-<n>" latest, or "201901-201912|202101"`)
	cmd.Flags().StringSliceVar(&localities, "localities", nil, "locality IDs of the level (default all)")
	cmd.Flags().StringArrayVarP(&classify, "classify", "c", nil, `"Classification=cat1,cat2" (repeatable; "all" keeps every category)`)
	return cmd
}

func (c *CLI) agregadosLevelsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "levels",
		Short: "List the territorial level codes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.writeTable(cmd, agregados.LevelsTable(agregados.Levels()))
		},
	}
}
