package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/apisbr/apisbr/pkg/integrations/ipeadata"
	"github.com/apisbr/apisbr/pkg/period"
	"github.com/apisbr/apisbr/pkg/tabular"
)

// ipeaCommand groups the IPEA Data commands.
func (c *CLI) ipeaCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ipea",
		Short: "Query IPEA Data time series",
	}

	cmd.AddCommand(c.ipeaSeriesCommand())
	cmd.AddCommand(c.ipeaIDCommand())
	cmd.AddCommand(c.ipeaValuesCommand())

	return cmd
}

func (c *CLI) ipeaSeriesCommand() *cobra.Command {
	var filter string

	cmd := &cobra.Command{
		Use:   "series",
		Short: "List the available series",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client, err := c.ipeaClient(ctx)
			if err != nil {
				return err
			}
			var series []ipeadata.Series
			err = c.spin(ctx, "Fetching series...", func() error {
				series, err = client.FetchSeries(ctx, c.opts.refresh)
				return err
			})
			if err != nil {
				return err
			}
			return c.writeTable(cmd, similarRows(ipeadata.SeriesTable(series), "nome", filter))
		},
	}

	cmd.Flags().StringVar(&filter, "filter", "", "keep series whose name contains every word of filter")
	return cmd
}

func (c *CLI) ipeaIDCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "id <name>",
		Short: "Print the code of the series with the given name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client, err := c.ipeaClient(ctx)
			if err != nil {
				return err
			}
			var id string
			err = c.spin(ctx, "Fetching series...", func() error {
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

func (c *CLI) ipeaValuesCommand() *cobra.Command {
	var (
		periodFlag string
		level      string
	)

	cmd := &cobra.Command{
		Use:   "values <code|name>",
		Short: "Fetch the observations of a series",
		Example: `  apisbr ipea values BM12_TJOVER12 --period 2015-2020
  apisbr ipea values "PIB Estadual" --level Estados`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			p, err := period.Parse(periodFlag)
			if err != nil {
				return err
			}
			client, err := c.ipeaClient(ctx)
			if err != nil {
				return err
			}

			code := args[0]
			if !ipeadata.IsSeriesCode(code) {
				var id string
				err = c.spin(ctx, "Fetching series...", func() error {
					id, err = client.FindID(ctx, code)
					return err
				})
				if code, err = c.resolve(ctx, id, err); err != nil {
					return err
				}
			}

			prog := newProgress(loggerFromContext(ctx))
			var t *tabular.Table
			err = c.spin(ctx, "Fetching values...", func() error {
				t, err = client.FetchValues(ctx, code, ipeadata.ValuesFilter{Period: p, Level: level, Refresh: c.opts.refresh})
				return err
			})
			if err != nil {
				return err
			}
			prog.done("Fetched %d rows", t.Len())
			return c.writeTable(cmd, t)
		},
	}

	cmd.Flags().StringVarP(&periodFlag, "period", "p", "all", "observation period: all, 2021, 2019-2021 or DD/MM/YYYY..DD/MM/YYYY")
	cmd.Flags().StringVarP(&level, "level", "l", "", `territorial level ("Brasil", "Estados", "Municípios"); pivots the result`)
	return cmd
}
