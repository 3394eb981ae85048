package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/apisbr/apisbr/pkg/integrations/dadosabertos"
	"github.com/apisbr/apisbr/pkg/period"
)

// dadosCommand groups the Dados Abertos commands.
func (c *CLI) dadosCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dados",
		Short: "Query the dados.gov.br catalog",
		Long: `Query the dados.gov.br catalog (Portal Brasileiro de Dados Abertos).

The catalog API requires a token, set as dados_abertos.token in the config
file or through APISBR_DADOS_ABERTOS_TOKEN.`,
	}

	cmd.AddCommand(c.dadosSearchCommand())
	cmd.AddCommand(c.dadosIDCommand())
	cmd.AddCommand(c.dadosResourcesCommand())
	cmd.AddCommand(c.dadosDownloadCommand())

	return cmd
}

func (c *CLI) dadosSearchCommand() *cobra.Command {
	var page int

	cmd := &cobra.Command{
		Use:   "search <title>",
		Short: "List datasets whose name matches title",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client, err := c.dadosClient(ctx)
			if err != nil {
				return err
			}
			var results []dadosabertos.DatasetSummary
			err = c.spin(ctx, "Searching datasets...", func() error {
				results, err = client.Search(ctx, args[0], page)
				return err
			})
			if err != nil {
				return err
			}
			return c.writeTable(cmd, dadosabertos.SearchTable(results))
		},
	}

	cmd.Flags().IntVar(&page, "page", 1, "result page, starting at 1")
	return cmd
}

func (c *CLI) dadosIDCommand() *cobra.Command {
	var depth int

	cmd := &cobra.Command{
		Use:   "id <title>",
		Short: "Print the ID of the dataset with the given title",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client, err := c.dadosClient(ctx)
			if err != nil {
				return err
			}
			if depth == 0 {
				depth = c.cfg.DadosAbertos.SearchDepth
			}
			var id string
			err = c.spin(ctx, "Searching datasets...", func() error {
				id, err = client.FindIDDepth(ctx, args[0], depth)
				return err
			})
			id, err = c.resolve(ctx, id, err)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		},
	}

	cmd.Flags().IntVar(&depth, "depth", 0, "number of result pages to scan (default from config)")
	return cmd
}

// resourceFlags holds the filters shared by resources and download.
type resourceFlags struct {
	period   string
	fileType string
}

func (f *resourceFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.period, "period", "p", "all", "cataloging period: all, 2021, 2019-2021 or DD/MM/YYYY..DD/MM/YYYY")
	cmd.Flags().StringVarP(&f.fileType, "file-type", "t", dadosabertos.DefaultFormat, `resource format, or "all"`)
}

func (f *resourceFlags) filter(refresh bool) (dadosabertos.ResourceFilter, error) {
	p, err := period.Parse(f.period)
	if err != nil {
		return dadosabertos.ResourceFilter{}, err
	}
	return dadosabertos.ResourceFilter{Period: p, Format: f.fileType, Refresh: refresh}, nil
}

// datasetID resolves a dataset ID or title.
func (c *CLI) datasetID(ctx context.Context, client *dadosabertos.Client, identifier string) (string, error) {
	id := identifier
	if !dadosabertos.IsDatasetID(identifier) {
		var err error
		err = c.spin(ctx, "Searching datasets...", func() error {
			id, err = client.FindID(ctx, identifier)
			return err
		})
		if id, err = c.resolve(ctx, id, err); err != nil {
			return "", err
		}
	}
	return id, nil
}

func (c *CLI) dadosResourcesCommand() *cobra.Command {
	var flags resourceFlags

	cmd := &cobra.Command{
		Use:   "resources <id|title>",
		Short: "List the resources of a dataset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			filter, err := flags.filter(c.opts.refresh)
			if err != nil {
				return err
			}
			client, err := c.dadosClient(ctx)
			if err != nil {
				return err
			}

			id, err := c.datasetID(ctx, client, args[0])
			if err != nil {
				return err
			}
			var resources []dadosabertos.Resource
			err = c.spin(ctx, "Fetching dataset...", func() error {
				resources, err = client.Resources(ctx, id, filter)
				return err
			})
			if err != nil {
				return err
			}
			return c.writeTable(cmd, dadosabertos.ResourcesTable(resources))
		},
	}

	flags.register(cmd)
	return cmd
}

func (c *CLI) dadosDownloadCommand() *cobra.Command {
	var (
		flags resourceFlags
		dir   string
	)

	cmd := &cobra.Command{
		Use:   "download <id|title>",
		Short: "Download the resources of a dataset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)
			filter, err := flags.filter(c.opts.refresh)
			if err != nil {
				return err
			}
			client, err := c.dadosClient(ctx)
			if err != nil {
				return err
			}

			id, err := c.datasetID(ctx, client, args[0])
			if err != nil {
				return err
			}
			prog := newProgress(logger)
			var paths []string
			err = c.spin(ctx, "Downloading resources...", func() error {
				paths, err = client.Download(ctx, id, dir, filter)
				return err
			})
			if err != nil {
				return err
			}
			prog.done("Downloaded %d files", len(paths))

			if len(paths) == 0 {
				printWarning("No resources match the filters")
				return nil
			}
			printSuccess("Downloaded %d files", len(paths))
			for _, p := range paths {
				printFile(p)
			}
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&dir, "dir", "d", ".", "destination directory")
	return cmd
}
