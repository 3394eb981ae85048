package cli

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/apisbr/apisbr/pkg/buildinfo"
	apierrors "github.com/apisbr/apisbr/pkg/errors"
	"github.com/apisbr/apisbr/pkg/integrations"
	"github.com/apisbr/apisbr/pkg/tabular"
)

func (c *CLI) jsonCommand() *cobra.Command {
	var (
		path     string
		sep      string
		maxDepth int
	)

	cmd := &cobra.Command{
		Use:   "json <url>",
		Short: "Fetch any JSON endpoint and flatten it into a table",
		Long: `Fetch any JSON endpoint and flatten it into a table.

Arrays of objects become one row per element; nested objects become
columns joined by the separator ("regiao.nome"). --path selects the part
of the document to flatten with a JSONPath expression.`,
		Example: `  apisbr json https://servicodados.ibge.gov.br/api/v1/localidades/regioes
  apisbr json https://servicodados.ibge.gov.br/api/v3/agregados/1705/metadados --path '$.variaveis'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			url := args[0]
			if err := apierrors.ValidateURL(url); err != nil {
				return err
			}
			backend, err := c.cacheBackend(ctx)
			if err != nil {
				return err
			}
			client := integrations.NewClient(backend, "json:", c.ttl(), map[string]string{
				"User-Agent": buildinfo.UserAgent(),
				"Accept":     "application/json",
			})

			// Cached as raw JSON so numbers decode the same way on hits and misses.
			var raw json.RawMessage
			err = c.spin(ctx, "Fetching...", func() error {
				return client.Cached(ctx, url, c.opts.refresh, &raw, func() error {
					doc, err := client.GetJSON(ctx, url)
					if err != nil {
						return err
					}
					raw, err = json.Marshal(doc)
					return err
				})
			})
			if err != nil {
				return err
			}

			opts := []tabular.Option{tabular.WithSeparator(sep)}
			if maxDepth > 0 {
				opts = append(opts, tabular.WithMaxDepth(maxDepth))
			}
			t, err := tabular.FlattenJSON(raw, path, opts...)
			if err != nil {
				return err
			}
			return c.writeTable(cmd, t)
		},
	}

	cmd.Flags().StringVar(&path, "path", "", "JSONPath of the part to flatten (default the whole document)")
	cmd.Flags().StringVar(&sep, "sep", ".", "separator between nested keys")
	cmd.Flags().IntVar(&maxDepth, "max-depth", 0, "stop flattening below this depth (0 for no limit)")
	return cmd
}
