package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/apisbr/apisbr/pkg/integrations/ibge/localidades"
)

// ibgeCommand groups the IBGE commands.
func (c *CLI) ibgeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ibge",
		Short: "Query the IBGE locality and aggregate APIs",
	}

	cmd.AddCommand(c.ibgeMunicipiosCommand())
	cmd.AddCommand(c.ibgeEstadosCommand())
	cmd.AddCommand(c.ibgeMunicipioIDCommand())
	cmd.AddCommand(c.ibgeMunicipioNomeCommand())
	cmd.AddCommand(c.agregadosCommand())

	return cmd
}

func (c *CLI) ibgeMunicipiosCommand() *cobra.Command {
	var (
		uf         string
		noVerifier bool
	)

	cmd := &cobra.Command{
		Use:   "municipios",
		Short: "List municipalities, optionally of a single UF",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client, err := c.localidadesClient(ctx)
			if err != nil {
				return err
			}

			prog := newProgress(loggerFromContext(ctx))
			var ms []localidades.Municipality
			err = c.spin(ctx, "Fetching municipalities...", func() error {
				if uf != "" {
					ms, err = client.FetchStateMunicipalities(ctx, uf, c.opts.refresh)
				} else {
					ms, err = client.FetchMunicipalities(ctx, c.opts.refresh)
				}
				return err
			})
			if err != nil {
				return err
			}
			prog.done("Fetched %d municipalities", len(ms))

			if noVerifier {
				for i := range ms {
					ms[i].ID = ms[i].Code(false)
				}
			}
			return c.writeTable(cmd, localidades.MunicipalitiesTable(ms))
		},
	}

	cmd.Flags().StringVar(&uf, "uf", "", "restrict to one UF (abbreviation)")
	cmd.Flags().BoolVar(&noVerifier, "no-verifier", false, "print 6-digit codes, without the check digit")
	return cmd
}

func (c *CLI) ibgeEstadosCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "estados",
		Short: "List the federative units",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client, err := c.localidadesClient(ctx)
			if err != nil {
				return err
			}
			states, err := client.FetchStates(ctx, c.opts.refresh)
			if err != nil {
				return err
			}
			return c.writeTable(cmd, localidades.StatesTable(states))
		},
	}
}

func (c *CLI) ibgeMunicipioIDCommand() *cobra.Command {
	var noVerifier bool

	cmd := &cobra.Command{
		Use:   "municipio-id <nome> <uf>",
		Short: "Print the IBGE code of a municipality",
		Example: `  apisbr ibge municipio-id "São Paulo" SP
  apisbr ibge municipio-id mossoro rn --no-verifier`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client, err := c.localidadesClient(ctx)
			if err != nil {
				return err
			}

			var id string
			n, err := client.MunicipalityID(ctx, args[0], args[1], !noVerifier, c.opts.refresh)
			if err == nil {
				id = strconv.Itoa(n)
			}
			if id, err = c.resolve(ctx, id, err); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		},
	}

	cmd.Flags().BoolVar(&noVerifier, "no-verifier", false, "print the 6-digit code, without the check digit")
	return cmd
}

func (c *CLI) ibgeMunicipioNomeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "municipio-nome <codigo>",
		Short: `Print "<nome> - <UF>" for a 6 or 7-digit IBGE code`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client, err := c.localidadesClient(ctx)
			if err != nil {
				return err
			}
			name, err := client.MunicipalityName(ctx, args[0], c.opts.refresh)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), name)
			return nil
		},
	}
}
