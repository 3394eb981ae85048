package cli

import (
	"github.com/spf13/cobra"

	"github.com/apisbr/apisbr/pkg/labels"
	"github.com/apisbr/apisbr/pkg/tabular"
)

func (c *CLI) ufCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "uf [name|abbreviation]",
		Short: "Convert between UF names and abbreviations",
		Long: `Convert between UF names and abbreviations. Without arguments, list
every federative unit.`,
		Example: `  apisbr uf "São Paulo"
  apisbr uf rj`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ufs := labels.UFs()
			if len(args) == 1 {
				uf, err := labels.Lookup(args[0])
				if err != nil {
					return err
				}
				ufs = []labels.UF{uf}
			}

			t := tabular.New("sigla", "nome")
			for _, uf := range ufs {
				t.Append(tabular.Row{"sigla": uf.Abbrev, "nome": uf.Name})
			}
			return c.writeTable(cmd, t)
		},
	}
}
