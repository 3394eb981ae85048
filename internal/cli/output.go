package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/apisbr/apisbr/pkg/tabular"
)

// outputFormat returns --format, or the configured default.
func (c *CLI) outputFormat() (tabular.Format, error) {
	raw := c.opts.format
	if raw == "" {
		raw = c.cfg.Output.Format
	}
	return tabular.ParseFormat(raw)
}

// writeTable prints t in the selected format, to the --output file when
// one was given.
func (c *CLI) writeTable(cmd *cobra.Command, t *tabular.Table) error {
	format, err := c.outputFormat()
	if err != nil {
		return err
	}

	if c.opts.output == "" {
		w := cmd.OutOrStdout()
		if format == tabular.FormatTable {
			return renderTable(w, t)
		}
		return t.Write(w, format)
	}

	f, err := os.Create(c.opts.output)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	if err := t.Write(f, format); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	printSuccess("Wrote %d rows", t.Len())
	printFile(c.opts.output)
	return nil
}

// renderTable draws t as a bordered terminal table.
func renderTable(w io.Writer, t *tabular.Table) error {
	if t.Len() == 0 {
		printInfo("No results")
		return nil
	}

	cell := lipgloss.NewStyle().Padding(0, 1)
	header := styleHeader.Padding(0, 1)

	lt := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(styleBorder).
		Headers(t.Columns...).
		Rows(t.Strings()...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return header
			}
			return cell
		})

	_, err := fmt.Fprintln(w, lt.Render())
	return err
}
