package tabular

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	apierrors "github.com/apisbr/apisbr/pkg/errors"
)

// Format is an output encoding for tables.
type Format string

const (
	FormatTable Format = "table"
	FormatCSV   Format = "csv"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

// Formats lists the supported formats.
var Formats = []Format{FormatTable, FormatCSV, FormatJSON, FormatYAML}

// ParseFormat parses a format name, case-insensitively. "yml" is accepted
// for YAML.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "table":
		return FormatTable, nil
	case "csv":
		return FormatCSV, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", apierrors.New(apierrors.ErrCodeInvalidFormat, "unknown output format %q (want table, csv, json or yaml)", s)
}

// Write encodes the table to w in the given format.
func (t *Table) Write(w io.Writer, f Format) error {
	switch f {
	case FormatTable:
		return t.WriteText(w)
	case FormatCSV:
		return t.WriteCSV(w)
	case FormatJSON:
		return t.WriteJSON(w)
	case FormatYAML:
		return t.WriteYAML(w)
	}
	return apierrors.New(apierrors.ErrCodeInvalidFormat, "unknown output format %q", f)
}

// WriteCSV writes a header line followed by one record per row.
func (t *Table) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns); err != nil {
		return err
	}
	if err := cw.WriteAll(t.Strings()); err != nil {
		return err
	}
	return cw.Error()
}

// WriteJSON writes {"columns": [...], "rows": [...]} indented by two spaces.
func (t *Table) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	rows := t.Rows
	if rows == nil {
		rows = []Row{}
	}
	return enc.Encode(struct {
		Columns []string `json:"columns"`
		Rows    []Row    `json:"rows"`
	}{t.Columns, rows})
}

// WriteYAML writes a sequence of mappings, keys in column order.
func (t *Table) WriteYAML(w io.Writer) error {
	seq := &yaml.Node{Kind: yaml.SequenceNode}
	for _, r := range t.Rows {
		m := &yaml.Node{Kind: yaml.MappingNode}
		for _, c := range t.Columns {
			val := &yaml.Node{}
			if err := val.Encode(r[c]); err != nil {
				return fmt.Errorf("encode %s: %w", c, err)
			}
			m.Content = append(m.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: c}, val)
		}
		seq.Content = append(seq.Content, m)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(seq); err != nil {
		return err
	}
	return enc.Close()
}

// WriteText writes the table as tab-aligned plain text.
func (t *Table) WriteText(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(t.Columns, "\t"))
	for _, rec := range t.Strings() {
		fmt.Fprintln(tw, strings.Join(rec, "\t"))
	}
	return tw.Flush()
}
