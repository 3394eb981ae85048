package tabular

import (
	"encoding/json"
	"slices"
	"sort"
	"strconv"

	"github.com/ahmetb/go-linq/v3"
)

// Row is one flattened record keyed by column name.
type Row map[string]any

// Table is an ordered set of columns and the rows holding their values.
// A row may lack a column; the value is then nil.
type Table struct {
	Columns []string `json:"columns" yaml:"columns"`
	Rows    []Row    `json:"rows" yaml:"rows"`
}

// New returns an empty table with the given columns.
func New(columns ...string) *Table {
	return &Table{Columns: columns}
}

// Append adds a row. Keys not yet known become new columns, appended in
// the order given by keys; keys of r missing from keys are appended sorted.
func (t *Table) Append(r Row, keys ...string) {
	known := make(map[string]bool, len(t.Columns))
	for _, c := range t.Columns {
		known[c] = true
	}
	for _, k := range keys {
		if !known[k] {
			t.Columns = append(t.Columns, k)
			known[k] = true
		}
	}
	var rest []string
	for k := range r {
		if !known[k] {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	t.Columns = append(t.Columns, rest...)
	t.Rows = append(t.Rows, r)
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.Rows) }

// HasColumn reports whether name is one of the table's columns.
func (t *Table) HasColumn(name string) bool {
	return slices.Contains(t.Columns, name)
}

// Column returns the values of one column, nil where a row lacks it.
func (t *Table) Column(name string) []any {
	out := make([]any, len(t.Rows))
	for i, r := range t.Rows {
		out[i] = r[name]
	}
	return out
}

// Filter returns the rows for which pred is true.
func (t *Table) Filter(pred func(Row) bool) *Table {
	var rows []Row
	linq.From(t.Rows).WhereT(pred).ToSlice(&rows)
	return &Table{Columns: slices.Clone(t.Columns), Rows: rows}
}

// Where keeps the rows whose column col renders as value.
func (t *Table) Where(col, value string) *Table {
	return t.Filter(func(r Row) bool {
		return FormatValue(r[col]) == value
	})
}

// Select keeps only the given columns, in the given order. Unknown columns
// are kept as empty columns.
func (t *Table) Select(cols ...string) *Table {
	out := &Table{Columns: slices.Clone(cols), Rows: make([]Row, len(t.Rows))}
	for i, r := range t.Rows {
		nr := make(Row, len(cols))
		for _, c := range cols {
			if v, ok := r[c]; ok {
				nr[c] = v
			}
		}
		out.Rows[i] = nr
	}
	return out
}

// Rename returns a copy with columns renamed according to names
// (old name -> new name). Columns absent from names keep their name.
func (t *Table) Rename(names map[string]string) *Table {
	rename := func(c string) string {
		if n, ok := names[c]; ok {
			return n
		}
		return c
	}
	out := &Table{Columns: make([]string, len(t.Columns)), Rows: make([]Row, len(t.Rows))}
	for i, c := range t.Columns {
		out.Columns[i] = rename(c)
	}
	for i, r := range t.Rows {
		nr := make(Row, len(r))
		for k, v := range r {
			nr[rename(k)] = v
		}
		out.Rows[i] = nr
	}
	return out
}

// Pivot reshapes long rows into a wide table: one row per distinct value of
// index, one column per distinct value of columns, cells taken from values.
// Index and column values are sorted by their rendered text; when several
// rows share an (index, column) pair the last one wins.
func (t *Table) Pivot(index, columns, values string) *Table {
	type cell struct{ idx, col string }
	cells := make(map[cell]any)
	idxSeen := make(map[string]any)
	colSeen := make(map[string]bool)

	for _, r := range t.Rows {
		idx, col := FormatValue(r[index]), FormatValue(r[columns])
		if _, ok := idxSeen[idx]; !ok {
			idxSeen[idx] = r[index]
		}
		colSeen[col] = true
		cells[cell{idx, col}] = r[values]
	}

	idxKeys := sortedKeys(idxSeen)
	colKeys := make([]string, 0, len(colSeen))
	for c := range colSeen {
		colKeys = append(colKeys, c)
	}
	sort.Strings(colKeys)

	out := &Table{Columns: append([]string{index}, colKeys...)}
	for _, idx := range idxKeys {
		row := Row{index: idxSeen[idx]}
		for _, col := range colKeys {
			if v, ok := cells[cell{idx, col}]; ok {
				row[col] = v
			}
		}
		out.Rows = append(out.Rows, row)
	}
	return out
}

// Strings renders every row as strings in column order.
func (t *Table) Strings() [][]string {
	out := make([][]string, len(t.Rows))
	for i, r := range t.Rows {
		rec := make([]string, len(t.Columns))
		for j, c := range t.Columns {
			rec[j] = FormatValue(r[c])
		}
		out[i] = rec
	}
	return out
}

// FormatValue renders a cell as text: nil is empty, numbers use the
// shortest exact representation, arrays and objects are JSON.
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case json.Number:
		return x.String()
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case bool:
		return strconv.FormatBool(x)
	default:
		data, err := json.Marshal(x)
		if err != nil {
			return ""
		}
		return string(data)
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
