package tabular

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/PaesslerAG/jsonpath"

	apierrors "github.com/apisbr/apisbr/pkg/errors"
)

const defaultSeparator = "."

type options struct {
	sep      string
	maxDepth int
}

// Option configures [Flatten].
type Option func(*options)

// WithSeparator sets the string joining nested keys (default ".").
func WithSeparator(sep string) Option {
	return func(o *options) { o.sep = sep }
}

// WithMaxDepth stops flattening below n levels of nesting; deeper objects
// are kept whole as cell values. Zero means no limit.
func WithMaxDepth(n int) Option {
	return func(o *options) { o.maxDepth = n }
}

// Flatten converts a decoded JSON tree into a table. An array yields one
// row per element, an object a single row and a scalar a single row with
// column "value". Nested objects become columns named by their key path;
// arrays are kept whole as cell values.
func Flatten(v any, opts ...Option) *Table {
	o := options{sep: defaultSeparator}
	for _, opt := range opts {
		opt(&o)
	}

	t := &Table{}
	switch x := normalize(v).(type) {
	case nil:
	case []any:
		for _, item := range x {
			t.addFlat(item, o)
		}
	default:
		t.addFlat(x, o)
	}
	return t
}

// FlattenJSON decodes data and flattens it. A non-empty path selects the
// part of the document to flatten with a JSONPath expression.
func FlattenJSON(data []byte, path string, opts ...Option) (*Table, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, apierrors.Wrap(apierrors.ErrCodeInvalidResponse, err, "decode JSON")
	}
	return FlattenPath(v, path, opts...)
}

// FlattenPath flattens the part of an already decoded tree selected by a
// JSONPath expression; an empty path flattens the whole tree.
func FlattenPath(v any, path string, opts ...Option) (*Table, error) {
	v = normalize(v)
	if path != "" {
		sel, err := jsonpath.Get(path, v)
		if err != nil {
			return nil, apierrors.Wrap(apierrors.ErrCodeInvalidInput, err, "JSONPath %q", path)
		}
		v = sel
	}
	return Flatten(v, opts...), nil
}

// Of flattens any JSON-marshalable value, such as a slice of typed results.
func Of(v any, opts ...Option) (*Table, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal %T: %w", v, err)
	}
	return FlattenJSON(data, "", opts...)
}

func (t *Table) addFlat(item any, o options) {
	row := Row{}
	var keys []string
	flattenInto(row, &keys, "", item, 0, o)
	t.Append(row, keys...)
}

func flattenInto(row Row, keys *[]string, prefix string, v any, depth int, o options) {
	obj, isObj := v.(map[string]any)
	stop := o.maxDepth > 0 && depth >= o.maxDepth
	if !isObj || (prefix != "" && (stop || len(obj) == 0)) {
		if prefix == "" {
			prefix = "value"
		}
		row[prefix] = v
		*keys = append(*keys, prefix)
		return
	}

	names := make([]string, 0, len(obj))
	for k := range obj {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, k := range names {
		name := k
		if prefix != "" {
			name = prefix + o.sep + k
		}
		flattenInto(row, keys, name, obj[k], depth+1, o)
	}
}

// normalize converts json.Number leaves to int64 or float64 so that cells
// hold native Go numbers and JSONPath filters can compare them.
func normalize(v any) any {
	switch x := v.(type) {
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return i
		}
		if f, err := x.Float64(); err == nil {
			return f
		}
		return x.String()
	case map[string]any:
		for k, e := range x {
			x[k] = normalize(e)
		}
		return x
	case []any:
		for i, e := range x {
			x[i] = normalize(e)
		}
		return x
	default:
		return v
	}
}
