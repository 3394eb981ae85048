package agregados

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	apierrors "github.com/apisbr/apisbr/pkg/errors"
	"github.com/apisbr/apisbr/pkg/integrations"
	"github.com/apisbr/apisbr/pkg/observability"
	"github.com/apisbr/apisbr/pkg/tabular"
)

// DefaultPeriods selects the six most recent periods.
const DefaultPeriods = "-6"

// AllCategories selects every category of a classification.
const AllCategories = "all"

var (
	periodsRegex  = regexp.MustCompile(`^(-[0-9]+|[0-9]{4,6}(-[0-9]{4,6})?(\|[0-9]{4,6}(-[0-9]{4,6})?)*)$`)
	localityRegex = regexp.MustCompile(`^[0-9]+$`)
)

// Query selects values of an aggregate.
type Query struct {
	// Identifier is "<agg>-<var>", "<aggregate>;<variable>" or anything
	// ParseIdentifier accepts. It must name at least one variable.
	Identifier string

	// Level is a territorial level code or description (default N1).
	Level string

	// Periods is "-<n>" for the n latest periods, or periods and ranges
	// such as "201901-201912|202101" (default "-6").
	Periods string

	// Localities restricts the query to locality IDs of Level (default all).
	Localities []string

	// Classify maps classification names (or IDs) to category names (or
	// IDs). An empty list or "all" keeps every category.
	Classify map[string][]string

	// Refresh bypasses the cache.
	Refresh bool
}

// FetchData retrieves the values selected by q, one row per variable,
// category combination, locality and period.
//
// Columns are variavel_id, variavel, unidade, one column per
// classification, localidade_id, localidade, nivel, periodo and valor.
// Numeric values are float64; IBGE symbols such as "-", "..." or "X" are
// kept as strings.
func (c *Client) FetchData(ctx context.Context, q Query) (*tabular.Table, error) {
	start := time.Now()
	observability.Source().OnFetchStart(ctx, sourceName, q.Identifier)

	table, err := c.fetchData(ctx, q)

	rows := 0
	if table != nil {
		rows = table.Len()
	}
	observability.Source().OnFetchComplete(ctx, sourceName, q.Identifier, rows, time.Since(start), err)
	return table, err
}

func (c *Client) fetchData(ctx context.Context, q Query) (*tabular.Table, error) {
	agg, vars, err := c.ParseIdentifier(ctx, q.Identifier)
	if err != nil {
		return nil, err
	}
	md, err := c.FetchMetadata(ctx, agg, false)
	if err != nil {
		return nil, err
	}
	if vars == "" {
		return nil, noVariableError(md)
	}

	level, err := ResolveLevel(q.Level, md.Levels.Administrative)
	if err != nil {
		return nil, err
	}
	periods := strings.TrimSpace(q.Periods)
	if periods == "" {
		periods = DefaultPeriods
	}
	if !periodsRegex.MatchString(periods) {
		return nil, apierrors.New(apierrors.ErrCodeInvalidPeriod,
			"invalid periods %q: use \"-<n>\" or periods such as \"201901-201912|202101\"", periods)
	}
	localities, err := localitiesParam(q.Localities)
	if err != nil {
		return nil, err
	}
	classification, err := ClassificationParam(md, q.Classify)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/%s/periodos/%s/variaveis/%s?localidades=%s[%s]",
		c.baseURL, agg, periods, vars, level, localities)
	if classification != "" {
		url += "&classificacao=" + classification
	}

	var data []variableResponse
	key := strings.Join([]string{"dados", agg, periods, vars, level, localities, classification}, ":")
	err = c.Cached(ctx, key, q.Refresh, &data, func() error {
		return c.Get(ctx, url, &data)
	})
	if err != nil {
		return nil, err
	}
	return flattenData(data), nil
}

// Fetch returns the latest values of identifier at the national level.
func (c *Client) Fetch(ctx context.Context, identifier string) (*tabular.Table, error) {
	return c.FetchData(ctx, Query{Identifier: identifier})
}

// ClassificationParam renders classify as the classificacao query
// parameter, "<classID>[<catID>,<catID>]|<classID>[all]", resolving names
// against md. It returns "" for an empty classify.
func ClassificationParam(md *Metadata, classify map[string][]string) (string, error) {
	if len(classify) == 0 {
		return "", nil
	}

	type part struct {
		order int
		text  string
	}
	var parts []part
	for name, categories := range classify {
		idx := -1
		for i, cl := range md.Classifications {
			if cl.ID == strings.TrimSpace(name) || integrations.Fold(cl.Name) == integrations.Fold(name) {
				idx = i
				break
			}
		}
		if idx < 0 {
			return "", classificationError(md, "unknown classification %q", name)
		}
		cl := md.Classifications[idx]

		ids, err := categoryIDs(md, cl, categories)
		if err != nil {
			return "", err
		}
		parts = append(parts, part{order: idx, text: fmt.Sprintf("%s[%s]", cl.ID, ids)})
	}

	sort.Slice(parts, func(i, j int) bool { return parts[i].order < parts[j].order })
	texts := make([]string, len(parts))
	for i, p := range parts {
		texts[i] = p.text
	}
	return strings.Join(texts, "|"), nil
}

func categoryIDs(md *Metadata, cl Classification, categories []string) (string, error) {
	var ids []string
	for _, name := range categories {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if strings.EqualFold(name, AllCategories) {
			return AllCategories, nil
		}
		found := false
		for _, cat := range cl.Categories {
			if cat.ID == name || integrations.Fold(cat.Name) == integrations.Fold(name) {
				ids = append(ids, cat.ID)
				found = true
				break
			}
		}
		if !found {
			return "", classificationError(md, "unknown category %q of %q", name, cl.Name)
		}
	}
	if len(ids) == 0 {
		return AllCategories, nil
	}
	return strings.Join(ids, ","), nil
}

// ParseClassification parses "Name:cat1,cat2;Other:all" (or "=" instead
// of ":") into a Query.Classify map. A name without categories keeps all.
func ParseClassification(s string) (map[string][]string, error) {
	out := make(map[string][]string)
	for _, part := range strings.Split(s, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, cats, _ := strings.Cut(part, ":")
		if strings.Contains(name, "=") {
			name, cats, _ = strings.Cut(part, "=")
		}
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, apierrors.New(apierrors.ErrCodeInvalidClassification,
				"missing classification name in %q", part)
		}
		var list []string
		for _, c := range strings.Split(cats, ",") {
			if c = strings.TrimSpace(c); c != "" {
				list = append(list, c)
			}
		}
		out[name] = append(out[name], list...)
	}
	return out, nil
}

func classificationError(md *Metadata, format string, args ...any) error {
	var b strings.Builder
	fmt.Fprintf(&b, format, args...)
	b.WriteString("; available classifications:")
	for _, cl := range md.Classifications {
		fmt.Fprintf(&b, "\n%s:", cl.Name)
		for _, cat := range cl.Categories {
			fmt.Fprintf(&b, "\n  - %s", cat.Name)
		}
	}
	return apierrors.New(apierrors.ErrCodeInvalidClassification, "%s", b.String())
}

func noVariableError(md *Metadata) error {
	var b strings.Builder
	fmt.Fprintf(&b, "no variable given for aggregate %s; available variables:", md.ID)
	for _, v := range md.Variables {
		fmt.Fprintf(&b, "\n%s : %s", v.Name, v.ID)
	}
	return apierrors.New(apierrors.ErrCodeInvalidInput, "%s", b.String())
}

func localitiesParam(localities []string) (string, error) {
	var ids []string
	for _, l := range localities {
		l = strings.TrimSpace(l)
		if l == "" {
			continue
		}
		if strings.EqualFold(l, "all") {
			return "all", nil
		}
		if !localityRegex.MatchString(l) {
			return "", apierrors.New(apierrors.ErrCodeInvalidInput, "invalid locality ID %q", l)
		}
		ids = append(ids, l)
	}
	if len(ids) == 0 {
		return "all", nil
	}
	return strings.Join(ids, ","), nil
}

func flattenData(data []variableResponse) *tabular.Table {
	t := tabular.New("variavel_id", "variavel", "unidade")
	for _, v := range data {
		for _, res := range v.Results {
			keys := []string{"variavel_id", "variavel", "unidade"}
			classes := make(map[string]string, len(res.Classifications))
			for _, cl := range res.Classifications {
				keys = append(keys, cl.Name)
				for _, name := range cl.Category {
					classes[cl.Name] = name
				}
			}
			keys = append(keys, "localidade_id", "localidade", "nivel", "periodo", "valor")

			for _, s := range res.Series {
				periods := make([]string, 0, len(s.Serie))
				for p := range s.Serie {
					periods = append(periods, p)
				}
				sort.Strings(periods)

				for _, p := range periods {
					row := tabular.Row{
						"variavel_id":   v.ID.String(),
						"variavel":      v.Name,
						"unidade":       v.Unit,
						"localidade_id": s.Locality.ID.String(),
						"localidade":    s.Locality.Name,
						"nivel":         s.Locality.Level.ID,
						"periodo":       p,
						"valor":         parseValue(s.Serie[p]),
					}
					for name, cat := range classes {
						row[name] = cat
					}
					t.Append(row, keys...)
				}
			}
		}
	}
	return t
}

// parseValue converts a cell to float64, keeping IBGE symbols as text.
func parseValue(s string) any {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}

type variableResponse struct {
	ID      json.Number `json:"id"`
	Name    string      `json:"variavel"`
	Unit    string      `json:"unidade"`
	Results []struct {
		Classifications []struct {
			ID       json.Number       `json:"id"`
			Name     string            `json:"nome"`
			Category map[string]string `json:"categoria"`
		} `json:"classificacoes"`
		Series []struct {
			Locality struct {
				ID    json.Number `json:"id"`
				Name  string      `json:"nome"`
				Level struct {
					ID   string `json:"id"`
					Name string `json:"nome"`
				} `json:"nivel"`
			} `json:"localidade"`
			Serie map[string]string `json:"serie"`
		} `json:"series"`
	} `json:"resultados"`
}
