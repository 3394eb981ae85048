package ipeadata

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/apisbr/apisbr/pkg/buildinfo"
	"github.com/apisbr/apisbr/pkg/cache"
	apierrors "github.com/apisbr/apisbr/pkg/errors"
	"github.com/apisbr/apisbr/pkg/integrations"
	"github.com/apisbr/apisbr/pkg/observability"
	"github.com/apisbr/apisbr/pkg/period"
	"github.com/apisbr/apisbr/pkg/tabular"
)

const (
	sourceName     = "ipea"
	defaultBaseURL = "http://www.ipeadata.gov.br/api/odata4"
)

var seriesCodeRegex = regexp.MustCompile(`^[0-9A-Z_]+$`)

// IsSeriesCode reports whether s has the shape of a series code
// ("PRECOS12_IPCA12", "BM12_TJOVER12").
func IsSeriesCode(s string) bool {
	return seriesCodeRegex.MatchString(s)
}

// Series describes a time series published by IPEA.
type Series struct {
	Code        string `json:"codigo"`
	Name        string `json:"nome"`
	Unit        string `json:"unidade,omitempty"`
	Periodicity string `json:"periodicidade,omitempty"`
	Source      string `json:"fonte,omitempty"`
	Base        string `json:"base,omitempty"`
	UpdatedAt   string `json:"atualizacao,omitempty"`
}

// Territory is a geographic unit values may refer to.
type Territory struct {
	Level string `json:"nivel"`
	Code  string `json:"codigo"`
	Name  string `json:"nome"`
}

// Value is one observation of a series.
type Value struct {
	Series    string   `json:"serie"`
	Date      string   `json:"data"`
	Territory string   `json:"territorio"`
	Level     string   `json:"nivel"`
	Value     *float64 `json:"valor"`
}

// ValuesFilter restricts the observations returned by FetchValues.
type ValuesFilter struct {
	// Period bounds the observation date. The zero value is unbounded.
	Period period.Period
	// Level keeps a single territorial level ("Estados", "municípios")
	// and pivots the result to one row per territory and one column per
	// date.
	Level string
	// Refresh bypasses cached values and territories.
	Refresh bool
}

// Client provides access to the IPEA Data OData API.
type Client struct {
	*integrations.Client
	baseURL string
}

var _ integrations.Source = (*Client)(nil)

// NewClient creates an IPEA Data client.
//
// Parameters:
//   - backend: Cache backend for API responses (nil disables caching)
//   - cacheTTL: How long responses are cached
func NewClient(backend cache.Cache, cacheTTL time.Duration) *Client {
	headers := map[string]string{
		"User-Agent": buildinfo.UserAgent(),
		"Accept":     "application/json",
	}
	return &Client{
		Client:  integrations.NewClient(backend, sourceName+":", cacheTTL, headers),
		baseURL: defaultBaseURL,
	}
}

// Name returns "ipea".
func (c *Client) Name() string { return sourceName }

// FetchSeries lists the metadata of every series.
//
// If refresh is true, the cache is bypassed and a fresh API call is made.
func (c *Client) FetchSeries(ctx context.Context, refresh bool) ([]Series, error) {
	var series []Series
	err := c.Cached(ctx, "metadados", refresh, &series, func() error {
		var data odata[seriesResponse]
		if err := c.Get(ctx, c.baseURL+"/Metadados", &data); err != nil {
			return err
		}
		series = make([]Series, 0, len(data.Value))
		for _, s := range data.Value {
			series = append(series, Series{
				Code:        string(s.Code),
				Name:        s.Name,
				Unit:        s.Unit,
				Periodicity: s.Periodicity,
				Source:      s.Source,
				Base:        s.Base,
				UpdatedAt:   s.UpdatedAt,
			})
		}
		return nil
	})
	return series, err
}

// FetchTerritories lists every territory known to the API.
func (c *Client) FetchTerritories(ctx context.Context, refresh bool) ([]Territory, error) {
	var territories []Territory
	err := c.Cached(ctx, "territorios", refresh, &territories, func() error {
		var data odata[territoryResponse]
		if err := c.Get(ctx, c.baseURL+"/Territorios", &data); err != nil {
			return err
		}
		territories = make([]Territory, 0, len(data.Value))
		for _, t := range data.Value {
			territories = append(territories, Territory{
				Level: t.Level, Code: string(t.Code), Name: t.Name,
			})
		}
		return nil
	})
	return territories, err
}

// FindID returns the code of the series named title, ignoring case and
// accents. Without a match the [integrations.NoMatchError] lists similar
// series names.
func (c *Client) FindID(ctx context.Context, title string) (string, error) {
	if err := apierrors.ValidateTitle(title); err != nil {
		return "", err
	}
	series, err := c.FetchSeries(ctx, false)
	if err != nil {
		return "", err
	}

	want := integrations.Fold(title)
	similar := make(map[string]string)
	for _, s := range series {
		if integrations.Fold(s.Name) == want {
			observability.Source().OnLookup(ctx, sourceName, title, true)
			return s.Code, nil
		}
		if integrations.IsSimilarText(title, s.Name) {
			similar[s.Name] = s.Code
		}
	}
	observability.Source().OnLookup(ctx, sourceName, title, false)
	return "", &integrations.NoMatchError{Query: title, Similar: similar}
}

// FetchValues returns the observations of a series given by code or name.
//
// Columns are Serie, Data, Territorio, Nivel and Valor, with territory
// codes replaced by their names. With filter.Level set, the table is
// pivoted: one row per Territorio, one column per Data.
func (c *Client) FetchValues(ctx context.Context, identifier string, filter ValuesFilter) (*tabular.Table, error) {
	start := time.Now()
	observability.Source().OnFetchStart(ctx, sourceName, identifier)

	table, err := c.fetchValues(ctx, identifier, filter)

	rows := 0
	if table != nil {
		rows = table.Len()
	}
	observability.Source().OnFetchComplete(ctx, sourceName, identifier, rows, time.Since(start), err)
	return table, err
}

func (c *Client) fetchValues(ctx context.Context, identifier string, filter ValuesFilter) (*tabular.Table, error) {
	code := strings.TrimSpace(identifier)
	if !IsSeriesCode(code) {
		var err error
		if code, err = c.FindID(ctx, code); err != nil {
			return nil, err
		}
	}

	values, err := c.fetchRawValues(ctx, code, filter.Refresh)
	if err != nil {
		return nil, err
	}
	names, err := c.territoryNames(ctx, filter.Refresh)
	if err != nil {
		return nil, err
	}

	t := tabular.New("Serie", "Data", "Territorio", "Nivel", "Valor")
	for _, v := range values {
		date, err := period.ParseDate(v.Date, false)
		if err != nil {
			return nil, fmt.Errorf("%w: series %s: date %q", integrations.ErrInvalidResponse, code, v.Date)
		}
		date = time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
		if !filter.Period.Contains(date) {
			continue
		}
		if filter.Level != "" && integrations.Fold(v.Level) != integrations.Fold(filter.Level) {
			continue
		}

		territory := v.Territory
		if name, ok := names[territoryKey{v.Level, v.Territory}]; ok {
			territory = name
		} else if name, ok := names[territoryKey{code: v.Territory}]; ok {
			territory = name
		}

		var value any
		if v.Value != nil {
			value = *v.Value
		}
		t.Append(tabular.Row{
			"Serie":      v.Series,
			"Data":       date.Format(time.DateOnly),
			"Territorio": territory,
			"Nivel":      v.Level,
			"Valor":      value,
		})
	}

	if filter.Level != "" {
		return t.Pivot("Territorio", "Data", "Valor"), nil
	}
	return t, nil
}

// Fetch returns every observation of a series.
func (c *Client) Fetch(ctx context.Context, identifier string) (*tabular.Table, error) {
	return c.FetchValues(ctx, identifier, ValuesFilter{})
}

func (c *Client) fetchRawValues(ctx context.Context, code string, refresh bool) ([]Value, error) {
	var values []Value
	err := c.Cached(ctx, "valores:"+code, refresh, &values, func() error {
		var data odata[valueResponse]
		url := fmt.Sprintf("%s/Metadados('%s')/Valores", c.baseURL, code)
		if err := c.Get(ctx, url, &data); err != nil {
			if errors.Is(err, integrations.ErrNotFound) {
				return fmt.Errorf("%w: series %s", err, code)
			}
			return err
		}
		values = make([]Value, 0, len(data.Value))
		for _, v := range data.Value {
			values = append(values, Value{
				Series:    v.Series,
				Date:      v.Date,
				Territory: string(v.Territory),
				Level:     v.Level,
				Value:     v.Value,
			})
		}
		return nil
	})
	return values, err
}

type territoryKey struct {
	level, code string
}

// territoryNames indexes territory names by level and code, and by code
// alone for the first territory seen with that code.
func (c *Client) territoryNames(ctx context.Context, refresh bool) (map[territoryKey]string, error) {
	territories, err := c.FetchTerritories(ctx, refresh)
	if err != nil {
		return nil, err
	}
	out := make(map[territoryKey]string, 2*len(territories))
	for _, t := range territories {
		out[territoryKey{t.Level, t.Code}] = t.Name
		if _, ok := out[territoryKey{code: t.Code}]; !ok {
			out[territoryKey{code: t.Code}] = t.Name
		}
	}
	return out, nil
}

// SeriesTable renders series metadata with one row each.
func SeriesTable(series []Series) *tabular.Table {
	t := tabular.New("codigo", "nome", "unidade", "periodicidade", "fonte")
	for _, s := range series {
		t.Append(tabular.Row{
			"codigo":        s.Code,
			"nome":          s.Name,
			"unidade":       s.Unit,
			"periodicidade": s.Periodicity,
			"fonte":         s.Source,
		})
	}
	return t
}

type odata[T any] struct {
	Value []T `json:"value"`
}

// apiCode is an identifier the API sends either as a string or a number.
type apiCode string

func (c *apiCode) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*c = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*c = apiCode(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*c = apiCode(n.String())
	return nil
}

type seriesResponse struct {
	Code        apiCode `json:"SERCODIGO"`
	Name        string  `json:"SERNOME"`
	Unit        string  `json:"UNINOME"`
	Periodicity string  `json:"PERNOME"`
	Source      string  `json:"FNTSIGLA"`
	Base        string  `json:"BASNOME"`
	UpdatedAt   string  `json:"SERATUALIZACAO"`
}

type territoryResponse struct {
	Level string  `json:"NIVNOME"`
	Code  apiCode `json:"TERCODIGO"`
	Name  string  `json:"TERNOME"`
}

type valueResponse struct {
	Series    string   `json:"SERCODIGO"`
	Date      string   `json:"VALDATA"`
	Value     *float64 `json:"VALVALOR"`
	Level     string   `json:"NIVNOME"`
	Territory apiCode  `json:"TERCODIGO"`
}
