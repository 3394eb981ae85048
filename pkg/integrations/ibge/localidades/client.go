package localidades

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/apisbr/apisbr/pkg/buildinfo"
	"github.com/apisbr/apisbr/pkg/cache"
	apierrors "github.com/apisbr/apisbr/pkg/errors"
	"github.com/apisbr/apisbr/pkg/integrations"
	"github.com/apisbr/apisbr/pkg/labels"
	"github.com/apisbr/apisbr/pkg/observability"
	"github.com/apisbr/apisbr/pkg/tabular"
)

const (
	sourceName     = "ibge-localidades"
	defaultBaseURL = "https://servicodados.ibge.gov.br/api/v1/localidades"
)

// Municipality is a Brazilian municipality. ID is the 7-digit IBGE code,
// check digit included.
type Municipality struct {
	ID                 int    `json:"id"`
	Name               string `json:"nome"`
	UF                 string `json:"uf"`
	Microregion        string `json:"microrregiao,omitempty"`
	Mesoregion         string `json:"mesorregiao,omitempty"`
	ImmediateRegion    string `json:"regiao_imediata,omitempty"`
	IntermediateRegion string `json:"regiao_intermediaria,omitempty"`
	Region             string `json:"regiao,omitempty"`
}

// Key is the lookup key of the municipality: "<normalized name> - <UF>",
// e.g. "Sao Paulo - SP".
func (m Municipality) Key() string {
	return Key(m.Name, m.UF)
}

// Code returns the IBGE code, with or without its trailing check digit.
func (m Municipality) Code(verifier bool) int {
	if verifier {
		return m.ID
	}
	return m.ID / 10
}

// Key builds a municipality lookup key from a name and UF abbreviation.
func Key(name, uf string) string {
	return labels.NormalizeName(name) + " - " + strings.ToUpper(strings.TrimSpace(uf))
}

// State is a federative unit as listed by the API.
type State struct {
	ID           int    `json:"id"`
	Abbrev       string `json:"sigla"`
	Name         string `json:"nome"`
	Region       string `json:"regiao"`
	RegionAbbrev string `json:"regiao_sigla"`
}

// Client provides access to the IBGE Localidades API.
type Client struct {
	*integrations.Client
	baseURL string
}

var _ integrations.Source = (*Client)(nil)

// NewClient creates an IBGE Localidades client.
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

// Name returns "ibge-localidades".
func (c *Client) Name() string { return sourceName }

// FetchMunicipalities lists every municipality of the country.
//
// If refresh is true, the cache is bypassed and a fresh API call is made.
func (c *Client) FetchMunicipalities(ctx context.Context, refresh bool) ([]Municipality, error) {
	var ms []Municipality
	err := c.Cached(ctx, "municipios", refresh, &ms, func() error {
		return c.fetchMunicipalities(ctx, c.baseURL+"/municipios", &ms)
	})
	return ms, err
}

// FetchStateMunicipalities lists the municipalities of one UF ("SP", "rj").
func (c *Client) FetchStateMunicipalities(ctx context.Context, uf string, refresh bool) ([]Municipality, error) {
	uf, err := checkUF(uf)
	if err != nil {
		return nil, err
	}
	var ms []Municipality
	err = c.Cached(ctx, "municipios:"+uf, refresh, &ms, func() error {
		return c.fetchMunicipalities(ctx, fmt.Sprintf("%s/estados/%s/municipios", c.baseURL, uf), &ms)
	})
	return ms, err
}

func (c *Client) fetchMunicipalities(ctx context.Context, url string, ms *[]Municipality) error {
	var data []municipalityResponse
	if err := c.Get(ctx, url, &data); err != nil {
		return err
	}
	out := make([]Municipality, 0, len(data))
	for _, d := range data {
		out = append(out, d.municipality())
	}
	*ms = out
	return nil
}

// FetchStates lists the 27 federative units.
func (c *Client) FetchStates(ctx context.Context, refresh bool) ([]State, error) {
	var states []State
	err := c.Cached(ctx, "estados", refresh, &states, func() error {
		var data []ufResponse
		if err := c.Get(ctx, c.baseURL+"/estados", &data); err != nil {
			return err
		}
		states = make([]State, 0, len(data))
		for _, d := range data {
			states = append(states, d.state())
		}
		sort.Slice(states, func(i, j int) bool { return states[i].Abbrev < states[j].Abbrev })
		return nil
	})
	return states, err
}

// IDMap maps every municipality key ("Sao Paulo - SP") to its code.
// If refresh is true, the municipality list is fetched again.
func (c *Client) IDMap(ctx context.Context, verifier, refresh bool) (map[string]int, error) {
	ms, err := c.FetchMunicipalities(ctx, refresh)
	if err != nil {
		return nil, err
	}
	out := make(map[string]int, len(ms))
	for _, m := range ms {
		out[m.Key()] = m.Code(verifier)
	}
	return out, nil
}

// NameMap maps every municipality code to its key, the inverse of IDMap.
func (c *Client) NameMap(ctx context.Context, verifier, refresh bool) (map[int]string, error) {
	ids, err := c.IDMap(ctx, verifier, refresh)
	if err != nil {
		return nil, err
	}
	return integrations.InvertMap(ids), nil
}

// MunicipalityName returns the key of the municipality with the given code.
// Seven digits are read as a code with check digit, six as one without.
func (c *Client) MunicipalityName(ctx context.Context, code string, refresh bool) (string, error) {
	code = strings.TrimSpace(code)
	n, err := strconv.Atoi(code)
	if err != nil || n <= 0 || (len(code) != 6 && len(code) != 7) {
		return "", apierrors.New(apierrors.ErrCodeInvalidIdentifier,
			"municipality code must have 6 or 7 digits: %q", code)
	}

	names, err := c.NameMap(ctx, len(code) == 7, refresh)
	if err != nil {
		return "", err
	}
	name, ok := names[n]
	if !ok {
		return "", fmt.Errorf("%w: municipality %s", integrations.ErrNotFound, code)
	}
	return name, nil
}

// MunicipalityID returns the code of the municipality called name in uf.
// Names are compared without accents or case. Without a match it returns an
// [integrations.NoMatchError] listing similar municipalities of the same UF.
func (c *Client) MunicipalityID(ctx context.Context, name, uf string, verifier, refresh bool) (int, error) {
	if err := apierrors.ValidateTitle(name); err != nil {
		return 0, err
	}
	uf, err := checkUF(uf)
	if err != nil {
		return 0, err
	}

	ms, err := c.FetchMunicipalities(ctx, refresh)
	if err != nil {
		return 0, err
	}

	key := Key(name, uf)
	similar := make(map[string]string)
	for _, m := range ms {
		if m.UF != uf {
			continue
		}
		if m.Key() == key {
			observability.Source().OnLookup(ctx, sourceName, key, true)
			return m.Code(verifier), nil
		}
		if integrations.IsSimilarText(name, m.Name) {
			similar[m.Key()] = strconv.Itoa(m.Code(verifier))
		}
	}
	observability.Source().OnLookup(ctx, sourceName, key, false)
	return 0, &integrations.NoMatchError{Query: key, Similar: similar}
}

// FindID resolves "<name> - <UF>" to a 7-digit code. A bare name is
// accepted when it designates a single municipality in the country.
func (c *Client) FindID(ctx context.Context, title string) (string, error) {
	if err := apierrors.ValidateTitle(title); err != nil {
		return "", err
	}
	if i := strings.LastIndex(title, " - "); i > 0 {
		if uf := strings.TrimSpace(title[i+3:]); labels.IsUF(strings.ToUpper(uf)) {
			id, err := c.MunicipalityID(ctx, title[:i], uf, true, false)
			if err != nil {
				return "", err
			}
			return strconv.Itoa(id), nil
		}
	}

	ms, err := c.FetchMunicipalities(ctx, false)
	if err != nil {
		return "", err
	}
	want := labels.NormalizeName(title)
	exact := make(map[string]string)
	similar := make(map[string]string)
	for _, m := range ms {
		switch {
		case labels.NormalizeName(m.Name) == want:
			exact[m.Key()] = strconv.Itoa(m.ID)
		case integrations.IsSimilarText(title, m.Name):
			similar[m.Key()] = strconv.Itoa(m.ID)
		}
	}
	if len(exact) == 1 {
		observability.Source().OnLookup(ctx, sourceName, title, true)
		for _, id := range exact {
			return id, nil
		}
	}
	observability.Source().OnLookup(ctx, sourceName, title, false)
	if len(exact) > 1 {
		similar = exact
	}
	return "", &integrations.NoMatchError{Query: title, Similar: similar}
}

// Fetch returns a table for identifier: "estados" lists the states, a UF
// abbreviation lists its municipalities, and "municipios" or "" lists all
// municipalities.
func (c *Client) Fetch(ctx context.Context, identifier string) (*tabular.Table, error) {
	start := time.Now()
	observability.Source().OnFetchStart(ctx, sourceName, identifier)

	table, err := c.fetchTable(ctx, strings.TrimSpace(identifier))

	rows := 0
	if table != nil {
		rows = table.Len()
	}
	observability.Source().OnFetchComplete(ctx, sourceName, identifier, rows, time.Since(start), err)
	return table, err
}

func (c *Client) fetchTable(ctx context.Context, identifier string) (*tabular.Table, error) {
	switch strings.ToLower(identifier) {
	case "estados":
		states, err := c.FetchStates(ctx, false)
		if err != nil {
			return nil, err
		}
		return StatesTable(states), nil
	case "", "municipios":
		ms, err := c.FetchMunicipalities(ctx, false)
		if err != nil {
			return nil, err
		}
		return MunicipalitiesTable(ms), nil
	}
	ms, err := c.FetchStateMunicipalities(ctx, identifier, false)
	if err != nil {
		return nil, err
	}
	return MunicipalitiesTable(ms), nil
}

// MunicipalitiesTable renders municipalities with one row each.
func MunicipalitiesTable(ms []Municipality) *tabular.Table {
	t := tabular.New("id", "nome", "uf", "microrregiao", "mesorregiao",
		"regiao_imediata", "regiao_intermediaria", "regiao")
	for _, m := range ms {
		t.Append(tabular.Row{
			"id":                   m.ID,
			"nome":                 m.Name,
			"uf":                   m.UF,
			"microrregiao":         m.Microregion,
			"mesorregiao":          m.Mesoregion,
			"regiao_imediata":      m.ImmediateRegion,
			"regiao_intermediaria": m.IntermediateRegion,
			"regiao":               m.Region,
		})
	}
	return t
}

// StatesTable renders states with one row each.
func StatesTable(states []State) *tabular.Table {
	t := tabular.New("id", "sigla", "nome", "regiao")
	for _, s := range states {
		t.Append(tabular.Row{"id": s.ID, "sigla": s.Abbrev, "nome": s.Name, "regiao": s.Region})
	}
	return t
}

func checkUF(uf string) (string, error) {
	if err := apierrors.ValidateUF(strings.TrimSpace(uf)); err != nil {
		return "", err
	}
	uf = strings.ToUpper(strings.TrimSpace(uf))
	if !labels.IsUF(uf) {
		return "", fmt.Errorf("%w: UF %s", integrations.ErrNotFound, uf)
	}
	return uf, nil
}

type ufResponse struct {
	ID     int    `json:"id"`
	Abbrev string `json:"sigla"`
	Name   string `json:"nome"`
	Region *struct {
		Abbrev string `json:"sigla"`
		Name   string `json:"nome"`
	} `json:"regiao"`
}

func (u *ufResponse) state() State {
	s := State{ID: u.ID, Abbrev: u.Abbrev, Name: u.Name}
	if u.Region != nil {
		s.Region, s.RegionAbbrev = u.Region.Name, u.Region.Abbrev
	}
	return s
}

type municipalityResponse struct {
	ID           int    `json:"id"`
	Name         string `json:"nome"`
	Microregion  *struct {
		Name       string `json:"nome"`
		Mesoregion *struct {
			Name string      `json:"nome"`
			UF   *ufResponse `json:"UF"`
		} `json:"mesorregiao"`
	} `json:"microrregiao"`
	ImmediateRegion *struct {
		Name               string `json:"nome"`
		IntermediateRegion *struct {
			Name string      `json:"nome"`
			UF   *ufResponse `json:"UF"`
		} `json:"regiao-intermediaria"`
	} `json:"regiao-imediata"`
}

func (r *municipalityResponse) municipality() Municipality {
	m := Municipality{ID: r.ID, Name: r.Name}
	var uf *ufResponse
	if ri := r.ImmediateRegion; ri != nil {
		m.ImmediateRegion = ri.Name
		if rint := ri.IntermediateRegion; rint != nil {
			m.IntermediateRegion = rint.Name
			uf = rint.UF
		}
	}
	if mr := r.Microregion; mr != nil {
		m.Microregion = mr.Name
		if meso := mr.Mesoregion; meso != nil {
			m.Mesoregion = meso.Name
			if uf == nil {
				uf = meso.UF
			}
		}
	}
	if uf != nil {
		st := uf.state()
		m.UF, m.Region = st.Abbrev, st.Region
	}
	return m
}
