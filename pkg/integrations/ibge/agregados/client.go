package agregados

import (
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
	"github.com/apisbr/apisbr/pkg/tabular"
)

const (
	sourceName     = "ibge-agregados"
	defaultBaseURL = "https://servicodados.ibge.gov.br/api/v3/agregados"
)

var (
	digitsRegex     = regexp.MustCompile(`^[0-9]+$`)
	variablesRegex  = regexp.MustCompile(`^[0-9]+(\|[0-9]+)*$`)
	identifierRegex = regexp.MustCompile(`^([0-9]+)-([0-9]+(\|[0-9]+)*)$`)
)

// Survey is a research program of the catalog and its aggregates.
type Survey struct {
	ID         string      `json:"id"`
	Name       string      `json:"nome"`
	Aggregates []Aggregate `json:"agregados"`
}

// Aggregate is a table of results published by a survey.
type Aggregate struct {
	ID   string `json:"id"`
	Name string `json:"nome"`
}

// Metadata describes an aggregate: its variables, classifications,
// periodicity and the territorial levels it is published at.
type Metadata struct {
	ID              string           `json:"id"`
	Name            string           `json:"nome"`
	URL             string           `json:"url,omitempty"`
	Survey          string           `json:"pesquisa,omitempty"`
	Subject         string           `json:"assunto,omitempty"`
	Periodicity     Periodicity      `json:"periodicidade"`
	Levels          TerritorialLevel `json:"nivel_territorial"`
	Variables       []Variable       `json:"variaveis"`
	Classifications []Classification `json:"classificacoes"`
}

// Periodicity is the publication frequency and coverage of an aggregate.
type Periodicity struct {
	Frequency string `json:"frequencia"`
	Start     string `json:"inicio"`
	End       string `json:"fim"`
}

// TerritorialLevel lists level codes ("N1", "N6") by division type.
type TerritorialLevel struct {
	Administrative []string `json:"administrativo"`
	Special        []string `json:"especial,omitempty"`
	IBGE           []string `json:"ibge,omitempty"`
}

// Variable is a measured quantity of an aggregate.
type Variable struct {
	ID   string `json:"id"`
	Name string `json:"nome"`
	Unit string `json:"unidade,omitempty"`
}

// Classification splits the values of an aggregate into categories.
type Classification struct {
	ID         string     `json:"id"`
	Name       string     `json:"nome"`
	Categories []Category `json:"categorias"`
}

// Category is one class of a classification.
type Category struct {
	ID    string `json:"id"`
	Name  string `json:"nome"`
	Unit  string `json:"unidade,omitempty"`
	Level int    `json:"nivel"`
}

// Client provides access to the IBGE Agregados API.
type Client struct {
	*integrations.Client
	baseURL string
}

var _ integrations.Source = (*Client)(nil)

// NewClient creates an IBGE Agregados client.
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

// Name returns "ibge-agregados".
func (c *Client) Name() string { return sourceName }

// FetchCatalog lists every survey and its aggregates.
//
// If refresh is true, the cache is bypassed and a fresh API call is made.
func (c *Client) FetchCatalog(ctx context.Context, refresh bool) ([]Survey, error) {
	var surveys []Survey
	err := c.Cached(ctx, "catalogo", refresh, &surveys, func() error {
		var data []surveyResponse
		if err := c.Get(ctx, c.baseURL, &data); err != nil {
			return err
		}
		surveys = make([]Survey, 0, len(data))
		for _, d := range data {
			s := Survey{ID: d.ID, Name: d.Name, Aggregates: make([]Aggregate, 0, len(d.Aggregates))}
			for _, a := range d.Aggregates {
				s.Aggregates = append(s.Aggregates, Aggregate{ID: a.ID.String(), Name: a.Name})
			}
			surveys = append(surveys, s)
		}
		return nil
	})
	return surveys, err
}

// CatalogMap maps every aggregate name to its ID.
func (c *Client) CatalogMap(ctx context.Context) (map[string]string, error) {
	surveys, err := c.FetchCatalog(ctx, false)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string)
	for _, s := range surveys {
		for _, a := range s.Aggregates {
			out[a.Name] = a.ID
		}
	}
	return out, nil
}

// FindAggregate returns the ID of the aggregate named title, ignoring case
// and accents. Without a match the [integrations.NoMatchError] lists
// similar aggregates as "Agregado - <name>".
func (c *Client) FindAggregate(ctx context.Context, title string) (string, error) {
	if err := apierrors.ValidateTitle(title); err != nil {
		return "", err
	}
	catalog, err := c.CatalogMap(ctx)
	if err != nil {
		return "", err
	}

	want := integrations.Fold(title)
	similar := make(map[string]string)
	for name, id := range catalog {
		if integrations.Fold(name) == want {
			observability.Source().OnLookup(ctx, sourceName, title, true)
			return id, nil
		}
		if integrations.IsSimilarText(title, name) {
			similar["Agregado - "+name] = id
		}
	}
	observability.Source().OnLookup(ctx, sourceName, title, false)
	return "", &integrations.NoMatchError{Query: title, Similar: similar}
}

// FetchMetadata retrieves the metadata of an aggregate given by ID or name.
func (c *Client) FetchMetadata(ctx context.Context, aggregate string, refresh bool) (*Metadata, error) {
	id, err := c.aggregateID(ctx, aggregate)
	if err != nil {
		return nil, err
	}

	var md Metadata
	err = c.Cached(ctx, "metadados:"+id, refresh, &md, func() error {
		var data metadataResponse
		if err := c.Get(ctx, fmt.Sprintf("%s/%s/metadados", c.baseURL, id), &data); err != nil {
			if errors.Is(err, integrations.ErrNotFound) {
				return fmt.Errorf("%w: aggregate %s", err, id)
			}
			return err
		}
		md = data.metadata()
		if md.ID == "" {
			md.ID = id
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &md, nil
}

// FindVariable returns the ID of the variable named title in an aggregate.
// Title may name several variables separated by "|"; their IDs are joined
// the same way. Every name must match; otherwise the
// [integrations.NoMatchError] lists similar variables as
// "Variavel - <name>" with "<aggregate>-<variable>" identifiers.
func (c *Client) FindVariable(ctx context.Context, title, aggregateID string) (string, error) {
	if err := apierrors.ValidateTitle(title); err != nil {
		return "", err
	}
	md, err := c.FetchMetadata(ctx, aggregateID, false)
	if err != nil {
		return "", err
	}

	var ids []string
	similar := make(map[string]string)
	missing := false
	for _, part := range strings.Split(title, "|") {
		part = strings.TrimSpace(part)
		found := false
		for _, v := range md.Variables {
			if integrations.Fold(v.Name) == integrations.Fold(part) {
				ids = append(ids, v.ID)
				found = true
				break
			}
			if part != "" && integrations.IsSimilarText(part, v.Name) {
				similar["Variavel - "+v.Name] = md.ID + "-" + v.ID
			}
		}
		missing = missing || !found
	}

	if missing {
		observability.Source().OnLookup(ctx, sourceName, title, false)
		return "", &integrations.NoMatchError{Query: title, Similar: similar}
	}
	observability.Source().OnLookup(ctx, sourceName, title, true)
	return strings.Join(ids, "|"), nil
}

// FindID resolves "<aggregate>;<variable>" or "<aggregate>" to
// "<aggregateID>-<variableID>" or "<aggregateID>". Each part may be an ID or
// a name.
func (c *Client) FindID(ctx context.Context, title string) (string, error) {
	parts := strings.Split(strings.TrimSpace(title), ";")
	if len(parts) > 2 {
		return "", apierrors.New(apierrors.ErrCodeInvalidIdentifier,
			"expected \"<aggregate>;<variable>\", got %q", title)
	}

	agg, err := c.aggregateID(ctx, parts[0])
	if err != nil {
		return "", err
	}
	if len(parts) == 1 || strings.TrimSpace(parts[1]) == "" {
		return agg, nil
	}

	variable := strings.TrimSpace(parts[1])
	if !variablesRegex.MatchString(variable) {
		if variable, err = c.FindVariable(ctx, variable, agg); err != nil {
			return "", err
		}
	}
	return agg + "-" + variable, nil
}

// ParseIdentifier splits an identifier into aggregate and variable IDs.
// It accepts "<agg>-<var>[|<var>...]", a bare aggregate ID, or anything
// FindID resolves. Variables is empty when the identifier names none.
func (c *Client) ParseIdentifier(ctx context.Context, s string) (aggregate, variables string, err error) {
	s = strings.TrimSpace(s)
	if m := identifierRegex.FindStringSubmatch(s); m != nil {
		return m[1], m[2], nil
	}
	if digitsRegex.MatchString(s) {
		return s, "", nil
	}

	id, err := c.FindID(ctx, s)
	if err != nil {
		return "", "", err
	}
	aggregate, variables, _ = strings.Cut(id, "-")
	return aggregate, variables, nil
}

func (c *Client) aggregateID(ctx context.Context, s string) (string, error) {
	s = strings.TrimSpace(s)
	if digitsRegex.MatchString(s) {
		return s, nil
	}
	return c.FindAggregate(ctx, s)
}

// CatalogTable renders the catalog with one row per aggregate.
func CatalogTable(surveys []Survey) *tabular.Table {
	t := tabular.New("pesquisa_id", "pesquisa", "agregado_id", "agregado")
	for _, s := range surveys {
		for _, a := range s.Aggregates {
			t.Append(tabular.Row{
				"pesquisa_id": s.ID,
				"pesquisa":    s.Name,
				"agregado_id": a.ID,
				"agregado":    a.Name,
			})
		}
	}
	return t
}

// VariablesTable renders the variables of an aggregate.
func VariablesTable(md *Metadata) *tabular.Table {
	t := tabular.New("id", "nome", "unidade")
	for _, v := range md.Variables {
		t.Append(tabular.Row{"id": v.ID, "nome": v.Name, "unidade": v.Unit})
	}
	return t
}

// ClassificationsTable renders one row per category of every
// classification of an aggregate.
func ClassificationsTable(md *Metadata) *tabular.Table {
	t := tabular.New("classificacao_id", "classificacao", "categoria_id", "categoria")
	for _, cl := range md.Classifications {
		for _, cat := range cl.Categories {
			t.Append(tabular.Row{
				"classificacao_id": cl.ID,
				"classificacao":    cl.Name,
				"categoria_id":     cat.ID,
				"categoria":        cat.Name,
			})
		}
	}
	return t
}

type surveyResponse struct {
	ID         string `json:"id"`
	Name       string `json:"nome"`
	Aggregates []struct {
		ID   json.Number `json:"id"`
		Name string      `json:"nome"`
	} `json:"agregados"`
}

type metadataResponse struct {
	ID            json.Number `json:"id"`
	Name          string      `json:"nome"`
	URL           string      `json:"URL"`
	Survey        string      `json:"pesquisa"`
	Subject       string      `json:"assunto"`
	Periodicity   struct {
		Frequency string      `json:"frequencia"`
		Start     json.Number `json:"inicio"`
		End       json.Number `json:"fim"`
	} `json:"periodicidade"`
	Levels struct {
		Administrative []string `json:"Administrativo"`
		Special        []string `json:"Especial"`
		IBGE           []string `json:"IBGE"`
	} `json:"nivelTerritorial"`
	Variables []struct {
		ID   json.Number `json:"id"`
		Name string      `json:"nome"`
		Unit string      `json:"unidade"`
	} `json:"variaveis"`
	Classifications []struct {
		ID         json.Number `json:"id"`
		Name       string      `json:"nome"`
		Categories []struct {
			ID    json.Number `json:"id"`
			Name  string      `json:"nome"`
			Unit  string      `json:"unidade"`
			Level int         `json:"nivel"`
		} `json:"categorias"`
	} `json:"classificacoes"`
}

func (r *metadataResponse) metadata() Metadata {
	md := Metadata{
		ID:      r.ID.String(),
		Name:    r.Name,
		URL:     r.URL,
		Survey:  r.Survey,
		Subject: r.Subject,
		Periodicity: Periodicity{
			Frequency: r.Periodicity.Frequency,
			Start:     r.Periodicity.Start.String(),
			End:       r.Periodicity.End.String(),
		},
		Levels: TerritorialLevel{
			Administrative: r.Levels.Administrative,
			Special:        r.Levels.Special,
			IBGE:           r.Levels.IBGE,
		},
	}
	for _, v := range r.Variables {
		md.Variables = append(md.Variables, Variable{ID: v.ID.String(), Name: v.Name, Unit: v.Unit})
	}
	for _, cl := range r.Classifications {
		out := Classification{ID: cl.ID.String(), Name: cl.Name}
		for _, cat := range cl.Categories {
			out.Categories = append(out.Categories, Category{
				ID: cat.ID.String(), Name: cat.Name, Unit: cat.Unit, Level: cat.Level,
			})
		}
		md.Classifications = append(md.Classifications, out)
	}
	return md
}
