package dadosabertos

import (
	"context"
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
	sourceName     = "dados-abertos"
	defaultBaseURL = "https://dados.gov.br/dados/api/publico"

	// TokenHeader carries the API key on every catalog request.
	TokenHeader = "chave-api-dados-abertos"

	// DefaultSearchDepth is the number of result pages FindID scans.
	DefaultSearchDepth = 10

	// DefaultFormat is the resource format kept by a zero ResourceFilter.
	DefaultFormat = "csv"
)

var datasetIDRegex = regexp.MustCompile(`^[0-9A-Za-z]{8}-([0-9A-Za-z]{4}-){3}[0-9A-Za-z]{12}$`)

// IsDatasetID reports whether s has the shape of a dataset identifier
// (a UUID such as "0d1f4a5e-8a9b-4c6d-9e0f-1a2b3c4d5e6f").
func IsDatasetID(s string) bool {
	return datasetIDRegex.MatchString(s)
}

// DatasetSummary is one search result.
type DatasetSummary struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Name  string `json:"name,omitempty"`
}

// Dataset is a catalog entry with its downloadable resources.
type Dataset struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Name        string     `json:"name,omitempty"`
	Description string     `json:"description,omitempty"`
	Resources   []Resource `json:"resources"`
}

// Resource is a downloadable file of a dataset.
//
// CatalogedAt is zero when the API date could not be parsed; the raw value
// is kept in CatalogedRaw.
type Resource struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description,omitempty"`
	Format       string    `json:"format"`
	Link         string    `json:"link"`
	CatalogedAt  time.Time `json:"cataloged_at"`
	CatalogedRaw string    `json:"cataloged_raw,omitempty"`
}

// FileName is the name the resource is saved under: "<title>.<format>",
// with the title passed through [integrations.FormatToPath] and path
// separators turned into underscores.
func (r Resource) FileName() string {
	title := strings.NewReplacer("/", " ", "\\", " ").Replace(r.Title)
	return fmt.Sprintf("%s.%s", integrations.FormatToPath(title), strings.ToLower(r.Format))
}

// ResourceFilter selects resources by format and publication period.
// The zero value keeps CSV files published at any time.
type ResourceFilter struct {
	// Period bounds the cataloging date. The zero value is unbounded.
	Period period.Period
	// Format is matched case-insensitively; "all" keeps every format.
	Format string
	// Refresh bypasses the cached dataset.
	Refresh bool
}

func (f ResourceFilter) match(r Resource) bool {
	format := f.Format
	if format == "" {
		format = DefaultFormat
	}
	if !strings.EqualFold(format, "all") && !strings.EqualFold(format, r.Format) {
		return false
	}
	if f.Period.IsAll() {
		return true
	}
	return !r.CatalogedAt.IsZero() && f.Period.Contains(r.CatalogedAt)
}

// Client provides access to the Dados Abertos catalog API.
//
// Every catalog request needs an API key, obtained for free on dados.gov.br.
// Resource downloads go to the hosts the catalog links to and never carry it.
type Client struct {
	*integrations.Client
	baseURL string
	token   string
	depth   int
}

var _ integrations.Source = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithSearchDepth sets how many result pages FindID scans (default 10).
func WithSearchDepth(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.depth = n
		}
	}
}

// NewClient creates a Dados Abertos client authenticated with token.
//
// Parameters:
//   - token: API key sent in the chave-api-dados-abertos header
//   - backend: Cache backend for API responses (nil disables caching)
//   - cacheTTL: How long responses are cached
func NewClient(token string, backend cache.Cache, cacheTTL time.Duration, opts ...Option) *Client {
	headers := map[string]string{
		"User-Agent": buildinfo.UserAgent(),
		"Accept":     "application/json",
	}
	c := &Client{
		Client:  integrations.NewClient(backend, sourceName+":", cacheTTL, headers),
		baseURL: defaultBaseURL,
		token:   strings.TrimSpace(token),
		depth:   DefaultSearchDepth,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name returns "dados-abertos".
func (c *Client) Name() string { return sourceName }

// Search returns one page (starting at 1) of datasets whose name matches title.
func (c *Client) Search(ctx context.Context, title string, page int) ([]DatasetSummary, error) {
	if err := apierrors.ValidateTitle(title); err != nil {
		return nil, err
	}
	if page < 1 {
		page = 1
	}
	url := fmt.Sprintf("%s/conjuntos-dados?isPrivado=false&nomeConjuntoDados=%s&pagina=%d",
		c.baseURL, integrations.URLEncode(title), page)

	var data []searchItem
	if err := c.getAPI(ctx, url, &data); err != nil {
		return nil, err
	}

	out := make([]DatasetSummary, len(data))
	for i, d := range data {
		out[i] = DatasetSummary{ID: d.ID, Title: d.Title, Name: d.Name}
	}
	return out, nil
}

// FindID returns the ID of the dataset titled title (case-insensitive),
// scanning up to the configured search depth. Without an exact match it
// returns an [integrations.NoMatchError] with the similar titles seen.
func (c *Client) FindID(ctx context.Context, title string) (string, error) {
	return c.FindIDDepth(ctx, title, c.depth)
}

// FindIDDepth is FindID with an explicit number of pages. Scanning stops
// early at the first empty page.
func (c *Client) FindIDDepth(ctx context.Context, title string, depth int) (string, error) {
	if err := apierrors.ValidateTitle(title); err != nil {
		return "", err
	}
	if depth < 1 {
		depth = DefaultSearchDepth
	}

	similar := make(map[string]string)
	want := strings.ToLower(strings.TrimSpace(title))
	for page := 1; page <= depth; page++ {
		results, err := c.Search(ctx, title, page)
		if err != nil {
			return "", err
		}
		if len(results) == 0 {
			break
		}
		for _, r := range results {
			if strings.ToLower(r.Title) == want {
				observability.Source().OnLookup(ctx, sourceName, title, true)
				return r.ID, nil
			}
			if integrations.IsSimilarText(title, r.Title) {
				similar[r.Title] = r.ID
			}
		}
	}
	observability.Source().OnLookup(ctx, sourceName, title, false)
	return "", &integrations.NoMatchError{Query: title, Similar: similar}
}

// FetchDataset retrieves a dataset by ID or exact title.
//
// If refresh is true, the cache is bypassed and a fresh API call is made.
//
// Returns:
//   - [integrations.ErrNotFound] if the dataset doesn't exist
//   - [integrations.ErrUnauthorized] without a valid token
//   - [integrations.NoMatchError] when a title matches no dataset exactly
func (c *Client) FetchDataset(ctx context.Context, identifier string, refresh bool) (*Dataset, error) {
	id, err := c.resolve(ctx, identifier)
	if err != nil {
		return nil, err
	}

	var ds Dataset
	err = c.Cached(ctx, "dataset:"+id, refresh, &ds, func() error {
		return c.fetchDataset(ctx, id, &ds)
	})
	if err != nil {
		return nil, err
	}
	return &ds, nil
}

func (c *Client) fetchDataset(ctx context.Context, id string, ds *Dataset) error {
	var data datasetResponse
	if err := c.getAPI(ctx, fmt.Sprintf("%s/conjuntos-dados/%s", c.baseURL, id), &data); err != nil {
		if errors.Is(err, integrations.ErrNotFound) {
			return fmt.Errorf("%w: dataset %s", err, id)
		}
		return err
	}

	*ds = Dataset{
		ID:          firstNonEmpty(data.ID, id),
		Title:       firstNonEmpty(data.Title, data.TitleEN),
		Name:        data.Name,
		Description: data.Description,
		Resources:   make([]Resource, 0, len(data.Resources)),
	}
	for _, r := range data.Resources {
		res := Resource{
			ID:           r.ID,
			Title:        r.Title,
			Description:  r.Description,
			Format:       r.Format,
			Link:         r.Link,
			CatalogedRaw: r.CatalogedAt,
		}
		if t, err := period.ParseDate(r.CatalogedAt, false); err == nil {
			res.CatalogedAt = t
		}
		ds.Resources = append(ds.Resources, res)
	}
	return nil
}

// Resources returns the resources of a dataset accepted by filter.
func (c *Client) Resources(ctx context.Context, identifier string, filter ResourceFilter) ([]Resource, error) {
	ds, err := c.FetchDataset(ctx, identifier, filter.Refresh)
	if err != nil {
		return nil, err
	}
	var out []Resource
	for _, r := range ds.Resources {
		if filter.match(r) {
			out = append(out, r)
		}
	}
	return out, nil
}

// FetchFiles downloads the resources accepted by filter, keyed by
// [Resource.FileName].
func (c *Client) FetchFiles(ctx context.Context, identifier string, filter ResourceFilter) (map[string][]byte, error) {
	resources, err := c.Resources(ctx, identifier, filter)
	if err != nil {
		return nil, err
	}

	files := make(map[string][]byte, len(resources))
	for _, r := range resources {
		if err := apierrors.ValidateURL(r.Link); err != nil {
			return nil, fmt.Errorf("resource %q: %w", r.Title, err)
		}
		data, err := c.GetBytes(ctx, r.Link)
		if err != nil {
			return nil, fmt.Errorf("download %q: %w", r.Title, err)
		}
		files[r.FileName()] = data
	}
	return files, nil
}

// Download saves the resources accepted by filter into dir and returns the
// written paths.
func (c *Client) Download(ctx context.Context, identifier, dir string, filter ResourceFilter) ([]string, error) {
	files, err := c.FetchFiles(ctx, identifier, filter)
	if err != nil {
		return nil, err
	}
	return integrations.WriteFiles(dir, files)
}

// Fetch lists the CSV resources of a dataset as a table.
func (c *Client) Fetch(ctx context.Context, identifier string) (*tabular.Table, error) {
	start := time.Now()
	observability.Source().OnFetchStart(ctx, sourceName, identifier)

	resources, err := c.Resources(ctx, identifier, ResourceFilter{})
	var table *tabular.Table
	if err == nil {
		table = ResourcesTable(resources)
	}

	rows := 0
	if table != nil {
		rows = table.Len()
	}
	observability.Source().OnFetchComplete(ctx, sourceName, identifier, rows, time.Since(start), err)
	return table, err
}

// ResourcesTable renders resources with one row each.
func ResourcesTable(resources []Resource) *tabular.Table {
	t := tabular.New("id", "titulo", "formato", "dataCatalogacao", "link")
	for _, r := range resources {
		cataloged := r.CatalogedRaw
		if !r.CatalogedAt.IsZero() {
			cataloged = r.CatalogedAt.Format(time.DateOnly)
		}
		t.Append(tabular.Row{
			"id":              r.ID,
			"titulo":          r.Title,
			"formato":         strings.ToLower(r.Format),
			"dataCatalogacao": cataloged,
			"link":            r.Link,
		})
	}
	return t
}

// SearchTable renders search results with one row each.
func SearchTable(results []DatasetSummary) *tabular.Table {
	t := tabular.New("id", "titulo")
	for _, r := range results {
		t.Append(tabular.Row{"id": r.ID, "titulo": r.Title})
	}
	return t
}

func (c *Client) resolve(ctx context.Context, identifier string) (string, error) {
	identifier = strings.TrimSpace(identifier)
	if IsDatasetID(identifier) {
		return identifier, nil
	}
	return c.FindID(ctx, identifier)
}

func (c *Client) getAPI(ctx context.Context, url string, v any) error {
	if c.token == "" {
		return fmt.Errorf("%w: a Dados Abertos API token is required", integrations.ErrUnauthorized)
	}
	return c.GetWithHeaders(ctx, url, map[string]string{TokenHeader: c.token}, v)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

type searchItem struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Name  string `json:"nome"`
}

type datasetResponse struct {
	ID          string `json:"id"`
	Title       string `json:"titulo"`
	TitleEN     string `json:"title"`
	Name        string `json:"nome"`
	Description string `json:"descricao"`
	Resources   []struct {
		ID          string `json:"id"`
		Title       string `json:"titulo"`
		Description string `json:"descricao"`
		Link        string `json:"link"`
		Format      string `json:"formato"`
		CatalogedAt string `json:"dataCatalogacao"`
	} `json:"recursos"`
}
