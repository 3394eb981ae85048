package integrations

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"time"

	"github.com/apisbr/apisbr/pkg/cache"
	"github.com/apisbr/apisbr/pkg/observability"
)

// Client provides the HTTP plumbing shared by every API client: default
// headers, status mapping, JSON decoding and response caching.
type Client struct {
	http      *http.Client
	cache     cache.Cache
	namespace string
	ttl       time.Duration
	headers   map[string]string
}

// NewClient creates a Client storing responses in backend under namespace
// (e.g. "ibge-agregados:") for ttl. A nil backend disables caching.
// Headers are applied to all requests made through this client.
func NewClient(backend cache.Cache, namespace string, ttl time.Duration, headers map[string]string) *Client {
	if backend == nil {
		backend = cache.NewNullCache()
	}
	return &Client{
		http:      NewHTTPClient(),
		cache:     backend,
		namespace: namespace,
		ttl:       ttl,
		headers:   headers,
	}
}

// SetHTTPClient replaces the underlying HTTP client. Nil is ignored.
func (c *Client) SetHTTPClient(h *http.Client) {
	if h != nil {
		c.http = h
	}
}

// Cached retrieves a value from cache or executes fetch and caches the result.
// If refresh is true, the cache is bypassed and fetch is always called.
// The fetch function should populate v; on success, v is stored in the cache.
// Cache failures are never returned: a broken cache only costs a request.
func (c *Client) Cached(ctx context.Context, key string, refresh bool, v any, fetch func() error) error {
	fullKey := cache.HTTPKey(c.namespace, key)
	ns := cache.Namespace(fullKey)

	if !refresh {
		if data, ok, err := c.cache.Get(ctx, fullKey); err == nil && ok && json.Unmarshal(data, v) == nil {
			observability.Cache().OnCacheHit(ctx, ns)
			return nil
		}
		observability.Cache().OnCacheMiss(ctx, ns)
	}

	if err := fetch(); err != nil {
		return err
	}

	if data, err := json.Marshal(v); err == nil {
		if c.cache.Set(ctx, fullKey, data, c.ttl) == nil {
			observability.Cache().OnCacheSet(ctx, ns, len(data))
		}
	}
	return nil
}

// Get performs an HTTP GET request and JSON-decodes the response into v.
func (c *Client) Get(ctx context.Context, url string, v any) error {
	return c.GetWithHeaders(ctx, url, nil, v)
}

// GetWithHeaders performs an HTTP GET with additional headers merged with defaults.
// Request-specific headers override client defaults for the same key.
//
// A successful status with a body that is not JSON (HTML maintenance pages,
// truncated payloads, a shape that does not fit v) yields [ErrInvalidResponse].
func (c *Client) GetWithHeaders(ctx context.Context, url string, headers map[string]string, v any) error {
	resp, err := c.do(ctx, url, headers)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := checkContentType(resp); err != nil {
		return c.invalid(ctx, resp, err)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return c.invalid(ctx, resp, err)
	}
	return nil
}

// GetJSON performs an HTTP GET and decodes the body into a generic tree of
// maps, slices and [json.Number] values, the input of the table flattener.
func (c *Client) GetJSON(ctx context.Context, url string) (any, error) {
	resp, err := c.do(ctx, url, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := checkContentType(resp); err != nil {
		return nil, c.invalid(ctx, resp, err)
	}
	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, c.invalid(ctx, resp, err)
	}
	return v, nil
}

// GetBytes performs an HTTP GET request and returns the raw body.
// Used to download dataset resources, which may be in any format.
func (c *Client) GetBytes(ctx context.Context, url string) ([]byte, error) {
	resp, err := c.do(ctx, url, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrNetwork, url, err)
	}
	return data, nil
}

func (c *Client) do(ctx context.Context, url string, headers map[string]string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	hooks := observability.HTTP()
	host, path := req.URL.Host, req.URL.Path
	hooks.OnRequest(ctx, req.Method, host, path)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		hooks.OnError(ctx, req.Method, host, path, err)
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	hooks.OnResponse(ctx, req.Method, host, path, resp.StatusCode, time.Since(start))

	if err := checkStatus(resp.StatusCode); err != nil {
		resp.Body.Close()
		return nil, err
	}
	return resp, nil
}

func (c *Client) invalid(ctx context.Context, resp *http.Response, cause error) error {
	req := resp.Request
	observability.HTTP().OnError(ctx, req.Method, req.URL.Host, req.URL.Path, cause)
	return fmt.Errorf("%w: %s: %v", ErrInvalidResponse, req.URL.Redacted(), cause)
}

func checkStatus(code int) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusNotFound:
		return ErrNotFound
	case code == http.StatusUnauthorized, code == http.StatusForbidden:
		return fmt.Errorf("%w: status %d", ErrUnauthorized, code)
	default:
		return fmt.Errorf("%w: status %d", ErrNetwork, code)
	}
}

// checkContentType rejects HTML bodies on JSON endpoints. A missing or
// unparsable header is accepted and left to the decoder.
func checkContentType(resp *http.Response) error {
	ct := resp.Header.Get("Content-Type")
	if ct == "" {
		return nil
	}
	mediaType, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return nil
	}
	if mediaType == "text/html" {
		return fmt.Errorf("unexpected content type %q", mediaType)
	}
	return nil
}
