package integrations

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"
)

const httpTimeout = 30 * time.Second

var (
	// ErrNotFound is returned when a dataset, aggregate, series or locality doesn't exist.
	ErrNotFound = errors.New("resource not found")

	// ErrNetwork is returned for HTTP failures (timeouts, connection errors, non-2xx responses).
	ErrNetwork = errors.New("network error")

	// ErrInvalidResponse is returned when a successful response cannot be decoded.
	ErrInvalidResponse = errors.New("invalid response")

	// ErrUnauthorized is returned when an API rejects or requires credentials.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNoMatch is wrapped by [NoMatchError].
	ErrNoMatch = errors.New("no match found")
)

// NoMatchError is returned by title lookups without an exact match.
// Similar maps the display name of each close result to its identifier.
type NoMatchError struct {
	Query   string
	Similar map[string]string
}

// Error lists the similar results, one "name : id" per line.
func (e *NoMatchError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "no match found for %q", e.Query)
	if len(e.Similar) == 0 {
		return b.String()
	}
	b.WriteString("; similar results:")
	for _, name := range e.Names() {
		fmt.Fprintf(&b, "\n%s : %s", name, e.Similar[name])
	}
	return b.String()
}

// Unwrap returns [ErrNoMatch].
func (e *NoMatchError) Unwrap() error { return ErrNoMatch }

// Names returns the similar result names sorted alphabetically.
func (e *NoMatchError) Names() []string {
	names := make([]string, 0, len(e.Similar))
	for name := range e.Similar {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewHTTPClient creates an HTTP client with the timeout used for all APIs.
// The IBGE catalog endpoints are slow, hence the generous limit.
func NewHTTPClient() *http.Client {
	return &http.Client{Timeout: httpTimeout}
}

// URLEncode percent-encodes a string for use in URLs.
// This is a convenience wrapper around [url.QueryEscape].
func URLEncode(s string) string { return url.QueryEscape(s) }

// InvertMap swaps the keys and values of m. When several keys share a
// value, which one survives is unspecified.
func InvertMap[K, V comparable](m map[K]V) map[V]K {
	out := make(map[V]K, len(m))
	for k, v := range m {
		out[v] = k
	}
	return out
}
