package integrations

import (
	"context"

	"github.com/apisbr/apisbr/pkg/tabular"
)

// Source is the uniform surface of an API client: resolve a title to an
// identifier, then fetch the data behind an identifier as a table.
//
// Fetch accepts a title wherever it accepts an identifier; titles are
// resolved with FindID first.
type Source interface {
	// Name identifies the API in logs and metrics (e.g. "ibge-agregados").
	Name() string

	// FindID returns the identifier of the entry whose title matches
	// exactly (ignoring case), or a [NoMatchError] listing similar titles.
	FindID(ctx context.Context, title string) (string, error)

	// Fetch returns the data behind identifier with default filters.
	Fetch(ctx context.Context, identifier string) (*tabular.Table, error)
}
