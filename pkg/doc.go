// Package pkg holds the apisbr libraries: clients for Brazilian government
// data APIs and the helpers that turn their responses into tables.
//
// # Overview
//
// Each API has its own client package, all built on the shared request
// layer in [integrations]:
//
//  1. [integrations/dadosabertos] - the dados.gov.br catalog (datasets and
//     downloadable resources; needs an API token)
//  2. [integrations/ibge/localidades] - states and municipalities with their
//     IBGE codes
//  3. [integrations/ibge/agregados] - IBGE aggregates (SIDRA tables):
//     catalog, metadata and values
//  4. [integrations/ipeadata] - IPEA Data time series
//
// Supporting packages:
//
//   - [tabular] flattens JSON into tables, filters and pivots them, and
//     writes CSV, JSON, YAML or aligned text
//   - [period] parses period filters such as "2019-2021" or
//     "01/2020..06/2021"
//   - [labels] converts UF names to abbreviations and back
//   - [cache] stores decoded responses (file, memory, Redis or none)
//   - [observability] exposes hooks for lookups, fetches, cache and HTTP
//     events
//   - [errors] defines the error codes shared by every package
//
// # Quick Start
//
//	backend, _ := cache.NewFileCache(dir)
//	ipea := ipeadata.NewClient(backend, 24*time.Hour)
//
//	code, err := ipea.FindID(ctx, "PIB Estadual")
//	var noMatch *integrations.NoMatchError
//	if errors.As(err, &noMatch) {
//	    for _, name := range noMatch.Names() {
//	        fmt.Println(name, noMatch.Similar[name])
//	    }
//	}
//
//	t, _ := ipea.FetchValues(ctx, code, ipeadata.ValuesFilter{
//	    Period: period.MustParse("2015-2020"),
//	    Level:  "Estados",
//	})
//	t.WriteCSV(os.Stdout)
//
// # Lookups
//
// Every client resolves human titles to identifiers. An exact match
// (ignoring case and, where names are Portuguese, accents) returns the
// identifier; otherwise an [integrations.NoMatchError] carries the similar
// names found, so callers can suggest or pick one.
//
// # Testing
//
//	go test ./pkg/...                    # All tests
//	go test -run Example ./pkg/...       # Examples only
//	go test -tags integration ./pkg/...  # Include live API tests
//
// [integrations]: https://pkg.go.dev/github.com/apisbr/apisbr/pkg/integrations
// [integrations/dadosabertos]: https://pkg.go.dev/github.com/apisbr/apisbr/pkg/integrations/dadosabertos
// [integrations/ibge/localidades]: https://pkg.go.dev/github.com/apisbr/apisbr/pkg/integrations/ibge/localidades
// [integrations/ibge/agregados]: https://pkg.go.dev/github.com/apisbr/apisbr/pkg/integrations/ibge/agregados
// [integrations/ipeadata]: https://pkg.go.dev/github.com/apisbr/apisbr/pkg/integrations/ipeadata
// [tabular]: https://pkg.go.dev/github.com/apisbr/apisbr/pkg/tabular
// [period]: https://pkg.go.dev/github.com/apisbr/apisbr/pkg/period
// [labels]: https://pkg.go.dev/github.com/apisbr/apisbr/pkg/labels
// [cache]: https://pkg.go.dev/github.com/apisbr/apisbr/pkg/cache
// [observability]: https://pkg.go.dev/github.com/apisbr/apisbr/pkg/observability
// [errors]: https://pkg.go.dev/github.com/apisbr/apisbr/pkg/errors
package pkg
