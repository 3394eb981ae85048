// Package integrations provides HTTP clients for Brazilian government data APIs.
//
// # Overview
//
// Each API has its own subpackage wrapping its endpoints into typed methods:
//
//   - [dadosabertos]: the federal open-data catalog (dados.gov.br)
//   - [localidades]: IBGE locality registry (states, municipalities)
//   - [agregados]: IBGE aggregated statistics (SIDRA tables)
//   - [ipeadata]: IPEA time series
//
// # Client Pattern
//
// All clients follow the same pattern:
//
//	client := agregados.NewClient(backend, 24*time.Hour)
//	id, err := client.FindID(ctx, "Produção Agrícola Municipal")   // title -> identifier
//	table, err := client.Fetch(ctx, id)                               // identifier -> rows
//
// Lookups by title return a [NoMatchError] when nothing matches exactly; its
// Similar field maps close titles to their identifiers so callers can retry.
// The catalog-backed clients implement [Source].
//
// # Shared Infrastructure
//
// The [Client] type provides the HTTP layer used by every API client:
// default headers, status mapping to [ErrNotFound], [ErrUnauthorized] and
// [ErrNetwork], JSON decoding with [ErrInvalidResponse] for bodies that
// cannot be decoded, and response caching via [cache.Cache]. Requests are
// never retried.
//
// The package also holds the text helpers used for title matching
// ([RemoveAccents], [TitleCase], [IsSimilarText]) and [WriteFiles], which
// saves downloaded resources.
//
// [dadosabertos]: github.com/apisbr/apisbr/pkg/integrations/dadosabertos
// [localidades]: github.com/apisbr/apisbr/pkg/integrations/ibge/localidades
// [agregados]: github.com/apisbr/apisbr/pkg/integrations/ibge/agregados
// [ipeadata]: github.com/apisbr/apisbr/pkg/integrations/ipeadata
// [cache.Cache]: github.com/apisbr/apisbr/pkg/cache.Cache
package integrations
