// Package dadosabertos provides an HTTP client for the Dados Abertos
// catalog API of the Brazilian federal government.
//
// # Overview
//
// This package searches the open data catalog (https://dados.gov.br) for
// datasets, lists their resources and downloads resource files.
//
// # Usage
//
//	client := dadosabertos.NewClient(token, backend, 24*time.Hour)
//
//	id, err := client.FindID(ctx, "Cadastro Nacional da Pessoa Jurídica - CNPJ")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	paths, err := client.Download(ctx, id, "out", dadosabertos.ResourceFilter{})
//
// # Identifiers
//
// Every operation taking an identifier accepts either a dataset ID (a UUID,
// see [IsDatasetID]) or an exact dataset title. Titles are resolved with
// [Client.FindID], which scans search pages until an empty one or the
// configured depth. A title without an exact match yields an
// [integrations.NoMatchError] listing similar titles.
//
// # Resources
//
// [ResourceFilter] keeps resources by format ("csv" by default, "all" for
// any) and cataloging date. Resources whose date cannot be parsed are only
// kept by an unbounded period.
//
// # Authentication
//
// The catalog API requires a key, sent in the chave-api-dados-abertos
// header. Operations fail with [integrations.ErrUnauthorized] when the
// client has no token.
package dadosabertos
