// Package agregados provides an HTTP client for the IBGE Agregados API.
//
// # Overview
//
// This package queries the aggregates of IBGE surveys (census, PNAD, IPCA
// and others) published at https://servicodados.ibge.gov.br/api/v3/agregados.
// An aggregate is a table of variables, optionally split by classifications,
// over periods and localities of a territorial level.
//
// # Usage
//
//	client := agregados.NewClient(backend, 24*time.Hour)
//
//	table, err := client.FetchData(ctx, agregados.Query{
//	    Identifier: "1419-63",
//	    Level:      "N3",
//	    Periods:    "-12",
//	    Classify:   map[string][]string{"Geral, grupo, subgrupo, item e subitem": {"Índice geral"}},
//	})
//
// # Identifiers
//
// Data is addressed by "<aggregateID>-<variableID>", where several
// variables may be joined with "|" ("1419-63|69"). Names resolve to IDs
// with [Client.FindID], which takes "<aggregate name>;<variable name>".
// Names are matched ignoring case and accents; lookups without an exact
// match return an [integrations.NoMatchError] listing similar names.
//
// # Territorial levels
//
// Levels are codes such as N1 (Brasil), N3 (Unidade da Federação) or N6
// (Município). [ResolveLevel] also accepts the description, and rejects
// levels the aggregate is not published at.
package agregados
