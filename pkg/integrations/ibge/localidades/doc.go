// Package localidades provides an HTTP client for the IBGE Localidades API.
//
// # Overview
//
// This package lists Brazilian states and municipalities from
// https://servicodados.ibge.gov.br/api/v1/localidades and converts between
// municipality names and IBGE codes.
//
// # Usage
//
//	client := localidades.NewClient(backend, 24*time.Hour)
//
//	id, err := client.MunicipalityID(ctx, "São Paulo", "SP", true, false)
//	// id == 3550308
//
//	name, err := client.MunicipalityName(ctx, "355030", false)
//	// name == "Sao Paulo - SP"
//
// # Keys and codes
//
// Municipalities are keyed "<name> - <UF>", with the name stripped of
// accents and title-cased ("Espigao D'Oeste - RO"). Codes have seven digits;
// the last one is a check digit, dropped when verifier is false.
//
// The UF of a municipality comes from its intermediate region, falling back
// to its mesoregion for entries that lack the newer regional division.
package localidades
