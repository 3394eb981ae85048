// Package ipeadata provides an HTTP client for the IPEA Data API.
//
// # Overview
//
// This package reads the economic, regional and social time series
// published by IPEA through its OData endpoint
// (http://www.ipeadata.gov.br/api/odata4).
//
// # Usage
//
//	client := ipeadata.NewClient(backend, 24*time.Hour)
//
//	table, err := client.FetchValues(ctx, "PRECOS12_IPCA12", ipeadata.ValuesFilter{
//	    Period: period.MustParse("2020..2022"),
//	})
//
// Series are addressed by code ([IsSeriesCode]) or exact name. Regional
// series can be restricted to one territorial level ("Estados",
// "Municípios"), which also pivots the table to one row per territory.
package ipeadata
