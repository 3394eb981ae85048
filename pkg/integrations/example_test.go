package integrations_test

import (
	"fmt"

	"github.com/apisbr/apisbr/pkg/integrations"
)

func ExampleRemoveAccents() {
	fmt.Println(integrations.RemoveAccents("São Paulo"))
	fmt.Println(integrations.RemoveAccents("Goiânia"))
	// Output:
	// Sao Paulo
	// Goiania
}

func ExampleIsSimilarText() {
	fmt.Println(integrations.IsSimilarText("desocupacao", "Taxa de desocupação"))
	fmt.Println(integrations.IsSimilarText("taxa emprego", "Taxa de desocupação"))
	// Output:
	// true
	// false
}

func ExampleNoMatchError() {
	err := &integrations.NoMatchError{
		Query:   "pib municipal",
		Similar: map[string]string{"Agregado - Produto interno bruto dos municípios": "5938"},
	}
	fmt.Println(err)
	// Output:
	// no match found for "pib municipal"; similar results:
	// Agregado - Produto interno bruto dos municípios : 5938
}

func ExampleURLEncode() {
	fmt.Println(integrations.URLEncode("Censo Demográfico"))
	// Output:
	// Censo+Demogr%C3%A1fico
}
