// Package labels maps Brazilian federative units (UFs) between their names
// and two-letter abbreviations.
//
// Names are the accent-free, title-cased forms used as lookup keys across
// apisbr ("Sao Paulo", "Mato Grosso Do Sul"); lookups accept accents and
// any letter case.
package labels

import (
	"sort"
	"strings"

	apierrors "github.com/apisbr/apisbr/pkg/errors"
	"github.com/apisbr/apisbr/pkg/integrations"
)

// UF is a federative unit.
type UF struct {
	Abbrev string `json:"sigla"`
	Name   string `json:"nome"`
}

var ufNameToAbbrev = map[string]string{
	"Acre":                "AC",
	"Alagoas":             "AL",
	"Amapa":               "AP",
	"Amazonas":            "AM",
	"Bahia":               "BA",
	"Ceara":               "CE",
	"Distrito Federal":    "DF",
	"Espirito Santo":      "ES",
	"Goias":               "GO",
	"Maranhao":            "MA",
	"Mato Grosso":         "MT",
	"Mato Grosso Do Sul":  "MS",
	"Minas Gerais":        "MG",
	"Para":                "PA",
	"Paraiba":             "PB",
	"Parana":              "PR",
	"Pernambuco":          "PE",
	"Piaui":               "PI",
	"Rio De Janeiro":      "RJ",
	"Rio Grande Do Norte": "RN",
	"Rio Grande Do Sul":   "RS",
	"Rondonia":            "RO",
	"Roraima":             "RR",
	"Santa Catarina":      "SC",
	"Sao Paulo":           "SP",
	"Sergipe":             "SE",
	"Tocantins":           "TO",
}

var ufAbbrevToName = integrations.InvertMap(ufNameToAbbrev)

// NormalizeName returns the lookup form of a UF or municipality name:
// accents removed and title-cased ("SÃO PAULO" becomes "Sao Paulo").
func NormalizeName(name string) string {
	return integrations.TitleCase(integrations.RemoveAccents(strings.TrimSpace(name)))
}

// UFAbbrev returns the abbreviation of a UF given its name, with or without
// accents, in any case.
func UFAbbrev(name string) (string, error) {
	if abbrev, ok := ufNameToAbbrev[NormalizeName(name)]; ok {
		return abbrev, nil
	}
	return "", apierrors.New(apierrors.ErrCodeNotFound, "unknown UF name %q", name)
}

// UFName returns the normalized name of a UF given its abbreviation, in
// any case.
func UFName(abbrev string) (string, error) {
	if name, ok := ufAbbrevToName[strings.ToUpper(strings.TrimSpace(abbrev))]; ok {
		return name, nil
	}
	return "", apierrors.New(apierrors.ErrCodeNotFound, "unknown UF abbreviation %q", abbrev)
}

// Lookup resolves either a name or an abbreviation.
func Lookup(s string) (UF, error) {
	if name, err := UFName(s); err == nil {
		return UF{Abbrev: strings.ToUpper(strings.TrimSpace(s)), Name: name}, nil
	}
	abbrev, err := UFAbbrev(s)
	if err != nil {
		return UF{}, apierrors.New(apierrors.ErrCodeNotFound, "unknown UF %q", s)
	}
	return UF{Abbrev: abbrev, Name: ufAbbrevToName[abbrev]}, nil
}

// IsUF reports whether abbrev is one of the 27 UF abbreviations.
func IsUF(abbrev string) bool {
	_, ok := ufAbbrevToName[strings.ToUpper(abbrev)]
	return ok
}

// UFs returns all federative units sorted by abbreviation.
func UFs() []UF {
	out := make([]UF, 0, len(ufAbbrevToName))
	for abbrev, name := range ufAbbrevToName {
		out = append(out, UF{Abbrev: abbrev, Name: name})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Abbrev < out[j].Abbrev })
	return out
}
