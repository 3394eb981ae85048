package integrations

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// RemoveAccents strips diacritics: "São Paulo" becomes "Sao Paulo".
func RemoveAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// TitleCase upper-cases every letter that follows a non-letter and
// lower-cases the rest, so "espigão d'oeste" becomes "Espigão D'Oeste".
func TitleCase(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prevLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			if prevLetter {
				r = unicode.ToLower(r)
			} else {
				r = unicode.ToUpper(r)
			}
			prevLetter = true
		} else {
			prevLetter = false
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Fold normalizes text for comparisons: no accents, lower case, trimmed.
func Fold(s string) string {
	return strings.ToLower(strings.TrimSpace(RemoveAccents(s)))
}

// IsSimilarText reports whether every word of target occurs in current,
// ignoring accents and case. Words match as substrings, so "desocup"
// matches "Taxa de desocupação".
func IsSimilarText(target, current string) bool {
	current = Fold(current)
	for _, word := range strings.Fields(Fold(target)) {
		if !strings.Contains(current, word) {
			return false
		}
	}
	return true
}

// FormatToPath turns a title into a file name friendly string: accents and
// hyphens are dropped and runs of spaces become one underscore.
// "Produção Agrícola - Municipal" becomes "Producao_Agricola_Municipal"
// and "pré-sal" becomes "presal".
func FormatToPath(s string) string {
	s = RemoveAccents(s)
	s = strings.ReplaceAll(s, "-", "")
	return strings.Join(strings.Fields(s), "_")
}
