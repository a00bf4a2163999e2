package models

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

func sinTildes(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// NormalizarNombre upper-cases, strips diacritics and joins words with "_".
// "Ana María" -> "ANA_MARIA".
func NormalizarNombre(s string) string {
	return strings.Join(strings.Fields(sinTildes(strings.ToUpper(s))), "_")
}

// ClaveNombre is the lookup key used to match names coming from spreadsheets:
// lower case, no diacritics, single spaces.
func ClaveNombre(s string) string {
	return strings.Join(strings.Fields(sinTildes(strings.ToLower(s))), " ")
}
