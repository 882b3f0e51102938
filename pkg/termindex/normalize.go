// CLAUDE:SUMMARY Matching-key normalizer (lowercase, letters and digits only) and accent folding for alphabet bucketing.
package termindex

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize turns any display string into its matching key: every rune is
// lowercased with the Unicode simple mapping and every rune that is not a
// letter or digit is removed. "Iron-Deficiency Anemia" -> "irondeficiencyanemia".
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}

var stripAccents = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// foldAccents strips combining marks (Édème -> Edeme).
func foldAccents(s string) string {
	result, _, _ := transform.String(stripAccents, s)
	return result
}
