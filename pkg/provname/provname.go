// Package provname derives the canonical join key for Turkish province names.
//
// The scenario workbooks, the historical workbook and the boundary file spell
// the same province with different casing and diacritics
// ("İSTANBUL", "Istanbul", "istanbul"). Normalize folds all of them to one
// lowercase ASCII key so rows can be joined across sources.
package provname

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// turkish maps the Turkish letters that have no ASCII decomposition (ı) or
// whose decomposition we want pinned to a plain ASCII base letter.
var turkish = strings.NewReplacer(
	"ç", "c",
	"ğ", "g",
	"ı", "i",
	"ö", "o",
	"ş", "s",
	"ü", "u",
	"â", "a",
)

// maxPasses bounds the fixed-point loop in Normalize. Real names settle after
// one pass; compatibility characters that decompose to uppercase need two.
const maxPasses = 4

// Normalize returns the join key for a raw province name.
//
// Steps: trim, Unicode full case folding, Turkish letter substitution, NFKD
// decomposition and removal of nonspacing marks. The pipeline is repeated
// until the output no longer changes, so Normalize(Normalize(s)) ==
// Normalize(s) for every input. Invalid UTF-8 bytes are dropped.
func Normalize(raw string) string {
	s := raw
	if !utf8.ValidString(s) {
		s = strings.ToValidUTF8(s, "")
	}
	for i := 0; i < maxPasses; i++ {
		next := pass(s)
		if next == s {
			return next
		}
		s = next
	}
	return s
}

func pass(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	// Casers carry state, so each call gets its own.
	s = cases.Fold().String(s)
	s = turkish.Replace(s)
	s = stripMarks(norm.NFKD.String(s))
	return strings.TrimSpace(s)
}

func stripMarks(s string) string {
	out, _, err := transform.String(runes.Remove(runes.In(unicode.Mn)), s)
	if err != nil {
		// runes.Remove never fails on valid UTF-8; fall back to a manual filter.
		var b strings.Builder
		for _, r := range s {
			if !unicode.Is(unicode.Mn, r) {
				b.WriteRune(r)
			}
		}
		return b.String()
	}
	return out
}

// Equal reports whether two raw names denote the same province.
func Equal(a, b string) bool {
	return Normalize(a) == Normalize(b)
}
