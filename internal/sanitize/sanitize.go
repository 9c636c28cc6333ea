// Package sanitize prepares untrusted notification text for pattern matching.
package sanitize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// cleaner normalizes to NFC and strips format (zero-width joiners, BOMs) and
// surrogate code points that would otherwise break substring matching.
var cleaner = transform.Chain(
	norm.NFC,
	runes.Remove(runes.In(unicode.Cf)),
	runes.Remove(runes.In(unicode.Cs)),
)

// Clean returns a pattern-safe version of raw message text.
// Invalid UTF-8 sequences are dropped, unicode is NFC-normalized, invisible
// format characters are removed, and all whitespace runs (including control
// characters) collapse to single spaces. Clean never fails: any input,
// including binary garbage, maps to some string, possibly empty.
func Clean(raw string) string {
	s := strings.ToValidUTF8(raw, "")

	if out, _, err := transform.String(cleaner, s); err == nil {
		s = out
	}

	// Map remaining control characters to spaces so FieldsFunc treats them
	// as separators along with ordinary whitespace.
	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return ' '
		}
		return r
	}, s)

	return strings.Join(strings.Fields(s), " ")
}
