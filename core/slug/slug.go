// Package slug derives filesystem- and URL-safe identifiers from free-text
// display names. Slugs key storage directories, so the mapping must be
// deterministic and stable.
package slug

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var nonAlphaNumeric = regexp.MustCompile(`[^a-zA-Z0-9]+`)

// stripMarks removes combining marks left over after NFD decomposition,
// folding accented letters down to their base letter.
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Make converts a display name into its slug: accents folded to base
// letters, every run of non-alphanumeric characters collapsed to a single
// hyphen, no leading or trailing hyphens. Pure and idempotent.
func Make(text string) string {
	folded, _, err := transform.String(stripMarks, text)
	if err != nil {
		// Transform only fails on malformed UTF-8; fall back to the raw
		// input and let the regexp discard anything unsafe.
		folded = text
	}

	out := nonAlphaNumeric.ReplaceAllString(folded, "-")
	return strings.Trim(out, "-")
}
