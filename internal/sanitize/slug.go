package sanitize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// maxSlugLen is the ceiling enforced on canonicalized slugs, matching the
// strict slug-format validator.
const maxSlugLen = 100

// deaccent decomposes to NFD and drops combining marks, so "café" becomes
// "cafe" before the ASCII filter runs.
var deaccent = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Slug canonicalizes an arbitrary string into slug form: lowercase, accents
// stripped, anything outside [a-z0-9 -] removed, whitespace collapsed to
// single hyphens, repeated hyphens collapsed, edge hyphens trimmed, and the
// result capped at 100 characters. Run this before the strict slug-format
// check so human input like "  Café Menu!! " validates as "cafe-menu".
func Slug(input string) string {
	s := strings.ToLower(input)

	if out, _, err := transform.String(deaccent, s); err == nil {
		s = out
	}

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteByte(' ')
		}
	}
	s = strings.TrimSpace(b.String())

	// Whitespace runs become single hyphens, then hyphen runs collapse.
	s = strings.Join(strings.Fields(s), "-")
	for strings.Contains(s, "--") {
		s = strings.ReplaceAll(s, "--", "-")
	}
	s = strings.Trim(s, "-")

	if len(s) > maxSlugLen {
		s = strings.Trim(s[:maxSlugLen], "-")
	}
	return s
}
