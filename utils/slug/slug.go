// Package slug converts display names to URL-safe slugs and back.
//
// Decode is not an inverse of Encode: casing, diacritics and original
// punctuation are lost. Decoded text is only a lookup key.
package slug

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var reNonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// Encode lower-cases name, strips diacritics, collapses every run of
// non-alphanumeric characters into a single hyphen and trims hyphens at both ends.
func Encode(name string) string {
	lower := strings.ToLower(name)

	var b strings.Builder
	b.Grow(len(lower))
	for _, r := range norm.NFD.String(lower) {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(r)
	}

	s := reNonAlnum.ReplaceAllString(b.String(), "-")
	return strings.Trim(s, "-")
}

// Decode replaces every hyphen with a space
func Decode(s string) string {
	return strings.ReplaceAll(s, "-", " ")
}
