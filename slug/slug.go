// Package slug turns human-readable titles into URL path segments while keeping
// Hiragana, Katakana, CJK ideographs and Hangul as they are.
package slug

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	// Quotation marks are dropped, not turned into separators:
	// " ' ` U+02BC U+00B4 U+2018 U+2019 U+201C U+201D
	quotes = regexp.MustCompile("[\"'`\u02bc\u00b4\u2018\u2019\u201c\u201d]")
	// Runs of Unicode White_Space and underscores
	whitespace = regexp.MustCompile(`[\s\v\x{85}\p{Zs}\x{2028}\x{2029}_]+`)
	// Runs of dashes
	dashes = regexp.MustCompile(`-+`)
)

// Slugify converts s to a lowercase, dash-separated slug.
//   - NFKC-normalizes Hangul compatibility forms and half-width Katakana
//   - Strips quotation marks
//   - Replaces whitespace, underscores and any character outside
//     ASCII alphanumerics and the CJK blocks with a dash
//   - Collapses dashes and trims one from each end
//   - Lowercases the result
//
// The result may be empty.
func Slugify(s string) string {
	s = normalizeCompatibility(s)
	s = quotes.ReplaceAllString(s, "")
	s = whitespace.ReplaceAllString(s, "-")
	s = strings.Map(func(r rune) rune {
		if isAllowed(r) {
			return r
		}
		return '-'
	}, s)
	s = dashes.ReplaceAllString(s, "-")
	s = strings.TrimPrefix(s, "-")
	s = strings.TrimSuffix(s, "-")

	// Casers carry state, so each call gets its own.
	return cases.Lower(language.Und).String(s)
}

// normalizeCompatibility applies NFKC to maximal runs of half-width Katakana,
// then to maximal runs of Hangul compatibility characters. Everything else
// passes through byte for byte.
func normalizeCompatibility(s string) string {
	if !strings.ContainsFunc(s, needsCompatibility) {
		return s
	}

	t := transform.Chain(
		runes.If(runes.In(halfwidthKatakana), norm.NFKC, nil),
		runes.If(runes.In(hangulCompatibility), norm.NFKC, nil),
	)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

func needsCompatibility(r rune) bool {
	return unicode.Is(halfwidthKatakana, r) || unicode.Is(hangulCompatibility, r)
}
