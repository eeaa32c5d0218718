package slug

import (
	"unicode"

	"golang.org/x/text/unicode/rangetable"
)

// Code point blocks that survive slugification un-romanized.
var (
	// Hiragana is U+3040..U+309F.
	Hiragana = &unicode.RangeTable{R16: []unicode.Range16{{Lo: 0x3040, Hi: 0x309f, Stride: 1}}}

	// Katakana is U+30A0..U+30FF.
	Katakana = &unicode.RangeTable{R16: []unicode.Range16{{Lo: 0x30a0, Hi: 0x30ff, Stride: 1}}}

	// CJKExtensionA is U+3400..U+4DBF (rare kanji).
	CJKExtensionA = &unicode.RangeTable{R16: []unicode.Range16{{Lo: 0x3400, Hi: 0x4dbf, Stride: 1}}}

	// CJKUnified is U+4E00..U+9FAF (common and uncommon kanji).
	CJKUnified = &unicode.RangeTable{R16: []unicode.Range16{{Lo: 0x4e00, Hi: 0x9faf, Stride: 1}}}

	// HangulSyllables is U+AC00..U+D7A3 (가..힣).
	HangulSyllables = &unicode.RangeTable{R16: []unicode.Range16{{Lo: 0xac00, Hi: 0xd7a3, Stride: 1}}}

	// HalfwidthFullwidth is U+FF00..U+FF9F: full-width roman characters and half-width katakana.
	HalfwidthFullwidth = &unicode.RangeTable{R16: []unicode.Range16{{Lo: 0xff00, Hi: 0xff9f, Stride: 1}}}
)

// Blocks lists the allowed non-ASCII blocks in code point order.
var Blocks = []*unicode.RangeTable{
	Hiragana,
	Katakana,
	CJKExtensionA,
	CJKUnified,
	HangulSyllables,
	HalfwidthFullwidth,
}

var allowedBlocks = rangetable.Merge(Blocks...)

// Ranges rewritten with NFKC before filtering.
var (
	hangulCompatibility = &unicode.RangeTable{R16: []unicode.Range16{
		{Lo: 0x1100, Hi: 0x11ff, Stride: 1}, // Hangul jamo
		{Lo: 0x3130, Hi: 0x318f, Stride: 1}, // Hangul compatibility jamo
		{Lo: 0x3200, Hi: 0x321e, Stride: 1}, // parenthesized Hangul
		{Lo: 0x3260, Hi: 0x327f, Stride: 1}, // circled Hangul
		{Lo: 0xffa0, Hi: 0xffdc, Stride: 1}, // half-width Hangul
		{Lo: 0xffe6, Hi: 0xffe6, Stride: 1}, // full-width won sign
	}}

	halfwidthKatakana = &unicode.RangeTable{R16: []unicode.Range16{
		{Lo: 0xff60, Hi: 0xff9f, Stride: 1},
	}}
)

func isAllowed(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-':
		return true
	case r < 0x3040:
		return false
	}
	return unicode.Is(allowedBlocks, r)
}
