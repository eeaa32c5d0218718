package permalink

import "strings"

// Printable ASCII that is percent-encoded in canonical slugs. Control
// characters and all non-ASCII bytes are encoded as well; letters, digits,
// '-' and '_' are not.
const urlUnsafe = " !\"#$%&'()*+,./:;<=>?@[\\]^`{|}~"

func shouldEscape(c byte) bool {
	return c < 0x20 || c >= 0x7f || strings.IndexByte(urlUnsafe, c) >= 0
}

// escapeSegment percent-encodes s byte by byte with uppercase hex digits.
func escapeSegment(s string) string {
	const upperhex = "0123456789ABCDEF"

	n := 0
	for i := 0; i < len(s); i++ {
		if shouldEscape(s[i]) {
			n++
		}
	}
	if n == 0 {
		return s
	}

	var b strings.Builder
	b.Grow(len(s) + 2*n)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if shouldEscape(c) {
			b.WriteByte('%')
			b.WriteByte(upperhex[c>>4])
			b.WriteByte(upperhex[c&15])
		} else {
			b.WriteByte(c)
		}
	}
	return b.String()
}
