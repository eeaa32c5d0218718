// Package country is the static registry of supported countries, their
// default languages and the web origins each country is served from.
//
// All tables are immutable and safe for concurrent use.
package country

import (
	"errors"
	"fmt"

	"golang.org/x/text/language"
)

// ErrUnknownCode is returned when a two-letter code is not a supported country.
var ErrUnknownCode = errors.New("unknown country code")

// Country is one of the supported countries. The zero value is not a valid country.
type Country uint8

const (
	CA Country = iota + 1
	JP
	KR
	UK
	US
)

// All returns every supported country in code order.
func All() []Country {
	return []Country{CA, JP, KR, UK, US}
}

// Parse resolves a two-letter country code, ignoring ASCII case.
func Parse(code string) (Country, error) {
	if len(code) == 2 {
		switch string([]byte{lowerASCII(code[0]), lowerASCII(code[1])}) {
		case "ca":
			return CA, nil
		case "jp":
			return JP, nil
		case "kr":
			return KR, nil
		case "uk":
			return UK, nil
		case "us":
			return US, nil
		}
	}
	return 0, fmt.Errorf("%w %q", ErrUnknownCode, code)
}

func lowerASCII(b byte) byte {
	if b >= 'A' && b <= 'Z' {
		return b + ('a' - 'A')
	}
	return b
}

// String returns the lowercase country code used in permalink paths.
func (c Country) String() string {
	switch c {
	case CA:
		return "ca"
	case JP:
		return "jp"
	case KR:
		return "kr"
	case UK:
		return "uk"
	case US:
		return "us"
	}
	return fmt.Sprintf("Country(%d)", uint8(c))
}

// Valid reports whether c is one of the supported countries.
func (c Country) Valid() bool {
	return c >= CA && c <= US
}

// Language returns the default language of the country.
func (c Country) Language() Language {
	switch c {
	case JP:
		return JA
	case KR:
		return KO
	case CA, UK, US:
		return EN
	}
	return 0
}

// Origin returns the branded public origin the country is served from.
func (c Country) Origin() string {
	switch c {
	case CA:
		return "https://ca.karrotmarket.com"
	case JP:
		return "https://jp.karrotmarket.com"
	case KR:
		return "https://www.daangn.com"
	case UK:
		return "https://uk.karrotmarket.com"
	case US:
		return "https://us.karrotmarket.com"
	}
	return NeutralOrigin
}

func (c Country) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("cannot marshal invalid %s", c)
	}
	return []byte(c.String()), nil
}

func (c *Country) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Language is a default content language. The zero value is not a valid language.
type Language uint8

const (
	EN Language = iota + 1
	JA
	KO
)

// String returns the ISO 639-1 code.
func (l Language) String() string {
	switch l {
	case EN:
		return "en"
	case JA:
		return "ja"
	case KO:
		return "ko"
	}
	return fmt.Sprintf("Language(%d)", uint8(l))
}

// Tag returns the BCP 47 tag for the language.
func (l Language) Tag() language.Tag {
	switch l {
	case EN:
		return language.English
	case JA:
		return language.Japanese
	case KO:
		return language.Korean
	}
	return language.Und
}

func (l Language) MarshalText() ([]byte, error) {
	if l < EN || l > KO {
		return nil, fmt.Errorf("cannot marshal invalid %s", l)
	}
	return []byte(l.String()), nil
}
