// Package permalink parses, validates and canonicalizes marketplace
// permalinks.
//
// A permalink is an absolute URL whose path has the shape
//
//	/{country}/{service_type}/[{title}-]{id}[/{data}][/]
//
// The country is taken from the origin when the origin is one of the
// branded, country-specific hosts, and from the first path segment
// otherwise.
package permalink

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"unicode/utf8"

	"github.com/daangn/permalink/country"
	"github.com/daangn/permalink/slug"
)

var (
	errRelativeURL     = errors.New("url is not absolute")
	errNilURL          = errors.New("nil url")
	errTitleNotUTF8    = errors.New("title is not valid UTF-8")
	errTitleUnescaping = errors.New("title has a malformed escape")
)

// Permalink is a parsed permalink. The zero value is not a valid permalink;
// obtain one with Parse or ParseURL.
type Permalink struct {
	country     country.Country
	serviceType string
	title       string
	hasTitle    bool
	id          string
	data        string
	hasData     bool
}

// Parse parses rawURL as a permalink.
//
// Errors satisfy IsInvalidURL, IsInvalidPermalink or IsUnknownCountry.
func Parse(rawURL string) (Permalink, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return Permalink{}, &InvalidURLError{Input: rawURL, Err: err}
	}
	return ParseURL(u)
}

// ParseURL is like Parse but takes an already parsed URL. Query and
// fragment are ignored.
func ParseURL(u *url.URL) (Permalink, error) {
	if u == nil {
		return Permalink{}, &InvalidURLError{Err: errNilURL}
	}
	if !u.IsAbs() {
		return Permalink{}, &InvalidURLError{Input: u.String(), Err: errRelativeURL}
	}

	path := u.EscapedPath()
	pn, ok := parsePathname(path)
	if !ok {
		return Permalink{}, &InvalidPermalinkError{Path: path}
	}

	c, ok := country.FromURL(u)
	if !ok {
		var err error
		c, err = country.Parse(pn.country)
		if err != nil {
			return Permalink{}, &UnknownCountryError{Code: pn.country, Err: err}
		}
	}

	p := Permalink{
		country:     c,
		serviceType: pn.serviceType,
		id:          pn.id,
		data:        pn.data.value,
		hasData:     pn.data.ok,
	}
	if pn.title.ok {
		title, err := decodeTitle(pn.title.value)
		if err != nil {
			return Permalink{}, &InvalidPermalinkError{Path: path, Err: err}
		}
		p.title, p.hasTitle = title, true
	}
	return p, nil
}

func decodeTitle(raw string) (string, error) {
	title, err := url.PathUnescape(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %v", errTitleUnescaping, err)
	}
	if !utf8.ValidString(title) {
		return "", errTitleNotUTF8
	}
	return title, nil
}

// MustParse is like Parse but panics on error. For tests and constants.
func MustParse(rawURL string) Permalink {
	p, err := Parse(rawURL)
	if err != nil {
		panic(err)
	}
	return p
}

func (p Permalink) Country() country.Country   { return p.country }
func (p Permalink) Language() country.Language { return p.country.Language() }
func (p Permalink) ServiceType() string        { return p.serviceType }
func (p Permalink) ID() string                 { return p.id }

// Title returns the decoded title, if the permalink had one.
func (p Permalink) Title() (string, bool) { return p.title, p.hasTitle }

// Data returns the trailing data segment, if present.
func (p Permalink) Data() (string, bool) { return p.data, p.hasData }

// IsZero reports whether p is the zero Permalink.
func (p Permalink) IsZero() bool { return p.id == "" }

// Normalize returns the minimal, country-neutral form of p. Title and data
// are dropped.
func (p Permalink) Normalize() string {
	return fmt.Sprintf("%s/%s/%s/%s/", country.NeutralOrigin, p.country, p.serviceType, p.id)
}

// Canonicalize returns the branded URL for p with title slugified in front
// of the id. An empty or fully filtered title yields just the id. The id
// keeps its case.
func (p Permalink) Canonicalize(title string) string {
	return fmt.Sprintf("%s/%s/%s/%s/", p.country.Origin(), p.country, p.serviceType, escapeSegment(p.slugWith(title)))
}

func (p Permalink) slugWith(title string) string {
	s := slug.Slugify(title)
	if s == "" {
		return p.id
	}
	return s + "-" + p.id
}

// String returns the normalized form.
func (p Permalink) String() string {
	return p.Normalize()
}

type permalinkJSON struct {
	Country     country.Country  `json:"country"`
	Language    country.Language `json:"language"`
	ServiceType string           `json:"service_type"`
	Title       *string          `json:"title"`
	ID          string           `json:"id"`
	Data        *string          `json:"data"`
	Normalized  string           `json:"normalized"`
}

// MarshalJSON encodes the permalink's components. Missing title and data
// encode as null.
func (p Permalink) MarshalJSON() ([]byte, error) {
	out := permalinkJSON{
		Country:     p.country,
		Language:    p.Language(),
		ServiceType: p.serviceType,
		ID:          p.id,
		Normalized:  p.Normalize(),
	}
	if title, ok := p.Title(); ok {
		out.Title = &title
	}
	if data, ok := p.Data(); ok {
		out.Data = &data
	}
	return json.Marshal(out)
}
