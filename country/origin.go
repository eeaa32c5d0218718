package country

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/idna"
)

// NeutralOrigin is the canonical host that belongs to no country.
const NeutralOrigin = "https://www.karrotmarket.com"

var errNoOrigin = errors.New("url has no scheme or host")

// WellKnownOrigin is an entry of the origin table. Country is zero for the
// country-neutral origin.
type WellKnownOrigin struct {
	Origin  string  `json:"origin"`
	Country Country `json:"country,omitempty"`
}

var wellKnownOrigins = []WellKnownOrigin{
	{Origin: "https://www.daangn.com", Country: KR},
	{Origin: NeutralOrigin},
	{Origin: "https://ca.karrotmarket.com", Country: CA},
	{Origin: "https://jp.karrotmarket.com", Country: JP},
	{Origin: "https://kr.karrotmarket.com", Country: KR},
	{Origin: "https://uk.karrotmarket.com", Country: UK},
	{Origin: "https://us.karrotmarket.com", Country: US},
}

// Legacy bare domains
var originAliases = map[string]string{
	"https://daangn.com":       "https://www.daangn.com",
	"https://karrotmarket.com": NeutralOrigin,
}

var countryByOrigin = func() map[string]Country {
	m := make(map[string]Country, len(wellKnownOrigins))
	for _, o := range wellKnownOrigins {
		if o.Country.Valid() {
			m[o.Origin] = o.Country
		}
	}
	return m
}()

// WellKnownOrigins returns a copy of the origin table.
func WellKnownOrigins() []WellKnownOrigin {
	out := make([]WellKnownOrigin, len(wellKnownOrigins))
	copy(out, wellKnownOrigins)
	return out
}

// FromOrigin resolves a country-specific origin such as "https://www.daangn.com".
// The country-neutral origin and unknown origins report false.
// Anything url.Parse accepts is canonicalized first, so full URLs work too.
func FromOrigin(origin string) (Country, bool) {
	canonical, err := CanonicalOrigin(origin)
	if err != nil {
		return 0, false
	}
	return fromCanonicalOrigin(canonical)
}

// FromURL resolves the country of the origin of u.
func FromURL(u *url.URL) (Country, bool) {
	canonical, err := OriginOf(u)
	if err != nil {
		return 0, false
	}
	return fromCanonicalOrigin(canonical)
}

func fromCanonicalOrigin(origin string) (Country, bool) {
	if alias, ok := originAliases[origin]; ok {
		origin = alias
	}
	c, ok := countryByOrigin[origin]
	return c, ok
}

// CanonicalOrigin parses rawURL and returns its serialized origin.
func CanonicalOrigin(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	return OriginOf(u)
}

// OriginOf serializes the scheme, host and port of u.
//   - Scheme and host are lowercased
//   - Internationalized hosts are converted to their ASCII form
//   - Default ports (80 for http, 443 for https) are omitted
func OriginOf(u *url.URL) (string, error) {
	if u.Scheme == "" || u.Host == "" {
		return "", errNoOrigin
	}

	scheme := strings.ToLower(u.Scheme)
	host, err := canonicalHost(u.Hostname())
	if err != nil {
		return "", err
	}
	if strings.Contains(host, ":") {
		host = "[" + host + "]"
	}

	port := u.Port()
	if (scheme == "http" && port == "80") || (scheme == "https" && port == "443") {
		port = ""
	}
	if port != "" {
		return scheme + "://" + host + ":" + port, nil
	}
	return scheme + "://" + host, nil
}

func canonicalHost(host string) (string, error) {
	if host == "" {
		return "", errNoOrigin
	}
	if isASCII(host) {
		return strings.ToLower(host), nil
	}

	ascii, err := idna.Lookup.ToASCII(host)
	if err != nil {
		return "", fmt.Errorf("idna: %w", err)
	}
	return strings.ToLower(ascii), nil
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}
