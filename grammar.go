package permalink

import "regexp"

// Grammar of a permalink path, one rule per segment:
//
//	pathname     = "/" country "/" service_type "/" slug [ "/" data ] [ "/" ]
//	slug         = [ title "-" ] id
//
// The title is lazy, so the id is always the last dash-separated token.
const (
	countryRule     = `(?P<country>[a-zA-Z]{2})`
	serviceTypeRule = `(?P<service_type>[a-z\-]{3,})`
	titleRule       = `(?P<title>(?:(?:[a-z0-9]|%[0-9A-F]{2})+-?)+?)`
	idRule          = `(?P<id>[a-zA-Z0-9]{8,})`
	slugRule        = `(?P<slug>(?:` + titleRule + `-)?` + idRule + `)`
	dataRule        = `(?P<data>[a-zA-Z0-9\-_]+)`

	pathnameRule = `^/` + countryRule + `/` + serviceTypeRule + `/` + slugRule + `(?:/` + dataRule + `)?/?$`
)

var pathnameGrammar = regexp.MustCompile(pathnameRule)

var (
	countryGroup     = pathnameGrammar.SubexpIndex("country")
	serviceTypeGroup = pathnameGrammar.SubexpIndex("service_type")
	titleGroup       = pathnameGrammar.SubexpIndex("title")
	idGroup          = pathnameGrammar.SubexpIndex("id")
	dataGroup        = pathnameGrammar.SubexpIndex("data")
)

// segment is an optional piece of a matched path.
type segment struct {
	value string
	ok    bool
}

// pathname is the parse tree of an escaped URL path. Values are raw,
// the title is still percent-encoded.
type pathname struct {
	country     string
	serviceType string
	title       segment
	id          string
	data        segment
}

func parsePathname(escapedPath string) (pathname, bool) {
	m := pathnameGrammar.FindStringSubmatchIndex(escapedPath)
	if m == nil {
		return pathname{}, false
	}

	group := func(i int) segment {
		if m[2*i] < 0 {
			return segment{}
		}
		return segment{value: escapedPath[m[2*i]:m[2*i+1]], ok: true}
	}

	return pathname{
		country:     group(countryGroup).value,
		serviceType: group(serviceTypeGroup).value,
		title:       group(titleGroup),
		id:          group(idGroup).value,
		data:        group(dataGroup),
	}, true
}
