// Package linknorm resolves raw anchor hrefs against a page's base URL.
//
// It is constructed once per scraped page (cheap; no caching required) and
// used single-threaded for the lifetime of that page's scrape. Resolution
// deliberately does not collapse "." or ".." path segments — see Resolve.
package linknorm

import (
	"fmt"
	"net/url"
	"strings"
)

// Kind classifies a link construction failure.
type Kind int

const (
	// MissingScheme means the base page URL had no scheme component.
	MissingScheme Kind = iota
	// BadUri covers javascript: hrefs and any href that fails to parse for
	// a reason other than being relative without a base.
	BadUri
	// ParseErr wraps an underlying net/url parse failure with detail.
	ParseErr
)

// Error reports a link construction or resolution failure.
type Error struct {
	Kind   Kind
	Detail string
}

func (e *Error) Error() string {
	switch e.Kind {
	case MissingScheme:
		return "link: uri is missing scheme"
	case BadUri:
		return "link: bad uri, cannot parse"
	default:
		return fmt.Sprintf("link: parse error: %s", e.Detail)
	}
}

func missingScheme() error { return &Error{Kind: MissingScheme} }
func badURI() error        { return &Error{Kind: BadUri} }
func parseErr(detail string) error {
	return &Error{Kind: ParseErr, Detail: detail}
}

// Normalizer resolves hrefs discovered on one page against that page's base.
type Normalizer struct {
	scheme    string
	authority string
	directory string
	full      string
}

// New builds a Normalizer from a page's own URL. It fails with MissingScheme
// if page has no scheme, or ParseErr if page does not parse as a URL at all.
func New(page string) (*Normalizer, error) {
	u, err := url.Parse(page)
	if err != nil {
		return nil, parseErr(err.Error())
	}
	if u.Scheme == "" {
		return nil, missingScheme()
	}

	dir := u.Path
	if idx := strings.LastIndex(dir, "/"); idx >= 0 {
		dir = dir[:idx+1]
	} else {
		dir = ""
	}

	return &Normalizer{
		scheme:    u.Scheme,
		authority: u.Host,
		directory: dir,
		full:      page,
	}, nil
}

// Resolve turns a raw href discovered on the constructing page into an
// absolute URL. See the package doc and spec for the exact resolution table;
// in short:
//
//   - "javascript:..."      -> BadUri
//   - "#fragment"           -> the page URL, unchanged
//   - "//host/path"         -> "<scheme>://host/path", canonicalized
//   - already absolute      -> canonicalized as-is
//   - "/root/relative"      -> "<scheme>://<authority>/root/relative"
//   - "plain/relative"      -> "<scheme>://<authority><directory>plain/relative"
//
// Path-relative joining is textual concatenation: "." and ".." segments are
// never collapsed. This is a deliberate, tested behavior carried over from
// the original implementation, not an oversight.
func (n *Normalizer) Resolve(href string) (string, error) {
	if strings.HasPrefix(href, "javascript:") {
		return "", badURI()
	}
	if strings.HasPrefix(href, "#") {
		return n.full, nil
	}

	toParse := href
	if strings.HasPrefix(href, "//") {
		toParse = n.scheme + ":" + href
	}

	u, err := url.Parse(toParse)
	if err == nil && u.IsAbs() {
		return u.String(), nil
	}
	if err == nil {
		// Parsed but not absolute: net/url has no distinct
		// "relative-without-base" error the way the original's URL parser
		// does, so a successful-but-relative parse is treated the same way
		// as that case.
		if strings.HasPrefix(href, "/") {
			return n.scheme + "://" + n.authority + href, nil
		}
		return n.scheme + "://" + n.authority + n.directory + href, nil
	}

	return "", badURI()
}
