package frontier

import (
	"net/url"
	"strings"
)

// Policy is a stateless, thread-safe admission predicate evaluated against
// a candidate URL before it may enter a Frontier's pending set.
type Policy interface {
	Admits(candidate string) bool
}

// sameHost admits only URLs whose host matches the seed's host, compared as
// an exact byte sequence (no case-folding, no port normalization — see
// spec §9 note 4).
type sameHost struct {
	host string
}

// NewSameHostPolicy builds a same-host Policy from the crawl's seed URL. If
// the seed fails to parse, or has no host, the resulting policy's stored
// host is the empty string, matching §4.A ("empty string if parsing yields
// no host").
func NewSameHostPolicy(seed string) Policy {
	u, err := url.Parse(seed)
	if err != nil {
		return &sameHost{host: ""}
	}
	return &sameHost{host: u.Host}
}

func (p *sameHost) Admits(candidate string) bool {
	u, err := url.Parse(candidate)
	if err != nil {
		return false
	}
	return u.Host == p.host
}

// nonScriptlet rejects any URL beginning with the literal "javascript:" prefix.
type nonScriptlet struct{}

// NewNonScriptletPolicy returns the built-in policy that rejects javascript: hrefs.
func NewNonScriptletPolicy() Policy {
	return nonScriptlet{}
}

func (nonScriptlet) Admits(candidate string) bool {
	return !strings.HasPrefix(candidate, "javascript:")
}
