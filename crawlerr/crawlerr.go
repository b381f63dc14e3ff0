// Package crawlerr holds the crawl's structured failure kinds: fetch errors
// raised by a Fetcher implementation, and scrape errors raised by the
// scraper when it wraps a link-construction or fetch failure for a
// particular page. The core never discriminates among these kinds beyond
// treating each family as equivalent and non-retryable.
package crawlerr

import "fmt"

// FetchKind classifies why a Fetcher could not return a page's links.
type FetchKind int

const (
	// InvalidUri means the target URL could not be parsed by the transport.
	InvalidUri FetchKind = iota
	// ConnectionError covers transport failures and non-2xx HTTP responses
	// alike — the two are deliberately not distinguished (spec note 3).
	ConnectionError
	// IOError covers failures reading or writing the response body.
	IOError
	// EncodingError covers a response body that could not be decoded as text.
	EncodingError
)

func (k FetchKind) String() string {
	switch k {
	case InvalidUri:
		return "invalid uri"
	case ConnectionError:
		return "connection error"
	case IOError:
		return "io error"
	case EncodingError:
		return "encoding error"
	default:
		return "unknown fetch error"
	}
}

// FetchError reports a Fetcher failure for a single URL.
type FetchError struct {
	Kind FetchKind
	URL  string
	Err  error // underlying cause, if any; may be nil
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetch %s: %s: %v", e.URL, e.Kind, e.Err)
	}
	return fmt.Sprintf("fetch %s: %s", e.URL, e.Kind)
}

func (e *FetchError) Unwrap() error { return e.Err }

// NewFetchError builds a FetchError of the given kind for url, optionally
// wrapping cause.
func NewFetchError(kind FetchKind, url string, cause error) error {
	return &FetchError{Kind: kind, URL: url, Err: cause}
}

// ScrapeError reports why scrape(url) could not complete normally. Every
// ScrapeError still results in the page being marked done — it is reported
// for logging, never to trigger a retry.
type ScrapeError struct {
	// InvalidURL is non-empty when the failure was in constructing a
	// linknorm.Normalizer for the page URL itself (wraps a linknorm error).
	InvalidURL string
	// Client is true when the failure was the Fetcher's (wraps a FetchError).
	Client bool
	Err    error
}

func (e *ScrapeError) Error() string {
	switch {
	case e.InvalidURL != "":
		return fmt.Sprintf("invalid url: %s", e.InvalidURL)
	case e.Client:
		return "client error fetching url"
	default:
		return "scrape error"
	}
}

func (e *ScrapeError) Unwrap() error { return e.Err }

// InvalidURL builds the ScrapeError variant wrapping a page's own
// link-construction failure.
func InvalidURL(cause error) error {
	msg := ""
	if cause != nil {
		msg = cause.Error()
	}
	return &ScrapeError{InvalidURL: msg, Err: cause}
}

// ClientError builds the ScrapeError variant wrapping a Fetcher failure.
func ClientError(cause error) error {
	return &ScrapeError{Client: true, Err: cause}
}
