// Package httpfetch provides the default Fetcher: a plain net/http GET
// followed by golang.org/x/net/html anchor extraction. It deliberately does
// not retry, rate-limit, or consult robots.txt — all three are Non-goal
// features of the crawl itself, not just its core abstraction.
package httpfetch

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/net/html"

	"github.com/lukemcguire/hostcrawl/crawlerr"
)

// Fetcher is the external seam the scraper calls for each page: Fetch
// returns the raw, un-deduplicated href attribute values of every <a>
// element in the response body, in document order. Missing href attributes
// are skipped silently.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]string, error)
}

// Client is the default Fetcher. The zero value is usable and falls back to
// http.DefaultClient; construct with New instead so timeouts and transport
// reuse are explicit.
type Client struct {
	http *http.Client
}

// New builds a Client with the given HTTP client. Pass nil to get
// http.DefaultClient's zero-config behavior (no timeout).
func New(httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{http: httpClient}
}

// Fetch implements Fetcher.
func (c *Client) Fetch(ctx context.Context, url string) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, crawlerr.NewFetchError(crawlerr.InvalidUri, url, err)
	}

	client := c.http
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, crawlerr.NewFetchError(crawlerr.ConnectionError, url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	// Non-2xx responses are indistinguishable from transport failure, per
	// the conflation the source deliberately preserves (spec note 3).
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, crawlerr.NewFetchError(crawlerr.ConnectionError, url,
			fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	links, err := extractLinks(resp.Body)
	if err != nil {
		return nil, crawlerr.NewFetchError(crawlerr.IOError, url, err)
	}
	return links, nil
}

// extractLinks tokenizes an HTML document and collects every <a href=...>
// value verbatim, in document order, without resolving or deduplicating.
func extractLinks(body io.Reader) ([]string, error) {
	tokenizer := html.NewTokenizer(body)
	var links []string

	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			if err := tokenizer.Err(); err != nil && err.Error() != "EOF" {
				return links, err
			}
			return links, nil
		case html.StartTagToken, html.SelfClosingTagToken:
			token := tokenizer.Token()
			if token.Data != "a" {
				continue
			}
			for _, attr := range token.Attr {
				if attr.Key == "href" {
					links = append(links, attr.Val)
				}
			}
		}
	}
}
