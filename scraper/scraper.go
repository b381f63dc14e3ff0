// Package scraper implements the per-page and per-batch scrape operations:
// fetch a page, resolve its links against its own base, offer the resolved
// URLs into the frontier, and publish whatever was actually admitted.
package scraper

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/lukemcguire/hostcrawl/crawlerr"
	"github.com/lukemcguire/hostcrawl/frontier"
	"github.com/lukemcguire/hostcrawl/httpfetch"
	"github.com/lukemcguire/hostcrawl/linknorm"
)

// Event reports progress for a single scraped page. It is purely
// observational: nothing in the frontier or driver reads it back.
type Event struct {
	URL     string
	Err     error
	Visited int
	Errored int
}

// Publisher is the seam a Scraper notifies with each page's admitted
// subset. Implementations must treat a send failure after their underlying
// channel closes as a swallowed success, per the publisher contract.
type Publisher interface {
	Notify(batch []string) ([]string, error)
}

// Scraper couples a Fetcher, a Frontier, and a Publisher to carry out
// scrape(url) and scrape_batch(urls).
type Scraper struct {
	fetcher   httpfetch.Fetcher
	frontier  *frontier.Frontier
	publisher Publisher
}

// New builds a Scraper from its three collaborators.
func New(fetcher httpfetch.Fetcher, fr *frontier.Frontier, pub Publisher) *Scraper {
	return &Scraper{fetcher: fetcher, frontier: fr, publisher: pub}
}

// Scrape fetches url, resolves each discovered href against url's own base,
// offers the resolved URLs into the frontier, publishes whatever was
// admitted, and returns that admitted subset. It does not call
// frontier.Complete — that is scrape_batch's unconditional responsibility.
func (s *Scraper) Scrape(ctx context.Context, url string) ([]string, error) {
	normalizer, err := linknorm.New(url)
	if err != nil {
		return nil, crawlerr.InvalidURL(err)
	}

	hrefs, err := s.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, crawlerr.ClientError(err)
	}

	resolved := make([]string, 0, len(hrefs))
	for _, href := range hrefs {
		u, err := normalizer.Resolve(href)
		if err != nil {
			continue // normalization errors on individual hrefs are swallowed
		}
		resolved = append(resolved, u)
	}

	admitted := s.frontier.OfferAll(resolved)
	published, _ := s.publisher.Notify(admitted)
	return published, nil
}

// ScrapeBatch offers every url in urls into the frontier (most will already
// be present), snapshots the resulting pending set as the working set, then
// concurrently scrapes each member and unconditionally marks it done. It
// returns the concatenation of every scrape's admitted subset (errors
// contribute no entries) and the count of scrapes that failed. If events is
// non-nil, one Event is sent per completed page.
func (s *Scraper) ScrapeBatch(ctx context.Context, urls []string, concurrency int, events chan<- Event) ([]string, int) {
	s.frontier.OfferAll(urls)
	working := s.frontier.PendingSnapshot()

	var (
		mu       sync.Mutex
		admitted []string
		errored  int
		visited  int
	)

	g, gctx := errgroup.WithContext(ctx)
	if concurrency > 0 {
		g.SetLimit(concurrency)
	}

	for _, u := range working {
		u := u
		g.Go(func() error {
			published, err := s.Scrape(gctx, u)
			s.frontier.Complete(u)

			mu.Lock()
			visited++
			if err != nil {
				errored++
			} else {
				admitted = append(admitted, published...)
			}
			visitedCount, erroredCount := visited, errored
			mu.Unlock()

			if events != nil {
				evt := Event{URL: u, Visited: visitedCount, Errored: erroredCount}
				if err != nil {
					evt.Err = err
				}
				events <- evt
			}
			return nil // page-level errors never propagate to the group
		})
	}
	_ = g.Wait()

	return admitted, errored
}
