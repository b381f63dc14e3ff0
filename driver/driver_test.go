package driver

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"

	"github.com/lukemcguire/hostcrawl/scraper"
)

// stubFetcher implements httpfetch.Fetcher with a fixed URL -> hrefs/err map,
// matching the end-to-end scenario tables in spec.md §8.
type stubFetcher struct {
	mu    sync.Mutex
	pages map[string][]string
	errs  map[string]error
}

func (f *stubFetcher) Fetch(ctx context.Context, url string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.errs[url]; ok {
		return nil, err
	}
	return f.pages[url], nil
}

func sortedCopy(s []string) []string {
	out := append([]string(nil), s...)
	sort.Strings(out)
	return out
}

func TestRun_Scenario1_SinglePageNoLinks(t *testing.T) {
	fetcher := &stubFetcher{pages: map[string][]string{
		"http://test.com/a.html": nil,
	}}
	stats, done, err := Run(context.Background(), "http://test.com/a.html", fetcher, Options{Concurrency: 2})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"http://test.com/a.html"}
	if got := sortedCopy(done); len(got) != 1 || got[0] != want[0] {
		t.Errorf("done = %v, want %v", got, want)
	}
	if stats.Visited != 1 {
		t.Errorf("Visited = %d, want 1", stats.Visited)
	}
}

func TestRun_Scenario2_FollowsInternalLink(t *testing.T) {
	fetcher := &stubFetcher{pages: map[string][]string{
		"http://test.com/a.html": {"b.html"},
		"http://test.com/b.html": nil,
	}}
	_, done, err := Run(context.Background(), "http://test.com/a.html", fetcher, Options{Concurrency: 2})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"http://test.com/a.html", "http://test.com/b.html"}
	if got := sortedCopy(done); len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("done = %v, want %v", got, want)
	}
}

func TestRun_Scenario3_ExternalLinkRejected(t *testing.T) {
	fetcher := &stubFetcher{pages: map[string][]string{
		"http://test.com/a.html": {"b.html", "https://other.com/x"},
		"http://test.com/b.html": nil,
	}}
	_, done, err := Run(context.Background(), "http://test.com/a.html", fetcher, Options{Concurrency: 2})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"http://test.com/a.html", "http://test.com/b.html"}
	got := sortedCopy(done)
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("done = %v, want %v (other.com must be excluded)", got, want)
	}
}

func TestRun_Scenario4_JavascriptHrefDropped(t *testing.T) {
	fetcher := &stubFetcher{pages: map[string][]string{
		"http://test.com/a.html": {"javascript:void(0)", "b.html"},
		"http://test.com/b.html": nil,
	}}
	_, done, err := Run(context.Background(), "http://test.com/a.html", fetcher, Options{Concurrency: 2})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"http://test.com/a.html", "http://test.com/b.html"}
	got := sortedCopy(done)
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("done = %v, want %v", got, want)
	}
}

func TestRun_Scenario5_CycleTerminates(t *testing.T) {
	fetcher := &stubFetcher{pages: map[string][]string{
		"http://test.com/a.html": {"b.html"},
		"http://test.com/b.html": {"a.html", "c.html"},
		"http://test.com/c.html": nil,
	}}
	_, done, err := Run(context.Background(), "http://test.com/a.html", fetcher, Options{Concurrency: 4})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"http://test.com/a.html", "http://test.com/b.html", "http://test.com/c.html"}
	got := sortedCopy(done)
	if len(got) != 3 || got[0] != want[0] || got[1] != want[1] || got[2] != want[2] {
		t.Errorf("done = %v, want %v", got, want)
	}
}

func TestRun_Scenario6_RootAndSchemeRelativeLinks(t *testing.T) {
	fetcher := &stubFetcher{pages: map[string][]string{
		"http://test.com/base/p.html": {"q.html", "/r.html", "//test.com/s.html"},
		"http://test.com/base/q.html": nil,
		"http://test.com/r.html":      nil,
		"http://test.com/s.html":      nil,
	}}
	_, done, err := Run(context.Background(), "http://test.com/base/p.html", fetcher, Options{Concurrency: 4})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{
		"http://test.com/base/p.html",
		"http://test.com/base/q.html",
		"http://test.com/r.html",
		"http://test.com/s.html",
	}
	got := sortedCopy(done)
	if len(got) != len(want) {
		t.Fatalf("done = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("done[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestRun_MissingSchemeSeedIsFatal(t *testing.T) {
	_, _, err := Run(context.Background(), "/no-scheme", &stubFetcher{}, Options{})
	if err == nil {
		t.Fatal("expected an error for a schemeless seed")
	}
}

func TestRun_SeedFetchErrorLeavesOnlySeedDone(t *testing.T) {
	fetcher := &stubFetcher{errs: map[string]error{
		"http://test.com/a.html": errors.New("unreachable"),
	}}
	stats, done, err := Run(context.Background(), "http://test.com/a.html", fetcher, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if len(done) != 1 || done[0] != "http://test.com/a.html" {
		t.Errorf("done = %v, want only the seed", done)
	}
	if stats.Errored != 1 {
		t.Errorf("Errored = %d, want 1", stats.Errored)
	}
}

func TestRun_EmitsEventsWhenRequested(t *testing.T) {
	fetcher := &stubFetcher{pages: map[string][]string{
		"http://test.com/a.html": nil,
	}}
	events := make(chan scraper.Event, 10)
	_, _, err := Run(context.Background(), "http://test.com/a.html", fetcher, Options{Events: events})
	close(events)
	if err != nil {
		t.Fatal(err)
	}
	count := 0
	for range events {
		count++
	}
	if count != 1 {
		t.Errorf("got %d events, want 1", count)
	}
}
