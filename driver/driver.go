// Package driver implements the crawl's concurrency loop: seed a bounded
// result channel, pop batches, scrape them, reinject discoveries via the
// channel, and stop once the frontier drains after a batch completes.
package driver

import (
	"context"
	"log/slog"
	"time"

	"github.com/lukemcguire/hostcrawl/frontier"
	"github.com/lukemcguire/hostcrawl/httpfetch"
	"github.com/lukemcguire/hostcrawl/linknorm"
	"github.com/lukemcguire/hostcrawl/memwatch"
	"github.com/lukemcguire/hostcrawl/scraper"
)

// resultChanCapacity is the bounded FIFO capacity mandated by spec.md §4.G.
const resultChanCapacity = 2048

// Stats is the aggregate, once-computed summary of a completed crawl.
type Stats struct {
	Visited  int
	Errored  int
	Duration time.Duration
}

// Options configures a Run.
type Options struct {
	// Concurrency bounds the number of fetches in flight within a single
	// batch. Defaults to 10 if <= 0.
	Concurrency int
	// MemoryLimitMB, if > 0, enables the memory watcher (component N) and
	// narrows the effective per-batch concurrency under heap pressure.
	MemoryLimitMB int64
	// Events, if non-nil, receives one scraper.Event per scraped page.
	Events chan<- scraper.Event
	// Logger receives crawl lifecycle messages. Defaults to slog.Default().
	Logger *slog.Logger
}

// chanPublisher adapts a Go channel to the scraper.Publisher seam. Sending
// on the channel after it has been closed panics in Go; per spec.md §6
// ("send failure after channel close is swallowed and treated as success")
// that panic is recovered and the batch is reported as delivered anyway.
type chanPublisher struct {
	ch chan<- []string
}

func (p *chanPublisher) Notify(batch []string) (sent []string, err error) {
	sent = batch
	defer func() { _ = recover() }()
	p.ch <- batch
	return
}

// Run executes one crawl starting from seed and returns its aggregate
// stats plus the completed set of visited URLs. A non-nil error means the
// seed itself could not be parsed into a base URL (fatal, per spec.md §7);
// no fetch is attempted in that case.
func Run(ctx context.Context, seed string, fetcher httpfetch.Fetcher, opts Options) (Stats, []string, error) {
	start := time.Now()

	if opts.Concurrency <= 0 {
		opts.Concurrency = 10
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	if _, err := linknorm.New(seed); err != nil {
		logger.Error("seed url rejected", "seed", seed, "error", err)
		return Stats{}, nil, err
	}

	fr, err := frontier.New(4096,
		frontier.NewSameHostPolicy(seed),
		frontier.NewNonScriptletPolicy(),
	)
	if err != nil {
		return Stats{}, nil, err
	}
	defer func() { _ = fr.Close() }()

	resultCh := make(chan []string, resultChanCapacity)
	scr := scraper.New(fetcher, fr, &chanPublisher{ch: resultCh})

	var watcher *memwatch.Watcher
	concurrency := opts.Concurrency
	if opts.MemoryLimitMB > 0 {
		watcher = memwatch.New(opts.MemoryLimitMB)
		watcher.OnThrottle(func(level memwatch.Level) {
			switch level {
			case memwatch.Critical:
				concurrency = 1
			case memwatch.Warning:
				concurrency = max(1, opts.Concurrency/2)
			default:
				concurrency = opts.Concurrency
			}
			logger.Warn("memory pressure changed fetch concurrency", "level", level, "concurrency", concurrency)
		})
	}

	logger.Info("crawl starting", "seed", seed, "concurrency", opts.Concurrency)

	resultCh <- []string{seed}

	// A plain range over resultCh would keep draining it after close: every
	// successful scrape publishes its (possibly empty) admitted subset, so
	// the batch that first observes the frontier idle leaves at least one
	// more buffered message behind it whenever any of its pages was fetched,
	// which a range loop would
	// then redeliver — triggering a second, panicking close. Receiving
	// explicitly and breaking the instant the frontier goes idle ensures
	// close(resultCh) runs at most once, from exactly one place.
	errored := 0
	for {
		batch, ok := <-resultCh
		if !ok {
			break
		}

		if watcher != nil {
			watcher.Check()
		}
		_, batchErrored := scr.ScrapeBatch(ctx, batch, concurrency, opts.Events)
		errored += batchErrored

		if fr.IsIdle() {
			close(resultCh)
			break
		}
	}

	done := fr.DoneSnapshot()
	stats := Stats{
		Visited:  len(done),
		Errored:  errored,
		Duration: time.Since(start),
	}

	logger.Info("crawl finished", "visited", stats.Visited, "errored", stats.Errored, "duration", stats.Duration)

	return stats, done, nil
}
