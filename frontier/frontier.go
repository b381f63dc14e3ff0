// Package frontier implements the crawl's deduplicating, concurrent-safe
// queue of URLs to visit plus the set of URLs already visited.
//
// A Frontier is shared, interior-mutable state: the driver and every
// in-flight scrape task hold the same handle and call Offer/Complete/
// snapshot methods concurrently. It is never cloned per task.
package frontier

import (
	"hash/fnv"
	"sync"
)

const numShards = 32

type shard struct {
	mu      sync.Mutex
	pending set
	done    set
}

func newShard() *shard {
	return &shard{pending: newSet(), done: newSet()}
}

func (s *shard) lock()   { s.mu.Lock() }
func (s *shard) unlock() { s.mu.Unlock() }

// Frontier is the crawl's sole source of truth for deduplication. pending
// and done are each sharded by a hash of the URL so unrelated URLs do not
// contend on the same lock; a given URL always hashes to the same shard for
// both its pending and done membership, which is what makes Offer
// linearizable with respect to itself for that URL.
type Frontier struct {
	shards    [numShards]*shard
	policies  []Policy
	prefilter *prefilter // optional; nil disables the accelerator
}

// New builds a Frontier gated by policies, evaluated in order with
// short-circuit AND, ahead of the implicit not-already-known check. The
// disk-backed bloom prefilter is sized for expectedURLs; pass 0 to disable
// it (frontier then consults the authoritative sets directly on every
// Offer, which is always correct, just slower for very large crawls).
func New(expectedURLs uint, policies ...Policy) (*Frontier, error) {
	f := &Frontier{policies: policies}
	for i := range f.shards {
		f.shards[i] = newShard()
	}
	if expectedURLs > 0 {
		pf, err := newPrefilter(expectedURLs, 0.001)
		if err != nil {
			return nil, err
		}
		f.prefilter = pf
	}
	return f, nil
}

// Close releases the prefilter's backing resources, if one was created.
func (f *Frontier) Close() error {
	if f.prefilter == nil {
		return nil
	}
	return f.prefilter.close()
}

func (f *Frontier) shardFor(u string) *shard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(u))
	return f.shards[h.Sum32()%numShards]
}

// Offer admits a candidate URL into pending if every policy admits it and it
// is not already present in pending or done. It reports whether the URL was
// actually inserted.
func (f *Frontier) Offer(u string) bool {
	for _, p := range f.policies {
		if !p.Admits(u) {
			return false
		}
	}

	sh := f.shardFor(u)
	sh.lock()
	defer sh.unlock()

	if f.prefilter != nil && !f.prefilter.maybeSeen(u) {
		sh.pending.add(u)
		f.prefilter.markSeen(u)
		return true
	}

	if sh.done.contains(u) || sh.pending.contains(u) {
		return false
	}
	sh.pending.add(u)
	if f.prefilter != nil {
		f.prefilter.markSeen(u)
	}
	return true
}

// OfferAll applies Offer to each URL in order and returns the subsequence
// that was actually inserted.
func (f *Frontier) OfferAll(urls []string) []string {
	admitted := make([]string, 0, len(urls))
	for _, u := range urls {
		if f.Offer(u) {
			admitted = append(admitted, u)
		}
	}
	return admitted
}

// Complete removes u from pending and inserts it into done. Both halves are
// idempotent: completing a URL that is not pending, or that is already
// done, is a no-op for that half.
func (f *Frontier) Complete(u string) {
	sh := f.shardFor(u)
	sh.lock()
	defer sh.unlock()
	sh.pending.remove(u)
	sh.done.add(u)
	if f.prefilter != nil {
		f.prefilter.markSeen(u)
	}
}

// PendingSnapshot returns the current pending set in unspecified order.
func (f *Frontier) PendingSnapshot() []string {
	var out []string
	for _, sh := range f.shards {
		sh.lock()
		for u := range sh.pending {
			out = append(out, u)
		}
		sh.unlock()
	}
	return out
}

// DoneSnapshot returns the current done set in unspecified order.
func (f *Frontier) DoneSnapshot() []string {
	var out []string
	for _, sh := range f.shards {
		sh.lock()
		for u := range sh.done {
			out = append(out, u)
		}
		sh.unlock()
	}
	return out
}

// IsIdle reports whether pending is currently empty. Per the driver's
// concurrency discipline this is only ever queried between batches, when no
// scrape task is in flight, so the lack of a single cross-shard snapshot
// does not introduce a race in practice.
func (f *Frontier) IsIdle() bool {
	for _, sh := range f.shards {
		sh.lock()
		empty := len(sh.pending) == 0
		sh.unlock()
		if !empty {
			return false
		}
	}
	return true
}
