package frontier

import (
	"fmt"
	"os"
	"sync"

	bloom "github.com/bits-and-blooms/bloom/v3"
	"github.com/edsrzf/mmap-go"
)

// prefilter is a probabilistic, disk-backed accelerator in front of the
// Frontier's authoritative sharded sets. It never gates admission on its
// own: a negative test is conclusive (bloom filters have no false
// negatives) and lets Offer skip the pending/done map probes for a URL that
// has certainly never been seen; a positive test only means "maybe", and
// Offer still falls through to the authoritative check under the shard
// lock. Dropping or disabling the prefilter entirely changes nothing about
// correctness — only how much work a guaranteed-new URL costs to admit.
//
// The filter itself lives on the heap; after every insertion its serialized
// state is also copied into a memory-mapped temp file, in the manner of the
// teacher's disk-backed visited tracker, used here as a hint rather than as
// the crawl's source of truth.
type prefilter struct {
	mu      sync.Mutex
	filter  *bloom.BloomFilter
	file    *os.File
	mapping mmap.MMap
	path    string
}

// newPrefilter sizes the filter for expectedURLs at the given false-positive
// rate and backs it with a memory-mapped temp file.
func newPrefilter(expectedURLs uint, falsePositiveRate float64) (*prefilter, error) {
	filter := bloom.NewWithEstimates(expectedURLs, falsePositiveRate)

	tmp, err := os.CreateTemp("", "hostcrawl-prefilter-*.bloom")
	if err != nil {
		return nil, fmt.Errorf("create prefilter temp file: %w", err)
	}
	path := tmp.Name()

	size := filter.Cap()
	if err := tmp.Truncate(int64(size)); err != nil {
		_ = tmp.Close()
		_ = os.Remove(path)
		return nil, fmt.Errorf("truncate prefilter temp file: %w", err)
	}

	mapped, err := mmap.MapRegion(tmp, int(size), mmap.RDWR, 0, 0)
	if err != nil {
		_ = tmp.Close()
		_ = os.Remove(path)
		return nil, fmt.Errorf("mmap prefilter temp file: %w", err)
	}

	data, err := filter.MarshalBinary()
	if err != nil {
		_ = mapped.Unmap()
		_ = tmp.Close()
		_ = os.Remove(path)
		return nil, fmt.Errorf("marshal prefilter bloom state: %w", err)
	}
	if len(data) > len(mapped) {
		_ = mapped.Unmap()
		_ = tmp.Close()
		_ = os.Remove(path)
		return nil, fmt.Errorf("prefilter data (%d) exceeds mapped size (%d)", len(data), len(mapped))
	}
	copy(mapped, data)

	return &prefilter{
		filter:  filter,
		file:    tmp,
		mapping: mapped,
		path:    path,
	}, nil
}

// maybeSeen reports whether url might already have been offered. false is
// conclusive; true means "check the authoritative sets".
func (p *prefilter) maybeSeen(url string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.filter.TestString(url)
}

// markSeen records url so future maybeSeen calls return true for it.
func (p *prefilter) markSeen(url string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.filter.AddString(url)
	data, err := p.filter.MarshalBinary()
	if err != nil || len(data) > len(p.mapping) {
		return
	}
	copy(p.mapping, data)
}

// close releases the mapped temp file. Safe to call once per prefilter.
func (p *prefilter) close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var errs []error
	if p.mapping != nil {
		if err := p.mapping.Unmap(); err != nil {
			errs = append(errs, err)
		}
		p.mapping = nil
	}
	if p.file != nil {
		if err := p.file.Close(); err != nil {
			errs = append(errs, err)
		}
		p.file = nil
	}
	if p.path != "" {
		if err := os.Remove(p.path); err != nil && !os.IsNotExist(err) {
			errs = append(errs, err)
		}
		p.path = ""
	}
	if len(errs) > 0 {
		return fmt.Errorf("close prefilter: %v", errs)
	}
	return nil
}
