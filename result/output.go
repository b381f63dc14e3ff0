// Package result writes a finished crawl's visited-URL set to an output
// writer in one of three formats. Plain text (one URL per line) is the
// spec-mandated default; JSON and CSV exist for tooling integration.
package result

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// Stats is the subset of a crawl's aggregate summary the output writers
// need. Kept distinct from driver.Stats so this package has no dependency
// on the driver's concurrency machinery — callers pass the fields through.
type Stats struct {
	Visited  int
	Errored  int
	Duration time.Duration
}

// jsonDoc is the flat shape written by WriteJSON.
type jsonDoc struct {
	URLs  []string `json:"urls"`
	Stats struct {
		Visited  int    `json:"visited"`
		Errored  int    `json:"errored"`
		Duration string `json:"duration"`
	} `json:"stats"`
}

// WriteText writes one URL per line, matching spec.md §6's CLI contract.
// Stats are not part of the text format; pass them to a logger instead.
func WriteText(w io.Writer, urls []string) error {
	for _, u := range urls {
		if _, err := fmt.Fprintln(w, u); err != nil {
			return fmt.Errorf("write text output: %w", err)
		}
	}
	return nil
}

// WriteJSON writes the visited URLs and aggregate stats as a single JSON
// object.
func WriteJSON(w io.Writer, urls []string, stats Stats) error {
	doc := jsonDoc{URLs: urls}
	doc.Stats.Visited = stats.Visited
	doc.Stats.Errored = stats.Errored
	doc.Stats.Duration = stats.Duration.String()

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("write json output: %w", err)
	}
	return nil
}

// WriteCSV writes one row per visited URL, always with a header row.
func WriteCSV(w io.Writer, urls []string) error {
	cw := csv.NewWriter(w)

	if err := cw.Write([]string{"url"}); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, u := range urls {
		if err := cw.Write([]string{u}); err != nil {
			return fmt.Errorf("write csv record for %s: %w", u, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv output: %w", err)
	}
	return nil
}
