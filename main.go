// Package main provides the hostcrawl CLI entrypoint.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/lukemcguire/hostcrawl/clog"
	"github.com/lukemcguire/hostcrawl/driver"
	"github.com/lukemcguire/hostcrawl/httpfetch"
	"github.com/lukemcguire/hostcrawl/result"
)

// cliFlags holds parsed command-line flags.
type cliFlags struct {
	concurrency int
	output      string
	outputFile  string
}

// parseFlags parses command-line flags and returns the parsed values.
func parseFlags() *cliFlags {
	opts := &cliFlags{}
	flag.IntVar(&opts.concurrency, "concurrency", 10, "number of concurrent fetches per batch")
	flag.StringVar(&opts.output, "output", "text", "output format: text, json, or csv")
	flag.StringVar(&opts.outputFile, "o", "", "write output to a file instead of stdout")
	flag.Parse()
	return opts
}

// validateFlags validates flag combinations and returns an error if invalid.
func validateFlags(opts *cliFlags) error {
	switch opts.output {
	case "text", "json", "csv":
		return nil
	default:
		return fmt.Errorf("unknown -output %q: want text, json, or csv", opts.output)
	}
}

// writeOutput writes the visited URL set in the requested format.
func writeOutput(w io.Writer, opts *cliFlags, urls []string, stats result.Stats) error {
	switch opts.output {
	case "json":
		return result.WriteJSON(w, urls, stats)
	case "csv":
		return result.WriteCSV(w, urls)
	default:
		return result.WriteText(w, urls)
	}
}

func main() {
	opts := parseFlags()

	if err := validateFlags(opts); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if flag.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: hostcrawl [flags] <seed-url>")
		fmt.Fprintln(os.Stderr, "Flags:")
		flag.PrintDefaults()
		os.Exit(1)
	}
	seed := flag.Arg(0)

	logger := clog.New()
	fetcher := httpfetch.New(nil)

	stats, visited, err := driver.Run(context.Background(), seed, fetcher, driver.Options{
		Concurrency:   opts.concurrency,
		MemoryLimitMB: 1024,
		Logger:        logger,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	var w io.Writer = os.Stdout
	if opts.outputFile != "" {
		f, err := os.Create(opts.outputFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: create output file: %v\n", err)
			os.Exit(1)
		}
		defer func() {
			if cerr := f.Close(); cerr != nil {
				fmt.Fprintf(os.Stderr, "Error: close output file: %v\n", cerr)
			}
		}()
		w = f
	}

	if err := writeOutput(w, opts, visited, result.Stats{
		Visited:  stats.Visited,
		Errored:  stats.Errored,
		Duration: stats.Duration,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
