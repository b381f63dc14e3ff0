// Package clog builds the crawl's leveled logger. Verbosity is read from
// CRAWL_LOG_LEVEL (debug, info, warn, error; default info). Output is
// colorized when stderr is a terminal, via gooey's slog handler.
package clog

import (
	"log/slog"
	"os"
	"strings"

	gooeyslog "github.com/deepnoodle-ai/gooey/slog"
)

const envLevel = "CRAWL_LOG_LEVEL"

// New builds a *slog.Logger writing to stderr at the level named by
// CRAWL_LOG_LEVEL. An unrecognized or unset value defaults to info.
func New() *slog.Logger {
	opts := gooeyslog.DefaultOptions()
	opts.Level = levelFromEnv(os.Getenv(envLevel))
	return slog.New(gooeyslog.NewHandler(os.Stderr, opts))
}

func levelFromEnv(name string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	case "info", "":
		return slog.LevelInfo
	default:
		return slog.LevelInfo
	}
}
