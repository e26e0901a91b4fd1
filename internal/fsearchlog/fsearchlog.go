// Package fsearchlog is a thin wrapper around log/slog.
//
// No repository in the retrieval pack imports a structured-logging
// library (zap, zerolog, logrus) in its go.mod — see DESIGN.md — so this
// one ambient concern is built directly on the standard library rather
// than an ecosystem package, which every other ambient concern in this
// module uses instead.
package fsearchlog

import (
	"log/slog"
	"os"
	"sync"
)

var (
	once    sync.Once
	handler *slog.Logger
	level   slog.LevelVar // defaults to LevelInfo
)

// Default returns the process-wide logger, writing text-formatted records
// to stderr. Its minimum level is controlled by SetLevel, via a
// slog.LevelVar the handler consults on every record rather than a field
// set once at construction time, so SetLevel works regardless of whether
// it's called before or after the first Default() call.
func Default() *slog.Logger {
	once.Do(func() {
		handler = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: &level,
		}))
	})
	return handler
}

// SetLevel adjusts the minimum level of the default logger. Wired to the
// CLI's --debug persistent flag (cmd/fsearch/root.go).
func SetLevel(l slog.Level) {
	level.Set(l)
}
