package glpipe

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// discard drops every record and reports every level disabled, so
// attribute construction at call sites is skipped while logging is off.
type discard struct{}

func (discard) Enabled(context.Context, slog.Level) bool  { return false }
func (discard) Handle(context.Context, slog.Record) error { return nil }
func (d discard) WithAttrs([]slog.Attr) slog.Handler      { return d }
func (d discard) WithGroup(string) slog.Handler           { return d }

var silent = slog.New(discard{})

// current is read on every log call from the transport, the renderer
// bootstrap goroutine and the tap listeners.
var current atomic.Pointer[slog.Logger]

func init() {
	current.Store(silent)
}

// SetLogger routes the structured logs of glpipe and its sub-packages to
// l. Nothing is logged until it is called; nil silences glpipe again.
// It may be called at any time from any goroutine.
//
// Levels:
//   - Debug: every command word and every chunk moved on a channel
//   - Info: endpoint negotiated, session started or destroyed
//   - Warn: renderer fallback, failed resize, recoverable surface errors
//   - Error: a renderer start that failed on every path
//
// For example:
//
//	glpipe.SetLogger(slog.New(slog.NewTextHandler(os.Stderr,
//	    &slog.HandlerOptions{Level: slog.LevelDebug})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = silent
	}
	current.Store(l)
}

// Logger returns the logger shared by every glpipe package.
func Logger() *slog.Logger {
	return current.Load()
}
