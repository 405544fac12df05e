package debug

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"
)

// nopHandler drops every record. Enabled reports false so callers skip
// formatting entirely.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(slog.New(nopHandler{}))
}

// SetLogger installs the logger shared by every geoview package.
// Passing nil restores the silent default. The terminal UI owns stdout,
// so callers normally point this at a file.
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(nopHandler{})
	}
	loggerPtr.Store(l)
}

// SetOutput is a shortcut for a debug-level text logger writing to w.
func SetOutput(w io.Writer) {
	SetLogger(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug})))
}

// Logger returns the current logger. Safe for concurrent use.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}

// Enabled reports whether debug records are being written anywhere.
func Enabled() bool {
	return Logger().Enabled(context.Background(), slog.LevelDebug)
}
