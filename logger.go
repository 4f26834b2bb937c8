package camstream

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
)

// nopHandler is a slog.Handler that silently discards all log records.
// The Enabled method returns false so the caller skips message formatting
// entirely, making disabled logging effectively zero-cost.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

// newNopLogger creates a logger that silently discards all output.
func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

// loggerPtr stores the active logger. Accessed atomically so that
// SetLogger can be called concurrently with logging from any goroutine.
var loggerPtr atomic.Pointer[slog.Logger]

// loggerTargets holds devices of live GPU contexts that accept a logger.
var (
	loggerTargetsMu sync.Mutex
	loggerTargets   = make(map[loggerSetter]struct{})
)

func init() {
	l := newNopLogger()
	loggerPtr.Store(l)
}

// SetLogger configures the logger for camstream and the backends of all
// live GPU contexts. By default, camstream produces no log output.
//
// SetLogger is safe for concurrent use: it stores the new logger atomically.
// Pass nil to disable logging (restore default silent behavior).
//
// Log levels used by camstream:
//   - [slog.LevelDebug]: per-frame diagnostics (dropped frames, bind path, FPS)
//   - [slog.LevelInfo]: lifecycle events (stream created, matrix selected)
//   - [slog.LevelWarn]: absorbed per-frame failures (allocation, upload)
//
// Example:
//
//	camstream.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)

	loggerTargetsMu.Lock()
	defer loggerTargetsMu.Unlock()
	for t := range loggerTargets {
		t.SetLogger(l)
	}
}

// Logger returns the current logger used by camstream.
//
// Logger is safe for concurrent use.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}

// loggerSetter is implemented by devices and capture sources that accept a
// logger.
type loggerSetter interface {
	SetLogger(*slog.Logger)
}

// propagateLogger passes the current logger to v if it accepts one and
// keeps v registered for later SetLogger calls.
func propagateLogger(v any) {
	ls, ok := v.(loggerSetter)
	if !ok {
		return
	}
	ls.SetLogger(Logger())

	loggerTargetsMu.Lock()
	loggerTargets[ls] = struct{}{}
	loggerTargetsMu.Unlock()
}

// forgetLogger stops propagating logger changes to v.
func forgetLogger(v any) {
	ls, ok := v.(loggerSetter)
	if !ok {
		return
	}
	loggerTargetsMu.Lock()
	delete(loggerTargets, ls)
	loggerTargetsMu.Unlock()
}
