// Package logging holds the process-wide *slog.Logger used by folio packages.
package logging

import (
	"bytes"
	"log/slog"
	"sync"
	"sync/atomic"
)

// logger defaults to nil, in which case Logger() hands out a discard logger.
var logger atomic.Pointer[slog.Logger]

// SetLogger replaces the package-level logger. Passing nil disables logging.
//
// Example enabling debug output to stderr:
//
//	logging.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
func SetLogger(sl *slog.Logger) {
	if sl == nil {
		sl = slog.New(slog.DiscardHandler)
	}
	logger.Store(sl)
}

// Logger returns the package-level logger. It is safe for concurrent use.
func Logger() *slog.Logger {
	l := logger.Load()
	if l == nil {
		l = slog.New(slog.DiscardHandler)
		logger.Store(l)
	}
	return l
}

// Buffer is a goroutine-safe bytes.Buffer used to capture log output in tests.
type Buffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *Buffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

// String returns everything written so far.
func (b *Buffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// Capture installs a JSON logger writing every level into the returned buffer
// and returns a function restoring the previous logger.
//
//	buf, restore := logging.Capture()
//	defer restore()
func Capture() (*Buffer, func()) {
	prev := logger.Load()
	buf := &Buffer{}
	SetLogger(slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	return buf, func() { logger.Store(prev) }
}
