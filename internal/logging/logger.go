// Package logging holds the process-wide *slog.Logger used by the editor packages.
package logging

import (
	"log/slog"
	"sync/atomic"
)

// logger defaults to nil, which makes Logger return a discard logger.
var logger atomic.Pointer[slog.Logger]

func newDiscardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// SetLogger installs the logger used by every package. Pass nil to silence output.
//
// SetLogger is safe for concurrent use.
//
//	logging.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))
func SetLogger(sl *slog.Logger) {
	if sl == nil {
		sl = newDiscardLogger()
	}
	logger.Store(sl)
}

// Logger returns the current logger, or a discard logger if none was set.
func Logger() *slog.Logger {
	l := logger.Load()
	if l == nil {
		l = newDiscardLogger()
		logger.Store(l)
	}
	return l
}

// For returns the current logger tagged with a component name, e.g. "export".
func For(component string) *slog.Logger {
	return Logger().With("component", component)
}
