// Package obs holds the package-level structured logger shared by
// servelab's library packages.
package obs

import (
	"log/slog"
	"sync/atomic"
)

// logger is the package-level logger, stored as an atomic pointer to
// allow safe concurrent reads and writes. A nil value means no custom
// logger has been set; Logger() falls back to a cached default derived
// from slog.Default().
var logger atomic.Pointer[slog.Logger]

var defaultLogger atomic.Pointer[slog.Logger]

// Logger returns the current package-level logger. If no custom logger
// has been set via SetLogger, it returns a cached logger derived from
// slog.Default() with the "component" attribute. Safe to call from
// multiple goroutines.
func Logger() *slog.Logger {
	if l := logger.Load(); l != nil {
		return l
	}
	if l := defaultLogger.Load(); l != nil {
		return l
	}
	l := slog.Default().With("component", "servelab")
	if defaultLogger.CompareAndSwap(nil, l) {
		return l
	}
	if l2 := defaultLogger.Load(); l2 != nil {
		return l2
	}
	return l
}

// SetLogger replaces the package-level logger. If l is nil, the logger
// resets to the default, re-derived on the next Logger() call.
//
// SetLogger is safe to call concurrently with other servelab operations.
func SetLogger(l *slog.Logger) {
	logger.Store(l)
	defaultLogger.Store(nil)
}
