// Package pool implements worker pools that consume jobs submitted by
// producers: a lock-free variant built on [code.hybscloud.com/servelab/ring],
// and a blocking variant built on a mutex-guarded channel receiver.
package pool

import (
	"fmt"
	"log/slog"
)

// requirePositive panics if v <= 0 with a descriptive message. Mirrors
// the construction-time fail-fast pattern used throughout this project:
// option values are programmer-supplied constants, so an invalid value
// indicates a programming error, not a runtime condition to recover from.
func requirePositive(name string, v int) {
	if v <= 0 {
		panic(fmt.Sprintf("pool: %s must be greater than 0, got %d", name, v))
	}
}

// LockFreeOption configures a [LockFreePool] during construction.
type LockFreeOption func(*lockFreeConfig)

type lockFreeConfig struct {
	logger *slog.Logger
}

// WithLockFreeLogger sets the logger the pool uses for lifecycle and
// panic-recovery logging. Defaults to the package-level [obs] logger.
func WithLockFreeLogger(l *slog.Logger) LockFreeOption {
	return func(c *lockFreeConfig) {
		c.logger = l
	}
}

// BlockingOption configures a [BlockingPool] during construction.
type BlockingOption func(*blockingConfig)

type blockingConfig struct {
	logger   *slog.Logger
	capacity int
}

// WithBlockingLogger sets the logger the pool uses for lifecycle
// logging. Defaults to the package-level [obs] logger.
func WithBlockingLogger(l *slog.Logger) BlockingOption {
	return func(c *blockingConfig) {
		c.logger = l
	}
}

// WithBlockingCapacity sets the channel buffer size backing the pool.
// The blocking variant has no explicit bound in its contract (Submit
// always succeeds), but Go channels require a concrete buffer size; a
// large fixed buffer approximates "unbounded" without building a
// dynamically resized structure. Default: 4096. Panics if n <= 0.
func WithBlockingCapacity(n int) BlockingOption {
	requirePositive("blocking pool capacity", n)
	return func(c *blockingConfig) {
		c.capacity = n
	}
}
