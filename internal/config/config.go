// Package config holds servelab's runtime configuration: the listen
// address, which concurrency strategy to run, and the sizing knobs for
// whichever worker pool that strategy uses.
package config

import (
	"fmt"
	"time"
)

// Strategy selects one of the four concurrency strategies the harness
// compares.
type Strategy int

const (
	// SingleThreaded handles one connection at a time on the accept
	// goroutine itself.
	SingleThreaded Strategy = iota
	// LockFree submits each connection to a [pool.LockFreePool].
	LockFree
	// Blocking submits each connection to a [pool.BlockingPool].
	Blocking
	// ThreadPerConnection spawns a new goroutine per accepted connection.
	ThreadPerConnection
)

// String implements [fmt.Stringer].
func (s Strategy) String() string {
	switch s {
	case SingleThreaded:
		return "single-threaded"
	case LockFree:
		return "lock-free"
	case Blocking:
		return "blocking"
	case ThreadPerConnection:
		return "thread-per-connection"
	default:
		return fmt.Sprintf("strategy(%d)", int(s))
	}
}

// ParseStrategy maps a CLI-friendly name to a [Strategy].
func ParseStrategy(s string) (Strategy, error) {
	switch s {
	case "single", "single-threaded":
		return SingleThreaded, nil
	case "lockfree", "lock-free":
		return LockFree, nil
	case "blocking":
		return Blocking, nil
	case "thread-per-connection", "threaded":
		return ThreadPerConnection, nil
	default:
		return 0, fmt.Errorf("config: unknown strategy %q", s)
	}
}

// Config is servelab's full runtime configuration. Build it with [New];
// field defaults are chosen by the CLI layer, never by the library
// packages themselves (see pool.NewLockFreePool / pool.NewBlockingPool,
// which require explicit sizes).
type Config struct {
	Addr            string
	Strategy        Strategy
	Workers         int
	QueueCapacity   int
	ShutdownTimeout time.Duration
}

// Option configures a Config during construction via [New].
type Option func(*Config)

// requirePositive panics if v <= 0; construction-time option values are
// programmer-supplied, so an invalid value is a programming error.
func requirePositive(name string, v int) {
	if v <= 0 {
		panic(fmt.Sprintf("config: %s must be greater than 0, got %d", name, v))
	}
}

// WithAddr sets the TCP listen address. Panics if addr is empty.
func WithAddr(addr string) Option {
	if addr == "" {
		panic("config: addr must not be empty")
	}
	return func(c *Config) { c.Addr = addr }
}

// WithStrategy sets the concurrency strategy.
func WithStrategy(s Strategy) Option {
	return func(c *Config) { c.Strategy = s }
}

// WithWorkers sets the worker count used by the lock-free and blocking
// strategies. Panics if n <= 0.
func WithWorkers(n int) Option {
	requirePositive("workers", n)
	return func(c *Config) { c.Workers = n }
}

// WithQueueCapacity sets the lock-free pool's queue capacity. Panics if
// n <= 0.
func WithQueueCapacity(n int) Option {
	requirePositive("queue capacity", n)
	return func(c *Config) { c.QueueCapacity = n }
}

// WithShutdownTimeout sets [Config.ShutdownTimeout]. Panics if d <= 0.
// The value is only stored: cmd/servelab's shutdown path does not read
// it and waits for the pool's Shutdown without a time bound.
func WithShutdownTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("config: shutdown timeout must be greater than 0")
	}
	return func(c *Config) { c.ShutdownTimeout = d }
}

// New builds a Config from defaults (":7878", lock-free strategy, 4
// workers, 128 queue slots, 5s shutdown timeout) overridden by opts, in
// order.
func New(opts ...Option) *Config {
	c := &Config{
		Addr:            ":7878",
		Strategy:        LockFree,
		Workers:         4,
		QueueCapacity:   128,
		ShutdownTimeout: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}
