// Command servelab runs the HTTP serving-loop comparison described in
// the package docs of code.hybscloud.com/servelab/pool and
// code.hybscloud.com/servelab/ring: the same four canned routes served
// under a single-threaded loop, a lock-free worker pool, a blocking
// worker pool, or one goroutine per connection.
package main

import (
	"flag"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"

	"code.hybscloud.com/servelab/internal/config"
	"code.hybscloud.com/servelab/internal/httpserver"
	"code.hybscloud.com/servelab/internal/obs"
	"code.hybscloud.com/servelab/pool"
)

func main() {
	addr := flag.String("addr", ":7878", "TCP listen address")
	strategyFlag := flag.String("strategy", "lockfree", "single|lockfree|blocking|threaded")
	workers := flag.Int("workers", 4, "worker count (lockfree/blocking strategies)")
	queueCap := flag.Int("queue-capacity", 128, "queue capacity (lockfree strategy)")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))
	logger := obs.Logger()

	strategy, err := config.ParseStrategy(*strategyFlag)
	if err != nil {
		logger.Error("invalid strategy", "error", err)
		os.Exit(1)
	}

	cfg := config.New(
		config.WithAddr(*addr),
		config.WithStrategy(strategy),
		config.WithWorkers(*workers),
		config.WithQueueCapacity(*queueCap),
	)

	ln, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		logger.Error("listen failed", "error", err)
		os.Exit(1)
	}

	var sub httpserver.Submitter
	switch cfg.Strategy {
	case config.LockFree:
		sub = pool.NewLockFreePool(cfg.Workers, cfg.QueueCapacity)
	case config.Blocking:
		sub = pool.NewBlockingPool(cfg.Workers)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-quit
		logger.Info("shutting down")
		_ = ln.Close()
		shutdown(sub)
		os.Exit(0)
	}()

	logger.Info("servelab starting", "addr", cfg.Addr, "strategy", cfg.Strategy.String())
	if err := httpserver.Serve(ln, cfg.Strategy, sub); err != nil {
		logger.Info("listener closed", "error", err)
	}
}

func shutdown(sub httpserver.Submitter) {
	switch p := sub.(type) {
	case *pool.LockFreePool:
		p.Shutdown()
	case *pool.BlockingPool:
		p.Shutdown()
	}
}
