// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package pool

import (
	"log/slog"
	"sync"

	"code.hybscloud.com/servelab/internal/obs"
)

const defaultBlockingCapacity = 4096

// BlockingPool owns a buffered channel of jobs behind a mutex-guarded
// receiver shared by a fixed set of worker goroutines. Unlike
// [LockFreePool], Submit has no refusal path: it always returns nil,
// blocking only if the channel buffer is momentarily full.
type BlockingPool struct {
	jobs   chan Job
	mu     sync.Mutex // guards nothing but the receive itself
	wg     sync.WaitGroup
	logger *slog.Logger
}

// NewBlockingPool creates a pool of size workers sharing one channel
// receiver, and starts all workers immediately. Panics if size is not
// positive.
func NewBlockingPool(size int, opts ...BlockingOption) *BlockingPool {
	requirePositive("worker count", size)

	cfg := blockingConfig{logger: obs.Logger(), capacity: defaultBlockingCapacity}
	for _, opt := range opts {
		opt(&cfg)
	}

	p := &BlockingPool{
		jobs:   make(chan Job, cfg.capacity),
		logger: cfg.logger,
	}
	for id := 0; id < size; id++ {
		p.wg.Add(1)
		go p.work(id)
	}
	return p
}

// Submit enqueues job for execution by one of the pool's workers.
// Always returns nil; blocks only if the internal buffer is full.
func (p *BlockingPool) Submit(job Job) error {
	p.jobs <- job
	return nil
}

// Shutdown closes the job channel and waits for every worker to drain
// any remaining jobs and exit. All jobs submitted before Shutdown is
// called have executed by the time it returns.
func (p *BlockingPool) Shutdown() {
	close(p.jobs)
	p.wg.Wait()
}

func (p *BlockingPool) work(id int) {
	defer p.wg.Done()
	for {
		p.mu.Lock()
		job, ok := <-p.jobs
		p.mu.Unlock()
		if !ok {
			p.logger.Debug("worker disconnected, shutting down", "worker", id)
			return
		}
		p.runJob(id, job)
	}
}

func (p *BlockingPool) runJob(id int, job Job) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("job panicked", "worker", id, "recovered", r)
		}
	}()
	job()
}
