// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package pool

import (
	"log/slog"
	"sync"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/servelab/internal/obs"
	"code.hybscloud.com/servelab/ring"
)

// Job is a one-shot callable submitted by a producer and executed by
// exactly one worker.
type Job = func()

// LockFreePool owns a [ring.Queue] of jobs and a fixed set of worker
// goroutines that consume from it without ever holding a lock.
type LockFreePool struct {
	queue    *ring.Queue[Job]
	running  atomix.Bool
	inFlight atomix.Int64 // Submit calls that observed running and may still be pushing
	wg       sync.WaitGroup
	logger   *slog.Logger
}

// NewLockFreePool creates a pool of size workers consuming from a queue
// of the given capacity, and starts all workers immediately. Panics if
// size or capacity is not positive.
func NewLockFreePool(size, capacity int, opts ...LockFreeOption) *LockFreePool {
	requirePositive("worker count", size)
	requirePositive("queue capacity", capacity)

	cfg := lockFreeConfig{logger: obs.Logger()}
	for _, opt := range opts {
		opt(&cfg)
	}

	p := &LockFreePool{
		queue:  ring.New[Job](capacity),
		logger: cfg.logger,
	}
	p.running.StoreRelaxed(true)

	for id := 0; id < size; id++ {
		p.wg.Add(1)
		go p.work(id)
	}
	return p
}

// Submit enqueues job for execution by one of the pool's workers.
// Returns [ErrClosed] once Shutdown has been called, and
// [ring.ErrWouldBlock] if the queue is observed full; never blocks.
func (p *LockFreePool) Submit(job Job) error {
	p.inFlight.AddAcqRel(1)
	defer p.inFlight.AddAcqRel(-1)
	if !p.running.LoadAcquire() {
		return ErrClosed
	}
	return p.queue.Push(job)
}

// Shutdown signals every worker to stop, waits for each to drain any
// jobs already resident in the queue and exit, then returns. Submit
// calls that observed the pool still running before Shutdown flips the
// flag are guaranteed to have finished pushing before workers drain, so
// no job a caller saw accepted is ever left unrun; Submit calls that
// observe the flag after it flips are rejected with [ErrClosed] and
// never enqueued.
func (p *LockFreePool) Shutdown() {
	p.running.StoreRelease(false)
	p.wg.Wait()
}

func (p *LockFreePool) work(id int) {
	defer p.wg.Done()
	b := ring.Backoff{}
	for p.running.LoadAcquire() {
		job, err := p.queue.Pop()
		if err != nil {
			b.Snooze()
			continue
		}
		b.Reset()
		p.runJob(id, job)
	}
	// Wait for every Submit that observed running before it flipped to
	// finish its push. Without this, the drain pass below could run to
	// completion before such a push lands, and the job would sit in the
	// queue forever with no worker left to pop it.
	b.Reset()
	for p.inFlight.LoadRelaxed() > 0 {
		b.Snooze()
	}
	// Drain pass: pick up jobs enqueued just before the flag flipped.
	for {
		job, err := p.queue.Pop()
		if err != nil {
			break
		}
		p.runJob(id, job)
	}
	p.logger.Debug("worker shutting down", "worker", id)
}

func (p *LockFreePool) runJob(id int, job Job) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("job panicked", "worker", id, "recovered", r)
		}
	}()
	job()
}
