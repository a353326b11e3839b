// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package pool_test

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"code.hybscloud.com/servelab/pool"
)

// Property 8: pool liveness. With N workers and M > N queued jobs, all
// M jobs eventually complete.
func TestLockFreePoolLiveness(t *testing.T) {
	const workers = 4
	const jobs = 10_000

	p := pool.NewLockFreePool(workers, 100)

	var completed int64
	var wg sync.WaitGroup
	wg.Add(jobs)
	for i := 0; i < jobs; i++ {
		job := func() {
			atomic.AddInt64(&completed, 1)
			wg.Done()
		}
		for p.Submit(job) != nil {
			time.Sleep(time.Microsecond)
		}
	}
	wg.Wait()
	p.Shutdown()

	if got := atomic.LoadInt64(&completed); got != jobs {
		t.Fatalf("completed: got %d, want %d", got, jobs)
	}
}

// A job that panics must not crash the pool or stop other jobs from
// running.
func TestLockFreePoolRecoversJobPanic(t *testing.T) {
	p := pool.NewLockFreePool(2, 16)

	var ran int64
	if err := p.Submit(func() { panic("boom") }); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	var wg sync.WaitGroup
	wg.Add(1)
	if err := p.Submit(func() {
		atomic.AddInt64(&ran, 1)
		wg.Done()
	}); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	wg.Wait()
	p.Shutdown()

	if atomic.LoadInt64(&ran) != 1 {
		t.Fatal("pool did not continue running jobs after a panic")
	}
}

// Residual-jobs decision: a job enqueued immediately before Shutdown is
// called must still run, since workers drain the queue after the
// running flag flips but before exiting.
func TestLockFreePoolDrainsResidualJobsOnShutdown(t *testing.T) {
	p := pool.NewLockFreePool(1, 16)

	var ran int32
	if err := p.Submit(func() { atomic.StoreInt32(&ran, 1) }); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	p.Shutdown()

	if atomic.LoadInt32(&ran) != 1 {
		t.Fatal("residual job was not drained before shutdown returned")
	}
}

// Residual-jobs decision: once Shutdown has returned, Submit must reject
// rather than silently accept a job no worker is left to run.
func TestLockFreePoolSubmitAfterShutdownReturnsErrClosed(t *testing.T) {
	p := pool.NewLockFreePool(2, 16)
	p.Shutdown()

	err := p.Submit(func() {})
	if !errors.Is(err, pool.ErrClosed) {
		t.Fatalf("Submit after Shutdown: got %v, want pool.ErrClosed", err)
	}
}
