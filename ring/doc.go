// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package ring provides a bounded multi-producer multi-consumer FIFO queue.
//
// The queue uses a crossbeam-style lap-stamped slot protocol: each slot
// carries a stamp encoding both its lifecycle state (empty/full) and the
// lap it belongs to, which resolves ABA without an extra lock and without
// doubling the physical slot count.
//
// # Quick Start
//
//	q := ring.New[Job](1024)
//
//	err := q.Push(job)
//	if ring.IsWouldBlock(err) {
//	    // queue is full, apply backpressure
//	}
//
//	job, err := q.Pop()
//	if ring.IsWouldBlock(err) {
//	    // queue is empty, try again later
//	}
//
// # Worker Pool
//
// The queue is the building block for [code.hybscloud.com/servelab/pool]'s
// lock-free worker pool: submitters push jobs, a fixed set of workers pop
// and run them.
//
//	q := ring.New[func()](4096)
//
//	for range numWorkers {
//	    go func() {
//	        b := ring.Backoff{}
//	        for {
//	            job, err := q.Pop()
//	            if err != nil {
//	                b.Snooze()
//	                continue
//	            }
//	            job()
//	        }
//	    }()
//	}
//
//	func Submit(job func()) error {
//	    return q.Push(job)
//	}
//
// # Error Handling
//
// Push and Pop return [ErrWouldBlock] when the operation cannot proceed
// immediately. This error is sourced from [code.hybscloud.com/iox] for
// ecosystem consistency.
//
//	b := ring.Backoff{}
//	for {
//	    err := q.Push(item)
//	    if err == nil {
//	        break
//	    }
//	    if !ring.IsWouldBlock(err) {
//	        return err // unexpected error
//	    }
//	    b.Snooze()
//	}
//
// # Capacity
//
// Capacity is fixed at construction and never rounds up or down visibly —
// [Queue.Cap] always reports exactly the value passed to [New], and the
// queue allocates exactly cap slots. Positions are encoded against
// oneLap = next power of two strictly greater than cap so that index/lap
// decoding stays a bitwise mask; indices in [cap, oneLap) exist only in
// the position space and have no slot behind them.
//
// Length is intentionally not exposed: an accurate count requires
// synchronizing both cursors, which defeats the point of a lock-free
// queue. Use [Queue.IsEmpty] and [Queue.IsFull] for best-effort,
// point-in-time observations only.
//
// # Thread Safety
//
// Any number of producer and consumer goroutines may call Push and Pop
// concurrently. Per-slot FIFO is guaranteed: the value pushed at a given
// position is the value popped at that position. Global ordering across
// producers is not guaranteed under contention.
//
// # Shutdown and Close
//
// [Queue.Close] walks every currently-occupied slot and releases it,
// mirroring the drop behavior of the original reference. It must only be
// called once all producers and consumers have stopped; it is not
// concurrency-safe with in-flight Push/Pop calls.
//
// # Race Detection
//
// Go's race detector tracks explicit synchronization primitives (mutex,
// channel, WaitGroup) but cannot observe happens-before relationships
// established purely through atomic acquire/release orderings on separate
// variables. The queue's CAS retry loops are correct under the Go memory
// model but may report false positives under -race; stress tests that
// rely on this skip themselves when [RaceEnabled] is true.
//
// # Dependencies
//
// This package uses [code.hybscloud.com/iox] for semantic errors,
// [code.hybscloud.com/atomix] for atomic primitives with explicit memory
// ordering, and [code.hybscloud.com/spin] for CPU pause instructions.
package ring
