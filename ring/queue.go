// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ring

import "code.hybscloud.com/atomix"

// pad separates adjacent atomics onto different cache lines, preventing
// false sharing between producer-heavy and consumer-heavy fields.
type pad [64]byte

// padShort rounds a slot's stamp field up to a full cache line.
type padShort [64 - 8]byte

// slot is one cell of the ring buffer.
//
// stamp encodes both the slot's lifecycle state and its lap:
//
//	stamp == tail            -> empty, ready for the producer at this tail
//	stamp == tail + 1         -> full, ready for the consumer at this head
//	stamp == tail + oneLap    -> empty again, a consumer just emptied it
//
// value holds storage for a single job and is only meaningful while the
// slot is full.
type slot[T any] struct {
	stamp atomix.Uint64
	value T
	_     padShort
}

// releaser is implemented by values that need explicit cleanup when a
// queue is closed while they are still resident in a slot. Go's garbage
// collector reclaims memory on its own; releaser exists only for payload
// types (tests, resource handles) that track their own lifecycle. The
// method is exported so that payload types declared in other packages
// can implement it.
type releaser interface {
	Release()
}

// Queue is a bounded multi-producer multi-consumer FIFO.
//
// Positions are packed (lap, index) pairs: index = pos & (oneLap-1),
// lap = pos &^ (oneLap-1). oneLap is the smallest power of two strictly
// greater than the queue's capacity, so indices in [cap, oneLap) are
// never dereferenced — when index would reach cap, the position jumps
// straight to lap+oneLap, preserving lap parity while skipping the gap.
type Queue[T any] struct {
	_        pad
	tail     atomix.Uint64 // global enqueue position
	_        pad
	head     atomix.Uint64 // global dequeue position
	_        pad
	buffer   []slot[T]
	capacity uint64
	oneLap   uint64
}

// New creates a queue with the given fixed capacity. Panics if capacity
// is not positive.
func New[T any](capacity int) *Queue[T] {
	if capacity <= 0 {
		panic("ring: capacity must be > 0")
	}
	cap64 := uint64(capacity)
	q := &Queue[T]{
		buffer:   make([]slot[T], cap64),
		capacity: cap64,
		oneLap:   nextPow2(cap64 + 1),
	}
	for i := uint64(0); i < cap64; i++ {
		q.buffer[i].stamp.StoreRelaxed(i)
	}
	return q
}

// Cap returns the queue's fixed capacity.
func (q *Queue[T]) Cap() int {
	return int(q.capacity)
}

// IsEmpty reports whether the queue appeared empty at the moment of the
// call. The result may already be stale by the time the caller observes
// it under concurrent access.
func (q *Queue[T]) IsEmpty() bool {
	head := q.head.LoadAcquire()
	tail := q.tail.LoadAcquire()
	return head == tail
}

// IsFull reports whether the queue appeared full at the moment of the
// call. The result may already be stale by the time the caller observes
// it under concurrent access.
func (q *Queue[T]) IsFull() bool {
	tail := q.tail.LoadAcquire()
	head := q.head.LoadAcquire()
	return head+q.oneLap == tail
}

// advance computes the position following pos, skipping the
// [cap, oneLap) gap.
func (q *Queue[T]) advance(pos uint64) uint64 {
	index := pos & (q.oneLap - 1)
	lap := pos &^ (q.oneLap - 1)
	if index+1 < q.capacity {
		return pos + 1
	}
	return lap + q.oneLap
}

// Push adds v to the queue. Returns [ErrWouldBlock] if the queue is
// observed full; never blocks.
func (q *Queue[T]) Push(v T) error {
	b := Backoff{}
	tail := q.tail.LoadRelaxed()
	for {
		index := tail & (q.oneLap - 1)
		nextTail := q.advance(tail)
		s := &q.buffer[index]
		stamp := s.stamp.LoadAcquire()

		switch {
		case stamp == tail:
			// Empty slot ready for this producer.
			if q.tail.CompareAndSwapAcqRel(tail, nextTail) {
				s.value = v
				s.stamp.StoreRelease(tail + 1)
				return nil
			}
			tail = q.tail.LoadRelaxed()
			b.Spin()

		case stamp+q.oneLap == tail+1:
			// One lap behind: possibly full. Confirm against head.
			head := q.head.LoadAcquire()
			if head+q.oneLap == tail {
				return ErrWouldBlock
			}
			tail = q.tail.LoadRelaxed()
			b.Spin()

		default:
			// A concurrent producer advanced tail but hasn't published yet.
			b.Snooze()
			tail = q.tail.LoadRelaxed()
		}
	}
}

// Pop removes and returns a value from the queue. Returns
// [ErrWouldBlock] if the queue is observed empty; never blocks.
func (q *Queue[T]) Pop() (T, error) {
	b := Backoff{}
	head := q.head.LoadRelaxed()
	for {
		index := head & (q.oneLap - 1)
		nextHead := q.advance(head)
		s := &q.buffer[index]
		stamp := s.stamp.LoadAcquire()

		switch {
		case stamp == head+1:
			// Full slot ready for this consumer.
			if q.head.CompareAndSwapAcqRel(head, nextHead) {
				v := s.value
				var zero T
				s.value = zero
				s.stamp.StoreRelease(head + q.oneLap)
				return v, nil
			}
			head = q.head.LoadRelaxed()
			b.Spin()

		case stamp == head:
			// Possibly empty. Confirm against tail.
			tail := q.tail.LoadAcquire()
			if tail == head {
				var zero T
				return zero, ErrWouldBlock
			}
			head = q.head.LoadRelaxed()
			b.Spin()

		default:
			// A concurrent consumer advanced head but hasn't published yet.
			b.Snooze()
			head = q.head.LoadRelaxed()
		}
	}
}

// Close releases every value still resident in the queue. It must only
// be called after all producers and consumers have stopped.
//
// Iterates indices from head's index to tail's index, wrapping through
// [0, cap) but never through the unused [cap, oneLap) gap, and invokes
// [releaser.Release] on any stored value that implements it.
func (q *Queue[T]) Close() {
	head := q.head.LoadRelaxed()
	tail := q.tail.LoadRelaxed()
	hix := head & (q.oneLap - 1)
	tix := tail & (q.oneLap - 1)

	var length uint64
	switch {
	case hix < tix:
		length = tix - hix
	case hix > tix:
		length = q.capacity - hix + tix
	case head == tail:
		length = 0
	default:
		length = q.capacity
	}

	for i := uint64(0); i < length; i++ {
		idx := (hix + i) % q.capacity
		s := &q.buffer[idx]
		if r, ok := any(s.value).(releaser); ok {
			r.Release()
		}
		var zero T
		s.value = zero
	}
}

// nextPow2 returns the smallest power of two strictly greater than n-1,
// i.e. >= n, computed for the oneLap span (smallest power of two
// strictly greater than capacity).
func nextPow2(n uint64) uint64 {
	if n == 0 {
		return 1
	}
	p := uint64(1)
	for p < n {
		p <<= 1
	}
	return p
}
