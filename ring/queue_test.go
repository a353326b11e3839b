// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ring_test

import (
	"errors"
	"sort"
	"sync"
	"sync/atomic"
	"testing"

	"code.hybscloud.com/servelab/ring"
)

// Scenario 1 from the design notes: new(4); push 1..4 Ok; push 5 Err;
// pop Some(1); push 6 Ok; pop 2,3,4,6 in order; pop None.
func TestQueueScenarioFour(t *testing.T) {
	q := ring.New[int](4)

	for i := 1; i <= 4; i++ {
		if err := q.Push(i); err != nil {
			t.Fatalf("Push(%d): %v", i, err)
		}
	}
	if err := q.Push(5); !errors.Is(err, ring.ErrWouldBlock) {
		t.Fatalf("Push(5) on full: got %v, want ErrWouldBlock", err)
	}

	if v, err := q.Pop(); err != nil || v != 1 {
		t.Fatalf("Pop: got (%d, %v), want (1, nil)", v, err)
	}
	if err := q.Push(6); err != nil {
		t.Fatalf("Push(6): %v", err)
	}

	for _, want := range []int{2, 3, 4, 6} {
		v, err := q.Pop()
		if err != nil || v != want {
			t.Fatalf("Pop: got (%d, %v), want (%d, nil)", v, err, want)
		}
	}
	if _, err := q.Pop(); !errors.Is(err, ring.ErrWouldBlock) {
		t.Fatalf("Pop on empty: got %v, want ErrWouldBlock", err)
	}
}

// Scenario 2: new(2); push A, B Ok; push C Err; pop A, B, then None;
// push D Ok; pop D.
func TestQueueScenarioTwo(t *testing.T) {
	q := ring.New[rune](2)

	if err := q.Push('A'); err != nil {
		t.Fatalf("Push('A'): %v", err)
	}
	if err := q.Push('B'); err != nil {
		t.Fatalf("Push('B'): %v", err)
	}
	if err := q.Push('C'); !errors.Is(err, ring.ErrWouldBlock) {
		t.Fatalf("Push('C') on full: got %v, want ErrWouldBlock", err)
	}

	if v, err := q.Pop(); err != nil || v != 'A' {
		t.Fatalf("Pop: got (%c, %v), want (A, nil)", v, err)
	}
	if v, err := q.Pop(); err != nil || v != 'B' {
		t.Fatalf("Pop: got (%c, %v), want (B, nil)", v, err)
	}
	if _, err := q.Pop(); !errors.Is(err, ring.ErrWouldBlock) {
		t.Fatalf("Pop on empty: got %v, want ErrWouldBlock", err)
	}

	if err := q.Push('D'); err != nil {
		t.Fatalf("Push('D'): %v", err)
	}
	if v, err := q.Pop(); err != nil || v != 'D' {
		t.Fatalf("Pop: got (%c, %v), want (D, nil)", v, err)
	}
}

// Scenario 3: capacity 1.
func TestQueueScenarioOne(t *testing.T) {
	q := ring.New[int](1)

	if err := q.Push(42); err != nil {
		t.Fatalf("Push(42): %v", err)
	}
	if err := q.Push(43); !errors.Is(err, ring.ErrWouldBlock) {
		t.Fatalf("Push(43) on full: got %v, want ErrWouldBlock", err)
	}
	if v, err := q.Pop(); err != nil || v != 42 {
		t.Fatalf("Pop: got (%d, %v), want (42, nil)", v, err)
	}
	if _, err := q.Pop(); !errors.Is(err, ring.ErrWouldBlock) {
		t.Fatalf("Pop on empty: got %v, want ErrWouldBlock", err)
	}
}

// Scenario 4: capacity 3 is not a power of two; oneLap must round up to
// 4, and FIFO order must still hold across the wrap.
func TestQueueNonPowerOfTwoCapacity(t *testing.T) {
	q := ring.New[int](3)
	if q.Cap() != 3 {
		t.Fatalf("Cap: got %d, want 3", q.Cap())
	}

	for i := 1; i <= 3; i++ {
		if err := q.Push(i); err != nil {
			t.Fatalf("Push(%d): %v", i, err)
		}
	}
	if err := q.Push(4); !errors.Is(err, ring.ErrWouldBlock) {
		t.Fatalf("Push(4) on full: got %v, want ErrWouldBlock", err)
	}
	for _, want := range []int{1, 2, 3} {
		v, err := q.Pop()
		if err != nil || v != want {
			t.Fatalf("Pop: got (%d, %v), want (%d, nil)", v, err, want)
		}
	}
	if _, err := q.Pop(); !errors.Is(err, ring.ErrWouldBlock) {
		t.Fatalf("Pop on drained: got %v, want ErrWouldBlock", err)
	}
}

// Fullness/emptiness gates (properties 5 and 6): after a matching pop,
// a push can succeed again; after a matching push, a pop can succeed.
func TestQueueFullnessAndEmptinessGates(t *testing.T) {
	q := ring.New[int](2)
	if !q.IsEmpty() {
		t.Fatal("new queue should be empty")
	}
	_ = q.Push(1)
	_ = q.Push(2)
	if !q.IsFull() {
		t.Fatal("queue should be full after filling to capacity")
	}
	if err := q.Push(3); !errors.Is(err, ring.ErrWouldBlock) {
		t.Fatalf("Push on full: got %v, want ErrWouldBlock", err)
	}
	if _, err := q.Pop(); err != nil {
		t.Fatalf("Pop: %v", err)
	}
	if err := q.Push(3); err != nil {
		t.Fatalf("Push after Pop should succeed: %v", err)
	}
}

// Property 4: FIFO per single producer/consumer across many values,
// including wrap-around past the initial capacity several times.
func TestQueueFIFOAcrossWraps(t *testing.T) {
	q := ring.New[int](8)
	const n = 10_000
	go func() {
		for i := 0; i < n; i++ {
			for q.Push(i) != nil {
			}
		}
	}()
	for i := 0; i < n; i++ {
		var v int
		var err error
		for {
			v, err = q.Pop()
			if err == nil {
				break
			}
		}
		if v != i {
			t.Fatalf("Pop(%d): got %d, want %d", i, v, i)
		}
	}
}

// Properties 1 and 2: no duplication and no loss under concurrent
// producers and consumers. The capacity bound is not sampled here.
func TestQueueConcurrentNoLossNoDuplication(t *testing.T) {
	if ring.RaceEnabled {
		t.Skip("lock-free stress test excluded under -race")
	}

	const (
		producers  = 8
		perProd    = 2_000
		capacity   = 64
		consumers  = 4
		totalItems = producers * perProd
	)
	q := ring.New[int](capacity)

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(base int) {
			defer wg.Done()
			for i := 0; i < perProd; i++ {
				v := base*perProd + i
				for q.Push(v) != nil {
				}
			}
		}(p)
	}

	results := make(chan int, totalItems)
	var popped int64
	var consumerWG sync.WaitGroup
	for c := 0; c < consumers; c++ {
		consumerWG.Add(1)
		go func() {
			defer consumerWG.Done()
			for atomic.LoadInt64(&popped) < totalItems {
				v, err := q.Pop()
				if err != nil {
					continue
				}
				results <- v
				if atomic.AddInt64(&popped, 1) >= totalItems {
					return
				}
			}
		}()
	}

	wg.Wait()
	consumerWG.Wait()
	close(results)

	seen := make(map[int]bool, totalItems)
	got := make([]int, 0, totalItems)
	for v := range results {
		if seen[v] {
			t.Fatalf("duplicate value observed: %d", v)
		}
		seen[v] = true
		got = append(got, v)
	}
	if len(got) != totalItems {
		t.Fatalf("got %d items, want %d", len(got), totalItems)
	}
	sort.Ints(got)
	for i, v := range got {
		if v != i {
			t.Fatalf("missing value %d in drained set", i)
		}
	}
}

// Property 7: drop completeness. A payload that counts its releases
// must be released exactly once per value left in the queue on Close,
// and never for values already popped.
type countingPayload struct {
	released *int64
}

func (p countingPayload) Release() {
	atomic.AddInt64(p.released, 1)
}

func TestQueueCloseReleasesResidualValues(t *testing.T) {
	var released int64
	q := ring.New[countingPayload](4)

	for i := 0; i < 3; i++ {
		_ = q.Push(countingPayload{released: &released})
	}
	if _, err := q.Pop(); err != nil {
		t.Fatalf("Pop: %v", err)
	}
	// Two values remain resident; Close must release exactly those two.
	q.Close()
	if got := atomic.LoadInt64(&released); got != 2 {
		t.Fatalf("released: got %d, want 2", got)
	}
}

func TestQueuePanicsOnNonPositiveCapacity(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Fatal("expected panic for capacity 0")
		}
	}()
	ring.New[int](0)
}
