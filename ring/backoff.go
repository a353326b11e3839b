// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ring

import (
	"runtime"

	"code.hybscloud.com/spin"
)

// Spin and yield limits for [Backoff]. Past spinLimit, Snooze yields to
// the Go scheduler instead of busy-waiting; yieldLimit caps the step
// counter.
const (
	spinLimit  = 6
	yieldLimit = 10
)

// Backoff is a thread-local adaptive wait used by the queue's CAS retry
// loops. It has no effect on correctness, only on contention behavior.
//
// Zero value is ready to use.
type Backoff struct {
	step int
}

// Spin busy-waits a short, escalating number of relax-hints. Use after a
// CAS loss where the fix is expected imminently (another goroutine is
// mid-operation on the same slot).
func (b *Backoff) Spin() {
	n := 1 << min(b.step, spinLimit)
	w := spin.Wait{}
	for i := 0; i < n; i++ {
		w.Once()
	}
	if b.step <= spinLimit {
		b.step++
	}
}

// Snooze busy-waits like Spin while the step is at or under the spin
// limit, and yields the goroutine to the Go scheduler once the step has
// passed it. Use
// while waiting on another goroutine's release store to become visible.
func (b *Backoff) Snooze() {
	if b.step <= spinLimit {
		n := 1 << b.step
		w := spin.Wait{}
		for i := 0; i < n; i++ {
			w.Once()
		}
	} else {
		runtime.Gosched()
	}
	if b.step <= yieldLimit {
		b.step++
	}
}

// Reset returns the backoff to its initial state.
func (b *Backoff) Reset() {
	b.step = 0
}
