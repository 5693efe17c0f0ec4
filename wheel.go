// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a BSD-style license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package timingwheel

import (
	"math"
	"math/bits"
	"sync/atomic"
	"time"
)

// maxTicksPerWheel caps ticksPerWheel at 2^30 (spec §3/§6).
const maxTicksPerWheel = 1 << 30

// wheel is the fixed-size, power-of-two array of buckets plus the
// advancing cursor (spec §3 "Wheel"). Collapsed from the teacher's 4
// cascading wheels to the single wheel spec.md's Non-goals require.
type wheel struct {
	buckets       []*bucket
	mask          uint64
	tickDuration  time.Duration
	roundDuration time.Duration

	// cursor is written only by the worker and read by placeInWheel
	// (Schedule and the worker's slip-reschedule); atomic access is the release/acquire publication spec §3
	// calls for.
	cursor uint64
}

// newWheel validates and builds a wheel. ticksPerWheel is rounded up to
// the next power of two (spec §3).
func newWheel(tickDuration time.Duration, ticksPerWheel int) (*wheel, error) {
	if tickDuration <= 0 {
		return nil, ErrInvalidTickDuration
	}
	if ticksPerWheel <= 0 {
		return nil, ErrInvalidTicksPerWheel
	}
	if ticksPerWheel > maxTicksPerWheel {
		return nil, ErrTicksPerWheelTooLarge
	}
	size := nextPowerOfTwo(ticksPerWheel)

	// overflow guard: reject if tickDuration >= MaxInt64/size (spec §3).
	if int64(tickDuration) >= math.MaxInt64/int64(size) {
		return nil, ErrRoundDurationOverflow
	}

	buckets := make([]*bucket, size)
	for i := range buckets {
		buckets[i] = &bucket{}
	}
	return &wheel{
		buckets:       buckets,
		mask:          uint64(size - 1),
		tickDuration:  tickDuration,
		roundDuration: tickDuration * time.Duration(size),
	}, nil
}

func nextPowerOfTwo(n int) int {
	if n <= 1 {
		return 1
	}
	if n&(n-1) == 0 {
		return n
	}
	return 1 << bits.Len(uint(n-1))
}

func (w *wheel) size() int {
	return len(w.buckets)
}

func (w *wheel) loadCursor() uint64 {
	return atomic.LoadUint64(&w.cursor)
}

func (w *wheel) advanceCursor() uint64 {
	return atomic.AddUint64(&w.cursor, 1) & w.mask
}

func (w *wheel) bucketAt(idx uint64) *bucket {
	return w.buckets[idx&w.mask]
}

// removeFromBucket best-effort removes t from whichever bucket it
// currently believes it is in. The initial snapshot is an atomic load
// (t.bucket can be concurrently rewritten by add, e.g. the worker's
// slip-reschedule path, while both sides hold only the wheel's read
// lock); the actual unlink is then re-verified under that bucket's own
// mu by removeLocked, a no-op if the entry was already unlinked or
// moved to a different bucket in the meantime (spec §4.3).
func (w *wheel) removeFromBucket(t *Timeout) bool {
	b := t.bucket.Load()
	if b == nil {
		return false
	}
	return b.remove(t)
}

// drainAllPending returns every Timeout still linked in any bucket and
// empties the wheel, used by Stop (spec §4.1 "stop ... returns the
// snapshot of every timeout still present in any bucket ... empties the
// wheel"). The returned Timeouts remain in INIT state; the caller owns
// them from here on.
func (w *wheel) drainAllPending() []*Timeout {
	var out []*Timeout
	for _, b := range w.buckets {
		b.mu.Lock()
		for e := b.head; e != nil; {
			next := e.next
			e.prev, e.next = nil, nil
			e.bucket.Store(nil)
			out = append(out, e)
			e = next
		}
		b.head, b.tail, b.size = nil, nil, 0
		b.mu.Unlock()
	}
	return out
}
