// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a BSD-style license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package timingwheel

import (
	"testing"
)

func newTestTimeout() *Timeout {
	return &Timeout{task: func(*Timeout) {}}
}

func TestBucketAddRemove(t *testing.T) {
	b := &bucket{}
	a, c := newTestTimeout(), newTestTimeout()
	b.add(a)
	b.add(c)
	if b.size != 2 {
		t.Fatalf("size = %d, want 2\n", b.size)
	}
	if !b.remove(a) {
		t.Fatalf("remove(a) = false, want true\n")
	}
	if b.size != 1 {
		t.Fatalf("size after remove = %d, want 1\n", b.size)
	}
	if b.remove(a) {
		t.Fatalf("second remove(a) = true, want false (already unlinked)\n")
	}
	if a.bucket.Load() != nil || a.prev != nil || a.next != nil {
		t.Fatalf("a still linked after remove: bucket=%v prev=%v next=%v\n", a.bucket.Load(), a.prev, a.next)
	}
}

func TestBucketDrainClassifiesAndUnlinksDrained(t *testing.T) {
	b := &bucket{}
	keep, expire, slip := newTestTimeout(), newTestTimeout(), newTestTimeout()
	b.add(keep)
	b.add(expire)
	b.add(slip)

	expired, slipped := b.drain(func(e *Timeout) drainVerdict {
		switch e {
		case keep:
			return keepInBucket
		case expire:
			return drainExpired
		default:
			return drainSlipped
		}
	})

	if len(expired) != 1 || expired[0] != expire {
		t.Fatalf("expired = %v, want [expire]\n", expired)
	}
	if len(slipped) != 1 || slipped[0] != slip {
		t.Fatalf("slipped = %v, want [slip]\n", slipped)
	}
	if b.size != 1 || b.head != keep || b.tail != keep {
		t.Fatalf("bucket after drain: size=%d head=%v tail=%v, want only keep\n", b.size, b.head, b.tail)
	}
	if expire.bucket.Load() != nil || slip.bucket.Load() != nil {
		t.Fatalf("expired/slipped entries still linked after drain\n")
	}
}

func TestBucketDrainEmpty(t *testing.T) {
	b := &bucket{}
	expired, slipped := b.drain(func(*Timeout) drainVerdict { return keepInBucket })
	if expired != nil || slipped != nil {
		t.Fatalf("drain of empty bucket returned non-nil slices\n")
	}
}
