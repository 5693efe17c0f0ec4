// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a BSD-style license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package timingwheel

import (
	"testing"
	"time"
)

func TestNewWheelRoundsUpToPowerOfTwo(t *testing.T) {
	cases := []struct {
		in   int
		want int
	}{
		{1, 1},
		{2, 2},
		{3, 4},
		{500, 512},
		{512, 512},
		{513, 1024},
	}
	for _, c := range cases {
		w, err := newWheel(10*time.Millisecond, c.in)
		if err != nil {
			t.Fatalf("newWheel(%d): unexpected error: %s\n", c.in, err)
		}
		if w.size() != c.want {
			t.Errorf("newWheel(%d): size = %d, want %d\n", c.in, w.size(), c.want)
		}
		if w.mask != uint64(c.want-1) {
			t.Errorf("newWheel(%d): mask = %d, want %d\n", c.in, w.mask, c.want-1)
		}
	}
}

func TestNewWheelValidation(t *testing.T) {
	if _, err := newWheel(0, 8); err != ErrInvalidTickDuration {
		t.Errorf("tick duration 0: got %v, want ErrInvalidTickDuration\n", err)
	}
	if _, err := newWheel(-1, 8); err != ErrInvalidTickDuration {
		t.Errorf("negative tick duration: got %v, want ErrInvalidTickDuration\n", err)
	}
	if _, err := newWheel(time.Millisecond, 0); err != ErrInvalidTicksPerWheel {
		t.Errorf("ticksPerWheel 0: got %v, want ErrInvalidTicksPerWheel\n", err)
	}
	if _, err := newWheel(time.Millisecond, 1<<31); err != ErrTicksPerWheelTooLarge {
		t.Errorf("ticksPerWheel too large: got %v, want ErrTicksPerWheelTooLarge\n", err)
	}
}

func TestWheelCursorAdvance(t *testing.T) {
	w, err := newWheel(time.Millisecond, 8)
	if err != nil {
		t.Fatalf("newWheel: %s\n", err)
	}
	seen := make([]uint64, 0, 10)
	for i := 0; i < 10; i++ {
		seen = append(seen, w.advanceCursor())
	}
	for i := 1; i < len(seen); i++ {
		want := (seen[i-1] + 1) & w.mask
		if seen[i] != want {
			t.Fatalf("cursor step %d: got %d, want %d (mod wheel_size)\n", i, seen[i], want)
		}
	}
}

func TestWheelRoundDuration(t *testing.T) {
	w, err := newWheel(100*time.Millisecond, 8)
	if err != nil {
		t.Fatalf("newWheel: %s\n", err)
	}
	if w.roundDuration != 800*time.Millisecond {
		t.Errorf("roundDuration = %s, want 800ms\n", w.roundDuration)
	}
}
