// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a BSD-style license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package timingwheel

import (
	"testing"
)

func TestTimeoutCancelWinsBeforeExpire(t *testing.T) {
	fired := false
	to := &Timeout{task: func(*Timeout) { fired = true }}

	if !to.Cancel() {
		t.Fatalf("Cancel() = false on a fresh timeout, want true\n")
	}
	if !to.IsCancelled() {
		t.Fatalf("IsCancelled() = false after a winning Cancel\n")
	}
	if to.expire(func(run func()) { run() }) {
		t.Fatalf("expire() = true after Cancel already won, want false\n")
	}
	if fired {
		t.Fatalf("task ran after Cancel won the race\n")
	}
}

func TestTimeoutExpireWinsBeforeCancel(t *testing.T) {
	fired := false
	to := &Timeout{task: func(*Timeout) { fired = true }}

	if !to.expire(func(run func()) { run() }) {
		t.Fatalf("expire() = false on a fresh timeout, want true\n")
	}
	if !fired {
		t.Fatalf("task did not run on a winning expire\n")
	}
	if !to.IsExpired() {
		t.Fatalf("IsExpired() = false after a winning expire\n")
	}
	if to.Cancel() {
		t.Fatalf("Cancel() = true after expire already won, want false\n")
	}
}

func TestTimeoutSecondCancelLoses(t *testing.T) {
	to := &Timeout{task: func(*Timeout) {}}
	if !to.Cancel() {
		t.Fatalf("first Cancel() = false, want true\n")
	}
	if to.Cancel() {
		t.Fatalf("second Cancel() = true, want false\n")
	}
}

func TestTimeoutRemainingRoundsAccessors(t *testing.T) {
	to := &Timeout{remainingRounds: 3}
	if to.remainingRoundsVal() != 3 {
		t.Fatalf("remainingRoundsVal() = %d, want 3\n", to.remainingRoundsVal())
	}
	to.decrementRounds()
	if to.remainingRoundsVal() != 2 {
		t.Fatalf("remainingRoundsVal() after decrement = %d, want 2\n", to.remainingRoundsVal())
	}
}

func TestStateString(t *testing.T) {
	cases := map[state]string{
		stateInit:      "INIT",
		stateCancelled: "CANCELLED",
		stateExpired:   "EXPIRED",
	}
	for s, want := range cases {
		if got := s.String(); got != want {
			t.Errorf("state(%d).String() = %q, want %q\n", s, got, want)
		}
	}
}
