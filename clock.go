// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a BSD-style license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package timingwheel

import (
	"time"

	"github.com/intuitivelabs/timestamp"
)

// Clock is the monotonic millisecond clock the worker loop and the
// insertion math are defined over (spec: "a clock producing monotonic
// wall-time in milliseconds"). Deadlines and "now" are always compared in
// this domain, never against time.Now() directly, so the clock can be
// swapped out in tests.
type Clock interface {
	// NowMS returns the current monotonic time in milliseconds.
	NowMS() int64
}

// Sleeper is the interruptible sleep primitive the worker blocks on between
// ticks. Wake closes (or is read from) to interrupt an in-progress sleep.
type Sleeper interface {
	// Sleep blocks for d or until wake is closed, whichever comes first.
	// It returns true if it slept the full duration, false if interrupted.
	Sleep(d time.Duration, wake <-chan struct{}) bool
}

// realClock is the production Clock, backed by intuitivelabs/timestamp's
// monotonic timestamp, exactly as the teacher's wtimer_ticker.go consumes
// it (timestamp.Now(), .Sub, .Before, .Add).
type realClock struct {
	ref   timestamp.TS
	refMS int64
}

func newRealClock() *realClock {
	return &realClock{ref: timestamp.Now(), refMS: 0}
}

func (c *realClock) NowMS() int64 {
	d := timestamp.Now().Sub(c.ref)
	return c.refMS + int64(d/time.Millisecond)
}

// realSleeper sleeps with a time.Timer, woken early by a closed channel.
type realSleeper struct{}

func (realSleeper) Sleep(d time.Duration, wake <-chan struct{}) bool {
	if d <= 0 {
		return true
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-wake:
		return false
	}
}
