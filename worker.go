// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a BSD-style license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package timingwheel

import (
	"sync/atomic"
	"time"
)

// startWorker spawns the single background worker goroutine through the
// configured spawn hook (spec §6 "thread-spawning primitive"), analogous
// to the teacher's WTimer.Start (wtimer_run.go).
func (s *Scheduler) startWorker() {
	s.wg.Add(1)
	s.spawn("timingwheel-worker", func() {
		defer s.wg.Done()
		defer close(s.stopped)
		atomic.StoreUint64(&s.workerGID, currentGoroutineID())
		s.runLoop()
	})
}

// runLoop is the worker's tick loop (spec §4.2): wait for the next tick,
// advance the cursor and drain the current bucket under the write lock,
// reschedule any slipped entries outside the lock, then fire every
// expired entry.
func (s *Scheduler) runLoop() {
	startMS := s.clock.NowMS()
	tick := int64(1)

	for {
		deadlineMS, ok := s.waitForNextTick(startMS, &tick)
		if !ok {
			return
		}

		expired, slipped := s.advanceAndDrain(deadlineMS)

		for _, t := range slipped {
			s.placeInWheel(t, t.deadlineMS-deadlineMS)
		}

		s.fire(expired)
	}
}

// waitForNextTick blocks until tickDuration*tick has elapsed since
// startMS, recomputing the remaining sleep on every wake (spec §4.2 step
// 1). It returns ok=false (the "-1 sentinel") if woken early because the
// scheduler is no longer STARTED; otherwise it returns the tick's
// deadline and increments *tick.
func (s *Scheduler) waitForNextTick(startMS int64, tick *int64) (deadlineMS int64, ok bool) {
	tickMS := s.wheel.tickDuration.Milliseconds()
	for {
		due := startMS + tickMS*(*tick)
		now := s.clock.NowMS()
		if now-startMS >= tickMS*(*tick) {
			break
		}
		sleep := roundSleepForPlatform(time.Duration(due-now) * time.Millisecond)
		if sleep <= 0 {
			continue
		}
		if !s.sleeper.Sleep(sleep, s.stopCh) {
			if s.loadState() != schedStarted {
				return 0, false
			}
			// interrupted but still running: loop and recompute the
			// remaining sleep against the current clock.
			continue
		}
	}
	deadlineMS = startMS + tickMS*(*tick)
	*tick++
	return deadlineMS, true
}

// advanceAndDrain advances the cursor by one slot and drains it under the
// wheel's exclusive (write) lock, classifying every entry as kept
// in-bucket (rounds remaining), expired, or slipped (spec §4.2 step 2).
func (s *Scheduler) advanceAndDrain(workerDeadlineMS int64) (expired, slipped []*Timeout) {
	s.mu.Lock()
	idx := s.wheel.advanceCursor()
	b := s.wheel.bucketAt(idx)
	expired, slipped = b.drain(func(t *Timeout) drainVerdict {
		if t.remainingRoundsVal() > 0 {
			t.decrementRounds()
			return keepInBucket
		}
		if t.deadlineMS <= workerDeadlineMS {
			return drainExpired
		}
		return drainSlipped
	})
	s.mu.Unlock()
	return expired, slipped
}

// fire invokes expire on every entry in expired, outside the wheel lock,
// in reverse order (spec §4.2 step 4 — a historical artifact the source
// preserves with no observable semantic effect, since same-tick ordering
// is not guaranteed; kept here purely for parity). Each invocation runs
// through the configured runSafe hook (go-zero's threading.RunSafe by
// default) with our own recover nested inside it, so a panicking task is
// both contained and logged at WARN (spec §7).
func (s *Scheduler) fire(expired []*Timeout) {
	for i := len(expired) - 1; i >= 0; i-- {
		t := expired[i]
		fired := t.expire(func(run func()) {
			s.runSafe(func() {
				defer func() {
					if r := recover(); r != nil {
						WARN("task panicked: %v\n", r)
					}
				}()
				run()
			})
		})
		if fired {
			s.rate.Event()
			s.deviation.Update(s.clock.NowMS() - t.deadlineMS)
		}
	}
}
