// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a BSD-style license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

// Package timingwheel implements a hashed timing wheel: an approximate
// timer facility for scheduling, cancelling and firing a very large number
// of short-to-medium duration timeouts with O(1) amortized insertion and
// cancellation, at the cost of bounded firing jitter. The canonical use is
// per-connection I/O deadlines in a high-concurrency network server.
package timingwheel

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/zeromicro/go-zero/core/threading"
)

// Name and BuildTags are purely diagnostic, mirroring the teacher's NAME /
// BuildTags package vars.
const Name = "timingwheel"

var BuildTags []string

const (
	DefaultTickDuration  = 100 * time.Millisecond
	DefaultTicksPerWheel = 512
)

// schedulerState is the monotone three-valued scheduler lifecycle state
// (spec §3 "Scheduler state").
type schedulerState int32

const (
	schedInit schedulerState = iota
	schedStarted
	schedStopped
)

// config collects every constructor knob spec §4.1 enumerates.
type config struct {
	tickDuration  time.Duration
	ticksPerWheel int
	clock         Clock
	sleeper       Sleeper
	spawn         func(name string, fn func())
	runSafe       func(fn func())
	deviation     DeviationObserver
	rate          RateObserver
}

// Option configures a Scheduler at construction time.
type Option func(*config)

// WithTickDuration sets the wheel's tick granularity (default 100ms).
func WithTickDuration(d time.Duration) Option {
	return func(c *config) { c.tickDuration = d }
}

// WithTicksPerWheel sets the wheel size, rounded up to a power of two
// (default 512).
func WithTicksPerWheel(n int) Option {
	return func(c *config) { c.ticksPerWheel = n }
}

// WithClock overrides the monotonic millisecond clock (tests only; the
// default is backed by intuitivelabs/timestamp).
func WithClock(clk Clock) Option {
	return func(c *config) { c.clock = clk }
}

// WithSleeper overrides the interruptible sleep primitive (tests only).
func WithSleeper(s Sleeper) Option {
	return func(c *config) { c.sleeper = s }
}

// WithSpawn overrides the thread-spawning primitive the worker loop uses
// to start. name is advisory (Go goroutines cannot be named).
func WithSpawn(spawn func(name string, fn func())) Option {
	return func(c *config) { c.spawn = spawn }
}

// WithDeviationObserver installs a collaborator that records
// current_ms - deadline_ms at fire time (spec §6).
func WithDeviationObserver(o DeviationObserver) Option {
	return func(c *config) { c.deviation = o }
}

// WithRateObserver installs a collaborator that counts one event per
// fired timeout (spec §6).
func WithRateObserver(o RateObserver) Option {
	return func(c *config) { c.rate = o }
}

// Scheduler is the public surface: construct, Start, Stop, Schedule
// (spec §4.1). One Scheduler owns exactly one wheel and one worker
// goroutine for its lifetime (spec §5).
type Scheduler struct {
	wheel *wheel
	mu    sync.RWMutex // schedule/cancel: RLock; worker advance+drain: Lock

	state int32 // schedulerState, atomic

	clock   Clock
	sleeper Sleeper
	spawn   func(name string, fn func())
	runSafe func(fn func())

	deviation DeviationObserver
	rate      RateObserver

	stopCh  chan struct{}
	stopped chan struct{} // closed by the worker goroutine on exit
	wg      sync.WaitGroup

	workerGID uint64 // atomic; goroutine id of the worker, set once on Start
}

// New constructs a Scheduler. It does not start the worker; Start does
// that explicitly, or Schedule does it implicitly on first use (spec
// §4.1).
func New(opts ...Option) (*Scheduler, error) {
	cfg := config{
		tickDuration:  DefaultTickDuration,
		ticksPerWheel: DefaultTicksPerWheel,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	w, err := newWheel(cfg.tickDuration, cfg.ticksPerWheel)
	if err != nil {
		return nil, err
	}

	s := &Scheduler{
		wheel:     w,
		clock:     cfg.clock,
		sleeper:   cfg.sleeper,
		spawn:     cfg.spawn,
		runSafe:   cfg.runSafe,
		deviation: cfg.deviation,
		rate:      cfg.rate,
		stopCh:    make(chan struct{}),
		stopped:   make(chan struct{}),
	}
	if s.clock == nil {
		s.clock = newRealClock()
	}
	if s.sleeper == nil {
		s.sleeper = realSleeper{}
	}
	if s.spawn == nil {
		s.spawn = func(_ string, fn func()) { threading.GoSafe(fn) }
	}
	if s.runSafe == nil {
		s.runSafe = threading.RunSafe
	}
	if s.deviation == nil {
		s.deviation = noopDeviationObserver{}
	}
	if s.rate == nil {
		s.rate = noopRateObserver{}
	}
	return s, nil
}

func (s *Scheduler) loadState() schedulerState {
	return schedulerState(atomic.LoadInt32(&s.state))
}

// Start idempotently transitions INIT -> STARTED and spawns the worker
// goroutine. Re-entering STARTED is a no-op. STOPPED cannot be restarted
// (spec §4.1).
func (s *Scheduler) Start() error {
	for {
		switch s.loadState() {
		case schedStarted:
			return nil
		case schedStopped:
			return ErrCannotRestart
		default:
			if atomic.CompareAndSwapInt32(&s.state, int32(schedInit), int32(schedStarted)) {
				s.startWorker()
				return nil
			}
			// lost the race with a concurrent Start; re-check.
		}
	}
}

// Schedule validates task and delay, ensures the worker is started, and
// inserts the resulting Timeout at its computed bucket/rounds coordinate
// under the wheel's shared (read) lock (spec §4.1 "Insertion math").
func (s *Scheduler) Schedule(task TaskFunc, delay time.Duration) (*Timeout, error) {
	if task == nil {
		return nil, ErrNilTask
	}
	if delay < 0 {
		return nil, ErrNegativeDelay
	}
	if err := s.Start(); err != nil {
		return nil, err
	}

	delayMS := delay.Milliseconds()
	t := &Timeout{
		task:       task,
		sched:      s,
		deadlineMS: s.clock.NowMS() + delayMS,
	}
	s.placeInWheel(t, delayMS)
	return t, nil
}

// placeInWheel is the insertion math of spec §4.1, shared between
// Schedule (a brand-new Timeout) and the worker's slip-reschedule path
// (an existing Timeout being re-placed after one more tick). It recomputes
// remainingRounds and the bucket index and inserts under the wheel's
// shared (read) lock; it never touches t.deadlineMS.
func (s *Scheduler) placeInWheel(t *Timeout, delayMS int64) {
	tickMS := s.wheel.tickDuration.Milliseconds()
	roundMS := s.wheel.roundDuration.Milliseconds()

	if delayMS < tickMS {
		delayMS = tickMS
	}

	lastRoundDelay := delayMS % roundMS
	lastTickDelay := delayMS % tickMS

	relativeIndex := lastRoundDelay / tickMS
	if lastTickDelay != 0 {
		relativeIndex++
	}
	remainingRounds := delayMS / roundMS
	if lastRoundDelay == 0 {
		remainingRounds--
	}
	atomic.StoreInt64(&t.remainingRounds, remainingRounds)

	s.mu.RLock()
	cursor := s.wheel.loadCursor()
	idx := (cursor + uint64(relativeIndex)) & s.wheel.mask
	s.wheel.bucketAt(idx).add(t)
	s.mu.RUnlock()
}

// Stop transitions STARTED -> STOPPED. Forbidden from within a running
// task on the worker goroutine (spec §4.1: "fatal usage error" — rendered
// here as a returned error rather than a panic, the idiomatic Go
// counterpart). Signals the worker to stop and joins it with a 100ms
// poll, then returns every timeout still present in any bucket; those
// timeouts remain in INIT state and are the caller's responsibility.
func (s *Scheduler) Stop() ([]*Timeout, error) {
	if atomic.LoadUint64(&s.workerGID) != 0 && currentGoroutineID() == atomic.LoadUint64(&s.workerGID) {
		return nil, ErrStopFromWorker
	}

	for {
		switch s.loadState() {
		case schedStopped:
			return nil, nil
		case schedInit:
			if atomic.CompareAndSwapInt32(&s.state, int32(schedInit), int32(schedStopped)) {
				return nil, nil
			}
		default: // schedStarted
			if atomic.CompareAndSwapInt32(&s.state, int32(schedStarted), int32(schedStopped)) {
				close(s.stopCh)
				for {
					select {
					case <-s.stopped:
						return s.wheel.drainAllPending(), nil
					case <-time.After(100 * time.Millisecond):
						// still joining; keep polling.
					}
				}
			}
		}
	}
}
