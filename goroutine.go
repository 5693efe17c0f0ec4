// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a BSD-style license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package timingwheel

import (
	"bytes"
	"runtime"
	"strconv"
)

// currentGoroutineID extracts the running goroutine's id from its own
// stack trace header ("goroutine N [running]:"). It exists for exactly
// one purpose: Scheduler.Stop's "forbidden from within a running task"
// check (spec §4.1), which in the source is a plain identity comparison
// against the worker java.lang.Thread. Go has no public goroutine-identity
// API and no library anywhere in the retrieval pack addresses it, so this
// stays on a stdlib runtime.Stack parse (documented as a best-effort,
// debug-only technique, never used on any hot path).
func currentGoroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	b := buf[:n]
	const prefix = "goroutine "
	if !bytes.HasPrefix(b, []byte(prefix)) {
		return 0
	}
	b = b[len(prefix):]
	if i := bytes.IndexByte(b, ' '); i >= 0 {
		b = b[:i]
	}
	id, err := strconv.ParseUint(string(b), 10, 64)
	if err != nil {
		return 0
	}
	return id
}
