// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a BSD-style license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package timingwheel

import (
	"runtime"
	"time"
)

// isWindows probes for the one platform family whose sleep primitive
// historically suffers sub-10ms quantization (spec §4.2/§9). No
// platform-detection library appears anywhere in the retrieval pack, so
// this stays on stdlib runtime.GOOS.
func isWindows() bool {
	return runtime.GOOS == "windows"
}

// roundSleepForPlatform rounds d down to a multiple of 10ms on platforms
// whose sleep primitive cannot be trusted below that quantum, to avoid
// busy-waiting in a tight sleep/recompute loop. Elsewhere it is a no-op.
func roundSleepForPlatform(d time.Duration) time.Duration {
	if !isWindows() {
		return d
	}
	const quantum = 10 * time.Millisecond
	return (d / quantum) * quantum
}
