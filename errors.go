// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a BSD-style license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package timingwheel

import (
	"errors"
)

// construction / validation errors
var ErrNilTask = errors.New("timingwheel: nil task")
var ErrInvalidTickDuration = errors.New("timingwheel: tick duration must be positive")
var ErrInvalidTicksPerWheel = errors.New("timingwheel: ticks per wheel must be positive")
var ErrTicksPerWheelTooLarge = errors.New("timingwheel: ticks per wheel exceeds 2^30")
var ErrRoundDurationOverflow = errors.New("timingwheel: tick duration * wheel size overflows")
var ErrNegativeDelay = errors.New("timingwheel: delay must not be negative")

// lifecycle errors
var ErrCannotRestart = errors.New("timingwheel: cannot be restarted")
var ErrStopFromWorker = errors.New("timingwheel: stop called from within a running task")
