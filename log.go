// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a BSD-style license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package timingwheel

import (
	"fmt"

	"github.com/intuitivelabs/slog"
)

// log is the package-wide logger, level-gated like the rest of the
// intuitivelabs stack the teacher depends on. Callers can raise it with
// SetLogLevel (e.g. to slog.LDBG for verbose worker-loop tracing).
var log = slog.Log{Level: slog.LWARN}

// SetLogLevel changes the package logger's level.
func SetLogLevel(l slog.LogLevel) {
	log.SetLevel(l)
}

func DBGon() bool {
	return log.DBGon()
}

func WARNon() bool {
	return log.WARNon()
}

func ERRon() bool {
	return log.ERRon()
}

func DBG(f string, args ...interface{}) {
	log.DBG(f, args...)
}

func WARN(f string, args ...interface{}) {
	log.WARN(f, args...)
}

func ERR(f string, args ...interface{}) {
	log.ERR(f, args...)
}

// BUG reports an internal consistency violation: a bug in this package,
// never a caller error. It logs and panics, mirroring the assertions in
// the teacher's timer_lst.go.
func BUG(f string, args ...interface{}) {
	log.BUG(f, args...)
	panic("timingwheel: internal invariant violated: " + fmt.Sprintf(f, args...))
}
