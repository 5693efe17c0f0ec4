// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a BSD-style license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package timingwheel

import (
	"context"

	"go.opentelemetry.io/otel/metric"
)

// DeviationObserver records, at fire time, how tardy a timeout was:
// current_ms - deadline_ms (spec §4.2/§6 "deviation_observer").
type DeviationObserver interface {
	Update(deltaMS int64)
}

// RateObserver counts one event per fired timeout (spec §6 "rate_observer").
type RateObserver interface {
	Event()
}

// noopDeviationObserver and noopRateObserver satisfy spec §5's "leak
// detector and monitor registry ... treat as optional dependency-injected
// collaborators; the core must function with no-op implementations."
type noopDeviationObserver struct{}

func (noopDeviationObserver) Update(int64) {}

type noopRateObserver struct{}

func (noopRateObserver) Event() {}

// otelDeviationObserver records firing deviation as an OpenTelemetry
// histogram, in milliseconds. This is the concrete realization of spec
// §6's optional deviation observer, wired to the only metrics SDK in the
// retrieval pack's dependency graph.
type otelDeviationObserver struct {
	hist metric.Float64Histogram
}

// NewOtelDeviationObserver builds a DeviationObserver recording into hist
// (obtained from a meter via meter.Float64Histogram("timingwheel.deviation_ms")).
func NewOtelDeviationObserver(hist metric.Float64Histogram) DeviationObserver {
	return &otelDeviationObserver{hist: hist}
}

func (o *otelDeviationObserver) Update(deltaMS int64) {
	o.hist.Record(context.Background(), float64(deltaMS))
}

// otelRateObserver counts fired timeouts as an OpenTelemetry counter.
type otelRateObserver struct {
	counter metric.Int64Counter
}

// NewOtelRateObserver builds a RateObserver recording into counter
// (obtained from a meter via meter.Int64Counter("timingwheel.fired_total")).
func NewOtelRateObserver(counter metric.Int64Counter) RateObserver {
	return &otelRateObserver{counter: counter}
}

func (o *otelRateObserver) Event() {
	o.counter.Add(context.Background(), 1)
}
