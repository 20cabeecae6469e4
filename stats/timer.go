/*
 * Copyright (c) 2026, Locus Authors. All rights reserved.
 */
package stats

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// StallObserver implements forward.StallTimer structurally (Start/Stop)
// without the stats package importing forward, avoiding an import
// cycle between the core protocol and its metrics.
type StallObserver struct {
	hist  prometheus.Histogram
	start time.Time
}

func (s *StallObserver) Start() { s.start = time.Now() }

func (s *StallObserver) Stop() {
	if s.start.IsZero() {
		return
	}
	s.hist.Observe(time.Since(s.start).Seconds())
	s.start = time.Time{}
}
