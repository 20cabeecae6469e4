// Package stats backs the forward package's StallTimer interface and
// exposes a small set of prometheus counters/gauges over the
// forwarding protocol's lifecycle events - the natural home for the
// "relocation stall statistic" the core specification mentions without
// defining its shape.
/*
 * Copyright (c) 2026, Locus Authors. All rights reserved.
 */
package stats

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Collector bundles the metrics this module exports. Construct one per
// process and pass Collector.Stall() as the StallTimer argument of
// every WaitPageReleased call whose stall should be measured.
type Collector struct {
	stallSeconds    prometheus.Histogram
	liveForwardings prometheus.Gauge
	claims          prometheus.Counter
	published       prometheus.Counter
	discarded       prometheus.Counter
	rejected        prometheus.Counter
	aborted         prometheus.Counter
}

// NewCollector builds and registers the locus metrics against reg. Pass
// prometheus.NewRegistry() in tests to avoid colliding with the global
// default registry across parallel test packages.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		stallSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "locus",
			Subsystem: "forwarding",
			Name:      "wait_page_released_stall_seconds",
			Help:      "Time goroutines spend blocked in WaitPageReleased.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 12),
		}),
		liveForwardings: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "locus",
			Subsystem: "forwarding",
			Name:      "live_total",
			Help:      "Number of Forwardings with ref_count != 0.",
		}),
		claims: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "locus",
			Subsystem: "forwarding",
			Name:      "claims_total",
			Help:      "Successful in-place relocation claims.",
		}),
		published: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "locus",
			Subsystem: "remset",
			Name:      "published_total",
			Help:      "Remset handshake publications (OC side).",
		}),
		discarded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "locus",
			Subsystem: "remset",
			Name:      "discarded_total",
			Help:      "Remset handshake publications discarded after YC rejection.",
		}),
		rejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "locus",
			Subsystem: "remset",
			Name:      "rejected_total",
			Help:      "Remset handshake rejections (YC side, eager or eager-and-reject).",
		}),
		aborted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "locus",
			Subsystem: "forwarding",
			Name:      "aborted_total",
			Help:      "Forwardings whose relocation was aborted.",
		}),
	}
	reg.MustRegister(
		c.stallSeconds, c.liveForwardings, c.claims,
		c.published, c.discarded, c.rejected, c.aborted,
	)
	return c
}

// Stall returns a forward.StallTimer-compatible observer bound to the
// wait-page-released histogram. Declared as a concrete type rather
// than importing the forward package, to keep stats free of a
// dependency cycle; forward.StallTimer is satisfied structurally.
func (c *Collector) Stall() *StallObserver {
	return &StallObserver{hist: c.stallSeconds}
}

func (c *Collector) IncLive()      { c.liveForwardings.Inc() }
func (c *Collector) DecLive()      { c.liveForwardings.Dec() }
func (c *Collector) IncClaim()     { c.claims.Inc() }
func (c *Collector) IncPublished() { c.published.Inc() }
func (c *Collector) IncDiscarded() { c.discarded.Inc() }
func (c *Collector) IncRejected()  { c.rejected.Inc() }
func (c *Collector) IncAborted()   { c.aborted.Inc() }
