/*
 * Copyright (c) 2026, Locus Authors. All rights reserved.
 */
package forward

import (
	"go.uber.org/atomic"

	"github.com/aistorelabs/locus/cmn"
)

// RRFState is the relocated-remembered-fields handshake's state cell
// (spec §4.5, component C4). Only meaningful when the owning
// Forwarding's FromAge() == Old.
type RRFState int32

const (
	// RRFInitial: no participant has acted yet.
	RRFInitial RRFState = iota
	// RRFPublished: OC finished relocation and published Array().
	RRFPublished
	// RRFRejected: YC intervened; OC's published list, if any, is
	// rejected and YC is authoritative.
	RRFRejected
	// RRFPreYCTerminal: relocation finished before the current YC
	// started; the YC never retained this Forwarding and need not look
	// at it.
	RRFPreYCTerminal
	// RRFConsumedTerminal: reached only from RRFPublished via
	// MarkPreYCTerminal, once the published array has been consumed.
	RRFConsumedTerminal
)

// RemsetHandshake arbitrates whether the OC's published list of
// surviving cross-generational fields is used, or whether a concurrent
// YC rejects that list and re-discovers the fields itself.
type RemsetHandshake struct {
	state atomic.Int32

	// array holds to-space field addresses of surviving
	// cross-generational pointers. Ownership follows state: the OC owns
	// it until the 0->1 CAS commits; after a 1->Rejected transition the
	// rejecter (NotifyConcurrentScan) clears it; after a 0->Rejected
	// transition a later Publish observes Rejected and clears it; after a
	// 1->ConsumedTerminal
	// transition the consumer owns it via MarkPreYCTerminal's return
	// value.
	array []Addr

	publishYoungSeqnum atomic.Uint32

	region Region
	lo, hi Addr
}

func newRemsetHandshake(region Region, lo, hi Addr) *RemsetHandshake {
	return &RemsetHandshake{region: region, lo: lo, hi: hi}
}

// State reports the current RRFState, for diagnostics and tests.
func (r *RemsetHandshake) State() RRFState { return RRFState(r.state.Load()) }

// PublishYoungSeqnum is the YC sequence number snapshotted at
// AfterRelocate time.
func (r *RemsetHandshake) PublishYoungSeqnum() uint32 { return r.publishYoungSeqnum.Load() }

// SetArray installs the OC's candidate remembered-fields array. Must
// only be called by the OC before AfterRelocate/Publish.
func (r *RemsetHandshake) SetArray(addrs []Addr) { r.array = addrs }

func (r *RemsetHandshake) logBounds(what string) {
	r.region.LogMsg("Forwarding remset %s [%#x, %#x)", what, r.lo, r.hi)
}

// AfterRelocate implements spec §4.5 after_relocate(): called by OC
// once it finishes relocating this region.
func (r *RemsetHandshake) AfterRelocate(gen Generation) {
	r.publishYoungSeqnum.Store(gen.Seqnum())
	if gen.IsPhaseMark() {
		r.Publish()
	}
}

// Publish implements spec §4.5 publish(): OC side, CAS 0->1.
func (r *RemsetHandshake) Publish() {
	if r.state.CompareAndSwap(int32(RRFInitial), int32(RRFPublished)) {
		r.logBounds("published")
		return
	}
	switch cur := RRFState(r.state.Load()); cur {
	case RRFRejected:
		r.array = nil
		r.logBounds("discarded")
	default:
		cmn.Assertf(false, "publish: observed impossible state %d", cur)
	}
}

// NotifyConcurrentScan implements spec §4.5
// notify_concurrent_scan_of(): YC side, CAS 0->2 (or 1->2). Callers
// must already hold a successful RetainPage on the owning Forwarding
// and must be in mark phase.
func (r *RemsetHandshake) NotifyConcurrentScan() {
	if r.state.CompareAndSwap(int32(RRFInitial), int32(RRFRejected)) {
		r.logBounds("eager")
		return
	}
	switch cur := RRFState(r.state.Load()); cur {
	case RRFPublished:
		ok := r.state.CompareAndSwap(int32(RRFPublished), int32(RRFRejected))
		cmn.Assertf(ok, "notify_concurrent_scan_of: second CAS 1->2 must succeed")
		r.array = nil
		r.logBounds("eager and reject")
	case RRFRejected:
		r.logBounds("redundant")
	default:
		cmn.Assertf(false, "notify_concurrent_scan_of: observed unexpected state %d", cur)
	}
}

// MarkPreYCTerminal implements spec §4.5's "transition rule 3": entered
// by code outside the core that determines relocation completed before
// the current YC started, when the YC cannot retain the page.
func (r *RemsetHandshake) MarkPreYCTerminal() (consumed []Addr) {
	for {
		cur := RRFState(r.state.Load())
		switch cur {
		case RRFInitial:
			if r.state.CompareAndSwap(int32(RRFInitial), int32(RRFPreYCTerminal)) {
				return nil
			}
		case RRFPublished:
			if r.state.CompareAndSwap(int32(RRFPublished), int32(RRFConsumedTerminal)) {
				a := r.array
				r.array = nil
				return a
			}
		case RRFRejected:
			return nil // a previous YC already handled it.
		default:
			cmn.Assertf(false, "mark_pre_yc_terminal: observed unexpected state %d", cur)
		}
	}
}
