/*
 * Copyright (c) 2026, Locus Authors. All rights reserved.
 */
package forward

import "github.com/aistorelabs/locus/cmn"

// StartInPlace implements spec §4.4 in_place_relocation_start(). The
// caller must be the sole claimant: ref_count == -1 and in_place not
// yet set. topAtStart is recorded with a plain store that happens
// before the subsequent release-store of the owner identity, so any
// thread that later observes itself in inPlaceThread (via an acquire
// load) is guaranteed to see topAtStart too.
func (f *Forwarding) StartInPlace(owner Owner, topAtStart Offset) {
	cmn.Assertf(f.refCount.Load() == -1, "in_place_relocation_start: ref_count must be -1, got %d", f.refCount.Load())
	cmn.Assertf(!f.inPlace.Load(), "in_place_relocation_start: already in place (non-idempotent by design)")
	f.inPlaceTopAtStart = topAtStart
	f.inPlace.Store(true)
	f.inPlaceThread.Store(&ownerBox{owner: owner}) // release
}

// FinishInPlace implements spec §4.4 in_place_relocation_finish(). It
// does not clear the in_place flag itself - StartInPlace is
// non-idempotent by design, so a Forwarding that has finished in-place
// relocation can never be restarted through this API.
func (f *Forwarding) FinishInPlace() {
	cmn.Assertf(f.inPlace.Load(), "in_place_relocation_finish: in_place_relocation_start was never called")
	if f.fromAge == f.toAge {
		// No promotion: the region keeps its generation, so its own
		// live-object bitmap is what just became stale.
		f.region.FinalizeResetForInPlaceRelocation()
	}
	f.inPlaceThread.Store(nil)
}

// IsBelowTopAtStart implements spec §4.4
// in_place_relocation_is_below_top_at_start(). It is the sole
// mechanism by which one goroutine may treat a region offset as still
// referring to a from-space object while every other goroutine treats
// it as to-space: true iff the calling owner is the one currently
// performing in-place relocation, and offset predates the relocation's
// start.
func (f *Forwarding) IsBelowTopAtStart(owner Owner, offset Offset) bool {
	box := f.inPlaceThread.Load() // acquire
	if box == nil || box.owner != owner {
		return false
	}
	return offset < f.inPlaceTopAtStart
}

// InPlace reports whether a claimant chose in-place relocation for
// this Forwarding.
func (f *Forwarding) InPlace() bool { return f.inPlace.Load() }
