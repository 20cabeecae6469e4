/*
 * Copyright (c) 2026, Locus Authors. All rights reserved.
 */
package forward

import (
	"sync"

	"go.uber.org/atomic"

	"github.com/aistorelabs/locus/cmn"
)

// Forwarding is the unit the protocol protects (spec §2 component C3):
// one per region selected into a relocation set. It holds the
// reference-count rendezvous, the single-winner claim flag, the
// in-place-relocation marker and, when the region's from-generation is
// Old, the remembered-fields handshake with the young generation.
type Forwarding struct {
	region    Region
	addrSpace AddressSpace
	fromAge   Age
	toAge     Age

	// claimed is the single-winner gate that decides which caller may
	// even attempt ClaimPage; ClaimPage itself additionally asserts
	// ref_count > 0, so a second caller racing in after claimed is won
	// would otherwise trip that assertion rather than failing cleanly.
	claimed atomic.Bool

	refCount atomic.Int32
	refMu    sync.Mutex
	refCond  *sync.Cond
	refAbort atomic.Bool

	inPlace           atomic.Bool
	inPlaceThread     atomic.Pointer[ownerBox]
	inPlaceTopAtStart Offset

	entries *entryTable

	// remset is nil unless fromAge == Old (spec §3: "If from_age != old,
	// rrf_* fields are unused").
	remset *RemsetHandshake
}

type ownerBox struct{ owner Owner }

// Config bundles the construction-time parameters of a Forwarding.
type Config struct {
	Region        Region
	AddressSpace  AddressSpace
	FromAge       Age
	ToAge         Age
	EntryCapacity int
	// RegionLo and RegionHi are only used to format the five stable remset log
	// lines (spec §6 "Observable logs"); they carry no other semantics.
	RegionLo, RegionHi Addr
}

// New constructs a Forwarding with ref_count = 1 (the constructing
// collector's own reference).
func New(cfg Config) *Forwarding {
	cmn.Assertf(cfg.EntryCapacity >= 0, "negative entry capacity %d", cfg.EntryCapacity)
	f := &Forwarding{
		region:    cfg.Region,
		addrSpace: cfg.AddressSpace,
		fromAge:   cfg.FromAge,
		toAge:     cfg.ToAge,
		entries:   newEntryTable(maxInt(cfg.EntryCapacity, 1)),
	}
	f.refCount.Store(1)
	f.refCond = sync.NewCond(&f.refMu)
	if cfg.FromAge == Old {
		f.remset = newRemsetHandshake(cfg.Region, cfg.RegionLo, cfg.RegionHi)
	}
	return f
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// FromAge and ToAge are immutable after construction.
func (f *Forwarding) FromAge() Age { return f.fromAge }
func (f *Forwarding) ToAge() Age   { return f.toAge }

// Remset exposes the OC<->YC handshake; nil when FromAge() != Old.
func (f *Forwarding) Remset() *RemsetHandshake { return f.remset }

// Entries exposes the from-index -> to-offset table (C2) for Insert/Find.
func (f *Forwarding) Entries() *entryTable { return f.entries }

// RefCount reports the current signed reference count, for diagnostics
// and tests only - never branch production logic on a racy snapshot of
// this value.
func (f *Forwarding) RefCount() int32 { return f.refCount.Load() }

// RetainPage implements spec §4.3 retain_page(). It returns true iff the
// caller now holds one of ref_count's references and owes exactly one
// ReleasePage.
func (f *Forwarding) RetainPage() bool {
	for {
		cur := f.refCount.Load()
		switch {
		case cur == 0:
			return false
		case cur < 0:
			// Too late: somebody is draining for an exclusive claim.
			// Wait until the region is fully released or aborted, then
			// report failure either way - retention is no longer
			// possible once the count has gone negative.
			f.WaitPageReleased(NoopStallTimer)
			return false
		default:
			if f.refCount.CompareAndSwap(cur, cur+1) {
				return true
			}
		}
	}
}

// ReleasePage implements spec §4.3 release_page(). Never blocks.
func (f *Forwarding) ReleasePage() {
	for {
		cur := f.refCount.Load()
		cmn.Assertf(cur != 0, "release_page: ref_count is already 0")
		if cur > 0 {
			if f.refCount.CompareAndSwap(cur, cur-1) {
				if cur == 1 {
					f.notifyRef()
				}
				return
			}
			continue
		}
		// cur < 0: draining toward the exclusive hand-off at -1, then
		// toward full release at 0.
		if f.refCount.CompareAndSwap(cur, cur+1) {
			if cur == -2 || cur == -1 {
				f.notifyRef()
			}
			return
		}
	}
}

func (f *Forwarding) notifyRef() {
	f.refMu.Lock()
	f.refCond.Broadcast()
	f.refMu.Unlock()
}

// TryClaim wins the single-winner "claimed" gate (spec §3 `claimed`).
// Only the winner may proceed to ClaimPage; a second caller observing
// claimed already true must not call ClaimPage (its ref_count > 0
// precondition is no longer guaranteed to hold).
func (f *Forwarding) TryClaim() bool {
	return f.claimed.CompareAndSwap(false, true)
}

// ClaimPage implements spec §4.3 in_place_relocation_claim_page(). The
// caller must have already won TryClaim.
func (f *Forwarding) ClaimPage() {
	for {
		cur := f.refCount.Load()
		cmn.Assertf(cur > 0, "claim_page: ref_count must be positive, got %d", cur)
		if !f.refCount.CompareAndSwap(cur, -cur) {
			continue
		}
		if cur == 1 {
			return // immediately exclusive: ref_count is now -1.
		}
		break
	}
	f.refMu.Lock()
	for f.refCount.Load() != -1 {
		f.refCond.Wait()
	}
	f.refMu.Unlock()
}

// WaitPageReleased implements spec §4.3 wait_page_released(). timer is
// scoped around the actual blocking span only.
func (f *Forwarding) WaitPageReleased(timer StallTimer) bool {
	if f.refCount.Load() == 0 {
		return true
	}
	timer.Start()
	defer timer.Stop()
	f.refMu.Lock()
	defer f.refMu.Unlock()
	for {
		if f.refCount.Load() == 0 {
			return true
		}
		if f.refAbort.Load() {
			return false
		}
		f.refCond.Wait()
	}
}

// AbortPage implements spec §4.3 abort_page().
func (f *Forwarding) AbortPage() {
	f.refMu.Lock()
	defer f.refMu.Unlock()
	cur := f.refCount.Load()
	cmn.Assertf(cur > 0, "abort_page: ref_count must be positive, got %d", cur)
	cmn.Assertf(!f.refAbort.Load(), "abort_page: already aborted")
	f.refAbort.Store(true)
	f.refCond.Broadcast()
}

// DetachPage blocks until ref_count reaches 0, then returns ownership
// of the underlying region to the caller. Only the Forwarding's
// creator may call this, and at most once.
func (f *Forwarding) DetachPage() Region {
	f.refMu.Lock()
	for f.refCount.Load() != 0 {
		f.refCond.Wait()
	}
	f.refMu.Unlock()
	r := f.region
	f.region = nil
	return r
}
