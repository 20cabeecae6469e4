/*
 * Copyright (c) 2026, Locus Authors. All rights reserved.
 */
package forward

import (
	"go.uber.org/atomic"

	"github.com/aistorelabs/locus/cmn"
)

// Table maps region-base addresses to their Forwarding, for lookup
// only (spec §2 component C1). It is read-mostly: the set of
// Forwardings is fixed for the duration of a relocation phase and
// installed wholesale at phase boundaries (out of scope for this
// package - the caller owns relocation-set selection). Lookup is
// lock-free: readers load an immutable snapshot atomically, so any
// number of goroutines may call Lookup concurrently with each other
// and with a single in-flight Install.
type Table struct {
	regionSize uintptr
	snapshot   atomic.Pointer[tableSnapshot]
}

type tableSnapshot struct {
	byBase map[Addr]*Forwarding
}

// NewTable constructs an empty Table for regions of the given fixed
// size (a power of two, as in the teacher's own region geometry).
func NewTable(regionSize uintptr) *Table {
	cmn.Assertf(regionSize > 0 && regionSize&(regionSize-1) == 0,
		"region size must be a power of two, got %d", regionSize)
	t := &Table{regionSize: regionSize}
	t.snapshot.Store(&tableSnapshot{byBase: map[Addr]*Forwarding{}})
	return t
}

func (t *Table) regionBase(addr Addr) Addr {
	mask := Addr(t.regionSize - 1)
	return addr &^ mask
}

// Lookup returns the Forwarding covering addr's region, or nil if none
// is installed (the region is not currently being relocated).
func (t *Table) Lookup(addr Addr) *Forwarding {
	snap := t.snapshot.Load()
	return snap.byBase[t.regionBase(addr)]
}

// Install atomically replaces the table's contents with forwardings,
// keyed by each Forwarding's region base address. This is the only
// mutator; it is meant to be called once per relocation-set boundary,
// never concurrently with itself.
func (t *Table) Install(forwardings map[Addr]*Forwarding) {
	snap := &tableSnapshot{byBase: make(map[Addr]*Forwarding, len(forwardings))}
	for base, f := range forwardings {
		snap.byBase[t.regionBase(base)] = f
	}
	t.snapshot.Store(snap)
}

// Clear atomically empties the table (end of a relocation phase).
func (t *Table) Clear() {
	t.snapshot.Store(&tableSnapshot{byBase: map[Addr]*Forwarding{}})
}
