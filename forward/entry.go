/*
 * Copyright (c) 2026, Locus Authors. All rights reserved.
 */
package forward

import (
	"go.uber.org/atomic"

	"github.com/aistorelabs/locus/cmn"
)

// entrySlot is one linear-probe slot of an entryTable. FromIndex and
// ToOffset are plain fields: the writer (the single relocating owner)
// stores them before flipping Populated, and readers never observe
// them until Populated reads true with acquire ordering - so the
// plain stores are safe despite the lack of their own atomics.
type entrySlot struct {
	fromIndex int64
	toOffset  Offset
	populated atomic.Bool
}

// entryTable is the fixed-capacity, open-addressed from-index -> to-offset
// map inside a Forwarding (spec §4.2, component C2). Insert is
// writer-exclusive - only the thread performing relocation for this
// Forwarding may call it, and it must not be called concurrently with
// itself. Find is lock-free and safe for any number of concurrent
// readers racing any number of (serialized) inserts.
type entryTable struct {
	slots []entrySlot
	cap   int
}

func newEntryTable(capacity int) *entryTable {
	cmn.Assertf(capacity > 0, "entry table capacity must be positive, got %d", capacity)
	t := &entryTable{
		slots: make([]entrySlot, capacity),
		cap:   capacity,
	}
	for i := range t.slots {
		t.slots[i].fromIndex = -1
	}
	return t
}

// probeStart hashes fromIndex into [0, cap). fromIndex is already a
// dense, bounded slot index (< region.ObjectMaxCount()), so a cheap
// multiplicative mix is enough to spread collisions; this mirrors the
// teacher's own from-index hashing used for remote-object work-item
// lookup tables.
func (t *entryTable) probeStart(fromIndex int64) int {
	h := uint64(fromIndex) * 0x9E3779B97F4A7C15
	return int(h % uint64(t.cap))
}

// insert records fromIndex -> toOffset. Writer-exclusive: never call
// concurrently with another insert on the same table.
func (t *entryTable) insert(fromIndex int64, toOffset Offset) {
	start := t.probeStart(fromIndex)
	for i := 0; i < t.cap; i++ {
		idx := (start + i) % t.cap
		s := &t.slots[idx]
		if s.populated.Load() {
			continue
		}
		s.fromIndex = fromIndex
		s.toOffset = toOffset
		s.populated.Store(true) // release: publishes fromIndex/toOffset
		return
	}
	cmn.Assertf(false, "entry table full: capacity=%d", t.cap)
}

// find looks up fromIndex. Lock-free: safe concurrently with insert
// and with other find calls.
func (t *entryTable) find(fromIndex int64) (Offset, bool) {
	start := t.probeStart(fromIndex)
	for i := 0; i < t.cap; i++ {
		idx := (start + i) % t.cap
		s := &t.slots[idx]
		if !s.populated.Load() { // acquire
			// Never-written slot: since insert never deletes and always
			// probes in this same order, the key cannot live past here.
			return 0, false
		}
		if s.fromIndex == fromIndex {
			return s.toOffset, true
		}
	}
	return 0, false
}

// forEachPopulated calls fn for every populated slot. Used only by
// Verify, which the caller serializes against concurrent insert.
func (t *entryTable) forEachPopulated(fn func(fromIndex int64, toOffset Offset)) {
	for i := range t.slots {
		s := &t.slots[i]
		if s.populated.Load() {
			fn(s.fromIndex, s.toOffset)
		}
	}
}
