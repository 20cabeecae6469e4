/*
 * Copyright (c) 2026, Locus Authors. All rights reserved.
 */
package forward

import "github.com/aistorelabs/locus/cmn"

// Verify implements spec §4.6: it asserts ref_count != 0 and page !=
// nil, checks every populated entry's from_index bound and uniqueness
// of from_index/to_offset, accumulates (object_count, live_bytes), and
// finally asks the region to cross-check the totals. Callers must
// serialize Verify against concurrent Insert on the same Forwarding.
func (f *Forwarding) Verify() {
	cmn.Assertf(f.refCount.Load() != 0, "verify: ref_count must not be 0")
	cmn.Assertf(f.region != nil, "verify: page must not be nil")

	maxCount := f.region.ObjectMaxCount()
	alignment := f.region.ObjectAlignment()

	seenFrom := make(map[int64]struct{})
	seenTo := make(map[Offset]struct{})
	var objectCount int
	var liveBytes int64

	f.entries.forEachPopulated(func(fromIndex int64, toOffset Offset) {
		cmn.Assertf(fromIndex >= 0 && fromIndex < int64(maxCount),
			"verify: from_index %d out of range [0,%d)", fromIndex, maxCount)
		if _, dup := seenFrom[fromIndex]; dup {
			cmn.Assertf(false, "verify: duplicate from_index %d", fromIndex)
		}
		seenFrom[fromIndex] = struct{}{}
		if _, dup := seenTo[toOffset]; dup {
			cmn.Assertf(false, "verify: duplicate to_offset %d", toOffset)
		}
		seenTo[toOffset] = struct{}{}

		addr := f.addrSpace.OffsetToAddress(toOffset)
		size := f.addrSpace.ObjectSize(addr)
		size = f.addrSpace.AlignUp(size, alignment)
		objectCount++
		liveBytes += size
	})

	f.region.VerifyLive(objectCount, liveBytes, f.inPlace.Load())
}
