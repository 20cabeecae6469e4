/*
 * Copyright (c) 2026, Locus Authors. All rights reserved.
 */
package main

import (
	"sync"

	"github.com/golang/glog"
	"go.uber.org/atomic"

	"github.com/aistorelabs/locus/forward"
)

// simRegion is a minimal in-memory stand-in for the physical region the
// core specification treats as an external collaborator (spec §6
// Region/AddressSpace). It has no real object layout: ObjectSize
// always reports a fixed word size, which is all the driver needs to
// exercise Verify's accounting path.
type simRegion struct {
	id        string
	base      forward.Addr
	size      uintptr
	maxCount  int
	alignment int
	young     bool

	mu      sync.Mutex
	resetAt int
}

const simWordSize = 16

func newSimRegion(id string, base forward.Addr, size uintptr, young bool) *simRegion {
	return &simRegion{
		id:        id,
		base:      base,
		size:      size,
		maxCount:  int(size / simWordSize),
		alignment: 8,
		young:     young,
	}
}

func (r *simRegion) Top() forward.Offset        { return forward.Offset(r.size) }
func (r *simRegion) ObjectMaxCount() int        { return r.maxCount }
func (r *simRegion) ObjectAlignment() int       { return r.alignment }
func (r *simRegion) IsYoung() bool              { return r.young }
func (r *simRegion) FinalizeResetForInPlaceRelocation() {
	r.mu.Lock()
	r.resetAt++
	r.mu.Unlock()
}

func (r *simRegion) LogMsg(format string, args ...interface{}) {
	glog.Infof("region[%s] "+format, append([]interface{}{r.id}, args...)...)
}

func (r *simRegion) VerifyLive(objectCount int, liveBytes int64, inPlace bool) {
	glog.V(2).Infof("region[%s] verify_live objects=%d bytes=%d in_place=%v", r.id, objectCount, liveBytes, inPlace)
}

// simAddressSpace maps simRegion offsets to addresses. It is shared by
// every simulated region in the driver.
type simAddressSpace struct{}

func (simAddressSpace) OffsetToAddress(o forward.Offset) forward.Addr { return forward.Addr(o) }
func (simAddressSpace) ObjectSize(forward.Addr) int64                 { return simWordSize }
func (simAddressSpace) AlignUp(size int64, alignment int) int64 {
	a := int64(alignment)
	return (size + a - 1) &^ (a - 1)
}

// simGeneration is a toy young-generation clock: Seqnum increments
// every time the driver starts a new simulated YC cycle, and
// IsPhaseMark reports whatever setMarkPhase last stored.
type simGeneration struct {
	seq   atomic.Uint32
	phase atomic.Bool
}

func (g *simGeneration) Seqnum() uint32      { return g.seq.Load() }
func (g *simGeneration) IsPhaseMark() bool   { return g.phase.Load() }
func (g *simGeneration) startCycle()         { g.seq.Add(1) }
func (g *simGeneration) setMarkPhase(v bool) { g.phase.Store(v) }
