/*
 * Copyright (c) 2026, Locus Authors. All rights reserved.
 */
package forward

import (
	"fmt"
	"sync"
)

// fakeRegion is a minimal, deterministic Region double for unit tests.
type fakeRegion struct {
	mu          sync.Mutex
	top         Offset
	maxCount    int
	alignment   int
	young       bool
	resets      int
	logLines    []string
	verifyCalls []verifyCall
}

type verifyCall struct {
	objectCount int
	liveBytes   int64
	inPlace     bool
}

func newFakeRegion(maxCount int) *fakeRegion {
	return &fakeRegion{maxCount: maxCount, alignment: 8, top: Offset(maxCount * 16)}
}

func (r *fakeRegion) Top() Offset            { return r.top }
func (r *fakeRegion) ObjectMaxCount() int     { return r.maxCount }
func (r *fakeRegion) ObjectAlignment() int    { return r.alignment }
func (r *fakeRegion) IsYoung() bool           { return r.young }

func (r *fakeRegion) FinalizeResetForInPlaceRelocation() {
	r.mu.Lock()
	r.resets++
	r.mu.Unlock()
}

func (r *fakeRegion) LogMsg(format string, args ...interface{}) {
	r.mu.Lock()
	r.logLines = append(r.logLines, fmt.Sprintf(format, args...))
	r.mu.Unlock()
}

func (r *fakeRegion) VerifyLive(objectCount int, liveBytes int64, inPlace bool) {
	r.mu.Lock()
	r.verifyCalls = append(r.verifyCalls, verifyCall{objectCount, liveBytes, inPlace})
	r.mu.Unlock()
}

func (r *fakeRegion) lines() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.logLines))
	copy(out, r.logLines)
	return out
}

// fakeAddressSpace is the identity mapping with a fixed object size,
// enough to exercise Verify's accounting.
type fakeAddressSpace struct{ objSize int64 }

func (a fakeAddressSpace) OffsetToAddress(o Offset) Addr { return Addr(o) }
func (a fakeAddressSpace) ObjectSize(Addr) int64         { return a.objSize }
func (a fakeAddressSpace) AlignUp(size int64, alignment int) int64 {
	al := int64(alignment)
	return (size + al - 1) &^ (al - 1)
}

// fakeGeneration lets tests control Seqnum/IsPhaseMark directly.
type fakeGeneration struct {
	seqnum  uint32
	markPhase bool
}

func (g *fakeGeneration) Seqnum() uint32    { return g.seqnum }
func (g *fakeGeneration) IsPhaseMark() bool { return g.markPhase }
