/*
 * Copyright (c) 2026, Locus Authors. All rights reserved.
 */
package forward

import "testing"

func claimExclusively(t *testing.T, f *Forwarding) {
	t.Helper()
	if !f.TryClaim() {
		t.Fatalf("TryClaim should win on an unclaimed Forwarding")
	}
	f.ClaimPage()
}

func TestIsBelowTopAtStartTrueForClaimantBelowTop(t *testing.T) {
	f, region := newTestForwarding(Young, Old)
	claimExclusively(t, f)
	owner := new(int)
	top := region.Top()
	f.StartInPlace(owner, top)

	if !f.IsBelowTopAtStart(owner, top-1) {
		t.Fatalf("an offset below top-at-start should read as from-space for the claimant")
	}
	if f.IsBelowTopAtStart(owner, top) {
		t.Fatalf("an offset at or above top-at-start should read as to-space")
	}
}

func TestIsBelowTopAtStartFalseForOtherOwners(t *testing.T) {
	f, region := newTestForwarding(Young, Old)
	claimExclusively(t, f)
	owner := new(int)
	other := new(int)
	f.StartInPlace(owner, region.Top())

	if f.IsBelowTopAtStart(other, 0) {
		t.Fatalf("a goroutine that is not the claimant must never see from-space offsets")
	}
}

func TestIsBelowTopAtStartFalseBeforeStart(t *testing.T) {
	f, _ := newTestForwarding(Young, Old)
	if f.IsBelowTopAtStart(new(int), 0) {
		t.Fatalf("IsBelowTopAtStart before StartInPlace must be false")
	}
}

func TestIsBelowTopAtStartFalseAfterFinish(t *testing.T) {
	f, region := newTestForwarding(Young, Old)
	claimExclusively(t, f)
	owner := new(int)
	f.StartInPlace(owner, region.Top())
	f.FinishInPlace()

	if f.IsBelowTopAtStart(owner, 0) {
		t.Fatalf("once relocation has finished, the claimant's own identity must no longer unlock from-space offsets")
	}
}
