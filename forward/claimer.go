/*
 * Copyright (c) 2026, Locus Authors. All rights reserved.
 */
package forward

// Claimer is the client façade described in spec §2 component C5:
// retain/release, claim, detach, abort, layered over a single
// Forwarding's core CAS protocol (C3) and its in-place marker (§4.4).
// It adds no state of its own beyond the Forwarding it wraps, so it is
// cheap to construct per call site.
type Claimer struct {
	F *Forwarding
}

// NewClaimer wraps f for client use.
func NewClaimer(f *Forwarding) Claimer { return Claimer{F: f} }

// Retain is retain_page().
func (c Claimer) Retain() bool { return c.F.RetainPage() }

// Release is release_page().
func (c Claimer) Release() { c.F.ReleasePage() }

// Claim wins the single-winner claimed gate, drains outstanding
// referents down to ref_count == -1, and starts in-place relocation
// with the given owner identity and top-at-start offset. It returns
// false without side effects if another goroutine already claimed this
// Forwarding.
func (c Claimer) Claim(owner Owner, topAtStart Offset) bool {
	if !c.F.TryClaim() {
		return false
	}
	c.F.ClaimPage()
	c.F.StartInPlace(owner, topAtStart)
	return true
}

// FinishClaim is in_place_relocation_finish(), exposed on the façade
// for symmetry with Claim.
func (c Claimer) FinishClaim() { c.F.FinishInPlace() }

// Detach is detach_page(): blocks until quiescent, then returns the
// underlying Region to the caller.
func (c Claimer) Detach() Region { return c.F.DetachPage() }

// Abort is abort_page().
func (c Claimer) Abort() { c.F.AbortPage() }

// WaitReleased is wait_page_released().
func (c Claimer) WaitReleased(timer StallTimer) bool { return c.F.WaitPageReleased(timer) }

// IsBelowTopAtStart forwards to the wrapped Forwarding's in-place
// boundary check (§4.4).
func (c Claimer) IsBelowTopAtStart(owner Owner, offset Offset) bool {
	return c.F.IsBelowTopAtStart(owner, offset)
}
