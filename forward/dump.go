/*
 * Copyright (c) 2026, Locus Authors. All rights reserved.
 */
package forward

import jsoniter "github.com/json-iterator/go"

var dumpJSON = jsoniter.ConfigCompatibleWithStandardLibrary

// StateSnapshot is a point-in-time rendering of a Forwarding's
// synchronization state, used for diagnostics and for asserting exact
// state-machine transitions in tests (compared with google/go-cmp).
type StateSnapshot struct {
	FromAge  string `json:"from_age"`
	ToAge    string `json:"to_age"`
	RefCount int32  `json:"ref_count"`
	Claimed  bool   `json:"claimed"`
	InPlace  bool   `json:"in_place"`
	RRFState *int32 `json:"rrf_state,omitempty"`
	RRFArray int    `json:"rrf_array_len,omitempty"`
}

// Snapshot renders the current state. It is racy by nature - a
// snapshot reflects no single consistent instant unless the caller has
// externally quiesced the Forwarding - and exists purely for logging
// and test assertions, never for control flow.
func (f *Forwarding) Snapshot() StateSnapshot {
	s := StateSnapshot{
		FromAge:  f.fromAge.String(),
		ToAge:    f.toAge.String(),
		RefCount: f.refCount.Load(),
		Claimed:  f.claimed.Load(),
		InPlace:  f.inPlace.Load(),
	}
	if f.remset != nil {
		st := int32(f.remset.State())
		s.RRFState = &st
		s.RRFArray = len(f.remset.array)
	}
	return s
}

// DumpState renders Snapshot as a single JSON line, for Region.LogMsg
// hooks and the stress driver's periodic status line.
func (f *Forwarding) DumpState() string {
	b, err := dumpJSON.Marshal(f.Snapshot())
	if err != nil {
		return "{\"error\":\"" + err.Error() + "\"}"
	}
	return string(b)
}
