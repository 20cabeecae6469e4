// Package cmn holds small ambient helpers shared across the locus
// packages: invariant checking and process-fatal diagnostics.
/*
 * Copyright (c) 2026, Locus Authors. All rights reserved.
 */
package cmn

import "github.com/golang/glog"

// Assert terminates the process via glog.Fatalf when cond is false.
// Every Assert call guards a programming invariant of the forwarding
// protocol (see spec §7 "Invariant violation") rather than a
// recoverable runtime condition - there is no NDEBUG-style compile-out
// here, because the core is specified to abort on these conditions in
// production, not only in debug builds.
func Assert(cond bool, args ...interface{}) {
	if cond {
		return
	}
	if len(args) == 0 {
		glog.Fatalln("assertion failed")
		return
	}
	glog.Fatalln(args...)
}

// Assertf is Assert with a format string.
func Assertf(cond bool, format string, args ...interface{}) {
	if cond {
		return
	}
	glog.Fatalf(format, args...)
}

// AssertNoErr fatals if err != nil, annotating with msg.
func AssertNoErr(err error, msg string) {
	if err != nil {
		glog.Fatalf("%s: %v", msg, err)
	}
}
