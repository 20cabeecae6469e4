/*
 * Copyright (c) 2026, Locus Authors. All rights reserved.
 */
package forward_test

import (
	"time"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/aistorelabs/locus/forward"
)

// ginkgoRegion is a bare-bones forward.Region double, local to this
// suite, distinct from the white-box fakes in the forward package's own
// _test.go files.
type ginkgoRegion struct {
	top      forward.Offset
	young    bool
	resets   int
	verified bool
}

func (r *ginkgoRegion) Top() forward.Offset                       { return r.top }
func (r *ginkgoRegion) ObjectMaxCount() int                       { return 32 }
func (r *ginkgoRegion) ObjectAlignment() int                      { return 8 }
func (r *ginkgoRegion) IsYoung() bool                             { return r.young }
func (r *ginkgoRegion) FinalizeResetForInPlaceRelocation()        { r.resets++ }
func (r *ginkgoRegion) LogMsg(format string, args ...interface{}) {}
func (r *ginkgoRegion) VerifyLive(objectCount int, liveBytes int64, inPlace bool) {
	r.verified = true
}

type ginkgoAddressSpace struct{}

func (ginkgoAddressSpace) OffsetToAddress(o forward.Offset) forward.Addr { return forward.Addr(o) }
func (ginkgoAddressSpace) ObjectSize(forward.Addr) int64                 { return 16 }
func (ginkgoAddressSpace) AlignUp(size int64, alignment int) int64       { return size }

type ginkgoGeneration struct {
	seqnum    uint32
	markPhase bool
}

func (g *ginkgoGeneration) Seqnum() uint32    { return g.seqnum }
func (g *ginkgoGeneration) IsPhaseMark() bool { return g.markPhase }

func newScenarioForwarding(fromAge, toAge forward.Age) (*forward.Forwarding, *ginkgoRegion) {
	region := &ginkgoRegion{top: 512}
	f := forward.New(forward.Config{
		Region:        region,
		AddressSpace:  ginkgoAddressSpace{},
		FromAge:       fromAge,
		ToAge:         toAge,
		EntryCapacity: 8,
		RegionLo:      0,
		RegionHi:      4096,
	})
	return f, region
}

var _ = Describe("Forwarding", func() {
	Describe("retain and release", func() {
		It("round-trips ref_count without blocking", func() {
			f, _ := newScenarioForwarding(forward.Young, forward.Old)
			Expect(f.RefCount()).To(BeEquivalentTo(1))
			Expect(f.RetainPage()).To(BeTrue())
			Expect(f.RefCount()).To(BeEquivalentTo(2))
			f.ReleasePage()
			Expect(f.RefCount()).To(BeEquivalentTo(1))
		})

		It("refuses new retainers once fully released", func() {
			f, _ := newScenarioForwarding(forward.Young, forward.Old)
			f.ReleasePage()
			Expect(f.RetainPage()).To(BeFalse())
		})
	})

	Describe("claiming for in-place relocation", func() {
		It("waits for an outstanding retainer before becoming exclusive", func() {
			f, region := newScenarioForwarding(forward.Young, forward.Old)
			Expect(f.RetainPage()).To(BeTrue())

			claimed := make(chan struct{})
			owner := new(int)
			go func() {
				defer close(claimed)
				Expect(f.TryClaim()).To(BeTrue())
				f.ClaimPage()
				f.StartInPlace(owner, region.Top())
			}()

			Consistently(claimed, 30*time.Millisecond).ShouldNot(BeClosed())
			f.ReleasePage()
			Eventually(claimed, time.Second).Should(BeClosed())
			Expect(f.RefCount()).To(BeEquivalentTo(-1))
			Expect(f.InPlace()).To(BeTrue())
		})

		It("wakes a blocked waiter with false when aborted", func() {
			f, _ := newScenarioForwarding(forward.Young, forward.Old)
			Expect(f.RetainPage()).To(BeTrue())

			result := make(chan bool, 1)
			go func() { result <- f.WaitPageReleased(forward.NoopStallTimer) }()

			time.Sleep(20 * time.Millisecond) // let the waiter actually block first.
			f.AbortPage()
			Eventually(result, time.Second).Should(Receive(BeFalse()))
		})
	})
})

var _ = Describe("RemsetHandshake", func() {
	It("publishes cleanly when no concurrent YC ever intervenes", func() {
		f, _ := newScenarioForwarding(forward.Old, forward.Old)
		r := f.Remset()
		r.SetArray([]forward.Addr{1, 2, 3})
		r.AfterRelocate(&ginkgoGeneration{seqnum: 1, markPhase: true})
		Expect(r.State()).To(Equal(forward.RRFPublished))
	})

	It("lets an eager YC reject before any publish happens", func() {
		f, _ := newScenarioForwarding(forward.Old, forward.Old)
		r := f.Remset()
		r.NotifyConcurrentScan()
		Expect(r.State()).To(Equal(forward.RRFRejected))
	})

	It("lets a concurrent YC reject a publish that already landed", func() {
		f, _ := newScenarioForwarding(forward.Old, forward.Old)
		r := f.Remset()
		r.SetArray([]forward.Addr{9})
		r.Publish()
		Expect(r.State()).To(Equal(forward.RRFPublished))

		r.NotifyConcurrentScan()
		Expect(r.State()).To(Equal(forward.RRFRejected))
	})
})
