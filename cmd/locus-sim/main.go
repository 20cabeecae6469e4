/*
 * Copyright (c) 2026, Locus Authors. All rights reserved.
 */
package main

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/golang/glog"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	shortid "github.com/teris-io/shortid"
	flag "github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/aistorelabs/locus/forward"
	"github.com/aistorelabs/locus/stats"
)

func main() {
	fs := flag.NewFlagSet("locus-sim", flag.ExitOnError)
	configPath := fs.String("config", "", "path to a YAML stress-run profile")
	fs.Int("regions", 0, "number of simulated regions (overrides config)")
	fs.Int("workers", 0, "number of concurrent OC/YC workers per region (overrides config)")
	fs.Duration("duration", 0, "how long to run (overrides config)")
	fs.Float64("abort-rate", 0, "fraction of regions to abort mid-relocation (overrides config)")
	fs.String("metrics-addr", "", "listen address for /metrics (overrides config)")
	if err := fs.Parse(os.Args[1:]); err != nil {
		glog.Exitf("parse flags: %v", err)
	}

	cfg, err := loadConfig(*configPath, fs)
	if err != nil {
		glog.Exitf("load config: %v", err)
	}

	registry := prometheus.NewRegistry()
	collector := stats.NewCollector(registry)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Duration)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	srv := serveMetrics(cfg.MetricsAddr, registry)
	defer srv.Close()

	if err := run(ctx, cfg, collector); err != nil && err != context.Canceled && err != context.DeadlineExceeded {
		glog.Exitf("run: %v", err)
	}
}

func serveMetrics(addr string, registry *prometheus.Registry) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			glog.Errorf("metrics server: %v", err)
		}
	}()
	return srv
}

// run builds a table of simulated regions, each wrapped in its own
// Forwarding, and fans out concurrent retain/release/claim/publish
// workers against it with golang.org/x/sync/errgroup and a semaphore
// bounding the number of in-flight in-place relocations - the
// idiomatic-Go analogue of the teacher's bounded-parallelism xaction
// jogger (mpopts.Parallel in xact/xs/tcb.go).
func run(ctx context.Context, cfg Config, collector *stats.Collector) error {
	sid, err := shortid.New(1, shortid.DefaultABC, uint64(time.Now().UnixNano()))
	if err != nil {
		return fmt.Errorf("new shortid generator: %w", err)
	}

	table := forward.NewTable(uintptr(cfg.RegionSize))
	addrSpace := simAddressSpace{}
	gen := &simGeneration{}

	byBase := make(map[forward.Addr]*forward.Forwarding, cfg.Regions)
	regions := make([]*simRegion, 0, cfg.Regions)
	forwardings := make([]*forward.Forwarding, 0, cfg.Regions)

	for i := 0; i < cfg.Regions; i++ {
		id, _ := sid.Generate()
		base := forward.Addr(uintptr(i) * uintptr(cfg.RegionSize))
		young := rand.Float64() >= cfg.OldShare
		region := newSimRegion(id, base, uintptr(cfg.RegionSize), young)

		fromAge := forward.Young
		if !young {
			fromAge = forward.Old
		}
		f := forward.New(forward.Config{
			Region:        region,
			AddressSpace:  addrSpace,
			FromAge:       fromAge,
			ToAge:         forward.Old,
			EntryCapacity: cfg.EntryCapacity,
			RegionLo:      base,
			RegionHi:      base + forward.Addr(cfg.RegionSize),
		})
		collector.IncLive()

		byBase[base] = f
		regions = append(regions, region)
		forwardings = append(forwardings, f)
	}
	table.Install(byBase)

	sem := semaphore.NewWeighted(int64(cfg.Workers))
	g, gctx := errgroup.WithContext(ctx)

	for i, f := range forwardings {
		f, region := f, regions[i]
		g.Go(func() error {
			return simulateRegion(gctx, f, region, gen, sem, collector, cfg)
		})
	}

	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()
	g.Go(func() error {
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				for _, f := range forwardings {
					glog.V(1).Info(f.DumpState())
				}
			}
		}
	})

	if err := g.Wait(); err != nil && err != context.Canceled && err != context.DeadlineExceeded {
		return err
	}
	return nil
}

// simulateRegion drives one Forwarding through retain/release churn
// from several reader goroutines, then has a single claimant attempt
// in-place relocation (spec §4.3/§4.4), and finally exercises the
// remset handshake (§4.5) when the region is Old-generation.
func simulateRegion(
	ctx context.Context,
	f *forward.Forwarding,
	region *simRegion,
	gen *simGeneration,
	sem *semaphore.Weighted,
	collector *stats.Collector,
	cfg Config,
) error {
	claimer := forward.NewClaimer(f)
	g, gctx := errgroup.WithContext(ctx)

	for w := 0; w < cfg.Workers; w++ {
		g.Go(func() error {
			for {
				select {
				case <-gctx.Done():
					return nil
				default:
				}
				if !claimer.Retain() {
					return nil
				}
				time.Sleep(time.Millisecond)
				claimer.Release()
			}
		})
	}

	if rand.Float64() < cfg.AbortRate {
		claimer.Abort()
		collector.IncAborted()
	} else if err := sem.Acquire(ctx, 1); err == nil {
		// The semaphore bounds how many regions relocate in-place at
		// once, mirroring the teacher's own bounded-parallelism xaction
		// jogger (mpopts.Parallel in xact/xs/tcb.go).
		func() {
			defer sem.Release(1)
			owner := new(int)
			if !claimer.Claim(owner, region.Top()) {
				return
			}
			collector.IncClaim()
			if f.FromAge() == forward.Old {
				// Drive the shared generation clock into a concurrent-mark
				// cycle so after_relocate actually reaches publish() instead
				// of silently deferring it (spec §4.5).
				gen.startCycle()
				gen.setMarkPhase(true)

				remset := f.Remset()
				remset.SetArray(nil)
				remset.AfterRelocate(gen)
				if gen.IsPhaseMark() {
					collector.IncPublished()
				}
			}
			f.Verify()
			claimer.FinishClaim()
			claimer.Release() // drop the claimant's own exclusive hold, -1 -> 0
		}()
	}

	_ = g.Wait()
	if f.RefCount() != 0 {
		// Nobody claimed this Forwarding (it was aborted instead, or the
		// context was cancelled before the semaphore was acquired): the
		// creator's own initial reference is the last one outstanding.
		claimer.Release()
	}
	claimer.Detach()
	collector.DecLive()
	return nil
}
