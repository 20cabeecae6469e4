// Command locus-sim is a stress/demo driver for the forward package: it
// fans out simulated OC and YC workers against a table of simulated
// regions and exercises every operation in the forwarding protocol
// concurrently, the idiomatic-Go analogue of the teacher's xaction
// framework applied to this core instead of bucket copying.
/*
 * Copyright (c) 2026, Locus Authors. All rights reserved.
 */
package main

import (
	"os"
	"time"

	"github.com/pkg/errors"
	flag "github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// Config is the stress-run profile: region count, goroutine fan-out,
// run duration, and the rate at which the driver injects AbortPage
// calls to exercise the cancellation path.
type Config struct {
	Regions       int           `yaml:"regions"`
	RegionSize    int           `yaml:"region_size"`
	Workers       int           `yaml:"workers"`
	Duration      time.Duration `yaml:"duration"`
	AbortRate     float64       `yaml:"abort_rate"`
	OldShare      float64       `yaml:"old_share"`
	EntryCapacity int           `yaml:"entry_capacity"`
	MetricsAddr   string        `yaml:"metrics_addr"`
}

func defaultConfig() Config {
	return Config{
		Regions:       16,
		RegionSize:    1 << 20,
		Workers:       8,
		Duration:      10 * time.Second,
		AbortRate:     0.01,
		OldShare:      0.5,
		EntryCapacity: 256,
		MetricsAddr:   ":9477",
	}
}

// loadConfig reads path (if non-empty) as YAML over the defaults, then
// layers the explicit flag set on top.
func loadConfig(path string, fs *flag.FlagSet) (Config, error) {
	cfg := defaultConfig()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return cfg, errors.Wrapf(err, "read config %s", path)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, errors.Wrapf(err, "parse config %s", path)
		}
	}
	applyFlagOverrides(&cfg, fs)
	return cfg, nil
}

func applyFlagOverrides(cfg *Config, fs *flag.FlagSet) {
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "regions":
			cfg.Regions, _ = fs.GetInt("regions")
		case "workers":
			cfg.Workers, _ = fs.GetInt("workers")
		case "duration":
			cfg.Duration, _ = fs.GetDuration("duration")
		case "abort-rate":
			cfg.AbortRate, _ = fs.GetFloat64("abort-rate")
		case "metrics-addr":
			cfg.MetricsAddr, _ = fs.GetString("metrics-addr")
		}
	})
}
