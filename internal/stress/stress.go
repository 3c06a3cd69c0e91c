// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package stress drives lfds structures from concurrent workers and checks
// their conservation properties.
//
// Queue runs encode every produced value as producerID*items + sequence and
// verify that each value is consumed exactly once. Map runs give every
// worker a private key range, so any outcome a worker cannot explain from
// its own history is attributed to the map.
package stress

import (
	"context"
	"errors"
	"fmt"
	"time"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/iox"
	"github.com/hashicorp/go-hclog"
	"github.com/valyala/fastrand"
	"golang.org/x/sync/errgroup"

	"code.hybscloud.com/lfds"
	"code.hybscloud.com/lfds/internal/metrics"
)

var (
	// ErrConservation reports lost or duplicated queue elements.
	ErrConservation = errors.New("stress: conservation violated")
	// ErrCorrupt reports a map lookup that returned a foreign value.
	ErrCorrupt = errors.New("stress: map returned a corrupt value")
	// ErrConfig reports an unusable Config.
	ErrConfig = errors.New("stress: invalid config")
)

// Config sizes a run.
type Config struct {
	Capacity  int // Power of 2
	Producers int
	Consumers int
	Items     int // Per producer
	Workers   int // Map workers
	Keys      int // Keys per map worker
	Lookups   int // Random foreign lookups per map worker
}

// Report summarises a finished run.
type Report struct {
	Structure string
	Elapsed   time.Duration

	// Queue runs
	Produced   int64
	Consumed   int64
	Blocked    int64
	Missing    int
	Duplicates int

	// Map runs
	Inserted  int64
	Rejected  int64
	Removed   int64
	Found     int64
	Lost      int64 // Own keys missing on Get, or accepted by the duplicate insert
	Unremoved int64 // Own keys Remove did not find
	FinalCap  int
}

func (c Config) validate(queue bool) error {
	if c.Capacity < 2 || c.Capacity&(c.Capacity-1) != 0 {
		return fmt.Errorf("%w: capacity %d is not a power of 2", ErrConfig, c.Capacity)
	}
	if queue && (c.Producers < 1 || c.Consumers < 1 || c.Items < 1) {
		return fmt.Errorf("%w: producers, consumers and items must be positive", ErrConfig)
	}
	if !queue && (c.Workers < 1 || c.Keys < 1 || c.Lookups < 0) {
		return fmt.Errorf("%w: workers and keys must be positive", ErrConfig)
	}
	return nil
}

// OpsPerSec returns completed operations per second.
func (r Report) OpsPerSec() float64 {
	if r.Elapsed <= 0 {
		return 0
	}
	ops := r.Produced + r.Consumed + r.Inserted + r.Removed + r.Found
	return float64(ops) / r.Elapsed.Seconds()
}

// RunSPSC runs one producer and one consumer over an SPSC queue.
// Producers and Consumers in cfg are ignored.
func RunSPSC(ctx context.Context, cfg Config, rec *metrics.Recorder, log hclog.Logger) (Report, error) {
	cfg.Producers, cfg.Consumers = 1, 1
	if err := cfg.validate(true); err != nil {
		return Report{Structure: "spsc"}, err
	}
	return runQueue(ctx, "spsc", lfds.NewSPSC[int](cfg.Capacity), cfg, rec, log)
}

// RunMPMC runs cfg.Producers producers and cfg.Consumers consumers over an
// MPMC queue.
func RunMPMC(ctx context.Context, cfg Config, rec *metrics.Recorder, log hclog.Logger) (Report, error) {
	if err := cfg.validate(true); err != nil {
		return Report{Structure: "mpmc"}, err
	}
	return runQueue(ctx, "mpmc", lfds.NewMPMC[int](cfg.Capacity), cfg, rec, log)
}

func runQueue(ctx context.Context, name string, q lfds.Queue[int], cfg Config, rec *metrics.Recorder, log hclog.Logger) (Report, error) {
	rep := Report{Structure: name}
	total := cfg.Producers * cfg.Items
	seen := make([]atomix.Int32, total)
	var produced, consumed, blocked atomix.Int64

	log.Debug("starting queue run", "structure", name, "capacity", cfg.Capacity,
		"producers", cfg.Producers, "consumers", cfg.Consumers, "items", total)

	g, ctx := errgroup.WithContext(ctx)
	start := time.Now()

	for p := range cfg.Producers {
		g.Go(func() error {
			var ok, wb int64
			defer func() {
				produced.Add(ok)
				blocked.Add(wb)
				rec.Ops(name, "enqueue", metrics.ResultOK).Add(float64(ok))
				rec.Ops(name, "enqueue", metrics.ResultBlocked).Add(float64(wb))
			}()

			backoff := iox.Backoff{}
			for i := range cfg.Items {
				if i&1023 == 0 {
					if err := ctx.Err(); err != nil {
						return err
					}
				}
				v := p*cfg.Items + i
				for q.Enqueue(&v) != nil {
					wb++
					if err := ctx.Err(); err != nil {
						return err
					}
					backoff.Wait()
				}
				backoff.Reset()
				ok++
			}
			return nil
		})
	}

	for range cfg.Consumers {
		g.Go(func() error {
			var ok, wb int64
			defer func() {
				blocked.Add(wb)
				rec.Ops(name, "dequeue", metrics.ResultOK).Add(float64(ok))
				rec.Ops(name, "dequeue", metrics.ResultBlocked).Add(float64(wb))
			}()

			backoff := iox.Backoff{}
			for consumed.Load() < int64(total) {
				v, err := q.Dequeue()
				if err != nil {
					wb++
					if err := ctx.Err(); err != nil {
						return err
					}
					backoff.Wait()
					continue
				}
				backoff.Reset()
				if v < 0 || v >= total {
					return fmt.Errorf("%w: dequeued unknown value %d", ErrConservation, v)
				}
				seen[v].Add(1)
				consumed.Add(1)
				ok++
			}
			return nil
		})
	}

	err := g.Wait()
	rep.Elapsed = time.Since(start)
	rep.Produced = produced.Load()
	rep.Consumed = consumed.Load()
	rep.Blocked = blocked.Load()
	if err != nil {
		return rep, fmt.Errorf("stress: %s run: %w", name, err)
	}

	for i := range seen {
		switch n := seen[i].Load(); {
		case n == 0:
			rep.Missing++
		case n > 1:
			rep.Duplicates++
		}
	}
	rec.ObserveRun(name, rep.Elapsed)

	if rep.Missing > 0 || rep.Duplicates > 0 {
		return rep, fmt.Errorf("%w: %s missing=%d duplicates=%d", ErrConservation, name, rep.Missing, rep.Duplicates)
	}
	if !q.Empty() {
		return rep, fmt.Errorf("%w: %s not empty after drain (len %d)", ErrConservation, name, q.Len())
	}

	log.Info("queue run complete", "structure", name, "items", total,
		"elapsed", rep.Elapsed, "ops_per_sec", int64(rep.OpsPerSec()), "would_block", rep.Blocked)
	return rep, nil
}

// RunMap runs cfg.Workers workers over a map of initial capacity
// cfg.Capacity. Each worker inserts its own keys, probes them for
// duplicates, reads random keys of other workers, removes half of its own
// keys and verifies the rest.
//
// Keys a worker inserted but can no longer find with Get are counted as
// Lost; removes of its own keys that find nothing are counted as Unremoved.
// Both are expected when resizes race with writers and are logged, not
// failed.
func RunMap(ctx context.Context, cfg Config, rec *metrics.Recorder, log hclog.Logger) (Report, error) {
	const name = "map"
	rep := Report{Structure: name}
	if err := cfg.validate(false); err != nil {
		return rep, err
	}
	m := lfds.NewMap[int, int](cfg.Capacity, lfds.WithHasher(lfds.HashInt))
	keySpace := uint32(cfg.Workers * cfg.Keys)
	var inserted, rejected, removed, found, lost, unremoved atomix.Int64

	log.Debug("starting map run", "capacity", cfg.Capacity, "workers", cfg.Workers, "keys", keySpace)

	g, ctx := errgroup.WithContext(ctx)
	start := time.Now()

	for w := range cfg.Workers {
		g.Go(func() error {
			base := w * cfg.Keys
			var ins, rej, rem, hit, miss, norem int64
			defer func() {
				inserted.Add(ins)
				rejected.Add(rej)
				removed.Add(rem)
				found.Add(hit)
				lost.Add(miss)
				unremoved.Add(norem)
				rec.Ops(name, "insert", metrics.ResultOK).Add(float64(ins))
				rec.Ops(name, "insert", metrics.ResultDuplicate).Add(float64(rej))
				rec.Ops(name, "remove", metrics.ResultOK).Add(float64(rem))
				rec.Ops(name, "remove", metrics.ResultMissing).Add(float64(norem))
				rec.Ops(name, "get", metrics.ResultOK).Add(float64(hit))
				rec.Ops(name, "get", metrics.ResultMissing).Add(float64(miss))
			}()

			for k := base; k < base+cfg.Keys; k++ {
				if m.Insert(k, k) {
					ins++
				} else {
					rej++
				}
			}
			if err := ctx.Err(); err != nil {
				return err
			}

			for k := base; k < base+cfg.Keys; k++ {
				if m.Insert(k, -k) {
					// Only possible if the first insert was lost to a resize.
					ins++
					miss++
				} else {
					rej++
				}
			}

			for range cfg.Lookups {
				k := int(fastrand.Uint32n(keySpace))
				if v, ok := m.Get(k); ok && v != k && v != -k {
					return fmt.Errorf("%w: Get(%d) = %d", ErrCorrupt, k, v)
				}
			}
			if err := ctx.Err(); err != nil {
				return err
			}

			for k := base; k < base+cfg.Keys; k += 2 {
				if m.Remove(k) {
					rem++
				} else {
					norem++
				}
			}

			for k := base + 1; k < base+cfg.Keys; k += 2 {
				v, ok := m.Get(k)
				switch {
				case !ok:
					miss++
				case v != k && v != -k:
					return fmt.Errorf("%w: Get(%d) = %d", ErrCorrupt, k, v)
				default:
					hit++
				}
			}
			return nil
		})
	}

	err := g.Wait()
	rep.Elapsed = time.Since(start)
	rep.Inserted = inserted.Load()
	rep.Rejected = rejected.Load()
	rep.Removed = removed.Load()
	rep.Found = found.Load()
	rep.Lost = lost.Load()
	rep.Unremoved = unremoved.Load()
	rep.FinalCap = m.Cap()
	if err != nil {
		return rep, fmt.Errorf("stress: %s run: %w", name, err)
	}
	rec.ObserveRun(name, rep.Elapsed)

	if rep.Lost > 0 || rep.Unremoved > 0 {
		log.Warn("mutations lost across concurrent resize", "lost", rep.Lost,
			"unremoved", rep.Unremoved, "initial_capacity", cfg.Capacity, "final_capacity", rep.FinalCap)
	}
	log.Info("map run complete", "keys", keySpace, "elapsed", rep.Elapsed,
		"ops_per_sec", int64(rep.OpsPerSec()), "final_capacity", rep.FinalCap, "len", m.Len())
	return rep, nil
}
