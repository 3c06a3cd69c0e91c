// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package lfds provides bounded lock-free data structures built directly
// on atomic memory primitives.
//
// Three independent containers are offered:
//
//   - SPSC: wait-free single-producer single-consumer ring buffer
//   - MPMC: lock-free multi-producer multi-consumer ticket ring buffer
//   - Map:  lock-free open-addressing hash map with doubling resize
//
// # Quick Start
//
//	q := lfds.NewSPSC[Event](1024)
//	q := lfds.NewMPMC[*Request](4096)
//	m := lfds.NewMap[string, int](64, lfds.WithHasher(lfds.HashString))
//
// The builder selects a queue from producer/consumer constraints:
//
//	q := lfds.Build[Event](lfds.New(1024).SingleProducer().SingleConsumer()) // → SPSC
//	q := lfds.Build[Event](lfds.New(1024))                                   // → MPMC
//
// # Non-Blocking Semantics
//
// No operation ever parks the calling goroutine. A queue that cannot accept
// or deliver an element returns [ErrWouldBlock]; the caller decides whether
// and how to retry:
//
//	backoff := iox.Backoff{}
//	for q.Enqueue(&item) != nil {
//	    backoff.Wait()
//	}
//	backoff.Reset()
//
// Map operations report their outcome with booleans:
//
//	m.Insert("a", 1)   // true: inserted
//	m.Insert("a", 2)   // false: key already present
//	v, ok := m.Get("a") // 1, true
//	m.Remove("a")      // true: tombstoned
//
// # Capacity
//
// Capacity is fixed at construction and must be a power of two, at least 2.
// Any other value is a contract violation and panics immediately.
//
// An SPSC queue of capacity C holds at most C-1 elements: one slot always
// stays empty so that full and empty are distinguishable from the two
// wrapped indices alone. An MPMC queue of capacity C holds exactly C.
//
// # Advisory Snapshots
//
// Len, Empty and Full read shared counters with relaxed ordering. The values
// may be stale the instant they return and must never be used to decide
// whether an Enqueue or Dequeue will succeed. The structures themselves
// never consult them.
//
// # Hash Map Resize
//
// The map's table is replaced, never grown in place. A goroutine whose
// insert finds no claimable cell copies every Full cell into a new table
// and installs it with a single compare-and-swap. The new table has twice
// the capacity when more than half the old cells are live, and the same
// capacity otherwise. Tombstones are dropped by the copy, which is the only
// way they are reclaimed, so insert/remove churn compacts the table without
// growing it.
//
// Operations that loaded the old table before the swap keep running
// against it. Inserts and removes they complete after the copy has passed
// the affected cell are not carried into the new table. Callers that need
// every mutation to survive a resize must quiesce writers around growth,
// for instance by sizing the map for its expected load.
//
// Superseded tables are reclaimed by the garbage collector once the last
// in-flight operation drops its reference.
//
// # Thread Safety
//
//   - SPSC: one producer goroutine, one consumer goroutine
//   - MPMC: any number of producer and consumer goroutines
//   - Map:  any number of goroutines
//
// Violating the SPSC constraint causes undefined behavior including data
// corruption.
//
// Map keys are unique only among inserts that do not overlap in time. A
// cell being written is skipped by other inserts because its key is not yet
// readable, so two concurrent inserts of the same key can both return true
// and leave two entries. Get and Remove then act on the first in probe
// order, and a Remove exposes the second. Callers that need uniqueness
// under concurrency must route inserts of one key through one goroutine.
//
// # Race Detection
//
// The race detector cannot observe happens-before edges established through
// acquire/release orderings on a separate variable (a slot sequence or a
// cell state guarding non-atomic data). Concurrent tests are skipped when
// [RaceEnabled] is true.
//
// # Dependencies
//
// This package uses [code.hybscloud.com/atomix] for atomics with explicit
// memory ordering, [code.hybscloud.com/spin] for CPU pause in retry loops,
// and [code.hybscloud.com/iox] for semantic errors.
package lfds
