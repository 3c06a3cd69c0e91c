// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package lfds

import (
	"sync/atomic"

	"code.hybscloud.com/atomix"
)

// Cell states. A cell only moves forward through
// Empty → Writing → Full → Deleted within one table.
const (
	cellEmpty uint64 = iota
	cellWriting
	cellFull
	cellDeleted
)

type insertResult uint8

const (
	inserted insertResult = iota
	duplicate
	exhausted
)

// Map is a lock-free multi-producer multi-consumer hash map.
//
// Open addressing with linear probing over a fixed-capacity table. Every
// cell carries a state tag advanced by compare-and-swap; a release store of
// Full publishes key and value to any thread that observes Full with an
// acquire load. Removal leaves a Deleted tombstone so probe chains stay
// intact.
//
// When an insert finds no claimable cell the table is replaced by a copy
// holding every Full cell; tombstones are dropped. The copy has twice the
// capacity if more than half the cells are live, and the same capacity
// otherwise, so insert/remove churn does not grow the map. See the package
// documentation for the resize caveat.
//
// Keys are unique among entries inserted one after another. Two inserts of
// the same key that run concurrently may both succeed, leaving two entries
// of which Get and Remove see the first in probe order.
//
// Capacity is always a power of two and never shrinks.
type Map[K comparable, V any] struct {
	_     pad
	table atomic.Pointer[mapTable[K, V]]
	_     pad
	hash  func(K) uint64
	equal func(a, b K) bool
}

type mapTable[K comparable, V any] struct {
	_     pad
	size  atomix.Int64 // Approximate Full cell count
	_     pad
	cells []mapCell[K, V]
	mask  uint64
}

type mapCell[K comparable, V any] struct {
	state atomix.Uint64
	key   K
	value V
	_     padShort
}

// NewMap creates a map with the given initial capacity.
// Panics if capacity is not a power of 2 or is less than 2.
//
// Keys are hashed with a per-map seeded [ComparableHasher] and compared with
// == unless WithHasher or WithKeyEqual are given.
func NewMap[K comparable, V any](capacity int, opts ...MapOption[K]) *Map[K, V] {
	mustPow2(capacity)

	o := mapOptions[K]{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.hash == nil {
		o.hash = ComparableHasher[K]()
	}
	if o.equal == nil {
		o.equal = func(a, b K) bool { return a == b }
	}

	m := &Map[K, V]{
		hash:  o.hash,
		equal: o.equal,
	}
	m.table.Store(newMapTable[K, V](uint64(capacity)))
	return m
}

func newMapTable[K comparable, V any](n uint64) *mapTable[K, V] {
	return &mapTable[K, V]{
		cells: make([]mapCell[K, V], n),
		mask:  n - 1,
	}
}

// Insert adds key with value.
// Returns false if an equal key is already present, true otherwise.
//
// Insert never fails for lack of room: when the current table has no
// claimable cell it is replaced by a compacted or larger one and the
// insert retries.
func (m *Map[K, V]) Insert(key K, value V) bool {
	h := m.hash(key)
	for {
		t := m.table.Load()
		switch t.insert(h, key, value, m.equal) {
		case inserted:
			return true
		case duplicate:
			return false
		}
		m.grow(t)
	}
}

// Get returns the value stored for key.
func (m *Map[K, V]) Get(key K) (V, bool) {
	return m.table.Load().get(m.hash(key), key, m.equal)
}

// Remove deletes key.
// Returns true if a present entry was removed, false if none was found.
func (m *Map[K, V]) Remove(key K) bool {
	return m.table.Load().remove(m.hash(key), key, m.equal)
}

// Len returns the approximate number of entries.
func (m *Map[K, V]) Len() int {
	n := m.table.Load().size.LoadRelaxed()
	if n < 0 {
		return 0
	}
	return int(n)
}

// Cap returns the current table capacity.
func (m *Map[K, V]) Cap() int {
	return len(m.table.Load().cells)
}

// grow replaces old with a compacted copy.
//
// Every cell observed Full in old is copied; Empty, Writing and Deleted
// cells are not. The copy doubles the capacity when more than half of old
// is live, and keeps it otherwise, so a table exhausted by tombstones is
// rebuilt in place of growing. The new table is installed only if old is
// still current, so concurrent growers of the same table produce one
// successor.
func (m *Map[K, V]) grow(old *mapTable[K, V]) {
	if m.table.Load() != old {
		return
	}

	n := uint64(len(old.cells))
	live := uint64(0)
	for i := range old.cells {
		if old.cells[i].state.LoadAcquire() == cellFull {
			live++
		}
	}
	if size := old.size.Load(); size > 0 && uint64(size) > live {
		live = uint64(size)
	}
	if live > n/2 {
		n *= 2
	}

	// Cells that turn Full after the count still fit: old holds at most n.
	next := newMapTable[K, V](n)
	for i := range old.cells {
		c := &old.cells[i]
		if c.state.LoadAcquire() == cellFull {
			next.insert(m.hash(c.key), c.key, c.value, m.equal)
		}
	}

	m.table.CompareAndSwap(old, next)
}

func (t *mapTable[K, V]) insert(h uint64, key K, value V, equal func(a, b K) bool) insertResult {
	for i := uint64(0); i <= t.mask; i++ {
		c := &t.cells[(h+i)&t.mask]

		if c.state.CompareAndSwapAcqRel(cellEmpty, cellWriting) {
			c.key = key
			c.value = value
			c.state.StoreRelease(cellFull)
			t.size.AddAcqRel(1)
			return inserted
		}

		// Writing cells are skipped: their key is not yet readable.
		if c.state.LoadAcquire() == cellFull && equal(c.key, key) {
			return duplicate
		}
	}
	return exhausted
}

func (t *mapTable[K, V]) get(h uint64, key K, equal func(a, b K) bool) (V, bool) {
	for i := uint64(0); i <= t.mask; i++ {
		c := &t.cells[(h+i)&t.mask]

		switch c.state.LoadAcquire() {
		case cellFull:
			if equal(c.key, key) {
				return c.value, true
			}
		case cellEmpty:
			var zero V
			return zero, false
		}
	}
	var zero V
	return zero, false
}

func (t *mapTable[K, V]) remove(h uint64, key K, equal func(a, b K) bool) bool {
	for i := uint64(0); i <= t.mask; i++ {
		c := &t.cells[(h+i)&t.mask]

		switch c.state.LoadAcquire() {
		case cellFull:
			if !equal(c.key, key) {
				continue
			}
			if c.state.CompareAndSwapAcqRel(cellFull, cellDeleted) {
				t.size.AddAcqRel(-1)
				return true
			}
			// Lost to a concurrent remove; the cell is now Deleted.
		case cellEmpty:
			return false
		}
	}
	return false
}
