// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package lfds

import (
	"code.hybscloud.com/atomix"
	"code.hybscloud.com/spin"
)

// MPMC is a lock-free multi-producer multi-consumer bounded queue.
//
// Ticket ring buffer: tail and head are position counters that only ever
// increase; only the slot index wraps. Each slot carries a sequence number
// that hands it to exactly one thread at a time:
//
//	seq == pos      free for the producer holding ticket pos
//	seq == pos+1    filled, ready for the consumer holding ticket pos
//	seq == pos+C    freed for the producer of the next round
//
// The slot sequence is the only synchronization point for slot data, so
// the position counters are loaded and advanced with relaxed ordering.
// Full and empty are decided by comparing sequence and ticket, never by
// counting, which keeps them exact under any interleaving.
//
// Progress: lock-free. A thread repeatedly overtaken by others retries, but
// some thread always completes.
//
// Memory: C slots, one cache line each
type MPMC[T any] struct {
	_        pad
	tail     atomix.Uint64 // Next ticket for producers
	_        pad
	head     atomix.Uint64 // Next ticket for consumers
	_        pad
	buffer   []mpmcSlot[T]
	mask     uint64
	capacity uint64
}

type mpmcSlot[T any] struct {
	seq  atomix.Uint64
	data T
	_    padShort
}

// NewMPMC creates a new MPMC queue.
// Panics if capacity is not a power of 2 or is less than 2.
func NewMPMC[T any](capacity int) *MPMC[T] {
	mustPow2(capacity)

	n := uint64(capacity)
	q := &MPMC[T]{
		buffer:   make([]mpmcSlot[T], n),
		mask:     n - 1,
		capacity: n,
	}

	for i := uint64(0); i < n; i++ {
		q.buffer[i].seq.StoreRelaxed(i)
	}

	return q
}

// Enqueue adds an element to the queue.
// Returns ErrWouldBlock if the queue is full.
func (q *MPMC[T]) Enqueue(elem *T) error {
	sw := spin.Wait{}
	for {
		pos := q.tail.LoadRelaxed()
		slot := &q.buffer[pos&q.mask]
		diff := int64(slot.seq.LoadAcquire()) - int64(pos)

		if diff == 0 {
			if q.tail.CompareAndSwapRelaxed(pos, pos+1) {
				slot.data = *elem
				slot.seq.StoreRelease(pos + 1)
				return nil
			}
		} else if diff < 0 {
			// Consumer of the previous round has not freed this slot.
			return ErrWouldBlock
		}
		sw.Once()
	}
}

// Dequeue removes and returns the oldest element.
// Returns (zero-value, ErrWouldBlock) if the queue is empty.
func (q *MPMC[T]) Dequeue() (T, error) {
	sw := spin.Wait{}
	for {
		pos := q.head.LoadRelaxed()
		slot := &q.buffer[pos&q.mask]
		diff := int64(slot.seq.LoadAcquire()) - int64(pos+1)

		if diff == 0 {
			if q.head.CompareAndSwapRelaxed(pos, pos+1) {
				elem := slot.data
				var zero T
				slot.data = zero
				slot.seq.StoreRelease(pos + q.capacity)
				return elem, nil
			}
		} else if diff < 0 {
			var zero T
			return zero, ErrWouldBlock
		}
		sw.Once()
	}
}

// Len returns the approximate number of queued elements, clamped to
// [0, Cap()].
func (q *MPMC[T]) Len() int {
	n := int64(q.tail.LoadRelaxed() - q.head.LoadRelaxed())
	switch {
	case n < 0:
		return 0
	case n > int64(q.capacity):
		return int(q.capacity)
	}
	return int(n)
}

// Cap returns the queue capacity.
func (q *MPMC[T]) Cap() int {
	return int(q.capacity)
}

// Empty reports whether the queue appeared empty.
func (q *MPMC[T]) Empty() bool {
	return q.Len() == 0
}

// Full reports whether the queue appeared full.
func (q *MPMC[T]) Full() bool {
	return q.Len() == int(q.capacity)
}
