// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package lfds

import "code.hybscloud.com/atomix"

// SPSC is a wait-free single-producer single-consumer bounded queue.
//
// Lamport ring buffer over wrapped indices. head is written only by the
// consumer and tail only by the producer, so no compare-and-swap is needed:
// the release store of an index after touching its slot pairs with the
// other side's acquire load before touching the same slot.
//
// One slot always stays empty: the queue is empty iff head == tail and full
// iff wrap(tail+1) == head. Capacity C therefore holds C-1 elements.
//
// Each side caches the other side's index and reloads it only when the
// cached view reports full or empty, keeping the opposite cache line cold.
//
// Memory: C slots of T
type SPSC[T any] struct {
	_          pad
	head       atomix.Uint64 // Next slot to read, consumer-owned
	_          pad
	cachedTail uint64 // Consumer's view of tail
	_          pad
	tail       atomix.Uint64 // Next slot to write, producer-owned
	_          pad
	cachedHead uint64 // Producer's view of head
	_          pad
	buffer     []T
	mask       uint64
}

// NewSPSC creates a new SPSC queue.
// Panics if capacity is not a power of 2 or is less than 2.
func NewSPSC[T any](capacity int) *SPSC[T] {
	mustPow2(capacity)

	n := uint64(capacity)
	return &SPSC[T]{
		buffer: make([]T, n),
		mask:   n - 1,
	}
}

// Enqueue adds an element to the queue (producer only).
// Returns ErrWouldBlock if the queue is full.
func (q *SPSC[T]) Enqueue(elem *T) error {
	tail := q.tail.LoadRelaxed()
	next := (tail + 1) & q.mask
	if next == q.cachedHead {
		q.cachedHead = q.head.LoadAcquire()
		if next == q.cachedHead {
			return ErrWouldBlock
		}
	}

	q.buffer[tail] = *elem
	q.tail.StoreRelease(next)
	return nil
}

// Dequeue removes and returns the oldest element (consumer only).
// Returns (zero-value, ErrWouldBlock) if the queue is empty.
func (q *SPSC[T]) Dequeue() (T, error) {
	head := q.head.LoadRelaxed()
	if head == q.cachedTail {
		q.cachedTail = q.tail.LoadAcquire()
		if head == q.cachedTail {
			var zero T
			return zero, ErrWouldBlock
		}
	}

	elem := q.buffer[head]
	var zero T
	q.buffer[head] = zero
	q.head.StoreRelease((head + 1) & q.mask)
	return elem, nil
}

// Len returns the approximate number of queued elements.
func (q *SPSC[T]) Len() int {
	return int((q.tail.LoadRelaxed() - q.head.LoadRelaxed()) & q.mask)
}

// Cap returns the queue capacity. At most Cap()-1 elements fit.
func (q *SPSC[T]) Cap() int {
	return int(q.mask + 1)
}

// Empty reports whether the queue appeared empty.
func (q *SPSC[T]) Empty() bool {
	return q.head.LoadRelaxed() == q.tail.LoadRelaxed()
}

// Full reports whether the queue appeared full.
func (q *SPSC[T]) Full() bool {
	return (q.tail.LoadRelaxed()+1)&q.mask == q.head.LoadRelaxed()
}
