// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package lfds

// Queue is the combined producer-consumer interface of a bounded FIFO queue.
//
// Both operations are non-blocking and return ErrWouldBlock when they cannot
// proceed. Queue is implemented by *SPSC[T] and *MPMC[T].
//
// Example:
//
//	q := lfds.Build[int](lfds.New(1024))
//
//	val := 42
//	if err := q.Enqueue(&val); err != nil {
//	    // full
//	}
//
//	elem, err := q.Dequeue()
//	if err == nil {
//	    fmt.Println(elem)
//	}
type Queue[T any] interface {
	Producer[T]
	Consumer[T]
	Snapshotter
}

// Producer is the enqueue side of a queue.
type Producer[T any] interface {
	// Enqueue copies *elem into the queue.
	// Returns nil on success, ErrWouldBlock if the queue is full.
	Enqueue(elem *T) error
}

// Consumer is the dequeue side of a queue.
type Consumer[T any] interface {
	// Dequeue removes and returns the oldest element.
	// Returns (zero-value, ErrWouldBlock) if the queue is empty.
	// The vacated slot is cleared so referenced objects can be collected.
	Dequeue() (T, error)
}

// Snapshotter exposes advisory views of a queue's occupancy.
//
// All methods may return stale values under concurrent use. They are
// intended for monitoring and tests, never for deciding whether an
// operation will succeed.
type Snapshotter interface {
	// Len returns the approximate number of queued elements.
	Len() int
	// Cap returns the capacity the queue was constructed with.
	Cap() int
	// Empty reports whether the queue appeared empty.
	Empty() bool
	// Full reports whether the queue appeared full.
	Full() bool
}
