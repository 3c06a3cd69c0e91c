// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package lfds

// Options holds queue constraints collected by a Builder.
type Options struct {
	singleProducer bool
	singleConsumer bool

	// Must be a power of 2
	capacity int
}

// Builder creates queues with fluent configuration.
//
// The queue algorithm is chosen from the declared producer/consumer
// constraints.
//
// Example:
//
//	q := lfds.BuildSPSC[Event](lfds.New(1024).SingleProducer().SingleConsumer())
//	q := lfds.BuildMPMC[Request](lfds.New(4096))
type Builder struct {
	opts Options
}

// New creates a queue builder with the given capacity.
//
// Panics if capacity is not a power of 2 or is less than 2.
func New(capacity int) *Builder {
	mustPow2(capacity)
	return &Builder{opts: Options{capacity: capacity}}
}

// SingleProducer declares that only one goroutine will enqueue.
func (b *Builder) SingleProducer() *Builder {
	b.opts.singleProducer = true
	return b
}

// SingleConsumer declares that only one goroutine will dequeue.
func (b *Builder) SingleConsumer() *Builder {
	b.opts.singleConsumer = true
	return b
}

// Build creates a Queue[T] with automatic algorithm selection.
//
//	SingleProducer + SingleConsumer → SPSC (wait-free ring buffer)
//	anything else                   → MPMC (ticket ring buffer)
//
// A single-sided constraint still yields MPMC, which is correct for any
// number of producers and consumers.
func Build[T any](b *Builder) Queue[T] {
	if b.opts.singleProducer && b.opts.singleConsumer {
		return NewSPSC[T](b.opts.capacity)
	}
	return NewMPMC[T](b.opts.capacity)
}

// BuildSPSC creates an SPSC queue.
// Panics if builder is not configured with SingleProducer().SingleConsumer().
func BuildSPSC[T any](b *Builder) *SPSC[T] {
	if !b.opts.singleProducer || !b.opts.singleConsumer {
		panic("lfds: BuildSPSC requires SingleProducer().SingleConsumer()")
	}
	return NewSPSC[T](b.opts.capacity)
}

// BuildMPMC creates an MPMC queue.
// Panics if builder has any constraints set.
func BuildMPMC[T any](b *Builder) *MPMC[T] {
	if b.opts.singleProducer || b.opts.singleConsumer {
		panic("lfds: BuildMPMC requires no constraints")
	}
	return NewMPMC[T](b.opts.capacity)
}

// MapOption configures a Map at construction.
type MapOption[K any] func(*mapOptions[K])

type mapOptions[K any] struct {
	hash  func(K) uint64
	equal func(a, b K) bool
}

// WithHasher injects the key hash function. It must be pure: equal keys
// always hash to the same value.
//
//	m := lfds.NewMap[string, int](64, lfds.WithHasher(lfds.HashString))
func WithHasher[K any](hash func(K) uint64) MapOption[K] {
	return func(o *mapOptions[K]) {
		o.hash = hash
	}
}

// WithKeyEqual injects the key equality predicate used instead of ==.
// It must be consistent with the hasher.
func WithKeyEqual[K any](equal func(a, b K) bool) MapOption[K] {
	return func(o *mapOptions[K]) {
		o.equal = equal
	}
}

// pad is cache line padding to prevent false sharing.
type pad [64]byte

// padShort is padding to fill cache line after 8-byte field.
type padShort [64 - 8]byte
