// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package lfds_test

import (
	"errors"
	"slices"
	"testing"

	"code.hybscloud.com/lfds"
)

// =============================================================================
// Cross-Queue Consistency Tests
//
// These tests run the same operation sequence through every way of obtaining
// a queue and check that all of them honor the Queue contract. The only
// permitted difference is usable capacity: SPSC holds Cap()-1 elements,
// MPMC holds Cap().
// =============================================================================

type queueCase struct {
	name   string
	usable func(capacity int) int
	newQ   func(capacity int) lfds.Queue[int]
}

func spscUsable(c int) int { return c - 1 }
func mpmcUsable(c int) int { return c }

var queueCases = []queueCase{
	{"SPSC", spscUsable, func(c int) lfds.Queue[int] { return lfds.NewSPSC[int](c) }},
	{"MPMC", mpmcUsable, func(c int) lfds.Queue[int] { return lfds.NewMPMC[int](c) }},
	{"BuildSPSC", spscUsable, func(c int) lfds.Queue[int] {
		return lfds.Build[int](lfds.New(c).SingleProducer().SingleConsumer())
	}},
	{"BuildMPMC", mpmcUsable, func(c int) lfds.Queue[int] { return lfds.Build[int](lfds.New(c)) }},
	{"BuildSingleProducer", mpmcUsable, func(c int) lfds.Queue[int] {
		return lfds.Build[int](lfds.New(c).SingleProducer())
	}},
	{"BuildMPMCTyped", mpmcUsable, func(c int) lfds.Queue[int] { return lfds.BuildMPMC[int](lfds.New(c)) }},
}

// =============================================================================
// Fill / Drain Consistency
// =============================================================================

func TestQueueConsistency(t *testing.T) {
	for _, capacity := range []int{2, 8, 64} {
		for qc := range slices.Values(queueCases) {
			t.Run(qc.name, func(t *testing.T) {
				q := qc.newQ(capacity)
				n := qc.usable(capacity)

				if got := q.Cap(); got != capacity {
					t.Errorf("Cap: got %d, want %d", got, capacity)
				}
				if !q.Empty() || q.Full() || q.Len() != 0 {
					t.Errorf("new queue: Empty=%v Full=%v Len=%d", q.Empty(), q.Full(), q.Len())
				}
				if _, err := q.Dequeue(); !errors.Is(err, lfds.ErrWouldBlock) {
					t.Errorf("Dequeue on empty: got %v, want ErrWouldBlock", err)
				}

				for i := range n {
					v := i + 100
					if err := q.Enqueue(&v); err != nil {
						t.Fatalf("Enqueue(%d): %v", i, err)
					}
				}
				if !q.Full() || q.Len() != n {
					t.Errorf("filled queue: Full=%v Len=%d, want true %d", q.Full(), q.Len(), n)
				}
				v := 999
				if err := q.Enqueue(&v); !errors.Is(err, lfds.ErrWouldBlock) {
					t.Errorf("Enqueue on full: got %v, want ErrWouldBlock", err)
				}

				for i := range n {
					val, err := q.Dequeue()
					if err != nil {
						t.Fatalf("Dequeue(%d): %v", i, err)
					}
					if val != i+100 {
						t.Errorf("Dequeue(%d): got %d, want %d", i, val, i+100)
					}
				}
				if _, err := q.Dequeue(); !errors.Is(err, lfds.ErrWouldBlock) {
					t.Errorf("Dequeue after drain: got %v, want ErrWouldBlock", err)
				}
			})
		}
	}
}

// =============================================================================
// Wraparound Consistency
// =============================================================================

// TestWraparoundConsistency cycles a small queue many times so indices and
// sequence numbers wrap repeatedly.
func TestWraparoundConsistency(t *testing.T) {
	const (
		capacity = 4
		cycles   = 100
	)

	for qc := range slices.Values(queueCases) {
		t.Run(qc.name, func(t *testing.T) {
			q := qc.newQ(capacity)
			n := qc.usable(capacity)
			next := 0
			for c := range cycles {
				for i := range n {
					v := next + i
					if err := q.Enqueue(&v); err != nil {
						t.Fatalf("cycle %d Enqueue(%d): %v", c, i, err)
					}
				}
				for i := range n {
					val, err := q.Dequeue()
					if err != nil {
						t.Fatalf("cycle %d Dequeue(%d): %v", c, i, err)
					}
					if val != next+i {
						t.Fatalf("cycle %d Dequeue(%d): got %d, want %d", c, i, val, next+i)
					}
				}
				next += n
			}
			if !q.Empty() {
				t.Fatalf("Empty after %d cycles: got false (Len=%d)", cycles, q.Len())
			}
		})
	}
}

// =============================================================================
// Zero Value Consistency
// =============================================================================

// TestZeroValueConsistency: a stored zero value is an element, not a hole.
func TestZeroValueConsistency(t *testing.T) {
	const capacity = 4

	for qc := range slices.Values(queueCases) {
		t.Run(qc.name, func(t *testing.T) {
			q := qc.newQ(capacity)
			n := qc.usable(capacity)

			for range n {
				zero := 0
				if err := q.Enqueue(&zero); err != nil {
					t.Fatalf("Enqueue(0): %v", err)
				}
			}
			zero := 0
			if err := q.Enqueue(&zero); !errors.Is(err, lfds.ErrWouldBlock) {
				t.Fatalf("Enqueue on full: got %v, want ErrWouldBlock", err)
			}
			for i := range n {
				val, err := q.Dequeue()
				if err != nil {
					t.Fatalf("Dequeue(%d): %v", i, err)
				}
				if val != 0 {
					t.Fatalf("Dequeue(%d): got %d, want 0", i, val)
				}
			}
			if _, err := q.Dequeue(); !errors.Is(err, lfds.ErrWouldBlock) {
				t.Fatalf("Dequeue on empty: got %v, want ErrWouldBlock", err)
			}
		})
	}
}

// =============================================================================
// Interleaved Operations Consistency
// =============================================================================

// TestInterleavedConsistency enqueues two and dequeues one per step until
// the queue fills, then drains; the dequeued sequence stays contiguous.
func TestInterleavedConsistency(t *testing.T) {
	const capacity = 8

	for qc := range slices.Values(queueCases) {
		t.Run(qc.name, func(t *testing.T) {
			q := qc.newQ(capacity)
			in, out := 0, 0

			for q.Len() < qc.usable(capacity)-1 {
				for range 2 {
					v := in
					if err := q.Enqueue(&v); err != nil {
						t.Fatalf("Enqueue(%d): %v", in, err)
					}
					in++
				}
				val, err := q.Dequeue()
				if err != nil {
					t.Fatalf("Dequeue: %v", err)
				}
				if val != out {
					t.Fatalf("Dequeue: got %d, want %d", val, out)
				}
				out++
			}

			for {
				val, err := q.Dequeue()
				if errors.Is(err, lfds.ErrWouldBlock) {
					break
				}
				if val != out {
					t.Fatalf("drain: got %d, want %d", val, out)
				}
				out++
			}
			if out != in {
				t.Fatalf("dequeued %d, enqueued %d", out, in)
			}
		})
	}
}
