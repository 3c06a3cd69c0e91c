// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package lfds_test

import (
	"strconv"
	"testing"

	"code.hybscloud.com/lfds"
)

func TestHashersDeterministic(t *testing.T) {
	if lfds.HashString("key") != lfds.HashString("key") {
		t.Error("HashString: not deterministic")
	}
	if lfds.HashString("key") != lfds.HashBytes([]byte("key")) {
		t.Error("HashString and HashBytes disagree on the same input")
	}
	if lfds.HashUint64(42) != lfds.HashInt(42) {
		t.Error("HashUint64 and HashInt disagree on the same input")
	}

	h := lfds.ComparableHasher[[2]int]()
	if h([2]int{1, 2}) != h([2]int{1, 2}) {
		t.Error("ComparableHasher: not deterministic")
	}
}

// TestHashersLowBits checks that sequential keys spread over the low bits
// the map indexes with.
func TestHashersLowBits(t *testing.T) {
	const (
		buckets = 64
		keys    = 64 * 64
	)

	hashers := map[string]func(i int) uint64{
		"HashInt":          lfds.HashInt,
		"HashString":       func(i int) uint64 { return lfds.HashString(strconv.Itoa(i)) },
		"ComparableHasher": lfds.ComparableHasher[int](),
	}

	for name, h := range hashers {
		t.Run(name, func(t *testing.T) {
			var counts [buckets]int
			for i := range keys {
				counts[h(i)&(buckets-1)]++
			}
			for b, n := range counts {
				// Expected 64 per bucket.
				if n < 16 || n > 160 {
					t.Fatalf("bucket %d: %d keys, distribution too skewed", b, n)
				}
			}
		})
	}
}
